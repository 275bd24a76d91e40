package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
	"github.com/salesdesk-io/salesdesk/pkg/usecase"
)

// filterPrefix marks table query parameters that narrow the list, as in
// f.country_id=...
const filterPrefix = "f."

func intParam(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, goerr.Wrap(usecase.ErrInvalidInput, "invalid integer parameter", goerr.V(name, raw))
	}
	return n, nil
}

// tableQuery reads search, sort, paging, visible columns and f.* filters
func tableQuery(r *http.Request) (usecase.TableQuery, error) {
	q := r.URL.Query()

	dir, err := types.ParseSortDirection(q.Get("dir"))
	if err != nil {
		return usecase.TableQuery{}, goerr.Wrap(usecase.ErrInvalidInput, "invalid sort direction", goerr.V("dir", q.Get("dir")))
	}
	page, err := intParam(q, "page")
	if err != nil {
		return usecase.TableQuery{}, err
	}
	perPage, err := intParam(q, "per_page")
	if err != nil {
		return usecase.TableQuery{}, err
	}

	tq := usecase.TableQuery{
		Search:  q.Get("search"),
		SortKey: q.Get("sort"),
		SortDir: dir,
		Page:    page,
		PerPage: perPage,
	}
	for _, c := range strings.Split(q.Get("columns"), ",") {
		if c = strings.TrimSpace(c); c != "" {
			tq.Columns = append(tq.Columns, c)
		}
	}
	for key := range q {
		if field, ok := strings.CutPrefix(key, filterPrefix); ok && field != "" {
			if tq.Filters == nil {
				tq.Filters = make(map[string]string)
			}
			tq.Filters[field] = q.Get(key)
		}
	}
	return tq, nil
}

// listFilters turns every query parameter into an equality filter
func listFilters(r *http.Request) map[string]string {
	q := r.URL.Query()
	if len(q) == 0 {
		return nil
	}
	filters := make(map[string]string, len(q))
	for key := range q {
		filters[key] = q.Get(key)
	}
	return filters
}
