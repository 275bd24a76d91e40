package usecase

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model"
	"github.com/salesdesk-io/salesdesk/pkg/domain/model/table"
	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

// TableQuery is the presentation state requested for a table: search text,
// sort column, page and visible columns. Filters narrow the underlying list.
type TableQuery struct {
	Search  string
	SortKey string
	SortDir types.SortDirection
	Page    int
	PerPage int
	Columns []string
	Filters map[string]string
}

// TableView is a rendered table page with the entity it shows
type TableView struct {
	Entity string `json:"entity"`
	Title  string `json:"title"`
	table.View
}

// build creates a table over rows and applies q in the order a user would:
// columns, search, sort, then page
func (q TableQuery) build(columns []table.Column, rows []table.Row, emptyMessage string) (*table.Table, error) {
	t, err := table.New(columns,
		table.WithSearchable(true),
		table.WithFilterable(true),
		table.WithExportable(true),
		table.WithItemsPerPage(q.PerPage),
		table.WithEmptyMessage(emptyMessage),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build table")
	}

	t.SetData(rows)
	if len(q.Columns) > 0 {
		t.Visibility().Set(q.Columns)
	}
	t.SetSearch(q.Search)
	if q.SortKey != "" {
		t.Sort(q.SortKey, q.SortDir)
	}
	if q.Page > 1 {
		t.GoToPage(q.Page)
	}
	return t, nil
}

func (q TableQuery) view(entity, title string, columns []table.Column, rows []table.Row, emptyMessage string) (*TableView, error) {
	t, err := q.build(columns, rows, emptyMessage)
	if err != nil {
		return nil, err
	}
	return &TableView{Entity: entity, Title: title, View: t.View()}, nil
}

// moneyCell renders a currency-unit float column with two decimals
func moneyCell(key string) func(table.Row) string {
	return func(row table.Row) string {
		v, _ := row[key].(float64)
		return model.MoneyFromFloat(v).String()
	}
}
