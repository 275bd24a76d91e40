package table

import (
	"sort"
	"strings"

	"github.com/salesdesk-io/salesdesk/pkg/domain/types"
)

// DefaultItemsPerPage is the page size used when none is configured
const DefaultItemsPerPage = 10

// DefaultEmptyMessage is shown when the current page has no rows
const DefaultEmptyMessage = "No data available"

// Table holds the presentation state of a tabular display over an in-memory
// collection: search text, sort column and current page. The input rows are
// never modified.
type Table struct {
	columns []Column
	data    []Row
	visible *VisibleColumns

	searchable   bool
	filterable   bool
	exportable   bool
	itemsPerPage int
	emptyMessage string
	onRowClick   func(Row)

	searchText    string
	currentPage   int
	sortKey       string
	sortDirection types.SortDirection
}

// Option configures a Table
type Option func(*Table)

// WithSearchable enables the search box
func WithSearchable(v bool) Option {
	return func(t *Table) { t.searchable = v }
}

// WithFilterable enables the column visibility filter
func WithFilterable(v bool) Option {
	return func(t *Table) { t.filterable = v }
}

// WithExportable enables CSV export
func WithExportable(v bool) Option {
	return func(t *Table) { t.exportable = v }
}

// WithItemsPerPage sets the fixed page size. Values below 1 are ignored.
func WithItemsPerPage(n int) Option {
	return func(t *Table) {
		if n >= 1 {
			t.itemsPerPage = n
		}
	}
}

// WithEmptyMessage sets the placeholder for an empty page
func WithEmptyMessage(msg string) Option {
	return func(t *Table) { t.emptyMessage = msg }
}

// WithOnRowClick registers the row click handler
func WithOnRowClick(fn func(Row)) Option {
	return func(t *Table) { t.onRowClick = fn }
}

// New creates a table over columns. Column keys must be unique.
func New(columns []Column, opts ...Option) (*Table, error) {
	if err := validateColumns(columns); err != nil {
		return nil, err
	}

	t := &Table{
		columns:       append([]Column(nil), columns...),
		searchable:    true,
		itemsPerPage:  DefaultItemsPerPage,
		emptyMessage:  DefaultEmptyMessage,
		currentPage:   1,
		sortDirection: types.SortAsc,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.visible = NewVisibleColumns(t.columns, nil)

	return t, nil
}

// Columns returns the declared columns
func (t *Table) Columns() []Column {
	return append([]Column(nil), t.columns...)
}

// Visibility returns the column visibility state of the table
func (t *Table) Visibility() *VisibleColumns {
	return t.visible
}

// SetData replaces the collection. The current page is clamped to the new page count.
func (t *Table) SetData(rows []Row) {
	t.data = append([]Row(nil), rows...)
	t.clampPage()
}

// SetSearch changes the search text and returns to the first page. It is a
// no-op on tables without a search box.
func (t *Table) SetSearch(text string) {
	if !t.searchable || text == t.searchText {
		return
	}
	t.searchText = text
	t.currentPage = 1
}

// SearchText returns the current search text
func (t *Table) SearchText() string { return t.searchText }

// Sort sets the sort column and direction directly and returns to the first page.
// Unknown or non-sortable keys clear sorting.
func (t *Table) Sort(key string, dir types.SortDirection) {
	col, ok := t.column(key)
	if !ok || !col.Sortable {
		t.sortKey = ""
		t.sortDirection = types.SortAsc
		t.currentPage = 1
		return
	}
	if !dir.IsValid() {
		dir = types.SortAsc
	}
	t.sortKey = key
	t.sortDirection = dir
	t.currentPage = 1
}

// ClickHeader handles a click on a column header. Clicking the sorted column
// toggles its direction, clicking another sortable column sorts it ascending.
// It reports whether the sort state changed.
func (t *Table) ClickHeader(key string) bool {
	col, ok := t.column(key)
	if !ok || !col.Sortable {
		return false
	}

	if t.sortKey == key {
		t.sortDirection = t.sortDirection.Toggle()
	} else {
		t.sortKey = key
		t.sortDirection = types.SortAsc
	}
	t.currentPage = 1
	return true
}

// SortState returns the sorted column key ("" when unsorted) and direction
func (t *Table) SortState() (string, types.SortDirection) {
	return t.sortKey, t.sortDirection
}

// CurrentPage returns the 1-based current page
func (t *Table) CurrentPage() int { return t.currentPage }

// ItemsPerPage returns the page size
func (t *Table) ItemsPerPage() int { return t.itemsPerPage }

// GoToPage moves to page n, clamped to the available pages
func (t *Table) GoToPage(n int) {
	t.currentPage = n
	t.clampPage()
}

// Next moves to the following page unless already on the last one
func (t *Table) Next() bool {
	if !t.HasNext() {
		return false
	}
	t.currentPage++
	return true
}

// Prev moves to the preceding page unless already on the first one
func (t *Table) Prev() bool {
	if !t.HasPrev() {
		return false
	}
	t.currentPage--
	return true
}

// HasPrev reports whether a previous page exists
func (t *Table) HasPrev() bool { return t.currentPage > 1 }

// HasNext reports whether a following page exists
func (t *Table) HasNext() bool { return t.currentPage < t.PageCount() }

// Filtered returns the rows matching the search text, in input order
func (t *Table) Filtered() []Row {
	return Search(t.data, t.searchText)
}

// Sorted returns the filtered rows ordered by the current sort state
func (t *Table) Sorted() []Row {
	rows := t.Filtered()
	if t.sortKey == "" {
		return rows
	}
	SortRows(rows, t.sortKey, t.sortDirection)
	return rows
}

// PageCount returns the number of pages of the filtered collection
func (t *Table) PageCount() int {
	return PageCount(len(t.Filtered()), t.itemsPerPage)
}

// PageRows returns the rows of the current page
func (t *Table) PageRows() []Row {
	return pageSlice(t.Sorted(), t.currentPage, t.itemsPerPage)
}

// PageWindow returns the page buttons for the current page
func (t *Table) PageWindow() []int {
	return PageWindow(t.currentPage, t.PageCount())
}

// Click handles a click on the cell (rowID, columnKey) and reports whether the
// row click handler ran. Clicks on interactive cells are ignored.
func (t *Table) Click(rowID, columnKey string) bool {
	if t.onRowClick == nil {
		return false
	}
	if col, ok := t.column(columnKey); ok && col.Interactive {
		return false
	}
	for _, row := range t.data {
		if row.ID() == rowID {
			t.onRowClick(row)
			return true
		}
	}
	return false
}

func (t *Table) column(key string) (Column, bool) {
	for _, c := range t.columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

func (t *Table) clampPage() {
	last := max(t.PageCount(), 1)
	if t.currentPage > last {
		t.currentPage = last
	}
	if t.currentPage < 1 {
		t.currentPage = 1
	}
}

// Search returns the rows where any own top-level value, stringified, contains
// text case-insensitively. Nested maps are not searched. An empty text matches
// every row.
func Search(rows []Row, text string) []Row {
	if text == "" {
		return append([]Row(nil), rows...)
	}

	needle := strings.ToLower(text)
	result := make([]Row, 0, len(rows))
	for _, row := range rows {
		if rowMatches(row, needle) {
			result = append(result, row)
		}
	}
	return result
}

func rowMatches(row Row, needle string) bool {
	for _, v := range row {
		switch v.(type) {
		case map[string]any, Row:
			continue
		}
		if strings.Contains(strings.ToLower(Stringify(v)), needle) {
			return true
		}
	}
	return false
}

// SortRows stably sorts rows in place by the raw value at key
func SortRows(rows []Row, key string, dir types.SortDirection) {
	sort.SliceStable(rows, func(i, j int) bool {
		c := Compare(Lookup(rows[i], key), Lookup(rows[j], key))
		if dir == types.SortDesc {
			return c > 0
		}
		return c < 0
	})
}

func pageSlice(rows []Row, page, perPage int) []Row {
	start := (page - 1) * perPage
	if start < 0 || start >= len(rows) {
		return []Row{}
	}
	end := min(start+perPage, len(rows))
	return rows[start:end]
}
