package table

import "github.com/salesdesk-io/salesdesk/pkg/domain/types"

// View is the render-ready snapshot of a table
type View struct {
	Columns      []HeaderView `json:"columns"`
	Rows         []RowView    `json:"rows"`
	Empty        bool         `json:"empty"`
	EmptyMessage string       `json:"empty_message,omitempty"`
	SearchText   string       `json:"search_text"`
	Searchable   bool         `json:"searchable"`
	Filterable   bool         `json:"filterable"`
	Exportable   bool         `json:"exportable"`
	Clickable    bool         `json:"clickable"`
	Filter       []FilterItem `json:"filter,omitempty"`
	Page         PageView     `json:"page"`
}

type HeaderView struct {
	Key       string              `json:"key"`
	Header    string              `json:"header"`
	Sortable  bool                `json:"sortable"`
	Sorted    bool                `json:"sorted"`
	Direction types.SortDirection `json:"direction,omitempty"`
	ClassName string              `json:"class_name,omitempty"`
}

type RowView struct {
	ID    string     `json:"id"`
	Cells []CellView `json:"cells"`
}

type CellView struct {
	Key         string `json:"key"`
	Text        string `json:"text"`
	ClassName   string `json:"class_name,omitempty"`
	Interactive bool   `json:"interactive,omitempty"`
}

// FilterItem is one entry of the column visibility popover
type FilterItem struct {
	Key     string `json:"key"`
	Header  string `json:"header"`
	Visible bool   `json:"visible"`
}

type PageView struct {
	Current int   `json:"current"`
	Count   int   `json:"count"`
	Window  []int `json:"window"`
	HasPrev bool  `json:"has_prev"`
	HasNext bool  `json:"has_next"`
	Total   int   `json:"total"`
	// From and To are the 1-based positions of the first and last rows shown
	From int `json:"from"`
	To   int `json:"to"`
}

// View renders the current page over the visible columns
func (t *Table) View() View {
	sorted := t.Sorted()
	pageRows := pageSlice(sorted, t.currentPage, t.itemsPerPage)
	columns := t.visible.Apply(t.columns)

	v := View{
		Columns:    make([]HeaderView, 0, len(columns)),
		Rows:       make([]RowView, 0, len(pageRows)),
		SearchText: t.searchText,
		Searchable: t.searchable,
		Filterable: t.filterable,
		Exportable: t.exportable,
		Clickable:  t.onRowClick != nil,
	}

	for _, c := range columns {
		h := HeaderView{
			Key:       c.Key,
			Header:    c.Header,
			Sortable:  c.Sortable,
			ClassName: c.ClassName,
		}
		if c.Key == t.sortKey {
			h.Sorted = true
			h.Direction = t.sortDirection
		}
		v.Columns = append(v.Columns, h)
	}

	if t.filterable {
		for _, c := range t.columns {
			v.Filter = append(v.Filter, FilterItem{
				Key:     c.Key,
				Header:  c.Header,
				Visible: t.visible.IsVisible(c.Key),
			})
		}
	}

	for _, row := range pageRows {
		rv := RowView{ID: row.ID(), Cells: make([]CellView, 0, len(columns))}
		for _, c := range columns {
			rv.Cells = append(rv.Cells, CellView{
				Key:         c.Key,
				Text:        c.CellText(row),
				ClassName:   c.ClassName,
				Interactive: c.Interactive,
			})
		}
		v.Rows = append(v.Rows, rv)
	}

	if len(v.Rows) == 0 {
		v.Empty = true
		v.EmptyMessage = t.emptyMessage
	}

	count := PageCount(len(sorted), t.itemsPerPage)
	v.Page = PageView{
		Current: t.currentPage,
		Count:   count,
		Window:  PageWindow(t.currentPage, count),
		HasPrev: t.currentPage > 1,
		HasNext: t.currentPage < count,
		Total:   len(sorted),
	}
	if len(pageRows) > 0 {
		v.Page.From = (t.currentPage-1)*t.itemsPerPage + 1
		v.Page.To = v.Page.From + len(pageRows) - 1
	}

	return v
}
