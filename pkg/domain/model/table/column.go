package table

import "github.com/m-mizutani/goerr/v2"

// Column describes how one field of a row is extracted, rendered and sorted
type Column struct {
	// Key is a dotted path into the row. It must be unique within a table.
	Key    string
	Header string
	// Render overrides the default text of a cell. Sorting still uses the raw value.
	Render    func(Row) string
	Sortable  bool
	ClassName string
	// Interactive marks cells that host their own controls. Clicks on them never
	// trigger the row click handler.
	Interactive bool
}

// CellText returns the rendered text of the column for row
func (c Column) CellText(row Row) string {
	if c.Render != nil {
		return c.Render(row)
	}
	return Stringify(Lookup(row, c.Key))
}

func validateColumns(columns []Column) error {
	if len(columns) == 0 {
		return goerr.New("table requires at least one column")
	}
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if c.Key == "" {
			return goerr.New("column key is empty", goerr.V("header", c.Header))
		}
		if _, ok := seen[c.Key]; ok {
			return goerr.New("duplicate column key", goerr.V("key", c.Key))
		}
		seen[c.Key] = struct{}{}
	}
	return nil
}
