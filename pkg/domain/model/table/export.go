package table

import (
	"encoding/csv"
	"io"

	"github.com/m-mizutani/goerr/v2"
)

// ErrNotExportable is returned by ExportCSV on tables without export enabled
var ErrNotExportable = goerr.New("table is not exportable")

// ExportCSV writes the filtered and sorted rows over the visible columns as
// CSV, with a header line of column headers. Cells use the rendered text.
func (t *Table) ExportCSV(w io.Writer) error {
	if !t.exportable {
		return ErrNotExportable
	}

	columns := t.visible.Apply(t.columns)
	cw := csv.NewWriter(w)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}
	if err := cw.Write(header); err != nil {
		return goerr.Wrap(err, "failed to write csv header")
	}

	for _, row := range t.Sorted() {
		record := make([]string, len(columns))
		for i, c := range columns {
			record[i] = c.CellText(row)
		}
		if err := cw.Write(record); err != nil {
			return goerr.Wrap(err, "failed to write csv record", goerr.V("id", row.ID()))
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return goerr.Wrap(err, "failed to flush csv")
	}
	return nil
}
