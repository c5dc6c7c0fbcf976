package table

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// WriteDelimited writes a header row followed by every row, rendering null
// cells as empty fields.
func WriteDelimited(w io.Writer, t *Table, delim rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim

	if err := cw.Write(t.columns); err != nil {
		return eris.Wrap(err, "table: write header")
	}
	rec := make([]string, len(t.columns))
	for _, row := range t.rows {
		for j, c := range row {
			rec[j] = c.String()
		}
		if err := cw.Write(rec); err != nil {
			return eris.Wrap(err, "table: write row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "table: flush")
}

// FromRecords builds a table from a header and string records. Empty fields
// become null.
func FromRecords(header []string, records [][]string) *Table {
	t := New(header...)
	for _, rec := range records {
		row := make([]Cell, len(rec))
		for j, v := range rec {
			if v != "" {
				row[j] = Of(v)
			}
		}
		t.Append(row)
	}
	return t
}
