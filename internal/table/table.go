// Package table provides a small column-addressed, null-aware table used to
// carry heterogeneous CSV extracts through the cleaning pipeline.
package table

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Cell is a nullable string value.
type Cell struct {
	Value string
	Valid bool
}

// Null returns a null cell.
func Null() Cell { return Cell{} }

// Of returns a non-null cell holding s.
func Of(s string) Cell { return Cell{Value: s, Valid: true} }

// String renders the cell, with null as the empty string.
func (c Cell) String() string {
	if !c.Valid {
		return ""
	}
	return c.Value
}

// Table is an ordered set of named columns over rows of cells.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Cell
}

// New creates an empty table with the given columns. Repeated names are
// ignored after their first occurrence.
func New(columns ...string) *Table {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		t.AddColumn(c)
	}
	return t
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Has reports whether the column exists.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Index returns the position of col.
func (t *Table) Index(col string) (int, bool) {
	i, ok := t.index[col]
	return i, ok
}

// AddColumn appends a column filled with nulls. It returns false if the
// column already exists.
func (t *Table) AddColumn(col string) bool {
	if t.Has(col) {
		return false
	}
	t.index[col] = len(t.columns)
	t.columns = append(t.columns, col)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], Null())
	}
	return true
}

// Append adds a row. Short rows are padded with nulls and long rows are
// truncated to the column count.
func (t *Table) Append(cells []Cell) {
	row := make([]Cell, len(t.columns))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Row returns the cells of row i. The slice is shared with the table.
func (t *Table) Row(i int) []Cell { return t.rows[i] }

// Get returns the cell at row i, column col. Unknown columns read as null.
func (t *Table) Get(i int, col string) Cell {
	j, ok := t.index[col]
	if !ok {
		return Null()
	}
	return t.rows[i][j]
}

// Set writes a cell, adding the column if needed.
func (t *Table) Set(i int, col string, c Cell) {
	t.AddColumn(col)
	t.rows[i][t.index[col]] = c
}

// Rename changes a column name in place.
func (t *Table) Rename(from, to string) error {
	j, ok := t.index[from]
	if !ok {
		return eris.Errorf("table: rename: unknown column %q", from)
	}
	if from == to {
		return nil
	}
	if t.Has(to) {
		return eris.Errorf("table: rename: column %q already exists", to)
	}
	delete(t.index, from)
	t.index[to] = j
	t.columns[j] = to
	return nil
}

// Drop removes a column if present.
func (t *Table) Drop(col string) {
	j, ok := t.index[col]
	if !ok {
		return
	}
	t.columns = append(t.columns[:j], t.columns[j+1:]...)
	for i, row := range t.rows {
		t.rows[i] = append(row[:j], row[j+1:]...)
	}
	t.reindex()
}

// Reorder moves the leading columns that exist to the front, in the given
// order, followed by the remaining columns in their current relative order.
func (t *Table) Reorder(leading []string) {
	order := make([]int, 0, len(t.columns))
	seen := make(map[int]bool, len(t.columns))
	for _, c := range leading {
		if j, ok := t.index[c]; ok && !seen[j] {
			order = append(order, j)
			seen[j] = true
		}
	}
	for j := range t.columns {
		if !seen[j] {
			order = append(order, j)
		}
	}

	cols := make([]string, len(order))
	for k, j := range order {
		cols[k] = t.columns[j]
	}
	for i, row := range t.rows {
		next := make([]Cell, len(order))
		for k, j := range order {
			next[k] = row[j]
		}
		t.rows[i] = next
	}
	t.columns = cols
	t.reindex()
}

// Filter keeps the rows for which keep returns true and returns how many
// rows were removed. Row order is preserved.
func (t *Table) Filter(keep func(row []Cell) bool) int {
	kept := t.rows[:0]
	for _, row := range t.rows {
		if keep(row) {
			kept = append(kept, row)
		}
	}
	removed := len(t.rows) - len(kept)
	for i := len(kept); i < len(t.rows); i++ {
		t.rows[i] = nil
	}
	t.rows = kept
	return removed
}

// Dedup removes rows identical across every column, keeping the first
// occurrence. It returns how many rows were removed.
func (t *Table) Dedup() int {
	seen := make(map[string]struct{}, len(t.rows))
	return t.Filter(func(row []Cell) bool {
		k := rowKey(row)
		if _, dup := seen[k]; dup {
			return false
		}
		seen[k] = struct{}{}
		return true
	})
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := New(t.columns...)
	out.rows = make([][]Cell, len(t.rows))
	for i, row := range t.rows {
		out.rows[i] = append([]Cell(nil), row...)
	}
	return out
}

// Concat stacks tables whose column sets may differ. The result carries the
// union of columns in first-encounter order; cells a table lacks are null.
func Concat(tables ...*Table) *Table {
	out := New()
	for _, t := range tables {
		for _, c := range t.columns {
			out.AddColumn(c)
		}
	}
	for _, t := range tables {
		pos := make([]int, len(t.columns))
		for j, c := range t.columns {
			pos[j] = out.index[c]
		}
		for _, row := range t.rows {
			next := make([]Cell, len(out.columns))
			for j, c := range row {
				next[pos[j]] = c
			}
			out.rows = append(out.rows, next)
		}
	}
	return out
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.columns))
	for j, c := range t.columns {
		t.index[c] = j
	}
}

// rowKey encodes a row so that null and empty string stay distinct. Values
// are length-prefixed, so no two different rows share a key.
func rowKey(row []Cell) string {
	var b strings.Builder
	for _, c := range row {
		if !c.Valid {
			b.WriteByte('-')
			continue
		}
		b.WriteString(strconv.Itoa(len(c.Value)))
		b.WriteByte(':')
		b.WriteString(c.Value)
	}
	return b.String()
}
