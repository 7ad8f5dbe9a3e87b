// Package table provides a small ordered-column in-memory table used by the
// transformation pipeline. Cells hold string, int64, float64, time.Time, or
// nil (null); a float64 NaN is the null representation for float columns
// after type enforcement.
package table

import (
	"math"
	"time"

	"github.com/rotisserie/eris"
)

// Table is a column-ordered collection of rows. Column order is significant:
// downstream writers and joins rely on it.
type Table struct {
	cols   []string
	colIdx map[string]int
	rows   [][]any
}

// New creates an empty table with the given column order.
func New(cols ...string) *Table {
	t := &Table{
		cols:   make([]string, len(cols)),
		colIdx: make(map[string]int, len(cols)),
	}
	copy(t.cols, cols)
	for i, c := range cols {
		t.colIdx[c] = i
	}
	return t
}

// Cols returns a copy of the column names in order.
func (t *Table) Cols() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// HasCol reports whether the table has a column with the given name.
func (t *Table) HasCol(name string) bool {
	_, ok := t.colIdx[name]
	return ok
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.cols)
}

// AppendRow appends a row. The number of values must match the column count.
func (t *Table) AppendRow(vals ...any) error {
	if len(vals) != len(t.cols) {
		return eris.Errorf("table: row has %d values, want %d", len(vals), len(t.cols))
	}
	row := make([]any, len(vals))
	copy(row, vals)
	t.rows = append(t.rows, row)
	return nil
}

// Get returns the cell at (row, col). Unknown columns and out-of-range rows
// read as nil.
func (t *Table) Get(row int, col string) any {
	idx, ok := t.colIdx[col]
	if !ok || row < 0 || row >= len(t.rows) {
		return nil
	}
	return t.rows[row][idx]
}

// Set writes the cell at (row, col). Unknown columns are ignored.
func (t *Table) Set(row int, col string, v any) {
	idx, ok := t.colIdx[col]
	if !ok || row < 0 || row >= len(t.rows) {
		return
	}
	t.rows[row][idx] = v
}

// Rename renames a column in place. Renaming to an existing name is an error.
func (t *Table) Rename(from, to string) error {
	idx, ok := t.colIdx[from]
	if !ok {
		return eris.Errorf("table: rename: no column %q", from)
	}
	if from == to {
		return nil
	}
	if _, exists := t.colIdx[to]; exists {
		return eris.Errorf("table: rename: column %q already exists", to)
	}
	t.cols[idx] = to
	delete(t.colIdx, from)
	t.colIdx[to] = idx
	return nil
}

// AddCol appends a column filled with the given value for every existing row.
// Adding an existing column overwrites its values.
func (t *Table) AddCol(name string, fill any) {
	if idx, ok := t.colIdx[name]; ok {
		for _, row := range t.rows {
			row[idx] = fill
		}
		return
	}
	t.colIdx[name] = len(t.cols)
	t.cols = append(t.cols, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], fill)
	}
}

// Drop removes a column if present.
func (t *Table) Drop(name string) {
	idx, ok := t.colIdx[name]
	if !ok {
		return
	}
	t.cols = append(t.cols[:idx], t.cols[idx+1:]...)
	for i, row := range t.rows {
		t.rows[i] = append(row[:idx], row[idx+1:]...)
	}
	delete(t.colIdx, name)
	for c, i := range t.colIdx {
		if i > idx {
			t.colIdx[c] = i - 1
		}
	}
}

// Select returns a new table containing only the named columns, in the given
// order. Requested columns missing from the table are skipped.
func (t *Table) Select(cols ...string) *Table {
	var keep []string
	for _, c := range cols {
		if t.HasCol(c) {
			keep = append(keep, c)
		}
	}
	out := New(keep...)
	for _, row := range t.rows {
		vals := make([]any, len(keep))
		for i, c := range keep {
			vals[i] = row[t.colIdx[c]]
		}
		out.rows = append(out.rows, vals)
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := New(t.cols...)
	out.rows = make([][]any, len(t.rows))
	for i, row := range t.rows {
		cp := make([]any, len(row))
		copy(cp, row)
		out.rows[i] = cp
	}
	return out
}

// Row returns a copy of the values of one row in column order.
func (t *Table) Row(i int) []any {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	out := make([]any, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// IsNull reports whether a cell holds the null representation: nil, or a
// float64 NaN.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	if f, ok := v.(float64); ok {
		return math.IsNaN(f)
	}
	return false
}

// AsString converts a cell to its string form. Null cells and non-string
// kinds report ok=false; numeric kinds are not stringified implicitly.
func AsString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// AsFloat converts a numeric cell to float64.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return 0, false
		}
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	}
	return 0, false
}

// AsInt converts a numeric cell to int64. Floats convert only when integral.
func AsInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
			return 0, false
		}
		return int64(x), true
	}
	return 0, false
}

// AsTime converts a cell to time.Time.
func AsTime(v any) (time.Time, bool) {
	ts, ok := v.(time.Time)
	return ts, ok
}
