package domain

import (
	"fmt"
	"math"
	"time"
)

// Table is a generic, immutable-by-convention row set: the unit of exchange
// between the transforms, the store, and the validation engine. Cell values
// are restricted to nil, bool, int, int64, float64, string, and time.Time.
//
// Every materialization produces a fresh Table; nothing mutates a Table after
// its model has been written to the store.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// NewTable returns an empty Table with the given model name and column order.
func NewTable(name string, columns ...string) *Table {
	return &Table{Name: name, Columns: columns}
}

// Append adds one row. The number of values must match the column count;
// a mismatch is a programming error, so it panics rather than returning an
// error nobody checks.
func (t *Table) Append(values ...any) {
	if len(values) != len(t.Columns) {
		panic(fmt.Sprintf("domain.Table.Append: %s: got %d values for %d columns",
			t.Name, len(values), len(t.Columns)))
	}
	t.Rows = append(t.Rows, values)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of the named column, or -1 if absent.
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Value returns the cell at (row, column). It returns nil for an unknown
// column so validation rules can treat a missing column as all-null and fail
// through their normal violation path.
func (t *Table) Value(row int, column string) any {
	i := t.Index(column)
	if i < 0 {
		return nil
	}
	return t.Rows[row][i]
}

// Slice returns rows [offset, offset+limit) without copying cell data.
// Out-of-range bounds are clamped, so callers can pass raw pagination values.
func (t *Table) Slice(offset, limit int) [][]any {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(t.Rows) {
		return [][]any{}
	}
	end := offset + limit
	if limit <= 0 || end > len(t.Rows) {
		end = len(t.Rows)
	}
	return t.Rows[offset:end]
}

// --- cell coercion helpers --------------------------------------------------
//
// Decoders reading typed entities back out of a Table use these instead of
// bare type assertions so that int/int64 and nil/typed-nil differences never
// matter to callers.

// CellInt converts a cell to int. The second return is false for nil, a
// non-numeric cell, or a float with a fractional part.
func CellInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// CellFloat converts a cell to float64.
func CellFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// CellString converts a cell to string.
func CellString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// CellTime converts a cell to time.Time.
func CellTime(v any) (time.Time, bool) {
	ts, ok := v.(time.Time)
	return ts, ok
}

// CellBool converts a cell to bool.
func CellBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}
