package sgfdata

import (
	"math"
)

// Table is a columnar view of a Block. Rows that lack a column hold a missing
// cell. A Table is a snapshot: later changes to the block are not reflected.
type Table struct {
	columns []string
	cells   map[string][]cell
	rows    int
}

type cell struct {
	v  Value
	ok bool
}

// NewTable materializes the columnar view of b. An absent block yields an
// empty table.
func NewTable(b *Block) *Table {
	t := &Table{cells: map[string][]cell{}, rows: b.Len()}
	t.columns = b.Keys()
	for _, c := range t.columns {
		t.cells[c] = make([]cell, t.rows)
	}
	if b == nil {
		return t
	}
	for i, r := range b.Records {
		for k, v := range r.All() {
			t.cells[k][i] = cell{v: v, ok: true}
		}
	}
	return t
}

// Rows returns the number of rows.
func (t *Table) Rows() int { return t.rows }

// Columns returns the column names in first-seen order.
func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }

// Has reports whether the column exists.
func (t *Table) Has(col string) bool {
	_, ok := t.cells[col]
	return ok
}

// Cell returns the value at row, col; false for missing cells.
func (t *Table) Cell(row int, col string) (Value, bool) {
	c, ok := t.cells[col]
	if !ok || row < 0 || row >= len(c) {
		return Value{}, false
	}
	return c[row].v, c[row].ok
}

// Numbers returns col as float64, with NaN for missing or non-numeric cells.
// A missing column yields nil.
func (t *Table) Numbers(col string) []float64 {
	c, ok := t.cells[col]
	if !ok {
		return nil
	}
	out := make([]float64, len(c))
	for i, x := range c {
		out[i] = math.NaN()
		if !x.ok {
			continue
		}
		if f, ok := x.v.Number(); ok {
			out[i] = f
		}
	}
	return out
}

// MaxAbs returns the largest absolute numeric value across cols. ok is false
// when none of the columns holds a number.
func (t *Table) MaxAbs(cols ...string) (m float64, ok bool) {
	for _, col := range cols {
		for _, f := range t.Numbers(col) {
			if math.IsNaN(f) {
				continue
			}
			if a := math.Abs(f); !ok || a > m {
				m, ok = a, true
			}
		}
	}
	return m, ok
}

// Last returns the last non-empty value of col.
func (t *Table) Last(col string) (Value, bool) {
	c := t.cells[col]
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].ok && !c[i].v.IsEmpty() {
			return c[i].v, true
		}
	}
	return Value{}, false
}
