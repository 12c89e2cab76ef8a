package model

import "github.com/planforge/calcengine/internal/calcerr"

// Table is a named collection of equal-length columns plus a set of
// row-formula entries that, once evaluated, become new columns.
type Table struct {
	Name        string
	Columns     *OrderedMap[*Column]
	RowFormulas *OrderedMap[string] // column name -> formula text
	rows        int
	rowsSet     bool
}

// NewTable creates an empty table with the given name.
func NewTable(name string) *Table {
	return &Table{
		Name:        name,
		Columns:     NewOrderedMap[*Column](),
		RowFormulas: NewOrderedMap[string](),
	}
}

// RowCount returns the table's row count, as fixed by the first column
// added.
func (t *Table) RowCount() int { return t.rows }

// AddColumn inserts col, enforcing invariant I1: every column in a table
// has the same length (the table's row count).
func (t *Table) AddColumn(col *Column) error {
	if !t.rowsSet {
		t.rows = col.Len()
		t.rowsSet = true
	} else if col.Len() != t.rows {
		return calcerr.Typef("column %q has length %d, table %q has row count %d", col.Name, col.Len(), t.Name, t.rows)
	}
	t.Columns.Set(col.Name, col)
	return nil
}

// AddRowFormula registers a row-formula under the given output column
// name. It does not evaluate the formula; that is the driver's job once
// dependency order has been established.
func (t *Table) AddRowFormula(name, formula string) {
	t.RowFormulas.Set(name, formula)
}
