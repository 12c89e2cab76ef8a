package model

import (
	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/value"
)

// ColType enumerates the declared element type of a Column, matching the
// value kinds a spreadsheet-shaped column is allowed to hold.
type ColType int

const (
	NumberCol ColType = iota
	TextCol
	BooleanCol
	DateCol
)

func (t ColType) String() string {
	switch t {
	case NumberCol:
		return "number"
	case TextCol:
		return "text"
	case BooleanCol:
		return "boolean"
	case DateCol:
		return "date"
	default:
		return "unknown"
	}
}

// Column is an ordered, homogeneously-typed vector: one of Number([]f64),
// Text([]string), Boolean([]bool), or Date([]string, ISO-8601).
type Column struct {
	Name  string
	Type  ColType
	Nums  []float64
	Strs  []string
	Bools []bool
}

// NewNumberColumn builds a Number column.
func NewNumberColumn(name string, vals []float64) *Column {
	return &Column{Name: name, Type: NumberCol, Nums: vals}
}

// NewTextColumn builds a Text column.
func NewTextColumn(name string, vals []string) *Column {
	return &Column{Name: name, Type: TextCol, Strs: vals}
}

// NewBooleanColumn builds a Boolean column.
func NewBooleanColumn(name string, vals []bool) *Column {
	return &Column{Name: name, Type: BooleanCol, Bools: vals}
}

// NewDateColumn builds a Date column from ISO-8601 date strings.
func NewDateColumn(name string, vals []string) *Column {
	return &Column{Name: name, Type: DateCol, Strs: vals}
}

// NewColumnFromValues infers the element type from a slice of computed
// Values (all must share one kind) and builds the matching typed Column.
// Used when materializing a row-formula's output into a new column.
func NewColumnFromValues(name string, vals []value.Value) (*Column, error) {
	if len(vals) == 0 {
		return &Column{Name: name, Type: NumberCol}, nil
	}
	kind := vals[0].Kind()
	switch kind {
	case value.NumberKind:
		out := make([]float64, len(vals))
		for i, v := range vals {
			f, ok := v.AsNumber()
			if !ok {
				return nil, calcerr.Typef("row %d: expected number, got %s", i, v.TypeName())
			}
			out[i] = f
		}
		return NewNumberColumn(name, out), nil
	case value.BooleanKind:
		out := make([]bool, len(vals))
		for i, v := range vals {
			if v.Kind() != value.BooleanKind {
				return nil, calcerr.Typef("row %d: expected boolean, got %s", i, v.TypeName())
			}
			out[i] = v.RawBool()
		}
		return NewBooleanColumn(name, out), nil
	case value.DateKind:
		out := make([]string, len(vals))
		for i, v := range vals {
			if v.Kind() != value.DateKind {
				return nil, calcerr.Typef("row %d: expected date, got %s", i, v.TypeName())
			}
			out[i] = v.Str()
		}
		return NewDateColumn(name, out), nil
	default:
		out := make([]string, len(vals))
		for i, v := range vals {
			out[i] = valueAsDisplayText(v)
		}
		return NewTextColumn(name, out), nil
	}
}

func valueAsDisplayText(v value.Value) string {
	switch v.Kind() {
	case value.TextKind:
		return v.Str()
	case value.NumberKind:
		return value.FormatNumber(v.RawNum())
	case value.BooleanKind:
		if v.RawBool() {
			return "TRUE"
		}
		return "FALSE"
	case value.DateKind:
		return v.Str()
	default:
		return ""
	}
}

// Len returns the number of elements in the column.
func (c *Column) Len() int {
	switch c.Type {
	case NumberCol:
		return len(c.Nums)
	case BooleanCol:
		return len(c.Bools)
	default:
		return len(c.Strs)
	}
}

// At returns the i'th element as a Value.
func (c *Column) At(i int) (value.Value, error) {
	if i < 0 || i >= c.Len() {
		return value.Nil, calcerr.Domainf("index %d out of range for column %q (length %d)", i, c.Name, c.Len())
	}
	switch c.Type {
	case NumberCol:
		return value.Num(c.Nums[i]), nil
	case BooleanCol:
		return value.Bool(c.Bools[i]), nil
	case DateCol:
		return value.Date(c.Strs[i]), nil
	default:
		return value.Text(c.Strs[i]), nil
	}
}

// Values materializes the whole column as a []value.Value slice, used
// when an argument position wants the entire column rather than a
// per-row scalar.
func (c *Column) Values() []value.Value {
	n := c.Len()
	out := make([]value.Value, n)
	for i := 0; i < n; i++ {
		out[i], _ = c.At(i)
	}
	return out
}
