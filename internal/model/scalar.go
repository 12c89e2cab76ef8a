package model

import "github.com/planforge/calcengine/internal/value"

// Scalar is a named single value: an input when only Literal is set, a
// computed value when Formula is set, or both (in which case the computed
// value, once evaluate runs, replaces the literal).
type Scalar struct {
	Name    string
	Literal *float64 // optional literal number
	Formula string   // optional formula text; "" means none

	// Value holds the scalar's current value. It starts out as Num(*Literal)
	// (or Nil, if Literal is also unset) and is overwritten with the
	// computed result once the driver evaluates Formula, if any.
	Value value.Value
}

// NewLiteralScalar creates an input scalar with a fixed numeric value.
func NewLiteralScalar(name string, v float64) *Scalar {
	lit := v
	return &Scalar{Name: name, Literal: &lit, Value: value.Num(v)}
}

// NewFormulaScalar creates a computed scalar. Value is Nil until evaluate
// populates it.
func NewFormulaScalar(name, formula string) *Scalar {
	return &Scalar{Name: name, Formula: formula, Value: value.Nil}
}

// HasFormula reports whether the scalar is computed.
func (s *Scalar) HasFormula() bool { return s.Formula != "" }
