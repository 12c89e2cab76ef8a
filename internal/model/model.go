// Package model defines the document the formula engine operates on:
// scalars, tables of columns plus row-formulas, and the bookkeeping for
// cross-file includes.
//
// What: Model is the in-memory structure the external loader builds and
// the driver mutates in place, writing every formula's computed result
// back into the same Scalar/Column it was attached to.
// How: Scalars and Tables are held in OrderedMap containers so iteration
// always reflects insertion order (required for deterministic tie-breaks
// among formulas at the same dependency depth), mirroring the catalog
// this package's ancestor used to hold named tables.
// Why: A single mutable Model, rather than separate input/output
// documents, keeps the "submit a model, receive a model" contract in
// section 6 literal: the core never allocates a parallel result tree.
package model

// Include names a cross-file namespace the external loader has already
// resolved into a ResolvedModel. The core never resolves Path itself; it
// is opaque, carried only for diagnostics.
type Include struct {
	Namespace string
	Path      string
}

// ResolvedModel is the read-only, already-evaluated model backing one
// include namespace. The core never evaluates these; the external
// cross-file resolver is responsible for having already produced a fully
// computed Model for each include before the local evaluate() call.
type ResolvedModel struct {
	Scalars *OrderedMap[*Scalar]
	Tables  *OrderedMap[*Table]
}

// Model is the document evaluate() consumes and mutates in place.
type Model struct {
	Scalars          *OrderedMap[*Scalar]
	Tables           *OrderedMap[*Table]
	Includes         []Include
	ResolvedIncludes *OrderedMap[*ResolvedModel]
}

// New creates an empty Model ready to have scalars and tables added.
func New() *Model {
	return &Model{
		Scalars:          NewOrderedMap[*Scalar](),
		Tables:           NewOrderedMap[*Table](),
		ResolvedIncludes: NewOrderedMap[*ResolvedModel](),
	}
}

// AddScalar inserts or replaces a scalar.
func (m *Model) AddScalar(s *Scalar) { m.Scalars.Set(s.Name, s) }

// AddTable inserts or replaces a table.
func (m *Model) AddTable(t *Table) { m.Tables.Set(t.Name, t) }

// AddInclude registers a resolved cross-file namespace.
func (m *Model) AddInclude(inc Include, resolved *ResolvedModel) {
	m.Includes = append(m.Includes, inc)
	m.ResolvedIncludes.Set(inc.Namespace, resolved)
}
