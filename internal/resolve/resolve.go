// Package resolve implements the single name-resolution algorithm every
// other component defers to: turning a formula-text name like "revenue"
// or "products.price" into a canonical reference against a Model.
//
// What: one Resolve function, used identically by the dependency analyzer
// (to build graph edges) and the evaluator (to fetch values), so the two
// can never disagree about what a name means.
// How: the four-step lookup priority from the data model section: exact
// scalar name, then table.column, then (when evaluating a row-formula)
// sibling column in the enclosing table, then cross-namespace include
// prefix.
// Why: per-name resolution order is a deliberate design decision, not an
// accident of map iteration; centralizing it means the order is
// documented and tested in exactly one place.
package resolve

import (
	"strings"

	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/model"
)

// KeyKind tags which shape of entity a Key names.
type KeyKind int

const (
	KindScalar KeyKind = iota
	KindColumn
	KindTable
)

// Key is the canonical identifier an entity is known by throughout the
// dependency graph and the evaluation context.
type Key struct {
	Kind   KeyKind
	Scalar string
	Table  string
	Column string
}

// Name renders the Key the way error messages and cycle reports display
// entity names.
func (k Key) Name() string {
	switch k.Kind {
	case KindScalar:
		return k.Scalar
	case KindColumn:
		return k.Table + "." + k.Column
	default:
		return k.Table
	}
}

// Scope describes what is enclosing the expression being resolved: either
// nothing (a top-level scalar formula) or a table (a row-formula, which
// additionally allows bare sibling-column references).
type Scope struct {
	Table string // "" when resolving a scalar formula
}

// Resolve applies the four-step lookup priority to name within m, given
// the enclosing scope.
func Resolve(m *model.Model, scope Scope, name string) (Key, error) {
	// 1. exact scalar-name match.
	if m.Scalars.Has(name) {
		return Key{Kind: KindScalar, Scalar: name}, nil
	}

	dot := strings.IndexByte(name, '.')

	// 2. table.column match.
	if dot >= 0 {
		tblName, col := name[:dot], name[dot+1:]
		if t, ok := m.Tables.Get(tblName); ok {
			if t.Columns.Has(col) || t.RowFormulas.Has(col) {
				return Key{Kind: KindColumn, Table: tblName, Column: col}, nil
			}
		}
	}

	// 3. bare sibling column in the enclosing table, when evaluating a
	// row-formula.
	if dot < 0 && scope.Table != "" {
		if t, ok := m.Tables.Get(scope.Table); ok {
			if t.Columns.Has(name) || t.RowFormulas.Has(name) {
				return Key{Kind: KindColumn, Table: scope.Table, Column: name}, nil
			}
		}
	}

	// 4. cross-namespace reference via a resolved include prefix.
	if dot >= 0 {
		ns, rest := name[:dot], name[dot+1:]
		if rm, ok := m.ResolvedIncludes.Get(ns); ok {
			return resolveInIncluded(rm, ns, rest)
		}
	}

	return Key{}, calcerr.Referencef("unresolved reference %q", name)
}

// resolveInIncluded resolves rest against an already-computed included
// model, tagging the resulting Key with the include namespace so callers
// can tell an included entity from a local one if they need to.
func resolveInIncluded(rm *model.ResolvedModel, ns, rest string) (Key, error) {
	if rm.Scalars.Has(rest) {
		return Key{Kind: KindScalar, Scalar: ns + "." + rest}, nil
	}
	if dot := strings.IndexByte(rest, '.'); dot >= 0 {
		tblName, col := rest[:dot], rest[dot+1:]
		if t, ok := rm.Tables.Get(tblName); ok {
			if t.Columns.Has(col) {
				return Key{Kind: KindColumn, Table: ns + "." + tblName, Column: col}, nil
			}
		}
	}
	return Key{}, calcerr.Referencef("unresolved cross-file reference %q.%q", ns, rest)
}
