// Package calcengine provides a declarative, dependency-ordered formula
// evaluator: attach formula text to named scalars and table columns,
// call Evaluate, and every formula's computed value is written back into
// the same Model.
//
// # Basic usage
//
//	m := calcengine.NewModel()
//	m.AddScalar(calcengine.NewLiteralScalar("rate", 0.05))
//	m.AddScalar(calcengine.NewFormulaScalar("total", "principal * (1 + rate)"))
//	m.AddScalar(calcengine.NewLiteralScalar("principal", 1000))
//
//	if err := calcengine.Evaluate(context.Background(), m); err != nil {
//	    var ce *calcengine.Error
//	    if errors.As(err, &ce) {
//	        log.Printf("%s failed in %q: %s", ce.Kind, ce.Entity, ce.Message)
//	    }
//	}
//	total, _ := m.Scalars.Get("total")
//	fmt.Println(total.Value) // -> 1050
//
// # Row-formulas
//
// A Table's row-formulas are evaluated once per row, with bare column
// names inside the formula broadcasting to the current row; functions
// whose arguments are declared array-typed (SUM, AVERAGE, SUMIF, ...)
// instead see the whole column regardless of row.
//
// # Cross-file includes
//
// Evaluate never resolves an Include itself: the caller is responsible
// for having already evaluated each included file into a ResolvedModel
// and registering it via Model.AddInclude before calling Evaluate.
package calcengine

import (
	"context"

	"github.com/planforge/calcengine/internal/cache"
	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/depgraph"
	"github.com/planforge/calcengine/internal/eval"
	"github.com/planforge/calcengine/internal/model"
	"github.com/planforge/calcengine/internal/resolve"
	"github.com/planforge/calcengine/internal/runid"
	"github.com/planforge/calcengine/internal/value"
)

// Re-exported types so callers depend only on the root package.
type (
	Model         = model.Model
	Scalar        = model.Scalar
	Table         = model.Table
	Column        = model.Column
	Include       = model.Include
	ResolvedModel = model.ResolvedModel
	Value         = value.Value
	Error         = calcerr.Error
)

// Re-exported constructors.
var (
	NewModel            = model.New
	NewLiteralScalar    = model.NewLiteralScalar
	NewFormulaScalar    = model.NewFormulaScalar
	NewTable            = model.NewTable
	NewNumberColumn     = model.NewNumberColumn
	NewTextColumn       = model.NewTextColumn
	NewBooleanColumn    = model.NewBooleanColumn
	NewDateColumn       = model.NewDateColumn
	NewColumnFromValues = model.NewColumnFromValues
)

// sharedCache memoizes formula parsing across every Evaluate call made by
// this process; formula text is immutable once written, so there is no
// reason to re-parse it between runs over different models.
var sharedCache = cache.New(cache.DefaultCapacity)

// Evaluate computes every formula-bearing scalar and table column in m,
// in dependency order, writing each result back into m. It returns the
// first structured *Error encountered (Parse, Reference, Cycle, Arity,
// Type, Domain, DivZero). Errors from a single entity's formula are tagged
// with the owning entity's name; a Cycle error carries no single entity
// and lists the participating entities in its Cycle field instead.
//
// ctx is consulted for cancellation between entities; once ctx.Done() has
// fired, Evaluate stops and returns a Cancelled error as soon as it
// notices, rather than finishing the remaining entities.
func Evaluate(ctx context.Context, m *model.Model) error {
	graph, err := depgraph.Build(m, sharedCache.Parse)
	if err != nil {
		return err
	}
	order, err := depgraph.Sort(graph)
	if err != nil {
		return err
	}
	for _, key := range order {
		select {
		case <-ctx.Done():
			return calcerr.Cancelledf("evaluation cancelled").WithEntity(key.Name())
		default:
		}
		node, _ := graph.Node(key)
		if !node.HasExpr {
			continue
		}
		if err := evaluateNode(ctx, m, sharedCache, key, node.Formula); err != nil {
			if ce, ok := calcerr.As(err); ok {
				return ce.WithEntity(key.Name())
			}
			return err
		}
	}
	return nil
}

func evaluateNode(ctx context.Context, m *model.Model, c *cache.FormulaCache, key resolve.Key, formula string) error {
	expr, err := c.Parse(formula)
	if err != nil {
		return err
	}

	if key.Kind == resolve.KindScalar {
		evalCtx := eval.NewScalarContext(m, ctx.Done())
		v, err := eval.Eval(evalCtx, expr)
		if err != nil {
			return err
		}
		s, _ := m.Scalars.Get(key.Scalar)
		s.Value = v
		return nil
	}

	t, ok := m.Tables.Get(key.Table)
	if !ok {
		return calcerr.Referencef("unknown table %q", key.Table)
	}
	rows := t.RowCount()
	values := make([]value.Value, rows)
	for row := 0; row < rows; row++ {
		evalCtx := eval.NewRowContext(m, key.Table, row, ctx.Done())
		v, err := eval.Eval(evalCtx, expr)
		if err != nil {
			return err
		}
		values[row] = v
	}
	col, err := model.NewColumnFromValues(key.Column, values)
	if err != nil {
		return err
	}
	return t.AddColumn(col)
}

// NewRunID returns a fresh opaque identifier suitable for tagging one
// Evaluate call's logs and audit trail.
func NewRunID() string { return runid.New() }

// Dependencies returns the name of every entity name transitively depends
// on — its formula's direct references, and theirs, and so on — in the
// order Evaluate would have computed them in. m must already have been
// evaluated (or at least built without a cycle) for the returned values
// to be meaningful; this only walks the graph, it does not evaluate
// anything itself. This is what the audit command uses to print each of a
// variable's dependencies alongside its current value.
func Dependencies(m *model.Model, name string) ([]string, error) {
	graph, err := depgraph.Build(m, sharedCache.Parse)
	if err != nil {
		return nil, err
	}
	key, err := resolve.Resolve(m, resolve.Scope{}, name)
	if err != nil {
		return nil, err
	}
	keys, err := depgraph.Transitive(graph, key)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Name()
	}
	return names, nil
}
