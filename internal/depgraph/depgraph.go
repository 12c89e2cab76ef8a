// Package depgraph walks parsed formulas to discover which entities a
// formula depends on, assembles those edges into a dependency graph over
// the whole model, and orders the graph for evaluation.
//
// What: Dependencies collects the set of resolve.Key values one formula
// references; Build assembles every formula's dependencies into a Graph;
// Sort topologically orders that Graph, detecting cycles along the way.
// How: a plain recursive AST walk collects Ref/Index nodes (the only node
// shapes that can name another entity), resolving each through the same
// resolve.Resolve priority the evaluator uses, then Tarjan's algorithm
// finds strongly connected components and Kahn's algorithm produces the
// evaluation order — both classic graph-textbook algorithms, chosen
// because the model's entity count is small enough that their simplicity
// outweighs any asymptotic concern.
// Why: dependency analysis and evaluation must resolve names identically,
// or a formula could read a different cell than the one scheduled before
// it; sharing resolve.Resolve is what guarantees that.
package depgraph

import (
	"strings"

	"github.com/planforge/calcengine/internal/model"
	"github.com/planforge/calcengine/internal/parser"
	"github.com/planforge/calcengine/internal/resolve"
)

// Dependencies returns the set of entities expr references, resolved
// against m under scope. Duplicate references collapse to one entry.
func Dependencies(m *model.Model, scope resolve.Scope, expr parser.Expr) (map[resolve.Key]struct{}, error) {
	deps := make(map[resolve.Key]struct{})
	if err := walk(m, scope, expr, nil, deps); err != nil {
		return nil, err
	}
	return deps, nil
}

// locals tracks names bound by an enclosing LET call, which shadow any
// same-named scalar or column for the remainder of the expression.
func walk(m *model.Model, scope resolve.Scope, e parser.Expr, locals map[string]struct{}, deps map[resolve.Key]struct{}) error {
	switch n := e.(type) {
	case *parser.NumberLit, *parser.StringLit, *parser.BoolLit:
		return nil
	case *parser.Ref:
		if _, bound := locals[n.Name]; bound {
			return nil
		}
		key, err := resolve.Resolve(m, scope, n.Name)
		if err != nil {
			return err
		}
		deps[key] = struct{}{}
		return nil
	case *parser.Index:
		if _, bound := locals[n.Base.Name]; !bound {
			key, err := resolve.Resolve(m, scope, n.Base.Name)
			if err != nil {
				return err
			}
			deps[key] = struct{}{}
		}
		return walk(m, scope, n.Idx, locals, deps)
	case *parser.Unary:
		return walk(m, scope, n.X, locals, deps)
	case *parser.Binary:
		if err := walk(m, scope, n.L, locals, deps); err != nil {
			return err
		}
		return walk(m, scope, n.R, locals, deps)
	case *parser.Call:
		if isLet(n.Name) {
			return walkLet(m, scope, n, locals, deps)
		}
		for _, arg := range n.Args {
			if err := walk(m, scope, arg, locals, deps); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

func isLet(name string) bool {
	return strings.EqualFold(name, "LET")
}

// walkLet handles LET(name1, expr1, name2, expr2, ..., body): each nameI is
// a bare identifier bound to exprI (evaluated with the previously bound
// names in scope) and body is the final expression, evaluated with all of
// them bound. Bound names shadow same-named model entities.
func walkLet(m *model.Model, scope resolve.Scope, call *parser.Call, locals map[string]struct{}, deps map[resolve.Key]struct{}) error {
	if len(call.Args) < 3 || len(call.Args)%2 == 0 {
		return nil
	}
	bound := make(map[string]struct{}, len(locals)+len(call.Args)/2)
	for k := range locals {
		bound[k] = struct{}{}
	}
	pairs := len(call.Args) / 2
	for i := 0; i < pairs; i++ {
		nameArg, ok := call.Args[2*i].(*parser.Ref)
		if !ok {
			continue
		}
		if err := walk(m, scope, call.Args[2*i+1], bound, deps); err != nil {
			return err
		}
		bound[nameArg.Name] = struct{}{}
	}
	return walk(m, scope, call.Args[len(call.Args)-1], bound, deps)
}
