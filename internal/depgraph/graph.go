package depgraph

import (
	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/model"
	"github.com/planforge/calcengine/internal/parser"
	"github.com/planforge/calcengine/internal/resolve"
)

// Node is one entity in the graph: its Key, whether it has a formula to
// evaluate at all (literal scalars and data columns do not), and the set
// of entities it depends on.
type Node struct {
	Key       resolve.Key
	Formula   string
	HasExpr   bool
	DependsOn map[resolve.Key]struct{}
}

// Graph is the full set of entities in a Model plus their dependency
// edges, in the order the entities were first registered.
type Graph struct {
	order []resolve.Key
	nodes map[resolve.Key]*Node
}

func newGraph() *Graph {
	return &Graph{nodes: make(map[resolve.Key]*Node)}
}

func (g *Graph) add(n *Node) {
	if _, exists := g.nodes[n.Key]; !exists {
		g.order = append(g.order, n.Key)
	}
	g.nodes[n.Key] = n
}

// Node returns the node for key, if present.
func (g *Graph) Node(key resolve.Key) (*Node, bool) {
	n, ok := g.nodes[key]
	return n, ok
}

// Keys returns every node's Key in registration order.
func (g *Graph) Keys() []resolve.Key { return g.order }

// Build walks every formula in m, parsing it via parse, and assembles a
// Graph over every scalar and column (formula-bearing or not). Literal
// scalars and data columns become dependency-free leaf nodes so lookups
// against them never fail.
func Build(m *model.Model, parse func(formula string) (parser.Expr, error)) (*Graph, error) {
	g := newGraph()

	m.Scalars.Range(func(_ string, s *model.Scalar) bool {
		key := resolve.Key{Kind: resolve.KindScalar, Scalar: s.Name}
		g.add(&Node{Key: key, Formula: s.Formula, HasExpr: s.HasFormula()})
		return true
	})

	m.Tables.Range(func(_ string, t *model.Table) bool {
		t.Columns.Range(func(colName string, _ *model.Column) bool {
			key := resolve.Key{Kind: resolve.KindColumn, Table: t.Name, Column: colName}
			g.add(&Node{Key: key})
			return true
		})
		t.RowFormulas.Range(func(colName string, formula string) bool {
			key := resolve.Key{Kind: resolve.KindColumn, Table: t.Name, Column: colName}
			g.add(&Node{Key: key, Formula: formula, HasExpr: true})
			return true
		})
		return true
	})

	// Every entity in a resolved include is already computed by the
	// external cross-file resolver (see model.ResolvedModel's doc comment),
	// so each becomes a dependency-free leaf node here, keyed exactly the
	// way resolve.resolveInIncluded names it, so cross-namespace references
	// resolve to a node that actually exists in the graph instead of a Key
	// with no backing entry.
	m.ResolvedIncludes.Range(func(ns string, rm *model.ResolvedModel) bool {
		rm.Scalars.Range(func(name string, _ *model.Scalar) bool {
			key := resolve.Key{Kind: resolve.KindScalar, Scalar: ns + "." + name}
			g.add(&Node{Key: key})
			return true
		})
		rm.Tables.Range(func(tblName string, t *model.Table) bool {
			t.Columns.Range(func(colName string, _ *model.Column) bool {
				key := resolve.Key{Kind: resolve.KindColumn, Table: ns + "." + tblName, Column: colName}
				g.add(&Node{Key: key})
				return true
			})
			return true
		})
		return true
	})

	for _, key := range g.order {
		n := g.nodes[key]
		if !n.HasExpr {
			n.DependsOn = map[resolve.Key]struct{}{}
			continue
		}
		expr, err := parse(n.Formula)
		if err != nil {
			return nil, calcerr.Parsef(0, "%s: %v", key.Name(), err).WithEntity(key.Name())
		}
		scope := resolve.Scope{}
		if key.Kind == resolve.KindColumn {
			scope.Table = key.Table
		}
		deps, err := Dependencies(m, scope, expr)
		if err != nil {
			if ce, ok := calcerr.As(err); ok {
				return nil, ce.WithEntity(key.Name())
			}
			return nil, err
		}
		n.DependsOn = deps
	}

	return g, nil
}

// Transitive returns every entity start depends on, directly or
// indirectly, in the order Sort would evaluate them in — dependencies
// before dependents. start itself is never included. This is the walk
// `calcctl audit` drives to print each of a variable's dependencies
// alongside its current value.
func Transitive(g *Graph, start resolve.Key) ([]resolve.Key, error) {
	order, err := Sort(g)
	if err != nil {
		return nil, err
	}

	visited := make(map[resolve.Key]bool)
	var walk func(resolve.Key)
	walk = func(k resolve.Key) {
		n, ok := g.nodes[k]
		if !ok {
			return
		}
		for dep := range n.DependsOn {
			if !visited[dep] {
				visited[dep] = true
				walk(dep)
			}
		}
	}
	walk(start)

	out := make([]resolve.Key, 0, len(visited))
	for _, key := range order {
		if visited[key] {
			out = append(out, key)
		}
	}
	return out, nil
}
