package depgraph

import (
	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/resolve"
)

// detectCycle runs Tarjan's strongly-connected-components algorithm over
// g and reports the first component (in Graph registration order) whose
// size exceeds one, or whose single member depends on itself, as a
// calcerr.Cycle error. A nil return means the graph is acyclic.
func detectCycle(g *Graph) error {
	t := &tarjan{
		g:     g,
		index: make(map[resolve.Key]int),
		low:   make(map[resolve.Key]int),
		onStk: make(map[resolve.Key]bool),
	}
	for _, key := range g.order {
		if _, seen := t.index[key]; !seen {
			if err := t.connect(key); err != nil {
				return err
			}
		}
	}
	return nil
}

type tarjan struct {
	g       *Graph
	index   map[resolve.Key]int
	low     map[resolve.Key]int
	onStk   map[resolve.Key]bool
	stack   []resolve.Key
	counter int
}

func (t *tarjan) connect(v resolve.Key) error {
	t.index[v] = t.counter
	t.low[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStk[v] = true

	// A dependency key that names no registered node (one that failed to
	// resolve to a real entity) is treated as a dependency-free leaf here
	// rather than dereferencing a nil *Node.
	var deps map[resolve.Key]struct{}
	if node, ok := t.g.nodes[v]; ok {
		deps = node.DependsOn
	}
	for dep := range deps {
		if _, seen := t.index[dep]; !seen {
			if err := t.connect(dep); err != nil {
				return err
			}
			if t.low[dep] < t.low[v] {
				t.low[v] = t.low[dep]
			}
		} else if t.onStk[dep] {
			if t.index[dep] < t.low[v] {
				t.low[v] = t.index[dep]
			}
		}
	}

	if t.low[v] != t.index[v] {
		return nil
	}

	var scc []resolve.Key
	for {
		n := len(t.stack) - 1
		top := t.stack[n]
		t.stack = t.stack[:n]
		t.onStk[top] = false
		scc = append(scc, top)
		if top == v {
			break
		}
	}

	selfEdge := false
	if node, ok := t.g.nodes[scc[0]]; ok {
		_, selfEdge = node.DependsOn[scc[0]]
	}
	if len(scc) > 1 || (len(scc) == 1 && selfEdge) {
		return calcerr.Cyclef(namesInRegistrationOrder(t.g, scc))
	}
	return nil
}

// namesInRegistrationOrder re-sorts an SCC's members into the order they
// were first added to the graph, so cycle error messages are stable
// across runs regardless of Tarjan's internal stack order.
func namesInRegistrationOrder(g *Graph, scc []resolve.Key) []string {
	set := make(map[resolve.Key]bool, len(scc))
	for _, k := range scc {
		set[k] = true
	}
	names := make([]string, 0, len(scc))
	for _, key := range g.order {
		if set[key] {
			names = append(names, key.Name())
		}
	}
	return names
}
