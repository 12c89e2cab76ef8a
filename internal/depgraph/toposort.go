package depgraph

import "github.com/planforge/calcengine/internal/resolve"

// Sort checks g for cycles and, if none are found, returns its nodes in a
// valid evaluation order: every node appears after everything it depends
// on. Ties (multiple nodes simultaneously ready) break by registration
// order, so the result is deterministic across runs for the same Model.
func Sort(g *Graph) ([]resolve.Key, error) {
	if err := detectCycle(g); err != nil {
		return nil, err
	}
	return kahn(g), nil
}

// kahn implements Kahn's algorithm. The ready set is scanned in g's
// registration order on every pass rather than held in a FIFO queue, so
// that when several nodes become ready at once the earliest-registered
// one is always emitted first.
func kahn(g *Graph) []resolve.Key {
	remaining := make(map[resolve.Key]int, len(g.order))
	dependents := make(map[resolve.Key][]resolve.Key, len(g.order))

	for _, key := range g.order {
		node := g.nodes[key]
		remaining[key] = len(node.DependsOn)
		for dep := range node.DependsOn {
			dependents[dep] = append(dependents[dep], key)
		}
	}

	var out []resolve.Key
	done := make(map[resolve.Key]bool, len(g.order))

	for len(out) < len(g.order) {
		progressed := false
		for _, key := range g.order {
			if done[key] || remaining[key] != 0 {
				continue
			}
			done[key] = true
			out = append(out, key)
			progressed = true
			for _, dep := range dependents[key] {
				remaining[dep]--
			}
		}
		if !progressed {
			break
		}
	}

	return out
}
