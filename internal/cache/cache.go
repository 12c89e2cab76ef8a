// Package cache memoizes formula parsing: the same formula text, attached
// to many rows of a table's row-formula, is parsed exactly once.
//
// What: FormulaCache maps formula text to its parsed Expr, with an LRU
// eviction policy bounding memory use on documents with many distinct
// formulas.
// How: a map[string]*list.Element over a container/list.List holding the
// most-recently-used entry at the front, the same structure this
// package's ancestor used for its query plan cache — here caching a
// parsed expression tree instead of a compiled query plan.
// Why: dependency analysis and evaluation both need the same formula's
// AST (once to collect references, once to evaluate); parsing is pure
// given the formula text, so caching by text avoids doing it twice per
// formula without the caller having to thread the parsed tree through
// itself.
package cache

import (
	"container/list"
	"sync"

	"github.com/planforge/calcengine/internal/parser"
)

// DefaultCapacity bounds how many distinct formula texts stay cached
// before the least-recently-used entry is evicted.
const DefaultCapacity = 4096

type entry struct {
	formula string
	expr    parser.Expr
	err     error
}

// FormulaCache is a thread-safe LRU cache from formula text to its parsed
// expression (or parse error).
type FormulaCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	index    map[string]*list.Element
}

// New creates a FormulaCache with the given capacity. A non-positive
// capacity falls back to DefaultCapacity.
func New(capacity int) *FormulaCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &FormulaCache{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[string]*list.Element),
	}
}

// Parse returns the parsed Expr for formula, parsing and caching it on
// first use. A cached parse error is returned again without re-parsing.
func (c *FormulaCache) Parse(formula string) (parser.Expr, error) {
	c.mu.Lock()
	if elem, ok := c.index[formula]; ok {
		c.order.MoveToFront(elem)
		e := elem.Value.(*entry)
		c.mu.Unlock()
		return e.expr, e.err
	}
	c.mu.Unlock()

	expr, err := parser.Parse(formula)

	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.index[formula]; ok {
		c.order.MoveToFront(elem)
		e := elem.Value.(*entry)
		return e.expr, e.err
	}
	elem := c.order.PushFront(&entry{formula: formula, expr: expr, err: err})
	c.index[formula] = elem
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.index, oldest.Value.(*entry).formula)
		}
	}
	return expr, err
}

// Len reports the number of distinct formulas currently cached.
func (c *FormulaCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
