package eval

import (
	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/value"
)

func init() {
	register("SUMIF", func(_ *Context, a []value.Value) (value.Value, error) {
		rng := a[0].Items()
		crit := parseCriterion(a[1])
		sumRange := rng
		if len(a) == 3 {
			sumRange = a[2].Items()
		}
		if len(sumRange) != len(rng) {
			return value.Nil, calcerr.Domainf("SUMIF: ranges must be equal length")
		}
		var sum float64
		for i, v := range rng {
			if crit.matches(v) {
				if f, ok := sumRange[i].AsNumber(); ok {
					sum += f
				}
			}
		}
		return value.Num(sum), nil
	})
	register("COUNTIF", func(_ *Context, a []value.Value) (value.Value, error) {
		rng := a[0].Items()
		crit := parseCriterion(a[1])
		n := 0
		for _, v := range rng {
			if crit.matches(v) {
				n++
			}
		}
		return value.Num(float64(n)), nil
	})
	register("AVERAGEIF", func(_ *Context, a []value.Value) (value.Value, error) {
		rng := a[0].Items()
		crit := parseCriterion(a[1])
		avgRange := rng
		if len(a) == 3 {
			avgRange = a[2].Items()
		}
		var sum float64
		var n int
		for i, v := range rng {
			if crit.matches(v) {
				if f, ok := avgRange[i].AsNumber(); ok {
					sum += f
					n++
				}
			}
		}
		if n == 0 {
			return value.Nil, calcerr.DivZerof("AVERAGEIF: no matching values")
		}
		return value.Num(sum / float64(n)), nil
	})
	register("SUMIFS", ifsAggregate(func(acc *float64, v value.Value) {
		if f, ok := v.AsNumber(); ok {
			*acc += f
		}
	}))
	register("COUNTIFS", func(_ *Context, a []value.Value) (value.Value, error) {
		n, err := countIfsMatches(a)
		if err != nil {
			return value.Nil, err
		}
		return value.Num(float64(n)), nil
	})
	register("AVERAGEIFS", func(_ *Context, a []value.Value) (value.Value, error) {
		if len(a) < 3 || len(a)%2 != 1 {
			return value.Nil, calcerr.Arityf("AVERAGEIFS expects sum_range, range, criteria, ... in triples")
		}
		sumRange := a[0].Items()
		var sum float64
		var n int
		matchRows(a[1:], func(i int) {
			if f, ok := sumRange[i].AsNumber(); ok {
				sum += f
				n++
			}
		})
		if n == 0 {
			return value.Nil, calcerr.DivZerof("AVERAGEIFS: no matching rows")
		}
		return value.Num(sum / float64(n)), nil
	})
	register("MAXIFS", extremeIfs(func(cur, cand float64) bool { return cand > cur }))
	register("MINIFS", extremeIfs(func(cur, cand float64) bool { return cand < cur }))
}

// matchRows walks pairs[0]=range1, pairs[1]=criteria1, pairs[2]=range2,
// pairs[3]=criteria2, ... and calls fn(rowIndex) for every row index that
// satisfies every criteria pair simultaneously.
func matchRows(pairs []value.Value, fn func(i int)) {
	if len(pairs) < 2 || len(pairs)%2 != 0 {
		return
	}
	n := len(pairs[0].Items())
	pairCount := len(pairs) / 2
	crits := make([]criterion, pairCount)
	ranges := make([][]value.Value, pairCount)
	for p := 0; p < pairCount; p++ {
		ranges[p] = pairs[2*p].Items()
		crits[p] = parseCriterion(pairs[2*p+1])
	}
	for i := 0; i < n; i++ {
		ok := true
		for p := 0; p < pairCount; p++ {
			if i >= len(ranges[p]) || !crits[p].matches(ranges[p][i]) {
				ok = false
				break
			}
		}
		if ok {
			fn(i)
		}
	}
}

func countIfsMatches(a []value.Value) (int, error) {
	if len(a) < 2 || len(a)%2 != 0 {
		return 0, calcerr.Arityf("COUNTIFS expects range, criteria pairs")
	}
	n := 0
	matchRows(a, func(int) { n++ })
	return n, nil
}

// ifsAggregate builds a SUMIFS-style handler: a[0] is the value range,
// a[1:] are range/criteria pairs, and accumulate folds every matching
// row's value range element into the running total via fold.
func ifsAggregate(fold func(acc *float64, v value.Value)) builtin {
	return func(_ *Context, a []value.Value) (value.Value, error) {
		if len(a) < 3 || len(a)%2 != 1 {
			return value.Nil, calcerr.Arityf("expects sum_range, range, criteria, ... in triples")
		}
		valueRange := a[0].Items()
		var acc float64
		matchRows(a[1:], func(i int) {
			if i < len(valueRange) {
				fold(&acc, valueRange[i])
			}
		})
		return value.Num(acc), nil
	}
}

// extremeIfs builds a MAXIFS/MINIFS-style handler: a[0] is the value
// range, a[1:] are range/criteria pairs, and better(cur, candidate)
// reports whether candidate should replace the running extreme.
func extremeIfs(better func(cur, cand float64) bool) builtin {
	return func(_ *Context, a []value.Value) (value.Value, error) {
		if len(a) < 3 || len(a)%2 != 1 {
			return value.Nil, calcerr.Arityf("expects value_range, range, criteria, ... in triples")
		}
		valueRange := a[0].Items()
		found := false
		var best float64
		matchRows(a[1:], func(i int) {
			if i >= len(valueRange) {
				return
			}
			f, ok := valueRange[i].AsNumber()
			if !ok {
				return
			}
			if !found || better(best, f) {
				best = f
				found = true
			}
		})
		if !found {
			return value.Num(0), nil
		}
		return value.Num(best), nil
	}
}
