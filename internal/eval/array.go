package eval

import (
	"sort"

	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/value"
)

func init() {
	register("SORT", func(_ *Context, a []value.Value) (value.Value, error) {
		items := append([]value.Value(nil), a[0].Items()...)
		descending := false
		if len(a) == 2 {
			order, err := num(a[1])
			if err != nil {
				return value.Nil, err
			}
			descending = order < 0
		}
		sort.SliceStable(items, func(i, j int) bool {
			lt, err := compare("<", items[i], items[j])
			if err != nil {
				return false
			}
			if descending {
				gt, _ := compare(">", items[i], items[j])
				return gt.RawBool()
			}
			return lt.RawBool()
		})
		return value.Arr(items), nil
	})
	register("UNIQUE", func(_ *Context, a []value.Value) (value.Value, error) {
		var out []value.Value
		seen := map[string]bool{}
		for _, v := range a[0].Items() {
			key := v.TypeName() + ":" + displayText(v)
			if !seen[key] {
				seen[key] = true
				out = append(out, v)
			}
		}
		return value.Arr(out), nil
	})
	register("FILTER", func(_ *Context, a []value.Value) (value.Value, error) {
		data := a[0].Items()
		mask := a[1].Items()
		if len(mask) != len(data) {
			return value.Nil, calcerr.Domainf("FILTER: include array must match data array length")
		}
		var out []value.Value
		for i, v := range data {
			if mask[i].IsTruthy() {
				out = append(out, v)
			}
		}
		return value.Arr(out), nil
	})
	register("SEQUENCE", func(_ *Context, a []value.Value) (value.Value, error) {
		n, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		start, err := optNum(a, 1, 1)
		if err != nil {
			return value.Nil, err
		}
		step, err := optNum(a, 2, 1)
		if err != nil {
			return value.Nil, err
		}
		if n < 0 {
			return value.Nil, calcerr.Domainf("SEQUENCE: count must be non-negative")
		}
		out := make([]value.Value, int(n))
		for i := range out {
			out[i] = value.Num(start + float64(i)*step)
		}
		return value.Arr(out), nil
	})
	register("COUNTUNIQUE", func(_ *Context, a []value.Value) (value.Value, error) {
		seen := map[string]bool{}
		for _, v := range flattenValues(a) {
			seen[v.TypeName()+":"+displayText(v)] = true
		}
		return value.Num(float64(len(seen))), nil
	})
}
