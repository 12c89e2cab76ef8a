package eval

import (
	"math"
	"sort"

	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/value"
)

func mean(nums []float64) float64 {
	if len(nums) == 0 {
		return 0
	}
	var sum float64
	for _, n := range nums {
		sum += n
	}
	return sum / float64(len(nums))
}

func variance(nums []float64, population bool) (float64, error) {
	n := len(nums)
	if n < 2 && !population {
		return 0, calcerr.Domainf("need at least 2 values, got %d", n)
	}
	if n == 0 {
		return 0, calcerr.Domainf("need at least 1 value")
	}
	m := mean(nums)
	var sq float64
	for _, x := range nums {
		d := x - m
		sq += d * d
	}
	denom := float64(n)
	if !population {
		denom = float64(n - 1)
	}
	return sq / denom, nil
}

func sortedCopy(nums []float64) []float64 {
	out := append([]float64(nil), nums...)
	sort.Float64s(out)
	return out
}

func init() {
	register("SUM", func(_ *Context, a []value.Value) (value.Value, error) {
		var sum float64
		for _, f := range flattenNumbers(a) {
			sum += f
		}
		return value.Num(sum), nil
	})
	register("AVERAGE", func(_ *Context, a []value.Value) (value.Value, error) {
		nums := flattenNumbers(a)
		if len(nums) == 0 {
			return value.Nil, calcerr.DivZerof("AVERAGE of zero values")
		}
		return value.Num(mean(nums)), nil
	})
	register("MIN", func(_ *Context, a []value.Value) (value.Value, error) {
		nums := flattenNumbers(a)
		if len(nums) == 0 {
			return value.Num(0), nil
		}
		m := nums[0]
		for _, f := range nums[1:] {
			if f < m {
				m = f
			}
		}
		return value.Num(m), nil
	})
	register("MAX", func(_ *Context, a []value.Value) (value.Value, error) {
		nums := flattenNumbers(a)
		if len(nums) == 0 {
			return value.Num(0), nil
		}
		m := nums[0]
		for _, f := range nums[1:] {
			if f > m {
				m = f
			}
		}
		return value.Num(m), nil
	})
	register("COUNT", func(_ *Context, a []value.Value) (value.Value, error) {
		return value.Num(float64(len(flattenNumbers(a)))), nil
	})
	register("COUNTA", func(_ *Context, a []value.Value) (value.Value, error) {
		n := 0
		for _, v := range flattenValues(a) {
			if v.Kind() != value.Empty {
				n++
			}
		}
		return value.Num(float64(n)), nil
	})
	register("PRODUCT", func(_ *Context, a []value.Value) (value.Value, error) {
		nums := flattenNumbers(a)
		p := 1.0
		for _, f := range nums {
			p *= f
		}
		return value.Num(p), nil
	})
	register("MEDIAN", func(_ *Context, a []value.Value) (value.Value, error) {
		nums := sortedCopy(flattenNumbers(a))
		if len(nums) == 0 {
			return value.Nil, calcerr.Domainf("MEDIAN of zero values")
		}
		mid := len(nums) / 2
		if len(nums)%2 == 1 {
			return value.Num(nums[mid]), nil
		}
		return value.Num((nums[mid-1] + nums[mid]) / 2), nil
	})
	register("STDEV", func(_ *Context, a []value.Value) (value.Value, error) {
		v, err := variance(flattenNumbers(a), false)
		if err != nil {
			return value.Nil, err
		}
		return value.Num(math.Sqrt(v)), nil
	})
	register("STDEVP", func(_ *Context, a []value.Value) (value.Value, error) {
		v, err := variance(flattenNumbers(a), true)
		if err != nil {
			return value.Nil, err
		}
		return value.Num(math.Sqrt(v)), nil
	})
	register("VAR", func(_ *Context, a []value.Value) (value.Value, error) {
		v, err := variance(flattenNumbers(a), false)
		if err != nil {
			return value.Nil, err
		}
		return value.Num(v), nil
	})
	register("VARP", func(_ *Context, a []value.Value) (value.Value, error) {
		v, err := variance(flattenNumbers(a), true)
		if err != nil {
			return value.Nil, err
		}
		return value.Num(v), nil
	})
	register("LARGE", func(_ *Context, a []value.Value) (value.Value, error) {
		nums := sortedCopy(flattenNumbers([]value.Value{a[0]}))
		k, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		idx := len(nums) - int(k)
		if idx < 0 || idx >= len(nums) {
			return value.Nil, calcerr.Domainf("LARGE: k=%g out of range for %d values", k, len(nums))
		}
		return value.Num(nums[idx]), nil
	})
	register("SMALL", func(_ *Context, a []value.Value) (value.Value, error) {
		nums := sortedCopy(flattenNumbers([]value.Value{a[0]}))
		k, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		idx := int(k) - 1
		if idx < 0 || idx >= len(nums) {
			return value.Nil, calcerr.Domainf("SMALL: k=%g out of range for %d values", k, len(nums))
		}
		return value.Num(nums[idx]), nil
	})
	register("PERCENTILE", func(_ *Context, a []value.Value) (value.Value, error) {
		nums := sortedCopy(flattenNumbers([]value.Value{a[0]}))
		p, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		if len(nums) == 0 || p < 0 || p > 1 {
			return value.Nil, calcerr.Domainf("PERCENTILE: invalid arguments")
		}
		return value.Num(percentile(nums, p)), nil
	})
	register("QUARTILE", func(_ *Context, a []value.Value) (value.Value, error) {
		nums := sortedCopy(flattenNumbers([]value.Value{a[0]}))
		q, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		qi := int(q)
		if qi < 0 || qi > 4 || len(nums) == 0 {
			return value.Nil, calcerr.Domainf("QUARTILE: quart must be 0-4")
		}
		return value.Num(percentile(nums, float64(qi)/4)), nil
	})
	register("CORREL", func(_ *Context, a []value.Value) (value.Value, error) {
		xs := flattenNumbers([]value.Value{a[0]})
		ys := flattenNumbers([]value.Value{a[1]})
		if len(xs) != len(ys) || len(xs) < 2 {
			return value.Nil, calcerr.Domainf("CORREL: arrays must be equal length, at least 2 elements")
		}
		mx, my := mean(xs), mean(ys)
		var num, dx2, dy2 float64
		for i := range xs {
			dx := xs[i] - mx
			dy := ys[i] - my
			num += dx * dy
			dx2 += dx * dx
			dy2 += dy * dy
		}
		if dx2 == 0 || dy2 == 0 {
			return value.Nil, calcerr.DivZerof("CORREL: zero variance")
		}
		return value.Num(num / math.Sqrt(dx2*dy2)), nil
	})
}

// percentile implements linear interpolation between closest ranks, the
// convention spreadsheet PERCENTILE/QUARTILE use.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
