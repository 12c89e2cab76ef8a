package eval

import (
	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/value"
)

func init() {
	register("INDEX", func(_ *Context, a []value.Value) (value.Value, error) {
		items := a[0].Items()
		pos, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		i := int(pos) - 1
		if i < 0 || i >= len(items) {
			return value.Nil, calcerr.Domainf("INDEX: position %d out of range for %d elements", int(pos), len(items))
		}
		return items[i], nil
	})
	register("MATCH", func(_ *Context, a []value.Value) (value.Value, error) {
		target := a[0]
		items := a[1].Items()
		matchType := 1.0
		if len(a) == 3 {
			var err error
			matchType, err = num(a[2])
			if err != nil {
				return value.Nil, err
			}
		}
		switch {
		case matchType == 0:
			for i, v := range items {
				if eq, err := compare("=", v, target); err == nil && eq.RawBool() {
					return value.Num(float64(i + 1)), nil
				}
			}
		case matchType > 0:
			best := -1
			for i, v := range items {
				if le, err := compare("<=", v, target); err == nil && le.RawBool() {
					best = i
				}
			}
			if best >= 0 {
				return value.Num(float64(best + 1)), nil
			}
		default:
			best := -1
			for i, v := range items {
				if ge, err := compare(">=", v, target); err == nil && ge.RawBool() {
					best = i
				}
			}
			if best >= 0 {
				return value.Num(float64(best + 1)), nil
			}
		}
		return value.Nil, calcerr.Referencef("MATCH: no match found")
	})
	register("XLOOKUP", func(_ *Context, a []value.Value) (value.Value, error) {
		target := a[0]
		lookupItems := a[1].Items()
		returnItems := a[2].Items()
		if len(lookupItems) != len(returnItems) {
			return value.Nil, calcerr.Domainf("XLOOKUP: lookup_array and return_array must be equal length")
		}
		for i, v := range lookupItems {
			if eq, err := compare("=", v, target); err == nil && eq.RawBool() {
				return returnItems[i], nil
			}
		}
		if len(a) >= 4 {
			return a[3], nil
		}
		return value.Nil, calcerr.Referencef("XLOOKUP: no match found")
	})
	register("CHOOSE", func(_ *Context, a []value.Value) (value.Value, error) {
		pos, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		i := int(pos)
		if i < 1 || i > len(a)-1 {
			return value.Nil, calcerr.Domainf("CHOOSE: index %d out of range for %d choices", i, len(a)-1)
		}
		return a[i], nil
	})
}
