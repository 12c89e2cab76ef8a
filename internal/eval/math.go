package eval

import (
	"math"
	"math/rand"

	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/value"
)

func num(v value.Value) (float64, error) {
	f, ok := v.AsNumber()
	if !ok {
		return 0, calcerr.Typef("cannot coerce %s to a number", v.TypeName())
	}
	return f, nil
}

func optNum(args []value.Value, i int, def float64) (float64, error) {
	if i >= len(args) {
		return def, nil
	}
	return num(args[i])
}

func roundTo(f float64, digits int) float64 {
	mult := math.Pow(10, float64(digits))
	return math.Round(f*mult) / mult
}

func init() {
	register("ABS", func(_ *Context, a []value.Value) (value.Value, error) {
		f, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		return value.Num(math.Abs(f)), nil
	})
	register("SQRT", func(_ *Context, a []value.Value) (value.Value, error) {
		f, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		if f < 0 {
			return value.Nil, calcerr.Domainf("SQRT of negative number %g", f)
		}
		return value.Num(math.Sqrt(f)), nil
	})
	register("POWER", builtinPow)
	register("POW", builtinPow)
	register("MOD", func(_ *Context, a []value.Value) (value.Value, error) {
		l, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		r, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		return arith("%", value.Num(l), value.Num(r))
	})
	register("SIGN", func(_ *Context, a []value.Value) (value.Value, error) {
		f, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		switch {
		case f > 0:
			return value.Num(1), nil
		case f < 0:
			return value.Num(-1), nil
		default:
			return value.Num(0), nil
		}
	})
	register("PI", func(_ *Context, a []value.Value) (value.Value, error) { return value.Num(math.Pi), nil })
	register("E", func(_ *Context, a []value.Value) (value.Value, error) { return value.Num(math.E), nil })
	register("EXP", func(_ *Context, a []value.Value) (value.Value, error) {
		f, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		return value.Num(math.Exp(f)), nil
	})
	register("LN", func(_ *Context, a []value.Value) (value.Value, error) {
		f, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		if f <= 0 {
			return value.Nil, calcerr.Domainf("LN of non-positive number %g", f)
		}
		return value.Num(math.Log(f)), nil
	})
	register("LOG10", func(_ *Context, a []value.Value) (value.Value, error) {
		f, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		if f <= 0 {
			return value.Nil, calcerr.Domainf("LOG10 of non-positive number %g", f)
		}
		return value.Num(math.Log10(f)), nil
	})
	register("LOG", func(_ *Context, a []value.Value) (value.Value, error) {
		f, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		base, err := optNum(a, 1, 10)
		if err != nil {
			return value.Nil, err
		}
		if f <= 0 || base <= 0 || base == 1 {
			return value.Nil, calcerr.Domainf("LOG: invalid arguments %g, base %g", f, base)
		}
		return value.Num(math.Log(f) / math.Log(base)), nil
	})
	register("ROUND", func(_ *Context, a []value.Value) (value.Value, error) {
		f, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		d, err := optNum(a, 1, 0)
		if err != nil {
			return value.Nil, err
		}
		return value.Num(roundTo(f, int(d))), nil
	})
	register("ROUNDUP", func(_ *Context, a []value.Value) (value.Value, error) {
		f, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		d, err := optNum(a, 1, 0)
		if err != nil {
			return value.Nil, err
		}
		mult := math.Pow(10, d)
		if f >= 0 {
			return value.Num(math.Ceil(f*mult) / mult), nil
		}
		return value.Num(math.Floor(f*mult) / mult), nil
	})
	register("ROUNDDOWN", func(_ *Context, a []value.Value) (value.Value, error) {
		f, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		d, err := optNum(a, 1, 0)
		if err != nil {
			return value.Nil, err
		}
		mult := math.Pow(10, d)
		return value.Num(math.Trunc(f*mult) / mult), nil
	})
	register("FLOOR", func(_ *Context, a []value.Value) (value.Value, error) {
		f, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		sig, err := optNum(a, 1, 1)
		if err != nil {
			return value.Nil, err
		}
		if sig == 0 {
			return value.Nil, calcerr.DivZerof("FLOOR: significance is zero")
		}
		return value.Num(math.Floor(f/sig) * sig), nil
	})
	register("CEILING", func(_ *Context, a []value.Value) (value.Value, error) {
		f, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		sig, err := optNum(a, 1, 1)
		if err != nil {
			return value.Nil, err
		}
		if sig == 0 {
			return value.Nil, calcerr.DivZerof("CEILING: significance is zero")
		}
		return value.Num(math.Ceil(f/sig) * sig), nil
	})
	register("TRUNC", func(_ *Context, a []value.Value) (value.Value, error) {
		f, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		d, err := optNum(a, 1, 0)
		if err != nil {
			return value.Nil, err
		}
		mult := math.Pow(10, d)
		return value.Num(math.Trunc(f*mult) / mult), nil
	})
	register("INT", func(_ *Context, a []value.Value) (value.Value, error) {
		f, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		return value.Num(math.Floor(f)), nil
	})
	register("RAND", func(_ *Context, a []value.Value) (value.Value, error) {
		return value.Num(rand.Float64()), nil
	})
	register("RANDBETWEEN", func(_ *Context, a []value.Value) (value.Value, error) {
		lo, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		hi, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		if hi < lo {
			return value.Nil, calcerr.Domainf("RANDBETWEEN: upper bound %g below lower bound %g", hi, lo)
		}
		span := int64(hi) - int64(lo) + 1
		return value.Num(float64(int64(lo) + rand.Int63n(span))), nil
	})
}

func builtinPow(_ *Context, a []value.Value) (value.Value, error) {
	base, err := num(a[0])
	if err != nil {
		return value.Nil, err
	}
	exp, err := num(a[1])
	if err != nil {
		return value.Nil, err
	}
	return arith("^", value.Num(base), value.Num(exp))
}
