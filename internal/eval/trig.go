package eval

import (
	"math"

	"github.com/planforge/calcengine/internal/value"
)

func unaryMath(f func(float64) float64) builtin {
	return func(_ *Context, a []value.Value) (value.Value, error) {
		x, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		return value.Num(f(x)), nil
	}
}

func init() {
	register("SIN", unaryMath(math.Sin))
	register("COS", unaryMath(math.Cos))
	register("TAN", unaryMath(math.Tan))
	register("ASIN", unaryMath(math.Asin))
	register("ACOS", unaryMath(math.Acos))
	register("ATAN", unaryMath(math.Atan))
	register("RADIANS", unaryMath(func(deg float64) float64 { return deg * math.Pi / 180 }))
	register("DEGREES", unaryMath(func(rad float64) float64 { return rad * 180 / math.Pi }))
	register("ATAN2", func(_ *Context, a []value.Value) (value.Value, error) {
		y, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		x, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		return value.Num(math.Atan2(y, x)), nil
	})
}
