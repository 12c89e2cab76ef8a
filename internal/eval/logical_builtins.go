package eval

import "github.com/planforge/calcengine/internal/value"

func init() {
	register("NOT", func(_ *Context, a []value.Value) (value.Value, error) {
		return value.Bool(!a[0].IsTruthy()), nil
	})
	register("XOR", func(_ *Context, a []value.Value) (value.Value, error) {
		result := false
		for _, v := range a {
			if v.IsTruthy() {
				result = !result
			}
		}
		return value.Bool(result), nil
	})
	register("ISNUMBER", func(_ *Context, a []value.Value) (value.Value, error) {
		return value.Bool(a[0].Kind() == value.NumberKind), nil
	})
	register("ISTEXT", func(_ *Context, a []value.Value) (value.Value, error) {
		return value.Bool(a[0].Kind() == value.TextKind), nil
	})
	register("ISBLANK", func(_ *Context, a []value.Value) (value.Value, error) {
		return value.Bool(a[0].Kind() == value.Empty), nil
	})
	register("ISEVEN", func(_ *Context, a []value.Value) (value.Value, error) {
		f, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		return value.Bool(int64(f)%2 == 0), nil
	})
	register("ISODD", func(_ *Context, a []value.Value) (value.Value, error) {
		f, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		return value.Bool(int64(f)%2 != 0), nil
	})
}
