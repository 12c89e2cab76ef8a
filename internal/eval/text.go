package eval

import (
	"strconv"
	"strings"

	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/numfmt"
	"github.com/planforge/calcengine/internal/value"
)

func init() {
	register("LEFT", func(_ *Context, a []value.Value) (value.Value, error) {
		s := []rune(displayText(a[0]))
		n, err := optNum(a, 1, 1)
		if err != nil {
			return value.Nil, err
		}
		i := clampLen(int(n), len(s))
		return value.Text(string(s[:i])), nil
	})
	register("RIGHT", func(_ *Context, a []value.Value) (value.Value, error) {
		s := []rune(displayText(a[0]))
		n, err := optNum(a, 1, 1)
		if err != nil {
			return value.Nil, err
		}
		i := clampLen(int(n), len(s))
		return value.Text(string(s[len(s)-i:])), nil
	})
	register("MID", func(_ *Context, a []value.Value) (value.Value, error) {
		s := []rune(displayText(a[0]))
		start, err := num(a[1])
		if err != nil {
			return value.Nil, err
		}
		length, err := num(a[2])
		if err != nil {
			return value.Nil, err
		}
		from := int(start) - 1
		if from < 0 {
			from = 0
		}
		if from >= len(s) {
			return value.Text(""), nil
		}
		to := from + int(length)
		if to > len(s) {
			to = len(s)
		}
		return value.Text(string(s[from:to])), nil
	})
	register("LEN", func(_ *Context, a []value.Value) (value.Value, error) {
		return value.Num(float64(len([]rune(displayText(a[0]))))), nil
	})
	register("CONCAT", func(_ *Context, a []value.Value) (value.Value, error) {
		var b strings.Builder
		for _, v := range flattenValues(a) {
			b.WriteString(displayText(v))
		}
		return value.Text(b.String()), nil
	})
	register("UPPER", func(_ *Context, a []value.Value) (value.Value, error) {
		return value.Text(strings.ToUpper(displayText(a[0]))), nil
	})
	register("LOWER", func(_ *Context, a []value.Value) (value.Value, error) {
		return value.Text(strings.ToLower(displayText(a[0]))), nil
	})
	register("TRIM", func(_ *Context, a []value.Value) (value.Value, error) {
		fields := strings.Fields(displayText(a[0]))
		return value.Text(strings.Join(fields, " ")), nil
	})
	register("SUBSTITUTE", func(_ *Context, a []value.Value) (value.Value, error) {
		s := displayText(a[0])
		old := displayText(a[1])
		newS := displayText(a[2])
		if len(a) == 4 {
			n, err := num(a[3])
			if err != nil {
				return value.Nil, err
			}
			return value.Text(substituteNth(s, old, newS, int(n))), nil
		}
		return value.Text(strings.ReplaceAll(s, old, newS)), nil
	})
	register("FIND", func(_ *Context, a []value.Value) (value.Value, error) {
		needle := displayText(a[0])
		haystack := displayText(a[1])
		start := 0
		if len(a) == 3 {
			n, err := num(a[2])
			if err != nil {
				return value.Nil, err
			}
			start = int(n) - 1
		}
		if start < 0 || start > len(haystack) {
			return value.Nil, calcerr.Domainf("FIND: start position out of range")
		}
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			return value.Nil, calcerr.Referencef("FIND: %q not found in %q", needle, haystack)
		}
		return value.Num(float64(start + idx + 1)), nil
	})
	register("TEXT", func(_ *Context, a []value.Value) (value.Value, error) {
		f, err := num(a[0])
		if err != nil {
			return value.Nil, err
		}
		code := ""
		if len(a) == 2 {
			code = displayText(a[1])
		}
		return value.Text(numfmt.Format(f, code)), nil
	})
	register("VALUE", func(_ *Context, a []value.Value) (value.Value, error) {
		s := strings.TrimSpace(displayText(a[0]))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return value.Nil, calcerr.Typef("VALUE: %q is not numeric", s)
		}
		return value.Num(f), nil
	})
}

func clampLen(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}

func substituteNth(s, old, newS string, n int) string {
	if old == "" || n < 1 {
		return s
	}
	count := 0
	idx := 0
	for {
		pos := strings.Index(s[idx:], old)
		if pos < 0 {
			return s
		}
		idx += pos
		count++
		if count == n {
			return s[:idx] + newS + s[idx+len(old):]
		}
		idx += len(old)
	}
}
