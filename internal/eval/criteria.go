package eval

import (
	"strings"

	"github.com/planforge/calcengine/internal/value"
)

// criterion is a parsed SUMIF/COUNTIF-style criteria argument: an
// operator plus the comparison operand to apply it against.
type criterion struct {
	op  string
	rhs value.Value
}

// parseCriterion parses a criteria argument. A leading comparison
// operator (= <> < <= > >=) is stripped and the remainder parsed as the
// comparison value; a criteria value with no leading operator means "=".
func parseCriterion(v value.Value) criterion {
	if v.Kind() != value.TextKind {
		return criterion{op: "=", rhs: v}
	}
	s := v.Str()
	for _, op := range []string{"<=", ">=", "<>", "=", "<", ">"} {
		if strings.HasPrefix(s, op) {
			rest := strings.TrimSpace(s[len(op):])
			return criterion{op: op, rhs: textOrNumber(rest)}
		}
	}
	return criterion{op: "=", rhs: textOrNumber(s)}
}

// textOrNumber parses s as a number when possible, falling back to Text,
// matching how a bare criteria operand like "10" or "apples" is read.
func textOrNumber(s string) value.Value {
	if n, ok := value.Text(s).AsNumber(); ok {
		return value.Num(n)
	}
	return value.Text(s)
}

// matches reports whether candidate satisfies c.
func (c criterion) matches(candidate value.Value) bool {
	result, err := compare(c.op, candidate, c.rhs)
	if err != nil {
		return false
	}
	return result.RawBool()
}
