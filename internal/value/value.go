// Package value implements the tagged-variant runtime representation
// shared by every stage of the formula engine downstream of parsing.
//
// What: Value is a closed sum type over Number, Text, Boolean, Date, Array,
// and Empty, plus the total coercion rules (AsNumber, IsTruthy, TypeName)
// that every operator and function handler relies on.
// How: A single struct with a Kind tag and one field populated per kind,
// mirroring the tagged-variant style the SQL engine this package is
// descended from used for column types (storage.ColType), but closed over
// a much smaller, spreadsheet-shaped set of kinds.
// Why: Keeping the variant closed (no interface{} escape hatch) lets every
// downstream switch over Kind be exhaustive and lets the compiler catch
// missing cases when a new kind is ever added.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind tags which field of a Value is populated.
type Kind int

const (
	Empty Kind = iota
	NumberKind
	TextKind
	BooleanKind
	DateKind
	ArrayKind
)

// DateLayout is the ISO-8601 date-only layout every Date value is stored
// and displayed in.
const DateLayout = "2006-01-02"

// dateEpoch is day zero for AsNumber's date-to-serial conversion, chosen to
// match the 1899-12-30 convention common to spreadsheet products.
var dateEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Value is the runtime representation of every scalar, column element, and
// intermediate result the evaluator produces.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
	arr  []Value
}

// Num constructs a Number value.
func Num(f float64) Value { return Value{kind: NumberKind, num: f} }

// Text constructs a Text value.
func Text(s string) Value { return Value{kind: TextKind, str: s} }

// Bool constructs a Boolean value.
func Bool(b bool) Value { return Value{kind: BooleanKind, b: b} }

// Date constructs a Date value from an ISO-8601 (YYYY-MM-DD) string. The
// caller is responsible for validating the format; use ParseDate when the
// input is untrusted.
func Date(iso string) Value { return Value{kind: DateKind, str: iso} }

// Arr constructs an Array value from an ordered sequence of elements.
func Arr(vs []Value) Value { return Value{kind: ArrayKind, arr: vs} }

// Nil is the canonical Empty value.
var Nil = Value{kind: Empty}

// Kind reports which variant a Value holds.
func (v Value) Kind() Kind { return v.kind }

// Str returns the raw text payload. Valid for TextKind and DateKind only;
// callers must check Kind() first.
func (v Value) Str() string { return v.str }

// RawNum returns the raw numeric payload without coercion. Valid for
// NumberKind only.
func (v Value) RawNum() float64 { return v.num }

// RawBool returns the raw boolean payload without coercion. Valid for
// BooleanKind only.
func (v Value) RawBool() bool { return v.b }

// Items returns the element slice of an Array value, or nil otherwise.
func (v Value) Items() []Value {
	if v.kind != ArrayKind {
		return nil
	}
	return v.arr
}

// TypeName returns the spreadsheet-facing name of the value's kind, used
// in Type-kind error messages and the TYPEOF-style introspection
// functions.
func (v Value) TypeName() string {
	switch v.kind {
	case NumberKind:
		return "number"
	case TextKind:
		return "text"
	case BooleanKind:
		return "boolean"
	case DateKind:
		return "date"
	case ArrayKind:
		return "array"
	default:
		return "empty"
	}
}

// AsNumber applies the total coercion-to-number rule described by the
// value model: Number is identity, Boolean maps true/false to 1/0, Date
// maps to its day-serial relative to 1899-12-30, numeric-parsable Text
// parses, and everything else is undefined.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case NumberKind:
		return v.num, true
	case BooleanKind:
		if v.b {
			return 1, true
		}
		return 0, true
	case DateKind:
		d, err := ParseDate(v.str)
		if err != nil {
			return 0, false
		}
		return float64(DateToSerial(d)), true
	case TextKind:
		s := strings.TrimSpace(v.str)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// IsTruthy implements the truthiness rule: nonzero number, nonempty text,
// true boolean, nonempty array. Dates and Empty are always falsy.
func (v Value) IsTruthy() bool {
	switch v.kind {
	case NumberKind:
		return v.num != 0
	case TextKind:
		return v.str != ""
	case BooleanKind:
		return v.b
	case ArrayKind:
		return len(v.arr) > 0
	default:
		return false
	}
}

// ParseDate parses an ISO-8601 date-only string into a time.Time in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// DateToSerial returns the integer day count of t since the 1899-12-30
// epoch, matching the common spreadsheet date-serial convention.
func DateToSerial(t time.Time) int64 {
	return int64(t.Sub(dateEpoch).Hours() / 24)
}

// SerialToDate returns the ISO-8601 date string for a given day serial.
func SerialToDate(days int64) string {
	t := dateEpoch.AddDate(0, 0, int(days))
	return t.Format(DateLayout)
}

// String renders v the way the & operator and TEXT()'s default path do:
// numbers in their shortest round-trippable form, booleans as TRUE/FALSE,
// dates and text verbatim, arrays bracketed. Satisfies fmt.Stringer so
// %v/%s on a Value never leaks its unexported fields.
func (v Value) String() string {
	switch v.kind {
	case TextKind, DateKind:
		return v.str
	case NumberKind:
		return FormatNumber(v.num)
	case BooleanKind:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case ArrayKind:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(item.String())
		}
		sb.WriteByte(']')
		return sb.String()
	default:
		return ""
	}
}

// FormatNumber renders f using the shortest round-trippable decimal
// representation, the convention used by the & concatenation operator and
// the TEXT() function's default (no format-code) path.
func FormatNumber(f float64) string {
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
