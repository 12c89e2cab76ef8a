// Package funcspec describes, for every named function in the formula
// language, how many arguments it takes and whether each argument
// position wants a per-row scalar, a whole materialized array, or a
// criteria string.
//
// What: A static table keyed by upper-cased function name, consulted by
// the evaluator (to decide between per-row scalar reduction and
// whole-column materialization when recursing into an argument). The
// dependency analyzer does not read it: it records an edge to every
// referenced entity regardless of argument position.
// How: One Spec per function, with a fixed-position Kinds slice and an
// optional Tail kind for variadic trailing arguments. This is the same
// "static table keyed by name, one row per function" shape the SQL
// engine's builtin/extended/vector function registries use, just carrying
// argument metadata instead of a handler function.
// Why: The scalar/array split is central to vectorization (row-formulas
// broadcast column references to their row unless the enclosing function
// wants the whole column); encoding it as data keeps that rule in one
// place instead of scattered `if name == "SUM"` checks.
package funcspec

import (
	"sort"
	"strings"
)

// ArgKind classifies how one argument position of a function is read.
type ArgKind int

const (
	// ArgScalar: a Ref in this position resolves to the row-local cell
	// when evaluated inside a row-formula (the default broadcast rule).
	ArgScalar ArgKind = iota
	// ArgArray: a Ref in this position is materialized as the entire
	// column/array regardless of the enclosing row.
	ArgArray
	// ArgCriteria: a criteria-string argument, parsed once into an
	// operator and comparison value, then applied per-row.
	ArgCriteria
)

// Spec describes one function's arity and argument-kind layout.
type Spec struct {
	Kinds    []ArgKind // kind of each fixed-position argument
	Variadic bool      // true if trailing arguments repeat
	Tail     ArgKind   // kind applied to every argument past len(Kinds) when Variadic
	Min, Max int        // argument-count bounds; Max == -1 means unbounded
	Impure   bool       // true for RAND/RANDBETWEEN/TODAY/NOW (non-deterministic)
}

// KindAt returns the ArgKind for argument position i (0-based) of spec.
func KindAt(spec Spec, i int) ArgKind {
	if i < len(spec.Kinds) {
		return spec.Kinds[i]
	}
	if spec.Variadic {
		return spec.Tail
	}
	return ArgScalar
}

func fixed(min, max int, kinds ...ArgKind) Spec {
	return Spec{Kinds: kinds, Min: min, Max: max}
}

func variadic(min int, tail ArgKind, kinds ...ArgKind) Spec {
	return Spec{Kinds: kinds, Variadic: true, Tail: tail, Min: min, Max: -1}
}

func impure(min, max int, kinds ...ArgKind) Spec {
	s := fixed(min, max, kinds...)
	s.Impure = true
	return s
}

// table is the function registry. Names are stored upper-case; lookups
// normalize via Lookup so call-site casing never matters, matching the
// case-insensitive function dispatch invariant.
var table = map[string]Spec{
	// Math
	"ABS":         fixed(1, 1, ArgScalar),
	"SQRT":        fixed(1, 1, ArgScalar),
	"POWER":       fixed(2, 2, ArgScalar, ArgScalar),
	"POW":         fixed(2, 2, ArgScalar, ArgScalar),
	"MOD":         fixed(2, 2, ArgScalar, ArgScalar),
	"SIGN":        fixed(1, 1, ArgScalar),
	"PI":          fixed(0, 0),
	"E":           fixed(0, 0),
	"EXP":         fixed(1, 1, ArgScalar),
	"LN":          fixed(1, 1, ArgScalar),
	"LOG10":       fixed(1, 1, ArgScalar),
	"LOG":         fixed(1, 2, ArgScalar, ArgScalar),
	"ROUND":       fixed(1, 2, ArgScalar, ArgScalar),
	"ROUNDUP":     fixed(1, 2, ArgScalar, ArgScalar),
	"ROUNDDOWN":   fixed(1, 2, ArgScalar, ArgScalar),
	"FLOOR":       fixed(1, 2, ArgScalar, ArgScalar),
	"CEILING":     fixed(1, 2, ArgScalar, ArgScalar),
	"TRUNC":       fixed(1, 2, ArgScalar, ArgScalar),
	"INT":         fixed(1, 1, ArgScalar),
	"RAND":        impure(0, 0),
	"RANDBETWEEN": impure(2, 2, ArgScalar, ArgScalar),

	// Trig
	"SIN":     fixed(1, 1, ArgScalar),
	"COS":     fixed(1, 1, ArgScalar),
	"TAN":     fixed(1, 1, ArgScalar),
	"ASIN":    fixed(1, 1, ArgScalar),
	"ACOS":    fixed(1, 1, ArgScalar),
	"ATAN":    fixed(1, 1, ArgScalar),
	"ATAN2":   fixed(2, 2, ArgScalar, ArgScalar),
	"RADIANS": fixed(1, 1, ArgScalar),
	"DEGREES": fixed(1, 1, ArgScalar),

	// Aggregation
	"SUM":        variadic(1, ArgArray),
	"AVERAGE":    variadic(1, ArgArray),
	"MIN":        variadic(1, ArgArray),
	"MAX":        variadic(1, ArgArray),
	"COUNT":      variadic(1, ArgArray),
	"COUNTA":     variadic(1, ArgArray),
	"PRODUCT":    variadic(1, ArgArray),
	"MEDIAN":     variadic(1, ArgArray),
	"STDEV":      variadic(1, ArgArray),
	"STDEVP":     variadic(1, ArgArray),
	"VAR":        variadic(1, ArgArray),
	"VARP":       variadic(1, ArgArray),
	"LARGE":      fixed(2, 2, ArgArray, ArgScalar),
	"SMALL":      fixed(2, 2, ArgArray, ArgScalar),
	"PERCENTILE": fixed(2, 2, ArgArray, ArgScalar),
	"QUARTILE":   fixed(2, 2, ArgArray, ArgScalar),
	"CORREL":     fixed(2, 2, ArgArray, ArgArray),

	// Conditional aggregation
	"SUMIF":      fixed(2, 3, ArgArray, ArgCriteria, ArgArray),
	"COUNTIF":    fixed(2, 2, ArgArray, ArgCriteria),
	"AVERAGEIF":  fixed(2, 3, ArgArray, ArgCriteria, ArgArray),
	"SUMIFS":     variadic(3, ArgCriteria, ArgArray, ArgArray, ArgCriteria),
	"COUNTIFS":   variadic(2, ArgCriteria, ArgArray, ArgCriteria),
	"AVERAGEIFS": variadic(3, ArgCriteria, ArgArray, ArgArray, ArgCriteria),
	"MAXIFS":     variadic(3, ArgCriteria, ArgArray, ArgArray, ArgCriteria),
	"MINIFS":     variadic(3, ArgCriteria, ArgArray, ArgArray, ArgCriteria),

	// Logical
	"IF":       fixed(2, 3, ArgScalar, ArgScalar, ArgScalar),
	"IFS":      variadic(2, ArgScalar),
	"IFERROR":  fixed(2, 2, ArgScalar, ArgScalar),
	"ISERROR":  fixed(1, 1, ArgScalar),
	"AND":      variadic(1, ArgScalar),
	"OR":       variadic(1, ArgScalar),
	"NOT":      fixed(1, 1, ArgScalar),
	"XOR":      variadic(1, ArgScalar),
	"SWITCH":   variadic(3, ArgScalar),
	"TRUE":     fixed(0, 0),
	"FALSE":    fixed(0, 0),

	// Lookup
	"INDEX":   fixed(2, 2, ArgArray, ArgScalar),
	"MATCH":   fixed(2, 3, ArgScalar, ArgArray, ArgScalar),
	"XLOOKUP": fixed(3, 5, ArgScalar, ArgArray, ArgArray, ArgScalar, ArgScalar),
	"CHOOSE":  variadic(2, ArgScalar, ArgScalar),

	// Text
	"LEFT":       fixed(1, 2, ArgScalar, ArgScalar),
	"RIGHT":      fixed(1, 2, ArgScalar, ArgScalar),
	"MID":        fixed(3, 3, ArgScalar, ArgScalar, ArgScalar),
	"LEN":        fixed(1, 1, ArgScalar),
	"CONCAT":     variadic(1, ArgScalar),
	"UPPER":      fixed(1, 1, ArgScalar),
	"LOWER":      fixed(1, 1, ArgScalar),
	"TRIM":       fixed(1, 1, ArgScalar),
	"SUBSTITUTE": fixed(3, 4, ArgScalar, ArgScalar, ArgScalar, ArgScalar),
	"FIND":       fixed(2, 3, ArgScalar, ArgScalar, ArgScalar),
	"TEXT":       fixed(1, 2, ArgScalar, ArgScalar),
	"VALUE":      fixed(1, 1, ArgScalar),

	// Date
	"TODAY":       impure(0, 0),
	"NOW":         impure(0, 0),
	"DATE":        fixed(3, 3, ArgScalar, ArgScalar, ArgScalar),
	"YEAR":        fixed(1, 1, ArgScalar),
	"MONTH":       fixed(1, 1, ArgScalar),
	"DAY":         fixed(1, 1, ArgScalar),
	"WEEKDAY":     fixed(1, 2, ArgScalar, ArgScalar),
	"HOUR":        fixed(1, 1, ArgScalar),
	"MINUTE":      fixed(1, 1, ArgScalar),
	"SECOND":      fixed(1, 1, ArgScalar),
	"TIME":        fixed(3, 3, ArgScalar, ArgScalar, ArgScalar),
	"DAYS":        fixed(2, 2, ArgScalar, ArgScalar),
	"EDATE":       fixed(2, 2, ArgScalar, ArgScalar),
	"EOMONTH":     fixed(2, 2, ArgScalar, ArgScalar),
	"DATEDIF":     fixed(3, 3, ArgScalar, ArgScalar, ArgScalar),
	"YEARFRAC":    fixed(2, 3, ArgScalar, ArgScalar, ArgScalar),
	"WORKDAY":     fixed(2, 3, ArgScalar, ArgScalar, ArgArray),
	"NETWORKDAYS": fixed(2, 3, ArgScalar, ArgScalar, ArgArray),

	// Financial
	"PMT":        fixed(3, 5, ArgScalar, ArgScalar, ArgScalar, ArgScalar, ArgScalar),
	"PV":         fixed(3, 5, ArgScalar, ArgScalar, ArgScalar, ArgScalar, ArgScalar),
	"FV":         fixed(3, 5, ArgScalar, ArgScalar, ArgScalar, ArgScalar, ArgScalar),
	"NPV":        variadic(2, ArgArray, ArgScalar),
	"NPER":       fixed(3, 5, ArgScalar, ArgScalar, ArgScalar, ArgScalar, ArgScalar),
	"RATE":       fixed(3, 6, ArgScalar, ArgScalar, ArgScalar, ArgScalar, ArgScalar, ArgScalar),
	"IRR":        fixed(1, 2, ArgArray, ArgScalar),
	"XIRR":       fixed(2, 3, ArgArray, ArgArray, ArgScalar),
	"XNPV":       fixed(3, 3, ArgScalar, ArgArray, ArgArray),
	"MIRR":       fixed(3, 3, ArgArray, ArgScalar, ArgScalar),
	"SLN":        fixed(3, 3, ArgScalar, ArgScalar, ArgScalar),
	"DDB":        fixed(4, 5, ArgScalar, ArgScalar, ArgScalar, ArgScalar, ArgScalar),
	"DB":         fixed(4, 5, ArgScalar, ArgScalar, ArgScalar, ArgScalar, ArgScalar),
	"PPMT":       fixed(4, 6, ArgScalar, ArgScalar, ArgScalar, ArgScalar, ArgScalar, ArgScalar),
	"IPMT":       fixed(4, 6, ArgScalar, ArgScalar, ArgScalar, ArgScalar, ArgScalar, ArgScalar),
	"EFFECT":     fixed(2, 2, ArgScalar, ArgScalar),
	"NOMINAL":    fixed(2, 2, ArgScalar, ArgScalar),
	"PRICEDISC":  fixed(4, 5, ArgScalar, ArgScalar, ArgScalar, ArgScalar, ArgScalar),
	"YIELDDISC":  fixed(4, 5, ArgScalar, ArgScalar, ArgScalar, ArgScalar, ArgScalar),
	"ACCRINT":    fixed(4, 6, ArgScalar, ArgScalar, ArgScalar, ArgScalar, ArgScalar, ArgScalar),

	// Array transforms
	"SORT":        fixed(1, 2, ArgArray, ArgScalar),
	"UNIQUE":      fixed(1, 1, ArgArray),
	"FILTER":      fixed(2, 2, ArgArray, ArgArray),
	"SEQUENCE":    fixed(1, 3, ArgScalar, ArgScalar, ArgScalar),
	"COUNTUNIQUE": variadic(1, ArgArray),

	// Information
	"ISEVEN":   fixed(1, 1, ArgScalar),
	"ISODD":    fixed(1, 1, ArgScalar),
	"ISNUMBER": fixed(1, 1, ArgScalar),
	"ISTEXT":   fixed(1, 1, ArgScalar),
	"ISBLANK":  fixed(1, 1, ArgScalar),

	// Let binding: LET(name1, expr1, ..., body) — handled structurally by
	// the evaluator, which needs the raw Args rather than pre-kinded ones,
	// so every position is nominally scalar here.
	"LET": variadic(3, ArgScalar),
}

// Lookup returns the Spec for a function name, case-insensitively, and
// whether the name is known at all.
func Lookup(name string) (Spec, bool) {
	s, ok := table[strings.ToUpper(name)]
	return s, ok
}

// IsArray reports whether pos is an ArgArray position for fn.
func IsArray(fn string, pos int) bool {
	spec, ok := Lookup(fn)
	if !ok {
		return false
	}
	return KindAt(spec, pos) == ArgArray
}

// IsCriteria reports whether pos is an ArgCriteria position for fn.
func IsCriteria(fn string, pos int) bool {
	spec, ok := Lookup(fn)
	if !ok {
		return false
	}
	return KindAt(spec, pos) == ArgCriteria
}

// IsImpure reports whether fn is a non-deterministic source
// (RAND/RANDBETWEEN/TODAY/NOW). Neither the dependency analyzer nor the
// driver consults it.
func IsImpure(name string) bool {
	s, ok := Lookup(name)
	return ok && s.Impure
}

// Names returns every registered function name, sorted, for the schema
// self-description command.
func Names() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
