package eval

import (
	"math"
	"strings"

	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/parser"
	"github.com/planforge/calcengine/internal/resolve"
	"github.com/planforge/calcengine/internal/value"
)

// Eval evaluates expr in scalar mode: a bare column reference broadcasts
// to ctx.Row when ctx is a row-formula context, otherwise it materializes
// the whole column as an Array value.
func Eval(ctx *Context, expr parser.Expr) (value.Value, error) {
	switch n := expr.(type) {
	case *parser.NumberLit:
		return value.Num(n.Val), nil
	case *parser.StringLit:
		return value.Text(n.Val), nil
	case *parser.BoolLit:
		return value.Bool(n.Val), nil
	case *parser.Ref:
		return evalRef(ctx, n.Name)
	case *parser.Index:
		return evalIndex(ctx, n)
	case *parser.Unary:
		return evalUnary(ctx, n)
	case *parser.Binary:
		return evalBinary(ctx, n)
	case *parser.Call:
		return Call(ctx, n)
	default:
		return value.Nil, calcerr.Typef("unsupported expression node %T", expr)
	}
}

// EvalArray evaluates expr in array mode: a bare column reference always
// materializes the whole column, ignoring any enclosing row scope. Used
// for ArgArray argument positions.
func EvalArray(ctx *Context, expr parser.Expr) (value.Value, error) {
	if ref, ok := expr.(*parser.Ref); ok {
		if _, bound := ctx.Locals[ref.Name]; !bound {
			key, err := resolve.Resolve(ctx.Model, ctx.scope(), ref.Name)
			if err == nil && key.Kind == resolve.KindColumn {
				return fetchWholeColumn(ctx, key)
			}
		}
	}
	return Eval(ctx, expr)
}

func evalRef(ctx *Context, name string) (value.Value, error) {
	if v, bound := ctx.Locals[name]; bound {
		return v, nil
	}
	key, err := resolve.Resolve(ctx.Model, ctx.scope(), name)
	if err != nil {
		return value.Nil, err
	}
	return fetchKey(ctx, key)
}

func fetchKey(ctx *Context, key resolve.Key) (value.Value, error) {
	switch key.Kind {
	case resolve.KindScalar:
		if s, ok := ctx.Model.Scalars.Get(key.Scalar); ok {
			return s.Value, nil
		}
		if v, ok := fetchIncludedScalar(ctx, key.Scalar); ok {
			return v, nil
		}
		return value.Nil, calcerr.Referencef("unknown scalar %q", key.Scalar)
	case resolve.KindColumn:
		if ctx.inRowScope() && key.Table == ctx.Table {
			return fetchRowCell(ctx, key)
		}
		return fetchWholeColumn(ctx, key)
	default:
		return value.Nil, calcerr.Referencef("%q does not name a scalar or column", key.Name())
	}
}

// splitIncludeNamespace splits a resolve.Key's already-joined "ns.rest"
// name back into its include namespace and local name. resolve.Resolve's
// tier-4 lookup is the only place that produces such a name, so this is
// only ever consulted once the plain local lookup has already failed.
func splitIncludeNamespace(name string) (ns, rest string, ok bool) {
	i := strings.IndexByte(name, '.')
	if i < 0 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}

// fetchIncludedScalar looks up a scalar named by a cross-namespace Key
// (ns.name) in the matching resolved include.
func fetchIncludedScalar(ctx *Context, fullName string) (value.Value, bool) {
	ns, rest, ok := splitIncludeNamespace(fullName)
	if !ok {
		return value.Nil, false
	}
	rm, ok := ctx.Model.ResolvedIncludes.Get(ns)
	if !ok {
		return value.Nil, false
	}
	s, ok := rm.Scalars.Get(rest)
	if !ok {
		return value.Nil, false
	}
	return s.Value, true
}

// fetchIncludedColumn looks up a column named by a cross-namespace Key
// (table field ns.tblName, column field col) in the matching resolved
// include.
func fetchIncludedColumn(ctx *Context, fullTable, column string) (value.Value, bool) {
	ns, tblName, ok := splitIncludeNamespace(fullTable)
	if !ok {
		return value.Nil, false
	}
	rm, ok := ctx.Model.ResolvedIncludes.Get(ns)
	if !ok {
		return value.Nil, false
	}
	t, ok := rm.Tables.Get(tblName)
	if !ok {
		return value.Nil, false
	}
	col, ok := t.Columns.Get(column)
	if !ok {
		return value.Nil, false
	}
	return value.Arr(col.Values()), true
}

func fetchRowCell(ctx *Context, key resolve.Key) (value.Value, error) {
	t, ok := ctx.Model.Tables.Get(key.Table)
	if !ok {
		return value.Nil, calcerr.Referencef("unknown table %q", key.Table)
	}
	if col, ok := t.Columns.Get(key.Column); ok {
		return col.At(ctx.Row)
	}
	return value.Nil, calcerr.Referencef("column %q not yet computed in table %q", key.Column, key.Table)
}

func fetchWholeColumn(ctx *Context, key resolve.Key) (value.Value, error) {
	t, ok := ctx.Model.Tables.Get(key.Table)
	if !ok {
		if v, ok := fetchIncludedColumn(ctx, key.Table, key.Column); ok {
			return v, nil
		}
		return value.Nil, calcerr.Referencef("unknown table %q", key.Table)
	}
	col, ok := t.Columns.Get(key.Column)
	if !ok {
		return value.Nil, calcerr.Referencef("column %q not yet computed in table %q", key.Column, key.Table)
	}
	return value.Arr(col.Values()), nil
}

// evalIndex evaluates a Base[Idx] expression. Index always wants the
// whole referenced column materialized, regardless of row scope, since
// the point of indexing is to pick one element out of it explicitly.
func evalIndex(ctx *Context, n *parser.Index) (value.Value, error) {
	var whole value.Value
	if v, bound := ctx.Locals[n.Base.Name]; bound {
		whole = v
	} else {
		key, err := resolve.Resolve(ctx.Model, ctx.scope(), n.Base.Name)
		if err != nil {
			return value.Nil, err
		}
		if key.Kind != resolve.KindColumn {
			return value.Nil, calcerr.Typef("%q is not a column and cannot be indexed", n.Base.Name)
		}
		whole, err = fetchWholeColumn(ctx, key)
		if err != nil {
			return value.Nil, err
		}
	}
	idxVal, err := Eval(ctx, n.Idx)
	if err != nil {
		return value.Nil, err
	}
	f, ok := idxVal.AsNumber()
	if !ok {
		return value.Nil, calcerr.Typef("index expression did not evaluate to a number")
	}
	i := int(f)
	items := whole.Items()
	if i < 0 || i >= len(items) {
		return value.Nil, calcerr.Domainf("index %d out of range (length %d)", i, len(items))
	}
	return items[i], nil
}

func evalUnary(ctx *Context, n *parser.Unary) (value.Value, error) {
	x, err := Eval(ctx, n.X)
	if err != nil {
		return value.Nil, err
	}
	f, ok := x.AsNumber()
	if !ok {
		return value.Nil, calcerr.Typef("cannot apply unary %s to %s", n.Op, x.TypeName())
	}
	switch n.Op {
	case "-":
		return value.Num(-f), nil
	case "+":
		return value.Num(f), nil
	default:
		return value.Nil, calcerr.Parsef(-1, "unknown unary operator %q", n.Op)
	}
}

func evalBinary(ctx *Context, n *parser.Binary) (value.Value, error) {
	l, err := Eval(ctx, n.L)
	if err != nil {
		return value.Nil, err
	}
	r, err := Eval(ctx, n.R)
	if err != nil {
		return value.Nil, err
	}
	return ApplyBinary(n.Op, l, r)
}

// ApplyBinary implements every infix operator's semantics over already
// evaluated operands, for the main Eval walk. Functions that need only
// the comparison rules (SUMIF-family criteria, SORT) call compare
// directly.
func ApplyBinary(op string, l, r value.Value) (value.Value, error) {
	switch op {
	case "&":
		return value.Text(displayText(l) + displayText(r)), nil
	case "+", "-", "*", "/", "%", "^":
		return arith(op, l, r)
	case "=", "<>", "<", "<=", ">", ">=":
		return compare(op, l, r)
	default:
		return value.Nil, calcerr.Parsef(-1, "unknown binary operator %q", op)
	}
}

// dateArith handles the date-aware cases of + and -: a Date plus or minus
// a Number stays a Date, and a Date minus a Date collapses to the Number
// of days between them. Every other operand combination (including a bare
// Number on both sides) falls through to arith's plain numeric path.
func dateArith(op string, l, r value.Value) (value.Value, bool, error) {
	if op != "+" && op != "-" {
		return value.Nil, false, nil
	}
	lDate := l.Kind() == value.DateKind
	rDate := r.Kind() == value.DateKind
	switch {
	case lDate && rDate && op == "-":
		lf, _ := l.AsNumber()
		rf, _ := r.AsNumber()
		return value.Num(lf - rf), true, nil
	case lDate && !rDate:
		lf, _ := l.AsNumber()
		rf, ok := r.AsNumber()
		if !ok {
			return value.Nil, true, calcerr.Typef("cannot coerce %s to a number", r.TypeName())
		}
		if op == "-" {
			rf = -rf
		}
		return value.Date(value.SerialToDate(int64(lf + rf))), true, nil
	case rDate && !lDate && op == "+":
		lf, ok := l.AsNumber()
		if !ok {
			return value.Nil, true, calcerr.Typef("cannot coerce %s to a number", l.TypeName())
		}
		rf, _ := r.AsNumber()
		return value.Date(value.SerialToDate(int64(lf + rf))), true, nil
	default:
		return value.Nil, false, nil
	}
}

func arith(op string, l, r value.Value) (value.Value, error) {
	if v, handled, err := dateArith(op, l, r); handled {
		return v, err
	}
	lf, ok := l.AsNumber()
	if !ok {
		return value.Nil, calcerr.Typef("cannot coerce %s to a number", l.TypeName())
	}
	rf, ok := r.AsNumber()
	if !ok {
		return value.Nil, calcerr.Typef("cannot coerce %s to a number", r.TypeName())
	}
	switch op {
	case "+":
		return value.Num(lf + rf), nil
	case "-":
		return value.Num(lf - rf), nil
	case "*":
		return value.Num(lf * rf), nil
	case "/":
		if rf == 0 {
			return value.Nil, calcerr.DivZerof("division by zero")
		}
		return value.Num(lf / rf), nil
	case "%":
		if rf == 0 {
			return value.Nil, calcerr.DivZerof("modulo by zero")
		}
		m := math.Mod(lf, rf)
		if m != 0 && (m < 0) != (rf < 0) {
			m += rf
		}
		return value.Num(m), nil
	case "^":
		if lf == 0 && rf == 0 {
			return value.Num(1), nil
		}
		return value.Num(math.Pow(lf, rf)), nil
	default:
		return value.Nil, calcerr.Parsef(-1, "unknown arithmetic operator %q", op)
	}
}

// compare implements =, <>, <, <=, >, >=. Two numbers (after coercion)
// compare numerically; otherwise both sides fall back to their display
// text and compare lexicographically, matching the value model's
// "numeric where possible, lexicographic fallback" comparison rule.
func compare(op string, l, r value.Value) (value.Value, error) {
	var cmp int
	lf, lok := l.AsNumber()
	rf, rok := r.AsNumber()
	if lok && rok {
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		default:
			cmp = 0
		}
	} else {
		ls, rs := displayText(l), displayText(r)
		switch {
		case ls < rs:
			cmp = -1
		case ls > rs:
			cmp = 1
		default:
			cmp = 0
		}
	}
	switch op {
	case "=":
		return value.Bool(cmp == 0), nil
	case "<>":
		return value.Bool(cmp != 0), nil
	case "<":
		return value.Bool(cmp < 0), nil
	case "<=":
		return value.Bool(cmp <= 0), nil
	case ">":
		return value.Bool(cmp > 0), nil
	case ">=":
		return value.Bool(cmp >= 0), nil
	default:
		return value.Nil, calcerr.Parsef(-1, "unknown comparison operator %q", op)
	}
}

// displayText renders v the way the & operator and TEXT()'s default path
// do: numbers in their shortest round-trippable form, booleans as
// TRUE/FALSE, dates and text verbatim.
func displayText(v value.Value) string {
	return v.String()
}
