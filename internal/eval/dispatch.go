package eval

import (
	"strings"

	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/funcspec"
	"github.com/planforge/calcengine/internal/parser"
	"github.com/planforge/calcengine/internal/value"
)

// builtin is the signature every non-lazy function handler implements: it
// receives its arguments already evaluated per funcspec's ArgKind rules
// (ArgArray positions materialized as whole arrays) and returns a Value.
type builtin func(ctx *Context, args []value.Value) (value.Value, error)

// dispatch is the function registry, populated by each family file's
// init(). Lazy forms (IF, IFS, IFERROR, ISERROR, AND, OR, SWITCH, LET,
// TRUE, FALSE) are special-cased in Call itself since they need access to
// unevaluated argument expressions.
var dispatch = map[string]builtin{}

func register(name string, fn builtin) { dispatch[name] = fn }

// Call evaluates a function-call expression: it resolves the function's
// funcspec, evaluates each argument according to that position's ArgKind
// (unless the function is one of the lazy forms handled directly here),
// checks arity, and invokes the registered handler.
func Call(ctx *Context, call *parser.Call) (value.Value, error) {
	if err := ctx.checkCancelled(); err != nil {
		return value.Nil, err
	}
	name := strings.ToUpper(call.Name)

	switch name {
	case "IF":
		return callIf(ctx, call)
	case "IFS":
		return callIfs(ctx, call)
	case "IFERROR":
		return callIferror(ctx, call)
	case "ISERROR":
		return callIserror(ctx, call)
	case "AND":
		return callAnd(ctx, call)
	case "OR":
		return callOr(ctx, call)
	case "SWITCH":
		return callSwitch(ctx, call)
	case "LET":
		return callLet(ctx, call)
	case "TRUE":
		return value.Bool(true), nil
	case "FALSE":
		return value.Bool(false), nil
	}

	spec, ok := funcspec.Lookup(name)
	if !ok {
		return value.Nil, calcerr.Referencef("unknown function %q", call.Name)
	}
	if len(call.Args) < spec.Min || (spec.Max >= 0 && len(call.Args) > spec.Max) {
		return value.Nil, calcerr.Arityf("%s expects between %d and %d arguments, got %d", name, spec.Min, spec.Max, len(call.Args))
	}

	args := make([]value.Value, len(call.Args))
	for i, a := range call.Args {
		var v value.Value
		var err error
		if funcspec.KindAt(spec, i) == funcspec.ArgArray {
			v, err = EvalArray(ctx, a)
		} else {
			v, err = Eval(ctx, a)
		}
		if err != nil {
			return value.Nil, err
		}
		args[i] = v
	}

	fn, ok := dispatch[name]
	if !ok {
		return value.Nil, calcerr.Referencef("function %q has no registered implementation", call.Name)
	}
	return fn(ctx, args)
}

// flattenNumbers coerces every element of a set of already-evaluated
// arguments (scalars or arrays, possibly mixed) into a flat []float64,
// used by the aggregation family. Non-numeric, non-coercible elements are
// skipped rather than erroring, matching spreadsheet AVERAGE/SUM-style
// "ignore text" aggregation behavior.
func flattenNumbers(args []value.Value) []float64 {
	var out []float64
	var walk func(v value.Value)
	walk = func(v value.Value) {
		if v.Kind() == value.ArrayKind {
			for _, item := range v.Items() {
				walk(item)
			}
			return
		}
		if f, ok := v.AsNumber(); ok {
			out = append(out, f)
		}
	}
	for _, a := range args {
		walk(a)
	}
	return out
}

// flattenValues is like flattenNumbers but keeps every element's Value
// (no coercion, no skipping), used by COUNTA/COUNTUNIQUE/CONCAT-style
// functions that must see text and boolean elements too.
func flattenValues(args []value.Value) []value.Value {
	var out []value.Value
	var walk func(v value.Value)
	walk = func(v value.Value) {
		if v.Kind() == value.ArrayKind {
			for _, item := range v.Items() {
				walk(item)
			}
			return
		}
		out = append(out, v)
	}
	for _, a := range args {
		walk(a)
	}
	return out
}
