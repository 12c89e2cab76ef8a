package eval

import (
	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/parser"
	"github.com/planforge/calcengine/internal/value"
)

// callIf implements IF(cond, then[, else]), evaluating only the taken
// branch. A missing else branch yields Empty.
func callIf(ctx *Context, call *parser.Call) (value.Value, error) {
	if len(call.Args) < 2 || len(call.Args) > 3 {
		return value.Nil, calcerr.Arityf("IF expects 2 or 3 arguments, got %d", len(call.Args))
	}
	cond, err := Eval(ctx, call.Args[0])
	if err != nil {
		return value.Nil, err
	}
	if cond.IsTruthy() {
		return Eval(ctx, call.Args[1])
	}
	if len(call.Args) == 3 {
		return Eval(ctx, call.Args[2])
	}
	return value.Nil, nil
}

// callIfs implements IFS(cond1, val1, cond2, val2, ...), evaluating
// conditions in order and stopping at the first true one; its paired
// value is the only one of its siblings ever evaluated.
func callIfs(ctx *Context, call *parser.Call) (value.Value, error) {
	if len(call.Args) < 2 || len(call.Args)%2 != 0 {
		return value.Nil, calcerr.Arityf("IFS expects an even number of arguments (at least 2), got %d", len(call.Args))
	}
	for i := 0; i < len(call.Args); i += 2 {
		cond, err := Eval(ctx, call.Args[i])
		if err != nil {
			return value.Nil, err
		}
		if cond.IsTruthy() {
			return Eval(ctx, call.Args[i+1])
		}
	}
	return value.Nil, calcerr.Domainf("IFS: no condition matched")
}

// callIferror implements IFERROR(expr, fallback): fallback is evaluated,
// and only evaluated, when expr raises any calcerr.Error.
func callIferror(ctx *Context, call *parser.Call) (value.Value, error) {
	if len(call.Args) != 2 {
		return value.Nil, calcerr.Arityf("IFERROR expects 2 arguments, got %d", len(call.Args))
	}
	v, err := Eval(ctx, call.Args[0])
	if err == nil {
		return v, nil
	}
	if _, ok := calcerr.As(err); !ok {
		return value.Nil, err
	}
	return Eval(ctx, call.Args[1])
}

// callIserror implements ISERROR(expr): true iff expr raises a
// calcerr.Error; the error itself is swallowed, never propagated.
func callIserror(ctx *Context, call *parser.Call) (value.Value, error) {
	if len(call.Args) != 1 {
		return value.Nil, calcerr.Arityf("ISERROR expects 1 argument, got %d", len(call.Args))
	}
	_, err := Eval(ctx, call.Args[0])
	if err == nil {
		return value.Bool(false), nil
	}
	if _, ok := calcerr.As(err); ok {
		return value.Bool(true), nil
	}
	return value.Nil, err
}

// callAnd implements AND(cond...), short-circuiting on the first falsy
// value.
func callAnd(ctx *Context, call *parser.Call) (value.Value, error) {
	if len(call.Args) < 1 {
		return value.Nil, calcerr.Arityf("AND expects at least 1 argument")
	}
	for _, a := range call.Args {
		v, err := Eval(ctx, a)
		if err != nil {
			return value.Nil, err
		}
		if !v.IsTruthy() {
			return value.Bool(false), nil
		}
	}
	return value.Bool(true), nil
}

// callOr implements OR(cond...), short-circuiting on the first truthy
// value.
func callOr(ctx *Context, call *parser.Call) (value.Value, error) {
	if len(call.Args) < 1 {
		return value.Nil, calcerr.Arityf("OR expects at least 1 argument")
	}
	for _, a := range call.Args {
		v, err := Eval(ctx, a)
		if err != nil {
			return value.Nil, err
		}
		if v.IsTruthy() {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

// callSwitch implements SWITCH(expr, val1, result1, ..., [default]):
// expr is evaluated once; each valN/resultN pair is then compared in
// order, evaluating resultN only for the first match, falling back to a
// trailing unpaired default argument if present.
func callSwitch(ctx *Context, call *parser.Call) (value.Value, error) {
	if len(call.Args) < 3 {
		return value.Nil, calcerr.Arityf("SWITCH expects at least 3 arguments, got %d", len(call.Args))
	}
	target, err := Eval(ctx, call.Args[0])
	if err != nil {
		return value.Nil, err
	}
	rest := call.Args[1:]
	i := 0
	for ; i+1 < len(rest); i += 2 {
		candidate, err := Eval(ctx, rest[i])
		if err != nil {
			return value.Nil, err
		}
		eq, err := compare("=", target, candidate)
		if err != nil {
			return value.Nil, err
		}
		if eq.RawBool() {
			return Eval(ctx, rest[i+1])
		}
	}
	if i < len(rest) {
		return Eval(ctx, rest[i])
	}
	return value.Nil, calcerr.Domainf("SWITCH: no matching case and no default")
}

// callLet implements LET(name1, expr1, ..., body): each name is bound, in
// order, to its expression's value (seeing previously bound names), then
// body is evaluated with all bindings in scope.
func callLet(ctx *Context, call *parser.Call) (value.Value, error) {
	if len(call.Args) < 3 || len(call.Args)%2 == 0 {
		return value.Nil, calcerr.Arityf("LET expects an odd number of arguments (at least 3), got %d", len(call.Args))
	}
	cur := ctx
	pairs := len(call.Args) / 2
	for i := 0; i < pairs; i++ {
		nameArg, ok := call.Args[2*i].(*parser.Ref)
		if !ok {
			return value.Nil, calcerr.Typef("LET: argument %d must be a bare name", 2*i+1)
		}
		v, err := Eval(cur, call.Args[2*i+1])
		if err != nil {
			return value.Nil, err
		}
		cur = cur.withLocal(nameArg.Name, v)
	}
	return Eval(cur, call.Args[len(call.Args)-1])
}
