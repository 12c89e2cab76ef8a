// Package eval evaluates parsed formula expressions against a Model,
// implementing every operator and the function dispatch table the
// language defines.
//
// What: Eval walks one expression's AST and produces a Value; EvalArray
// does the same but always materializes column references as whole
// arrays, which function dispatch uses for ArgArray positions.
// How: a single recursive-descent walk over parser.Expr mirrors the
// parser's own recursive-descent shape, keeping operator precedence and
// evaluation order visibly in sync with the grammar that produced the
// tree; reference resolution defers entirely to resolve.Resolve so the
// evaluator can never disagree with the dependency analyzer about what a
// name means.
// Why: row-formulas broadcast column references to the current row by
// default, but some functions need the whole column; carrying that
// distinction as two entry points (rather than a global flag) keeps each
// call site explicit about which it wants.
package eval

import (
	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/model"
	"github.com/planforge/calcengine/internal/resolve"
	"github.com/planforge/calcengine/internal/value"
)

// Context is the read-only evaluation environment for one formula. Row
// and Table are set together when evaluating a row-formula; Row is -1 for
// a top-level scalar formula.
type Context struct {
	Model  *model.Model
	Table  string
	Row    int
	Locals map[string]value.Value // LET-bound names, innermost first
	Cancel <-chan struct{}       // optional; checked between function calls
}

// NewScalarContext builds a Context for evaluating a scalar formula.
func NewScalarContext(m *model.Model, cancel <-chan struct{}) *Context {
	return &Context{Model: m, Row: -1, Cancel: cancel}
}

// NewRowContext builds a Context for evaluating a row-formula at rowIdx
// within table tableName.
func NewRowContext(m *model.Model, tableName string, rowIdx int, cancel <-chan struct{}) *Context {
	return &Context{Model: m, Table: tableName, Row: rowIdx, Cancel: cancel}
}

// withLocal returns a copy of ctx with name bound to v, shadowing any
// model entity of the same name for the remainder of the expression.
func (ctx *Context) withLocal(name string, v value.Value) *Context {
	locals := make(map[string]value.Value, len(ctx.Locals)+1)
	for k, val := range ctx.Locals {
		locals[k] = val
	}
	locals[name] = v
	cp := *ctx
	cp.Locals = locals
	return &cp
}

func (ctx *Context) scope() resolve.Scope { return resolve.Scope{Table: ctx.Table} }

// inRowScope reports whether ctx is evaluating a row-formula.
func (ctx *Context) inRowScope() bool { return ctx.Row >= 0 && ctx.Table != "" }

func (ctx *Context) checkCancelled() error {
	if ctx.Cancel == nil {
		return nil
	}
	select {
	case <-ctx.Cancel:
		return calcerr.Cancelledf("evaluation cancelled")
	default:
		return nil
	}
}
