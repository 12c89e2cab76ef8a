// Package parser turns a formula's token stream into an abstract syntax
// tree and defines that tree's node types.
//
// What: Expr is a closed tagged-variant interface over the eight AST node
// shapes the grammar produces: literals, references, indexing, unary and
// binary operators, and function calls.
// How: Each node is its own struct implementing a private marker method,
// following the same "Expr interface{}-with-concrete-structs" discipline
// the SQL engine this package is descended from used for its expression
// AST, so a type switch in the evaluator and dependency analyzer stays
// exhaustive and easy to extend.
// Why: Reference and Index are dedicated nodes (not strings re-parsed
// later) so dependency analysis never inspects formula text a second time.
package parser

// Expr is the root type of every parsed formula expression.
type Expr interface {
	exprNode()
}

// NumberLit is a numeric literal, e.g. 3.14.
type NumberLit struct{ Val float64 }

// StringLit is a double-quoted string literal.
type StringLit struct{ Val string }

// BoolLit is a bare TRUE/FALSE literal (not a function call).
type BoolLit struct{ Val bool }

// Ref is a bare or dotted-qualified name: a scalar, or table.column.
type Ref struct{ Name string }

// Index is a 0-based numeric index into a column reference: table.col[i].
type Index struct {
	Base *Ref
	Idx  Expr
}

// Unary is a prefix operator; only "-" is currently produced.
type Unary struct {
	Op string
	X  Expr
}

// Binary is an infix operator: one of + - * / % & = <> < <= > >= ^.
type Binary struct {
	Op   string
	L, R Expr
}

// Call is a function call by name with a positional argument list.
type Call struct {
	Name string
	Args []Expr
}

func (*NumberLit) exprNode() {}
func (*StringLit) exprNode() {}
func (*BoolLit) exprNode()   {}
func (*Ref) exprNode()       {}
func (*Index) exprNode()     {}
func (*Unary) exprNode()     {}
func (*Binary) exprNode()    {}
func (*Call) exprNode()      {}
