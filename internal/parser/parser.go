// Package parser also holds the recursive-descent expression parser
// itself.
//
// What: Parses the precedence ladder described by the formula grammar:
// comparison, concatenation, additive, multiplicative, unary minus,
// exponent (right-associative), and primary (literals, references,
// indexing, function calls, parenthesized expressions).
// How: A two-token-lookahead Parser (cur/peek) over the lexer's token
// stream, structured exactly like the SQL engine's hand-written parser:
// one method per precedence level, each calling down to the next-tighter
// level for its operands.
// Why: Hand-written recursive descent keeps operator precedence and error
// messages explicit and auditable without a parser-generator dependency.
package parser

import (
	"strconv"
	"strings"

	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/lexer"
)

// Parser holds the lexer and current/peek tokens for recursive-descent
// parsing of a single formula.
type Parser struct {
	lx   *lexer.Lexer
	cur  lexer.Token
	peek lexer.Token
	err  error
}

// New creates a Parser over the given formula text.
func New(formula string) *Parser {
	p := &Parser{lx: lexer.New(formula)}
	p.cur, p.err = p.lx.Next()
	if p.err == nil {
		p.peek, p.err = p.lx.Next()
	}
	return p
}

// Parse lexes and parses formula into an Expr AST.
func Parse(formula string) (Expr, error) {
	p := New(formula)
	expr, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if p.err != nil {
		return nil, p.err
	}
	if p.cur.Type != lexer.End {
		return nil, calcerr.Parsef(p.cur.Pos, "unexpected trailing token %q", p.cur.Val)
	}
	return expr, nil
}

func (p *Parser) advance() {
	if p.err != nil {
		return
	}
	p.cur = p.peek
	p.peek, p.err = p.lx.Next()
}

func (p *Parser) errf(format string, a ...any) error {
	return calcerr.Parsef(p.cur.Pos, format, a...)
}

func (p *Parser) isPunct(s string) bool {
	return p.cur.Type == lexer.Punct && p.cur.Val == s
}

func (p *Parser) expectPunct(s string) error {
	if !p.isPunct(s) {
		return p.errf("expected %q, found %q", s, p.cur.Val)
	}
	p.advance()
	return nil
}

// ParseExpr parses a full expression starting at the lowest-precedence
// comparison level.
func (p *Parser) ParseExpr() (Expr, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.parseComparison()
}

var cmpOps = map[string]bool{"=": true, "<>": true, "<": true, "<=": true, ">": true, ">=": true}

func (p *Parser) parseComparison() (Expr, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == lexer.Punct && cmpOps[p.cur.Val] {
		op := p.cur.Val
		p.advance()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseConcat() (Expr, error) {
	left, err := p.parseAddSub()
	if err != nil {
		return nil, err
	}
	for p.isPunct("&") {
		p.advance()
		right, err := p.parseAddSub()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: "&", L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseAddSub() (Expr, error) {
	left, err := p.parseMulDiv()
	if err != nil {
		return nil, err
	}
	for p.isPunct("+") || p.isPunct("-") {
		op := p.cur.Val
		p.advance()
		right, err := p.parseMulDiv()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseMulDiv() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isPunct("*") || p.isPunct("/") || p.isPunct("%") {
		op := p.cur.Val
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.isPunct("-") {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: "-", X: x}, nil
	}
	if p.isPunct("+") {
		// Unary plus is accepted and is a no-op wrapper around its operand.
		p.advance()
		return p.parseUnary()
	}
	return p.parseExponent()
}

func (p *Parser) parseExponent() (Expr, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.isPunct("^") {
		p.advance()
		right, err := p.parseUnary() // right-recursion yields right-associativity
		if err != nil {
			return nil, err
		}
		return &Binary{Op: "^", L: left, R: right}, nil
	}
	return left, nil
}

func (p *Parser) parsePrimary() (Expr, error) {
	switch {
	case p.cur.Type == lexer.Number:
		f, err := strconv.ParseFloat(p.cur.Val, 64)
		if err != nil {
			return nil, p.errf("invalid numeric literal %q", p.cur.Val)
		}
		p.advance()
		return &NumberLit{Val: f}, nil

	case p.cur.Type == lexer.String:
		s := p.cur.Val
		p.advance()
		return &StringLit{Val: s}, nil

	case p.isPunct("("):
		p.advance()
		inner, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return inner, nil

	case p.cur.Type == lexer.Ident:
		return p.parseIdentLed()

	default:
		return nil, p.errf("unexpected token %q", p.cur.Val)
	}
}

// parseIdentLed handles everything that can start with an identifier:
// boolean literals, function calls, plain references, and indexed
// references.
func (p *Parser) parseIdentLed() (Expr, error) {
	name := p.cur.Val
	p.advance()

	upper := strings.ToUpper(name)
	if p.isPunct("(") {
		// TRUE()/FALSE() are nullary function-call spellings of the
		// boolean literals; every other name is a real function call.
		if (upper == "TRUE" || upper == "FALSE") && p.peek.Type == lexer.Punct && p.peek.Val == ")" {
			p.advance() // (
			p.advance() // )
			return &BoolLit{Val: upper == "TRUE"}, nil
		}
		return p.parseCallArgs(name)
	}

	if upper == "TRUE" || upper == "FALSE" {
		return &BoolLit{Val: upper == "TRUE"}, nil
	}

	ref := &Ref{Name: name}
	if p.isPunct("[") {
		p.advance()
		idx, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		return &Index{Base: ref, Idx: idx}, nil
	}
	return ref, nil
}

func (p *Parser) parseCallArgs(name string) (Expr, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []Expr
	if !p.isPunct(")") {
		for {
			arg, err := p.ParseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.isPunct(",") {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return &Call{Name: name, Args: args}, nil
}
