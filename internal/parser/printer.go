package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders an Expr back into formula text in a canonical, fully
// parenthesized form. Re-parsing Print(e) is guaranteed to reproduce an
// AST equal to e, which is what the round-trip testable property checks.
func Print(e Expr) string {
	var sb strings.Builder
	print1(&sb, e)
	return sb.String()
}

func print1(sb *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *NumberLit:
		sb.WriteString(strconv.FormatFloat(n.Val, 'g', -1, 64))
	case *StringLit:
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(n.Val, `"`, `""`))
		sb.WriteByte('"')
	case *BoolLit:
		if n.Val {
			sb.WriteString("TRUE")
		} else {
			sb.WriteString("FALSE")
		}
	case *Ref:
		sb.WriteString(n.Name)
	case *Index:
		print1(sb, n.Base)
		sb.WriteByte('[')
		print1(sb, n.Idx)
		sb.WriteByte(']')
	case *Unary:
		sb.WriteString(n.Op)
		sb.WriteByte('(')
		print1(sb, n.X)
		sb.WriteByte(')')
	case *Binary:
		sb.WriteByte('(')
		print1(sb, n.L)
		sb.WriteString(n.Op)
		print1(sb, n.R)
		sb.WriteByte(')')
	case *Call:
		sb.WriteString(n.Name)
		sb.WriteByte('(')
		for i, a := range n.Args {
			if i > 0 {
				sb.WriteByte(',')
			}
			print1(sb, a)
		}
		sb.WriteByte(')')
	default:
		fmt.Fprintf(sb, "<?%T>", e)
	}
}

// Equal reports whether two ASTs are structurally identical.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case *NumberLit:
		y, ok := b.(*NumberLit)
		return ok && x.Val == y.Val
	case *StringLit:
		y, ok := b.(*StringLit)
		return ok && x.Val == y.Val
	case *BoolLit:
		y, ok := b.(*BoolLit)
		return ok && x.Val == y.Val
	case *Ref:
		y, ok := b.(*Ref)
		return ok && x.Name == y.Name
	case *Index:
		y, ok := b.(*Index)
		return ok && Equal(x.Base, y.Base) && Equal(x.Idx, y.Idx)
	case *Unary:
		y, ok := b.(*Unary)
		return ok && x.Op == y.Op && Equal(x.X, y.X)
	case *Binary:
		y, ok := b.(*Binary)
		return ok && x.Op == y.Op && Equal(x.L, y.L) && Equal(x.R, y.R)
	case *Call:
		y, ok := b.(*Call)
		if !ok || x.Name != y.Name || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
