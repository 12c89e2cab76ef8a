package lexer_test

import (
	"testing"

	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/lexer"
)

func tokens(t *testing.T, s string) []lexer.Token {
	t.Helper()
	lx := lexer.New(s)
	var toks []lexer.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			t.Fatalf("lexing %q: %v", s, err)
		}
		toks = append(toks, tok)
		if tok.Type == lexer.End {
			break
		}
	}
	return toks
}

func TestBasicStream(t *testing.T) {
	toks := tokens(t, "=a.b+12.5*\"hi\"")
	want := []struct {
		typ lexer.TokenType
		val string
	}{
		{lexer.Ident, "a.b"},
		{lexer.Punct, "+"},
		{lexer.Number, "12.5"},
		{lexer.Punct, "*"},
		{lexer.String, "hi"},
		{lexer.End, ""},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w.typ || toks[i].Val != w.val {
			t.Errorf("token %d: got {%v %q}, want {%v %q}", i, toks[i].Type, toks[i].Val, w.typ, w.val)
		}
	}
}

func TestGreedyComparisonOperators(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<=", "<="},
		{">=", ">="},
		{"<>", "<>"},
		{"<", "<"},
		{">", ">"},
	}
	for _, c := range cases {
		toks := tokens(t, c.in)
		if toks[0].Val != c.want {
			t.Errorf("%q: got %q, want %q", c.in, toks[0].Val, c.want)
		}
	}
}

func TestStringEscaping(t *testing.T) {
	toks := tokens(t, `"say ""hi"""`)
	if toks[0].Type != lexer.String || toks[0].Val != `say "hi"` {
		t.Errorf("got %+v, want unescaped `say \"hi\"`", toks[0])
	}
}

func TestUnterminatedStringError(t *testing.T) {
	lx := lexer.New(`"abc`)
	_, err := lx.Next()
	if err == nil {
		t.Fatal("expected an error for an unterminated string")
	}
	ce, ok := calcerr.As(err)
	if !ok {
		t.Fatalf("expected a *calcerr.Error, got %T", err)
	}
	if ce.Kind != calcerr.Parse {
		t.Errorf("got Kind %v, want Parse", ce.Kind)
	}
}

func TestIllegalCharacterError(t *testing.T) {
	lx := lexer.New("1 $ 2")
	if _, err := lx.Next(); err != nil {
		t.Fatalf("unexpected error on first token: %v", err)
	}
	_, err := lx.Next()
	if err == nil {
		t.Fatal("expected an error for an illegal character")
	}
	ce, ok := calcerr.As(err)
	if !ok {
		t.Fatalf("expected a *calcerr.Error, got %T", err)
	}
	if ce.Pos != 2 {
		t.Errorf("got Pos %d, want 2", ce.Pos)
	}
}

func TestScientificNotation(t *testing.T) {
	toks := tokens(t, "1.5e10 2E-3 3e")
	if toks[0].Val != "1.5e10" {
		t.Errorf("got %q, want 1.5e10", toks[0].Val)
	}
	if toks[1].Val != "2E-3" {
		t.Errorf("got %q, want 2E-3", toks[1].Val)
	}
	// "3e" has no digits after the exponent marker, so it should not be
	// consumed into the number token.
	if toks[2].Val != "3" {
		t.Errorf("got %q, want 3 (trailing e not consumed)", toks[2].Val)
	}
}

func TestLeadingEqualsConsumedOnce(t *testing.T) {
	toks := tokens(t, "==1")
	if toks[0].Type != lexer.Punct || toks[0].Val != "=" {
		t.Errorf("expected a leftover '=' punct token, got %+v", toks[0])
	}
}
