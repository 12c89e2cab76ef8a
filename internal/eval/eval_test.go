package eval_test

import (
	"testing"

	"github.com/planforge/calcengine/internal/eval"
	"github.com/planforge/calcengine/internal/model"
	"github.com/planforge/calcengine/internal/parser"
	"github.com/planforge/calcengine/internal/value"
)

func mustParse(t *testing.T, formula string) parser.Expr {
	t.Helper()
	e, err := parser.Parse(formula)
	if err != nil {
		t.Fatalf("parsing %q: %v", formula, err)
	}
	return e
}

func evalNum(t *testing.T, ctx *eval.Context, formula string) float64 {
	t.Helper()
	v, err := eval.Eval(ctx, mustParse(t, formula))
	if err != nil {
		t.Fatalf("evaluating %q: %v", formula, err)
	}
	f, ok := v.AsNumber()
	if !ok {
		t.Fatalf("%q did not evaluate to a number: %+v", formula, v)
	}
	return f
}

func scalarCtx() *eval.Context {
	return eval.NewScalarContext(model.New(), nil)
}

func TestModSignMatchesDivisor(t *testing.T) {
	ctx := scalarCtx()
	if got := evalNum(t, ctx, "MOD(-5,3)"); got != 1 {
		t.Errorf("MOD(-5,3) = %v, want 1", got)
	}
	if got := evalNum(t, ctx, "MOD(5,-3)"); got != -1 {
		t.Errorf("MOD(5,-3) = %v, want -1", got)
	}
}

func TestModByZeroErrors(t *testing.T) {
	ctx := scalarCtx()
	_, err := eval.Eval(ctx, mustParse(t, "MOD(5,0)"))
	if err == nil {
		t.Fatal("expected an error for MOD(5,0)")
	}
}

func TestExponentEdgeCases(t *testing.T) {
	ctx := scalarCtx()
	if got := evalNum(t, ctx, "0^0"); got != 1 {
		t.Errorf("0^0 = %v, want 1", got)
	}
	if got := evalNum(t, ctx, "2^-1"); got != 0.5 {
		t.Errorf("2^-1 = %v, want 0.5", got)
	}
}

func TestIfIsLazy(t *testing.T) {
	ctx := scalarCtx()
	if got := evalNum(t, ctx, `IF(FALSE,1/0,5)`); got != 5 {
		t.Errorf("IF(FALSE,1/0,5) = %v, want 5", got)
	}
	if got := evalNum(t, ctx, `IF(TRUE,10,1/0)`); got != 10 {
		t.Errorf("IF(TRUE,10,1/0) = %v, want 10", got)
	}
}

func TestBooleanArithmeticCoercion(t *testing.T) {
	ctx := scalarCtx()
	if got := evalNum(t, ctx, "TRUE+1"); got != 2 {
		t.Errorf("TRUE+1 = %v, want 2", got)
	}
	if got := evalNum(t, ctx, "FALSE*5"); got != 0 {
		t.Errorf("FALSE*5 = %v, want 0", got)
	}
}

func TestDateArithmetic(t *testing.T) {
	ctx := scalarCtx()
	if got := evalNum(t, ctx, `DATE(2024,12,31)-DATE(2024,1,1)`); got != 365 {
		t.Errorf(`DATE(2024,12,31)-DATE(2024,1,1) = %v, want 365`, got)
	}
}

// TestDateNumberArithmeticYieldsDate covers adding/subtracting a number
// to/from a Date: the result must stay a Date (day-serial arithmetic under
// the hood), not decay into a bare Number the way Date-Date does.
func TestDateNumberArithmeticYieldsDate(t *testing.T) {
	ctx := scalarCtx()

	plus, err := eval.Eval(ctx, mustParse(t, `DATE(2024,1,1)+7`))
	if err != nil {
		t.Fatal(err)
	}
	if plus.Kind() != value.DateKind {
		t.Fatalf("DATE(2024,1,1)+7 kind = %v, want DateKind", plus.Kind())
	}
	if plus.Str() != "2024-01-08" {
		t.Errorf("DATE(2024,1,1)+7 = %v, want 2024-01-08", plus.Str())
	}

	reversed, err := eval.Eval(ctx, mustParse(t, `7+DATE(2024,1,1)`))
	if err != nil {
		t.Fatal(err)
	}
	if reversed.Kind() != value.DateKind {
		t.Fatalf("7+DATE(2024,1,1) kind = %v, want DateKind", reversed.Kind())
	}
	if reversed.Str() != "2024-01-08" {
		t.Errorf("7+DATE(2024,1,1) = %v, want 2024-01-08", reversed.Str())
	}

	minus, err := eval.Eval(ctx, mustParse(t, `DATE(2024,1,10)-3`))
	if err != nil {
		t.Fatal(err)
	}
	if minus.Kind() != value.DateKind {
		t.Fatalf("DATE(2024,1,10)-3 kind = %v, want DateKind", minus.Kind())
	}
	if minus.Str() != "2024-01-07" {
		t.Errorf("DATE(2024,1,10)-3 = %v, want 2024-01-07", minus.Str())
	}

	diff, err := eval.Eval(ctx, mustParse(t, `DATE(2024,12,31)-DATE(2024,1,1)`))
	if err != nil {
		t.Fatal(err)
	}
	if diff.Kind() != value.NumberKind {
		t.Fatalf("DATE(2024,12,31)-DATE(2024,1,1) kind = %v, want NumberKind", diff.Kind())
	}
}

func TestNetworkdays(t *testing.T) {
	ctx := scalarCtx()
	got := evalNum(t, ctx, `NETWORKDAYS("2024-01-01","2024-01-31")`)
	if got != 23 {
		t.Errorf(`NETWORKDAYS("2024-01-01","2024-01-31") = %v, want 23`, got)
	}
}

func TestIferrorRecoversAndIsIdempotent(t *testing.T) {
	ctx := scalarCtx()
	direct := evalNum(t, ctx, `IFERROR(1/0,99)`)
	nested := evalNum(t, ctx, `IFERROR(IFERROR(1/0,1/0),99)`)
	if direct != 99 || nested != 99 {
		t.Errorf("IFERROR recovery mismatch: direct=%v nested=%v", direct, nested)
	}
}

func buildSortModel(t *testing.T) *model.Model {
	t.Helper()
	m := model.New()
	tbl := model.NewTable("nums")
	if err := tbl.AddColumn(model.NewNumberColumn("v", []float64{3, 1, 4, 1, 5})); err != nil {
		t.Fatal(err)
	}
	m.AddTable(tbl)
	return m
}

func TestSortAscendingAndDescending(t *testing.T) {
	m := buildSortModel(t)
	ctx := eval.NewScalarContext(m, nil)

	asc, err := eval.Eval(ctx, mustParse(t, "SORT(nums.v)"))
	if err != nil {
		t.Fatal(err)
	}
	wantAsc := []float64{1, 1, 3, 4, 5}
	items := asc.Items()
	if len(items) != len(wantAsc) {
		t.Fatalf("got %d items, want %d", len(items), len(wantAsc))
	}
	for i, w := range wantAsc {
		if f, _ := items[i].AsNumber(); f != w {
			t.Errorf("ascending[%d] = %v, want %v", i, f, w)
		}
	}

	desc, err := eval.Eval(ctx, mustParse(t, "SORT(nums.v,-1)"))
	if err != nil {
		t.Fatal(err)
	}
	wantDesc := []float64{5, 4, 3, 1, 1}
	items = desc.Items()
	for i, w := range wantDesc {
		if f, _ := items[i].AsNumber(); f != w {
			t.Errorf("descending[%d] = %v, want %v", i, f, w)
		}
	}
}

func TestMatchExact(t *testing.T) {
	m := model.New()
	tbl := model.NewTable("codes")
	if err := tbl.AddColumn(model.NewNumberColumn("v", []float64{101, 102, 103, 104})); err != nil {
		t.Fatal(err)
	}
	m.AddTable(tbl)
	ctx := eval.NewScalarContext(m, nil)

	if got := evalNum(t, ctx, "MATCH(103,codes.v,0)"); got != 3 {
		t.Errorf("MATCH(103,codes.v,0) = %v, want 3", got)
	}
}

func TestRowFormulaBroadcastsToCurrentRow(t *testing.T) {
	m := model.New()
	tbl := model.NewTable("products")
	if err := tbl.AddColumn(model.NewNumberColumn("price", []float64{10, 20, 30})); err != nil {
		t.Fatal(err)
	}
	m.AddTable(tbl)

	ctx := eval.NewRowContext(m, "products", 1, nil)
	got := evalNum(t, ctx, "price*2")
	if got != 40 {
		t.Errorf("row 1 price*2 = %v, want 40", got)
	}
}

func TestApplyBinaryDivZero(t *testing.T) {
	_, err := eval.ApplyBinary("/", value.Num(1), value.Num(0))
	if err == nil {
		t.Fatal("expected a division-by-zero error")
	}
}
