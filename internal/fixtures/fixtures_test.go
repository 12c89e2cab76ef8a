package fixtures_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/planforge/calcengine/internal/fixtures"
	"github.com/planforge/calcengine/internal/value"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoadAndBuildModel(t *testing.T) {
	path := writeFixture(t, `
scalars:
  rate:
    literal: 0.05
  total:
    formula: "principal * (1 + rate)"
  principal:
    literal: 1000
tables:
  products:
    columns:
      price: [10, 20, 30]
    row_formulas:
      taxed: "price * 1.1"
expected:
  scalars:
    total: 1050
  columns:
    products:
      taxed: [11, 22, 33]
`)

	f, err := fixtures.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	m, err := f.BuildModel()
	if err != nil {
		t.Fatalf("BuildModel: %v", err)
	}

	s, ok := m.Scalars.Get("rate")
	if !ok || s.Literal == nil || *s.Literal != 0.05 {
		t.Errorf("expected literal scalar rate=0.05, got %+v, ok=%v", s, ok)
	}
	tot, ok := m.Scalars.Get("total")
	if !ok || !tot.HasFormula() {
		t.Errorf("expected formula scalar total, got %+v, ok=%v", tot, ok)
	}

	tbl, ok := m.Tables.Get("products")
	if !ok {
		t.Fatal("expected table products")
	}
	col, ok := tbl.Columns.Get("price")
	if !ok || col.Len() != 3 {
		t.Errorf("expected column price with 3 rows, got ok=%v len=%d", ok, col.Len())
	}
}

func TestScalarWithNeitherLiteralNorFormulaErrors(t *testing.T) {
	path := writeFixture(t, `
scalars:
  broken: {}
`)
	f, err := fixtures.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := f.BuildModel(); err == nil {
		t.Fatal("expected an error for a scalar with neither literal nor formula")
	}
}

func TestColumnTypeInference(t *testing.T) {
	path := writeFixture(t, `
tables:
  mixed:
    columns:
      nums: [1, 2, 3]
      flags: [true, false]
      words: ["a", "b"]
      empty: []
`)
	f, err := fixtures.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	m, err := f.BuildModel()
	if err != nil {
		t.Fatalf("BuildModel: %v", err)
	}
	tbl, _ := m.Tables.Get("mixed")

	nums, _ := tbl.Columns.Get("nums")
	if nums.Len() != 3 {
		t.Errorf("expected 3 numeric rows, got %d", nums.Len())
	}
	flags, _ := tbl.Columns.Get("flags")
	if flags.Len() != 2 {
		t.Errorf("expected 2 boolean rows, got %d", flags.Len())
	}
	words, _ := tbl.Columns.Get("words")
	if words.Len() != 2 {
		t.Errorf("expected 2 text rows, got %d", words.Len())
	}
	empty, _ := tbl.Columns.Get("empty")
	if empty.Len() != 0 {
		t.Errorf("expected an empty column, got %d rows", empty.Len())
	}
}

func TestExpectedValueConversions(t *testing.T) {
	cases := []struct {
		raw  interface{}
		want value.Value
	}{
		{1.5, value.Num(1.5)},
		{2, value.Num(2)},
		{true, value.Bool(true)},
		{"hi", value.Text("hi")},
		{nil, value.Nil},
	}
	for _, c := range cases {
		got := fixtures.ExpectedValue(c.raw)
		if got.Kind() != c.want.Kind() {
			t.Errorf("ExpectedValue(%v) kind = %v, want %v", c.raw, got.Kind(), c.want.Kind())
		}
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := fixtures.Load("/nonexistent/path/fixture.yml"); err == nil {
		t.Fatal("expected an error loading a nonexistent fixture file")
	}
}

func TestLoadScenarios(t *testing.T) {
	path := writeFixture(t, `
cases:
  basic:
    scalars:
      x:
        literal: 2
    expected:
      scalars:
        x: 2
  another:
    scalars:
      y:
        literal: 3
    expected:
      scalars:
        y: 3
`)
	set, err := fixtures.LoadScenarios(path)
	if err != nil {
		t.Fatalf("LoadScenarios: %v", err)
	}
	if len(set.Cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(set.Cases))
	}
	if _, ok := set.Cases["basic"]; !ok {
		t.Error("expected case \"basic\"")
	}
}
