package model_test

import (
	"reflect"
	"testing"

	"github.com/planforge/calcengine/internal/model"
)

func TestOrderedMapPreservesInsertionOrder(t *testing.T) {
	om := model.NewOrderedMap[int]()
	om.Set("c", 3)
	om.Set("a", 1)
	om.Set("b", 2)

	want := []string{"c", "a", "b"}
	if got := om.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestOrderedMapUpdateKeepsPosition(t *testing.T) {
	om := model.NewOrderedMap[int]()
	om.Set("a", 1)
	om.Set("b", 2)
	om.Set("a", 99)

	if got := om.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Keys() = %v, want [a b]", got)
	}
	v, ok := om.Get("a")
	if !ok || v != 99 {
		t.Errorf("Get(a) = %v, %v, want 99, true", v, ok)
	}
}

func TestOrderedMapDelete(t *testing.T) {
	om := model.NewOrderedMap[int]()
	om.Set("a", 1)
	om.Set("b", 2)
	om.Delete("a")

	if om.Has("a") {
		t.Errorf("expected a to be deleted")
	}
	if om.Len() != 1 {
		t.Errorf("Len() = %d, want 1", om.Len())
	}
}

func TestTableAddColumnEnforcesEqualLength(t *testing.T) {
	tbl := model.NewTable("products")
	if err := tbl.AddColumn(model.NewNumberColumn("price", []float64{1, 2, 3})); err != nil {
		t.Fatal(err)
	}
	err := tbl.AddColumn(model.NewNumberColumn("qty", []float64{1, 2}))
	if err == nil {
		t.Fatal("expected a length-mismatch error")
	}
	if tbl.RowCount() != 3 {
		t.Errorf("RowCount() = %d, want 3", tbl.RowCount())
	}
}

func TestScalarLiteralAndFormula(t *testing.T) {
	lit := model.NewLiteralScalar("a", 5)
	if lit.HasFormula() {
		t.Errorf("literal scalar should not report HasFormula")
	}
	if lit.Literal == nil || *lit.Literal != 5 {
		t.Errorf("got Literal %v, want 5", lit.Literal)
	}

	f := model.NewFormulaScalar("b", "=a+1")
	if !f.HasFormula() {
		t.Errorf("formula scalar should report HasFormula")
	}
}

func TestModelAddScalarAndTable(t *testing.T) {
	m := model.New()
	m.AddScalar(model.NewLiteralScalar("a", 1))
	tbl := model.NewTable("t")
	m.AddTable(tbl)

	if !m.Scalars.Has("a") {
		t.Errorf("expected scalar a to be registered")
	}
	if !m.Tables.Has("t") {
		t.Errorf("expected table t to be registered")
	}
}
