package resolve_test

import (
	"testing"

	"github.com/planforge/calcengine/internal/model"
	"github.com/planforge/calcengine/internal/resolve"
)

func buildModel(t *testing.T) *model.Model {
	t.Helper()
	m := model.New()
	m.AddScalar(model.NewLiteralScalar("revenue", 100))
	m.AddScalar(model.NewFormulaScalar("total", "=revenue+1"))

	tbl := model.NewTable("products")
	if err := tbl.AddColumn(model.NewNumberColumn("price", []float64{10, 20})); err != nil {
		t.Fatal(err)
	}
	tbl.AddRowFormula("taxed", "=price*1.1")
	m.AddTable(tbl)
	return m
}

func TestResolveScalar(t *testing.T) {
	m := buildModel(t)
	key, err := resolve.Resolve(m, resolve.Scope{}, "revenue")
	if err != nil {
		t.Fatal(err)
	}
	if key.Kind != resolve.KindScalar || key.Scalar != "revenue" {
		t.Errorf("got %+v", key)
	}
}

func TestResolveTableColumn(t *testing.T) {
	m := buildModel(t)
	key, err := resolve.Resolve(m, resolve.Scope{}, "products.price")
	if err != nil {
		t.Fatal(err)
	}
	if key.Kind != resolve.KindColumn || key.Table != "products" || key.Column != "price" {
		t.Errorf("got %+v", key)
	}
	if key.Name() != "products.price" {
		t.Errorf("Name() = %q", key.Name())
	}
}

func TestResolveSiblingColumnInRowScope(t *testing.T) {
	m := buildModel(t)
	key, err := resolve.Resolve(m, resolve.Scope{Table: "products"}, "price")
	if err != nil {
		t.Fatal(err)
	}
	if key.Kind != resolve.KindColumn || key.Table != "products" || key.Column != "price" {
		t.Errorf("got %+v", key)
	}
}

func TestResolveBareSiblingFailsOutsideRowScope(t *testing.T) {
	m := buildModel(t)
	if _, err := resolve.Resolve(m, resolve.Scope{}, "price"); err == nil {
		t.Errorf("expected bare column name to fail outside a row-formula scope")
	}
}

func TestResolveScalarPriorityOverColumn(t *testing.T) {
	// A scalar named identically to what would otherwise parse as a
	// table.column reference must win: step 1 runs before step 2.
	m := model.New()
	m.AddScalar(model.NewLiteralScalar("products.price", 5))
	tbl := model.NewTable("products")
	_ = tbl.AddColumn(model.NewNumberColumn("price", []float64{1}))
	m.AddTable(tbl)

	key, err := resolve.Resolve(m, resolve.Scope{}, "products.price")
	if err != nil {
		t.Fatal(err)
	}
	if key.Kind != resolve.KindScalar {
		t.Errorf("expected scalar priority, got %+v", key)
	}
}

func TestResolveUnknownNameErrors(t *testing.T) {
	m := buildModel(t)
	if _, err := resolve.Resolve(m, resolve.Scope{}, "nope"); err == nil {
		t.Errorf("expected an error for an unresolved name")
	}
}

func TestResolveRowFormulaColumnName(t *testing.T) {
	m := buildModel(t)
	key, err := resolve.Resolve(m, resolve.Scope{}, "products.taxed")
	if err != nil {
		t.Fatal(err)
	}
	if key.Kind != resolve.KindColumn || key.Column != "taxed" {
		t.Errorf("got %+v", key)
	}
}

func TestResolveCrossNamespaceInclude(t *testing.T) {
	m := model.New()
	included := &model.ResolvedModel{
		Scalars: model.NewOrderedMap[*model.Scalar](),
		Tables:  model.NewOrderedMap[*model.Table](),
	}
	included.Scalars.Set("rate", model.NewLiteralScalar("rate", 0.07))
	m.AddInclude(model.Include{Namespace: "tax", Path: "tax.yml"}, included)

	key, err := resolve.Resolve(m, resolve.Scope{}, "tax.rate")
	if err != nil {
		t.Fatal(err)
	}
	if key.Kind != resolve.KindScalar || key.Scalar != "tax.rate" {
		t.Errorf("got %+v", key)
	}
}
