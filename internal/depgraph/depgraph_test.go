package depgraph_test

import (
	"testing"

	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/depgraph"
	"github.com/planforge/calcengine/internal/model"
	"github.com/planforge/calcengine/internal/parser"
	"github.com/planforge/calcengine/internal/resolve"
)

func TestSortOrdersDependenciesBeforeDependents(t *testing.T) {
	m := model.New()
	m.AddScalar(model.NewLiteralScalar("a", 1))
	m.AddScalar(model.NewFormulaScalar("b", "=a+1"))
	m.AddScalar(model.NewFormulaScalar("c", "=b+a"))

	g, err := depgraph.Build(m, parser.Parse)
	if err != nil {
		t.Fatal(err)
	}
	order, err := depgraph.Sort(g)
	if err != nil {
		t.Fatal(err)
	}

	pos := make(map[string]int, len(order))
	for i, k := range order {
		pos[k.Name()] = i
	}
	if pos["a"] > pos["b"] {
		t.Errorf("a must precede b: %v", pos)
	}
	if pos["b"] > pos["c"] {
		t.Errorf("b must precede c: %v", pos)
	}
}

func TestSortDetectsDirectCycle(t *testing.T) {
	m := model.New()
	m.AddScalar(model.NewFormulaScalar("a", "=b+1"))
	m.AddScalar(model.NewFormulaScalar("b", "=a+1"))

	g, err := depgraph.Build(m, parser.Parse)
	if err != nil {
		t.Fatal(err)
	}
	_, err = depgraph.Sort(g)
	if err == nil {
		t.Fatal("expected a cycle error")
	}
	ce, ok := calcerr.As(err)
	if !ok {
		t.Fatalf("expected *calcerr.Error, got %T", err)
	}
	if ce.Kind != calcerr.Cycle {
		t.Errorf("got Kind %v, want Cycle", ce.Kind)
	}
	if len(ce.Cycle) != 2 {
		t.Errorf("expected 2 members in cycle, got %v", ce.Cycle)
	}
}

func TestSortDetectsSelfCycle(t *testing.T) {
	m := model.New()
	m.AddScalar(model.NewFormulaScalar("a", "=a+1"))

	g, err := depgraph.Build(m, parser.Parse)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := depgraph.Sort(g); err == nil {
		t.Fatal("expected a self-cycle error")
	}
}

func TestSortIsDeterministicAcrossInsertionOrders(t *testing.T) {
	build := func(names []string) ([]string, error) {
		m := model.New()
		for _, n := range names {
			switch n {
			case "a":
				m.AddScalar(model.NewLiteralScalar("a", 1))
			case "b":
				m.AddScalar(model.NewFormulaScalar("b", "=a+1"))
			case "c":
				m.AddScalar(model.NewFormulaScalar("c", "=a+b"))
			}
		}
		g, err := depgraph.Build(m, parser.Parse)
		if err != nil {
			return nil, err
		}
		order, err := depgraph.Sort(g)
		if err != nil {
			return nil, err
		}
		names2 := make([]string, len(order))
		for i, k := range order {
			names2[i] = k.Name()
		}
		return names2, nil
	}

	// Regardless of insertion order, the dependency relationships force
	// the same relative order: a before b before c.
	orderings := [][]string{
		{"a", "b", "c"},
		{"c", "b", "a"},
		{"b", "a", "c"},
	}
	for _, ins := range orderings {
		out, err := build(ins)
		if err != nil {
			t.Fatalf("insertion order %v: %v", ins, err)
		}
		idx := make(map[string]int, len(out))
		for i, n := range out {
			idx[n] = i
		}
		if idx["a"] > idx["b"] || idx["b"] > idx["c"] {
			t.Errorf("insertion order %v produced invalid evaluation order %v", ins, out)
		}
	}
}

func TestSortIncludesResolvedIncludeEntitiesAsLeaves(t *testing.T) {
	rm := &model.ResolvedModel{
		Scalars: model.NewOrderedMap[*model.Scalar](),
		Tables:  model.NewOrderedMap[*model.Table](),
	}
	rm.Scalars.Set("rate", model.NewLiteralScalar("rate", 0.2))
	refTbl := model.NewTable("products")
	if err := refTbl.AddColumn(model.NewNumberColumn("price", []float64{10, 20})); err != nil {
		t.Fatal(err)
	}
	rm.Tables.Set("products", refTbl)

	m := model.New()
	m.AddInclude(model.Include{Namespace: "shared", Path: "shared.calc"}, rm)
	m.AddScalar(model.NewFormulaScalar("adjusted", "=shared.rate*2"))
	tbl := model.NewTable("local")
	tbl.AddRowFormula("total", "=shared.products.price*1.1")
	if err := tbl.AddColumn(model.NewNumberColumn("qty", []float64{1, 2})); err != nil {
		t.Fatal(err)
	}
	m.AddTable(tbl)

	g, err := depgraph.Build(m, parser.Parse)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	order, err := depgraph.Sort(g)
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}

	pos := make(map[string]int, len(order))
	for i, k := range order {
		pos[k.Name()] = i
	}
	if _, ok := pos["shared.rate"]; !ok {
		t.Errorf("expected shared.rate to be a node in the sorted order, got %v", pos)
	}
	if _, ok := pos["shared.products.price"]; !ok {
		t.Errorf("expected shared.products.price to be a node in the sorted order, got %v", pos)
	}
	if pos["shared.rate"] > pos["adjusted"] {
		t.Errorf("shared.rate must precede adjusted: %v", pos)
	}
	if pos["shared.products.price"] > pos["local.total"] {
		t.Errorf("shared.products.price must precede local.total: %v", pos)
	}
}

func TestDependenciesAcrossRowFormula(t *testing.T) {
	m := model.New()
	tbl := model.NewTable("products")
	if err := tbl.AddColumn(model.NewNumberColumn("price", []float64{1, 2})); err != nil {
		t.Fatal(err)
	}
	tbl.AddRowFormula("taxed", "=price*1.1")
	m.AddTable(tbl)

	g, err := depgraph.Build(m, parser.Parse)
	if err != nil {
		t.Fatal(err)
	}
	order, err := depgraph.Sort(g)
	if err != nil {
		t.Fatal(err)
	}
	pos := make(map[string]int, len(order))
	for i, k := range order {
		pos[k.Name()] = i
	}
	if pos["products.price"] > pos["products.taxed"] {
		t.Errorf("products.price must precede products.taxed: %v", pos)
	}
}

func TestTransitiveWalksDependenciesInEvaluationOrder(t *testing.T) {
	m := model.New()
	m.AddScalar(model.NewLiteralScalar("a", 1))
	m.AddScalar(model.NewFormulaScalar("b", "=a+1"))
	m.AddScalar(model.NewFormulaScalar("c", "=b+a"))
	m.AddScalar(model.NewLiteralScalar("unrelated", 99))

	g, err := depgraph.Build(m, parser.Parse)
	if err != nil {
		t.Fatal(err)
	}

	deps, err := depgraph.Transitive(g, resolve.Key{Kind: resolve.KindScalar, Scalar: "c"})
	if err != nil {
		t.Fatal(err)
	}

	if len(deps) != 2 {
		t.Fatalf("expected exactly 2 transitive dependencies, got %v", deps)
	}
	pos := make(map[string]int, len(deps))
	for i, k := range deps {
		pos[k.Name()] = i
	}
	if _, ok := pos["a"]; !ok {
		t.Errorf("expected a among c's transitive dependencies: %v", deps)
	}
	if _, ok := pos["b"]; !ok {
		t.Errorf("expected b among c's transitive dependencies: %v", deps)
	}
	if _, ok := pos["unrelated"]; ok {
		t.Errorf("unrelated must not appear in c's transitive dependencies: %v", deps)
	}
	if pos["a"] > pos["b"] {
		t.Errorf("a must precede b in the transitive walk: %v", deps)
	}
}

func TestTransitiveOfLeafIsEmpty(t *testing.T) {
	m := model.New()
	m.AddScalar(model.NewLiteralScalar("a", 1))

	g, err := depgraph.Build(m, parser.Parse)
	if err != nil {
		t.Fatal(err)
	}

	deps, err := depgraph.Transitive(g, resolve.Key{Kind: resolve.KindScalar, Scalar: "a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(deps) != 0 {
		t.Errorf("leaf scalar should have no transitive dependencies, got %v", deps)
	}
}
