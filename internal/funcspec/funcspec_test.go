package funcspec_test

import (
	"sort"
	"testing"

	"github.com/planforge/calcengine/internal/funcspec"
)

func TestLookupIsCaseInsensitive(t *testing.T) {
	upper, ok := funcspec.Lookup("SUM")
	if !ok {
		t.Fatal("expected SUM to be registered")
	}
	lower, ok := funcspec.Lookup("sum")
	if !ok {
		t.Fatal("expected lower-case lookup to succeed")
	}
	if upper.Min != lower.Min || upper.Max != lower.Max {
		t.Errorf("case-insensitive lookups returned different specs: %+v vs %+v", upper, lower)
	}
}

func TestLookupUnknownFunction(t *testing.T) {
	if _, ok := funcspec.Lookup("NOPE"); ok {
		t.Errorf("expected NOPE to be unregistered")
	}
}

func TestVariadicTailKind(t *testing.T) {
	if !funcspec.IsArray("SUM", 0) {
		t.Errorf("SUM's first argument should be an array position")
	}
	if !funcspec.IsArray("SUM", 5) {
		t.Errorf("SUM's variadic tail should stay an array position past the declared Kinds")
	}
}

func TestFixedArgKinds(t *testing.T) {
	if funcspec.IsArray("IF", 0) {
		t.Errorf("IF's condition should not be an array position")
	}
	if !funcspec.IsArray("SORT", 0) {
		t.Errorf("SORT's first argument should be an array position")
	}
	if funcspec.IsArray("SORT", 1) {
		t.Errorf("SORT's order argument should be scalar")
	}
}

func TestCriteriaPositions(t *testing.T) {
	if !funcspec.IsCriteria("SUMIF", 1) {
		t.Errorf("SUMIF's second argument should be a criteria position")
	}
	if funcspec.IsCriteria("SUMIF", 0) {
		t.Errorf("SUMIF's first argument should not be a criteria position")
	}
}

func TestImpureFunctions(t *testing.T) {
	for _, name := range []string{"RAND", "RANDBETWEEN", "TODAY", "NOW"} {
		if !funcspec.IsImpure(name) {
			t.Errorf("%s should be marked impure", name)
		}
	}
	if funcspec.IsImpure("SUM") {
		t.Errorf("SUM should not be marked impure")
	}
}

func TestNamesSortedAndComplete(t *testing.T) {
	names := funcspec.Names()
	if !sort.StringsAreSorted(names) {
		t.Errorf("Names() is not sorted: %v", names)
	}
	for _, want := range []string{"SUM", "IF", "SORT", "MATCH", "DATE"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Names() missing %q", want)
		}
	}
}
