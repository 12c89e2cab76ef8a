package calcerr_test

import (
	"testing"

	"github.com/planforge/calcengine/internal/calcerr"
)

func TestAsAndIs(t *testing.T) {
	err := calcerr.DivZerof("division by zero")
	ce, ok := calcerr.As(err)
	if !ok {
		t.Fatal("expected As to recognize a *calcerr.Error")
	}
	if ce.Kind != calcerr.DivZero {
		t.Errorf("got Kind %v, want DivZero", ce.Kind)
	}
	if !calcerr.Is(err, calcerr.DivZero) {
		t.Errorf("Is(err, DivZero) = false, want true")
	}
	if calcerr.Is(err, calcerr.Type) {
		t.Errorf("Is(err, Type) = true, want false")
	}
}

func TestWithEntityOnlySetsOnce(t *testing.T) {
	e := calcerr.Referencef("unresolved %q", "x")
	tagged := e.WithEntity("total")
	if tagged.Entity != "total" {
		t.Errorf("Entity = %q, want total", tagged.Entity)
	}
	again := tagged.WithEntity("other")
	if again.Entity != "total" {
		t.Errorf("WithEntity should not overwrite an existing entity, got %q", again.Entity)
	}
}

func TestCyclefCarriesMembers(t *testing.T) {
	e := calcerr.Cyclef([]string{"a", "b"})
	if e.Kind != calcerr.Cycle {
		t.Errorf("got Kind %v, want Cycle", e.Kind)
	}
	if len(e.Cycle) != 2 {
		t.Errorf("got %d cycle members, want 2", len(e.Cycle))
	}
}

func TestErrorMessageIncludesEntityWhenSet(t *testing.T) {
	e := calcerr.Typef("bad type").WithEntity("rate")
	msg := e.Error()
	if msg == "" {
		t.Fatal("expected a non-empty error message")
	}
	if !contains(msg, "rate") {
		t.Errorf("expected error message to mention entity %q, got %q", "rate", msg)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
