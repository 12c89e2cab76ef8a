package runid_test

import (
	"testing"

	"github.com/planforge/calcengine/internal/runid"
)

func TestNewProducesDistinctIDs(t *testing.T) {
	a := runid.New()
	b := runid.New()
	if a == b {
		t.Errorf("expected two calls to New() to produce distinct IDs, got %q twice", a)
	}
	if len(a) == 0 {
		t.Errorf("expected a non-empty run ID")
	}
}
