package docschema_test

import (
	"testing"

	"github.com/planforge/calcengine/internal/docschema"
)

func TestCheckVersionAcceptsSupported(t *testing.T) {
	for _, v := range docschema.SupportedVersions {
		if err := docschema.CheckVersion(v); err != nil {
			t.Errorf("CheckVersion(%q) returned %v, want nil", v, err)
		}
	}
}

func TestCheckVersionRejectsUnsupported(t *testing.T) {
	if err := docschema.CheckVersion("9.9.9"); err == nil {
		t.Errorf("expected an error for an unsupported version")
	}
}
