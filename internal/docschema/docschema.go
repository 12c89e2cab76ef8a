// Package docschema tracks which document schema versions the external
// loader (and, transitively, the validate/import/upgrade CLI commands)
// accepts before handing a document to calcengine.
package docschema

import "fmt"

// SupportedVersions lists every schema version the loader accepts,
// oldest first.
var SupportedVersions = []string{"1.0.0", "5.0.0"}

// CheckVersion reports an error if v is not one of SupportedVersions.
func CheckVersion(v string) error {
	for _, s := range SupportedVersions {
		if s == v {
			return nil
		}
	}
	return fmt.Errorf("docschema: unsupported document version %q (supported: %v)", v, SupportedVersions)
}
