// Package runid generates the opaque identifier that tags one
// evaluate() call, so the audit-log rows recorded for that run can be
// correlated. Structured errors and log lines do not carry it.
//
// What: New returns a fresh run identifier.
// How: github.com/google/uuid's random (v4) generator, the same
// dependency and the same one-call-one-id pattern this package's
// ancestor used to tag each query execution for its audit log.
// Why: a formula engine batch-evaluates an entire model in one call;
// tagging that call rather than each individual formula keeps log volume
// proportional to runs, not to formula count.
package runid

import "github.com/google/uuid"

// New returns a fresh run identifier as its canonical string form.
func New() string {
	return uuid.New().String()
}
