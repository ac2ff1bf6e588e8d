package kubeopenapi

import "fmt"

// UnknownBehavior configures how fields the CRD schema does not declare are
// treated.
type UnknownBehavior int

const (
	// UnknownPrune accepts undeclared fields, matching an API server that
	// prunes them on write.
	UnknownPrune UnknownBehavior = iota
	// UnknownStrict rejects undeclared fields unless the enclosing object
	// sets x-kubernetes-preserve-unknown-fields.
	UnknownStrict
)

// Options controls import behavior for Kubernetes OpenAPI v3 schemas.
type Options struct {
	// Version selects spec.versions[].name. Empty picks the first served
	// version.
	Version string
	Unknown UnknownBehavior
	// StrictFormats fails on formats the dialect does not know.
	StrictFormats bool
}

// Diag carries non-fatal warnings produced during import.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool        { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string       { return append([]string(nil), d.ws...) }
func (d *simpleDiag) warnf(f string, a ...any) { d.ws = append(d.ws, fmt.Sprintf(f, a...)) }
