package kubeopenapi

import (
	"bytes"
	"fmt"

	skema "github.com/reoring/skema"
)

// ImportYAMLForCRDKind scans a multi-document YAML (e.g., CRD bundle) and imports
// the first CustomResourceDefinition matching the given spec.names.kind.
func ImportYAMLForCRDKind(data []byte, kind string, opts Options) (*skema.Schema, Diag, error) {
	return importYAMLWhere(data, opts, func(m map[string]any) bool {
		spec, _ := m["spec"].(map[string]any)
		names, _ := spec["names"].(map[string]any)
		k, _ := names["kind"].(string)
		return k == kind
	}, fmt.Sprintf("kind %q", kind))
}

// ImportYAMLForCRDName scans a multi-document YAML and imports the CRD
// with given metadata.name.
func ImportYAMLForCRDName(data []byte, name string, opts Options) (*skema.Schema, Diag, error) {
	return importYAMLWhere(data, opts, func(m map[string]any) bool {
		meta, _ := m["metadata"].(map[string]any)
		n, _ := meta["name"].(string)
		return n == name
	}, fmt.Sprintf("name %q", name))
}

func importYAMLWhere(data []byte, opts Options, match func(map[string]any) bool, what string) (*skema.Schema, Diag, error) {
	var crd map[string]any
	err := NewStrictYAMLReader(bytes.NewReader(data)).each(func(m map[string]any) (bool, error) {
		if k, _ := m["kind"].(string); k != "CustomResourceDefinition" || !match(m) {
			return false, nil
		}
		crd = m
		return true, nil
	})
	if err != nil {
		return nil, &simpleDiag{}, fmt.Errorf("kubeopenapi: %w", err)
	}
	if crd == nil {
		return nil, &simpleDiag{}, fmt.Errorf("kubeopenapi: CRD %s not found in YAML bundle", what)
	}
	return Import(crd, opts)
}
