// Package kubeopenapi compiles the OpenAPI v3 schemas of Kubernetes
// CustomResourceDefinitions into skema schemas under the structural
// dialect (see Dialect).
package kubeopenapi

import (
	"context"
	"errors"
	"fmt"

	skema "github.com/reoring/skema"
)

// Import compiles a CRD schema. The input is a decoded value or raw JSON
// bytes holding either a CRD document or an openAPIV3Schema object.
func Import(schema any, opts Options) (*skema.Schema, Diag, error) {
	d := &simpleDiag{}
	if schema == nil {
		return nil, d, errors.New("kubeopenapi: nil schema")
	}
	var root map[string]any
	switch t := schema.(type) {
	case []byte:
		v, err := skema.DecodeJSON(t)
		if err != nil {
			return nil, d, fmt.Errorf("kubeopenapi: invalid JSON: %w", err)
		}
		root, _ = v.(map[string]any)
	case map[string]any:
		root = t
	}
	if root == nil {
		return nil, d, fmt.Errorf("kubeopenapi: unsupported schema input %T", schema)
	}

	if spec, ok := root["openAPIV3Schema"].(map[string]any); ok {
		root = spec
	} else if kind, _ := root["kind"].(string); kind == "CustomResourceDefinition" {
		unwrapped, err := unwrapCRDSchema(root, opts.Version)
		if err != nil {
			return nil, d, err
		}
		root = unwrapped
	}

	root, _ = skema.DeepCopy(root).(map[string]any)
	(&planner{opts: opts, d: d}).root(root)

	reg := skema.NewRegistry(skema.Config{
		DefaultDialect: DialectID,
		Dialects:       []*skema.Dialect{Dialect()},
		StrictFormats:  opts.StrictFormats,
		AnonymousBase:  "urn:skema:crd:",
	})
	s, err := reg.Compile(context.Background(), root)
	if err != nil {
		return nil, d, fmt.Errorf("kubeopenapi: %w", err)
	}
	return s, d, nil
}

// unwrapCRDSchema extracts openAPIV3Schema from a CRD document. It looks
// for spec.versions[].schema.openAPIV3Schema, picking the named version or
// else the first served one, then falls back to spec.validation for
// legacy specs.
func unwrapCRDSchema(root map[string]any, version string) (map[string]any, error) {
	spec, _ := root["spec"].(map[string]any)
	if spec == nil {
		return nil, errors.New("kubeopenapi: CRD has no spec")
	}
	vers, _ := spec["versions"].([]any)
	var firstFound map[string]any
	for _, v := range vers {
		vm, _ := v.(map[string]any)
		if vm == nil {
			continue
		}
		oas := versionSchema(vm, spec)
		if oas == nil {
			continue
		}
		if version != "" {
			if name, _ := vm["name"].(string); name == version {
				return oas, nil
			}
			continue
		}
		served := true
		if sv, ok := vm["served"].(bool); ok {
			served = sv
		}
		if served {
			return oas, nil
		}
		if firstFound == nil {
			firstFound = oas
		}
	}
	if version != "" {
		return nil, fmt.Errorf("kubeopenapi: CRD version %q not found", version)
	}
	if firstFound != nil {
		return firstFound, nil
	}
	if val, ok := spec["validation"].(map[string]any); ok {
		if oas, ok := val["openAPIV3Schema"].(map[string]any); ok {
			return oas, nil
		}
	}
	return nil, errors.New("kubeopenapi: CRD declares no openAPIV3Schema")
}

// versionSchema returns the schema of one version entry, falling back to
// the legacy top-level spec.validation.
func versionSchema(vm, spec map[string]any) map[string]any {
	if sch, ok := vm["schema"].(map[string]any); ok {
		if oas, ok := sch["openAPIV3Schema"].(map[string]any); ok {
			return oas
		}
	}
	if val, ok := spec["validation"].(map[string]any); ok {
		if oas, ok := val["openAPIV3Schema"].(map[string]any); ok {
			return oas
		}
	}
	return nil
}
