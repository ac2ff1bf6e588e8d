package skema_test

import (
	"context"
	"testing"

	skema "github.com/reoring/skema"
)

func addResources(t *testing.T, reg *skema.Registry, docs map[string]string) {
	t.Helper()
	for id, doc := range docs {
		if err := reg.AddResourceBytes(id, []byte(doc)); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
}

func getSchema(t *testing.T, reg *skema.Registry, id string) *skema.Schema {
	t.Helper()
	s, err := reg.GetSchema(context.Background(), id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return s
}

func TestDynamicRef_ExtendsRecursiveSchema(t *testing.T) {
	reg := newRegistry()
	addResources(t, reg, map[string]string{
		"https://example.com/tree": `{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"$id": "https://example.com/tree",
			"$dynamicAnchor": "node",
			"type": "object",
			"properties": {
				"data": true,
				"children": {"type": "array", "items": {"$dynamicRef": "#node"}}
			}
		}`,
		"https://example.com/strict-tree": `{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"$id": "https://example.com/strict-tree",
			"$dynamicAnchor": "node",
			"$ref": "tree",
			"unevaluatedProperties": false
		}`,
	})
	inst := `{"children": [{"daat": 1}]}`

	tree := getSchema(t, reg, "https://example.com/tree")
	if errs := validate(t, tree, inst); len(errs) != 0 {
		t.Fatalf("tree accepts unknown members: %v", errs)
	}
	strict := getSchema(t, reg, "https://example.com/strict-tree")
	e := findError(validate(t, strict, inst), "/children/0")
	if e == nil || e.Keyword != "unevaluatedProperties" || *e.Property != "daat" {
		t.Fatalf("strict tree must reject /children/0/daat: %v", e)
	}
	if got := e.EvaluationPath.Pointer(); got != "/$ref/properties/children/items/$dynamicRef/unevaluatedProperties" {
		t.Fatalf("evaluation path: %s", got)
	}
}

// findError returns the first error at the instance location ptr.
func findError(errs skema.Errors, ptr string) *skema.Error {
	for _, e := range errs {
		if e.InstanceLocation.Pointer() == ptr {
			return e
		}
	}
	return nil
}

func TestDynamicRef_WithoutDynamicAnchorIsStatic(t *testing.T) {
	reg := newRegistry()
	addResources(t, reg, map[string]string{
		"https://example.com/list": `{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"$id": "https://example.com/list",
			"$defs": {"item": {"$anchor": "item", "type": "string"}},
			"items": {"$dynamicRef": "#item"}
		}`,
		"https://example.com/numbers": `{
			"$schema": "https://json-schema.org/draft/2020-12/schema",
			"$id": "https://example.com/numbers",
			"$defs": {"item": {"$dynamicAnchor": "item", "type": "number"}},
			"$ref": "list"
		}`,
	})
	s := getSchema(t, reg, "https://example.com/numbers")
	if errs := validate(t, s, `["a"]`); len(errs) != 0 {
		t.Fatalf("a plain $anchor target must not be overridden: %v", errs)
	}
	if errs := validate(t, s, `[1]`); len(errs) != 1 {
		t.Fatalf("static target still applies: %v", errs)
	}
}

func TestRecursiveRef_ExtendsRecursiveSchema(t *testing.T) {
	reg := newRegistry()
	addResources(t, reg, map[string]string{
		"https://example.com/rtree": `{
			"$schema": "https://json-schema.org/draft/2019-09/schema",
			"$id": "https://example.com/rtree",
			"$recursiveAnchor": true,
			"type": "object",
			"properties": {
				"data": true,
				"children": {"type": "array", "items": {"$recursiveRef": "#"}}
			}
		}`,
		"https://example.com/rstrict": `{
			"$schema": "https://json-schema.org/draft/2019-09/schema",
			"$id": "https://example.com/rstrict",
			"$recursiveAnchor": true,
			"$ref": "rtree",
			"unevaluatedProperties": false
		}`,
	})
	inst := `{"children": [{"daat": 1}]}`
	if errs := validate(t, getSchema(t, reg, "https://example.com/rtree"), inst); len(errs) != 0 {
		t.Fatalf("rtree: %v", errs)
	}
	errs := validate(t, getSchema(t, reg, "https://example.com/rstrict"), inst)
	if e := findError(errs, "/children/0"); e == nil || e.Keyword != "unevaluatedProperties" {
		t.Fatalf("rstrict: %v", errs)
	}
}

func TestRecursiveRef_WithoutAnchorIsStatic(t *testing.T) {
	reg := newRegistry()
	addResources(t, reg, map[string]string{
		"https://example.com/plain": `{
			"$schema": "https://json-schema.org/draft/2019-09/schema",
			"$id": "https://example.com/plain",
			"type": "object",
			"properties": {"children": {"type": "array", "items": {"$recursiveRef": "#"}}}
		}`,
		"https://example.com/plain-strict": `{
			"$schema": "https://json-schema.org/draft/2019-09/schema",
			"$id": "https://example.com/plain-strict",
			"$recursiveAnchor": true,
			"$ref": "plain",
			"unevaluatedProperties": false
		}`,
	})
	errs := validate(t, getSchema(t, reg, "https://example.com/plain-strict"), `{"children": [{"daat": 1}]}`)
	if len(errs) != 0 {
		t.Fatalf("without $recursiveAnchor on the target the reference is static: %v", errs)
	}
}
