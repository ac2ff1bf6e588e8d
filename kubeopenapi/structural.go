package kubeopenapi

import (
	"sort"

	"github.com/reoring/skema/nodepath"
)

// implicitFields are accepted on every resource root and embedded resource
// even when the schema leaves them out.
func implicitFields() map[string]any {
	return map[string]any{
		"apiVersion": map[string]any{"type": "string"},
		"kind":       map[string]any{"type": "string"},
		"metadata":   map[string]any{"type": "object"},
	}
}

// planner checks a CRD schema for structural-schema violations and, in
// strict mode, closes object schemas against undeclared fields. It
// rewrites the copy it is given.
type planner struct {
	opts Options
	d    *simpleDiag
}

func (p *planner) root(doc map[string]any) {
	if t, _ := doc["type"].(string); t != "object" && t != "" {
		p.d.warnf("non-object at root treated as object-compatible: type=%q", t)
	}
	p.node(doc, nodepath.New(nodepath.JSONPointer), true)
}

func (p *planner) node(m map[string]any, at *nodepath.Path, resource bool) {
	intOrString, _ := m["x-kubernetes-int-or-string"].(bool)
	preserve, _ := m["x-kubernetes-preserve-unknown-fields"].(bool)
	if embedded, _ := m["x-kubernetes-embedded-resource"].(bool); embedded {
		resource = true
	}
	t, hasType := m["type"].(string)
	if !hasType && !intOrString && !preserve && !at.IsRoot() {
		p.d.warnf("%s: missing type", at.Pointer())
	}
	if _, ok := m["x-kubernetes-validations"]; ok {
		p.d.warnf("%s: x-kubernetes-validations rules are not evaluated", at.Pointer())
	}
	props, hasProps := m["properties"].(map[string]any)
	addl, hasAddl := m["additionalProperties"]
	if hasProps && hasAddl {
		p.d.warnf("%s: properties and additionalProperties are mutually exclusive", at.Pointer())
	}

	if p.opts.Unknown == UnknownStrict && !preserve && !hasAddl && (t == "object" || hasProps) {
		if resource {
			if props == nil {
				props = map[string]any{}
				m["properties"] = props
			}
			for k, v := range implicitFields() {
				if _, ok := props[k]; !ok {
					props[k] = v
				}
			}
			// ObjectMeta is validated by the API server, not the CRD.
			if meta, ok := props["metadata"].(map[string]any); ok && meta["properties"] == nil {
				meta["x-kubernetes-preserve-unknown-fields"] = true
			}
		}
		m["additionalProperties"] = false
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ps, ok := props[name].(map[string]any); ok {
			p.node(ps, at.Append("properties").Append(name), false)
		}
	}
	if am, ok := addl.(map[string]any); ok {
		p.node(am, at.Append("additionalProperties"), false)
	}
	if im, ok := m["items"].(map[string]any); ok {
		p.node(im, at.Append("items"), false)
	}
}
