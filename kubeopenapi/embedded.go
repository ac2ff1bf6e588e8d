package kubeopenapi

import (
	skema "github.com/reoring/skema"
)

// embeddedResource requires the type metadata of an embedded object:
// apiVersion and kind must be present as strings.
type embeddedResource struct{}

func (embeddedResource) Validate(e *skema.Evaluation) {
	obj, ok := e.Instance().(map[string]any)
	if !ok {
		return
	}
	for _, k := range []string{"apiVersion", "kind"} {
		v, present := obj[k]
		if !present {
			e.FailProperty(k, "embeddedResource", quote(k))
			continue
		}
		if _, ok := v.(string); !ok {
			e.FailAt(k, v, "type", skema.TypeOf(v), skema.TypeString)
		}
	}
}

func newEmbeddedResource(kc *skema.KeywordContext) (skema.Validator, error) {
	on, err := flag(kc)
	if err != nil || !on {
		return nil, err
	}
	return embeddedResource{}, nil
}
