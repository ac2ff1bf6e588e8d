package kubeopenapi

import (
	"strings"

	skema "github.com/reoring/skema"
)

// setList rejects equal elements in x-kubernetes-list-type: set.
type setList struct{}

func (setList) Validate(e *skema.Evaluation) {
	arr, ok := e.Instance().([]any)
	if !ok {
		return
	}
	for i := 1; i < len(arr); i++ {
		for j := 0; j < i; j++ {
			if skema.Equal(arr[i], arr[j]) {
				e.FailAt(i, arr[i], "listType.set", j, i)
				break
			}
		}
	}
}

// mapList rejects elements whose list-map-keys all equal those of an
// earlier element. A missing key compares as null.
type mapList struct{ keys []string }

func (c mapList) Validate(e *skema.Evaluation) {
	arr, ok := e.Instance().([]any)
	if !ok {
		return
	}
	for i := 1; i < len(arr); i++ {
		mi, ok := arr[i].(map[string]any)
		if !ok {
			continue
		}
		for j := 0; j < i; j++ {
			mj, ok := arr[j].(map[string]any)
			if ok && c.sameKeys(mi, mj) {
				e.FailAt(i, arr[i], "listType.map", j, i, "["+strings.Join(c.keys, ", ")+"]")
				break
			}
		}
	}
}

func (c mapList) sameKeys(a, b map[string]any) bool {
	for _, k := range c.keys {
		if !skema.Equal(a[k], b[k]) {
			return false
		}
	}
	return true
}

func newListType(kc *skema.KeywordContext) (skema.Validator, error) {
	lt, ok := kc.Value.(string)
	if !ok {
		return nil, kc.Invalid("x-kubernetes-list-type must be a string")
	}
	switch lt {
	case "atomic":
		return nil, nil
	case "set":
		return setList{}, nil
	case "map":
		raw, _ := kc.Sibling("x-kubernetes-list-map-keys")
		arr, _ := raw.([]any)
		if len(arr) == 0 {
			return nil, kc.Invalid("x-kubernetes-list-type map requires x-kubernetes-list-map-keys")
		}
		keys := make([]string, 0, len(arr))
		for _, k := range arr {
			s, ok := k.(string)
			if !ok {
				return nil, kc.Invalid("x-kubernetes-list-map-keys must contain strings")
			}
			keys = append(keys, s)
		}
		return mapList{keys: keys}, nil
	}
	return nil, kc.Invalid("unknown x-kubernetes-list-type %q", lt)
}
