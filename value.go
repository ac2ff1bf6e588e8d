package skema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf8"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/skema/internal/num"
)

// JSON type names.
const (
	TypeNull    = "null"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeString  = "string"
)

// TypeOf returns the JSON type of a decoded value. Integral numbers report
// "integer".
func TypeOf(v any) string {
	switch t := v.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBoolean
	case map[string]any:
		return TypeObject
	case []any:
		return TypeArray
	case string:
		return TypeString
	default:
		if n, ok := num.Of(t); ok {
			if n.IsInteger() {
				return TypeInteger
			}
			return TypeNumber
		}
	}
	return fmt.Sprintf("%T", v)
}

// Equal compares two value trees. Numbers compare by value, so 1 equals 1.0.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	na, ok := num.Of(a)
	if !ok {
		return false
	}
	nb, ok := num.Of(b)
	return ok && na.Equal(nb)
}

// DeepCopy copies maps and slices of a value tree.
func DeepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = DeepCopy(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = DeepCopy(vv)
		}
		return out
	}
	return v
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringLength(s string) int { return utf8.RuneCountInString(s) }

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case json.Number:
		return string(t)
	case nil:
		return "null"
	}
	if n, ok := num.Of(v); ok {
		return n.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// nonNegativeInt reads a keyword value such as maxLength.
func nonNegativeInt(v any) (int, bool) {
	n, ok := num.Of(v)
	if !ok || !n.IsInteger() || n.Sign() < 0 {
		return 0, false
	}
	i, ok := n.Int64()
	if !ok || i > int64(^uint(0)>>1) {
		return 0, false
	}
	return int(i), true
}

func stringList(v any) ([]string, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// compactJSON renders a keyword value for messages.
func compactJSON(v any) string {
	b, err := gojson.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
