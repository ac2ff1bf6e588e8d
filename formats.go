package skema

import (
	"encoding/base64"
	"math"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/reoring/skema/internal/num"
)

// Format checks string (or numeric, for OpenAPI) values for one format
// name. Matches must return true for values the format does not apply to.
type Format interface {
	Name() string
	Matches(ec *ExecutionContext, v any) bool
}

// FormatFunc adapts a function to Format.
type FormatFunc struct {
	FormatName string
	Fn         func(ec *ExecutionContext, v any) bool
}

func (f FormatFunc) Name() string                             { return f.FormatName }
func (f FormatFunc) Matches(ec *ExecutionContext, v any) bool { return f.Fn(ec, v) }

// NewFormat returns a Format that checks string values with fn and accepts
// every other type.
func NewFormat(name string, fn func(s string) bool) Format {
	return FormatFunc{FormatName: name, Fn: func(_ *ExecutionContext, v any) bool {
		s, ok := v.(string)
		return !ok || fn(s)
	}}
}

// builtinFormatNames are checked by the format table of
// santhosh-tekuri/jsonschema; the idn variants fall back to their ASCII
// counterparts.
var builtinFormatNames = []string{
	"date", "date-time", "time", "duration",
	"email", "idn-email", "hostname", "idn-hostname",
	"ipv4", "ipv6",
	"uri", "uri-reference", "iri", "iri-reference", "uri-template",
	"uuid", "regex", "json-pointer", "relative-json-pointer",
}

var formatFallbacks = map[string]string{
	"idn-email":     "email",
	"idn-hostname":  "hostname",
	"iri":           "uri",
	"iri-reference": "uri-reference",
}

func checkerFor(name string) func(any) bool {
	if fn, ok := jsonschema.Formats[name]; ok {
		return fn
	}
	if alt, ok := formatFallbacks[name]; ok {
		if fn, ok := jsonschema.Formats[alt]; ok {
			return fn
		}
	}
	return nil
}

func withBuiltinFormats(b *DialectBuilder) *DialectBuilder {
	for _, name := range builtinFormatNames {
		fn := checkerFor(name)
		if fn == nil {
			continue
		}
		b.Format(FormatFunc{FormatName: name, Fn: func(_ *ExecutionContext, v any) bool {
			if _, ok := v.(string); !ok {
				return true
			}
			return fn(v)
		}})
	}
	return b
}

func withOpenAPIFormats(b *DialectBuilder) *DialectBuilder {
	return b.
		Format(intFormat("int32", math.MinInt32, math.MaxInt32)).
		Format(intFormat("int64", math.MinInt64, math.MaxInt64)).
		Format(floatFormat("float", math.MaxFloat32)).
		Format(floatFormat("double", math.MaxFloat64)).
		Format(NewFormat("byte", func(s string) bool {
			_, err := base64.StdEncoding.DecodeString(s)
			return err == nil
		})).
		Format(NewFormat("binary", func(string) bool { return true })).
		Format(NewFormat("password", func(string) bool { return true }))
}

func intFormat(name string, lo, hi int64) Format {
	lower, _ := num.Of(lo)
	upper, _ := num.Of(hi)
	return FormatFunc{FormatName: name, Fn: func(_ *ExecutionContext, v any) bool {
		n, ok := num.Of(v)
		if !ok {
			return true
		}
		return n.IsInteger() && n.Cmp(lower) >= 0 && n.Cmp(upper) <= 0
	}}
}

func floatFormat(name string, limit float64) Format {
	upper, _ := num.FromFloat(limit)
	lower, _ := num.FromFloat(-limit)
	return FormatFunc{FormatName: name, Fn: func(_ *ExecutionContext, v any) bool {
		n, ok := num.Of(v)
		if !ok {
			return true
		}
		return !n.IsInf() && n.Cmp(lower) >= 0 && n.Cmp(upper) <= 0
	}}
}
