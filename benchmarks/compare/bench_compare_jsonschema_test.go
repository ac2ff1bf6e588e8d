package compare_test

import (
	"context"
	"strings"
	"testing"

	jschema "github.com/santhosh-tekuri/jsonschema/v5"

	skema "github.com/reoring/skema"
)

// Minimal schema that requires id:string; unknowns allowed
const jsonSchemaUser = `{
  "type": "object",
  "properties": {"id": {"type": "string"}},
  "required": ["id"],
  "additionalProperties": true
}`

func Benchmark_ParseAndValidateSchema_jsonschema_v5_Small(b *testing.B) {
	comp := jschema.MustCompileString("mem:user", jsonSchemaUser)
	data := []byte(`{"id":"u_1","name":"alice"}`)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := comp.Validate(bytesToAny(data)); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_ParseAndValidateSchema_skema_Small(b *testing.B) {
	ctx := context.Background()
	s := compile(b, jsonSchemaUser)
	data := []byte(`{"id":"u_1","name":"alice"}`)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		decodeAndValidate(b, ctx, s, data)
	}
}

func Benchmark_ValidateOnly_jsonschema_v5_HugeArray(b *testing.B) {
	comp := jschema.MustCompileString("mem:users", `{"type": "array", "items": `+userSchemaJSON+`}`)
	v := bytesToAny(generateHugeJSONArray(cmpHugeN, cmpHugeK))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := comp.Validate(v); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_ValidateOnly_skema_HugeArray(b *testing.B) {
	ctx := context.Background()
	s := compile(b, `{"type": "array", "items": `+userSchemaJSON+`}`)
	v, err := skema.DecodeJSON(generateHugeJSONArray(cmpHugeN, cmpHugeK))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if errs, err := s.Validate(ctx, v); err != nil || len(errs) > 0 {
			b.Fatal(err, errs)
		}
	}
}

// agreement cases cover keywords both validators implement for 2020-12.
var agreement = []struct {
	name      string
	schema    string
	instances []string
}{
	{"type", `{"type": ["integer", "null"]}`, []string{`1`, `1.0`, `1.5`, `null`, `"1"`}},
	{"numbers", `{"minimum": 1, "exclusiveMaximum": 10, "multipleOf": 0.5}`, []string{`1`, `0.5`, `9.5`, `10`, `1.25`}},
	{"strings", `{"minLength": 2, "maxLength": 3, "pattern": "^[a-z]+$"}`, []string{`"ab"`, `"abcd"`, `"a"`, `"A1"`, `"日本"`}},
	{"arrays", `{"prefixItems": [{"type": "string"}], "items": {"type": "integer"}, "uniqueItems": true, "contains": {"const": 2}, "maxContains": 1}`,
		[]string{`["a", 2]`, `["a", 2, 2]`, `["a", 1]`, `[1, 2]`, `["a", 2, 3]`}},
	{"objects", `{
		"properties": {"a": {"type": "string"}},
		"patternProperties": {"^x-": true},
		"additionalProperties": false,
		"required": ["a"],
		"dependentRequired": {"a": ["b"]},
		"propertyNames": {"maxLength": 3}
	}`, []string{`{"a": "1", "b": 2}`, `{"a": "1"}`, `{"b": 1}`, `{"a": "1", "b": 1, "x-y": 1}`, `{"a": "1", "b": 1, "c": 1}`}},
	{"combinators", `{"anyOf": [{"type": "string"}, {"minimum": 3}], "oneOf": [{"maxLength": 2}, {"multipleOf": 2}], "not": {"const": "no"}}`,
		[]string{`"ab"`, `"abc"`, `4`, `3`, `"no"`, `6`}},
	{"conditionals", `{"if": {"properties": {"kind": {"const": "a"}}}, "then": {"required": ["x"]}, "else": {"required": ["y"]}}`,
		[]string{`{"kind": "a", "x": 1}`, `{"kind": "a"}`, `{"kind": "b", "y": 1}`, `{"kind": "b"}`}},
	{"refs", `{
		"$defs": {"node": {"type": "object", "properties": {"next": {"$ref": "#/$defs/node"}, "v": {"type": "integer"}}}},
		"$ref": "#/$defs/node"
	}`, []string{`{"v": 1, "next": {"v": 2}}`, `{"v": 1, "next": {"v": "x"}}`, `{}`}},
	{"unevaluated", `{
		"allOf": [{"properties": {"a": true}}],
		"properties": {"b": true},
		"unevaluatedProperties": false,
		"unevaluatedItems": false
	}`, []string{`{"a": 1, "b": 2}`, `{"a": 1, "c": 3}`, `[]`}},
	{"enum", `{"enum": [1, "a", {"k": [1, 2]}, null]}`, []string{`1.0`, `"a"`, `{"k": [1, 2]}`, `{"k": [2, 1]}`, `false`}},
}

// TestAgreement_jsonschema_v5 checks that skema and santhosh-tekuri/jsonschema
// reach the same verdict on every case.
func TestAgreement_jsonschema_v5(t *testing.T) {
	ctx := context.Background()
	for _, tc := range agreement {
		t.Run(tc.name, func(t *testing.T) {
			c := jschema.NewCompiler()
			c.Draft = jschema.Draft2020
			if err := c.AddResource("mem:"+tc.name, strings.NewReader(tc.schema)); err != nil {
				t.Fatalf("jsonschema resource: %v", err)
			}
			ref, err := c.Compile("mem:" + tc.name)
			if err != nil {
				t.Fatalf("jsonschema compile: %v", err)
			}
			s := compile(t, tc.schema)
			for _, inst := range tc.instances {
				want := ref.Validate(bytesToAny([]byte(inst))) == nil
				v, err := skema.DecodeJSON([]byte(inst))
				if err != nil {
					t.Fatalf("%s: decode: %v", inst, err)
				}
				errs, err := s.Validate(ctx, v)
				if err != nil {
					t.Fatalf("%s: validate: %v", inst, err)
				}
				if got := len(errs) == 0; got != want {
					t.Errorf("%s: skema valid=%v, jsonschema valid=%v (%v)", inst, got, want, errs)
				}
			}
		})
	}
}

// bytesToAny decodes JSON the way jsonschema/v5 expects (json.Number).
func bytesToAny(b []byte) any {
	v, err := jschema.UnmarshalJSON(strings.NewReader(string(b)))
	if err != nil {
		panic(err)
	}
	return v
}
