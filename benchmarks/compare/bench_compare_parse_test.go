package compare_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"testing"

	skema "github.com/reoring/skema"

	sonic "github.com/bytedance/sonic"
	gojson "github.com/goccy/go-json"
	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fastjson"
)

// shared fixtures

const userSchemaJSON = `{
	"type": "object",
	"properties": {"id": {"type": "string"}, "name": {"type": "string"}},
	"required": ["id"]
}`

const nestedSchemaJSON = `{
	"$defs": {"node": {"type": "object", "properties": {"a": {"$ref": "#/$defs/node"}, "z": {"type": "integer"}}}},
	"$ref": "#/$defs/node"
}`

func compile(tb testing.TB, schema string) *skema.Schema {
	tb.Helper()
	reg := skema.NewRegistry(skema.Config{DefaultDialect: skema.Draft202012})
	s, err := reg.CompileBytes(context.Background(), []byte(schema))
	if err != nil {
		tb.Fatalf("schema compile failed: %v", err)
	}
	return s
}

// decodeAndValidate fails b when data is malformed or invalid against s.
func decodeAndValidate(b *testing.B, ctx context.Context, s *skema.Schema, data []byte) {
	v, err := skema.DecodeJSON(data)
	if err != nil {
		b.Fatal(err)
	}
	errs, err := s.Validate(ctx, v)
	if err != nil {
		b.Fatal(err)
	}
	if len(errs) > 0 {
		b.Fatal(errs)
	}
}

func smallUserJSON() []byte { return []byte(`{"id":"u_1","name":"alice"}`) }

func generateHugeJSONArray(numObjects int, extraFields int) []byte {
	var buf bytes.Buffer
	buf.Grow(numObjects * (64 + extraFields*16))
	buf.WriteByte('[')
	for i := 0; i < numObjects; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`{"id":"obj_`)
		buf.WriteString(strconv.Itoa(i))
		buf.WriteString(`","name":"n`)
		buf.WriteString(strconv.Itoa(i))
		buf.WriteString(`","age":`)
		buf.WriteString(strconv.Itoa(i))
		buf.WriteString(`,"active":`)
		buf.WriteString(strconv.FormatBool(i%2 == 0))
		buf.WriteString(`,"meta":{"score":`)
		buf.WriteString(strconv.Itoa(i))
		buf.WriteByte('}')
		for k := 0; k < extraFields; k++ {
			buf.WriteString(`,"k`)
			buf.WriteString(strconv.Itoa(k))
			buf.WriteString(`":"v`)
			buf.WriteString(strconv.Itoa(i))
			buf.WriteByte('_')
			buf.WriteString(strconv.Itoa(k))
			buf.WriteByte('"')
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

// generateDeepNested builds {"a":{"a":{...{"z":1}...}}}.
func generateDeepNested(depth int) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < depth; i++ {
		buf.WriteString(`"a":{`)
	}
	buf.WriteString(`"z":1`)
	for i := 0; i < depth; i++ {
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

const (
	cmpHugeN = 10000
	cmpHugeK = 8
)

type fixture struct {
	name   string
	data   func() []byte
	schema string
}

var fixtures = []fixture{
	{"Small", smallUserJSON, userSchemaJSON},
	{"HugeArray", func() []byte { return generateHugeJSONArray(cmpHugeN, cmpHugeK) }, `{"type": "array", "items": ` + userSchemaJSON + `}`},
	{"DeepNested", func() []byte { return generateDeepNested(64) }, nestedSchemaJSON},
}

// decoder turns JSON text into something a validator can walk. tree is
// false for decoders without a map/slice result; those only take part in
// the parse comparison.
type decoder struct {
	name   string
	decode func([]byte) (any, error)
	tree   bool
}

var decoders = []decoder{
	{name: "skema", decode: skema.DecodeJSON, tree: true},
	{name: "stdlib", tree: true, decode: func(data []byte) (any, error) {
		var v any
		err := json.Unmarshal(data, &v)
		return v, err
	}},
	{name: "gojson", tree: true, decode: func(data []byte) (any, error) {
		var v any
		err := gojson.Unmarshal(data, &v)
		return v, err
	}},
	{name: "jsoniter", tree: true, decode: func(data []byte) (any, error) {
		var v any
		err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &v)
		return v, err
	}},
	{name: "sonic", tree: true, decode: func(data []byte) (any, error) {
		var v any
		err := sonic.Unmarshal(data, &v)
		return v, err
	}},
	{name: "fastjson", decode: func(data []byte) (any, error) {
		var p fastjson.Parser
		return p.ParseBytes(data)
	}},
}

// Benchmark_Parse compares skema.DecodeJSON with the other decoders on the
// same input.
func Benchmark_Parse(b *testing.B) {
	for _, fx := range fixtures {
		data := fx.data()
		for _, d := range decoders {
			b.Run(fx.name+"/"+d.name, func(b *testing.B) {
				b.ReportAllocs()
				b.SetBytes(int64(len(data)))
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, err := d.decode(data); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

// Benchmark_ParseAndValidate decodes with each tree decoder and validates
// the result with skema. Numbers arrive as json.Number from skema and as
// float64 from the others.
func Benchmark_ParseAndValidate(b *testing.B) {
	ctx := context.Background()
	for _, fx := range fixtures {
		data := fx.data()
		s := compile(b, fx.schema)
		for _, d := range decoders {
			if !d.tree {
				continue
			}
			b.Run(fx.name+"/"+d.name, func(b *testing.B) {
				b.ReportAllocs()
				b.SetBytes(int64(len(data)))
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					v, err := d.decode(data)
					if err != nil {
						b.Fatal(err)
					}
					if errs, err := s.Validate(ctx, v); err != nil || len(errs) > 0 {
						b.Fatal(err, errs)
					}
				}
			})
		}
	}
}

// TestDecodersAgree checks that every tree decoder yields a value skema
// considers equal to its own decoding, so the validation benchmarks compare
// the same work.
func TestDecodersAgree(t *testing.T) {
	for _, fx := range fixtures {
		data := fx.data()
		want, err := skema.DecodeJSON(data)
		if err != nil {
			t.Fatalf("%s: %v", fx.name, err)
		}
		for _, d := range decoders {
			got, err := d.decode(data)
			if err != nil {
				t.Fatalf("%s/%s: %v", fx.name, d.name, err)
			}
			if d.tree && !skema.Equal(want, got) {
				t.Fatalf("%s/%s: decoded value differs", fx.name, d.name)
			}
		}
	}
}
