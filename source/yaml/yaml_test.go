package yaml_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	skyaml "github.com/reoring/skema/source/yaml"
)

func TestDecodeExactNumbers(t *testing.T) {
	v, err := skyaml.Decode([]byte(`
a: 1
b: 12345678901234567890123
c: 0.1
d: [true, null, "x"]
e: 0x10
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"a": json.Number("1"),
		"b": json.Number("12345678901234567890123"),
		"c": json.Number("0.1"),
		"d": []any{true, nil, "x"},
		"e": json.Number("16"),
	}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateKey(t *testing.T) {
	_, err := skyaml.Decode([]byte("a: 1\nb: 2\na: 3\n"))
	var dk *skyaml.DuplicateKeyError
	if !errors.As(err, &dk) {
		t.Fatalf("expected DuplicateKeyError, got %v", err)
	}
	if dk.Key != "a" || dk.Line != 3 || dk.FirstLine != 1 {
		t.Fatalf("unexpected error: %+v", dk)
	}
}

func TestReadAll(t *testing.T) {
	docs, err := skyaml.NewReader(strings.NewReader("a: 1\n---\nb: 2\n")).ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("want 2 documents, got %d", len(docs))
	}
}

func TestMergeKeys(t *testing.T) {
	v, err := skyaml.Decode([]byte("base: &b {x: 1}\nobj:\n  <<: *b\n  y: 2\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj := v.(map[string]any)["obj"].(map[string]any)
	if obj["x"] != json.Number("1") || obj["y"] != json.Number("2") {
		t.Fatalf("merge not applied: %v", obj)
	}
}
