package engine_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	eng "github.com/reoring/skema/internal/engine"
	gojsonsrc "github.com/reoring/skema/source/gojson"
	jsonsrc "github.com/reoring/skema/source/json"
)

func drivers() []eng.Driver {
	return []eng.Driver{jsonsrc.Driver(), gojsonsrc.Driver()}
}

func TestDecodeKeepsNumbers(t *testing.T) {
	in := `{"a":[1,2.50,{"b":"c"}],"n":null,"big":100000000000000000000000.1,"s":"key"}`
	want := map[string]any{
		"a":   []any{json.Number("1"), json.Number("2.50"), map[string]any{"b": "c"}},
		"n":   nil,
		"big": json.Number("100000000000000000000000.1"),
		"s":   "key",
	}
	for _, d := range drivers() {
		got, err := eng.Decode(d.NewReader(strings.NewReader(in)))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", d.Name(), err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s: mismatch (-want +got):\n%s", d.Name(), diff)
		}
	}
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	_, err := eng.Decode(jsonsrc.NewBytes([]byte(`{} {}`)))
	if !errors.Is(err, eng.ErrTrailingData) {
		t.Fatalf("want ErrTrailingData, got %v", err)
	}
}

func TestEnforceDuplicateKeys(t *testing.T) {
	in := `{"a":{"x":1,"y":[{"k":1,"k":2}]}}`
	src := eng.WrapWithEnforcement(jsonsrc.NewBytes([]byte(in)), eng.EnforceOptions{RejectDuplicates: true})
	_, err := eng.Decode(src)
	var de *eng.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("want DecodeError, got %v", err)
	}
	if de.Code != "duplicate_key" || de.Path != "/a/y/0/k" {
		t.Fatalf("unexpected error: %+v", de)
	}

	src = eng.WrapWithEnforcement(jsonsrc.NewBytes([]byte(in)), eng.EnforceOptions{})
	if _, err := eng.Decode(src); err != nil {
		t.Fatalf("duplicates must pass when not rejected: %v", err)
	}
}

func TestEnforceMaxDepth(t *testing.T) {
	src := eng.WrapWithEnforcement(jsonsrc.NewBytes([]byte(`[[[1]]]`)), eng.EnforceOptions{MaxDepth: 2})
	_, err := eng.Decode(src)
	var de *eng.DecodeError
	if !errors.As(err, &de) || de.Code != "max_depth" || de.Path != "/0/0" {
		t.Fatalf("unexpected error: %v", err)
	}
}
