package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	skema "github.com/reoring/skema"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDecodeInstance(t *testing.T) {
	v, err := decodeInstance("doc.yaml", []byte("a: 1\nb: [x]\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"a": json.Number("1"), "b": []any{"x"}}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Fatalf("yaml (-want +got):\n%s", diff)
	}
	v, err = decodeInstance("-", []byte(`{"a": 1.50}`))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]any{"a": json.Number("1.50")}, v); diff != "" {
		t.Fatalf("json (-want +got):\n%s", diff)
	}
	if _, err := decodeInstance("doc.json", []byte(`{"a": 1, "a": 2}`)); err == nil {
		t.Fatalf("duplicate key accepted")
	}
}

func TestEachDoc(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"n": 1}`)
	b := writeFile(t, dir, "b.yml", "n: 2\n")
	var names []string
	err := eachDoc(strings.NewReader(`{"n": 3}`), []string{a, b, "-"}, func(name string, _ []byte, doc any) error {
		names = append(names, filepath.Base(name)+"="+string(doc.(map[string]any)["n"].(json.Number)))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a.json=1", "b.yml=2", "-=3"}, names); diff != "" {
		t.Fatalf("docs (-want +got):\n%s", diff)
	}
	if err := eachDoc(nil, []string{filepath.Join(dir, "missing.json")}, nil); err == nil {
		t.Fatalf("missing file accepted")
	}
}

func TestSchemaSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "defs.json", `{"$defs": {"name": {"type": "string", "minLength": 1}}}`)
	root := writeFile(t, dir, "root.json", `{
		"type": "object",
		"properties": {"name": {"$ref": "defs.json#/$defs/name"}, "when": {"format": "date"}}
	}`)
	s, err := schemaSource{schema: root}.load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	errs, err := s.Validate(context.Background(), map[string]any{"name": ""})
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) != 1 || errs[0].Keyword != "minLength" {
		t.Fatalf("errors: %v", errs)
	}

	if _, err := (schemaSource{}).load(context.Background()); err == nil {
		t.Fatalf("empty schema path accepted")
	}

	cfgFile := writeFile(t, dir, "skema.yaml", "default_dialect: http://json-schema.org/draft-04/schema#\n")
	s, err = schemaSource{schema: writeFile(t, dir, "d4.json", `{"$defs": 1, "type": "integer"}`), configFile: cfgFile}.load(context.Background())
	if err != nil {
		t.Fatalf("draft-04 load: %v", err)
	}
	if errs, _ := s.Validate(context.Background(), "x"); len(errs) != 1 {
		t.Fatalf("errors: %v", errs)
	}
}

func TestSchemaSource_IRI(t *testing.T) {
	for _, in := range []string{"https://example.com/s.json", "urn:example:s"} {
		got, err := schemaSource{schema: in}.iri()
		if err != nil || got != in {
			t.Fatalf("%s: %s %v", in, got, err)
		}
	}
	got, err := schemaSource{schema: "s.json"}.iri()
	if err != nil || !strings.HasPrefix(got, "file:///") || !strings.HasSuffix(got, "/s.json") {
		t.Fatalf("got %s %v", got, err)
	}
}

func TestPrinter(t *testing.T) {
	reg := skema.NewRegistry(skema.Config{DefaultDialect: skema.Draft202012})
	s, err := reg.CompileBytes(context.Background(), []byte(`{"properties": {"a": {"type": "string"}}}`))
	if err != nil {
		t.Fatal(err)
	}
	errs, err := s.Validate(context.Background(), map[string]any{"a": json.Number("1")})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	p := newPrinter(&MainConfig{NoColor: true}, &buf, false)
	p.summary("ok.json", nil)
	p.summary("bad.json", errs)
	want := "ok.json: ok\nbad.json: 1 error\n  /a " + errs[0].Message + " (type)\n"
	if got := buf.String(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	buf.Reset()
	p = newPrinter(&MainConfig{}, &buf, true)
	if err := p.value(map[string]any{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "a: 1\n" {
		t.Fatalf("yaml: %q", got)
	}
}

func TestWalkStrategyFlags(t *testing.T) {
	if _, err := skema.NewApplyDefaultsStrategy(false, true, false); !errors.Is(err, skema.ErrInvalidDefaultsStrategy) {
		t.Fatalf("got %v", err)
	}
	if !isYAML("a.yaml") || !isYAML("b.YML") || isYAML("c.json") {
		t.Fatalf("isYAML")
	}
}
