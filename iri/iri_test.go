package iri_test

import (
	"testing"

	"github.com/reoring/skema/iri"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		base, ref, want string
	}{
		{"http://www.example.org/foo/bar.json", "http://other.org/x.json", "http://other.org/x.json"},
		{"http://www.example.org/foo/bar.json", "baz.json", "http://www.example.org/foo/baz.json"},
		{"http://www.example.org/foo/bar.json", "./baz.json", "http://www.example.org/foo/baz.json"},
		{"http://www.example.org/foo/bar.json", "../baz.json", "http://www.example.org/baz.json"},
		{"http://www.example.org/foo/bar.json", "../../baz.json", "http://www.example.org/baz.json"},
		{"http://www.example.org/foo/bar.json", "/root.json", "http://www.example.org/root.json"},
		{"http://www.example.org/foo/bar.json", "#/definitions/a", "http://www.example.org/foo/bar.json#/definitions/a"},
		{"http://www.example.org/foo/bar.json#frag", "#other", "http://www.example.org/foo/bar.json#other"},
		{"http://www.example.org/foo/bar.json#frag", "", "http://www.example.org/foo/bar.json"},
		{"http://www.example.org/a?x=1", "?y=2", "http://www.example.org/a?y=2"},
		{"http://www.example.org", "a.json", "http://www.example.org/a.json"},
		{"http://www.example.org/foo/", "//cdn.example.org/s.json", "http://cdn.example.org/s.json"},
		{"http://www.example.org/foo/", "dir/foo:bar.json", "http://www.example.org/foo/dir/foo:bar.json"},
		{"http://www.example.org/foo/", "./foo:bar.json", "http://www.example.org/foo/foo:bar.json"},
		{"file:///schemas/a/b.json", "../c.json", "file:///schemas/c.json"},
		{"classpath:resource", "test.json", "classpath:test.json"},
		{"classpath:resource/", "test.json", "classpath:resource/test.json"},
		{"classpath:resource/schema.json", "other.json", "classpath:resource/other.json"},
		{"classpath:resource/schema.json", "../other.json", "classpath:resource/../other.json"},
		{"classpath:resource/", "/abs.json", "classpath:/abs.json"},
		{"urn:example:root", "#/$defs/a", "urn:example:root#/$defs/a"},
		{"urn:example:root", "urn:example:other", "urn:example:other"},
		{"", "foo.json", "foo.json"},
		{"", "#/a", "#/a"},
		{"schemas/a.json", "b.json", "schemas/b.json"},
		{"schemas/a.json", "../b.json", "b.json"},
	}
	for _, c := range cases {
		if got := iri.Resolve(c.base, c.ref); got != c.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", c.base, c.ref, got, c.want)
		}
	}
}

func TestAbsoluteIRIResolveDropsFragment(t *testing.T) {
	base := iri.AbsoluteIRI("https://example.com/root.json")
	got := base.Resolve("item.json#/properties/a")
	if got != "https://example.com/item.json" {
		t.Fatalf("got %q", got)
	}
	if base.Scheme() != "https" {
		t.Fatalf("scheme: %q", base.Scheme())
	}
}

func TestHasScheme(t *testing.T) {
	cases := map[string]bool{
		"http://x":      true,
		"urn:uuid:1234": true,
		"classpath:a":   true,
		"a+b-c.d:x":     true,
		"dir/foo:bar":   false,
		"./foo:bar":     false,
		"#/a:b":         false,
		"?q=a:b":        false,
		":nope":         false,
		"1abc:x":        false,
		"plain.json":    false,
		"":              false,
	}
	for in, want := range cases {
		if got := iri.HasScheme(in); got != want {
			t.Errorf("HasScheme(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSplit(t *testing.T) {
	abs, frag := iri.Split("https://example.com/a.json#/defs/x")
	if abs != "https://example.com/a.json" || frag != "/defs/x" {
		t.Fatalf("got %q %q", abs, frag)
	}
	if !iri.HasFragment("a#") || iri.HasFragment("a") {
		t.Fatalf("HasFragment mismatch")
	}
	if !iri.IsHierarchical("file:///x") || iri.IsHierarchical("classpath:x") {
		t.Fatalf("IsHierarchical mismatch")
	}
}
