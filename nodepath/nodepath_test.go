package nodepath_test

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/skema/nodepath"
)

func TestSortOrder(t *testing.T) {
	in := []string{"/b/b/b", "/c/c", "/b/b", "/a", "/b/1", "/c", "/a/a", "/b"}
	paths := make([]*nodepath.Path, 0, len(in))
	for _, s := range in {
		p, err := nodepath.ParsePointer(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool { return paths[i].Compare(paths[j]) < 0 })
	var got []string
	for _, p := range paths {
		got = append(got, p.String())
	}
	want := []string{"/a", "/b", "/c", "/a/a", "/b/1", "/b/b", "/c/c", "/b/b/b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestIndexesCompareNumerically(t *testing.T) {
	a := nodepath.Root.AppendIndex(2)
	b := nodepath.Root.AppendIndex(10)
	if a.Compare(b) >= 0 {
		t.Fatalf("[2] must sort before [10]")
	}
}

func TestAppendIsPersistent(t *testing.T) {
	base := nodepath.New(nodepath.JSONPath).Append("a")
	x := base.Append("x")
	y := base.AppendIndex(3)
	if base.String() != "$.a" || x.String() != "$.a.x" || y.String() != "$.a[3]" {
		t.Fatalf("got %q %q %q", base, x, y)
	}
	if x.Parent() != base || y.Parent() != base {
		t.Fatalf("children must share the parent")
	}
	if !y.StartsWith(base) || base.StartsWith(y) {
		t.Fatalf("StartsWith mismatch")
	}
}

func TestRender(t *testing.T) {
	p := nodepath.Root.Append("a/b").AppendIndex(0).Append("c~d").Append("e f")
	cases := map[nodepath.Type]string{
		nodepath.JSONPointer:  "/a~1b/0/c~0d/e f",
		nodepath.URIReference: "#/a~1b/0/c~0d/e%20f",
		nodepath.JSONPath:     "$['a/b'][0]['c~d']['e f']",
		nodepath.Legacy:       "$.a/b[0].c~d.e f",
	}
	for typ, want := range cases {
		if got := p.Render(typ); got != want {
			t.Errorf("%s: got %q, want %q", typ, got, want)
		}
	}
}

func TestEscapingRoundTrip(t *testing.T) {
	for _, name := range []string{`'`, `"`, `\`, `~`, `/`, `a'b\c`, `~01`} {
		p := nodepath.Root.Append("outer").Append(name)
		for _, typ := range []nodepath.Type{nodepath.JSONPointer, nodepath.JSONPath, nodepath.URIReference} {
			text := p.Render(typ)
			back, err := nodepath.Parse(typ, text)
			if err != nil {
				t.Fatalf("%s %q: parse %q: %v", typ, name, text, err)
			}
			if !back.Equal(p) {
				t.Fatalf("%s %q: %q parsed to %v", typ, name, text, back.Tokens())
			}
		}
	}
	if got := nodepath.New(nodepath.JSONPath).Append(`'`).String(); got != `$['\'']` {
		t.Fatalf("quote rendering: %q", got)
	}
	if got := nodepath.Root.Append(`"`).String(); got != `/"` {
		t.Fatalf("pointer rendering: %q", got)
	}
}

func TestParseJSONPathIndexes(t *testing.T) {
	p, err := nodepath.ParseJSONPath("$.items[12]['x y']")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []any{"items", 12, "x y"}
	if diff := cmp.Diff(want, p.Tokens()); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePointerErrors(t *testing.T) {
	for _, in := range []string{"a", "/~2", "/a~"} {
		if _, err := nodepath.ParsePointer(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}
