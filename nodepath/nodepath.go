// Package nodepath models locations inside JSON documents.
//
// A Path is an immutable, parent-linked sequence of tokens. Appending never
// mutates the receiver, so paths that share a prefix share its storage.
// Each path carries the Type it renders with by default.
package nodepath

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Type selects the textual rendering of a Path.
type Type int

const (
	// JSONPointer renders RFC 6901 pointers: "/a/0". The root is "".
	JSONPointer Type = iota
	// JSONPath renders bracket-quoted paths: "$.a[0]['b c']".
	JSONPath
	// Legacy renders dotted paths without quoting: "$.a[0].b c".
	Legacy
	// URIReference renders pointers as URI fragments: "#/a/0".
	URIReference
)

func (t Type) String() string {
	switch t {
	case JSONPointer:
		return "json-pointer"
	case JSONPath:
		return "json-path"
	case Legacy:
		return "legacy"
	case URIReference:
		return "uri-reference"
	}
	return "unknown"
}

// ParseType maps a configuration name to a Type.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "", "json-pointer", "jsonpointer", "pointer":
		return JSONPointer, nil
	case "json-path", "jsonpath", "path":
		return JSONPath, nil
	case "legacy":
		return Legacy, nil
	case "uri-reference", "uri":
		return URIReference, nil
	}
	return JSONPointer, fmt.Errorf("nodepath: unknown path type %q", s)
}

// Path is a node in a persistent tree of locations.
type Path struct {
	parent  *Path
	typ     Type
	name    string
	index   int
	isIndex bool
	depth   int
}

// New returns the root path of the given type.
func New(t Type) *Path { return &Path{typ: t} }

// Root is the root JSON Pointer path.
var Root = New(JSONPointer)

// Append returns p extended with a property name.
func (p *Path) Append(name string) *Path {
	return &Path{parent: p, typ: p.typ, name: name, depth: p.depth + 1}
}

// AppendIndex returns p extended with an array index.
func (p *Path) AppendIndex(i int) *Path {
	return &Path{parent: p, typ: p.typ, index: i, isIndex: true, depth: p.depth + 1}
}

// AppendToken appends a string or int token.
func (p *Path) AppendToken(tok any) *Path {
	if i, ok := tok.(int); ok {
		return p.AppendIndex(i)
	}
	return p.Append(fmt.Sprint(tok))
}

// Parent returns the enclosing path, or nil at the root.
func (p *Path) Parent() *Path { return p.parent }

// Depth is the number of tokens.
func (p *Path) Depth() int { return p.depth }

// IsRoot reports whether p has no tokens.
func (p *Path) IsRoot() bool { return p.depth == 0 }

// Type returns the default rendering.
func (p *Path) Type() Type { return p.typ }

// Last returns the final token: a string or an int. It is nil at the root.
func (p *Path) Last() any {
	if p.depth == 0 {
		return nil
	}
	if p.isIndex {
		return p.index
	}
	return p.name
}

// Element returns the i-th token counted from the root.
func (p *Path) Element(i int) any {
	if i < 0 || i >= p.depth {
		return nil
	}
	n := p
	for n.depth > i+1 {
		n = n.parent
	}
	return n.Last()
}

// Tokens returns all tokens from the root.
func (p *Path) Tokens() []any {
	out := make([]any, p.depth)
	for n := p; n.depth > 0; n = n.parent {
		out[n.depth-1] = n.Last()
	}
	return out
}

// WithType re-roots the same tokens under another rendering.
func (p *Path) WithType(t Type) *Path {
	if p.typ == t {
		return p
	}
	out := New(t)
	for _, tok := range p.Tokens() {
		out = out.AppendToken(tok)
	}
	return out
}

func (p *Path) String() string { return p.Render(p.typ) }

// Pointer renders p as a JSON Pointer regardless of its type.
func (p *Path) Pointer() string { return p.Render(JSONPointer) }

// Render renders p with the given type.
func (p *Path) Render(t Type) string {
	var b strings.Builder
	switch t {
	case JSONPath, Legacy:
		b.WriteByte('$')
	case URIReference:
		b.WriteByte('#')
	}
	for _, tok := range p.Tokens() {
		writeToken(&b, t, tok)
	}
	return b.String()
}

func writeToken(b *strings.Builder, t Type, tok any) {
	i, isIndex := tok.(int)
	name, _ := tok.(string)
	switch t {
	case JSONPointer:
		b.WriteByte('/')
		if isIndex {
			b.WriteString(strconv.Itoa(i))
		} else {
			b.WriteString(EscapePointer(name))
		}
	case URIReference:
		b.WriteByte('/')
		if isIndex {
			b.WriteString(strconv.Itoa(i))
		} else {
			b.WriteString(url.PathEscape(EscapePointer(name)))
		}
	case Legacy:
		if isIndex {
			b.WriteString("[" + strconv.Itoa(i) + "]")
		} else {
			b.WriteByte('.')
			b.WriteString(name)
		}
	case JSONPath:
		switch {
		case isIndex:
			b.WriteString("[" + strconv.Itoa(i) + "]")
		case isIdentifier(name):
			b.WriteByte('.')
			b.WriteString(name)
		default:
			b.WriteString("['")
			b.WriteString(QuoteJSONPath(name))
			b.WriteString("']")
		}
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return true
}

var (
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
	pathQuoter       = strings.NewReplacer(`\`, `\\`, `'`, `\'`)
)

// EscapePointer escapes a reference token per RFC 6901.
func EscapePointer(s string) string { return pointerEscaper.Replace(s) }

// UnescapePointer reverses EscapePointer.
func UnescapePointer(s string) string { return pointerUnescaper.Replace(s) }

// QuoteJSONPath escapes a name for use inside ['...'].
func QuoteJSONPath(s string) string { return pathQuoter.Replace(s) }

// Compare orders paths by token count first, then token by token. Integer
// tokens compare numerically with each other; all other pairs compare by
// their string form.
func (p *Path) Compare(o *Path) int {
	if p.depth != o.depth {
		if p.depth < o.depth {
			return -1
		}
		return 1
	}
	a, b := p.Tokens(), o.Tokens()
	for i := range a {
		if c := compareToken(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func compareToken(a, b any) int {
	ai, aInt := a.(int)
	bi, bInt := b.(int)
	if aInt && bInt {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// Equal reports whether both paths hold the same tokens. Types are ignored.
func (p *Path) Equal(o *Path) bool {
	if p == o {
		return true
	}
	if p == nil || o == nil || p.depth != o.depth {
		return false
	}
	for a, b := p, o; a.depth > 0; a, b = a.parent, b.parent {
		if a == b {
			return true
		}
		if a.isIndex != b.isIndex || a.name != b.name || a.index != b.index {
			return false
		}
	}
	return true
}

// StartsWith reports whether prefix is an ancestor of (or equal to) p.
func (p *Path) StartsWith(prefix *Path) bool {
	if prefix.depth > p.depth {
		return false
	}
	n := p
	for n.depth > prefix.depth {
		n = n.parent
	}
	return n.Equal(prefix)
}
