package skema

import (
	"strings"

	"github.com/reoring/skema/iri"
	"github.com/reoring/skema/nodepath"
)

// SchemaLocation identifies a schema subtree: an absolute IRI plus a
// fragment that is either a JSON Pointer or a plain-name anchor.
type SchemaLocation struct {
	IRI      iri.AbsoluteIRI
	Fragment string
}

// ParseSchemaLocation splits s at "#".
func ParseSchemaLocation(s string) SchemaLocation {
	abs, frag := iri.Split(s)
	return SchemaLocation{IRI: abs, Fragment: frag}
}

// ResolveLocation resolves ref against base. An empty base degrades to
// relative resolution of ref alone.
func ResolveLocation(base SchemaLocation, ref string) SchemaLocation {
	if base.IRI == "" {
		return ParseSchemaLocation(ref)
	}
	return ParseSchemaLocation(iri.Resolve(string(base.IRI), ref))
}

// IsAnchor reports whether the fragment is a plain name.
func (l SchemaLocation) IsAnchor() bool {
	return l.Fragment != "" && !strings.HasPrefix(l.Fragment, "/")
}

// Pointer parses the fragment as a JSON Pointer.
func (l SchemaLocation) Pointer() (*nodepath.Path, error) {
	return nodepath.ParsePointer(l.Fragment)
}

// Append extends a pointer fragment by tokens.
func (l SchemaLocation) Append(tokens ...any) SchemaLocation {
	var b strings.Builder
	b.WriteString(l.Fragment)
	for _, t := range tokens {
		b.WriteByte('/')
		switch v := t.(type) {
		case string:
			b.WriteString(nodepath.EscapePointer(v))
		default:
			b.WriteString(toString(v))
		}
	}
	return SchemaLocation{IRI: l.IRI, Fragment: b.String()}
}

// Equal reports whether both components are equal.
func (l SchemaLocation) Equal(o SchemaLocation) bool {
	return l.IRI == o.IRI && l.Fragment == o.Fragment
}

func (l SchemaLocation) String() string {
	return string(l.IRI) + "#" + l.Fragment
}
