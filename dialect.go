package skema

import (
	"sort"
	"strings"
)

// Version is the JSON Schema release whose semantics a dialect follows.
type Version int

const (
	VersionDraft4 Version = iota + 1
	VersionDraft6
	VersionDraft7
	Version201909
	Version202012
)

func (v Version) String() string {
	switch v {
	case VersionDraft4:
		return "draft4"
	case VersionDraft6:
		return "draft6"
	case VersionDraft7:
		return "draft7"
	case Version201909:
		return "2019-09"
	case Version202012:
		return "2020-12"
	}
	return "unknown"
}

// Dialect IRIs shipped with the package.
const (
	Draft4      = "http://json-schema.org/draft-04/schema#"
	Draft6      = "http://json-schema.org/draft-06/schema#"
	Draft7      = "http://json-schema.org/draft-07/schema#"
	Draft201909 = "https://json-schema.org/draft/2019-09/schema"
	Draft202012 = "https://json-schema.org/draft/2020-12/schema"
	OpenAPI30   = "https://spec.openapis.org/oas/3.0/dialect"
	OpenAPI31   = "https://spec.openapis.org/oas/3.1/dialect/base"
)

// KeywordFactory builds the validator for one keyword occurrence. It may
// return a nil Validator for keywords that only shape other keywords
// ($defs, then, else, ...).
type KeywordFactory func(kc *KeywordContext) (Validator, error)

// Keyword binds a name to its factory.
type Keyword struct {
	Name    string
	Factory KeywordFactory
	// Deferred keywords run after all other keywords of a schema object.
	Deferred bool
}

// Vocabulary is a named group of keywords.
type Vocabulary struct {
	ID       string
	Keywords []Keyword
	// FormatAssertion makes format an assertion in dialects including it.
	FormatAssertion bool
}

// Dialect is an immutable keyword table plus formats.
type Dialect struct {
	id              string
	version         Version
	vocabularies    map[string]bool
	keywords        []Keyword
	index           map[string]int
	formats         map[string]Format
	formatAssertion bool
	idKeyword       string
	discriminator   bool
}

// ID returns the dialect IRI.
func (d *Dialect) ID() string { return d.id }

// Version returns the release semantics.
func (d *Dialect) Version() Version { return d.version }

// Vocabularies lists vocabulary IRIs with their required flag.
func (d *Dialect) Vocabularies() map[string]bool {
	out := make(map[string]bool, len(d.vocabularies))
	for k, v := range d.vocabularies {
		out[k] = v
	}
	return out
}

// Keywords lists keyword names in evaluation order.
func (d *Dialect) Keywords() []string {
	out := make([]string, len(d.keywords))
	for i, k := range d.keywords {
		out[i] = k.Name
	}
	return out
}

// HasKeyword reports whether name is in the keyword table.
func (d *Dialect) HasKeyword(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Keyword returns the binding of name, letting custom dialects wrap a
// shipped factory.
func (d *Dialect) Keyword(name string) (Keyword, bool) {
	i, ok := d.index[name]
	if !ok {
		return Keyword{}, false
	}
	return d.keywords[i], true
}

// Format returns the named format checker.
func (d *Dialect) Format(name string) (Format, bool) {
	f, ok := d.formats[name]
	return f, ok
}

// FormatAssertion reports whether format asserts by default.
func (d *Dialect) FormatAssertion() bool { return d.formatAssertion }

// IDKeyword is "id" for draft 4 based dialects and "$id" otherwise.
func (d *Dialect) IDKeyword() string { return d.idKeyword }

func (d *Dialect) refOverridesSiblings() bool { return d.version <= VersionDraft7 }

// DialectBuilder assembles a Dialect.
type DialectBuilder struct {
	d *Dialect
}

// NewDialect starts a dialect, copying base when non-nil.
func NewDialect(id string, base *Dialect) *DialectBuilder {
	d := &Dialect{
		id:           normalizeDialectID(id),
		version:      Version202012,
		vocabularies: map[string]bool{},
		index:        map[string]int{},
		formats:      map[string]Format{},
		idKeyword:    "$id",
	}
	if base != nil {
		d.version = base.version
		d.formatAssertion = base.formatAssertion
		d.idKeyword = base.idKeyword
		d.discriminator = base.discriminator
		for k, v := range base.vocabularies {
			d.vocabularies[k] = v
		}
		d.keywords = append(d.keywords, base.keywords...)
		for k, v := range base.formats {
			d.formats[k] = v
		}
	}
	return &DialectBuilder{d: d}
}

// Version sets the release semantics.
func (b *DialectBuilder) Version(v Version) *DialectBuilder {
	b.d.version = v
	if v == VersionDraft4 {
		b.d.idKeyword = "id"
	} else {
		b.d.idKeyword = "$id"
	}
	return b
}

// Vocabulary adds a vocabulary and its keywords.
func (b *DialectBuilder) Vocabulary(v *Vocabulary, required bool) *DialectBuilder {
	b.d.vocabularies[v.ID] = required
	for _, k := range v.Keywords {
		b.Keyword(k)
	}
	if v.FormatAssertion {
		b.d.formatAssertion = true
	}
	return b
}

// Keyword adds a keyword or replaces one with the same name in place.
func (b *DialectBuilder) Keyword(k Keyword) *DialectBuilder {
	for i := range b.d.keywords {
		if b.d.keywords[i].Name == k.Name {
			b.d.keywords[i] = k
			return b
		}
	}
	b.d.keywords = append(b.d.keywords, k)
	return b
}

// Without removes keywords.
func (b *DialectBuilder) Without(names ...string) *DialectBuilder {
	drop := map[string]bool{}
	for _, n := range names {
		drop[n] = true
	}
	kept := b.d.keywords[:0:0]
	for _, k := range b.d.keywords {
		if !drop[k.Name] {
			kept = append(kept, k)
		}
	}
	b.d.keywords = kept
	return b
}

// Format registers a format checker.
func (b *DialectBuilder) Format(f Format) *DialectBuilder {
	b.d.formats[f.Name()] = f
	return b
}

// FormatAssertion sets whether format asserts by default.
func (b *DialectBuilder) FormatAssertion(on bool) *DialectBuilder {
	b.d.formatAssertion = on
	return b
}

// IDKeyword overrides the identifier keyword.
func (b *DialectBuilder) IDKeyword(name string) *DialectBuilder {
	b.d.idKeyword = name
	return b
}

// Build freezes the dialect. Deferred keywords move to the end, keeping
// their relative order.
func (b *DialectBuilder) Build() *Dialect {
	d := b.d
	b.d = nil
	sort.SliceStable(d.keywords, func(i, j int) bool {
		return !d.keywords[i].Deferred && d.keywords[j].Deferred
	})
	for i, k := range d.keywords {
		d.index[k.Name] = i
	}
	_, d.discriminator = d.index["discriminator"]
	return d
}

// normalizeDialectID drops an empty trailing fragment.
func normalizeDialectID(id string) string {
	return strings.TrimSuffix(id, "#")
}
