package skema

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/reoring/skema/internal/debug"
	"github.com/reoring/skema/iri"
)

// DialectRegistry resolves $schema IRIs to dialects. Concurrent first
// requests for one IRI build a single instance that every caller receives.
type DialectRegistry struct {
	reg *Registry

	mu       sync.RWMutex
	dialects map[string]*Dialect
	group    singleflight.Group
}

func newDialectRegistry(r *Registry) *DialectRegistry {
	return &DialectRegistry{reg: r, dialects: map[string]*Dialect{}}
}

// Register adds a custom dialect.
func (dr *DialectRegistry) Register(d *Dialect) {
	d = dr.customize(d)
	dr.mu.Lock()
	dr.dialects[d.id] = d
	dr.mu.Unlock()
}

func (dr *DialectRegistry) cached(id string) (*Dialect, bool) {
	dr.mu.RLock()
	defer dr.mu.RUnlock()
	d, ok := dr.dialects[id]
	return d, ok
}

// IDs lists the shipped dialects plus every dialect resolved so far.
func (dr *DialectRegistry) IDs() []string {
	seen := map[string]bool{}
	var out []string
	for _, id := range BuiltinDialects() {
		id = normalizeDialectID(id)
		seen[id] = true
		out = append(out, id)
	}
	dr.mu.RLock()
	for id := range dr.dialects {
		if !seen[id] {
			out = append(out, id)
		}
	}
	dr.mu.RUnlock()
	sort.Strings(out[len(BuiltinDialects()):])
	return out
}

// Get returns the dialect identified by id.
func (dr *DialectRegistry) Get(ctx context.Context, id string) (*Dialect, error) {
	id = canonicalDialectID(id)
	if d, ok := dr.cached(id); ok {
		return d, nil
	}
	v, err, _ := dr.group.Do(id, func() (any, error) {
		if d, ok := dr.cached(id); ok {
			return d, nil
		}
		d, err := dr.build(ctx, id)
		if err != nil {
			return nil, err
		}
		d = dr.customize(d)
		dr.mu.Lock()
		dr.dialects[id] = d
		dr.mu.Unlock()
		if debug.Compile() {
			debug.Logf("compile: dialect %s (%s, %d keywords)\n", id, d.version, len(d.keywords))
		}
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dialect), nil
}

// customize applies registry-wide options to a dialect.
func (dr *DialectRegistry) customize(d *Dialect) *Dialect {
	cfg := dr.reg.cfg
	if len(cfg.Formats) == 0 && (!cfg.Discriminator || d.HasKeyword("discriminator")) {
		return d
	}
	b := NewDialect(d.id, d)
	for _, f := range cfg.Formats {
		b.Format(f)
	}
	if cfg.Discriminator && !d.HasKeyword("discriminator") {
		b.Keyword(kw("discriminator", newAnnotation))
	}
	return b.Build()
}

// build constructs a shipped dialect or derives one from a meta-schema.
func (dr *DialectRegistry) build(ctx context.Context, id string) (*Dialect, error) {
	if d, ok := builtinDialect(id); ok {
		return d, nil
	}
	if !iri.HasScheme(id) {
		return nil, &VocabularyError{Dialect: id, Err: fmt.Errorf("dialect IRI must be absolute")}
	}
	loc := ParseSchemaLocation(id)
	doc, err := dr.reg.document(ctx, string(loc.IRI))
	if err != nil {
		return nil, &VocabularyError{Dialect: id, Err: err}
	}
	meta, ok := doc.root.(map[string]any)
	if !ok {
		return nil, &VocabularyError{Dialect: id, Err: fmt.Errorf("meta-schema is not an object")}
	}
	var base *Dialect
	if s, ok := meta["$schema"].(string); ok && canonicalDialectID(s) != id {
		if base, err = dr.Get(ctx, s); err != nil {
			return nil, err
		}
	}
	vocabs, ok := meta["$vocabulary"].(map[string]any)
	if !ok {
		if base == nil {
			return nil, &VocabularyError{Dialect: id, Err: fmt.Errorf("meta-schema declares neither $vocabulary nor a known $schema")}
		}
		return NewDialect(id, base).Build(), nil
	}
	b := NewDialect(id, nil).Version(versionOfVocabularies(vocabs, base))
	for _, vid := range sortedKeys(vocabs) {
		required, _ := vocabs[vid].(bool)
		v, known := KnownVocabulary(vid)
		if !known {
			if required {
				return nil, &VocabularyError{Dialect: id, Vocabulary: vid}
			}
			continue
		}
		b.Vocabulary(v, required)
	}
	b = withBuiltinFormats(b)
	if _, ok := vocabs[VocabOpenAPI31]; ok {
		b = withOpenAPIFormats(b)
	}
	return b.Build(), nil
}

func versionOfVocabularies(vocabs map[string]any, base *Dialect) Version {
	for vid := range vocabs {
		switch vid {
		case Vocab201909Core, Vocab201909Applicator, Vocab201909Validation:
			return Version201909
		}
	}
	if base != nil && base.version >= Version201909 {
		return base.version
	}
	return Version202012
}
