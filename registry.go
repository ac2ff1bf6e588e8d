package skema

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/reoring/skema/internal/debug"
	"github.com/reoring/skema/iri"
	"github.com/reoring/skema/nodepath"
)

const defaultAnonymousBase = "urn:skema:anonymous:"

// document is a raw schema document registered under its retrieval IRI.
type document struct {
	iri  string
	root any
	// refs are the absolute targets of the references in the document.
	refs []string
	// schemas are the $schema values used in the document.
	schemas []string
}

type resourceRef struct {
	doc *document
	ptr string
}

// Registry caches schema documents and compiled schemas. It is safe for
// concurrent use and meant to be long lived: compiled nodes are immutable
// once built and shared by every Validate and Walk call.
type Registry struct {
	cfg      Config
	dialects *DialectRegistry

	mu             sync.RWMutex
	docs           map[string]*document
	failed         map[string]error
	resources      map[string]resourceRef
	anchors        map[string]resourceRef
	dynamicAnchors map[string]resourceRef
	recursive      map[string]bool

	nodes sync.Map // key -> *Schema
	group singleflight.Group
}

// NewRegistry returns an empty registry.
func NewRegistry(cfg Config) *Registry {
	if cfg.AnonymousBase == "" {
		cfg.AnonymousBase = defaultAnonymousBase
	}
	if cfg.DefaultDialect != "" {
		cfg.DefaultDialect = canonicalDialectID(cfg.DefaultDialect)
	}
	r := &Registry{
		cfg:            cfg,
		docs:           map[string]*document{},
		failed:         map[string]error{},
		resources:      map[string]resourceRef{},
		anchors:        map[string]resourceRef{},
		dynamicAnchors: map[string]resourceRef{},
		recursive:      map[string]bool{},
	}
	r.dialects = newDialectRegistry(r)
	for _, d := range cfg.Dialects {
		r.dialects.Register(d)
	}
	return r
}

// Config returns the registry configuration.
func (r *Registry) Config() Config { return r.cfg }

// Dialects returns the dialect registry.
func (r *Registry) Dialects() *DialectRegistry { return r.dialects }

type lookupOnlyKey struct{}

// lookupOnly marks ctx so that the registry never calls a loader. Evaluation
// runs in this mode: all fetching happens while compiling.
func lookupOnly(ctx context.Context) context.Context {
	return context.WithValue(ctx, lookupOnlyKey{}, true)
}

func isLookupOnly(ctx context.Context) bool {
	b, _ := ctx.Value(lookupOnlyKey{}).(bool)
	return b
}

// AddResource registers a decoded document under an absolute IRI. Adding
// identical content twice is a no-op; different content under a registered
// IRI is an error.
func (r *Registry) AddResource(rawIRI string, doc any) error {
	abs, frag := iri.Split(rawIRI)
	if frag != "" || !iri.HasScheme(string(abs)) {
		return &InvalidSchemaError{Location: SchemaLocation{IRI: abs, Fragment: frag}, Reason: "resource IRI must be absolute without fragment"}
	}
	_, err := r.addDocument(string(abs), doc)
	return err
}

// AddResourceBytes decodes data as JSON, or YAML for .yaml/.yml IRIs, and
// registers it.
func (r *Registry) AddResourceBytes(rawIRI string, data []byte) error {
	v, err := decodeDocument(rawIRI, data, !r.cfg.AllowDuplicateKeys)
	if err != nil {
		return &InvalidSchemaError{Location: ParseSchemaLocation(rawIRI), Reason: "cannot decode document", Err: err}
	}
	return r.AddResource(rawIRI, v)
}

func (r *Registry) addDocument(abs string, root any) (*document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.docs[abs]; ok {
		if Equal(d.root, root) {
			return d, nil
		}
		return nil, &InvalidSchemaError{Location: SchemaLocation{IRI: iri.AbsoluteIRI(abs)}, Reason: "a different document is already registered under this IRI"}
	}
	d := &document{iri: abs, root: root}
	r.docs[abs] = d
	delete(r.failed, abs)
	if _, ok := r.resources[abs]; !ok {
		r.resources[abs] = resourceRef{doc: d}
	}
	r.indexSchema(d, root, "", abs, r.traitsOf(r.cfg.DefaultDialect, traits{version: Version202012, idKey: "$id"}))
	if debug.Load() {
		debug.Logf("load: registered %s (%d refs)\n", abs, len(d.refs))
	}
	return d, nil
}

// document returns the document registered or loadable under abs.
func (r *Registry) document(ctx context.Context, abs string) (*document, error) {
	r.mu.RLock()
	d, ok := r.docs[abs]
	ferr := r.failed[abs]
	r.mu.RUnlock()
	if ok {
		return d, nil
	}
	if isLookupOnly(ctx) {
		if ferr != nil {
			return nil, ferr
		}
		return nil, &ResourceNotFoundError{IRI: abs}
	}
	v, err, _ := r.group.Do("doc:"+abs, func() (any, error) {
		r.mu.RLock()
		d, ok := r.docs[abs]
		r.mu.RUnlock()
		if ok {
			return d, nil
		}
		root, err := r.fetch(ctx, abs)
		if err != nil {
			r.mu.Lock()
			r.failed[abs] = err
			r.mu.Unlock()
			return nil, err
		}
		return r.addDocument(abs, root)
	})
	if err != nil {
		return nil, err
	}
	return v.(*document), nil
}

func (r *Registry) fetch(ctx context.Context, abs string) (any, error) {
	target := r.cfg.Mappings.Map(abs)
	if debug.Load() && target != abs {
		debug.Logf("load: %s mapped to %s\n", abs, target)
	}
	var errs []error
	for _, l := range r.cfg.Loaders {
		v, err := l.Load(ctx, target)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrResourceNotFound) {
			return nil, &ResourceNotFoundError{IRI: abs, Err: err}
		}
		errs = append(errs, err)
	}
	return nil, &ResourceNotFoundError{IRI: abs, Err: errors.Join(errs...)}
}

// traits are the parts of a dialect needed to find identifiers before the
// dialect itself is built.
type traits struct {
	version Version
	idKey   string
}

func (r *Registry) traitsOf(dialectID string, fallback traits) traits {
	if dialectID == "" {
		return fallback
	}
	id := canonicalDialectID(dialectID)
	switch id {
	case normalizeDialectID(Draft4):
		return traits{version: VersionDraft4, idKey: "id"}
	case normalizeDialectID(Draft6):
		return traits{version: VersionDraft6, idKey: "$id"}
	case normalizeDialectID(Draft7):
		return traits{version: VersionDraft7, idKey: "$id"}
	case Draft201909:
		return traits{version: Version201909, idKey: "$id"}
	case Draft202012, OpenAPI31:
		return traits{version: Version202012, idKey: "$id"}
	case OpenAPI30:
		return traits{version: VersionDraft4}
	}
	if d, ok := r.dialects.cached(id); ok {
		return traits{version: d.version, idKey: d.idKeyword}
	}
	return fallback
}

// indexSchema records the resources, anchors and references below v.
// The caller holds r.mu.
func (r *Registry) indexSchema(d *document, v any, ptr, base string, t traits) {
	m, ok := v.(map[string]any)
	if !ok {
		return
	}
	if s, ok := m["$schema"].(string); ok {
		t = r.traitsOf(s, t)
		d.schemas = append(d.schemas, s)
	}
	_, hasRef := m["$ref"]
	refOnly := hasRef && t.version <= VersionDraft7
	if id, ok := m[t.idKey].(string); ok && t.idKey != "" && !refOnly {
		if t.version <= VersionDraft7 && strings.HasPrefix(id, "#") {
			r.addAnchor(r.anchors, base, id[1:], d, ptr)
		} else {
			abs, frag := iri.Split(iri.Resolve(base, id))
			if abs != "" {
				base = string(abs)
				if _, exists := r.resources[base]; !exists {
					r.resources[base] = resourceRef{doc: d, ptr: ptr}
				}
			}
			if frag != "" && t.version <= VersionDraft7 {
				r.addAnchor(r.anchors, base, frag, d, ptr)
			}
		}
	}
	if t.version >= Version201909 {
		if a, ok := m["$anchor"].(string); ok {
			r.addAnchor(r.anchors, base, a, d, ptr)
		}
		if a, ok := m["$dynamicAnchor"].(string); ok && t.version >= Version202012 {
			r.addAnchor(r.anchors, base, a, d, ptr)
			r.addAnchor(r.dynamicAnchors, base, a, d, ptr)
		}
		if b, ok := m["$recursiveAnchor"].(bool); ok && b {
			r.recursive[base] = true
		}
	}
	for _, k := range []string{"$ref", "$dynamicRef", "$recursiveRef"} {
		if s, ok := m[k].(string); ok {
			abs, _ := iri.Split(iri.Resolve(base, s))
			d.refs = append(d.refs, string(abs))
		}
	}
	for _, k := range sortedKeys(m) {
		sub := m[k]
		p := ptr + "/" + nodepath.EscapePointer(k)
		switch k {
		case "additionalItems", "additionalProperties", "contains", "not", "if", "then", "else",
			"propertyNames", "unevaluatedItems", "unevaluatedProperties", "contentSchema":
			r.indexSchema(d, sub, p, base, t)
		case "items":
			if arr, ok := sub.([]any); ok {
				r.indexArray(d, arr, p, base, t)
			} else {
				r.indexSchema(d, sub, p, base, t)
			}
		case "allOf", "anyOf", "oneOf", "prefixItems":
			if arr, ok := sub.([]any); ok {
				r.indexArray(d, arr, p, base, t)
			}
		case "properties", "patternProperties", "$defs", "definitions", "dependentSchemas", "dependencies":
			if mm, ok := sub.(map[string]any); ok {
				for _, name := range sortedKeys(mm) {
					r.indexSchema(d, mm[name], p+"/"+nodepath.EscapePointer(name), base, t)
				}
			}
		}
	}
}

func (r *Registry) indexArray(d *document, arr []any, ptr, base string, t traits) {
	for i, e := range arr {
		r.indexSchema(d, e, fmt.Sprintf("%s/%d", ptr, i), base, t)
	}
}

func (r *Registry) addAnchor(into map[string]resourceRef, base, name string, d *document, ptr string) {
	key := base + "#" + name
	if _, exists := into[key]; !exists {
		into[key] = resourceRef{doc: d, ptr: ptr}
	}
}

func (r *Registry) isDynamicAnchor(base, name string) (resourceRef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.dynamicAnchors[base+"#"+name]
	return ref, ok
}

func (r *Registry) isRecursiveAnchor(base string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.recursive[base]
}

// prefetch loads every document referenced from d, transitively, and warms
// the dialects they declare. Failures are remembered and reported when the
// reference is used.
func (r *Registry) prefetch(ctx context.Context, d *document) {
	seen := map[*document]bool{}
	queue := []*document{d}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		r.mu.RLock()
		refs := append([]string(nil), cur.refs...)
		schemas := append([]string(nil), cur.schemas...)
		r.mu.RUnlock()
		for _, s := range schemas {
			if _, err := r.dialects.Get(ctx, s); err != nil && debug.Load() {
				debug.Logf("load: dialect %s: %v\n", s, err)
			}
		}
		for _, ref := range refs {
			if ref == "" {
				continue
			}
			r.mu.RLock()
			res, ok := r.resources[ref]
			r.mu.RUnlock()
			if ok {
				queue = append(queue, res.doc)
				continue
			}
			next, err := r.document(ctx, ref)
			if err != nil {
				if debug.Load() {
					debug.Logf("load: prefetch %s: %v\n", ref, err)
				}
				continue
			}
			queue = append(queue, next)
		}
	}
}

// GetSchema returns the compiled schema at an absolute IRI, loading the
// document and every document it references.
func (r *Registry) GetSchema(ctx context.Context, ref string) (*Schema, error) {
	loc := ParseSchemaLocation(ref)
	if !iri.HasScheme(string(loc.IRI)) {
		return nil, &InvalidSchemaError{Location: loc, Reason: "schema IRI must be absolute"}
	}
	s, err := r.resolve(ctx, loc, nil)
	if err != nil {
		return nil, err
	}
	r.prefetch(ctx, s.doc)
	if _, err := s.build(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Compile registers doc under a content-derived IRI and compiles it.
// Content-identical documents share one compiled schema.
func (r *Registry) Compile(ctx context.Context, doc any) (*Schema, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, &InvalidSchemaError{Reason: "cannot encode document", Err: err}
	}
	sum := sha256.Sum256(b)
	id := r.cfg.AnonymousBase + hex.EncodeToString(sum[:16])
	if err := r.AddResource(id, doc); err != nil {
		return nil, err
	}
	return r.GetSchema(ctx, id)
}

// CompileBytes decodes JSON content and compiles it.
func (r *Registry) CompileBytes(ctx context.Context, data []byte) (*Schema, error) {
	v, err := decodeDocument("", data, !r.cfg.AllowDuplicateKeys)
	if err != nil {
		return nil, &InvalidSchemaError{Reason: "cannot decode document", Err: err}
	}
	return r.Compile(ctx, v)
}

// resolve finds the schema at loc. fallback is the dialect of the
// referencing schema, used when the target declares none.
func (r *Registry) resolve(ctx context.Context, loc SchemaLocation, fallback *Dialect) (*Schema, error) {
	abs := string(loc.IRI)
	r.mu.RLock()
	res, ok := r.resources[abs]
	r.mu.RUnlock()
	if !ok {
		d, err := r.document(ctx, abs)
		if err != nil {
			return nil, err
		}
		res = resourceRef{doc: d}
	}
	ptr := res.ptr
	switch {
	case loc.Fragment == "":
	case loc.IsAnchor():
		r.mu.RLock()
		a, ok := r.anchors[abs+"#"+loc.Fragment]
		r.mu.RUnlock()
		if !ok {
			return nil, &ResourceNotFoundError{IRI: loc.String(), Err: fmt.Errorf("no anchor %q", loc.Fragment)}
		}
		res, ptr = a, a.ptr
	default:
		frag, err := url.PathUnescape(loc.Fragment)
		if err != nil {
			return nil, &InvalidSchemaError{Location: loc, Reason: "malformed fragment", Err: err}
		}
		if _, err := nodepath.ParsePointer(frag); err != nil {
			return nil, &InvalidSchemaError{Location: loc, Reason: "malformed JSON Pointer", Err: err}
		}
		ptr += frag
	}
	return r.schemaAt(ctx, res.doc, ptr, fallback)
}

// schemaAt compiles the node at ptr of d, computing its lexical scope by
// walking from the document root.
func (r *Registry) schemaAt(ctx context.Context, d *document, ptr string, fallback *Dialect) (*Schema, error) {
	sc := scope{base: d.iri}
	if r.cfg.DefaultDialect != "" {
		dd, err := r.dialects.Get(ctx, r.cfg.DefaultDialect)
		if err != nil {
			return nil, err
		}
		sc.dialect = dd
	}
	if _, declares := rootSchemaKeyword(d.root); !declares && fallback != nil {
		sc.dialect = fallback
	}
	v := d.root
	sc, err := r.adopt(ctx, sc, v)
	if err != nil {
		return nil, err
	}
	path, err := nodepath.ParsePointer(ptr)
	if err != nil {
		return nil, &InvalidSchemaError{Location: SchemaLocation{IRI: iri.AbsoluteIRI(d.iri), Fragment: ptr}, Reason: "malformed JSON Pointer", Err: err}
	}
	var rel strings.Builder
	rel.WriteString(sc.rel)
	for _, tok := range path.Tokens() {
		name, _ := tok.(string)
		switch t := v.(type) {
		case map[string]any:
			next, ok := t[name]
			if !ok {
				return nil, &ResourceNotFoundError{IRI: d.iri + "#" + ptr, Err: fmt.Errorf("no member %q", name)}
			}
			v = next
		case []any:
			i, ok := arrayIndex(name)
			if !ok || i >= len(t) {
				return nil, &ResourceNotFoundError{IRI: d.iri + "#" + ptr, Err: fmt.Errorf("no element %q", name)}
			}
			v = t[i]
		default:
			return nil, &ResourceNotFoundError{IRI: d.iri + "#" + ptr, Err: fmt.Errorf("cannot descend into %s", TypeOf(v))}
		}
		rel.WriteString("/" + nodepath.EscapePointer(name))
		sc.rel = rel.String()
		next, err := r.adopt(ctx, sc, v)
		if err != nil {
			return nil, err
		}
		if next.base != sc.base {
			rel.Reset()
		}
		sc = next
	}
	return r.node(d, ptr, v, sc, nodepath.New(nodepath.JSONPointer)), nil
}

func rootSchemaKeyword(v any) (string, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	s, ok := m["$schema"].(string)
	return s, ok
}

func arrayIndex(s string) (int, bool) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}

// adopt applies the $schema and identifier of v to the scope.
func (r *Registry) adopt(ctx context.Context, sc scope, v any) (scope, error) {
	m, ok := v.(map[string]any)
	if !ok {
		if sc.dialect == nil {
			return sc, &MissingDialectError{Location: sc.location()}
		}
		return sc, nil
	}
	if s, ok := m["$schema"].(string); ok {
		d, err := r.dialects.Get(ctx, s)
		if err != nil {
			return sc, err
		}
		sc.dialect = d
	}
	if sc.dialect == nil {
		return sc, &MissingDialectError{Location: sc.location()}
	}
	if id, ok := identifier(sc.dialect, m); ok {
		abs, _ := iri.Split(iri.Resolve(sc.base, id))
		sc.base = string(abs)
		sc.rel = ""
	}
	return sc, nil
}

// identifier returns the base-changing identifier of a schema object.
func identifier(d *Dialect, m map[string]any) (string, bool) {
	key := d.IDKeyword()
	if key == "" {
		return "", false
	}
	id, ok := m[key].(string)
	if !ok {
		return "", false
	}
	if _, hasRef := m["$ref"]; hasRef && d.refOverridesSiblings() {
		return "", false
	}
	if d.version <= VersionDraft7 && strings.HasPrefix(id, "#") {
		return "", false
	}
	abs, _ := iri.Split(id)
	if abs == "" {
		return "", false
	}
	return id, true
}

// node returns the shared Schema for a location.
func (r *Registry) node(d *document, ptr string, v any, sc scope, ep *nodepath.Path) *Schema {
	key := d.iri + "#" + ptr + "@" + sc.dialect.ID()
	if s, ok := r.nodes.Load(key); ok {
		return s.(*Schema)
	}
	s := &Schema{reg: r, doc: d, ptr: ptr, loc: sc.location(), sc: sc, evalPath: ep, value: v}
	actual, _ := r.nodes.LoadOrStore(key, s)
	return actual.(*Schema)
}
