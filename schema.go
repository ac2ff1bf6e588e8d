package skema

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/reoring/skema/internal/debug"
	"github.com/reoring/skema/iri"
	"github.com/reoring/skema/nodepath"
)

// Validator evaluates one keyword occurrence against the instance of e.
type Validator interface {
	Validate(e *Evaluation)
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(e *Evaluation)

func (f ValidatorFunc) Validate(e *Evaluation) { f(e) }

// subschemaLister is implemented by applicators so that
// InitializeValidators can reach every node, references included.
type subschemaLister interface {
	subschemas(ctx context.Context) ([]*Schema, error)
}

// KeywordContext describes the keyword occurrence a factory builds.
type KeywordContext struct {
	Schema  *Schema
	Keyword string
	Value   any

	ctx context.Context
}

// Location is the canonical location of the keyword.
func (kc *KeywordContext) Location() SchemaLocation { return kc.Schema.loc.Append(kc.Keyword) }

// Sibling returns another keyword of the same schema object.
func (kc *KeywordContext) Sibling(name string) (any, bool) {
	m, _ := kc.Schema.value.(map[string]any)
	v, ok := m[name]
	return v, ok
}

// Sub compiles the subschema at Keyword followed by tokens.
func (kc *KeywordContext) Sub(tokens ...any) (*Schema, error) {
	return kc.Schema.child(kc.ctx, append([]any{kc.Keyword}, tokens...)...)
}

// Invalid reports a malformed keyword value.
func (kc *KeywordContext) Invalid(format string, args ...any) error {
	return &InvalidSchemaError{Location: kc.Location(), Reason: fmt.Sprintf(format, args...)}
}

// Dialect is the dialect in effect for the keyword.
func (kc *KeywordContext) Dialect() *Dialect { return kc.Schema.sc.dialect }

// Context carries the registry lookup mode of the current compilation.
func (kc *KeywordContext) Context() context.Context { return kc.ctx }

// scope is the lexical state of a schema node: its enclosing resource and
// dialect.
type scope struct {
	base    string // absolute IRI of the enclosing schema resource
	rel     string // JSON Pointer from the resource root
	dialect *Dialect
}

func (sc scope) location() SchemaLocation {
	return SchemaLocation{IRI: iri.AbsoluteIRI(sc.base), Fragment: sc.rel}
}

// Schema is a compiled schema node. Nodes are shared: every path that
// reaches the same document location under the same dialect yields the same
// *Schema, which is how reference cycles stay finite.
type Schema struct {
	reg      *Registry
	doc      *document
	ptr      string
	loc      SchemaLocation
	sc       scope
	evalPath *nodepath.Path
	value    any

	once       sync.Once
	validators []boundValidator
	err        error
}

type boundValidator struct {
	keyword string
	value   any
	loc     SchemaLocation
	v       Validator
}

// Location returns the canonical location of the node.
func (s *Schema) Location() SchemaLocation { return s.loc }

// EvaluationPath is the schema-side path through which the node was first
// compiled. Evaluation reports carry the path actually taken.
func (s *Schema) EvaluationPath() *nodepath.Path { return s.evalPath }

// Dialect returns the dialect in effect for the node.
func (s *Schema) Dialect() *Dialect { return s.sc.dialect }

// Value returns the raw schema value.
func (s *Schema) Value() any { return s.value }

// Registry returns the registry that compiled the node.
func (s *Schema) Registry() *Registry { return s.reg }

// Keywords lists the keywords of the node in evaluation order. Keywords
// the dialect does not know are not listed.
func (s *Schema) Keywords() []string {
	m, ok := s.value.(map[string]any)
	if !ok {
		return nil
	}
	var out []string
	for _, k := range s.sc.dialect.keywords {
		if _, ok := m[k.Name]; ok {
			out = append(out, k.Name)
		}
	}
	return out
}

func (s *Schema) String() string { return s.loc.String() }

// readsAnnotations reports whether the node has unevaluated* keywords.
func (s *Schema) readsAnnotations() bool {
	m, ok := s.value.(map[string]any)
	if !ok {
		return false
	}
	_, p := m["unevaluatedProperties"]
	_, i := m["unevaluatedItems"]
	return (p || i) && (s.sc.dialect.HasKeyword("unevaluatedProperties") || s.sc.dialect.HasKeyword("unevaluatedItems"))
}

// child compiles the subschema found by following tokens from s.
func (s *Schema) child(ctx context.Context, tokens ...any) (*Schema, error) {
	v := s.value
	ptr := s.ptr
	sc := s.sc
	ep := s.evalPath
	var rel strings.Builder
	rel.WriteString(sc.rel)
	for _, t := range tokens {
		switch k := t.(type) {
		case string:
			m, ok := v.(map[string]any)
			if !ok {
				return nil, &InvalidSchemaError{Location: s.loc, Reason: fmt.Sprintf("cannot descend into %q", k)}
			}
			v, ok = m[k]
			if !ok {
				return nil, &InvalidSchemaError{Location: s.loc, Reason: fmt.Sprintf("missing %q", k)}
			}
			esc := nodepath.EscapePointer(k)
			ptr += "/" + esc
			rel.WriteString("/" + esc)
			ep = ep.Append(k)
		case int:
			a, ok := v.([]any)
			if !ok || k < 0 || k >= len(a) {
				return nil, &InvalidSchemaError{Location: s.loc, Reason: fmt.Sprintf("index %d out of range", k)}
			}
			v = a[k]
			ptr += "/" + strconv.Itoa(k)
			rel.WriteString("/" + strconv.Itoa(k))
			ep = ep.AppendIndex(k)
		default:
			return nil, fmt.Errorf("skema: bad path token %T", t)
		}
	}
	sc.rel = rel.String()
	sc, err := s.reg.adopt(ctx, sc, v)
	if err != nil {
		return nil, err
	}
	return s.reg.node(s.doc, ptr, v, sc, ep), nil
}

// build compiles the keyword validators once. Reference targets are not
// compiled here; they resolve on first use.
func (s *Schema) build(ctx context.Context) ([]boundValidator, error) {
	s.once.Do(func() {
		s.validators, s.err = s.compile(ctx)
		if debug.Compile() {
			debug.Logf("compile: %s (%s) err=%v\n", s.loc, s.sc.dialect.ID(), s.err)
		}
	})
	return s.validators, s.err
}

func (s *Schema) compile(ctx context.Context) ([]boundValidator, error) {
	var m map[string]any
	switch v := s.value.(type) {
	case bool:
		return nil, nil
	case map[string]any:
		m = v
	default:
		return nil, &InvalidSchemaError{Location: s.loc, Reason: "schema must be an object or a boolean, got " + TypeOf(v)}
	}
	d := s.sc.dialect
	var out []boundValidator
	add := func(k Keyword, val any) error {
		kc := &KeywordContext{Schema: s, Keyword: k.Name, Value: val, ctx: ctx}
		v, err := k.Factory(kc)
		if err != nil {
			return err
		}
		if v != nil {
			out = append(out, boundValidator{keyword: k.Name, value: val, loc: kc.Location(), v: v})
		}
		return nil
	}
	if ref, ok := m["$ref"]; ok && d.refOverridesSiblings() {
		if i, ok := d.index["$ref"]; ok {
			if err := add(d.keywords[i], ref); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	for _, k := range d.keywords {
		val, ok := m[k.Name]
		if !ok {
			continue
		}
		if err := add(k, val); err != nil {
			return nil, err
		}
	}
	policy := s.reg.cfg.UnknownKeywords
	if policy == UnknownIgnore {
		return out, nil
	}
	for _, name := range sortedKeys(m) {
		if d.HasKeyword(name) {
			continue
		}
		switch policy {
		case UnknownFail:
			return nil, &UnknownKeywordError{Keyword: name, Location: s.loc.Append(name)}
		case UnknownAnnotate:
			if err := add(Keyword{Name: name, Factory: newAnnotation}, m[name]); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// InitializeValidators compiles the whole graph reachable from s and
// resolves every reference, reporting the first failure. Without it,
// compilation of subschemas and reference resolution happen lazily on first
// evaluation.
func (s *Schema) InitializeValidators() error {
	ctx := lookupOnly(context.Background())
	seen := map[*Schema]bool{}
	stack := []*Schema{s}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		vs, err := n.build(ctx)
		if err != nil {
			return err
		}
		for _, bv := range vs {
			l, ok := bv.v.(subschemaLister)
			if !ok {
				continue
			}
			subs, err := l.subschemas(ctx)
			if err != nil {
				return err
			}
			stack = append(stack, subs...)
		}
	}
	return nil
}
