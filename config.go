package skema

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/reoring/skema/nodepath"
)

// UnknownKeywordPolicy controls keywords the active dialect does not know.
type UnknownKeywordPolicy int

const (
	// UnknownIgnore skips unknown keywords.
	UnknownIgnore UnknownKeywordPolicy = iota
	// UnknownFail rejects the schema with *UnknownKeywordError.
	UnknownFail
	// UnknownAnnotate emits unknown keywords as annotations.
	UnknownAnnotate
)

// ParseUnknownKeywordPolicy maps "ignore", "fail" and "annotate".
func ParseUnknownKeywordPolicy(s string) (UnknownKeywordPolicy, error) {
	switch s {
	case "", "ignore":
		return UnknownIgnore, nil
	case "fail", "error":
		return UnknownFail, nil
	case "annotate", "annotation":
		return UnknownAnnotate, nil
	}
	return UnknownIgnore, fmt.Errorf("skema: unknown keyword policy %q", s)
}

// Config holds registry-wide, compile-time options.
type Config struct {
	// DefaultDialect applies to documents without $schema.
	DefaultDialect string
	// Loaders fetch documents, tried in order. Documents added with
	// AddResource never reach a loader.
	Loaders []ResourceLoader
	// Mappings rewrite IRI prefixes before loading.
	Mappings Mappings
	// Formats adds or replaces format checkers in every dialect.
	Formats []Format
	// UnknownKeywords selects the policy for unknown keywords.
	UnknownKeywords UnknownKeywordPolicy
	// Discriminator enables the discriminator keyword in every dialect.
	Discriminator bool
	// StrictFormats turns unknown formats into failures when formats assert.
	StrictFormats bool
	// AllowDuplicateKeys accepts duplicate object keys in schema JSON.
	AllowDuplicateKeys bool
	// AnonymousBase prefixes IRIs of documents compiled from content.
	// Defaults to "urn:skema:anonymous:".
	AnonymousBase string
	// Dialects registers custom dialects, replacing shipped ones with the
	// same IRI.
	Dialects []*Dialect
}

// Tristate is an optional bool.
type Tristate int

const (
	Unset Tristate = iota
	On
	Off
)

// Bool returns the value or def when Unset.
func (t Tristate) Bool(def bool) bool {
	switch t {
	case On:
		return true
	case Off:
		return false
	}
	return def
}

// ExecutionConfig holds per-call options.
type ExecutionConfig struct {
	// FormatAssertions overrides the dialect's format behaviour.
	FormatAssertions Tristate
	// ContentAssertions validates contentEncoding/contentMediaType.
	ContentAssertions bool
	// CollectAnnotations keeps every annotation, not only those consumed by
	// unevaluated* keywords. List and Hierarchical output turn it on.
	CollectAnnotations bool
	// AnnotationFilter limits reported annotations by keyword.
	AnnotationFilter func(keyword string) bool
	// ReadOnly treats the instance as read from a server: writeOnly
	// properties are neither required nor allowed.
	ReadOnly bool
	// WriteOnly treats the instance as sent to a server: readOnly
	// properties are neither required nor allowed.
	WriteOnly bool
	// FailFast stops at the first error and returns *FailFastError.
	FailFast bool
	// PathType selects the rendering of instance locations in messages.
	PathType nodepath.Type
	// Locale selects message templates ("en", "ja").
	Locale string
}

type contextKey int

const (
	_ctxKeyFailFast contextKey = iota
)

// WithFailFast returns a child context that marks fail-fast evaluation.
func WithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current evaluation should stop on the first error.
func IsFailFast(ctx context.Context) bool {
	v := ctx.Value(_ctxKeyFailFast)
	b, _ := v.(bool)
	return b
}

// WalkConfig configures Schema.Walk.
type WalkConfig struct {
	// KeywordListeners are called around each occurrence of a keyword.
	KeywordListeners map[string][]WalkListener
	// PropertyListeners are called before descending into an object member.
	PropertyListeners []WalkListener
	// ItemListeners are called before descending into an array element.
	ItemListeners []WalkListener
	// ApplyDefaults selects where defaults are written.
	ApplyDefaults ApplyDefaultsStrategy
	// Validate runs a validation pass on the walked instance.
	Validate bool
	// Execution configures the underlying evaluation.
	Execution ExecutionConfig
}

// FileConfig is the YAML/JSON form of Config.
type FileConfig struct {
	DefaultDialect  string            `yaml:"default_dialect"`
	Mappings        map[string]string `yaml:"mappings"`
	StrictFormats   bool              `yaml:"strict_formats"`
	UnknownKeywords string            `yaml:"unknown_keywords"`
	Discriminator   bool              `yaml:"discriminator"`
	AnonymousBase   string            `yaml:"anonymous_base"`
	Directories     map[string]string `yaml:"directories"`
}

// LoadConfigFile reads a registry configuration. Directories map IRI
// prefixes to local directories served by FSLoader.
func LoadConfigFile(r io.Reader) (Config, error) {
	var fc FileConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("skema: config: %w", err)
	}
	policy, err := ParseUnknownKeywordPolicy(fc.UnknownKeywords)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		DefaultDialect:  fc.DefaultDialect,
		StrictFormats:   fc.StrictFormats,
		UnknownKeywords: policy,
		Discriminator:   fc.Discriminator,
		AnonymousBase:   fc.AnonymousBase,
	}
	for from, to := range fc.Mappings {
		cfg.Mappings = append(cfg.Mappings, Mapping{Prefix: from, Replacement: to})
	}
	for prefix, dir := range fc.Directories {
		cfg.Loaders = append(cfg.Loaders, NewDirLoader(prefix, dir))
	}
	return cfg, nil
}
