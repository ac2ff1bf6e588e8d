package kubeopenapi

import (
	"fmt"

	skema "github.com/reoring/skema"
)

const (
	// DialectID identifies OpenAPI 3.0 schemas extended with the
	// Kubernetes structural-schema keywords.
	DialectID = "https://skema.dev/dialect/kubernetes-structural"
	// VocabularyID groups the x-kubernetes-* keywords.
	VocabularyID = "https://skema.dev/vocab/kubernetes"
)

// Vocabulary returns the x-kubernetes-* keywords.
func Vocabulary() *skema.Vocabulary {
	return &skema.Vocabulary{
		ID: VocabularyID,
		Keywords: []skema.Keyword{
			{Name: "x-kubernetes-int-or-string", Factory: newIntOrString},
			{Name: "x-kubernetes-preserve-unknown-fields", Factory: newPreserveUnknownFields},
			{Name: "x-kubernetes-list-type", Factory: newListType},
			{Name: "x-kubernetes-list-map-keys", Factory: noValidator},
			{Name: "x-kubernetes-map-type", Factory: noValidator},
			{Name: "x-kubernetes-embedded-resource", Factory: newEmbeddedResource},
			{Name: "x-kubernetes-validations", Factory: noValidator},
		},
	}
}

// Dialect builds the structural dialect on top of OpenAPI 3.0. type yields
// to x-kubernetes-int-or-string on the same schema object.
func Dialect() *skema.Dialect {
	base, ok := skema.BuiltinDialect(skema.OpenAPI30)
	if !ok {
		panic("kubeopenapi: OpenAPI 3.0 dialect missing")
	}
	b := skema.NewDialect(DialectID, base).Vocabulary(Vocabulary(), true)
	if t, ok := base.Keyword("type"); ok {
		inner := t.Factory
		b.Keyword(skema.Keyword{Name: "type", Factory: func(kc *skema.KeywordContext) (skema.Validator, error) {
			if v, _ := kc.Sibling("x-kubernetes-int-or-string"); v == true {
				return nil, nil
			}
			return inner(kc)
		}})
	}
	return b.Build()
}

func noValidator(*skema.KeywordContext) (skema.Validator, error) { return nil, nil }

func flag(kc *skema.KeywordContext) (bool, error) {
	b, ok := kc.Value.(bool)
	if !ok {
		return false, kc.Invalid("%s must be a boolean", kc.Keyword)
	}
	return b, nil
}

func newIntOrString(kc *skema.KeywordContext) (skema.Validator, error) {
	on, err := flag(kc)
	if err != nil || !on {
		return nil, err
	}
	return skema.ValidatorFunc(func(e *skema.Evaluation) {
		switch skema.TypeOf(e.Instance()) {
		case skema.TypeInteger, skema.TypeString:
		default:
			e.Fail("intOrString")
		}
	}), nil
}

func newPreserveUnknownFields(kc *skema.KeywordContext) (skema.Validator, error) {
	on, err := flag(kc)
	if err != nil || !on {
		return nil, err
	}
	return skema.ValidatorFunc(func(e *skema.Evaluation) {
		if _, ok := e.Instance().(map[string]any); ok {
			e.Annotate(true)
		}
	}), nil
}

func quote(s string) string { return fmt.Sprintf("'%s'", s) }
