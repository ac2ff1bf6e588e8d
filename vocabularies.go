package skema

// Vocabulary IRIs.
const (
	Vocab201909Core       = "https://json-schema.org/draft/2019-09/vocab/core"
	Vocab201909Applicator = "https://json-schema.org/draft/2019-09/vocab/applicator"
	Vocab201909Validation = "https://json-schema.org/draft/2019-09/vocab/validation"
	Vocab201909MetaData   = "https://json-schema.org/draft/2019-09/vocab/meta-data"
	Vocab201909Format     = "https://json-schema.org/draft/2019-09/vocab/format"
	Vocab201909Content    = "https://json-schema.org/draft/2019-09/vocab/content"

	Vocab202012Core             = "https://json-schema.org/draft/2020-12/vocab/core"
	Vocab202012Applicator       = "https://json-schema.org/draft/2020-12/vocab/applicator"
	Vocab202012Unevaluated      = "https://json-schema.org/draft/2020-12/vocab/unevaluated"
	Vocab202012Validation       = "https://json-schema.org/draft/2020-12/vocab/validation"
	Vocab202012MetaData         = "https://json-schema.org/draft/2020-12/vocab/meta-data"
	Vocab202012FormatAnnotation = "https://json-schema.org/draft/2020-12/vocab/format-annotation"
	Vocab202012FormatAssertion  = "https://json-schema.org/draft/2020-12/vocab/format-assertion"
	Vocab202012Content          = "https://json-schema.org/draft/2020-12/vocab/content"

	VocabOpenAPI31 = "https://spec.openapis.org/oas/3.1/vocab/base"
	VocabOpenAPI30 = "https://spec.openapis.org/oas/3.0/vocab"
	VocabDraft     = "urn:skema:vocab:legacy-draft"
)

func kw(name string, f KeywordFactory) Keyword { return Keyword{Name: name, Factory: f} }

// noop accepts a keyword that another keyword or the compiler reads.
func noop(*KeywordContext) (Validator, error) { return nil, nil }

func vocab201909Core() *Vocabulary {
	return &Vocabulary{ID: Vocab201909Core, Keywords: []Keyword{
		kw("$schema", noop),
		kw("$id", noop),
		kw("$anchor", noop),
		kw("$recursiveAnchor", noop),
		kw("$vocabulary", noop),
		kw("$comment", noop),
		kw("$defs", noop),
		kw("definitions", noop),
		kw("$ref", newRef),
		kw("$recursiveRef", newRecursiveRef),
	}}
}

func vocab202012Core() *Vocabulary {
	return &Vocabulary{ID: Vocab202012Core, Keywords: []Keyword{
		kw("$schema", noop),
		kw("$id", noop),
		kw("$anchor", noop),
		kw("$dynamicAnchor", noop),
		kw("$vocabulary", noop),
		kw("$comment", noop),
		kw("$defs", noop),
		kw("definitions", noop),
		kw("$ref", newRef),
		kw("$dynamicRef", newDynamicRef),
	}}
}

func unevaluatedKeywords() []Keyword {
	return []Keyword{
		{Name: "unevaluatedItems", Factory: newUnevaluatedItems, Deferred: true},
		{Name: "unevaluatedProperties", Factory: newUnevaluatedProperties, Deferred: true},
	}
}

func vocab201909Applicator() *Vocabulary {
	return &Vocabulary{ID: Vocab201909Applicator, Keywords: append([]Keyword{
		kw("allOf", newAllOf),
		kw("anyOf", newAnyOf),
		kw("oneOf", newOneOf),
		kw("not", newNot),
		kw("if", newIf),
		kw("then", noop),
		kw("else", noop),
		kw("dependentSchemas", newDependentSchemas),
		kw("items", newItems),
		kw("additionalItems", newAdditionalItems),
		kw("contains", newContains),
		kw("properties", newProperties),
		kw("patternProperties", newPatternProperties),
		kw("additionalProperties", newAdditionalProperties),
		kw("propertyNames", newPropertyNames),
	}, unevaluatedKeywords()...)}
}

func vocab202012Applicator() *Vocabulary {
	return &Vocabulary{ID: Vocab202012Applicator, Keywords: []Keyword{
		kw("allOf", newAllOf),
		kw("anyOf", newAnyOf),
		kw("oneOf", newOneOf),
		kw("not", newNot),
		kw("if", newIf),
		kw("then", noop),
		kw("else", noop),
		kw("dependentSchemas", newDependentSchemas),
		kw("prefixItems", newPrefixItems),
		kw("items", newItems),
		kw("contains", newContains),
		kw("properties", newProperties),
		kw("patternProperties", newPatternProperties),
		kw("additionalProperties", newAdditionalProperties),
		kw("propertyNames", newPropertyNames),
	}}
}

func vocab202012Unevaluated() *Vocabulary {
	return &Vocabulary{ID: Vocab202012Unevaluated, Keywords: unevaluatedKeywords()}
}

func validationKeywords() []Keyword {
	return []Keyword{
		kw("type", newType),
		kw("enum", newEnum),
		kw("const", newConst),
		kw("multipleOf", newMultipleOf),
		kw("maximum", newMaximum),
		kw("exclusiveMaximum", newExclusiveMaximum),
		kw("minimum", newMinimum),
		kw("exclusiveMinimum", newExclusiveMinimum),
		kw("maxLength", newMaxLength),
		kw("minLength", newMinLength),
		kw("pattern", newPattern),
		kw("maxItems", newMaxItems),
		kw("minItems", newMinItems),
		kw("uniqueItems", newUniqueItems),
		kw("maxContains", noop),
		kw("minContains", noop),
		kw("maxProperties", newMaxProperties),
		kw("minProperties", newMinProperties),
		kw("required", newRequired),
		kw("dependentRequired", newDependentRequired),
	}
}

func metaDataKeywords() []Keyword {
	return []Keyword{
		kw("title", newAnnotation),
		kw("description", newAnnotation),
		kw("default", newAnnotation),
		kw("deprecated", newAnnotation),
		kw("readOnly", newReadOnly),
		kw("writeOnly", newWriteOnly),
		kw("examples", newAnnotation),
	}
}

func contentKeywords() []Keyword {
	return []Keyword{
		kw("contentEncoding", newContentEncoding),
		kw("contentMediaType", newContentMediaType),
		kw("contentSchema", newContentSchema),
	}
}

func vocabOpenAPI31() *Vocabulary {
	return &Vocabulary{ID: VocabOpenAPI31, Keywords: []Keyword{
		kw("discriminator", newAnnotation),
		kw("xml", newAnnotation),
		kw("externalDocs", newAnnotation),
		kw("example", newAnnotation),
	}}
}

func vocabOpenAPI30() *Vocabulary {
	return &Vocabulary{ID: VocabOpenAPI30, Keywords: []Keyword{
		kw("nullable", newNullable),
		kw("discriminator", newAnnotation),
		kw("xml", newAnnotation),
		kw("externalDocs", newAnnotation),
		kw("example", newAnnotation),
		kw("readOnly", newReadOnly),
		kw("writeOnly", newWriteOnly),
		kw("deprecated", newAnnotation),
	}}
}

// KnownVocabulary returns a vocabulary implemented by this package.
func KnownVocabulary(id string) (*Vocabulary, bool) {
	var v *Vocabulary
	switch id {
	case Vocab201909Core:
		v = vocab201909Core()
	case Vocab201909Applicator:
		v = vocab201909Applicator()
	case Vocab201909Validation:
		v = &Vocabulary{ID: id, Keywords: validationKeywords()}
	case Vocab201909MetaData, Vocab202012MetaData:
		v = &Vocabulary{ID: id, Keywords: metaDataKeywords()}
	case Vocab201909Format, Vocab202012FormatAnnotation:
		v = &Vocabulary{ID: id, Keywords: []Keyword{kw("format", newFormat)}}
	case Vocab202012FormatAssertion:
		v = &Vocabulary{ID: id, Keywords: []Keyword{kw("format", newFormat)}, FormatAssertion: true}
	case Vocab201909Content, Vocab202012Content:
		v = &Vocabulary{ID: id, Keywords: contentKeywords()}
	case Vocab202012Core:
		v = vocab202012Core()
	case Vocab202012Applicator:
		v = vocab202012Applicator()
	case Vocab202012Unevaluated:
		v = vocab202012Unevaluated()
	case Vocab202012Validation:
		v = &Vocabulary{ID: id, Keywords: validationKeywords()}
	case VocabOpenAPI31:
		v = vocabOpenAPI31()
	case VocabOpenAPI30:
		v = vocabOpenAPI30()
	}
	return v, v != nil
}

// draftKeywords returns the flat keyword table of draft 4, 6 or 7.
func draftKeywords(v Version) []Keyword {
	ks := []Keyword{
		kw("$schema", noop),
		kw("definitions", noop),
		kw("$ref", newRef),
	}
	if v == VersionDraft4 {
		ks = append(ks, kw("id", noop))
	} else {
		ks = append(ks, kw("$id", noop))
	}
	if v >= VersionDraft7 {
		ks = append(ks, kw("$comment", noop))
	}
	ks = append(ks,
		kw("allOf", newAllOf),
		kw("anyOf", newAnyOf),
		kw("oneOf", newOneOf),
		kw("not", newNot),
	)
	if v >= VersionDraft7 {
		ks = append(ks, kw("if", newIf), kw("then", noop), kw("else", noop))
	}
	ks = append(ks,
		kw("items", newItems),
		kw("additionalItems", newAdditionalItems),
		kw("properties", newProperties),
		kw("patternProperties", newPatternProperties),
		kw("additionalProperties", newAdditionalProperties),
		kw("dependencies", newDependencies),
	)
	if v >= VersionDraft6 {
		ks = append(ks, kw("contains", newContains), kw("propertyNames", newPropertyNames))
	}
	ks = append(ks,
		kw("type", newType),
		kw("enum", newEnum),
	)
	if v >= VersionDraft6 {
		ks = append(ks, kw("const", newConst))
	}
	ks = append(ks,
		kw("multipleOf", newMultipleOf),
		kw("maximum", newMaximum),
		kw("exclusiveMaximum", newExclusiveMaximum),
		kw("minimum", newMinimum),
		kw("exclusiveMinimum", newExclusiveMinimum),
		kw("maxLength", newMaxLength),
		kw("minLength", newMinLength),
		kw("pattern", newPattern),
		kw("maxItems", newMaxItems),
		kw("minItems", newMinItems),
		kw("uniqueItems", newUniqueItems),
		kw("maxProperties", newMaxProperties),
		kw("minProperties", newMinProperties),
		kw("required", newRequired),
		kw("format", newFormat),
		kw("title", newAnnotation),
		kw("description", newAnnotation),
		kw("default", newAnnotation),
	)
	if v >= VersionDraft6 {
		ks = append(ks, kw("examples", newAnnotation))
	}
	if v >= VersionDraft7 {
		ks = append(ks,
			kw("readOnly", newReadOnly),
			kw("writeOnly", newWriteOnly),
			kw("contentEncoding", newContentEncoding),
			kw("contentMediaType", newContentMediaType),
		)
	}
	return ks
}

func draftDialect(id string, v Version) *Dialect {
	b := NewDialect(id, nil).Version(v).Vocabulary(&Vocabulary{ID: VocabDraft, Keywords: draftKeywords(v)}, true)
	return withBuiltinFormats(b).FormatAssertion(true).Build()
}

func dialect201909() *Dialect {
	b := NewDialect(Draft201909, nil).Version(Version201909).
		Vocabulary(vocab201909Core(), true).
		Vocabulary(vocab201909Applicator(), true).
		Vocabulary(&Vocabulary{ID: Vocab201909Validation, Keywords: validationKeywords()}, true).
		Vocabulary(&Vocabulary{ID: Vocab201909MetaData, Keywords: metaDataKeywords()}, true).
		Vocabulary(&Vocabulary{ID: Vocab201909Format, Keywords: []Keyword{kw("format", newFormat)}}, false).
		Vocabulary(&Vocabulary{ID: Vocab201909Content, Keywords: contentKeywords()}, true)
	return withBuiltinFormats(b).Build()
}

func dialect202012(id string) *DialectBuilder {
	b := NewDialect(id, nil).Version(Version202012).
		Vocabulary(vocab202012Core(), true).
		Vocabulary(vocab202012Applicator(), true).
		Vocabulary(vocab202012Unevaluated(), true).
		Vocabulary(&Vocabulary{ID: Vocab202012Validation, Keywords: validationKeywords()}, true).
		Vocabulary(&Vocabulary{ID: Vocab202012MetaData, Keywords: metaDataKeywords()}, true).
		Vocabulary(&Vocabulary{ID: Vocab202012FormatAnnotation, Keywords: []Keyword{kw("format", newFormat)}}, true).
		Vocabulary(&Vocabulary{ID: Vocab202012Content, Keywords: contentKeywords()}, true)
	return withBuiltinFormats(b)
}

func dialectOpenAPI30() *Dialect {
	b := NewDialect(OpenAPI30, nil).Version(VersionDraft4).
		Vocabulary(&Vocabulary{ID: VocabDraft, Keywords: draftKeywords(VersionDraft4)}, true).
		Vocabulary(vocabOpenAPI30(), true).
		Without("id", "$schema", "dependencies", "patternProperties").
		IDKeyword("")
	return withBuiltinFormats(withOpenAPIFormats(b)).FormatAssertion(true).Build()
}

func dialectOpenAPI31() *Dialect {
	b := dialect202012(OpenAPI31).Vocabulary(vocabOpenAPI31(), false)
	return withOpenAPIFormats(b).Build()
}

// builtinDialect constructs a shipped dialect.
func builtinDialect(id string) (*Dialect, bool) {
	switch id {
	case normalizeDialectID(Draft4):
		return draftDialect(Draft4, VersionDraft4), true
	case normalizeDialectID(Draft6):
		return draftDialect(Draft6, VersionDraft6), true
	case normalizeDialectID(Draft7):
		return draftDialect(Draft7, VersionDraft7), true
	case Draft201909:
		return dialect201909(), true
	case Draft202012:
		return dialect202012(Draft202012).Build(), true
	case OpenAPI30:
		return dialectOpenAPI30(), true
	case OpenAPI31:
		return dialectOpenAPI31(), true
	}
	return nil, false
}

// BuiltinDialect returns a fresh copy of a shipped dialect, for use as the
// base of a custom one.
func BuiltinDialect(id string) (*Dialect, bool) {
	return builtinDialect(canonicalDialectID(id))
}

// BuiltinDialects lists the shipped dialect IRIs.
func BuiltinDialects() []string {
	return []string{Draft4, Draft6, Draft7, Draft201909, Draft202012, OpenAPI30, OpenAPI31}
}

// dialectAliases maps alternative spellings to shipped dialect IRIs.
var dialectAliases = map[string]string{
	"https://json-schema.org/draft-04/schema":        normalizeDialectID(Draft4),
	"https://json-schema.org/draft-06/schema":        normalizeDialectID(Draft6),
	"https://json-schema.org/draft-07/schema":        normalizeDialectID(Draft7),
	"http://json-schema.org/draft/2019-09/schema":    normalizeDialectID(Draft201909),
	"http://json-schema.org/draft/2020-12/schema":    normalizeDialectID(Draft202012),
	"https://spec.openapis.org/oas/3.0/schema":       normalizeDialectID(OpenAPI30),
	"https://spec.openapis.org/oas/3.1/dialect":      normalizeDialectID(OpenAPI31),
	"https://spec.openapis.org/oas/3.1/schema":       normalizeDialectID(OpenAPI31),
	"https://spec.openapis.org/oas/3.1/schema-base":  normalizeDialectID(OpenAPI31),
	"https://spec.openapis.org/oas/3.1/dialect/base/": normalizeDialectID(OpenAPI31),
}

func canonicalDialectID(id string) string {
	id = normalizeDialectID(id)
	if a, ok := dialectAliases[id]; ok {
		return a
	}
	return id
}
