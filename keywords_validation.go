package skema

import (
	"bytes"
	"context"
	"encoding/base64"
	"regexp"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/skema/internal/num"
)

type typeValidator struct {
	types    []string
	nullable bool
}

func newType(kc *KeywordContext) (Validator, error) {
	v := &typeValidator{}
	switch t := kc.Value.(type) {
	case string:
		v.types = []string{t}
	case []any:
		list, ok := stringList(t)
		if !ok {
			return nil, kc.Invalid("type must be a string or an array of strings")
		}
		v.types = list
	default:
		return nil, kc.Invalid("type must be a string or an array of strings")
	}
	for _, t := range v.types {
		switch t {
		case TypeNull, TypeBoolean, TypeObject, TypeArray, TypeNumber, TypeInteger, TypeString:
		default:
			return nil, kc.Invalid("unknown type %q", t)
		}
	}
	if kc.Dialect().HasKeyword("nullable") {
		if n, ok := kc.Sibling("nullable"); ok {
			v.nullable, _ = n.(bool)
		}
	}
	return v, nil
}

func typeMatches(want string, v any) bool {
	got := TypeOf(v)
	return got == want || (want == TypeNumber && got == TypeInteger)
}

func (v *typeValidator) Validate(e *Evaluation) {
	if e.instance == nil && v.nullable {
		return
	}
	for _, t := range v.types {
		if typeMatches(t, e.instance) {
			return
		}
	}
	want := v.types[0]
	if len(v.types) > 1 {
		want = "[" + strings.Join(v.types, ", ") + "]"
	}
	e.Fail("type", TypeOf(e.instance), want)
}

func newNullable(kc *KeywordContext) (Validator, error) {
	if _, ok := kc.Value.(bool); !ok {
		return nil, kc.Invalid("nullable must be a boolean")
	}
	return annotationValidator{value: kc.Value}, nil
}

type enumValidator struct {
	values []any
	raw    string
}

func newEnum(kc *KeywordContext) (Validator, error) {
	arr, ok := kc.Value.([]any)
	if !ok {
		return nil, kc.Invalid("enum must be an array")
	}
	return &enumValidator{values: arr, raw: compactJSON(arr)}, nil
}

func (v *enumValidator) Validate(e *Evaluation) {
	for _, x := range v.values {
		if Equal(x, e.instance) {
			return
		}
	}
	e.Fail("enum", v.raw)
}

func newConst(kc *KeywordContext) (Validator, error) {
	want, raw := kc.Value, compactJSON(kc.Value)
	return ValidatorFunc(func(e *Evaluation) {
		if !Equal(want, e.instance) {
			e.Fail("const", raw)
		}
	}), nil
}

// boundCheck compares numbers exactly. Infinite instances compare by sign
// against every finite bound.
type boundCheck struct {
	limit     num.Num
	raw       string
	upper     bool
	exclusive bool
	key       string
}

func numberKeyword(kc *KeywordContext) (num.Num, error) {
	n, ok := num.Of(kc.Value)
	if !ok {
		return num.Num{}, kc.Invalid("%s must be a number", kc.Keyword)
	}
	return n, nil
}

func newBound(kc *KeywordContext, upper bool) (Validator, error) {
	n, err := numberKeyword(kc)
	if err != nil {
		return nil, err
	}
	v := &boundCheck{limit: n, raw: n.String(), upper: upper, key: kc.Keyword}
	if kc.Dialect().Version() == VersionDraft4 {
		sib := "exclusiveMinimum"
		if upper {
			sib = "exclusiveMaximum"
		}
		if b, ok := kc.Sibling(sib); ok && b == true {
			v.exclusive = true
			v.key = sib
		}
	}
	return v, nil
}

func newMaximum(kc *KeywordContext) (Validator, error) { return newBound(kc, true) }
func newMinimum(kc *KeywordContext) (Validator, error) { return newBound(kc, false) }

func newExclusiveBound(kc *KeywordContext, upper bool) (Validator, error) {
	if _, ok := kc.Value.(bool); ok {
		if kc.Dialect().Version() == VersionDraft4 {
			return nil, nil
		}
		return nil, kc.Invalid("%s must be a number", kc.Keyword)
	}
	n, err := numberKeyword(kc)
	if err != nil {
		return nil, err
	}
	return &boundCheck{limit: n, raw: n.String(), upper: upper, exclusive: true, key: kc.Keyword}, nil
}

func newExclusiveMaximum(kc *KeywordContext) (Validator, error) { return newExclusiveBound(kc, true) }
func newExclusiveMinimum(kc *KeywordContext) (Validator, error) { return newExclusiveBound(kc, false) }

func (v *boundCheck) Validate(e *Evaluation) {
	n, ok := num.Of(e.instance)
	if !ok {
		return
	}
	c := n.Cmp(v.limit)
	if !v.upper {
		c = -c
	}
	if c > 0 || (c == 0 && v.exclusive) {
		e.Fail(v.key, v.raw)
	}
}

func newMultipleOf(kc *KeywordContext) (Validator, error) {
	d, err := numberKeyword(kc)
	if err != nil {
		return nil, err
	}
	if d.Sign() <= 0 {
		return nil, kc.Invalid("multipleOf must be greater than 0")
	}
	raw := d.String()
	return ValidatorFunc(func(e *Evaluation) {
		n, ok := num.Of(e.instance)
		if !ok {
			return
		}
		if !n.MultipleOf(d) {
			e.Fail("multipleOf", raw)
		}
	}), nil
}

func nonNegativeKeyword(kc *KeywordContext) (int, error) {
	n, ok := nonNegativeInt(kc.Value)
	if !ok {
		return 0, kc.Invalid("%s must be a non-negative integer", kc.Keyword)
	}
	return n, nil
}

func newMaxLength(kc *KeywordContext) (Validator, error) {
	n, err := nonNegativeKeyword(kc)
	if err != nil {
		return nil, err
	}
	return ValidatorFunc(func(e *Evaluation) {
		if s, ok := e.instance.(string); ok && stringLength(s) > n {
			e.Fail("maxLength", n)
		}
	}), nil
}

func newMinLength(kc *KeywordContext) (Validator, error) {
	n, err := nonNegativeKeyword(kc)
	if err != nil {
		return nil, err
	}
	return ValidatorFunc(func(e *Evaluation) {
		if s, ok := e.instance.(string); ok && stringLength(s) < n {
			e.Fail("minLength", n)
		}
	}), nil
}

func newPattern(kc *KeywordContext) (Validator, error) {
	p, ok := kc.Value.(string)
	if !ok {
		return nil, kc.Invalid("pattern must be a string")
	}
	re, err := compilePattern(kc, p)
	if err != nil {
		return nil, err
	}
	return patternValidator{re: re, raw: p}, nil
}

type patternValidator struct {
	re  *regexp.Regexp
	raw string
}

func (v patternValidator) Validate(e *Evaluation) {
	if s, ok := e.instance.(string); ok && !v.re.MatchString(s) {
		e.Fail("pattern", v.raw)
	}
}

func newMaxItems(kc *KeywordContext) (Validator, error) {
	n, err := nonNegativeKeyword(kc)
	if err != nil {
		return nil, err
	}
	return ValidatorFunc(func(e *Evaluation) {
		if a, ok := e.instance.([]any); ok && len(a) > n {
			e.Fail("maxItems", n, len(a))
		}
	}), nil
}

func newMinItems(kc *KeywordContext) (Validator, error) {
	n, err := nonNegativeKeyword(kc)
	if err != nil {
		return nil, err
	}
	return ValidatorFunc(func(e *Evaluation) {
		if a, ok := e.instance.([]any); ok && len(a) < n {
			e.Fail("minItems", n, len(a))
		}
	}), nil
}

func newUniqueItems(kc *KeywordContext) (Validator, error) {
	b, ok := kc.Value.(bool)
	if !ok {
		return nil, kc.Invalid("uniqueItems must be a boolean")
	}
	if !b {
		return nil, nil
	}
	return ValidatorFunc(func(e *Evaluation) {
		a, ok := e.instance.([]any)
		if !ok {
			return
		}
		for i := 1; i < len(a); i++ {
			for j := 0; j < i; j++ {
				if Equal(a[i], a[j]) {
					e.Fail("uniqueItems", j, i)
					return
				}
			}
		}
	}), nil
}

func newMaxProperties(kc *KeywordContext) (Validator, error) {
	n, err := nonNegativeKeyword(kc)
	if err != nil {
		return nil, err
	}
	return ValidatorFunc(func(e *Evaluation) {
		if m, ok := e.instance.(map[string]any); ok && len(m) > n {
			e.Fail("maxProperties", n)
		}
	}), nil
}

func newMinProperties(kc *KeywordContext) (Validator, error) {
	n, err := nonNegativeKeyword(kc)
	if err != nil {
		return nil, err
	}
	return ValidatorFunc(func(e *Evaluation) {
		if m, ok := e.instance.(map[string]any); ok && len(m) < n {
			e.Fail("minProperties", n)
		}
	}), nil
}

// requiredValidator skips properties whose declared schema is readOnly
// (when validating for writing) or writeOnly (when validating for reading).
type requiredValidator struct {
	names      []string
	readOnly   map[string]bool
	writeOnly  map[string]bool
	// referenced holds property schemas whose access mode sits behind $ref.
	referenced map[string]*Schema
}

func newRequired(kc *KeywordContext) (Validator, error) {
	names, ok := stringList(kc.Value)
	if !ok {
		return nil, kc.Invalid("required must be an array of strings")
	}
	v := &requiredValidator{names: names, readOnly: map[string]bool{}, writeOnly: map[string]bool{}}
	if p, ok := kc.Sibling("properties"); ok {
		props, _ := p.(map[string]any)
		for _, n := range names {
			ps, _ := props[n].(map[string]any)
			if b, _ := ps["readOnly"].(bool); b {
				v.readOnly[n] = true
			}
			if b, _ := ps["writeOnly"].(bool); b {
				v.writeOnly[n] = true
			}
			if _, ok := ps["$ref"]; ok && !v.readOnly[n] && !v.writeOnly[n] {
				sub, err := kc.Schema.child(kc.ctx, "properties", n)
				if err != nil {
					return nil, err
				}
				if v.referenced == nil {
					v.referenced = map[string]*Schema{}
				}
				v.referenced[n] = sub
			}
		}
	}
	return v, nil
}

func (v *requiredValidator) Validate(e *Evaluation) {
	obj, ok := e.instance.(map[string]any)
	if !ok {
		return
	}
	cfg := e.ec.cfg
	for _, n := range v.names {
		if _, ok := obj[n]; ok {
			continue
		}
		ro, wo := v.readOnly[n], v.writeOnly[n]
		if s := v.referenced[n]; s != nil && (cfg.ReadOnly || cfg.WriteOnly) {
			ro, wo = accessMode(e.ec.ctx, s)
		}
		if (cfg.WriteOnly && ro) || (cfg.ReadOnly && wo) {
			continue
		}
		e.FailProperty(n, "required", quote(n))
	}
}

// accessMode reads readOnly and writeOnly of s, following $ref until one
// of them is set.
func accessMode(ctx context.Context, s *Schema) (readOnly, writeOnly bool) {
	seen := map[*Schema]bool{}
	for s != nil && !seen[s] {
		seen[s] = true
		m, ok := s.value.(map[string]any)
		if !ok {
			return false, false
		}
		readOnly, _ = m["readOnly"].(bool)
		writeOnly, _ = m["writeOnly"].(bool)
		if readOnly || writeOnly {
			return readOnly, writeOnly
		}
		vs, err := s.build(ctx)
		if err != nil {
			return false, false
		}
		var next *Schema
		for _, b := range vs {
			if r, ok := b.v.(*refValidator); ok {
				if next, err = r.resolve(ctx); err != nil {
					return false, false
				}
			}
		}
		s = next
	}
	return false, false
}

type dependentRequiredValidator struct {
	names []string
	deps  map[string][]string
}

func newDependentRequired(kc *KeywordContext) (Validator, error) {
	m, ok := kc.Value.(map[string]any)
	if !ok {
		return nil, kc.Invalid("dependentRequired must be an object")
	}
	v := &dependentRequiredValidator{names: sortedKeys(m), deps: map[string][]string{}}
	for _, n := range v.names {
		list, ok := stringList(m[n])
		if !ok {
			return nil, kc.Invalid("dependentRequired values must be arrays of strings")
		}
		v.deps[n] = list
	}
	return v, nil
}

func (v *dependentRequiredValidator) Validate(e *Evaluation) {
	obj, ok := e.instance.(map[string]any)
	if !ok {
		return
	}
	for _, n := range v.names {
		if _, ok := obj[n]; !ok {
			continue
		}
		for _, dep := range v.deps[n] {
			if _, ok := obj[dep]; !ok {
				e.FailProperty(dep, "dependentRequired", quote(dep), quote(n))
			}
		}
	}
}

type formatValidator struct {
	name   string
	format Format
}

func newFormat(kc *KeywordContext) (Validator, error) {
	name, ok := kc.Value.(string)
	if !ok {
		return nil, kc.Invalid("format must be a string")
	}
	f, _ := kc.Dialect().Format(name)
	return &formatValidator{name: name, format: f}, nil
}

func (v *formatValidator) Validate(e *Evaluation) {
	if e.collecting() {
		e.Annotate(v.name)
	}
	if !e.ec.cfg.FormatAssertions.Bool(e.schema.sc.dialect.FormatAssertion()) {
		return
	}
	if v.format == nil {
		if e.schema.reg.cfg.StrictFormats {
			e.Fail("format.unknown", quote(v.name))
		}
		return
	}
	if !v.format.Matches(e.ec, e.instance) {
		e.Fail("format", quote(v.name))
	}
}

func newContentEncoding(kc *KeywordContext) (Validator, error) {
	enc, ok := kc.Value.(string)
	if !ok {
		return nil, kc.Invalid("contentEncoding must be a string")
	}
	return ValidatorFunc(func(e *Evaluation) {
		if e.collecting() {
			e.Annotate(enc)
		}
		s, ok := e.instance.(string)
		if !ok || !e.ec.cfg.ContentAssertions || !strings.EqualFold(enc, "base64") {
			return
		}
		if _, err := base64.StdEncoding.DecodeString(s); err != nil {
			e.Fail("contentEncoding", quote(enc))
		}
	}), nil
}

func newContentMediaType(kc *KeywordContext) (Validator, error) {
	mt, ok := kc.Value.(string)
	if !ok {
		return nil, kc.Invalid("contentMediaType must be a string")
	}
	enc, _ := kc.Sibling("contentEncoding")
	encoding, _ := enc.(string)
	return ValidatorFunc(func(e *Evaluation) {
		if e.collecting() {
			e.Annotate(mt)
		}
		s, ok := e.instance.(string)
		if !ok || !e.ec.cfg.ContentAssertions || !strings.HasSuffix(strings.ToLower(mt), "json") {
			return
		}
		data := []byte(s)
		if strings.EqualFold(encoding, "base64") {
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return
			}
			data = b
		}
		if !gojson.Valid(bytes.TrimSpace(data)) {
			e.Fail("contentMediaType", quote(mt))
		}
	}), nil
}

// contentSchemaValidator annotates contentSchema and, with content
// assertions on, applies it to the decoded JSON content of a string.
type contentSchemaValidator struct {
	s         *Schema
	raw       any
	mediaType string
	encoding  string
}

func newContentSchema(kc *KeywordContext) (Validator, error) {
	s, err := kc.Sub()
	if err != nil {
		return nil, err
	}
	v := &contentSchemaValidator{s: s, raw: kc.Value}
	if mt, ok := kc.Sibling("contentMediaType"); ok {
		v.mediaType, _ = mt.(string)
	}
	if enc, ok := kc.Sibling("contentEncoding"); ok {
		v.encoding, _ = enc.(string)
	}
	return v, nil
}

func (v *contentSchemaValidator) subschemas(context.Context) ([]*Schema, error) {
	return []*Schema{v.s}, nil
}

func (v *contentSchemaValidator) Validate(e *Evaluation) {
	if e.collecting() {
		e.Annotate(v.raw)
	}
	str, ok := e.instance.(string)
	if !ok || !e.ec.cfg.ContentAssertions || !strings.HasSuffix(strings.ToLower(v.mediaType), "json") {
		return
	}
	data := []byte(str)
	if strings.EqualFold(v.encoding, "base64") {
		b, err := base64.StdEncoding.DecodeString(str)
		if err != nil {
			return
		}
		data = b
	}
	doc, err := DecodeJSON(data)
	if err != nil {
		return
	}
	e.descend(v.s, descent{instance: doc, detached: true})
}
