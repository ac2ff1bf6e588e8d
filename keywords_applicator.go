package skema

import (
	"context"
	"regexp"
	"strings"
)

// schemaSet holds compiled subschemas for InitializeValidators.
type schemaSet []*Schema

func (s schemaSet) subschemas(context.Context) ([]*Schema, error) { return s, nil }

func schemaArray(kc *KeywordContext) (schemaSet, error) {
	arr, ok := kc.Value.([]any)
	if !ok || len(arr) == 0 {
		return nil, kc.Invalid("%s must be a non-empty array of schemas", kc.Keyword)
	}
	out := make(schemaSet, len(arr))
	for i := range arr {
		s, err := kc.Sub(i)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func schemaMap(kc *KeywordContext) ([]string, map[string]*Schema, error) {
	m, ok := kc.Value.(map[string]any)
	if !ok {
		return nil, nil, kc.Invalid("%s must be an object", kc.Keyword)
	}
	names := sortedKeys(m)
	subs := make(map[string]*Schema, len(m))
	for _, name := range names {
		s, err := kc.Sub(name)
		if err != nil {
			return nil, nil, err
		}
		subs[name] = s
	}
	return names, subs, nil
}

func mapSubschemas(subs map[string]*Schema) schemaSet {
	out := make(schemaSet, 0, len(subs))
	for _, s := range subs {
		out = append(out, s)
	}
	return out
}

type allOfValidator struct{ schemaSet }

func newAllOf(kc *KeywordContext) (Validator, error) {
	subs, err := schemaArray(kc)
	if err != nil {
		return nil, err
	}
	return allOfValidator{subs}, nil
}

func (v allOfValidator) Validate(e *Evaluation) {
	for i, s := range v.schemaSet {
		if e.ec.stopped() {
			return
		}
		e.Apply(s, i)
	}
}

// anyOfValidator also implements oneOf; the two differ only in how many
// successful branches are allowed.
type anyOfValidator struct {
	schemaSet
	one  bool
	disc *discriminator
	raw  []any
}

func newAnyOf(kc *KeywordContext) (Validator, error) { return newCombinator(kc, false) }

func newOneOf(kc *KeywordContext) (Validator, error) { return newCombinator(kc, true) }

func newCombinator(kc *KeywordContext, one bool) (Validator, error) {
	subs, err := schemaArray(kc)
	if err != nil {
		return nil, err
	}
	v := &anyOfValidator{schemaSet: subs, one: one, raw: kc.Value.([]any)}
	if discriminatorEnabled(kc.Schema) {
		if d, ok := kc.Sibling("discriminator"); ok {
			if v.disc, err = parseDiscriminator(d); err != nil {
				return nil, &InvalidSchemaError{Location: kc.Schema.loc.Append("discriminator"), Reason: err.Error()}
			}
		}
	}
	return v, nil
}

func (v *anyOfValidator) Validate(e *Evaluation) {
	cands, ok := v.candidates(e)
	if !ok {
		return
	}
	var (
		branches []*Evaluation
		valid    []int
	)
	for _, i := range cands {
		if e.ec.stopped() {
			return
		}
		c := e.descend(v.schemaSet[i], descent{evalTokens: []any{i}, speculative: true})
		branches = append(branches, c)
		if c.valid {
			valid = append(valid, i)
			if e.exhaustive() {
				continue
			}
			if !v.one || len(valid) > 1 {
				break
			}
		}
	}
	if !v.one {
		if len(valid) > 0 {
			for _, c := range branches {
				if !c.valid {
					c.discard()
				}
			}
		}
		return
	}
	switch {
	case len(valid) == 1:
		for _, c := range branches {
			if !c.valid {
				c.discard()
			}
		}
	case len(valid) == 0:
		e.Fail("oneOf", 0)
	default:
		for _, c := range branches {
			c.discard()
		}
		e.Fail("oneOf.indexes", len(valid), joinInts(valid))
	}
}

// candidates narrows the branches with a discriminator. ok is false when
// the discriminator itself failed.
func (v *anyOfValidator) candidates(e *Evaluation) ([]int, bool) {
	all := make([]int, len(v.schemaSet))
	for i := range all {
		all[i] = i
	}
	d := v.disc
	if d == nil {
		d = inheritedDiscriminator(e)
	}
	if d == nil {
		return all, true
	}
	obj, isObj := e.instance.(map[string]any)
	if !isObj {
		return all, true
	}
	val, ok := obj[d.property].(string)
	if !ok {
		e.FailAs("discriminator", "discriminator.missing", quote(d.property))
		return nil, false
	}
	var out []int
	for i, s := range v.schemaSet {
		if d.matches(e.schema, s, val) {
			out = append(out, i)
		}
	}
	if len(out) == 0 {
		e.FailAs("discriminator", "discriminator.unknown", quote(val))
		return nil, false
	}
	return out, true
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = toString(x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type notValidator struct {
	s   *Schema
	raw any
}

func newNot(kc *KeywordContext) (Validator, error) {
	s, err := kc.Sub()
	if err != nil {
		return nil, err
	}
	return &notValidator{s: s, raw: kc.Value}, nil
}

func (v *notValidator) subschemas(context.Context) ([]*Schema, error) { return []*Schema{v.s}, nil }

func (v *notValidator) Validate(e *Evaluation) {
	c := e.descend(v.s, descent{speculative: true})
	c.discard()
	if c.valid {
		e.Fail("not", compactJSON(v.raw))
	}
}

type ifValidator struct {
	cond, then, els *Schema
}

func newIf(kc *KeywordContext) (Validator, error) {
	v := &ifValidator{}
	var err error
	if v.cond, err = kc.Sub(); err != nil {
		return nil, err
	}
	if _, ok := kc.Sibling("then"); ok {
		if v.then, err = kc.Schema.child(kc.ctx, "then"); err != nil {
			return nil, err
		}
	}
	if _, ok := kc.Sibling("else"); ok {
		if v.els, err = kc.Schema.child(kc.ctx, "else"); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (v *ifValidator) subschemas(context.Context) ([]*Schema, error) {
	out := []*Schema{v.cond}
	for _, s := range []*Schema{v.then, v.els} {
		if s != nil {
			out = append(out, s)
		}
	}
	return out, nil
}

func (v *ifValidator) Validate(e *Evaluation) {
	c := e.descend(v.cond, descent{silenced: true})
	if c.valid {
		if v.then != nil {
			e.descend(v.then, descent{keyword: "then"})
		}
		return
	}
	c.discard()
	if v.els != nil {
		e.descend(v.els, descent{keyword: "else"})
	}
}

type dependentSchemasValidator struct {
	names []string
	subs  map[string]*Schema
}

func newDependentSchemas(kc *KeywordContext) (Validator, error) {
	names, subs, err := schemaMap(kc)
	if err != nil {
		return nil, err
	}
	return &dependentSchemasValidator{names: names, subs: subs}, nil
}

func (v *dependentSchemasValidator) subschemas(context.Context) ([]*Schema, error) {
	return mapSubschemas(v.subs), nil
}

func (v *dependentSchemasValidator) Validate(e *Evaluation) {
	obj, ok := e.instance.(map[string]any)
	if !ok {
		return
	}
	for _, name := range v.names {
		if _, present := obj[name]; present {
			e.Apply(v.subs[name], name)
		}
	}
}

// dependenciesValidator is the draft 4-7 keyword combining property and
// schema dependencies.
type dependenciesValidator struct {
	names    []string
	required map[string][]string
	subs     map[string]*Schema
}

func newDependencies(kc *KeywordContext) (Validator, error) {
	m, ok := kc.Value.(map[string]any)
	if !ok {
		return nil, kc.Invalid("dependencies must be an object")
	}
	v := &dependenciesValidator{names: sortedKeys(m), required: map[string][]string{}, subs: map[string]*Schema{}}
	for _, name := range v.names {
		if list, ok := stringList(m[name]); ok {
			v.required[name] = list
			continue
		}
		s, err := kc.Sub(name)
		if err != nil {
			return nil, err
		}
		v.subs[name] = s
	}
	return v, nil
}

func (v *dependenciesValidator) subschemas(context.Context) ([]*Schema, error) {
	return mapSubschemas(v.subs), nil
}

func (v *dependenciesValidator) Validate(e *Evaluation) {
	obj, ok := e.instance.(map[string]any)
	if !ok {
		return
	}
	for _, name := range v.names {
		if _, present := obj[name]; !present {
			continue
		}
		if s, ok := v.subs[name]; ok {
			e.Apply(s, name)
			continue
		}
		for _, dep := range v.required[name] {
			if _, ok := obj[dep]; !ok {
				e.FailProperty(dep, "dependencies", quote(dep), quote(name))
			}
		}
	}
}

type prefixItemsValidator struct{ schemaSet }

func newPrefixItems(kc *KeywordContext) (Validator, error) {
	subs, err := schemaArray(kc)
	if err != nil {
		return nil, err
	}
	return prefixItemsValidator{subs}, nil
}

func (v prefixItemsValidator) Validate(e *Evaluation) {
	arr, ok := e.instance.([]any)
	if !ok {
		return
	}
	applyTuple(e, v.schemaSet, arr)
}

// applyTuple applies schemas positionally and annotates the largest index
// applied, or true when every element was covered.
func applyTuple(e *Evaluation, subs []*Schema, arr []any) {
	n := len(subs)
	if len(arr) < n {
		n = len(arr)
	}
	for i := 0; i < n; i++ {
		if e.ec.stopped() {
			return
		}
		e.visitChild(i, arr[i], func() { e.ApplyAt(subs[i], i, arr[i], i) })
	}
	if n == 0 {
		return
	}
	if n == len(arr) {
		e.Annotate(true)
	} else {
		e.Annotate(n - 1)
	}
}

// itemsValidator covers the schema form of items everywhere, the array form
// up to 2019-09, and items after prefixItems in 2020-12.
type itemsValidator struct {
	all   *Schema
	tuple schemaSet
	start int
}

func newItems(kc *KeywordContext) (Validator, error) {
	v := &itemsValidator{}
	if _, isArr := kc.Value.([]any); isArr {
		if kc.Dialect().Version() >= Version202012 {
			return nil, kc.Invalid("items must be a schema; use prefixItems for tuples")
		}
		subs, err := schemaArray(kc)
		if err != nil {
			return nil, err
		}
		v.tuple = subs
		return v, nil
	}
	s, err := kc.Sub()
	if err != nil {
		return nil, err
	}
	v.all = s
	if kc.Dialect().Version() >= Version202012 {
		if p, ok := kc.Sibling("prefixItems"); ok {
			if arr, ok := p.([]any); ok {
				v.start = len(arr)
			}
		}
	}
	return v, nil
}

func (v *itemsValidator) subschemas(context.Context) ([]*Schema, error) {
	if v.all != nil {
		return []*Schema{v.all}, nil
	}
	return v.tuple, nil
}

func (v *itemsValidator) Validate(e *Evaluation) {
	arr, ok := e.instance.([]any)
	if !ok {
		return
	}
	if v.tuple != nil {
		applyTuple(e, v.tuple, arr)
		return
	}
	if w := e.ec.walk; w != nil {
		w.itemDefaults(e, v.all, v.start)
		arr, _ = e.instance.([]any)
	}
	applied := false
	for i := v.start; i < len(arr); i++ {
		if e.ec.stopped() {
			return
		}
		e.visitChild(i, arr[i], func() { e.ApplyAt(v.all, i, arr[i]) })
		applied = true
	}
	if applied {
		e.Annotate(true)
	}
}

type additionalItemsValidator struct {
	s     *Schema
	start int
}

func newAdditionalItems(kc *KeywordContext) (Validator, error) {
	items, ok := kc.Sibling("items")
	arr, isArr := items.([]any)
	if !ok || !isArr {
		return nil, nil
	}
	s, err := kc.Sub()
	if err != nil {
		return nil, err
	}
	return &additionalItemsValidator{s: s, start: len(arr)}, nil
}

func (v *additionalItemsValidator) subschemas(context.Context) ([]*Schema, error) {
	return []*Schema{v.s}, nil
}

func (v *additionalItemsValidator) Validate(e *Evaluation) {
	arr, ok := e.instance.([]any)
	if !ok || len(arr) <= v.start {
		return
	}
	if b, ok := v.s.value.(bool); ok && !b {
		for i := v.start; i < len(arr); i++ {
			e.FailAt(i, arr[i], "additionalItems", i)
		}
		return
	}
	for i := v.start; i < len(arr); i++ {
		e.ApplyAt(v.s, i, arr[i])
	}
	e.Annotate(true)
}

type containsValidator struct {
	s        *Schema
	raw      any
	min, max int
	hasMin   bool
	hasMax   bool
	indices  bool
}

func newContains(kc *KeywordContext) (Validator, error) {
	s, err := kc.Sub()
	if err != nil {
		return nil, err
	}
	v := &containsValidator{s: s, raw: kc.Value, min: 1, max: -1}
	d := kc.Dialect()
	if d.Version() >= Version201909 {
		if m, ok := kc.Sibling("minContains"); ok && d.HasKeyword("minContains") {
			n, ok := nonNegativeInt(m)
			if !ok {
				return nil, &InvalidSchemaError{Location: kc.Schema.loc.Append("minContains"), Reason: "minContains must be a non-negative integer"}
			}
			v.min, v.hasMin = n, true
		}
		if m, ok := kc.Sibling("maxContains"); ok && d.HasKeyword("maxContains") {
			n, ok := nonNegativeInt(m)
			if !ok {
				return nil, &InvalidSchemaError{Location: kc.Schema.loc.Append("maxContains"), Reason: "maxContains must be a non-negative integer"}
			}
			v.max, v.hasMax = n, true
		}
	}
	v.indices = d.Version() >= Version202012
	return v, nil
}

func (v *containsValidator) subschemas(context.Context) ([]*Schema, error) {
	return []*Schema{v.s}, nil
}

func (v *containsValidator) Validate(e *Evaluation) {
	arr, ok := e.instance.([]any)
	if !ok {
		return
	}
	var matched []int
	for i, item := range arr {
		if e.ec.stopped() {
			return
		}
		c := e.descend(v.s, descent{instToken: i, instance: item, silenced: true})
		if c.valid {
			matched = append(matched, i)
			if v.max < 0 && !e.exhaustive() && !e.collecting() && len(matched) >= v.min {
				break
			}
		} else {
			c.discard()
		}
	}
	raw := compactJSON(v.raw)
	switch {
	case len(matched) < v.min && v.hasMin:
		e.FailAs("minContains", "minContains", v.min, raw)
	case len(matched) < v.min:
		e.Fail("contains", raw)
	case v.hasMax && len(matched) > v.max:
		e.FailAs("maxContains", "maxContains", v.max, raw)
	}
	if v.indices || e.collecting() {
		e.Annotate(matched)
	}
}

type propertiesValidator struct {
	names []string
	subs  map[string]*Schema
}

func newProperties(kc *KeywordContext) (Validator, error) {
	names, subs, err := schemaMap(kc)
	if err != nil {
		return nil, err
	}
	return &propertiesValidator{names: names, subs: subs}, nil
}

func (v *propertiesValidator) subschemas(context.Context) ([]*Schema, error) {
	return mapSubschemas(v.subs), nil
}

func (v *propertiesValidator) Validate(e *Evaluation) {
	obj, ok := e.instance.(map[string]any)
	if !ok {
		return
	}
	if w := e.ec.walk; w != nil {
		w.propertyDefaults(e, obj, v.names, v.subs)
	}
	evaluated := []string{}
	for _, name := range v.names {
		val, present := obj[name]
		if !present {
			continue
		}
		if e.ec.stopped() {
			return
		}
		evaluated = append(evaluated, name)
		e.visitChild(name, val, func() { e.ApplyAt(v.subs[name], name, val, name) })
	}
	e.Annotate(evaluated)
}

type patternSchema struct {
	pattern string
	re      *regexp.Regexp
	s       *Schema
}

type patternPropertiesValidator struct {
	patterns []patternSchema
}

func compilePattern(kc *KeywordContext, p string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(p)
	if err != nil {
		return nil, &InvalidSchemaError{Location: kc.Location(), Reason: "invalid regular expression " + quote(p), Err: err}
	}
	return re, nil
}

func newPatternProperties(kc *KeywordContext) (Validator, error) {
	names, subs, err := schemaMap(kc)
	if err != nil {
		return nil, err
	}
	v := &patternPropertiesValidator{}
	for _, p := range names {
		re, err := compilePattern(kc, p)
		if err != nil {
			return nil, err
		}
		v.patterns = append(v.patterns, patternSchema{pattern: p, re: re, s: subs[p]})
	}
	return v, nil
}

func (v *patternPropertiesValidator) subschemas(context.Context) ([]*Schema, error) {
	out := make([]*Schema, len(v.patterns))
	for i, p := range v.patterns {
		out[i] = p.s
	}
	return out, nil
}

func (v *patternPropertiesValidator) Validate(e *Evaluation) {
	obj, ok := e.instance.(map[string]any)
	if !ok {
		return
	}
	evaluated := []string{}
	for _, name := range sortedKeys(obj) {
		hit := false
		for _, p := range v.patterns {
			if !p.re.MatchString(name) {
				continue
			}
			if e.ec.stopped() {
				return
			}
			hit = true
			e.ApplyAt(p.s, name, obj[name], p.pattern)
		}
		if hit {
			evaluated = append(evaluated, name)
		}
	}
	e.Annotate(evaluated)
}

// additionalPropertiesValidator applies to members matched by neither
// properties nor patternProperties of the same schema object.
type additionalPropertiesValidator struct {
	s        *Schema
	declared map[string]bool
	patterns []*regexp.Regexp
}

func newAdditionalProperties(kc *KeywordContext) (Validator, error) {
	s, err := kc.Sub()
	if err != nil {
		return nil, err
	}
	v := &additionalPropertiesValidator{s: s, declared: map[string]bool{}}
	if p, ok := kc.Sibling("properties"); ok {
		if m, ok := p.(map[string]any); ok {
			for name := range m {
				v.declared[name] = true
			}
		}
	}
	if p, ok := kc.Sibling("patternProperties"); ok && kc.Dialect().HasKeyword("patternProperties") {
		if m, ok := p.(map[string]any); ok {
			for _, pat := range sortedKeys(m) {
				re, err := compilePattern(kc, pat)
				if err != nil {
					return nil, err
				}
				v.patterns = append(v.patterns, re)
			}
		}
	}
	return v, nil
}

func (v *additionalPropertiesValidator) subschemas(context.Context) ([]*Schema, error) {
	return []*Schema{v.s}, nil
}

func (v *additionalPropertiesValidator) additional(name string) bool {
	if v.declared[name] {
		return false
	}
	for _, re := range v.patterns {
		if re.MatchString(name) {
			return false
		}
	}
	return true
}

func (v *additionalPropertiesValidator) Validate(e *Evaluation) {
	obj, ok := e.instance.(map[string]any)
	if !ok {
		return
	}
	evaluated := []string{}
	b, isBool := v.s.value.(bool)
	for _, name := range sortedKeys(obj) {
		if !v.additional(name) {
			continue
		}
		if e.ec.stopped() {
			return
		}
		evaluated = append(evaluated, name)
		switch {
		case isBool && !b:
			e.FailProperty(name, "additionalProperties", quote(name))
		case isBool:
		default:
			e.ApplyAt(v.s, name, obj[name])
		}
	}
	e.Annotate(evaluated)
}

type propertyNamesValidator struct {
	s *Schema
}

func newPropertyNames(kc *KeywordContext) (Validator, error) {
	s, err := kc.Sub()
	if err != nil {
		return nil, err
	}
	return &propertyNamesValidator{s: s}, nil
}

func (v *propertyNamesValidator) subschemas(context.Context) ([]*Schema, error) {
	return []*Schema{v.s}, nil
}

func (v *propertyNamesValidator) Validate(e *Evaluation) {
	obj, ok := e.instance.(map[string]any)
	if !ok {
		return
	}
	for _, name := range sortedKeys(obj) {
		if e.ec.stopped() {
			return
		}
		c := e.descend(v.s, descent{instance: name, detached: true, speculative: true})
		if c.valid {
			continue
		}
		c.discard()
		reason := ""
		if first := c.firstCounted(); first != nil {
			reason = first.Message
		}
		e.FailProperty(name, "propertyNames", quote(name), reason)
	}
}

// unevaluatedPropertiesValidator applies to members no sibling or
// successful in-place subschema evaluated.
type unevaluatedPropertiesValidator struct {
	s *Schema
}

var propertyAnnotations = map[string]bool{
	"properties":            true,
	"patternProperties":     true,
	"additionalProperties":  true,
	"unevaluatedProperties": true,
}

func newUnevaluatedProperties(kc *KeywordContext) (Validator, error) {
	s, err := kc.Sub()
	if err != nil {
		return nil, err
	}
	return &unevaluatedPropertiesValidator{s: s}, nil
}

func (v *unevaluatedPropertiesValidator) subschemas(context.Context) ([]*Schema, error) {
	return []*Schema{v.s}, nil
}

func (v *unevaluatedPropertiesValidator) Validate(e *Evaluation) {
	obj, ok := e.instance.(map[string]any)
	if !ok {
		return
	}
	seen := map[string]bool{}
	e.gather(propertyAnnotations, func(a *Annotation) {
		if names, ok := a.Value.([]string); ok {
			for _, n := range names {
				seen[n] = true
			}
		}
	})
	evaluated := []string{}
	b, isBool := v.s.value.(bool)
	for _, name := range sortedKeys(obj) {
		if seen[name] {
			continue
		}
		if e.ec.stopped() {
			return
		}
		evaluated = append(evaluated, name)
		switch {
		case isBool && !b:
			e.FailProperty(name, "unevaluatedProperties", quote(name))
		case isBool:
		default:
			e.ApplyAt(v.s, name, obj[name])
		}
	}
	e.Annotate(evaluated)
}

type unevaluatedItemsValidator struct {
	s *Schema
}

func newUnevaluatedItems(kc *KeywordContext) (Validator, error) {
	s, err := kc.Sub()
	if err != nil {
		return nil, err
	}
	return &unevaluatedItemsValidator{s: s}, nil
}

func (v *unevaluatedItemsValidator) subschemas(context.Context) ([]*Schema, error) {
	return []*Schema{v.s}, nil
}

func (v *unevaluatedItemsValidator) Validate(e *Evaluation) {
	arr, ok := e.instance.([]any)
	if !ok {
		return
	}
	keys := map[string]bool{"prefixItems": true, "items": true, "additionalItems": true, "unevaluatedItems": true}
	if e.schema.sc.dialect.Version() >= Version202012 {
		keys["contains"] = true
	}
	upTo, all := -1, false
	contained := map[int]bool{}
	e.gather(keys, func(a *Annotation) {
		switch x := a.Value.(type) {
		case bool:
			all = all || x
		case int:
			if x > upTo {
				upTo = x
			}
		case []int:
			for _, i := range x {
				contained[i] = true
			}
		}
	})
	if all {
		return
	}
	b, isBool := v.s.value.(bool)
	applied := false
	for i, item := range arr {
		if i <= upTo || contained[i] {
			continue
		}
		if e.ec.stopped() {
			return
		}
		applied = true
		switch {
		case isBool && !b:
			e.FailAt(i, item, "unevaluatedItems", i)
		case isBool:
		default:
			e.ApplyAt(v.s, i, item)
		}
	}
	if applied {
		e.Annotate(true)
	}
}

// discriminator is the OpenAPI discriminator object.
type discriminator struct {
	property string
	mapping  map[string]string
}

func discriminatorEnabled(s *Schema) bool {
	return s.sc.dialect.discriminator || s.reg.cfg.Discriminator
}

func parseDiscriminator(v any) (*discriminator, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errString("discriminator must be an object")
	}
	p, ok := m["propertyName"].(string)
	if !ok {
		return nil, errString("discriminator.propertyName must be a string")
	}
	d := &discriminator{property: p, mapping: map[string]string{}}
	if mm, ok := m["mapping"].(map[string]any); ok {
		for k, t := range mm {
			s, ok := t.(string)
			if !ok {
				return nil, errString("discriminator.mapping values must be strings")
			}
			d.mapping[k] = s
		}
	}
	return d, nil
}

// inheritedDiscriminator returns the discriminator of the closest ancestor
// that reached e through reference hops only, so that a oneOf behind a $ref
// from the schema declaring the discriminator still narrows. Any other
// applicator on the way ends the search.
func inheritedDiscriminator(e *Evaluation) *discriminator {
	for n := e; n.inPlace && n.parent != nil; n = n.parent {
		p := n.parent
		if !isRefKeyword(p.Keyword()) {
			return nil
		}
		if !discriminatorEnabled(p.schema) {
			continue
		}
		m, ok := p.schema.value.(map[string]any)
		if !ok {
			continue
		}
		if raw, ok := m["discriminator"]; ok {
			if d, err := parseDiscriminator(raw); err == nil {
				return d
			}
		}
	}
	return nil
}

func isRefKeyword(kw string) bool {
	switch kw {
	case "$ref", "$dynamicRef", "$recursiveRef":
		return true
	}
	return false
}

// matches reports whether branch is selected by value. A mapping entry is
// compared with the branch's $ref by resolved location or by schema name;
// without a mapping the value must equal the last segment of the $ref.
func (d *discriminator) matches(owner, branch *Schema, value string) bool {
	m, ok := branch.value.(map[string]any)
	if !ok {
		return false
	}
	ref, _ := m["$ref"].(string)
	if ref == "" {
		return false
	}
	if target, ok := d.mapping[value]; ok {
		if ResolveLocation(owner.loc, target).Equal(ResolveLocation(branch.loc, ref)) {
			return true
		}
		return lastSegment(ref) == lastSegment(target)
	}
	return lastSegment(ref) == value
}

func lastSegment(ref string) string {
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		return ref[i+1:]
	}
	return strings.TrimPrefix(ref, "#")
}

type errString string

func (e errString) Error() string { return string(e) }

func quote(s string) string { return "'" + s + "'" }
