package skema

import (
	"context"
	"sync/atomic"

	"github.com/reoring/skema/iri"
)

// refValidator applies the target of $ref. The target resolves on first
// use and is then cached; failures are not cached so that documents added
// later are found.
type refValidator struct {
	keyword string
	raw     string
	from    *Schema
	loc     SchemaLocation
	target  atomic.Pointer[Schema]
}

func newReference(kc *KeywordContext) (*refValidator, error) {
	s, ok := kc.Value.(string)
	if !ok {
		return nil, kc.Invalid("%s must be a string", kc.Keyword)
	}
	base := SchemaLocation{IRI: kc.Schema.loc.IRI}
	return &refValidator{
		keyword: kc.Keyword,
		raw:     s,
		from:    kc.Schema,
		loc:     ResolveLocation(base, s),
	}, nil
}

func newRef(kc *KeywordContext) (Validator, error) { return newReference(kc) }

func (v *refValidator) resolve(ctx context.Context) (*Schema, error) {
	if t := v.target.Load(); t != nil {
		return t, nil
	}
	t, err := v.from.reg.resolve(ctx, v.loc, v.from.sc.dialect)
	if err != nil {
		return nil, &RefResolutionError{Keyword: v.keyword, Ref: v.raw, From: v.from.loc, Err: err}
	}
	v.target.Store(t)
	return t, nil
}

func (v *refValidator) subschemas(ctx context.Context) ([]*Schema, error) {
	t, err := v.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return []*Schema{t}, nil
}

func (v *refValidator) Validate(e *Evaluation) {
	t, err := v.resolve(e.ec.ctx)
	if err != nil {
		e.ec.fail(err)
		return
	}
	v.apply(e, t)
}

// apply evaluates t in place unless t already applies to the same instance
// further up the evaluation, which would never terminate.
func (v *refValidator) apply(e *Evaluation, t *Schema) {
	for p := e; p != nil; p = p.parent {
		if p.schema == t {
			e.ec.fail(&RefResolutionError{Keyword: v.keyword, Ref: v.raw, From: v.from.loc, Err: ErrRefCycle})
			return
		}
		if !p.inPlace {
			break
		}
	}
	e.Apply(t)
}

// dynamicRefValidator implements $dynamicRef. When the static target is a
// $dynamicAnchor, the outermost resource of the dynamic scope declaring the
// same dynamic anchor wins.
type dynamicRefValidator struct {
	*refValidator
}

func newDynamicRef(kc *KeywordContext) (Validator, error) {
	r, err := newReference(kc)
	if err != nil {
		return nil, err
	}
	return &dynamicRefValidator{r}, nil
}

func (v *dynamicRefValidator) Validate(e *Evaluation) {
	t, err := v.resolve(e.ec.ctx)
	if err != nil {
		e.ec.fail(err)
		return
	}
	name := v.loc.Fragment
	if v.loc.IsAnchor() {
		if _, dynamic := v.from.reg.isDynamicAnchor(string(v.loc.IRI), name); dynamic {
			for _, base := range e.dynamicScope() {
				if _, ok := v.from.reg.isDynamicAnchor(base, name); !ok {
					continue
				}
				d, err := v.from.reg.resolve(e.ec.ctx, SchemaLocation{IRI: iri.AbsoluteIRI(base), Fragment: name}, v.from.sc.dialect)
				if err != nil {
					e.ec.fail(&RefResolutionError{Keyword: v.keyword, Ref: v.raw, From: v.from.loc, Err: err})
					return
				}
				t = d
				break
			}
		}
	}
	v.apply(e, t)
}

// recursiveRefValidator implements $recursiveRef: when the target has
// $recursiveAnchor: true, the outermost resource of the dynamic scope that
// also has it becomes the target.
type recursiveRefValidator struct {
	*refValidator
}

func newRecursiveRef(kc *KeywordContext) (Validator, error) {
	r, err := newReference(kc)
	if err != nil {
		return nil, err
	}
	return &recursiveRefValidator{r}, nil
}

func (v *recursiveRefValidator) Validate(e *Evaluation) {
	t, err := v.resolve(e.ec.ctx)
	if err != nil {
		e.ec.fail(err)
		return
	}
	reg := v.from.reg
	if t.sc.rel == "" && reg.isRecursiveAnchor(t.sc.base) {
		for _, base := range e.dynamicScope() {
			if !reg.isRecursiveAnchor(base) {
				continue
			}
			d, err := reg.resolve(e.ec.ctx, SchemaLocation{IRI: iri.AbsoluteIRI(base)}, v.from.sc.dialect)
			if err != nil {
				e.ec.fail(&RefResolutionError{Keyword: v.keyword, Ref: v.raw, From: v.from.loc, Err: err})
				return
			}
			t = d
			break
		}
	}
	v.apply(e, t)
}

// annotationValidator emits the keyword value as an annotation when
// annotations are collected.
type annotationValidator struct {
	value any
}

func newAnnotation(kc *KeywordContext) (Validator, error) {
	return annotationValidator{value: kc.Value}, nil
}

func (v annotationValidator) Validate(e *Evaluation) {
	if e.collecting() {
		e.Annotate(v.value)
	}
}

func newReadOnly(kc *KeywordContext) (Validator, error) {
	b, ok := kc.Value.(bool)
	if !ok {
		return nil, kc.Invalid("readOnly must be a boolean")
	}
	return ValidatorFunc(func(e *Evaluation) {
		if b && e.ec.cfg.WriteOnly && !e.instLoc.IsRoot() {
			e.Fail("readOnly")
		}
		if e.collecting() {
			e.Annotate(b)
		}
	}), nil
}

func newWriteOnly(kc *KeywordContext) (Validator, error) {
	b, ok := kc.Value.(bool)
	if !ok {
		return nil, kc.Invalid("writeOnly must be a boolean")
	}
	return ValidatorFunc(func(e *Evaluation) {
		if b && e.ec.cfg.ReadOnly && !e.instLoc.IsRoot() {
			e.Fail("writeOnly")
		}
		if e.collecting() {
			e.Annotate(b)
		}
	}), nil
}
