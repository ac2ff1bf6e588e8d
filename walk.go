package skema

import (
	"context"
	"errors"

	jsonpatch "github.com/evanphx/json-patch"
	gojson "github.com/goccy/go-json"

	"github.com/reoring/skema/nodepath"
)

// WalkFlow is returned by listeners to continue or skip a subtree.
type WalkFlow int

const (
	WalkContinue WalkFlow = iota
	WalkSkip
)

// WalkEvent describes the keyword, member or element being visited.
type WalkEvent struct {
	// Keyword is the keyword being applied. For property and item events it
	// is the applicator descending into the member or element.
	Keyword          string
	KeywordValue     any
	Schema           *Schema
	SchemaLocation   SchemaLocation
	EvaluationPath   *nodepath.Path
	InstanceLocation *nodepath.Path
	Instance         any
}

// WalkListener observes a walk. Returning WalkSkip from OnWalkStart skips
// the keyword (or the member/element) and its subtree; OnWalkEnd is still
// called.
type WalkListener interface {
	OnWalkStart(ev *WalkEvent) WalkFlow
	OnWalkEnd(ev *WalkEvent)
}

// WalkListenerFuncs adapts functions to WalkListener. Nil fields are no-ops.
type WalkListenerFuncs struct {
	Start func(ev *WalkEvent) WalkFlow
	End   func(ev *WalkEvent)
}

func (f WalkListenerFuncs) OnWalkStart(ev *WalkEvent) WalkFlow {
	if f.Start == nil {
		return WalkContinue
	}
	return f.Start(ev)
}

func (f WalkListenerFuncs) OnWalkEnd(ev *WalkEvent) {
	if f.End != nil {
		f.End(ev)
	}
}

// ApplyDefaultsStrategy selects where walk writes default values.
type ApplyDefaultsStrategy struct {
	// Properties adds missing object members that declare a default.
	Properties bool
	// PropertiesIfNull also replaces members whose value is null.
	PropertiesIfNull bool
	// Items replaces null array elements with the items default.
	Items bool
}

// ErrInvalidDefaultsStrategy rejects PropertiesIfNull without Properties.
var ErrInvalidDefaultsStrategy = errors.New("skema: PropertiesIfNull requires Properties")

// NewApplyDefaultsStrategy validates the flag combination.
func NewApplyDefaultsStrategy(properties, propertiesIfNull, items bool) (ApplyDefaultsStrategy, error) {
	s := ApplyDefaultsStrategy{Properties: properties, PropertiesIfNull: propertiesIfNull, Items: items}
	if err := s.check(); err != nil {
		return ApplyDefaultsStrategy{}, err
	}
	return s, nil
}

func (s ApplyDefaultsStrategy) check() error {
	if s.PropertiesIfNull && !s.Properties {
		return ErrInvalidDefaultsStrategy
	}
	return nil
}

// AppliedDefault records one default written by a walk.
type AppliedDefault struct {
	InstanceLocation *nodepath.Path
	Value            any
	// Replaced is true when a null value was overwritten.
	Replaced bool
}

// WalkResult is the outcome of Schema.Walk.
type WalkResult struct {
	// Instance is a copy of the walked instance with defaults applied.
	Instance any
	Defaults []AppliedDefault
	// Errors holds the validation errors of Instance when
	// WalkConfig.Validate is set.
	Errors Errors
}

// Patch returns the applied defaults as an RFC 6902 patch.
func (r *WalkResult) Patch() (jsonpatch.Patch, error) {
	ops := make([]map[string]any, 0, len(r.Defaults))
	for _, d := range r.Defaults {
		op := "add"
		if d.Replaced {
			op = "replace"
		}
		ops = append(ops, map[string]any{"op": op, "path": d.InstanceLocation.Pointer(), "value": d.Value})
	}
	b, err := gojson.Marshal(ops)
	if err != nil {
		return nil, err
	}
	return jsonpatch.DecodePatch(b)
}

// ApplyDefaults applies the recorded defaults to a JSON document, keeping
// its other content byte-for-byte where json-patch allows.
func (r *WalkResult) ApplyDefaults(doc []byte) ([]byte, error) {
	if len(r.Defaults) == 0 {
		return doc, nil
	}
	p, err := r.Patch()
	if err != nil {
		return nil, err
	}
	return p.Apply(doc)
}

type walker struct {
	cfg      WalkConfig
	defaults []AppliedDefault
}

func (w *walker) event(e *Evaluation) *WalkEvent {
	ev := &WalkEvent{
		Schema:           e.schema,
		SchemaLocation:   e.schema.loc,
		EvaluationPath:   e.evalPath,
		InstanceLocation: e.instLoc,
		Instance:         e.instance,
	}
	if e.cur != nil {
		ev.Keyword = e.cur.keyword
		ev.KeywordValue = e.cur.value
		ev.SchemaLocation = e.cur.loc
		ev.EvaluationPath = e.evalPath.Append(e.cur.keyword)
	}
	return ev
}

func (w *walker) keywordStart(e *Evaluation) bool {
	ls := w.cfg.KeywordListeners[e.cur.keyword]
	if len(ls) == 0 {
		return true
	}
	ev := w.event(e)
	for _, l := range ls {
		if l.OnWalkStart(ev) == WalkSkip {
			return false
		}
	}
	return true
}

func (w *walker) keywordEnd(e *Evaluation) {
	ls := w.cfg.KeywordListeners[e.cur.keyword]
	if len(ls) == 0 {
		return
	}
	ev := w.event(e)
	for _, l := range ls {
		l.OnWalkEnd(ev)
	}
}

// child notifies property or item listeners around apply.
func (w *walker) child(e *Evaluation, tok any, value any, apply func()) {
	ls := w.cfg.ItemListeners
	if _, ok := tok.(string); ok {
		ls = w.cfg.PropertyListeners
	}
	if len(ls) == 0 {
		apply()
		return
	}
	ev := w.event(e)
	ev.InstanceLocation = e.instLoc.AppendToken(tok)
	ev.Instance = value
	skip := false
	for _, l := range ls {
		if l.OnWalkStart(ev) == WalkSkip {
			skip = true
			break
		}
	}
	if !skip {
		apply()
	}
	for _, l := range ls {
		l.OnWalkEnd(ev)
	}
}

// visitChild runs apply for the member or element tok unless a walk
// listener skips it.
func (e *Evaluation) visitChild(tok any, value any, apply func()) {
	if w := e.ec.walk; w != nil {
		w.child(e, tok, value, apply)
		return
	}
	apply()
}

func defaultOf(s *Schema) (any, bool) {
	m, ok := s.value.(map[string]any)
	if !ok {
		return nil, false
	}
	d, ok := m["default"]
	return d, ok
}

// propertyDefaults writes declared defaults into obj. obj is the map held
// by the instance tree, so the parent container sees the change.
func (w *walker) propertyDefaults(e *Evaluation, obj map[string]any, names []string, subs map[string]*Schema) {
	st := w.cfg.ApplyDefaults
	if !st.Properties {
		return
	}
	for _, name := range names {
		def, ok := defaultOf(subs[name])
		if !ok {
			continue
		}
		cur, present := obj[name]
		replaced := present && cur == nil && st.PropertiesIfNull
		if present && !replaced {
			continue
		}
		obj[name] = DeepCopy(def)
		w.defaults = append(w.defaults, AppliedDefault{
			InstanceLocation: e.instLoc.Append(name),
			Value:            DeepCopy(def),
			Replaced:         replaced,
		})
	}
}

// itemDefaults replaces null elements from start on with the default of s.
func (w *walker) itemDefaults(e *Evaluation, s *Schema, start int) {
	if !w.cfg.ApplyDefaults.Items || s == nil {
		return
	}
	def, ok := defaultOf(s)
	if !ok {
		return
	}
	arr, _ := e.instance.([]any)
	for i := start; i < len(arr); i++ {
		if arr[i] != nil {
			continue
		}
		arr[i] = DeepCopy(def)
		w.defaults = append(w.defaults, AppliedDefault{
			InstanceLocation: e.instLoc.AppendIndex(i),
			Value:            DeepCopy(def),
			Replaced:         true,
		})
	}
}

// Walk traverses instance with the schema, calling listeners and applying
// defaults. The caller's instance is not modified; WalkResult.Instance holds
// the walked copy. Assertions run for traversal only; their outcome is
// reported when cfg.Validate is set, by validating the walked copy.
func (s *Schema) Walk(ctx context.Context, instance any, cfg WalkConfig) (*WalkResult, error) {
	if err := cfg.ApplyDefaults.check(); err != nil {
		return nil, err
	}
	inst := DeepCopy(instance)
	exec := cfg.Execution
	exec.FailFast = false
	ec := newExecutionContext(WithFailFast(ctx, false), exec)
	w := &walker{cfg: cfg}
	ec.walk = w
	s.evaluate(ec, inst)
	if ec.setup != nil {
		return nil, ec.setup
	}
	res := &WalkResult{Instance: inst, Defaults: w.defaults}
	if cfg.Validate {
		errs, err := s.Validate(ctx, inst, cfg.Execution)
		if err != nil {
			var ff *FailFastError
			if !errors.As(err, &ff) {
				return nil, err
			}
			errs = Errors{ff.Err}
		}
		res.Errors = errs
	}
	return res, nil
}
