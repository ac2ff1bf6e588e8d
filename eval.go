package skema

import (
	"context"

	"github.com/reoring/skema/i18n"
	"github.com/reoring/skema/internal/debug"
	"github.com/reoring/skema/nodepath"
)

// ExecutionContext is the per-call state of one Validate or Walk run. It is
// never shared between calls.
type ExecutionContext struct {
	ctx      context.Context
	cfg      ExecutionConfig
	tr       i18n.Translator
	walk     *walker
	errs     []*Error
	first    *Error
	setup    error
	failFast bool
}

func newExecutionContext(ctx context.Context, cfg ExecutionConfig) *ExecutionContext {
	ec := &ExecutionContext{ctx: lookupOnly(ctx), cfg: cfg}
	ec.failFast = cfg.FailFast || IsFailFast(ctx)
	if cfg.Locale != "" {
		ec.tr = i18n.For(cfg.Locale)
	} else {
		ec.tr = i18n.Current()
	}
	return ec
}

// Config returns the execution configuration of the run.
func (ec *ExecutionContext) Config() ExecutionConfig { return ec.cfg }

// Context returns the context of the run.
func (ec *ExecutionContext) Context() context.Context { return ec.ctx }

func (ec *ExecutionContext) stopped() bool { return ec.first != nil || ec.setup != nil }

// fail records a setup error found while evaluating, such as an
// unresolvable reference. It ends the run.
func (ec *ExecutionContext) fail(err error) {
	if ec.setup == nil {
		ec.setup = err
	}
}

func (ec *ExecutionContext) message(key string, loc *nodepath.Path, args []any) string {
	msg := ec.tr.Message(key, args)
	if p := loc.Render(ec.cfg.PathType); p != "" {
		return p + ": " + msg
	}
	return msg
}

// Annotation is a value produced by a keyword for an instance location.
type Annotation struct {
	Keyword          string
	EvaluationPath   *nodepath.Path
	SchemaLocation   SchemaLocation
	InstanceLocation *nodepath.Path
	Value            any
}

// Evaluation is the application of one schema node to one instance
// location. Evaluations form a tree mirroring the path taken through the
// schema; validators receive the node they run in.
type Evaluation struct {
	ec       *ExecutionContext
	parent   *Evaluation
	schema   *Schema
	evalPath *nodepath.Path
	instLoc  *nodepath.Path
	instance any

	cur         *boundValidator
	errors      []*Error
	annotations []*Annotation
	children    []*Evaluation

	inPlace     bool // same instance location as the parent
	consumes    bool // an in-place ancestor reads annotations (unevaluated*)
	speculative bool // errors may still be discarded by an ancestor
	silenced    bool // errors never count (if conditions, contains items)
	discarded   bool
	valid       bool
	done        bool
}

// Instance returns the value under evaluation.
func (e *Evaluation) Instance() any { return e.instance }

// InstanceLocation returns the location of the value.
func (e *Evaluation) InstanceLocation() *nodepath.Path { return e.instLoc }

// EvaluationPath returns the schema-side path taken to reach the node.
func (e *Evaluation) EvaluationPath() *nodepath.Path { return e.evalPath }

// Schema returns the node being applied.
func (e *Evaluation) Schema() *Schema { return e.schema }

// Context returns the execution context of the run.
func (e *Evaluation) Context() *ExecutionContext { return e.ec }

// Keyword returns the keyword currently running.
func (e *Evaluation) Keyword() string {
	if e.cur == nil {
		return ""
	}
	return e.cur.keyword
}

// Valid reports whether the node produced no counted error. It is final
// once the node has finished.
func (e *Evaluation) Valid() bool { return e.valid }

// Fail records an error for the current keyword at the instance.
func (e *Evaluation) Fail(key string, args ...any) {
	e.addError(e.newError(key, nil, e.instLoc, e.instance, args))
}

// FailProperty records an error naming an object member.
func (e *Evaluation) FailProperty(name, key string, args ...any) {
	n := name
	e.addError(e.newError(key, &n, e.instLoc, e.instance, args))
}

// FailAt records an error for a member or element of the instance.
func (e *Evaluation) FailAt(tok any, value any, key string, args ...any) {
	var prop *string
	if s, ok := tok.(string); ok {
		prop = &s
	}
	e.addError(e.newError(key, prop, e.instLoc.AppendToken(tok), value, args))
}

// Annotate attaches a value to the current keyword at the instance.
func (e *Evaluation) Annotate(value any) {
	if e.cur == nil {
		return
	}
	e.annotations = append(e.annotations, &Annotation{
		Keyword:          e.cur.keyword,
		EvaluationPath:   e.evalPath.Append(e.cur.keyword),
		SchemaLocation:   e.cur.loc,
		InstanceLocation: e.instLoc,
		Value:            value,
	})
}

func (e *Evaluation) newError(key string, prop *string, loc *nodepath.Path, node any, args []any) *Error {
	kw, ep, sl, sn := "false", e.evalPath, e.schema.loc, any(false)
	if e.cur != nil {
		kw, ep, sl, sn = e.cur.keyword, e.evalPath.Append(e.cur.keyword), e.cur.loc, e.cur.value
	}
	if key == "" {
		key = kw
	}
	return &Error{
		Keyword:          kw,
		EvaluationPath:   ep,
		SchemaLocation:   sl,
		SchemaNode:       sn,
		InstanceLocation: loc,
		InstanceNode:     node,
		Message:          e.ec.message(key, loc, args),
		MessageKey:       key,
		Property:         prop,
		Arguments:        args,
	}
}

func (e *Evaluation) addError(err *Error) {
	err.node = e
	e.errors = append(e.errors, err)
	e.ec.errs = append(e.ec.errs, err)
	if e.ec.failFast && !e.speculative && e.ec.first == nil {
		e.ec.first = err
	}
	if debug.Eval() {
		debug.Logf("eval: %s: %s\n", err.EvaluationPath.Pointer(), err.Message)
	}
}

// FailAs records an error attributed to another keyword of the same schema
// object, such as discriminator failures raised by anyOf.
func (e *Evaluation) FailAs(keyword, key string, args ...any) {
	err := e.newError(key, nil, e.instLoc, e.instance, args)
	err.Keyword = keyword
	err.EvaluationPath = e.evalPath.Append(keyword)
	err.SchemaLocation = e.schema.loc.Append(keyword)
	if m, ok := e.schema.value.(map[string]any); ok {
		err.SchemaNode = m[keyword]
	}
	e.addError(err)
}

// descent describes a child evaluation.
type descent struct {
	keyword     string // overrides the current keyword in the evaluation path
	evalTokens  []any
	instToken   any // nil for in-place evaluation
	instance    any
	detached    bool // evaluate instance without moving the location
	speculative bool
	silenced    bool
}

// Apply evaluates s in place, against the same instance. tokens extend the
// evaluation path after the current keyword.
func (e *Evaluation) Apply(s *Schema, tokens ...any) *Evaluation {
	return e.descend(s, descent{evalTokens: tokens})
}

// ApplyAt evaluates s against the member or element tok of the instance.
func (e *Evaluation) ApplyAt(s *Schema, tok any, value any, tokens ...any) *Evaluation {
	return e.descend(s, descent{evalTokens: tokens, instToken: tok, instance: value})
}

func (e *Evaluation) descend(s *Schema, d descent) *Evaluation {
	ep := e.evalPath
	switch {
	case d.keyword != "":
		ep = ep.Append(d.keyword)
	case e.cur != nil:
		ep = ep.Append(e.cur.keyword)
	}
	for _, t := range d.evalTokens {
		ep = ep.AppendToken(t)
	}
	c := &Evaluation{
		ec:          e.ec,
		parent:      e,
		schema:      s,
		evalPath:    ep,
		instLoc:     e.instLoc,
		instance:    e.instance,
		inPlace:     d.instToken == nil && !d.detached,
		speculative: e.speculative || d.speculative || d.silenced,
		silenced:    d.silenced,
	}
	switch {
	case d.instToken != nil:
		c.instLoc = e.instLoc.AppendToken(d.instToken)
		c.instance = d.instance
	case d.detached:
		c.instance = d.instance
	}
	c.consumes = (c.inPlace && e.consumes) || s.readsAnnotations()
	e.children = append(e.children, c)
	c.run()
	return c
}

// run applies every keyword of the node, then settles its validity.
func (e *Evaluation) run() {
	defer e.finish()
	if b, ok := e.schema.value.(bool); ok {
		if !b {
			e.addError(e.newError("false", nil, e.instLoc, e.instance, []any{e.instLoc.Render(e.ec.cfg.PathType)}))
		}
		return
	}
	vs, err := e.schema.build(e.ec.ctx)
	if err != nil {
		e.ec.fail(err)
		return
	}
	for i := range vs {
		if e.ec.stopped() {
			return
		}
		e.cur = &vs[i]
		if w := e.ec.walk; w != nil {
			if !w.keywordStart(e) {
				continue
			}
			e.cur.v.Validate(e)
			w.keywordEnd(e)
		} else {
			e.cur.v.Validate(e)
		}
		if e.ec.failFast && !e.speculative && e.ec.first == nil {
			e.ec.first = e.firstCounted()
		}
	}
	e.cur = nil
}

func (e *Evaluation) finish() {
	e.done = true
	e.valid = len(e.errors) == 0
	if !e.valid {
		return
	}
	for _, c := range e.children {
		if c.counts() && !c.valid {
			e.valid = false
			return
		}
	}
}

// counts reports whether the node's outcome affects its parent.
func (e *Evaluation) counts() bool { return !e.silenced && !e.discarded }

// discard removes the node's errors and annotations from the result.
func (e *Evaluation) discard() { e.discarded = true }

// firstCounted returns the first error of the subtree that currently counts.
func (e *Evaluation) firstCounted() *Error {
	if len(e.errors) > 0 {
		return e.errors[0]
	}
	for _, c := range e.children {
		if !c.counts() {
			continue
		}
		if err := c.firstCounted(); err != nil {
			return err
		}
	}
	return nil
}

// reported reports whether an error recorded on n survives: no node between
// n and the root was silenced or discarded.
func reported(n *Evaluation) bool {
	for ; n != nil; n = n.parent {
		if !n.counts() {
			return false
		}
	}
	return true
}

// retained reports whether annotations of n are kept: n and all ancestors
// are valid and none was discarded.
func retained(n *Evaluation) bool {
	for ; n != nil; n = n.parent {
		if n.discarded || !n.valid {
			return false
		}
	}
	return true
}

// collected reports the errors of the run in the order they were found.
func (ec *ExecutionContext) collected() Errors {
	var out Errors
	for _, err := range ec.errs {
		if reported(err.node) {
			out = append(out, err)
		}
	}
	return out
}

// gather visits the annotations of keywords produced at this instance
// location by the node and its successful in-place descendants.
func (e *Evaluation) gather(keywords map[string]bool, fn func(*Annotation)) {
	for _, a := range e.annotations {
		if keywords[a.Keyword] {
			fn(a)
		}
	}
	for _, c := range e.children {
		if c.inPlace && c.valid && !c.discarded && c.done {
			c.gather(keywords, fn)
		}
	}
}

// dynamicScope lists the distinct schema resources entered on the way to
// e, outermost first.
func (e *Evaluation) dynamicScope() []string {
	var rev []string
	for n := e; n != nil; n = n.parent {
		rev = append(rev, n.schema.sc.base)
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		if !seen[rev[i]] {
			seen[rev[i]] = true
			out = append(out, rev[i])
		}
	}
	return out
}

// collecting reports whether non-essential annotations are kept.
func (e *Evaluation) collecting() bool { return e.ec.cfg.CollectAnnotations }

// exhaustive reports whether anyOf and oneOf must evaluate every branch
// because annotations of all successful branches are needed.
func (e *Evaluation) exhaustive() bool { return e.ec.cfg.CollectAnnotations || e.consumes }
