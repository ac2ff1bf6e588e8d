package skema

import (
	"context"
	"fmt"
	"strings"
)

// OutputFormat selects the structure produced by ValidateOutput.
type OutputFormat int

const (
	// OutputFlag reports validity only and stops at the first error.
	OutputFlag OutputFormat = iota
	// OutputList reports a flat list of units below the root.
	OutputList
	// OutputHierarchical nests units following the evaluation.
	OutputHierarchical
)

func (f OutputFormat) String() string {
	switch f {
	case OutputFlag:
		return "flag"
	case OutputList:
		return "list"
	case OutputHierarchical:
		return "hierarchical"
	}
	return "unknown"
}

// ParseOutputFormat maps "flag", "list" and "hierarchical".
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(s) {
	case "flag", "boolean", "":
		return OutputFlag, nil
	case "list", "basic":
		return OutputList, nil
	case "hierarchical", "detailed", "verbose":
		return OutputHierarchical, nil
	}
	return OutputFlag, fmt.Errorf("skema: unknown output format %q", s)
}

// OutputUnit is one entry of a structured validation result.
type OutputUnit struct {
	Valid              bool              `json:"valid" yaml:"valid"`
	EvaluationPath     string            `json:"evaluationPath,omitempty" yaml:"evaluationPath,omitempty"`
	SchemaLocation     string            `json:"schemaLocation,omitempty" yaml:"schemaLocation,omitempty"`
	InstanceLocation   string            `json:"instanceLocation,omitempty" yaml:"instanceLocation,omitempty"`
	Errors             map[string]string `json:"errors,omitempty" yaml:"errors,omitempty"`
	Annotations        map[string]any    `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	DroppedAnnotations map[string]any    `json:"droppedAnnotations,omitempty" yaml:"droppedAnnotations,omitempty"`
	Details            []*OutputUnit     `json:"details,omitempty" yaml:"details,omitempty"`
}

func (u *OutputUnit) empty() bool {
	return len(u.Errors) == 0 && len(u.Annotations) == 0 && len(u.DroppedAnnotations) == 0
}

// ValidateOutput evaluates instance and renders the result in format. List
// and hierarchical output collect every annotation.
func (s *Schema) ValidateOutput(ctx context.Context, instance any, format OutputFormat, cfg ...ExecutionConfig) (*OutputUnit, error) {
	c := executionConfig(cfg)
	if format == OutputFlag {
		c.FailFast = true
		valid, err := s.isValid(ctx, instance, c)
		if err != nil {
			return nil, err
		}
		return &OutputUnit{Valid: valid}, nil
	}
	c.FailFast = false
	c.CollectAnnotations = true
	ec := newExecutionContext(WithFailFast(ctx, false), c)
	root := s.evaluate(ec, instance)
	if ec.setup != nil {
		return nil, ec.setup
	}
	b := &outputBuilder{ec: ec}
	if format == OutputList {
		out := &OutputUnit{Valid: root.valid}
		b.flatten(root, func(u *OutputUnit) { out.Details = append(out.Details, u) })
		return out, nil
	}
	return b.tree(root), nil
}

func (s *Schema) isValid(ctx context.Context, instance any, c ExecutionConfig) (bool, error) {
	errs, err := s.Validate(ctx, instance, c)
	if err != nil {
		if _, ok := err.(*FailFastError); ok {
			return false, nil
		}
		return false, err
	}
	return len(errs) == 0, nil
}

type outputBuilder struct {
	ec *ExecutionContext
}

// units returns the contributions of n: one unit for the node itself, plus
// one for each other instance location its errors point at.
func (b *outputBuilder) units(n *Evaluation) []*OutputUnit {
	self := b.unit(n, n.instLoc.String())
	out := []*OutputUnit{self}
	byLoc := map[string]*OutputUnit{self.InstanceLocation: self}
	for _, err := range n.errors {
		if !reported(n) {
			break
		}
		loc := err.InstanceLocation.String()
		u, ok := byLoc[loc]
		if !ok {
			u = b.unit(n, loc)
			byLoc[loc] = u
			out = append(out, u)
		}
		if u.Errors == nil {
			u.Errors = map[string]string{}
		}
		if prev, ok := u.Errors[err.Keyword]; ok {
			u.Errors[err.Keyword] = prev + "; " + err.Message
		} else {
			u.Errors[err.Keyword] = err.Message
		}
	}
	keep := retained(n)
	for _, a := range n.annotations {
		if f := b.ec.cfg.AnnotationFilter; f != nil && !f(a.Keyword) {
			continue
		}
		into := &self.Annotations
		if !keep {
			into = &self.DroppedAnnotations
		}
		if *into == nil {
			*into = map[string]any{}
		}
		(*into)[a.Keyword] = a.Value
	}
	kept := out[:0]
	for _, u := range out {
		if !u.empty() {
			kept = append(kept, u)
		}
	}
	return kept
}

func (b *outputBuilder) unit(n *Evaluation, instLoc string) *OutputUnit {
	return &OutputUnit{
		Valid:            n.valid,
		EvaluationPath:   n.evalPath.Pointer(),
		SchemaLocation:   n.schema.loc.String(),
		InstanceLocation: instLoc,
	}
}

// flatten emits the units of n and its subtree in evaluation order. Failed
// branches still contribute their annotations as dropped.
func (b *outputBuilder) flatten(n *Evaluation, emit func(*OutputUnit)) {
	for _, u := range b.units(n) {
		emit(u)
	}
	for _, c := range n.children {
		b.flatten(c, emit)
	}
}

// tree builds the hierarchical result. Nodes without contributions are
// left out and their included descendants attach to the closest included
// ancestor. The root is always present.
func (b *outputBuilder) tree(root *Evaluation) *OutputUnit {
	out := b.unit(root, root.instLoc.String())
	units := b.units(root)
	if len(units) > 0 && units[0].InstanceLocation == out.InstanceLocation && units[0].EvaluationPath == out.EvaluationPath {
		out = units[0]
		units = units[1:]
	}
	out.Details = append(out.Details, units...)
	for _, c := range root.children {
		b.attach(out, c)
	}
	return out
}

func (b *outputBuilder) attach(parent *OutputUnit, n *Evaluation) {
	units := b.units(n)
	into := parent
	if len(units) > 0 {
		parent.Details = append(parent.Details, units...)
		into = units[0]
	}
	for _, c := range n.children {
		b.attach(into, c)
	}
}
