package skema

import (
	"context"

	"github.com/reoring/skema/nodepath"
)

// evaluate applies s to instance as the root of a run.
func (s *Schema) evaluate(ec *ExecutionContext, instance any) *Evaluation {
	root := &Evaluation{
		ec:       ec,
		schema:   s,
		evalPath: nodepath.New(nodepath.JSONPointer),
		instLoc:  nodepath.New(ec.cfg.PathType),
		instance: instance,
		consumes: s.readsAnnotations(),
	}
	root.run()
	return root
}

func executionConfig(cfg []ExecutionConfig) ExecutionConfig {
	if len(cfg) > 0 {
		return cfg[0]
	}
	return ExecutionConfig{}
}

// Validate evaluates instance, a decoded value tree, and returns the
// reportable errors in discovery order. An empty result means the instance
// is valid.
//
// The returned error is non-nil only when evaluation could not complete
// (an unresolvable reference, a schema failing to compile) or, in fail-fast
// mode, as *FailFastError wrapping the first error.
func (s *Schema) Validate(ctx context.Context, instance any, cfg ...ExecutionConfig) (Errors, error) {
	ec := newExecutionContext(ctx, executionConfig(cfg))
	s.evaluate(ec, instance)
	if ec.setup != nil {
		return nil, ec.setup
	}
	if ec.first != nil {
		return nil, &FailFastError{Err: ec.first}
	}
	return ec.collected(), nil
}

// ValidateJSON decodes data with exact numbers and validates it.
func (s *Schema) ValidateJSON(ctx context.Context, data []byte, cfg ...ExecutionConfig) (Errors, error) {
	v, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	return s.Validate(ctx, v, cfg...)
}

// IsValid reports whether instance is valid, stopping at the first error.
func (s *Schema) IsValid(ctx context.Context, instance any) (bool, error) {
	return s.isValid(ctx, instance, ExecutionConfig{FailFast: true})
}
