package skema_test

import (
	"context"
	"testing"

	skema "github.com/reoring/skema"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	v, err := skema.DecodeJSON([]byte(s))
	if err != nil {
		t.Fatalf("decode %s: %v", s, err)
	}
	return v
}

func compile(t *testing.T, reg *skema.Registry, schema string) *skema.Schema {
	t.Helper()
	s, err := reg.CompileBytes(context.Background(), []byte(schema))
	if err != nil {
		t.Fatalf("compile %s: %v", schema, err)
	}
	return s
}

func validate(t *testing.T, s *skema.Schema, instance string, cfg ...skema.ExecutionConfig) skema.Errors {
	t.Helper()
	errs, err := s.Validate(context.Background(), decode(t, instance), cfg...)
	if err != nil {
		t.Fatalf("validate %s: %v", instance, err)
	}
	return errs
}

func newRegistry() *skema.Registry {
	return skema.NewRegistry(skema.Config{DefaultDialect: skema.Draft202012})
}
