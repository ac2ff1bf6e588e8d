// Package skema compiles JSON Schema documents and evaluates instances
// against them.
//
// - Several dialects side by side: draft 4, 6, 7, 2019-09, 2020-12,
//   OpenAPI 3.0 and 3.1, plus custom dialects built from $vocabulary
// - Same- and cross-document references, including cyclic ones, compiled
//   lazily and shared through a Registry
// - Errors as values (Errors) and Boolean, List and Hierarchical output
// - A Walk mode that applies defaults and calls listeners
//
// Design policy:
// - Keep the public API in the root package; decoding and numerics live
//   under internal/.
// - A Registry is long-lived and safe for concurrent use. Each Validate or
//   Walk call owns a fresh ExecutionContext.
// - No I/O happens during validation; documents are fetched when a schema
//   is compiled.
//
// Typical usage:
//
//	reg := skema.NewRegistry(skema.Config{DefaultDialect: skema.Draft202012})
//	s, err := reg.CompileBytes(ctx, schemaJSON)
//	inst, err := skema.DecodeJSON(instanceJSON)
//	errs, err := s.Validate(ctx, inst)
//	if len(errs) > 0 { ... }
package skema
