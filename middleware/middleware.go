// Package middleware validates JSON request bodies against a compiled
// schema. Framework adapters live in the echo and gin sub-modules.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	gojson "github.com/goccy/go-json"

	skema "github.com/reoring/skema"
)

// ErrInvalidBody marks request bodies that are not a single JSON value.
var ErrInvalidBody = errors.New("middleware: invalid JSON body")

// Options configures request validation.
type Options struct {
	Execution skema.ExecutionConfig
	// MaxBytes bounds the body size; zero means 1 MiB, negative means no
	// limit.
	MaxBytes int64
	MaxDepth int
}

func (o Options) decodeOptions() skema.DecodeOptions {
	limit := o.MaxBytes
	switch {
	case limit == 0:
		limit = 1 << 20
	case limit < 0:
		limit = 0
	}
	return skema.DecodeOptions{RejectDuplicates: true, MaxBytes: limit, MaxDepth: o.MaxDepth}
}

type ctxKeyInstance struct{}

// instance boxes the value so a JSON null body is still found.
type instance struct{ v any }

// ContextWithInstance attaches a validated instance to the context.
func ContextWithInstance(ctx context.Context, v any) context.Context {
	return context.WithValue(ctx, ctxKeyInstance{}, instance{v})
}

// InstanceFromContext retrieves the instance stored by the middleware.
func InstanceFromContext(ctx context.Context) (any, bool) {
	b, ok := ctx.Value(ctxKeyInstance{}).(instance)
	return b.v, ok
}

// Check decodes body with duplicate keys rejected and validates it. A
// decoding failure wraps ErrInvalidBody; any other error is a schema setup
// failure.
func Check(ctx context.Context, s *skema.Schema, body io.Reader, opt Options) (any, skema.Errors, error) {
	v, err := skema.DecodeJSONReader(body, opt.decodeOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	errs, err := s.Validate(ctx, v, opt.Execution)
	if err != nil {
		var ff *skema.FailFastError
		if !errors.As(err, &ff) {
			return nil, nil, err
		}
		errs = skema.Errors{ff.Err}
	}
	return v, errs, nil
}

// ErrorItem is the JSON form of one validation error.
type ErrorItem struct {
	InstanceLocation string `json:"instanceLocation"`
	Keyword          string `json:"keyword"`
	SchemaLocation   string `json:"schemaLocation"`
	Message          string `json:"message"`
}

// ErrorPayload shapes errors for JSON responses.
func ErrorPayload(errs skema.Errors) map[string]any {
	items := make([]ErrorItem, 0, len(errs))
	for _, e := range errs {
		items = append(items, ErrorItem{
			InstanceLocation: e.InstanceLocation.Pointer(),
			Keyword:          e.Keyword,
			SchemaLocation:   e.SchemaLocation.String(),
			Message:          e.Message,
		})
	}
	return map[string]any{"errors": items}
}

// Status maps a Check failure to an HTTP status and response body.
func Status(errs skema.Errors, err error) (int, any) {
	switch {
	case errors.Is(err, ErrInvalidBody):
		return http.StatusBadRequest, map[string]any{"error": err.Error()}
	case err != nil:
		return http.StatusInternalServerError, map[string]any{"error": err.Error()}
	case len(errs) > 0:
		return http.StatusBadRequest, ErrorPayload(errs)
	}
	return http.StatusOK, nil
}

// ValidateJSON validates request bodies against s. Valid instances are
// stored in the request context (see InstanceFromContext); otherwise the
// handler chain stops with a JSON error response.
func ValidateJSON(s *skema.Schema, opt Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, errs, err := Check(r.Context(), s, r.Body, opt)
			if code, body := Status(errs, err); code != http.StatusOK {
				writeJSON(w, code, body)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithInstance(r.Context(), v)))
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	b, err := gojson.Marshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}
