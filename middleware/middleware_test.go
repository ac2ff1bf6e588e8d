package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/middleware"
)

func userSchema(t *testing.T) *skema.Schema {
	t.Helper()
	reg := skema.NewRegistry(skema.Config{DefaultDialect: skema.Draft202012})
	s, err := reg.CompileBytes(context.Background(), []byte(`{
		"type": "object",
		"required": ["name"],
		"properties": {"name": {"type": "string"}, "age": {"type": "integer", "minimum": 0}}
	}`))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return s
}

func serve(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestValidateJSON(t *testing.T) {
	var got any
	h := middleware.ValidateJSON(userSchema(t), middleware.Options{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, ok := middleware.InstanceFromContext(r.Context())
		if !ok {
			t.Errorf("instance missing from context")
		}
		got = v
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := serve(t, h, `{"name": "alice", "age": 3}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: %d %s", rec.Code, rec.Body.String())
	}
	if m, ok := got.(map[string]any); !ok || m["name"] != "alice" {
		t.Fatalf("instance: %#v", got)
	}

	rec = serve(t, h, `{"age": -1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: %d", rec.Code)
	}
	var payload struct {
		Errors []middleware.ErrorItem `json:"errors"`
	}
	if err := gojson.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if len(payload.Errors) != 2 {
		t.Fatalf("errors: %+v", payload.Errors)
	}
	if e := payload.Errors[0]; e.Keyword != "minimum" || e.InstanceLocation != "/age" {
		t.Fatalf("first error: %+v", e)
	}
	if e := payload.Errors[1]; e.Keyword != "required" || !strings.HasSuffix(e.SchemaLocation, "#/required") {
		t.Fatalf("second error: %+v", e)
	}
}

func TestValidateJSON_RejectsBadBodies(t *testing.T) {
	h := middleware.ValidateJSON(userSchema(t), middleware.Options{MaxBytes: 64})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("handler reached")
	}))
	for name, body := range map[string]string{
		"duplicate key": `{"name": "a", "name": "b"}`,
		"malformed":     `{"name": `,
		"too large":     `{"name": "` + strings.Repeat("x", 100) + `"}`,
	} {
		rec := serve(t, h, body)
		if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), `"error"`) {
			t.Fatalf("%s: %d %s", name, rec.Code, rec.Body.String())
		}
	}
}

func TestValidateJSON_FailFast(t *testing.T) {
	h := middleware.ValidateJSON(userSchema(t), middleware.Options{Execution: skema.ExecutionConfig{FailFast: true}})(http.NotFoundHandler())
	rec := serve(t, h, `{"age": -1}`)
	var payload struct {
		Errors []middleware.ErrorItem `json:"errors"`
	}
	if err := gojson.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if rec.Code != http.StatusBadRequest || len(payload.Errors) != 1 {
		t.Fatalf("%d %+v", rec.Code, payload.Errors)
	}
}

func TestInstanceFromContext_Null(t *testing.T) {
	ctx := middleware.ContextWithInstance(context.Background(), nil)
	if v, ok := middleware.InstanceFromContext(ctx); !ok || v != nil {
		t.Fatalf("got %v %v", v, ok)
	}
	if _, ok := middleware.InstanceFromContext(context.Background()); ok {
		t.Fatalf("empty context reports an instance")
	}
}
