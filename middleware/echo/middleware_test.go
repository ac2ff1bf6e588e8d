package echomw_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/middleware"
	echomw "github.com/reoring/skema/middleware/echo"
)

func TestValidateJSON(t *testing.T) {
	reg := skema.NewRegistry(skema.Config{DefaultDialect: skema.Draft202012})
	s, err := reg.CompileBytes(context.Background(), []byte(`{"type": "object", "required": ["name"]}`))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	e := echo.New()
	e.POST("/users", func(c echo.Context) error {
		v, ok := echomw.GetInstance(c)
		if !ok {
			t.Errorf("instance missing")
		}
		return c.JSON(http.StatusOK, v)
	}, echomw.ValidateJSON(s, middleware.Options{}))

	for body, want := range map[string]int{
		`{"name": "a"}`:          http.StatusOK,
		`{}`:                     http.StatusBadRequest,
		`{"name": 1, "name": 2}`: http.StatusBadRequest,
	} {
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("%s: status %d, want %d: %s", body, rec.Code, want, rec.Body.String())
		}
	}
}
