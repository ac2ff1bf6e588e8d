package ginmw_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/middleware"
	ginmw "github.com/reoring/skema/middleware/gin"
)

func TestValidateJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := skema.NewRegistry(skema.Config{DefaultDialect: skema.Draft202012})
	s, err := reg.CompileBytes(context.Background(), []byte(`{"type": "object", "required": ["name"]}`))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	r := gin.New()
	r.POST("/users", ginmw.ValidateJSON(s, middleware.Options{}), func(c *gin.Context) {
		v, ok := ginmw.GetInstance(c)
		if !ok {
			t.Errorf("instance missing")
		}
		c.JSON(http.StatusOK, v)
	})

	for body, want := range map[string]int{
		`{"name": "a"}`:          http.StatusOK,
		`{}`:                     http.StatusBadRequest,
		`{"name": 1, "name": 2}`: http.StatusBadRequest,
	} {
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("%s: status %d, want %d: %s", body, rec.Code, want, rec.Body.String())
		}
	}
}
