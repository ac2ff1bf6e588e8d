// Package ginmw adapts request validation to gin.
package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/middleware"
)

// ValidateJSON validates the request body against s, stores the instance in
// the request context on success, or aborts with 400 and the errors.
func ValidateJSON(s *skema.Schema, opt middleware.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, errs, err := middleware.Check(c.Request.Context(), s, c.Request.Body, opt)
		if code, body := middleware.Status(errs, err); code != http.StatusOK {
			c.AbortWithStatusJSON(code, body)
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithInstance(c.Request.Context(), v))
		c.Next()
	}
}

// GetInstance fetches the validated instance from gin.Context.
func GetInstance(c *gin.Context) (any, bool) {
	return middleware.InstanceFromContext(c.Request.Context())
}
