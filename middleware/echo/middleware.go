// Package echomw adapts request validation to echo.
package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	skema "github.com/reoring/skema"
	"github.com/reoring/skema/middleware"
)

// ValidateJSON validates the request body against s, stores the instance in
// the request context on success, or replies 400 with the errors.
func ValidateJSON(s *skema.Schema, opt middleware.Options) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			v, errs, err := middleware.Check(req.Context(), s, req.Body, opt)
			if code, body := middleware.Status(errs, err); code != http.StatusOK {
				return c.JSON(code, body)
			}
			c.SetRequest(req.WithContext(middleware.ContextWithInstance(req.Context(), v)))
			return next(c)
		}
	}
}

// GetInstance fetches the validated instance from echo.Context.
func GetInstance(c echo.Context) (any, bool) {
	return middleware.InstanceFromContext(c.Request().Context())
}
