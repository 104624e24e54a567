package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"net/http" // net/http provides status codes and response helpers
	"time"

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health returns a liveness handler for load balancers and monitoring.
// It answers "ok" with 200 when the store responds to a ping within one
// second and 503 otherwise.  A nil pinger always reports ok.
func Health(p Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if p == nil {
			return c.String(http.StatusOK, "ok")
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			c.Logger().Warnf("health: store ping failed: %v", err)
			return c.String(http.StatusServiceUnavailable, "store unavailable")
		}
		return c.String(http.StatusOK, "ok") // String writes plain text
	}
}
