package devserver

import (
	"github.com/labstack/echo/v4"

	"github.com/pscheid92/vybe/internal/platform/correlation"
)

// correlationMiddleware adopts the caller's correlation ID or generates one,
// and echoes it in the response.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, id := correlation.FromHeader(c.Request().Context(), c.Request().Header)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set(correlation.Header, id)
		return next(c)
	}
}
