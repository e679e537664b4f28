package devserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	apperrors "github.com/pscheid92/vybe/internal/errors"
	"github.com/pscheid92/vybe/internal/metrics"
)

func (s *Server) registerRoutes() {
	httpMetrics := metrics.NewHTTPMetrics(s.registry)

	s.echo.Use(correlationMiddleware)
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(httpMetrics.Middleware())
	s.echo.Use(apperrors.Middleware(httpMetrics.ErrorsTotal))

	s.registerHealthRoutes()
	s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler(s.registry)))

	auth := s.echo.Group("/api/v1/auth")
	limited := newRateLimiter(s.authRate, s.authBurst)
	auth.POST("/register", s.handleRegister, limited)
	auth.POST("/login", s.handleLogin, limited)
	auth.GET("/me", s.handleMe, s.requireBearer)
	auth.POST("/logout", s.handleLogout, s.requireBearer)
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.InfoContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}
