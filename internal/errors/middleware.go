package errors

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Middleware renders errors returned by handlers as ErrorResponse JSON, so a
// client can always decode a message. Echo's own errors (unknown routes, the
// rate limiter, bind failures) get the same shape. Each rendered error is
// counted in errorsTotal by type; a nil counter disables counting.
func Middleware(errorsTotal *prometheus.CounterVec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var structured *Error
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				structured = WrapHTTPError(httpErr)
			} else {
				structured = AsStructuredError(err)
				logError(c, structured)
			}

			if errorsTotal != nil {
				errorsTotal.WithLabelValues(string(structured.Type)).Inc()
			}

			status := structured.HTTPStatus()
			if httpErr != nil {
				status = httpErr.Code
			}
			return c.JSON(status, structured.ToResponse())
		}
	}
}

func logError(c echo.Context, err *Error) {
	req := c.Request()
	attrs := []slog.Attr{
		slog.String("error_type", string(err.Type)),
		slog.String("message", err.Message),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", err.HTTPStatus()),
	}
	if err.Field != "" {
		attrs = append(attrs, slog.String("field", err.Field))
	}
	if userID, ok := c.Get("userID").(string); ok {
		attrs = append(attrs, slog.String("user_id", userID))
	}
	if err.Cause != nil {
		attrs = append(attrs, slog.Any("cause", err.Cause))
	}

	slog.LogAttrs(req.Context(), err.logLevel(), "Request failed", attrs...)
}

// WrapHTTPError converts an echo.HTTPError into an Error of the closest type.
func WrapHTTPError(httpErr *echo.HTTPError) *Error {
	message := http.StatusText(httpErr.Code)
	if msg, ok := httpErr.Message.(string); ok && msg != "" {
		message = msg
	}

	err := New(typeForStatus(httpErr.Code), message)
	err.Cause = httpErr.Internal
	return err
}

func typeForStatus(code int) ErrorType {
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusTooManyRequests:
		return TypeValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return TypeUnauthorized
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return TypeNotFound
	case http.StatusConflict:
		return TypeConflict
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return TypeExternal
	default:
		return TypeInternal
	}
}
