package errors

import (
	"context"
	"errors"
	"log/slog"
)

// LogDiagnostics writes err and whatever transport detail it carries to the
// default logger. It never fails and never blocks beyond the log handler.
func LogDiagnostics(ctx context.Context, err error, where string) {
	LogDiagnosticsTo(ctx, slog.Default(), err, where)
}

// LogDiagnosticsTo is LogDiagnostics with an explicit logger.
func LogDiagnosticsTo(ctx context.Context, logger *slog.Logger, err error, where string) {
	if err == nil || logger == nil {
		return
	}

	logger.ErrorContext(ctx, "API error", "context", where, "error", err)

	var respErr *ResponseError
	if errors.As(err, &respErr) {
		logger.ErrorContext(ctx, "API error response",
			"context", where,
			"status", respErr.StatusCode,
			"body", string(respErr.Raw),
			"method", respErr.Method,
			"url", respErr.URL,
		)
		return
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		logger.ErrorContext(ctx, "Request was made but no response was received",
			"context", where,
			"method", reqErr.Method,
			"url", reqErr.URL,
			"cause", reqErr.Err,
		)
	}
}
