// Package correlation threads a request-scoped ID through contexts, HTTP headers
// and log records, so one CLI invocation can be followed into the auth backend.
package correlation

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

const (
	// Header carries the correlation ID across HTTP hops.
	Header = "X-Correlation-ID"

	// LogKey is the attribute name added to every log record.
	LogKey = "correlation_id"

	maxIDLength = 64
)

type ctxKey struct{}

func NewID() string {
	return uuid.NewString()
}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// ID reports the correlation ID stored in ctx. An empty ID counts as absent.
func ID(ctx context.Context) (string, bool) {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id, id != ""
}

// Ensure returns ctx with a correlation ID, generating one if ctx has none.
func Ensure(ctx context.Context) (context.Context, string) {
	if id, ok := ID(ctx); ok {
		return ctx, id
	}
	id := NewID()
	return WithID(ctx, id), id
}

// Inject copies the ID from ctx into h. It is a no-op without one.
func Inject(ctx context.Context, h http.Header) {
	if id, ok := ID(ctx); ok {
		h.Set(Header, id)
	}
}

// FromHeader adopts a well-formed inbound ID from h, or generates a fresh one.
func FromHeader(ctx context.Context, h http.Header) (context.Context, string) {
	if id := h.Get(Header); valid(id) {
		return WithID(ctx, id), id
	}
	return Ensure(ctx)
}

func valid(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}
	for _, r := range id {
		if r < '!' || r > '~' {
			return false
		}
	}
	return true
}

// Handler decorates a slog.Handler with the correlation ID from the record's
// context.
type Handler struct {
	next slog.Handler
}

func NewHandler(next slog.Handler) *Handler {
	return &Handler{next: next}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ID(ctx); ok {
		r = r.Clone()
		r.AddAttrs(slog.String(LogKey, id))
	}
	return h.next.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewHandler(h.next.WithAttrs(attrs))
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return NewHandler(h.next.WithGroup(name))
}
