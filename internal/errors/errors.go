// Package errors provides structured error handling for both sides of the auth API.
//
// Server side, Error carries a type and a user-facing message and maps to an HTTP
// status. Client side, ResponseError and RequestError describe transport failures,
// and Normalize collapses any error into a single user-facing message.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// ErrorType categorises a server-side error. It is sent to clients as "code".
type ErrorType string

const (
	TypeValidation   ErrorType = "validation"
	TypeUnauthorized ErrorType = "unauthorized"
	TypeNotFound     ErrorType = "not_found"
	TypeConflict     ErrorType = "conflict"
	TypeInternal     ErrorType = "internal"
	TypeExternal     ErrorType = "external"
)

var statusByType = map[ErrorType]int{
	TypeValidation:   http.StatusBadRequest,
	TypeUnauthorized: http.StatusUnauthorized,
	TypeNotFound:     http.StatusNotFound,
	TypeConflict:     http.StatusConflict,
	TypeInternal:     http.StatusInternalServerError,
	TypeExternal:     http.StatusBadGateway,
}

// logLevelByType keeps client mistakes out of the error log.
var logLevelByType = map[ErrorType]slog.Level{
	TypeValidation:   slog.LevelInfo,
	TypeUnauthorized: slog.LevelInfo,
	TypeNotFound:     slog.LevelInfo,
	TypeConflict:     slog.LevelWarn,
	TypeInternal:     slog.LevelError,
	TypeExternal:     slog.LevelError,
}

// Error is a handler failure with a message safe to show to the caller. Cause
// is logged but never sent.
type Error struct {
	Type    ErrorType
	Message string
	Details string
	Field   string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the type to a status code. Unknown types are 500.
func (e *Error) HTTPStatus() int {
	if status, ok := statusByType[e.Type]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (e *Error) logLevel() slog.Level {
	if level, ok := logLevelByType[e.Type]; ok {
		return level
	}
	return slog.LevelError
}

func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

func Wrap(t ErrorType, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause}
}

func ValidationError(message string) *Error   { return New(TypeValidation, message) }
func UnauthorizedError(message string) *Error { return New(TypeUnauthorized, message) }
func NotFoundError(message string) *Error     { return New(TypeNotFound, message) }
func ConflictError(message string) *Error     { return New(TypeConflict, message) }

func InternalError(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}

func ExternalError(message string, cause error) *Error {
	return Wrap(TypeExternal, message, cause)
}

// WithDetails sets the secondary explanation sent as "details".
func (e *Error) WithDetails(details string) *Error {
	e.Details = details
	return e
}

// WithField names the request field a validation error is about.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// ErrorResponse is the JSON body sent to clients. ResponseBody on the client
// side decodes the same shape.
type ErrorResponse struct {
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Field   string    `json:"field,omitempty"`
	Code    ErrorType `json:"code"`
}

func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Details: e.Details,
		Field:   e.Field,
		Code:    e.Type,
	}
}

// AsStructuredError finds an *Error in err's chain. Anything else becomes an
// internal error whose message hides the cause.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structured *Error
	if errors.As(err, &structured) {
		return structured
	}
	return InternalError("internal server error", err)
}
