package errors

import (
	"context"
	"errors"
	"net"
	"net/url"
)

const (
	ConnectivityMessage = "Unable to connect to the server. Please check your internet connection."
	FallbackMessage     = "An unexpected error occurred. Please try again later."
)

// ErrorKind classifies an error for user-facing presentation.
type ErrorKind string

const (
	// KindAPI is a server answer with a structured body.
	KindAPI ErrorKind = "api"
	// KindConnectivity is a request that never got a response.
	KindConnectivity ErrorKind = "connectivity"
	// KindGeneric is any other error with a message.
	KindGeneric ErrorKind = "generic"
	// KindUnknown is a recovered non-error value or an error without a message.
	KindUnknown ErrorKind = "unknown"
)

// UserError is an error reduced to the message shown to the user.
type UserError struct {
	Message string
	Kind    ErrorKind
	Cause   error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

// Normalize maps err to a UserError. It returns nil for a nil error.
// An error that is already a UserError is returned unchanged.
func Normalize(err error) *UserError {
	if err == nil {
		return nil
	}

	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr
	}

	kind, msg := classify(err)
	return &UserError{Message: msg, Kind: kind, Cause: err}
}

// Message returns the user-facing message for err, or "" for nil.
func Message(err error) string {
	if ue := Normalize(err); ue != nil {
		return ue.Message
	}
	return ""
}

// Kind returns the category of err. A nil error has no kind.
func Kind(err error) ErrorKind {
	if ue := Normalize(err); ue != nil {
		return ue.Kind
	}
	return ""
}

func classify(err error) (ErrorKind, string) {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		if respErr.Body.Message != "" {
			return KindAPI, respErr.Body.Message
		}
		if respErr.Body.Details != "" {
			return KindAPI, respErr.Body.Details
		}
		return KindGeneric, respErr.Error()
	}

	if isConnectivity(err) {
		return KindConnectivity, ConnectivityMessage
	}

	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		if _, ok := panicErr.Value.(error); !ok {
			return KindUnknown, FallbackMessage
		}
	}

	if msg := err.Error(); msg != "" {
		return KindGeneric, msg
	}
	return KindUnknown, FallbackMessage
}

func isConnectivity(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
