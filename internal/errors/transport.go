package errors

import (
	"fmt"
)

// ResponseBody is the structured error body returned by the auth API.
type ResponseBody struct {
	Message string `json:"message"`
	Details string `json:"details"`
	Code    string `json:"code"`
}

// ResponseError is a transport failure for which the server did answer,
// with a non-2xx status.
type ResponseError struct {
	Method     string
	URL        string
	StatusCode int
	Body       ResponseBody
	// Raw holds the undecoded body, kept for diagnostics.
	Raw []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

// RequestError is a transport failure where no response was received:
// connection refused, DNS failure, timeout.
type RequestError struct {
	Method string
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// PanicError carries a value recovered from a panic.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
