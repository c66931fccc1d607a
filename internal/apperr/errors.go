// Package apperr defines the error kinds shared by the feed pipeline and the image proxy.
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrAuth          = errors.New("authentication error")
	ErrUpstream      = errors.New("upstream error")
	ErrNotFound      = errors.New("not found")
	ErrBadRequest    = errors.New("bad request")
)

// Error carries a kind, a message safe to show to clients and an optional cause
type Error struct {
	Kind  error
	msg   string
	cause error
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is lets errors.Is match the kind as well as anything in the cause chain
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// WithCause attaches the underlying error
func (e *Error) WithCause(c error) *Error {
	e.cause = c
	return e
}

func Configuration(m string) *Error { return &Error{Kind: ErrConfiguration, msg: m} }
func Auth(m string) *Error          { return &Error{Kind: ErrAuth, msg: m} }
func Upstream(m string) *Error      { return &Error{Kind: ErrUpstream, msg: m} }
func NotFound(m string) *Error      { return &Error{Kind: ErrNotFound, msg: m} }
func BadRequest(m string) *Error    { return &Error{Kind: ErrBadRequest, msg: m} }

// Trace renders the error followed by its cause chain, for server-side logs only
func Trace(err error) string {
	if err == nil {
		return ""
	}
	b := &strings.Builder{}
	b.WriteString(err.Error())
	for c := errors.Unwrap(err); c != nil; c = errors.Unwrap(c) {
		b.WriteString("\nCaused by: ")
		b.WriteString(c.Error())
	}
	return b.String()
}

// ErrorResponse is the HTTP translation of an error
type ErrorResponse struct {
	StatusCode int
	Message    string
}

// GetErrorResponse returns the status code and message for an error.
// Bad request and not found messages are written by this service and safe to echo back.
func GetErrorResponse(err error) ErrorResponse {
	switch {
	case errors.Is(err, ErrBadRequest):
		return ErrorResponse{http.StatusBadRequest, err.Error()}
	case errors.Is(err, ErrNotFound):
		return ErrorResponse{http.StatusNotFound, err.Error()}
	case errors.Is(err, ErrConfiguration):
		return ErrorResponse{http.StatusInternalServerError, "Service is not configured"}
	case errors.Is(err, ErrAuth):
		return ErrorResponse{http.StatusInternalServerError, "Failed to authenticate with the photo provider"}
	case errors.Is(err, ErrUpstream):
		return ErrorResponse{http.StatusInternalServerError, "Photo provider request failed"}
	default:
		return ErrorResponse{http.StatusInternalServerError, "An unexpected error occurred"}
	}
}
