package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code classifies an error for transport. Handlers never pick status codes
// themselves; they return a typed error and the response writer maps it.
type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeRateLimit    Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeUpstream     Code = "UPSTREAM_ERROR"
	CodeDependency   Code = "DEPENDENCY_ERROR"
)

// Metadata is the transport contract of a Code.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var registry = map[Code]Metadata{
	CodeValidation:   {http.StatusBadRequest, false, "validation failed", true},
	CodeUnauthorized: {http.StatusUnauthorized, false, "authentication required", false},
	CodeForbidden:    {http.StatusForbidden, false, "access denied", false},
	CodeNotFound:     {http.StatusNotFound, false, "resource not found", false},
	CodeConflict:     {http.StatusConflict, false, "conflict detected", false},
	CodeRateLimit:    {http.StatusTooManyRequests, false, "rate limit exceeded", false},
	CodeInternal:     {http.StatusInternalServerError, true, "internal server error", false},
	// upstream failures (OpenAI, the catalog, image hosts) surface as 500 with the cause attached
	CodeUpstream:   {http.StatusInternalServerError, true, "upstream request failed", true},
	CodeDependency: {http.StatusServiceUnavailable, true, "dependency unavailable", true},
}

// MetadataFor falls back to the CodeInternal contract for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := registry[code]; ok {
		return meta
	}
	return registry[CodeInternal]
}

// Error is the typed error returned across service boundaries. Values are
// treated as immutable once returned; WithDetails copies.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches cause to a typed error. A nil cause yields a plain New.
func Wrap(code Code, cause error, message string) *Error {
	return &Error{code: code, message: message, cause: cause}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails returns a copy of e carrying details.
func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	cp := *e
	cp.details = details
	return &cp
}

// Cause is the wrapped error's text, or "" when nothing is wrapped.
func (e *Error) Cause() string {
	if e == nil || e.cause == nil {
		return ""
	}
	return e.cause.Error()
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	default:
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf is CodeInternal for untyped errors.
func CodeOf(err error) Code {
	return As(err).Code()
}

// HasCode reports whether err carries code.
func HasCode(err error, code Code) bool {
	return As(err) != nil && CodeOf(err) == code
}
