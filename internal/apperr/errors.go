// Package apperr defines the typed errors shared by the analysis pipeline, the
// store and the HTTP API.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	ErrInvalidURL       = errors.New("invalid URL")
	ErrHomeUnreachable  = errors.New("store home page unreachable")
	ErrNotFound         = errors.New("not found")
	ErrTooManyURLs      = errors.New("too many URLs")
	ErrTooFewURLs       = errors.New("not enough URLs")
	ErrParseError       = errors.New("failed to parse response")
	ErrStorageFailure   = errors.New("storage failure")
	ErrUnsupportedInput = errors.New("unsupported input")
)

// Code identifies an error condition independently of its message.
type Code string

const (
	CodeNotFound         Code = "NOT_FOUND"
	CodeTimeout          Code = "TIMEOUT"
	CodeValidation       Code = "VALIDATION"
	CodeNetwork          Code = "NETWORK_ERROR"
	CodeParse            Code = "PARSE_ERROR"
	CodeStoreUnreachable Code = "STORE_UNREACHABLE"
	CodeStorage          Code = "STORAGE_ERROR"
	CodeInternal         Code = "INTERNAL"
)

// Error wraps an underlying error with a code and optional details.
type Error struct {
	Code       Code
	Message    string
	Underlying error
	Retry      bool
	Details    map[string]interface{}
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is matches another *Error by code, or falls through to the wrapped error.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// New creates an Error.
func New(code Code, message string, err error) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
		Details:    make(map[string]interface{}),
	}
}

// Validation is shorthand for a CodeValidation error wrapping ErrInvalidURL or similar.
func Validation(message string, err error) *Error {
	return New(CodeValidation, message, err)
}

// WithRetry marks the error as retryable.
func (e *Error) WithRetry() *Error {
	e.Retry = true
	return e
}

// WithDetail attaches a key/value pair to the error.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	e.Details[key] = value
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInvalidURL), errors.Is(err, ErrTooManyURLs), errors.Is(err, ErrTooFewURLs):
		return CodeValidation
	case errors.Is(err, ErrHomeUnreachable):
		return CodeStoreUnreachable
	}
	return CodeInternal
}

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeStoreUnreachable, CodeNetwork:
		return http.StatusBadGateway
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
