package core

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the closed set of failures surfaced to API callers.
type ErrorKind int

const (
	ErrorKindUnexpected ErrorKind = iota
	ErrorKindInvalidVendor
	ErrorKindInvalidModel
	ErrorKindUpstream
	ErrorKindValidation
)

// String returns the kind name used in logs.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindInvalidVendor:
		return "invalid_vendor"
	case ErrorKindInvalidModel:
		return "invalid_model"
	case ErrorKindUpstream:
		return "upstream_error"
	case ErrorKindValidation:
		return "validation_error"
	default:
		return "unexpected_error"
	}
}

// StatusCode maps the kind to its HTTP status.
func (k ErrorKind) StatusCode() int {
	switch k {
	case ErrorKindInvalidVendor, ErrorKindInvalidModel:
		return http.StatusBadRequest
	case ErrorKindValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// APIError is a classified error whose Message is safe to return to callers.
type APIError struct {
	Kind    ErrorKind
	Message string
	Label   string // batch format label that failed, if any
	Cause   error
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Unwrap supports errors.Is/As
func (e *APIError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status for the error
func (e *APIError) StatusCode() int {
	return e.Kind.StatusCode()
}

// NewAPIError creates a classified error
func NewAPIError(kind ErrorKind, cause error, format string, args ...any) *APIError {
	return &APIError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// WithLabel returns a copy of the error attributed to a batch format label
func (e *APIError) WithLabel(label string) *APIError {
	clone := *e
	clone.Label = label
	return &clone
}

// ErrInvalidVendor is returned for an unknown {vendor} path segment
func ErrInvalidVendor(vendor string) *APIError {
	return NewAPIError(ErrorKindInvalidVendor, nil,
		"Invalid vendor: %s. Must be 'anthropic' or 'google'.", vendor)
}

// ErrInvalidModel is returned when a vendor rejects the model identifier
func ErrInvalidModel(model string, cause error) *APIError {
	return NewAPIError(ErrorKindInvalidModel, cause, "Invalid model: %s", model)
}

// ErrUpstream wraps any other vendor-side failure
func ErrUpstream(cause error, format string, args ...any) *APIError {
	return NewAPIError(ErrorKindUpstream, cause, format, args...)
}

// ErrValidation is returned for malformed request bodies
func ErrValidation(cause error) *APIError {
	return NewAPIError(ErrorKindValidation, cause, "Invalid request body: %v", cause)
}

// ErrUnexpected wraps an unclassified failure with the operation name
func ErrUnexpected(operation string, cause error) *APIError {
	return NewAPIError(ErrorKindUnexpected, cause, "Unexpected error %s: %v", operation, cause)
}

// AsAPIError extracts a classified error from err's chain
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
