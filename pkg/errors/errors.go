package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeInvalidParameter indicates a malformed or out-of-range request parameter
	ErrorTypeInvalidParameter ErrorType = "INVALID_PARAMETER"

	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeStoreUnavailable indicates the data store could not be reached or timed out
	ErrorTypeStoreUnavailable ErrorType = "STORE_UNAVAILABLE"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	// Op names the operation that failed, e.g. "ListPractitioners".
	Op string
	// Snapshot is a printable copy of the filter the operation ran with.
	Snapshot string
	Err      error
}

// Error implements the error interface
func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Snapshot != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Snapshot)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext returns a copy of the error annotated with an operation name and filter snapshot.
func (e *AppError) WithContext(op, snapshot string) *AppError {
	out := *e
	out.Op = op
	out.Snapshot = snapshot
	return &out
}

// NewInvalidParameterError creates a new invalid parameter error
func NewInvalidParameterError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidParameter,
		Message: message,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewStoreUnavailableError creates a new store unavailable error
func NewStoreUnavailableError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeStoreUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// As returns the first *AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal for untyped errors.
func TypeOf(err error) ErrorType {
	if appErr, ok := As(err); ok {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsNotFound reports whether err is a NOT_FOUND error
func IsNotFound(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeNotFound
}

// IsInvalidParameter reports whether err is an INVALID_PARAMETER error
func IsInvalidParameter(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeInvalidParameter
}

// IsStoreUnavailable reports whether err is a STORE_UNAVAILABLE error
func IsStoreUnavailable(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeStoreUnavailable
}
