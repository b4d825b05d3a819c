package errors

import (
	"net/http"

	"passport/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types. These are the only failure kinds the engine and
// the gateway ever surface; the HTTP boundary maps them verbatim.
var (
	// ErrInvalidInput covers malformed emails and missing required fields.
	ErrInvalidInput = NewBaseError(
		http.StatusBadRequest,
		"INVALID_INPUT",
		"name, email and password are required and the email must be valid",
		"",
	)

	// ErrDuplicateEmail is returned when a password-method account already
	// owns the email being signed up.
	ErrDuplicateEmail = NewBaseError(
		http.StatusBadRequest,
		"DUPLICATE_EMAIL",
		"this email is already in use",
		"",
	)

	// ErrMethodConflict is returned when the attempted login path does not
	// match the authMethod recorded for the email.
	ErrMethodConflict = NewBaseError(
		http.StatusBadRequest,
		"METHOD_CONFLICT",
		"this email was registered via Google sign-in; use that method",
		"",
	)

	// ErrInvalidCredentials deliberately carries the same message for an
	// unknown email and a wrong password, to avoid account enumeration.
	ErrInvalidCredentials = NewBaseError(
		http.StatusBadRequest,
		"INVALID_CREDENTIALS",
		"invalid email or password",
		"",
	)

	// ErrUnauthorized covers a missing, malformed or expired bearer token.
	ErrUnauthorized = NewBaseError(
		http.StatusUnauthorized,
		"UNAUTHORIZED",
		"invalid or expired token",
		"",
	)

	// ErrNotFound is returned when a resolved subject no longer exists.
	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"user not found",
		"",
	)

	// ErrServerFault hides store, hash and signing infrastructure failures
	// behind a generic, non-leaking message.
	ErrServerFault = NewBaseError(
		http.StatusInternalServerError,
		"SERVER_FAULT",
		"something went wrong, please try again later",
		"",
	)
)

// StoreExecuteError represents a storage execution failure, implementing the
// AppError interface. The wrapped cause stays server-side; clients only ever
// see the generic message.
type StoreExecuteError struct {
	err     error
	details string
}

// NewStoreExecuteError creates a storage-related error
func NewStoreExecuteError(err error, details string) AppError {
	return &StoreExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *StoreExecuteError) Error() string {
	return errors.Wrap(e.err, "store execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *StoreExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *StoreExecuteError) ErrorCode() string {
	return "SERVER_FAULT"
}

// Message returns the user-friendly error message
func (e *StoreExecuteError) Message() string {
	return "something went wrong, please try again later"
}

// Details returns detailed error information
func (e *StoreExecuteError) Details() string {
	return e.details
}

// Unwrap exposes the underlying cause for errors.Is checks in tests.
func (e *StoreExecuteError) Unwrap() error {
	return e.err
}
