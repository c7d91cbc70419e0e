package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents application-specific error codes
type ErrorCode string

const (
	// ErrCodeConfiguration indicates deployment misconfiguration, such
	// as a missing secret, sender or recipient.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"

	// ErrCodeInvalidRequest indicates an unreadable or unparseable
	// request body.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	// ErrCodeDispatchFailed indicates the mail relay connection, auth
	// or send failed. There is no automatic retry; the webhook origin
	// may redeliver.
	ErrCodeDispatchFailed ErrorCode = "DISPATCH_FAILED"

	// ErrCodeInternal covers everything unexpected.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// AppError represents an application error with additional context
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Err        error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new application error
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getStatusCodeForError(code),
	}
}

// Wrap wraps an existing error with application context
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getStatusCodeForError(code),
		Err:        err,
	}
}

// From extracts an AppError from err, wrapping anything unexpected as
// an internal error so callers always get a code and status to act on.
func From(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return InternalError(err)
}

// getStatusCodeForError maps error codes to HTTP status codes
func getStatusCodeForError(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeDispatchFailed:
		return http.StatusBadGateway
	case ErrCodeConfiguration, ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors for convenience

// ConfigError creates a configuration error
func ConfigError(message string) *AppError {
	return New(ErrCodeConfiguration, message)
}

// InvalidRequest creates an invalid request error
func InvalidRequest(message string) *AppError {
	return New(ErrCodeInvalidRequest, message)
}

// DispatchFailed creates a dispatch failed error
func DispatchFailed(err error) *AppError {
	return Wrap(err, ErrCodeDispatchFailed, "Failed to send notification email")
}

// InternalError creates an internal server error
func InternalError(err error) *AppError {
	return Wrap(err, ErrCodeInternal, "Internal server error")
}
