// Package types provides common error types for proper error propagation
package types

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized error codes across the application
type ErrorCode string

const (
	ErrorCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrorCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrorCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrorCodeConflict   ErrorCode = "CONFLICT"
	ErrorCodeDatabase   ErrorCode = "DATABASE_ERROR"
	ErrorCodeUpstream   ErrorCode = "UPSTREAM_ERROR"
	ErrorCodeTimeout    ErrorCode = "TIMEOUT"
	ErrorCodeCancelled  ErrorCode = "CANCELLED"
)

// Category errors. Module sentinels and AppErrors match these with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrDatabase   = errors.New("database failure")
	ErrUpstream   = errors.New("upstream failure")
)

var categories = map[ErrorCode]error{
	ErrorCodeNotFound:   ErrNotFound,
	ErrorCodeValidation: ErrValidation,
	ErrorCodeConflict:   ErrConflict,
	ErrorCodeDatabase:   ErrDatabase,
	ErrorCodeUpstream:   ErrUpstream,
}

// ErrorSeverity indicates the severity of an error
type ErrorSeverity string

const (
	SeverityInfo     ErrorSeverity = "info"
	SeverityWarning  ErrorSeverity = "warning"
	SeverityError    ErrorSeverity = "error"
	SeverityCritical ErrorSeverity = "critical"
)

// Sentinel is a comparable module error that belongs to one category.
type Sentinel struct {
	Code    ErrorCode
	Message string
}

// NewSentinel declares a sentinel error for a category code.
func NewSentinel(code ErrorCode, message string) *Sentinel {
	return &Sentinel{Code: code, Message: message}
}

func (s *Sentinel) Error() string {
	return s.Message
}

// Is reports whether target is the category this sentinel belongs to
func (s *Sentinel) Is(target error) bool {
	return target != nil && categories[s.Code] == target
}

// AppError represents a structured error with metadata
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Severity   ErrorSeverity          `json:"severity"`
	HTTPStatus int                    `json:"http_status"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	RequestID  string                 `json:"request_id,omitempty"`

	Cause error `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches the category error for the code
func (e *AppError) Is(target error) bool {
	return target != nil && categories[e.Code] == target
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRequestID adds a request ID to the error
func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Severity:   SeverityError,
		HTTPStatus: httpStatus,
		Timestamp:  time.Now(),
	}
}

// NewAppErrorWithCause creates an error with an underlying cause
func NewAppErrorWithCause(code ErrorCode, message string, httpStatus int, cause error) *AppError {
	err := NewAppError(code, message, httpStatus)
	err.Cause = cause
	return err
}

// NewValidationError creates a validation error
func NewValidationError(message string, details ...string) *AppError {
	err := NewAppError(ErrorCodeValidation, message, http.StatusBadRequest)
	if len(details) > 0 {
		err.Details = details[0]
	}
	err.Severity = SeverityWarning
	return err
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string, id string) *AppError {
	err := NewAppError(
		ErrorCodeNotFound,
		fmt.Sprintf("%s not found", resource),
		http.StatusNotFound,
	).WithContext("resource", resource)
	if id != "" {
		err.WithContext("id", id)
	}
	err.Severity = SeverityInfo
	return err
}

// NewConflictError creates a conflict error
func NewConflictError(message string, cause error) *AppError {
	err := NewAppErrorWithCause(ErrorCodeConflict, message, http.StatusConflict, cause)
	err.Severity = SeverityWarning
	return err
}

// NewDatabaseError creates a storage failure error
func NewDatabaseError(message string, cause error) *AppError {
	return NewAppErrorWithCause(ErrorCodeDatabase, message, http.StatusInternalServerError, cause)
}

// NewUpstreamError creates an error for a failing external service
func NewUpstreamError(message string, cause error) *AppError {
	return NewAppErrorWithCause(ErrorCodeUpstream, message, http.StatusBadGateway, cause)
}

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *AppError {
	err := NewAppErrorWithCause(ErrorCodeInternal, message, http.StatusInternalServerError, cause)
	err.Severity = SeverityCritical
	return err
}

// HTTPStatusFromErrorCode maps error codes to HTTP status codes
func HTTPStatusFromErrorCode(code ErrorCode) int {
	switch code {
	case ErrorCodeValidation:
		return http.StatusBadRequest
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeConflict:
		return http.StatusConflict
	case ErrorCodeUpstream:
		return http.StatusBadGateway
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrorCodeCancelled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func severityFor(code ErrorCode) ErrorSeverity {
	switch code {
	case ErrorCodeNotFound:
		return SeverityInfo
	case ErrorCodeValidation, ErrorCodeConflict, ErrorCodeCancelled:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// FromError converts any error into an AppError. AppErrors are returned
// unchanged; errors carrying a Sentinel take its code and message.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var sentinel *Sentinel
	if errors.As(err, &sentinel) {
		e := NewAppErrorWithCause(sentinel.Code, sentinel.Message, HTTPStatusFromErrorCode(sentinel.Code), err)
		e.Severity = severityFor(sentinel.Code)
		return e
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewAppErrorWithCause(ErrorCodeTimeout, "operation timed out", http.StatusGatewayTimeout, err)
	case errors.Is(err, context.Canceled):
		e := NewAppErrorWithCause(ErrorCodeCancelled, "operation cancelled", http.StatusRequestTimeout, err)
		e.Severity = SeverityWarning
		return e
	}

	for code, category := range categories {
		if errors.Is(err, category) {
			e := NewAppErrorWithCause(code, category.Error(), HTTPStatusFromErrorCode(code), err)
			e.Severity = severityFor(code)
			return e
		}
	}

	return NewInternalError("internal server error", err)
}
