// Package errors provides structured error handling for the catalog module.
package errors

import (
	"errors"
	"fmt"

	"github.com/mantonx/moviecat/internal/types"
)

// ErrorType classifies catalog errors
type ErrorType string

const (
	ErrorTypeMovie      ErrorType = "movie"
	ErrorTypeSequel     ErrorType = "sequel"
	ErrorTypeDatabase   ErrorType = "database"
	ErrorTypeValidation ErrorType = "validation"
)

// Sentinel errors for common scenarios
var (
	// ErrMovieNotFound indicates no movie matches the id or title
	ErrMovieNotFound = types.NewSentinel(types.ErrorCodeNotFound, "Movie not found")

	// ErrSequelNotFound indicates no sequel matches the id
	ErrSequelNotFound = types.NewSentinel(types.ErrorCodeNotFound, "Sequel not found")

	// ErrInvalidMovie indicates a movie failed validation before persisting
	ErrInvalidMovie = types.NewSentinel(types.ErrorCodeValidation, "invalid movie")

	// ErrInvalidSequel indicates a sequel failed validation before persisting
	ErrInvalidSequel = types.NewSentinel(types.ErrorCodeValidation, "invalid sequel")

	// ErrDatabaseOperation indicates a storage failure
	ErrDatabaseOperation = types.NewSentinel(types.ErrorCodeDatabase, "catalog storage failure")
)

// CatalogError provides structured error information with context
type CatalogError struct {
	Type  ErrorType // Error classification
	Op    string    // Operation that failed (e.g., "find_movie_by_title")
	Key   string    // Title or id involved, if any
	Err   error     // Underlying error
	Cause error     // Driver error behind a storage failure
}

// Error implements the error interface
func (e *CatalogError) Error() string {
	msg := e.Err.Error()
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Key != "" {
		return fmt.Sprintf("%s error in %s [%s]: %s", e.Type, e.Op, e.Key, msg)
	}
	return fmt.Sprintf("%s error in %s: %s", e.Type, e.Op, msg)
}

// Unwrap exposes both the sentinel and the driver error
func (e *CatalogError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// New creates a new CatalogError
func New(errType ErrorType, op string, err error) *CatalogError {
	return &CatalogError{Type: errType, Op: op, Err: err}
}

// WithKey adds the title or id the operation was working on
func (e *CatalogError) WithKey(key string) *CatalogError {
	e.Key = key
	return e
}

// NotFound reports a missing movie or sequel
func NotFound(errType ErrorType, op, key string) *CatalogError {
	sentinel := ErrMovieNotFound
	if errType == ErrorTypeSequel {
		sentinel = ErrSequelNotFound
	}
	return New(errType, op, sentinel).WithKey(key)
}

// DatabaseError wraps a driver error
func DatabaseError(op string, cause error) *CatalogError {
	e := New(ErrorTypeDatabase, op, ErrDatabaseOperation)
	e.Cause = cause
	return e
}

// ValidationError reports invalid input for an operation
func ValidationError(op string, sentinel error, detail string) *CatalogError {
	e := New(ErrorTypeValidation, op, sentinel)
	e.Cause = errors.New(detail)
	return e
}
