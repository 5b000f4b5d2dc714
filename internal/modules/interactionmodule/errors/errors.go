// Package errors provides structured error handling for the interaction module.
package errors

import (
	"errors"
	"fmt"

	"github.com/mantonx/moviecat/internal/types"
)

// Sentinel errors for common scenarios
var (
	// ErrInvalidRating indicates a score outside the accepted range
	ErrInvalidRating = types.NewSentinel(types.ErrorCodeValidation, "invalid rating")

	// ErrInvalidInteraction indicates a request without a movie or user
	ErrInvalidInteraction = types.NewSentinel(types.ErrorCodeValidation, "invalid interaction")

	// ErrRatingConflict indicates the rating could not be stored after the
	// configured number of attempts
	ErrRatingConflict = types.NewSentinel(types.ErrorCodeConflict, "already rated, retry as update")

	// ErrDatabaseOperation indicates a storage failure
	ErrDatabaseOperation = types.NewSentinel(types.ErrorCodeDatabase, "interaction storage failure")
)

// InteractionError carries the failing operation alongside the cause
type InteractionError struct {
	Op    string // Operation that failed (e.g., "upsert_rating")
	Err   error  // Sentinel
	Cause error  // Driver error, if any
}

// Error implements the error interface
func (e *InteractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("interaction error in %s: %s: %v", e.Op, e.Err, e.Cause)
	}
	return fmt.Sprintf("interaction error in %s: %s", e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the driver error
func (e *InteractionError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// DatabaseError wraps a driver error
func DatabaseError(op string, cause error) error {
	return &InteractionError{Op: op, Err: ErrDatabaseOperation, Cause: cause}
}

// Conflict wraps a uniqueness violation on the rating key
func Conflict(op string, cause error) error {
	return &InteractionError{Op: op, Err: ErrRatingConflict, Cause: cause}
}

// Invalid builds a 400 error whose message is shown to the caller and which
// still matches sentinel with errors.Is.
func Invalid(sentinel error, message string) *types.AppError {
	e := types.NewValidationError(message)
	e.Cause = sentinel
	return e
}

// IsConflict reports whether err is a rating key conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrRatingConflict)
}
