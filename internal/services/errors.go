package services

import (
	"errors"
	"fmt"

	"github.com/campus-qa/access-control-service/internal/validator"
)

// Sentinel errors forming the service-level taxonomy. Handlers map these to
// HTTP status codes; callers match with errors.Is.
var (
	// ErrValidationFailed covers empty or out-of-range input, rejected
	// before any mutation.
	ErrValidationFailed = errors.New("validation failed")

	// ErrNotFound is the typed absence returned when an operation targets
	// a nonexistent id or identity.
	ErrNotFound = errors.New("not found")

	// ErrDuplicatePending rejects a second elevation request while one is
	// outstanding.
	ErrDuplicatePending = errors.New("a pending access request already exists")

	// ErrAlreadyResolved rejects a resolve on a flag already in its
	// terminal state.
	ErrAlreadyResolved = errors.New("content flag already resolved")

	// ErrConflict signals a lost-update race: the record's status or
	// version changed between read and write.
	ErrConflict = errors.New("record was modified concurrently")

	// ErrForbidden signals that the acting identity's restriction overlay
	// blocks the mutation.
	ErrForbidden = errors.New("identity is restricted from mutating actions")
)

// ValidationFailedError carries per-field details while still matching
// ErrValidationFailed via errors.Is.
type ValidationFailedError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("%v: %v", ErrValidationFailed, e.Errors.Error())
}

func (e *ValidationFailedError) Is(target error) bool {
	return target == ErrValidationFailed
}

// NewValidationError wraps field-level failures into the taxonomy.
func NewValidationError(errs validator.ValidationErrors) error {
	return &ValidationFailedError{Errors: errs}
}
