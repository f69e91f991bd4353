package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// Sentinel errors surfaced by repository implementations. Services translate
// them into their own taxonomy; handlers never see these directly.
var (
	// ErrNotFound signals that the targeted row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrStaleVersion signals that a compare-and-swap update matched zero
	// rows: the expected status/version was no longer current.
	ErrStaleVersion = errors.New("stale version: record was modified concurrently")
)

// IsNotFoundError reports whether err is a missing-record condition from
// either this package or gorm itself.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsConflictError reports whether err is a lost-update condition.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrStaleVersion)
}
