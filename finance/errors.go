package finance

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================
// The engine's own computations never fail: malformed records are
// skipped, missing config means a zero budget, and every aggregate
// returns a best-effort value. These errors cover record operations
// and store failures only.

var (
	// ErrEntryNotFound is returned when a referenced financial entry
	// does not exist.
	ErrEntryNotFound = errors.New("financial entry not found")

	// ErrExpenseNotFound is returned when a point expense lookup by
	// id+date misses.
	ErrExpenseNotFound = errors.New("point expense not found")

	// ErrMovementNotFound is returned when a reserve movement lookup by
	// id+date misses.
	ErrMovementNotFound = errors.New("reserve movement not found")

	// ErrNotRecurring is returned when a recurrence operation targets a
	// one-off entry.
	ErrNotRecurring = errors.New("entry is not recurring")

	// ErrInvalidResetDay is returned by write paths for a reset day
	// outside 1-31. Read paths clamp defensively instead.
	ErrInvalidResetDay = errors.New("reset day must be between 1 and 31")
)

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrExpenseNotFound) ||
		errors.Is(err, ErrMovementNotFound)
}
