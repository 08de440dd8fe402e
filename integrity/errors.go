package integrity

import (
	"errors"
	"fmt"
)

// ErrMismatch is wrapped by every *MismatchError.
var ErrMismatch = errors.New("integrity: mismatch")

// MismatchError describes the first disagreement between an index under test
// and the reference result.
type MismatchError struct {
	// Query is the index of the failing query.
	Query int
	// Position is the rank within the sorted result, or -1 for a count mismatch.
	Position int

	ExpectedCount, ActualCount       int
	Expected, Actual                 string
	ExpectedDistance, ActualDistance float64
}

func (e *MismatchError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("integrity: mismatch at %d: expected %d results, got %d",
			e.Query, e.ExpectedCount, e.ActualCount)
	}
	return fmt.Sprintf("integrity: mismatch at %d, %d: expected %s (%g), got %s (%g)",
		e.Query, e.Position, e.Expected, e.ExpectedDistance, e.Actual, e.ActualDistance)
}

func (e *MismatchError) Unwrap() error { return ErrMismatch }
