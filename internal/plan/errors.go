package plan

import (
	"errors"
	"fmt"
)

var (
	// ErrRunNotFound means no run exists with the given id for the user.
	ErrRunNotFound = errors.New("run not found")

	// ErrNotDraft rejects an approve on a run that is not in draft.
	ErrNotDraft = errors.New("run is not in draft")

	// ErrNotApproved rejects an apply on a run that is not approved.
	ErrNotApproved = errors.New("run is not approved")

	// ErrNoPlanDays rejects an apply on a run whose draft has no days.
	ErrNoPlanDays = errors.New("draft has no plan days")
)

// ValidationBlockedError rejects approve/apply while hard-constraint
// violations are outstanding. The violation list is returned unchanged.
type ValidationBlockedError struct {
	Violations []Violation
}

func (e *ValidationBlockedError) Error() string {
	return fmt.Sprintf("blocked by %d hard constraint violation(s)", len(e.Violations))
}

// AsValidationBlocked unwraps err into a ValidationBlockedError if it is one.
func AsValidationBlocked(err error) (*ValidationBlockedError, bool) {
	var blocked *ValidationBlockedError
	if errors.As(err, &blocked) {
		return blocked, true
	}
	return nil, false
}

// GenerationFailedError wraps a generation backend failure. The run's prior
// draft is left untouched when this is returned.
type GenerationFailedError struct {
	Cause error
}

func (e *GenerationFailedError) Error() string {
	return fmt.Sprintf("plan generation failed: %v", e.Cause)
}

func (e *GenerationFailedError) Unwrap() error {
	return e.Cause
}
