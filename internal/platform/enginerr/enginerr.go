package enginerr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the generic sentinel for missing rows.
	ErrNotFound = errors.New("not found")
	// ErrRunInProgress is returned when a second optimization run is
	// triggered while one is live. The trigger is rejected, not queued.
	ErrRunInProgress = errors.New("optimization run already in progress")
)

// ValidationError flags bad declarative input, e.g. a malformed trigger
// pattern on a linking rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidTransition is returned for any state-machine move not listed in the
// lifecycle tables. It is always surfaced to the caller.
type InvalidTransition struct {
	Entity string
	ID     string
	From   string
	To     string
}

func (e *InvalidTransition) Error() string {
	return fmt.Sprintf("invalid %s transition %s -> %s (id=%s)", e.Entity, e.From, e.To, e.ID)
}

// ConcurrencyConflict is an optimistic-lock miss: the row moved out of the
// expected state between read and conditional update. Expected under
// concurrent admin review; callers may retry.
type ConcurrencyConflict struct {
	Entity   string
	ID       string
	Expected string
}

func (e *ConcurrencyConflict) Error() string {
	return fmt.Sprintf("%s %s no longer in state %q", e.Entity, e.ID, e.Expected)
}

// CollaboratorError wraps a failure from an external collaborator (analytics,
// content generator, page store). Timeout marks deadline exceedance so the
// run report can distinguish slow collaborators from broken ones.
type CollaboratorError struct {
	Collaborator string
	Op           string
	Timeout      bool
	Err          error
}

func (e *CollaboratorError) Error() string {
	kind := "error"
	if e.Timeout {
		kind = "timeout"
	}
	return fmt.Sprintf("%s %s %s: %v", e.Collaborator, e.Op, kind, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

func IsInvalidTransition(err error) bool {
	var t *InvalidTransition
	return errors.As(err, &t)
}

func IsConcurrencyConflict(err error) bool {
	var c *ConcurrencyConflict
	return errors.As(err, &c)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
