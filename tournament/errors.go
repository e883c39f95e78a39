package tournament

import "fmt"

// ValidationReason classifies a slot verification failure. These are
// user-correctable: the UI shows the message inline and the flow continues.
type ValidationReason string

const (
	ReasonEmpty      ValidationReason = "empty"
	ReasonSelf       ValidationReason = "self"
	ReasonDuplicate  ValidationReason = "duplicate"
	ReasonNotFound   ValidationReason = "not_found"
	ReasonConnection ValidationReason = "connection"
)

type ValidationError struct {
	Slot   int
	Reason ValidationReason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("slot %d: validation failed (%s)", e.Slot, e.Reason)
}

func newValidationError(slot int, reason ValidationReason) *ValidationError {
	return &ValidationError{Slot: slot, Reason: reason}
}

// InvariantError signals a precondition violation that should not occur under
// correct call sequencing. It aborts the operation that detected it.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "tournament invariant violated: " + e.Msg
}

// StateError signals an operation attempted against a terminal tournament.
type StateError string

func (e StateError) Error() string {
	return "tournament state error: " + string(e)
}

const ErrNoCurrentMatch = StateError("no_current_match")
