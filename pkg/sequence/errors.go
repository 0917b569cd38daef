package sequence

import (
	"errors"
	"fmt"
)

// ErrSessionConsumed is returned when Run is called on a session that has
// already run.
var ErrSessionConsumed = errors.New("sequence: session already ran")

// HostCallFailedError wraps a host-reported failure for one step.
type HostCallFailedError struct {
	StepID string
	Err    error
}

func (e HostCallFailedError) Error() string {
	return fmt.Sprintf("sequence: host call for step %q failed: %v", e.StepID, e.Err)
}

func (e HostCallFailedError) Unwrap() error { return e.Err }

// RollbackIncompleteError indicates that reversing already-created entities
// itself failed. It is fatal to the session: the named entities remain in
// the host's drawing and need operator attention.
type RollbackIncompleteError struct {
	SessionID string
	Remaining map[string]string // step id -> handle
}

func (e RollbackIncompleteError) Error() string {
	return fmt.Sprintf("sequence: session %s rollback incomplete, %d entity(ies) remain in the host",
		e.SessionID, len(e.Remaining))
}

func errUnknownOp(op fmt.Stringer) error {
	return fmt.Errorf("unknown operation kind %s", op)
}
