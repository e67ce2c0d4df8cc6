package chat

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a referenced agent, session or participant
// does not exist. It is never silently defaulted: an unknown agent is a
// distinct signal from an inactive one.
var ErrNotFound = errors.New("not found")

// InvalidTransitionError rejects a session state change that is not on
// the waiting -> running -> closed path. The session is left unchanged.
type InvalidTransitionError struct {
	SessionID string
	From      string
	To        string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("session %s: invalid transition %s -> %s", e.SessionID, e.From, e.To)
}

// PartialFailureError reports the participants a broadcast could not be
// delivered to. Delivery to the remaining participants succeeded; the
// caller decides whether to retry or surface the failure.
type PartialFailureError struct {
	SessionID string
	Failed    []string
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("session %s: delivery failed for %d participant(s): %s",
		e.SessionID, len(e.Failed), strings.Join(e.Failed, ", "))
}
