package state

import (
	"errors"
	"fmt"
)

// Common state machine errors.
var (
	// ErrInvalidState is returned for invalid state operations: unknown
	// task IDs, duplicate initialization, or rollback targets that never
	// appeared in the task's history.
	ErrInvalidState = errors.New("invalid state operation")

	// ErrStateTransition is returned when a transition violates the
	// transition graph.
	ErrStateTransition = errors.New("invalid state transition")
)

// InvalidStateError wraps ErrInvalidState with the task ID and detail.
type InvalidStateError struct {
	TaskID  string
	Message string
}

// Error implements the error interface.
func (e *InvalidStateError) Error() string {
	if e.TaskID != "" {
		return fmt.Sprintf("task %s: %s", e.TaskID, e.Message)
	}
	return e.Message
}

// Unwrap returns ErrInvalidState so errors.Is works.
func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidState
}

// StateTransitionError wraps ErrStateTransition with the offending edge.
type StateTransitionError struct {
	TaskID string
	From   string
	To     string
}

// Error implements the error interface.
func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("task %s: invalid state transition from %s to %s", e.TaskID, e.From, e.To)
}

// Unwrap returns ErrStateTransition so errors.Is works.
func (e *StateTransitionError) Unwrap() error {
	return ErrStateTransition
}
