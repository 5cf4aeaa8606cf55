package state

import (
	"time"

	"github.com/setka-project/medusa/internal/domain"
)

// StateTransition records one move between task states. FromState is nil
// only for a task's first transition. Transitions are immutable once
// appended to a history.
type StateTransition struct {
	FromState  *domain.TaskStatus `json:"from_state"`
	ToState    domain.TaskStatus  `json:"to_state"`
	Timestamp  time.Time          `json:"timestamp"`
	Message    string             `json:"message,omitempty"`
	IsRollback bool               `json:"is_rollback"`
}

// newTransition builds a transition stamped with the current time.
func newTransition(from *domain.TaskStatus, to domain.TaskStatus, message string) StateTransition {
	return StateTransition{
		FromState: from,
		ToState:   to,
		Timestamp: time.Now().UTC(),
		Message:   message,
	}
}

// validate checks the transition against the graph. Initial transitions
// (nil FromState) and rollbacks are always valid.
func (t StateTransition) validate(taskID string) error {
	if t.FromState == nil {
		return nil
	}

	if t.IsRollback {
		return nil
	}

	if !domain.CanTransition(*t.FromState, t.ToState) {
		return &StateTransitionError{
			TaskID: taskID,
			From:   string(*t.FromState),
			To:     string(t.ToState),
		}
	}

	return nil
}

// ToMap serializes the transition for status responses. A nil FromState
// serializes as null.
func (t StateTransition) ToMap() map[string]interface{} {
	var from interface{}
	if t.FromState != nil {
		from = string(*t.FromState)
	}

	m := map[string]interface{}{
		"from_state":  from,
		"to_state":    string(t.ToState),
		"timestamp":   t.Timestamp.Format(time.RFC3339Nano),
		"is_rollback": t.IsRollback,
	}
	if t.Message != "" {
		m["message"] = t.Message
	}
	return m
}
