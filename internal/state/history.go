package state

import (
	"fmt"
	"time"

	"github.com/setka-project/medusa/internal/domain"
)

// StateHistory owns the ordered sequence of transitions for one task.
// It is append-only; rollbacks append rather than rewrite.
type StateHistory struct {
	TaskID      string
	Transitions []StateTransition
}

// NewStateHistory creates an empty history for the given task.
func NewStateHistory(taskID string) *StateHistory {
	return &StateHistory{TaskID: taskID}
}

// CurrentState returns the last transition's target state, or nil if the
// history is empty.
func (h *StateHistory) CurrentState() *domain.TaskStatus {
	if len(h.Transitions) == 0 {
		return nil
	}
	current := h.Transitions[len(h.Transitions)-1].ToState
	return &current
}

// AddTransition validates and appends a transition. The transition's
// FromState must match the current state so histories stay coherent.
func (h *StateHistory) AddTransition(transition StateTransition) error {
	if len(h.Transitions) > 0 {
		current := h.CurrentState()
		if transition.FromState == nil || *transition.FromState != *current {
			return &StateTransitionError{
				TaskID: h.TaskID,
				From:   fromStateLabel(transition.FromState),
				To:     string(transition.ToState),
			}
		}
	}

	if err := transition.validate(h.TaskID); err != nil {
		return err
	}

	h.Transitions = append(h.Transitions, transition)
	return nil
}

// StateDurations sums, per state, the time between each transition and the
// next one; the last interval is closed by the current time.
func (h *StateHistory) StateDurations() map[domain.TaskStatus]time.Duration {
	durations := make(map[domain.TaskStatus]time.Duration)

	if len(h.Transitions) == 0 {
		return durations
	}

	now := time.Now().UTC()
	for i, transition := range h.Transitions {
		end := now
		if i+1 < len(h.Transitions) {
			end = h.Transitions[i+1].Timestamp
		}
		durations[transition.ToState] += end.Sub(transition.Timestamp)
	}

	return durations
}

// RollbackTo appends a rollback transition to a previously-visited state,
// bypassing graph validation. Fails if the target state never appeared in
// the history.
func (h *StateHistory) RollbackTo(
	target domain.TaskStatus,
	message string,
) (StateTransition, error) {
	visited := false
	for _, transition := range h.Transitions {
		if transition.ToState == target {
			visited = true
			break
		}
	}

	if !visited {
		return StateTransition{}, &InvalidStateError{
			TaskID:  h.TaskID,
			Message: fmt.Sprintf("cannot rollback to state %s - not in history", target),
		}
	}

	if message == "" {
		message = fmt.Sprintf("Rollback to %s", target)
	}

	rollback := newTransition(h.CurrentState(), target, message)
	rollback.IsRollback = true

	if err := h.AddTransition(rollback); err != nil {
		return StateTransition{}, err
	}

	return rollback, nil
}

// Serialize returns the transitions as maps, oldest first.
func (h *StateHistory) Serialize() []map[string]interface{} {
	out := make([]map[string]interface{}, len(h.Transitions))
	for i, transition := range h.Transitions {
		out[i] = transition.ToMap()
	}
	return out
}

func fromStateLabel(from *domain.TaskStatus) string {
	if from == nil {
		return "none"
	}
	return string(*from)
}
