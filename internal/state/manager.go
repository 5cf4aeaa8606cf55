package state

import (
	"log/slog"
	"sync"
	"time"

	"github.com/setka-project/medusa/internal/domain"
)

// TaskStateManager owns the state histories of all tracked tasks and is the
// only way transitions are recorded. Concurrent transitions on the same task
// ID are not a supported scenario; callers serialize per task.
type TaskStateManager struct {
	mu        sync.Mutex
	histories map[string]*StateHistory
	events    *StateEventSystem
	logger    *slog.Logger
}

// NewTaskStateManager creates an empty manager with its own event system.
func NewTaskStateManager(logger *slog.Logger) *TaskStateManager {
	return &TaskStateManager{
		histories: make(map[string]*StateHistory),
		events:    NewStateEventSystem(logger),
		logger:    logger.With(slog.String("component", "task_state_manager")),
	}
}

// InitializeTask records a task's first transition (from nil). Fails if the
// task already has history.
func (m *TaskStateManager) InitializeTask(taskID string, initial domain.TaskStatus) error {
	m.mu.Lock()
	if _, exists := m.histories[taskID]; exists {
		m.mu.Unlock()
		return &InvalidStateError{TaskID: taskID, Message: "task already exists"}
	}

	history := NewStateHistory(taskID)
	transition := newTransition(nil, initial, "")
	if err := history.AddTransition(transition); err != nil {
		m.mu.Unlock()
		return err
	}

	m.histories[taskID] = history
	m.mu.Unlock()

	m.events.EmitStateChange(taskID, transition)
	m.logger.Info("initialized task", "task_id", taskID, "state", string(initial))
	return nil
}

// TransitionState moves a task to a new state, validating the transition
// graph against its current state. Returns the recorded transition.
func (m *TaskStateManager) TransitionState(
	taskID string,
	to domain.TaskStatus,
	message string,
) (StateTransition, error) {
	m.mu.Lock()
	history, exists := m.histories[taskID]
	if !exists {
		m.mu.Unlock()
		return StateTransition{}, &InvalidStateError{TaskID: taskID, Message: "task not found"}
	}

	current := history.CurrentState()
	transition := newTransition(current, to, message)
	if err := history.AddTransition(transition); err != nil {
		m.mu.Unlock()
		return StateTransition{}, err
	}
	m.mu.Unlock()

	m.events.EmitStateChange(taskID, transition)
	m.logger.Info("task state changed",
		"task_id", taskID,
		"from", fromStateLabel(current),
		"to", string(to))
	return transition, nil
}

// RollbackTask reverts a task to a previously-visited state, bypassing graph
// validation. Fails if the task is unknown or the target state never
// appeared in its history.
func (m *TaskStateManager) RollbackTask(
	taskID string,
	target domain.TaskStatus,
	message string,
) (StateTransition, error) {
	m.mu.Lock()
	history, exists := m.histories[taskID]
	if !exists {
		m.mu.Unlock()
		return StateTransition{}, &InvalidStateError{TaskID: taskID, Message: "task not found"}
	}

	rollback, err := history.RollbackTo(target, message)
	if err != nil {
		m.mu.Unlock()
		return StateTransition{}, err
	}
	m.mu.Unlock()

	m.events.EmitStateChange(taskID, rollback)
	m.logger.Info("task rolled back", "task_id", taskID, "to", string(target))
	return rollback, nil
}

// CurrentState returns the task's current state.
func (m *TaskStateManager) CurrentState(taskID string) (domain.TaskStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history, exists := m.histories[taskID]
	if !exists {
		return "", &InvalidStateError{TaskID: taskID, Message: "task not found"}
	}

	current := history.CurrentState()
	if current == nil {
		return "", &InvalidStateError{TaskID: taskID, Message: "task has no state history"}
	}

	return *current, nil
}

// TaskHistory returns the task's complete state history.
func (m *TaskStateManager) TaskHistory(taskID string) (*StateHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history, exists := m.histories[taskID]
	if !exists {
		return nil, &InvalidStateError{TaskID: taskID, Message: "task not found"}
	}

	return history, nil
}

// StateDurations returns how long the task has spent in each state.
func (m *TaskStateManager) StateDurations(
	taskID string,
) (map[domain.TaskStatus]time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history, exists := m.histories[taskID]
	if !exists {
		return nil, &InvalidStateError{TaskID: taskID, Message: "task not found"}
	}

	return history.StateDurations(), nil
}

// RegisterListener adds a listener for transitions into the given state.
func (m *TaskStateManager) RegisterListener(state domain.TaskStatus, listener StateListener) {
	m.events.RegisterListener(state, listener)
}

// UnregisterListener removes a listener for the given state.
func (m *TaskStateManager) UnregisterListener(state domain.TaskStatus, listener StateListener) {
	m.events.UnregisterListener(state, listener)
}

// CleanupOldTasks drops histories whose last transition is older than
// maxAge and returns the number removed.
func (m *TaskStateManager) CleanupOldTasks(maxAge time.Duration) int {
	cutoff := time.Now().UTC().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for taskID, history := range m.histories {
		if len(history.Transitions) == 0 {
			continue
		}
		last := history.Transitions[len(history.Transitions)-1].Timestamp
		if last.Before(cutoff) {
			delete(m.histories, taskID)
			removed++
			m.logger.Debug("cleaned up old task history", "task_id", taskID)
		}
	}

	return removed
}

// StateStatistics counts tracked tasks by their current state.
func (m *TaskStateManager) StateStatistics() map[domain.TaskStatus]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := make(map[domain.TaskStatus]int)
	for _, history := range m.histories {
		if current := history.CurrentState(); current != nil {
			stats[*current]++
		}
	}

	return stats
}
