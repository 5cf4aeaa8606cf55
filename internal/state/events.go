package state

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/setka-project/medusa/internal/domain"
)

// StateListener is invoked when a task reaches the state it was registered
// for. Listeners must not block; they run on the transitioning goroutine.
type StateListener func(taskID string, transition StateTransition)

// StateEventSystem dispatches state-change notifications to listeners
// registered per target state. A panicking listener is logged and isolated
// so it cannot block the others.
type StateEventSystem struct {
	mu        sync.RWMutex
	listeners map[domain.TaskStatus][]StateListener
	logger    *slog.Logger
}

// NewStateEventSystem creates an event system logging through the given
// logger.
func NewStateEventSystem(logger *slog.Logger) *StateEventSystem {
	return &StateEventSystem{
		listeners: make(map[domain.TaskStatus][]StateListener),
		logger:    logger.With(slog.String("component", "state_events")),
	}
}

// RegisterListener adds a listener for transitions into the given state.
func (s *StateEventSystem) RegisterListener(state domain.TaskStatus, listener StateListener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners[state] = append(s.listeners[state], listener)
	s.logger.Debug("registered state listener",
		"state", string(state),
		"listener_count", len(s.listeners[state]))
}

// UnregisterListener removes a previously registered listener for the given
// state. Unknown listeners are ignored.
func (s *StateEventSystem) UnregisterListener(state domain.TaskStatus, listener StateListener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := reflect.ValueOf(listener).Pointer()
	registered := s.listeners[state]
	for i, candidate := range registered {
		if reflect.ValueOf(candidate).Pointer() == target {
			s.listeners[state] = append(registered[:i], registered[i+1:]...)
			s.logger.Debug("unregistered state listener", "state", string(state))
			return
		}
	}
}

// EmitStateChange invokes every listener registered for the transition's
// target state. Listener panics are recovered and logged, never propagated.
func (s *StateEventSystem) EmitStateChange(taskID string, transition StateTransition) {
	s.mu.RLock()
	listeners := make([]StateListener, len(s.listeners[transition.ToState]))
	copy(listeners, s.listeners[transition.ToState])
	s.mu.RUnlock()

	for _, listener := range listeners {
		s.invoke(listener, taskID, transition)
	}
}

func (s *StateEventSystem) invoke(
	listener StateListener,
	taskID string,
	transition StateTransition,
) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("state change listener panicked",
				"task_id", taskID,
				"state", string(transition.ToState),
				"panic", r)
		}
	}()

	listener(taskID, transition)
}
