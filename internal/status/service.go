package status

import (
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/setka-project/medusa/internal/domain"
	"github.com/setka-project/medusa/internal/state"
	"github.com/setka-project/medusa/internal/store"
)

// Service answers status queries by composing the authoritative task store
// with the state machine's histories.
type Service struct {
	store  *store.TaskStore
	states *state.TaskStateManager
	logger *slog.Logger
}

// NewService builds a status service over the given store and state
// manager.
func NewService(
	taskStore *store.TaskStore,
	states *state.TaskStateManager,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:  taskStore,
		states: states,
		logger: logger.With(slog.String("component", "status_service")),
	}
}

// GetTaskStatus returns the formatted status for one task. A missing state
// history is tolerated when includeHistory is set; a missing task is not.
func (s *Service) GetTaskStatus(
	taskID string,
	includeHistory, includeProgress bool,
) (*TaskStatusResponse, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, &TaskStatusError{Message: "task ID must not be empty"}
	}

	task := s.store.GetTask(taskID)
	if task == nil {
		return nil, &TaskStatusError{TaskID: taskID, Message: "task not found"}
	}

	response := newResponse(task)

	if includeHistory {
		history, err := s.states.TaskHistory(taskID)
		if err != nil {
			s.logger.Warn("task has no state history",
				"task_id", taskID,
				"error", err)
		} else {
			response.History = history.Serialize()
		}
	}

	if includeProgress {
		if raw, ok := task.Results["progress"]; ok {
			if progress, ok := raw.(map[string]interface{}); ok {
				response.Progress = progress
			}
		}
	}

	return response, nil
}

// GetMultipleTaskStatuses collects statuses for several tasks. Missing
// tasks are skipped when skipMissing is set, otherwise the first miss
// fails the whole call.
func (s *Service) GetMultipleTaskStatuses(
	taskIDs []string,
	skipMissing bool,
) (map[string]*TaskStatusResponse, error) {
	out := make(map[string]*TaskStatusResponse, len(taskIDs))

	for _, taskID := range taskIDs {
		response, err := s.GetTaskStatus(taskID, false, false)
		if err != nil {
			var statusErr *TaskStatusError
			if skipMissing && errors.As(err, &statusErr) {
				s.logger.Debug("skipping missing task", "task_id", taskID)
				continue
			}
			return nil, err
		}
		out[taskID] = response
	}

	return out, nil
}

// QueryTaskStatuses filters the full task snapshot, sorts newest first,
// and applies the query's pagination.
func (s *Service) QueryTaskStatuses(query *TaskStatusQuery) ([]*TaskStatusResponse, error) {
	if query == nil {
		return nil, &TaskStatusError{Message: "query must not be nil"}
	}

	var matched []*domain.TaskRecord
	for _, task := range s.store.GetAllTasks() {
		if query.matches(task) {
			matched = append(matched, task)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	page := query.paginate(matched)

	out := make([]*TaskStatusResponse, 0, len(page))
	for _, task := range page {
		out = append(out, newResponse(task))
	}
	return out, nil
}

// TaskPerformanceMetrics reports the timing profile of one task.
type TaskPerformanceMetrics struct {
	TaskID         string                               `json:"task_id"`
	Status         domain.TaskStatus                    `json:"status"`
	TotalDuration  time.Duration                        `json:"total_duration"`
	StateDurations map[domain.TaskStatus]time.Duration `json:"state_durations,omitempty"`
	CreatedAt      time.Time                            `json:"created_at"`
	UpdatedAt      time.Time                            `json:"updated_at"`
}

// GetTaskPerformanceMetrics returns the task's total duration and its
// per-state breakdown. A missing state history drops the breakdown but
// does not fail the call.
func (s *Service) GetTaskPerformanceMetrics(taskID string) (*TaskPerformanceMetrics, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, &TaskStatusError{Message: "task ID must not be empty"}
	}

	task := s.store.GetTask(taskID)
	if task == nil {
		return nil, &TaskStatusError{TaskID: taskID, Message: "task not found"}
	}

	metrics := &TaskPerformanceMetrics{
		TaskID:        task.TaskID,
		Status:        task.Status,
		TotalDuration: task.UpdatedAt.Sub(task.CreatedAt),
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}

	durations, err := s.states.StateDurations(taskID)
	if err != nil {
		s.logger.Warn("no state durations for task", "task_id", taskID, "error", err)
	} else {
		metrics.StateDurations = durations
	}

	return metrics, nil
}

// AggregatedMetrics summarizes timing across the whole store.
type AggregatedMetrics struct {
	TaskCount            int                                  `json:"task_count"`
	MeanDuration         time.Duration                        `json:"mean_duration"`
	StatusCounts         map[domain.TaskStatus]int            `json:"status_counts"`
	MeanDurationByStatus map[domain.TaskStatus]time.Duration `json:"mean_duration_by_status"`
}

// GetAggregatedPerformanceMetrics computes task count, mean duration, and
// per-status breakdowns across every stored task.
func (s *Service) GetAggregatedPerformanceMetrics() *AggregatedMetrics {
	tasks := s.store.GetAllTasks()

	metrics := &AggregatedMetrics{
		TaskCount:            len(tasks),
		StatusCounts:         make(map[domain.TaskStatus]int),
		MeanDurationByStatus: make(map[domain.TaskStatus]time.Duration),
	}

	if len(tasks) == 0 {
		return metrics
	}

	var total time.Duration
	totalByStatus := make(map[domain.TaskStatus]time.Duration)

	for _, task := range tasks {
		duration := task.UpdatedAt.Sub(task.CreatedAt)
		total += duration
		metrics.StatusCounts[task.Status]++
		totalByStatus[task.Status] += duration
	}

	metrics.MeanDuration = total / time.Duration(len(tasks))
	for taskStatus, sum := range totalByStatus {
		metrics.MeanDurationByStatus[taskStatus] = sum / time.Duration(metrics.StatusCounts[taskStatus])
	}

	return metrics
}
