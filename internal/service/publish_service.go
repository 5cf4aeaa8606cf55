// Package service orchestrates publishing tasks: it keeps the task store
// and the state machine in lockstep, drives platform adapters through the
// resilient executor, and repairs divergence between the two task views.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/setka-project/medusa/internal/domain"
	"github.com/setka-project/medusa/internal/publish"
	"github.com/setka-project/medusa/internal/registry"
	"github.com/setka-project/medusa/internal/state"
	"github.com/setka-project/medusa/internal/store"
	"github.com/setka-project/medusa/internal/taskid"
)

// PublishService owns the lifecycle of publishing tasks. The store and the
// state machine are both keyed by task ID; every mutation here updates the
// two together so neither view drifts.
type PublishService struct {
	store    *store.TaskStore
	states   *state.TaskStateManager
	registry *registry.Registry
	configs  map[string]domain.PlatformConfig
	logger   *slog.Logger
}

// NewPublishService wires the service over its collaborators. The configs
// map is keyed by platform name and supplies each executor's retry and
// timeout policy.
func NewPublishService(
	taskStore *store.TaskStore,
	states *state.TaskStateManager,
	reg *registry.Registry,
	configs map[string]domain.PlatformConfig,
	logger *slog.Logger,
) *PublishService {
	return &PublishService{
		store:    taskStore,
		states:   states,
		registry: reg,
		configs:  configs,
		logger:   logger.With(slog.String("component", "publish_service")),
	}
}

// CreateTask generates a task ID and registers the task as pending in both
// the store and the state machine. If state initialization fails the store
// insert is rolled back so no half-created task survives.
func (s *PublishService) CreateTask(taskType string) (string, error) {
	id, err := taskid.Generate("publish", taskType)
	if err != nil {
		return "", fmt.Errorf("generating task ID: %w", err)
	}

	task, err := domain.NewTaskRecord(id)
	if err != nil {
		return "", fmt.Errorf("creating task record: %w", err)
	}

	if err := s.store.StoreTask(task); err != nil {
		return "", fmt.Errorf("storing task: %w", err)
	}

	if err := s.states.InitializeTask(id, domain.TaskStatusPending); err != nil {
		s.store.DeleteTask(id)
		return "", fmt.Errorf("initializing task state: %w", err)
	}

	s.logger.Info("created task", "task_id", id, "task_type", taskType)
	return id, nil
}

// Publish runs the content against each named platform in order, moving
// the task through in_progress to completed, or to failed on the first
// platform error. A failed task's record carries the error and the failing
// platform before the state machine observes the failure.
func (s *PublishService) Publish(
	ctx context.Context,
	taskID string,
	platforms []string,
	content publish.Content,
) error {
	if len(platforms) == 0 {
		return fmt.Errorf("no platforms given for task %s", taskID)
	}

	if err := s.setStatus(taskID, domain.TaskStatusInProgress, "publishing"); err != nil {
		return err
	}

	for _, platform := range platforms {
		if err := s.publishOne(ctx, taskID, platform, content); err != nil {
			s.failTask(taskID, platform, err)
			return err
		}
	}

	return s.setStatus(taskID, domain.TaskStatusCompleted, "")
}

// publishOne executes one platform and records its result on success.
func (s *PublishService) publishOne(
	ctx context.Context,
	taskID, platform string,
	content publish.Content,
) error {
	adapter, err := s.registry.Get(platform)
	if err != nil {
		return err
	}

	executor := publish.NewExecutor(s.configs[platform], s.logger)
	result, err := executor.Run(ctx, adapter, content, s.recordProgress(taskID, platform))
	if err != nil {
		return err
	}

	task := s.store.GetTask(taskID)
	if task == nil {
		return fmt.Errorf("task %s disappeared during publish", taskID)
	}
	task.AddPlatformResult(platform, result)
	if err := s.store.UpdateTask(task); err != nil {
		return err
	}

	s.logger.Info("platform publish succeeded",
		"task_id", taskID,
		"platform", platform,
		"result_id", result.ID)
	return nil
}

// recordProgress returns a callback that stores each transfer progress
// report on the task record, where the status layer's include_progress
// path reads it.
func (s *PublishService) recordProgress(taskID, platform string) publish.ProgressFunc {
	return func(current, total int64) {
		progress, err := domain.NewProgress(current, total, "uploading")
		if err != nil {
			s.logger.Warn("dropping invalid progress report",
				"task_id", taskID,
				"platform", platform,
				"error", err)
			return
		}

		task := s.store.GetTask(taskID)
		if task == nil {
			return
		}

		task.AddPlatformResult("progress", map[string]interface{}{
			"platform":   platform,
			"current":    progress.Current,
			"total":      progress.Total,
			"percentage": progress.Percentage,
			"status":     progress.Status,
		})
		if err := s.store.UpdateTask(task); err != nil {
			s.logger.Warn("storing progress report",
				"task_id", taskID,
				"error", err)
		}
	}
}

// Cancel marks a task cancelled in both views. Cancelling does not stop an
// in-flight execute; it only records the decision.
func (s *PublishService) Cancel(taskID, reason string) error {
	if reason == "" {
		reason = "cancelled by caller"
	}
	return s.setStatus(taskID, domain.TaskStatusCancelled, reason)
}

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	MissingHistories int
	Realigned        int
	Unresolved       []string
}

// Reconcile repairs divergence between the store and the state machine:
// records without histories get one, and histories whose current state
// disagrees with the record are moved to match, by normal transition when
// the graph allows it or by rollback when the record's status was visited
// before. Divergences that cannot be repaired are reported, not hidden.
func (s *PublishService) Reconcile() ReconcileReport {
	var report ReconcileReport

	for _, task := range s.store.GetAllTasks() {
		current, err := s.states.CurrentState(task.TaskID)
		if err != nil {
			if initErr := s.states.InitializeTask(task.TaskID, task.Status); initErr != nil {
				report.Unresolved = append(report.Unresolved, task.TaskID)
				continue
			}
			report.MissingHistories++
			continue
		}

		if current == task.Status {
			continue
		}

		if domain.CanTransition(current, task.Status) {
			if _, err := s.states.TransitionState(task.TaskID, task.Status, "reconciled"); err == nil {
				report.Realigned++
				continue
			}
		}

		if _, err := s.states.RollbackTask(task.TaskID, task.Status, "reconciled"); err == nil {
			report.Realigned++
			continue
		}

		s.logger.Warn("unreconcilable task",
			"task_id", task.TaskID,
			"store_status", string(task.Status),
			"state_status", string(current))
		report.Unresolved = append(report.Unresolved, task.TaskID)
	}

	return report
}

// setStatus updates the record and the state machine together.
func (s *PublishService) setStatus(taskID string, to domain.TaskStatus, message string) error {
	task := s.store.GetTask(taskID)
	if task == nil {
		return fmt.Errorf("%w: %s", store.ErrTaskNotFound, taskID)
	}

	if err := task.UpdateStatus(to, message); err != nil {
		return fmt.Errorf("updating task %s: %w", taskID, err)
	}
	if err := s.store.UpdateTask(task); err != nil {
		return err
	}

	if _, err := s.states.TransitionState(taskID, to, message); err != nil {
		// The record moved but the history refused; surface it rather
		// than unwinding a state the caller already observed.
		s.logger.Error("state machine rejected transition after store update",
			"task_id", taskID,
			"to", string(to),
			"error", err)
		return err
	}

	return nil
}

// failTask records the failure detail on the record before the state
// machine moves to failed, keeping the failed-implies-error invariant
// observable at every step.
func (s *PublishService) failTask(taskID, platform string, cause error) {
	task := s.store.GetTask(taskID)
	if task == nil {
		s.logger.Error("cannot fail missing task", "task_id", taskID)
		return
	}

	if err := task.MarkFailed(platform, cause.Error()); err != nil {
		s.logger.Error("marking task failed", "task_id", taskID, "error", err)
		return
	}
	if err := s.store.UpdateTask(task); err != nil {
		s.logger.Error("storing failed task", "task_id", taskID, "error", err)
		return
	}

	if _, err := s.states.TransitionState(taskID, domain.TaskStatusFailed, cause.Error()); err != nil {
		s.logger.Error("transitioning task to failed", "task_id", taskID, "error", err)
	}

	s.logger.Warn("task failed",
		"task_id", taskID,
		"platform", platform,
		"error", cause)
}
