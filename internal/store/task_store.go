package store

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/setka-project/medusa/internal/domain"
)

// TaskStore is the thread-safe in-memory store of authoritative task
// records. Every operation takes the single store mutex so existence checks
// and writes are atomic; the lock is never held across a sleep.
type TaskStore struct {
	mu     sync.Mutex
	tasks  map[string]*domain.TaskRecord
	logger *slog.Logger
}

// NewTaskStore creates an empty task store.
func NewTaskStore(logger *slog.Logger) *TaskStore {
	return &TaskStore{
		tasks:  make(map[string]*domain.TaskRecord),
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// StoreTask inserts a new task record. Fails if the ID is blank or already
// present.
func (s *TaskStore) StoreTask(task *domain.TaskRecord) error {
	if task == nil {
		return ErrNilTask
	}

	if strings.TrimSpace(task.TaskID) == "" {
		return ErrEmptyTaskID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.TaskID]; exists {
		return fmt.Errorf("%w: %s", ErrTaskExists, task.TaskID)
	}

	s.tasks[task.TaskID] = task
	s.logger.Debug("stored task", "task_id", task.TaskID, "status", string(task.Status))
	return nil
}

// GetTask returns a snapshot copy of the record for the given ID, or nil
// when absent. Callers mutate their copy and persist it with UpdateTask;
// the stored record is never handed out directly.
func (s *TaskStore) GetTask(taskID string) *domain.TaskRecord {
	if taskID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[taskID]
	if !exists {
		return nil
	}
	return task.Clone()
}

// UpdateTask replaces an existing record. Fails if the task is not present.
func (s *TaskStore) UpdateTask(task *domain.TaskRecord) error {
	if task == nil {
		return ErrNilTask
	}

	if strings.TrimSpace(task.TaskID) == "" {
		return ErrEmptyTaskID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.TaskID]; !exists {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, task.TaskID)
	}

	s.tasks[task.TaskID] = task
	s.logger.Debug("updated task", "task_id", task.TaskID, "status", string(task.Status))
	return nil
}

// DeleteTask removes a record, reporting whether it was present.
func (s *TaskStore) DeleteTask(taskID string) bool {
	if taskID == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[taskID]; !exists {
		return false
	}

	delete(s.tasks, taskID)
	s.logger.Debug("deleted task", "task_id", taskID)
	return true
}

// GetAllTasks returns a snapshot copy of every record; mutations to the
// returned records do not affect the store.
func (s *TaskStore) GetAllTasks() []*domain.TaskRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.TaskRecord, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, task.Clone())
	}
	return out
}

// GetTasksByStatus returns snapshot copies of records whose status matches
// any of the given statuses.
func (s *TaskStore) GetTasksByStatus(statuses ...domain.TaskStatus) []*domain.TaskRecord {
	wanted := make(map[domain.TaskStatus]bool, len(statuses))
	for _, status := range statuses {
		wanted[status] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.TaskRecord
	for _, task := range s.tasks {
		if wanted[task.Status] {
			out = append(out, task.Clone())
		}
	}
	return out
}

// GetTasksCreatedAfter returns snapshot copies of records created strictly
// after the cutoff.
func (s *TaskStore) GetTasksCreatedAfter(cutoff time.Time) []*domain.TaskRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.TaskRecord
	for _, task := range s.tasks {
		if task.CreatedAt.After(cutoff) {
			out = append(out, task.Clone())
		}
	}
	return out
}

// TaskCount returns the number of stored records, optionally restricted to
// one status.
func (s *TaskStore) TaskCount(status *domain.TaskStatus) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status == nil {
		return len(s.tasks)
	}

	count := 0
	for _, task := range s.tasks {
		if task.Status == *status {
			count++
		}
	}
	return count
}

// TaskExists reports whether the given ID is present.
func (s *TaskStore) TaskExists(taskID string) bool {
	if taskID == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.tasks[taskID]
	return exists
}

// ClearAllTasks removes every record and returns how many were removed.
func (s *TaskStore) ClearAllTasks() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.tasks)
	s.tasks = make(map[string]*domain.TaskRecord)
	s.logger.Debug("cleared all tasks", "count", count)
	return count
}

// CleanupOldTasks removes records whose CreatedAt is at or before
// now-maxAge, optionally restricted to the given statuses, and returns the
// number removed.
func (s *TaskStore) CleanupOldTasks(maxAge time.Duration, statuses ...domain.TaskStatus) int {
	cutoff := time.Now().UTC().Add(-maxAge)

	var wanted map[domain.TaskStatus]bool
	if len(statuses) > 0 {
		wanted = make(map[domain.TaskStatus]bool, len(statuses))
		for _, status := range statuses {
			wanted[status] = true
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for taskID, task := range s.tasks {
		if task.CreatedAt.After(cutoff) {
			continue
		}
		if wanted != nil && !wanted[task.Status] {
			continue
		}
		delete(s.tasks, taskID)
		removed++
	}

	if removed > 0 {
		s.logger.Info("cleaned up old tasks", "count", removed, "max_age", maxAge.String())
	}

	return removed
}

// StorageStats summarizes the store: total count, per-status counts, and
// age statistics in hours.
type StorageStats struct {
	TotalTasks      int                       `json:"total_tasks"`
	StatusCounts    map[domain.TaskStatus]int `json:"status_counts"`
	OldestTaskHours float64                   `json:"oldest_task_hours"`
	NewestTaskHours float64                   `json:"newest_task_hours"`
	AverageAgeHours float64                   `json:"average_age_hours"`
}

// GetStorageStats computes current storage statistics.
func (s *TaskStore) GetStorageStats() StorageStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := StorageStats{
		TotalTasks:   len(s.tasks),
		StatusCounts: make(map[domain.TaskStatus]int),
	}

	now := time.Now().UTC()
	ages := make([]float64, 0, len(s.tasks))
	for _, task := range s.tasks {
		stats.StatusCounts[task.Status]++
		ages = append(ages, now.Sub(task.CreatedAt).Hours())
	}

	if len(ages) > 0 {
		sort.Float64s(ages)
		stats.NewestTaskHours = ages[0]
		stats.OldestTaskHours = ages[len(ages)-1]

		total := 0.0
		for _, age := range ages {
			total += age
		}
		stats.AverageAgeHours = total / float64(len(ages))
	}

	return stats
}
