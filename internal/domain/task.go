package domain

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus represents the lifecycle state of a publishing task.
type TaskStatus string

// Possible task status values.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// validTransitions maps each status to the set of statuses it may move to.
// Terminal statuses only self-loop. The direct pending -> completed edge is
// intentional: trivial operations may complete without an in-progress phase.
var validTransitions = map[TaskStatus]map[TaskStatus]bool{
	TaskStatusPending: {
		TaskStatusInProgress: true,
		TaskStatusCompleted:  true,
		TaskStatusCancelled:  true,
	},
	TaskStatusInProgress: {
		TaskStatusCompleted: true,
		TaskStatusFailed:    true,
		TaskStatusCancelled: true,
	},
	TaskStatusCompleted: {TaskStatusCompleted: true},
	TaskStatusFailed:    {TaskStatusFailed: true},
	TaskStatusCancelled: {TaskStatusCancelled: true},
}

// IsValidTaskStatus reports whether the given status is a known TaskStatus.
func IsValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted,
		TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransition reports whether a task may move from one status to another
// under the normal transition table.
func CanTransition(from, to TaskStatus) bool {
	return validTransitions[from][to]
}

// IsTerminalStatus reports whether the status admits no further progress.
func IsTerminalStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// TaskRecord is the authoritative record of one tracked publish/upload
// operation. The task ID is caller-assigned and unique within the store.
type TaskRecord struct {
	TaskID         string                 `json:"task_id"`
	Status         TaskStatus             `json:"status"`
	Message        string                 `json:"message,omitempty"`
	Error          string                 `json:"error,omitempty"`
	FailedPlatform string                 `json:"failed_platform,omitempty"`
	Results        map[string]interface{} `json:"results"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// NewTaskRecord creates a pending TaskRecord with the given ID and sets the
// creation/update timestamps. Returns an error if validation fails.
func NewTaskRecord(taskID string) (*TaskRecord, error) {
	now := time.Now().UTC()
	record := &TaskRecord{
		TaskID:    taskID,
		Status:    TaskStatusPending,
		Results:   make(map[string]interface{}),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks the record's invariants: a non-blank ID, a known status,
// and error detail on failed tasks.
func (t *TaskRecord) Validate() error {
	if strings.TrimSpace(t.TaskID) == "" {
		return ErrEmptyTaskID
	}

	if !IsValidTaskStatus(t.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidTaskStatus, t.Status)
	}

	if t.Status == TaskStatusFailed && t.Error == "" {
		return ErrMissingErrorDetail
	}

	return nil
}

// UpdateStatus moves the record to a new status, validating the transition
// table and bumping UpdatedAt. The optional message replaces the previous
// progress narration.
func (t *TaskRecord) UpdateStatus(status TaskStatus, message string) error {
	if !CanTransition(t.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, status)
	}

	t.Status = status
	t.Message = message
	t.touch()
	return nil
}

// MarkFailed records the failure detail and moves the record to failed.
// The error and platform are set before the status changes so a failed
// record is never observable without them.
func (t *TaskRecord) MarkFailed(platform, errDetail string) error {
	if errDetail == "" {
		return ErrMissingErrorDetail
	}

	if !CanTransition(t.Status, TaskStatusFailed) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, TaskStatusFailed)
	}

	t.Error = errDetail
	t.FailedPlatform = platform
	t.Status = TaskStatusFailed
	t.touch()
	return nil
}

// AddPlatformResult stores a platform-specific result payload and bumps
// UpdatedAt.
func (t *TaskRecord) AddPlatformResult(platform string, result interface{}) {
	if t.Results == nil {
		t.Results = make(map[string]interface{})
	}
	t.Results[platform] = result
	t.touch()
}

// Clone returns a shallow copy of the record with its own results map, so
// store snapshots are not live views.
func (t *TaskRecord) Clone() *TaskRecord {
	clone := *t
	clone.Results = make(map[string]interface{}, len(t.Results))
	for k, v := range t.Results {
		clone.Results[k] = v
	}
	return &clone
}

// touch advances UpdatedAt, keeping it monotonically non-decreasing even if
// the wall clock steps backwards.
func (t *TaskRecord) touch() {
	now := time.Now().UTC()
	if now.After(t.UpdatedAt) {
		t.UpdatedAt = now
	}
}
