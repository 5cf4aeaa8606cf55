package status

import (
	"errors"
	"fmt"
)

// ErrTaskStatus is the base error for status reporting failures.
var ErrTaskStatus = errors.New("task status error")

// ErrInvalidQuery indicates a malformed TaskStatusQuery.
var ErrInvalidQuery = fmt.Errorf("%w: invalid query", ErrTaskStatus)

// TaskStatusError reports a failure to produce a status response for one
// task.
type TaskStatusError struct {
	TaskID  string
	Message string
}

func (e *TaskStatusError) Error() string {
	if e.TaskID != "" {
		return fmt.Sprintf("task status error for task %s: %s", e.TaskID, e.Message)
	}
	return fmt.Sprintf("task status error: %s", e.Message)
}

func (e *TaskStatusError) Unwrap() error { return ErrTaskStatus }
