package status

import (
	"github.com/setka-project/medusa/internal/domain"
)

// TaskStatusResponse is the externally consumable view of one task. Which
// fields appear in the serialized form depends on the task's status.
type TaskStatusResponse struct {
	TaskID         string
	Status         domain.TaskStatus
	Message        string
	Error          string
	FailedPlatform string
	Results        map[string]interface{}

	// History and Progress are populated only when explicitly requested.
	History  []map[string]interface{}
	Progress map[string]interface{}
}

// newResponse builds a response from an authoritative task record.
func newResponse(task *domain.TaskRecord) *TaskStatusResponse {
	return &TaskStatusResponse{
		TaskID:         task.TaskID,
		Status:         task.Status,
		Message:        task.Message,
		Error:          task.Error,
		FailedPlatform: task.FailedPlatform,
		Results:        task.Results,
	}
}

// ToMap serializes the response with exactly the keys its status requires:
// completed carries results, failed carries error and failed_platform,
// in_progress carries message, and pending/cancelled carry status alone.
// History and progress appear only when populated.
func (r *TaskStatusResponse) ToMap() map[string]interface{} {
	out := map[string]interface{}{
		"status": string(r.Status),
	}

	switch r.Status {
	case domain.TaskStatusCompleted:
		results := r.Results
		if results == nil {
			results = map[string]interface{}{}
		}
		out["results"] = results
	case domain.TaskStatusFailed:
		out["error"] = r.Error
		out["failed_platform"] = r.FailedPlatform
	case domain.TaskStatusInProgress:
		out["message"] = r.Message
	}

	if r.History != nil {
		out["history"] = r.History
	}
	if r.Progress != nil {
		out["progress"] = r.Progress
	}

	return out
}
