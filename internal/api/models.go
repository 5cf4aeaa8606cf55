package api

// CreateTaskRequest asks for media or a post to be published to a set of
// platforms.
type CreateTaskRequest struct {
	TaskType      string                 `json:"task_type,omitempty"`
	MediaFilePath string                 `json:"media_file_path,omitempty"`
	Body          string                 `json:"body,omitempty"`
	Platforms     []string               `json:"platforms" validate:"required,min=1,dive,required"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	TemplateVars  map[string]interface{} `json:"template_vars,omitempty"`
}

// CreateTaskResponse returns the ID of the newly created task.
type CreateTaskResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// CancelTaskRequest optionally carries the reason for cancelling.
type CancelTaskRequest struct {
	Reason string `json:"reason,omitempty"`
}

// TaskListResponse wraps a page of task status maps.
type TaskListResponse struct {
	Tasks []map[string]interface{} `json:"tasks"`
	Count int                      `json:"count"`
}
