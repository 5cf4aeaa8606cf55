package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/setka-project/medusa/internal/api/shared"
	"github.com/setka-project/medusa/internal/domain"
	"github.com/setka-project/medusa/internal/publish"
	"github.com/setka-project/medusa/internal/service"
	"github.com/setka-project/medusa/internal/status"
	"github.com/setka-project/medusa/internal/store"
)

// TaskHandler serves the task lifecycle and status endpoints.
type TaskHandler struct {
	publishService *service.PublishService
	statusService  *status.Service
	taskStore      *store.TaskStore
	validator      *validator.Validate
	logger         *slog.Logger
}

// NewTaskHandler creates a TaskHandler over its collaborating services.
func NewTaskHandler(
	publishService *service.PublishService,
	statusService *status.Service,
	taskStore *store.TaskStore,
	logger *slog.Logger,
) *TaskHandler {
	return &TaskHandler{
		publishService: publishService,
		statusService:  statusService,
		taskStore:      taskStore,
		validator:      validator.New(),
		logger:         logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /tasks: it registers the task and starts
// publishing in the background, responding 202 with the task ID so callers
// poll status for the outcome.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	request := domain.NewPublishRequest(req.MediaFilePath, req.Platforms)
	if err := request.Validate(); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	taskType := req.TaskType
	if taskType == "" {
		taskType = "media"
	}

	taskID, err := h.publishService.CreateTask(taskType)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	content := publish.Content{
		Kind:         publish.ContentMedia,
		FilePath:     req.MediaFilePath,
		Body:         req.Body,
		Metadata:     req.Metadata,
		TemplateVars: req.TemplateVars,
	}
	if req.Body != "" {
		content.Kind = publish.ContentPost
	}

	go func() {
		if err := h.publishService.Publish(context.Background(), taskID, request.Platforms, content); err != nil {
			h.logger.Warn("background publish failed", "task_id", taskID, "error", err)
		}
	}()

	shared.RespondWithJSON(w, r, http.StatusAccepted, CreateTaskResponse{
		TaskID: taskID,
		Status: string(domain.TaskStatusPending),
	})
}

// GetTask handles GET /tasks/{taskID}. The include_history and
// include_progress query flags append the optional sections.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	includeHistory := queryFlag(r, "include_history")
	includeProgress := queryFlag(r, "include_progress")

	response, err := h.statusService.GetTaskStatus(taskID, includeHistory, includeProgress)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	body := response.ToMap()
	body["task_id"] = response.TaskID
	shared.RespondWithJSON(w, r, http.StatusOK, body)
}

// ListTasks handles GET /tasks with status, time range, and pagination
// query parameters.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseListQuery(r)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses, err := h.statusService.QueryTaskStatuses(query)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	tasks := make([]map[string]interface{}, 0, len(responses))
	for _, response := range responses {
		body := response.ToMap()
		body["task_id"] = response.TaskID
		tasks = append(tasks, body)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{Tasks: tasks, Count: len(tasks)})
}

// CancelTask handles POST /tasks/{taskID}/cancel.
func (h *TaskHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	var req CancelTaskRequest
	if r.ContentLength > 0 {
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	if err := h.publishService.Cancel(taskID, req.Reason); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"task_id": taskID,
		"status":  string(domain.TaskStatusCancelled),
	})
}

// GetTaskMetrics handles GET /tasks/{taskID}/metrics.
func (h *TaskHandler) GetTaskMetrics(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	metrics, err := h.statusService.GetTaskPerformanceMetrics(taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, metrics)
}

// GetAggregatedMetrics handles GET /metrics.
func (h *TaskHandler) GetAggregatedMetrics(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.statusService.GetAggregatedPerformanceMetrics())
}

// GetStorageStats handles GET /storage/stats.
func (h *TaskHandler) GetStorageStats(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.taskStore.GetStorageStats())
}

// parseListQuery turns the list endpoint's query string into a validated
// TaskStatusQuery.
func (h *TaskHandler) parseListQuery(r *http.Request) (*status.TaskStatusQuery, error) {
	values := r.URL.Query()

	var statuses []domain.TaskStatus
	if raw := values.Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			statuses = append(statuses, domain.TaskStatus(strings.TrimSpace(part)))
		}
	}

	createdAfter, err := parseTimeParam(values.Get("created_after"))
	if err != nil {
		return nil, err
	}
	createdBefore, err := parseTimeParam(values.Get("created_before"))
	if err != nil {
		return nil, err
	}

	limit, err := parseIntParam(values.Get("limit"))
	if err != nil {
		return nil, err
	}
	offset, err := parseIntParam(values.Get("offset"))
	if err != nil {
		return nil, err
	}

	return status.NewTaskStatusQuery(statuses, createdAfter, createdBefore, limit, offset)
}

func parseTimeParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, status.ErrInvalidQuery
	}
	return &parsed, nil
}

func parseIntParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, status.ErrInvalidQuery
	}
	return parsed, nil
}

func queryFlag(r *http.Request, name string) bool {
	switch strings.ToLower(r.URL.Query().Get(name)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
