package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/setka-project/medusa/internal/domain"
	"github.com/setka-project/medusa/internal/registry"
	"github.com/setka-project/medusa/internal/state"
	"github.com/setka-project/medusa/internal/status"
	"github.com/setka-project/medusa/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Malformed queries and domain validation failures
	case errors.Is(err, status.ErrInvalidQuery),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyPlatform),
		errors.Is(err, store.ErrEmptyTaskID),
		errors.Is(err, registry.ErrPlatformNotFound):
		return http.StatusBadRequest

	// Missing tasks
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, status.ErrTaskStatus):
		return http.StatusNotFound

	// Lifecycle conflicts: duplicate IDs, illegal transitions
	case errors.Is(err, store.ErrTaskExists),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, state.ErrStateTransition),
		errors.Is(err, state.ErrInvalidState):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly message for the
// error type.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, status.ErrInvalidQuery):
		return "Invalid query parameters"

	case errors.Is(err, registry.ErrPlatformNotFound):
		return "Unknown platform"

	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, status.ErrTaskStatus):
		return "Task not found"

	case errors.Is(err, store.ErrTaskExists):
		return "Task already exists"

	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, state.ErrStateTransition):
		return "Task is not in a state that allows this operation"

	case errors.Is(err, state.ErrInvalidState):
		return "Task state is unknown"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyPlatform),
		errors.Is(err, store.ErrEmptyTaskID):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a user-friendly
// message without echoing raw input back.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example: "Key: 'CreateTaskRequest.Platforms' Error:Field
		// validation for 'Platforms' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gt", "gte":
		return "value out of range"
	default:
		return "validation failed"
	}
}
