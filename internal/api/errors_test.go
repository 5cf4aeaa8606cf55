package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setka-project/medusa/internal/domain"
	"github.com/setka-project/medusa/internal/registry"
	"github.com/setka-project/medusa/internal/state"
	"github.com/setka-project/medusa/internal/status"
	"github.com/setka-project/medusa/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid query", status.ErrInvalidQuery, http.StatusBadRequest},
		{"domain validation", domain.ErrValidation, http.StatusBadRequest},
		{"empty task id", store.ErrEmptyTaskID, http.StatusBadRequest},
		{"unknown platform", registry.ErrPlatformNotFound, http.StatusBadRequest},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"status error", status.ErrTaskStatus, http.StatusNotFound},
		{"task exists", store.ErrTaskExists, http.StatusConflict},
		{"invalid transition", domain.ErrInvalidTransition, http.StatusConflict},
		{"state transition", state.ErrStateTransition, http.StatusConflict},
		{"invalid state", state.ErrInvalidState, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("context: %w", store.ErrTaskNotFound), http.StatusNotFound},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Task not found", GetSafeErrorMessage(store.ErrTaskNotFound))
	assert.Equal(t, "Unknown platform", GetSafeErrorMessage(registry.ErrPlatformNotFound))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))

	msg := GetSafeErrorMessage(errors.New("dial tcp 10.0.0.5:443: connection refused"))
	assert.NotContains(t, msg, "10.0.0.5")
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	validate := validator.New()

	err := validate.Struct(&CreateTaskRequest{})
	require.Error(t, err)

	msg := SanitizeValidationError(err)
	assert.Contains(t, msg, "Platforms")
	assert.Contains(t, msg, "required field")
}
