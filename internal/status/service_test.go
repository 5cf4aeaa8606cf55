package status

import (
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setka-project/medusa/internal/domain"
	"github.com/setka-project/medusa/internal/state"
	"github.com/setka-project/medusa/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.TaskStore, *state.TaskStateManager) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	taskStore := store.NewTaskStore(logger)
	states := state.NewTaskStateManager(logger)
	return NewService(taskStore, states, logger), taskStore, states
}

func storeTask(t *testing.T, taskStore *store.TaskStore, taskID string) *domain.TaskRecord {
	t.Helper()

	task, err := domain.NewTaskRecord(taskID)
	require.NoError(t, err)
	require.NoError(t, taskStore.StoreTask(task))
	return task
}

func TestGetTaskStatus_ExactKeySets(t *testing.T) {
	t.Parallel()

	service, taskStore, _ := newTestService(t)

	completed := storeTask(t, taskStore, "task_completed")
	require.NoError(t, completed.UpdateStatus(domain.TaskStatusInProgress, "uploading"))
	completed.AddPlatformResult("youtube", map[string]interface{}{"id": "vid1"})
	require.NoError(t, completed.UpdateStatus(domain.TaskStatusCompleted, ""))

	failed := storeTask(t, taskStore, "task_failed")
	require.NoError(t, failed.UpdateStatus(domain.TaskStatusInProgress, "uploading"))
	require.NoError(t, failed.MarkFailed("facebook", "token expired"))

	inProgress := storeTask(t, taskStore, "task_running")
	require.NoError(t, inProgress.UpdateStatus(domain.TaskStatusInProgress, "uploading chunk 3"))

	storeTask(t, taskStore, "task_pending")

	t.Run("completed", func(t *testing.T) {
		response, err := service.GetTaskStatus("task_completed", false, false)
		require.NoError(t, err)

		m := response.ToMap()
		assert.Equal(t, []string{"results", "status"}, sortedKeys(m))
		assert.Equal(t, "completed", m["status"])
	})

	t.Run("failed", func(t *testing.T) {
		response, err := service.GetTaskStatus("task_failed", false, false)
		require.NoError(t, err)

		m := response.ToMap()
		assert.Equal(t, []string{"error", "failed_platform", "status"}, sortedKeys(m))
		assert.Equal(t, "token expired", m["error"])
		assert.Equal(t, "facebook", m["failed_platform"])
	})

	t.Run("in_progress", func(t *testing.T) {
		response, err := service.GetTaskStatus("task_running", false, false)
		require.NoError(t, err)

		m := response.ToMap()
		assert.Equal(t, []string{"message", "status"}, sortedKeys(m))
		assert.Equal(t, "uploading chunk 3", m["message"])
	})

	t.Run("pending", func(t *testing.T) {
		response, err := service.GetTaskStatus("task_pending", false, false)
		require.NoError(t, err)

		m := response.ToMap()
		assert.Equal(t, []string{"status"}, sortedKeys(m))
		assert.Equal(t, "pending", m["status"])
	})
}

func TestGetTaskStatus_Errors(t *testing.T) {
	t.Parallel()

	service, _, _ := newTestService(t)

	_, err := service.GetTaskStatus("", false, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTaskStatus))

	_, err = service.GetTaskStatus("nope", false, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTaskStatus))
}

func TestGetTaskStatus_IncludeHistory(t *testing.T) {
	t.Parallel()

	service, taskStore, states := newTestService(t)
	storeTask(t, taskStore, "task1")
	require.NoError(t, states.InitializeTask("task1", domain.TaskStatusPending))
	_, err := states.TransitionState("task1", domain.TaskStatusInProgress, "started")
	require.NoError(t, err)

	response, err := service.GetTaskStatus("task1", true, false)
	require.NoError(t, err)
	require.Len(t, response.History, 2)
	assert.Equal(t, "in_progress", response.History[1]["to_state"])

	m := response.ToMap()
	assert.Contains(t, m, "history")
}

func TestGetTaskStatus_MissingHistoryTolerated(t *testing.T) {
	t.Parallel()

	service, taskStore, _ := newTestService(t)
	storeTask(t, taskStore, "task1")

	response, err := service.GetTaskStatus("task1", true, false)
	require.NoError(t, err)
	assert.Nil(t, response.History)
	assert.NotContains(t, response.ToMap(), "history")
}

func TestGetTaskStatus_IncludeProgress(t *testing.T) {
	t.Parallel()

	service, taskStore, _ := newTestService(t)
	task := storeTask(t, taskStore, "task1")
	task.AddPlatformResult("progress", map[string]interface{}{
		"current":    int64(50),
		"total":      int64(200),
		"percentage": 25.0,
	})

	response, err := service.GetTaskStatus("task1", false, true)
	require.NoError(t, err)
	require.NotNil(t, response.Progress)
	assert.Equal(t, 25.0, response.Progress["percentage"])
	assert.Contains(t, response.ToMap(), "progress")
}

func TestGetMultipleTaskStatuses(t *testing.T) {
	t.Parallel()

	service, taskStore, _ := newTestService(t)
	storeTask(t, taskStore, "task1")
	storeTask(t, taskStore, "task2")

	t.Run("skip missing", func(t *testing.T) {
		statuses, err := service.GetMultipleTaskStatuses([]string{"task1", "ghost", "task2"}, true)
		require.NoError(t, err)
		assert.Len(t, statuses, 2)
		assert.Contains(t, statuses, "task1")
		assert.Contains(t, statuses, "task2")
	})

	t.Run("strict", func(t *testing.T) {
		_, err := service.GetMultipleTaskStatuses([]string{"task1", "ghost"}, false)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTaskStatus))
	})
}

func TestNewTaskStatusQuery_Validation(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	earlier := now.Add(-time.Hour)

	_, err := NewTaskStatusQuery(nil, nil, nil, -1, 0)
	assert.True(t, errors.Is(err, ErrInvalidQuery))

	_, err = NewTaskStatusQuery(nil, nil, nil, 0, -1)
	assert.True(t, errors.Is(err, ErrInvalidQuery))

	_, err = NewTaskStatusQuery(nil, &now, &earlier, 0, 0)
	assert.True(t, errors.Is(err, ErrInvalidQuery))

	_, err = NewTaskStatusQuery([]domain.TaskStatus{"bogus"}, nil, nil, 0, 0)
	assert.True(t, errors.Is(err, ErrInvalidQuery))

	_, err = NewTaskStatusQuery([]domain.TaskStatus{domain.TaskStatusPending}, &earlier, &now, 10, 5)
	assert.NoError(t, err)
}

func TestQueryTaskStatuses(t *testing.T) {
	t.Parallel()

	service, taskStore, _ := newTestService(t)

	// Records with controlled creation times, oldest first.
	base := time.Now().UTC().Add(-time.Hour)
	for i, taskID := range []string{"old", "mid", "new"} {
		task, err := domain.NewTaskRecord(taskID)
		require.NoError(t, err)
		task.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, taskStore.StoreTask(task))
	}
	mid := taskStore.GetTask("mid")
	require.NoError(t, mid.UpdateStatus(domain.TaskStatusInProgress, "working"))
	require.NoError(t, taskStore.UpdateTask(mid))

	t.Run("newest first", func(t *testing.T) {
		query, err := NewTaskStatusQuery(nil, nil, nil, 0, 0)
		require.NoError(t, err)

		results, err := service.QueryTaskStatuses(query)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "new", results[0].TaskID)
		assert.Equal(t, "mid", results[1].TaskID)
		assert.Equal(t, "old", results[2].TaskID)
	})

	t.Run("status filter", func(t *testing.T) {
		query, err := NewTaskStatusQuery([]domain.TaskStatus{domain.TaskStatusInProgress}, nil, nil, 0, 0)
		require.NoError(t, err)

		results, err := service.QueryTaskStatuses(query)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "mid", results[0].TaskID)
	})

	t.Run("time range is half open", func(t *testing.T) {
		after := base.Add(time.Minute)
		before := base.Add(2 * time.Minute)
		query, err := NewTaskStatusQuery(nil, &after, &before, 0, 0)
		require.NoError(t, err)

		results, err := service.QueryTaskStatuses(query)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "mid", results[0].TaskID)
	})

	t.Run("offset and limit", func(t *testing.T) {
		query, err := NewTaskStatusQuery(nil, nil, nil, 1, 1)
		require.NoError(t, err)

		results, err := service.QueryTaskStatuses(query)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "mid", results[0].TaskID)
	})

	t.Run("offset beyond snapshot", func(t *testing.T) {
		query, err := NewTaskStatusQuery(nil, nil, nil, 0, 10)
		require.NoError(t, err)

		results, err := service.QueryTaskStatuses(query)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestGetTaskPerformanceMetrics(t *testing.T) {
	t.Parallel()

	service, taskStore, states := newTestService(t)
	task := storeTask(t, taskStore, "task1")
	task.CreatedAt = task.CreatedAt.Add(-2 * time.Minute)

	require.NoError(t, states.InitializeTask("task1", domain.TaskStatusPending))
	_, err := states.TransitionState("task1", domain.TaskStatusInProgress, "")
	require.NoError(t, err)

	metrics, err := service.GetTaskPerformanceMetrics("task1")
	require.NoError(t, err)
	assert.Equal(t, "task1", metrics.TaskID)
	assert.GreaterOrEqual(t, metrics.TotalDuration, 2*time.Minute)
	assert.Contains(t, metrics.StateDurations, domain.TaskStatusInProgress)
}

func TestGetAggregatedPerformanceMetrics(t *testing.T) {
	t.Parallel()

	service, taskStore, _ := newTestService(t)

	t.Run("empty store", func(t *testing.T) {
		metrics := service.GetAggregatedPerformanceMetrics()
		assert.Equal(t, 0, metrics.TaskCount)
		assert.Equal(t, time.Duration(0), metrics.MeanDuration)
	})

	storeTask(t, taskStore, "task1")
	task2 := storeTask(t, taskStore, "task2")
	require.NoError(t, task2.UpdateStatus(domain.TaskStatusInProgress, ""))

	metrics := service.GetAggregatedPerformanceMetrics()
	assert.Equal(t, 2, metrics.TaskCount)
	assert.Equal(t, 1, metrics.StatusCounts[domain.TaskStatusPending])
	assert.Equal(t, 1, metrics.StatusCounts[domain.TaskStatusInProgress])
	assert.Len(t, metrics.MeanDurationByStatus, 2)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
