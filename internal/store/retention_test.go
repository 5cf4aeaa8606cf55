package store

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCleaner struct {
	calls int
}

func (f *fakeCleaner) CleanupOldTasks(time.Duration) int {
	f.calls++
	return 0
}

func TestRetentionJob_RunOnce(t *testing.T) {
	t.Parallel()

	taskStore := newTestStore()

	stale := mustTask(t, "stale")
	stale.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, taskStore.StoreTask(stale))
	require.NoError(t, taskStore.StoreTask(mustTask(t, "fresh")))

	cleaner := &fakeCleaner{}
	job := NewRetentionJob(taskStore, cleaner, RetentionConfig{
		MaxTaskAge:      24 * time.Hour,
		CleanupInterval: time.Hour,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	removed := job.RunOnce()
	assert.Equal(t, 1, removed)
	assert.False(t, taskStore.TaskExists("stale"))
	assert.True(t, taskStore.TaskExists("fresh"))
	assert.Equal(t, 1, cleaner.calls, "state histories are cleaned alongside records")
}

func TestRetentionJob_StartStop(t *testing.T) {
	t.Parallel()

	taskStore := newTestStore()
	stale := mustTask(t, "stale")
	stale.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, taskStore.StoreTask(stale))

	job := NewRetentionJob(taskStore, nil, RetentionConfig{
		MaxTaskAge:      30 * time.Minute,
		CleanupInterval: 10 * time.Millisecond,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	job.Start()

	assert.Eventually(t, func() bool {
		return !taskStore.TaskExists("stale")
	}, time.Second, 5*time.Millisecond)

	job.Stop()
	job.Stop() // idempotent
}

func TestNewRetentionJob_Defaults(t *testing.T) {
	t.Parallel()

	job := NewRetentionJob(newTestStore(), nil, RetentionConfig{},
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Equal(t, 24*time.Hour, job.config.MaxTaskAge)
	assert.Equal(t, time.Hour, job.config.CleanupInterval)
}
