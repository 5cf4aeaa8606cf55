package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/setka-project/medusa/internal/domain"
)

// RetentionConfig controls the periodic cleanup of old task records.
type RetentionConfig struct {
	// MaxTaskAge is how old a record's CreatedAt may be before it is
	// removed.
	MaxTaskAge time.Duration

	// CleanupInterval is how often the retention pass runs.
	CleanupInterval time.Duration

	// Statuses optionally restricts cleanup to records in these statuses.
	// Empty means every status is eligible.
	Statuses []domain.TaskStatus
}

// DefaultRetentionConfig returns the retention defaults: 24h age limit
// checked hourly, all statuses eligible.
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		MaxTaskAge:      24 * time.Hour,
		CleanupInterval: time.Hour,
	}
}

// HistoryCleaner removes per-task state histories older than the given age
// and returns the number removed. Satisfied by state.TaskStateManager.
type HistoryCleaner interface {
	CleanupOldTasks(maxAge time.Duration) int
}

// RetentionJob periodically removes old task records (and, when a cleaner
// is attached, their state histories). It owns its ticker goroutine and is
// stopped explicitly by whoever started it.
type RetentionJob struct {
	store   *TaskStore
	cleaner HistoryCleaner
	config  RetentionConfig
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewRetentionJob builds a retention job for the given store. The cleaner
// may be nil when only store records need retention.
func NewRetentionJob(
	store *TaskStore,
	cleaner HistoryCleaner,
	config RetentionConfig,
	logger *slog.Logger,
) *RetentionJob {
	if config.MaxTaskAge <= 0 {
		config.MaxTaskAge = DefaultRetentionConfig().MaxTaskAge
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultRetentionConfig().CleanupInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &RetentionJob{
		store:   store,
		cleaner: cleaner,
		config:  config,
		logger:  logger.With(slog.String("component", "retention_job")),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the ticker goroutine. Each pass takes the store lock like
// any other caller; the ticker reschedules the next pass automatically.
func (j *RetentionJob) Start() {
	j.wg.Add(1)
	go j.run()

	j.logger.Info("retention job started",
		"max_task_age", j.config.MaxTaskAge.String(),
		"cleanup_interval", j.config.CleanupInterval.String())
}

// Stop cancels the job and waits for the ticker goroutine to exit, so the
// scheduling resource never leaks. Safe to call more than once.
func (j *RetentionJob) Stop() {
	j.once.Do(func() {
		j.cancel()
		j.wg.Wait()
		j.logger.Info("retention job stopped")
	})
}

// RunOnce executes a single retention pass and returns the number of task
// records removed.
func (j *RetentionJob) RunOnce() int {
	removed := j.store.CleanupOldTasks(j.config.MaxTaskAge, j.config.Statuses...)

	if j.cleaner != nil {
		histories := j.cleaner.CleanupOldTasks(j.config.MaxTaskAge)
		if histories > 0 {
			j.logger.Debug("cleaned up old state histories", "count", histories)
		}
	}

	return removed
}

func (j *RetentionJob) run() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-j.ctx.Done():
			return
		case <-ticker.C:
			removed := j.RunOnce()
			j.logger.Debug("retention pass finished", "removed", removed)
		}
	}
}
