package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/setka-project/medusa/internal/api"
	apiMiddleware "github.com/setka-project/medusa/internal/api/middleware"
	"github.com/setka-project/medusa/internal/config"
	"github.com/setka-project/medusa/internal/publish"
	"github.com/setka-project/medusa/internal/registry"
	"github.com/setka-project/medusa/internal/service"
	"github.com/setka-project/medusa/internal/state"
	"github.com/setka-project/medusa/internal/status"
	"github.com/setka-project/medusa/internal/store"
)

// application holds the wired components of the server. It owns the
// retention job and is responsible for stopping it on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	taskStore      *store.TaskStore
	stateManager   *state.TaskStateManager
	registry       *registry.Registry
	publishService *service.PublishService
	statusService  *status.Service
	retentionJob   *store.RetentionJob

	taskHandler    *api.TaskHandler
	authMiddleware *apiMiddleware.AuthMiddleware
}

// newApplication builds the component graph from configuration. Platform
// adapters are registered for every enabled platform; until real platform
// integrations ship, the mock adapter stands in for each.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	taskStore := store.NewTaskStore(logger)
	stateManager := state.NewTaskStateManager(logger)

	reg := registry.New()
	for name, platform := range cfg.Platforms {
		if !platform.Enabled {
			logger.Info("platform disabled, skipping registration", "platform", name)
			continue
		}
		if err := reg.Register(publish.NewMockAdapter(name)); err != nil {
			return nil, fmt.Errorf("registering platform %q: %w", name, err)
		}
	}

	publishService := service.NewPublishService(
		taskStore,
		stateManager,
		reg,
		cfg.PlatformConfigs(),
		logger,
	)
	statusService := status.NewService(taskStore, stateManager, logger)

	retentionJob := store.NewRetentionJob(taskStore, stateManager, store.RetentionConfig{
		MaxTaskAge:      cfg.Retention.MaxTaskAge(),
		CleanupInterval: cfg.Retention.CleanupInterval(),
	}, logger)

	tokenLifetime := time.Duration(cfg.Auth.TokenLifetimeMinutes) * time.Minute

	return &application{
		config:         cfg,
		logger:         logger,
		taskStore:      taskStore,
		stateManager:   stateManager,
		registry:       reg,
		publishService: publishService,
		statusService:  statusService,
		retentionJob:   retentionJob,
		taskHandler:    api.NewTaskHandler(publishService, statusService, taskStore, logger),
		authMiddleware: apiMiddleware.NewAuthMiddleware(cfg.Auth.JWTSecret, tokenLifetime),
	}, nil
}

// cleanup releases resources held by the application. Called after the HTTP
// server has drained.
func (app *application) cleanup() {
	app.retentionJob.Stop()

	report := app.publishService.Reconcile()
	if len(report.Unresolved) > 0 {
		app.logger.Warn("tasks left unresolved at shutdown", "count", len(report.Unresolved))
	}
}
