// Package main implements the entry point for the Medusa server, which
// orchestrates media publishing tasks across platforms and exposes their
// status over HTTP.
package main

import (
	"fmt"
	"log"
	"log/slog"

	"github.com/setka-project/medusa/internal/config"
	"github.com/setka-project/medusa/internal/platform/logger"
)

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.startHTTPServer(app.setupRouter()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration, sets up logging, and wires the
// application components together.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"platforms", len(cfg.Platforms))

	return newApplication(cfg, appLogger)
}
