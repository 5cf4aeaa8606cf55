package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apiMiddleware "github.com/setka-project/medusa/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware. Everything under /v1 requires a bearer token; the health
// check stays public for load balancers.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	r.Route("/v1", func(r chi.Router) {
		r.Use(app.authMiddleware.Authenticate)

		r.Post("/tasks", app.taskHandler.CreateTask)
		r.Get("/tasks", app.taskHandler.ListTasks)
		r.Get("/tasks/{taskID}", app.taskHandler.GetTask)
		r.Post("/tasks/{taskID}/cancel", app.taskHandler.CancelTask)
		r.Get("/tasks/{taskID}/metrics", app.taskHandler.GetTaskMetrics)
		r.Get("/metrics", app.taskHandler.GetAggregatedMetrics)
		r.Get("/storage/stats", app.taskHandler.GetStorageStats)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
