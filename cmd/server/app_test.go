package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/setka-project/medusa/internal/config"
	"github.com/setka-project/medusa/internal/domain"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:     8080,
			LogLevel: "info",
		},
		Auth: config.AuthConfig{
			JWTSecret:            "0123456789abcdef0123456789abcdef",
			TokenLifetimeMinutes: 60,
		},
		Retention: config.RetentionConfig{
			MaxTaskAgeHours:        24,
			CleanupIntervalMinutes: 60,
		},
		Publish: config.PublishConfig{
			DefaultRetryAttempts:  3,
			DefaultTimeoutSeconds: 300,
			ResumableRetryLimit:   10,
		},
		Platforms: map[string]domain.PlatformConfig{
			"youtube":  {Enabled: true},
			"mastodon": {Enabled: false},
		},
	}
}

func newTestApplication(t *testing.T) *application {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := newApplication(testConfig(), logger)
	require.NoError(t, err)
	t.Cleanup(app.retentionJob.Stop)
	return app
}

func TestNewApplication(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)

	// Only enabled platforms are registered.
	assert.Equal(t, []string{"youtube"}, app.registry.Platforms())
	assert.NotNil(t, app.publishService)
	assert.NotNil(t, app.statusService)
	assert.NotNil(t, app.retentionJob)
}

func TestRouter_HealthCheck(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	router := app.setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRouter_RequiresAuth(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	router := app.setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AuthorizedRequest(t *testing.T) {
	t.Parallel()

	app := newTestApplication(t)
	router := app.setupRouter()

	token, err := app.authMiddleware.IssueToken("operator")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":0`)
}
