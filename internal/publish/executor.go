package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/setka-project/medusa/internal/domain"
	"github.com/setka-project/medusa/internal/template"
)

// Executor drives an adapter through the full resilient flow: the
// authentication gate, template substitution for posts, pre-flight
// validation, and a bounded retry loop with exponential backoff around
// per-attempt timeouts.
type Executor struct {
	retryAttempts int
	timeout       time.Duration
	logger        *slog.Logger

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewExecutor builds an executor from the platform's configuration.
func NewExecutor(config domain.PlatformConfig, logger *slog.Logger) *Executor {
	return &Executor{
		retryAttempts: config.RetryAttempts,
		timeout:       config.Timeout,
		logger:        logger.With(slog.String("component", "executor")),
		sleep:         time.Sleep,
	}
}

// Run executes content against the adapter. Authentication, template, and
// validation failures return immediately; retryable execute failures are
// retried up to the configured attempts with 2^attempt second backoff, and
// the last error propagates after exhaustion. The progress callback (may
// be nil) is handed to every execute attempt.
func (e *Executor) Run(
	ctx context.Context,
	adapter Adapter,
	content Content,
	progress ProgressFunc,
) (*domain.Result, error) {
	platform := adapter.Platform()

	authenticated, err := adapter.Authenticate(ctx)
	if err != nil {
		var authErr *AuthenticationError
		if errors.As(err, &authErr) {
			return nil, err
		}
		return nil, &AuthenticationError{Platform: platform, Message: err.Error()}
	}
	if !authenticated {
		return nil, &AuthenticationError{Platform: platform, Message: "adapter is not authenticated"}
	}

	if content.Kind == ContentPost && content.Body != "" {
		body, err := template.Substitute(content.Body, content.TemplateVars)
		if err != nil {
			return nil, fmt.Errorf("substituting post template for %s: %w", platform, err)
		}
		content.Body = body
	}

	if err := adapter.Validate(ctx, content); err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return nil, err
		}
		return nil, &ValidationError{Platform: platform, Message: err.Error()}
	}

	var lastErr error
	for attempt := 0; attempt <= e.retryAttempts; attempt++ {
		result, err := e.attempt(ctx, adapter, content, progress)
		if err == nil {
			e.logger.Info("execute succeeded",
				"platform", platform,
				"attempt", attempt+1)
			return result, nil
		}

		lastErr = err
		classification := Classify(err)

		e.logger.Warn("execute attempt failed",
			"platform", platform,
			"attempt", attempt+1,
			"max_attempts", e.retryAttempts+1,
			"retryable", classification.Retryable,
			"reason", classification.Reason,
			"error", err)

		if !classification.Retryable || attempt == e.retryAttempts {
			break
		}

		e.sleep(backoffDelay(attempt))
	}

	return nil, lastErr
}

// attempt invokes Execute once under the per-attempt timeout.
func (e *Executor) attempt(
	ctx context.Context,
	adapter Adapter,
	content Content,
	progress ProgressFunc,
) (*domain.Result, error) {
	attemptCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	result, err := adapter.Execute(attemptCtx, content, progress)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			// The attempt timed out but the caller's context is still
			// live, so the outer loop may retry.
			return nil, fmt.Errorf("execute attempt timed out after %s: %w",
				e.timeout, context.DeadlineExceeded)
		}
		return nil, err
	}
	return result, nil
}

// backoffDelay returns the exponential backoff for a zero-based attempt
// index: 1s, 2s, 4s, 8s.
func backoffDelay(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt)) * float64(time.Second))
}
