package publish

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the publishing error taxonomy. Wrapper types below
// carry platform and contextual detail and unwrap to these, so callers can
// branch with errors.Is while logs keep the full story.
var (
	// ErrAuthentication indicates the adapter is not (or no longer)
	// authenticated. Never retried.
	ErrAuthentication = errors.New("authentication failed")

	// ErrValidation indicates the content or metadata was rejected before
	// any network work. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrNetwork indicates a transient transport failure. Retryable.
	ErrNetwork = errors.New("network error")

	// ErrRateLimit indicates the platform asked us to slow down. Retryable.
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrUpload is the generic media transfer failure.
	ErrUpload = errors.New("upload failed")

	// ErrPublish is the generic post publishing failure.
	ErrPublish = errors.New("publish failed")
)

// AuthenticationError reports a failed or missing authentication for one
// platform.
type AuthenticationError struct {
	Platform string
	Message  string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %s", e.Platform, e.Message)
}

func (e *AuthenticationError) Unwrap() error { return ErrAuthentication }

// ValidationError reports content or metadata rejected by an adapter's
// pre-flight checks.
type ValidationError struct {
	Platform string
	Field    string
	Message  string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: invalid %s: %s", e.Platform, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: validation failed: %s", e.Platform, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NetworkError reports a transient transport failure, keeping the
// underlying cause for logs.
type NetworkError struct {
	Platform string
	Message  string
	Cause    error
}

func (e *NetworkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: network error: %s: %v", e.Platform, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: network error: %s", e.Platform, e.Message)
}

func (e *NetworkError) Unwrap() error { return ErrNetwork }

// RateLimitError reports a quota or throttling rejection, with an optional
// retry-after hint from the platform.
type RateLimitError struct {
	Platform   string
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limit exceeded: %s (retry after %s)",
			e.Platform, e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("%s: rate limit exceeded: %s", e.Platform, e.Message)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimit }

// UploadError is the generic media transfer failure.
type UploadError struct {
	Platform string
	Message  string
	Cause    error
}

func (e *UploadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: upload failed: %s: %v", e.Platform, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: upload failed: %s", e.Platform, e.Message)
}

func (e *UploadError) Unwrap() error { return ErrUpload }

// PublishError is the generic post publishing failure.
type PublishError struct {
	Platform string
	Message  string
	Cause    error
}

func (e *PublishError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: publish failed: %s: %v", e.Platform, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: publish failed: %s", e.Platform, e.Message)
}

func (e *PublishError) Unwrap() error { return ErrPublish }

// HTTPStatusError is the raw shape platform sessions report before
// translation into the taxonomy above.
type HTTPStatusError struct {
	Platform   string
	StatusCode int
	Reason     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Platform, e.StatusCode, e.Reason)
}
