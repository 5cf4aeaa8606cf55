package domain

import (
	"strings"
	"time"
)

// Result is the outcome of one platform operation: the uploaded media's or
// published post's identifier, its public URL when the platform returns one,
// and any platform-specific metadata.
type Result struct {
	Platform  string                 `json:"platform"`
	ID        string                 `json:"id"`
	Success   bool                   `json:"success"`
	URL       string                 `json:"url,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewResult builds a successful Result for the given platform and ID.
func NewResult(platform, id string) (*Result, error) {
	result := &Result{
		Platform:  platform,
		ID:        id,
		Success:   true,
		Timestamp: time.Now().UTC(),
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return result, nil
}

// NewFailedResult builds a failed Result carrying the error detail.
func NewFailedResult(platform, errDetail string) (*Result, error) {
	result := &Result{
		Platform:  platform,
		Success:   false,
		Error:     errDetail,
		Timestamp: time.Now().UTC(),
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return result, nil
}

// Validate enforces the Result invariants: a non-blank platform and error
// detail whenever Success is false.
func (r *Result) Validate() error {
	if strings.TrimSpace(r.Platform) == "" {
		return ErrEmptyPlatform
	}

	if !r.Success && r.Error == "" {
		return ErrMissingErrorDetail
	}

	return nil
}
