package domain

import (
	"fmt"
	"strings"
	"time"
)

// PlatformConfig holds the per-adapter settings supplied by the composition
// root: credentials, retry budget, per-attempt timeout, and an optional rate
// limit. The core passes it by reference and never mutates it.
type PlatformConfig struct {
	PlatformName  string                 `json:"platform_name"  mapstructure:"platform_name"`
	Enabled       bool                   `json:"enabled"        mapstructure:"enabled"`
	Credentials   map[string]interface{} `json:"credentials"    mapstructure:"credentials"`
	RetryAttempts int                    `json:"retry_attempts" mapstructure:"retry_attempts"`
	Timeout       time.Duration          `json:"timeout"        mapstructure:"timeout"`
	RateLimit     int                    `json:"rate_limit"     mapstructure:"rate_limit"`
}

// Validate checks the configuration invariants: retry attempts must be
// non-negative and the timeout, when set, must be positive.
func (c *PlatformConfig) Validate() error {
	if strings.TrimSpace(c.PlatformName) == "" {
		return ErrEmptyPlatform
	}

	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: retry attempts must be non-negative", ErrValidation)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be positive when set", ErrValidation)
	}

	return nil
}

// IsConfigured reports whether the platform is enabled and has credentials.
func (c *PlatformConfig) IsConfigured() bool {
	return c.Enabled && len(c.Credentials) > 0
}

// PublishRequest asks for one media file to be published to a set of
// platforms, each with its own metadata/template-variable map.
type PublishRequest struct {
	MediaFilePath string                            `json:"media_file_path"`
	Platforms     []string                          `json:"platforms"`
	Metadata      map[string]map[string]interface{} `json:"metadata,omitempty"`
	Priority      int                               `json:"priority"`
	ScheduleTime  *time.Time                        `json:"schedule_time,omitempty"`
	CreatedAt     time.Time                         `json:"created_at"`
}

// NewPublishRequest builds a PublishRequest with default priority and the
// creation timestamp set.
func NewPublishRequest(mediaFilePath string, platforms []string) *PublishRequest {
	return &PublishRequest{
		MediaFilePath: mediaFilePath,
		Platforms:     platforms,
		Metadata:      make(map[string]map[string]interface{}),
		Priority:      1,
		CreatedAt:     time.Now().UTC(),
	}
}

// Validate checks that at least one platform is requested and the priority
// is sane. Media file existence is the adapter's concern, not the core's.
func (r *PublishRequest) Validate() error {
	if len(r.Platforms) == 0 {
		return fmt.Errorf("%w: at least one platform must be specified", ErrValidation)
	}

	if r.Priority < 1 {
		return fmt.Errorf("%w: priority must be >= 1", ErrValidation)
	}

	for _, platform := range r.Platforms {
		if strings.TrimSpace(platform) == "" {
			return ErrEmptyPlatform
		}
	}

	return nil
}

// PlatformMetadata returns the metadata map for one platform, or an empty
// map when none was provided.
func (r *PublishRequest) PlatformMetadata(platform string) map[string]interface{} {
	if meta, ok := r.Metadata[platform]; ok {
		return meta
	}
	return map[string]interface{}{}
}
