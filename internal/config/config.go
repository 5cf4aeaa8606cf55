package config

import (
	"time"

	"github.com/setka-project/medusa/internal/domain"
)

// Config holds all application configuration, grouped by concern.
type Config struct {
	Server    ServerConfig                     `mapstructure:"server" validate:"required"`
	Auth      AuthConfig                       `mapstructure:"auth" validate:"required"`
	Retention RetentionConfig                  `mapstructure:"retention" validate:"required"`
	Publish   PublishConfig                    `mapstructure:"publish" validate:"required"`
	Platforms map[string]domain.PlatformConfig `mapstructure:"platforms" validate:"dive"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Port            int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
}

// AuthConfig contains the settings for the status API's bearer tokens.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// RetentionConfig controls how long finished tasks stay queryable.
type RetentionConfig struct {
	MaxTaskAgeHours        int `mapstructure:"max_task_age_hours" validate:"required,gt=0"`
	CleanupIntervalMinutes int `mapstructure:"cleanup_interval_minutes" validate:"required,gt=0"`
}

// MaxTaskAge returns the retention age as a duration.
func (r RetentionConfig) MaxTaskAge() time.Duration {
	return time.Duration(r.MaxTaskAgeHours) * time.Hour
}

// CleanupInterval returns the cleanup cadence as a duration.
func (r RetentionConfig) CleanupInterval() time.Duration {
	return time.Duration(r.CleanupIntervalMinutes) * time.Minute
}

// PublishConfig carries the defaults applied to platforms that do not
// override them.
type PublishConfig struct {
	DefaultRetryAttempts  int `mapstructure:"default_retry_attempts" validate:"gte=0"`
	DefaultTimeoutSeconds int `mapstructure:"default_timeout_seconds" validate:"gte=0"`
	ResumableRetryLimit   int `mapstructure:"resumable_retry_limit" validate:"gte=0"`
}

// PlatformConfigs merges the publish defaults into each configured
// platform, so adapters always see a complete policy.
func (c *Config) PlatformConfigs() map[string]domain.PlatformConfig {
	out := make(map[string]domain.PlatformConfig, len(c.Platforms))
	for name, platform := range c.Platforms {
		if platform.PlatformName == "" {
			platform.PlatformName = name
		}
		if platform.RetryAttempts == 0 {
			platform.RetryAttempts = c.Publish.DefaultRetryAttempts
		}
		if platform.Timeout == 0 {
			platform.Timeout = time.Duration(c.Publish.DefaultTimeoutSeconds) * time.Second
		}
		out[name] = platform
	}
	return out
}
