package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional medusa.yaml file and from
// MEDUSA_-prefixed environment variables, environment taking precedence.
// The populated Config is validated before it is returned.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("medusa")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/medusa")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file is optional; environment alone is fine.
	}

	v.SetEnvPrefix("MEDUSA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv does not surface env-only keys through Unmarshal, so
	// bind the ones callers commonly set without a config file.
	for _, key := range []string{
		"server.port",
		"server.log_level",
		"server.shutdown_timeout_seconds",
		"auth.jwt_secret",
		"auth.token_lifetime_minutes",
		"retention.max_task_age_hours",
		"retention.cleanup_interval_minutes",
		"publish.default_retry_attempts",
		"publish.default_timeout_seconds",
		"publish.resumable_retry_limit",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetDefault("retention.max_task_age_hours", 24)
	v.SetDefault("retention.cleanup_interval_minutes", 60)

	v.SetDefault("publish.default_retry_attempts", 3)
	v.SetDefault("publish.default_timeout_seconds", 300)
	v.SetDefault("publish.resumable_retry_limit", 10)
}
