package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string

	EligibilityCacheTTL time.Duration
}

// Load reads configuration from the environment, with an optional
// config.yaml in the working directory taking lower precedence.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("service_name", "veritas")
	v.SetDefault("http_port", "8080")
	v.SetDefault("postgres_dsn", "")
	v.SetDefault("eligibility_cache_ttl", "5m")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	ttl := v.GetDuration("eligibility_cache_ttl")
	if ttl <= 0 {
		return Config{}, fmt.Errorf("eligibility_cache_ttl must be positive, got %q", v.GetString("eligibility_cache_ttl"))
	}

	return Config{
		ServiceName:         v.GetString("service_name"),
		HTTPPort:            v.GetString("http_port"),
		PostgresDSN:         v.GetString("postgres_dsn"),
		EligibilityCacheTTL: ttl,
	}, nil
}
