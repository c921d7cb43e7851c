package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every settings environment variable.
const EnvPrefix = "CONDEVAL_"

// settingsEnv holds raw env values for Settings.
type settingsEnv struct {
	StoreDriver string `env:"STORE_DRIVER"`
	StorePath   string `env:"STORE_PATH"`
	StoreDSN    string `env:"STORE_DSN"`
	CacheSize   int    `env:"STORE_CACHE_SIZE"`
	LogLevel    string `env:"LOG_LEVEL"`
	Metrics     bool   `env:"METRICS_ENABLED"`
	Tracing     bool   `env:"TRACING_ENABLED"`
}

// ApplyEnv overrides s with any CONDEVAL_* environment variables that are set:
//
//	CONDEVAL_STORE_DRIVER, CONDEVAL_STORE_PATH, CONDEVAL_STORE_DSN,
//	CONDEVAL_STORE_CACHE_SIZE, CONDEVAL_LOG_LEVEL, CONDEVAL_METRICS_ENABLED,
//	CONDEVAL_TRACING_ENABLED
//
// Unset variables leave the corresponding field unchanged.
func ApplyEnv(s Settings) (Settings, error) {
	raw := settingsEnv{
		StoreDriver: s.StoreDriver,
		StorePath:   s.StorePath,
		StoreDSN:    s.StoreDSN,
		CacheSize:   s.CacheSize,
		LogLevel:    s.LogLevel.String(),
		Metrics:     s.Metrics,
		Tracing:     s.Tracing,
	}
	if err := env.ParseWithOptions(&raw, env.Options{Prefix: EnvPrefix}); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}

	out := Settings{
		StoreDriver: strings.ToLower(raw.StoreDriver),
		StorePath:   raw.StorePath,
		StoreDSN:    raw.StoreDSN,
		CacheSize:   raw.CacheSize,
		Metrics:     raw.Metrics,
		Tracing:     raw.Tracing,
	}
	if err := out.LogLevel.UnmarshalText([]byte(raw.LogLevel)); err != nil {
		return Settings{}, fmt.Errorf("parse log level: %w", err)
	}
	if err := out.validate(); err != nil {
		return Settings{}, err
	}
	return out, nil
}
