package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Store drivers accepted in Settings.StoreDriver.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Settings are the catalog settings read from a Config.
type Settings struct {
	// StoreDriver is "memory" (default), "sqlite" or "postgres".
	StoreDriver string
	// StorePath is the SQLite file path. Default ":memory:".
	StorePath string
	// StoreDSN is the postgres:// URL for the postgres driver.
	StoreDSN string
	// CacheSize is the number of records kept in an LRU cache in front of
	// the store. Zero disables the cache.
	CacheSize int
	// LogLevel is the minimum level for evaluation logs. Default info.
	LogLevel slog.Level
	// Metrics enables OpenTelemetry metrics.
	Metrics bool
	// Tracing enables OpenTelemetry spans.
	Tracing bool
}

// DefaultSettings returns the settings used when no config is supplied.
func DefaultSettings() Settings {
	return Settings{
		StoreDriver: DriverMemory,
		StorePath:   ":memory:",
		LogLevel:    slog.LevelInfo,
	}
}

// ParseSettings extracts Settings from cfg.
//
// Recognized keys:
//
//	store.driver     memory | sqlite | postgres
//	store.path       file path for sqlite
//	store.dsn        postgres:// URL for postgres
//	store.cache_size records cached in front of the store, 0 disables
//	log.level        debug | info | warn | error
//	metrics.enabled  bool
//	tracing.enabled  bool
func ParseSettings(cfg Config) (Settings, error) {
	def := DefaultSettings()
	s := Settings{
		StoreDriver: strings.ToLower(cfg.String("store.driver", def.StoreDriver)),
		StorePath:   cfg.String("store.path", def.StorePath),
		StoreDSN:    cfg.String("store.dsn", ""),
		CacheSize:   cfg.Int("store.cache_size", 0),
		LogLevel:    def.LogLevel,
		Metrics:     cfg.Bool("metrics.enabled", false),
		Tracing:     cfg.Bool("tracing.enabled", false),
	}

	if lvl := cfg.String("log.level", ""); lvl != "" {
		if err := s.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			return Settings{}, fmt.Errorf("parse log level: %w", err)
		}
	}

	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) validate() error {
	switch s.StoreDriver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if s.StoreDSN == "" {
			return fmt.Errorf("store.dsn is required for the %s driver", DriverPostgres)
		}
	default:
		return fmt.Errorf("unsupported store driver: %s", s.StoreDriver)
	}
	if s.CacheSize < 0 {
		return fmt.Errorf("store.cache_size must not be negative: %d", s.CacheSize)
	}
	return nil
}

// FromFile loads configuration from a file, auto-detecting format by extension.
// Supported extensions: .yaml, .yml, .json. Environment variables written as
// $VAR or ${VAR} are expanded before parsing.
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return Config{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// FromYAML parses YAML data into a Config.
func FromYAML(data []byte) (Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return New(m), nil
}

// FromJSON parses JSON data into a Config.
func FromJSON(data []byte) (Config, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	return New(m), nil
}
