package catalog

import (
	"fmt"
	"log/slog"

	"github.com/randalmurphal/condeval/pkg/condeval/config"
	"github.com/randalmurphal/condeval/pkg/condeval/observability"
	"github.com/randalmurphal/condeval/pkg/condeval/store"
)

// catalogConfig holds the collaborators of a Catalog.
type catalogConfig struct {
	store   store.Store
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

// defaultCatalogConfig returns a config with an in-memory store and all
// observability disabled.
func defaultCatalogConfig() catalogConfig {
	return catalogConfig{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures a Catalog.
type Option func(*catalogConfig)

// WithStore sets where condition projections are persisted.
// Default: a new store.MemoryStore.
func WithStore(s store.Store) Option {
	return func(c *catalogConfig) {
		c.store = s
	}
}

// WithLogger sets the logger for registration and evaluation events.
// Default: no logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *catalogConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
// Default: observability.NoopMetrics.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *catalogConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpanManager sets the span manager.
// Default: observability.NoopSpanManager.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *catalogConfig) {
		if s != nil {
			c.spans = s
		}
	}
}

// FromSettings builds options from parsed settings. The returned store is
// owned by the catalog and closed by Catalog.Close.
//
// A nil logger leaves logging disabled; otherwise the logger is filtered to
// settings.LogLevel.
func FromSettings(s config.Settings, logger *slog.Logger) ([]Option, error) {
	var st store.Store
	switch s.StoreDriver {
	case config.DriverSQLite:
		sq, err := store.NewSQLiteStore(s.StorePath)
		if err != nil {
			return nil, fmt.Errorf("open condition store: %w", err)
		}
		st = sq
	case config.DriverPostgres:
		pg, err := store.NewPostgresStore(s.StoreDSN)
		if err != nil {
			return nil, fmt.Errorf("open condition store: %w", err)
		}
		st = pg
	default:
		st = store.NewMemoryStore()
	}

	if s.CacheSize > 0 {
		cached, err := store.NewCachedStore(st, s.CacheSize)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		st = cached
	}

	opts := []Option{WithStore(st)}
	if logger != nil {
		opts = append(opts, WithLogger(slog.New(&levelHandler{level: s.LogLevel, Handler: logger.Handler()})))
	}
	if s.Metrics {
		opts = append(opts, WithMetrics(observability.NewMetricsRecorder()))
	}
	if s.Tracing {
		opts = append(opts, WithSpanManager(observability.NewSpanManager()))
	}
	return opts, nil
}
