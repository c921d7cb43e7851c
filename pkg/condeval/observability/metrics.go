package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	cerrors "github.com/randalmurphal/condeval/pkg/condeval/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records condition metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordEvaluation records an evaluation with its duration and error status.
	RecordEvaluation(ctx context.Context, name string, duration time.Duration, err error)

	// RecordRegistration records the size of a registered condition tree.
	RecordRegistration(ctx context.Context, name string, nodes int)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	evaluations metric.Int64Counter
	latency     metric.Float64Histogram
	errors      metric.Int64Counter
	size        metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily initializes the default OTel metrics instance.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics(otel.Meter("condeval"))
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics(meter metric.Meter) (*otelMetrics, error) {
	evaluations, err := meter.Int64Counter("condeval.evaluations",
		metric.WithDescription("Number of condition evaluations"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram("condeval.evaluation.latency_ms",
		metric.WithDescription("Condition evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	errs, err := meter.Int64Counter("condeval.evaluation.errors",
		metric.WithDescription("Number of failed condition evaluations"),
	)
	if err != nil {
		return nil, err
	}

	size, err := meter.Int64Histogram("condeval.condition.size",
		metric.WithDescription("Number of nodes in registered conditions"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		evaluations: evaluations,
		latency:     latency,
		errors:      errs,
		size:        size,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// NewMetricsRecorderWithMeter returns a MetricsRecorder bound to meter.
func NewMetricsRecorderWithMeter(meter metric.Meter) (MetricsRecorder, error) {
	m, err := newOtelMetrics(meter)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordEvaluation records an evaluation.
func (m *otelMetrics) RecordEvaluation(ctx context.Context, name string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("condition", name))

	m.evaluations.Add(ctx, 1, attrs)
	m.latency.Record(ctx, float64(duration.Microseconds())/1000, attrs)

	if err != nil {
		kind := "other"
		if k, ok := cerrors.Classify(err); ok {
			kind = k.String()
		}
		m.errors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("condition", name),
			attribute.String("error_kind", kind),
		))
	}
}

// RecordRegistration records a condition registration.
func (m *otelMetrics) RecordRegistration(ctx context.Context, name string, nodes int) {
	m.size.Record(ctx, int64(nodes), metric.WithAttributes(attribute.String("condition", name)))
}
