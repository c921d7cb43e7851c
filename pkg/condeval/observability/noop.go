package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

// Compile-time interface check.
var _ MetricsRecorder = NoopMetrics{}

// RecordEvaluation does nothing.
func (NoopMetrics) RecordEvaluation(context.Context, string, time.Duration, error) {}

// RecordRegistration does nothing.
func (NoopMetrics) RecordRegistration(context.Context, string, int) {}

// NoopSpanManager is a SpanManager that does nothing.
type NoopSpanManager struct{}

// Compile-time interface check.
var _ SpanManager = NoopSpanManager{}

var noopSpan = noop.Span{}

// StartEvaluationSpan returns the context unchanged and a no-op span.
func (NoopSpanManager) StartEvaluationSpan(ctx context.Context, _ string, _ int) (context.Context, trace.Span) {
	return ctx, noopSpan
}

// EndSpan does nothing.
func (NoopSpanManager) EndSpan(trace.Span, bool, error) {}
