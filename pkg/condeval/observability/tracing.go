package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("condeval")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartEvaluationSpan starts a span for one condition evaluation.
	StartEvaluationSpan(ctx context.Context, name string, nodes int) (context.Context, trace.Span)

	// EndSpan completes a span with the evaluation outcome.
	EndSpan(span trace.Span, result bool, err error)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return otelSpanManager{}
}

// StartEvaluationSpan starts a span for one condition evaluation.
func (otelSpanManager) StartEvaluationSpan(ctx context.Context, name string, nodes int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "condeval.evaluate",
		trace.WithAttributes(
			attribute.String("condition.name", name),
			attribute.Int("condition.nodes", nodes),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan completes a span, recording the result or the error.
func (otelSpanManager) EndSpan(span trace.Span, result bool, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Bool("condition.result", result))
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
