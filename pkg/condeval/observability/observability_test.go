package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	cerrors "github.com/randalmurphal/condeval/pkg/condeval/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// jsonLogger returns a debug-level JSON logger writing into buf.
func jsonLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// lastRecord decodes the last JSON log line in buf.
func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &rec))
	return rec
}

func TestLogHelpers_NilLogger(t *testing.T) {
	assert.Nil(t, EnrichLogger(nil, "a", "b"))
	assert.NotPanics(t, func() {
		LogRegistered(nil, "a", "b", "true", 1)
		LogEvaluation(nil, "a", true, 1)
		LogEvaluationError(nil, "a", cerrors.DivisionByZero)
		LogStoreError(nil, "a", "save", errors.New("x"))
	})
}

func TestLogEvaluation(t *testing.T) {
	var buf bytes.Buffer
	LogEvaluation(jsonLogger(&buf), "positive", true, 0.25)

	rec := lastRecord(t, &buf)
	assert.Equal(t, "condition evaluated", rec["msg"])
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "positive", rec["condition"])
	assert.Equal(t, true, rec["result"])
	assert.Equal(t, 0.25, rec["duration_ms"])
}

func TestLogEvaluationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind string
	}{
		{"taxonomy", cerrors.DivisionByZero, "division_by_zero"},
		{"variable error", &cerrors.VariableError{Slot: 2, Bound: 1}, "invalid_variable"},
		{"foreign", errors.New("boom"), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			LogEvaluationError(jsonLogger(&buf), "rule", tt.err)

			rec := lastRecord(t, &buf)
			assert.Equal(t, "WARN", rec["level"])
			assert.Equal(t, tt.kind, rec["error_kind"])
			assert.Equal(t, tt.err.Error(), rec["error"])
		})
	}
}

func TestLogRegisteredAndEnrich(t *testing.T) {
	var buf bytes.Buffer
	logger := EnrichLogger(jsonLogger(&buf), "rule", "id-1")
	logger.Info("hello")

	rec := lastRecord(t, &buf)
	assert.Equal(t, "rule", rec["condition"])
	assert.Equal(t, "id-1", rec["condition_id"])

	LogRegistered(jsonLogger(&buf), "rule", "id-1", "(and true false)", 2)
	rec = lastRecord(t, &buf)
	assert.Equal(t, "condition registered", rec["msg"])
	assert.Equal(t, "(and true false)", rec["sexp"])
	assert.Equal(t, float64(2), rec["version"])

	LogStoreError(jsonLogger(&buf), "rule", "save", errors.New("disk full"))
	rec = lastRecord(t, &buf)
	assert.Equal(t, "save", rec["operation"])
}

func TestTimedOperation(t *testing.T) {
	elapsed := TimedOperation()
	time.Sleep(2 * time.Millisecond)
	d := elapsed()
	assert.GreaterOrEqual(t, d, 2*time.Millisecond)
	assert.GreaterOrEqual(t, Milliseconds(d), 2.0)
}

func TestMilliseconds(t *testing.T) {
	assert.Equal(t, 0.0, Milliseconds(0))
	assert.Equal(t, 1.5, Milliseconds(1500*time.Microsecond))
	assert.Equal(t, 0.001, Milliseconds(1500*time.Nanosecond))
}

// findMetric finds a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestMetricsRecorder(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	recorder, err := NewMetricsRecorderWithMeter(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	recorder.RecordEvaluation(ctx, "rule", time.Millisecond, nil)
	recorder.RecordEvaluation(ctx, "rule", time.Millisecond, cerrors.InvalidVariable)
	recorder.RecordRegistration(ctx, "rule", 5)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	evals := findMetric(&rm, "condeval.evaluations")
	require.NotNil(t, evals)
	sum, ok := evals.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)

	errs := findMetric(&rm, "condeval.evaluation.errors")
	require.NotNil(t, errs)
	errSum, ok := errs.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, errSum.DataPoints, 1)
	assert.Equal(t, int64(1), errSum.DataPoints[0].Value)
	kind, ok := errSum.DataPoints[0].Attributes.Value(attribute.Key("error_kind"))
	require.True(t, ok)
	assert.Equal(t, "invalid_variable", kind.AsString())

	assert.NotNil(t, findMetric(&rm, "condeval.evaluation.latency_ms"))
	assert.NotNil(t, findMetric(&rm, "condeval.condition.size"))
}

func TestNewMetricsRecorder_UsesGlobalProvider(t *testing.T) {
	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)
	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop)
}

// setupTracingTest installs an in-memory span exporter.
func setupTracingTest(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	tracer = otel.Tracer("condeval")

	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		tracer = otel.Tracer("condeval")
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	})
	return exporter
}

func TestSpanManager(t *testing.T) {
	exporter := setupTracingTest(t)
	sm := NewSpanManager()

	t.Run("success", func(t *testing.T) {
		exporter.Reset()
		_, span := sm.StartEvaluationSpan(context.Background(), "rule", 3)
		sm.EndSpan(span, true, nil)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, "condeval.evaluate", spans[0].Name)
		assert.Equal(t, codes.Ok, spans[0].Status.Code)
		assert.Contains(t, spans[0].Attributes, attribute.String("condition.name", "rule"))
		assert.Contains(t, spans[0].Attributes, attribute.Int("condition.nodes", 3))
		assert.Contains(t, spans[0].Attributes, attribute.Bool("condition.result", true))
	})

	t.Run("error", func(t *testing.T) {
		exporter.Reset()
		_, span := sm.StartEvaluationSpan(context.Background(), "rule", 1)
		sm.EndSpan(span, false, cerrors.DivisionByZero)

		spans := exporter.GetSpans()
		require.Len(t, spans, 1)
		assert.Equal(t, codes.Error, spans[0].Status.Code)
		assert.Equal(t, "division by zero", spans[0].Status.Description)
		require.Len(t, spans[0].Events, 1)
	})

	t.Run("nil span", func(t *testing.T) {
		assert.NotPanics(t, func() { sm.EndSpan(nil, false, nil) })
	})
}

func TestNoop(t *testing.T) {
	ctx := context.Background()

	NoopMetrics{}.RecordEvaluation(ctx, "rule", time.Second, errors.New("x"))
	NoopMetrics{}.RecordRegistration(ctx, "rule", 1)

	got, span := NoopSpanManager{}.StartEvaluationSpan(ctx, "rule", 1)
	assert.Equal(t, ctx, got)
	assert.False(t, span.IsRecording())
	NoopSpanManager{}.EndSpan(span, true, nil)
}
