// Package observability provides logging, metrics, and tracing for hosts that
// evaluate conditions through the catalog.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
// The core evaluator itself never logs or records anything.
package observability

import (
	"log/slog"
	"time"

	cerrors "github.com/randalmurphal/condeval/pkg/condeval/errors"
)

// EnrichLogger adds condition context to a logger.
// Returns a new logger with condition and condition_id fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "positive", "3f6c...")
//	enriched.Debug("evaluating") // includes condition, condition_id
func EnrichLogger(logger *slog.Logger, name, id string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("condition", name),
		slog.String("condition_id", id),
	)
}

// LogRegistered logs a condition registration.
func LogRegistered(logger *slog.Logger, name, id, sexp string, version int) {
	if logger == nil {
		return
	}
	logger.Info("condition registered",
		slog.String("condition", name),
		slog.String("condition_id", id),
		slog.String("sexp", sexp),
		slog.Int("version", version),
	)
}

// LogEvaluation logs a successful evaluation.
func LogEvaluation(logger *slog.Logger, name string, result bool, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("condition evaluated",
		slog.String("condition", name),
		slog.Bool("result", result),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogEvaluationError logs a failed evaluation, including the error kind
// when it belongs to the evaluation taxonomy.
func LogEvaluationError(logger *slog.Logger, name string, err error) {
	if logger == nil {
		return
	}
	kind := "other"
	if k, ok := cerrors.Classify(err); ok {
		kind = k.String()
	}
	logger.Warn("condition evaluation failed",
		slog.String("condition", name),
		slog.String("error", err.Error()),
		slog.String("error_kind", kind),
	)
}

// LogStoreError logs a persistence failure (non-fatal).
func LogStoreError(logger *slog.Logger, name, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("condition store failed",
		slog.String("condition", name),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time.
//
//	elapsed := TimedOperation()
//	...
//	d := elapsed()
//	LogEvaluation(logger, name, ok, Milliseconds(d))
func TimedOperation() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}

// Milliseconds converts d to fractional milliseconds with microsecond precision.
func Milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
