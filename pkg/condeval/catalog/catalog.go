// Package catalog keeps named conditions for a host application.
//
// A Catalog registers conditions under names, persists their S-expression
// projection to a store.Store, and evaluates them with logging, metrics and
// tracing around the pure condeval evaluator. Evaluation errors are returned
// exactly as the evaluator produced them.
//
//	cat := catalog.New[float64]()
//	defer cat.Close()
//
//	_, err := cat.Register(ctx, "positive",
//	    condeval.Greater(numexpr.Var[float64](0), numexpr.Const(0.0)))
//	ok, err := cat.Evaluate(ctx, "positive", []float64{3})
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/randalmurphal/condeval/pkg/condeval"
	"github.com/randalmurphal/condeval/pkg/condeval/observability"
	"github.com/randalmurphal/condeval/pkg/condeval/store"
)

// Sentinel errors for catalog operations.
var (
	// ErrUnknownCondition indicates no condition is registered under the name.
	ErrUnknownCondition = errors.New("unknown condition")

	// ErrNilCondition indicates Register was called with a nil condition.
	ErrNilCondition = errors.New("condition cannot be nil")
)

// Result is the outcome of evaluating one named condition.
type Result struct {
	Name  string
	Value bool
	Err   error
}

type entry[T condeval.Element] struct {
	id   string
	cond *condeval.Condition[T]
	size int
}

// Catalog is a registry of named conditions over element type T.
// It is safe for concurrent use.
type Catalog[T condeval.Element] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	cfg     catalogConfig
}

// New creates a Catalog with the given options.
func New[T condeval.Element](opts ...Option) *Catalog[T] {
	cfg := defaultCatalogConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.store == nil {
		cfg.store = store.NewMemoryStore()
	}
	return &Catalog[T]{
		entries: make(map[string]entry[T]),
		cfg:     cfg,
	}
}

// Register adds or replaces the condition stored under name and persists
// its projection. Returns the stored record.
//
// Concurrent registrations of the same name leave the catalog holding one of
// the conditions; the store's Version still counts every save.
func (c *Catalog[T]) Register(ctx context.Context, name string, cond *condeval.Condition[T]) (store.Record, error) {
	if cond == nil {
		return store.Record{}, ErrNilCondition
	}

	id := uuid.NewString()
	text := cond.String()

	// The store may be remote; evaluations keep running while it saves.
	rec, err := c.cfg.store.Save(store.Record{ID: id, Name: name, Sexp: text})
	if err != nil {
		observability.LogStoreError(c.cfg.logger, name, "save", err)
		return store.Record{}, fmt.Errorf("register %q: %w", name, err)
	}

	size := cond.Size()
	c.mu.Lock()
	c.entries[name] = entry[T]{id: id, cond: cond, size: size}
	c.mu.Unlock()

	c.cfg.metrics.RecordRegistration(ctx, name, size)
	observability.LogRegistered(c.cfg.logger, name, id, text, rec.Version)
	return rec, nil
}

// Get returns the condition registered under name.
func (c *Catalog[T]) Get(name string) (*condeval.Condition[T], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[name]
	return e.cond, ok
}

// Names returns the registered names in sorted order.
func (c *Catalog[T]) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove unregisters name and deletes its record.
func (c *Catalog[T]) Remove(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCondition, name)
	}
	if err := c.cfg.store.Delete(name); err != nil {
		observability.LogStoreError(c.cfg.logger, name, "delete", err)
		return fmt.Errorf("remove %q: %w", name, err)
	}
	delete(c.entries, name)
	return nil
}

// Evaluate evaluates the condition registered under name against binding.
// Errors from the condition are returned unchanged.
func (c *Catalog[T]) Evaluate(ctx context.Context, name string, binding []T) (bool, error) {
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownCondition, name)
	}
	return c.evaluate(ctx, name, e, binding)
}

// EvaluateAll evaluates every registered condition against binding.
// Results are ordered by name; a failing condition does not stop the others.
func (c *Catalog[T]) EvaluateAll(ctx context.Context, binding []T) []Result {
	c.mu.RLock()
	snapshot := make(map[string]entry[T], len(c.entries))
	for name, e := range c.entries {
		snapshot[name] = e
	}
	c.mu.RUnlock()

	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]Result, 0, len(names))
	for _, name := range names {
		v, err := c.evaluate(ctx, name, snapshot[name], binding)
		results = append(results, Result{Name: name, Value: v, Err: err})
	}
	return results
}

func (c *Catalog[T]) evaluate(ctx context.Context, name string, e entry[T], binding []T) (bool, error) {
	ctx, span := c.cfg.spans.StartEvaluationSpan(ctx, name, e.size)
	elapsed := observability.TimedOperation()

	result, err := e.cond.Evaluate(binding)

	d := elapsed()
	c.cfg.spans.EndSpan(span, result, err)
	c.cfg.metrics.RecordEvaluation(ctx, name, d, err)

	logger := observability.EnrichLogger(c.cfg.logger, name, e.id)
	if err != nil {
		observability.LogEvaluationError(logger, name, err)
		return false, err
	}
	observability.LogEvaluation(logger, name, result, observability.Milliseconds(d))
	return result, nil
}

// Record returns the persisted projection of name, read through the store.
// Returns an error wrapping store.ErrNotFound if nothing is stored under name.
func (c *Catalog[T]) Record(name string) (store.Record, error) {
	rec, err := c.cfg.store.Load(name)
	if err != nil {
		return store.Record{}, fmt.Errorf("record %q: %w", name, err)
	}
	return rec, nil
}

// Records returns the persisted projections ordered by name.
func (c *Catalog[T]) Records() ([]store.Record, error) {
	return c.cfg.store.List()
}

// Close closes the underlying store.
func (c *Catalog[T]) Close() error {
	return c.cfg.store.Close()
}

// levelHandler drops records below level before delegating.
type levelHandler struct {
	level slog.Leveler
	slog.Handler
}

func (h *levelHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= h.level.Level() && h.Handler.Enabled(ctx, l)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{level: h.level, Handler: h.Handler.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{level: h.level, Handler: h.Handler.WithGroup(name)}
}
