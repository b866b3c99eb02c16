// Package pipeline runs reconciliation passes over category and product
// batch files.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/comparely/catalog-service/internal/metrics"
	"github.com/comparely/catalog-service/internal/pkg/cuid2"
	"github.com/comparely/catalog-service/internal/reconcile"
	"github.com/comparely/catalog-service/internal/storage"
	"github.com/comparely/catalog-service/internal/types"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// KindCategories and KindProducts name the two batch files of a pass.
	KindCategories = "categories"
	KindProducts   = "products"

	runIDPrefix = "run"
)

// ErrPassInProgress is returned when a pass is requested while one is running.
var ErrPassInProgress = errors.New("ingestion pass already in progress")

// Config locates batch files and the archive directory.
type Config struct {
	Mode Mode
	// CategoriesPath is a directory in scan mode and a file key in fixed mode.
	CategoriesPath string
	ProductsPath   string
	ArchiveDir     string
	Concurrency    int
}

// RunRecorder persists ingestion run records.
type RunRecorder interface {
	SaveRun(ctx context.Context, run *types.IngestionRun) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithRunRecorder persists every run at start and at completion.
func WithRunRecorder(runs RunRecorder) Option {
	return func(r *Runner) { r.runs = runs }
}

// WithClock replaces time.Now for stamping and archive names.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// Runner executes at most one pass at a time.
type Runner struct {
	store   types.CategoryStore
	files   storage.Storage
	runs    RunRecorder
	cfg     Config
	logger  zerolog.Logger
	metrics *metrics.Recorder
	tracer  trace.Tracer
	now     func() time.Time

	running atomic.Bool
	wg      sync.WaitGroup

	mu      sync.RWMutex
	state   types.PassState
	current *types.IngestionRun
}

// NewRunner creates a pass runner.
func NewRunner(store types.CategoryStore, files storage.Storage, cfg Config, logger zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{
		store:   store,
		files:   files,
		cfg:     cfg,
		logger:  logger.With().Str("component", "pipeline").Logger(),
		metrics: metrics.NewRecorder(),
		tracer:  otel.Tracer("catalog-service/pipeline"),
		now:     time.Now,
		state:   types.PassIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a pass and blocks until it finishes. The returned run is
// non-nil whenever the pass started, even if it failed.
func (r *Runner) Run(ctx context.Context, trigger types.IngestionTrigger) (*types.IngestionRun, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrPassInProgress
	}
	defer r.running.Store(false)

	run := r.begin(trigger)
	err := r.execute(ctx, run)
	return run, err
}

// Start launches a pass in the background and returns a snapshot of the
// started run. The pass outlives ctx's cancellation; use Wait to join it.
func (r *Runner) Start(ctx context.Context, trigger types.IngestionTrigger) (*types.IngestionRun, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrPassInProgress
	}

	run := r.begin(trigger)
	snapshot := *run

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.running.Store(false)
		if err := r.execute(context.WithoutCancel(ctx), run); err != nil {
			r.logger.Error().Err(err).Str("run_id", run.ID).Msg("Background ingestion pass failed")
		}
	}()
	return &snapshot, nil
}

// Wait blocks until background passes have finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Running reports whether a pass is in progress.
func (r *Runner) Running() bool {
	return r.running.Load()
}

// State returns the current pass state.
func (r *Runner) State() types.PassState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Current returns a copy of the in-flight or most recent run, or nil.
func (r *Runner) Current() *types.IngestionRun {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return nil
	}
	run := *r.current
	return &run
}

func (r *Runner) begin(trigger types.IngestionTrigger) *types.IngestionRun {
	now := r.now()
	run := &types.IngestionRun{
		ID:        cuid2.NewAt(runIDPrefix, now),
		Trigger:   trigger,
		Status:    types.StatusRunning,
		State:     types.PassIdle,
		StartedAt: now,
	}
	r.mu.Lock()
	r.current = run
	r.state = types.PassIdle
	r.mu.Unlock()
	return run
}

func (r *Runner) transition(run *types.IngestionRun, state types.PassState) {
	r.mu.Lock()
	r.state = state
	run.State = state
	r.mu.Unlock()
	r.logger.Debug().Str("run_id", run.ID).Str("state", string(state)).Msg("Pass state changed")
}

func (r *Runner) update(fn func()) {
	r.mu.Lock()
	fn()
	r.mu.Unlock()
}

func (r *Runner) execute(ctx context.Context, run *types.IngestionRun) (err error) {
	ctx, span := r.tracer.Start(ctx, "pipeline.pass", trace.WithAttributes(
		attribute.String("run.id", run.ID),
		attribute.String("run.trigger", string(run.Trigger)),
	))
	defer span.End()

	r.metrics.SetPassInProgress(true)
	defer r.metrics.SetPassInProgress(false)

	logger := r.logger.With().Str("run_id", run.ID).Logger()
	logger.Info().Str("trigger", string(run.Trigger)).Msg("Starting ingestion pass")
	r.saveRun(ctx, run)

	defer func() {
		r.finish(ctx, run, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	batch, err := DiscoverPhase(ctx, r.files, r.cfg)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}
	r.update(func() {
		run.CategoriesFile = batch.Categories
		run.ProductsFile = batch.Products
	})
	if batch.Empty() {
		logger.Info().Msg("No batch files to ingest")
	}

	opts := reconcile.Options{Concurrency: r.cfg.Concurrency, Now: r.now}

	r.transition(run, types.PassCategoriesInFlight)
	if batch.Categories != "" {
		recs, stats, err := ParsePhase[types.Category](ctx, r.files, batch.Categories, logger)
		r.update(func() { run.CategoriesParse = stats })
		if err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		r.metrics.RecordParse(KindCategories, stats.Valid, stats.Unparseable)
		res := reconcile.NewCategoryReconciler(r.store, logger, opts).Reconcile(ctx, recs)
		r.update(func() { run.Categories = res })
	}
	r.transition(run, types.PassCategoriesDone)

	r.transition(run, types.PassProductsInFlight)
	if batch.Products != "" {
		recs, stats, err := ParsePhase[types.Product](ctx, r.files, batch.Products, logger)
		r.update(func() { run.ProductsParse = stats })
		if err != nil {
			return fmt.Errorf("products: %w", err)
		}
		r.metrics.RecordParse(KindProducts, stats.Valid, stats.Unparseable)
		res := reconcile.NewProductReconciler(r.store, logger, opts).Reconcile(ctx, recs)
		r.update(func() { run.Products = res })
	}
	r.transition(run, types.PassProductsDone)

	// Files of an interrupted pass stay in place to be replayed.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("pass interrupted before archiving: %w", err)
	}

	at := r.now()
	for _, f := range []struct{ key, kind string }{
		{batch.Categories, KindCategories},
		{batch.Products, KindProducts},
	} {
		if f.key == "" {
			continue
		}
		dst, err := ArchivePhase(ctx, r.files, f.key, f.kind, r.cfg.ArchiveDir, run.ID, at)
		r.update(func() {
			if dst != "" {
				run.ArchivedFiles = append(run.ArchivedFiles, dst)
			}
			if err != nil {
				run.ArchiveErrors = append(run.ArchiveErrors, err.Error())
			}
		})
		if err != nil {
			r.metrics.RecordArchiveFailure()
			logger.Error().Err(err).Str("file", f.key).Msg("Failed to archive batch file")
		}
	}
	r.transition(run, types.PassArchived)
	return nil
}

func (r *Runner) finish(ctx context.Context, run *types.IngestionRun, err error) {
	now := r.now()
	r.mu.Lock()
	run.CompletedAt = &now
	run.DurationMillis = now.Sub(run.StartedAt).Milliseconds()
	run.Status = types.StatusCompleted
	if err != nil {
		run.Status = types.StatusFailed
		run.Error = err.Error()
	}
	r.state = types.PassIdle
	r.mu.Unlock()

	r.metrics.RecordPass(string(run.Status), now.Sub(run.StartedAt))
	r.saveRun(context.WithoutCancel(ctx), run)

	event := r.logger.Info()
	if err != nil {
		event = r.logger.Error().Err(err)
	}
	event.Str("run_id", run.ID).
		Str("status", string(run.Status)).
		Int("categories_created", run.Categories.Created).
		Int("categories_updated", run.Categories.Updated).
		Int("products_merged", run.Products.Merged).
		Int("products_inserted", run.Products.Inserted).
		Int("products_dropped", run.Products.Dropped).
		Int64("duration_ms", run.DurationMillis).
		Msg("Ingestion pass finished")
}

func (r *Runner) saveRun(ctx context.Context, run *types.IngestionRun) {
	if r.runs == nil {
		return
	}
	r.mu.RLock()
	snapshot := *run
	r.mu.RUnlock()
	if err := r.runs.SaveRun(ctx, &snapshot); err != nil {
		r.logger.Warn().Err(err).Str("run_id", run.ID).Msg("Failed to record ingestion run")
	}
}
