package reconcile

import (
	"context"
	"time"

	"github.com/comparely/catalog-service/internal/metrics"
	"github.com/comparely/catalog-service/internal/records"
	"github.com/comparely/catalog-service/internal/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds concurrent store lookups within a pass.
const DefaultConcurrency = 8

// Options configures the reconcilers.
type Options struct {
	// Concurrency bounds concurrent store calls (default: DefaultConcurrency).
	Concurrency int
	// Now stamps lastUpdate (default: time.Now).
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// CategoryReconciler creates or updates category documents from batch records.
type CategoryReconciler struct {
	store   types.CategoryStore
	logger  zerolog.Logger
	metrics *metrics.Recorder
	opts    Options
}

// NewCategoryReconciler creates a category reconciler.
func NewCategoryReconciler(store types.CategoryStore, logger zerolog.Logger, opts Options) *CategoryReconciler {
	return &CategoryReconciler{
		store:   store,
		logger:  logger.With().Str("component", "category_reconciler").Logger(),
		metrics: metrics.NewRecorder(),
		opts:    opts.withDefaults(),
	}
}

// Reconcile applies every valid record and returns once all of them are done.
// Records sharing an identity are applied in file order; distinct identities
// run concurrently. Store failures are logged and counted, never returned.
func (r *CategoryReconciler) Reconcile(ctx context.Context, recs []records.Record[types.Category]) types.CategoryStats {
	stats := types.CategoryStats{Records: len(recs), Concurrency: r.opts.Concurrency}

	groups := make(map[Key][]*types.Category)
	var order []Key
	for _, rec := range recs {
		if rec.Unparseable() {
			stats.Skipped++
			r.metrics.RecordCategory("skipped")
			continue
		}
		key, ok := CategoryIdentity.Resolve(rec.Value)
		if !ok {
			stats.Skipped++
			r.metrics.RecordCategory("skipped")
			r.logger.Warn().Int("line", rec.Line).Msg("Category record has no path, url or name")
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], rec.Value)
	}

	results := make([]types.CategoryStats, len(order))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, key := range order {
		g.Go(func() error {
			results[i] = r.reconcileGroup(gctx, key, groups[key])
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		stats.Created += res.Created
		stats.Updated += res.Updated
		stats.Failed += res.Failed
	}

	r.logger.Info().
		Int("records", stats.Records).
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("failed", stats.Failed).
		Int("skipped", stats.Skipped).
		Msg("Categories reconciled")

	return stats
}

func (r *CategoryReconciler) reconcileGroup(ctx context.Context, key Key, recs []*types.Category) types.CategoryStats {
	var stats types.CategoryStats
	for _, rec := range recs {
		created, err := r.apply(ctx, key, rec)
		switch {
		case err != nil:
			stats.Failed++
			r.metrics.RecordCategory("failed")
			r.logger.Error().Err(err).Str("identity", key.String()).Msg("Failed to reconcile category")
		case created:
			stats.Created++
			r.metrics.RecordCategory("created")
		default:
			stats.Updated++
			r.metrics.RecordCategory("updated")
		}
	}
	return stats
}

func (r *CategoryReconciler) apply(ctx context.Context, key Key, rec *types.Category) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	existing, err := r.store.FindOne(ctx, key.Filter())
	if err != nil {
		return false, err
	}

	now := r.opts.Now()
	if existing == nil {
		doc := *rec
		doc.ID = ""
		stampCategory(&doc, now)
		err := r.store.Save(ctx, &doc)
		r.metrics.RecordSave(err)
		return true, err
	}

	if err := MergeCategory(existing, rec); err != nil {
		return false, err
	}
	stampCategory(existing, now)
	err = r.store.Save(ctx, existing)
	r.metrics.RecordSave(err)
	return false, err
}
