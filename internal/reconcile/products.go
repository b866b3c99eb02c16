package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/comparely/catalog-service/internal/metrics"
	"github.com/comparely/catalog-service/internal/pkg/cuid2"
	"github.com/comparely/catalog-service/internal/records"
	"github.com/comparely/catalog-service/internal/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrNoOwningCategory is returned when a product cannot be placed in any
// existing category.
var ErrNoOwningCategory = errors.New("no owning category")

// ProductIDPrefix prefixes ids generated for products that arrive without one.
const ProductIDPrefix = "prd"

// ProductReconciler folds product records into their owning categories.
type ProductReconciler struct {
	store   types.CategoryStore
	logger  zerolog.Logger
	metrics *metrics.Recorder
	opts    Options
}

// NewProductReconciler creates a product reconciler.
func NewProductReconciler(store types.CategoryStore, logger zerolog.Logger, opts Options) *ProductReconciler {
	return &ProductReconciler{
		store:   store,
		logger:  logger.With().Str("component", "product_reconciler").Logger(),
		metrics: metrics.NewRecorder(),
		opts:    opts.withDefaults(),
	}
}

type ownedProduct struct {
	line    int
	owner   Key
	product *types.Product
}

// Reconcile must run after the pass's categories are reconciled. Owning
// categories are looked up concurrently, products are merged one at a time in
// file order, and each touched category is saved exactly once at the end.
func (r *ProductReconciler) Reconcile(ctx context.Context, recs []records.Record[types.Product]) types.ProductStats {
	stats := types.ProductStats{Records: len(recs)}
	cache := NewMergeCache()

	var owned []ownedProduct
	var keys []Key
	pending := make(map[Key]struct{})
	for _, rec := range recs {
		if rec.Unparseable() {
			stats.Skipped++
			r.metrics.RecordProduct("skipped")
			continue
		}
		owner, ok := ProductOwner.Resolve(rec.Value)
		if !ok {
			stats.Dropped++
			r.metrics.RecordProduct("dropped")
			r.logger.Warn().Int("line", rec.Line).Str("product", string(rec.Value.ID)).
				Msg("Product has no category_path or category, dropping")
			continue
		}
		owned = append(owned, ownedProduct{line: rec.Line, owner: owner, product: rec.Value})
		if _, ok := pending[owner]; !ok {
			pending[owner] = struct{}{}
			keys = append(keys, owner)
		}
	}

	found, failed := r.lookup(ctx, keys)
	stats.Lookups = len(keys)
	stats.LookupFailures = failed
	for i, key := range keys {
		if found[i] != nil {
			cache.Put(key, found[i])
		}
	}

	now := r.opts.Now()
	for _, op := range owned {
		doc, ok := cache.Get(op.owner)
		r.metrics.RecordCacheLookup(ok)
		if !ok {
			stats.Dropped++
			r.metrics.RecordProduct("dropped")
			r.logger.Warn().Int("line", op.line).Str("category", op.owner.String()).
				Msg("No category found for product, dropping")
			continue
		}

		_, inserted, err := upsertProduct(doc, op.product, Key{}, now)
		if err != nil {
			stats.Dropped++
			r.metrics.RecordProduct("dropped")
			r.logger.Error().Err(err).Int("line", op.line).Msg("Failed to merge product")
			continue
		}
		if inserted {
			stats.Inserted++
			r.metrics.RecordProduct("inserted")
		} else {
			stats.Merged++
			r.metrics.RecordProduct("merged")
		}
		cache.Put(op.owner, doc)
	}

	for _, doc := range cache.Drain() {
		err := r.store.Save(ctx, doc)
		r.metrics.RecordSave(err)
		if err != nil {
			stats.SaveFailures++
			r.logger.Error().Err(err).Str("category", doc.Label()).Msg("Failed to save category")
			continue
		}
		stats.Saved++
	}

	r.logger.Info().
		Int("records", stats.Records).
		Int("merged", stats.Merged).
		Int("inserted", stats.Inserted).
		Int("dropped", stats.Dropped).
		Int("saved", stats.Saved).
		Int("save_failures", stats.SaveFailures).
		Msg("Products reconciled")

	return stats
}

// lookup fetches the owning category for every key concurrently. Each
// goroutine writes only its own slot.
func (r *ProductReconciler) lookup(ctx context.Context, keys []Key) ([]*types.Category, int) {
	found := make([]*types.Category, len(keys))
	errs := make([]error, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, key := range keys {
		g.Go(func() error {
			found[i], errs[i] = r.store.FindOne(gctx, key.Filter())
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			found[i] = nil
			r.logger.Error().Err(err).Str("category", keys[i].String()).Msg("Failed to look up category")
		}
	}
	return found, failed
}

// upsertProduct replaces the product in doc matching its identity, or appends
// it. An explicit key replaces the identity carried by the product. It
// returns the product's index and whether it was appended.
func upsertProduct(doc *types.Category, in *types.Product, explicit Key, now time.Time) (int, bool, error) {
	keys := []Key{explicit}
	if explicit.Value == "" {
		keys = ProductIdentity.Keys(in)
	}

	for _, key := range keys {
		if i := findProduct(doc.Products, key); i >= 0 {
			if err := MergeProduct(&doc.Products[i], in); err != nil {
				return -1, false, err
			}
			stampProduct(&doc.Products[i], now)
			return i, false, nil
		}
	}

	p := *in
	if explicit.Field == "id" {
		p.ID = types.ID(explicit.Value)
	}
	if p.ID.Empty() {
		p.ID = types.ID(cuid2.NewAt(ProductIDPrefix, now))
	}
	stampProduct(&p, now)
	doc.Products = append(doc.Products, p)
	return len(doc.Products) - 1, true, nil
}
