package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comparely/catalog-service/internal/types"
)

// ErrEmptyIdentity is returned when an edit names no product.
var ErrEmptyIdentity = errors.New("empty product identity")

// EditProduct merges a product body into its owning category and saves the
// category. identity comes from the request (id or url) and takes precedence
// over whatever the body carries. The owning category is found from the
// body's category_path or category; without one, the category that already
// holds the product is used.
func EditProduct(ctx context.Context, store types.CategoryStore, in *types.Product, identity Key, now time.Time) (*types.Product, error) {
	identity.Value = types.Canonical(identity.Value)
	if identity.Value == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyIdentity, identity.Field)
	}
	in.NormalizeIdentity()
	if identity.Field == "url" && in.URL == nil {
		in.URL = types.StringPtr(identity.Value)
	}

	filter := types.Filter{types.ProductsFieldPrefix + identity.Field: identity.Value}
	if owner, ok := ProductOwner.Resolve(in); ok {
		filter = owner.Filter()
	}

	doc, err := store.FindOne(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find owning category: %w", err)
	}
	if doc == nil {
		return nil, ErrNoOwningCategory
	}

	idx, _, err := upsertProduct(doc, in, identity, now)
	if err != nil {
		return nil, err
	}
	if err := store.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save category %s: %w", doc.Label(), err)
	}
	return &doc.Products[idx], nil
}
