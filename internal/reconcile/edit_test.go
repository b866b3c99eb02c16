package reconcile

import (
	"context"
	"testing"

	"github.com/comparely/catalog-service/internal/database"
	"github.com/comparely/catalog-service/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditProduct_ByIDInHoldingCategory(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	seed(t, store,
		&types.Category{Path: types.StringPtr("/a")},
		&types.Category{Path: types.StringPtr("/b"), Products: []types.Product{{ID: "p1", Brand: types.TextPtr("Acme")}}},
	)

	p, err := EditProduct(ctx, store, &types.Product{CurrentPrice: types.TextPtr("3.50")}, Key{Field: "id", Value: "p1"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, types.ID("p1"), p.ID)
	assert.Equal(t, types.Text("3.50"), *p.CurrentPrice)
	assert.Equal(t, types.Text("Acme"), *p.Brand)

	doc, err := store.FindOne(ctx, types.Filter{"path": "/b"})
	require.NoError(t, err)
	require.Len(t, doc.Products, 1)
	assert.Equal(t, types.Text("3.50"), *doc.Products[0].CurrentPrice)
	assert.True(t, doc.Products[0].LastUpdate.Equal(testNow))
}

func TestEditProduct_InsertsIntoNamedCategory(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	seed(t, store, &types.Category{Path: types.StringPtr("/a")})

	p, err := EditProduct(ctx, store, &types.Product{CategoryPath: types.StringPtr("/a")}, Key{Field: "id", Value: "42"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, types.ID("42"), p.ID)

	doc, err := store.FindOne(ctx, types.Filter{"path": "/a"})
	require.NoError(t, err)
	require.Len(t, doc.Products, 1)
}

func TestEditProduct_ByURL(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	seed(t, store, &types.Category{Path: types.StringPtr("/a"), Products: []types.Product{{ID: "p1", URL: types.StringPtr("http://shop/p1")}}})

	p, err := EditProduct(ctx, store, &types.Product{Available: types.TextPtr("no")}, Key{Field: "url", Value: "http://shop/p1"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, types.ID("p1"), p.ID)
	assert.Equal(t, types.Text("no"), *p.Available)
}

func TestEditProduct_NoOwner(t *testing.T) {
	store := database.NewMemoryStore()

	_, err := EditProduct(context.Background(), store, &types.Product{}, Key{Field: "id", Value: "p1"}, testNow)
	assert.ErrorIs(t, err, ErrNoOwningCategory)

	_, err = EditProduct(context.Background(), store, &types.Product{}, Key{Field: "id", Value: "  "}, testNow)
	assert.ErrorIs(t, err, ErrEmptyIdentity)
}
