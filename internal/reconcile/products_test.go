package reconcile

import (
	"context"
	"regexp"
	"testing"

	"github.com/comparely/catalog-service/internal/database"
	"github.com/comparely/catalog-service/internal/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductReconciler_LaterRecordWins(t *testing.T) {
	store := database.NewMemoryStore()
	seed(t, store, &types.Category{Path: types.StringPtr("/a")})

	r := NewProductReconciler(store, zerolog.Nop(), testOptions)
	stats := r.Reconcile(context.Background(), parse[types.Product](
		`{"id":"p1","category_path":"/a","current_price":"9.99","brand":"Acme"}`,
		`{"id":"p1","category_path":"/a","current_price":"8.99"}`,
	))
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 1, stats.Merged)
	assert.Equal(t, 1, stats.Saved)

	docs := allCategories(t, store)
	require.Len(t, docs, 1)
	require.Len(t, docs[0].Products, 1)
	p := docs[0].Products[0]
	assert.Equal(t, types.Text("8.99"), *p.CurrentPrice)
	assert.Equal(t, types.Text("Acme"), *p.Brand)
	assert.True(t, p.LastUpdate.Equal(testNow))
	assert.True(t, *p.WasUpdated)
}

func TestProductReconciler_MatchesStoredProductByURL(t *testing.T) {
	store := database.NewMemoryStore()
	seed(t, store, &types.Category{
		Path: types.StringPtr("/a"),
		Products: []types.Product{
			{ID: "p0", Name: types.TextPtr("Other")},
			{ID: "legacy-1", URL: types.StringPtr("http://shop/p1"), Name: types.TextPtr("Widget")},
		},
	})

	r := NewProductReconciler(store, zerolog.Nop(), testOptions)
	stats := r.Reconcile(context.Background(), parse[types.Product](
		`{"id":"new-1","url":"http://shop/p1","category_path":"/a","current_price":"5"}`,
	))
	assert.Equal(t, 1, stats.Merged)

	doc := allCategories(t, store)[0]
	require.Len(t, doc.Products, 2)
	assert.Equal(t, types.ID("legacy-1"), doc.Products[1].ID)
	assert.Equal(t, types.Text("Widget"), *doc.Products[1].Name)
	assert.Equal(t, types.Text("5"), *doc.Products[1].CurrentPrice)
}

func TestProductReconciler_OwnerByLegacyName(t *testing.T) {
	store := database.NewMemoryStore()
	seed(t, store, &types.Category{Name: types.StringPtr("Books")})

	r := NewProductReconciler(store, zerolog.Nop(), testOptions)
	stats := r.Reconcile(context.Background(), parse[types.Product](`{"id":"p1","category":"Books"}`))
	assert.Equal(t, 1, stats.Inserted)
	assert.Len(t, allCategories(t, store)[0].Products, 1)
}

func TestProductReconciler_GeneratesMissingIDs(t *testing.T) {
	store := database.NewMemoryStore()
	seed(t, store, &types.Category{Path: types.StringPtr("/a")})

	r := NewProductReconciler(store, zerolog.Nop(), testOptions)
	r.Reconcile(context.Background(), parse[types.Product](`{"category_path":"/a","name":"Anonymous"}`))

	doc := allCategories(t, store)[0]
	require.Len(t, doc.Products, 1)
	assert.Regexp(t, regexp.MustCompile(`^prd_[0-9A-Za-z]{24}$`), string(doc.Products[0].ID))
}

func TestProductReconciler_DropsOrphans(t *testing.T) {
	store := database.NewMemoryStore()
	seed(t, store, &types.Category{Path: types.StringPtr("/a")})

	r := NewProductReconciler(store, zerolog.Nop(), testOptions)
	stats := r.Reconcile(context.Background(), parse[types.Product](
		`{"id":"p1"}`,
		`{"id":"p2","category_path":"/missing"}`,
		`{oops`,
		`{"id":"p3","category_path":"/a"}`,
	))
	assert.Equal(t, 4, stats.Records)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 2, stats.Dropped)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 2, stats.Lookups)
	assert.Len(t, allCategories(t, store)[0].Products, 1)
}

func TestProductReconciler_SavesEachCategoryOnce(t *testing.T) {
	store := newFlakyStore()
	seed(t, store,
		&types.Category{Path: types.StringPtr("/a"), Name: types.StringPtr("A")},
		&types.Category{Path: types.StringPtr("/b")},
	)
	docs := allCategories(t, store)
	a, b := docs[0].ID, docs[1].ID

	r := NewProductReconciler(store, zerolog.Nop(), testOptions)
	stats := r.Reconcile(context.Background(), parse[types.Product](
		`{"id":"p1","category_path":"/a"}`,
		`{"id":"p2","category_path":"/b"}`,
		`{"id":"p3","category":"A"}`,
		`{"id":"p1","category_path":"/a","brand":"x"}`,
	))
	assert.Equal(t, 2, stats.Saved)
	assert.Equal(t, 3, stats.Lookups)
	// One save from seeding plus one from the pass.
	assert.Equal(t, 2, store.saveCount(a))
	assert.Equal(t, 2, store.saveCount(b))

	docs = allCategories(t, store)
	assert.Len(t, docs[0].Products, 2)
	assert.Len(t, docs[1].Products, 1)
}

func TestProductReconciler_LookupFailureDropsOnlyThatCategory(t *testing.T) {
	store := newFlakyStore()
	seed(t, store,
		&types.Category{Path: types.StringPtr("/a")},
		&types.Category{Path: types.StringPtr("/b")},
	)
	store.failFind["path=/b"] = true

	r := NewProductReconciler(store, zerolog.Nop(), testOptions)
	stats := r.Reconcile(context.Background(), parse[types.Product](
		`{"id":"p1","category_path":"/a"}`,
		`{"id":"p2","category_path":"/b"}`,
	))
	assert.Equal(t, 1, stats.LookupFailures)
	assert.Equal(t, 1, stats.Dropped)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, 1, stats.Saved)
}

func TestProductReconciler_SaveFailureIsCounted(t *testing.T) {
	store := newFlakyStore()
	seed(t, store, &types.Category{Path: types.StringPtr("/a")})
	store.failSave["/a"] = true

	r := NewProductReconciler(store, zerolog.Nop(), testOptions)
	stats := r.Reconcile(context.Background(), parse[types.Product](`{"id":"p1","category_path":"/a"}`))
	assert.Equal(t, 1, stats.SaveFailures)
	assert.Equal(t, 0, stats.Saved)
	assert.Empty(t, allCategories(t, store)[0].Products)
}

func TestUpsertProduct_ExplicitKey(t *testing.T) {
	doc := &types.Category{Products: []types.Product{{ID: "p1", URL: types.StringPtr("http://shop/p1")}}}

	idx, inserted, err := upsertProduct(doc, &types.Product{ID: "p9", Brand: types.TextPtr("x")},
		Key{Field: "url", Value: "http://shop/p1"}, testNow)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, 0, idx)
	assert.Equal(t, types.ID("p1"), doc.Products[0].ID)

	idx, inserted, err = upsertProduct(doc, &types.Product{Brand: types.TextPtr("y")}, Key{Field: "id", Value: "p2"}, testNow)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, 1, idx)
	assert.Equal(t, types.ID("p2"), doc.Products[1].ID)
}
