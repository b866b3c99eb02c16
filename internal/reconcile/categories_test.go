package reconcile

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/comparely/catalog-service/internal/database"
	"github.com/comparely/catalog-service/internal/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryReconciler_CreatesAndStamps(t *testing.T) {
	store := database.NewMemoryStore()
	r := NewCategoryReconciler(store, zerolog.Nop(), testOptions)

	stats := r.Reconcile(context.Background(), parse[types.Category](
		`{"id":"ignored","path":"/a","name":"A","level":2}`,
	))
	assert.Equal(t, 1, stats.Created)

	docs := allCategories(t, store)
	require.Len(t, docs, 1)
	doc := docs[0]
	assert.NotEqual(t, types.ID("ignored"), doc.ID)
	assert.Equal(t, "A", *doc.Name)
	require.NotNil(t, doc.LastUpdate)
	assert.True(t, doc.LastUpdate.Equal(testNow))
	assert.True(t, *doc.WasUpdated)
	assert.JSONEq(t, `2`, string(doc.Extra["level"]))
}

func TestCategoryReconciler_MergesExisting(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	seed(t, store, &types.Category{
		Path:     types.StringPtr("/a"),
		Name:     types.StringPtr("Old"),
		URL:      types.StringPtr("http://old"),
		Products: []types.Product{{ID: "p1"}},
	})
	before := allCategories(t, store)[0]

	r := NewCategoryReconciler(store, zerolog.Nop(), testOptions)
	stats := r.Reconcile(ctx, parse[types.Category](`{"path":"/a","name":"New"}`))
	assert.Equal(t, 0, stats.Created)
	assert.Equal(t, 1, stats.Updated)

	docs := allCategories(t, store)
	require.Len(t, docs, 1)
	doc := docs[0]
	assert.Equal(t, before.ID, doc.ID)
	assert.Equal(t, "New", *doc.Name)
	assert.Equal(t, "http://old", *doc.URL)
	assert.Len(t, doc.Products, 1)
	assert.True(t, doc.LastUpdate.Equal(testNow))
}

func TestCategoryReconciler_LegacyIdentities(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	seed(t, store,
		&types.Category{URL: types.StringPtr("http://shop/books"), Name: types.StringPtr("Books")},
		&types.Category{Name: types.StringPtr("Toys")},
	)

	r := NewCategoryReconciler(store, zerolog.Nop(), testOptions)
	stats := r.Reconcile(ctx, parse[types.Category](
		`{"url":"http://shop/books","name":"Books & More"}`,
		`{"name":"Toys","url":"http://shop/toys"}`,
	))
	assert.Equal(t, 1, stats.Updated)
	// A record carrying a url is identified by url only, so Toys is not found.
	assert.Equal(t, 1, stats.Created)
	assert.Len(t, allCategories(t, store), 3)
}

func TestCategoryReconciler_SameIdentityAppliedInOrder(t *testing.T) {
	store := database.NewMemoryStore()
	r := NewCategoryReconciler(store, zerolog.Nop(), testOptions)

	stats := r.Reconcile(context.Background(), parse[types.Category](
		`{"path":"/a","name":"first"}`,
		`{"path":"/a","name":"second"}`,
		`{"path":"/a","url":"http://a"}`,
	))
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 2, stats.Updated)

	docs := allCategories(t, store)
	require.Len(t, docs, 1)
	assert.Equal(t, "second", *docs[0].Name)
	assert.Equal(t, "http://a", *docs[0].URL)
}

func TestCategoryReconciler_SkipsUnusableRecords(t *testing.T) {
	store := database.NewMemoryStore()
	r := NewCategoryReconciler(store, zerolog.Nop(), testOptions)

	stats := r.Reconcile(context.Background(), parse[types.Category](
		`not json`,
		`{"description":"no identity"}`,
		`{"path":"/a"}`,
	))
	assert.Equal(t, 3, stats.Records)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 1, stats.Created)
}

func TestCategoryReconciler_StoreErrorsDoNotAbort(t *testing.T) {
	store := newFlakyStore()
	store.failFind["path=/broken"] = true
	store.failSave["/unsaved"] = true
	r := NewCategoryReconciler(store, zerolog.Nop(), testOptions)

	stats := r.Reconcile(context.Background(), parse[types.Category](
		`{"path":"/broken"}`,
		`{"path":"/unsaved"}`,
		`{"path":"/ok"}`,
	))
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 1, stats.Created)

	docs := allCategories(t, store)
	require.Len(t, docs, 1)
	assert.Equal(t, "/ok", *docs[0].Path)
}

func TestCategoryReconciler_BoundedConcurrency(t *testing.T) {
	store := newFlakyStore()
	r := NewCategoryReconciler(store, zerolog.Nop(), Options{Concurrency: 3, Now: testOptions.Now})

	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, fmt.Sprintf(`{"path":"/c%d"}`, i))
	}
	stats := r.Reconcile(context.Background(), parse[types.Category](lines...))

	assert.Equal(t, 20, stats.Created)
	assert.Equal(t, 3, stats.Concurrency)
	assert.LessOrEqual(t, store.peak.Load(), int32(3))
	assert.Len(t, allCategories(t, store), 20)
}

func TestCategoryReconciler_CanceledContext(t *testing.T) {
	store := database.NewMemoryStore()
	r := NewCategoryReconciler(store, zerolog.Nop(), testOptions)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats := r.Reconcile(ctx, parse[types.Category](`{"path":"/a"}`))
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 0, store.Len())
}

func TestCategoryReconciler_ReplayIsIdempotent(t *testing.T) {
	store := database.NewMemoryStore()
	first := testNow
	second := testNow.Add(time.Hour)

	batch := parse[types.Category](`{"path":"/a","name":"Caf\u00e9"}`)
	stats := NewCategoryReconciler(store, zerolog.Nop(), Options{Now: func() time.Time { return first }}).
		Reconcile(context.Background(), batch)
	assert.Equal(t, 1, stats.Created)
	stats = NewCategoryReconciler(store, zerolog.Nop(), Options{Now: func() time.Time { return second }}).
		Reconcile(context.Background(), batch)
	assert.Equal(t, 1, stats.Updated)

	docs := allCategories(t, store)
	require.Len(t, docs, 1)
	assert.Equal(t, "Caf\u00e9", *docs[0].Name)
	require.NotNil(t, docs[0].LastUpdate)
	assert.True(t, second.Equal(*docs[0].LastUpdate), "lastUpdate %v", *docs[0].LastUpdate)
	assert.True(t, *docs[0].WasUpdated)
}
