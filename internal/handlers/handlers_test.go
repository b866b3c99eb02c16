package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "github.com/comparely/catalog-service/docs"
	"github.com/comparely/catalog-service/internal/database"
	"github.com/comparely/catalog-service/internal/pipeline"
	"github.com/comparely/catalog-service/internal/storage"
	"github.com/comparely/catalog-service/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	router   *gin.Engine
	store    *database.MemoryStore
	runs     *database.MemoryRunStore
	files    *storage.LocalStorage
	runner   *pipeline.Runner
	shutdown chan struct{}
}

func newTestEnv(t *testing.T, wrap ...func(types.CategoryStore) types.CategoryStore) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	files, err := storage.NewLocalStorage(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)

	env := &testEnv{
		store:    database.NewMemoryStore(),
		runs:     database.NewMemoryRunStore(),
		files:    files,
		shutdown: make(chan struct{}, 1),
	}

	var store types.CategoryStore = env.store
	for _, w := range wrap {
		store = w(store)
	}
	cfg := pipeline.Config{Mode: pipeline.ModeScan, CategoriesPath: "categories", ProductsPath: "products", ArchiveDir: "old"}
	env.runner = pipeline.NewRunner(store, files, cfg, zerolog.Nop(),
		pipeline.WithRunRecorder(env.runs),
		pipeline.WithClock(func() time.Time { return testNow }),
	)

	Init(Dependencies{
		Store:    env.store,
		Runs:     env.runs,
		Runner:   env.runner,
		Shutdown: func() { env.shutdown <- struct{}{} },
		Now:      func() time.Time { return testNow },
	})
	env.router = NewRouter(context.Background(), RouterOptions{APIKey: testAPIKey, Docs: true}, zerolog.Nop())
	t.Cleanup(env.runner.Wait)
	return env
}

func (e *testEnv) seed(t *testing.T, docs ...*types.Category) {
	t.Helper()
	for _, doc := range docs {
		require.NoError(t, e.store.Save(context.Background(), doc))
	}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func categoryA() *types.Category {
	return &types.Category{
		ID:   "cat_a",
		Path: types.StringPtr("/a"),
		Name: types.StringPtr("A"),
		Products: []types.Product{
			{ID: "p1", URL: types.StringPtr("http://shop/p1"), CurrentPrice: types.TextPtr("9.99")},
		},
	}
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "connected", resp.Database)
	assert.Equal(t, types.PassIdle, resp.Pass)
}

func TestListCategories(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, categoryA(), &types.Category{ID: "cat_b", Path: types.StringPtr("/b")})

	w := env.do(t, http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	docs := decode[[]types.Category](t, w)
	require.Len(t, docs, 2)
	assert.Len(t, docs[0].Products, 1)

	w = env.do(t, http.MethodGet, "/categories?fields=path", "")
	require.Equal(t, http.StatusOK, w.Code)
	docs = decode[[]types.Category](t, w)
	require.Len(t, docs, 2)
	assert.Equal(t, types.ID("cat_a"), docs[0].ID)
	assert.Equal(t, "/a", *docs[0].Path)
	assert.Nil(t, docs[0].Name)
	assert.Empty(t, docs[0].Products)
}

func TestListCategories_Empty(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/categories", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetCategory(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, categoryA())

	w := env.do(t, http.MethodGet, "/category/cat_a", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A", *decode[types.Category](t, w).Name)

	w = env.do(t, http.MethodGet, "/category/cat_missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Error, "not found")
}

func TestUpdateCategory(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, categoryA())

	for _, method := range []string{http.MethodPut, http.MethodPost} {
		w := env.do(t, method, "/category/cat_a", `{"name":"Renamed `+method+`","id":"cat_other"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		doc := decode[types.Category](t, w)
		assert.Equal(t, types.ID("cat_a"), doc.ID)
		assert.Equal(t, "Renamed "+method, *doc.Name)
		assert.Len(t, doc.Products, 1)
	}
}

func TestUpdateCategory_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, categoryA())

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/category/cat_missing", `{"name":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/category/cat_a", `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/category/cat_a", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/category/cat_a", `{"products":"nope"}`).Code)
}

func TestUpdateCategory_RequiresAPIKey(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, categoryA())

	req := httptest.NewRequest(http.MethodPut, "/category/cat_a", bytes.NewReader([]byte(`{"name":"x"}`)))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFindCategory(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, categoryA())

	w := env.do(t, http.MethodPost, "/category", `{"path":" /a "}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.ID("cat_a"), decode[types.Category](t, w).ID)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/category", `{"path":"/zzz"}`).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/category", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/category", `[`).Code)
}

func TestListProducts(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, categoryA(), &types.Category{ID: "cat_b", Path: types.StringPtr("/b"), Products: []types.Product{{ID: "p2"}, {ID: "p3"}}})

	w := env.do(t, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	products := decode[[]types.Product](t, w)
	require.Len(t, products, 3)
	assert.Equal(t, types.ID("p1"), products[0].ID)
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, categoryA())

	w := env.do(t, http.MethodGet, "/product/p1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.Text("9.99"), *decode[types.Product](t, w).CurrentPrice)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/product/p404", "").Code)
}

func TestUpdateProduct(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, categoryA())

	w := env.do(t, http.MethodPut, "/product/p1", `{"current_price":8.99}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p := decode[types.Product](t, w)
	assert.Equal(t, types.Text("8.99"), *p.CurrentPrice)
	assert.Equal(t, "http://shop/p1", *p.URL)

	doc, err := env.store.FindOne(context.Background(), types.Filter{"id": "cat_a"})
	require.NoError(t, err)
	require.Len(t, doc.Products, 1)
	assert.Equal(t, types.Text("8.99"), *doc.Products[0].CurrentPrice)
	assert.True(t, doc.Products[0].LastUpdate.Equal(testNow))
}

func TestUpdateProduct_NumericIDInsertsIntoOwner(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, categoryA())

	w := env.do(t, http.MethodPost, "/product/7", `{"category_path":"/a","current_price":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, types.ID("7"), decode[types.Product](t, w).ID)

	w = env.do(t, http.MethodGet, "/product/7", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateProduct_NoOwner(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPut, "/product/p1", `{"current_price":"1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/product/p1", `{"current_price":{}}`).Code)
}

func TestUpdateProductByURL(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, categoryA())

	w := env.do(t, http.MethodPut, "/productbyurl/http%3A%2F%2Fshop%2Fp1", `{"brand":"Acme"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	p := decode[types.Product](t, w)
	assert.Equal(t, types.ID("p1"), p.ID)
	assert.Equal(t, types.Text("Acme"), *p.Brand)

	w = env.do(t, http.MethodPut, "/productbyurl/http%3A%2F%2Fshop%2Fnone", `{"brand":"Acme"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTriggerUpdate_Wait(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.files.Put(ctx, "categories/batch.jsonl", []byte(`{"path":"/a"}`+"\n"), nil))
	require.NoError(t, env.files.Put(ctx, "products/batch.jsonl", []byte(
		`{"id":"p1","category_path":"/a","current_price":"9.99"}`+"\n"+
			`{"id":"p1","category_path":"/a","current_price":"8.99"}`+"\n"), nil))

	w := env.do(t, http.MethodGet, "/update?wait=true", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	run := decode[types.IngestionRun](t, w)
	assert.Equal(t, types.StatusCompleted, run.Status)

	w = env.do(t, http.MethodGet, "/products", "")
	products := decode[[]types.Product](t, w)
	require.Len(t, products, 1)
	assert.Equal(t, types.Text("8.99"), *products[0].CurrentPrice)

	w = env.do(t, http.MethodGet, "/runs/"+run.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, run.ID, decode[types.IngestionRun](t, w).ID)
}

func TestTriggerUpdate_Async(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/update", "")
	require.Equal(t, http.StatusAccepted, w.Code)
	started := decode[UpdateStartedResponse](t, w)
	assert.Equal(t, "/runs/"+started.RunID, started.PollURL)

	env.runner.Wait()
	w = env.do(t, http.MethodGet, "/runs?status=completed", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[ListRunsResponse](t, w)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, started.RunID, list.Runs[0].ID)
}

// gatedStore blocks FindOne until the gate is closed.
type gatedStore struct {
	types.CategoryStore
	entered chan struct{}
	gate    chan struct{}
}

func (s *gatedStore) FindOne(ctx context.Context, filter types.Filter) (*types.Category, error) {
	select {
	case s.entered <- struct{}{}:
	default:
	}
	<-s.gate
	return s.CategoryStore.FindOne(ctx, filter)
}

func TestTriggerUpdate_Conflict(t *testing.T) {
	gated := &gatedStore{entered: make(chan struct{}, 1), gate: make(chan struct{})}
	env := newTestEnv(t, func(s types.CategoryStore) types.CategoryStore {
		gated.CategoryStore = s
		return gated
	})
	require.NoError(t, env.files.Put(context.Background(), "categories/batch.jsonl", []byte(`{"path":"/a"}`+"\n"), nil))

	require.Equal(t, http.StatusAccepted, env.do(t, http.MethodGet, "/update", "").Code)
	<-gated.entered

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodGet, "/update", "").Code)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodGet, "/update?wait=true", "").Code)

	w := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, types.PassCategoriesInFlight, decode[HealthResponse](t, w).Pass)

	close(gated.gate)
	env.runner.Wait()
}

func TestRuns_Errors(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/runs/run_missing", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/runs?status=bogus", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/runs?limit=1000", "").Code)
}

func TestShutdown(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/shutdown", "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	select {
	case <-env.shutdown:
	case <-time.After(time.Second):
		t.Fatal("shutdown func was not called")
	}
}

func TestOperationalRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/docs/doc.json", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/productbyurl/{url}")
}
