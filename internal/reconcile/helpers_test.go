package reconcile

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/comparely/catalog-service/internal/database"
	"github.com/comparely/catalog-service/internal/records"
	"github.com/comparely/catalog-service/internal/types"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

var testOptions = Options{Concurrency: 4, Now: func() time.Time { return testNow }}

func parse[T any](lines ...string) []records.Record[T] {
	return records.Parse[T]([]byte(strings.Join(lines, "\n")))
}

func allCategories(t *testing.T, store types.CategoryStore) []*types.Category {
	t.Helper()
	docs, err := store.Find(context.Background(), types.Filter{})
	require.NoError(t, err)
	return docs
}

func seed(t *testing.T, store types.CategoryStore, docs ...*types.Category) {
	t.Helper()
	for _, doc := range docs {
		require.NoError(t, store.Save(context.Background(), doc))
	}
}

var errStoreDown = errors.New("store down")

// flakyStore wraps a MemoryStore, failing calls for selected filters and
// counting concurrency and saves.
type flakyStore struct {
	*database.MemoryStore

	failFind map[string]bool
	failSave map[string]bool

	inFlight atomic.Int32
	peak     atomic.Int32

	mu    sync.Mutex
	saves map[types.ID]int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{
		MemoryStore: database.NewMemoryStore(),
		failFind:    map[string]bool{},
		failSave:    map[string]bool{},
		saves:       map[types.ID]int{},
	}
}

func (s *flakyStore) FindOne(ctx context.Context, filter types.Filter) (*types.Category, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	for field, value := range filter {
		if s.failFind[field+"="+value] {
			return nil, errStoreDown
		}
	}
	return s.MemoryStore.FindOne(ctx, filter)
}

func (s *flakyStore) Save(ctx context.Context, doc *types.Category) error {
	if s.failSave[doc.Label()] {
		return errStoreDown
	}
	if err := s.MemoryStore.Save(ctx, doc); err != nil {
		return err
	}
	s.mu.Lock()
	s.saves[doc.ID]++
	s.mu.Unlock()
	return nil
}

func (s *flakyStore) saveCount(id types.ID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves[id]
}
