package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/comparely/catalog-service/internal/pkg/cuid2"
	"github.com/comparely/catalog-service/internal/types"
)

// MemoryStore is an in-process CategoryStore for development and tests.
// Documents are kept encoded, so callers always receive independent copies
// the way they would from the database.
type MemoryStore struct {
	mu    sync.RWMutex
	docs  map[string][]byte
	order []string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

// FindOne returns the first matching category in insertion order.
func (s *MemoryStore) FindOne(ctx context.Context, filter types.Filter) (*types.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		raw := s.docs[id]
		ok, err := matches(raw, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			return decodeCategory(raw)
		}
	}
	return nil, nil
}

// Find returns every matching category in insertion order.
func (s *MemoryStore) Find(ctx context.Context, filter types.Filter, projection ...string) ([]*types.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*types.Category
	for _, id := range s.order {
		raw := s.docs[id]
		ok, err := matches(raw, filter)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if len(projection) > 0 {
			if raw, err = project(raw, projection); err != nil {
				return nil, err
			}
		}
		doc, err := decodeCategory(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

// Save upserts the document by id.
func (s *MemoryStore) Save(ctx context.Context, doc *types.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.ID.Empty() {
		doc.ID = types.ID(cuid2.New(CategoryIDPrefix))
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode category %s: %w", doc.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := string(doc.ID)
	if _, ok := s.docs[id]; !ok {
		s.order = append(s.order, id)
	}
	s.docs[id] = raw
	return nil
}

// UpdateByID merges top-level fields into the stored document.
func (s *MemoryStore) UpdateByID(ctx context.Context, id string, fields map[string]any) (*types.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	patch, err := encodePatch(fields)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.docs[id]
	if !ok {
		return nil, types.ErrNotFound
	}

	var doc, changes map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(patch, &changes); err != nil {
		return nil, err
	}
	for k, v := range changes {
		doc[k] = v
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	s.docs[id] = merged
	return decodeCategory(merged)
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored categories.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// matches applies filter to an encoded document with the same semantics as
// the JSONB queries: top-level string equality, and products.<field> for
// embedded products.
func matches(raw []byte, filter types.Filter) (bool, error) {
	if len(filter) == 0 {
		return true, nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false, err
	}
	for k, want := range filter {
		if field, ok := strings.CutPrefix(k, types.ProductsFieldPrefix); ok {
			var products []map[string]json.RawMessage
			if rawProducts, ok := doc["products"]; ok {
				if err := json.Unmarshal(rawProducts, &products); err != nil {
					return false, err
				}
			}
			found := false
			for _, p := range products {
				if stringValue(p[field]) == want {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
			continue
		}
		if v, ok := doc[k]; !ok || stringValue(v) != want {
			return false, nil
		}
	}
	return true, nil
}

// stringValue mirrors the ->> operator: strings unquoted, other values as
// JSON text, null never equal to anything.
func stringValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "\x00"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return string(raw)
	}
	return s
}

func project(raw []byte, fields []string) ([]byte, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	keep := map[string]json.RawMessage{"id": doc["id"]}
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			keep[f] = v
		}
	}
	return json.Marshal(keep)
}

// MemoryRunStore keeps ingestion runs in memory.
type MemoryRunStore struct {
	mu   sync.RWMutex
	runs map[string]types.IngestionRun
}

// NewMemoryRunStore creates an empty run store.
func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{runs: make(map[string]types.IngestionRun)}
}

// SaveRun inserts or replaces a run.
func (s *MemoryRunStore) SaveRun(_ context.Context, run *types.IngestionRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = *run
	return nil
}

// GetRun returns a run by id.
func (s *MemoryRunStore) GetRun(_ context.Context, id string) (*types.IngestionRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &run, nil
}

// ListRuns returns runs newest first, optionally filtered by status.
func (s *MemoryRunStore) ListRuns(_ context.Context, status types.IngestionStatus, limit, offset int) ([]types.IngestionRun, int, error) {
	s.mu.RLock()
	all := make([]types.IngestionRun, 0, len(s.runs))
	for _, r := range s.runs {
		if status == "" || r.Status == status {
			all = append(all, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].StartedAt.After(all[j].StartedAt) })
	total := len(all)
	if offset >= total {
		return []types.IngestionRun{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

// MarkInterrupted fails every run still marked running.
func (s *MemoryRunStore) MarkInterrupted(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, r := range s.runs {
		if r.Status == types.StatusRunning {
			r.Status = types.StatusFailed
			r.Error = "interrupted"
			s.runs[id] = r
			n++
		}
	}
	return n, nil
}
