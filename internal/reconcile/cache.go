package reconcile

import "github.com/comparely/catalog-service/internal/types"

// MergeCache holds the live category documents touched by one product pass.
// It is owned by a single goroutine and discarded after Drain.
type MergeCache struct {
	docs  map[Key]*types.Category
	byID  map[types.ID]*types.Category
	seen  map[*types.Category]struct{}
	order []*types.Category
}

// NewMergeCache returns an empty cache.
func NewMergeCache() *MergeCache {
	return &MergeCache{
		docs: make(map[Key]*types.Category),
		byID: make(map[types.ID]*types.Category),
		seen: make(map[*types.Category]struct{}),
	}
}

// Get returns the document cached under key.
func (c *MergeCache) Get(key Key) (*types.Category, bool) {
	doc, ok := c.docs[key]
	return doc, ok
}

// Put caches doc under key and returns the instance callers must mutate.
// A document already cached under another key (same id) wins over a fresh
// copy, so every persisted document has one in-memory instance per pass.
func (c *MergeCache) Put(key Key, doc *types.Category) *types.Category {
	if doc.ID != "" {
		if existing, ok := c.byID[doc.ID]; ok {
			doc = existing
		} else {
			c.byID[doc.ID] = doc
		}
	}
	if _, ok := c.seen[doc]; !ok {
		c.seen[doc] = struct{}{}
		c.order = append(c.order, doc)
	}
	c.docs[key] = doc
	return doc
}

// Drain returns every distinct cached document once, in first-put order,
// and empties the cache.
func (c *MergeCache) Drain() []*types.Category {
	out := c.order
	c.docs = make(map[Key]*types.Category)
	c.byID = make(map[types.ID]*types.Category)
	c.seen = make(map[*types.Category]struct{})
	c.order = nil
	return out
}

// Len returns the number of distinct documents cached.
func (c *MergeCache) Len() int {
	return len(c.order)
}
