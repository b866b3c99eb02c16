package reconcile

import "github.com/comparely/catalog-service/internal/types"

// Key is a field-qualified identity value, such as path=/books/fiction.
// Keys from different fields never collide.
type Key struct {
	Field string
	Value string
}

func (k Key) String() string {
	return k.Field + "=" + k.Value
}

// Filter returns the store filter that selects documents with this identity.
func (k Key) Filter() types.Filter {
	return types.Filter{k.Field: k.Value}
}

// Strategy matches records on one field. Value returns "" when the record
// does not carry the field, which makes the strategy inapplicable.
type Strategy[T any] struct {
	Field string
	Value func(*T) string
}

// Resolver is an ordered list of strategies. The first applicable strategy
// decides the identity; later strategies are never consulted for that record.
type Resolver[T any] []Strategy[T]

// Resolve returns the identity of rec under the first applicable strategy.
func (r Resolver[T]) Resolve(rec *T) (Key, bool) {
	for _, s := range r {
		if v := types.Canonical(s.Value(rec)); v != "" {
			return Key{Field: s.Field, Value: v}, true
		}
	}
	return Key{}, false
}

// Keys returns the identity under every applicable strategy, in order.
func (r Resolver[T]) Keys(rec *T) []Key {
	var keys []Key
	for _, s := range r {
		if v := types.Canonical(s.Value(rec)); v != "" {
			keys = append(keys, Key{Field: s.Field, Value: v})
		}
	}
	return keys
}

// Matches reports whether doc carries key under the strategy for key.Field.
func (r Resolver[T]) Matches(key Key, doc *T) bool {
	for _, s := range r {
		if s.Field == key.Field {
			v := types.Canonical(s.Value(doc))
			return v != "" && v == key.Value
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CategoryIdentity resolves a category record to a stored category: path is
// authoritative, url and name are legacy fallbacks.
var CategoryIdentity = Resolver[types.Category]{
	{Field: "path", Value: func(c *types.Category) string { return deref(c.Path) }},
	{Field: "url", Value: func(c *types.Category) string { return deref(c.URL) }},
	{Field: "name", Value: func(c *types.Category) string { return deref(c.Name) }},
}

// ProductOwner resolves a product record to the category that holds it.
// The key fields name category document fields.
var ProductOwner = Resolver[types.Product]{
	{Field: "path", Value: func(p *types.Product) string { return deref(p.CategoryPath) }},
	{Field: "name", Value: func(p *types.Product) string { return deref(p.Category) }},
}

// ProductIdentity matches a product record to an entry of a category's
// product list. Unlike category resolution, every applicable strategy is
// tried in order until one finds an entry.
var ProductIdentity = Resolver[types.Product]{
	{Field: "id", Value: func(p *types.Product) string { return string(p.ID) }},
	{Field: "url", Value: func(p *types.Product) string { return deref(p.URL) }},
}

// findProduct returns the index of the product matching key, or -1.
func findProduct(products []types.Product, key Key) int {
	for i := range products {
		if ProductIdentity.Matches(key, &products[i]) {
			return i
		}
	}
	return -1
}
