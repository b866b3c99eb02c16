package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/comparely/catalog-service/internal/pkg/cuid2"
	"github.com/comparely/catalog-service/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryIDPrefix prefixes generated category ids.
const CategoryIDPrefix = "cat"

// CategoryStore keeps category documents as JSONB rows.
type CategoryStore struct {
	pool *pgxpool.Pool
}

// NewCategoryStore creates a store over the given pool.
func NewCategoryStore(pool *pgxpool.Pool) *CategoryStore {
	return &CategoryStore{pool: pool}
}

// Ping checks database connectivity.
func (s *CategoryStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// FindOne returns the oldest matching category, or nil when none matches.
func (s *CategoryStore) FindOne(ctx context.Context, filter types.Filter) (*types.Category, error) {
	where, args := whereClause(filter, 1)
	query := `SELECT doc FROM categories` + where + ` ORDER BY created_at, id LIMIT 1`

	var raw []byte
	err := s.pool.QueryRow(ctx, query, args...).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return decodeCategory(raw)
}

// Find returns all matching categories in creation order.
func (s *CategoryStore) Find(ctx context.Context, filter types.Filter, projection ...string) ([]*types.Category, error) {
	where, args := whereClause(filter, 1)

	column := "doc"
	if len(projection) > 0 {
		args = append(args, projection)
		column = fmt.Sprintf(`(SELECT COALESCE(jsonb_object_agg(key, value), '{}'::jsonb)
			FROM jsonb_each(doc) WHERE key = 'id' OR key = ANY($%d::text[]))`, len(args))
	}
	query := `SELECT ` + column + ` FROM categories` + where + ` ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	defer rows.Close()

	var out []*types.Category
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		doc, err := decodeCategory(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Save upserts the document by id.
func (s *CategoryStore) Save(ctx context.Context, doc *types.Category) error {
	if doc.ID.Empty() {
		doc.ID = types.ID(cuid2.New(CategoryIDPrefix))
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode category %s: %w", doc.ID, err)
	}

	query := `
		INSERT INTO categories (id, doc, created_at, updated_at)
		VALUES ($1, $2::jsonb, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			doc = EXCLUDED.doc,
			updated_at = NOW()
	`
	if _, err := s.pool.Exec(ctx, query, string(doc.ID), string(raw)); err != nil {
		return fmt.Errorf("save category %s: %w", doc.ID, err)
	}
	return nil
}

// UpdateByID merges top-level fields into the stored document. The id field
// cannot be changed.
func (s *CategoryStore) UpdateByID(ctx context.Context, id string, fields map[string]any) (*types.Category, error) {
	patch, err := encodePatch(fields)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE categories
		SET doc = doc || $2::jsonb, updated_at = NOW()
		WHERE id = $1
		RETURNING doc
	`
	var raw []byte
	err = s.pool.QueryRow(ctx, query, id, string(patch)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update category %s: %w", id, err)
	}
	return decodeCategory(raw)
}

// DeleteAll removes every category. Used by tests and the CLI reset path.
func (s *CategoryStore) DeleteAll(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM categories`)
	return err
}

func decodeCategory(raw []byte) (*types.Category, error) {
	var doc types.Category
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode category: %w", err)
	}
	return &doc, nil
}

// encodePatch validates an update body. It must encode to a JSON object and
// decode into a category, so a bad field type is rejected before it is stored.
func encodePatch(fields map[string]any) ([]byte, error) {
	clean := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "id" {
			continue
		}
		clean[k] = v
	}
	raw, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}
	var probe types.Category
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}
	return raw, nil
}

// ErrInvalidUpdate is returned when an update body does not fit a category.
var ErrInvalidUpdate = errors.New("invalid category update")
