package types

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when an update targets a document that does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidRecord marks a batch line that could not be decoded.
	ErrInvalidRecord = errors.New("invalid record")
)

// ProductsFieldPrefix scopes a filter key to embedded products:
// {"products.id": "p1"} matches categories holding product p1.
const ProductsFieldPrefix = "products."

// Filter matches documents whose top-level field equals the value.
type Filter map[string]string

// CategoryStore persists category documents.
type CategoryStore interface {
	// FindOne returns the first matching document, or nil when none matches.
	FindOne(ctx context.Context, filter Filter) (*Category, error)
	// Find returns every matching document. With a projection only the named
	// top-level fields (and the id) are populated.
	Find(ctx context.Context, filter Filter, projection ...string) ([]*Category, error)
	// Save inserts or replaces the document by id, assigning an id when empty.
	Save(ctx context.Context, doc *Category) error
	// UpdateByID merges the given top-level fields into the stored document.
	UpdateByID(ctx context.Context, id string, fields map[string]any) (*Category, error)
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RunStore records ingestion runs.
type RunStore interface {
	SaveRun(ctx context.Context, run *IngestionRun) error
	GetRun(ctx context.Context, id string) (*IngestionRun, error)
	ListRuns(ctx context.Context, status IngestionStatus, limit, offset int) ([]IngestionRun, int, error)
	MarkInterrupted(ctx context.Context) (int, error)
}
