package storage

import (
	"context"
	"time"
)

// Metadata is written next to archived batch files as a .meta sidecar.
type Metadata struct {
	RunID      string            `json:"runId,omitempty"`
	Kind       string            `json:"kind,omitempty"`
	SourceKey  string            `json:"sourceKey,omitempty"`
	Checksum   string            `json:"checksum,omitempty"`
	ArchivedAt time.Time         `json:"archivedAt,omitempty"`
	Custom     map[string]string `json:"custom,omitempty"`
}

// FileInfo contains information about a stored file
type FileInfo struct {
	Key        string    `json:"key"`
	Size       int64     `json:"size"`
	Checksum   string    `json:"checksum,omitempty"`
	ModifiedAt time.Time `json:"modifiedAt"`
	Metadata   *Metadata `json:"metadata,omitempty"`
}

// Storage is the file area batch files are read from and archived into.
// Keys are slash-separated paths relative to the storage root.
type Storage interface {
	// Get retrieves content from the given key
	Get(ctx context.Context, key string) ([]byte, error)

	// GetInfo retrieves file information, including a SHA-256 checksum
	GetInfo(ctx context.Context, key string) (*FileInfo, error)

	// Exists checks if a file exists at the given key
	Exists(ctx context.Context, key string) (bool, error)

	// List returns the regular files directly inside dir, without sidecars
	List(ctx context.Context, dir string) ([]FileInfo, error)

	// Put stores content at the given key with optional metadata
	Put(ctx context.Context, key string, content []byte, metadata *Metadata) error

	// Move renames src to dst, creating dst's directory
	Move(ctx context.Context, src, dst string) error

	// WriteMetadata writes the .meta sidecar of an existing file
	WriteMetadata(ctx context.Context, key string, metadata *Metadata) error
}
