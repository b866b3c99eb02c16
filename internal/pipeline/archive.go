package pipeline

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/comparely/catalog-service/internal/storage"
)

// ArchiveKey names the archived copy of a batch file, e.g. old/products1700000000000.
func ArchiveKey(dir, kind string, at time.Time) string {
	return path.Join(dir, kind+strconv.FormatInt(at.UnixMilli(), 10))
}

// ArchivePhase moves a consumed batch file into the archive directory and
// writes a sidecar describing where it came from.
func ArchivePhase(ctx context.Context, files storage.Storage, key, kind, dir, runID string, at time.Time) (string, error) {
	var checksum string
	if info, err := files.GetInfo(ctx, key); err == nil {
		checksum = info.Checksum
	}

	dst := ArchiveKey(dir, kind, at)
	if err := files.Move(ctx, key, dst); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", key, err)
	}

	meta := &storage.Metadata{
		RunID:      runID,
		Kind:       kind,
		SourceKey:  key,
		Checksum:   checksum,
		ArchivedAt: at,
	}
	if err := files.WriteMetadata(ctx, dst, meta); err != nil {
		return dst, fmt.Errorf("archived %s but failed to write metadata: %w", key, err)
	}
	return dst, nil
}
