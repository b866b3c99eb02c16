package pipeline

import (
	"context"
	"fmt"

	"github.com/comparely/catalog-service/internal/storage"
)

// Mode selects how batch files are located.
type Mode string

const (
	// ModeScan picks the most recently modified file in each directory.
	ModeScan Mode = "scan"
	// ModeFixed reads fixed file keys.
	ModeFixed Mode = "fixed"
)

// Batch names the files one pass consumes. An empty key means there is
// nothing to ingest on that side.
type Batch struct {
	Categories string
	Products   string
}

// Empty reports whether the pass has nothing to read.
func (b Batch) Empty() bool {
	return b.Categories == "" && b.Products == ""
}

// DiscoverPhase locates the category and product batch files.
func DiscoverPhase(ctx context.Context, files storage.Storage, cfg Config) (Batch, error) {
	var (
		batch Batch
		err   error
	)
	switch cfg.Mode {
	case ModeFixed:
		if batch.Categories, err = existing(ctx, files, cfg.CategoriesPath); err != nil {
			return Batch{}, err
		}
		if batch.Products, err = existing(ctx, files, cfg.ProductsPath); err != nil {
			return Batch{}, err
		}
	case ModeScan, "":
		if batch.Categories, err = newestFile(ctx, files, cfg.CategoriesPath); err != nil {
			return Batch{}, err
		}
		if batch.Products, err = newestFile(ctx, files, cfg.ProductsPath); err != nil {
			return Batch{}, err
		}
	default:
		return Batch{}, fmt.Errorf("unknown discovery mode %q", cfg.Mode)
	}
	return batch, nil
}

func existing(ctx context.Context, files storage.Storage, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	ok, err := files.Exists(ctx, key)
	if err != nil || !ok {
		return "", err
	}
	return key, nil
}

// newestFile returns the most recently modified file in dir. Ties go to the
// lexically greatest key so the choice is deterministic.
func newestFile(ctx context.Context, files storage.Storage, dir string) (string, error) {
	if dir == "" {
		return "", nil
	}
	list, err := files.List(ctx, dir)
	if err != nil {
		return "", fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	var newest *storage.FileInfo
	for i := range list {
		f := &list[i]
		if newest == nil || f.ModifiedAt.After(newest.ModifiedAt) ||
			(f.ModifiedAt.Equal(newest.ModifiedAt) && f.Key > newest.Key) {
			newest = f
		}
	}
	if newest == nil {
		return "", nil
	}
	return newest.Key, nil
}
