package pipeline

import (
	"context"
	"fmt"

	"github.com/comparely/catalog-service/internal/records"
	"github.com/comparely/catalog-service/internal/storage"
	"github.com/comparely/catalog-service/internal/types"
	"github.com/rs/zerolog"
)

// ParsePhase reads one batch file and decodes its lines. Unparseable lines
// are logged and kept as sentinels for the reconcilers to skip.
func ParsePhase[T any](ctx context.Context, files storage.Storage, key string, logger zerolog.Logger) ([]records.Record[T], types.ParseStats, error) {
	content, err := files.Get(ctx, key)
	if err != nil {
		return nil, types.ParseStats{File: key}, fmt.Errorf("failed to read batch: %w", err)
	}

	recs := records.Parse[T](content)
	stats := records.Summarize(recs)
	stats.File = key

	for _, rec := range recs {
		if rec.Unparseable() {
			logger.Warn().Str("file", key).Int("line", rec.Line).Err(rec.Err).Msg("Skipping unparseable line")
		}
	}
	return recs, stats, nil
}
