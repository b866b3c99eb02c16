package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/comparely/catalog-service/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RunStore records ingestion runs in the ingestion_runs table.
type RunStore struct {
	pool *pgxpool.Pool
}

// NewRunStore creates a run store over the given pool.
func NewRunStore(pool *pgxpool.Pool) *RunStore {
	return &RunStore{pool: pool}
}

// SaveRun inserts or updates a run.
func (s *RunStore) SaveRun(ctx context.Context, run *types.IngestionRun) error {
	summary, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", run.ID, err)
	}

	query := `
		INSERT INTO ingestion_runs (
			id, source, status, state, categories_file, products_file,
			started_at, completed_at, error, summary, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10::jsonb, NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			state = EXCLUDED.state,
			categories_file = EXCLUDED.categories_file,
			products_file = EXCLUDED.products_file,
			completed_at = EXCLUDED.completed_at,
			error = EXCLUDED.error,
			summary = EXCLUDED.summary
	`
	_, err = s.pool.Exec(ctx, query,
		run.ID, string(run.Trigger), string(run.Status), string(run.State),
		run.CategoriesFile, run.ProductsFile, run.StartedAt, run.CompletedAt,
		run.Error, string(summary),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun returns a run by id, or types.ErrNotFound.
func (s *RunStore) GetRun(ctx context.Context, id string) (*types.IngestionRun, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT summary FROM ingestion_runs WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	var run types.IngestionRun
	if err := json.Unmarshal(raw, &run); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns runs newest first with the total count.
func (s *RunStore) ListRuns(ctx context.Context, status types.IngestionStatus, limit, offset int) ([]types.IngestionRun, int, error) {
	where := ""
	args := []any{}
	if status != "" {
		where = " WHERE status = $1"
		args = append(args, string(status))
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM ingestion_runs"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count runs: %w", err)
	}

	query := "SELECT summary FROM ingestion_runs" + where +
		fmt.Sprintf(" ORDER BY started_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []types.IngestionRun{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, 0, fmt.Errorf("scan run: %w", err)
		}
		var run types.IngestionRun
		if err := json.Unmarshal(raw, &run); err != nil {
			return nil, 0, fmt.Errorf("decode run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

// MarkInterrupted fails runs left running by a previous process.
func (s *RunStore) MarkInterrupted(ctx context.Context) (int, error) {
	query := `
		UPDATE ingestion_runs
		SET status = 'failed',
			error = 'interrupted',
			completed_at = NOW(),
			summary = summary || jsonb_build_object('status', 'failed', 'error', 'interrupted')
		WHERE status = 'running'
	`
	tag, err := s.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("mark interrupted runs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
