package database

import (
	"context"
	"testing"
	"time"

	"github.com/comparely/catalog-service/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore()
	_, err := store.FindOne(ctx, types.Filter{"path": "/a"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Save(ctx, &types.Category{}), context.Canceled)
}

func TestMemoryStore_NumericFieldsCompareAsText(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, &types.Category{Path: types.StringPtr("/a"), Extra: types.Fields{"level": []byte("2")}}))

	doc, err := store.FindOne(ctx, types.Filter{"level": "2"})
	require.NoError(t, err)
	assert.NotNil(t, doc)
}

func TestMemoryRunStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRunStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, status := range []types.IngestionStatus{types.StatusCompleted, types.StatusRunning, types.StatusCompleted} {
		require.NoError(t, store.SaveRun(ctx, &types.IngestionRun{
			ID:        "run_" + string(rune('a'+i)),
			Status:    status,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	runs, total, err := store.ListRuns(ctx, "", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, runs, 2)
	assert.Equal(t, "run_c", runs[0].ID)

	runs, total, err = store.ListRuns(ctx, types.StatusCompleted, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, runs, 2)

	runs, _, err = store.ListRuns(ctx, "", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, runs)

	n, err := store.MarkInterrupted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	run, err := store.GetRun(ctx, "run_b")
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailed, run.Status)

	_, err = store.GetRun(ctx, "run_z")
	assert.ErrorIs(t, err, types.ErrNotFound)
}
