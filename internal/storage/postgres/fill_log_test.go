package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"divcap-lab/internal/domain"
	"divcap-lab/internal/storage"
)

func createTestFill(fillID, symbol, closeDate string) *domain.Fill {
	return &domain.Fill{
		FillID:    fillID,
		Symbol:    symbol,
		Shares:    1000,
		AvgCost:   18.25,
		Price:     18.45,
		OpenDate:  "2023-11-20",
		CloseDate: closeDate,
		Reason:    "S1",
		Profit:    200.0,
		Synthetic: false,
	}
}

func TestFillLog_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewFillLog(pool)

	fill := createTestFill("fill-001", "PDI", "2023-11-24")
	require.NoError(t, store.Insert(ctx, fill))

	retrieved, err := store.GetByID(ctx, "fill-001")
	require.NoError(t, err)

	assert.Equal(t, fill.FillID, retrieved.FillID)
	assert.Equal(t, fill.Symbol, retrieved.Symbol)
	assert.Equal(t, fill.Shares, retrieved.Shares)
	assert.InDelta(t, fill.AvgCost, retrieved.AvgCost, 0.0001)
	assert.InDelta(t, fill.Price, retrieved.Price, 0.0001)
	assert.Equal(t, fill.OpenDate, retrieved.OpenDate)
	assert.Equal(t, fill.CloseDate, retrieved.CloseDate)
	assert.Equal(t, fill.Reason, retrieved.Reason)
	assert.InDelta(t, fill.Profit, retrieved.Profit, 0.0001)
	assert.Equal(t, fill.Synthetic, retrieved.Synthetic)
}

func TestFillLog_GetByIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFillLog(pool)

	_, err := store.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFillLog_DuplicateInsert(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewFillLog(pool)

	require.NoError(t, store.Insert(ctx, createTestFill("fill-001", "PDI", "2023-11-24")))
	err := store.Insert(ctx, createTestFill("fill-001", "PDI", "2023-11-24"))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestFillLog_GetBySymbolOrdering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewFillLog(pool)

	require.NoError(t, store.Insert(ctx, createTestFill("fill-b", "PDI", "2023-11-24")))
	require.NoError(t, store.Insert(ctx, createTestFill("fill-a", "PDI", "2023-11-22")))
	require.NoError(t, store.Insert(ctx, createTestFill("fill-c", "DIA", "2023-11-23")))

	fills, err := store.GetBySymbol(ctx, "PDI")
	require.NoError(t, err)
	require.Len(t, fills, 2)
	assert.Equal(t, "fill-a", fills[0].FillID)
	assert.Equal(t, "fill-b", fills[1].FillID)
}

func TestFillLog_GetAll(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewFillLog(pool)

	synthetic := createTestFill("fill-syn", "PDI", "2023-11-24")
	synthetic.Synthetic = true
	synthetic.Shares = 400

	require.NoError(t, store.Insert(ctx, createTestFill("fill-a", "PDI", "2023-11-22")))
	require.NoError(t, store.Insert(ctx, synthetic))

	fills, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, fills, 2)
	assert.False(t, fills[0].Synthetic)
	assert.True(t, fills[1].Synthetic)
}
