package projection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/inventory-engine/internal/inventory/domain"
)

func TestStockLevelProjector_Lifecycle(t *testing.T) {
	levels := NewMemoryLevelStore()
	projector := NewStockLevelProjector(levels)
	ctx := context.Background()

	events := []domain.Event{
		domain.InventoryInitialized{AggregateID: "agg-1", Sku: "SKU-1", WarehouseID: "WH", Quantity: 10},
		domain.StockReceived{AggregateID: "agg-1", Quantity: 5},
		domain.StockReserved{AggregateID: "agg-1", ReservationID: "res-1", Quantity: 6},
		domain.ReservationCommitted{AggregateID: "agg-1", ReservationID: "res-1", Quantity: 6},
	}
	for _, e := range events {
		require.NoError(t, projector.HandleEvent(ctx, e))
	}

	level, err := levels.Get(ctx, "agg-1")
	require.NoError(t, err)
	assert.Equal(t, "SKU-1", level.Sku)
	assert.Equal(t, "WH", level.WarehouseID)
	assert.Equal(t, int64(9), level.Available)
	assert.Equal(t, int64(0), level.Reserved)
	assert.Equal(t, int64(6), level.Committed)
}

func TestStockLevelProjector_ReleaseRestoresAvailable(t *testing.T) {
	levels := NewMemoryLevelStore()
	projector := NewStockLevelProjector(levels)
	ctx := context.Background()

	events := []domain.Event{
		domain.InventoryInitialized{AggregateID: "agg-1", Sku: "SKU-1", WarehouseID: "WH", Quantity: 10},
		domain.StockReserved{AggregateID: "agg-1", ReservationID: "res-1", Quantity: 4},
		domain.ReservationReleased{AggregateID: "agg-1", ReservationID: "res-1", Quantity: 4},
	}
	for _, e := range events {
		require.NoError(t, projector.HandleEvent(ctx, e))
	}

	level, err := levels.Get(ctx, "agg-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), level.Available)
	assert.Equal(t, int64(0), level.Reserved)
	assert.Equal(t, int64(0), level.Committed)
}

func TestStockLevelProjector_RestockedAddsToPool(t *testing.T) {
	levels := NewMemoryLevelStore()
	projector := NewStockLevelProjector(levels)
	ctx := context.Background()

	require.NoError(t, projector.HandleEvent(ctx, domain.InventoryInitialized{AggregateID: "agg-1", Quantity: 1}))
	require.NoError(t, projector.HandleEvent(ctx, domain.StockRestocked{AggregateID: "agg-1", Quantity: 2}))

	level, err := levels.Get(ctx, "agg-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), level.Available)
}

func TestMemoryLevelStore_GetUnknown(t *testing.T) {
	levels := NewMemoryLevelStore()

	_, err := levels.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrLevelNotFound)
}

func TestMemoryLevelStore_UpsertCopies(t *testing.T) {
	levels := NewMemoryLevelStore()
	ctx := context.Background()

	level := &StockLevel{AggregateID: "agg-1", Available: 5}
	require.NoError(t, levels.Upsert(ctx, level))
	level.Available = 99

	stored, err := levels.Get(ctx, "agg-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), stored.Available, "the store must not share rows with callers")
}
