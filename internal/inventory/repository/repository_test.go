package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/inventory-engine/internal/inventory/domain"
	"github.com/tair/inventory-engine/internal/inventory/eventstore"
)

type recordingSink struct {
	events []domain.Event
	err    error
}

func (s *recordingSink) HandleEvent(ctx context.Context, event domain.Event) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func seedStream(t *testing.T, store eventstore.Store, aggregateID string, quantity int64) {
	t.Helper()
	err := store.Append(context.Background(), aggregateID, eventstore.NoStream, []domain.Event{
		domain.InventoryInitialized{AggregateID: aggregateID, Sku: "SKU-1", WarehouseID: "WH", Quantity: quantity},
	})
	require.NoError(t, err)
}

func TestEventStoreRepository_Load(t *testing.T) {
	store := eventstore.NewMemoryStore()
	repo := NewEventStoreRepository(store)
	seedStream(t, store, "agg-1", 10)

	item, version, err := repo.Load(context.Background(), "agg-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	assert.Equal(t, "agg-1", item.ID)
	assert.Equal(t, int64(10), item.Available)
}

func TestEventStoreRepository_LoadUnknown(t *testing.T) {
	repo := NewEventStoreRepository(eventstore.NewMemoryStore())

	_, _, err := repo.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrStockNotFound)
}

func TestEventStoreRepository_SaveFansOutToSinks(t *testing.T) {
	store := eventstore.NewMemoryStore()
	sink := &recordingSink{}
	repo := NewEventStoreRepository(store, sink)
	seedStream(t, store, "agg-1", 10)

	event := domain.StockReserved{AggregateID: "agg-1", ReservationID: "res-1", Quantity: 3}
	require.NoError(t, repo.Save(context.Background(), "agg-1", 1, []domain.Event{event}))

	require.Len(t, sink.events, 1)
	assert.Equal(t, event, sink.events[0])
}

func TestEventStoreRepository_SinkFailureDoesNotFailSave(t *testing.T) {
	store := eventstore.NewMemoryStore()
	sink := &recordingSink{err: errors.New("projection down")}
	repo := NewEventStoreRepository(store, sink)
	seedStream(t, store, "agg-1", 10)

	err := repo.Save(context.Background(), "agg-1", 1, []domain.Event{
		domain.StockReceived{AggregateID: "agg-1", Quantity: 5},
	})
	assert.NoError(t, err)

	events, err := store.Load(context.Background(), "agg-1")
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestEventStoreRepository_SaveConflictSkipsSinks(t *testing.T) {
	store := eventstore.NewMemoryStore()
	sink := &recordingSink{}
	repo := NewEventStoreRepository(store, sink)
	seedStream(t, store, "agg-1", 10)

	err := repo.Save(context.Background(), "agg-1", 5, []domain.Event{
		domain.StockReceived{AggregateID: "agg-1", Quantity: 5},
	})
	assert.ErrorIs(t, err, eventstore.ErrVersionConflict)
	assert.Empty(t, sink.events)
}

func TestEventStoreRepository_FindByReservation(t *testing.T) {
	store := eventstore.NewMemoryStore()
	repo := NewEventStoreRepository(store)
	seedStream(t, store, "agg-1", 10)
	require.NoError(t, repo.Save(context.Background(), "agg-1", 1, []domain.Event{
		domain.StockReserved{AggregateID: "agg-1", ReservationID: "res-1", Quantity: 3},
	}))

	item, version, err := repo.FindByReservation(context.Background(), "res-1")
	require.NoError(t, err)
	assert.Equal(t, "agg-1", item.ID)
	assert.Equal(t, int64(2), version)
	assert.True(t, item.HasReservation("res-1"))

	_, _, err = repo.FindByReservation(context.Background(), "unknown")
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestTracingRepository_Delegates(t *testing.T) {
	store := eventstore.NewMemoryStore()
	repo := NewTracingRepository(NewEventStoreRepository(store))
	seedStream(t, store, "agg-1", 10)

	item, version, err := repo.Load(context.Background(), "agg-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	assert.Equal(t, int64(10), item.Available)

	require.NoError(t, repo.Save(context.Background(), "agg-1", 1, []domain.Event{
		domain.StockReserved{AggregateID: "agg-1", ReservationID: "res-1", Quantity: 2},
	}))

	item, _, err = repo.FindByReservation(context.Background(), "res-1")
	require.NoError(t, err)
	assert.True(t, item.HasReservation("res-1"))
}
