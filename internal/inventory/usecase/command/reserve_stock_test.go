package command

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/inventory-engine/internal/inventory/domain"
)

func TestReserveStockHandler_Confirmed(t *testing.T) {
	repo := newTestRepo()
	aggregateID := seedStock(t, repo, "SKU-1", "WH-EAST", 10)
	publisher := &capturePublisher{}
	handler := NewReserveStockHandler(repo, publisher)

	outcomes, err := handler.Handle(context.Background(), ReserveStockCommand{
		OrderID:     "order-1",
		WarehouseID: "WH-EAST",
		Items:       []LineItem{{Sku: "SKU-1", Quantity: 4}},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	outcome := outcomes[0]
	assert.Equal(t, domain.OutcomeReservationConfirmed, outcome.Kind)
	assert.Equal(t, "order-1", outcome.OrderID)
	assert.Equal(t, aggregateID, outcome.AggregateID)
	assert.NotEmpty(t, outcome.ReservationID)
	assert.Equal(t, int64(4), outcome.Quantity)
	assert.Equal(t, int64(6), outcome.Available)
	assert.True(t, outcome.Confirmed())

	stock, _, err := repo.Load(context.Background(), aggregateID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), stock.Available)
	assert.True(t, stock.HasReservation(outcome.ReservationID))
	assert.Equal(t, "order-1", stock.OwnerOf(outcome.ReservationID))
	assert.Equal(t, int64(10), stock.TotalOnHand())

	require.Len(t, publisher.published(), 1)
	assert.Equal(t, outcome.ReservationID, publisher.published()[0].ReservationID)
}

func TestReserveStockHandler_InsufficientStock(t *testing.T) {
	repo := newTestRepo()
	seedStock(t, repo, "SKU-1", "WH", 3)
	handler := NewReserveStockHandler(repo, nil)

	outcomes, err := handler.Handle(context.Background(), ReserveStockCommand{
		OrderID:     "order-1",
		WarehouseID: "WH",
		Items:       []LineItem{{Sku: "SKU-1", Quantity: 5}},
	})
	require.NoError(t, err, "a declined reservation is an outcome, not an error")
	require.Len(t, outcomes, 1)

	outcome := outcomes[0]
	assert.Equal(t, domain.OutcomeReservationFailed, outcome.Kind)
	assert.Empty(t, outcome.ReservationID)
	assert.Equal(t, int64(3), outcome.Available)
	assert.Contains(t, outcome.Reason, "insufficient stock")
	assert.False(t, outcome.Confirmed())

	// The aggregate is untouched by a decline
	stock, version, err := repo.Load(context.Background(), outcome.AggregateID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	assert.Equal(t, int64(3), stock.Available)
}

func TestReserveStockHandler_ExactRemainder(t *testing.T) {
	repo := newTestRepo()
	seedStock(t, repo, "SKU-1", "WH", 5)
	handler := NewReserveStockHandler(repo, nil)

	outcomes, err := handler.Handle(context.Background(), ReserveStockCommand{
		OrderID:     "order-1",
		WarehouseID: "WH",
		Items:       []LineItem{{Sku: "SKU-1", Quantity: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeReservationConfirmed, outcomes[0].Kind)
	assert.Equal(t, int64(0), outcomes[0].Available)
}

func TestReserveStockHandler_UnknownSku(t *testing.T) {
	repo := newTestRepo()
	handler := NewReserveStockHandler(repo, nil)

	outcomes, err := handler.Handle(context.Background(), ReserveStockCommand{
		OrderID:     "order-1",
		WarehouseID: "WH",
		Items:       []LineItem{{Sku: "GHOST", Quantity: 1}},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, domain.OutcomeReservationFailed, outcomes[0].Kind)
	assert.Contains(t, outcomes[0].Reason, "not stocked")
}

func TestReserveStockHandler_GroupsDuplicateSkus(t *testing.T) {
	repo := newTestRepo()
	seedStock(t, repo, "SKU-1", "WH", 10)
	seedStock(t, repo, "SKU-2", "WH", 10)
	handler := NewReserveStockHandler(repo, nil)

	outcomes, err := handler.Handle(context.Background(), ReserveStockCommand{
		OrderID:     "order-1",
		WarehouseID: "WH",
		Items: []LineItem{
			{Sku: "SKU-1", Quantity: 2},
			{Sku: "SKU-2", Quantity: 1},
			{Sku: "SKU-1", Quantity: 3},
		},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 2, "duplicate SKUs collapse into one reservation")

	assert.Equal(t, "SKU-1", outcomes[0].Sku)
	assert.Equal(t, int64(5), outcomes[0].Quantity)
	assert.Equal(t, "SKU-2", outcomes[1].Sku)
	assert.Equal(t, int64(1), outcomes[1].Quantity)

	stock, _, err := repo.Load(context.Background(), outcomes[0].AggregateID)
	require.NoError(t, err)
	assert.Len(t, stock.Reservations, 1)
	assert.Equal(t, int64(5), stock.ReservedTotal())
}

func TestReserveStockHandler_MixedOutcomes(t *testing.T) {
	repo := newTestRepo()
	seedStock(t, repo, "SKU-1", "WH", 10)
	seedStock(t, repo, "SKU-2", "WH", 1)
	handler := NewReserveStockHandler(repo, nil)

	outcomes, err := handler.Handle(context.Background(), ReserveStockCommand{
		OrderID:     "order-1",
		WarehouseID: "WH",
		Items: []LineItem{
			{Sku: "SKU-1", Quantity: 4},
			{Sku: "SKU-2", Quantity: 3},
		},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, domain.OutcomeReservationConfirmed, outcomes[0].Kind)
	assert.Equal(t, domain.OutcomeReservationFailed, outcomes[1].Kind)

	// No rollback across SKUs at this layer
	stock, _, err := repo.Load(context.Background(), outcomes[0].AggregateID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), stock.Available)
}

func TestReserveStockHandler_Validation(t *testing.T) {
	handler := NewReserveStockHandler(newTestRepo(), nil)

	tests := []struct {
		name    string
		cmd     ReserveStockCommand
		wantErr error
	}{
		{
			name:    "empty order id",
			cmd:     ReserveStockCommand{WarehouseID: "WH", Items: []LineItem{{Sku: "SKU-1", Quantity: 1}}},
			wantErr: domain.ErrEmptyOrderID,
		},
		{
			name:    "empty warehouse",
			cmd:     ReserveStockCommand{OrderID: "order-1", Items: []LineItem{{Sku: "SKU-1", Quantity: 1}}},
			wantErr: domain.ErrEmptyWarehouseID,
		},
		{
			name:    "no line items",
			cmd:     ReserveStockCommand{OrderID: "order-1", WarehouseID: "WH"},
			wantErr: domain.ErrNoLineItems,
		},
		{
			name:    "empty sku",
			cmd:     ReserveStockCommand{OrderID: "order-1", WarehouseID: "WH", Items: []LineItem{{Quantity: 1}}},
			wantErr: domain.ErrEmptySku,
		},
		{
			name:    "zero quantity",
			cmd:     ReserveStockCommand{OrderID: "order-1", WarehouseID: "WH", Items: []LineItem{{Sku: "SKU-1"}}},
			wantErr: domain.ErrInvalidQuantity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Handle(context.Background(), tt.cmd)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestReserveStockHandler_LastUnitUnderContention(t *testing.T) {
	repo := newTestRepo()
	aggregateID := seedStock(t, repo, "SKU-1", "WH", 1)
	handler := NewReserveStockHandler(repo, nil)

	const writers = 8
	outcomes := make([]domain.ReservationOutcome, writers)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := handler.Handle(context.Background(), ReserveStockCommand{
				OrderID:     "order-1",
				WarehouseID: "WH",
				Items:       []LineItem{{Sku: "SKU-1", Quantity: 1}},
			})
			require.NoError(t, err)
			outcomes[i] = got[0]
		}(i)
	}
	wg.Wait()

	confirmed := 0
	for _, outcome := range outcomes {
		if outcome.Kind == domain.OutcomeReservationConfirmed {
			confirmed++
		}
	}
	assert.Equal(t, 1, confirmed, "only one writer may take the last unit")

	stock, _, err := repo.Load(context.Background(), aggregateID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stock.Available)
	assert.Equal(t, int64(1), stock.ReservedTotal())
	assert.Equal(t, int64(1), stock.TotalOnHand(), "contention must never oversell")
}
