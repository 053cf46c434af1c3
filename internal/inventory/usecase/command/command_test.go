package command

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tair/inventory-engine/internal/inventory/domain"
	"github.com/tair/inventory-engine/internal/inventory/eventstore"
	"github.com/tair/inventory-engine/internal/inventory/repository"
)

// capturePublisher records published outcomes for assertions
type capturePublisher struct {
	mu       sync.Mutex
	outcomes []domain.ReservationOutcome
}

func (p *capturePublisher) PublishOutcome(ctx context.Context, outcome domain.ReservationOutcome) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.outcomes = append(p.outcomes, outcome)
	return nil
}

func (p *capturePublisher) published() []domain.ReservationOutcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.ReservationOutcome, len(p.outcomes))
	copy(out, p.outcomes)
	return out
}

func newTestRepo() repository.Repository {
	return repository.NewEventStoreRepository(eventstore.NewMemoryStore())
}

// seedStock initializes a (SKU, warehouse) pair and returns its aggregate id
func seedStock(t *testing.T, repo repository.Repository, sku, warehouseID string, quantity int64) string {
	t.Helper()
	handler := NewInitializeInventoryHandler(repo)
	item, err := handler.Handle(context.Background(), InitializeInventoryCommand{
		Sku:             sku,
		WarehouseID:     warehouseID,
		InitialQuantity: quantity,
	})
	require.NoError(t, err)
	return item.ID
}

// reserveOneItem places a single-SKU reservation and returns its outcome
func reserveOneItem(t *testing.T, repo repository.Repository, orderID, warehouseID, sku string, qty int64) domain.ReservationOutcome {
	t.Helper()
	handler := NewReserveStockHandler(repo, nil)
	outcomes, err := handler.Handle(context.Background(), ReserveStockCommand{
		OrderID:     orderID,
		WarehouseID: warehouseID,
		Items:       []LineItem{{Sku: sku, Quantity: qty}},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.Equal(t, domain.OutcomeReservationConfirmed, outcomes[0].Kind)
	return outcomes[0]
}
