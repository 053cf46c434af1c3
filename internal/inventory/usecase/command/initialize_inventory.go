package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tair/inventory-engine/internal/inventory/domain"
	"github.com/tair/inventory-engine/internal/inventory/eventstore"
	"github.com/tair/inventory-engine/internal/inventory/repository"
	"github.com/tair/inventory-engine/pkg/logger"
)

// InitializeInventoryCommand declares a SKU at a warehouse with a starting quantity
type InitializeInventoryCommand struct {
	Sku             string
	WarehouseID     string
	InitialQuantity int64
}

// InitializeInventoryHandler handles initialize inventory commands
type InitializeInventoryHandler struct {
	repo repository.Repository
}

// NewInitializeInventoryHandler creates a new initialize inventory handler
func NewInitializeInventoryHandler(repo repository.Repository) *InitializeInventoryHandler {
	return &InitializeInventoryHandler{repo: repo}
}

// Handle executes the initialize inventory command
func (h *InitializeInventoryHandler) Handle(ctx context.Context, cmd InitializeInventoryCommand) (*domain.StockItem, error) {
	if cmd.Sku == "" {
		return nil, domain.ErrEmptySku
	}
	if cmd.WarehouseID == "" {
		return nil, domain.ErrEmptyWarehouseID
	}
	if cmd.InitialQuantity < 0 {
		return nil, domain.ErrNegativeQuantity
	}

	aggregateID := domain.StockItemID(cmd.Sku, cmd.WarehouseID)
	event := domain.InventoryInitialized{
		AggregateID: aggregateID,
		Sku:         cmd.Sku,
		WarehouseID: cmd.WarehouseID,
		Quantity:    cmd.InitialQuantity,
		Timestamp:   time.Now().UTC(),
	}

	// The stream must not exist yet; a version conflict here means the pair
	// was already initialized by someone else.
	err := h.repo.Save(ctx, aggregateID, eventstore.NoStream, []domain.Event{event})
	if errors.Is(err, eventstore.ErrVersionConflict) {
		return nil, domain.ErrAlreadyInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize inventory: %w", err)
	}

	logger.Info(ctx).
		Str("aggregate_id", aggregateID).
		Str("sku", cmd.Sku).
		Str("warehouse_id", cmd.WarehouseID).
		Int64("quantity", cmd.InitialQuantity).
		Msg("Inventory initialized")

	return domain.NewStockItem(event), nil
}
