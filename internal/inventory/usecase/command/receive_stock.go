package command

import (
	"context"
	"fmt"
	"time"

	"github.com/tair/inventory-engine/internal/inventory/domain"
	"github.com/tair/inventory-engine/internal/inventory/repository"
	"github.com/tair/inventory-engine/pkg/logger"
)

// ReceiveStockCommand records new supply arriving at a warehouse
type ReceiveStockCommand struct {
	AggregateID string
	Quantity    int64
	Source      string
}

// RestockCommand records inspected returns going back into the available pool
type RestockCommand struct {
	AggregateID string
	Quantity    int64
	Source      string
}

// ReceiveStockHandler handles stock intake commands. Intake is the only
// operation allowed to increase a stock item's total on hand.
type ReceiveStockHandler struct {
	repo        repository.Repository
	maxAttempts int
}

// NewReceiveStockHandler creates a new receive stock handler
func NewReceiveStockHandler(repo repository.Repository) *ReceiveStockHandler {
	return &ReceiveStockHandler{repo: repo, maxAttempts: DefaultMaxAttempts}
}

// Handle executes the receive stock command
func (h *ReceiveStockHandler) Handle(ctx context.Context, cmd ReceiveStockCommand) (*domain.StockItem, error) {
	item, err := h.intake(ctx, cmd.AggregateID, cmd.Quantity, func(now time.Time) domain.Event {
		return domain.StockReceived{
			AggregateID: cmd.AggregateID,
			Quantity:    cmd.Quantity,
			Source:      cmd.Source,
			Timestamp:   now,
		}
	})
	if err != nil {
		return nil, err
	}
	intakeUnits.WithLabelValues("received").Add(float64(cmd.Quantity))

	logger.Info(ctx).
		Str("aggregate_id", cmd.AggregateID).
		Int64("quantity", cmd.Quantity).
		Str("source", cmd.Source).
		Int64("available", item.Available).
		Msg("Stock received")
	return item, nil
}

// HandleRestock executes the restock command
func (h *ReceiveStockHandler) HandleRestock(ctx context.Context, cmd RestockCommand) (*domain.StockItem, error) {
	item, err := h.intake(ctx, cmd.AggregateID, cmd.Quantity, func(now time.Time) domain.Event {
		return domain.StockRestocked{
			AggregateID: cmd.AggregateID,
			Quantity:    cmd.Quantity,
			Source:      cmd.Source,
			Timestamp:   now,
		}
	})
	if err != nil {
		return nil, err
	}
	intakeUnits.WithLabelValues("restocked").Add(float64(cmd.Quantity))

	logger.Info(ctx).
		Str("aggregate_id", cmd.AggregateID).
		Int64("quantity", cmd.Quantity).
		Str("source", cmd.Source).
		Int64("available", item.Available).
		Msg("Stock restocked")
	return item, nil
}

func (h *ReceiveStockHandler) intake(ctx context.Context, aggregateID string, quantity int64, build func(now time.Time) domain.Event) (*domain.StockItem, error) {
	if aggregateID == "" {
		return nil, domain.ErrEmptyAggregateID
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	var item *domain.StockItem
	err := retryOnConflict(ctx, h.maxAttempts, func(ctx context.Context) error {
		loaded, version, err := h.repo.Load(ctx, aggregateID)
		if err != nil {
			return err
		}

		event := build(time.Now().UTC())
		if err := h.repo.Save(ctx, aggregateID, version, []domain.Event{event}); err != nil {
			return err
		}
		loaded.Apply(event)
		item = loaded
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record stock intake: %w", err)
	}
	return item, nil
}
