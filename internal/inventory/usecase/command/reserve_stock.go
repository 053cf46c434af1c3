package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/inventory-engine/internal/inventory/domain"
	"github.com/tair/inventory-engine/internal/inventory/eventstore"
	"github.com/tair/inventory-engine/internal/inventory/port"
	"github.com/tair/inventory-engine/internal/inventory/repository"
	"github.com/tair/inventory-engine/pkg/logger"
)

// LineItem is one entry of a placed order
type LineItem struct {
	Sku      string
	Quantity int64
}

// ReserveStockCommand places soft holds for an order's line items
type ReserveStockCommand struct {
	OrderID     string
	WarehouseID string
	Items       []LineItem
}

// ReserveStockHandler handles reserve stock commands. Line items are grouped
// by SKU first, so an order never produces two reservations for the same SKU.
// Each SKU's attempt is independent: some may confirm while others are
// declined, and the handler performs no rollback across aggregates.
type ReserveStockHandler struct {
	repo        repository.Repository
	publisher   port.OutcomePublisher
	maxAttempts int
}

// NewReserveStockHandler creates a new reserve stock handler
func NewReserveStockHandler(repo repository.Repository, publisher port.OutcomePublisher) *ReserveStockHandler {
	return &ReserveStockHandler{
		repo:        repo,
		publisher:   publisher,
		maxAttempts: DefaultMaxAttempts,
	}
}

// Handle executes the reserve stock command and returns one outcome per
// unique SKU. Declined reservations are outcomes, not errors; the returned
// error is reserved for validation and infrastructure faults.
func (h *ReserveStockHandler) Handle(ctx context.Context, cmd ReserveStockCommand) ([]domain.ReservationOutcome, error) {
	timer := prometheus.NewTimer(reserveLatency)
	defer timer.ObserveDuration()

	if err := h.validate(cmd); err != nil {
		return nil, err
	}

	grouped := groupLineItems(cmd.Items)
	outcomes := make([]domain.ReservationOutcome, 0, len(grouped))
	for _, item := range grouped {
		outcome, err := h.reserveOne(ctx, cmd.OrderID, cmd.WarehouseID, item)
		if err != nil {
			return outcomes, err
		}
		h.publish(ctx, outcome)
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (h *ReserveStockHandler) validate(cmd ReserveStockCommand) error {
	if cmd.OrderID == "" {
		return domain.ErrEmptyOrderID
	}
	if cmd.WarehouseID == "" {
		return domain.ErrEmptyWarehouseID
	}
	if len(cmd.Items) == 0 {
		return domain.ErrNoLineItems
	}
	for i, item := range cmd.Items {
		if item.Sku == "" {
			return fmt.Errorf("line item %d: %w", i, domain.ErrEmptySku)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("line item %d: %w", i, domain.ErrInvalidQuantity)
		}
	}
	return nil
}

// groupLineItems merges duplicate SKUs, summing quantities and preserving
// first-seen order
func groupLineItems(items []LineItem) []LineItem {
	index := make(map[string]int, len(items))
	grouped := make([]LineItem, 0, len(items))
	for _, item := range items {
		if at, ok := index[item.Sku]; ok {
			grouped[at].Quantity += item.Quantity
			continue
		}
		index[item.Sku] = len(grouped)
		grouped = append(grouped, item)
	}
	return grouped
}

func (h *ReserveStockHandler) reserveOne(ctx context.Context, orderID, warehouseID string, item LineItem) (domain.ReservationOutcome, error) {
	aggregateID := domain.StockItemID(item.Sku, warehouseID)
	outcome := domain.ReservationOutcome{
		Kind:        domain.OutcomeReservationFailed,
		OrderID:     orderID,
		AggregateID: aggregateID,
		Sku:         item.Sku,
		WarehouseID: warehouseID,
		Quantity:    item.Quantity,
	}

	for attempt := 0; attempt < h.maxAttempts; attempt++ {
		stock, version, err := h.repo.Load(ctx, aggregateID)
		if errors.Is(err, domain.ErrStockNotFound) {
			outcome.Reason = "sku is not stocked at this warehouse"
			outcome.Timestamp = time.Now().UTC()
			reservationOutcomes.WithLabelValues("failed").Inc()
			return outcome, nil
		}
		if err != nil {
			return outcome, fmt.Errorf("failed to load stock for %s: %w", item.Sku, err)
		}

		if stock.Available < item.Quantity {
			// Declined, aggregate untouched. Retrying is the caller's call.
			outcome.Available = stock.Available
			outcome.Reason = fmt.Sprintf("insufficient stock: requested %d, available %d", item.Quantity, stock.Available)
			outcome.Timestamp = time.Now().UTC()
			reservationOutcomes.WithLabelValues("failed").Inc()
			return outcome, nil
		}

		event := domain.StockReserved{
			AggregateID:   aggregateID,
			ReservationID: uuid.NewString(),
			OrderID:       orderID,
			Quantity:      item.Quantity,
			Timestamp:     time.Now().UTC(),
		}
		err = h.repo.Save(ctx, aggregateID, version, []domain.Event{event})
		if errors.Is(err, eventstore.ErrVersionConflict) {
			versionConflicts.Inc()
			continue
		}
		if err != nil {
			return outcome, fmt.Errorf("failed to reserve stock for %s: %w", item.Sku, err)
		}

		outcome.Kind = domain.OutcomeReservationConfirmed
		outcome.ReservationID = event.ReservationID
		outcome.Available = stock.Available - item.Quantity
		outcome.Timestamp = event.Timestamp
		reservationOutcomes.WithLabelValues("confirmed").Inc()

		logger.Info(ctx).
			Str("order_id", orderID).
			Str("sku", item.Sku).
			Str("warehouse_id", warehouseID).
			Str("reservation_id", event.ReservationID).
			Int64("quantity", item.Quantity).
			Int64("available", outcome.Available).
			Msg("Stock reserved")
		return outcome, nil
	}

	outcome.Reason = fmt.Sprintf("too many concurrent updates, gave up after %d attempts", h.maxAttempts)
	outcome.Timestamp = time.Now().UTC()
	reservationOutcomes.WithLabelValues("conflict").Inc()

	logger.Warn(ctx).
		Str("order_id", orderID).
		Str("sku", item.Sku).
		Int("attempts", h.maxAttempts).
		Msg("Reservation abandoned after repeated version conflicts")
	return outcome, nil
}

func (h *ReserveStockHandler) publish(ctx context.Context, outcome domain.ReservationOutcome) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.PublishOutcome(ctx, outcome); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("kind", outcome.Kind).
			Str("order_id", outcome.OrderID).
			Str("sku", outcome.Sku).
			Msg("Failed to publish reservation outcome")
	}
}
