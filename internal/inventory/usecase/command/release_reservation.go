package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tair/inventory-engine/internal/inventory/domain"
	"github.com/tair/inventory-engine/internal/inventory/eventstore"
	"github.com/tair/inventory-engine/internal/inventory/port"
	"github.com/tair/inventory-engine/internal/inventory/repository"
	"github.com/tair/inventory-engine/pkg/logger"
)

// ReleaseReservationCommand compensates a soft hold back into the available
// pool. Callers on the compensation path typically know only the reservation
// id, so no aggregate id is required.
type ReleaseReservationCommand struct {
	ReservationID string
	Reason        string
}

// ReleaseResult reports what the release did. Applied is false when the
// reservation was already released, already committed or never existed:
// upstream delivery is at-least-once, so those replays are successes.
type ReleaseResult struct {
	Outcome domain.ReservationOutcome
	Applied bool
}

// ReleaseReservationHandler handles release reservation commands
type ReleaseReservationHandler struct {
	repo        repository.Repository
	publisher   port.OutcomePublisher
	maxAttempts int
}

// NewReleaseReservationHandler creates a new release reservation handler
func NewReleaseReservationHandler(repo repository.Repository, publisher port.OutcomePublisher) *ReleaseReservationHandler {
	return &ReleaseReservationHandler{
		repo:        repo,
		publisher:   publisher,
		maxAttempts: DefaultMaxAttempts,
	}
}

// Handle executes the release reservation command
func (h *ReleaseReservationHandler) Handle(ctx context.Context, cmd ReleaseReservationCommand) (*ReleaseResult, error) {
	if cmd.ReservationID == "" {
		return nil, domain.ErrEmptyReservationID
	}

	for attempt := 0; attempt < h.maxAttempts; attempt++ {
		stock, version, err := h.repo.FindByReservation(ctx, cmd.ReservationID)
		if errors.Is(err, domain.ErrReservationNotFound) {
			// Never reserved here, or the index predates this deployment.
			// Either way there is nothing to undo.
			return h.noop(ctx, cmd), nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve reservation: %w", err)
		}

		qty, ok := stock.Reservations[cmd.ReservationID]
		if !ok {
			// Already released or already committed
			return h.noop(ctx, cmd), nil
		}

		event := domain.ReservationReleased{
			AggregateID:   stock.ID,
			ReservationID: cmd.ReservationID,
			OrderID:       stock.OwnerOf(cmd.ReservationID),
			Quantity:      qty,
			Reason:        cmd.Reason,
			Timestamp:     time.Now().UTC(),
		}
		err = h.repo.Save(ctx, stock.ID, version, []domain.Event{event})
		if errors.Is(err, eventstore.ErrVersionConflict) {
			versionConflicts.Inc()
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to release reservation: %w", err)
		}

		result := &ReleaseResult{
			Outcome: domain.ReservationOutcome{
				Kind:          domain.OutcomeReservationReleased,
				OrderID:       event.OrderID,
				AggregateID:   stock.ID,
				ReservationID: cmd.ReservationID,
				Sku:           stock.Sku,
				WarehouseID:   stock.WarehouseID,
				Quantity:      qty,
				Available:     stock.Available + qty,
				Reason:        cmd.Reason,
				Timestamp:     event.Timestamp,
			},
			Applied: true,
		}
		releasesTotal.Inc()
		h.publish(ctx, result.Outcome)

		logger.Info(ctx).
			Str("aggregate_id", stock.ID).
			Str("reservation_id", cmd.ReservationID).
			Str("order_id", event.OrderID).
			Int64("quantity", qty).
			Str("reason", cmd.Reason).
			Msg("Reservation released")
		return result, nil
	}

	return nil, fmt.Errorf("failed to release reservation %s: gave up after %d attempts: %w",
		cmd.ReservationID, h.maxAttempts, eventstore.ErrVersionConflict)
}

// noop builds the success result for a release with nothing to undo.
// No outcome event is published: there is no new fact to announce.
func (h *ReleaseReservationHandler) noop(ctx context.Context, cmd ReleaseReservationCommand) *ReleaseResult {
	logger.Debug(ctx).
		Str("reservation_id", cmd.ReservationID).
		Str("reason", cmd.Reason).
		Msg("Release is a no-op, reservation not held")
	return &ReleaseResult{
		Outcome: domain.ReservationOutcome{
			Kind:          domain.OutcomeReservationReleased,
			ReservationID: cmd.ReservationID,
			Reason:        cmd.Reason,
			Timestamp:     time.Now().UTC(),
		},
		Applied: false,
	}
}

func (h *ReleaseReservationHandler) publish(ctx context.Context, outcome domain.ReservationOutcome) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.PublishOutcome(ctx, outcome); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("reservation_id", outcome.ReservationID).
			Msg("Failed to publish release outcome")
	}
}
