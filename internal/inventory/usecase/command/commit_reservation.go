package command

import (
	"context"
	"fmt"
	"time"

	"github.com/tair/inventory-engine/internal/inventory/domain"
	"github.com/tair/inventory-engine/internal/inventory/port"
	"github.com/tair/inventory-engine/internal/inventory/repository"
	"github.com/tair/inventory-engine/pkg/logger"
)

// CommitReservationCommand converts a soft hold into a hard allocation
type CommitReservationCommand struct {
	AggregateID   string
	ReservationID string
}

// CommitReservationHandler handles commit reservation commands. A commit is a
// pure reclassification: the reservation's exact quantity moves from the
// soft-hold set to the hard-allocation set, Available and total on hand are
// unchanged. There is no partial commit.
type CommitReservationHandler struct {
	repo        repository.Repository
	publisher   port.OutcomePublisher
	maxAttempts int
}

// NewCommitReservationHandler creates a new commit reservation handler
func NewCommitReservationHandler(repo repository.Repository, publisher port.OutcomePublisher) *CommitReservationHandler {
	return &CommitReservationHandler{
		repo:        repo,
		publisher:   publisher,
		maxAttempts: DefaultMaxAttempts,
	}
}

// Handle executes the commit reservation command
func (h *CommitReservationHandler) Handle(ctx context.Context, cmd CommitReservationCommand) (*domain.ReservationOutcome, error) {
	if cmd.AggregateID == "" {
		return nil, domain.ErrEmptyAggregateID
	}
	if cmd.ReservationID == "" {
		return nil, domain.ErrEmptyReservationID
	}

	var outcome *domain.ReservationOutcome
	err := retryOnConflict(ctx, h.maxAttempts, func(ctx context.Context) error {
		stock, version, err := h.repo.Load(ctx, cmd.AggregateID)
		if err != nil {
			return err
		}

		// A replayed commit of an already-committed reservation is a success
		if qty, ok := stock.Committed[cmd.ReservationID]; ok {
			outcome = h.outcome(stock, cmd.ReservationID, qty, time.Now().UTC())
			return nil
		}

		qty, ok := stock.Reservations[cmd.ReservationID]
		if !ok {
			return domain.ErrReservationNotFound
		}

		event := domain.ReservationCommitted{
			AggregateID:   cmd.AggregateID,
			ReservationID: cmd.ReservationID,
			OrderID:       stock.OwnerOf(cmd.ReservationID),
			Quantity:      qty,
			Timestamp:     time.Now().UTC(),
		}
		if err := h.repo.Save(ctx, cmd.AggregateID, version, []domain.Event{event}); err != nil {
			return err
		}

		outcome = h.outcome(stock, cmd.ReservationID, qty, event.Timestamp)
		commitsTotal.Inc()

		logger.Info(ctx).
			Str("aggregate_id", cmd.AggregateID).
			Str("reservation_id", cmd.ReservationID).
			Str("order_id", event.OrderID).
			Int64("quantity", qty).
			Msg("Reservation committed")
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to commit reservation: %w", err)
	}

	h.publish(ctx, *outcome)
	return outcome, nil
}

func (h *CommitReservationHandler) outcome(stock *domain.StockItem, reservationID string, qty int64, at time.Time) *domain.ReservationOutcome {
	return &domain.ReservationOutcome{
		Kind:          domain.OutcomeReservationCommitted,
		OrderID:       stock.OwnerOf(reservationID),
		AggregateID:   stock.ID,
		ReservationID: reservationID,
		Sku:           stock.Sku,
		WarehouseID:   stock.WarehouseID,
		Quantity:      qty,
		Available:     stock.Available,
		Timestamp:     at,
	}
}

func (h *CommitReservationHandler) publish(ctx context.Context, outcome domain.ReservationOutcome) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.PublishOutcome(ctx, outcome); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("reservation_id", outcome.ReservationID).
			Msg("Failed to publish commit outcome")
	}
}
