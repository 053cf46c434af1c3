package saga

import (
	"context"
	"fmt"

	"github.com/tair/inventory-engine/internal/inventory/domain"
	"github.com/tair/inventory-engine/internal/inventory/usecase/command"
	"github.com/tair/inventory-engine/pkg/logger"
)

// ReservationResult aggregates the per-SKU outcomes of one order
type ReservationResult struct {
	Outcomes     []domain.ReservationOutcome
	AllConfirmed bool
	Compensated  bool
}

// Coordinator reserves all of an order's SKUs and, when the order demands
// all-or-nothing semantics, compensates confirmed siblings once any SKU is
// declined. The engine has no multi-aggregate transaction; atomicity across
// SKUs is this reserve-then-release choreography. Compensating releases are
// idempotent, so a crash between deciding to compensate and the release
// landing is recovered by replaying the same releases.
type Coordinator struct {
	reserve *command.ReserveStockHandler
	release *command.ReleaseReservationHandler
}

// NewCoordinator creates a new reservation coordinator
func NewCoordinator(reserve *command.ReserveStockHandler, release *command.ReleaseReservationHandler) *Coordinator {
	return &Coordinator{reserve: reserve, release: release}
}

// Handle reserves the order's line items. With allOrNothing set, a declined
// SKU triggers compensating releases for every confirmed one.
func (c *Coordinator) Handle(ctx context.Context, cmd command.ReserveStockCommand, allOrNothing bool) (*ReservationResult, error) {
	outcomes, err := c.reserve.Handle(ctx, cmd)
	if err != nil {
		return nil, err
	}

	result := &ReservationResult{Outcomes: outcomes, AllConfirmed: true}
	for _, outcome := range outcomes {
		if !outcome.Confirmed() {
			result.AllConfirmed = false
			break
		}
	}

	if result.AllConfirmed || !allOrNothing {
		return result, nil
	}

	if err := c.compensate(ctx, cmd.OrderID, outcomes); err != nil {
		return result, err
	}
	result.Compensated = true
	return result, nil
}

func (c *Coordinator) compensate(ctx context.Context, orderID string, outcomes []domain.ReservationOutcome) error {
	for _, outcome := range outcomes {
		if !outcome.Confirmed() {
			continue
		}
		_, err := c.release.Handle(ctx, command.ReleaseReservationCommand{
			ReservationID: outcome.ReservationID,
			Reason:        "sibling line item declined",
		})
		if err != nil {
			return fmt.Errorf("failed to compensate reservation %s: %w", outcome.ReservationID, err)
		}

		logger.Info(ctx).
			Str("order_id", orderID).
			Str("sku", outcome.Sku).
			Str("reservation_id", outcome.ReservationID).
			Int64("quantity", outcome.Quantity).
			Msg("Compensating release issued")
	}
	return nil
}
