package port

import (
	"context"

	"github.com/tair/inventory-engine/internal/inventory/domain"
)

// OutcomePublisher carries reservation outcomes back to callers.
// The engine only emits facts; delivery guarantees belong to the transport.
type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, outcome domain.ReservationOutcome) error
}

// NoopPublisher discards outcomes. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOutcome(ctx context.Context, outcome domain.ReservationOutcome) error {
	return nil
}
