package repository

import (
	"context"

	"github.com/tair/inventory-engine/internal/inventory/domain"
	"github.com/tair/inventory-engine/internal/inventory/eventstore"
	"github.com/tair/inventory-engine/pkg/logger"
)

// Repository loads and saves stock aggregates through the event store
type Repository interface {
	// Load folds the full stream into the aggregate and returns the loaded
	// version for the conditional write. Unknown aggregates return
	// domain.ErrStockNotFound.
	Load(ctx context.Context, aggregateID string) (*domain.StockItem, int64, error)
	// Save appends events conditioned on expectedVersion
	Save(ctx context.Context, aggregateID string, expectedVersion int64, events []domain.Event) error
	// FindByReservation resolves the aggregate owning a reservation id.
	// Unknown ids return domain.ErrReservationNotFound.
	FindByReservation(ctx context.Context, reservationID string) (*domain.StockItem, int64, error)
}

// Sink receives events after a successful append. Sinks feed eventually
// consistent read models; a failing sink never fails the write.
type Sink interface {
	HandleEvent(ctx context.Context, event domain.Event) error
}

// EventStoreRepository is the Repository over an eventstore.Store
type EventStoreRepository struct {
	store eventstore.Store
	sinks []Sink
}

// NewEventStoreRepository creates a repository over the given store
func NewEventStoreRepository(store eventstore.Store, sinks ...Sink) *EventStoreRepository {
	return &EventStoreRepository{store: store, sinks: sinks}
}

func (r *EventStoreRepository) Load(ctx context.Context, aggregateID string) (*domain.StockItem, int64, error) {
	events, err := r.store.Load(ctx, aggregateID)
	if err != nil {
		if err == eventstore.ErrStreamNotFound {
			return nil, 0, domain.ErrStockNotFound
		}
		return nil, 0, err
	}

	item, err := domain.Replay(events)
	if err != nil {
		return nil, 0, err
	}
	return item, int64(len(events)), nil
}

func (r *EventStoreRepository) Save(ctx context.Context, aggregateID string, expectedVersion int64, events []domain.Event) error {
	if err := r.store.Append(ctx, aggregateID, expectedVersion, events); err != nil {
		return err
	}
	r.fanOut(ctx, events)
	return nil
}

func (r *EventStoreRepository) FindByReservation(ctx context.Context, reservationID string) (*domain.StockItem, int64, error) {
	streamID, err := r.store.StreamByReservation(ctx, reservationID)
	if err != nil {
		if err == eventstore.ErrStreamNotFound {
			return nil, 0, domain.ErrReservationNotFound
		}
		return nil, 0, err
	}
	return r.Load(ctx, streamID)
}

func (r *EventStoreRepository) fanOut(ctx context.Context, events []domain.Event) {
	for _, sink := range r.sinks {
		for _, event := range events {
			if err := sink.HandleEvent(ctx, event); err != nil {
				logger.Warn(ctx).
					Err(err).
					Str("event_type", event.EventType()).
					Str("aggregate_id", event.Stream()).
					Msg("Read-model sink failed to apply event")
			}
		}
	}
}
