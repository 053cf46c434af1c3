package eventstore

import (
	"context"
	"sync"

	"github.com/tair/inventory-engine/internal/inventory/domain"
)

// MemoryStore is an in-process Store for tests and local development.
// Streams are copied on read so callers never share slices with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	streams map[string][]domain.Event
	// reservation id -> stream id. Entries are permanent: the stream is the
	// record of truth, the index only locates it, so a released reservation
	// still resolves and the release handler can report a safe no-op.
	reservations map[string]string
}

// NewMemoryStore creates an empty in-memory event store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		streams:      make(map[string][]domain.Event),
		reservations: make(map[string]string),
	}
}

func (s *MemoryStore) Append(ctx context.Context, streamID string, expectedVersion int64, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[streamID]
	if int64(len(stream)) != expectedVersion {
		return ErrVersionConflict
	}

	s.streams[streamID] = append(stream, events...)
	for _, event := range events {
		if reserved, ok := event.(domain.StockReserved); ok {
			s.reservations[reserved.ReservationID] = streamID
		}
	}
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, streamID string) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream, ok := s.streams[streamID]
	if !ok {
		return nil, ErrStreamNotFound
	}

	out := make([]domain.Event, len(stream))
	copy(out, stream)
	return out, nil
}

func (s *MemoryStore) StreamByReservation(ctx context.Context, reservationID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	streamID, ok := s.reservations[reservationID]
	if !ok {
		return "", ErrStreamNotFound
	}
	return streamID, nil
}
