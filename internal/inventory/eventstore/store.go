package eventstore

import (
	"context"
	"errors"

	"github.com/tair/inventory-engine/internal/inventory/domain"
)

var (
	// ErrVersionConflict means a concurrent writer advanced the stream since
	// it was loaded. Callers reload, reevaluate and retry.
	ErrVersionConflict = errors.New("concurrent modification detected")
	// ErrStreamNotFound means no stream exists for the given key
	ErrStreamNotFound = errors.New("event stream not found")
)

// NoStream is the expected version for a stream that must not exist yet
const NoStream int64 = 0

// Store is an append-only, per-stream event log with optimistic-concurrency
// writes and full replay. One stream per (SKU, warehouse) aggregate.
type Store interface {
	// Append writes events conditioned on the stream still being at
	// expectedVersion (the number of events the writer loaded). A version
	// mismatch returns ErrVersionConflict and writes nothing.
	Append(ctx context.Context, streamID string, expectedVersion int64, events []domain.Event) error

	// Load returns the stream's full event history in append order.
	// An unknown stream returns ErrStreamNotFound.
	Load(ctx context.Context, streamID string) ([]domain.Event, error)

	// StreamByReservation resolves the stream whose history contains the
	// given reservation id. Required by the release path, which is keyed by
	// reservation id alone. Unknown ids return ErrStreamNotFound.
	StreamByReservation(ctx context.Context, reservationID string) (string, error)
}
