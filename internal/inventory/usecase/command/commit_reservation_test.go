package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/inventory-engine/internal/inventory/domain"
)

func TestCommitReservationHandler_Handle(t *testing.T) {
	repo := newTestRepo()
	aggregateID := seedStock(t, repo, "SKU-1", "WH", 10)
	reserved := reserveOneItem(t, repo, "order-1", "WH", "SKU-1", 4)

	publisher := &capturePublisher{}
	handler := NewCommitReservationHandler(repo, publisher)

	outcome, err := handler.Handle(context.Background(), CommitReservationCommand{
		AggregateID:   aggregateID,
		ReservationID: reserved.ReservationID,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeReservationCommitted, outcome.Kind)
	assert.Equal(t, "order-1", outcome.OrderID)
	assert.Equal(t, int64(4), outcome.Quantity)

	stock, _, err := repo.Load(context.Background(), aggregateID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), stock.Available, "commit must not change available")
	assert.Equal(t, int64(0), stock.ReservedTotal())
	assert.Equal(t, int64(4), stock.CommittedTotal())
	assert.True(t, stock.HasCommitment(reserved.ReservationID))
	assert.Equal(t, int64(10), stock.TotalOnHand())

	require.Len(t, publisher.published(), 1)
}

func TestCommitReservationHandler_Idempotent(t *testing.T) {
	repo := newTestRepo()
	aggregateID := seedStock(t, repo, "SKU-1", "WH", 10)
	reserved := reserveOneItem(t, repo, "order-1", "WH", "SKU-1", 4)
	handler := NewCommitReservationHandler(repo, nil)

	cmd := CommitReservationCommand{AggregateID: aggregateID, ReservationID: reserved.ReservationID}
	_, err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	_, version, err := repo.Load(context.Background(), aggregateID)
	require.NoError(t, err)

	outcome, err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err, "replayed commit of a committed reservation is a success")
	assert.Equal(t, domain.OutcomeReservationCommitted, outcome.Kind)
	assert.Equal(t, int64(4), outcome.Quantity)

	_, after, err := repo.Load(context.Background(), aggregateID)
	require.NoError(t, err)
	assert.Equal(t, version, after, "replayed commit must not append an event")
}

func TestCommitReservationHandler_UnknownReservation(t *testing.T) {
	repo := newTestRepo()
	aggregateID := seedStock(t, repo, "SKU-1", "WH", 10)
	handler := NewCommitReservationHandler(repo, nil)

	_, err := handler.Handle(context.Background(), CommitReservationCommand{
		AggregateID:   aggregateID,
		ReservationID: "missing",
	})
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestCommitReservationHandler_ReleasedReservation(t *testing.T) {
	repo := newTestRepo()
	aggregateID := seedStock(t, repo, "SKU-1", "WH", 10)
	reserved := reserveOneItem(t, repo, "order-1", "WH", "SKU-1", 4)

	release := NewReleaseReservationHandler(repo, nil)
	_, err := release.Handle(context.Background(), ReleaseReservationCommand{
		ReservationID: reserved.ReservationID,
		Reason:        "order cancelled",
	})
	require.NoError(t, err)

	handler := NewCommitReservationHandler(repo, nil)
	_, err = handler.Handle(context.Background(), CommitReservationCommand{
		AggregateID:   aggregateID,
		ReservationID: reserved.ReservationID,
	})
	assert.ErrorIs(t, err, domain.ErrReservationNotFound, "a released hold cannot be committed")
}

func TestCommitReservationHandler_Validation(t *testing.T) {
	handler := NewCommitReservationHandler(newTestRepo(), nil)

	_, err := handler.Handle(context.Background(), CommitReservationCommand{ReservationID: "res-1"})
	assert.ErrorIs(t, err, domain.ErrEmptyAggregateID)

	_, err = handler.Handle(context.Background(), CommitReservationCommand{AggregateID: "agg-1"})
	assert.ErrorIs(t, err, domain.ErrEmptyReservationID)
}
