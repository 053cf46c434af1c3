package eventstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/inventory-engine/internal/inventory/domain"
)

func TestCodec_RoundTrip(t *testing.T) {
	event := domain.StockReserved{
		AggregateID:   "agg-1",
		ReservationID: "res-1",
		OrderID:       "order-1",
		Quantity:      3,
		Timestamp:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	payload, err := EncodeEvent(event)
	require.NoError(t, err)

	decoded, err := DecodeEvent(event.EventType(), payload)
	require.NoError(t, err)
	assert.Equal(t, event, decoded)
}

func TestDecodeEvent_UnknownType(t *testing.T) {
	_, err := DecodeEvent("inventory.unknown", []byte(`{}`))
	assert.Error(t, err)
}

func TestDecodeEvent_AllTypesResolve(t *testing.T) {
	types := []string{
		domain.EventTypeInventoryInitialized,
		domain.EventTypeStockReceived,
		domain.EventTypeStockRestocked,
		domain.EventTypeStockReserved,
		domain.EventTypeReservationCommitted,
		domain.EventTypeReservationReleased,
	}
	for _, typ := range types {
		decoded, err := DecodeEvent(typ, []byte(`{}`))
		require.NoError(t, err, typ)
		assert.Equal(t, typ, decoded.EventType())
	}
}
