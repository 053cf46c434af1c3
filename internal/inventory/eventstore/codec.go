package eventstore

import (
	"encoding/json"
	"fmt"

	"github.com/tair/inventory-engine/internal/inventory/domain"
)

// EncodeEvent serializes an event payload to JSON
func EncodeEvent(event domain.Event) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
	}
	return payload, nil
}

// DecodeEvent deserializes a stored payload by its event type tag
func DecodeEvent(eventType string, payload []byte) (domain.Event, error) {
	switch eventType {
	case domain.EventTypeInventoryInitialized:
		var e domain.InventoryInitialized
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
		}
		return e, nil
	case domain.EventTypeStockReceived:
		var e domain.StockReceived
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
		}
		return e, nil
	case domain.EventTypeStockRestocked:
		var e domain.StockRestocked
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
		}
		return e, nil
	case domain.EventTypeStockReserved:
		var e domain.StockReserved
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
		}
		return e, nil
	case domain.EventTypeReservationCommitted:
		var e domain.ReservationCommitted
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
		}
		return e, nil
	case domain.EventTypeReservationReleased:
		var e domain.ReservationReleased
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
}
