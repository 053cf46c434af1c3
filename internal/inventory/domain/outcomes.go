package domain

import "time"

// Outcome kinds emitted back to callers
const (
	OutcomeReservationConfirmed = "reservation.confirmed"
	OutcomeReservationFailed    = "reservation.failed"
	OutcomeReservationCommitted = "reservation.committed"
	OutcomeReservationReleased  = "reservation.released"
)

// ReservationOutcome is the engine's answer to a reserve, commit or release
// attempt. A failed reservation is a normal business outcome, not a fault.
type ReservationOutcome struct {
	Kind          string    `json:"kind"`
	OrderID       string    `json:"order_id"`
	AggregateID   string    `json:"aggregate_id"`
	ReservationID string    `json:"reservation_id"`
	Sku           string    `json:"sku"`
	WarehouseID   string    `json:"warehouse_id"`
	Quantity      int64     `json:"quantity"`
	Available     int64     `json:"available"`
	Reason        string    `json:"reason,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Confirmed reports whether the outcome is a success kind
func (o ReservationOutcome) Confirmed() bool {
	return o.Kind != OutcomeReservationFailed
}
