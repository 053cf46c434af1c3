package kafka

import "time"

// OrderLineItem is one line of a placed order
type OrderLineItem struct {
	Sku      string `json:"sku"`
	Quantity int64  `json:"quantity"`
}

// OrderPlacedEvent triggers grouped reservation of the order's line items
type OrderPlacedEvent struct {
	EventID     string          `json:"event_id"`
	EventType   string          `json:"event_type"`
	OrderID     string          `json:"order_id"`
	CustomerID  string          `json:"customer_id"`
	WarehouseID string          `json:"warehouse_id"`
	Items       []OrderLineItem `json:"items"`
	Timestamp   time.Time       `json:"timestamp"`
}

// ReservationRef points at one reservation on one aggregate
type ReservationRef struct {
	AggregateID   string `json:"aggregate_id"`
	ReservationID string `json:"reservation_id"`
}

// PaymentConfirmedEvent triggers commit of the order's reservations
type PaymentConfirmedEvent struct {
	EventID      string           `json:"event_id"`
	EventType    string           `json:"event_type"`
	OrderID      string           `json:"order_id"`
	Reservations []ReservationRef `json:"reservations"`
	Timestamp    time.Time        `json:"timestamp"`
}

// OrderAbortedEvent triggers release of the order's reservations, on
// cancellation or payment failure
type OrderAbortedEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	OrderID        string    `json:"order_id"`
	ReservationIDs []string  `json:"reservation_ids"`
	Reason         string    `json:"reason"`
	Timestamp      time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeOrderPlaced      = "order.placed"
	EventTypePaymentConfirmed = "payment.confirmed"
	EventTypePaymentFailed    = "payment.failed"
	EventTypeOrderCancelled   = "order.cancelled"
)

// Kafka topics
const (
	TopicOrderEvents         = "order-events"
	TopicReservationOutcomes = "inventory-reservation-outcomes"
)
