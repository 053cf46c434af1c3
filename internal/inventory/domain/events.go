package domain

import "time"

// Event types
const (
	EventTypeInventoryInitialized = "inventory.initialized"
	EventTypeStockReceived        = "inventory.stock_received"
	EventTypeStockRestocked       = "inventory.stock_restocked"
	EventTypeStockReserved        = "inventory.stock_reserved"
	EventTypeReservationCommitted = "inventory.reservation_committed"
	EventTypeReservationReleased  = "inventory.reservation_released"
)

// Event is a fact recorded in a stock item's stream
type Event interface {
	EventType() string
	Stream() string
	OccurredAt() time.Time
}

// InventoryInitialized declares a SKU at a warehouse with a starting quantity
type InventoryInitialized struct {
	AggregateID string    `json:"aggregate_id"`
	Sku         string    `json:"sku"`
	WarehouseID string    `json:"warehouse_id"`
	Quantity    int64     `json:"quantity"`
	Timestamp   time.Time `json:"timestamp"`
}

// StockReceived records new supply arriving from a source
type StockReceived struct {
	AggregateID string    `json:"aggregate_id"`
	Quantity    int64     `json:"quantity"`
	Source      string    `json:"source"`
	Timestamp   time.Time `json:"timestamp"`
}

// StockRestocked records inspected returns going back into the available pool
type StockRestocked struct {
	AggregateID string    `json:"aggregate_id"`
	Quantity    int64     `json:"quantity"`
	Source      string    `json:"source"`
	Timestamp   time.Time `json:"timestamp"`
}

// StockReserved places a soft hold on quantity for an order
type StockReserved struct {
	AggregateID   string    `json:"aggregate_id"`
	ReservationID string    `json:"reservation_id"`
	OrderID       string    `json:"order_id"`
	Quantity      int64     `json:"quantity"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReservationCommitted converts a soft hold into a hard allocation
type ReservationCommitted struct {
	AggregateID   string    `json:"aggregate_id"`
	ReservationID string    `json:"reservation_id"`
	OrderID       string    `json:"order_id"`
	Quantity      int64     `json:"quantity"`
	Timestamp     time.Time `json:"timestamp"`
}

// ReservationReleased compensates a soft hold back into the available pool
type ReservationReleased struct {
	AggregateID   string    `json:"aggregate_id"`
	ReservationID string    `json:"reservation_id"`
	OrderID       string    `json:"order_id"`
	Quantity      int64     `json:"quantity"`
	Reason        string    `json:"reason"`
	Timestamp     time.Time `json:"timestamp"`
}

func (e InventoryInitialized) EventType() string { return EventTypeInventoryInitialized }
func (e StockReceived) EventType() string        { return EventTypeStockReceived }
func (e StockRestocked) EventType() string       { return EventTypeStockRestocked }
func (e StockReserved) EventType() string        { return EventTypeStockReserved }
func (e ReservationCommitted) EventType() string { return EventTypeReservationCommitted }
func (e ReservationReleased) EventType() string  { return EventTypeReservationReleased }

func (e InventoryInitialized) Stream() string { return e.AggregateID }
func (e StockReceived) Stream() string        { return e.AggregateID }
func (e StockRestocked) Stream() string       { return e.AggregateID }
func (e StockReserved) Stream() string        { return e.AggregateID }
func (e ReservationCommitted) Stream() string { return e.AggregateID }
func (e ReservationReleased) Stream() string  { return e.AggregateID }

func (e InventoryInitialized) OccurredAt() time.Time { return e.Timestamp }
func (e StockReceived) OccurredAt() time.Time        { return e.Timestamp }
func (e StockRestocked) OccurredAt() time.Time       { return e.Timestamp }
func (e StockReserved) OccurredAt() time.Time        { return e.Timestamp }
func (e ReservationCommitted) OccurredAt() time.Time { return e.Timestamp }
func (e ReservationReleased) OccurredAt() time.Time  { return e.Timestamp }
