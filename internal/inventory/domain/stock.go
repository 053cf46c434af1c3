package domain

import (
	"time"

	"github.com/google/uuid"
)

// Namespace for deterministic stock item ids
var stockNamespace = uuid.MustParse("8b13c0e6-57a1-4f6c-9a3b-51d2e8f0a7c4")

// StockItemID derives the aggregate id for a (SKU, warehouse) pair.
// The same pair always maps to the same stream.
func StockItemID(sku, warehouseID string) string {
	return uuid.NewSHA1(stockNamespace, []byte(sku+":"+warehouseID)).String()
}

// StockItem is the event-sourced stock aggregate for one SKU at one warehouse.
// It is always reconstructed by folding its full event history; Apply performs
// no validation beyond structural checks, validation happens in the command
// handlers before events are produced.
type StockItem struct {
	ID          string
	Sku         string
	WarehouseID string

	Available        int64
	Reservations     map[string]int64  // reservation id -> quantity (soft holds)
	Committed        map[string]int64  // reservation id -> quantity (hard allocations)
	ReservationOwner map[string]string // reservation id -> order id

	InitializedAt time.Time
	Version       int64
}

// NewStockItem creates the aggregate from its initialization event
func NewStockItem(e InventoryInitialized) *StockItem {
	s := &StockItem{
		ID:               e.AggregateID,
		Sku:              e.Sku,
		WarehouseID:      e.WarehouseID,
		Available:        e.Quantity,
		Reservations:     make(map[string]int64),
		Committed:        make(map[string]int64),
		ReservationOwner: make(map[string]string),
		InitializedAt:    e.Timestamp,
		Version:          1,
	}
	return s
}

// Apply folds a single event into the aggregate state.
// Commit or release for an unknown reservation id is a no-op.
func (s *StockItem) Apply(event Event) {
	switch e := event.(type) {
	case InventoryInitialized:
		s.ID = e.AggregateID
		s.Sku = e.Sku
		s.WarehouseID = e.WarehouseID
		s.Available = e.Quantity
		s.InitializedAt = e.Timestamp
	case StockReceived:
		s.Available += e.Quantity
	case StockRestocked:
		s.Available += e.Quantity
	case StockReserved:
		s.Available -= e.Quantity
		s.Reservations[e.ReservationID] = e.Quantity
		s.ReservationOwner[e.ReservationID] = e.OrderID
	case ReservationCommitted:
		if qty, ok := s.Reservations[e.ReservationID]; ok {
			delete(s.Reservations, e.ReservationID)
			s.Committed[e.ReservationID] = qty
		}
	case ReservationReleased:
		if qty, ok := s.Reservations[e.ReservationID]; ok {
			delete(s.Reservations, e.ReservationID)
			delete(s.ReservationOwner, e.ReservationID)
			s.Available += qty
		}
	}
	s.Version++
}

// Replay rebuilds the aggregate by folding its full event history from empty
// state. The first event must be InventoryInitialized.
func Replay(events []Event) (*StockItem, error) {
	if len(events) == 0 {
		return nil, ErrStockNotFound
	}
	init, ok := events[0].(InventoryInitialized)
	if !ok {
		return nil, ErrStockNotFound
	}
	s := NewStockItem(init)
	for _, e := range events[1:] {
		s.Apply(e)
	}
	return s, nil
}

// ReservedTotal sums all open soft holds
func (s *StockItem) ReservedTotal() int64 {
	var total int64
	for _, qty := range s.Reservations {
		total += qty
	}
	return total
}

// CommittedTotal sums all hard allocations
func (s *StockItem) CommittedTotal() int64 {
	var total int64
	for _, qty := range s.Committed {
		total += qty
	}
	return total
}

// TotalOnHand is conserved across every transition except intake
func (s *StockItem) TotalOnHand() int64 {
	return s.Available + s.ReservedTotal() + s.CommittedTotal()
}

// HasReservation reports whether the reservation id is an open soft hold
func (s *StockItem) HasReservation(reservationID string) bool {
	_, ok := s.Reservations[reservationID]
	return ok
}

// HasCommitment reports whether the reservation id was committed
func (s *StockItem) HasCommitment(reservationID string) bool {
	_, ok := s.Committed[reservationID]
	return ok
}

// OwnerOf returns the order that owns a reservation id
func (s *StockItem) OwnerOf(reservationID string) string {
	return s.ReservationOwner[reservationID]
}
