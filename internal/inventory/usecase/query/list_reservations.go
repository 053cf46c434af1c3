package query

import (
	"context"
	"sort"

	"github.com/tair/inventory-engine/internal/inventory/domain"
	"github.com/tair/inventory-engine/internal/inventory/repository"
)

// ListReservationsQuery lists the open soft holds of one stock item
type ListReservationsQuery struct {
	AggregateID string
}

// ReservationView is one open soft hold
type ReservationView struct {
	ReservationID string `json:"reservation_id"`
	OrderID       string `json:"order_id"`
	Quantity      int64  `json:"quantity"`
}

// ListReservationsHandler handles list reservations queries
type ListReservationsHandler struct {
	repo repository.Repository
}

// NewListReservationsHandler creates a new list reservations handler
func NewListReservationsHandler(repo repository.Repository) *ListReservationsHandler {
	return &ListReservationsHandler{repo: repo}
}

// Handle executes the list reservations query
func (h *ListReservationsHandler) Handle(ctx context.Context, q ListReservationsQuery) ([]ReservationView, error) {
	if q.AggregateID == "" {
		return nil, domain.ErrEmptyAggregateID
	}

	stock, _, err := h.repo.Load(ctx, q.AggregateID)
	if err != nil {
		return nil, err
	}

	views := make([]ReservationView, 0, len(stock.Reservations))
	for id, qty := range stock.Reservations {
		views = append(views, ReservationView{
			ReservationID: id,
			OrderID:       stock.OwnerOf(id),
			Quantity:      qty,
		})
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].ReservationID < views[j].ReservationID
	})
	return views, nil
}
