package query

import (
	"context"
	"time"

	"github.com/tair/inventory-engine/internal/inventory/domain"
	"github.com/tair/inventory-engine/internal/inventory/repository"
)

// GetStockQuery fetches one stock item, by aggregate id or by its
// (SKU, warehouse) pair
type GetStockQuery struct {
	AggregateID string
	Sku         string
	WarehouseID string
}

// StockView is the authoritative snapshot of one stock item
type StockView struct {
	AggregateID   string    `json:"aggregate_id"`
	Sku           string    `json:"sku"`
	WarehouseID   string    `json:"warehouse_id"`
	Available     int64     `json:"available"`
	Reserved      int64     `json:"reserved"`
	Committed     int64     `json:"committed"`
	TotalOnHand   int64     `json:"total_on_hand"`
	Version       int64     `json:"version"`
	InitializedAt time.Time `json:"initialized_at"`
}

// GetStockHandler handles get stock queries against the authoritative
// event-sourced aggregate
type GetStockHandler struct {
	repo repository.Repository
}

// NewGetStockHandler creates a new get stock handler
func NewGetStockHandler(repo repository.Repository) *GetStockHandler {
	return &GetStockHandler{repo: repo}
}

// Handle executes the get stock query
func (h *GetStockHandler) Handle(ctx context.Context, q GetStockQuery) (*StockView, error) {
	aggregateID := q.AggregateID
	if aggregateID == "" {
		if q.Sku == "" {
			return nil, domain.ErrEmptySku
		}
		if q.WarehouseID == "" {
			return nil, domain.ErrEmptyWarehouseID
		}
		aggregateID = domain.StockItemID(q.Sku, q.WarehouseID)
	}

	stock, version, err := h.repo.Load(ctx, aggregateID)
	if err != nil {
		return nil, err
	}

	return &StockView{
		AggregateID:   stock.ID,
		Sku:           stock.Sku,
		WarehouseID:   stock.WarehouseID,
		Available:     stock.Available,
		Reserved:      stock.ReservedTotal(),
		Committed:     stock.CommittedTotal(),
		TotalOnHand:   stock.TotalOnHand(),
		Version:       version,
		InitializedAt: stock.InitializedAt,
	}, nil
}
