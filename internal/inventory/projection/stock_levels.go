package projection

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/tair/inventory-engine/internal/inventory/domain"
)

// ErrLevelNotFound means the read model has no row for the aggregate yet
var ErrLevelNotFound = errors.New("stock level not found")

// StockLevel is the eventually-consistent read model row for one aggregate
type StockLevel struct {
	AggregateID string    `json:"aggregate_id" gorm:"primaryKey"`
	Sku         string    `json:"sku" gorm:"index"`
	WarehouseID string    `json:"warehouse_id" gorm:"index"`
	Available   int64     `json:"available"`
	Reserved    int64     `json:"reserved"`
	Committed   int64     `json:"committed"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (StockLevel) TableName() string {
	return "stock_levels"
}

// LevelStore persists projection rows
type LevelStore interface {
	Get(ctx context.Context, aggregateID string) (*StockLevel, error)
	Upsert(ctx context.Context, level *StockLevel) error
}

// StockLevelProjector folds domain events into stock-level rows. Reads from
// it may trail the event log; all writes still go through the aggregate.
type StockLevelProjector struct {
	levels LevelStore
}

// NewStockLevelProjector creates a new stock level projector
func NewStockLevelProjector(levels LevelStore) *StockLevelProjector {
	return &StockLevelProjector{levels: levels}
}

// HandleEvent applies one domain event to the read model
func (p *StockLevelProjector) HandleEvent(ctx context.Context, event domain.Event) error {
	level, err := p.levels.Get(ctx, event.Stream())
	if errors.Is(err, ErrLevelNotFound) {
		level = &StockLevel{AggregateID: event.Stream()}
	} else if err != nil {
		return err
	}

	switch e := event.(type) {
	case domain.InventoryInitialized:
		level.Sku = e.Sku
		level.WarehouseID = e.WarehouseID
		level.Available = e.Quantity
	case domain.StockReceived:
		level.Available += e.Quantity
	case domain.StockRestocked:
		level.Available += e.Quantity
	case domain.StockReserved:
		level.Available -= e.Quantity
		level.Reserved += e.Quantity
	case domain.ReservationCommitted:
		level.Reserved -= e.Quantity
		level.Committed += e.Quantity
	case domain.ReservationReleased:
		level.Reserved -= e.Quantity
		level.Available += e.Quantity
	default:
		return nil
	}

	level.UpdatedAt = event.OccurredAt()
	if err := p.levels.Upsert(ctx, level); err != nil {
		return fmt.Errorf("failed to upsert stock level: %w", err)
	}
	return nil
}

// GormLevelStore persists stock levels in PostgreSQL
type GormLevelStore struct {
	db *gorm.DB
}

// NewGormLevelStore creates a new GORM-backed level store
func NewGormLevelStore(db *gorm.DB) *GormLevelStore {
	return &GormLevelStore{db: db}
}

// AutoMigrate creates the stock_levels table
func (s *GormLevelStore) AutoMigrate() error {
	return s.db.AutoMigrate(&StockLevel{})
}

func (s *GormLevelStore) Get(ctx context.Context, aggregateID string) (*StockLevel, error) {
	var level StockLevel
	err := s.db.WithContext(ctx).First(&level, "aggregate_id = ?", aggregateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLevelNotFound
	}
	if err != nil {
		return nil, err
	}
	return &level, nil
}

func (s *GormLevelStore) Upsert(ctx context.Context, level *StockLevel) error {
	return s.db.WithContext(ctx).Save(level).Error
}

// MemoryLevelStore keeps stock levels in memory for tests and local runs
type MemoryLevelStore struct {
	mu     sync.RWMutex
	levels map[string]StockLevel
}

// NewMemoryLevelStore creates a new in-memory level store
func NewMemoryLevelStore() *MemoryLevelStore {
	return &MemoryLevelStore{levels: make(map[string]StockLevel)}
}

func (s *MemoryLevelStore) Get(ctx context.Context, aggregateID string) (*StockLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	level, ok := s.levels[aggregateID]
	if !ok {
		return nil, ErrLevelNotFound
	}
	out := level
	return &out, nil
}

func (s *MemoryLevelStore) Upsert(ctx context.Context, level *StockLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels[level.AggregateID] = *level
	return nil
}
