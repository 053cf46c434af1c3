//go:build wireinject
// +build wireinject

package inventory

import (
	"github.com/google/wire"

	"github.com/tair/inventory-engine/internal/inventory/eventstore"
	"github.com/tair/inventory-engine/internal/inventory/port"
	"github.com/tair/inventory-engine/internal/inventory/projection"
	"github.com/tair/inventory-engine/internal/inventory/repository"
	"github.com/tair/inventory-engine/internal/inventory/usecase/command"
	"github.com/tair/inventory-engine/internal/inventory/usecase/query"
	"github.com/tair/inventory-engine/internal/inventory/usecase/saga"
)

// ProvideRepository provides the traced event-sourced stock repository with
// the read-model projector attached as a sink
func ProvideRepository(store eventstore.Store, projector *projection.StockLevelProjector) repository.Repository {
	return repository.NewTracingRepository(repository.NewEventStoreRepository(store, projector))
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideRepository,
)

var HandlerSet = wire.NewSet(
	command.NewInitializeInventoryHandler,
	command.NewReceiveStockHandler,
	command.NewReserveStockHandler,
	command.NewCommitReservationHandler,
	command.NewReleaseReservationHandler,
	query.NewGetStockHandler,
	query.NewListReservationsHandler,
	saga.NewCoordinator,
)

// InitializeHandlers initializes the engine's handler bundle with all dependencies
func InitializeHandlers(store eventstore.Store, projector *projection.StockLevelProjector, publisher port.OutcomePublisher) (*Handlers, error) {
	wire.Build(
		RepositorySet,
		HandlerSet,
		wire.Struct(new(Handlers), "*"),
	)
	return nil, nil
}
