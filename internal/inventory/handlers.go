package inventory

import (
	"github.com/tair/inventory-engine/internal/inventory/usecase/command"
	"github.com/tair/inventory-engine/internal/inventory/usecase/query"
	"github.com/tair/inventory-engine/internal/inventory/usecase/saga"
)

// Handlers bundles the reservation engine's command and query handlers
type Handlers struct {
	Initialize       *command.InitializeInventoryHandler
	Intake           *command.ReceiveStockHandler
	Reserve          *command.ReserveStockHandler
	Commit           *command.CommitReservationHandler
	Release          *command.ReleaseReservationHandler
	GetStock         *query.GetStockHandler
	ListReservations *query.ListReservationsHandler
	Coordinator      *saga.Coordinator
}
