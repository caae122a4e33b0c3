package inventoryservice

import (
	"log/slog"

	httpadapter "warehouse/contexts/warehouse/inventory-service/adapters/http"
	"warehouse/contexts/warehouse/inventory-service/adapters/memory"
	"warehouse/contexts/warehouse/inventory-service/application/commands"
	"warehouse/contexts/warehouse/inventory-service/application/projection"
	"warehouse/contexts/warehouse/inventory-service/application/queries"
	"warehouse/contexts/warehouse/inventory-service/domain/entities"
	"warehouse/contexts/warehouse/inventory-service/domain/events"
	"warehouse/contexts/warehouse/inventory-service/ports"
	esmemory "warehouse/internal/shared/eventstore/memory"
)

type Module struct {
	Handler   httpadapter.Handler
	Projector projection.Projector

	// Populated by NewInMemoryModule only.
	Store  *memory.Store
	Events ports.EventStore
}

type Dependencies struct {
	Products      ports.ProductRepository
	Events        ports.EventStore
	Registry      *events.Registry
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	AppendRetries int
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	projector := projection.Projector{
		Products: deps.Products,
		Events:   deps.Events,
		Registry: deps.Registry,
		Logger:   deps.Logger,
	}

	placeOrder := commands.PlaceOrderUseCase{
		Projector:   projector,
		Events:      deps.Events,
		Registry:    deps.Registry,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		MaxAttempts: deps.AppendRetries,
		Logger:      deps.Logger,
	}
	cancelOrder := commands.CancelOrderUseCase{
		Projector:   projector,
		Events:      deps.Events,
		Registry:    deps.Registry,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		MaxAttempts: deps.AppendRetries,
		Logger:      deps.Logger,
	}
	restock := commands.RestockUseCase{
		Projector:   projector,
		Events:      deps.Events,
		Registry:    deps.Registry,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		MaxAttempts: deps.AppendRetries,
		Logger:      deps.Logger,
	}

	listProducts := queries.ListProductsUseCase{
		Products: deps.Products,
		Logger:   deps.Logger,
	}
	getProduct := queries.GetProductUseCase{
		Projector: projector,
		Logger:    deps.Logger,
	}
	getEventHistory := queries.GetEventHistoryUseCase{
		Events:   deps.Events,
		Registry: deps.Registry,
		Logger:   deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			PlaceOrder:      placeOrder,
			CancelOrder:     cancelOrder,
			Restock:         restock,
			ListProducts:    listProducts,
			GetProduct:      getProduct,
			GetEventHistory: getEventHistory,
			Logger:          deps.Logger,
		},
		Projector: projector,
	}
}

// NewInMemoryModule wires the module over in-memory adapters. Used by the
// unit suites and local runs without postgres.
func NewInMemoryModule(seed []entities.Product, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	eventLog := esmemory.NewStore()
	module := NewModule(Dependencies{
		Products:    store,
		Events:      eventLog,
		Registry:    events.NewRegistry(),
		Clock:       store,
		IDGenerator: store,
		Logger:      logger,
	})
	module.Store = store
	module.Events = eventLog
	return module
}
