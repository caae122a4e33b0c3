package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	inventoryservice "warehouse/contexts/warehouse/inventory-service"
	postgresadapter "warehouse/contexts/warehouse/inventory-service/adapters/postgres"
	"warehouse/contexts/warehouse/inventory-service/application/workers"
	"warehouse/contexts/warehouse/inventory-service/domain/events"
	"warehouse/internal/platform/config"
	"warehouse/internal/platform/db"
	"warehouse/internal/platform/httpserver"
	"warehouse/internal/platform/messaging"
	eventstorepostgres "warehouse/internal/shared/eventstore/postgres"

	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const relayTopic = "inventory.events"

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres *db.Postgres
	relay    workers.StreamRelay
	watcher  workers.LowStockWatcher
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := pg.Migrate(); err != nil {
		return nil, err
	}
	if cfg.SeedBaseline {
		if err := pg.SeedBaseline(context.Background(), logger); err != nil {
			return nil, err
		}
	}

	module := inventoryservice.NewModule(inventoryservice.Dependencies{
		Products:      postgresadapter.NewRepository(pg.DB, logger),
		Events:        eventstorepostgres.NewStore(pg.DB, logger),
		Registry:      events.NewRegistry(),
		Clock:         postgresadapter.SystemClock{},
		IDGenerator:   postgresadapter.UUIDGenerator{},
		AppendRetries: cfg.AppendRetries,
		Logger:        logger,
	})

	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	// AutoMigrate is idempotent; either process may start first.
	if err := pg.Migrate(); err != nil {
		return nil, err
	}

	eventLog := eventstorepostgres.NewStore(pg.DB, logger)
	bus := messaging.NewBus(logger)
	module := inventoryservice.NewModule(inventoryservice.Dependencies{
		Products:      postgresadapter.NewRepository(pg.DB, logger),
		Events:        eventLog,
		Registry:      events.NewRegistry(),
		Clock:         postgresadapter.SystemClock{},
		IDGenerator:   postgresadapter.UUIDGenerator{},
		AppendRetries: cfg.AppendRetries,
		Logger:        logger,
	})

	return &WorkerApp{
		postgres: pg,
		relay: workers.StreamRelay{
			Events:    eventLog,
			Publisher: bus,
			Topic:     relayTopic,
			Logger:    logger,
		},
		watcher: workers.LowStockWatcher{
			Subscriber:    bus,
			Projector:     module.Projector,
			Topic:         relayTopic,
			ConsumerGroup: "inventory-low-stock-cg",
			Threshold:     cfg.LowStockThreshold,
			Logger:        logger,
		},
		logger: logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.watcher.Run(ctx); err != nil {
		return err
	}

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return w.relay.Run(ctx)
	})
	return group.Wait()
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
