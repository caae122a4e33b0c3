package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	inventorypostgres "warehouse/contexts/warehouse/inventory-service/adapters/postgres"
	"warehouse/contexts/warehouse/inventory-service/domain/entities"
	eventstorepostgres "warehouse/internal/shared/eventstore/postgres"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Postgres wraps DB connectivity.
// The event log and the baseline table share one database; the log is the
// source of truth, products is the seeded read model.
type Postgres struct {
	DB *gorm.DB
}

func Connect(dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve postgres sql db handle: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{DB: db}, nil
}

func (p *Postgres) Close() error {
	if p == nil || p.DB == nil {
		return nil
	}
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates the stream_events and products tables.
func (p *Postgres) Migrate() error {
	return p.DB.AutoMigrate(
		eventstorepostgres.Model(),
		inventorypostgres.Model(),
	)
}

// SeedBaseline inserts the two sample products when the table is empty.
// Baseline rows are written here and never again.
func (p *Postgres) SeedBaseline(ctx context.Context, logger *slog.Logger) error {
	repo := inventorypostgres.NewRepository(p.DB, logger)

	existing, err := repo.ListProducts(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	seed := []entities.Product{
		{
			ID:              uuid.MustParse("c3d4b7e4-9e6a-4b1e-8b0a-2e9d8c4f6a2d"),
			Name:            "Sample Product 1",
			QuantityInStock: 100,
		},
		{
			ID:              uuid.MustParse("a1b2c3d4-e5f6-a7b8-c9d0-e1f2a3b4c5d6"),
			Name:            "Sample Product 2",
			QuantityInStock: 50,
		},
	}
	for _, product := range seed {
		if err := repo.CreateProduct(ctx, product); err != nil {
			return err
		}
	}

	if logger != nil {
		logger.Info("baseline products seeded",
			"event", "baseline_seeded",
			"module", "internal/platform/db",
			"layer", "platform",
			"count", len(seed),
		)
	}
	return nil
}
