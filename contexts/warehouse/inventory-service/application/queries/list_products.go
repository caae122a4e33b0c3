package queries

import (
	"context"
	"log/slog"

	"warehouse/contexts/warehouse/inventory-service/domain/entities"
	"warehouse/contexts/warehouse/inventory-service/ports"
)

// ListProductsUseCase returns the baseline rows as-is. This is the
// convenience cache, not the replayed truth: a row can drift from the
// state its stream implies until someone asks for the projection.
type ListProductsUseCase struct {
	Products ports.ProductRepository
	Logger   *slog.Logger
}

func (uc ListProductsUseCase) Execute(ctx context.Context) ([]entities.Product, error) {
	return uc.Products.ListProducts(ctx)
}
