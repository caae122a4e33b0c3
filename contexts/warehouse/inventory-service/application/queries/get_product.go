package queries

import (
	"context"
	"log/slog"

	"warehouse/contexts/warehouse/inventory-service/application/projection"
	"warehouse/contexts/warehouse/inventory-service/domain/entities"
	domainerrors "warehouse/contexts/warehouse/inventory-service/domain/errors"

	"github.com/google/uuid"
)

// GetProductUseCase answers "how much stock is there right now" by full
// replay. Read-only and idempotent; concurrent calls never interfere.
type GetProductUseCase struct {
	Projector projection.Projector
	Logger    *slog.Logger
}

func (uc GetProductUseCase) Execute(ctx context.Context, productID uuid.UUID) (entities.Product, error) {
	result, err := uc.Projector.Product(ctx, productID)
	if err != nil {
		return entities.Product{}, err
	}
	if !result.Found {
		return entities.Product{}, domainerrors.ErrProductNotFound
	}
	return result.Product, nil
}
