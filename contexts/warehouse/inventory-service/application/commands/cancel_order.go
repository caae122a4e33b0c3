package commands

import (
	"context"
	"errors"
	"log/slog"

	application "warehouse/contexts/warehouse/inventory-service/application"
	"warehouse/contexts/warehouse/inventory-service/application/projection"
	domainerrors "warehouse/contexts/warehouse/inventory-service/domain/errors"
	"warehouse/contexts/warehouse/inventory-service/domain/events"
	"warehouse/contexts/warehouse/inventory-service/ports"
	"warehouse/internal/shared/eventstore"

	"github.com/google/uuid"
)

type CancelOrderCommand struct {
	ProductID uuid.UUID
	Quantity  int
}

// CancelOrderUseCase restores stock unconditionally; there is no upper
// bound on the resulting quantity. The projection read still supplies the
// concurrency token so the append lands on the revision it observed.
type CancelOrderUseCase struct {
	Projector   projection.Projector
	Events      ports.EventStore
	Registry    *events.Registry
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	MaxAttempts int
	Logger      *slog.Logger
}

func (uc CancelOrderUseCase) Execute(ctx context.Context, cmd CancelOrderCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	if cmd.Quantity <= 0 {
		return domainerrors.ErrInvalidQuantity
	}

	attempts := uc.MaxAttempts
	if attempts <= 0 {
		attempts = defaultAppendAttempts
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		current, err := uc.Projector.Product(ctx, cmd.ProductID)
		if err != nil {
			return err
		}
		if !current.Found {
			return domainerrors.ErrProductNotFound
		}

		eventID, err := uc.IDGenerator.NewID(ctx)
		if err != nil {
			return err
		}
		event := events.OrderCancelled{
			Metadata:  events.NewMetadata(eventID, uc.Clock.Now()),
			ProductID: cmd.ProductID,
			Quantity:  cmd.Quantity,
		}

		result, err := appendOne(ctx, uc.Events, uc.Registry, event, current.Revision)
		if err != nil {
			if errors.Is(err, eventstore.ErrRevisionConflict) {
				logger.Info("cancel append conflicted, re-reading stream",
					"event", "cancel_order_revision_conflict",
					"module", "warehouse/inventory-service",
					"layer", "application",
					"product_id", cmd.ProductID.String(),
					"attempt", attempt,
				)
				continue
			}
			return err
		}

		logger.Info("order cancelled",
			"event", "order_cancelled",
			"module", "warehouse/inventory-service",
			"layer", "application",
			"product_id", cmd.ProductID.String(),
			"quantity", cmd.Quantity,
			"stream_revision", result.NextExpectedRevision,
		)
		return nil
	}

	return domainerrors.ErrConflictRetryExhausted
}
