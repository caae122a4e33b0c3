package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	application "warehouse/contexts/warehouse/inventory-service/application"
	"warehouse/contexts/warehouse/inventory-service/application/projection"
	domainerrors "warehouse/contexts/warehouse/inventory-service/domain/errors"
	"warehouse/contexts/warehouse/inventory-service/domain/events"
	"warehouse/contexts/warehouse/inventory-service/ports"
	"warehouse/internal/shared/eventstore"

	"github.com/google/uuid"
)

const defaultAppendAttempts = 3

type PlaceOrderCommand struct {
	ProductID uuid.UUID
	Quantity  int
}

// PlaceOrderUseCase checks stock against the current projection and appends
// an OrderPlaced event guarded by the revision that projection observed.
// On a revision conflict it re-reads and retries a bounded number of times,
// so exactly one of two racing orders for the last units wins.
type PlaceOrderUseCase struct {
	Projector   projection.Projector
	Events      ports.EventStore
	Registry    *events.Registry
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	MaxAttempts int
	Logger      *slog.Logger
}

func (uc PlaceOrderUseCase) Execute(ctx context.Context, cmd PlaceOrderCommand) error {
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
		if current.Product.QuantityInStock < cmd.Quantity {
			// Business rejection, reported to the caller and not logged
			// as an error.
			return fmt.Errorf("%w: have %d, ordered %d",
				domainerrors.ErrInsufficientStock, current.Product.QuantityInStock, cmd.Quantity)
		}

		eventID, err := uc.IDGenerator.NewID(ctx)
		if err != nil {
			return err
		}
		event := events.OrderPlaced{
			Metadata:  events.NewMetadata(eventID, uc.Clock.Now()),
			ProductID: cmd.ProductID,
			Quantity:  cmd.Quantity,
		}

		result, err := appendOne(ctx, uc.Events, uc.Registry, event, current.Revision)
		if err != nil {
			if errors.Is(err, eventstore.ErrRevisionConflict) {
				logger.Info("order append conflicted, re-reading stream",
					"event", "place_order_revision_conflict",
					"module", "warehouse/inventory-service",
					"layer", "application",
					"product_id", cmd.ProductID.String(),
					"attempt", attempt,
				)
				continue
			}
			return err
		}

		logger.Info("order placed",
			"event", "order_placed",
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

// appendOne encodes a single event and appends it to the product stream
// under the supplied concurrency token.
func appendOne(
	ctx context.Context,
	store ports.EventStore,
	registry *events.Registry,
	event events.Event,
	expected eventstore.ExpectedRevision,
) (eventstore.AppendResult, error) {
	eventType, payload, err := registry.Encode(event)
	if err != nil {
		return eventstore.AppendResult{}, err
	}
	meta := event.Meta()
	return store.Append(ctx, events.StreamID(event.AggregateID()), expected, eventstore.EventData{
		EventID:    meta.EventID,
		EventType:  eventType,
		Payload:    payload,
		OccurredAt: meta.OccurredAt,
	})
}
