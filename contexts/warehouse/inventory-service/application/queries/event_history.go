package queries

import (
	"context"
	"errors"
	"log/slog"

	application "warehouse/contexts/warehouse/inventory-service/application"
	"warehouse/contexts/warehouse/inventory-service/domain/events"
	"warehouse/contexts/warehouse/inventory-service/ports"
	"warehouse/internal/shared/eventstore"

	"github.com/google/uuid"
)

// GetEventHistoryUseCase lists a product's decoded events newest first,
// the ordering the history endpoint exposes. Replay elsewhere always runs
// oldest first; this endpoint is the one deliberate exception.
type GetEventHistoryUseCase struct {
	Events   ports.EventStore
	Registry *events.Registry
	Logger   *slog.Logger
}

func (uc GetEventHistoryUseCase) Execute(ctx context.Context, productID uuid.UUID) ([]events.Event, error) {
	logger := application.ResolveLogger(uc.Logger)

	envelopes, err := uc.Events.ReadStream(ctx, events.StreamID(productID), 0, eventstore.Backwards)
	if err != nil {
		if errors.Is(err, eventstore.ErrStreamNotFound) {
			return []events.Event{}, nil
		}
		return nil, err
	}

	history := make([]events.Event, 0, len(envelopes))
	for _, envelope := range envelopes {
		event, err := uc.Registry.Decode(
			envelope.EventType,
			events.NewMetadata(envelope.EventID, envelope.OccurredAt),
			envelope.Payload,
		)
		if err != nil {
			logger.Error("event decode failed in history listing",
				"event", "history_decode_failed",
				"module", "warehouse/inventory-service",
				"layer", "application",
				"stream_id", envelope.StreamID,
				"position", envelope.Position,
				"event_type", envelope.EventType,
				"error", err.Error(),
			)
			return nil, err
		}
		history = append(history, event)
	}
	return history, nil
}
