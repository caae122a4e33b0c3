package projection

import (
	"context"
	"errors"
	"log/slog"

	application "warehouse/contexts/warehouse/inventory-service/application"
	"warehouse/contexts/warehouse/inventory-service/domain/entities"
	domainerrors "warehouse/contexts/warehouse/inventory-service/domain/errors"
	"warehouse/contexts/warehouse/inventory-service/domain/events"
	"warehouse/contexts/warehouse/inventory-service/ports"
	"warehouse/internal/shared/eventstore"

	"github.com/google/uuid"
)

// Result is one consistent read of a product: the folded state plus the
// stream revision that read observed. Command handlers pass Revision back
// to Append so a concurrent writer surfaces as a revision conflict instead
// of a silent lost update.
type Result struct {
	Product  entities.Product
	Revision eventstore.ExpectedRevision
	Found    bool
}

// Projector derives current product state on demand: baseline row, then a
// full forward replay of the product's stream. It never persists what it
// computes; every call replays the whole stream.
type Projector struct {
	Products ports.ProductRepository
	Events   ports.EventStore
	Registry *events.Registry
	Logger   *slog.Logger
}

func (p Projector) Product(ctx context.Context, productID uuid.UUID) (Result, error) {
	logger := application.ResolveLogger(p.Logger)

	baseline, err := p.Products.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrProductNotFound) {
			// No baseline row means the product is unknown, regardless of
			// whatever the stream holds.
			return Result{Revision: eventstore.NoStream()}, nil
		}
		return Result{}, err
	}

	envelopes, err := p.Events.ReadStream(ctx, events.StreamID(productID), 0, eventstore.Forwards)
	if err != nil {
		if errors.Is(err, eventstore.ErrStreamNotFound) {
			// Zero historical events: the baseline is the current state.
			return Result{Product: baseline, Revision: eventstore.NoStream(), Found: true}, nil
		}
		return Result{}, err
	}

	state := baseline
	revision := eventstore.NoStream()
	for _, envelope := range envelopes {
		event, err := p.Registry.Decode(
			envelope.EventType,
			events.NewMetadata(envelope.EventID, envelope.OccurredAt),
			envelope.Payload,
		)
		if err != nil {
			logger.Error("event decode failed during replay",
				"event", "projection_decode_failed",
				"module", "warehouse/inventory-service",
				"layer", "application",
				"stream_id", envelope.StreamID,
				"position", envelope.Position,
				"event_type", envelope.EventType,
				"error", err.Error(),
			)
			return Result{}, err
		}
		state, err = state.Apply(event)
		if err != nil {
			return Result{}, err
		}
		revision = eventstore.Exact(envelope.Position)
	}

	return Result{Product: state, Revision: revision, Found: true}, nil
}
