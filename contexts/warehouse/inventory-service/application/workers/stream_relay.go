package workers

import (
	"context"
	"log/slog"

	application "warehouse/contexts/warehouse/inventory-service/application"
	"warehouse/contexts/warehouse/inventory-service/ports"
)

// StreamRelay tails the event store and republishes every envelope on the
// process bus, in append order. It runs until the context is cancelled or
// the subscription ends.
type StreamRelay struct {
	Events    ports.EventStore
	Publisher ports.EventPublisher
	Topic     string
	Logger    *slog.Logger
}

func (r StreamRelay) Run(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)

	sub, err := r.Events.SubscribeAll(ctx)
	if err != nil {
		return err
	}
	defer sub.Close()

	logger.Info("stream relay started",
		"event", "stream_relay_started",
		"module", "warehouse/inventory-service",
		"layer", "worker",
		"topic", r.Topic,
	)

	for envelope := range sub.Events() {
		if err := r.Publisher.Publish(ctx, r.Topic, envelope); err != nil {
			logger.Error("stream relay publish failed",
				"event", "stream_relay_publish_failed",
				"module", "warehouse/inventory-service",
				"layer", "worker",
				"stream_id", envelope.StreamID,
				"event_id", envelope.EventID.String(),
				"error", err.Error(),
			)
			return err
		}
	}

	if err := sub.Err(); err != nil {
		logger.Error("stream relay subscription ended",
			"event", "stream_relay_subscription_ended",
			"module", "warehouse/inventory-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	return ctx.Err()
}
