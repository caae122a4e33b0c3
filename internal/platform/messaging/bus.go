package messaging

import (
	"context"
	"log/slog"
	"sync"

	"warehouse/internal/shared/eventstore"
)

// Bus is the in-process publish/subscribe fabric between the stream relay
// and its consumers. Delivery per subscriber is in publish order; a full
// subscriber buffer drops the envelope rather than stalling the relay.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan eventstore.Envelope
	logger      *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string][]chan eventstore.Envelope),
		logger:      logger,
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, envelope eventstore.Envelope) error {
	b.mu.RLock()
	subs := append([]chan eventstore.Envelope(nil), b.subscribers[topic]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- envelope:
		default:
			if b.logger != nil {
				b.logger.Warn("dropping envelope for slow subscriber",
					"event", "bus_publish_drop",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", topic,
					"event_id", envelope.EventID.String(),
				)
			}
		}
	}
	return nil
}

func (b *Bus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, eventstore.Envelope) error,
) error {
	ch := make(chan eventstore.Envelope, 128)

	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				b.removeSubscriber(topic, ch)
				return
			case envelope := <-ch:
				if err := handler(ctx, envelope); err != nil && b.logger != nil {
					b.logger.Error("consumer handler failed",
						"event", "bus_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", envelope.EventID.String(),
						"event_type", envelope.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

func (b *Bus) removeSubscriber(topic string, target chan eventstore.Envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]chan eventstore.Envelope, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	b.subscribers[topic] = filtered
}
