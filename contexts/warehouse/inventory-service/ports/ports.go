package ports

import (
	"context"
	"time"

	"warehouse/contexts/warehouse/inventory-service/domain/entities"
	"warehouse/internal/shared/eventstore"

	"github.com/google/uuid"
)

// ProductRepository is the baseline read-model store. Rows are written at
// seed time only; the projection path never rewrites them, so a row may
// drift arbitrarily far from the state the log implies.
type ProductRepository interface {
	FindProduct(ctx context.Context, productID uuid.UUID) (entities.Product, error)
	ListProducts(ctx context.Context) ([]entities.Product, error)
	CreateProduct(ctx context.Context, product entities.Product) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (uuid.UUID, error)
}

// EventStore is the append-only log the command and query sides share.
type EventStore = eventstore.Store

type EventPublisher interface {
	Publish(ctx context.Context, topic string, envelope eventstore.Envelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, eventstore.Envelope) error,
	) error
}
