package workers

import (
	"context"
	"log/slog"
	"strings"

	application "warehouse/contexts/warehouse/inventory-service/application"
	"warehouse/contexts/warehouse/inventory-service/application/projection"
	"warehouse/contexts/warehouse/inventory-service/ports"
	"warehouse/internal/shared/eventstore"

	"github.com/google/uuid"
)

// LowStockWatcher consumes relayed envelopes and re-projects the affected
// product, warning when stock drops below the threshold. It reads only;
// the baseline row is never corrected from here.
type LowStockWatcher struct {
	Subscriber    ports.EventSubscriber
	Projector     projection.Projector
	Topic         string
	ConsumerGroup string
	Threshold     int
	Logger        *slog.Logger
}

func (w LowStockWatcher) Run(ctx context.Context) error {
	logger := application.ResolveLogger(w.Logger)
	return w.Subscriber.Subscribe(ctx, w.Topic, w.ConsumerGroup, func(ctx context.Context, envelope eventstore.Envelope) error {
		raw, ok := strings.CutPrefix(envelope.StreamID, "product-")
		if !ok {
			return nil
		}
		productID, err := uuid.Parse(raw)
		if err != nil {
			return nil
		}

		current, err := w.Projector.Product(ctx, productID)
		if err != nil {
			return err
		}
		if !current.Found {
			return nil
		}
		if current.Product.QuantityInStock < w.Threshold {
			logger.Warn("product stock below threshold",
				"event", "low_stock_detected",
				"module", "warehouse/inventory-service",
				"layer", "worker",
				"product_id", productID.String(),
				"quantity_in_stock", current.Product.QuantityInStock,
				"threshold", w.Threshold,
			)
		}
		return nil
	})
}
