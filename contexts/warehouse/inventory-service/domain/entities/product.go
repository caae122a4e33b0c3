package entities

import (
	"fmt"

	domainerrors "warehouse/contexts/warehouse/inventory-service/domain/errors"
	"warehouse/contexts/warehouse/inventory-service/domain/events"

	"github.com/google/uuid"
)

// Product is the fold state: the baseline row plus every event in the
// product's stream replayed in order. It is recomputed on demand and never
// written back after events are applied.
type Product struct {
	ID              uuid.UUID
	Name            string
	QuantityInStock int
}

// Apply is the fold step: pure, deterministic, no I/O. Events must arrive
// in stream order exactly once. Insufficient stock is rejected here as well
// as in the command precondition, so a replay can never drive the quantity
// negative.
func (p Product) Apply(event events.Event) (Product, error) {
	switch e := event.(type) {
	case events.OrderPlaced:
		if p.QuantityInStock < e.Quantity {
			return Product{}, fmt.Errorf("%w: have %d, ordered %d",
				domainerrors.ErrInsufficientStock, p.QuantityInStock, e.Quantity)
		}
		p.QuantityInStock -= e.Quantity
		return p, nil
	case events.OrderCancelled:
		p.QuantityInStock += e.Quantity
		return p, nil
	case events.ProductRestocked:
		p.QuantityInStock += e.Quantity
		return p, nil
	default:
		// Decoding already rejects unknown tags; reaching this is a
		// programming error in the variant set.
		return Product{}, fmt.Errorf("unhandled event variant %T", event)
	}
}
