package entities

import (
	"errors"
	"testing"
	"time"

	domainerrors "warehouse/contexts/warehouse/inventory-service/domain/errors"
	"warehouse/contexts/warehouse/inventory-service/domain/events"

	"github.com/google/uuid"
)

func TestApplyFoldsQuantityAcrossVariants(t *testing.T) {
	productID := uuid.New()
	state := Product{ID: productID, Name: "Widget", QuantityInStock: 100}

	history := []events.Event{
		events.OrderPlaced{Metadata: newMeta(), ProductID: productID, Quantity: 30},
		events.ProductRestocked{Metadata: newMeta(), ProductID: productID, Quantity: 10},
		events.OrderPlaced{Metadata: newMeta(), ProductID: productID, Quantity: 5},
		events.OrderCancelled{Metadata: newMeta(), ProductID: productID, Quantity: 5},
	}

	var err error
	for _, event := range history {
		state, err = state.Apply(event)
		if err != nil {
			t.Fatalf("apply %s failed: %v", event.EventType(), err)
		}
	}

	if state.QuantityInStock != 80 {
		t.Fatalf("expected 80 in stock after replay, got %d", state.QuantityInStock)
	}
	if state.ID != productID || state.Name != "Widget" {
		t.Fatalf("fold must not alter identity fields: %+v", state)
	}
}

func TestApplyRejectsOrderExceedingStock(t *testing.T) {
	productID := uuid.New()
	state := Product{ID: productID, QuantityInStock: 3}

	_, err := state.Apply(events.OrderPlaced{Metadata: newMeta(), ProductID: productID, Quantity: 4})
	if !errors.Is(err, domainerrors.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestApplyIsDeterministic(t *testing.T) {
	productID := uuid.New()
	event := events.ProductRestocked{Metadata: newMeta(), ProductID: productID, Quantity: 7}
	state := Product{ID: productID, QuantityInStock: 1}

	first, err := state.Apply(event)
	if err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	second, err := state.Apply(event)
	if err != nil {
		t.Fatalf("second apply failed: %v", err)
	}
	if first != second {
		t.Fatalf("same input state and event produced %+v and %+v", first, second)
	}
	if state.QuantityInStock != 1 {
		t.Fatalf("apply must not mutate its receiver, got %d", state.QuantityInStock)
	}
}

func newMeta() events.Metadata {
	return events.NewMetadata(uuid.New(), time.Now())
}
