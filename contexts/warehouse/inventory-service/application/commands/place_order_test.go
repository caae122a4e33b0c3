package commands

import (
	"context"
	"errors"
	"testing"

	"warehouse/contexts/warehouse/inventory-service/adapters/memory"
	"warehouse/contexts/warehouse/inventory-service/application/projection"
	"warehouse/contexts/warehouse/inventory-service/domain/entities"
	domainerrors "warehouse/contexts/warehouse/inventory-service/domain/errors"
	"warehouse/contexts/warehouse/inventory-service/domain/events"
	"warehouse/internal/shared/eventstore"
	esmemory "warehouse/internal/shared/eventstore/memory"

	"github.com/google/uuid"
)

type commandFixture struct {
	productID uuid.UUID
	products  *memory.Store
	events    *esmemory.Store
	projector projection.Projector
}

func newCommandFixture(t *testing.T, quantity int) commandFixture {
	t.Helper()
	productID := uuid.New()
	products := memory.NewStore([]entities.Product{
		{ID: productID, Name: "Widget", QuantityInStock: quantity},
	})
	eventLog := esmemory.NewStore()
	return commandFixture{
		productID: productID,
		products:  products,
		events:    eventLog,
		projector: projection.Projector{
			Products: products,
			Events:   eventLog,
			Registry: events.NewRegistry(),
		},
	}
}

func (f commandFixture) placeOrder(store eventstore.Store, attempts int) PlaceOrderUseCase {
	return PlaceOrderUseCase{
		Projector:   f.projector,
		Events:      store,
		Registry:    f.projector.Registry,
		Clock:       f.products,
		IDGenerator: f.products,
		MaxAttempts: attempts,
	}
}

func (f commandFixture) stock(t *testing.T) int {
	t.Helper()
	result, err := f.projector.Product(context.Background(), f.productID)
	if err != nil {
		t.Fatalf("project failed: %v", err)
	}
	if !result.Found {
		t.Fatalf("expected product to be found")
	}
	return result.Product.QuantityInStock
}

func (f commandFixture) streamLength(t *testing.T) int {
	t.Helper()
	envelopes, err := f.events.ReadStream(context.Background(), events.StreamID(f.productID), 0, eventstore.Forwards)
	if err != nil {
		if errors.Is(err, eventstore.ErrStreamNotFound) {
			return 0
		}
		t.Fatalf("read failed: %v", err)
	}
	return len(envelopes)
}

func TestPlaceOrderAppendsAndReducesStock(t *testing.T) {
	fixture := newCommandFixture(t, 100)

	err := fixture.placeOrder(fixture.events, 0).Execute(context.Background(), PlaceOrderCommand{
		ProductID: fixture.productID,
		Quantity:  30,
	})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if got := fixture.stock(t); got != 70 {
		t.Fatalf("expected 70 in stock, got %d", got)
	}
	if got := fixture.streamLength(t); got != 1 {
		t.Fatalf("expected one appended event, got %d", got)
	}
}

func TestPlaceOrderRejectsNonPositiveQuantity(t *testing.T) {
	fixture := newCommandFixture(t, 100)

	for _, quantity := range []int{0, -5} {
		err := fixture.placeOrder(fixture.events, 0).Execute(context.Background(), PlaceOrderCommand{
			ProductID: fixture.productID,
			Quantity:  quantity,
		})
		if !errors.Is(err, domainerrors.ErrInvalidQuantity) {
			t.Fatalf("quantity %d: expected ErrInvalidQuantity, got %v", quantity, err)
		}
	}
	if got := fixture.streamLength(t); got != 0 {
		t.Fatalf("rejected command must append nothing, got %d events", got)
	}
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	fixture := newCommandFixture(t, 100)

	err := fixture.placeOrder(fixture.events, 0).Execute(context.Background(), PlaceOrderCommand{
		ProductID: uuid.New(),
		Quantity:  1,
	})
	if !errors.Is(err, domainerrors.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestPlaceOrderRejectsInsufficientStockWithoutAppending(t *testing.T) {
	fixture := newCommandFixture(t, 3)

	err := fixture.placeOrder(fixture.events, 0).Execute(context.Background(), PlaceOrderCommand{
		ProductID: fixture.productID,
		Quantity:  4,
	})
	if !errors.Is(err, domainerrors.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if got := fixture.streamLength(t); got != 0 {
		t.Fatalf("rejected order must append nothing, got %d events", got)
	}
	if got := fixture.stock(t); got != 3 {
		t.Fatalf("rejected order must not change stock, got %d", got)
	}
}

func TestPlaceOrderRetriesThroughRevisionConflicts(t *testing.T) {
	fixture := newCommandFixture(t, 100)
	store := &conflictingStore{Store: fixture.events, failures: 2}

	err := fixture.placeOrder(store, 3).Execute(context.Background(), PlaceOrderCommand{
		ProductID: fixture.productID,
		Quantity:  10,
	})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if store.attempts != 3 {
		t.Fatalf("expected 3 append attempts, got %d", store.attempts)
	}
	if got := fixture.stock(t); got != 90 {
		t.Fatalf("expected 90 in stock after the winning attempt, got %d", got)
	}
}

func TestPlaceOrderGivesUpAfterBoundedRetries(t *testing.T) {
	fixture := newCommandFixture(t, 100)
	store := &conflictingStore{Store: fixture.events, failures: 10}

	err := fixture.placeOrder(store, 3).Execute(context.Background(), PlaceOrderCommand{
		ProductID: fixture.productID,
		Quantity:  10,
	})
	if !errors.Is(err, domainerrors.ErrConflictRetryExhausted) {
		t.Fatalf("expected ErrConflictRetryExhausted, got %v", err)
	}
	if store.attempts != 3 {
		t.Fatalf("expected exactly 3 append attempts, got %d", store.attempts)
	}
	if got := fixture.streamLength(t); got != 0 {
		t.Fatalf("exhausted command must append nothing, got %d events", got)
	}
}

func TestCancelOrderRestoresStock(t *testing.T) {
	fixture := newCommandFixture(t, 100)
	ctx := context.Background()

	if err := fixture.placeOrder(fixture.events, 0).Execute(ctx, PlaceOrderCommand{
		ProductID: fixture.productID,
		Quantity:  30,
	}); err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	cancel := CancelOrderUseCase{
		Projector:   fixture.projector,
		Events:      fixture.events,
		Registry:    fixture.projector.Registry,
		Clock:       fixture.products,
		IDGenerator: fixture.products,
	}
	if err := cancel.Execute(ctx, CancelOrderCommand{ProductID: fixture.productID, Quantity: 30}); err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}
	if got := fixture.stock(t); got != 100 {
		t.Fatalf("expected stock restored to 100, got %d", got)
	}
}

func TestCancelOrderHasNoUpperBound(t *testing.T) {
	fixture := newCommandFixture(t, 10)

	cancel := CancelOrderUseCase{
		Projector:   fixture.projector,
		Events:      fixture.events,
		Registry:    fixture.projector.Registry,
		Clock:       fixture.products,
		IDGenerator: fixture.products,
	}
	if err := cancel.Execute(context.Background(), CancelOrderCommand{ProductID: fixture.productID, Quantity: 500}); err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}
	if got := fixture.stock(t); got != 510 {
		t.Fatalf("expected 510 in stock, got %d", got)
	}
}

func TestRestockIncreasesStock(t *testing.T) {
	fixture := newCommandFixture(t, 10)

	restock := RestockUseCase{
		Projector:   fixture.projector,
		Events:      fixture.events,
		Registry:    fixture.projector.Registry,
		Clock:       fixture.products,
		IDGenerator: fixture.products,
	}
	if err := restock.Execute(context.Background(), RestockCommand{ProductID: fixture.productID, Quantity: 15}); err != nil {
		t.Fatalf("restock failed: %v", err)
	}
	if got := fixture.stock(t); got != 25 {
		t.Fatalf("expected 25 in stock, got %d", got)
	}
}

// conflictingStore fails the first failures appends with a revision
// conflict, then delegates. Reads always delegate, so a retrying command
// sees fresh state each attempt.
type conflictingStore struct {
	eventstore.Store
	failures int
	attempts int
}

func (s *conflictingStore) Append(
	ctx context.Context,
	streamID string,
	expected eventstore.ExpectedRevision,
	batch ...eventstore.EventData,
) (eventstore.AppendResult, error) {
	s.attempts++
	if s.attempts <= s.failures {
		return eventstore.AppendResult{}, eventstore.ErrRevisionConflict
	}
	return s.Store.Append(ctx, streamID, expected, batch...)
}
