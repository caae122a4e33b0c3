package unit

import (
	"context"
	"errors"
	"testing"

	inventoryservice "warehouse/contexts/warehouse/inventory-service"
	"warehouse/contexts/warehouse/inventory-service/domain/entities"
	domainerrors "warehouse/contexts/warehouse/inventory-service/domain/errors"
	"warehouse/contexts/warehouse/inventory-service/domain/events"
	httptransport "warehouse/contexts/warehouse/inventory-service/transport/http"
	"warehouse/internal/shared/eventstore"

	"github.com/google/uuid"
)

func TestInventoryOrderLifecycle(t *testing.T) {
	productID := uuid.New()
	module := inventoryservice.NewInMemoryModule([]entities.Product{
		{ID: productID, Name: "Sample Product 1", QuantityInStock: 100},
	}, nil)
	ctx := context.Background()

	if err := module.Handler.PlaceOrderHandler(ctx, productID, httptransport.PlaceOrderRequest{Quantity: 30}); err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if err := module.Handler.RestockHandler(ctx, productID, httptransport.RestockRequest{Quantity: 10}); err != nil {
		t.Fatalf("restock failed: %v", err)
	}

	resp, err := module.Handler.GetProductHandler(ctx, productID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if resp.Product.QuantityInStock != 80 {
		t.Fatalf("expected 80 in stock, got %d", resp.Product.QuantityInStock)
	}
}

func TestInventoryListProductsReadsBaselineOnly(t *testing.T) {
	productID := uuid.New()
	module := inventoryservice.NewInMemoryModule([]entities.Product{
		{ID: productID, Name: "Sample Product 1", QuantityInStock: 100},
	}, nil)
	ctx := context.Background()

	if err := module.Handler.PlaceOrderHandler(ctx, productID, httptransport.PlaceOrderRequest{Quantity: 30}); err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	list, err := module.Handler.ListProductsHandler(ctx)
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if len(list.Items) != 1 {
		t.Fatalf("expected one product, got %d", len(list.Items))
	}
	// The listing reads the baseline rows as stored, not the folded state.
	if list.Items[0].QuantityInStock != 100 {
		t.Fatalf("expected baseline quantity 100, got %d", list.Items[0].QuantityInStock)
	}

	get, err := module.Handler.GetProductHandler(ctx, productID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if get.Product.QuantityInStock != 70 {
		t.Fatalf("expected folded quantity 70, got %d", get.Product.QuantityInStock)
	}
}

func TestInventoryRejectedOrderLeavesStreamUntouched(t *testing.T) {
	productID := uuid.New()
	module := inventoryservice.NewInMemoryModule([]entities.Product{
		{ID: productID, Name: "Sample Product 2", QuantityInStock: 3},
	}, nil)
	ctx := context.Background()

	err := module.Handler.PlaceOrderHandler(ctx, productID, httptransport.PlaceOrderRequest{Quantity: 4})
	if !errors.Is(err, domainerrors.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	if _, err := module.Events.ReadStream(ctx, events.StreamID(productID), 0, eventstore.Forwards); !errors.Is(err, eventstore.ErrStreamNotFound) {
		t.Fatalf("rejected order must not create the stream, got %v", err)
	}

	history, err := module.Handler.GetEventHistoryHandler(ctx, productID)
	if err != nil {
		t.Fatalf("get history failed: %v", err)
	}
	if len(history.Items) != 0 {
		t.Fatalf("expected empty history, got %d items", len(history.Items))
	}
}

func TestInventoryUnknownProduct(t *testing.T) {
	module := inventoryservice.NewInMemoryModule(nil, nil)
	ctx := context.Background()
	unknown := uuid.New()

	if err := module.Handler.PlaceOrderHandler(ctx, unknown, httptransport.PlaceOrderRequest{Quantity: 1}); !errors.Is(err, domainerrors.ErrProductNotFound) {
		t.Fatalf("place order: expected ErrProductNotFound, got %v", err)
	}
	if err := module.Handler.CancelOrderHandler(ctx, unknown, httptransport.CancelOrderRequest{Quantity: 1}); !errors.Is(err, domainerrors.ErrProductNotFound) {
		t.Fatalf("cancel order: expected ErrProductNotFound, got %v", err)
	}
	if err := module.Handler.RestockHandler(ctx, unknown, httptransport.RestockRequest{Quantity: 1}); !errors.Is(err, domainerrors.ErrProductNotFound) {
		t.Fatalf("restock: expected ErrProductNotFound, got %v", err)
	}
	if _, err := module.Handler.GetProductHandler(ctx, unknown); !errors.Is(err, domainerrors.ErrProductNotFound) {
		t.Fatalf("get product: expected ErrProductNotFound, got %v", err)
	}
}

func TestInventoryEventHistoryOrdering(t *testing.T) {
	productID := uuid.New()
	module := inventoryservice.NewInMemoryModule([]entities.Product{
		{ID: productID, Name: "Sample Product 1", QuantityInStock: 100},
	}, nil)
	ctx := context.Background()

	if err := module.Handler.PlaceOrderHandler(ctx, productID, httptransport.PlaceOrderRequest{Quantity: 30}); err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if err := module.Handler.CancelOrderHandler(ctx, productID, httptransport.CancelOrderRequest{Quantity: 30}); err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}
	if err := module.Handler.RestockHandler(ctx, productID, httptransport.RestockRequest{Quantity: 5}); err != nil {
		t.Fatalf("restock failed: %v", err)
	}

	history, err := module.Handler.GetEventHistoryHandler(ctx, productID)
	if err != nil {
		t.Fatalf("get history failed: %v", err)
	}
	want := []string{"ProductRestocked", "OrderCancelled", "OrderPlaced"}
	if len(history.Items) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(history.Items))
	}
	for i, item := range history.Items {
		if item.EventType != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], item.EventType)
		}
		if item.ProductID != productID.String() {
			t.Fatalf("position %d: wrong product id %s", i, item.ProductID)
		}
	}
}

func TestInventoryConcurrentOrdersNeverOversell(t *testing.T) {
	productID := uuid.New()
	module := inventoryservice.NewInMemoryModule([]entities.Product{
		{ID: productID, Name: "Sample Product 2", QuantityInStock: 50},
	}, nil)
	ctx := context.Background()

	// Serialized here; the command still passes each append the revision
	// its projection read observed, so the sum can never exceed the stock.
	ordered := 0
	for i := 0; i < 8; i++ {
		err := module.Handler.PlaceOrderHandler(ctx, productID, httptransport.PlaceOrderRequest{Quantity: 10})
		switch {
		case err == nil:
			ordered += 10
		case errors.Is(err, domainerrors.ErrInsufficientStock):
		default:
			t.Fatalf("unexpected error on order %d: %v", i, err)
		}
	}
	if ordered != 50 {
		t.Fatalf("expected exactly 50 units ordered, got %d", ordered)
	}

	resp, err := module.Handler.GetProductHandler(ctx, productID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if resp.Product.QuantityInStock != 0 {
		t.Fatalf("expected zero stock, got %d", resp.Product.QuantityInStock)
	}
}

func TestInventorySeparateProductsUseSeparateStreams(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	module := inventoryservice.NewInMemoryModule([]entities.Product{
		{ID: first, Name: "Sample Product 1", QuantityInStock: 100},
		{ID: second, Name: "Sample Product 2", QuantityInStock: 50},
	}, nil)
	ctx := context.Background()

	if err := module.Handler.PlaceOrderHandler(ctx, first, httptransport.PlaceOrderRequest{Quantity: 10}); err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	firstHistory, err := module.Handler.GetEventHistoryHandler(ctx, first)
	if err != nil {
		t.Fatalf("first history failed: %v", err)
	}
	secondHistory, err := module.Handler.GetEventHistoryHandler(ctx, second)
	if err != nil {
		t.Fatalf("second history failed: %v", err)
	}
	if len(firstHistory.Items) != 1 || len(secondHistory.Items) != 0 {
		t.Fatalf("expected 1 and 0 events, got %d and %d", len(firstHistory.Items), len(secondHistory.Items))
	}
}
