package httpadapter

import (
	"context"
	"fmt"
	"log/slog"

	"warehouse/contexts/warehouse/inventory-service/application/commands"
	"warehouse/contexts/warehouse/inventory-service/application/queries"
	"warehouse/contexts/warehouse/inventory-service/domain/entities"
	"warehouse/contexts/warehouse/inventory-service/domain/events"
	httptransport "warehouse/contexts/warehouse/inventory-service/transport/http"

	"github.com/google/uuid"
)

// Handler adapts transport DTOs onto the command and query use cases. It
// holds no state beyond its wiring.
type Handler struct {
	PlaceOrder      commands.PlaceOrderUseCase
	CancelOrder     commands.CancelOrderUseCase
	Restock         commands.RestockUseCase
	ListProducts    queries.ListProductsUseCase
	GetProduct      queries.GetProductUseCase
	GetEventHistory queries.GetEventHistoryUseCase
	Logger          *slog.Logger
}

func (h Handler) PlaceOrderHandler(ctx context.Context, productID uuid.UUID, req httptransport.PlaceOrderRequest) error {
	return h.PlaceOrder.Execute(ctx, commands.PlaceOrderCommand{
		ProductID: productID,
		Quantity:  req.Quantity,
	})
}

func (h Handler) CancelOrderHandler(ctx context.Context, productID uuid.UUID, req httptransport.CancelOrderRequest) error {
	return h.CancelOrder.Execute(ctx, commands.CancelOrderCommand{
		ProductID: productID,
		Quantity:  req.Quantity,
	})
}

func (h Handler) RestockHandler(ctx context.Context, productID uuid.UUID, req httptransport.RestockRequest) error {
	return h.Restock.Execute(ctx, commands.RestockCommand{
		ProductID: productID,
		Quantity:  req.Quantity,
	})
}

func (h Handler) ListProductsHandler(ctx context.Context) (httptransport.ListProductsResponse, error) {
	items, err := h.ListProducts.Execute(ctx)
	if err != nil {
		return httptransport.ListProductsResponse{}, err
	}
	result := make([]httptransport.ProductDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapProduct(item))
	}
	return httptransport.ListProductsResponse{Items: result}, nil
}

func (h Handler) GetProductHandler(ctx context.Context, productID uuid.UUID) (httptransport.GetProductResponse, error) {
	item, err := h.GetProduct.Execute(ctx, productID)
	if err != nil {
		return httptransport.GetProductResponse{}, err
	}
	return httptransport.GetProductResponse{Product: mapProduct(item)}, nil
}

func (h Handler) GetEventHistoryHandler(ctx context.Context, productID uuid.UUID) (httptransport.EventHistoryResponse, error) {
	history, err := h.GetEventHistory.Execute(ctx, productID)
	if err != nil {
		return httptransport.EventHistoryResponse{}, err
	}
	result := make([]httptransport.EventDTO, 0, len(history))
	for _, event := range history {
		dto, err := mapEvent(event)
		if err != nil {
			return httptransport.EventHistoryResponse{}, err
		}
		result = append(result, dto)
	}
	return httptransport.EventHistoryResponse{Items: result}, nil
}

func mapProduct(item entities.Product) httptransport.ProductDTO {
	return httptransport.ProductDTO{
		ID:              item.ID.String(),
		Name:            item.Name,
		QuantityInStock: item.QuantityInStock,
	}
}

func mapEvent(event events.Event) (httptransport.EventDTO, error) {
	meta := event.Meta()
	dto := httptransport.EventDTO{
		EventID:    meta.EventID.String(),
		EventType:  event.EventType(),
		ProductID:  event.AggregateID().String(),
		OccurredAt: meta.OccurredAt,
	}
	switch e := event.(type) {
	case events.OrderPlaced:
		dto.Quantity = e.Quantity
	case events.OrderCancelled:
		dto.Quantity = e.Quantity
	case events.ProductRestocked:
		dto.Quantity = e.Quantity
	default:
		return httptransport.EventDTO{}, fmt.Errorf("unhandled event variant %T", event)
	}
	return dto, nil
}
