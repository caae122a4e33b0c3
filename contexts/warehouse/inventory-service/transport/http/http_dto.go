package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PlaceOrderRequest struct {
	Quantity int `json:"quantity"`
}

type CancelOrderRequest struct {
	Quantity int `json:"quantity"`
}

type RestockRequest struct {
	Quantity int `json:"quantity"`
}

type CommandResponse struct {
	Status string `json:"status"`
}

type ProductDTO struct {
	ID              string `json:"id"`
	Name            string `json:"name,omitempty"`
	QuantityInStock int    `json:"quantity_in_stock"`
}

type ListProductsResponse struct {
	Items []ProductDTO `json:"items"`
}

type GetProductResponse struct {
	Product ProductDTO `json:"product"`
}

type EventDTO struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	ProductID  string    `json:"product_id"`
	Quantity   int       `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}

type EventHistoryResponse struct {
	Items []EventDTO `json:"items"`
}
