package events

import (
	"time"

	"github.com/google/uuid"
)

// The warehouse emits a closed set of domain events, one stream per
// product. Identity and timestamp are assigned by the component that
// constructs the event and are immutable afterwards; two events are equal
// iff their identifiers are equal.

const (
	TypeOrderPlaced      = "OrderPlaced"
	TypeOrderCancelled   = "OrderCancelled"
	TypeProductRestocked = "ProductRestocked"
)

// Metadata carries the envelope-level identity of an event. It is excluded
// from the wire payload; the envelope persists it alongside the type tag.
type Metadata struct {
	EventID    uuid.UUID
	OccurredAt time.Time
}

func NewMetadata(eventID uuid.UUID, occurredAt time.Time) Metadata {
	return Metadata{
		EventID:    eventID,
		OccurredAt: occurredAt.UTC(),
	}
}

// Event is the closed union over the warehouse event variants.
type Event interface {
	Meta() Metadata
	EventType() string
	AggregateID() uuid.UUID

	isDomainEvent()
}

// Equal compares events by identifier.
func Equal(a, b Event) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Meta().EventID == b.Meta().EventID
}

type OrderPlaced struct {
	Metadata  `json:"-"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

func (e OrderPlaced) Meta() Metadata { return e.Metadata }
func (OrderPlaced) EventType() string { return TypeOrderPlaced }
func (e OrderPlaced) AggregateID() uuid.UUID { return e.ProductID }
func (OrderPlaced) isDomainEvent() {}

type OrderCancelled struct {
	Metadata  `json:"-"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

func (e OrderCancelled) Meta() Metadata { return e.Metadata }
func (OrderCancelled) EventType() string { return TypeOrderCancelled }
func (e OrderCancelled) AggregateID() uuid.UUID { return e.ProductID }
func (OrderCancelled) isDomainEvent() {}

type ProductRestocked struct {
	Metadata  `json:"-"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

func (e ProductRestocked) Meta() Metadata { return e.Metadata }
func (ProductRestocked) EventType() string { return TypeProductRestocked }
func (e ProductRestocked) AggregateID() uuid.UUID { return e.ProductID }
func (ProductRestocked) isDomainEvent() {}

// StreamID derives the per-product stream name.
func StreamID(productID uuid.UUID) string {
	return "product-" + productID.String()
}
