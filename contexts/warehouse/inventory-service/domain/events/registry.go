package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownEventType indicates a type tag absent from the registry. It
// means writer/reader version skew, not a business failure: the current
// operation must fail, there is nothing to recover locally.
var ErrUnknownEventType = errors.New("unknown event type")

type decodeFunc func(Metadata, []byte) (Event, error)

// Registry maps the closed variant set to wire tags and back. Build it once
// at process start with NewRegistry and pass it to every decoder-side
// collaborator; it is never mutated afterwards.
type Registry struct {
	decoders map[string]decodeFunc
}

func NewRegistry() *Registry {
	return &Registry{
		decoders: map[string]decodeFunc{
			TypeOrderPlaced: func(meta Metadata, payload []byte) (Event, error) {
				var event OrderPlaced
				if err := json.Unmarshal(payload, &event); err != nil {
					return nil, fmt.Errorf("decode %s: %w", TypeOrderPlaced, err)
				}
				event.Metadata = meta
				return event, nil
			},
			TypeOrderCancelled: func(meta Metadata, payload []byte) (Event, error) {
				var event OrderCancelled
				if err := json.Unmarshal(payload, &event); err != nil {
					return nil, fmt.Errorf("decode %s: %w", TypeOrderCancelled, err)
				}
				event.Metadata = meta
				return event, nil
			},
			TypeProductRestocked: func(meta Metadata, payload []byte) (Event, error) {
				var event ProductRestocked
				if err := json.Unmarshal(payload, &event); err != nil {
					return nil, fmt.Errorf("decode %s: %w", TypeProductRestocked, err)
				}
				event.Metadata = meta
				return event, nil
			},
		},
	}
}

// Encode renders an event as its wire tag plus JSON payload. Metadata stays
// off the payload; the envelope carries it.
func (r *Registry) Encode(event Event) (string, []byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s: %w", event.EventType(), err)
	}
	return event.EventType(), payload, nil
}

// Decode reconstructs an event from its wire form.
func (r *Registry) Decode(eventType string, meta Metadata, payload []byte) (Event, error) {
	decode, ok := r.decoders[eventType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, eventType)
	}
	return decode(meta, payload)
}
