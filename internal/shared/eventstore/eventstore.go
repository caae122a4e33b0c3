package eventstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Package eventstore defines the append-only event log contract shared by
// the API and worker processes. One stream per aggregate instance; envelopes
// within a stream are totally ordered by position and never mutated.

var (
	ErrStreamNotFound     = errors.New("stream not found")
	ErrRevisionConflict   = errors.New("expected revision does not match stream revision")
	ErrEmptyAppend        = errors.New("append requires at least one event")
	ErrSubscriptionLagged = errors.New("subscription fell behind and was closed")
	ErrStoreClosed        = errors.New("event store is closed")
)

// Envelope is the persisted record of one event. Once written it is
// immutable; positions are zero-based and strictly increasing per stream.
type Envelope struct {
	StreamID   string
	EventID    uuid.UUID
	EventType  string
	Payload    json.RawMessage
	Position   uint64
	OccurredAt time.Time
}

// EventData is the writer-side input: identity and timestamp are assigned
// by whoever constructs the event, never by the store.
type EventData struct {
	EventID    uuid.UUID
	EventType  string
	Payload    json.RawMessage
	OccurredAt time.Time
}

// AppendResult reports the stream revision after a successful append.
type AppendResult struct {
	// NextExpectedRevision is the position of the last appended event.
	// Supplying it as Exact on the next append detects concurrent writers.
	NextExpectedRevision uint64
}

type ReadDirection int

const (
	Forwards ReadDirection = iota
	Backwards
)

// Store is the append-only event log.
type Store interface {
	// Append writes the batch atomically to streamID, assigning consecutive
	// positions. It creates the stream on first append. When expected is a
	// concrete token and the stream's current revision differs, it fails
	// with ErrRevisionConflict and writes nothing.
	Append(ctx context.Context, streamID string, expected ExpectedRevision, events ...EventData) (AppendResult, error)

	// ReadStream returns the stream's envelopes ordered by position,
	// starting at from (a position for Forwards, ignored-from-the-tail
	// semantics do not apply: Backwards reads the whole stream newest
	// first when from is 0). A stream that has never been appended to
	// yields ErrStreamNotFound.
	ReadStream(ctx context.Context, streamID string, from uint64, direction ReadDirection) ([]Envelope, error)

	// SubscribeAll delivers every envelope appended after the call, across
	// all streams, in append order. The subscription owns a channel; Close
	// releases it deterministically.
	SubscribeAll(ctx context.Context) (*Subscription, error)
}
