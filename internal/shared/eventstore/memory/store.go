package memory

import (
	"context"
	"strings"
	"sync"

	"warehouse/internal/shared/eventstore"
)

// Store is an in-memory append-only event log. It backs the in-memory
// module and the unit suites; semantics mirror the postgres store.
type Store struct {
	mu          sync.RWMutex
	streams     map[string][]eventstore.Envelope
	subscribers []*eventstore.Subscription
	closed      bool
}

func NewStore() *Store {
	return &Store{
		streams: make(map[string][]eventstore.Envelope),
	}
}

func (s *Store) Append(
	ctx context.Context,
	streamID string,
	expected eventstore.ExpectedRevision,
	events ...eventstore.EventData,
) (eventstore.AppendResult, error) {
	if err := ctx.Err(); err != nil {
		return eventstore.AppendResult{}, err
	}
	streamID = strings.TrimSpace(streamID)
	if len(events) == 0 {
		return eventstore.AppendResult{}, eventstore.ErrEmptyAppend
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return eventstore.AppendResult{}, eventstore.ErrStoreClosed
	}

	stream, exists := s.streams[streamID]
	var currentRevision uint64
	if exists && len(stream) > 0 {
		currentRevision = stream[len(stream)-1].Position
	}
	if !expected.Matches(exists, currentRevision) {
		return eventstore.AppendResult{}, eventstore.ErrRevisionConflict
	}

	next := uint64(0)
	if exists {
		next = currentRevision + 1
	}

	appended := make([]eventstore.Envelope, 0, len(events))
	for i, event := range events {
		appended = append(appended, eventstore.Envelope{
			StreamID:   streamID,
			EventID:    event.EventID,
			EventType:  event.EventType,
			Payload:    append([]byte(nil), event.Payload...),
			Position:   next + uint64(i),
			OccurredAt: event.OccurredAt.UTC(),
		})
	}
	s.streams[streamID] = append(stream, appended...)

	// Closed or lagged subscriptions are pruned here rather than via a
	// callback, so publishing never re-enters the store lock.
	live := s.subscribers[:0]
	for _, sub := range s.subscribers {
		delivered := true
		for _, envelope := range appended {
			if !sub.Publish(envelope) {
				delivered = false
				break
			}
		}
		if delivered {
			live = append(live, sub)
		}
	}
	s.subscribers = live

	return eventstore.AppendResult{
		NextExpectedRevision: appended[len(appended)-1].Position,
	}, nil
}

func (s *Store) ReadStream(
	ctx context.Context,
	streamID string,
	from uint64,
	direction eventstore.ReadDirection,
) ([]eventstore.Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	closed := s.closed
	stream, exists := s.streams[strings.TrimSpace(streamID)]
	items := append([]eventstore.Envelope(nil), stream...)
	s.mu.RUnlock()

	if closed {
		return nil, eventstore.ErrStoreClosed
	}
	if !exists {
		return nil, eventstore.ErrStreamNotFound
	}

	filtered := make([]eventstore.Envelope, 0, len(items))
	for _, envelope := range items {
		if envelope.Position < from {
			continue
		}
		filtered = append(filtered, envelope)
	}
	if direction == eventstore.Backwards {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}
	return filtered, nil
}

// Close stops the store. Subsequent operations fail with ErrStoreClosed
// and every live subscription is closed. Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	subs := s.subscribers
	s.subscribers = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
	return nil
}

// SubscriberCount reports live subscriptions. A subscription closed or
// lagged since the last append still counts until the next prune.
func (s *Store) SubscriberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

func (s *Store) SubscribeAll(ctx context.Context) (*eventstore.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub := eventstore.NewSubscription()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, eventstore.ErrStoreClosed
	}
	s.subscribers = append(s.subscribers, sub)
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.Done():
		}
	}()
	return sub, nil
}
