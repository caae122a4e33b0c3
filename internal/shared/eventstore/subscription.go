package eventstore

import "sync"

const subscriptionBuffer = 128

// Subscription is an ordered feed of envelopes with an explicit close
// signal. Consumers range over Events until it is closed, then check Err.
type Subscription struct {
	events chan Envelope
	done   chan struct{}

	mu     sync.Mutex
	err    error
	closed bool
}

func NewSubscription() *Subscription {
	return &Subscription{
		events: make(chan Envelope, subscriptionBuffer),
		done:   make(chan struct{}),
	}
}

func (s *Subscription) Events() <-chan Envelope {
	return s.events
}

// Done is closed when the subscription ends, whichever side ends it.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err reports why the subscription ended. Nil after a plain Close.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close tears the subscription down and releases its channel.
// Safe to call more than once.
func (s *Subscription) Close() {
	s.closeWithError(nil)
}

// Publish offers an envelope to the consumer without blocking the writer.
// A consumer that cannot keep up is closed with ErrSubscriptionLagged
// rather than stalling appends or silently dropping events. The return
// value tells the store whether the subscription is still live.
func (s *Subscription) Publish(envelope Envelope) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	select {
	case s.events <- envelope:
		s.mu.Unlock()
		return true
	default:
	}
	s.finishLocked(ErrSubscriptionLagged)
	return false
}

func (s *Subscription) closeWithError(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.finishLocked(err)
}

// finishLocked marks the subscription closed, releases the mutex, then
// closes the channels. The closed flag is checked under the mutex before
// every send, so no send can race the close.
func (s *Subscription) finishLocked(err error) {
	s.closed = true
	s.err = err
	s.mu.Unlock()

	close(s.done)
	close(s.events)
}
