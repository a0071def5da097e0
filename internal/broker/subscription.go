package broker

import (
	"sync"
)

// Subscription is one live delivery channel: an ephemeral, process-local
// consumer endpoint for a single topic. It is created by Broker.Subscribe
// and destroyed by Close (or Registry.Unregister); nothing here is persisted.
type Subscription struct {
	id     uint64
	topic  string
	fc     FilterContext
	filter Filter

	mu      sync.Mutex
	closed  bool
	dropped uint64
	queue   chan *Event

	registry *Registry
}

// Topic returns the topic this subscription is registered under.
func (s *Subscription) Topic() string { return s.topic }

// Context returns the filter context captured at registration time.
func (s *Subscription) Context() FilterContext { return s.fc }

// Events returns the delivery stream. It is a queue-backed, potentially
// infinite sequence that ends only when the subscription is closed. The
// consumer must not share it between goroutines.
func (s *Subscription) Events() <-chan *Event {
	return s.queue
}

// Dropped returns how many events were discarded because the queue was full.
func (s *Subscription) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close unregisters the subscription and closes the event stream. Safe to
// call more than once. After Close returns, no further event is pushed.
func (s *Subscription) Close() {
	s.registry.Unregister(&Handle{topic: s.topic, id: s.id})
}

// push enqueues without blocking. A full queue drops the event for this
// subscriber only. mu is held across the closed check and the enqueue so
// no event lands after close.
func (s *Subscription) push(e *Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.queue <- e:
		return true
	default:
		s.dropped++
		return false
	}
}

// close marks the subscription dead and ends the event stream. Idempotent.
func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.queue)
}
