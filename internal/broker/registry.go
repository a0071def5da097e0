package broker

import (
	"sync"
)

// Handle identifies one registration. Unregistering an unknown or already
// removed handle is a no-op.
type Handle struct {
	topic string
	id    uint64
}

// Registry maps a topic (a chat id) to the set of currently registered
// delivery channels. It is the only mutable shared structure in the fan-out
// core; all mutation happens under the lock, and SubscribersOf hands out
// snapshots so iteration never races a concurrent register/unregister.
type Registry struct {
	mu     sync.RWMutex
	nextID uint64
	topics map[string]map[uint64]*Subscription
}

// NewRegistry creates an empty topic registry.
func NewRegistry() *Registry {
	return &Registry{
		topics: make(map[string]map[uint64]*Subscription),
	}
}

// Register adds a subscription under a topic and returns its handle.
// Multiple subscriptions per user per topic are allowed (multi-device).
func (r *Registry) Register(topic string, sub *Subscription) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	sub.id = r.nextID
	sub.topic = topic

	subs, ok := r.topics[topic]
	if !ok {
		subs = make(map[uint64]*Subscription)
		r.topics[topic] = subs
	}
	subs[sub.id] = sub

	return &Handle{topic: topic, id: sub.id}
}

// Unregister removes the subscription and closes its event stream. After
// Unregister returns, a subsequent publish cannot reach the channel.
func (r *Registry) Unregister(h *Handle) {
	if h == nil {
		return
	}

	r.mu.Lock()
	var sub *Subscription
	if subs, ok := r.topics[h.topic]; ok {
		if s, ok := subs[h.id]; ok {
			sub = s
			delete(subs, h.id)
			if len(subs) == 0 {
				delete(r.topics, h.topic)
			}
		}
	}
	r.mu.Unlock()

	// Closing outside the registry lock: close only contends with the
	// subscription's own push mutex, never with other topics.
	if sub != nil {
		sub.close()
	}
}

// SubscribersOf returns a snapshot of the topic's subscriptions at call time.
// A snapshot taken during a concurrent unregister may still contain the
// just-removed channel; its closed flag makes the push a no-op.
func (r *Registry) SubscribersOf(topic string) []*Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs, ok := r.topics[topic]
	if !ok {
		return nil
	}
	snapshot := make([]*Subscription, 0, len(subs))
	for _, s := range subs {
		snapshot = append(snapshot, s)
	}
	return snapshot
}

// Len returns the number of subscriptions registered under a topic.
func (r *Registry) Len(topic string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.topics[topic])
}
