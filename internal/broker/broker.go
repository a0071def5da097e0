// Package broker is the in-process publish/subscribe core. A publisher hands
// it one event per persisted message; the broker fans the event out to every
// live subscription whose filter matches, each on its own bounded queue.
//
// Delivery is best-effort: a slow or dead subscriber loses its own events
// and nothing else. Within one topic every subscriber sees events in publish
// order; across topics there is no ordering.
package broker

import (
	"github.com/sorokindm/parley/pkg/log"
)

// Config holds broker tuning knobs.
type Config struct {
	// QueueSize bounds each subscription's delivery queue. When the queue
	// is full the newest event is dropped for that subscriber only.
	QueueSize int `mapstructure:"queue_size"`
}

const defaultQueueSize = 256

// Broker owns the topic registry and performs fan-out. Construct one per
// process and inject it; there is no package-level instance.
type Broker struct {
	registry  *Registry
	queueSize int
}

// New creates a broker with an empty registry.
func New(cfg Config) *Broker {
	size := cfg.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Broker{
		registry:  NewRegistry(),
		queueSize: size,
	}
}

// Registry exposes the topic registry for introspection.
func (b *Broker) Registry() *Registry {
	return b.registry
}

// Subscribe registers a delivery channel for a topic with the default
// chat-id filter. The caller consumes Events() and must Close on disconnect.
func (b *Broker) Subscribe(topic string, fc FilterContext) *Subscription {
	return b.SubscribeFunc(topic, fc, ChatFilter)
}

// SubscribeFunc registers a delivery channel with a caller-supplied filter,
// the hook for delivery-time membership revalidation.
func (b *Broker) SubscribeFunc(topic string, fc FilterContext, f Filter) *Subscription {
	sub := &Subscription{
		fc:       fc,
		filter:   f,
		queue:    make(chan *Event, b.queueSize),
		registry: b.registry,
	}
	b.registry.Register(topic, sub)
	return sub
}

// Publish fans an event out to the topic's current subscribers. It is
// fire-and-forget for the caller: enqueueing never blocks on a consumer, a
// failed delivery is logged and dropped, and nothing is reported back.
func (b *Broker) Publish(topic string, e *Event) {
	for _, sub := range b.registry.SubscribersOf(topic) {
		if !sub.filter(e, sub.fc) {
			continue
		}
		if !sub.push(e) {
			l := log.L()
			l.Debug().
				Str(log.FieldTopic, topic).
				Str(log.FieldMessageID, e.MessageID).
				Str(log.FieldUserID, sub.fc.UserID).
				Msg("event dropped: subscriber queue full or closed")
		}
	}
}
