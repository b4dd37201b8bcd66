// Package fanout implements the topic-keyed event broadcaster (C4):
// market-data and trade events published by the engine are relayed,
// non-blockingly, to whatever subscribers currently hold a queue for
// that topic. A full subscriber queue drops the message for that
// subscriber only; publish never blocks the matching path.
package fanout

import "sync"

// DefaultCapacity is the default bound on a subscriber's queue.
const DefaultCapacity = 1000

// Queue is a bounded, single-consumer channel of events for one
// subscription. Subscribers read from it directly.
type Queue <-chan any

// subscription is the producer-side handle the Broadcaster keeps for
// a live subscriber queue.
type subscription struct {
	ch chan any
}

// Broadcaster is a topic -> subscriber-set table guarded by its own
// lock. The lock is held only long enough to snapshot or mutate the
// subscriber set for a topic; enqueueing into individual queues always
// happens outside it, per spec.md §5.
type Broadcaster struct {
	capacity int
	onDrop   func(topic string)

	mu   sync.Mutex
	subs map[string]map[*subscription]struct{}
}

// Option configures optional Broadcaster behavior.
type Option func(*Broadcaster)

// WithDropHook registers a callback invoked once per subscriber that
// missed a publish because its queue was full — wired to a metrics
// counter by cmd/server, never by the core itself.
func WithDropHook(fn func(topic string)) Option {
	return func(b *Broadcaster) { b.onDrop = fn }
}

// New constructs a Broadcaster whose subscriber queues have the given
// capacity. A non-positive capacity falls back to DefaultCapacity.
func New(capacity int, opts ...Option) *Broadcaster {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	b := &Broadcaster{capacity: capacity, subs: make(map[string]map[*subscription]struct{})}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a fresh bounded queue for topic and returns it
// for reading, along with a handle Unsubscribe needs to deregister it.
func (b *Broadcaster) Subscribe(topic string) (Queue, *subscription) {
	sub := &subscription{ch: make(chan any, b.capacity)}

	b.mu.Lock()
	set, ok := b.subs[topic]
	if !ok {
		set = make(map[*subscription]struct{})
		b.subs[topic] = set
	}
	set[sub] = struct{}{}
	b.mu.Unlock()

	return sub.ch, sub
}

// Unsubscribe deregisters handle from topic. The caller should drain
// any events already enqueued before discarding the queue; once
// deregistered, no further events are delivered to it.
func (b *Broadcaster) Unsubscribe(topic string, handle *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.subs[topic]
	if !ok {
		return
	}
	delete(set, handle)
	if len(set) == 0 {
		delete(b.subs, topic)
	}
}

// Publish snapshots the current subscriber set for topic and
// non-blockingly enqueues message into each; a subscriber with a full
// queue silently misses this message. Publish never blocks, and it is
// safe to call from the matching path.
func (b *Broadcaster) Publish(topic string, message any) {
	b.mu.Lock()
	set := b.subs[topic]
	snapshot := make([]*subscription, 0, len(set))
	for sub := range set {
		snapshot = append(snapshot, sub)
	}
	b.mu.Unlock()

	for _, sub := range snapshot {
		select {
		case sub.ch <- message:
		default:
			// queue full: drop for this subscriber, never block matching.
			if b.onDrop != nil {
				b.onDrop(topic)
			}
		}
	}
}
