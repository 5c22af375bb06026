// Package stream provides small channel primitives for latest-value streams.
//
// Every channel returned here is conflated: it buffers one value and a new
// value replaces an unread one, so a slow reader always sees the latest state
// and a producer never blocks on a reader.
package stream

import (
	"context"
	"sync"
)

// Broadcaster fans a latest-value stream out to any number of subscribers.
// Subscribers receive the current value first (if one was published).
type Broadcaster[T any] struct {
	mu     sync.Mutex
	value  T
	hasVal bool
	closed bool
	done   chan struct{}
	subs   map[*subscriber[T]]struct{}
}

type subscriber[T any] struct {
	ch   chan T
	once sync.Once
}

func (s *subscriber[T]) close() {
	s.once.Do(func() { close(s.ch) })
}

// NewBroadcaster creates a broadcaster with no current value
func NewBroadcaster[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{
		done: make(chan struct{}),
		subs: make(map[*subscriber[T]]struct{}),
	}
}

// Publish stores v as the current value and offers it to every subscriber
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.value = v
	b.hasVal = true
	for s := range b.subs {
		Offer(s.ch, v)
	}
}

// Current returns the current value and whether one was ever published
func (b *Broadcaster[T]) Current() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value, b.hasVal
}

// Subscribe returns a channel of values. It closes when ctx is done or the
// broadcaster is closed.
func (b *Broadcaster[T]) Subscribe(ctx context.Context) <-chan T {
	s := &subscriber[T]{ch: make(chan T, 1)}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		s.close()
		return s.ch
	}
	if b.hasVal {
		s.ch <- b.value
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
		}
		b.mu.Lock()
		delete(b.subs, s)
		b.mu.Unlock()
		s.close()
	}()

	return s.ch
}

// Close closes every subscriber channel. Later Publish calls are dropped and
// later subscriptions are closed immediately.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
	for s := range b.subs {
		s.close()
	}
}

// Offer replaces any unread value in a one-slot channel with v.
// Must only be called by the channel's single producer.
func Offer[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
