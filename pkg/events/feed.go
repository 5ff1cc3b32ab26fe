// Package events provides the in-process change-notification channel that
// decouples the state stores from display surfaces (badge counters, toasts).
// Each store owns its own Feed; there is no shared untyped bus.
package events

import "sync"

// Feed is a typed observer list. Subscribe returns an unsubscribe func;
// Publish invokes every live subscriber synchronously in subscription order.
type Feed[T any] struct {
	mu    sync.Mutex
	next  int
	order []int
	subs  map[int]func(T)
}

func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{subs: map[int]func(T){}}
}

// Subscribe registers fn and returns its unsubscribe func. Unsubscribing
// twice is a no-op.
func (f *Feed[T]) Subscribe(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.next
	f.next++
	f.subs[id] = fn
	f.order = append(f.order, id)

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

// Publish delivers ev to every subscriber. Delivery is synchronous so a
// subscriber reading store state observes the state that produced the event.
func (f *Feed[T]) Publish(ev T) {
	f.mu.Lock()
	fns := make([]func(T), 0, len(f.subs))
	for _, id := range f.order {
		if fn, ok := f.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Len reports the number of live subscribers.
func (f *Feed[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
