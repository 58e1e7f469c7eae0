// Package events provides the in-process publish/subscribe bus used to
// rebroadcast inbound channel events. Screens that react to the same event
// (badge counters, toasts, message threads) subscribe here instead of being
// wired to the channel manager directly.
package events

import "sync"

// Handler receives a published payload.
type Handler func(payload any)

// Bus is a synchronous fan-out publish/subscribe bus. Delivery order across
// handlers of the same kind is unspecified. Safe for concurrent use.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[string]map[int]Handler
}

// NewBus creates a new Bus instance.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string]map[int]Handler),
	}
}

// Subscribe registers a handler for the given event kind and returns an
// unsubscribe function. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(kind string, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[kind] == nil {
		b.handlers[kind] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[kind][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		delete(b.handlers[kind], id)
		if len(b.handlers[kind]) == 0 {
			delete(b.handlers, kind)
		}
	}
}

// Publish delivers payload to every handler subscribed to kind. Handlers run
// synchronously in the caller's goroutine.
func (b *Bus) Publish(kind string, payload any) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[kind]))
	for _, h := range b.handlers[kind] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
}

// SubscriberCount returns the number of handlers subscribed to kind.
func (b *Bus) SubscriberCount(kind string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[kind])
}
