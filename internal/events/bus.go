// Package events is the in-process publish/subscribe bus that connects the
// storefront models, views and the checkout orchestrator.
//
// A Bus is always constructed explicitly and handed to its users; there is no
// package-level instance. Dispatch is synchronous and follows registration
// order, so a handler observes every change made by the handlers before it.
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type Name string

// All is the wildcard subscription name used by OnAll.
const All Name = "*"

type Handler func(ctx context.Context, name Name, payload any)

type subscription struct {
	id      uint64
	handler Handler
}

type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[Name][]subscription
	log      *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{
		handlers: make(map[Name][]subscription),
		log:      log,
	}
}

// On registers h for name and returns a function that removes it.
func (b *Bus) On(name Name, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[name] = append(b.handlers[name], subscription{id: id, handler: h})

	return func() { b.off(name, id) }
}

// OnAll registers h for every event. Wildcard handlers run after the
// handlers registered for the specific name.
func (b *Bus) OnAll(h Handler) (unsubscribe func()) {
	return b.On(All, h)
}

func (b *Bus) off(name Name, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[name]
	for i, s := range subs {
		if s.id == id {
			b.handlers[name] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.handlers[name]) == 0 {
		delete(b.handlers, name)
	}
}

func (b *Bus) Emit(ctx context.Context, name Name, payload any) {
	b.mu.RLock()
	subs := make([]subscription, 0, len(b.handlers[name])+len(b.handlers[All]))
	subs = append(subs, b.handlers[name]...)
	if name != All {
		subs = append(subs, b.handlers[All]...)
	}
	b.mu.RUnlock()

	for _, s := range subs {
		b.dispatch(ctx, s.handler, name, payload)
	}
}

func (b *Bus) dispatch(ctx context.Context, h Handler, name Name, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				zap.String("event", string(name)),
				zap.Any("panic", r),
			)
		}
	}()
	h(ctx, name, payload)
}

func (b *Bus) HandlerCount(name Name) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[name])
}
