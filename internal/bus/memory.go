package bus

import (
	"context"
	"sync"

	"github.com/searchroi/search-roi/internal/pkg/errors"
)

// MemoryBus is an in-memory event bus delivering to in-process handlers.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	closed   bool
}

// NewMemoryBus creates a new in-memory event bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[string][]Handler),
	}
}

// Publish delivers an event synchronously to all subscribers of a topic.
// Delivery is in-process; the benchmark stays sequential.
func (b *MemoryBus) Publish(ctx context.Context, topic string, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return errors.New(errors.CodeInternal, "bus is closed")
	}

	for _, handler := range b.handlers[topic] {
		// Handler failures never affect the publisher.
		_ = handler(ctx, event)
	}
	return nil
}

// Subscribe registers a handler for events on a topic.
func (b *MemoryBus) Subscribe(topic string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errors.New(errors.CodeInternal, "bus is closed")
	}

	b.handlers[topic] = append(b.handlers[topic], handler)
	return nil
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = make(map[string][]Handler)
	return nil
}

// NoopBus discards every event. Used when the bus is disabled.
type NoopBus struct{}

func NewNoopBus() *NoopBus { return &NoopBus{} }

func (NoopBus) Publish(ctx context.Context, topic string, event Event) error { return nil }

func (NoopBus) Close() error { return nil }
