package adapter

import (
	"context"
	"sync"

	"go-roomcast/internal/infrastructure/bridge/port"
)

// MemoryBus is an in-process port.Bus for single-instance deployments and
// tests. Publications are dispatched synchronously in publish order, so the
// publisher receives its own publication before Publish returns.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]port.Handler
	closed   bool
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[string][]port.Handler)}
}

var _ port.Bus = (*MemoryBus)(nil)

func (b *MemoryBus) Subscribe(channel string, h port.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.handlers[channel] = append(b.handlers[channel], h)
}

func (b *MemoryBus) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	handlers := b.handlers[channel]
	b.mu.RUnlock()
	for _, h := range handlers {
		h(ctx, payload)
	}
	return nil
}

// Degraded always reports false: there is no transport to lose.
func (b *MemoryBus) Degraded() bool { return false }

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = make(map[string][]port.Handler)
	return nil
}
