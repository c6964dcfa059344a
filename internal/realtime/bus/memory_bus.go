package bus

import (
	"context"
	"sync"

	"github.com/MacMoment/coding/internal/realtime"
)

// memoryBus delivers in-process. Used when REDIS_ADDR is unset, which only
// works when the API and the worker share a process.
type memoryBus struct {
	mu       sync.RWMutex
	handlers []func(m realtime.Message)
}

func NewMemoryBus() Bus {
	return &memoryBus{}
}

func (b *memoryBus) Publish(ctx context.Context, msg realtime.Message) error {
	b.mu.RLock()
	handlers := append([]func(realtime.Message){}, b.handlers...)
	b.mu.RUnlock()
	for _, h := range handlers {
		h(msg)
	}
	return nil
}

func (b *memoryBus) StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error {
	b.mu.Lock()
	b.handlers = append(b.handlers, onMsg)
	b.mu.Unlock()
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	b.handlers = nil
	b.mu.Unlock()
	return nil
}
