package events

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/piemenu/pkg/provider"
)

// MemoryBus is an in-process Bus. Publishing never blocks: an event is
// dropped for a subscriber whose buffer is full.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[string]chan provider.UpdateEvent
	closed bool
}

// NewMemoryBus returns an empty bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]chan provider.UpdateEvent)}
}

// Publish implements Bus.
func (b *MemoryBus) Publish(_ context.Context, ev provider.UpdateEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

// Subscribe implements Bus.
func (b *MemoryBus) Subscribe(ctx context.Context) (<-chan provider.UpdateEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	id := uuid.NewString()
	ch := make(chan provider.UpdateEvent, SubscriberBuffer)
	b.subs[id] = ch

	go func() {
		<-ctx.Done()
		b.unsubscribe(id)
	}()
	return ch, nil
}

func (b *MemoryBus) unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		close(ch)
		delete(b.subs, id)
	}
}

// Subscribers returns the number of live subscriptions.
func (b *MemoryBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscription.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
	return nil
}
