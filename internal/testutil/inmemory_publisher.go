package testutil

import (
	"context"
	"sync"

	"github.com/comanda/comanda/internal/types"
	"github.com/comanda/comanda/internal/webhook/publisher"
)

var _ publisher.EventPublisher = (*InMemoryEventPublisher)(nil)

// InMemoryEventPublisher captures outbound events so tests can assert on
// exactly what was emitted, and how many times.
type InMemoryEventPublisher struct {
	mu     sync.RWMutex
	events []*types.OutboundEvent
}

// NewInMemoryEventPublisher creates a new capturing publisher
func NewInMemoryEventPublisher() *InMemoryEventPublisher {
	return &InMemoryEventPublisher{}
}

func (p *InMemoryEventPublisher) Publish(ctx context.Context, event *types.OutboundEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *InMemoryEventPublisher) Close() error {
	return nil
}

// Events returns the captured events in publish order
func (p *InMemoryEventPublisher) Events() []*types.OutboundEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*types.OutboundEvent, len(p.events))
	copy(out, p.events)
	return out
}

// EventsNamed returns captured events with the given name
func (p *InMemoryEventPublisher) EventsNamed(name string) []*types.OutboundEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []*types.OutboundEvent
	for _, e := range p.events {
		if e.EventName == name {
			out = append(out, e)
		}
	}
	return out
}

// Clear drops all captured events
func (p *InMemoryEventPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}
