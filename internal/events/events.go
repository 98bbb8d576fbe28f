package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// StreamMarketplace carries every campaign and application lifecycle event.
const StreamMarketplace = "events:marketplace"

// Event types
const (
	EventApplicationCreated       = "application_created"
	EventApplicationStatusChanged = "application_status_changed"
	EventCampaignStatusChanged    = "campaign_status_changed"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
	// Audience lists the accounts that should receive the event. Empty means everyone.
	Audience []uuid.UUID `json:"audience,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}

// MemoryBus delivers events in-process. It backs STORAGE_DRIVER=memory and tests.
type MemoryBus struct {
	mu        sync.RWMutex
	published []Event
	handlers  map[string][]func(Event)
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[string][]func(Event))}
}

func (b *MemoryBus) Publish(_ context.Context, stream string, event Event) error {
	b.mu.Lock()
	b.published = append(b.published, event)
	handlers := append([]func(Event){}, b.handlers[stream]...)
	b.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
	return nil
}

func (b *MemoryBus) Subscribe(_ context.Context, stream string, handler func(Event)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[stream] = append(b.handlers[stream], handler)
	return nil
}

// Published returns a copy of everything published so far.
func (b *MemoryBus) Published() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Event(nil), b.published...)
}
