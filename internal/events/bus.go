// Package events provides a small in-process event bus used to push
// recalculation and maintenance notifications to connected dashboards.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType identifies a category of system event
type EventType string

const (
	// RunwayRecalculated fires after a recalculate-and-persist cycle
	RunwayRecalculated EventType = "runway_recalculated"
	// LedgerChanged fires when a capital event is created, updated, or deactivated
	LedgerChanged EventType = "ledger_changed"
	// BackupCompleted fires after a successful database backup upload
	BackupCompleted EventType = "backup_completed"
)

// Event is a single emitted event
type Event struct {
	Type      EventType              `json:"type"`
	Module    string                 `json:"module"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Handler receives emitted events. Handlers must not block; slow consumers
// should buffer on their side (the SSE stream does).
type Handler func(*Event)

// Bus is a minimal synchronous publish/subscribe bus. Emit calls every
// subscribed handler in the emitting goroutine.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
	log      zerolog.Logger
}

// NewBus creates a new event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[int]Handler),
		log:      log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers a handler for all events and returns an unsubscribe
// function.
func (b *Bus) Subscribe(handler Handler) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// Emit publishes an event to all subscribers
func (b *Bus) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := &Event{
		Type:      eventType,
		Module:    module,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	b.log.Debug().
		Str("event_type", string(eventType)).
		Str("module", module).
		Int("subscribers", len(b.handlers)).
		Msg("Emitting event")

	for _, handler := range b.handlers {
		handler(event)
	}
}
