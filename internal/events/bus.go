// Package events provides the typed in-process event bus connecting the
// command facade, the location container system, and the persistence
// manager. Delivery is synchronous: Emit invokes every registered handler
// before returning, recovering per-handler panics so one bad consumer cannot
// poison a command. Events are never buffered; with no healthy consumer they
// are logged and dropped.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Type identifies a domain event kind.
type Type string

// The event taxonomy.
const (
	ItemTaken            Type = "item_taken"
	ItemDropped          Type = "item_dropped"
	ItemUsed             Type = "item_used"
	ItemGiven            Type = "item_given"
	EquipmentChange      Type = "equipment_change"
	ContainerUnlocked    Type = "container_unlocked"
	ContainerItemAdded   Type = "container_item_added"
	ContainerItemRemoved Type = "container_item_removed"
	LocationChange       Type = "location_change"
	InventoryChange      Type = "inventory_change"
	WorldStateChange     Type = "world_state_change"
	SystemShutdown       Type = "system_shutdown"
	PeriodicSave         Type = "periodic_save"
)

// Event is one domain occurrence delivered to subscribers.
type Event struct {
	ID        string
	Type      Type
	Source    string
	Data      map[string]any
	Timestamp time.Time
}

// Handler consumes one event. Handlers run synchronously on the emitting
// goroutine and must not block on external I/O.
type Handler func(Event)

// Bus is a typed publish/subscribe channel.
// Subscribe and Emit are safe for concurrent use.
type Bus struct {
	logger *zap.Logger

	mu       sync.RWMutex
	handlers map[Type][]Handler
}

// NewBus returns an empty Bus.
//
// Precondition: logger must not be nil.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		logger:   logger,
		handlers: make(map[Type][]Handler),
	}
}

// Subscribe registers h for every event of the given type.
func (b *Bus) Subscribe(t Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// Emit delivers an event of type t from source with the given payload to
// every subscriber, in subscription order.
//
// Postcondition: every handler was invoked exactly once; a panicking handler
// is logged and does not prevent delivery to the rest.
func (b *Bus) Emit(t Type, source string, data map[string]any) {
	ev := Event{
		ID:        uuid.New().String(),
		Type:      t,
		Source:    source,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	b.mu.RLock()
	handlers := b.handlers[t]
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.logger.Debug("event dropped: no subscribers",
			zap.String("event_type", string(t)),
			zap.String("source", source),
		)
		return
	}

	for _, h := range handlers {
		b.deliver(h, ev)
	}
}

func (b *Bus) deliver(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event_type", string(ev.Type)),
				zap.String("event_id", ev.ID),
				zap.Any("panic", r),
			)
		}
	}()
	h(ev)
}
