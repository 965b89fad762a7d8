package events

import (
	"sync"

	"TradePulse/internal/domain/models"
)

// Handler consumes one bus event. Handlers run synchronously on the
// publisher's goroutine and must not block.
type Handler func(models.Event)

// Bus is an in-process listener registry. Observers (dashboard stream,
// external forwarders) subscribe without coupling to file storage.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]subscription
}

type subscription struct {
	name string // empty matches every event
	fn   Handler
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]subscription)}
}

// Subscribe registers a handler for every event. Returns a subscription id.
func (b *Bus) Subscribe(fn Handler) int {
	return b.add("", fn)
}

// SubscribeNamed registers a handler for one event name only.
func (b *Bus) SubscribeNamed(name string, fn Handler) int {
	return b.add(name, fn)
}

func (b *Bus) add(name string, fn Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs[b.nextID] = subscription{name: name, fn: fn}
	return b.nextID
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
}

// Publish fans the event out to all matching subscribers.
func (b *Bus) Publish(ev models.Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.name == "" || s.name == ev.Name {
			handlers = append(handlers, s.fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(ev)
	}
}

// Len reports the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
