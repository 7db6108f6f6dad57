package testutil

import (
	"context"
	"sync"

	"github.com/spec-kit/social-services/internal/events"
)

// Dispatcher records published events and runs subscribed handlers synchronously.
type Dispatcher struct {
	mu        sync.Mutex
	published []events.Event
	handlers  map[events.EventType][]events.EventHandler
}

// NewDispatcher returns an empty recording dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: map[events.EventType][]events.EventHandler{}}
}

func (d *Dispatcher) Publish(ctx context.Context, event events.Event) {
	d.mu.Lock()
	d.published = append(d.published, event)
	handlers := append([]events.EventHandler(nil), d.handlers[event.Type]...)
	d.mu.Unlock()
	for _, handler := range handlers {
		_ = handler(ctx, event)
	}
}

func (d *Dispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

func (d *Dispatcher) Wait() {}

// Published returns the events of the given types in publication order, or all of them
// when no type is given.
func (d *Dispatcher) Published(types ...events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(types) == 0 {
		return append([]events.Event(nil), d.published...)
	}
	var result []events.Event
	for _, event := range d.published {
		for _, t := range types {
			if event.Type == t {
				result = append(result, event)
				break
			}
		}
	}
	return result
}
