package event

import "sync"

// Observer receives every published event. Handlers run synchronously on
// the publisher's goroutine and must not block.
type Observer interface {
	HandleEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) HandleEvent(e Event) { f(e) }

// Bus fans events out to registered observers. A nil *Bus is a valid
// no-op publisher, so components can run without observability wired.
type Bus struct {
	mu        sync.RWMutex
	observers []Observer
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(o Observer) {
	if b == nil || o == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, o)
}

func (b *Bus) Publish(e Event) {
	if b == nil || e == nil {
		return
	}
	b.mu.RLock()
	observers := make([]Observer, len(b.observers))
	copy(observers, b.observers)
	b.mu.RUnlock()
	for _, o := range observers {
		o.HandleEvent(e)
	}
}
