package application

import (
	"sync"

	"stylebook/internal/ports"
)

// Broadcaster fans events out to subscribed observers
type Broadcaster struct {
	mu        sync.RWMutex
	observers []func(ports.Event)
}

// Ensure Broadcaster implements Notifier
var _ ports.Notifier = (*Broadcaster)(nil)

// NewBroadcaster creates an empty broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Subscribe registers fn for every future event
func (b *Broadcaster) Subscribe(fn func(ports.Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, fn)
}

// Notify delivers ev to every observer, in subscription order
func (b *Broadcaster) Notify(ev ports.Event) {
	b.mu.RLock()
	observers := append([]func(ports.Event){}, b.observers...)
	b.mu.RUnlock()

	for _, fn := range observers {
		fn(ev)
	}
}

// nopNotifier is used when no notifier is supplied
type nopNotifier struct{}

func (nopNotifier) Notify(ports.Event) {}
