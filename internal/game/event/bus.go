// Package event provides a synchronous, priority-ordered event bus with
// cancellable events.
package event

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Priority orders handlers; lower priorities run first and Monitor runs last.
type Priority int

const (
	PriorityLowest Priority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityHighest
	// PriorityMonitor handlers observe the final outcome and must not change it.
	PriorityMonitor
)

// Event is anything published on the Bus.
type Event interface {
	// Name is the routing key handlers subscribe to.
	Name() string
}

// Cancellable is an Event a handler may veto.
type Cancellable interface {
	Event
	Cancelled() bool
	SetCancelled(cancelled bool)
}

// Handler receives a published event.
type Handler func(Event)

type subscription struct {
	id              uint64
	priority        Priority
	ignoreCancelled bool
	handler         Handler
}

// Bus dispatches events to subscribed handlers on the publishing goroutine.
//
// Subscribe and Publish are safe for concurrent use; handlers registered during
// a Publish take effect from the next Publish.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]subscription
	nextID   uint64
	logger   *zap.Logger
}

// NewBus returns an empty Bus.
//
// Precondition: logger must be non-nil.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{handlers: make(map[string][]subscription), logger: logger}
}

// Subscribe registers h for events named name. When ignoreCancelled is true, h
// is skipped for Cancellable events that are already cancelled.
//
// Precondition: name must be non-empty; h must be non-nil.
// Postcondition: returns a function that removes the subscription; calling it
// more than once is a no-op.
func (b *Bus) Subscribe(name string, priority Priority, ignoreCancelled bool, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	subs := append(b.handlers[name], subscription{
		id:              id,
		priority:        priority,
		ignoreCancelled: ignoreCancelled,
		handler:         h,
	})
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].priority < subs[j].priority })
	b.handlers[name] = subs

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		cur := b.handlers[name]
		for i, s := range cur {
			if s.id == id {
				b.handlers[name] = append(cur[:i:i], cur[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers e to every handler subscribed to e.Name(), in priority order.
// A panicking handler is logged at Warn and skipped; delivery continues.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := append([]subscription(nil), b.handlers[e.Name()]...)
	b.mu.RUnlock()

	c, cancellable := e.(Cancellable)
	for _, s := range subs {
		if cancellable && s.ignoreCancelled && c.Cancelled() {
			continue
		}
		b.dispatch(e, s)
	}
}

// Call publishes a cancellable event and reports whether it survived.
//
// Postcondition: returns !c.Cancelled() after every handler ran.
func (b *Bus) Call(c Cancellable) bool {
	b.Publish(c)
	return !c.Cancelled()
}

func (b *Bus) dispatch(e Event, s subscription) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("event handler panicked",
				zap.String("event", e.Name()),
				zap.Uint64("subscription", s.id),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	s.handler(e)
}
