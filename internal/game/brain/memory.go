// Package brain provides the per-actor memory store and the lifecycle
// dispatch that drives tick-based behaviors.
package brain

import "github.com/cory-johannsen/petcare/internal/game/world"

// Key names a memory slot.
type Key string

// Memory slot keys shared between the host and behaviors.
const (
	// NearestVisibleEntities holds the host's per-tick perception snapshot.
	NearestVisibleEntities Key = "nearest_visible_living_entities"
	// HasTamedRecently is the pet-care cooldown marker.
	HasTamedRecently Key = "has_tamed_recently"
	// InteractionTarget holds the Target the actor is interacting with.
	InteractionTarget Key = "interaction_target"
	// WalkTarget holds a WalkTarget movement request.
	WalkTarget Key = "walk_target"
	// LookTarget holds the Target the actor is facing.
	LookTarget Key = "look_target"
)

// Target identifies an entity and where it was when the memory was written.
type Target struct {
	EntityID string
	Pos      world.Pos
}

// Walk is a movement request consumed by the host's movement step.
type Walk struct {
	Target      Target
	Speed       float64
	CloseEnough int
}

type slot struct {
	value any
	// ttl is the remaining lifetime in ticks; negative means no expiry.
	ttl int64
}

// Memory is a keyed slot store with optional tick-based expiry.
//
// Memory is not safe for concurrent use; it is owned by one actor and touched
// only from that actor's tick.
type Memory struct {
	slots map[Key]slot
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{slots: make(map[Key]slot)}
}

// Set stores v under k with no expiry, replacing any previous value.
func (m *Memory) Set(k Key, v any) {
	m.slots[k] = slot{value: v, ttl: -1}
}

// SetWithExpiry stores v under k for ticks ticks.
//
// Postcondition: Has(k) holds for exactly ticks calls to Tick; ticks <= 0
// erases k instead.
func (m *Memory) SetWithExpiry(k Key, v any, ticks int64) {
	if ticks <= 0 {
		m.Erase(k)
		return
	}
	m.slots[k] = slot{value: v, ttl: ticks}
}

// Get returns the raw value stored under k.
func (m *Memory) Get(k Key) (any, bool) {
	s, ok := m.slots[k]
	if !ok {
		return nil, false
	}
	return s.value, true
}

// Has reports whether k holds a value.
func (m *Memory) Has(k Key) bool {
	_, ok := m.slots[k]
	return ok
}

// Expiry returns the remaining ticks for k; ok is false when k is absent or
// never expires.
func (m *Memory) Expiry(k Key) (ticks int64, ok bool) {
	s, found := m.slots[k]
	if !found || s.ttl < 0 {
		return 0, false
	}
	return s.ttl, true
}

// Erase removes k. Erasing an absent key is a no-op.
func (m *Memory) Erase(k Key) {
	delete(m.slots, k)
}

// Tick advances expiring slots by one tick and forgets those that run out.
func (m *Memory) Tick() {
	for k, s := range m.slots {
		if s.ttl < 0 {
			continue
		}
		s.ttl--
		if s.ttl <= 0 {
			delete(m.slots, k)
			continue
		}
		m.slots[k] = s
	}
}

// Value returns the value under k when it is present and of type T.
func Value[T any](m *Memory, k Key) (T, bool) {
	var zero T
	raw, ok := m.Get(k)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
