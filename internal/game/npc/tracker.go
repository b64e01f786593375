package npc

import (
	"sort"
	"sync"
)

// TrackedVillager is the presence record of a villager known to the host,
// whether or not its entity is currently loaded.
type TrackedVillager struct {
	ID   string
	Name string
}

// Tracker is the villager presence registry. A pet whose villager owner is not
// tracked has lost its owner for good.
// All methods are safe for concurrent use.
type Tracker struct {
	mu      sync.RWMutex
	records map[string]TrackedVillager
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{records: make(map[string]TrackedVillager)}
}

// Track records or refreshes a villager.
//
// Precondition: rec.ID must be non-empty.
func (t *Tracker) Track(rec TrackedVillager) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[rec.ID] = rec
}

// Forget drops a villager, typically on death. Forgetting an unknown ID is a no-op.
func (t *Tracker) Forget(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.records, id)
}

// Known reports whether id is a tracked villager.
func (t *Tracker) Known(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.records[id]
	return ok
}

// Snapshot returns all records sorted by ID.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (t *Tracker) Snapshot() []TrackedVillager {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]TrackedVillager, 0, len(t.records))
	for _, r := range t.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
