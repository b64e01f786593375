package npc

import (
	"sort"

	"github.com/cory-johannsen/petcare/internal/game/world"
)

// Visible is a perception snapshot: the animals an observer can see, ordered
// nearest first. It is written to brain.NearestVisibleEntities by the host.
type Visible struct {
	entries []*Animal
}

// NewVisible builds a snapshot of animals ordered by distance from observer.
// Ties are broken by ID so the order is deterministic.
//
// Postcondition: animals is not modified.
func NewVisible(observer world.Pos, animals []*Animal) Visible {
	entries := make([]*Animal, len(animals))
	copy(entries, animals)
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := observer.DistSqr(entries[i].Pos), observer.DistSqr(entries[j].Pos)
		if di != dj {
			return di < dj
		}
		return entries[i].ID < entries[j].ID
	})
	return Visible{entries: entries}
}

// FindClosest returns the nearest animal satisfying pred.
//
// Postcondition: ok is false iff no visible animal matches.
func (v Visible) FindClosest(pred func(*Animal) bool) (*Animal, bool) {
	for _, a := range v.entries {
		if pred(a) {
			return a, true
		}
	}
	return nil, false
}

// Len returns the number of visible animals.
func (v Visible) Len() int {
	return len(v.entries)
}
