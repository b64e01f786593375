package petcare

import "github.com/cory-johannsen/petcare/internal/game/npc"

// Presence answers whether a villager is still alive and tracked.
type Presence interface {
	Known(villagerID string) bool
}

// AdoptionPolicy is the read-only input to IsAbandoned.
type AdoptionPolicy struct {
	// AdoptAbandoned enables adopting pets whose villager owner is gone.
	AdoptAbandoned bool
	// Presence is consulted for the owner; nil means no owner is known.
	Presence Presence
}

// IsAbandoned reports whether a is a villager-owned pet whose owner is no
// longer present, with adoption enabled.
func IsAbandoned(a *npc.Animal, p AdoptionPolicy) bool {
	if !p.AdoptAbandoned || !a.IsTamed() || !a.TamedByVillager {
		return false
	}
	if p.Presence == nil {
		return true
	}
	return !p.Presence.Known(a.OwnerID)
}
