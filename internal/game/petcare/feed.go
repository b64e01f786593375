package petcare

import "github.com/cory-johannsen/petcare/internal/game/npc"

// Sound identifies a host playback cue.
type Sound string

// SoundCatEat is played when a feline is fed.
const SoundCatEat Sound = "entity.cat.eat"

// EntityEvent is a host animation signal broadcast for an entity.
type EntityEvent byte

const (
	EntityEventTameFailure EntityEvent = 6
	EntityEventTameSuccess EntityEvent = 7
)

// RegainReason tags a heal for the host.
type RegainReason string

const (
	RegainEating  RegainReason = "eating"
	RegainGeneric RegainReason = "custom"
)

// Effects is the host sink for the behavior's visible side effects.
type Effects interface {
	BroadcastEntityEvent(entityID string, ev EntityEvent)
	PlaySound(entityID string, sound Sound)
	Healed(a *npc.Animal, amount int, reason RegainReason)
}

// feedProfile is the per-variant feeding reaction.
type feedProfile struct {
	heals  bool
	cue    Sound
	reason RegainReason
}

var feedProfiles = map[npc.SpeciesKind]feedProfile{
	npc.KindCanine: {heals: true, reason: RegainEating},
	npc.KindFeline: {heals: true, cue: SoundCatEat, reason: RegainGeneric},
	// Unfeedable and Other have the zero profile: nothing happens.
}

func profileFor(kind npc.SpeciesKind) feedProfile {
	return feedProfiles[kind]
}

// feed applies kind's reaction to a with nutrition points of food.
//
// Postcondition: returns the health actually restored.
func feed(a *npc.Animal, nutrition int, fx Effects) int {
	p := profileFor(a.Kind())
	if !p.heals {
		return 0
	}
	if p.cue != "" {
		fx.PlaySound(a.ID, p.cue)
	}
	healed := a.Heal(nutrition)
	fx.Healed(a, healed, p.reason)
	return healed
}
