package petcare_test

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/petcare/internal/game/brain"
	"github.com/cory-johannsen/petcare/internal/game/dice"
	"github.com/cory-johannsen/petcare/internal/game/event"
	"github.com/cory-johannsen/petcare/internal/game/inventory"
	"github.com/cory-johannsen/petcare/internal/game/npc"
	"github.com/cory-johannsen/petcare/internal/game/petcare"
	"github.com/cory-johannsen/petcare/internal/game/world"
)

// fataler is satisfied by both *testing.T and *rapid.T.
type fataler interface {
	Fatalf(format string, args ...any)
}

var (
	wolfTmpl = &npc.Template{ID: "wolf", Name: "Wolf", Kind: npc.KindCanine, MaxHealth: 10, Tameable: true, Foods: []string{"beef"}}
	catTmpl  = &npc.Template{ID: "cat", Name: "Cat", Kind: npc.KindFeline, MaxHealth: 10, Tameable: true, Foods: []string{"cod"}}
	// parrots accept seeds but are never healed by them.
	parrotTmpl = &npc.Template{ID: "parrot", Name: "Parrot", Kind: npc.KindUnfeedable, MaxHealth: 6, Tameable: true, Foods: []string{"seeds"}}
)

type entityEvent struct {
	entityID string
	ev       petcare.EntityEvent
}

type healRecord struct {
	entityID string
	amount   int
	reason   petcare.RegainReason
}

type recordingEffects struct {
	events []entityEvent
	sounds []petcare.Sound
	heals  []healRecord
}

func (r *recordingEffects) BroadcastEntityEvent(entityID string, ev petcare.EntityEvent) {
	r.events = append(r.events, entityEvent{entityID: entityID, ev: ev})
}

func (r *recordingEffects) PlaySound(_ string, sound petcare.Sound) {
	r.sounds = append(r.sounds, sound)
}

func (r *recordingEffects) Healed(a *npc.Animal, amount int, reason petcare.RegainReason) {
	r.heals = append(r.heals, healRecord{entityID: a.ID, amount: amount, reason: reason})
}

// countingRoller counts rolls and always fails them.
type countingRoller struct {
	calls int
}

func (c *countingRoller) OneIn(_ string, n int) dice.OneInResult {
	c.calls++
	return dice.OneInResult{N: n, Value: 1, Passed: false}
}

type fixture struct {
	reg      *inventory.Registry
	bus      *event.Bus
	fx       *recordingEffects
	tracker  *npc.Tracker
	villager *npc.Villager
	animals  []*npc.Animal
	roller   petcare.Roller
	opts     petcare.Options
	adopt    bool
	cooldown int64
}

func newRegistry(t fataler) *inventory.Registry {
	reg := inventory.NewRegistry()
	for _, d := range []*inventory.ItemDef{
		{ID: "bone", Name: "Bone", Kind: inventory.KindBait, MaxStack: 64},
		{ID: "seeds", Name: "Seeds", Kind: inventory.KindBait, Nutrition: 1, MaxStack: 64},
		{ID: "beef", Name: "Beef", Kind: inventory.KindFood, Nutrition: 3, MaxStack: 64},
		{ID: "cod", Name: "Cod", Kind: inventory.KindFood, Nutrition: 2, MaxStack: 64},
		{ID: "stick", Name: "Stick", Kind: inventory.KindMisc, MaxStack: 1},
	} {
		if err := reg.RegisterItem(d); err != nil {
			t.Fatalf("register %s: %v", d.ID, err)
		}
	}
	return reg
}

// newFixture returns an idle villager "v1" at the origin with an empty
// inventory, set up to tame wolves with bones on every roll.
func newFixture(t fataler) *fixture {
	f := &fixture{
		reg:      newRegistry(t),
		bus:      event.NewBus(zap.NewNop()),
		fx:       &recordingEffects{},
		tracker:  npc.NewTracker(),
		villager: npc.NewVillager("v1", "Ada", world.Pos{}, npc.DefaultInventorySize),
		roller:   dice.NewLoggedRoller(dice.NewSeededSource(1), zap.NewNop()),
		opts: petcare.Options{
			Species:        "wolf",
			DistanceToTame: 2,
			TameChance:     1,
			SpeedModifier:  0.6,
			TameFilter:     petcare.SpeciesFilter("wolf"),
			TameItems:      inventory.NewSet("bone"),
		},
		adopt:    true,
		cooldown: 100,
	}
	f.tracker.Track(npc.TrackedVillager{ID: "v1", Name: "Ada"})
	return f
}

func (f *fixture) build(t fataler) *petcare.Behavior {
	b, err := petcare.New(f.opts, petcare.Deps{
		Items:         f.reg,
		Roller:        f.roller,
		Events:        f.bus,
		Effects:       f.fx,
		Adoption:      petcare.AdoptionPolicy{AdoptAbandoned: f.adopt, Presence: f.tracker},
		CooldownTicks: f.cooldown,
		Logger:        zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("petcare.New: %v", err)
	}
	return b
}

func (f *fixture) give(t fataler, itemDefID string, n int) {
	if err := f.villager.Inventory().Add(itemDefID, n, f.reg); err != nil {
		t.Fatalf("give %s: %v", itemDefID, err)
	}
}

func (f *fixture) spawn(tmpl *npc.Template, pos world.Pos) *npc.Animal {
	a := npc.NewAnimal(fmt.Sprintf("%s-%d", tmpl.ID, len(f.animals)+1), tmpl, pos)
	f.animals = append(f.animals, a)
	return a
}

// perceive writes the host's visibility snapshot into the villager's memory.
func (f *fixture) perceive() {
	f.villager.Memory().Set(brain.NearestVisibleEntities, npc.NewVisible(f.villager.Pos, f.animals))
}

// step moves the villager one block toward its walk target, as the host does.
func (f *fixture) step() {
	if w, ok := brain.Value[brain.Walk](f.villager.Memory(), brain.WalkTarget); ok {
		f.villager.Pos = f.villager.Pos.StepToward(w.Target.Pos)
	}
}
