package petcare_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/petcare/internal/game/npc"
	"github.com/cory-johannsen/petcare/internal/game/petcare"
	"github.com/cory-johannsen/petcare/internal/game/world"
)

func TestIsAbandoned(t *testing.T) {
	present := npc.NewTracker()
	present.Track(npc.TrackedVillager{ID: "here"})

	wild := npc.NewAnimal("w", wolfTmpl, world.Pos{})
	ownedByHere := npc.NewAnimal("a", wolfTmpl, world.Pos{})
	ownedByHere.TameBy("here")
	ownedByGone := npc.NewAnimal("b", wolfTmpl, world.Pos{})
	ownedByGone.TameBy("gone")
	ownedByPlayer := npc.NewAnimal("c", wolfTmpl, world.Pos{})
	ownedByPlayer.OwnerID = "player"

	on := petcare.AdoptionPolicy{AdoptAbandoned: true, Presence: present}
	off := petcare.AdoptionPolicy{AdoptAbandoned: false, Presence: present}

	tests := map[string]struct {
		animal *npc.Animal
		policy petcare.AdoptionPolicy
		want   bool
	}{
		"wild":                 {animal: wild, policy: on, want: false},
		"owner present":        {animal: ownedByHere, policy: on, want: false},
		"owner gone":           {animal: ownedByGone, policy: on, want: true},
		"owner gone, disabled": {animal: ownedByGone, policy: off, want: false},
		"player owned":         {animal: ownedByPlayer, policy: on, want: false},
		"no registry":          {animal: ownedByHere, policy: petcare.AdoptionPolicy{AdoptAbandoned: true}, want: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, petcare.IsAbandoned(tc.animal, tc.policy))
		})
	}
}

func TestOptions_Validate(t *testing.T) {
	valid := petcare.Options{
		Species:        "cat",
		DistanceToTame: 2,
		TameChance:     3,
		SpeedModifier:  0.5,
		TameFilter:     petcare.SpeciesFilter("cat"),
		TameItems:      map[string]struct{}{"cod": {}},
	}
	assert.NoError(t, valid.Validate())

	bad := petcare.Options{}
	err := bad.Validate()
	if assert.Error(t, err) {
		for _, want := range []string{"species", "distance_to_tame", "tame_chance", "speed_modifier", "tame filter", "tame_items"} {
			assert.Contains(t, err.Error(), want)
		}
	}
}

func TestSpeciesFilter(t *testing.T) {
	filter := petcare.SpeciesFilter("cat")
	cat := npc.NewAnimal("c", catTmpl, world.Pos{})
	assert.True(t, filter(cat))
	assert.False(t, filter(npc.NewAnimal("w", wolfTmpl, world.Pos{})))
	cat.TameBy("v1")
	assert.False(t, filter(cat))

	untameable := &npc.Template{ID: "cat", Name: "Stray", Kind: npc.KindFeline, MaxHealth: 1}
	assert.False(t, filter(npc.NewAnimal("s", untameable, world.Pos{})))
}
