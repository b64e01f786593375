package gameserver

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/petcare/internal/config"
	"github.com/cory-johannsen/petcare/internal/game/brain"
	"github.com/cory-johannsen/petcare/internal/game/inventory"
	"github.com/cory-johannsen/petcare/internal/game/npc"
	"github.com/cory-johannsen/petcare/internal/game/petcare"
)

// ProfileOptions converts a configured species profile into behavior options.
func ProfileOptions(p config.PetCareProfile) petcare.Options {
	return petcare.Options{
		Species:        p.Species,
		DistanceToTame: p.DistanceToTame,
		TameChance:     p.TameChance,
		SpeedModifier:  p.SpeedModifier,
		TameFilter:     petcare.SpeciesFilter(p.Species),
		TameItems:      inventory.NewSet(p.TameItems...),
	}
}

// PetCareFactory builds a villager's set of pet-care behaviors, one per
// configured species.
type PetCareFactory struct {
	options []petcare.Options
	deps    petcare.Deps
}

// NewPetCareFactory validates every profile against cfg and c.
//
// Precondition: deps must satisfy petcare.New except Adoption and
// CooldownTicks, which are taken from cfg and presence.
// Postcondition: Returns an error naming every invalid profile.
func NewPetCareFactory(cfg config.PetCareConfig, c *Content, presence petcare.Presence, deps petcare.Deps) (*PetCareFactory, error) {
	deps.Adoption = petcare.AdoptionPolicy{AdoptAbandoned: cfg.AdoptAbandonedPets, Presence: presence}
	deps.CooldownTicks = cfg.TameCooldownTicks

	var errs []error
	opts := make([]petcare.Options, 0, len(cfg.Profiles))
	for _, p := range cfg.Profiles {
		if err := checkProfile(p, c); err != nil {
			errs = append(errs, err)
			continue
		}
		o := ProfileOptions(p)
		if err := o.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("profile %q: %w", p.Species, err))
			continue
		}
		opts = append(opts, o)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &PetCareFactory{options: opts, deps: deps}, nil
}

func checkProfile(p config.PetCareProfile, c *Content) error {
	tmpl, ok := c.Species[p.Species]
	if !ok {
		return fmt.Errorf("profile %q: %s", p.Species, unknown("species", p.Species, c.SpeciesIDs()))
	}
	if !tmpl.Tameable {
		return fmt.Errorf("profile %q: species is not tameable", p.Species)
	}
	for _, item := range p.TameItems {
		if _, ok := c.Items.Item(item); !ok {
			return fmt.Errorf("profile %q: tame item: %s", p.Species, unknown("item", item, c.ItemIDs()))
		}
	}
	return nil
}

// Behaviors returns a fresh behavior per profile, in profile order.
//
// Postcondition: The returned behaviors share no per-cycle state with any
// earlier call.
func (f *PetCareFactory) Behaviors() ([]brain.Behavior[*npc.Villager], error) {
	out := make([]brain.Behavior[*npc.Villager], 0, len(f.options))
	for _, o := range f.options {
		b, err := petcare.New(o, f.deps)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
