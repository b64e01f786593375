// Package petcare implements the villager behavior that tames wild or
// abandoned pets and feeds the injured pets a villager already owns.
package petcare

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/petcare/internal/game/inventory"
	"github.com/cory-johannsen/petcare/internal/game/npc"
)

const (
	// RetryCooldown is the base retry window in ticks. A failed start check
	// waits RetryCooldown/4 ticks before evaluating again.
	RetryCooldown = 1200
	// RetryAfterFailedTame is added to the retry countdown after a failed tame
	// attempt that leaves the cycle running.
	RetryAfterFailedTame = 10
)

// Options configures one behavior instance.
type Options struct {
	// Species names the instance; the behavior is registered as "pet_care:<species>".
	Species string
	// DistanceToTame is the exclusive block distance the villager must close to
	// before acting.
	DistanceToTame int
	// TameChance is the N in the one-in-N tame roll.
	TameChance int
	// SpeedModifier is passed through on walk requests.
	SpeedModifier float64
	// TameFilter selects wild animals this instance may tame.
	TameFilter func(*npc.Animal) bool
	// TameItems is the bait this instance tames with.
	TameItems inventory.Set
}

// Validate reports every invalid field in one error.
//
// Postcondition: returns nil iff Species is non-empty, DistanceToTame >= 1,
// TameChance >= 1, SpeedModifier > 0, TameFilter is non-nil and TameItems is
// non-empty.
func (o Options) Validate() error {
	var errs []error
	if o.Species == "" {
		errs = append(errs, errors.New("species must not be empty"))
	}
	if o.DistanceToTame < 1 {
		errs = append(errs, fmt.Errorf("distance_to_tame must be >= 1, got %d", o.DistanceToTame))
	}
	if o.TameChance < 1 {
		errs = append(errs, fmt.Errorf("tame_chance must be >= 1, got %d", o.TameChance))
	}
	if o.SpeedModifier <= 0 {
		errs = append(errs, fmt.Errorf("speed_modifier must be > 0, got %g", o.SpeedModifier))
	}
	if o.TameFilter == nil {
		errs = append(errs, errors.New("tame filter must not be nil"))
	}
	if len(o.TameItems) == 0 {
		errs = append(errs, errors.New("tame_items must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("petcare options %q: %w", o.Species, errors.Join(errs...))
	}
	return nil
}

// SpeciesFilter returns a tame filter matching wild, tameable animals of
// template speciesID.
func SpeciesFilter(speciesID string) func(*npc.Animal) bool {
	return func(a *npc.Animal) bool {
		return a.Template.ID == speciesID && a.Template.Tameable && !a.IsTamed()
	}
}
