package npc

import "github.com/cory-johannsen/petcare/internal/game/world"

// Animal is a live animal that a villager may tame or feed.
type Animal struct {
	// ID uniquely identifies this runtime animal.
	ID string
	// Template is the species definition.
	Template *Template
	// Pos is the animal's current block position.
	Pos world.Pos
	// Health is the animal's current health.
	Health int
	// MaxHealth is the animal's maximum health.
	MaxHealth int
	// OwnerID is the owning villager's or player's ID; empty when wild.
	OwnerID string
	// TamedByVillager is true when OwnerID refers to a villager.
	TamedByVillager bool
}

// NewAnimal creates a wild animal at full health from tmpl.
//
// Precondition: id must be non-empty; tmpl must be non-nil.
// Postcondition: Health == MaxHealth == tmpl.MaxHealth and OwnerID is empty.
func NewAnimal(id string, tmpl *Template, pos world.Pos) *Animal {
	return &Animal{
		ID:        id,
		Template:  tmpl,
		Pos:       pos,
		Health:    tmpl.MaxHealth,
		MaxHealth: tmpl.MaxHealth,
	}
}

// Kind returns the species' feeding variant.
func (a *Animal) Kind() SpeciesKind {
	return a.Template.Kind
}

// IsTamed reports whether the animal has an owner.
func (a *Animal) IsTamed() bool {
	return a.OwnerID != ""
}

// IsInjured reports whether the animal is below full health.
func (a *Animal) IsInjured() bool {
	return a.Health < a.MaxHealth
}

// IsFood reports whether the animal accepts itemDefID as food.
func (a *Animal) IsFood(itemDefID string) bool {
	return a.Template.AcceptsFood(itemDefID)
}

// Heal restores up to amount health and returns the amount actually restored.
//
// Precondition: amount >= 0.
// Postcondition: Health <= MaxHealth; Health grows by the returned amount.
func (a *Animal) Heal(amount int) int {
	if amount <= 0 || a.Health >= a.MaxHealth {
		return 0
	}
	before := a.Health
	a.Health = min(a.MaxHealth, a.Health+amount)
	return a.Health - before
}

// TameBy makes villagerID the animal's owner.
//
// Precondition: villagerID must be non-empty.
// Postcondition: OwnerID == villagerID and TamedByVillager is true.
func (a *Animal) TameBy(villagerID string) {
	a.OwnerID = villagerID
	a.TamedByVillager = true
}

// HealthDescription returns a visible health state string for logs.
//
// Postcondition: Returns a non-empty string.
func (a *Animal) HealthDescription() string {
	if a.Health <= 0 {
		return "dead"
	}
	pct := float64(a.Health) / float64(a.MaxHealth)
	switch {
	case pct >= 1.0:
		return "healthy"
	case pct >= 0.60:
		return "hurt"
	case pct >= 0.25:
		return "wounded"
	default:
		return "badly hurt"
	}
}
