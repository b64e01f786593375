package event

// Event names.
const (
	NameVillagerTame = "villager_tame"
	NamePetTamed     = "pet_tamed"
)

// TameEvent is published before a villager takes ownership of an animal.
// Cancelling it makes the attempt fail.
type TameEvent struct {
	VillagerID string
	AnimalID   string
	Species    string
	// Abandoned is true when the animal's previous villager owner is gone.
	Abandoned bool

	cancelled bool
}

// Name implements Event.
func (e *TameEvent) Name() string { return NameVillagerTame }

// Cancelled implements Cancellable.
func (e *TameEvent) Cancelled() bool { return e.cancelled }

// SetCancelled implements Cancellable.
func (e *TameEvent) SetCancelled(cancelled bool) { e.cancelled = cancelled }

// PetTamedEvent is published after ownership has been transferred.
type PetTamedEvent struct {
	VillagerID string
	AnimalID   string
	Species    string
	Abandoned  bool
}

// Name implements Event.
func (e *PetTamedEvent) Name() string { return NamePetTamed }
