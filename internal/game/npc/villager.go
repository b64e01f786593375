package npc

import (
	"github.com/cory-johannsen/petcare/internal/game/brain"
	"github.com/cory-johannsen/petcare/internal/game/inventory"
	"github.com/cory-johannsen/petcare/internal/game/world"
)

// DefaultInventorySize is the number of slots in a villager's inventory.
const DefaultInventorySize = 8

// TaskKind names the activity a villager is busy with.
type TaskKind string

const (
	TaskNone    TaskKind = ""
	TaskTaming  TaskKind = "taming"
	TaskEating  TaskKind = "eating"
	TaskTrading TaskKind = "trading"
	TaskFishing TaskKind = "fishing"
)

// Task is the villager's active task record. It is set and cleared only by the
// behavior that owns the task; everything else reads it.
type Task struct {
	Kind     TaskKind
	TargetID string
}

// Villager is an NPC actor that runs behaviors.
type Villager struct {
	// ID uniquely identifies the villager.
	ID string
	// Name is the display name.
	Name string
	// Pos is the villager's current block position.
	Pos world.Pos
	// Activity is the villager's current schedule phase.
	Activity brain.Activity

	inventory *inventory.Container
	memory    *brain.Memory
	mainHand  inventory.Stack
	task      Task
}

// NewVillager creates an idle villager with an empty inventory of invSize slots.
//
// Precondition: id must be non-empty; invSize >= 0.
// Postcondition: Activity is ActivityIdle; no task is active; main hand is empty.
func NewVillager(id, name string, pos world.Pos, invSize int) *Villager {
	return &Villager{
		ID:        id,
		Name:      name,
		Pos:       pos,
		Activity:  brain.ActivityIdle,
		inventory: inventory.NewContainer(invSize),
		memory:    brain.NewMemory(),
	}
}

// Inventory returns the villager's item container.
func (v *Villager) Inventory() *inventory.Container { return v.inventory }

// Memory returns the villager's brain memory.
func (v *Villager) Memory() *brain.Memory { return v.memory }

// MainHand returns the item held in the main hand.
func (v *Villager) MainHand() inventory.Stack { return v.mainHand }

// SetMainHand replaces the item held in the main hand.
func (v *Villager) SetMainHand(s inventory.Stack) { v.mainHand = s }

// Task returns the active task record.
func (v *Villager) Task() Task { return v.task }

// SetTask records t as the active task.
func (v *Villager) SetTask(t Task) { v.task = t }

// ClearTask clears the active task.
func (v *Villager) ClearTask() { v.task = Task{} }

// IsDoingNothing reports whether the villager is free for a task of kind
// allowed: either no task is active or the active task is already of that kind.
func (v *Villager) IsDoingNothing(allowed TaskKind) bool {
	return v.task.Kind == TaskNone || v.task.Kind == allowed
}

// LookAt points the villager's look target at a.
func (v *Villager) LookAt(a *Animal) {
	v.memory.Set(brain.LookTarget, brain.Target{EntityID: a.ID, Pos: a.Pos})
}
