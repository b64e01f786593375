package inventory

import (
	"fmt"

	"github.com/google/uuid"
)

// Stack is a quantity of one item definition occupying a single slot.
// The zero Stack is an empty slot.
type Stack struct {
	InstanceID string
	ItemDefID  string
	Count      int
}

// IsEmpty reports whether the stack holds nothing.
func (s Stack) IsEmpty() bool {
	return s.Count <= 0 || s.ItemDefID == ""
}

// Single returns a one-unit stack of itemDefID with a fresh instance ID.
//
// Precondition: itemDefID must be non-empty.
func Single(itemDefID string) Stack {
	return Stack{InstanceID: uuid.New().String(), ItemDefID: itemDefID, Count: 1}
}

// Container is a fixed-size, slot-ordered item container.
//
// Invariant: len(slots) never changes after construction; slot order is stable
// so iteration by index always visits items in the same order.
type Container struct {
	slots []Stack
}

// NewContainer creates an empty Container with size slots.
//
// Precondition: size >= 0.
// Postcondition: Size() == size and every slot is empty.
func NewContainer(size int) *Container {
	return &Container{slots: make([]Stack, size)}
}

// Size returns the number of slots.
func (c *Container) Size() int {
	return len(c.slots)
}

// Slot returns a copy of the stack at index i.
//
// Precondition: 0 <= i < Size().
func (c *Container) Slot(i int) Stack {
	return c.slots[i]
}

// Slots returns a snapshot copy of all slots in index order, empty slots included.
//
// Postcondition: returned slice is a copy; mutations do not affect the container.
func (c *Container) Slots() []Stack {
	out := make([]Stack, len(c.slots))
	copy(out, c.slots)
	return out
}

// Add places quantity units of itemDefID, topping up existing stacks first and
// then filling empty slots in index order.
// It is atomic: if the units do not fit, no state is modified.
//
// Precondition: quantity > 0, itemDefID exists in reg.
// Postcondition: on success Count(itemDefID) grows by quantity; on error the
// container is unchanged.
func (c *Container) Add(itemDefID string, quantity int, reg *Registry) error {
	def, ok := reg.Item(itemDefID)
	if !ok {
		return fmt.Errorf("container: unknown item %q", itemDefID)
	}
	if quantity <= 0 {
		return fmt.Errorf("container: quantity must be > 0")
	}

	// Phase 1: make sure everything fits.
	room := 0
	for _, s := range c.slots {
		switch {
		case s.IsEmpty():
			room += def.MaxStack
		case s.ItemDefID == def.ID && s.Count < def.MaxStack:
			room += def.MaxStack - s.Count
		}
	}
	if room < quantity {
		return fmt.Errorf("container: not enough room for %d of %q (room %d)", quantity, itemDefID, room)
	}

	// Phase 2: apply, merging before claiming empty slots.
	remaining := quantity
	for i := range c.slots {
		if remaining == 0 {
			break
		}
		s := &c.slots[i]
		if !s.IsEmpty() && s.ItemDefID == def.ID && s.Count < def.MaxStack {
			take := min(remaining, def.MaxStack-s.Count)
			s.Count += take
			remaining -= take
		}
	}
	for i := range c.slots {
		if remaining == 0 {
			break
		}
		if c.slots[i].IsEmpty() {
			take := min(remaining, def.MaxStack)
			c.slots[i] = Stack{InstanceID: uuid.New().String(), ItemDefID: def.ID, Count: take}
			remaining -= take
		}
	}
	return nil
}

// HasAnyOf reports whether any non-empty slot holds an item in set.
func (c *Container) HasAnyOf(set Set) bool {
	return c.HasAnyMatching(func(s Stack) bool { return set.Contains(s.ItemDefID) })
}

// HasAnyMatching reports whether any non-empty slot satisfies pred.
//
// Precondition: pred must be non-nil.
func (c *Container) HasAnyMatching(pred func(Stack) bool) bool {
	_, ok := c.FirstMatching(pred)
	return ok
}

// FirstMatching returns the first non-empty slot, in index order, that
// satisfies pred.
//
// Postcondition: ok is false iff no slot matches.
func (c *Container) FirstMatching(pred func(Stack) bool) (Stack, bool) {
	for _, s := range c.slots {
		if !s.IsEmpty() && pred(s) {
			return s, true
		}
	}
	return Stack{}, false
}

// Count returns the total units of itemDefID across all slots.
func (c *Container) Count(itemDefID string) int {
	total := 0
	for _, s := range c.slots {
		if !s.IsEmpty() && s.ItemDefID == itemDefID {
			total += s.Count
		}
	}
	return total
}

// RemoveItemType removes up to n units of itemDefID, draining slots in index
// order, and returns the number of units actually removed.
//
// Postcondition: 0 <= removed <= n; emptied slots become the zero Stack.
func (c *Container) RemoveItemType(itemDefID string, n int) int {
	removed := 0
	for i := range c.slots {
		if removed == n {
			break
		}
		s := &c.slots[i]
		if s.IsEmpty() || s.ItemDefID != itemDefID {
			continue
		}
		take := min(n-removed, s.Count)
		s.Count -= take
		removed += take
		if s.Count == 0 {
			c.slots[i] = Stack{}
		}
	}
	return removed
}

// IsEmpty reports whether every slot is empty.
func (c *Container) IsEmpty() bool {
	for _, s := range c.slots {
		if !s.IsEmpty() {
			return false
		}
	}
	return true
}
