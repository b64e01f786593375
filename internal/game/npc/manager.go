package npc

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/cory-johannsen/petcare/internal/game/world"
)

// Manager tracks all live villagers and animals by ID.
// All methods are safe for concurrent use; entity fields themselves are
// mutated only from the tick goroutine.
type Manager struct {
	mu        sync.RWMutex
	animals   map[string]*Animal   // animalID → Animal
	villagers map[string]*Villager // villagerID → Villager
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		animals:   make(map[string]*Animal),
		villagers: make(map[string]*Villager),
	}
}

// SpawnAnimal creates a wild animal from tmpl at pos. An empty id is replaced
// by a fresh UUID.
//
// Precondition: tmpl must be non-nil.
// Postcondition: Returns the new Animal registered under its ID, or an error
// when id is already in use.
func (m *Manager) SpawnAnimal(id string, tmpl *Template, pos world.Pos) (*Animal, error) {
	if tmpl == nil {
		return nil, fmt.Errorf("npc.Manager.SpawnAnimal: tmpl must not be nil")
	}
	if id == "" {
		id = uuid.New().String()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.animals[id]; exists {
		return nil, fmt.Errorf("npc.Manager.SpawnAnimal: animal %q already exists", id)
	}
	a := NewAnimal(id, tmpl, pos)
	m.animals[id] = a
	return a, nil
}

// AddVillager registers v.
//
// Precondition: v must be non-nil with a non-empty ID.
// Postcondition: Returns an error when v.ID is already registered.
func (m *Manager) AddVillager(v *Villager) error {
	if v == nil || v.ID == "" {
		return fmt.Errorf("npc.Manager.AddVillager: villager must be non-nil with an ID")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.villagers[v.ID]; exists {
		return fmt.Errorf("npc.Manager.AddVillager: villager %q already exists", v.ID)
	}
	m.villagers[v.ID] = v
	return nil
}

// RemoveAnimal deletes an animal by ID.
//
// Postcondition: Returns an error if the animal is not found.
func (m *Manager) RemoveAnimal(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.animals[id]; !ok {
		return fmt.Errorf("animal %q not found", id)
	}
	delete(m.animals, id)
	return nil
}

// RemoveVillager deletes a villager by ID.
//
// Postcondition: Returns an error if the villager is not found.
func (m *Manager) RemoveVillager(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.villagers[id]; !ok {
		return fmt.Errorf("villager %q not found", id)
	}
	delete(m.villagers, id)
	return nil
}

// Animal returns the animal with the given ID.
//
// Postcondition: Returns (a, true) if found, or (nil, false) otherwise.
func (m *Manager) Animal(id string) (*Animal, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.animals[id]
	return a, ok
}

// Villager returns the villager with the given ID.
//
// Postcondition: Returns (v, true) if found, or (nil, false) otherwise.
func (m *Manager) Villager(id string) (*Villager, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.villagers[id]
	return v, ok
}

// Animals returns a snapshot of all animals sorted by ID.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (m *Manager) Animals() []*Animal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Animal, 0, len(m.animals))
	for _, a := range m.animals {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Villagers returns a snapshot of all villagers sorted by ID.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (m *Manager) Villagers() []*Villager {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Villager, 0, len(m.villagers))
	for _, v := range m.villagers {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Perceive returns the animals strictly within radius blocks of observer,
// nearest first.
//
// Precondition: radius >= 0.
func (m *Manager) Perceive(observer world.Pos, radius int) Visible {
	var seen []*Animal
	for _, a := range m.Animals() {
		if observer.CloserThan(a.Pos, radius) {
			seen = append(seen, a)
		}
	}
	return NewVisible(observer, seen)
}
