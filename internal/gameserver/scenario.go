package gameserver

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/petcare/internal/game/brain"
	"github.com/cory-johannsen/petcare/internal/game/inventory"
	"github.com/cory-johannsen/petcare/internal/game/npc"
	"github.com/cory-johannsen/petcare/internal/game/world"
)

// Scenario is the initial population of a village.
type Scenario struct {
	Name      string         `yaml:"name"`
	Villagers  []VillagerSpec  `yaml:"villagers"`
	Animals    []AnimalSpec    `yaml:"animals"`
	Departures []DepartureSpec `yaml:"departures"`
}

// ItemSpec is a quantity of one item.
type ItemSpec struct {
	Item     string `yaml:"item"`
	Quantity int    `yaml:"quantity"`
}

// VillagerSpec describes one villager. An empty ID is replaced by a UUID.
type VillagerSpec struct {
	ID            string     `yaml:"id"`
	Name          string     `yaml:"name"`
	Pos           world.Pos  `yaml:"pos"`
	InventorySize int        `yaml:"inventory_size"`
	Inventory     []ItemSpec `yaml:"inventory"`
	MainHand      string     `yaml:"main_hand"`
}

// AnimalSpec describes one animal. Health 0 means full health. An owner that
// is not a villager of the scenario makes a villager-tamed animal abandoned.
type AnimalSpec struct {
	ID              string    `yaml:"id"`
	Species         string    `yaml:"species"`
	Pos             world.Pos `yaml:"pos"`
	Health          int       `yaml:"health"`
	Owner           string    `yaml:"owner"`
	TamedByVillager bool      `yaml:"tamed_by_villager"`
}

// DepartureSpec removes a villager from the village at the start of a tick.
// Villager names a scenario villager by ID or, failing that, by name.
type DepartureSpec struct {
	Villager string `yaml:"villager"`
	Tick     int64  `yaml:"tick"`
}

// resolveVillager returns the index of the scenario villager ref names: an
// exact ID match first, then a unique name match.
func (s *Scenario) resolveVillager(ref string) (int, error) {
	if ref == "" {
		return -1, errors.New("villager must not be empty")
	}
	for i, v := range s.Villagers {
		if v.ID != "" && v.ID == ref {
			return i, nil
		}
	}
	found := -1
	var names []string
	for i, v := range s.Villagers {
		names = append(names, v.Name)
		if v.Name != ref {
			continue
		}
		if found >= 0 {
			return -1, fmt.Errorf("villager name %q is ambiguous", ref)
		}
		found = i
	}
	if found < 0 {
		return -1, errors.New(unknown("villager", ref, names))
	}
	return found, nil
}

// LoadScenario reads and parses a scenario file.
//
// Postcondition: Returns the parsed scenario or an error; the scenario is not
// validated against content.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %q: %w", path, err)
	}
	return LoadScenarioFromBytes(data)
}

// LoadScenarioFromBytes parses a scenario from raw YAML bytes.
func LoadScenarioFromBytes(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	return &s, nil
}

// Validate checks the scenario against c and reports every problem at once.
func (s *Scenario) Validate(c *Content) error {
	var errs []error
	ids := make(map[string]bool)
	claim := func(kind, id string) {
		if id == "" {
			return
		}
		if ids[id] {
			errs = append(errs, fmt.Errorf("%s %q: duplicate id", kind, id))
		}
		ids[id] = true
	}

	for i, v := range s.Villagers {
		claim("villager", v.ID)
		if v.Name == "" {
			errs = append(errs, fmt.Errorf("villager %d: name must not be empty", i))
		}
		if v.InventorySize < 0 {
			errs = append(errs, fmt.Errorf("villager %q: inventory_size must be >= 0", v.Name))
		}
		for _, it := range v.Inventory {
			if _, ok := c.Items.Item(it.Item); !ok {
				errs = append(errs, fmt.Errorf("villager %q: %s", v.Name, unknown("item", it.Item, c.ItemIDs())))
			}
			if it.Quantity < 1 {
				errs = append(errs, fmt.Errorf("villager %q: item %q quantity must be >= 1", v.Name, it.Item))
			}
		}
		if v.MainHand != "" {
			if _, ok := c.Items.Item(v.MainHand); !ok {
				errs = append(errs, fmt.Errorf("villager %q: main_hand: %s", v.Name, unknown("item", v.MainHand, c.ItemIDs())))
			}
		}
	}

	for i, a := range s.Animals {
		claim("animal", a.ID)
		tmpl, ok := c.Species[a.Species]
		if !ok {
			errs = append(errs, fmt.Errorf("animal %d: %s", i, unknown("species", a.Species, c.SpeciesIDs())))
			continue
		}
		if a.Health < 0 || a.Health > tmpl.MaxHealth {
			errs = append(errs, fmt.Errorf("animal %d (%s): health must be 0-%d, got %d", i, a.Species, tmpl.MaxHealth, a.Health))
		}
		if a.TamedByVillager && a.Owner == "" {
			errs = append(errs, fmt.Errorf("animal %d (%s): tamed_by_villager requires an owner", i, a.Species))
		}
	}

	leaving := make(map[int]bool)
	for i, d := range s.Departures {
		if d.Tick < 1 {
			errs = append(errs, fmt.Errorf("departure %d: tick must be >= 1, got %d", i, d.Tick))
		}
		idx, err := s.resolveVillager(d.Villager)
		if err != nil {
			errs = append(errs, fmt.Errorf("departure %d: %w", i, err))
			continue
		}
		if leaving[idx] {
			errs = append(errs, fmt.Errorf("departure %d: villager %q already departs", i, d.Villager))
		}
		leaving[idx] = true
	}
	return errors.Join(errs...)
}

// Populate validates s, adds its villagers and animals to w and schedules its
// departures. behaviors is called once per villager for that villager's own
// behavior instances.
//
// Postcondition: On error w may hold part of the population.
func (s *Scenario) Populate(w *Village, c *Content, behaviors func() ([]brain.Behavior[*npc.Villager], error)) error {
	if err := s.Validate(c); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}

	ids := make([]string, len(s.Villagers))
	for i, vs := range s.Villagers {
		id := vs.ID
		if id == "" {
			id = uuid.New().String()
		}
		ids[i] = id
		size := vs.InventorySize
		if size == 0 {
			size = npc.DefaultInventorySize
		}
		v := npc.NewVillager(id, vs.Name, vs.Pos, size)
		for _, it := range vs.Inventory {
			if err := v.Inventory().Add(it.Item, it.Quantity, c.Items); err != nil {
				return fmt.Errorf("villager %q: %w", vs.Name, err)
			}
		}
		if vs.MainHand != "" {
			v.SetMainHand(inventory.Single(vs.MainHand))
		}
		bs, err := behaviors()
		if err != nil {
			return fmt.Errorf("villager %q: %w", vs.Name, err)
		}
		if err := w.AddVillager(v, bs...); err != nil {
			return err
		}
	}

	for _, as := range s.Animals {
		a, err := w.NPCs().SpawnAnimal(as.ID, c.Species[as.Species], as.Pos)
		if err != nil {
			return err
		}
		if as.Health > 0 {
			a.Health = as.Health
		}
		a.OwnerID = as.Owner
		a.TamedByVillager = as.TamedByVillager
	}

	for _, d := range s.Departures {
		idx, err := s.resolveVillager(d.Villager)
		if err != nil {
			return err
		}
		if err := w.ScheduleDeparture(ids[idx], d.Tick); err != nil {
			return err
		}
	}
	return nil
}
