package gameserver

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/cory-johannsen/petcare/internal/game/inventory"
	"github.com/cory-johannsen/petcare/internal/game/npc"
)

// Content is the static game data a village is built from.
type Content struct {
	Species map[string]*npc.Template
	Items   *inventory.Registry
}

// LoadContent reads items/ and species/ under dir.
//
// Precondition: dir must contain readable items/ and species/ directories.
// Postcondition: Returns fully registered content or the first load error.
func LoadContent(dir string) (*Content, error) {
	items, err := inventory.LoadItems(filepath.Join(dir, "items"))
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}
	reg := inventory.NewRegistry()
	for _, it := range items {
		if err := reg.RegisterItem(it); err != nil {
			return nil, err
		}
	}

	templates, err := npc.LoadTemplates(filepath.Join(dir, "species"))
	if err != nil {
		return nil, fmt.Errorf("loading species: %w", err)
	}
	c := &Content{Species: make(map[string]*npc.Template, len(templates)), Items: reg}
	for _, t := range templates {
		if _, dup := c.Species[t.ID]; dup {
			return nil, fmt.Errorf("species %q defined twice", t.ID)
		}
		for _, food := range t.Foods {
			if _, ok := reg.Item(food); !ok {
				return nil, fmt.Errorf("species %q: unknown food item %q", t.ID, food)
			}
		}
		c.Species[t.ID] = t
	}
	return c, nil
}

// SpeciesIDs returns the loaded species IDs in sorted order.
func (c *Content) SpeciesIDs() []string {
	out := make([]string, 0, len(c.Species))
	for id := range c.Species {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
