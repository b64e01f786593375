// Package npc provides the villager and animal entity model, species
// templates, entity management, and the villager presence tracker.
package npc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SpeciesKind is the closed set of feeding variants an animal species can take.
type SpeciesKind string

const (
	// KindCanine species regain health from food without a sound cue.
	KindCanine SpeciesKind = "canine"
	// KindFeline species play an eating sound and regain health from food.
	KindFeline SpeciesKind = "feline"
	// KindUnfeedable species are never fed; food is still consumed.
	KindUnfeedable SpeciesKind = "unfeedable"
	// KindOther covers every other species.
	KindOther SpeciesKind = "other"
)

var validKinds = map[SpeciesKind]bool{
	KindCanine:     true,
	KindFeline:     true,
	KindUnfeedable: true,
	KindOther:      true,
}

// Template defines an animal species loaded from YAML.
type Template struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Kind        SpeciesKind `yaml:"kind"`
	MaxHealth   int         `yaml:"max_health"`
	// Tameable reports whether wild members of the species can be tamed at all.
	Tameable bool `yaml:"tameable"`
	// Foods lists the item IDs the species accepts as food.
	Foods []string `yaml:"foods"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Kind is a known
// SpeciesKind, MaxHealth >= 1, and Foods holds no empty IDs.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("species template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("species template %q: name must not be empty", t.ID)
	}
	if !validKinds[t.Kind] {
		return fmt.Errorf("species template %q: kind must be one of canine, feline, unfeedable, other; got %q", t.ID, t.Kind)
	}
	if t.MaxHealth < 1 {
		return fmt.Errorf("species template %q: max_health must be >= 1", t.ID)
	}
	for _, f := range t.Foods {
		if f == "" {
			return fmt.Errorf("species template %q: foods must not contain empty ids", t.ID)
		}
	}
	return nil
}

// AcceptsFood reports whether itemDefID is one of the species' foods.
func (t *Template) AcceptsFood(itemDefID string) bool {
	for _, f := range t.Foods {
		if f == itemDefID {
			return true
		}
	}
	return false
}

// LoadTemplateFromBytes parses a single species template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading species dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
