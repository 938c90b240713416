// Package content loads the YAML catalog of abilities, status effects, enemies,
// player classes and encounters, and builds fresh combatants from it.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/evolution/internal/game/combat"
)

// AbilityDef defines an ability. Effect names a status effect template by id.
type AbilityDef struct {
	ID           string  `yaml:"id"`
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description"`
	Damage       int     `yaml:"damage"`
	Heal         int     `yaml:"heal"`
	Element      string  `yaml:"element"`
	Cooldown     float64 `yaml:"cooldown"`
	TargetSelf   bool    `yaml:"target_self"`
	AreaOfEffect bool    `yaml:"area_of_effect"`
	PartyWide    bool    `yaml:"party_wide"`
	Effect       string  `yaml:"effect"`
}

// Validate checks the definition's own invariants; references are checked by Load.
//
// Postcondition: Returns nil iff ID and Name are non-empty, amounts and cooldown
// are non-negative, and Element is a known element.
func (d *AbilityDef) Validate() error {
	if d.ID == "" {
		return errors.New("ability: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("ability %q: name must not be empty", d.ID)
	}
	if d.Damage < 0 || d.Heal < 0 {
		return fmt.Errorf("ability %q: damage and heal must be >= 0", d.ID)
	}
	if d.Cooldown < 0 {
		return fmt.Errorf("ability %q: cooldown must be >= 0", d.ID)
	}
	if _, err := combat.ParseElement(d.Element); err != nil {
		return fmt.Errorf("ability %q: %w", d.ID, err)
	}
	return nil
}

// EnemyDef defines an enemy archetype.
type EnemyDef struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	MaxHP       int                `yaml:"max_hp"`
	Attack      int                `yaml:"attack"`
	Defense     int                `yaml:"defense"`
	Speed       float64            `yaml:"speed"`
	GaugeMax    float64            `yaml:"gauge_max"`
	Resistances map[string]float64 `yaml:"resistances"`
	Abilities   []string           `yaml:"abilities"`
	// Script is the scripting scope consulted for score adjustments; empty uses the global scope.
	Script string `yaml:"script"`
}

// Validate checks the definition's own invariants.
//
// Postcondition: Returns nil iff ID and Name are non-empty, MaxHP >= 1, Speed and
// GaugeMax >= 0, and every resistance names a known element with a multiplier >= 0.
func (d *EnemyDef) Validate() error {
	if d.ID == "" {
		return errors.New("enemy: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("enemy %q: name must not be empty", d.ID)
	}
	if d.MaxHP < 1 {
		return fmt.Errorf("enemy %q: max_hp must be >= 1", d.ID)
	}
	if d.Speed < 0 || d.GaugeMax < 0 {
		return fmt.Errorf("enemy %q: speed and gauge_max must be >= 0", d.ID)
	}
	for name, mult := range d.Resistances {
		el, err := combat.ParseElement(name)
		if err != nil {
			return fmt.Errorf("enemy %q: %w", d.ID, err)
		}
		if el == combat.ElementNone {
			return fmt.Errorf("enemy %q: resistance needs an element", d.ID)
		}
		if mult < 0 {
			return fmt.Errorf("enemy %q: resistance %q must be >= 0", d.ID, name)
		}
	}
	return nil
}

// ClassDef defines a playable class: base stats and starting abilities.
type ClassDef struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	MaxHP       int      `yaml:"max_hp"`
	Attack      int      `yaml:"attack"`
	Defense     int      `yaml:"defense"`
	Speed       float64  `yaml:"speed"`
	Abilities   []string `yaml:"abilities"`
}

// Validate checks the definition's own invariants.
//
// Postcondition: Returns nil iff ID and Name are non-empty, MaxHP >= 1, Speed >= 0
// and at least one ability is listed.
func (d *ClassDef) Validate() error {
	if d.ID == "" {
		return errors.New("class: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("class %q: name must not be empty", d.ID)
	}
	if d.MaxHP < 1 {
		return fmt.Errorf("class %q: max_hp must be >= 1", d.ID)
	}
	if d.Speed < 0 {
		return fmt.Errorf("class %q: speed must be >= 0", d.ID)
	}
	if len(d.Abilities) == 0 {
		return fmt.Errorf("class %q: at least one ability is required", d.ID)
	}
	return nil
}

// PartyMember places one character of a class into an encounter.
type PartyMember struct {
	Name  string `yaml:"name"`
	Class string `yaml:"class"`
}

// EncounterDef pairs an enemy with a party.
type EncounterDef struct {
	ID    string        `yaml:"id"`
	Name  string        `yaml:"name"`
	Enemy string        `yaml:"enemy"`
	Party []PartyMember `yaml:"party"`
}

// Validate checks the definition's own invariants.
//
// Postcondition: Returns nil iff ID and Enemy are non-empty and the party has at
// least one member, each with a name and a class.
func (d *EncounterDef) Validate() error {
	if d.ID == "" {
		return errors.New("encounter: id must not be empty")
	}
	if d.Enemy == "" {
		return fmt.Errorf("encounter %q: enemy must not be empty", d.ID)
	}
	if len(d.Party) == 0 {
		return fmt.Errorf("encounter %q: party must not be empty", d.ID)
	}
	for i, m := range d.Party {
		if m.Name == "" || m.Class == "" {
			return fmt.Errorf("encounter %q: party member %d needs a name and a class", d.ID, i)
		}
	}
	return nil
}

// validator is implemented by every definition type.
type validator interface {
	Validate() error
}

// decode parses a single definition from raw YAML bytes, rejecting unknown fields.
func decode[T any, PT interface {
	*T
	validator
}](data []byte) (*T, error) {
	var def T
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if err := PT(&def).Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// loadDir reads all *.yaml files in dir, one definition per file. A missing
// directory yields no definitions when optional is set.
//
// Postcondition: Returns all definitions or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func loadDir[T any, PT interface {
	*T
	validator
}](dir string, optional bool) ([]*T, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading content dir %q: %w", dir, err)
	}
	var defs []*T
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		def, err := decode[T, PT](data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}
