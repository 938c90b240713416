package content

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cory-johannsen/evolution/internal/game/combat"
	"github.com/cory-johannsen/evolution/internal/game/status"
)

// EnemyID is the combatant id given to the enemy of a roster. Players are numbered from 1.
const EnemyID = 1000

// Catalog holds every definition of a content directory with references resolved.
//
// Catalog is immutable after Load and safe for concurrent use. Abilities it hands
// out are shared read-only; every combatant gets its own ability slice.
type Catalog struct {
	Effects    *status.Registry
	abilities  map[string]*combat.Ability
	enemies    map[string]*EnemyDef
	classes    map[string]*ClassDef
	encounters map[string]*EncounterDef
}

// Load reads a content directory laid out as:
//
//	effects/     status effect templates (optional)
//	abilities/   AbilityDef files
//	enemies/     EnemyDef files
//	classes/     ClassDef files
//	encounters/  EncounterDef files (optional)
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a Catalog whose every reference resolves, or an error
// naming the first definition that fails to parse, validate or resolve.
func Load(dir string) (*Catalog, error) {
	effects, err := loadEffects(filepath.Join(dir, "effects"))
	if err != nil {
		return nil, err
	}
	abilityDefs, err := loadDir[AbilityDef](filepath.Join(dir, "abilities"), false)
	if err != nil {
		return nil, err
	}
	enemyDefs, err := loadDir[EnemyDef](filepath.Join(dir, "enemies"), false)
	if err != nil {
		return nil, err
	}
	classDefs, err := loadDir[ClassDef](filepath.Join(dir, "classes"), false)
	if err != nil {
		return nil, err
	}
	encounterDefs, err := loadDir[EncounterDef](filepath.Join(dir, "encounters"), true)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		Effects:    effects,
		abilities:  make(map[string]*combat.Ability, len(abilityDefs)),
		enemies:    make(map[string]*EnemyDef, len(enemyDefs)),
		classes:    make(map[string]*ClassDef, len(classDefs)),
		encounters: make(map[string]*EncounterDef, len(encounterDefs)),
	}
	for _, d := range abilityDefs {
		if _, dup := c.abilities[d.ID]; dup {
			return nil, fmt.Errorf("duplicate ability id %q", d.ID)
		}
		a, err := c.buildAbility(d)
		if err != nil {
			return nil, err
		}
		c.abilities[d.ID] = a
	}
	for _, d := range enemyDefs {
		if _, dup := c.enemies[d.ID]; dup {
			return nil, fmt.Errorf("duplicate enemy id %q", d.ID)
		}
		if err := c.checkAbilities("enemy", d.ID, d.Abilities); err != nil {
			return nil, err
		}
		c.enemies[d.ID] = d
	}
	for _, d := range classDefs {
		if _, dup := c.classes[d.ID]; dup {
			return nil, fmt.Errorf("duplicate class id %q", d.ID)
		}
		if err := c.checkAbilities("class", d.ID, d.Abilities); err != nil {
			return nil, err
		}
		c.classes[d.ID] = d
	}
	for _, d := range encounterDefs {
		if _, dup := c.encounters[d.ID]; dup {
			return nil, fmt.Errorf("duplicate encounter id %q", d.ID)
		}
		if _, ok := c.enemies[d.Enemy]; !ok {
			return nil, fmt.Errorf("encounter %q: unknown enemy %q", d.ID, d.Enemy)
		}
		for _, m := range d.Party {
			if _, ok := c.classes[m.Class]; !ok {
				return nil, fmt.Errorf("encounter %q: unknown class %q", d.ID, m.Class)
			}
		}
		c.encounters[d.ID] = d
	}
	return c, nil
}

// loadEffects treats a missing effects directory as an empty registry.
func loadEffects(dir string) (*status.Registry, error) {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return status.NewRegistry(), nil
	}
	return status.LoadDirectory(dir)
}

func (c *Catalog) buildAbility(d *AbilityDef) (*combat.Ability, error) {
	el, _ := combat.ParseElement(d.Element)
	a := &combat.Ability{
		Name:         d.Name,
		Damage:       d.Damage,
		Heal:         d.Heal,
		Element:      el,
		Cooldown:     d.Cooldown,
		TargetSelf:   d.TargetSelf,
		AreaOfEffect: d.AreaOfEffect,
		PartyWide:    d.PartyWide,
	}
	if d.Effect != "" {
		tmpl, ok := c.Effects.Get(d.Effect)
		if !ok {
			return nil, fmt.Errorf("ability %q: unknown effect %q", d.ID, d.Effect)
		}
		a.Effect = tmpl
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("ability %q: %w", d.ID, err)
	}
	return a, nil
}

func (c *Catalog) checkAbilities(kind, id string, refs []string) error {
	names := make(map[string]bool, len(refs))
	for _, ref := range refs {
		a, ok := c.abilities[ref]
		if !ok {
			return fmt.Errorf("%s %q: unknown ability %q", kind, id, ref)
		}
		if names[a.Name] {
			return fmt.Errorf("%s %q: ability name %q listed twice", kind, id, a.Name)
		}
		names[a.Name] = true
	}
	return nil
}

// Ability returns the shared ability with id.
func (c *Catalog) Ability(id string) (*combat.Ability, bool) {
	a, ok := c.abilities[id]
	return a, ok
}

// Enemy returns the enemy definition with id.
func (c *Catalog) Enemy(id string) (*EnemyDef, bool) {
	d, ok := c.enemies[id]
	return d, ok
}

// Class returns the class definition with id.
func (c *Catalog) Class(id string) (*ClassDef, bool) {
	d, ok := c.classes[id]
	return d, ok
}

// Encounters returns the encounter ids in lexical order.
func (c *Catalog) Encounters() []string {
	ids := make([]string, 0, len(c.encounters))
	for id := range c.encounters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *Catalog) abilityList(refs []string) []*combat.Ability {
	out := make([]*combat.Ability, 0, len(refs))
	for _, ref := range refs {
		out = append(out, c.abilities[ref])
	}
	return out
}

// NewEnemy builds a fresh enemy combatant at full health with an empty gauge.
//
// Postcondition: Returns an error iff id names no enemy.
func (c *Catalog) NewEnemy(id string, combatantID int) (*combat.Combatant, error) {
	d, ok := c.enemies[id]
	if !ok {
		return nil, fmt.Errorf("unknown enemy %q", id)
	}
	e := &combat.Combatant{
		ID:        combatantID,
		Name:      d.Name,
		HP:        d.MaxHP,
		MaxHP:     d.MaxHP,
		Attack:    d.Attack,
		Defense:   d.Defense,
		Speed:     d.Speed,
		GaugeMax:  d.GaugeMax,
		Abilities: c.abilityList(d.Abilities),
	}
	if len(d.Resistances) > 0 {
		e.Resistances = make(map[combat.Element]float64, len(d.Resistances))
		for name, mult := range d.Resistances {
			el, _ := combat.ParseElement(name)
			e.Resistances[el] = mult
		}
	}
	return e, nil
}

// NewPlayer builds a fresh player combatant of class classID.
//
// Postcondition: Returns an error iff classID names no class.
func (c *Catalog) NewPlayer(classID string, combatantID int, name string) (*combat.Combatant, error) {
	d, ok := c.classes[classID]
	if !ok {
		return nil, fmt.Errorf("unknown class %q", classID)
	}
	if name == "" {
		name = d.Name
	}
	return &combat.Combatant{
		ID:        combatantID,
		Name:      name,
		HP:        d.MaxHP,
		MaxHP:     d.MaxHP,
		Attack:    d.Attack,
		Defense:   d.Defense,
		Speed:     d.Speed,
		Abilities: c.abilityList(d.Abilities),
	}, nil
}

// Roster is a ready-to-start encounter.
type Roster struct {
	Name    string
	Enemy   *combat.Combatant
	Players []*combat.Combatant
	// Script is the scripting scope of the enemy; empty means the global scope.
	Script string
}

// Roster builds fresh combatants for encounter id. Players get ids 1..n in party
// order; the enemy gets EnemyID.
//
// Postcondition: Returns an error iff id names no encounter.
func (c *Catalog) Roster(id string) (*Roster, error) {
	d, ok := c.encounters[id]
	if !ok {
		return nil, fmt.Errorf("unknown encounter %q", id)
	}
	enemy, err := c.NewEnemy(d.Enemy, EnemyID)
	if err != nil {
		return nil, err
	}
	r := &Roster{Name: d.Name, Enemy: enemy, Script: c.enemies[d.Enemy].Script}
	for i, m := range d.Party {
		p, err := c.NewPlayer(m.Class, i+1, m.Name)
		if err != nil {
			return nil, err
		}
		r.Players = append(r.Players, p)
	}
	return r, nil
}
