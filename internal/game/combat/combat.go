// Package combat implements the combatant model and the ability resolution
// engine for ATB encounters.
package combat

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/evolution/internal/game/status"
)

// DefaultGaugeMax is the action gauge threshold used when a combatant does not set one.
const DefaultGaugeMax = 5.0

// CooldownStep is the amount every cooldown decays at the start of its owner's turn.
const CooldownStep = 1.0

// Element is a damage element tag. The zero value means no element.
type Element string

const (
	ElementNone  Element = ""
	ElementFire  Element = "fire"
	ElementIce   Element = "ice"
	ElementBolt  Element = "bolt"
	ElementHoly  Element = "holy"
	ElementShade Element = "shade"
)

// ParseElement converts a case-insensitive label into an Element. The empty
// string and "none" mean ElementNone.
func ParseElement(s string) (Element, error) {
	switch el := Element(strings.ToLower(strings.TrimSpace(s))); el {
	case ElementNone, "none":
		return ElementNone, nil
	case ElementFire, ElementIce, ElementBolt, ElementHoly, ElementShade:
		return el, nil
	default:
		return ElementNone, fmt.Errorf("unknown element %q", s)
	}
}

// Combatant is one participant in an encounter: a player character or the enemy.
//
// Invariant: 0 <= HP <= MaxHP; 0 <= Gauge <= GaugeMax; every cooldown >= 0.
type Combatant struct {
	ID      int
	Name    string
	HP      int
	MaxHP   int
	Attack  int
	Defense int
	Speed   float64
	Gauge   float64
	// GaugeMax is the readiness threshold; zero means DefaultGaugeMax.
	GaugeMax  float64
	Abilities []*Ability
	// Cooldowns maps ability name to turns remaining. Entries appear as abilities are used.
	Cooldowns map[string]float64
	// Effects are applied in list order on every status tick.
	Effects []*status.Effect
	// Resistances multiplies offense per element; a missing entry means 1.0.
	Resistances map[Element]float64
}

// MaxGauge returns the effective readiness threshold.
//
// Postcondition: Returns GaugeMax when positive, DefaultGaugeMax otherwise.
func (c *Combatant) MaxGauge() float64 {
	if c.GaugeMax > 0 {
		return c.GaugeMax
	}
	return DefaultGaugeMax
}

// IsIncapacitated reports whether the combatant has no hit points left.
func (c *Combatant) IsIncapacitated() bool { return c.HP <= 0 }

// IsReady reports whether the gauge has reached its threshold.
func (c *Combatant) IsReady() bool { return c.Gauge >= c.MaxGauge() }

// AddGauge advances the gauge by amount, clamped to MaxGauge.
//
// Precondition: amount >= 0.
// Postcondition: 0 <= Gauge <= MaxGauge().
func (c *Combatant) AddGauge(amount float64) {
	limit := c.MaxGauge()
	c.Gauge += amount
	if c.Gauge > limit {
		c.Gauge = limit
	}
	if c.Gauge < 0 {
		c.Gauge = 0
	}
}

// ResetGauge empties the action gauge.
func (c *Combatant) ResetGauge() { c.Gauge = 0 }

// ApplyDamage reduces HP by amount, flooring at zero.
//
// Precondition: amount must be >= 0.
// Postcondition: HP >= 0.
func (c *Combatant) ApplyDamage(amount int) {
	if amount <= 0 {
		return
	}
	c.HP -= amount
	if c.HP < 0 {
		c.HP = 0
	}
}

// ApplyHeal raises HP by amount, capping at MaxHP.
//
// Precondition: amount must be >= 0.
// Postcondition: HP <= MaxHP.
func (c *Combatant) ApplyHeal(amount int) {
	if amount <= 0 {
		return
	}
	c.HP += amount
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
}

// SpeedBonus returns the net speed modifier of all active effects.
func (c *Combatant) SpeedBonus() float64 {
	total := 0.0
	for _, e := range c.Effects {
		total += e.NetSpeed()
	}
	return total
}

// AttackBonus returns the summed attack bonus of all active effects.
func (c *Combatant) AttackBonus() float64 {
	total := 0.0
	for _, e := range c.Effects {
		total += e.AttackBonus
	}
	return total
}

// DefenseBonus returns the summed defense bonus of all active effects.
func (c *Combatant) DefenseBonus() float64 {
	total := 0.0
	for _, e := range c.Effects {
		total += e.DefenseBonus
	}
	return total
}

// GaugeRate returns how much gauge the combatant gains per simulated second.
// Negative net speed never drains the gauge.
func (c *Combatant) GaugeRate() float64 {
	rate := c.Speed + c.SpeedBonus()
	if rate < 0 {
		return 0
	}
	return rate
}

// Resistance returns the offense multiplier for element.
//
// Postcondition: Returns 1.0 for ElementNone or when no entry exists.
func (c *Combatant) Resistance(el Element) float64 {
	if el == ElementNone || c.Resistances == nil {
		return 1.0
	}
	if m, ok := c.Resistances[el]; ok {
		return m
	}
	return 1.0
}

// TickStatus applies one turn of every active effect in list order: damage
// (floored at 0), then heal (capped at MaxHP), then decrements Remaining.
// Effects with no turns left are dropped.
//
// Postcondition: every retained effect has Remaining > 0.
func (c *Combatant) TickStatus() {
	next := make([]*status.Effect, 0, len(c.Effects))
	for _, e := range c.Effects {
		if e.DamagePerTurn > 0 {
			c.ApplyDamage(e.DamagePerTurn)
		}
		if e.HealPerTurn > 0 {
			c.ApplyHeal(e.HealPerTurn)
		}
		e.Remaining--
		if !e.Expired() {
			next = append(next, e)
		}
	}
	c.Effects = next
}

// AddEffect attaches a private copy of tmpl.
//
// Postcondition: the attached effect is never the same instance as tmpl.
func (c *Combatant) AddEffect(tmpl *status.Effect) {
	if tmpl == nil {
		return
	}
	c.Effects = append(c.Effects, tmpl.Clone())
}

// CooldownOf returns the remaining cooldown for the named ability.
func (c *Combatant) CooldownOf(name string) float64 {
	return c.Cooldowns[name]
}

// SetCooldown starts the named ability's cooldown.
//
// Postcondition: CooldownOf(name) == max(turns, 0).
func (c *Combatant) SetCooldown(name string, turns float64) {
	if c.Cooldowns == nil {
		c.Cooldowns = make(map[string]float64)
	}
	if turns < 0 {
		turns = 0
	}
	c.Cooldowns[name] = turns
}

// DecrementCooldowns reduces every cooldown by step, flooring at zero.
//
// Postcondition: every cooldown >= 0.
func (c *Combatant) DecrementCooldowns(step float64) {
	for name, cd := range c.Cooldowns {
		cd -= step
		if cd < 0 {
			cd = 0
		}
		c.Cooldowns[name] = cd
	}
}

// Ability returns the known ability named name, or nil.
func (c *Combatant) Ability(name string) *Ability {
	for _, a := range c.Abilities {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// ReadyAbilities returns the abilities whose cooldown is zero, in list order.
func (c *Combatant) ReadyAbilities() []*Ability {
	var out []*Ability
	for _, a := range c.Abilities {
		if c.CooldownOf(a.Name) <= 0 {
			out = append(out, a)
		}
	}
	return out
}
