// Package status defines timed status effects that decay once per turn.
package status

// Effect is a timed modifier attached to a combatant.
//
// Invariant: DamagePerTurn >= 0; HealPerTurn >= 0.
// An Effect referenced by an ability is a template; combatants only ever hold
// private copies produced by Clone.
type Effect struct {
	ID            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	Remaining     int     `yaml:"remaining"`
	DamagePerTurn int     `yaml:"damage_per_turn"`
	HealPerTurn   int     `yaml:"heal_per_turn"`
	SpeedUp       float64 `yaml:"speed_up"`
	SpeedDown     float64 `yaml:"speed_down"`
	AttackBonus   float64 `yaml:"attack_bonus"`
	DefenseBonus  float64 `yaml:"defense_bonus"`
}

// Clone returns an independent copy of e, or nil when e is nil.
//
// Postcondition: mutating the copy never affects e.
func (e *Effect) Clone() *Effect {
	if e == nil {
		return nil
	}
	cp := *e
	return &cp
}

// NetSpeed returns SpeedUp - SpeedDown.
func (e *Effect) NetSpeed() float64 { return e.SpeedUp - e.SpeedDown }

// Expired reports whether no turns remain.
func (e *Effect) Expired() bool { return e.Remaining <= 0 }
