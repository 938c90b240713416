package combat

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/evolution/internal/game/status"
)

// BasicAttackName names the ability synthesized for enemies that know nothing else.
const BasicAttackName = "Attack"

// Ability is an action a combatant can take on its turn.
//
// Abilities are shared read-only between combatants; Effect is a template that is
// cloned on every application.
type Ability struct {
	Name     string
	Damage   int
	Heal     int
	Element  Element
	Cooldown float64
	// TargetSelf redirects the ability (and its heal and effect) to the caster.
	TargetSelf bool
	// AreaOfEffect widens the target set to a whole side.
	AreaOfEffect bool
	// PartyWide sends the heal and effect of an area self ability to each member of
	// the caster's side instead of to the caster.
	PartyWide bool
	Effect    *status.Effect
}

// NewBasicAttack returns the default enemy attack: damage 1, no element,
// no cooldown, single opposing target.
func NewBasicAttack() *Ability {
	return &Ability{Name: BasicAttackName, Damage: 1}
}

// HealsSelf reports whether the ability restores the caster's own hit points.
func (a *Ability) HealsSelf() bool { return a.Heal > 0 && a.TargetSelf }

// Validate checks the ability invariants.
//
// Postcondition: nil return guarantees a non-empty name and non-negative amounts and cooldown.
func (a *Ability) Validate() error {
	if a.Name == "" {
		return errors.New("combat.Ability: name must not be empty")
	}
	if a.Damage < 0 {
		return fmt.Errorf("combat.Ability %q: damage must be >= 0, got %d", a.Name, a.Damage)
	}
	if a.Heal < 0 {
		return fmt.Errorf("combat.Ability %q: heal must be >= 0, got %d", a.Name, a.Heal)
	}
	if a.Cooldown < 0 {
		return fmt.Errorf("combat.Ability %q: cooldown must be >= 0, got %g", a.Name, a.Cooldown)
	}
	if a.PartyWide && !(a.AreaOfEffect && a.TargetSelf) {
		return fmt.Errorf("combat.Ability %q: party_wide requires target_self and area_of_effect", a.Name)
	}
	return nil
}
