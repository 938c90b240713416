package combat

import "math"

// CalculateDamage returns the hit point loss ability inflicts on defender.
// Formula: round((atk + atkBonus + damage) * resistance - (def + defBonus)),
// rounding halves to even.
//
// Precondition: attacker and defender must be non-nil.
// Postcondition: Returns >= 0; returns 0 for a nil ability.
func CalculateDamage(attacker, defender *Combatant, ability *Ability) int {
	if ability == nil {
		return 0
	}
	atk := float64(attacker.Attack) + attacker.AttackBonus()
	def := float64(defender.Defense) + defender.DefenseBonus()
	raw := (atk+float64(ability.Damage))*defender.Resistance(ability.Element) - def
	return clampRound(raw)
}

// CalculateHealing returns the hit points ability restores.
//
// Postcondition: Returns >= 0; returns 0 for a nil ability.
func CalculateHealing(ability *Ability) int {
	if ability == nil {
		return 0
	}
	return clampRound(float64(ability.Heal))
}

func clampRound(v float64) int {
	n := int(math.RoundToEven(v))
	if n < 0 {
		return 0
	}
	return n
}
