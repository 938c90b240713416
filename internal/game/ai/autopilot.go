package ai

import (
	"math"

	"github.com/cory-johannsen/evolution/internal/game/combat"
)

// Autopilot answers ability prompts on behalf of a player in headless runs.
// It never mutates state; the battle applies cooldowns once the choice is accepted.
type Autopilot struct{}

// Choose returns the ready ability of player with the best score against enemy.
// Self heals are only considered while the player is hurt.
//
// Postcondition: Returns nil iff player has no ready ability.
func (Autopilot) Choose(player, enemy *combat.Combatant) *combat.Ability {
	var best *combat.Ability
	bestScore := math.Inf(-1)
	for _, a := range player.ReadyAbilities() {
		s := Score(player, enemy, a)
		if a.HealsSelf() && player.HP >= player.MaxHP {
			s = 0
		}
		if s > bestScore {
			best, bestScore = a, s
		}
	}
	return best
}
