package scripting

import (
	"github.com/cory-johannsen/evolution/internal/game/combat"
)

// ScoreHook is the Lua global consulted when the enemy AI scores an ability.
const ScoreHook = "score_ability"

// Adjuster adapts a scope's score_ability hook to the enemy AI's score hook.
type Adjuster struct {
	m     *Manager
	scope string
}

// Adjuster returns a score adjuster bound to scope. Scopes without a VM fall
// back to the global VM and then to the unmodified score.
func (m *Manager) Adjuster(scope string) *Adjuster {
	return &Adjuster{m: m, scope: scope}
}

// AdjustScore implements ai.ScoreAdjuster.
func (a *Adjuster) AdjustScore(enemy, target *combat.Combatant, ability *combat.Ability, score float64) float64 {
	var t *CombatantInfo
	if target != nil {
		info := InfoOf(target)
		t = &info
	}
	return a.m.ScoreAbility(a.scope, InfoOf(enemy), t, AbilityInfoOf(ability), score)
}

// InfoOf snapshots c for a Lua callback.
func InfoOf(c *combat.Combatant) CombatantInfo {
	info := CombatantInfo{
		ID:      c.ID,
		Name:    c.Name,
		HP:      c.HP,
		MaxHP:   c.MaxHP,
		Attack:  c.Attack,
		Defense: c.Defense,
		Gauge:   c.Gauge,
	}
	for _, e := range c.Effects {
		info.Effects = append(info.Effects, e.Name)
	}
	return info
}

// AbilityInfoOf snapshots a for a Lua callback.
func AbilityInfoOf(a *combat.Ability) AbilityInfo {
	return AbilityInfo{
		Name:         a.Name,
		Damage:       a.Damage,
		Heal:         a.Heal,
		Element:      string(a.Element),
		Cooldown:     a.Cooldown,
		TargetSelf:   a.TargetSelf,
		AreaOfEffect: a.AreaOfEffect,
	}
}
