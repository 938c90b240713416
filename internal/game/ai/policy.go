// Package ai implements the enemy decision policy for ATB encounters.
//
// The policy picks a target among living players, then scores every ready ability
// and takes the best one. Difficulty scales how aggressively scores are weighted.
package ai

import (
	"fmt"
	"math"
	"strings"

	"github.com/cory-johannsen/evolution/internal/game/combat"
	"github.com/cory-johannsen/evolution/internal/game/dice"
)

// Difficulty is the enemy AI tier.
type Difficulty int

const (
	Easy Difficulty = iota
	Normal
	Hard
)

// String returns the configuration label of the tier.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Normal:
		return "normal"
	case Hard:
		return "hard"
	default:
		return "unknown"
	}
}

// Aggressiveness returns the score multiplier of the tier.
//
// Postcondition: Returns 0.5, 1.0 or 1.5 for Easy, Normal and Hard; 1.0 otherwise.
func (d Difficulty) Aggressiveness() float64 {
	switch d {
	case Easy:
		return 0.5
	case Hard:
		return 1.5
	default:
		return 1.0
	}
}

// ParseDifficulty converts a case-insensitive label into a Difficulty.
//
// Postcondition: Returns an error for anything other than easy, normal or hard.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "normal":
		return Normal, nil
	case "hard":
		return Hard, nil
	default:
		return Normal, fmt.Errorf("unknown difficulty %q", s)
	}
}

// ScoreAdjuster may rescale the heuristic score of an ability before selection.
// It runs on the battle loop and must not retain or mutate its arguments.
type ScoreAdjuster interface {
	AdjustScore(enemy, target *combat.Combatant, ability *combat.Ability, score float64) float64
}

// Decision is the outcome of one enemy turn's deliberation.
// A nil Ability means the enemy passes.
type Decision struct {
	Ability *combat.Ability
	Target  *combat.Combatant
	Score   float64
}

// Pass reports whether no action was chosen.
func (d Decision) Pass() bool { return d.Ability == nil }

// Policy is the enemy decision heuristic.
type Policy struct {
	difficulty Difficulty
	src        dice.Source
	adjuster   ScoreAdjuster
}

// NewPolicy creates a Policy for difficulty drawing random choices from src.
//
// Precondition: src must be non-nil.
func NewPolicy(difficulty Difficulty, src dice.Source) *Policy {
	return &Policy{difficulty: difficulty, src: src}
}

// WithAdjuster installs a score hook and returns p.
func (p *Policy) WithAdjuster(a ScoreAdjuster) *Policy {
	p.adjuster = a
	return p
}

// Difficulty returns the configured tier.
func (p *Policy) Difficulty() Difficulty { return p.difficulty }

// SelectTarget picks a living player. Easy chooses uniformly at random; Normal and
// Hard choose the lowest current HP, first in roster order on ties.
//
// Postcondition: Returns nil iff no player has HP > 0.
func (p *Policy) SelectTarget(players []*combat.Combatant) *combat.Combatant {
	var living []*combat.Combatant
	for _, pl := range players {
		if !pl.IsIncapacitated() {
			living = append(living, pl)
		}
	}
	if len(living) == 0 {
		return nil
	}
	if p.difficulty == Easy {
		return living[dice.Pick(p.src, len(living))]
	}
	weakest := living[0]
	for _, pl := range living[1:] {
		if pl.HP < weakest.HP {
			weakest = pl
		}
	}
	return weakest
}

// Score rates ability for enemy against target before difficulty scaling.
// A self heal is worth missing HP times heal; anything else is worth the damage it
// would deal to its effective target; with no target it is worth nothing.
func Score(enemy, target *combat.Combatant, ability *combat.Ability) float64 {
	if ability.HealsSelf() {
		return float64((enemy.MaxHP - enemy.HP) * ability.Heal)
	}
	effective := target
	if ability.TargetSelf {
		effective = enemy
	}
	if effective == nil {
		return 0
	}
	return float64(combat.CalculateDamage(enemy, effective, ability))
}

// Decide runs one enemy turn's deliberation against the player roster.
//
// Cooldowns on enemy decrease by combat.CooldownStep exactly once per call. An enemy
// without abilities permanently learns the basic attack. The chosen ability's cooldown
// starts immediately.
//
// Precondition: enemy must be non-nil; players is in roster order.
// Postcondition: Decision.Pass() is true when no player is alive or no ability is ready.
func (p *Policy) Decide(enemy *combat.Combatant, players []*combat.Combatant) Decision {
	target := p.SelectTarget(players)
	enemy.DecrementCooldowns(combat.CooldownStep)
	if len(enemy.Abilities) == 0 {
		enemy.Abilities = append(enemy.Abilities, combat.NewBasicAttack())
	}
	if target == nil {
		return Decision{}
	}

	best := Decision{Score: math.Inf(-1)}
	mult := p.difficulty.Aggressiveness()
	for _, ability := range enemy.ReadyAbilities() {
		score := Score(enemy, target, ability) * mult
		if p.adjuster != nil {
			score = p.adjuster.AdjustScore(enemy, target, ability, score)
		}
		if score > best.Score {
			best = Decision{Ability: ability, Target: target, Score: score}
		}
	}
	if best.Ability == nil {
		return Decision{}
	}
	if best.Ability.TargetSelf {
		best.Target = enemy
	}
	enemy.SetCooldown(best.Ability.Name, best.Ability.Cooldown)
	return best
}
