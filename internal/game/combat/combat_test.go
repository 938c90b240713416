package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/evolution/internal/game/combat"
	"github.com/cory-johannsen/evolution/internal/game/status"
)

func newCombatant(id, hp int) *combat.Combatant {
	return &combat.Combatant{ID: id, Name: "c", HP: hp, MaxHP: hp, Speed: 1}
}

func TestCombatant_MaxGauge_Default(t *testing.T) {
	c := newCombatant(1, 10)
	assert.Equal(t, combat.DefaultGaugeMax, c.MaxGauge())
	c.GaugeMax = 8
	assert.Equal(t, 8.0, c.MaxGauge())
}

func TestCombatant_AddGauge_Clamps(t *testing.T) {
	c := newCombatant(1, 10)
	c.AddGauge(3)
	assert.False(t, c.IsReady())
	c.AddGauge(10)
	assert.Equal(t, combat.DefaultGaugeMax, c.Gauge)
	assert.True(t, c.IsReady())
	c.ResetGauge()
	assert.Zero(t, c.Gauge)
}

func TestCombatant_ApplyDamage_FloorsAtZero(t *testing.T) {
	c := newCombatant(1, 10)
	c.ApplyDamage(25)
	assert.Equal(t, 0, c.HP)
	assert.True(t, c.IsIncapacitated())
}

func TestCombatant_ApplyHeal_CapsAtMax(t *testing.T) {
	c := newCombatant(1, 10)
	c.HP = 4
	c.ApplyHeal(100)
	assert.Equal(t, 10, c.HP)
}

func TestCombatant_Bonuses_SumEffects(t *testing.T) {
	c := newCombatant(1, 10)
	c.Effects = []*status.Effect{
		{Name: "haste", Remaining: 2, SpeedUp: 2, AttackBonus: 1},
		{Name: "slow", Remaining: 2, SpeedDown: 0.5, DefenseBonus: 3},
	}
	assert.InDelta(t, 1.5, c.SpeedBonus(), 1e-9)
	assert.InDelta(t, 1.0, c.AttackBonus(), 1e-9)
	assert.InDelta(t, 3.0, c.DefenseBonus(), 1e-9)
	assert.InDelta(t, 2.5, c.GaugeRate(), 1e-9)
}

func TestCombatant_GaugeRate_NeverNegative(t *testing.T) {
	c := newCombatant(1, 10)
	c.Effects = []*status.Effect{{Name: "freeze", Remaining: 1, SpeedDown: 5}}
	assert.Zero(t, c.GaugeRate())
}

func TestCombatant_Resistance_DefaultsToOne(t *testing.T) {
	c := newCombatant(1, 10)
	assert.Equal(t, 1.0, c.Resistance(combat.ElementFire))
	c.Resistances = map[combat.Element]float64{combat.ElementFire: 0.5}
	assert.Equal(t, 0.5, c.Resistance(combat.ElementFire))
	assert.Equal(t, 1.0, c.Resistance(combat.ElementIce))
	assert.Equal(t, 1.0, c.Resistance(combat.ElementNone))
}

// Scenario D: remaining=2, damagePerTurn=1 on hp=10 leaves hp=8 and no effect after two ticks.
func TestCombatant_TickStatus_DamageOverTimeExpires(t *testing.T) {
	c := newCombatant(1, 10)
	c.AddEffect(&status.Effect{Name: "bleed", Remaining: 2, DamagePerTurn: 1})

	c.TickStatus()
	assert.Equal(t, 9, c.HP)
	require.Len(t, c.Effects, 1)
	assert.Equal(t, 1, c.Effects[0].Remaining)

	c.TickStatus()
	assert.Equal(t, 8, c.HP)
	assert.Empty(t, c.Effects)
}

func TestCombatant_TickStatus_DamageThenHeal(t *testing.T) {
	c := newCombatant(1, 10)
	c.HP = 1
	c.AddEffect(&status.Effect{Name: "mixed", Remaining: 3, DamagePerTurn: 5, HealPerTurn: 2})
	c.TickStatus()
	// damage floors at 0 before heal applies
	assert.Equal(t, 2, c.HP)
}

func TestCombatant_TickStatus_PreservesOrder(t *testing.T) {
	c := newCombatant(1, 10)
	c.AddEffect(&status.Effect{Name: "a", Remaining: 3})
	c.AddEffect(&status.Effect{Name: "b", Remaining: 1})
	c.AddEffect(&status.Effect{Name: "c", Remaining: 2})
	c.TickStatus()
	require.Len(t, c.Effects, 2)
	assert.Equal(t, "a", c.Effects[0].Name)
	assert.Equal(t, "c", c.Effects[1].Name)
}

func TestCombatant_AddEffect_PrivateCopy(t *testing.T) {
	tmpl := &status.Effect{Name: "burn", Remaining: 3, DamagePerTurn: 1}
	a := newCombatant(1, 10)
	b := newCombatant(2, 10)
	a.AddEffect(tmpl)
	b.AddEffect(tmpl)
	a.TickStatus()
	assert.Equal(t, 3, tmpl.Remaining)
	assert.Equal(t, 2, a.Effects[0].Remaining)
	assert.Equal(t, 3, b.Effects[0].Remaining)
	assert.NotSame(t, a.Effects[0], b.Effects[0])
}

func TestCombatant_Cooldowns(t *testing.T) {
	c := newCombatant(1, 10)
	assert.Zero(t, c.CooldownOf("fireball"))
	c.SetCooldown("fireball", 2)
	c.SetCooldown("clamped", -4)
	assert.Equal(t, 0.0, c.CooldownOf("clamped"))
	c.DecrementCooldowns(combat.CooldownStep)
	assert.Equal(t, 1.0, c.CooldownOf("fireball"))
	c.DecrementCooldowns(combat.CooldownStep)
	c.DecrementCooldowns(combat.CooldownStep)
	assert.Equal(t, 0.0, c.CooldownOf("fireball"))
}

func TestCombatant_AbilityLookup(t *testing.T) {
	slash := &combat.Ability{Name: "Slash", Damage: 2}
	mend := &combat.Ability{Name: "Mend", Heal: 3, TargetSelf: true, Cooldown: 2}
	c := newCombatant(1, 10)
	c.Abilities = []*combat.Ability{slash, mend}

	assert.Same(t, mend, c.Ability("Mend"))
	assert.Nil(t, c.Ability("Nope"))

	c.SetCooldown("Mend", 2)
	ready := c.ReadyAbilities()
	require.Len(t, ready, 1)
	assert.Same(t, slash, ready[0])
}

func TestAbility_Validate(t *testing.T) {
	assert.NoError(t, combat.NewBasicAttack().Validate())
	assert.Error(t, (&combat.Ability{}).Validate())
	assert.Error(t, (&combat.Ability{Name: "x", Damage: -1}).Validate())
	assert.Error(t, (&combat.Ability{Name: "x", Heal: -1}).Validate())
	assert.Error(t, (&combat.Ability{Name: "x", Cooldown: -1}).Validate())
}

func TestNewBasicAttack(t *testing.T) {
	a := combat.NewBasicAttack()
	assert.Equal(t, combat.BasicAttackName, a.Name)
	assert.Equal(t, 1, a.Damage)
	assert.Zero(t, a.Cooldown)
	assert.False(t, a.TargetSelf)
	assert.False(t, a.AreaOfEffect)
	assert.Equal(t, combat.ElementNone, a.Element)
}

func TestPropertyCombatant_HPStaysInBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		max := rapid.IntRange(1, 200).Draw(rt, "max")
		c := &combat.Combatant{ID: 1, HP: max, MaxHP: max}
		n := rapid.IntRange(1, 30).Draw(rt, "ops")
		for i := 0; i < n; i++ {
			amt := rapid.IntRange(0, 300).Draw(rt, "amt")
			before := c.HP
			if rapid.Bool().Draw(rt, "heal") {
				c.ApplyHeal(amt)
				if c.HP < before {
					rt.Fatalf("heal lowered hp: %d -> %d", before, c.HP)
				}
			} else {
				c.ApplyDamage(amt)
				if c.HP > before {
					rt.Fatalf("damage raised hp: %d -> %d", before, c.HP)
				}
			}
			if c.HP < 0 || c.HP > c.MaxHP {
				rt.Fatalf("hp %d out of [0,%d]", c.HP, c.MaxHP)
			}
		}
	})
}

func TestPropertyCombatant_CooldownsNeverNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := &combat.Combatant{ID: 1}
		c.SetCooldown("a", rapid.Float64Range(0, 5).Draw(rt, "a"))
		c.SetCooldown("b", rapid.Float64Range(0, 5).Draw(rt, "b"))
		steps := rapid.IntRange(0, 10).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			c.DecrementCooldowns(combat.CooldownStep)
		}
		for name, cd := range c.Cooldowns {
			if cd < 0 {
				rt.Fatalf("cooldown %q negative: %g", name, cd)
			}
		}
	})
}

func TestParseElement(t *testing.T) {
	for label, want := range map[string]combat.Element{
		"":      combat.ElementNone,
		"none":  combat.ElementNone,
		"Fire":  combat.ElementFire,
		" ice ": combat.ElementIce,
		"SHADE": combat.ElementShade,
	} {
		got, err := combat.ParseElement(label)
		require.NoError(t, err, label)
		assert.Equal(t, want, got, label)
	}
	_, err := combat.ParseElement("poison")
	assert.Error(t, err)
}
