package combat

// Hit records what one ability did to one member of its target set.
type Hit struct {
	TargetID int
	// Damage is the hit point loss actually applied to the target.
	Damage int
	// Healed is the hit point gain actually applied. Self abilities heal the caster.
	Healed int
	// EffectApplied names the status effect attached, empty when none.
	EffectApplied string
}

// Resolution is the outcome of one ability use.
type Resolution struct {
	CasterID int
	Ability  string
	Hits     []Hit
}

// TotalDamage sums the damage dealt across all hits.
func (r Resolution) TotalDamage() int {
	total := 0
	for _, h := range r.Hits {
		total += h.Damage
	}
	return total
}

// sideOf returns the living members of the side caster belongs to (own) or the
// other side. The caster itself is always included in its own side.
func sideOf(s *BattleState, caster *Combatant, own bool) []*Combatant {
	casterIsEnemy := s.IsEnemy(caster)
	wantEnemySide := casterIsEnemy == own
	if wantEnemySide {
		if s.Enemy == nil {
			return nil
		}
		if s.Enemy == caster || !s.Enemy.IsIncapacitated() {
			return []*Combatant{s.Enemy}
		}
		return nil
	}
	var out []*Combatant
	for _, p := range s.PlayerList() {
		if p == caster || !p.IsIncapacitated() {
			out = append(out, p)
		}
	}
	return out
}

// Targets derives the effective target set for ability.
//
// For area abilities the whole own side (TargetSelf) or the whole opposing side
// is returned and nominal is ignored; otherwise the set is {caster} or {nominal}.
// Incapacitated members of a side are skipped.
//
// Precondition: s and caster must be non-nil.
// Postcondition: Returns nil when a single-target ability has no nominal target.
func Targets(s *BattleState, caster, nominal *Combatant, ability *Ability) []*Combatant {
	switch {
	case ability.AreaOfEffect:
		return sideOf(s, caster, ability.TargetSelf)
	case ability.TargetSelf:
		return []*Combatant{caster}
	case nominal != nil:
		return []*Combatant{nominal}
	default:
		return nil
	}
}

// Resolve applies ability from caster to every member of its target set. Each
// member is processed independently: damage, then heal, then status effect.
// Damage lands on the member. The heal and effect of a self ability land on the
// caster once per member, unless the ability is PartyWide.
//
// Precondition: s, caster and ability must be non-nil.
// Postcondition: every touched combatant satisfies 0 <= HP <= MaxHP.
func Resolve(s *BattleState, caster, nominal *Combatant, ability *Ability) Resolution {
	res := Resolution{CasterID: caster.ID, Ability: ability.Name}
	for _, target := range Targets(s, caster, nominal, ability) {
		hit := Hit{TargetID: target.ID}
		if ability.Damage > 0 {
			before := target.HP
			target.ApplyDamage(CalculateDamage(caster, target, ability))
			hit.Damage = before - target.HP
		}
		recipient := target
		if ability.TargetSelf && !ability.PartyWide {
			recipient = caster
		}
		if ability.Heal > 0 {
			before := recipient.HP
			recipient.ApplyHeal(CalculateHealing(ability))
			hit.Healed = recipient.HP - before
		}
		if ability.Effect != nil && ability.Effect.Remaining > 0 {
			recipient.AddEffect(ability.Effect)
			hit.EffectApplied = ability.Effect.Name
		}
		res.Hits = append(res.Hits, hit)
	}
	return res
}
