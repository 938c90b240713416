package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/evolution/internal/game/combat"
)

func TestNewBattleState_PreservesOrder(t *testing.T) {
	enemy := &combat.Combatant{ID: 100, HP: 10, MaxHP: 10}
	s := newState(t, enemy,
		&combat.Combatant{ID: 7, HP: 1, MaxHP: 1},
		&combat.Combatant{ID: 3, HP: 1, MaxHP: 1},
		&combat.Combatant{ID: 5, HP: 1, MaxHP: 1},
	)
	assert.Equal(t, []int{7, 3, 5}, s.Order)
	list := s.PlayerList()
	require.Len(t, list, 3)
	assert.Equal(t, 7, list[0].ID)
	assert.Equal(t, 5, list[2].ID)
	assert.False(t, s.InBattle)
	assert.False(t, s.Paused)
}

func TestNewBattleState_DuplicateID(t *testing.T) {
	enemy := &combat.Combatant{ID: 100, HP: 10, MaxHP: 10}
	_, err := combat.NewBattleState(enemy, []*combat.Combatant{
		{ID: 1, HP: 1, MaxHP: 1},
		{ID: 1, HP: 1, MaxHP: 1},
	})
	assert.Error(t, err)
}

func TestBattleState_LivingPlayers(t *testing.T) {
	enemy := &combat.Combatant{ID: 100, HP: 10, MaxHP: 10}
	s := newState(t, enemy,
		&combat.Combatant{ID: 1, HP: 0, MaxHP: 5},
		&combat.Combatant{ID: 2, HP: 3, MaxHP: 5},
	)
	living := s.LivingPlayers()
	require.Len(t, living, 1)
	assert.Equal(t, 2, living[0].ID)
	assert.True(t, s.HasLivingPlayers())
	p, ok := s.Player(1)
	require.True(t, ok)
	assert.True(t, p.IsIncapacitated())
	_, ok = s.Player(42)
	assert.False(t, ok)
	assert.True(t, s.IsEnemy(enemy))
	assert.False(t, s.IsEnemy(p))
}

func TestBattleState_CheckOutcome(t *testing.T) {
	enemy := &combat.Combatant{ID: 100, HP: 10, MaxHP: 10}
	p1 := &combat.Combatant{ID: 1, HP: 5, MaxHP: 5}
	p2 := &combat.Combatant{ID: 2, HP: 5, MaxHP: 5}
	s := newState(t, enemy, p1, p2)

	assert.Equal(t, combat.Ongoing, s.CheckOutcome())

	p1.HP = 0
	assert.Equal(t, combat.Ongoing, s.CheckOutcome())

	enemy.HP = 0
	assert.Equal(t, combat.Victory, s.CheckOutcome())
}

// Scenario E: a simultaneous wipe of both sides is a defeat.
func TestBattleState_CheckOutcome_SimultaneousWipeIsDefeat(t *testing.T) {
	enemy := &combat.Combatant{ID: 100, HP: 0, MaxHP: 10}
	s := newState(t, enemy,
		&combat.Combatant{ID: 1, HP: 0, MaxHP: 5},
		&combat.Combatant{ID: 2, HP: 0, MaxHP: 5},
	)
	assert.Equal(t, combat.Defeat, s.CheckOutcome())
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "ongoing", combat.Ongoing.String())
	assert.Equal(t, "victory", combat.Victory.String())
	assert.Equal(t, "defeat", combat.Defeat.String())
	assert.Equal(t, "unknown", combat.Outcome(99).String())
}
