package battle

import "errors"

// Configuration errors returned by Start. A battle that fails to start never emits events.
var (
	ErrNoScheduler        = errors.New("battle: no scheduler attached")
	ErrNoEnemy            = errors.New("battle: no enemy")
	ErrNoPlayers          = errors.New("battle: no players")
	ErrDuplicateCombatant = errors.New("battle: duplicate combatant id")
	ErrAlreadyStarted     = errors.New("battle: already started")
)

// ErrNotStarted is returned by Session calls made before Start.
var ErrNotStarted = errors.New("battle: session not started")

// Selection errors. The ability request stays open after any of them.
var (
	ErrInvalidAbility    = errors.New("battle: invalid ability")
	ErrAbilityOnCooldown = errors.New("battle: ability on cooldown")
	ErrNotYourTurn       = errors.New("battle: not your turn")
	ErrBattleOver        = errors.New("battle: battle is over")
)
