// Package battle implements the turn state machine of an ATB encounter.
//
// A Battle reacts to scheduler readiness by running player and enemy turns. Player
// turns suspend on an ability request until Choose is called; enemy turns are decided
// by the AI policy and settle for a fixed delay before the enemy's gauge resets. Every
// method must be called from the goroutine that drives the battle's scheduler; Session
// provides a goroutine-safe front for live play.
package battle

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/evolution/internal/game/ai"
	"github.com/cory-johannsen/evolution/internal/game/atb"
	"github.com/cory-johannsen/evolution/internal/game/combat"
	"github.com/cory-johannsen/evolution/internal/game/dice"
)

// Phase is the state of the turn state machine.
type Phase int

const (
	// PhaseIdle means no turn is active and the scheduler is running.
	PhaseIdle Phase = iota
	// PhasePlayerTurn means a player turn is active, usually suspended on a choice.
	PhasePlayerTurn
	// PhaseEnemyTurn means the enemy has acted and is settling.
	PhaseEnemyTurn
	// PhaseEnded is terminal.
	PhaseEnded
)

// String returns a short label for log lines.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePlayerTurn:
		return "player_turn"
	case PhaseEnemyTurn:
		return "enemy_turn"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Result describes how a battle ended.
type Result struct {
	Outcome combat.Outcome
	// Aborted is true when the battle was stopped before either side was wiped out.
	Aborted bool
}

// Options configures a Battle.
type Options struct {
	Logger *zap.Logger
	// Policy decides enemy turns. Nil means a Normal policy over a crypto source.
	Policy *ai.Policy
	// SettleDelay is the pause after an enemy action before its gauge resets.
	SettleDelay time.Duration
	// Schedule defers the end of an enemy turn by SettleDelay. It must not call fn
	// synchronously. Nil, or a zero SettleDelay, ends the turn immediately.
	Schedule ScheduleFunc
	// NewScheduler attaches a gauge scheduler to the state built by Start.
	NewScheduler func(state *combat.BattleState, h atb.Handler) *atb.Scheduler
}

type turn struct {
	enemy bool
	id    int
}

// Battle is the turn state machine of one encounter. It implements atb.Handler.
type Battle struct {
	// ID identifies the encounter in every event and log line.
	ID uuid.UUID

	opts   Options
	logger *zap.Logger
	bus    Bus

	state *combat.BattleState
	sched *atb.Scheduler

	phase  Phase
	actor  int
	prompt bool
	queue  []turn

	cancelSettle func()
	settleGen    int

	started bool
	ended   bool
	result  Result
}

// New creates an unstarted Battle.
//
// Postcondition: Returns a Battle in PhaseIdle with a fresh random ID.
func New(opts Options) *Battle {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Policy == nil {
		opts.Policy = ai.NewPolicy(ai.Normal, dice.NewCryptoSource())
	}
	id := uuid.New()
	return &Battle{
		ID:     id,
		opts:   opts,
		logger: opts.Logger.With(zap.String("battle_id", id.String())),
		phase:  PhaseIdle,
	}
}

// Subscribe registers l for every event this battle emits.
func (b *Battle) Subscribe(l Listener) (unsubscribe func()) { return b.bus.Subscribe(l) }

// Phase returns the current state machine phase.
func (b *Battle) Phase() Phase { return b.phase }

// Actor returns the id of the player whose turn is active.
func (b *Battle) Actor() (int, bool) {
	if b.phase != PhasePlayerTurn {
		return 0, false
	}
	return b.actor, true
}

// Awaiting reports whether an ability request is open.
func (b *Battle) Awaiting() bool { return b.prompt }

// State returns the battle state, or nil before Start.
func (b *Battle) State() *combat.BattleState { return b.state }

// Scheduler returns the attached scheduler, or nil before Start.
func (b *Battle) Scheduler() *atb.Scheduler { return b.sched }

// Ended reports whether the battle reached PhaseEnded.
func (b *Battle) Ended() bool { return b.ended }

// Result returns how the battle ended. It is the zero Result until Ended is true.
func (b *Battle) Result() Result { return b.result }

// Start validates the roster, builds the battle state and attaches the scheduler.
//
// Precondition: Options.NewScheduler must be set; enemy non-nil; players non-empty
// with ids unique across the whole roster, enemy included.
// Postcondition: On success the state is in battle and unpaused. On error nothing
// is emitted and Start may be called again.
func (b *Battle) Start(enemy *combat.Combatant, players []*combat.Combatant) error {
	if b.ended {
		return ErrBattleOver
	}
	if b.started {
		return ErrAlreadyStarted
	}
	if b.opts.NewScheduler == nil {
		return ErrNoScheduler
	}
	if enemy == nil {
		return ErrNoEnemy
	}
	if len(players) == 0 {
		return ErrNoPlayers
	}
	seen := map[int]bool{enemy.ID: true}
	for _, p := range players {
		if p == nil {
			return ErrNoPlayers
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateCombatant, p.ID)
		}
		seen[p.ID] = true
	}

	state, err := combat.NewBattleState(enemy, players)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDuplicateCombatant, err)
	}
	for _, c := range append(state.PlayerList(), enemy) {
		c.AddGauge(0)
	}
	sched := b.opts.NewScheduler(state, b)
	if sched == nil {
		return ErrNoScheduler
	}

	state.InBattle = true
	b.state = state
	b.sched = sched
	b.started = true
	b.logger.Info("battle started",
		zap.String("enemy", enemy.Name),
		zap.Int("players", len(players)),
		zap.String("difficulty", b.opts.Policy.Difficulty().String()),
		zap.Duration("tick_interval", sched.Interval()),
	)
	return nil
}

// PlayerReady queues a player turn. Part of atb.Handler.
func (b *Battle) PlayerReady(id int) {
	if b.ended {
		return
	}
	b.emit(Event{Type: EventPlayerReady, CombatantID: id})
	b.queue = append(b.queue, turn{id: id})
}

// EnemyReady queues an enemy turn. Part of atb.Handler.
func (b *Battle) EnemyReady() {
	if b.ended {
		return
	}
	b.emit(Event{Type: EventEnemyReady})
	b.queue = append(b.queue, turn{enemy: true})
}

// StateChanged forwards the scheduler's refresh signal. Part of atb.Handler.
func (b *Battle) StateChanged() {
	if b.ended {
		return
	}
	b.emit(Event{Type: EventStateChanged})
}

// TickDone starts queued turns. Part of atb.Handler.
func (b *Battle) TickDone() { b.startNext() }

// startNext runs queued turns in arrival order until one suspends or the queue drains.
func (b *Battle) startNext() {
	for !b.ended && b.phase == PhaseIdle && len(b.queue) > 0 {
		next := b.queue[0]
		b.queue = b.queue[1:]
		if next.enemy {
			b.beginEnemyTurn()
		} else {
			b.beginPlayerTurn(next.id)
		}
	}
}

func (b *Battle) beginPlayerTurn(id int) {
	p, ok := b.state.Player(id)
	if !ok || p.IsIncapacitated() {
		b.logger.Debug("skipping turn of incapacitated player", zap.Int("combatant", id))
		return
	}
	b.phase = PhasePlayerTurn
	b.actor = id
	b.state.Paused = true
	b.logger.Debug("player turn", zap.Int("combatant", id), zap.String("name", p.Name))

	p.TickStatus()
	if b.checkTermination() {
		return
	}
	if p.IsIncapacitated() {
		b.finishTurn(p)
		return
	}
	p.DecrementCooldowns(combat.CooldownStep)
	b.emit(Event{Type: EventStateChanged})

	if len(p.ReadyAbilities()) == 0 {
		b.logger.Debug("player has no ready ability", zap.Int("combatant", id))
		b.finishTurn(p)
		return
	}
	b.prompt = true
	b.requestAbility(p)
}

// requestAbility lists every ability of p, cooling down or not; Choose rejects
// the ones that are not ready.
func (b *Battle) requestAbility(p *combat.Combatant) {
	names := make([]string, 0, len(p.Abilities))
	for _, a := range p.Abilities {
		names = append(names, a.Name)
	}
	b.emit(Event{Type: EventAbilityRequested, CombatantID: p.ID, Abilities: names})
}

// Choose answers the open ability request of player id.
//
// Precondition: a player turn for id is awaiting a choice.
// Postcondition: On error the request is re-emitted and the turn stays suspended;
// on success the ability is resolved against the enemy (or its own target set) and
// the battle either ends or returns to PhaseIdle.
func (b *Battle) Choose(id int, name string) error {
	if b.ended {
		return ErrBattleOver
	}
	if b.phase != PhasePlayerTurn || !b.prompt || id != b.actor {
		b.reject(id, name, ErrNotYourTurn)
		return fmt.Errorf("%w: combatant %d", ErrNotYourTurn, id)
	}
	p := b.state.Players[id]
	ability := p.Ability(name)
	if ability == nil {
		b.reject(id, name, ErrInvalidAbility)
		return fmt.Errorf("%w: %q", ErrInvalidAbility, name)
	}
	if p.CooldownOf(ability.Name) > 0 {
		b.reject(id, name, ErrAbilityOnCooldown)
		return fmt.Errorf("%w: %q", ErrAbilityOnCooldown, name)
	}

	b.prompt = false
	b.emit(Event{Type: EventAbilityClosed, CombatantID: id})
	b.resolve(p, b.state.Enemy, ability)
	p.SetCooldown(ability.Name, ability.Cooldown)
	if b.checkTermination() {
		return nil
	}
	b.finishTurn(p)
	b.startNext()
	return nil
}

func (b *Battle) reject(id int, name string, reason error) {
	b.logger.Warn("ability choice rejected",
		zap.Int("combatant", id),
		zap.String("ability", name),
		zap.Error(reason),
	)
	if b.prompt {
		b.requestAbility(b.state.Players[b.actor])
	}
}

func (b *Battle) beginEnemyTurn() {
	e := b.state.Enemy
	b.phase = PhaseEnemyTurn
	b.state.Paused = true
	b.logger.Debug("enemy turn", zap.String("name", e.Name))

	e.TickStatus()
	if b.checkTermination() {
		return
	}
	d := b.opts.Policy.Decide(e, b.state.PlayerList())
	if d.Pass() {
		b.logger.Debug("enemy passes")
		b.emit(Event{Type: EventStateChanged})
	} else {
		b.resolve(e, d.Target, d.Ability)
		if b.checkTermination() {
			return
		}
	}

	if b.opts.Schedule == nil || b.opts.SettleDelay <= 0 {
		b.finishEnemyTurn()
		return
	}
	b.settleGen++
	gen := b.settleGen
	b.cancelSettle = b.opts.Schedule(b.opts.SettleDelay, func() { b.settled(gen) })
}

// settled ends the enemy turn once the settle delay elapses. Stale callbacks are ignored.
func (b *Battle) settled(gen int) {
	if b.ended || b.phase != PhaseEnemyTurn || gen != b.settleGen {
		return
	}
	b.cancelSettle = nil
	b.finishEnemyTurn()
	b.startNext()
}

func (b *Battle) finishEnemyTurn() {
	e := b.state.Enemy
	e.ResetGauge()
	if b.checkTermination() {
		return
	}
	b.finishTurn(e)
}

func (b *Battle) finishTurn(c *combat.Combatant) {
	c.ResetGauge()
	b.state.Paused = false
	b.phase = PhaseIdle
	b.actor = 0
}

func (b *Battle) resolve(caster, nominal *combat.Combatant, ability *combat.Ability) {
	res := combat.Resolve(b.state, caster, nominal, ability)
	b.logger.Debug("ability resolved",
		zap.Int("caster", caster.ID),
		zap.String("ability", ability.Name),
		zap.Int("targets", len(res.Hits)),
		zap.Int("damage", res.TotalDamage()),
	)
	b.emit(Event{Type: EventStateChanged})
}

// checkTermination ends the battle if either side is wiped out.
func (b *Battle) checkTermination() bool {
	outcome := b.state.CheckOutcome()
	if outcome == combat.Ongoing {
		return false
	}
	b.end(outcome, false)
	return true
}

// Stop aborts the battle. Safe to call multiple times.
//
// Postcondition: the battle is in PhaseEnded; exactly one EventBattleEnded has been
// emitted over the battle's lifetime if it was ever started.
func (b *Battle) Stop() {
	if b.ended {
		return
	}
	if !b.started {
		b.ended = true
		b.phase = PhaseEnded
		b.result = Result{Outcome: combat.Ongoing, Aborted: true}
		return
	}
	b.end(combat.Ongoing, true)
}

func (b *Battle) end(outcome combat.Outcome, aborted bool) {
	if b.ended {
		return
	}
	b.ended = true
	b.phase = PhaseEnded
	b.queue = nil
	b.state.InBattle = false
	b.state.Paused = false
	b.sched.Stop()
	if b.cancelSettle != nil {
		b.cancelSettle()
		b.cancelSettle = nil
	}
	if b.prompt {
		b.prompt = false
		b.emit(Event{Type: EventAbilityClosed, CombatantID: b.actor})
	}
	b.result = Result{Outcome: outcome, Aborted: aborted}
	b.logger.Info("battle ended",
		zap.Stringer("outcome", outcome),
		zap.Bool("aborted", aborted),
	)
	b.emit(Event{Type: EventBattleEnded, Victory: outcome == combat.Victory, Aborted: aborted})
}

func (b *Battle) emit(e Event) {
	e.BattleID = b.ID
	b.bus.Emit(e)
}
