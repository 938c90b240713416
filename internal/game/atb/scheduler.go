// Package atb implements the action-time-battle scheduler: per-combatant gauges that
// fill at a speed-derived rate and raise edge-triggered readiness events.
package atb

import (
	"context"
	"sync"
	"time"

	"github.com/cory-johannsen/evolution/internal/game/combat"
)

// DefaultTickInterval is the fixed simulated step between gauge updates.
const DefaultTickInterval = 500 * time.Millisecond

// DefaultHeartbeat is the longest gap between two state-changed notifications.
const DefaultHeartbeat = time.Second

// Handler receives scheduler notifications. All calls happen on the loop goroutine,
// in the order readiness, state change, tick done.
type Handler interface {
	// PlayerReady fires once each time a player's gauge crosses its threshold.
	PlayerReady(id int)
	// EnemyReady fires once each time the enemy's gauge crosses its threshold.
	EnemyReady()
	// StateChanged is the coarse UI refresh signal.
	StateChanged()
	// TickDone fires after every evaluated tick so queued turns can start.
	TickDone()
}

// Scheduler advances gauges at a fixed interval while its battle is running and unpaused.
//
// Invariant: a readiness event fires at most once per threshold crossing.
// Scheduler is not safe for concurrent use except for Stop and Done; Tick and the
// continuations posted to Run's inbox execute on one goroutine.
type Scheduler struct {
	state     *combat.BattleState
	handler   Handler
	interval  time.Duration
	heartbeat time.Duration

	notified      map[int]bool
	lastWhole     map[int]int
	enemyNotified bool
	lastEnemy     int
	sinceNotify   time.Duration

	stopOnce sync.Once
	done     chan struct{}
}

// NewScheduler creates a Scheduler over state reporting to handler.
//
// Precondition: state and handler must be non-nil; interval and heartbeat must be > 0.
// Postcondition: Returns a Scheduler with every readiness flag cleared.
func NewScheduler(state *combat.BattleState, handler Handler, interval, heartbeat time.Duration) *Scheduler {
	if interval <= 0 {
		panic("atb.NewScheduler: interval must be > 0")
	}
	if heartbeat <= 0 {
		panic("atb.NewScheduler: heartbeat must be > 0")
	}
	s := &Scheduler{
		state:     state,
		handler:   handler,
		interval:  interval,
		heartbeat: heartbeat,
		notified:  make(map[int]bool, len(state.Order)),
		lastWhole: make(map[int]int, len(state.Order)),
		done:      make(chan struct{}),
	}
	for _, id := range state.Order {
		s.notified[id] = false
		s.lastWhole[id] = int(state.Players[id].Gauge)
	}
	if state.Enemy != nil {
		s.lastEnemy = int(state.Enemy.Gauge)
	}
	return s
}

// Interval returns the fixed tick interval.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Stopped reports whether Stop has been called.
func (s *Scheduler) Stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed by Stop.
func (s *Scheduler) Done() <-chan struct{} { return s.done }

// Stop detaches the scheduler. Safe to call multiple times and from any goroutine.
//
// Postcondition: Tick is a no-op and Run returns without evaluating another tick.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
}

// advance fills one gauge. It reports whether the gauge was below its threshold
// before the step and whether a living combatant is at its threshold after it.
func (s *Scheduler) advance(c *combat.Combatant, dt float64) (wasBelow, ready bool) {
	if c.IsIncapacitated() {
		return false, false
	}
	if c.Gauge < c.MaxGauge() {
		wasBelow = true
		c.AddGauge(c.GaugeRate() * dt)
	}
	return wasBelow, c.IsReady()
}

// Tick performs one fixed step: player gauges in roster order, then the enemy gauge,
// then the heartbeat check. Nothing happens while the battle is paused, over, or the
// scheduler is stopped, although the heartbeat clock keeps running.
//
// Postcondition: every gauge is in [0, MaxGauge()].
func (s *Scheduler) Tick() {
	if s.Stopped() {
		return
	}
	s.sinceNotify += s.interval
	if !s.state.InBattle || s.state.Paused {
		return
	}
	dt := s.interval.Seconds()

	for _, id := range s.state.Order {
		wasBelow, ready := s.advance(s.state.Players[id], dt)
		if wasBelow {
			s.notified[id] = false
		}
		if ready && !s.notified[id] {
			s.notified[id] = true
			s.handler.PlayerReady(id)
		}
	}

	if enemy := s.state.Enemy; enemy != nil {
		wasBelow, ready := s.advance(enemy, dt)
		if wasBelow {
			s.enemyNotified = false
		}
		if ready && !s.enemyNotified {
			s.enemyNotified = true
			s.handler.EnemyReady()
		}
	}

	if s.Stopped() {
		return
	}
	changed := false
	for _, id := range s.state.Order {
		whole := int(s.state.Players[id].Gauge)
		if whole != s.lastWhole[id] {
			s.lastWhole[id] = whole
			changed = true
		}
	}
	if enemy := s.state.Enemy; enemy != nil {
		if whole := int(enemy.Gauge); whole != s.lastEnemy {
			s.lastEnemy = whole
			changed = true
		}
	}
	if changed || s.sinceNotify >= s.heartbeat {
		s.sinceNotify = 0
		s.handler.StateChanged()
	}
	s.handler.TickDone()
}

// Run drives Tick every interval and executes continuations from inbox on the same
// goroutine, until ctx is cancelled or Stop is called.
//
// Precondition: Run must be called at most once.
// Postcondition: no tick or continuation runs after Run returns.
func (s *Scheduler) Run(ctx context.Context, inbox <-chan func()) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case fn := <-inbox:
			fn()
		case <-ticker.C:
			s.Tick()
		}
	}
}
