package battle

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/evolution/internal/game/ai"
	"github.com/cory-johannsen/evolution/internal/game/atb"
	"github.com/cory-johannsen/evolution/internal/game/combat"
)

// SessionConfig configures a Session.
type SessionConfig struct {
	TickInterval time.Duration
	Heartbeat    time.Duration
	SettleDelay  time.Duration
	Logger       *zap.Logger
	Policy       *ai.Policy
}

// Session runs a Battle on its own loop goroutine and serializes external calls into it.
//
// Listeners registered with Subscribe run on the loop goroutine; they must hand work
// that calls back into the Session to another goroutine.
type Session struct {
	battle *Battle
	inbox  chan func()

	mu      sync.Mutex
	started bool
	stopped bool
	exited  chan struct{}
}

// NewSession creates a Session whose battle ticks every cfg.TickInterval.
//
// Postcondition: zero durations in cfg fall back to atb.DefaultTickInterval and
// atb.DefaultHeartbeat.
func NewSession(cfg SessionConfig) *Session {
	interval := cfg.TickInterval
	if interval <= 0 {
		interval = atb.DefaultTickInterval
	}
	heartbeat := cfg.Heartbeat
	if heartbeat <= 0 {
		heartbeat = atb.DefaultHeartbeat
	}
	s := &Session{
		inbox:  make(chan func()),
		exited: make(chan struct{}),
	}
	s.battle = New(Options{
		Logger:      cfg.Logger,
		Policy:      cfg.Policy,
		SettleDelay: cfg.SettleDelay,
		Schedule:    s.schedule,
		NewScheduler: func(state *combat.BattleState, h atb.Handler) *atb.Scheduler {
			return atb.NewScheduler(state, h, interval, heartbeat)
		},
	})
	return s
}

// ID returns the battle identifier.
func (s *Session) ID() string { return s.battle.ID.String() }

// Subscribe registers l for the battle's events. Safe before and after Start.
func (s *Session) Subscribe(l Listener) (unsubscribe func()) { return s.battle.Subscribe(l) }

// Start validates the roster and launches the loop. Cancelling ctx aborts the battle.
//
// Postcondition: On error Done is closed and the session can not be reused. Start
// after Stop returns ErrBattleOver.
func (s *Session) Start(ctx context.Context, enemy *combat.Combatant, players []*combat.Combatant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrBattleOver
	}
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true
	if err := s.battle.Start(enemy, players); err != nil {
		close(s.exited)
		return err
	}
	go s.run(ctx)
	return nil
}

func (s *Session) run(ctx context.Context) {
	defer close(s.exited)
	s.battle.Scheduler().Run(ctx, s.inbox)
	// The loop is gone; nothing else touches the battle now.
	s.battle.Stop()
}

// ChooseAbility answers the open ability request of player id.
//
// Postcondition: Returns the battle's selection error, ErrBattleOver once the loop
// has exited, or ctx.Err().
func (s *Session) ChooseAbility(ctx context.Context, id int, name string) error {
	return s.call(ctx, func() error { return s.battle.Choose(id, name) })
}

// Stop aborts the battle and waits for the loop to acknowledge. Safe to call multiple times.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.started = true
		s.stopped = true
		s.battle.Stop()
		close(s.exited)
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()
	err := s.call(ctx, func() error {
		s.battle.Stop()
		return nil
	})
	if errors.Is(err, ErrBattleOver) {
		return nil
	}
	return err
}

// Done is closed once the loop has exited.
func (s *Session) Done() <-chan struct{} { return s.exited }

// Result returns how the battle ended.
//
// Precondition: Done must be closed.
func (s *Session) Result() Result { return s.battle.Result() }

// call runs fn on the loop goroutine and waits for its result.
func (s *Session) call(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return ErrNotStarted
	}
	reply := make(chan error, 1)
	select {
	case s.inbox <- func() { reply <- fn() }:
	case <-s.exited:
		return ErrBattleOver
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// schedule arms a settle timer whose callback re-enters the loop.
func (s *Session) schedule(d time.Duration, fn func()) (cancel func()) {
	t := NewSettleTimer(d, func() {
		select {
		case s.inbox <- fn:
		case <-s.exited:
		}
	})
	return t.Stop
}
