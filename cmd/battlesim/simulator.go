package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cory-johannsen/evolution/internal/config"
	"github.com/cory-johannsen/evolution/internal/game/ai"
	"github.com/cory-johannsen/evolution/internal/game/battle"
	"github.com/cory-johannsen/evolution/internal/game/combat"
	"github.com/cory-johannsen/evolution/internal/game/content"
	"github.com/cory-johannsen/evolution/internal/game/dice"
	"github.com/cory-johannsen/evolution/internal/observability"
	"github.com/cory-johannsen/evolution/internal/scripting"
)

// globalScriptsDir is the scripts_dir subdirectory loaded into the fallback VM.
const globalScriptsDir = "global"

// simulator runs encounters from a catalog under one configuration.
type simulator struct {
	cfg     config.Config
	catalog *content.Catalog
	logger  *zap.Logger
	src     dice.Source
}

// newSimulator wires the dice source: seeded when cfg.Battle.Seed is set, crypto otherwise.
func newSimulator(cfg config.Config, catalog *content.Catalog, logger *zap.Logger) *simulator {
	var src dice.Source
	if cfg.Battle.Seed != 0 {
		src = dice.NewSeededSource(cfg.Battle.Seed)
	} else {
		src = dice.NewCryptoSource()
	}
	return &simulator{
		cfg:     cfg,
		catalog: catalog,
		logger:  logger,
		src:     dice.NewLoggedSource(src, logger),
	}
}

// Run plays encounter to completion. Cancelling ctx aborts the battle.
//
// Postcondition: Returns the battle result, or an error if the encounter could not start.
func (s *simulator) Run(ctx context.Context, encounter string) (battle.Result, error) {
	roster, err := s.catalog.Roster(encounter)
	if err != nil {
		return battle.Result{}, err
	}
	if gm := s.cfg.Battle.GaugeMax; gm > 0 {
		roster.Enemy.GaugeMax = gm
		for _, p := range roster.Players {
			p.GaugeMax = gm
		}
	}

	scripts := scripting.NewManager(s.src, s.logger, s.cfg.Content.InstructionLimit)
	defer scripts.Close()
	if err := s.loadScripts(scripts, roster.Script); err != nil {
		return battle.Result{}, err
	}

	policy := ai.NewPolicy(s.cfg.Battle.AIDifficulty(), s.src).
		WithAdjuster(scripts.Adjuster(roster.Script))

	sess := battle.NewSession(battle.SessionConfig{
		TickInterval: s.cfg.Battle.TickInterval,
		Heartbeat:    s.cfg.Battle.HeartbeatInterval,
		SettleDelay:  s.cfg.Battle.SettleDelay,
		Logger:       s.logger.With(zap.String("encounter", encounter)),
		Policy:       policy,
	})
	sess.Subscribe(observability.EventLogger(s.logger))
	sess.Subscribe(s.autopilot(ctx, sess, roster))

	if err := sess.Start(ctx, roster.Enemy, roster.Players); err != nil {
		return battle.Result{}, fmt.Errorf("starting encounter %q: %w", encounter, err)
	}
	<-sess.Done()
	return sess.Result(), nil
}

// loadScripts loads scripts_dir/global and scripts_dir/<scope>. Either directory may be absent.
func (s *simulator) loadScripts(m *scripting.Manager, scope string) error {
	root := s.cfg.Content.ScriptsDir
	if root == "" {
		return nil
	}
	global := filepath.Join(root, globalScriptsDir)
	if isDir(global) {
		if err := m.LoadGlobal(global); err != nil {
			return err
		}
	}
	if scope == "" {
		return nil
	}
	if dir := filepath.Join(root, scope); isDir(dir) {
		return m.Load(scope, dir)
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// autopilot answers every ability request with ai.Autopilot. The choice is computed on
// the loop goroutine, where reading combatant state is safe, and submitted from a
// separate goroutine because listeners must not call back into the session.
func (s *simulator) autopilot(ctx context.Context, sess *battle.Session, roster *content.Roster) battle.Listener {
	players := make(map[int]*combat.Combatant, len(roster.Players))
	for _, p := range roster.Players {
		players[p.ID] = p
	}
	var pilot ai.Autopilot
	return func(ev battle.Event) {
		if ev.Type != battle.EventAbilityRequested {
			return
		}
		p, ok := players[ev.CombatantID]
		if !ok {
			return
		}
		choice := pilot.Choose(p, roster.Enemy)
		if choice == nil {
			return
		}
		id, name := p.ID, choice.Name
		go func() {
			err := sess.ChooseAbility(ctx, id, name)
			if err != nil && !errors.Is(err, battle.ErrBattleOver) && !errors.Is(err, context.Canceled) {
				s.logger.Warn("autopilot choice failed",
					zap.Int("combatant", id),
					zap.String("ability", name),
					zap.Error(err),
				)
			}
		}()
	}
}
