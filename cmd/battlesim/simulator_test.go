package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/evolution/internal/config"
	"github.com/cory-johannsen/evolution/internal/game/combat"
	"github.com/cory-johannsen/evolution/internal/game/content"
)

// fastConfig runs battles on a 1ms tick with a tiny gauge so a turn takes a few ticks.
func fastConfig() config.Config {
	root := filepath.Join("..", "..")
	return config.Config{
		Logging: config.LoggingConfig{Level: "info", Format: "json"},
		Battle: config.BattleConfig{
			TickInterval:      time.Millisecond,
			HeartbeatInterval: 10 * time.Millisecond,
			GaugeMax:          0.005,
			Difficulty:        "hard",
			Seed:              7,
		},
		Content: config.ContentConfig{
			Dir:              filepath.Join(root, "content"),
			ScriptsDir:       filepath.Join(root, "content", "scripts"),
			InstructionLimit: 10000,
		},
	}
}

func newTestSimulator(t *testing.T, cfg config.Config, logger *zap.Logger) *simulator {
	t.Helper()
	require.NoError(t, cfg.Validate())
	catalog, err := content.Load(cfg.Content.Dir)
	require.NoError(t, err)
	return newSimulator(cfg, catalog, logger)
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSimulator_RunsEncounterToCompletion(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sim := newTestSimulator(t, fastConfig(), zap.New(core))
	ctx := testContext(t)

	result, err := sim.Run(ctx, "training")
	require.NoError(t, err)
	assert.False(t, result.Aborted)
	assert.NotEqual(t, combat.Ongoing, result.Outcome)

	assert.NotZero(t, logs.FilterMessage("battle started").Len())
	assert.Equal(t, 1, logs.FilterMessage("battle ended").Len())
	requested := logs.Filter(func(e observer.LoggedEntry) bool {
		return e.ContextMap()["event"] == "ability_requested"
	})
	assert.NotZero(t, requested.Len())
	assert.Zero(t, logs.FilterMessage("autopilot choice failed").Len())
}

func TestSimulator_ScriptedEncounter(t *testing.T) {
	sim := newTestSimulator(t, fastConfig(), zap.NewNop())
	ctx := testContext(t)

	result, err := sim.Run(ctx, "troll_bridge")
	require.NoError(t, err)
	assert.False(t, result.Aborted)
	assert.NotEqual(t, combat.Ongoing, result.Outcome)
}

func TestSimulator_UnknownEncounter(t *testing.T) {
	sim := newTestSimulator(t, fastConfig(), zap.NewNop())
	_, err := sim.Run(context.Background(), "no_such_place")
	assert.Error(t, err)
}

func TestSimulator_CancelAborts(t *testing.T) {
	cfg := fastConfig()
	cfg.Battle.GaugeMax = 1000
	sim := newTestSimulator(t, cfg, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := sim.Run(ctx, "training")
	require.NoError(t, err)
	assert.True(t, result.Aborted)
}

func TestSimulator_MissingScriptsDirIsIgnored(t *testing.T) {
	cfg := fastConfig()
	cfg.Content.ScriptsDir = t.TempDir()
	sim := newTestSimulator(t, cfg, zap.NewNop())
	ctx := testContext(t)

	result, err := sim.Run(ctx, "troll_bridge")
	require.NoError(t, err)
	assert.NotEqual(t, combat.Ongoing, result.Outcome)
}
