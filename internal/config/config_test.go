package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/evolution/internal/game/ai"
)

func validConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Battle: BattleConfig{
			TickInterval:      500 * time.Millisecond,
			HeartbeatInterval: time.Second,
			SettleDelay:       time.Second,
			Difficulty:        "normal",
		},
		Content: ContentConfig{
			Dir:              "content",
			ScriptsDir:       "content/scripts",
			InstructionLimit: 1000,
		},
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: console
battle:
  tick_interval: 100ms
  heartbeat_interval: 2s
  settle_delay: 0s
  gauge_max: 8
  difficulty: hard
  seed: 42
content:
  dir: /data/content
  scripts_dir: /data/scripts
  instruction_limit: 5000
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 100*time.Millisecond, cfg.Battle.TickInterval)
	assert.Equal(t, 2*time.Second, cfg.Battle.HeartbeatInterval)
	assert.Zero(t, cfg.Battle.SettleDelay)
	assert.Equal(t, 8.0, cfg.Battle.GaugeMax)
	assert.Equal(t, ai.Hard, cfg.Battle.AIDifficulty())
	assert.Equal(t, int64(42), cfg.Battle.Seed)
	assert.Equal(t, "/data/content", cfg.Content.Dir)
	assert.Equal(t, 5000, cfg.Content.InstructionLimit)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: warn\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 500*time.Millisecond, cfg.Battle.TickInterval)
	assert.Equal(t, time.Second, cfg.Battle.HeartbeatInterval)
	assert.Equal(t, time.Second, cfg.Battle.SettleDelay)
	assert.Equal(t, ai.Normal, cfg.Battle.AIDifficulty())
	assert.Equal(t, "content", cfg.Content.Dir)
	assert.Equal(t, 100000, cfg.Content.InstructionLimit)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("EVOLUTION_BATTLE_DIFFICULTY", "easy")
	t.Setenv("EVOLUTION_LOGGING_FORMAT", "console")
	path := writeConfig(t, "battle:\n  difficulty: hard\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ai.Easy, cfg.Battle.AIDifficulty())
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, "battle:\n  difficulty: nightmare\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "battle.difficulty")
}

func TestLoadFromViper(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("battle.seed", 7)
	cfg, err := LoadFromViper(v)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Battle.Seed)
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateBattle(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BattleConfig)
	}{
		{"zero tick", func(b *BattleConfig) { b.TickInterval = 0 }},
		{"negative heartbeat", func(b *BattleConfig) { b.HeartbeatInterval = -time.Second }},
		{"negative settle", func(b *BattleConfig) { b.SettleDelay = -1 }},
		{"negative gauge", func(b *BattleConfig) { b.GaugeMax = -1 }},
		{"unknown difficulty", func(b *BattleConfig) { b.Difficulty = "brutal" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg.Battle)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateZeroSettleDelayAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.Battle.SettleDelay = 0
	assert.NoError(t, cfg.Validate())
}

func TestValidateContent(t *testing.T) {
	cfg := validConfig()
	cfg.Content.Dir = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Content.InstructionLimit = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateAggregatesViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "loud"
	cfg.Battle.TickInterval = 0
	cfg.Content.Dir = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "battle.tick_interval")
	assert.Contains(t, err.Error(), "content.dir")
}

// Property-based tests

func TestPropertyPositiveTimingsAccepted(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tick := rapid.Int64Range(1, int64(time.Minute)).Draw(t, "tick")
		heartbeat := rapid.Int64Range(1, int64(time.Minute)).Draw(t, "heartbeat")
		settle := rapid.Int64Range(0, int64(time.Minute)).Draw(t, "settle")
		cfg := validConfig()
		cfg.Battle.TickInterval = time.Duration(tick)
		cfg.Battle.HeartbeatInterval = time.Duration(heartbeat)
		cfg.Battle.SettleDelay = time.Duration(settle)
		if err := cfg.Validate(); err != nil {
			t.Fatalf("valid timings rejected: %v", err)
		}
	})
}

func TestPropertyNegativeGaugeMaxRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		gauge := rapid.Float64Range(-1000, -0.001).Draw(t, "gauge_max")
		cfg := validConfig()
		cfg.Battle.GaugeMax = gauge
		if cfg.Validate() == nil {
			t.Fatalf("gauge_max %g accepted", gauge)
		}
	})
}
