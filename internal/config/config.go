// Package config provides Viper-based configuration loading for the battle simulator.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/evolution/internal/game/ai"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// BattleConfig holds the timing and AI settings of a battle.
type BattleConfig struct {
	// TickInterval is the fixed simulated step between gauge updates.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// HeartbeatInterval is the longest gap between two state-changed events.
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	// SettleDelay is the pause after an enemy action before gauges resume.
	SettleDelay time.Duration `mapstructure:"settle_delay"`
	// GaugeMax overrides every combatant's readiness threshold when positive.
	GaugeMax float64 `mapstructure:"gauge_max"`
	// Difficulty is the enemy AI tier: "easy", "normal", "hard".
	Difficulty string `mapstructure:"difficulty"`
	// Seed makes dice rolls reproducible when non-zero.
	Seed int64 `mapstructure:"seed"`
}

// AIDifficulty parses Difficulty.
//
// Precondition: Difficulty must have passed Validate.
func (b BattleConfig) AIDifficulty() ai.Difficulty {
	d, err := ai.ParseDifficulty(b.Difficulty)
	if err != nil {
		return ai.Normal
	}
	return d
}

// ContentConfig locates the data catalog and its scripts.
type ContentConfig struct {
	// Dir is the catalog root holding effects, abilities, enemies, classes and encounters.
	Dir string `mapstructure:"dir"`
	// ScriptsDir holds one Lua directory per scope, plus "global".
	ScriptsDir string `mapstructure:"scripts_dir"`
	// InstructionLimit caps the Lua instructions of a single hook call.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Battle  BattleConfig  `mapstructure:"battle"`
	Content ContentConfig `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("battle.tick_interval must be > 0, got %s", b.TickInterval))
	}
	if b.HeartbeatInterval <= 0 {
		errs = append(errs, fmt.Sprintf("battle.heartbeat_interval must be > 0, got %s", b.HeartbeatInterval))
	}
	if b.SettleDelay < 0 {
		errs = append(errs, "battle.settle_delay must not be negative")
	}
	if b.GaugeMax < 0 {
		errs = append(errs, fmt.Sprintf("battle.gauge_max must be >= 0, got %g", b.GaugeMax))
	}
	if _, err := ai.ParseDifficulty(b.Difficulty); err != nil {
		errs = append(errs, fmt.Sprintf("battle.difficulty must be one of [easy, normal, hard], got %q", b.Difficulty))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.Dir == "" {
		errs = append(errs, "content.dir must not be empty")
	}
	if c.InstructionLimit < 1 {
		errs = append(errs, fmt.Sprintf("content.instruction_limit must be >= 1, got %d", c.InstructionLimit))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with EVOLUTION_ prefix
	v.SetEnvPrefix("EVOLUTION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("battle.tick_interval", "500ms")
	v.SetDefault("battle.heartbeat_interval", "1s")
	v.SetDefault("battle.settle_delay", "1s")
	v.SetDefault("battle.gauge_max", 0)
	v.SetDefault("battle.difficulty", "normal")
	v.SetDefault("battle.seed", 0)

	v.SetDefault("content.dir", "content")
	v.SetDefault("content.scripts_dir", "content/scripts")
	v.SetDefault("content.instruction_limit", 100000)
}
