// Package config provides Viper-based configuration loading for the battle
// simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/turnbattle/internal/game/ai"
	"github.com/cory-johannsen/turnbattle/internal/game/battle"
	"github.com/cory-johannsen/turnbattle/internal/game/person"
	"github.com/cory-johannsen/turnbattle/internal/game/victory"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout", or a file path. The battle renderer owns
	// stdout when the simulator runs interactively.
	Output string `mapstructure:"output"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// Enabled turns on persistence of post-battle progress.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// DelaysConfig holds the presentation duration of each event family.
type DelaysConfig struct {
	Action  time.Duration `mapstructure:"action"`
	Skill   time.Duration `mapstructure:"skill"`
	Damage  time.Duration `mapstructure:"damage"`
	Death   time.Duration `mapstructure:"death"`
	Ailment time.Duration `mapstructure:"ailment"`
	Outcome time.Duration `mapstructure:"outcome"`
}

// BattleConfig holds the tunables of action resolution.
type BattleConfig struct {
	MaxActionsPerTurn int          `mapstructure:"max_actions_per_turn"`
	BaseRunChance     float64      `mapstructure:"base_run_chance"`
	RunPcPerPoint     float64      `mapstructure:"run_pc_per_point"`
	AllyRunFactor     float64      `mapstructure:"ally_run_factor"`
	CritMultiplier    float64      `mapstructure:"crit_multiplier"`
	CritPcPerPoint    float64      `mapstructure:"crit_pc_per_point"`
	DodgePcPerPoint   float64      `mapstructure:"dodge_pc_per_point"`
	DefendModifier    float64      `mapstructure:"defend_modifier"`
	GuardModifier     float64      `mapstructure:"guard_modifier"`
	OffenseFactor     float64      `mapstructure:"offense_factor"`
	DefenseFactor     float64      `mapstructure:"defense_factor"`
	DamageVariance    float64      `mapstructure:"damage_variance"`
	QDRegenPercent    int          `mapstructure:"qd_regen_percent"`
	Delays            DelaysConfig `mapstructure:"delays"`
}

// AIConfig holds the weights the AI module draws action types from.
type AIConfig struct {
	RandomSkillFactor   float64 `mapstructure:"random_skill_factor"`
	PrioritySkillFactor float64 `mapstructure:"priority_skill_factor"`
	Variance            float64 `mapstructure:"variance"`
	BaseItemFactor      float64 `mapstructure:"base_item_factor"`
	LeanToItemFactor    float64 `mapstructure:"lean_to_item_factor"`
	GuardFactor         float64 `mapstructure:"guard_factor"`
	DefendFactor        float64 `mapstructure:"defend_factor"`
	RunFactor           float64 `mapstructure:"run_factor"`
	PassFactor          float64 `mapstructure:"pass_factor"`
	// AllyDifficulty drives allies when the simulator runs unattended.
	AllyDifficulty string `mapstructure:"ally_difficulty"`
}

// VictoryConfig holds the reward screen settings.
type VictoryConfig struct {
	ExpFactor    float64       `mapstructure:"exp_factor"`
	PeelFraction float64       `mapstructure:"peel_fraction"`
	Dim          time.Duration `mapstructure:"dim"`
	Header       time.Duration `mapstructure:"header"`
	Slide        time.Duration `mapstructure:"slide"`
}

// LoopConfig holds the frame loop settings.
type LoopConfig struct {
	FramesPerSecond int `mapstructure:"frames_per_second"`
	// MaxFrames stops the loop after this many frames; 0 means unlimited.
	MaxFrames int `mapstructure:"max_frames"`
}

// Interval returns the duration of one frame.
//
// Precondition: FramesPerSecond > 0.
func (l LoopConfig) Interval() time.Duration {
	return time.Second / time.Duration(l.FramesPerSecond)
}

// ContentConfig holds the content directories.
type ContentConfig struct {
	Skills     string `mapstructure:"skills"`
	Items      string `mapstructure:"items"`
	Ailments   string `mapstructure:"ailments"`
	Persons    string `mapstructure:"persons"`
	Encounters string `mapstructure:"encounters"`
	Scripts    string `mapstructure:"scripts"`
	// InstructionLimit bounds each Lua call; 0 means unlimited.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Battle   BattleConfig   `mapstructure:"battle"`
	AI       AIConfig       `mapstructure:"ai"`
	Victory  VictoryConfig  `mapstructure:"victory"`
	Loop     LoopConfig     `mapstructure:"loop"`
	Content  ContentConfig  `mapstructure:"content"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := c.BattleSettings().Validate(); err != nil {
		errs = append(errs, "battle: "+strings.ReplaceAll(err.Error(), "\n", "; "))
	}
	if _, err := ai.ParseDifficulty(c.AI.AllyDifficulty); err != nil {
		errs = append(errs, "ai.ally_difficulty: "+err.Error())
	}
	if err := c.VictorySettings().Validate(); err != nil {
		errs = append(errs, "victory: "+strings.ReplaceAll(err.Error(), "\n", "; "))
	}
	if err := validateLoop(c.Loop); err != nil {
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

// BattleSettings converts the battle and ai sections into battle tunables.
func (c Config) BattleSettings() battle.Config {
	b := c.Battle
	return battle.Config{
		MaxActionsPerTurn: b.MaxActionsPerTurn,
		BaseRunChance:     b.BaseRunChance,
		RunPcPerPoint:     b.RunPcPerPoint,
		AllyRunFactor:     b.AllyRunFactor,
		CritMultiplier:    b.CritMultiplier,
		CritPcPerPoint:    b.CritPcPerPoint,
		DodgePcPerPoint:   b.DodgePcPerPoint,
		DefendModifier:    b.DefendModifier,
		GuardModifier:     b.GuardModifier,
		OffenseFactor:     b.OffenseFactor,
		DefenseFactor:     b.DefenseFactor,
		DamageVariance:    b.DamageVariance,
		QDRegenPercent:    b.QDRegenPercent,
		Delays: battle.Delays{
			Action:  b.Delays.Action,
			Skill:   b.Delays.Skill,
			Damage:  b.Delays.Damage,
			Death:   b.Delays.Death,
			Ailment: b.Delays.Ailment,
			Outcome: b.Delays.Outcome,
		},
		AI: c.AIFactors(),
	}
}

// AIFactors converts the ai section into AI module weights.
func (c Config) AIFactors() ai.Factors {
	a := c.AI
	return ai.Factors{
		RandomSkill:   a.RandomSkillFactor,
		PrioritySkill: a.PrioritySkillFactor,
		Variance:      a.Variance,
		BaseItem:      a.BaseItemFactor,
		LeanToItem:    a.LeanToItemFactor,
		Guard:         a.GuardFactor,
		Defend:        a.DefendFactor,
		Run:           a.RunFactor,
		Pass:          a.PassFactor,
	}
}

// VictorySettings converts the victory section.
func (c Config) VictorySettings() victory.Config {
	v := c.Victory
	return victory.Config{ExpFactor: v.ExpFactor, PeelFraction: v.PeelFraction, Dim: v.Dim, Header: v.Header, Slide: v.Slide}
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
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
	if l.Output == "" {
		return fmt.Errorf("logging.output must not be empty")
	}
	return nil
}

func validateLoop(l LoopConfig) error {
	var errs []string
	if l.FramesPerSecond < 1 || l.FramesPerSecond > 1000 {
		errs = append(errs, fmt.Sprintf("loop.frames_per_second must be 1-1000, got %d", l.FramesPerSecond))
	}
	if l.MaxFrames < 0 {
		errs = append(errs, fmt.Sprintf("loop.max_frames must be >= 0, got %d", l.MaxFrames))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	for _, d := range []struct{ name, dir string }{
		{"skills", c.Skills},
		{"items", c.Items},
		{"ailments", c.Ailments},
		{"persons", c.Persons},
		{"encounters", c.Encounters},
	} {
		if d.dir == "" {
			errs = append(errs, fmt.Sprintf("content.%s must not be empty", d.name))
		}
	}
	if c.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("content.instruction_limit must be >= 0, got %d", c.InstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
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

	// Environment variable overrides with TURNBATTLE_ prefix
	v.SetEnvPrefix("TURNBATTLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

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

// Defaults returns a Viper instance holding only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "turnbattle")
	v.SetDefault("database.password", "turnbattle")
	v.SetDefault("database.name", "turnbattle")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	b := battle.DefaultConfig()
	v.SetDefault("battle.max_actions_per_turn", person.MaxActionsPerTurn)
	v.SetDefault("battle.base_run_chance", b.BaseRunChance)
	v.SetDefault("battle.run_pc_per_point", b.RunPcPerPoint)
	v.SetDefault("battle.ally_run_factor", b.AllyRunFactor)
	v.SetDefault("battle.crit_multiplier", b.CritMultiplier)
	v.SetDefault("battle.crit_pc_per_point", b.CritPcPerPoint)
	v.SetDefault("battle.dodge_pc_per_point", b.DodgePcPerPoint)
	v.SetDefault("battle.defend_modifier", b.DefendModifier)
	v.SetDefault("battle.guard_modifier", b.GuardModifier)
	v.SetDefault("battle.offense_factor", b.OffenseFactor)
	v.SetDefault("battle.defense_factor", b.DefenseFactor)
	v.SetDefault("battle.damage_variance", b.DamageVariance)
	v.SetDefault("battle.qd_regen_percent", b.QDRegenPercent)
	v.SetDefault("battle.delays.action", "250ms")
	v.SetDefault("battle.delays.skill", "400ms")
	v.SetDefault("battle.delays.damage", "500ms")
	v.SetDefault("battle.delays.death", "700ms")
	v.SetDefault("battle.delays.ailment", "400ms")
	v.SetDefault("battle.delays.outcome", "1500ms")

	f := ai.DefaultFactors()
	v.SetDefault("ai.random_skill_factor", f.RandomSkill)
	v.SetDefault("ai.priority_skill_factor", f.PrioritySkill)
	v.SetDefault("ai.variance", f.Variance)
	v.SetDefault("ai.base_item_factor", f.BaseItem)
	v.SetDefault("ai.lean_to_item_factor", f.LeanToItem)
	v.SetDefault("ai.guard_factor", f.Guard)
	v.SetDefault("ai.defend_factor", f.Defend)
	v.SetDefault("ai.run_factor", f.Run)
	v.SetDefault("ai.pass_factor", f.Pass)
	v.SetDefault("ai.ally_difficulty", "random")

	v.SetDefault("victory.exp_factor", 0.60)
	v.SetDefault("victory.peel_fraction", 0.01)
	v.SetDefault("victory.dim", "500ms")
	v.SetDefault("victory.header", "400ms")
	v.SetDefault("victory.slide", "300ms")

	v.SetDefault("loop.frames_per_second", 60)
	v.SetDefault("loop.max_frames", 0)

	v.SetDefault("content.skills", "content/skills")
	v.SetDefault("content.items", "content/items")
	v.SetDefault("content.ailments", "content/ailments")
	v.SetDefault("content.persons", "content/persons")
	v.SetDefault("content.encounters", "content/encounters")
	v.SetDefault("content.scripts", "scripts")
	v.SetDefault("content.instruction_limit", 100000)
}
