package battle

import (
	"errors"
	"fmt"
	"time"

	"github.com/cory-johannsen/turnbattle/internal/game/ai"
	"github.com/cory-johannsen/turnbattle/internal/game/person"
)

// Delays are the presentation durations of each event family.
type Delays struct {
	Action  time.Duration // action begin/end, defend, guard, pass
	Skill   time.Duration // skill and item use, misses, cooldowns
	Damage  time.Duration // damage, healing and regeneration
	Death   time.Duration // deaths and party deaths
	Ailment time.Duration // inflictions, cures and ailment ticks
	Outcome time.Duration // held on the victory, loss and run screens
}

// Config holds the tunables of battle resolution.
type Config struct {
	MaxActionsPerTurn int
	BaseRunChance     float64 // fraction, e.g. 0.25
	RunPcPerPoint     float64 // run percent per momentum point of advantage
	AllyRunFactor     float64 // weight of the other allies' mean momentum
	CritMultiplier    float64
	CritPcPerPoint    float64 // crit percent per UNBR point
	DodgePcPerPoint   float64 // dodge percent per LIMB point
	DefendModifier    float64 // damage multiplier on a defending target
	GuardModifier     float64 // damage multiplier on a guard absorbing a hit
	OffenseFactor     float64
	DefenseFactor     float64
	DamageVariance    float64 // fraction; damage is scaled by 1±DamageVariance
	QDRegenPercent    int     // percent of max QTDR regained each upkeep
	Delays            Delays
	AI                ai.Factors
}

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		MaxActionsPerTurn: person.MaxActionsPerTurn,
		BaseRunChance:     0.25,
		RunPcPerPoint:     1.5,
		AllyRunFactor:     0.5,
		CritMultiplier:    1.5,
		CritPcPerPoint:    0.5,
		DodgePcPerPoint:   0.25,
		DefendModifier:    0.5,
		GuardModifier:     0.75,
		OffenseFactor:     1.0,
		DefenseFactor:     0.5,
		DamageVariance:    0.1,
		QDRegenPercent:    5,
		Delays: Delays{
			Action:  250 * time.Millisecond,
			Skill:   400 * time.Millisecond,
			Damage:  500 * time.Millisecond,
			Death:   700 * time.Millisecond,
			Ailment: 400 * time.Millisecond,
			Outcome: 1500 * time.Millisecond,
		},
		AI: ai.DefaultFactors(),
	}
}

// Validate reports every out-of-range tunable.
func (c Config) Validate() error {
	var errs []error
	if c.MaxActionsPerTurn < 1 || c.MaxActionsPerTurn > person.MaxActionsPerTurn {
		errs = append(errs, fmt.Errorf("max_actions_per_turn must be in [1, %d], got %d", person.MaxActionsPerTurn, c.MaxActionsPerTurn))
	}
	if c.BaseRunChance < 0 || c.BaseRunChance > 1 {
		errs = append(errs, fmt.Errorf("base_run_chance must be in [0, 1], got %f", c.BaseRunChance))
	}
	if c.CritMultiplier < 1 {
		errs = append(errs, fmt.Errorf("crit_multiplier must be >= 1, got %f", c.CritMultiplier))
	}
	if c.DamageVariance < 0 || c.DamageVariance >= 1 {
		errs = append(errs, fmt.Errorf("damage_variance must be in [0, 1), got %f", c.DamageVariance))
	}
	if c.DefendModifier < 0 || c.GuardModifier < 0 {
		errs = append(errs, errors.New("defend_modifier and guard_modifier must be >= 0"))
	}
	if c.QDRegenPercent < 0 || c.QDRegenPercent > 100 {
		errs = append(errs, fmt.Errorf("qd_regen_percent must be in [0, 100], got %d", c.QDRegenPercent))
	}
	for _, d := range []struct {
		name string
		dur  time.Duration
	}{
		{"action", c.Delays.Action},
		{"skill", c.Delays.Skill},
		{"damage", c.Delays.Damage},
		{"death", c.Delays.Death},
		{"ailment", c.Delays.Ailment},
		{"outcome", c.Delays.Outcome},
	} {
		if d.dur < 0 {
			errs = append(errs, fmt.Errorf("delays.%s must be >= 0", d.name))
		}
	}
	return errors.Join(errs...)
}
