package action

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/turnbattle/internal/game/dice"
)

// EffectKind selects what an Effect does to each target.
type EffectKind string

const (
	EffectDamage    EffectKind = "damage"
	EffectHeal      EffectKind = "heal"
	EffectRestoreQD EffectKind = "restore_qd"
	EffectInflict   EffectKind = "inflict"
	EffectRelieve   EffectKind = "relieve"
	EffectRevive    EffectKind = "revive"
)

// Element selects the attribute pair used for offense and defense.
type Element string

const (
	Physical Element = "physical" // PHAG against PHFD
	Thermal  Element = "thermal"  // THAG against THFD
)

// Effect is one outcome applied to every target of a skill or item.
type Effect struct {
	Kind       EffectKind `yaml:"kind"`
	Amount     int        `yaml:"amount"`
	Dice       string     `yaml:"dice"`        // optional extra roll, e.g. "2d6"
	Percent    int        `yaml:"percent"`     // heal/restore/revive: percent of max added to Amount
	Element    Element    `yaml:"element"`     // damage only; defaults to physical
	Fixed      bool       `yaml:"fixed"`       // damage bypasses offense, defense and variance
	CritChance int        `yaml:"crit_chance"` // damage only; base percent
	Ailment    string     `yaml:"ailment"`     // inflict/relieve
	Chance     int        `yaml:"chance"`      // inflict only; percent, defaults to 100
	Turns      int        `yaml:"turns"`       // inflict only; overrides the ailment's duration when > 0
}

// Validate checks the effect's invariants.
//
// Postcondition: returns nil iff the kind is known and every field used by
// that kind is in range.
func (e *Effect) Validate() error {
	var errs []error
	switch e.Kind {
	case EffectDamage:
		if e.Element != "" && e.Element != Physical && e.Element != Thermal {
			errs = append(errs, fmt.Errorf("unknown element %q", e.Element))
		}
		if e.CritChance < 0 || e.CritChance > 100 {
			errs = append(errs, fmt.Errorf("crit_chance must be in [0, 100], got %d", e.CritChance))
		}
		if e.Amount == 0 && e.Dice == "" && !e.Fixed {
			errs = append(errs, errors.New("damage needs an amount or dice"))
		}
	case EffectHeal, EffectRestoreQD, EffectRevive:
		if e.Percent < 0 || e.Percent > 100 {
			errs = append(errs, fmt.Errorf("percent must be in [0, 100], got %d", e.Percent))
		}
		if e.Amount == 0 && e.Percent == 0 && e.Dice == "" {
			errs = append(errs, fmt.Errorf("%s needs an amount, percent or dice", e.Kind))
		}
	case EffectInflict, EffectRelieve:
		if e.Ailment == "" {
			errs = append(errs, fmt.Errorf("%s needs an ailment", e.Kind))
		}
		if e.Chance < 0 || e.Chance > 100 {
			errs = append(errs, fmt.Errorf("chance must be in [0, 100], got %d", e.Chance))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown effect kind %q", e.Kind))
	}
	if e.Amount < 0 {
		errs = append(errs, fmt.Errorf("amount must be >= 0, got %d", e.Amount))
	}
	if e.Dice != "" {
		expr, err := dice.Parse(e.Dice)
		switch {
		case err != nil:
			errs = append(errs, err)
		case e.Amount+expr.Min() < 0:
			errs = append(errs, fmt.Errorf("amount %d with dice %q can total below zero", e.Amount, e.Dice))
		}
	}
	return errors.Join(errs...)
}

// ElementOrDefault returns the effect's element, physical when unset.
func (e *Effect) ElementOrDefault() Element {
	if e.Element == "" {
		return Physical
	}
	return e.Element
}

// InflictChance returns the inflict chance in percent, 100 when unset.
func (e *Effect) InflictChance() int {
	if e.Chance == 0 {
		return 100
	}
	return e.Chance
}
