package action

import (
	"errors"
	"fmt"
)

// SkillDef is a learnable skill loaded from YAML.
type SkillDef struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Scope       Scope    `yaml:"scope"`
	Cost        int      `yaml:"cost"`     // QTDR paid on use
	Cooldown    int      `yaml:"cooldown"` // turns the action waits in the buffer before resolving
	Value       int      `yaml:"value"`    // AI priority rating
	Accuracy    int      `yaml:"accuracy"` // hit chance percent; 0 in YAML means 100
	Effects     []Effect `yaml:"effects"`
}

// Validate checks the skill's invariants.
//
// Precondition: s must not be nil.
// Postcondition: returns nil iff ID and Name are set, numeric fields are in
// range and every effect validates.
func (s *SkillDef) Validate() error {
	var errs []error
	if s.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if s.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if s.Cost < 0 {
		errs = append(errs, fmt.Errorf("cost must be >= 0, got %d", s.Cost))
	}
	if s.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("cooldown must be >= 0, got %d", s.Cooldown))
	}
	if s.Value < 0 {
		errs = append(errs, fmt.Errorf("value must be >= 0, got %d", s.Value))
	}
	if s.Accuracy < 0 || s.Accuracy > 100 {
		errs = append(errs, fmt.Errorf("accuracy must be in [0, 100], got %d", s.Accuracy))
	}
	if s.Scope == NoScope && len(s.Effects) > 0 {
		errs = append(errs, errors.New("a skill with effects needs a scope"))
	}
	for i := range s.Effects {
		if err := s.Effects[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("effect[%d]: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("skill %q: %w", s.ID, errors.Join(errs...))
	}
	return nil
}

// HitChance returns the accuracy in percent, 100 when unset.
func (s *SkillDef) HitChance() int {
	if s.Accuracy == 0 {
		return 100
	}
	return s.Accuracy
}

// ItemDef is a consumable battle item loaded from YAML.
type ItemDef struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Scope       Scope    `yaml:"scope"`
	Value       int      `yaml:"value"` // AI priority rating
	Price       int      `yaml:"price"` // credits
	Effects     []Effect `yaml:"effects"`
}

// Validate checks the item's invariants.
//
// Precondition: it must not be nil.
// Postcondition: returns nil iff ID and Name are set, Value and Price are
// non-negative and every effect validates.
func (it *ItemDef) Validate() error {
	var errs []error
	if it.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if it.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if it.Value < 0 {
		errs = append(errs, fmt.Errorf("value must be >= 0, got %d", it.Value))
	}
	if it.Price < 0 {
		errs = append(errs, fmt.Errorf("price must be >= 0, got %d", it.Price))
	}
	for i := range it.Effects {
		if err := it.Effects[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("effect[%d]: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("item %q: %w", it.ID, errors.Join(errs...))
	}
	return nil
}
