// Package person provides the persistent characters that take part in
// battles: YAML templates, level and experience progression, parties and
// loot tables.
package person

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/turnbattle/internal/game/attribute"
)

// MaxActionsPerTurn is the most actions any combatant may submit in one turn.
const MaxActionsPerTurn = 3

// SkillUnlock makes a skill available from a given level.
type SkillUnlock struct {
	Skill string `yaml:"skill"`
	Level int    `yaml:"level"`
}

// AIProfile names the decision engine settings for a computer-controlled person.
// Values are resolved by the ai package; empty Difficulty means "random".
type AIProfile struct {
	Difficulty string `yaml:"difficulty"`
	Primary    string `yaml:"primary"`
	Secondary  string `yaml:"secondary"`
}

// Template defines a reusable character archetype loaded from YAML.
type Template struct {
	ID             string         `yaml:"id"`
	Name           string         `yaml:"name"`
	Description    string         `yaml:"description"`
	Level          int            `yaml:"level"`
	ExpMod         float64        `yaml:"exp_mod"` // multiplier on experience earned; 0 means 1.0
	XPDrop         int            `yaml:"xp_drop"` // base experience granted to victors
	Base           map[string]int `yaml:"base"`    // attributes at level 1
	Growth         map[string]int `yaml:"growth"`  // attributes gained per level
	Skills         []SkillUnlock  `yaml:"skills"`
	ActionsPerTurn int            `yaml:"actions_per_turn"` // 0 means 1
	AI             *AIProfile     `yaml:"ai"`
	Loot           *LootTable     `yaml:"loot"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Level >= 1, base
// VITA >= 1, attribute maps use known names, ActionsPerTurn is within
// [0, MaxActionsPerTurn] and the loot table validates.
func (t *Template) Validate() error {
	var errs []error
	if t.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if t.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if t.Level < 1 {
		errs = append(errs, fmt.Errorf("level must be >= 1, got %d", t.Level))
	}
	if t.ExpMod < 0 {
		errs = append(errs, fmt.Errorf("exp_mod must be >= 0, got %f", t.ExpMod))
	}
	if t.XPDrop < 0 {
		errs = append(errs, fmt.Errorf("xp_drop must be >= 0, got %d", t.XPDrop))
	}
	base, err := attribute.NewSet(t.Base)
	if err != nil {
		errs = append(errs, fmt.Errorf("base: %w", err))
	} else if base.Get(attribute.VITA) < 1 {
		errs = append(errs, errors.New("base VITA must be >= 1"))
	}
	if _, err := attribute.NewSet(t.Growth); err != nil {
		errs = append(errs, fmt.Errorf("growth: %w", err))
	}
	if t.ActionsPerTurn < 0 || t.ActionsPerTurn > MaxActionsPerTurn {
		errs = append(errs, fmt.Errorf("actions_per_turn must be in [0, %d], got %d", MaxActionsPerTurn, t.ActionsPerTurn))
	}
	for i, s := range t.Skills {
		if s.Skill == "" {
			errs = append(errs, fmt.Errorf("skills[%d]: skill must not be empty", i))
		}
		if s.Level < 0 {
			errs = append(errs, fmt.Errorf("skills[%d]: level must be >= 0", i))
		}
	}
	if t.Loot != nil {
		if err := t.Loot.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("person template %q: %w", t.ID, errors.Join(errs...))
	}
	return nil
}

// LoadTemplateFromBytes parses a single template from raw YAML bytes.
// Unknown fields are rejected.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates
// keyed by ID.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse, validate
// or duplicate-ID failure.
func LoadTemplates(dir string) (map[string]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading person dir %q: %w", dir, err)
	}
	out := make(map[string]*Template)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if _, dup := out[tmpl.ID]; dup {
			return nil, fmt.Errorf("loading %q: duplicate template id %q", path, tmpl.ID)
		}
		out[tmpl.ID] = tmpl
	}
	return out, nil
}
