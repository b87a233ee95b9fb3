// Package ailment defines timed status effects and tracks the ones applied to
// a combatant.
package ailment

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/turnbattle/internal/game/attribute"
)

// Kind selects the upkeep behaviour of an ailment.
type Kind string

const (
	KindPoison      Kind = "poison"      // loses TickPercent of max VITA each upkeep
	KindBurn        Kind = "burn"        // loses TickPercent of max VITA each upkeep
	KindParalysis   Kind = "paralysis"   // cannot select actions
	KindConfuse     Kind = "confuse"     // targets are chosen at random
	KindSilence     Kind = "silence"     // cannot use skills
	KindHibernation Kind = "hibernation" // regains RegenPercent of max VITA each upkeep
	KindDeathTimer  Kind = "deathtimer"  // dies when the ailment expires
	KindBuff        Kind = "buff"        // temporary attribute modifiers only
)

var validKinds = map[Kind]bool{
	KindPoison: true, KindBurn: true, KindParalysis: true, KindConfuse: true,
	KindSilence: true, KindHibernation: true, KindDeathTimer: true, KindBuff: true,
}

// Duration types.
const (
	DurationTurns     = "turns"
	DurationPermanent = "permanent"
)

// RestrictAll in RestrictActions blocks every action except pass.
const RestrictAll = "all"

var restrictable = map[string]bool{
	RestrictAll: true, "skill": true, "item": true, "defend": true, "guard": true, "run": true,
}

// Def is the static definition of an ailment, loaded from YAML.
type Def struct {
	ID              string         `yaml:"id"`
	Name            string         `yaml:"name"`
	Description     string         `yaml:"description"`
	Kind            Kind           `yaml:"kind"`
	DurationType    string         `yaml:"duration_type"`
	Turns           int            `yaml:"turns"`
	TickPercent     int            `yaml:"tick_percent"`
	RegenPercent    int            `yaml:"regen_percent"`
	RestrictActions []string       `yaml:"restrict_actions"`
	Buffs           map[string]int `yaml:"buffs"`
	LuaOnTick       string         `yaml:"lua_on_tick"`
}

// Validate checks the definition's invariants.
//
// Postcondition: returns nil iff ID and Name are set, Kind and DurationType are
// known, timed ailments last at least one turn and percentages are in [0, 100].
func (d *Def) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("unknown kind %q", d.Kind))
	}
	switch d.DurationType {
	case DurationTurns:
		if d.Turns < 1 {
			errs = append(errs, fmt.Errorf("turns must be >= 1 for timed ailments, got %d", d.Turns))
		}
	case DurationPermanent:
	default:
		errs = append(errs, fmt.Errorf("duration_type must be %q or %q, got %q", DurationTurns, DurationPermanent, d.DurationType))
	}
	if d.Kind == KindDeathTimer && d.DurationType != DurationTurns {
		errs = append(errs, errors.New("deathtimer ailments must be timed"))
	}
	if d.TickPercent < 0 || d.TickPercent > 100 {
		errs = append(errs, fmt.Errorf("tick_percent must be in [0, 100], got %d", d.TickPercent))
	}
	if d.RegenPercent < 0 || d.RegenPercent > 100 {
		errs = append(errs, fmt.Errorf("regen_percent must be in [0, 100], got %d", d.RegenPercent))
	}
	for _, r := range d.RestrictActions {
		if !restrictable[r] {
			errs = append(errs, fmt.Errorf("restrict_actions: %q is not a restrictable action", r))
		}
	}
	for name := range d.Buffs {
		if _, err := attribute.Parse(name); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("ailment %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

// Restricts reports whether this ailment blocks the named action type.
func (d *Def) Restricts(actionType string) bool {
	for _, r := range d.RestrictActions {
		if r == RestrictAll || r == actionType {
			return true
		}
	}
	return false
}

// Registry holds all known ailment definitions keyed by ID.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Def)}
}

// Register validates def and adds it to the registry.
//
// Precondition: def must not be nil.
// Postcondition: Get(def.ID) returns def; returns an error on validation failure or duplicate ID.
func (r *Registry) Register(def *Def) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if _, exists := r.defs[def.ID]; exists {
		return fmt.Errorf("ailment: %q already registered", def.ID)
	}
	r.defs[def.ID] = def
	return nil
}

// Get returns the Def for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Def, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// All returns every registered Def sorted by ID.
func (r *Registry) All() []*Def {
	out := make([]*Def, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Def and
// returns a populated Registry. Unknown YAML fields are rejected.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading ailment dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := reg.Register(&def); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return reg, nil
}
