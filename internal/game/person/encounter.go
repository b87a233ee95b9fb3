package person

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// MemberSpec places one templated person in an encounter.
type MemberSpec struct {
	ID       string `yaml:"id"` // persistent id; allies default to the template id
	Template string `yaml:"template"`
	Level    int    `yaml:"level"` // 0 uses the template level
}

// PartySpec describes one side of an encounter.
type PartySpec struct {
	ID        string         `yaml:"id"`
	Name      string         `yaml:"name"`
	Credits   int            `yaml:"credits"`
	Inventory map[string]int `yaml:"inventory"`
	Members   []MemberSpec   `yaml:"members"`
}

// Encounter pairs an ally party with an enemy party.
type Encounter struct {
	ID      string    `yaml:"id"`
	Name    string    `yaml:"name"`
	Allies  PartySpec `yaml:"allies"`
	Enemies PartySpec `yaml:"enemies"`
}

// Validate checks the encounter's structural invariants.
func (e *Encounter) Validate() error {
	var errs []error
	if e.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if len(e.Allies.Members) == 0 {
		errs = append(errs, errors.New("allies must have at least one member"))
	}
	if len(e.Enemies.Members) == 0 {
		errs = append(errs, errors.New("enemies must have at least one member"))
	}
	for _, side := range []PartySpec{e.Allies, e.Enemies} {
		for i, m := range side.Members {
			if m.Template == "" {
				errs = append(errs, fmt.Errorf("%s member[%d]: template must not be empty", side.ID, i))
			}
		}
		for id, qty := range side.Inventory {
			if qty < 1 {
				errs = append(errs, fmt.Errorf("%s inventory %q: quantity must be >= 1", side.ID, id))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("encounter %q: %w", e.ID, errors.Join(errs...))
	}
	return nil
}

// Build instantiates both parties from templates. Enemy members without an
// explicit id receive a fresh instance id so that repeated templates stay
// distinct.
//
// Precondition: e must have passed Validate.
// Postcondition: returns two parties whose members reference known templates,
// or an error naming the first unknown template.
func (e *Encounter) Build(templates map[string]*Template) (allies, enemies *Party, err error) {
	allies, err = buildParty(e.Allies, templates, false)
	if err != nil {
		return nil, nil, err
	}
	enemies, err = buildParty(e.Enemies, templates, true)
	if err != nil {
		return nil, nil, err
	}
	return allies, enemies, nil
}

func buildParty(spec PartySpec, templates map[string]*Template, instanced bool) (*Party, error) {
	party := NewParty(spec.ID, spec.Name)
	party.Credits = spec.Credits
	for id, qty := range spec.Inventory {
		if err := party.AddItem(id, qty); err != nil {
			return nil, err
		}
	}
	for _, m := range spec.Members {
		tmpl, ok := templates[m.Template]
		if !ok {
			return nil, fmt.Errorf("party %q: unknown template %q", spec.ID, m.Template)
		}
		id := m.ID
		if id == "" {
			id = tmpl.ID
			if instanced {
				id = tmpl.ID + "-" + uuid.NewString()
			}
		}
		party.Members = append(party.Members, New(id, tmpl, m.Level))
	}
	return party, nil
}

// LoadEncounters reads all *.yaml files in dir as encounters keyed by ID.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns every encounter or an error on the first parse,
// validate or duplicate-ID failure.
func LoadEncounters(dir string) (map[string]*Encounter, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading encounter dir %q: %w", dir, err)
	}
	out := make(map[string]*Encounter)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var enc Encounter
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&enc); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := enc.Validate(); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if _, dup := out[enc.ID]; dup {
			return nil, fmt.Errorf("loading %q: duplicate encounter id %q", path, enc.ID)
		}
		out[enc.ID] = &enc
	}
	return out, nil
}
