package action

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry holds the skill and item definitions available to a battle.
type Registry struct {
	skills map[string]*SkillDef
	items  map[string]*ItemDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		skills: make(map[string]*SkillDef),
		items:  make(map[string]*ItemDef),
	}
}

// RegisterSkill validates s and adds it.
//
// Postcondition: Skill(s.ID) returns s; returns an error on validation failure or duplicate ID.
func (r *Registry) RegisterSkill(s *SkillDef) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if _, exists := r.skills[s.ID]; exists {
		return fmt.Errorf("action: skill %q already registered", s.ID)
	}
	r.skills[s.ID] = s
	return nil
}

// RegisterItem validates it and adds it.
//
// Postcondition: Item(it.ID) returns it; returns an error on validation failure or duplicate ID.
func (r *Registry) RegisterItem(it *ItemDef) error {
	if err := it.Validate(); err != nil {
		return err
	}
	if _, exists := r.items[it.ID]; exists {
		return fmt.Errorf("action: item %q already registered", it.ID)
	}
	r.items[it.ID] = it
	return nil
}

// Skill returns the skill with id, or (nil, false).
func (r *Registry) Skill(id string) (*SkillDef, bool) {
	s, ok := r.skills[id]
	return s, ok
}

// Item returns the item with id, or (nil, false).
func (r *Registry) Item(id string) (*ItemDef, bool) {
	it, ok := r.items[id]
	return it, ok
}

// Skills returns every registered skill sorted by ID.
func (r *Registry) Skills() []*SkillDef {
	out := make([]*SkillDef, 0, len(r.skills))
	for _, s := range r.skills {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Items returns every registered item sorted by ID.
func (r *Registry) Items() []*ItemDef {
	out := make([]*ItemDef, 0, len(r.items))
	for _, it := range r.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Load reads every *.yaml file in skillsDir as a SkillDef and every *.yaml
// file in itemsDir as an ItemDef. Unknown YAML fields are rejected. An empty
// directory argument is skipped.
//
// Postcondition: returns a populated Registry, or an error naming the first
// file that fails to read, parse or validate.
func Load(skillsDir, itemsDir string) (*Registry, error) {
	reg := NewRegistry()
	if skillsDir != "" {
		err := eachYAML(skillsDir, func(path string, dec *yaml.Decoder) error {
			var s SkillDef
			if err := dec.Decode(&s); err != nil {
				return fmt.Errorf("parsing %q: %w", path, err)
			}
			return reg.RegisterSkill(&s)
		})
		if err != nil {
			return nil, err
		}
	}
	if itemsDir != "" {
		err := eachYAML(itemsDir, func(path string, dec *yaml.Decoder) error {
			var it ItemDef
			if err := dec.Decode(&it); err != nil {
				return fmt.Errorf("parsing %q: %w", path, err)
			}
			return reg.RegisterItem(&it)
		})
		if err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func eachYAML(dir string, fn func(path string, dec *yaml.Decoder) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading dir %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := fn(path, dec); err != nil {
			return fmt.Errorf("loading %q: %w", path, err)
		}
	}
	return nil
}
