// Package sim assembles a playable battle from configuration and content and
// steps it, followed by the victory screen, one frame at a time.
package sim

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/turnbattle/internal/config"
	"github.com/cory-johannsen/turnbattle/internal/game/action"
	"github.com/cory-johannsen/turnbattle/internal/game/ailment"
	"github.com/cory-johannsen/turnbattle/internal/game/person"
)

// Content is every definition a battle can reference.
type Content struct {
	Actions    *action.Registry
	Ailments   *ailment.Registry
	Templates  map[string]*person.Template
	Encounters map[string]*person.Encounter
}

// LoadContent reads the content directories named by cfg and checks that
// every cross reference resolves.
//
// Postcondition: Returns fully cross-checked Content or an error describing
// every dangling reference.
func LoadContent(cfg config.ContentConfig) (*Content, error) {
	actions, err := action.Load(cfg.Skills, cfg.Items)
	if err != nil {
		return nil, fmt.Errorf("loading actions: %w", err)
	}
	ailments, err := ailment.LoadDirectory(cfg.Ailments)
	if err != nil {
		return nil, fmt.Errorf("loading ailments: %w", err)
	}
	templates, err := person.LoadTemplates(cfg.Persons)
	if err != nil {
		return nil, fmt.Errorf("loading persons: %w", err)
	}
	encounters, err := person.LoadEncounters(cfg.Encounters)
	if err != nil {
		return nil, fmt.Errorf("loading encounters: %w", err)
	}
	c := &Content{Actions: actions, Ailments: ailments, Templates: templates, Encounters: encounters}
	if err := c.check(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Content) check() error {
	var errs []error
	effects := func(owner string, effs []action.Effect) {
		for _, e := range effs {
			if e.Ailment == "" {
				continue
			}
			if _, ok := c.Ailments.Get(e.Ailment); !ok {
				errs = append(errs, fmt.Errorf("%s: unknown ailment %q", owner, e.Ailment))
			}
		}
	}
	for _, s := range c.Actions.Skills() {
		effects("skill "+s.ID, s.Effects)
	}
	for _, it := range c.Actions.Items() {
		effects("item "+it.ID, it.Effects)
	}
	for _, t := range c.Templates {
		for _, s := range t.Skills {
			if _, ok := c.Actions.Skill(s.Skill); !ok {
				errs = append(errs, fmt.Errorf("person %s: unknown skill %q", t.ID, s.Skill))
			}
		}
		if t.Loot != nil {
			for _, drop := range t.Loot.Items {
				if _, ok := c.Actions.Item(drop.ItemID); !ok {
					errs = append(errs, fmt.Errorf("person %s: loot references unknown item %q", t.ID, drop.ItemID))
				}
			}
		}
	}
	for _, e := range c.Encounters {
		for _, side := range []person.PartySpec{e.Allies, e.Enemies} {
			for _, m := range side.Members {
				if _, ok := c.Templates[m.Template]; !ok {
					errs = append(errs, fmt.Errorf("encounter %s: unknown template %q", e.ID, m.Template))
				}
			}
			for id := range side.Inventory {
				if _, ok := c.Actions.Item(id); !ok {
					errs = append(errs, fmt.Errorf("encounter %s: unknown item %q", e.ID, id))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// EncounterIDs returns the encounter ids in sorted order.
func (c *Content) EncounterIDs() []string {
	out := make([]string, 0, len(c.Encounters))
	for id := range c.Encounters {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
