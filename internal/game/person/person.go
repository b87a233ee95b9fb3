package person

import (
	"github.com/cory-johannsen/turnbattle/internal/game/attribute"
)

// MaxLevel caps character progression.
const MaxLevel = 99

// ExperienceForLevel returns the total experience needed to reach level.
//
// Postcondition: 0 for level <= 1; strictly increasing in level.
func ExperienceForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return 50 * (level - 1) * level
}

// LevelForExperience returns the highest level whose threshold exp meets,
// capped at MaxLevel.
func LevelForExperience(exp int) int {
	level := 1
	for level < MaxLevel && exp >= ExperienceForLevel(level+1) {
		level++
	}
	return level
}

// Person is a character that persists between battles. A battle wraps a
// Person in an actor but never owns it.
type Person struct {
	ID             string
	TemplateID     string
	Name           string
	Level          int
	Experience     int
	ExpMod         float64
	XPDrop         int
	ActionsPerTurn int
	AI             AIProfile
	Loot           *LootTable

	base   attribute.Set
	growth attribute.Set
	skills []SkillUnlock
}

// New builds a Person from tmpl at the given level. A level below 1 uses the
// template's level. Experience starts at the threshold for that level.
//
// Precondition: tmpl must have passed Validate.
// Postcondition: Stats().Get(VITA) >= 1 and 1 <= Level <= MaxLevel.
func New(id string, tmpl *Template, level int) *Person {
	if level < 1 {
		level = tmpl.Level
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	base, _ := attribute.NewSet(tmpl.Base)
	growth, _ := attribute.NewSet(tmpl.Growth)
	p := &Person{
		ID:             id,
		TemplateID:     tmpl.ID,
		Name:           tmpl.Name,
		Level:          level,
		Experience:     ExperienceForLevel(level),
		ExpMod:         tmpl.ExpMod,
		XPDrop:         tmpl.XPDrop,
		ActionsPerTurn: tmpl.ActionsPerTurn,
		Loot:           tmpl.Loot,
		base:           base,
		growth:         growth,
		skills:         append([]SkillUnlock(nil), tmpl.Skills...),
	}
	if p.ExpMod == 0 {
		p.ExpMod = 1.0
	}
	if p.ActionsPerTurn == 0 {
		p.ActionsPerTurn = 1
	}
	if tmpl.AI != nil {
		p.AI = *tmpl.AI
	}
	return p
}

// Stats returns the maximum attributes at the current level:
// base + growth*(level-1).
func (p *Person) Stats() attribute.Set {
	return p.base.Add(p.growth.Scale(p.Level - 1))
}

// SkillIDs returns the skills unlocked at the current level in template order.
func (p *Person) SkillIDs() []string {
	var out []string
	for _, s := range p.skills {
		if s.Level <= p.Level {
			out = append(out, s.Skill)
		}
	}
	return out
}

// AddExperience credits amount experience and levels up as thresholds are
// crossed. It returns the number of levels gained.
//
// Precondition: amount >= 0.
// Postcondition: Level == LevelForExperience(Experience) unless Level was
// already above it.
func (p *Person) AddExperience(amount int) int {
	if amount <= 0 {
		return 0
	}
	p.Experience += amount
	before := p.Level
	if l := LevelForExperience(p.Experience); l > p.Level {
		p.Level = l
	}
	return p.Level - before
}

// ExperienceToNext returns the experience still needed for the next level,
// or 0 at MaxLevel.
func (p *Person) ExperienceToNext() int {
	if p.Level >= MaxLevel {
		return 0
	}
	rem := ExperienceForLevel(p.Level+1) - p.Experience
	if rem < 0 {
		return 0
	}
	return rem
}
