package battle

import (
	"github.com/cory-johannsen/turnbattle/internal/game/action"
	"github.com/cory-johannsen/turnbattle/internal/game/ai"
	"github.com/cory-johannsen/turnbattle/internal/game/ailment"
	"github.com/cory-johannsen/turnbattle/internal/game/attribute"
	"github.com/cory-johannsen/turnbattle/internal/game/ids"
	"github.com/cory-johannsen/turnbattle/internal/game/person"
)

// Side is a combatant's team.
type Side int

const (
	Allies Side = iota
	Enemies
)

func (s Side) String() string {
	if s == Allies {
		return "allies"
	}
	return "enemies"
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == Allies {
		return Enemies
	}
	return Allies
}

// Actor wraps one Person for the duration of a battle. The Person is borrowed,
// never owned.
type Actor struct {
	ID        ids.ActorID
	Person    *person.Person
	Side      Side
	Index     int // position within its side
	Sheet     *attribute.Sheet
	Ailments  *ailment.ActiveSet
	Selection *Selection
	AI        ai.Module

	skills    []*action.SkillDef
	guarding  ids.ActorID // the ally this actor protects
	guardedBy ids.ActorID // the ally protecting this actor
	defending bool
	upkeep    bool
	fallen    bool
}

// Name returns the person's name.
func (a *Actor) Name() string { return a.Person.Name }

// Alive reports whether VITA is above zero.
func (a *Actor) Alive() bool { return a.Sheet.Current.Get(attribute.VITA) > 0 }

// Vita returns current VITA.
func (a *Actor) Vita() int { return a.Sheet.Current.Get(attribute.VITA) }

// Momentum returns this turn's MMNT, buffs included.
func (a *Actor) Momentum() int { return a.Sheet.Temp.Get(attribute.MMNT) }

// Guarding returns the ally this actor guards, or ids.None.
func (a *Actor) Guarding() ids.ActorID { return a.guarding }

// GuardedBy returns the ally guarding this actor, or ids.None.
func (a *Actor) GuardedBy() ids.ActorID { return a.guardedBy }

// InGuardPair reports whether the actor holds either end of a guard link.
func (a *Actor) InGuardPair() bool { return a.guarding.Valid() || a.guardedBy.Valid() }

// Defending reports whether the actor is defending this turn.
func (a *Actor) Defending() bool { return a.defending }

// Skills returns every skill the actor knows.
func (a *Actor) Skills() []*action.SkillDef {
	return append([]*action.SkillDef(nil), a.skills...)
}

// UsableSkills returns the known skills the actor can pay for now.
func (a *Actor) UsableSkills() []*action.SkillDef {
	if a.Ailments.Restricts(action.Skill.String()) {
		return nil
	}
	qd := a.Sheet.Current.Get(attribute.QTDR)
	var out []*action.SkillDef
	for _, s := range a.skills {
		if s.Cost <= qd {
			out = append(out, s)
		}
	}
	return out
}

// actionsAllowed returns how many actions the actor may submit per turn.
func (a *Actor) actionsAllowed(max int) int {
	n := a.Person.ActionsPerTurn
	if n < 1 {
		n = 1
	}
	if n > max {
		n = max
	}
	return n
}
