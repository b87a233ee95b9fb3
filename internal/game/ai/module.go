package ai

import (
	"errors"

	"github.com/cory-johannsen/turnbattle/internal/game/action"
	"github.com/cory-johannsen/turnbattle/internal/game/dice"
	"github.com/cory-johannsen/turnbattle/internal/game/ids"
)

var (
	// ErrNotImplemented is returned for the Tactical and DeepThought tiers.
	ErrNotImplemented = errors.New("ai: difficulty not implemented")
	// ErrTargetsNotSelected is returned when the tier has no way to choose
	// among the scope's candidates.
	ErrTargetsNotSelected = errors.New("ai: targets not selected")
	// ErrNoLegalAction is returned when nothing can be chosen.
	ErrNoLegalAction = errors.New("ai: no legal action")
	// ErrOutOfOrder is returned when CalculateTargets precedes CalculateAction.
	ErrOutOfOrder = errors.New("ai: action must be calculated before targets")
)

// HistorySize bounds the decision history ring.
const HistorySize = 500

// Stage is the progress of the current turn's decision.
type Stage int

const (
	StageNone        Stage = iota // nothing chosen this turn
	StageTypeChosen               // action type drawn
	StageIndexChosen              // skill or item chosen, or none needed
	StageComplete                 // targets chosen; Decision is readable
)

// Status is the acting combatant's state at the start of its decision.
type Status struct {
	Turn      int
	QDPercent int // current QTDR as a percent of max
}

// TypeChance is one entry of the normalized action-type distribution.
type TypeChance struct {
	Type   action.Type
	Chance float64
}

// Decision is a completed choice.
type Decision struct {
	Turn    int
	Type    action.Type
	Skill   *action.SkillDef
	Item    *action.ItemDef
	Targets []ids.ActorID
}

// Module chooses one action per call sequence for a single combatant.
// A Module is owned by value by its combatant; it is not safe for concurrent use.
type Module struct {
	factors    Factors
	difficulty Difficulty
	primary    Personality
	secondary  Personality
	src        dice.Source

	status       Status
	types        []action.Type
	skills       []*action.SkillDef
	items        []*action.ItemDef
	pools        action.Pools
	guardTargets []ids.ActorID

	stage    Stage
	decision Decision

	history []Decision
	next    int
}

// New creates a Module.
//
// Precondition: src must be non-nil.
func New(f Factors, d Difficulty, primary, secondary Personality, src dice.Source) Module {
	return Module{factors: f, difficulty: d, primary: primary, secondary: secondary, src: src}
}

// Difficulty returns the module's tier.
func (m *Module) Difficulty() Difficulty { return m.difficulty }

// Stage returns the progress of the current decision.
func (m *Module) Stage() Stage { return m.stage }

// ResetForNewBattle forgets history and any in-progress decision.
func (m *Module) ResetForNewBattle() {
	m.ResetForNewTurn(Status{})
	m.history = nil
	m.next = 0
}

// ResetForNewTurn clears the decision space and the in-progress decision.
//
// Postcondition: Stage() == StageNone.
func (m *Module) ResetForNewTurn(st Status) {
	m.status = st
	m.types = nil
	m.skills = nil
	m.items = nil
	m.pools = action.Pools{}
	m.guardTargets = nil
	m.stage = StageNone
	m.decision = Decision{}
}

// SetActionTypes sets the structurally legal action types.
func (m *Module) SetActionTypes(types []action.Type) {
	m.types = append([]action.Type(nil), types...)
}

// SetSkills sets the skills the combatant can pay for this turn.
func (m *Module) SetSkills(skills []*action.SkillDef) {
	m.skills = append([]*action.SkillDef(nil), skills...)
}

// SetItems sets the items the party holds this turn.
func (m *Module) SetItems(items []*action.ItemDef) {
	m.items = append([]*action.ItemDef(nil), items...)
}

// SetFriendTargets sets the user and its living and knocked-out allies.
func (m *Module) SetFriendTargets(user ids.ActorID, living, fallen []ids.ActorID) {
	m.pools.User = user
	m.pools.Allies = append([]ids.ActorID(nil), living...)
	m.pools.Fallen = append([]ids.ActorID(nil), fallen...)
}

// SetFoeTargets sets the living foes.
func (m *Module) SetFoeTargets(foes []ids.ActorID) {
	m.pools.Foes = append([]ids.ActorID(nil), foes...)
}

// SetGuardTargets sets the allies the combatant may legally guard.
func (m *Module) SetGuardTargets(targets []ids.ActorID) {
	m.guardTargets = append([]ids.ActorID(nil), targets...)
}

// ClearInvalid drops skills and items whose scope cannot be satisfied by the
// current target pools, and action types left with nothing to use.
//
// Postcondition: every remaining skill and item scope is Satisfiable; Skill is
// legal only if a skill remains, Item only if an item remains, Guard only if a
// guard target exists.
func (m *Module) ClearInvalid() {
	skills := m.skills[:0]
	for _, s := range m.skills {
		if s.Scope.Satisfiable(m.pools) {
			skills = append(skills, s)
		}
	}
	m.skills = skills

	items := m.items[:0]
	for _, it := range m.items {
		if it.Scope.Satisfiable(m.pools) {
			items = append(items, it)
		}
	}
	m.items = items

	types := m.types[:0]
	for _, t := range m.types {
		switch {
		case t == action.Skill && len(m.skills) == 0:
		case t == action.Item && len(m.items) == 0:
		case t == action.Guard && len(m.guardTargets) == 0:
		case t == action.None:
		default:
			types = append(types, t)
		}
	}
	m.types = types
}

// Decision returns the completed decision.
//
// Postcondition: ok is false unless Stage() == StageComplete.
func (m *Module) Decision() (Decision, bool) {
	if m.stage != StageComplete {
		return Decision{}, false
	}
	d := m.decision
	d.Targets = append([]ids.ActorID(nil), m.decision.Targets...)
	return d, true
}

// History returns past completed decisions, oldest first. At most HistorySize
// entries are kept.
func (m *Module) History() []Decision {
	if len(m.history) < HistorySize {
		return append([]Decision(nil), m.history...)
	}
	out := make([]Decision, 0, HistorySize)
	out = append(out, m.history[m.next:]...)
	return append(out, m.history[:m.next]...)
}

func (m *Module) record(d Decision) {
	if len(m.history) < HistorySize {
		m.history = append(m.history, d)
		return
	}
	m.history[m.next] = d
	m.next = (m.next + 1) % HistorySize
}
