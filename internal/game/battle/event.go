package battle

import (
	"errors"

	"github.com/cory-johannsen/turnbattle/internal/game/action"
	"github.com/cory-johannsen/turnbattle/internal/game/ids"
)

// ErrAlreadyPerformed is returned when an event is performed a second time.
var ErrAlreadyPerformed = errors.New("battle: event already performed")

// EventType identifies one atomic battle outcome.
type EventType int

const (
	EventNone EventType = iota
	ActionBegin
	ActionEnd
	SkillUse
	ItemUse
	StandardDamage
	CriticalDamage
	PoisonDamage
	BurnDamage
	AilmentDamage
	HealHealth
	RestoreQtdr
	RegenVita
	RegenQtdr
	Infliction
	AlreadyInflicted
	CureInfliction
	Death
	PartyDeath
	Revive
	BeginDefend
	BreakDefend
	BeginGuard
	BreakGuard
	FailGuard
	SkillMiss
	ActionMiss
	SkillCooldown
	Fizzle
	AttemptRun
	SucceedRun
	FailRun
	PassTurn
)

var eventTypeNames = []string{
	"NONE", "ACTION_BEGIN", "ACTION_END", "SKILL_USE", "ITEM_USE",
	"STANDARD_DAMAGE", "CRITICAL_DAMAGE", "POISON_DAMAGE", "BURN_DAMAGE",
	"AILMENT_DAMAGE", "HEAL_HEALTH", "RESTORE_QTDR", "REGEN_VITA", "REGEN_QTDR",
	"INFLICTION", "ALREADY_INFLICTED", "CURE_INFLICTION", "DEATH", "PARTY_DEATH",
	"REVIVE", "BEGIN_DEFEND", "BREAK_DEFEND", "BEGIN_GUARD", "BREAK_GUARD",
	"FAIL_GUARD", "SKILL_MISS", "ACTION_MISS", "SKILL_COOLDOWN", "FIZZLE",
	"ATTEMPT_RUN", "SUCCEED_RUN", "FAIL_RUN", "PASS",
}

func (t EventType) String() string {
	if t < 0 || int(t) >= len(eventTypeNames) {
		return "UNKNOWN"
	}
	return eventTypeNames[t]
}

// IsDamage reports whether the event reduces VITA.
func (t EventType) IsDamage() bool {
	switch t {
	case StandardDamage, CriticalDamage, PoisonDamage, BurnDamage, AilmentDamage:
		return true
	}
	return false
}

// Event is one atomic outcome. Events are performed, mutating battle state,
// exactly once and in emission order; presentation follows.
type Event struct {
	Seq       uint64
	Type      EventType
	Action    action.Type // ActionBegin and ActionEnd only
	User      ids.ActorID
	Targets   []ids.ActorID
	Amount    int
	Ailment   string
	Skill     *action.SkillDef
	Item      *action.ItemDef
	Protected ids.ActorID // the guarded ally when a guard absorbs damage
	Side      Side        // PartyDeath only
	Happens   bool

	performed bool
	rendered  bool
}

// Performed reports whether the event has mutated battle state.
func (e *Event) Performed() bool { return e.performed }

// Rendered reports whether the timeline has finished presenting the event.
func (e *Event) Rendered() bool { return e.rendered }

// Target returns the first target, or ids.None.
func (e *Event) Target() ids.ActorID {
	if len(e.Targets) == 0 {
		return ids.None
	}
	return e.Targets[0]
}

// EventBuffer holds the events of the group being resolved and performs each
// as it is emitted.
type EventBuffer struct {
	seq     *ids.Allocator
	perform func(*Event)
	events  []*Event
}

// NewEventBuffer creates an EventBuffer whose events are applied by perform.
//
// Precondition: seq and perform must be non-nil.
func NewEventBuffer(seq *ids.Allocator, perform func(*Event)) *EventBuffer {
	return &EventBuffer{seq: seq, perform: perform}
}

// Emit appends e and performs it.
//
// Postcondition: e.Performed() is true and e.Seq is greater than every
// previously emitted Seq.
func (eb *EventBuffer) Emit(e *Event) *Event {
	e.Seq = eb.seq.Next()
	eb.events = append(eb.events, e)
	_ = eb.Perform(e)
	return e
}

// Perform applies e once.
//
// Postcondition: returns ErrAlreadyPerformed if e was performed before; state
// is then untouched.
func (eb *EventBuffer) Perform(e *Event) error {
	if e.performed {
		return ErrAlreadyPerformed
	}
	eb.perform(e)
	e.performed = true
	return nil
}

// Events returns the events of the current group in emission order.
func (eb *EventBuffer) Events() []*Event {
	return append([]*Event(nil), eb.events...)
}

// Len returns the number of events in the current group.
func (eb *EventBuffer) Len() int { return len(eb.events) }

// Take returns the current group and starts a new one.
func (eb *EventBuffer) Take() []*Event {
	out := eb.events
	eb.events = nil
	return out
}
