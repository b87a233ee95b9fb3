package battle

import (
	"github.com/cory-johannsen/turnbattle/internal/game/action"
	"github.com/cory-johannsen/turnbattle/internal/game/ids"
)

// MenuView is the decision space offered to whoever chooses an actor's next action.
type MenuView struct {
	Actor        ids.ActorID
	Name         string
	Slot         int // 0-based action slot within the turn
	Turn         int
	QDPercent    int
	Types        []action.Type
	Skills       []*action.SkillDef
	Items        []*action.ItemDef
	Pools        action.Pools
	GuardTargets []ids.ActorID
}

// Choice is a finished menu selection.
type Choice struct {
	Actor   ids.ActorID
	Type    action.Type
	Skill   *action.SkillDef
	Item    *action.ItemDef
	Targets []ids.ActorID
	// Finished declines any further action this turn. It is only honoured
	// for slots after the first.
	Finished bool
}

// Menu is the input layer for ally actions. The battle loads it for one actor
// slot at a time and polls Complete every update; it never navigates the menu.
type Menu interface {
	Load(view MenuView)
	Complete() bool
	Selection() Choice
	Unload()
}

// Presenter displays events. Present is called when the timeline starts
// showing an event; battle state already reflects the whole event group.
type Presenter interface {
	Present(e Event)
}

// Sound queues fire-and-forget sound effects.
type Sound interface {
	AddPlayToQueue(id string, channel int)
}

// soundFor maps events to sound effect ids.
var soundFor = map[EventType]string{
	CriticalDamage: "critical",
	Death:          "death",
	PartyDeath:     "party_death",
	SucceedRun:     "run",
	Revive:         "revive",
	Infliction:     "inflict",
}
