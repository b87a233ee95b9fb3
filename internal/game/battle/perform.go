package battle

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/turnbattle/internal/game/attribute"
	"github.com/cory-johannsen/turnbattle/internal/game/ids"
)

// perform applies the state change carried by e.
func (b *Battle) perform(e *Event) {
	user := b.Actor(e.User)
	target := b.Actor(e.Target())
	switch e.Type {
	case StandardDamage, CriticalDamage, PoisonDamage, BurnDamage, AilmentDamage:
		if target != nil {
			target.Sheet.Alter(attribute.VITA, -e.Amount)
		}
	case HealHealth, RegenVita:
		if target != nil {
			target.Sheet.Alter(attribute.VITA, e.Amount)
		}
	case RestoreQtdr, RegenQtdr:
		if target != nil {
			target.Sheet.Alter(attribute.QTDR, e.Amount)
		}
	case SkillUse:
		if user != nil {
			user.Sheet.Alter(attribute.QTDR, -e.Amount)
		}
	case ItemUse:
		if user != nil && e.Item != nil {
			b.parties[user.Side].UseItem(e.Item.ID)
		}
	case Infliction:
		if target == nil {
			return
		}
		if def, ok := b.ailments.Get(e.Ailment); ok {
			if err := target.Ailments.Apply(def, e.Amount); err != nil {
				b.log.Warn("applying ailment", zap.String("ailment", e.Ailment), zap.Error(err))
			}
		}
	case CureInfliction:
		if target != nil {
			target.Ailments.Remove(e.Ailment)
		}
	case Death:
		if target != nil {
			target.Sheet.SetCurrent(attribute.VITA, 0)
			target.Ailments.Clear()
			target.defending = false
			target.fallen = true
		}
	case Revive:
		if target != nil {
			target.fallen = false
			target.Sheet.SetCurrent(attribute.VITA, e.Amount)
		}
	case BeginDefend:
		if user != nil {
			user.defending = true
		}
	case BreakDefend:
		if user != nil {
			user.defending = false
		}
	case BeginGuard:
		if user != nil && target != nil {
			user.guarding = target.ID
			target.guardedBy = user.ID
		}
	case BreakGuard:
		if user != nil && user.guarding == e.Target() {
			user.guarding = ids.None
		}
		if target != nil && target.guardedBy == e.User {
			target.guardedBy = ids.None
		}
	case PartyDeath:
		if e.Side == Enemies {
			b.latch(OutcomeVictory)
		} else {
			b.latch(OutcomeLoss)
		}
	case SucceedRun:
		if user != nil && user.Side == Enemies {
			b.latch(OutcomeEnemiesRun)
		} else {
			b.latch(OutcomeAlliesRun)
		}
	}
}

// checkDeath emits the death of a combatant whose VITA reached zero.
func (b *Battle) checkDeath(a *Actor, cause string) {
	if a.fallen || a.Alive() {
		return
	}
	b.kill(a, cause)
}

// kill emits Death, PartyDeath when a's side is wiped out, and the breaking
// of any guard link a held.
func (b *Battle) kill(a *Actor, cause string) {
	b.emit(&Event{Type: Death, Targets: []ids.ActorID{a.ID}, Ailment: cause, Happens: true})
	if b.Living(a.Side) == 0 {
		var fallen []ids.ActorID
		for _, o := range b.side(a.Side) {
			fallen = append(fallen, o.ID)
		}
		b.emit(&Event{Type: PartyDeath, Side: a.Side, Targets: fallen, Happens: true})
	}
	if a.guarding.Valid() {
		b.emit(&Event{Type: BreakGuard, User: a.ID, Targets: []ids.ActorID{a.guarding}, Happens: true})
	}
	if a.guardedBy.Valid() {
		b.emit(&Event{Type: BreakGuard, User: a.guardedBy, Targets: []ids.ActorID{a.ID}, Happens: true})
	}
}
