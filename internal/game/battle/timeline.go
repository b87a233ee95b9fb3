package battle

import "time"

// timeline presents a group of performed events one after another, holding
// each for its configured delay.
type timeline struct {
	delays    Delays
	presenter Presenter
	sound     Sound

	events  []*Event
	idx     int
	elapsed time.Duration
	started bool
}

func (t *timeline) load(events []*Event) {
	t.events = events
	t.idx = 0
	t.elapsed = 0
	t.started = false
}

// advance moves the presentation forward by cycle and reports whether every
// loaded event has been rendered.
func (t *timeline) advance(cycle time.Duration) bool {
	t.elapsed += cycle
	for t.idx < len(t.events) {
		e := t.events[t.idx]
		if !t.started {
			t.show(e)
			t.started = true
		}
		d := t.delay(e.Type)
		if t.elapsed < d {
			return false
		}
		t.elapsed -= d
		e.rendered = true
		t.idx++
		t.started = false
	}
	t.elapsed = 0
	return true
}

func (t *timeline) done() bool { return t.idx >= len(t.events) }

func (t *timeline) show(e *Event) {
	if t.presenter != nil {
		t.presenter.Present(*e)
	}
	if t.sound != nil {
		if id, ok := soundFor[e.Type]; ok {
			t.sound.AddPlayToQueue(id, 0)
		}
	}
}

func (t *timeline) delay(typ EventType) time.Duration {
	switch typ {
	case ActionBegin, ActionEnd, BeginDefend, BreakDefend, BeginGuard, BreakGuard, FailGuard, PassTurn, AttemptRun, FailRun:
		return t.delays.Action
	case SkillUse, ItemUse, SkillMiss, ActionMiss, SkillCooldown, Fizzle:
		return t.delays.Skill
	case Death, PartyDeath, SucceedRun:
		return t.delays.Death
	case Infliction, AlreadyInflicted, CureInfliction, PoisonDamage, BurnDamage, AilmentDamage:
		return t.delays.Ailment
	default:
		return t.delays.Damage
	}
}
