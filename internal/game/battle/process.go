package battle

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/turnbattle/internal/game/action"
	"github.com/cory-johannsen/turnbattle/internal/game/ailment"
	"github.com/cory-johannsen/turnbattle/internal/game/attribute"
	"github.com/cory-johannsen/turnbattle/internal/game/dice"
	"github.com/cory-johannsen/turnbattle/internal/game/ids"
)

// processActions resolves the buffer in momentum order, presenting the events
// of each action before moving to the next. A latched outcome stops
// processing once its events have been presented.
func (b *Battle) processActions(cycle time.Duration) {
	if b.stage == stageEnter {
		b.buffer.Sort(b.momentumOf)
		b.stage = stageWorking
	}
	for {
		if b.stage == stagePresenting {
			if !b.timeline.advance(cycle) {
				return
			}
			cycle = 0
			b.stage = stageWorking
			if b.outcome != OutcomeNone {
				b.phaseDone = true
				return
			}
		}
		if !b.buffer.SetNext() {
			b.phaseDone = true
			return
		}
		b.resolve(b.buffer.Current())
		if b.events.Len() > 0 {
			b.timeline.load(b.events.Take())
			b.stage = stagePresenting
		}
	}
}

func (b *Battle) momentumOf(id ids.ActorID) int {
	if a := b.Actor(id); a != nil {
		return a.Momentum()
	}
	return 0
}

// resolve turns one buffer entry into events. Entries of fallen users are
// dropped without events.
func (b *Battle) resolve(e *Entry) {
	user := b.Actor(e.User)
	if user == nil || !user.Alive() {
		b.log.Debug("dropping action of fallen user", zap.Stringer("actor", e.User))
		return
	}
	if e.Cooldown > 0 {
		b.emit(&Event{Type: SkillCooldown, User: user.ID, Skill: e.Skill, Targets: e.Targets, Amount: e.Cooldown, Happens: true})
		b.buffer.Defer()
		return
	}

	b.emit(&Event{Type: ActionBegin, Action: e.Type, User: user.ID, Targets: e.Targets, Happens: true})
	if e.Type != action.Guard && e.Type != action.Pass && user.guarding.Valid() {
		b.emit(&Event{Type: BreakGuard, User: user.ID, Targets: []ids.ActorID{user.guarding}, Happens: true})
	}
	switch e.Type {
	case action.Skill:
		b.useSkill(user, e)
	case action.Item:
		b.useItem(user, e)
	case action.Defend:
		b.emit(&Event{Type: BeginDefend, User: user.ID, Happens: true})
	case action.Guard:
		b.guard(user, e)
	case action.Run:
		b.run(user)
	default:
		b.emit(&Event{Type: PassTurn, User: user.ID, Happens: true})
	}
	b.emit(&Event{Type: ActionEnd, Action: e.Type, User: user.ID, Happens: true})
}

func (b *Battle) useSkill(user *Actor, e *Entry) {
	s := e.Skill
	if s == nil || user.Ailments.Restricts(action.Skill.String()) || user.Sheet.Current.Get(attribute.QTDR) < s.Cost {
		b.emit(&Event{Type: Fizzle, User: user.ID, Skill: s, Targets: e.Targets})
		return
	}
	targets := b.confuse(user, e.Targets)
	b.emit(&Event{Type: SkillUse, User: user.ID, Skill: s, Targets: targets, Amount: s.Cost, Happens: true})
	if !dice.ChanceHappens(b.src, s.HitChance(), 100) {
		b.emit(&Event{Type: SkillMiss, User: user.ID, Skill: s, Targets: targets})
		return
	}
	b.applyEffects(user, s.Effects, targets, s, nil)
}

func (b *Battle) useItem(user *Actor, e *Entry) {
	it := e.Item
	if it == nil || b.parties[user.Side].ItemCount(it.ID) < 1 {
		b.emit(&Event{Type: Fizzle, User: user.ID, Item: it, Targets: e.Targets})
		return
	}
	targets := b.confuse(user, e.Targets)
	b.emit(&Event{Type: ItemUse, User: user.ID, Item: it, Targets: targets, Happens: true})
	b.applyEffects(user, it.Effects, targets, nil, it)
}

// confuse replaces each target of a confused user with a random living combatant.
func (b *Battle) confuse(user *Actor, targets []ids.ActorID) []ids.ActorID {
	if len(targets) == 0 || !user.Ailments.HasKind(ailment.KindConfuse) {
		return targets
	}
	var living []ids.ActorID
	for i := range b.actors {
		if b.actors[i].Alive() {
			living = append(living, b.actors[i].ID)
		}
	}
	out := make([]ids.ActorID, len(targets))
	for i := range targets {
		out[i] = living[b.src.Intn(len(living))]
	}
	b.log.Debug("confused targets", zap.Stringer("actor", user.ID), zap.Any("targets", out))
	return out
}

// applyEffects applies every effect to every target in order. Targets that
// fell before their turn in the list produce a single Fizzle each.
func (b *Battle) applyEffects(user *Actor, effects []action.Effect, targets []ids.ActorID, s *action.SkillDef, it *action.ItemDef) {
	fizzled := make(map[ids.ActorID]bool)
	fizzle := func(t ids.ActorID) {
		if fizzled[t] {
			return
		}
		fizzled[t] = true
		b.emit(&Event{Type: Fizzle, User: user.ID, Skill: s, Item: it, Targets: []ids.ActorID{t}})
	}
	for i := range effects {
		eff := &effects[i]
		for _, tid := range targets {
			if b.outcome != OutcomeNone {
				return
			}
			t := b.Actor(tid)
			if t == nil {
				continue
			}
			one := []ids.ActorID{t.ID}
			if eff.Kind == action.EffectRevive {
				if t.Alive() {
					fizzle(t.ID)
					continue
				}
				amt := max(1, b.effectAmount(eff, t.Sheet.Max.Get(attribute.VITA)))
				b.emit(&Event{Type: Revive, User: user.ID, Skill: s, Item: it, Targets: one, Amount: amt, Happens: true})
				continue
			}
			if !t.Alive() {
				fizzle(t.ID)
				continue
			}
			switch eff.Kind {
			case action.EffectDamage:
				b.damage(user, t, eff, s, it)
			case action.EffectHeal:
				amt := b.effectAmount(eff, t.Sheet.Max.Get(attribute.VITA))
				b.emit(&Event{Type: HealHealth, User: user.ID, Skill: s, Item: it, Targets: one, Amount: amt, Happens: true})
			case action.EffectRestoreQD:
				amt := b.effectAmount(eff, t.Sheet.Max.Get(attribute.QTDR))
				b.emit(&Event{Type: RestoreQtdr, User: user.ID, Skill: s, Item: it, Targets: one, Amount: amt, Happens: true})
			case action.EffectInflict:
				b.inflict(user, t, eff, s, it)
			case action.EffectRelieve:
				if !t.Ailments.Has(eff.Ailment) {
					fizzle(t.ID)
					continue
				}
				b.emit(&Event{Type: CureInfliction, User: user.ID, Skill: s, Item: it, Targets: one, Ailment: eff.Ailment, Happens: true})
			}
		}
	}
}

func (b *Battle) effectAmount(eff *action.Effect, ceiling int) int {
	return eff.Amount + eff.Percent*ceiling/100 + b.roll(eff.Dice)
}

func (b *Battle) roll(expr string) int {
	if expr == "" {
		return 0
	}
	res, err := b.roller.RollExpr(expr)
	if err != nil {
		b.log.Warn("rolling effect dice", zap.String("expr", expr), zap.Error(err))
		return 0
	}
	return res.Total()
}

func (b *Battle) inflict(user, t *Actor, eff *action.Effect, s *action.SkillDef, it *action.ItemDef) {
	one := []ids.ActorID{t.ID}
	def, ok := b.ailments.Get(eff.Ailment)
	if !ok {
		b.log.Warn("unknown ailment", zap.String("ailment", eff.Ailment))
		b.emit(&Event{Type: Fizzle, User: user.ID, Skill: s, Item: it, Targets: one})
		return
	}
	if t.Ailments.Has(def.ID) {
		b.emit(&Event{Type: AlreadyInflicted, User: user.ID, Skill: s, Item: it, Targets: one, Ailment: def.ID})
		return
	}
	if !dice.ChanceHappens(b.src, eff.InflictChance(), 100) {
		b.emit(&Event{Type: ActionMiss, User: user.ID, Skill: s, Item: it, Targets: one, Ailment: def.ID})
		return
	}
	b.emit(&Event{Type: Infliction, User: user.ID, Skill: s, Item: it, Targets: one, Ailment: def.ID, Amount: eff.Turns, Happens: true})
}

// damage resolves one damage effect against t. A guarded target's damage is
// redirected to its guard.
func (b *Battle) damage(user, t *Actor, eff *action.Effect, s *action.SkillDef, it *action.ItemDef) {
	dodge := int(float64(t.Sheet.Temp.Get(attribute.LIMB)) * b.cfg.DodgePcPerPoint)
	if dice.ChanceHappens(b.src, dodge, 100) {
		b.emit(&Event{Type: ActionMiss, User: user.ID, Skill: s, Item: it, Targets: []ids.ActorID{t.ID}})
		return
	}

	base := float64(eff.Amount + b.roll(eff.Dice))
	if !eff.Fixed {
		off, def := attribute.PHAG, attribute.PHFD
		if eff.ElementOrDefault() == action.Thermal {
			off, def = attribute.THAG, attribute.THFD
		}
		base += float64(user.Sheet.Temp.Get(off))*b.cfg.OffenseFactor - float64(t.Sheet.Temp.Get(def))*b.cfg.DefenseFactor
		if b.cfg.DamageVariance > 0 {
			base *= 1 + (dice.Float(b.src)*2-1)*b.cfg.DamageVariance
		}
	}
	amt := max(1, int(math.Round(base)))

	typ := StandardDamage
	crit := eff.CritChance + int(float64(user.Sheet.Temp.Get(attribute.UNBR))*b.cfg.CritPcPerPoint)
	if dice.ChanceHappens(b.src, crit, 100) {
		amt = scale(amt, b.cfg.CritMultiplier)
		typ = CriticalDamage
	}
	if t.defending {
		amt = scale(amt, b.cfg.DefendModifier)
	}

	receiver, protected := t, ids.None
	if g := b.Actor(t.guardedBy); g != nil && g.Alive() {
		receiver, protected = g, t.ID
		amt = scale(amt, b.cfg.GuardModifier)
	}
	b.emit(&Event{
		Type:      typ,
		User:      user.ID,
		Skill:     s,
		Item:      it,
		Targets:   []ids.ActorID{receiver.ID},
		Amount:    amt,
		Protected: protected,
		Happens:   true,
	})
	b.checkDeath(receiver, "")
}

// scale multiplies n by f, rounding, with a floor of 1. A zero factor
// blocks the hit outright.
func scale(n int, f float64) int {
	if f == 0 {
		return 0
	}
	return max(1, int(math.Round(float64(n)*f)))
}

// guard links user to its target. Either end already being linked fails.
func (b *Battle) guard(user *Actor, e *Entry) {
	var t *Actor
	if len(e.Targets) == 1 {
		t = b.Actor(e.Targets[0])
	}
	if t == nil || !t.Alive() {
		b.emit(&Event{Type: Fizzle, User: user.ID, Targets: e.Targets})
		return
	}
	one := []ids.ActorID{t.ID}
	if t.ID == user.ID || user.InGuardPair() || t.InGuardPair() {
		b.emit(&Event{Type: FailGuard, User: user.ID, Targets: one})
		return
	}
	b.emit(&Event{Type: BeginGuard, User: user.ID, Targets: one, Happens: true})
}

func (b *Battle) run(user *Actor) {
	pct := b.RunChance(user.ID)
	b.emit(&Event{Type: AttemptRun, User: user.ID, Side: user.Side, Amount: pct, Happens: true})
	if dice.ChanceHappens(b.src, pct, 100) {
		b.emit(&Event{Type: SucceedRun, User: user.ID, Side: user.Side, Happens: true})
		return
	}
	b.emit(&Event{Type: FailRun, User: user.ID, Side: user.Side})
}

// RunChance returns the percent chance that actor id escapes: the base
// chance adjusted by its momentum, weighted momentum of its living allies,
// and mean momentum of living foes.
//
// Postcondition: 0 <= result <= 100; 0 for an unknown actor.
func (b *Battle) RunChance(id ids.ActorID) int {
	a := b.Actor(id)
	if a == nil {
		return 0
	}
	var allySum, allyN, foeSum, foeN int
	for i := range b.actors {
		o := &b.actors[i]
		if !o.Alive() || o.ID == a.ID {
			continue
		}
		if o.Side == a.Side {
			allySum += o.Momentum()
			allyN++
		} else {
			foeSum += o.Momentum()
			foeN++
		}
	}
	adv := float64(a.Momentum())
	if allyN > 0 {
		adv += b.cfg.AllyRunFactor * float64(allySum) / float64(allyN)
	}
	if foeN > 0 {
		adv -= float64(foeSum) / float64(foeN)
	}
	pct := int(math.Round(b.cfg.BaseRunChance*100 + adv*b.cfg.RunPcPerPoint))
	return min(100, max(0, pct))
}
