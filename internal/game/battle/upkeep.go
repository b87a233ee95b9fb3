package battle

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/turnbattle/internal/game/ailment"
	"github.com/cory-johannsen/turnbattle/internal/game/attribute"
	"github.com/cory-johannsen/turnbattle/internal/game/ids"
)

func (b *Battle) begin() {
	for i := range b.actors {
		a := &b.actors[i]
		a.AI.ResetForNewBattle()
		a.Selection.Reset()
	}
	b.buffer.Clear()
	b.turn = 1
	b.log.Info("battle begins", zap.Int("actors", len(b.actors)))
	b.phaseDone = true
}

// generalUpkeep rebuilds every combatant's turn-local stats and marks the
// living for per-actor upkeep. The first turn has no upkeep.
func (b *Battle) generalUpkeep() {
	for i := range b.actors {
		a := &b.actors[i]
		a.Sheet.ResetTemp()
		buffs := ailment.Buffs(a.Ailments)
		for _, attr := range attribute.All() {
			if v := buffs.Get(attr); v != 0 {
				a.Sheet.Buff(attr, v)
			}
		}
		a.upkeep = b.turn > 1 && a.Alive()
	}
	b.phaseDone = true
}

func (b *Battle) upkeep(cycle time.Duration) {
	if b.stage == stageEnter {
		for i := range b.actors {
			a := &b.actors[i]
			if a.upkeep && a.Alive() {
				b.upkeepActor(a)
			}
			a.upkeep = false
			if b.outcome != OutcomeNone {
				break
			}
		}
	}
	if b.present(cycle) {
		b.phaseDone = true
	}
}

// upkeepActor applies ailment ticks, expirations and QTDR regeneration to a.
func (b *Battle) upkeepActor(a *Actor) {
	target := []ids.ActorID{a.ID}
	maxVita := a.Sheet.Max.Get(attribute.VITA)
	for _, act := range a.Ailments.All() {
		if !a.Alive() {
			break
		}
		def := act.Def
		switch def.Kind {
		case ailment.KindPoison, ailment.KindBurn:
			if def.TickPercent > 0 {
				typ := PoisonDamage
				if def.Kind == ailment.KindBurn {
					typ = BurnDamage
				}
				amt := max(1, maxVita*def.TickPercent/100)
				b.emit(&Event{Type: typ, Targets: target, Amount: amt, Ailment: def.ID, Happens: true})
			}
		case ailment.KindHibernation:
			amt := maxVita * def.RegenPercent / 100
			if amt > 0 && a.Vita() < maxVita {
				b.emit(&Event{Type: RegenVita, Targets: target, Amount: amt, Ailment: def.ID, Happens: true})
			}
		}
		if def.LuaOnTick != "" && b.hook != nil && a.Alive() {
			extra, err := b.hook.OnTick(def.LuaOnTick, ailment.TickContext{
				Ailment:        def.ID,
				Target:         a.Name(),
				Vita:           a.Vita(),
				MaxVita:        maxVita,
				TurnsRemaining: act.TurnsRemaining,
				Turn:           b.turn,
			})
			switch {
			case err != nil:
				b.log.Warn("ailment tick hook failed",
					zap.String("ailment", def.ID),
					zap.String("fn", def.LuaOnTick),
					zap.Error(err),
				)
			case extra > 0:
				b.emit(&Event{Type: AilmentDamage, Targets: target, Amount: extra, Ailment: def.ID, Happens: true})
			}
		}
		b.checkDeath(a, def.ID)
	}
	if !a.Alive() {
		return
	}

	for _, exp := range a.Ailments.Tick() {
		b.emit(&Event{Type: CureInfliction, Targets: target, Ailment: exp.Def.ID, Happens: true})
		if exp.Def.Kind == ailment.KindDeathTimer {
			b.kill(a, exp.Def.ID)
			return
		}
	}

	maxQD := a.Sheet.Max.Get(attribute.QTDR)
	if amt := maxQD * b.cfg.QDRegenPercent / 100; amt > 0 && a.Sheet.Current.Get(attribute.QTDR) < maxQD {
		b.emit(&Event{Type: RegenQtdr, Targets: target, Amount: amt, Happens: true})
	}
}
