package battle

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/turnbattle/internal/game/action"
	"github.com/cory-johannsen/turnbattle/internal/game/ai"
	"github.com/cory-johannsen/turnbattle/internal/game/ailment"
	"github.com/cory-johannsen/turnbattle/internal/game/attribute"
	"github.com/cory-johannsen/turnbattle/internal/game/ids"
)

// ErrInvalidChoice wraps every reason a menu selection is rejected.
var ErrInvalidChoice = errors.New("battle: invalid choice")

// selectAllies loads the menu for each ally slot in turn and polls it until
// every living ally has finished selecting.
func (b *Battle) selectAllies() {
	if b.stage == stageEnter {
		b.carryPending(Allies)
		b.stage = stageWorking
	}
	for {
		if b.menuActor.Valid() {
			if !b.menu.Complete() {
				return
			}
			choice := b.menu.Selection()
			b.menu.Unload()
			a := b.Actor(b.menuActor)
			b.menuActor = ids.None
			b.submit(a, choice)
			continue
		}
		a := b.nextSelecting(Allies)
		if a == nil {
			b.phaseDone = true
			return
		}
		if a.Ailments.HasKind(ailment.KindParalysis) {
			b.log.Debug("paralysed; passing", zap.Stringer("actor", a.ID))
			b.enforcePass(a)
			continue
		}
		if err := a.Selection.Begin(); err != nil {
			b.log.Warn("beginning selection", zap.Stringer("actor", a.ID), zap.Error(err))
			a.Selection.Finish()
			continue
		}
		b.menuActor = a.ID
		b.menu.Load(b.view(a))
	}
}

// selectEnemies asks each living enemy's AI module for its actions.
func (b *Battle) selectEnemies() {
	if b.stage == stageEnter {
		b.carryPending(Enemies)
		b.stage = stageWorking
	}
	for {
		a := b.nextSelecting(Enemies)
		if a == nil {
			b.phaseDone = true
			return
		}
		if a.Ailments.HasKind(ailment.KindParalysis) {
			b.enforcePass(a)
			continue
		}
		if err := a.Selection.Begin(); err != nil {
			b.log.Warn("beginning selection", zap.Stringer("actor", a.ID), zap.Error(err))
			a.Selection.Finish()
			continue
		}
		choice, err := Decide(&a.AI, b.view(a))
		if err != nil {
			b.log.Warn("ai decision failed; passing",
				zap.Stringer("actor", a.ID),
				zap.Stringer("difficulty", a.AI.Difficulty()),
				zap.Error(err),
			)
			b.enforcePass(a)
			continue
		}
		b.submit(a, choice)
	}
}

// Decide runs m over the decision space in v.
//
// Postcondition: on success the choice's type is one of v.Types.
func Decide(m *ai.Module, v MenuView) (Choice, error) {
	m.ResetForNewTurn(ai.Status{Turn: v.Turn, QDPercent: v.QDPercent})
	m.SetActionTypes(v.Types)
	m.SetSkills(v.Skills)
	m.SetItems(v.Items)
	m.SetFriendTargets(v.Pools.User, v.Pools.Allies, v.Pools.Fallen)
	m.SetFoeTargets(v.Pools.Foes)
	m.SetGuardTargets(v.GuardTargets)
	if err := m.CalculateAction(); err != nil {
		return Choice{}, err
	}
	if err := m.CalculateTargets(); err != nil {
		return Choice{}, err
	}
	d, ok := m.Decision()
	if !ok {
		return Choice{}, ai.ErrOutOfOrder
	}
	return Choice{Actor: v.Actor, Type: d.Type, Skill: d.Skill, Item: d.Item, Targets: d.Targets}, nil
}

// carryPending finishes the selection of living actors on side whose action
// carries over from an earlier turn.
func (b *Battle) carryPending(side Side) {
	for i := range b.actors {
		a := &b.actors[i]
		if a.Side != side || !a.Alive() || !b.buffer.HasPending(a.ID) {
			continue
		}
		if err := a.Selection.Carry(); err != nil {
			b.log.Warn("carrying action", zap.Stringer("actor", a.ID), zap.Error(err))
			a.Selection.Finish()
		}
	}
}

func (b *Battle) nextSelecting(side Side) *Actor {
	for i := range b.actors {
		a := &b.actors[i]
		if a.Side == side && a.Alive() && !a.Selection.Done() {
			return a
		}
	}
	return nil
}

// submit validates choice and buffers it, replacing anything invalid with an
// enforced pass.
func (b *Battle) submit(a *Actor, choice Choice) {
	if choice.Finished && a.Selection.Count() > 0 {
		if err := a.Selection.Decline(); err != nil {
			b.log.Warn("declining action", zap.Stringer("actor", a.ID), zap.Error(err))
			a.Selection.Finish()
		}
		return
	}
	entry, err := b.validate(a, choice)
	if err != nil {
		b.log.Warn("invalid selection; passing", zap.Stringer("actor", a.ID), zap.Error(err))
		b.enforcePass(a)
		return
	}
	b.add(a, entry)
}

// enforcePass buffers a pass for a's current slot and finishes its selection.
func (b *Battle) enforcePass(a *Actor) {
	if !a.Selection.Choosing() {
		if err := a.Selection.Begin(); err != nil {
			a.Selection.Finish()
			return
		}
	}
	b.add(a, Entry{User: a.ID, Slot: a.Selection.Count(), Type: action.Pass, Turn: b.turn, Enforced: true})
}

func (b *Battle) add(a *Actor, e Entry) {
	if err := b.buffer.Add(e); err != nil {
		b.log.Warn("buffering action", zap.Stringer("actor", a.ID), zap.Error(err))
		a.Selection.Finish()
		return
	}
	if err := a.Selection.Choose(); err != nil {
		b.log.Warn("recording selection", zap.Stringer("actor", a.ID), zap.Error(err))
	}
	switch {
	case e.Type == action.Pass, e.Type == action.Run, e.Type == action.Guard:
		a.Selection.Finish()
	case a.Selection.Count() >= a.actionsAllowed(b.cfg.MaxActionsPerTurn):
		a.Selection.Finish()
	}
}

// validate turns a choice into a buffer entry.
//
// Postcondition: returns an error wrapping ErrInvalidChoice when the type,
// skill, item or targets are not legal for a right now.
func (b *Battle) validate(a *Actor, c Choice) (Entry, error) {
	if c.Actor.Valid() && c.Actor != a.ID {
		return Entry{}, fmt.Errorf("%w: choice is for %s", ErrInvalidChoice, c.Actor)
	}
	v := b.view(a)
	if !slices.Contains(v.Types, c.Type) {
		return Entry{}, fmt.Errorf("%w: action type %s not available", ErrInvalidChoice, c.Type)
	}
	e := Entry{User: a.ID, Slot: v.Slot, Type: c.Type, Turn: b.turn}
	switch c.Type {
	case action.Skill:
		if c.Skill == nil || !slices.ContainsFunc(v.Skills, func(s *action.SkillDef) bool { return s.ID == c.Skill.ID }) {
			return Entry{}, fmt.Errorf("%w: skill not available", ErrInvalidChoice)
		}
		if err := c.Skill.Scope.Accepts(v.Pools, c.Targets); err != nil {
			return Entry{}, fmt.Errorf("%w: %w", ErrInvalidChoice, err)
		}
		e.Skill = c.Skill
		e.Cooldown = c.Skill.Cooldown
		e.Targets = append([]ids.ActorID(nil), c.Targets...)
	case action.Item:
		if c.Item == nil || !slices.ContainsFunc(v.Items, func(it *action.ItemDef) bool { return it.ID == c.Item.ID }) {
			return Entry{}, fmt.Errorf("%w: item not available", ErrInvalidChoice)
		}
		if err := c.Item.Scope.Accepts(v.Pools, c.Targets); err != nil {
			return Entry{}, fmt.Errorf("%w: %w", ErrInvalidChoice, err)
		}
		e.Item = c.Item
		e.Targets = append([]ids.ActorID(nil), c.Targets...)
	case action.Guard:
		if len(c.Targets) != 1 || !slices.Contains(v.GuardTargets, c.Targets[0]) {
			return Entry{}, fmt.Errorf("%w: guard target not available", ErrInvalidChoice)
		}
		e.Targets = []ids.ActorID{c.Targets[0]}
	}
	return e, nil
}

// view builds the decision space for a's next action.
func (b *Battle) view(a *Actor) MenuView {
	pools := b.pools(a)
	pending := b.pending(a)
	v := MenuView{
		Actor:     a.ID,
		Name:      a.Name(),
		Slot:      a.Selection.Count(),
		Turn:      b.turn,
		QDPercent: a.Sheet.Percent(attribute.QTDR),
		Pools:     pools,
	}
	if !pending[action.Guard] {
		v.GuardTargets = b.guardCandidates(a)
	}
	for _, s := range a.UsableSkills() {
		if s.Scope.Satisfiable(pools) {
			v.Skills = append(v.Skills, s)
		}
	}
	if !a.Ailments.Restricts(action.Item.String()) {
		for _, id := range b.parties[a.Side].ItemIDs() {
			if it, ok := b.actions.Item(id); ok && it.Scope.Satisfiable(pools) {
				v.Items = append(v.Items, it)
			}
		}
	}
	v.Types = b.legalTypes(a, v, pending)
	return v
}

// pending returns the action types a has already submitted this turn.
func (b *Battle) pending(a *Actor) map[action.Type]bool {
	out := make(map[action.Type]bool)
	for _, e := range b.buffer.Entries() {
		if e.User == a.ID && e.Turn == b.turn {
			out[e.Type] = true
		}
	}
	return out
}

// legalTypes lists the action types a may choose, in menu order. Pass is
// always legal. Defend and Guard are offered once per turn.
func (b *Battle) legalTypes(a *Actor, v MenuView, pending map[action.Type]bool) []action.Type {
	restricted := func(t action.Type) bool { return a.Ailments.Restricts(t.String()) }
	var out []action.Type
	if len(v.Skills) > 0 {
		out = append(out, action.Skill)
	}
	if len(v.Items) > 0 {
		out = append(out, action.Item)
	}
	if !a.defending && !pending[action.Defend] && !restricted(action.Defend) {
		out = append(out, action.Defend)
	}
	if len(v.GuardTargets) > 0 && !restricted(action.Guard) {
		out = append(out, action.Guard)
	}
	if !restricted(action.Run) {
		out = append(out, action.Run)
	}
	return append(out, action.Pass)
}

// guardCandidates returns the living allies a may guard: not a itself, not
// defending, and not already part of a guard link.
func (b *Battle) guardCandidates(a *Actor) []ids.ActorID {
	if a.InGuardPair() {
		return nil
	}
	var out []ids.ActorID
	for i := range b.actors {
		o := &b.actors[i]
		if o.Side != a.Side || o.ID == a.ID || !o.Alive() || o.defending || o.InGuardPair() {
			continue
		}
		out = append(out, o.ID)
	}
	return out
}

// pools partitions the combatants relative to a.
func (b *Battle) pools(a *Actor) action.Pools {
	p := action.Pools{User: a.ID}
	for i := range b.actors {
		o := &b.actors[i]
		switch {
		case o.Side == a.Side && o.Alive():
			p.Allies = append(p.Allies, o.ID)
		case o.Side == a.Side:
			p.Fallen = append(p.Fallen, o.ID)
		case o.Alive():
			p.Foes = append(p.Foes, o.ID)
		}
	}
	return p
}
