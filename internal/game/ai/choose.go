package ai

import (
	"github.com/cory-johannsen/turnbattle/internal/game/action"
	"github.com/cory-johannsen/turnbattle/internal/game/dice"
	"github.com/cory-johannsen/turnbattle/internal/game/ids"
)

// personalityScale returns the weight multiplier a personality applies to t.
func personalityScale(p Personality, t action.Type) float64 {
	switch p {
	case Aggressor:
		if t == action.Skill {
			return 1.5
		}
	case Defender:
		if t == action.Defend || t == action.Guard {
			return 3.0
		}
	case Retreater:
		if t == action.Run {
			return 4.0
		}
	case Miser:
		if t == action.Item {
			return 0.25
		}
	}
	return 1.0
}

func (m *Module) baseWeight(t action.Type) float64 {
	f := m.factors
	switch t {
	case action.Skill:
		base := f.RandomSkill
		if m.difficulty == Priority {
			base = f.PrioritySkill
		}
		if f.Variance > 0 {
			base += (dice.Float(m.src)*2 - 1) * f.Variance
		}
		return base
	case action.Item:
		return f.BaseItem + float64(100-m.status.QDPercent)*f.LeanToItem
	case action.Guard:
		return f.Guard
	case action.Defend:
		return f.Defend
	case action.Run:
		return f.Run
	case action.Pass:
		return f.Pass
	}
	return 0
}

// CalculateActionTypeChances returns the normalized distribution over the
// legal action types, in the order they were set.
//
// Postcondition: for a non-empty legal set the chances are >= 0 and sum to 1.
// When every weight is zero, Pass takes the whole mass if legal; otherwise the
// mass is spread uniformly.
func (m *Module) CalculateActionTypeChances() []TypeChance {
	if len(m.types) == 0 {
		return nil
	}
	out := make([]TypeChance, len(m.types))
	total := 0.0
	for i, t := range m.types {
		w := m.baseWeight(t)
		w *= personalityScale(m.primary, t)
		w *= 1 + (personalityScale(m.secondary, t)-1)/2
		if w < 0 {
			w = 0
		}
		out[i] = TypeChance{Type: t, Chance: w}
		total += w
	}
	if total <= 0 {
		passIdx := -1
		for i, tc := range out {
			if tc.Type == action.Pass {
				passIdx = i
			}
		}
		for i := range out {
			switch {
			case passIdx >= 0 && i == passIdx:
				out[i].Chance = 1
			case passIdx >= 0:
				out[i].Chance = 0
			default:
				out[i].Chance = 1 / float64(len(out))
			}
		}
		return out
	}
	for i := range out {
		out[i].Chance /= total
	}
	return out
}

// drawType samples chances by inverse CDF against a uniform [0, 1) draw.
// Zero-chance entries are never returned.
func drawType(chances []TypeChance, r float64) action.Type {
	cum := 0.0
	last := action.None
	for _, c := range chances {
		if c.Chance <= 0 {
			continue
		}
		cum += c.Chance
		last = c.Type
		if r < cum {
			return c.Type
		}
	}
	return last
}

// drawWeighted returns an index into weights sampled proportionally, or
// uniformly when every weight is zero.
func drawWeighted(src dice.Source, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return src.Intn(len(weights))
	}
	r := src.Intn(total)
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}
	return len(weights) - 1
}

// CalculateAction clears invalid options, draws an action type and, for
// skills and items, chooses which one.
//
// Postcondition: on success Stage() == StageIndexChosen.
func (m *Module) CalculateAction() error {
	m.stage = StageNone
	m.decision = Decision{Turn: m.status.Turn}
	if m.difficulty == Tactical || m.difficulty == DeepThought {
		return ErrNotImplemented
	}
	m.ClearInvalid()
	if len(m.types) == 0 {
		return ErrNoLegalAction
	}
	t := drawType(m.CalculateActionTypeChances(), dice.Float(m.src))
	if t == action.None {
		return ErrNoLegalAction
	}
	m.decision.Type = t
	m.stage = StageTypeChosen

	switch t {
	case action.Skill:
		weights := make([]int, len(m.skills))
		if m.difficulty == Priority {
			for i, s := range m.skills {
				weights[i] = s.Value
			}
		}
		m.decision.Skill = m.skills[drawWeighted(m.src, weights)]
	case action.Item:
		weights := make([]int, len(m.items))
		if m.difficulty == Priority {
			for i, it := range m.items {
				weights[i] = it.Value
			}
		}
		m.decision.Item = m.items[drawWeighted(m.src, weights)]
	}
	m.stage = StageIndexChosen
	return nil
}

// fallback widens a scope whose candidates ran out.
var fallback = map[action.Scope]action.Scope{
	action.TwoEnemies:     action.OneEnemy,
	action.TwoAllies:      action.OneAlly,
	action.OneAllyNotUser: action.OneAlly,
	action.NotUser:        action.OneTarget,
}

// CalculateTargets chooses targets for the drawn action.
//
// Precondition: CalculateAction succeeded.
// Postcondition: on success Stage() == StageComplete and the decision is
// recorded in History.
func (m *Module) CalculateTargets() error {
	if m.stage != StageIndexChosen {
		return ErrOutOfOrder
	}
	var targets []ids.ActorID
	var err error
	switch m.decision.Type {
	case action.Skill:
		targets, err = m.scopeTargets(m.decision.Skill.Scope)
	case action.Item:
		targets, err = m.scopeTargets(m.decision.Item.Scope)
	case action.Guard:
		if len(m.guardTargets) == 0 {
			return ErrTargetsNotSelected
		}
		targets = []ids.ActorID{m.guardTargets[m.src.Intn(len(m.guardTargets))]}
	}
	if err != nil {
		return err
	}
	m.decision.Targets = targets
	m.stage = StageComplete
	m.record(m.decision)
	return nil
}

func (m *Module) scopeTargets(s action.Scope) ([]ids.ActorID, error) {
	switch s.Pick() {
	case action.PickNone:
		return nil, nil
	case action.PickAll:
		c := s.Candidates(m.pools)
		if len(c) == 0 {
			return nil, ErrTargetsNotSelected
		}
		return c, nil
	case action.PickOne:
		if c := s.Candidates(m.pools); len(c) == 1 {
			return c, nil
		}
	}
	if m.difficulty != Random {
		return nil, ErrTargetsNotSelected
	}
	switch s.Pick() {
	case action.PickParty:
		first, second := m.pools.Allies, m.pools.Foes
		if m.src.Intn(2) == 1 {
			first, second = second, first
		}
		if len(first) == 0 {
			first = second
		}
		if len(first) == 0 {
			return nil, ErrTargetsNotSelected
		}
		return append([]ids.ActorID(nil), first...), nil
	case action.PickTwo:
		c := s.Candidates(m.pools)
		if len(c) < 2 {
			if wider, ok := fallback[s]; ok {
				return m.scopeTargets(wider)
			}
			return nil, ErrTargetsNotSelected
		}
		return m.drawWithoutReplacement(c, 2), nil
	default:
		c := s.Candidates(m.pools)
		if len(c) == 0 {
			if wider, ok := fallback[s]; ok {
				return m.scopeTargets(wider)
			}
			return nil, ErrTargetsNotSelected
		}
		return m.drawWithoutReplacement(c, 1), nil
	}
}

func (m *Module) drawWithoutReplacement(pool []ids.ActorID, n int) []ids.ActorID {
	out := make([]ids.ActorID, 0, n)
	for len(out) < n && len(pool) > 0 {
		i := m.src.Intn(len(pool))
		out = append(out, pool[i])
		pool = append(pool[:i:i], pool[i+1:]...)
	}
	return out
}
