package battle_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/turnbattle/internal/game/action"
	"github.com/cory-johannsen/turnbattle/internal/game/ai"
	"github.com/cory-johannsen/turnbattle/internal/game/ailment"
	"github.com/cory-johannsen/turnbattle/internal/game/battle"
	"github.com/cory-johannsen/turnbattle/internal/game/dice"
	"github.com/cory-johannsen/turnbattle/internal/game/ids"
	"github.com/cory-johannsen/turnbattle/internal/game/person"
)

// highSrc always draws the top of the range, so no chance below 100% happens.
type highSrc struct{}

func (highSrc) Intn(n int) int { return n - 1 }

var (
	jab = &action.SkillDef{ID: "jab", Name: "Jab", Scope: action.OneEnemy,
		Effects: []action.Effect{{Kind: action.EffectDamage, Amount: 40, Fixed: true}}}
	charge = &action.SkillDef{ID: "charge", Name: "Charge", Scope: action.OneEnemy, Cooldown: 1,
		Effects: []action.Effect{{Kind: action.EffectDamage, Amount: 30, Fixed: true}}}
	venom = &action.SkillDef{ID: "venom", Name: "Venom", Scope: action.OneEnemy,
		Effects: []action.Effect{{Kind: action.EffectInflict, Ailment: "poison"}}}
	tonic = &action.ItemDef{ID: "tonic", Name: "Tonic", Scope: action.OneAlly,
		Effects: []action.Effect{{Kind: action.EffectHeal, Amount: 25}}}
	poison = &ailment.Def{ID: "poison", Name: "Poison", Kind: ailment.KindPoison,
		DurationType: ailment.DurationTurns, Turns: 3, TickPercent: 10, LuaOnTick: "poison_tick"}
	paralysis = &ailment.Def{ID: "paralysis", Name: "Paralysis", Kind: ailment.KindParalysis,
		DurationType: ailment.DurationTurns, Turns: 2, RestrictActions: []string{ailment.RestrictAll}}
)

func registries(t testing.TB) (*action.Registry, *ailment.Registry) {
	t.Helper()
	acts := action.NewRegistry()
	for _, s := range []*action.SkillDef{jab, charge, venom} {
		require.NoError(t, acts.RegisterSkill(s))
	}
	require.NoError(t, acts.RegisterItem(tonic))
	ails := ailment.NewRegistry()
	require.NoError(t, ails.Register(poison))
	require.NoError(t, ails.Register(paralysis))
	return acts, ails
}

func member(id string, vita, mmnt int, skills ...string) *person.Person {
	tmpl := &person.Template{
		ID:    id,
		Name:  id,
		Level: 1,
		Base:  map[string]int{"VITA": vita, "QTDR": 50, "MMNT": mmnt},
	}
	for _, s := range skills {
		tmpl.Skills = append(tmpl.Skills, person.SkillUnlock{Skill: s, Level: 1})
	}
	return person.New(id, tmpl, 1)
}

// testConfig disables delays and makes enemy AIs always pass.
func testConfig() battle.Config {
	cfg := battle.DefaultConfig()
	cfg.Delays = battle.Delays{}
	cfg.AI = ai.Factors{Pass: 1}
	cfg.QDRegenPercent = 0
	return cfg
}

type recorder struct {
	events    []battle.Event
	onPresent func(e battle.Event)
}

func (r *recorder) Present(e battle.Event) {
	r.events = append(r.events, e)
	if r.onPresent != nil {
		r.onPresent(e)
	}
}

func (r *recorder) index(typ battle.EventType) int {
	for i, e := range r.events {
		if e.Type == typ {
			return i
		}
	}
	return -1
}

func (r *recorder) ofType(typ battle.EventType) []battle.Event {
	var out []battle.Event
	for _, e := range r.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// scriptMenu answers every load with choose(view). While hold is set it
// never completes.
type scriptMenu struct {
	choose func(v battle.MenuView) battle.Choice
	hold   bool

	views    []battle.MenuView
	loaded   bool
	unloaded int
	choice   battle.Choice
}

func (m *scriptMenu) Load(v battle.MenuView) {
	m.views = append(m.views, v)
	m.loaded = true
	m.choice = m.choose(v)
}

func (m *scriptMenu) Complete() bool { return m.loaded && !m.hold }

func (m *scriptMenu) Selection() battle.Choice { return m.choice }

func (m *scriptMenu) Unload() {
	m.loaded = false
	m.unloaded++
}

// skillAtFoe targets the foe at index i of the view's foe pool.
func skillAtFoe(s *action.SkillDef, i int) func(battle.MenuView) battle.Choice {
	return func(v battle.MenuView) battle.Choice {
		return battle.Choice{Actor: v.Actor, Type: action.Skill, Skill: s, Targets: []ids.ActorID{v.Pools.Foes[i]}}
	}
}

func choose(typ action.Type) func(battle.MenuView) battle.Choice {
	return func(v battle.MenuView) battle.Choice {
		return battle.Choice{Actor: v.Actor, Type: typ}
	}
}

type fixture struct {
	battle  *battle.Battle
	rec     *recorder
	allies  *person.Party
	enemies *person.Party
}

func newFixture(t testing.TB, cfg battle.Config, allies, enemies []*person.Person, menu battle.Menu, src dice.Source, opts ...func(*battle.Deps)) *fixture {
	t.Helper()
	acts, ails := registries(t)
	f := &fixture{
		rec:     &recorder{},
		allies:  person.NewParty("allies", "Allies", allies...),
		enemies: person.NewParty("enemies", "Enemies", enemies...),
	}
	deps := battle.Deps{
		Allies:    f.allies,
		Enemies:   f.enemies,
		Actions:   acts,
		Ailments:  ails,
		Menu:      menu,
		Presenter: f.rec,
		Source:    src,
		Logger:    zaptest.NewLogger(t),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	b, err := battle.New(cfg, deps)
	require.NoError(t, err)
	f.battle = b
	return f
}

// runUntil updates until done reports true, failing after limit updates.
func runUntil(t testing.TB, b *battle.Battle, limit int, done func() bool) {
	t.Helper()
	for i := 0; i < limit; i++ {
		if done() {
			return
		}
		b.Update(0)
	}
	require.True(t, done(), "condition not reached within %d updates (state %s)", limit, b.TurnState())
}

func finished(b *battle.Battle) func() bool {
	return func() bool { return b.TurnState() == battle.Finished }
}

// afterTransition returns a condition that becomes true once the battle has
// left from for to.
func afterTransition(b *battle.Battle, from, to battle.TurnState) func() bool {
	seen := false
	b.OnTransition(func(f, tt battle.TurnState) {
		if f == from && tt == to {
			seen = true
		}
	})
	return func() bool { return seen }
}
