package battle_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/turnbattle/internal/game/action"
	"github.com/cory-johannsen/turnbattle/internal/game/ai"
	"github.com/cory-johannsen/turnbattle/internal/game/ailment"
	"github.com/cory-johannsen/turnbattle/internal/game/attribute"
	"github.com/cory-johannsen/turnbattle/internal/game/battle"
	"github.com/cory-johannsen/turnbattle/internal/game/dice"
	"github.com/cory-johannsen/turnbattle/internal/game/ids"
	"github.com/cory-johannsen/turnbattle/internal/game/person"
)

func TestNew_RejectsBadConfiguration(t *testing.T) {
	acts, ails := registries(t)
	party := func(ps ...*person.Person) *person.Party { return person.NewParty("p", "P", ps...) }
	good := battle.Deps{
		Allies:   party(member("hero", 100, 10, "jab")),
		Enemies:  party(member("grunt", 100, 0)),
		Actions:  acts,
		Ailments: ails,
		Menu:     &scriptMenu{choose: choose(action.Pass)},
		Source:   highSrc{},
	}
	_, err := battle.New(testConfig(), good)
	require.NoError(t, err)

	noMenu := good
	noMenu.Menu = nil
	_, err = battle.New(testConfig(), noMenu)
	assert.ErrorIs(t, err, battle.ErrConfiguration)

	empty := good
	empty.Enemies = party()
	_, err = battle.New(testConfig(), empty)
	assert.ErrorIs(t, err, battle.ErrConfiguration)

	unknown := good
	unknown.Allies = party(member("hero", 100, 10, "meteor"))
	_, err = battle.New(testConfig(), unknown)
	assert.ErrorIs(t, err, battle.ErrConfiguration)

	cfg := testConfig()
	cfg.MaxActionsPerTurn = 0
	_, err = battle.New(cfg, good)
	assert.ErrorIs(t, err, battle.ErrConfiguration)
}

func TestConfigValidate_ReportsDelaysInOrder(t *testing.T) {
	cfg := testConfig()
	cfg.Delays.Outcome = -1
	cfg.Delays.Action = -1
	for i := 0; i < 20; i++ {
		err := cfg.Validate()
		require.Error(t, err)
		assert.Equal(t, "delays.action must be >= 0\ndelays.outcome must be >= 0", err.Error())
	}
}

func TestStartAndDestruct_Lifecycle(t *testing.T) {
	menu := &scriptMenu{choose: choose(action.Pass), hold: true}
	f := newFixture(t, testConfig(), []*person.Person{member("hero", 100, 10)}, []*person.Person{member("grunt", 100, 0)}, menu, highSrc{})
	b := f.battle

	assert.ErrorIs(t, b.Destruct(), battle.ErrNotStarted)
	b.Update(0)
	assert.Equal(t, battle.Stopped, b.TurnState(), "update is a no-op before start")

	require.NoError(t, b.Start())
	assert.ErrorIs(t, b.Start(), battle.ErrAlreadyStarted)

	runUntil(t, b, 50, func() bool { return menu.loaded })
	assert.Equal(t, battle.SelectActionAlly, b.TurnState())

	require.NoError(t, b.Destruct())
	b.Update(0)
	assert.Equal(t, battle.Destruct, b.TurnState())
	runUntil(t, b, 5, finished(b))
	assert.Equal(t, 1, menu.unloaded)
	assert.Zero(t, b.Buffer().Len())
	assert.Equal(t, battle.OutcomeNone, b.Outcome())

	b.Update(0)
	assert.Equal(t, battle.Finished, b.TurnState())
}

func TestThirdHitKillsAndLatchesVictoryBeforeCleanUp(t *testing.T) {
	menu := &scriptMenu{choose: skillAtFoe(jab, 0)}
	f := newFixture(t, testConfig(), []*person.Person{member("hero", 100, 10, "jab")}, []*person.Person{member("grunt", 100, 0)}, menu, highSrc{})
	b := f.battle

	var trail []string
	b.OnTransition(func(_, to battle.TurnState) { trail = append(trail, "state:"+to.String()) })
	f.rec.onPresent = func(e battle.Event) { trail = append(trail, "event:"+e.Type.String()) }

	require.NoError(t, b.Start())
	runUntil(t, b, 500, finished(b))

	hero, grunt := b.Allies()[0], b.Enemies()[0]
	assert.Zero(t, grunt.Vita())
	assert.Equal(t, 100, hero.Vita())

	hits := f.rec.ofType(battle.StandardDamage)
	require.Len(t, hits, 3)
	for _, h := range hits {
		assert.Equal(t, 40, h.Amount)
		assert.Equal(t, grunt.ID, h.Target())
		assert.Equal(t, hero.ID, h.User)
	}

	death := f.rec.index(battle.Death)
	require.Positive(t, death)
	assert.Equal(t, grunt.ID, f.rec.events[death].Target())
	require.Less(t, death+1, len(f.rec.events))
	assert.Equal(t, battle.PartyDeath, f.rec.events[death+1].Type)
	assert.Equal(t, battle.Enemies, f.rec.events[death+1].Side)

	assert.Equal(t, battle.OutcomeVictory, b.Outcome())
	assert.Equal(t, 3, b.Turn(), "the third turn is never cleaned up")

	var after []string
	for i, s := range trail {
		if s == "event:DEATH" {
			after = trail[i:]
			break
		}
	}
	require.NotEmpty(t, after)
	assert.NotContains(t, after, "state:CLEAN_UP")
	assert.Contains(t, after, "state:VICTORY")
	assert.NotContains(t, after, "event:"+battle.PassTurn.String(), "the enemy's buffered pass is short-circuited")
}

func TestMutualGuardFailsAndGuardAbsorbsDamage(t *testing.T) {
	menu := &scriptMenu{choose: func(v battle.MenuView) battle.Choice {
		return battle.Choice{Actor: v.Actor, Type: action.Guard, Targets: v.GuardTargets[:1]}
	}}
	cfg := testConfig()
	cfg.AI = ai.Factors{RandomSkill: 1}
	f := newFixture(t, cfg,
		[]*person.Person{member("alpha", 100, 10), member("beta", 100, 5)},
		[]*person.Person{member("grunt", 100, 0, "jab")},
		menu, highSrc{})
	b := f.battle
	done := afterTransition(b, battle.ProcessActions, battle.CleanUp)
	require.NoError(t, b.Start())
	runUntil(t, b, 100, done)

	alpha, beta := b.Allies()[0], b.Allies()[1]
	for _, v := range menu.views {
		assert.Len(t, v.GuardTargets, 1)
	}

	begin := f.rec.ofType(battle.BeginGuard)
	require.Len(t, begin, 1)
	assert.Equal(t, alpha.ID, begin[0].User)
	assert.Equal(t, beta.ID, begin[0].Target())

	fail := f.rec.ofType(battle.FailGuard)
	require.Len(t, fail, 1)
	assert.Equal(t, beta.ID, fail[0].User)
	assert.Equal(t, alpha.ID, fail[0].Target())

	assert.Equal(t, beta.ID, alpha.Guarding())
	assert.Equal(t, alpha.ID, beta.GuardedBy())
	assert.False(t, beta.Guarding().Valid())
	assert.False(t, alpha.GuardedBy().Valid())

	hits := f.rec.ofType(battle.StandardDamage)
	require.Len(t, hits, 1)
	assert.Equal(t, alpha.ID, hits[0].Target(), "the guard takes the hit")
	assert.Equal(t, beta.ID, hits[0].Protected)
	assert.Equal(t, 30, hits[0].Amount)
	assert.Equal(t, 70, alpha.Vita())
	assert.Equal(t, 100, beta.Vita())
}

func TestGuard_BrokenWhenGuardActs(t *testing.T) {
	turn := 0
	menu := &scriptMenu{choose: func(v battle.MenuView) battle.Choice {
		if v.Name == "alpha" && turn == 0 {
			return battle.Choice{Actor: v.Actor, Type: action.Guard, Targets: v.GuardTargets[:1]}
		}
		return battle.Choice{Actor: v.Actor, Type: action.Defend}
	}}
	f := newFixture(t, testConfig(),
		[]*person.Person{member("alpha", 100, 10), member("beta", 100, 5)},
		[]*person.Person{member("grunt", 100, 0)},
		menu, highSrc{})
	b := f.battle
	b.OnTransition(func(from, _ battle.TurnState) {
		if from == battle.CleanUp {
			turn++
		}
	})
	require.NoError(t, b.Start())
	runUntil(t, b, 200, func() bool { return turn == 2 })

	alpha, beta := b.Allies()[0], b.Allies()[1]
	brk := f.rec.ofType(battle.BreakGuard)
	require.Len(t, brk, 1)
	assert.Equal(t, alpha.ID, brk[0].User)
	assert.Equal(t, beta.ID, brk[0].Target())
	assert.False(t, alpha.InGuardPair())
	assert.False(t, beta.InGuardPair())
	assert.Len(t, f.rec.ofType(battle.BreakDefend), 3, "beta on turn one, both on turn two")
}

func twoActions(p *person.Person) *person.Person {
	p.ActionsPerTurn = 2
	return p
}

func TestDefend_OfferedOncePerTurn(t *testing.T) {
	menu := &scriptMenu{choose: func(v battle.MenuView) battle.Choice {
		if slices.Contains(v.Types, action.Defend) {
			return battle.Choice{Actor: v.Actor, Type: action.Defend}
		}
		return battle.Choice{Actor: v.Actor, Type: action.Pass}
	}}
	f := newFixture(t, testConfig(),
		[]*person.Person{twoActions(member("hero", 100, 10))},
		[]*person.Person{member("grunt", 100, 0)},
		menu, highSrc{})
	b := f.battle
	done := afterTransition(b, battle.ProcessActions, battle.CleanUp)
	require.NoError(t, b.Start())
	runUntil(t, b, 100, done)

	require.Len(t, menu.views, 2)
	assert.Contains(t, menu.views[0].Types, action.Defend)
	assert.Equal(t, 1, menu.views[1].Slot)
	assert.NotContains(t, menu.views[1].Types, action.Defend)
	assert.Len(t, f.rec.ofType(battle.BeginDefend), 1)
}

func TestGuard_EndsSelectionAndHolds(t *testing.T) {
	menu := &scriptMenu{choose: func(v battle.MenuView) battle.Choice {
		if v.Name == "alpha" && len(v.GuardTargets) > 0 {
			return battle.Choice{Actor: v.Actor, Type: action.Guard, Targets: v.GuardTargets[:1]}
		}
		return battle.Choice{Actor: v.Actor, Type: action.Pass}
	}}
	f := newFixture(t, testConfig(),
		[]*person.Person{twoActions(member("alpha", 100, 10)), member("beta", 100, 5)},
		[]*person.Person{member("grunt", 100, 0)},
		menu, highSrc{})
	b := f.battle
	done := afterTransition(b, battle.ProcessActions, battle.CleanUp)
	require.NoError(t, b.Start())
	runUntil(t, b, 100, done)

	alphaViews := 0
	for _, v := range menu.views {
		if v.Name == "alpha" {
			alphaViews++
		}
	}
	assert.Equal(t, 1, alphaViews, "a guard uses the rest of the turn")
	assert.Len(t, f.rec.ofType(battle.BeginGuard), 1)
	assert.Empty(t, f.rec.ofType(battle.BreakGuard))
	alpha, beta := b.Allies()[0], b.Allies()[1]
	assert.Equal(t, beta.ID, alpha.Guarding())
}

func TestDefend_ZeroModifierBlocksAllDamage(t *testing.T) {
	menu := &scriptMenu{choose: func(v battle.MenuView) battle.Choice {
		return battle.Choice{Actor: v.Actor, Type: action.Defend}
	}}
	cfg := testConfig()
	cfg.AI = ai.Factors{RandomSkill: 1}
	cfg.DefendModifier = 0
	f := newFixture(t, cfg,
		[]*person.Person{member("hero", 100, 10)},
		[]*person.Person{member("grunt", 100, 0, "jab")},
		menu, highSrc{})
	b := f.battle
	done := afterTransition(b, battle.ProcessActions, battle.CleanUp)
	require.NoError(t, b.Start())
	runUntil(t, b, 100, done)

	hits := f.rec.ofType(battle.StandardDamage)
	require.Len(t, hits, 1)
	assert.Zero(t, hits[0].Amount)
	assert.Equal(t, 100, b.Allies()[0].Vita())
}

func TestZeroRunChanceAlwaysFails(t *testing.T) {
	menu := &scriptMenu{choose: choose(action.Run)}
	f := newFixture(t, testConfig(), []*person.Person{member("hero", 100, 0)}, []*person.Person{member("grunt", 100, 100)}, menu, dice.NewSeededSource(7))
	b := f.battle
	hero := b.Allies()[0]
	assert.Zero(t, b.RunChance(hero.ID))

	done := afterTransition(b, battle.ProcessActions, battle.CleanUp)
	require.NoError(t, b.Start())
	runUntil(t, b, 100, done)

	attempts := f.rec.ofType(battle.AttemptRun)
	require.Len(t, attempts, 1)
	assert.Zero(t, attempts[0].Amount)
	assert.Len(t, f.rec.ofType(battle.FailRun), 1)
	assert.Empty(t, f.rec.ofType(battle.SucceedRun))
	assert.Equal(t, battle.OutcomeNone, b.Outcome())
}

func TestRun_CertainEscapeLatchesAlliesRun(t *testing.T) {
	menu := &scriptMenu{choose: choose(action.Run)}
	f := newFixture(t, testConfig(), []*person.Person{member("hero", 100, 100)}, []*person.Person{member("grunt", 100, 0)}, menu, highSrc{})
	b := f.battle
	assert.Equal(t, 100, b.RunChance(b.Allies()[0].ID))

	var states []battle.TurnState
	b.OnTransition(func(_, to battle.TurnState) { states = append(states, to) })
	require.NoError(t, b.Start())
	runUntil(t, b, 100, finished(b))

	assert.Equal(t, battle.OutcomeAlliesRun, b.Outcome())
	assert.Contains(t, states, battle.Running)
	assert.NotContains(t, states, battle.CleanUp)
}

func TestRun_EnemyEscapeLatchesEnemiesRun(t *testing.T) {
	cfg := testConfig()
	cfg.AI = ai.Factors{Run: 1}
	menu := &scriptMenu{choose: choose(action.Pass)}
	f := newFixture(t, cfg, []*person.Person{member("hero", 100, 0)}, []*person.Person{member("grunt", 100, 100)}, menu, highSrc{})
	require.NoError(t, f.battle.Start())
	runUntil(t, f.battle, 100, finished(f.battle))
	assert.Equal(t, battle.OutcomeEnemiesRun, f.battle.Outcome())
}

func TestRunChance_Formula(t *testing.T) {
	menu := &scriptMenu{choose: choose(action.Pass)}
	f := newFixture(t, testConfig(),
		[]*person.Person{member("hero", 100, 20), member("side", 100, 10)},
		[]*person.Person{member("a", 100, 10), member("b", 100, 30)},
		menu, highSrc{})
	// 25 + (20 + 0.5*10 - 20) * 1.5 = 32.5, rounded half away from zero.
	assert.Equal(t, 33, f.battle.RunChance(f.battle.Allies()[0].ID))
	assert.Zero(t, f.battle.RunChance(ids.ActorID(99)))
}

func TestProcess_StaleTargetFizzles(t *testing.T) {
	menu := &scriptMenu{choose: skillAtFoe(jab, 0)}
	f := newFixture(t, testConfig(),
		[]*person.Person{member("hero", 100, 10, "jab"), member("side", 100, 5, "jab")},
		[]*person.Person{member("weak", 40, 0), member("tough", 100, 0)},
		menu, highSrc{})
	b := f.battle
	done := afterTransition(b, battle.ProcessActions, battle.CleanUp)
	require.NoError(t, b.Start())
	runUntil(t, b, 100, done)

	weak, tough := b.Enemies()[0], b.Enemies()[1]
	assert.False(t, weak.Alive())
	assert.Equal(t, 100, tough.Vita())
	assert.Len(t, f.rec.ofType(battle.StandardDamage), 1)

	fizzles := f.rec.ofType(battle.Fizzle)
	require.Len(t, fizzles, 1)
	assert.Equal(t, b.Allies()[1].ID, fizzles[0].User)
	assert.Equal(t, weak.ID, fizzles[0].Target())
	assert.Empty(t, f.rec.ofType(battle.PartyDeath))
	assert.Equal(t, battle.OutcomeNone, b.Outcome())
}

func TestSelection_InvalidChoiceBecomesEnforcedPass(t *testing.T) {
	menu := &scriptMenu{choose: func(v battle.MenuView) battle.Choice {
		return battle.Choice{Actor: v.Actor, Type: action.Skill, Skill: jab, Targets: []ids.ActorID{v.Actor}}
	}}
	f := newFixture(t, testConfig(), []*person.Person{member("hero", 100, 10, "jab")}, []*person.Person{member("grunt", 100, 0)}, menu, highSrc{})
	b := f.battle
	done := afterTransition(b, battle.SelectActionAlly, battle.SelectActionEnemy)
	require.NoError(t, b.Start())
	runUntil(t, b, 100, done)

	entries := b.Buffer().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, action.Pass, entries[0].Type)
	assert.True(t, entries[0].Enforced)
	assert.Equal(t, battle.SelectedAction, b.Allies()[0].Selection.State())
}

func TestSelection_ParalysedActorPassesWithoutMenu(t *testing.T) {
	menu := &scriptMenu{choose: choose(action.Defend)}
	f := newFixture(t, testConfig(), []*person.Person{member("hero", 100, 10)}, []*person.Person{member("grunt", 100, 0)}, menu, highSrc{})
	b := f.battle
	require.NoError(t, b.Allies()[0].Ailments.Apply(paralysis, 0))
	done := afterTransition(b, battle.SelectActionAlly, battle.SelectActionEnemy)
	require.NoError(t, b.Start())
	runUntil(t, b, 100, done)

	assert.Empty(t, menu.views)
	entries := b.Buffer().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, action.Pass, entries[0].Type)
	assert.True(t, entries[0].Enforced)
}

func TestSelection_MultipleActionsAndDecline(t *testing.T) {
	menu := &scriptMenu{choose: func(v battle.MenuView) battle.Choice {
		switch {
		case v.Name == "hero":
			return battle.Choice{Actor: v.Actor, Type: action.Defend}
		case v.Slot == 0:
			return battle.Choice{Actor: v.Actor, Type: action.Defend}
		default:
			return battle.Choice{Actor: v.Actor, Finished: true}
		}
	}}
	hero, side := member("hero", 100, 10), member("side", 100, 5)
	hero.ActionsPerTurn = 3
	side.ActionsPerTurn = 3
	cfg := testConfig()
	cfg.MaxActionsPerTurn = 2
	f := newFixture(t, cfg, []*person.Person{hero, side}, []*person.Person{member("grunt", 100, 0)}, menu, highSrc{})
	b := f.battle
	done := afterTransition(b, battle.SelectActionAlly, battle.SelectActionEnemy)
	require.NoError(t, b.Start())
	runUntil(t, b, 100, done)

	var slots []int
	for _, v := range menu.views {
		slots = append(slots, v.Slot)
	}
	assert.Equal(t, []int{0, 1, 0, 1}, slots, "hero capped at two actions, side declines its second")
	assert.Equal(t, battle.Selected2ndAction, b.Allies()[0].Selection.State())
	assert.Equal(t, battle.SelectedAction, b.Allies()[1].Selection.State())
	assert.Equal(t, 3, b.Buffer().Len())
}

func TestProcess_CooldownDefersAndCarries(t *testing.T) {
	menu := &scriptMenu{choose: skillAtFoe(charge, 0)}
	f := newFixture(t, testConfig(), []*person.Person{member("hero", 100, 10, "charge")}, []*person.Person{member("grunt", 100, 0)}, menu, highSrc{})
	b := f.battle
	processed := 0
	b.OnTransition(func(from, _ battle.TurnState) {
		if from == battle.ProcessActions {
			processed++
		}
	})
	require.NoError(t, b.Start())
	runUntil(t, b, 200, func() bool { return processed == 2 })

	cd := f.rec.ofType(battle.SkillCooldown)
	require.Len(t, cd, 1)
	assert.Equal(t, 1, cd[0].Amount)
	hits := f.rec.ofType(battle.StandardDamage)
	require.Len(t, hits, 1)
	assert.Equal(t, 30, hits[0].Amount)
	assert.Equal(t, 70, b.Enemies()[0].Vita())
	assert.Len(t, menu.views, 1, "the charging turn needs no selection")
}

type tickHook struct {
	calls []ailment.TickContext
	extra int
}

func (h *tickHook) OnTick(fn string, tc ailment.TickContext) (int, error) {
	h.calls = append(h.calls, tc)
	return h.extra, nil
}

func TestUpkeep_PoisonTicksAndScriptedDamage(t *testing.T) {
	menu := &scriptMenu{choose: skillAtFoe(venom, 0)}
	hook := &tickHook{extra: 5}
	f := newFixture(t, testConfig(), []*person.Person{member("hero", 100, 10, "venom")}, []*person.Person{member("grunt", 100, 0)}, menu, highSrc{},
		func(d *battle.Deps) { d.Hook = hook })
	b := f.battle
	processed := 0
	b.OnTransition(func(from, _ battle.TurnState) {
		if from == battle.ProcessActions {
			processed++
		}
	})
	require.NoError(t, b.Start())
	runUntil(t, b, 200, func() bool { return processed == 2 })

	grunt := b.Enemies()[0]
	require.Len(t, f.rec.ofType(battle.Infliction), 1)
	assert.Len(t, f.rec.ofType(battle.AlreadyInflicted), 1)

	ticks := f.rec.ofType(battle.PoisonDamage)
	require.Len(t, ticks, 1)
	assert.Equal(t, 10, ticks[0].Amount)
	scripted := f.rec.ofType(battle.AilmentDamage)
	require.Len(t, scripted, 1)
	assert.Equal(t, 5, scripted[0].Amount)
	assert.Equal(t, 85, grunt.Vita())

	require.Len(t, hook.calls, 1)
	assert.Equal(t, "poison", hook.calls[0].Ailment)
	assert.Equal(t, "grunt", hook.calls[0].Target)
	assert.Equal(t, 90, hook.calls[0].Vita)
	assert.Equal(t, 100, hook.calls[0].MaxVita)
}

func TestItem_ConsumedFromPartyInventory(t *testing.T) {
	menu := &scriptMenu{choose: func(v battle.MenuView) battle.Choice {
		if len(v.Items) == 0 {
			return battle.Choice{Actor: v.Actor, Type: action.Pass}
		}
		return battle.Choice{Actor: v.Actor, Type: action.Item, Item: v.Items[0], Targets: []ids.ActorID{v.Actor}}
	}}
	f := newFixture(t, testConfig(), []*person.Person{member("hero", 100, 10)}, []*person.Person{member("grunt", 100, 0)}, menu, highSrc{})
	require.NoError(t, f.allies.AddItem("tonic", 1))
	b := f.battle
	b.Allies()[0].Sheet.Alter(attribute.VITA, -50)
	done := afterTransition(b, battle.ProcessActions, battle.CleanUp)
	require.NoError(t, b.Start())
	runUntil(t, b, 100, done)

	assert.Len(t, f.rec.ofType(battle.ItemUse), 1)
	heals := f.rec.ofType(battle.HealHealth)
	require.Len(t, heals, 1)
	assert.Equal(t, 25, heals[0].Amount)
	assert.Equal(t, 75, b.Allies()[0].Vita())
	assert.Zero(t, f.allies.ItemCount("tonic"))
}
