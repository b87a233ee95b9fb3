package action_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/turnbattle/internal/game/action"
	"github.com/cory-johannsen/turnbattle/internal/game/dice"
)

func TestType_Parse(t *testing.T) {
	for _, typ := range action.Types() {
		got, err := action.ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	_, err := action.ParseType("none")
	assert.Error(t, err, "none is never a valid submission")
}

func TestSkillDef_Validate(t *testing.T) {
	s := &action.SkillDef{
		ID: "slash", Name: "Slash", Scope: action.OneEnemy,
		Effects: []action.Effect{{Kind: action.EffectDamage, Amount: 10}},
	}
	require.NoError(t, s.Validate())
	assert.Equal(t, 100, s.HitChance())

	bad := *s
	bad.Cost = -1
	assert.Error(t, bad.Validate())

	bad = *s
	bad.Effects = []action.Effect{{Kind: action.EffectDamage, Dice: "2x6"}}
	assert.Error(t, bad.Validate())

	bad = *s
	bad.Effects = []action.Effect{{Kind: action.EffectInflict}}
	assert.Error(t, bad.Validate(), "inflict needs an ailment")

	bad = *s
	bad.Scope = action.NoScope
	assert.Error(t, bad.Validate())
}

func TestEffect_DiceChecked(t *testing.T) {
	ok := action.Effect{Kind: action.EffectDamage, Amount: 2, Dice: "1d4-3"}
	assert.NoError(t, ok.Validate())

	negative := action.Effect{Kind: action.EffectDamage, Dice: "1d4-3"}
	assert.ErrorContains(t, negative.Validate(), "below zero")

	malformed := action.Effect{Kind: action.EffectHeal, Amount: 5, Dice: "3d"}
	err := malformed.Validate()
	assert.ErrorIs(t, err, dice.ErrInvalidExpression)
	var exprErr *dice.ExprError
	require.ErrorAs(t, err, &exprErr)
	assert.Equal(t, "3d", exprErr.Expr)
}

func TestEffect_Defaults(t *testing.T) {
	e := action.Effect{Kind: action.EffectInflict, Ailment: "poison"}
	assert.Equal(t, 100, e.InflictChance())
	d := action.Effect{Kind: action.EffectDamage, Amount: 1}
	assert.Equal(t, action.Physical, d.ElementOrDefault())
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	skills := filepath.Join(root, "skills")
	items := filepath.Join(root, "items")
	require.NoError(t, os.Mkdir(skills, 0700))
	require.NoError(t, os.Mkdir(items, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(skills, "fireball.yaml"), []byte(`
id: fireball
name: Fireball
scope: two_enemies
cost: 12
cooldown: 1
value: 30
accuracy: 90
effects:
  - kind: damage
    amount: 20
    dice: 2d6
    element: thermal
    crit_chance: 5
  - kind: inflict
    ailment: burn
    chance: 25
`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(items, "tonic.yaml"), []byte(`
id: tonic
name: Tonic
scope: one_ally
value: 10
price: 25
effects:
  - kind: heal
    percent: 30
`), 0600))

	reg, err := action.Load(skills, items)
	require.NoError(t, err)

	fb, ok := reg.Skill("fireball")
	require.True(t, ok)
	assert.Equal(t, action.TwoEnemies, fb.Scope)
	assert.Equal(t, 1, fb.Cooldown)
	require.Len(t, fb.Effects, 2)
	assert.Equal(t, action.Thermal, fb.Effects[0].Element)

	tonic, ok := reg.Item("tonic")
	require.True(t, ok)
	assert.Equal(t, 30, tonic.Effects[0].Percent)
	assert.Len(t, reg.Skills(), 1)
	assert.Len(t, reg.Items(), 1)
}

func TestLoad_RejectsUnknownScope(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.yaml"), []byte("id: x\nname: X\nscope: sideways\n"), 0600))
	_, err := action.Load(dir, "")
	assert.Error(t, err)
}

func TestRegistry_DuplicateSkill(t *testing.T) {
	reg := action.NewRegistry()
	s := &action.SkillDef{ID: "a", Name: "A"}
	require.NoError(t, reg.RegisterSkill(s))
	assert.Error(t, reg.RegisterSkill(s))
}
