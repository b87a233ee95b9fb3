package person_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/turnbattle/internal/game/attribute"
	"github.com/cory-johannsen/turnbattle/internal/game/person"
)

const heroYAML = `
id: hero
name: Hero
level: 1
xp_drop: 40
base:
  VITA: 100
  QTDR: 30
  PHAG: 12
  MMNT: 10
growth:
  VITA: 10
  PHAG: 2
skills:
  - skill: slash
    level: 1
  - skill: cleave
    level: 3
actions_per_turn: 2
ai:
  difficulty: priority
  primary: aggressor
`

func heroTemplate(t *testing.T) *person.Template {
	t.Helper()
	tmpl, err := person.LoadTemplateFromBytes([]byte(heroYAML))
	require.NoError(t, err)
	return tmpl
}

func TestLoadTemplateFromBytes(t *testing.T) {
	tmpl := heroTemplate(t)
	assert.Equal(t, "hero", tmpl.ID)
	assert.Equal(t, 2, tmpl.ActionsPerTurn)
	require.NotNil(t, tmpl.AI)
	assert.Equal(t, "priority", tmpl.AI.Difficulty)
}

func TestTemplate_Validate_Rejects(t *testing.T) {
	_, err := person.LoadTemplateFromBytes([]byte("id: x\nname: X\nlevel: 1\nbase: {VITA: 0}\n"))
	assert.Error(t, err, "VITA must be positive")
	_, err = person.LoadTemplateFromBytes([]byte("id: x\nname: X\nlevel: 1\nbase: {VITA: 5, LUCK: 1}\n"))
	assert.Error(t, err, "unknown attribute")
	_, err = person.LoadTemplateFromBytes([]byte("id: x\nname: X\nlevel: 1\nbase: {VITA: 5}\nactions_per_turn: 4\n"))
	assert.Error(t, err)
	_, err = person.LoadTemplateFromBytes([]byte("id: x\nname: X\nlevel: 1\nbase: {VITA: 5}\nhp: 3\n"))
	assert.Error(t, err, "unknown field")
}

func TestNew_StatsGrowWithLevel(t *testing.T) {
	tmpl := heroTemplate(t)
	p1 := person.New("hero", tmpl, 1)
	assert.Equal(t, 100, p1.Stats().Get(attribute.VITA))
	assert.Equal(t, 1.0, p1.ExpMod)

	p3 := person.New("hero", tmpl, 3)
	assert.Equal(t, 120, p3.Stats().Get(attribute.VITA))
	assert.Equal(t, 16, p3.Stats().Get(attribute.PHAG))
	assert.Equal(t, []string{"slash", "cleave"}, p3.SkillIDs())
	assert.Equal(t, []string{"slash"}, p1.SkillIDs())
}

func TestAddExperience_LevelsUp(t *testing.T) {
	p := person.New("hero", heroTemplate(t), 1)
	assert.Equal(t, 100, p.ExperienceToNext())
	gained := p.AddExperience(300)
	assert.Equal(t, 2, gained)
	assert.Equal(t, 3, p.Level)
	assert.Equal(t, 0, p.AddExperience(0))
}

func TestProperty_LevelCurveMonotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := rapid.IntRange(1, person.MaxLevel-1).Draw(rt, "level")
		if person.ExperienceForLevel(l+1) <= person.ExperienceForLevel(l) {
			rt.Fatalf("curve not increasing at %d", l)
		}
		if got := person.LevelForExperience(person.ExperienceForLevel(l)); got != l {
			rt.Fatalf("LevelForExperience(threshold(%d)) = %d", l, got)
		}
	})
}

func TestParty_Inventory(t *testing.T) {
	p := person.NewParty("p", "Party")
	require.NoError(t, p.AddItem("tonic", 2))
	assert.Error(t, p.AddItem("tonic", 0))
	assert.True(t, p.UseItem("tonic"))
	assert.True(t, p.UseItem("tonic"))
	assert.False(t, p.UseItem("tonic"))
	assert.Empty(t, p.ItemIDs())
}

func TestEncounter_Build(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "first.yaml"), []byte(`
id: first
name: First Fight
allies:
  id: heroes
  credits: 10
  inventory: {tonic: 2}
  members:
    - template: hero
enemies:
  id: foes
  members:
    - template: hero
      level: 2
    - template: hero
`), 0600))
	encs, err := person.LoadEncounters(dir)
	require.NoError(t, err)
	enc := encs["first"]
	require.NotNil(t, enc)

	allies, enemies, err := enc.Build(map[string]*person.Template{"hero": heroTemplate(t)})
	require.NoError(t, err)
	assert.Equal(t, "hero", allies.Members[0].ID)
	assert.Equal(t, 2, allies.ItemCount("tonic"))
	require.Len(t, enemies.Members, 2)
	assert.NotEqual(t, enemies.Members[0].ID, enemies.Members[1].ID)
	assert.Equal(t, 2, enemies.Members[0].Level)

	_, _, err = enc.Build(map[string]*person.Template{})
	assert.Error(t, err)
}
