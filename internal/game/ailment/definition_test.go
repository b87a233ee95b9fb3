package ailment_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/turnbattle/internal/game/ailment"
)

func validPoison() *ailment.Def {
	return &ailment.Def{
		ID: "poison", Name: "Poison", Kind: ailment.KindPoison,
		DurationType: ailment.DurationTurns, Turns: 3, TickPercent: 10,
	}
}

func TestDef_Validate(t *testing.T) {
	require.NoError(t, validPoison().Validate())

	bad := validPoison()
	bad.Kind = "sneezing"
	assert.Error(t, bad.Validate())

	bad = validPoison()
	bad.Turns = 0
	assert.Error(t, bad.Validate())

	bad = validPoison()
	bad.TickPercent = 101
	assert.Error(t, bad.Validate())

	bad = validPoison()
	bad.RestrictActions = []string{"pass"}
	assert.Error(t, bad.Validate(), "pass can never be restricted")

	bad = validPoison()
	bad.Buffs = map[string]int{"LUCK": 1}
	assert.Error(t, bad.Validate())

	timer := &ailment.Def{ID: "doom", Name: "Doom", Kind: ailment.KindDeathTimer, DurationType: ailment.DurationPermanent}
	assert.Error(t, timer.Validate(), "a permanent deathtimer never fires")
}

func TestDef_Restricts(t *testing.T) {
	para := &ailment.Def{RestrictActions: []string{ailment.RestrictAll}}
	assert.True(t, para.Restricts("skill"))
	assert.True(t, para.Restricts("run"))

	silence := &ailment.Def{RestrictActions: []string{"skill"}}
	assert.True(t, silence.Restricts("skill"))
	assert.False(t, silence.Restricts("item"))
}

func TestRegistry_RejectsDuplicate(t *testing.T) {
	reg := ailment.NewRegistry()
	require.NoError(t, reg.Register(validPoison()))
	assert.Error(t, reg.Register(validPoison()))
	d, ok := reg.Get("poison")
	require.True(t, ok)
	assert.Equal(t, "Poison", d.Name)
	assert.Len(t, reg.All(), 1)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	content := `
id: burn
name: Burn
kind: burn
duration_type: turns
turns: 2
tick_percent: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "burn.yaml"), []byte(content), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0600))

	reg, err := ailment.LoadDirectory(dir)
	require.NoError(t, err)
	d, ok := reg.Get("burn")
	require.True(t, ok)
	assert.Equal(t, ailment.KindBurn, d.Kind)
	assert.Equal(t, 5, d.TickPercent)
}

func TestLoadDirectory_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	content := "id: x\nname: X\nkind: buff\nduration_type: permanent\nsparkle: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.yaml"), []byte(content), 0600))
	_, err := ailment.LoadDirectory(dir)
	assert.Error(t, err)
}
