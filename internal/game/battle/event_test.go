package battle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/turnbattle/internal/game/battle"
	"github.com/cory-johannsen/turnbattle/internal/game/ids"
)

func TestEventBuffer_PerformsOnceInOrder(t *testing.T) {
	applied := map[uint64]int{}
	eb := battle.NewEventBuffer(ids.NewAllocator(), func(e *battle.Event) { applied[e.Seq]++ })

	first := eb.Emit(&battle.Event{Type: battle.ActionBegin})
	second := eb.Emit(&battle.Event{Type: battle.StandardDamage, Amount: 3})
	assert.True(t, first.Performed())
	assert.Less(t, first.Seq, second.Seq)
	assert.False(t, first.Rendered())

	assert.ErrorIs(t, eb.Perform(second), battle.ErrAlreadyPerformed)
	assert.Equal(t, 1, applied[second.Seq])

	require.Equal(t, 2, eb.Len())
	group := eb.Take()
	assert.Len(t, group, 2)
	assert.Zero(t, eb.Len())

	third := eb.Emit(&battle.Event{Type: battle.ActionEnd})
	assert.Greater(t, third.Seq, second.Seq, "sequence continues across groups")
}

func TestEventType_Names(t *testing.T) {
	assert.Equal(t, "CRITICAL_DAMAGE", battle.CriticalDamage.String())
	assert.Equal(t, "PASS", battle.PassTurn.String())
	assert.True(t, battle.PoisonDamage.IsDamage())
	assert.False(t, battle.HealHealth.IsDamage())
	assert.Equal(t, "UNKNOWN", battle.EventType(999).String())
}
