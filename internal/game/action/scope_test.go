package action_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/turnbattle/internal/game/action"
	"github.com/cory-johannsen/turnbattle/internal/game/ids"
)

func pools() action.Pools {
	return action.Pools{
		User:   1,
		Allies: []ids.ActorID{1, 2},
		Fallen: []ids.ActorID{3},
		Foes:   []ids.ActorID{10, 11, 12},
	}
}

func TestScope_ParseRoundTrip(t *testing.T) {
	for s := action.NoScope; s <= action.AllNotUser; s++ {
		got, err := action.ParseScope(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := action.ParseScope("EVERYONE_ELSE")
	assert.Error(t, err)
}

func TestScope_Candidates(t *testing.T) {
	p := pools()
	assert.Equal(t, []ids.ActorID{1}, action.User.Candidates(p))
	assert.Equal(t, []ids.ActorID{10, 11, 12}, action.OneEnemy.Candidates(p))
	assert.Equal(t, []ids.ActorID{2}, action.OneAllyNotUser.Candidates(p))
	assert.Equal(t, []ids.ActorID{3}, action.OneAllyKO.Candidates(p))
	assert.Equal(t, []ids.ActorID{2, 10, 11, 12}, action.AllNotUser.Candidates(p))
	assert.Empty(t, action.NoScope.Candidates(p))
}

func TestScope_Satisfiable(t *testing.T) {
	p := pools()
	p.Foes = []ids.ActorID{10}
	assert.False(t, action.TwoEnemies.Satisfiable(p), "two enemies need two living foes")
	assert.True(t, action.OneEnemy.Satisfiable(p))
	p.Fallen = nil
	assert.False(t, action.OneAllyKO.Satisfiable(p))
	assert.True(t, action.NoScope.Satisfiable(p))
}

func TestScope_Accepts(t *testing.T) {
	p := pools()
	assert.NoError(t, action.OneEnemy.Accepts(p, []ids.ActorID{11}))
	assert.Error(t, action.OneEnemy.Accepts(p, []ids.ActorID{2}), "ally is not an enemy")
	assert.Error(t, action.OneEnemy.Accepts(p, nil))
	assert.Error(t, action.TwoEnemies.Accepts(p, []ids.ActorID{10, 10}))
	assert.NoError(t, action.TwoEnemies.Accepts(p, []ids.ActorID{10, 12}))
	assert.NoError(t, action.AllEnemies.Accepts(p, []ids.ActorID{12, 10, 11}))
	assert.Error(t, action.AllEnemies.Accepts(p, []ids.ActorID{10, 11}))
	assert.NoError(t, action.OneParty.Accepts(p, []ids.ActorID{2, 1}))
	assert.Error(t, action.OneParty.Accepts(p, []ids.ActorID{1, 10}))
	assert.NoError(t, action.NoScope.Accepts(p, nil))
}

func TestScope_CandidatesNeverIncludeDeadFoes(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		nAllies := rapid.IntRange(1, 4).Draw(rt, "allies")
		nFoes := rapid.IntRange(0, 4).Draw(rt, "foes")
		var p action.Pools
		p.User = 1
		for i := 0; i < nAllies; i++ {
			p.Allies = append(p.Allies, ids.ActorID(i+1))
		}
		for i := 0; i < nFoes; i++ {
			p.Foes = append(p.Foes, ids.ActorID(100+i))
		}
		s := action.Scope(rapid.IntRange(0, int(action.AllNotUser)).Draw(rt, "scope"))
		for _, c := range s.Candidates(p) {
			if c == 0 {
				rt.Fatalf("scope %s produced the none id", s)
			}
		}
		if s.Satisfiable(p) && s.Pick() == action.PickAll {
			if err := s.Accepts(p, s.Candidates(p)); err != nil {
				rt.Fatalf("scope %s rejected its own candidates: %v", s, err)
			}
		}
	})
}
