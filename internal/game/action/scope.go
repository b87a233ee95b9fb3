package action

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/turnbattle/internal/game/ids"
)

// Scope declares which combatants a skill or item may legally affect.
type Scope int

const (
	NoScope        Scope = iota // affects nobody; always usable
	User                        // the user only
	OneTarget                   // any one living combatant
	OneEnemy                    // one living foe
	TwoEnemies                  // two distinct living foes
	AllEnemies                  // every living foe
	OneAlly                     // one living ally, the user included
	OneAllyNotUser              // one living ally other than the user
	TwoAllies                   // two distinct living allies
	AllAllies                   // every living ally
	OneAllyKO                   // one knocked-out ally
	AllAlliesKO                 // every knocked-out ally
	OneParty                    // every living member of one side
	AllTargets                  // every living combatant
	NotUser                     // one living combatant other than the user
	AllNotUser                  // every living combatant other than the user
)

var scopeNames = []string{
	"NO_SCOPE", "USER", "ONE_TARGET", "ONE_ENEMY", "TWO_ENEMIES", "ALL_ENEMIES",
	"ONE_ALLY", "ONE_ALLY_NOT_USER", "TWO_ALLIES", "ALL_ALLIES", "ONE_ALLY_KO",
	"ALL_ALLIES_KO", "ONE_PARTY", "ALL_TARGETS", "NOT_USER", "ALL_NOT_USER",
}

// String returns the upper-snake name of the scope.
func (s Scope) String() string {
	if s < 0 || int(s) >= len(scopeNames) {
		return "UNKNOWN"
	}
	return scopeNames[s]
}

// ParseScope resolves a case-insensitive scope name.
func ParseScope(name string) (Scope, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range scopeNames {
		if n == upper {
			return Scope(i), nil
		}
	}
	return NoScope, fmt.Errorf("action: unknown scope %q", name)
}

// UnmarshalYAML decodes a Scope from its name.
func (s *Scope) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseScope(value.Value)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Pick says how many of a scope's candidates are chosen.
type Pick int

const (
	PickNone  Pick = iota // no targets
	PickOne               // exactly one candidate
	PickTwo               // two distinct candidates
	PickAll               // every candidate
	PickParty             // every living member of one side
)

// Pick returns how targets are drawn from the scope's candidates.
func (s Scope) Pick() Pick {
	switch s {
	case NoScope:
		return PickNone
	case User, OneTarget, OneEnemy, OneAlly, OneAllyNotUser, OneAllyKO, NotUser:
		return PickOne
	case TwoEnemies, TwoAllies:
		return PickTwo
	case OneParty:
		return PickParty
	default:
		return PickAll
	}
}

// Pools holds the combatants visible to one user when choosing targets.
// Allies includes the user when the user is alive.
type Pools struct {
	User   ids.ActorID
	Allies []ids.ActorID // living allies
	Fallen []ids.ActorID // knocked-out allies
	Foes   []ids.ActorID // living foes
}

// Candidates returns the combatants the scope may draw from, allies before
// foes, each in roster order.
func (s Scope) Candidates(p Pools) []ids.ActorID {
	switch s {
	case NoScope:
		return nil
	case User:
		return []ids.ActorID{p.User}
	case OneEnemy, TwoEnemies, AllEnemies:
		return clone(p.Foes)
	case OneAlly, TwoAllies, AllAllies:
		return clone(p.Allies)
	case OneAllyNotUser:
		return without(p.Allies, p.User)
	case OneAllyKO, AllAlliesKO:
		return clone(p.Fallen)
	case OneTarget, OneParty, AllTargets:
		return append(clone(p.Allies), p.Foes...)
	case NotUser, AllNotUser:
		return append(without(p.Allies, p.User), p.Foes...)
	}
	return nil
}

// Satisfiable reports whether the pools hold enough candidates for the scope.
func (s Scope) Satisfiable(p Pools) bool {
	n := len(s.Candidates(p))
	switch s.Pick() {
	case PickNone:
		return true
	case PickTwo:
		return n >= 2
	default:
		return n >= 1
	}
}

// Accepts reports whether targets is a legal selection for the scope.
//
// Postcondition: returns nil iff every target is a distinct candidate and the
// count matches the scope's Pick.
func (s Scope) Accepts(p Pools, targets []ids.ActorID) error {
	cands := s.Candidates(p)
	seen := make(map[ids.ActorID]bool, len(targets))
	for _, t := range targets {
		if seen[t] {
			return fmt.Errorf("scope %s: duplicate target %s", s, t)
		}
		seen[t] = true
		if !contains(cands, t) {
			return fmt.Errorf("scope %s: %s is not a legal target", s, t)
		}
	}
	want := -1
	switch s.Pick() {
	case PickNone:
		want = 0
	case PickOne:
		want = 1
	case PickTwo:
		want = 2
	case PickAll:
		want = len(cands)
	case PickParty:
		if sameSet(targets, p.Allies) || sameSet(targets, p.Foes) {
			return nil
		}
		return fmt.Errorf("scope %s: targets must be one whole side", s)
	}
	if len(targets) != want {
		return fmt.Errorf("scope %s: want %d targets, got %d", s, want, len(targets))
	}
	return nil
}

func clone(in []ids.ActorID) []ids.ActorID {
	out := make([]ids.ActorID, len(in))
	copy(out, in)
	return out
}

func without(in []ids.ActorID, drop ids.ActorID) []ids.ActorID {
	out := make([]ids.ActorID, 0, len(in))
	for _, id := range in {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

func contains(in []ids.ActorID, id ids.ActorID) bool {
	for _, x := range in {
		if x == id {
			return true
		}
	}
	return false
}

func sameSet(a, b []ids.ActorID) bool {
	if len(a) != len(b) || len(a) == 0 {
		return false
	}
	for _, id := range a {
		if !contains(b, id) {
			return false
		}
	}
	return true
}
