// Package action defines what a combatant can do in battle: the action types,
// target scopes, and the skill and item definitions loaded from content.
package action

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type identifies the kind of action a combatant submits for a turn.
// The zero value (None) is intentionally invalid.
type Type int

const (
	None   Type = iota // zero value; intentionally invalid
	Skill              // use a skill, paying its QTDR cost
	Item               // consume an item from the party inventory
	Defend             // reduce incoming damage until clean-up
	Guard              // absorb damage aimed at one ally
	Run                // attempt to leave the battle
	Pass               // do nothing
)

var typeNames = map[Type]string{
	None: "none", Skill: "skill", Item: "item", Defend: "defend",
	Guard: "guard", Run: "run", Pass: "pass",
}

// Types returns every valid Type in menu order.
func Types() []Type {
	return []Type{Skill, Item, Defend, Guard, Run, Pass}
}

// String returns the lower-case name of the Type.
func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "unknown"
}

// ParseType resolves a case-insensitive type name.
//
// Postcondition: returns an error iff name is not a valid non-None Type.
func ParseType(name string) (Type, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for t, n := range typeNames {
		if t != None && n == lower {
			return t, nil
		}
	}
	return None, fmt.Errorf("action: unknown action type %q", name)
}

// UnmarshalYAML decodes a Type from its name.
func (t *Type) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseType(value.Value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
