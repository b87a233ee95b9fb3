// Package attribute holds the numeric combat statistics of a combatant.
package attribute

import (
	"fmt"
	"strings"
)

// Attribute names one combat statistic.
type Attribute int

const (
	VITA Attribute = iota // health; reaching 0 means death
	QTDR                  // skill resource ("QD")
	PHAG                  // physical aggression (offense)
	PHFD                  // physical fortitude (defense)
	THAG                  // thermal aggression
	THFD                  // thermal fortitude
	MMNT                  // momentum; turn order and run chance
	LIMB                  // limbertude; dodge
	UNBR                  // unbearability; critical chance
	MANN                  // manna; item potency

	count
)

var names = [count]string{"VITA", "QTDR", "PHAG", "PHFD", "THAG", "THFD", "MMNT", "LIMB", "UNBR", "MANN"}

// All returns every Attribute in declaration order.
func All() []Attribute {
	out := make([]Attribute, count)
	for i := range out {
		out[i] = Attribute(i)
	}
	return out
}

// String returns the four-letter attribute name.
func (a Attribute) String() string {
	if a < 0 || a >= count {
		return "UNKNOWN"
	}
	return names[a]
}

// Parse resolves a case-insensitive attribute name.
//
// Postcondition: returns an error iff name matches no Attribute.
func Parse(name string) (Attribute, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range names {
		if n == upper {
			return Attribute(i), nil
		}
	}
	return 0, fmt.Errorf("attribute: unknown attribute %q", name)
}

// Set is a fixed-size vector of attribute values.
// The zero value is a valid Set with every attribute at 0.
type Set struct {
	values [count]int
}

// NewSet builds a Set from a name-keyed map such as one decoded from YAML.
//
// Postcondition: returns an error if any key is not an attribute name or any value is negative.
func NewSet(m map[string]int) (Set, error) {
	var s Set
	for k, v := range m {
		a, err := Parse(k)
		if err != nil {
			return Set{}, err
		}
		if v < 0 {
			return Set{}, fmt.Errorf("attribute: %s must be >= 0, got %d", a, v)
		}
		s.values[a] = v
	}
	return s, nil
}

// Get returns the value of a; unknown attributes read as 0.
func (s Set) Get(a Attribute) int {
	if a < 0 || a >= count {
		return 0
	}
	return s.values[a]
}

// With returns a copy of s with a set to v.
func (s Set) With(a Attribute, v int) Set {
	if a >= 0 && a < count {
		s.values[a] = v
	}
	return s
}

// Add returns the element-wise sum of s and o.
func (s Set) Add(o Set) Set {
	for i := range s.values {
		s.values[i] += o.values[i]
	}
	return s
}

// Scale returns s with every value multiplied by n.
func (s Set) Scale(n int) Set {
	for i := range s.values {
		s.values[i] *= n
	}
	return s
}

// Map returns the Set as a name-keyed map, omitting zero values.
func (s Set) Map() map[string]int {
	out := make(map[string]int)
	for i, v := range s.values {
		if v != 0 {
			out[names[i]] = v
		}
	}
	return out
}
