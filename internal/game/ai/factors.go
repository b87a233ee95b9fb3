// Package ai implements the decision engine that chooses actions and targets
// for computer-controlled combatants.
package ai

import (
	"fmt"
	"strings"
)

// Difficulty selects how carefully a Module chooses.
type Difficulty int

const (
	Random      Difficulty = iota // uniform choice among legal options
	Priority                      // options weighted by their value rating
	Tactical                      // declared; not implemented
	DeepThought                   // declared; not implemented
)

var difficultyNames = []string{"random", "priority", "tactical", "deep_thought"}

// String returns the lower-snake name of the difficulty.
func (d Difficulty) String() string {
	if d < 0 || int(d) >= len(difficultyNames) {
		return "unknown"
	}
	return difficultyNames[d]
}

// ParseDifficulty resolves a difficulty name. The empty string is Random.
func ParseDifficulty(name string) (Difficulty, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return Random, nil
	}
	for i, dn := range difficultyNames {
		if dn == n {
			return Difficulty(i), nil
		}
	}
	return Random, fmt.Errorf("ai: unknown difficulty %q", name)
}

// Personality biases the action-type weights.
type Personality int

const (
	Plain     Personality = iota // no bias
	Aggressor                    // favours skills
	Defender                     // favours defend and guard
	Retreater                    // favours running
	Miser                        // avoids items
)

var personalityNames = []string{"plain", "aggressor", "defender", "retreater", "miser"}

// String returns the lower-case name of the personality.
func (p Personality) String() string {
	if p < 0 || int(p) >= len(personalityNames) {
		return "unknown"
	}
	return personalityNames[p]
}

// ParsePersonality resolves a personality name. The empty string is Plain.
func ParsePersonality(name string) (Personality, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return Plain, nil
	}
	for i, pn := range personalityNames {
		if pn == n {
			return Personality(i), nil
		}
	}
	return Plain, fmt.Errorf("ai: unknown personality %q", name)
}

// Factors are the tunable base weights of the action-type distribution.
type Factors struct {
	RandomSkill   float64 // base skill weight at Random difficulty
	PrioritySkill float64 // base skill weight at Priority difficulty
	Variance      float64 // skill weight is perturbed uniformly by ±Variance
	BaseItem      float64 // item weight before leaning
	LeanToItem    float64 // added to item weight per missing QTDR percent point
	Guard         float64
	Defend        float64
	Run           float64
	Pass          float64
}

// DefaultFactors returns the stock weights.
func DefaultFactors() Factors {
	return Factors{
		RandomSkill:   0.60,
		PrioritySkill: 0.50,
		Variance:      0.05,
		BaseItem:      0.05,
		LeanToItem:    0.003,
		Guard:         0.05,
		Defend:        0.08,
		Run:           0.02,
		Pass:          0.02,
	}
}
