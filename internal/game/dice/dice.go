// Package dice provides the randomness abstraction used by battle resolution
// and the AI, together with dice-expression rolls for skill damage.
package dice

import "fmt"

// RollResult holds the full audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // original expression string, e.g. "2d6+3"
	Dice       []int  // individual die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
//
// Postcondition: return value == sum(r.Dice) + r.Modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	diceStr := fmt.Sprintf("%v", r.Dice)
	modStr := fmt.Sprintf("%+d", r.Modifier)
	return fmt.Sprintf("%s \u2192 %s %s = %d", r.Expression, diceStr, modStr, r.Total())
}

// Source is the randomness provider for dice rolls, chance checks and AI draws.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// floatResolution is the number of discrete steps Float draws from.
const floatResolution = 1 << 30

// Float returns a uniform value in [0, 1) drawn from src.
//
// Precondition: src must be non-nil.
// Postcondition: 0 <= result < 1.
func Float(src Source) float64 {
	return float64(src.Intn(floatResolution)) / float64(floatResolution)
}

// ChanceHappens reports whether an event with probability pct/max occurs.
// A pct <= 0 never happens and pct >= max always happens; neither case
// consumes a draw from src.
//
// Precondition: max > 0.
func ChanceHappens(src Source, pct, max int) bool {
	if pct <= 0 {
		return false
	}
	if pct >= max {
		return true
	}
	return src.Intn(max) < pct
}

// Between returns a uniform int in [lo, hi]. If hi <= lo, lo is returned
// without drawing.
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}
