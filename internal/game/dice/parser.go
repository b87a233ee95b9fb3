package dice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidExpression is wrapped by every parse failure.
var ErrInvalidExpression = errors.New("dice: invalid expression")

// maxDice bounds the dice in one expression; content never needs more.
const maxDice = 100

// ExprError describes why an effect's dice expression was rejected.
type ExprError struct {
	Expr   string
	Reason string
}

func (e *ExprError) Error() string {
	return fmt.Sprintf("dice: %q: %s", e.Expr, e.Reason)
}

// Unwrap makes every ExprError match ErrInvalidExpression.
func (e *ExprError) Unwrap() error { return ErrInvalidExpression }

// Expression is a parsed "NdS+K" roll.
type Expression struct {
	Raw      string
	Count    int // 1..maxDice
	Sides    int // >= 2
	Modifier int
}

// Min returns the lowest total the expression can roll.
func (e Expression) Min() int { return e.Count + e.Modifier }

// Max returns the highest total the expression can roll.
func (e Expression) Max() int { return e.Count*e.Sides + e.Modifier }

// Parse reads an effect dice expression: "d6", "2d6", "2d6+3" or "1d4-1".
// Case and surrounding spaces are ignored.
//
// Postcondition: on success Count is in [1, 100] and Sides >= 2; every
// failure is an *ExprError.
func Parse(expr string) (Expression, error) {
	fail := func(format string, args ...any) (Expression, error) {
		return Expression{}, &ExprError{Expr: expr, Reason: fmt.Sprintf(format, args...)}
	}
	s := strings.ToLower(strings.TrimSpace(expr))
	if s == "" {
		return fail("empty")
	}
	countStr, rest, ok := strings.Cut(s, "d")
	if !ok {
		return fail("missing 'd'")
	}

	count := 1
	if countStr != "" {
		n, err := strconv.Atoi(countStr)
		if err != nil || n < 1 || n > maxDice {
			return fail("die count must be a number in [1, %d]", maxDice)
		}
		count = n
	}

	sidesStr, modStr := rest, ""
	if i := strings.IndexAny(rest, "+-"); i >= 0 {
		sidesStr, modStr = rest[:i], rest[i:]
	}
	sides, err := strconv.Atoi(sidesStr)
	if err != nil || sides < 2 {
		return fail("die sides must be a number >= 2")
	}

	mod := 0
	if modStr != "" {
		if mod, err = strconv.Atoi(modStr); err != nil {
			return fail("bad modifier %q", modStr)
		}
	}
	return Expression{Raw: expr, Count: count, Sides: sides, Modifier: mod}, nil
}
