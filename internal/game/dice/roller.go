package dice

// Roll throws every die of e with src.
//
// Precondition: e comes from Parse; src must be non-nil.
// Postcondition: len(Dice) == e.Count and e.Min() <= Total() <= e.Max().
func (e Expression) Roll(src Source) RollResult {
	rolled := make([]int, e.Count)
	for i := range rolled {
		rolled[i] = src.Intn(e.Sides) + 1
	}
	return RollResult{Expression: e.Raw, Dice: rolled, Modifier: e.Modifier}
}
