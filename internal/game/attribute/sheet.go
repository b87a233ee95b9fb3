package attribute

// Sheet is the per-battle stat view of one combatant.
//
// Max holds the ceiling each current value may reach, Current the values that
// persist between turns (damage, spent QTDR), and Temp the values used for
// resolution this turn: Current plus any turn-local modifiers.
//
// Invariant: 0 <= Current.Get(a) <= Max.Get(a) for every attribute a.
type Sheet struct {
	Max     Set
	Current Set
	Temp    Set
}

// NewSheet returns a Sheet at full strength.
//
// Postcondition: Current == Max == Temp.
func NewSheet(max Set) *Sheet {
	return &Sheet{Max: max, Current: max, Temp: max}
}

// Alter adds delta to the current value of a, clamped to [0, Max], and returns
// the change that was actually applied.
//
// Postcondition: the Sheet invariant holds; Temp tracks the change.
func (s *Sheet) Alter(a Attribute, delta int) int {
	before := s.Current.Get(a)
	after := before + delta
	if after < 0 {
		after = 0
	}
	if m := s.Max.Get(a); after > m {
		after = m
	}
	s.Current = s.Current.With(a, after)
	s.Temp = s.Temp.With(a, s.Temp.Get(a)+(after-before))
	return after - before
}

// SetCurrent sets the current value of a, clamped to [0, Max].
func (s *Sheet) SetCurrent(a Attribute, v int) {
	s.Alter(a, v-s.Current.Get(a))
}

// Percent returns Current as a whole percentage of Max; 0 when Max is 0.
//
// Postcondition: 0 <= result <= 100.
func (s *Sheet) Percent(a Attribute) int {
	m := s.Max.Get(a)
	if m <= 0 {
		return 0
	}
	return s.Current.Get(a) * 100 / m
}

// ResetTemp discards turn-local modifiers.
//
// Postcondition: Temp == Current.
func (s *Sheet) ResetTemp() {
	s.Temp = s.Current
}

// Buff adds delta to the temporary value of a only; it never touches Current.
// Temporary values never go below 0.
func (s *Sheet) Buff(a Attribute, delta int) {
	v := s.Temp.Get(a) + delta
	if v < 0 {
		v = 0
	}
	s.Temp = s.Temp.With(a, v)
}
