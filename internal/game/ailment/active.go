package ailment

import "errors"

// ErrAlreadyInflicted is returned by Apply when the ailment is already active.
var ErrAlreadyInflicted = errors.New("ailment already inflicted")

// Active tracks one applied ailment on a combatant.
type Active struct {
	Def            *Def
	TurnsRemaining int // -1 = permanent
}

// Permanent reports whether the ailment never expires on its own.
func (a *Active) Permanent() bool { return a.TurnsRemaining < 0 }

// ActiveSet tracks the ailments currently applied to one combatant, in the
// order they were inflicted.
// It is not safe for concurrent use; the owning battle serialises access.
type ActiveSet struct {
	active []*Active
}

// NewActiveSet creates an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{}
}

// Apply inflicts def. turns overrides def.Turns when > 0. Ailments do not stack:
// re-inflicting an active ailment fails with ErrAlreadyInflicted.
//
// Precondition: def must not be nil.
// Postcondition: on success Has(def.ID) is true.
func (s *ActiveSet) Apply(def *Def, turns int) error {
	if def == nil {
		return errors.New("ailment: Apply: def must not be nil")
	}
	if s.Has(def.ID) {
		return ErrAlreadyInflicted
	}
	remaining := -1
	if def.DurationType == DurationTurns {
		remaining = def.Turns
		if turns > 0 {
			remaining = turns
		}
	}
	s.active = append(s.active, &Active{Def: def, TurnsRemaining: remaining})
	return nil
}

// Remove cures the ailment with the given ID and reports whether it was present.
//
// Postcondition: Has(id) is false.
func (s *ActiveSet) Remove(id string) bool {
	for i, a := range s.active {
		if a.Def.ID == id {
			s.active = append(s.active[:i], s.active[i+1:]...)
			return true
		}
	}
	return false
}

// Tick decrements the remaining turns of every timed ailment and removes those
// that reach zero. Expired ailments are returned in infliction order.
//
// Postcondition: for every returned Active a, Has(a.Def.ID) is false.
func (s *ActiveSet) Tick() []*Active {
	var expired []*Active
	kept := s.active[:0]
	for _, a := range s.active {
		if !a.Permanent() {
			a.TurnsRemaining--
			if a.TurnsRemaining <= 0 {
				expired = append(expired, a)
				continue
			}
		}
		kept = append(kept, a)
	}
	s.active = kept
	return expired
}

// Has reports whether the ailment with id is active.
func (s *ActiveSet) Has(id string) bool {
	for _, a := range s.active {
		if a.Def.ID == id {
			return true
		}
	}
	return false
}

// HasKind reports whether any active ailment is of kind k.
func (s *ActiveSet) HasKind(k Kind) bool {
	for _, a := range s.active {
		if a.Def.Kind == k {
			return true
		}
	}
	return false
}

// Restricts reports whether any active ailment blocks the named action type.
func (s *ActiveSet) Restricts(actionType string) bool {
	for _, a := range s.active {
		if a.Def.Restricts(actionType) {
			return true
		}
	}
	return false
}

// All returns the active ailments in infliction order. The slice is a copy; the
// pointed-to values are shared and must not be modified by callers.
func (s *ActiveSet) All() []*Active {
	out := make([]*Active, len(s.active))
	copy(out, s.active)
	return out
}

// Len returns the number of active ailments.
func (s *ActiveSet) Len() int { return len(s.active) }

// Clear removes every ailment, as happens on death.
func (s *ActiveSet) Clear() { s.active = nil }
