package battle

import (
	"context"

	"github.com/looplab/fsm"
)

// Selection states.
const (
	NotSelected        = "not_selected"
	Selecting          = "selecting"
	SelectedAction     = "selected_action"
	Selecting2ndAction = "selecting_2nd_action"
	Selected2ndAction  = "selected_2nd_action"
	Selecting3rdAction = "selecting_3rd_action"
	Selected3rdAction  = "selected_3rd_action"
)

const (
	evBegin   = "begin"
	evChoose  = "choose"
	evCarry   = "carry"
	evDecline = "decline"
)

// Selection tracks one combatant's progress through choosing its actions for
// the turn.
type Selection struct {
	machine *fsm.FSM
	done    bool
}

// NewSelection returns a Selection in NotSelected.
func NewSelection() *Selection {
	return &Selection{
		machine: fsm.NewFSM(NotSelected, fsm.Events{
			{Name: evBegin, Src: []string{NotSelected}, Dst: Selecting},
			{Name: evBegin, Src: []string{SelectedAction}, Dst: Selecting2ndAction},
			{Name: evBegin, Src: []string{Selected2ndAction}, Dst: Selecting3rdAction},
			{Name: evChoose, Src: []string{Selecting}, Dst: SelectedAction},
			{Name: evChoose, Src: []string{Selecting2ndAction}, Dst: Selected2ndAction},
			{Name: evChoose, Src: []string{Selecting3rdAction}, Dst: Selected3rdAction},
			{Name: evCarry, Src: []string{NotSelected}, Dst: SelectedAction},
			{Name: evDecline, Src: []string{Selecting2ndAction}, Dst: SelectedAction},
			{Name: evDecline, Src: []string{Selecting3rdAction}, Dst: Selected2ndAction},
		}, fsm.Callbacks{}),
	}
}

// State returns the current state name.
func (s *Selection) State() string { return s.machine.Current() }

// Begin starts choosing the next action.
//
// Postcondition: returns an error if the combatant is finished or already choosing.
func (s *Selection) Begin() error {
	if s.done {
		return fsm.InvalidEventError{Event: evBegin, State: s.State()}
	}
	return s.machine.Event(context.Background(), evBegin)
}

// Choose records that the action being chosen is complete.
func (s *Selection) Choose() error {
	return s.machine.Event(context.Background(), evChoose)
}

// Carry marks a combatant whose action carries over from an earlier turn as
// selected without choosing, and finishes it.
func (s *Selection) Carry() error {
	if err := s.machine.Event(context.Background(), evCarry); err != nil {
		return err
	}
	s.done = true
	return nil
}

// Decline abandons the action being chosen, returns to the last selected
// state and finishes. The first action of a turn cannot be declined.
func (s *Selection) Decline() error {
	if err := s.machine.Event(context.Background(), evDecline); err != nil {
		return err
	}
	s.done = true
	return nil
}

// Finish ends selection for the turn.
func (s *Selection) Finish() { s.done = true }

// Done reports whether the combatant needs no further selection this turn.
func (s *Selection) Done() bool { return s.done }

// Choosing reports whether an action is being chosen.
func (s *Selection) Choosing() bool {
	switch s.State() {
	case Selecting, Selecting2ndAction, Selecting3rdAction:
		return true
	}
	return false
}

// Selected reports whether at least one action has been chosen.
func (s *Selection) Selected() bool {
	switch s.State() {
	case SelectedAction, Selected2ndAction, Selected3rdAction:
		return true
	}
	return false
}

// Count returns how many actions have been chosen this turn.
func (s *Selection) Count() int {
	switch s.State() {
	case SelectedAction, Selecting2ndAction:
		return 1
	case Selected2ndAction, Selecting3rdAction:
		return 2
	case Selected3rdAction:
		return 3
	}
	return 0
}

// Reset returns to NotSelected for a new turn.
func (s *Selection) Reset() {
	s.machine.SetState(NotSelected)
	s.done = false
}
