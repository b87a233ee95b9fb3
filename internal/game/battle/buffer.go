package battle

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/turnbattle/internal/game/action"
	"github.com/cory-johannsen/turnbattle/internal/game/ids"
)

// ErrDuplicateEntry is returned when a combatant submits a second action for
// the same slot.
var ErrDuplicateEntry = errors.New("battle: duplicate buffer entry")

// Entry is one submitted action.
type Entry struct {
	User     ids.ActorID
	Slot     int // 0 for the first action of the turn
	Type     action.Type
	Skill    *action.SkillDef
	Item     *action.ItemDef
	Targets  []ids.ActorID
	Cooldown int // turns left before the action resolves
	Turn     int // turn the entry was submitted
	Enforced bool

	seq      int
	deferred bool
}

// Buffer is the queue of submitted actions for the current turn.
//
// Invariant: at most one entry per (User, Slot).
type Buffer struct {
	entries []*Entry
	cursor  int
	nextSeq int
}

// NewBuffer creates an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{cursor: -1}
}

// Add submits e.
//
// Precondition: e.User is valid and e.Type is not action.None.
// Postcondition: returns ErrDuplicateEntry if an entry for (e.User, e.Slot)
// exists; the buffer is then unchanged.
func (b *Buffer) Add(e Entry) error {
	if !e.User.Valid() {
		return fmt.Errorf("battle: buffer entry needs a user")
	}
	if e.Type == action.None {
		return fmt.Errorf("battle: buffer entry for %s has no action type", e.User)
	}
	for _, x := range b.entries {
		if x.User == e.User && x.Slot == e.Slot {
			return fmt.Errorf("%w: %s slot %d", ErrDuplicateEntry, e.User, e.Slot)
		}
	}
	e.Targets = append([]ids.ActorID(nil), e.Targets...)
	e.seq = b.nextSeq
	e.deferred = false
	b.nextSeq++
	b.entries = append(b.entries, &e)
	return nil
}

// Sort orders entries by priority, highest first, keeping submission order
// among equals, and rewinds.
func (b *Buffer) Sort(priority func(ids.ActorID) int) {
	sort.SliceStable(b.entries, func(i, j int) bool {
		pi, pj := priority(b.entries[i].User), priority(b.entries[j].User)
		if pi != pj {
			return pi > pj
		}
		return b.entries[i].seq < b.entries[j].seq
	})
	b.Rewind()
}

// Rewind positions the buffer before its first entry.
func (b *Buffer) Rewind() { b.cursor = -1 }

// SetNext advances to the next entry and reports whether one exists.
//
// Postcondition: after Rewind, SetNext returns true exactly Len() times.
func (b *Buffer) SetNext() bool {
	if b.cursor < len(b.entries) {
		b.cursor++
	}
	return b.cursor < len(b.entries)
}

// Current returns the entry at the cursor, or nil.
func (b *Buffer) Current() *Entry {
	if b.cursor < 0 || b.cursor >= len(b.entries) {
		return nil
	}
	return b.entries[b.cursor]
}

// User returns the current entry's user, or ids.None.
func (b *Buffer) User() ids.ActorID {
	if e := b.Current(); e != nil {
		return e.User
	}
	return ids.None
}

// ActionType returns the current entry's type, or action.None.
func (b *Buffer) ActionType() action.Type {
	if e := b.Current(); e != nil {
		return e.Type
	}
	return action.None
}

// Skill returns the current entry's skill, or nil.
func (b *Buffer) Skill() *action.SkillDef {
	if e := b.Current(); e != nil {
		return e.Skill
	}
	return nil
}

// Item returns the current entry's item, or nil.
func (b *Buffer) Item() *action.ItemDef {
	if e := b.Current(); e != nil {
		return e.Item
	}
	return nil
}

// Targets returns a copy of the current entry's targets.
func (b *Buffer) Targets() []ids.ActorID {
	if e := b.Current(); e != nil {
		return append([]ids.ActorID(nil), e.Targets...)
	}
	return nil
}

// Cooldown returns the current entry's remaining cooldown.
func (b *Buffer) Cooldown() int {
	if e := b.Current(); e != nil {
		return e.Cooldown
	}
	return 0
}

// Defer keeps the current entry for the next turn.
func (b *Buffer) Defer() {
	if e := b.Current(); e != nil {
		e.deferred = true
	}
}

// Update ends the turn: entries that were not deferred are dropped and each
// deferred entry's cooldown decreases by one.
//
// Postcondition: Len() equals the number of deferred entries; the buffer is rewound.
func (b *Buffer) Update() {
	kept := b.entries[:0]
	for _, e := range b.entries {
		if !e.deferred {
			continue
		}
		e.deferred = false
		if e.Cooldown > 0 {
			e.Cooldown--
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(b.entries); i++ {
		b.entries[i] = nil
	}
	b.entries = kept
	b.Rewind()
}

// HasPending reports whether user has an entry in the buffer.
func (b *Buffer) HasPending(user ids.ActorID) bool {
	for _, e := range b.entries {
		if e.User == user {
			return true
		}
	}
	return false
}

// Entries returns copies of the entries in buffer order.
func (b *Buffer) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	for i, e := range b.entries {
		out[i] = *e
		out[i].Targets = append([]ids.ActorID(nil), e.Targets...)
	}
	return out
}

// Len returns the number of entries.
func (b *Buffer) Len() int { return len(b.entries) }

// Clear drops every entry.
func (b *Buffer) Clear() {
	b.entries = nil
	b.Rewind()
}
