// Package ids provides explicit, per-battle identifier allocation.
//
// Identifiers are handed out by an Allocator owned by whoever creates the
// identified values, so a battle simulation carries no hidden global counters
// and two runs built from the same inputs produce the same identifiers.
package ids

import "strconv"

// ActorID identifies one combatant for the lifetime of a single battle.
// The zero value is never allocated and means "no actor".
type ActorID uint32

// None is the absent ActorID.
const None ActorID = 0

// Valid reports whether id was produced by an Allocator.
func (id ActorID) Valid() bool { return id != None }

// String returns "actor-<n>", or "none" for the zero value.
func (id ActorID) String() string {
	if id == None {
		return "none"
	}
	return "actor-" + strconv.FormatUint(uint64(id), 10)
}

// Allocator hands out strictly increasing identifiers starting at 1.
// It is not safe for concurrent use; battles are single-threaded.
type Allocator struct {
	next uint64
}

// NewAllocator returns an Allocator whose first Next call returns 1.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Next returns the next identifier.
//
// Postcondition: every returned value is > 0 and greater than all values
// previously returned by this Allocator.
func (a *Allocator) Next() uint64 {
	a.next++
	return a.next
}

// NextActor returns the next identifier typed as an ActorID.
func (a *Allocator) NextActor() ActorID {
	return ActorID(a.Next())
}

// Peek returns the last identifier handed out, or 0 if none.
func (a *Allocator) Peek() uint64 { return a.next }
