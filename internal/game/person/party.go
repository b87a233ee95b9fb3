package person

import (
	"fmt"
	"sort"
)

// Party is one side of a battle together with its shared purse and inventory.
type Party struct {
	ID      string
	Name    string
	Members []*Person
	Credits int

	inventory map[string]int
}

// NewParty creates a party with an empty inventory.
func NewParty(id, name string, members ...*Person) *Party {
	return &Party{ID: id, Name: name, Members: members, inventory: make(map[string]int)}
}

// AddItem adds qty of item id to the inventory.
//
// Precondition: qty >= 1.
func (p *Party) AddItem(id string, qty int) error {
	if qty < 1 {
		return fmt.Errorf("party %q: quantity must be >= 1, got %d", p.ID, qty)
	}
	if p.inventory == nil {
		p.inventory = make(map[string]int)
	}
	p.inventory[id] += qty
	return nil
}

// UseItem consumes one of item id and reports whether one was available.
func (p *Party) UseItem(id string) bool {
	if p.inventory[id] < 1 {
		return false
	}
	p.inventory[id]--
	if p.inventory[id] == 0 {
		delete(p.inventory, id)
	}
	return true
}

// ItemCount returns the quantity held of item id.
func (p *Party) ItemCount(id string) int { return p.inventory[id] }

// ItemIDs returns the held item ids in sorted order.
func (p *Party) ItemIDs() []string {
	out := make([]string, 0, len(p.inventory))
	for id := range p.inventory {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Inventory returns a copy of the item quantities.
func (p *Party) Inventory() map[string]int {
	out := make(map[string]int, len(p.inventory))
	for k, v := range p.inventory {
		out[k] = v
	}
	return out
}

// Member returns the member with id, or nil.
func (p *Party) Member(id string) *Person {
	for _, m := range p.Members {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// SetInventory replaces the inventory with a copy of items. Entries with a
// quantity below 1 are dropped.
func (p *Party) SetInventory(items map[string]int) {
	p.inventory = make(map[string]int, len(items))
	for k, v := range items {
		if v > 0 {
			p.inventory[k] = v
		}
	}
}
