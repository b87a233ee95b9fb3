package person

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/turnbattle/internal/game/dice"
)

// CurrencyDrop defines the range of credits a person can drop when defeated.
type CurrencyDrop struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// ItemDrop defines a single item entry in a loot table with a drop chance.
type ItemDrop struct {
	ItemID string  `yaml:"item"`
	Chance float64 `yaml:"chance"`
	MinQty int     `yaml:"min_qty"`
	MaxQty int     `yaml:"max_qty"`
}

// LootTable defines the possible drops of a defeated person.
type LootTable struct {
	Credits *CurrencyDrop `yaml:"credits"`
	Items   []ItemDrop    `yaml:"items"`
}

// Validate checks that the loot table satisfies its invariants.
//
// Precondition: lt must not be nil.
// Postcondition: Returns nil iff all credit and item constraints hold;
// an empty loot table is valid.
func (lt *LootTable) Validate() error {
	if lt.Credits != nil {
		if lt.Credits.Min < 0 {
			return fmt.Errorf("loot table: credits min must be >= 0, got %d", lt.Credits.Min)
		}
		if lt.Credits.Min > lt.Credits.Max {
			return fmt.Errorf("loot table: credits min (%d) must be <= max (%d)", lt.Credits.Min, lt.Credits.Max)
		}
	}
	for i, item := range lt.Items {
		if item.ItemID == "" {
			return fmt.Errorf("loot table: item[%d] must have a non-empty item id", i)
		}
		if item.Chance <= 0 || item.Chance > 1.0 {
			return fmt.Errorf("loot table: item[%d] chance must be in (0, 1.0], got %f", i, item.Chance)
		}
		if item.MinQty < 1 {
			return fmt.Errorf("loot table: item[%d] min_qty must be >= 1, got %d", i, item.MinQty)
		}
		if item.MinQty > item.MaxQty {
			return fmt.Errorf("loot table: item[%d] min_qty (%d) must be <= max_qty (%d)", i, item.MinQty, item.MaxQty)
		}
	}
	return nil
}

// LootItem is one dropped item stack.
type LootItem struct {
	ItemDefID  string
	InstanceID string
	Quantity   int
}

// LootResult holds the generated loot from one defeated person.
type LootResult struct {
	Credits int
	Items   []LootItem
}

// Merge appends o into r.
func (r *LootResult) Merge(o LootResult) {
	r.Credits += o.Credits
	r.Items = append(r.Items, o.Items...)
}

// GenerateLoot rolls loot from lt using src.
//
// Precondition: lt must have passed Validate(); src must be non-nil.
// Postcondition: Credits is in [Credits.Min, Credits.Max] if credits are set;
// each item's Quantity is in [MinQty, MaxQty] for items that pass the chance roll.
func GenerateLoot(lt LootTable, src dice.Source) LootResult {
	var result LootResult

	if lt.Credits != nil && lt.Credits.Max > 0 {
		result.Credits = dice.Between(src, lt.Credits.Min, lt.Credits.Max)
	}

	for _, item := range lt.Items {
		if dice.Float(src) < item.Chance {
			result.Items = append(result.Items, LootItem{
				ItemDefID:  item.ItemID,
				InstanceID: uuid.New().String(),
				Quantity:   dice.Between(src, item.MinQty, item.MaxQty),
			})
		}
	}

	return result
}
