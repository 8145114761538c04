package cart

import (
	"fmt"
	"strings"

	"github.com/joe-hadchity/lescale-pos/internal/entity"
)

// BuildLine assembles a new cart line from a menu item and the customer's
// customizations. Removals that are not part of the item's ingredient list
// are dropped silently (the screen only offers valid choices, but the input
// is validated anyway). Duplicate add-ons are kept: adding the same
// ingredient twice contributes its price twice.
//
// Every build produces a fresh line with quantity 1. Identical
// configurations are never merged into an existing line; callers append the
// result as a new row.
func BuildLine(item entity.MenuItem, removals []string, addOns []entity.Ingredient, note string, onTheHouse bool) (entity.CartLine, error) {
	if item.ID == "" || strings.TrimSpace(item.Name) == "" {
		return entity.CartLine{}, fmt.Errorf("menu item is missing identity")
	}
	if item.Price < 0 {
		return entity.CartLine{}, fmt.Errorf("menu item %s has negative price", item.Name)
	}

	valid := make(map[string]bool, len(item.Ingredients))
	for _, ing := range item.Ingredients {
		valid[ing] = true
	}

	// Set semantics: duplicates collapse, unknown names are ignored.
	seen := make(map[string]bool, len(removals))
	kept := make([]string, 0, len(removals))
	for _, r := range removals {
		if !valid[r] || seen[r] {
			continue
		}
		seen[r] = true
		kept = append(kept, r)
	}

	line := entity.CartLine{
		ItemID:     item.ID,
		ItemName:   item.Name,
		BasePrice:  item.Price,
		Removals:   kept,
		AddOns:     append([]entity.Ingredient(nil), addOns...),
		Quantity:   1,
		Note:       note,
		OnTheHouse: onTheHouse,
	}
	return line, nil
}
