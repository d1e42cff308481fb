package entity

import (
	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
)

// CartLine is a single requested item in a checkout
type CartLine struct {
	ItemID   uint64
	Quantity int
}

// NormalizeCart validates the requested lines and merges duplicates by item id,
// summing quantities. The first appearance of an item fixes its position.
func NormalizeCart(lines []CartLine) ([]CartLine, error) {
	if len(lines) == 0 {
		return nil, errs.NewValidationError("items", "The cart is empty.", errs.ErrEmptyCart)
	}

	index := make(map[uint64]int, len(lines))
	merged := make([]CartLine, 0, len(lines))

	for _, line := range lines {
		if line.ItemID == 0 {
			return nil, errs.NewValidationError("items", "Item ID must be positive.", errs.ErrInvalidItemID)
		}
		if line.Quantity < 1 {
			return nil, errs.NewValidationError("items", "Quantity must be at least 1.", errs.ErrInvalidQuantity)
		}

		if pos, ok := index[line.ItemID]; ok {
			merged[pos].Quantity += line.Quantity
			continue
		}
		index[line.ItemID] = len(merged)
		merged = append(merged, line)
	}

	return merged, nil
}

// CartItemIDs returns the distinct item ids of a normalized cart in line order
func CartItemIDs(lines []CartLine) []uint64 {
	ids := make([]uint64, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ItemID)
	}
	return ids
}
