package service

import (
	"strings"

	"foodhub/internal/model"
)

// validateBasket rejects malformed baskets before any row is touched and
// returns the lines merged by item.
func validateBasket(lines []model.BasketLine, maxLines int) ([]model.BasketLine, error) {
	if len(lines) == 0 {
		return nil, model.ErrEmptyBasket
	}
	if len(lines) > maxLines {
		return nil, model.ErrTooManyLines
	}

	cleaned := make([]model.BasketLine, len(lines))
	for i, l := range lines {
		l.ItemID = strings.TrimSpace(l.ItemID)
		if l.ItemID == "" {
			return nil, model.ErrInvalidItem
		}
		if l.Quantity <= 0 {
			return nil, model.ErrInvalidQuantity
		}
		if l.Quantity > model.MaxQuantity {
			return nil, model.ErrQuantityTooLarge
		}
		cleaned[i] = l
	}

	// Each line fits, but repeated lines for one item can still add up past it.
	merged := model.MergeLines(cleaned)
	for _, l := range merged {
		if l.Quantity > model.MaxQuantity {
			return nil, model.ErrQuantityTooLarge
		}
	}
	return merged, nil
}

func lineIDs(lines []model.BasketLine) []string {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.ItemID
	}
	return ids
}
