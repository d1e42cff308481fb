package migration

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/persistence"
	"github.com/shopspring/decimal"
)

type seedItem struct {
	name, sku, category, description, barcode string
	price, cost                               string
	stock, minStock                           int
}

// defaultCatalog is the fast-food menu loaded into development databases
var defaultCatalog = []seedItem{
	{"Classic Cheeseburger", "ITEM-BURGER-001", "Burgers", "Beef patty, cheese, lettuce, and house sauce.", "100000000001", "129.00", "68.00", 120, 20},
	{"Double BBQ Burger", "ITEM-BURGER-002", "Burgers", "Double beef patties with smoky BBQ glaze.", "100000000002", "169.00", "92.00", 80, 15},
	{"2pc Crispy Chicken Meal", "ITEM-CHICKEN-001", "Chicken", "Two-piece fried chicken with gravy.", "100000000003", "189.00", "101.00", 70, 12},
	{"Spicy Chicken Sandwich", "ITEM-CHICKEN-002", "Chicken", "Crispy spicy chicken fillet with mayo.", "100000000004", "149.00", "79.00", 65, 10},
	{"Regular Fries", "ITEM-SIDES-001", "Sides", "Golden crispy fries.", "100000000005", "59.00", "24.00", 200, 30},
	{"Onion Rings", "ITEM-SIDES-002", "Sides", "Crispy battered onion rings.", "100000000006", "69.00", "29.00", 150, 20},
	{"Iced Tea (16oz)", "ITEM-DRINK-001", "Drinks", "Fresh brewed sweet iced tea.", "100000000007", "49.00", "16.00", 180, 25},
	{"Cola (22oz)", "ITEM-DRINK-002", "Drinks", "Cold sparkling cola drink.", "100000000008", "55.00", "20.00", 160, 25},
	{"Sundae Cup", "ITEM-DESSERT-001", "Desserts", "Vanilla sundae with chocolate topping.", "100000000009", "45.00", "18.00", 100, 15},
	{"Apple Pie", "ITEM-DESSERT-002", "Desserts", "Warm pastry filled with apple cinnamon.", "100000000010", "39.00", "15.00", 110, 15},
}

// SeedCatalog inserts the default menu. Items whose SKU already exists are
// left untouched, so the seed can run on every start.
func SeedCatalog(ctx context.Context, items persistence.ItemRepository, logger coreport.Logger) (int, error) {
	created := 0
	for _, s := range defaultCatalog {
		item := &entity.Item{
			Name:        s.name,
			SKU:         s.sku,
			Description: s.description,
			Category:    s.category,
			Unit:        "pc",
			Barcode:     s.barcode,
			Price:       decimal.RequireFromString(s.price),
			Cost:        decimal.RequireFromString(s.cost),
			Stock:       s.stock,
			MinStock:    s.minStock,
			IsActive:    true,
			TaxRate:     decimal.Zero,
		}

		err := items.Create(ctx, item)
		if errors.Is(err, errs.ErrDuplicateReference) || errors.Is(err, errs.ErrConstraintViolation) {
			continue
		}
		if err != nil {
			return created, err
		}
		created++
	}

	logger.Info("Catalog seed applied", map[string]any{
		"created": created,
		"total":   len(defaultCatalog),
	})
	return created, nil
}
