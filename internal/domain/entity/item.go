package entity

import (
	"strconv"
	"time"

	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	"github.com/shopspring/decimal"
)

// Item is a sellable catalog entry whose stock is owned by the inventory ledger
type Item struct {
	ID          uint64          // Unique identifier for the item
	Name        string          // Display name printed on receipts
	SKU         string          // Unique stock keeping unit
	Description string          // Free-text description
	Category    string          // Menu category
	Unit        string          // Sales unit (pc, cup, ...)
	Barcode     string          // Optional barcode
	Price       decimal.Decimal // Selling price
	Cost        decimal.Decimal // Purchase cost
	Stock       int             // Units on hand, never negative
	MinStock    int             // Low-stock threshold
	IsActive    bool            // Inactive items cannot be sold
	IsTaxable   bool            // Whether tax applies
	TaxRate     decimal.Decimal // Tax rate in percent
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasStock reports whether qty units can be taken from the item
func (i *Item) HasStock(qty int) bool {
	return qty > 0 && i.Stock >= qty
}

// Deduct removes qty units from stock, refusing to go below zero
func (i *Item) Deduct(qty int) error {
	if qty <= 0 {
		return errs.ErrInvalidQuantity
	}
	if !i.IsActive {
		return errs.NewInsufficientStockError(i.ID, i.Name, qty, 0)
	}
	if i.Stock < qty {
		return errs.NewInsufficientStockError(i.ID, i.Name, qty, i.Stock)
	}
	i.Stock -= qty
	return nil
}

// IsLowStock reports whether stock has reached the configured threshold
func (i *Item) IsLowStock() bool {
	return i.Stock <= i.MinStock
}

// Code returns the identifier sent to the payment provider for this item
func (i *Item) Code() string {
	if i.SKU != "" {
		return i.SKU
	}
	return strconv.FormatUint(i.ID, 10)
}
