package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionLine is the immutable sale-time record of one cart line
type TransactionLine struct {
	ID            uint64
	TransactionID uint64
	ItemID        uint64
	ItemName      string // Name snapshot at sale time
	SKU           string // SKU snapshot at sale time
	Quantity      int
	Price         decimal.Decimal // Unit price snapshot
	Subtotal      decimal.Decimal // round(price * quantity, 2)
	Discount      decimal.Decimal
	Tax           decimal.Decimal
	CreatedAt     time.Time
}

// NewTransactionLine prices qty units of item at its current price
func NewTransactionLine(item *Item, qty int) TransactionLine {
	return TransactionLine{
		ItemID:   item.ID,
		ItemName: item.Name,
		SKU:      item.SKU,
		Quantity: qty,
		Price:    item.Price,
		Subtotal: RoundMoney(item.Price.Mul(decimal.NewFromInt(int64(qty)))),
		Discount: decimal.Zero,
		Tax:      decimal.Zero,
	}
}

// Code returns the provider item code for the line
func (l *TransactionLine) Code() string {
	item := Item{ID: l.ItemID, SKU: l.SKU}
	return item.Code()
}
