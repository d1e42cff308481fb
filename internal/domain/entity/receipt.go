package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptDateLayout is the date format printed on receipts
const ReceiptDateLayout = "2006-01-02 15:04:05"

// DefaultReceiptItemName is printed when a line has lost its item name
const DefaultReceiptItemName = "Item"

// ReceiptPayloadItem is one printed receipt line
type ReceiptPayloadItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Subtotal float64 `json:"subtotal"`
}

// ReceiptPayload is the persisted, display-ready snapshot of a completed sale
type ReceiptPayload struct {
	ID            uint64               `json:"id"`
	ReceiptNumber string               `json:"receipt_number"`
	Date          string               `json:"date"`
	Status        string               `json:"status"`
	PaymentMethod string               `json:"payment_method"`
	Subtotal      float64              `json:"subtotal"`
	Discount      float64              `json:"discount"`
	Tax           float64              `json:"tax"`
	Total         float64              `json:"total"`
	Items         []ReceiptPayloadItem `json:"items"`
}

// LinesTotal sums the printed line subtotals
func (p ReceiptPayload) LinesTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range p.Items {
		sum = sum.Add(decimal.NewFromFloat(item.Subtotal))
	}
	return RoundMoney(sum)
}

// Receipt is the one-per-transaction audit record holding the payload snapshot
type Receipt struct {
	ID                uint64
	TransactionID     uint64
	UserID            uint64
	ReceiptNumber     string
	PaymentMethod     PaymentMethod
	Status            TransactionStatus
	Total             decimal.Decimal
	ProviderPaymentID string
	ProviderReference string
	Payload           ReceiptPayload
	IssuedAt          time.Time // paid_at, or created_at when unpaid
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
