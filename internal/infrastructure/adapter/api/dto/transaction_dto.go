package dto

import (
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
)

// TransactionLineResponse is one priced line of a transaction
type TransactionLineResponse struct {
	ItemID   uint64 `json:"item_id"`
	Name     string `json:"name"`
	SKU      string `json:"sku,omitempty"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
	Subtotal string `json:"subtotal"`
}

// TransactionResponse represents the API response for a transaction lookup
type TransactionResponse struct {
	ID                 uint64                    `json:"id"`
	ReceiptNumber      string                    `json:"receipt_number"`
	Status             string                    `json:"status"`
	PaymentMethod      string                    `json:"payment_method"`
	PaymentProvider    string                    `json:"payment_provider"`
	Subtotal           string                    `json:"subtotal"`
	Discount           string                    `json:"discount"`
	Tax                string                    `json:"tax"`
	Total              string                    `json:"total"`
	ProviderCheckoutID string                    `json:"provider_checkout_id,omitempty"`
	ProviderPaymentID  string                    `json:"provider_payment_id,omitempty"`
	ProviderReference  string                    `json:"provider_reference,omitempty"`
	Notes              string                    `json:"notes,omitempty"`
	PaidAt             *time.Time                `json:"paid_at,omitempty"`
	CreatedAt          time.Time                 `json:"created_at"`
	Lines              []TransactionLineResponse `json:"lines"`
}

// NewTransactionResponse maps a transaction entity to its API representation
func NewTransactionResponse(t *entity.Transaction) TransactionResponse {
	lines := make([]TransactionLineResponse, 0, len(t.Lines))
	for _, line := range t.Lines {
		lines = append(lines, TransactionLineResponse{
			ItemID:   line.ItemID,
			Name:     line.ItemName,
			SKU:      line.SKU,
			Quantity: line.Quantity,
			Price:    line.Price.StringFixed(2),
			Subtotal: line.Subtotal.StringFixed(2),
		})
	}

	return TransactionResponse{
		ID:                 t.ID,
		ReceiptNumber:      t.ReceiptNumber,
		Status:             string(t.Status),
		PaymentMethod:      string(t.PaymentMethod),
		PaymentProvider:    t.PaymentProvider,
		Subtotal:           t.Subtotal.StringFixed(2),
		Discount:           t.Discount.StringFixed(2),
		Tax:                t.Tax.StringFixed(2),
		Total:              t.Total.StringFixed(2),
		ProviderCheckoutID: t.ProviderCheckoutID,
		ProviderPaymentID:  t.ProviderPaymentID,
		ProviderReference:  t.ProviderReference,
		Notes:              t.Notes,
		PaidAt:             t.PaidAt,
		CreatedAt:          t.CreatedAt,
		Lines:              lines,
	}
}

// ReconcileResponse reports the result of an on-demand reconciliation
type ReconcileResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Changed     bool                `json:"changed"`
	Verified    bool                `json:"verified"`
	Source      string              `json:"source,omitempty"`
}
