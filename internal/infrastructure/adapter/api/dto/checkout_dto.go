package dto

import "github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"

// CheckoutItemRequest is one cart line of a checkout request
type CheckoutItemRequest struct {
	ID       uint64 `json:"id"`
	Quantity int    `json:"quantity"`
}

// CheckoutRequest represents the API request for a cashier checkout
type CheckoutRequest struct {
	Items         []CheckoutItemRequest `json:"items" binding:"required"`
	PaymentMethod string                `json:"payment_method" binding:"required"`
	Notes         string                `json:"notes"`
}

// CartLines maps the request items to cart lines
func (r CheckoutRequest) CartLines() []entity.CartLine {
	lines := make([]entity.CartLine, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, entity.CartLine{ItemID: item.ID, Quantity: item.Quantity})
	}
	return lines
}

// CashCheckoutResponse is returned when a cash sale completes
type CashCheckoutResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Receipt *entity.ReceiptPayload `json:"receipt"`
}

// GatewayCheckoutResponse is returned when a provider checkout session was created
type GatewayCheckoutResponse struct {
	Success       bool   `json:"success"`
	Status        string `json:"status"`
	TransactionID uint64 `json:"transaction_id"`
	ReceiptNumber string `json:"receipt_number"`
	RedirectURL   string `json:"redirect_url"`
}
