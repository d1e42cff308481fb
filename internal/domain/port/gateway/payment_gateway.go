package gateway

import (
	"context"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CheckoutItem is one line of a provider checkout session
type CheckoutItem struct {
	Name     string
	Quantity int
	Code     string
	Price    decimal.Decimal
	Total    decimal.Decimal
}

// CheckoutRequest describes the hosted checkout session to create
type CheckoutRequest struct {
	Reference  string
	Total      decimal.Decimal
	Currency   string
	BuyerName  string
	BuyerEmail string
	SuccessURL string
	FailureURL string
	CancelURL  string
	Items      []CheckoutItem
}

// CheckoutSession is the provider's answer to a checkout creation
type CheckoutSession struct {
	CheckoutID  string
	RedirectURL string
}

// PaymentGateway is the client of the external payment provider. Lookups
// return a nil record when the provider answers "not found" and an error for
// any other failure. Implementations do not retry.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckout(ctx context.Context, checkoutID string) (entity.PaymentRecord, error)
	GetPaymentByReference(ctx context.Context, reference string) (entity.PaymentRecord, error)
	GetPayment(ctx context.Context, paymentID string) (entity.PaymentRecord, error)
	GetPaymentStatus(ctx context.Context, paymentID string) (entity.PaymentRecord, error)
}
