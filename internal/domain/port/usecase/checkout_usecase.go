package usecase

import (
	"context"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
)

// CheckoutRequest is a cashier's cart submission
type CheckoutRequest struct {
	Cashier       *entity.User
	Lines         []entity.CartLine
	PaymentMethod string
	Notes         string
}

// CheckoutResult is the outcome of a successful checkout. Cash sales carry the
// receipt; gateway sales carry the provider redirect URL.
type CheckoutResult struct {
	Transaction *entity.Transaction
	Receipt     *entity.ReceiptPayload
	RedirectURL string
}

// CheckoutUseCase turns carts into transactions
type CheckoutUseCase interface {
	// Checkout validates the cart, prices it and records the transaction.
	//
	// Possible errors:
	// - ValidationError wrapping ErrItemsUnavailable, ErrInsufficientStock,
	//   ErrUnsupportedPaymentMethod, ErrGatewayNotConfigured or a cart error
	// - ValidationError wrapping a GatewayError when the provider session could not be created
	Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)

	// GetTransaction returns a transaction with its lines
	GetTransaction(ctx context.Context, id uint64) (*entity.Transaction, error)
}
