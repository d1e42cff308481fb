package entity

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how a transaction is settled
type PaymentMethod string

// Payment methods
const (
	PaymentMethodCash    PaymentMethod = "cash"
	PaymentMethodGateway PaymentMethod = "maya_checkout"
)

// Payment providers recorded on the transaction
const (
	ProviderCash = "cash"
	ProviderMaya = "maya"
)

// TransactionStatus defines possible status values for a transaction
type TransactionStatus string

// TransactionStatus constants
const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusCancelled TransactionStatus = "cancelled"
)

// Notes appended to transactions on state changes
const (
	NoteGatewayCreationFailed = "Gateway checkout creation failed."
	NoteGatewayNotCompleted   = "Gateway checkout was not completed."
	NoteGatewayNotVerified    = "Gateway payment was not verifiably successful."
	NoteGatewayCompleted      = "Completed via gateway success callback."
	NotePaymentVerifyFailed   = "Payment verification failed."
	NoteCompletedByPoll       = "Completed via gateway status poll."
)

// ParsePaymentMethod maps request input onto a supported payment method.
// "gateway" is accepted as an alias of the provider checkout method.
func ParsePaymentMethod(method string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case string(PaymentMethodCash):
		return PaymentMethodCash, nil
	case "gateway", string(PaymentMethodGateway):
		return PaymentMethodGateway, nil
	default:
		return "", fmt.Errorf("%w: %s", errs.ErrUnsupportedPaymentMethod, method)
	}
}

// Transaction is a sale: its lines, totals and payment lifecycle
type Transaction struct {
	ID                 uint64            // Unique identifier for the transaction
	UserID             uint64            // Cashier who rang up the sale
	Subtotal           decimal.Decimal   // Sum of line subtotals
	Tax                decimal.Decimal   // Tax total
	Discount           decimal.Decimal   // Discount total
	Total              decimal.Decimal   // subtotal - discount + tax
	PaymentMethod      PaymentMethod     // cash or provider checkout
	PaymentProvider    string            // cash or maya
	Status             TransactionStatus // Payment lifecycle status
	ReceiptNumber      string            // Human readable, unique
	ProviderCheckoutID string            // Provider checkout session id
	ProviderPaymentID  string            // Provider payment id once verified
	ProviderReference  string            // Correlation token sent to the provider
	ProviderPayload    PaymentRecord     // Last provider record used for verification
	PaidAt             *time.Time        // When payment was confirmed
	StockDeductedAt    *time.Time        // Set once stock has been taken for this sale
	Notes              string            // Cashier notes plus appended lifecycle notes
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Lines              []TransactionLine
}

// NewTransaction builds an unsaved pending transaction from priced lines
func NewTransaction(userID uint64, method PaymentMethod, lines []TransactionLine, notes string, now time.Time) (*Transaction, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if len(lines) == 0 {
		return nil, errs.ErrEmptyCart
	}

	provider := ProviderCash
	if method == PaymentMethodGateway {
		provider = ProviderMaya
	}

	t := &Transaction{
		UserID:          userID,
		Tax:             decimal.Zero,
		Discount:        decimal.Zero,
		PaymentMethod:   method,
		PaymentProvider: provider,
		Status:          StatusPending,
		Notes:           strings.TrimSpace(notes),
		CreatedAt:       now,
		UpdatedAt:       now,
		Lines:           lines,
	}
	t.RecalculateTotals()
	return t, nil
}

// RecalculateTotals derives subtotal and total from the lines
func (t *Transaction) RecalculateTotals() {
	subtotal := decimal.Zero
	for _, line := range t.Lines {
		subtotal = subtotal.Add(line.Subtotal)
	}
	t.Subtotal = RoundMoney(subtotal)
	t.Total = RoundMoney(t.Subtotal.Sub(t.Discount).Add(t.Tax))
}

// IsPending reports whether the transaction still awaits a payment outcome
func (t *Transaction) IsPending() bool {
	return t.Status == StatusPending
}

// IsTerminal reports whether the status can no longer change
func (t *Transaction) IsTerminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed || t.Status == StatusCancelled
}

// IsGateway reports whether the transaction is settled through the provider
func (t *Transaction) IsGateway() bool {
	return t.PaymentMethod == PaymentMethodGateway
}

// StockDeducted reports whether the idempotency marker for stock is set
func (t *Transaction) StockDeducted() bool {
	return t.StockDeductedAt != nil
}

// MarkStockDeducted sets the stock idempotency marker
func (t *Transaction) MarkStockDeducted(at time.Time) {
	t.StockDeductedAt = &at
	t.UpdatedAt = at
}

// AppendNote adds a lifecycle note on its own line
func (t *Transaction) AppendNote(note string) {
	if note == "" {
		return
	}
	if t.Notes == "" {
		t.Notes = note
		return
	}
	t.Notes = strings.TrimSpace(t.Notes + "\n" + note)
}

// Complete moves a pending transaction to completed. Empty provider ids keep
// the values already stored.
func (t *Transaction) Complete(paidAt time.Time, paymentID, reference, note string) error {
	if !t.IsPending() {
		return fmt.Errorf("%w: %s", errs.ErrInvalidTransition, t.Status)
	}
	t.Status = StatusCompleted
	t.PaidAt = &paidAt
	t.UpdatedAt = paidAt
	if paymentID != "" {
		t.ProviderPaymentID = paymentID
	}
	if reference != "" {
		t.ProviderReference = reference
	}
	t.AppendNote(note)
	return nil
}

// Fail moves a pending transaction to failed
func (t *Transaction) Fail(at time.Time, note string) error {
	return t.finish(StatusFailed, at, note)
}

// Cancel moves a pending transaction to cancelled
func (t *Transaction) Cancel(at time.Time, note string) error {
	return t.finish(StatusCancelled, at, note)
}

func (t *Transaction) finish(status TransactionStatus, at time.Time, note string) error {
	if !t.IsPending() {
		return fmt.Errorf("%w: %s", errs.ErrInvalidTransition, t.Status)
	}
	t.Status = status
	t.UpdatedAt = at
	t.AppendNote(note)
	return nil
}

// CallbackOutcome is the checkout_result value shown on the dashboard
func (t *Transaction) CallbackOutcome() string {
	if t.Status == StatusCompleted {
		return "success"
	}
	return "failed"
}

// ItemQuantities returns the quantity sold per item id
func (t *Transaction) ItemQuantities() map[uint64]int {
	quantities := make(map[uint64]int, len(t.Lines))
	for _, line := range t.Lines {
		quantities[line.ItemID] += line.Quantity
	}
	return quantities
}
