package checkout

import (
	"errors"
	"unicode/utf8"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/usecase"
)

// DefaultNotesMaxLength is the notes limit used when none is configured
const DefaultNotesMaxLength = 1000

// CheckoutValidator provides validation for checkout requests
type CheckoutValidator struct {
	notesMaxLength int
}

// NewCheckoutValidator creates a new CheckoutValidator
func NewCheckoutValidator(notesMaxLength int) *CheckoutValidator {
	if notesMaxLength <= 0 {
		notesMaxLength = DefaultNotesMaxLength
	}
	return &CheckoutValidator{notesMaxLength: notesMaxLength}
}

// ValidatedCheckout is a request that passed validation
type ValidatedCheckout struct {
	Lines  []entity.CartLine
	Method entity.PaymentMethod
	Notes  string
}

// Validate checks the cashier, cart, payment method and notes
func (v *CheckoutValidator) Validate(req usecase.CheckoutRequest) (*ValidatedCheckout, error) {
	if req.Cashier == nil || req.Cashier.ID == 0 {
		return nil, errs.NewValidationError("user", "A cashier is required.", errs.ErrInvalidUserID)
	}

	lines, err := entity.NormalizeCart(req.Lines)
	if err != nil {
		return nil, err
	}

	method, err := entity.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, errs.NewValidationError("payment_method", "Unsupported payment method.", err)
	}

	if err := v.validateNotes(req.Notes); err != nil {
		return nil, err
	}

	return &ValidatedCheckout{
		Lines:  lines,
		Method: method,
		Notes:  req.Notes,
	}, nil
}

// validateNotes checks the notes length in characters
func (v *CheckoutValidator) validateNotes(notes string) error {
	if !utf8.ValidString(notes) {
		return errs.NewValidationError("notes", "Notes must be valid text.", errors.New("invalid utf-8"))
	}
	if utf8.RuneCountInString(notes) > v.notesMaxLength {
		return errs.NewValidationError("notes", "Notes are too long.", errs.ErrNotesTooLong)
	}
	return nil
}
