package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
)

// CallbackResult is the hint carried by the provider redirect
type CallbackResult string

// Callback results
const (
	CallbackSuccess   CallbackResult = "success"
	CallbackFailed    CallbackResult = "failed"
	CallbackCancelled CallbackResult = "cancelled"
)

// ParseCallbackResult validates a callback hint
func ParseCallbackResult(result string) (CallbackResult, error) {
	switch CallbackResult(strings.ToLower(result)) {
	case CallbackSuccess:
		return CallbackSuccess, nil
	case CallbackFailed:
		return CallbackFailed, nil
	case CallbackCancelled:
		return CallbackCancelled, nil
	default:
		return "", fmt.Errorf("%w: %s", errs.ErrInvalidCallbackResult, result)
	}
}

// ReconcileMode selects how an unverified payment is treated
type ReconcileMode string

// Reconcile modes
const (
	// ModeCallback resolves the transaction; unverified means failed
	ModeCallback ReconcileMode = "callback"
	// ModePoll leaves an unverified transaction pending until it expires
	ModePoll ReconcileMode = "poll"
)

// ReconcileOutcome reports what a reconciliation run did
type ReconcileOutcome struct {
	Transaction *entity.Transaction
	Changed     bool   // false when the transaction was already terminal or left pending
	Verified    bool   // true when a successful provider record was accepted
	Source      string // lookup that produced the accepted record
}

// ReconciliationUseCase applies provider payment outcomes to local transactions
type ReconciliationUseCase interface {
	// HandleCallback reconciles a transaction from a provider redirect hint.
	// It never leaves the transaction pending.
	HandleCallback(ctx context.Context, transactionID uint64, result CallbackResult) (*ReconcileOutcome, error)

	// Poll reconciles a pending transaction without a hint
	Poll(ctx context.Context, transactionID uint64) (*ReconcileOutcome, error)

	// StalePending lists gateway transactions due for a poll, one batch at a
	// time starting after the given id
	StalePending(ctx context.Context, afterID uint64) ([]uint64, error)
}
