package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	gatewayport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/usecase/outbox"
)

// Reconciliation outcomes recorded in metrics
const (
	outcomeCompleted = "completed"
	outcomeFailed    = "failed"
	outcomeCancelled = "cancelled"
	outcomePending   = "pending"
	outcomeNoop      = "noop"
)

// Config holds reconciliation settings
type Config struct {
	PendingAge            time.Duration // minimum age before the sweeper polls a transaction
	ExpireAfter           time.Duration // age after which an unverified poll fails the transaction
	BatchSize             int
	VerifyReferenceAmount bool // also compare amounts on records found by reference
}

// Resolver drives pending gateway transactions to a terminal state
type Resolver struct {
	uow          persistence.UnitOfWork
	inventory    usecase.InventoryUseCase
	receipts     usecase.ReceiptUseCase
	pipeline     *Pipeline
	events       *outbox.Recorder
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	metrics      coreport.Metrics
	cfg          Config
}

var _ usecase.ReconciliationUseCase = (*Resolver)(nil)

// NewResolver creates a new reconciliation resolver
func NewResolver(
	uow persistence.UnitOfWork,
	inventory usecase.InventoryUseCase,
	receipts usecase.ReceiptUseCase,
	gateway gatewayport.PaymentGateway,
	events *outbox.Recorder,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	metrics coreport.Metrics,
	cfg Config,
) *Resolver {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Resolver{
		uow:          uow,
		inventory:    inventory,
		receipts:     receipts,
		pipeline:     NewPipeline(gateway, cfg.VerifyReferenceAmount, logger),
		events:       events,
		timeProvider: timeProvider,
		logger:       logger,
		metrics:      metrics,
		cfg:          cfg,
	}
}

// HandleCallback applies a provider redirect. Terminal transactions are
// returned untouched; failed and cancelled hints cancel without a lookup.
func (r *Resolver) HandleCallback(ctx context.Context, transactionID uint64, result usecase.CallbackResult) (*usecase.ReconcileOutcome, error) {
	t, err := r.uow.GetTransactionRepository(ctx).GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if t.IsTerminal() {
		r.logger.Info("Callback for finished transaction ignored", map[string]any{
			"transaction_id": t.ID,
			"status":         t.Status,
			"result":         result,
		})
		r.record("callback", outcomeNoop)
		return &usecase.ReconcileOutcome{Transaction: t}, nil
	}

	if result != usecase.CallbackSuccess {
		outcome, err := r.finish(ctx, t.ID, entity.StatusCancelled, entity.NoteGatewayNotCompleted)
		if err != nil {
			return nil, err
		}
		r.record("callback", outcomeCancelled)
		return outcome, nil
	}

	return r.reconcile(ctx, t, usecase.ModeCallback)
}

// Poll reconciles a pending gateway transaction without a hint
func (r *Resolver) Poll(ctx context.Context, transactionID uint64) (*usecase.ReconcileOutcome, error) {
	t, err := r.uow.GetTransactionRepository(ctx).GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if t.IsTerminal() || !t.IsGateway() {
		r.record("poll", outcomeNoop)
		return &usecase.ReconcileOutcome{Transaction: t}, nil
	}
	return r.reconcile(ctx, t, usecase.ModePoll)
}

// StalePending lists up to BatchSize gateway transactions above afterID that
// are older than the configured pending age
func (r *Resolver) StalePending(ctx context.Context, afterID uint64) ([]uint64, error) {
	cutoff := r.timeProvider.Now().Add(-r.cfg.PendingAge)
	return r.uow.GetTransactionRepository(ctx).ListPendingGateway(ctx, cutoff, afterID, r.cfg.BatchSize)
}

// reconcile verifies the payment with the provider and applies the result.
// Errors and panics resolve the transaction to failed, except in poll mode
// where an infrastructure error leaves a young transaction pending.
func (r *Resolver) reconcile(ctx context.Context, t *entity.Transaction, mode usecase.ReconcileMode) (outcome *usecase.ReconcileOutcome, err error) {
	source := string(mode)

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic during reconciliation: %v", p)
		}
		if err == nil {
			return
		}

		r.logger.Error("Gateway reconciliation failed", map[string]any{
			"transaction_id": t.ID,
			"receipt_number": t.ReceiptNumber,
			"mode":           mode,
			"error":          err.Error(),
		})

		if mode == usecase.ModePoll && !errs.IsInsufficientStockError(err) && !r.expired(t) {
			r.record(source, outcomePending)
			outcome, err = &usecase.ReconcileOutcome{Transaction: t}, nil
			return
		}

		failed, failErr := r.finish(ctx, t.ID, entity.StatusFailed, entity.NotePaymentVerifyFailed)
		if failErr != nil {
			r.logger.Error("Failed to mark transaction failed after reconciliation error", map[string]any{
				"transaction_id": t.ID,
				"error":          failErr.Error(),
			})
			outcome, err = nil, errors.Join(err, failErr)
			return
		}
		r.record(source, outcomeFailed)
		outcome, err = failed, nil
	}()

	// Step 1: Ask the provider, checkout first then reference, payment and status
	v := r.pipeline.Verify(ctx, t)

	// Step 2: Unverified payments stay pending while a poll is still early,
	// otherwise they fail
	if !v.Verified {
		if mode == usecase.ModePoll && !r.expired(t) {
			r.logger.Info("Gateway payment not confirmed yet", map[string]any{
				"transaction_id": t.ID,
				"source":         v.Source,
			})
			r.record(source, outcomePending)
			return &usecase.ReconcileOutcome{Transaction: t, Source: v.Source}, nil
		}

		r.logger.Warn("Gateway payment not verified", map[string]any{
			"transaction_id": t.ID,
			"receipt_number": t.ReceiptNumber,
			"source":         v.Source,
			"successful":     v.Successful,
			"belongs":        v.Belongs,
			"error":          errs.NewReconciliationError(t.ID, t.ProviderReference, "no verifiable success signal", errs.ErrReconciliationAmbiguity).Error(),
		})
		failed, err := r.finish(ctx, t.ID, entity.StatusFailed, entity.NoteGatewayNotVerified)
		if err != nil {
			return nil, err
		}
		failed.Source = v.Source
		r.record(source, outcomeFailed)
		return failed, nil
	}

	// Step 3: Deduct stock and complete under the row lock
	note := entity.NoteGatewayCompleted
	if mode == usecase.ModePoll {
		note = entity.NoteCompletedByPoll
	}

	completed, err := r.complete(ctx, t.ID, v, note)
	if err != nil {
		return nil, err
	}
	completed.Verified = true
	completed.Source = v.Source
	if completed.Changed {
		r.record(source, outcomeCompleted)
	} else {
		r.record(source, outcomeNoop)
	}
	return completed, nil
}

// complete deducts stock once and marks the transaction paid under its row
// lock, then snapshots the receipt after commit
func (r *Resolver) complete(ctx context.Context, id uint64, v *Verification, note string) (*usecase.ReconcileOutcome, error) {
	var (
		result  *entity.Transaction
		changed bool
	)

	err := r.uow.WithinTransaction(ctx, func(txCtx context.Context) error {
		changed = false
		repo := r.uow.GetTransactionRepository(txCtx)

		locked, err := repo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if !locked.IsPending() {
			// another reconciliation got here first
			result = locked
			return nil
		}

		if _, err := r.inventory.DeductForTransaction(txCtx, locked); err != nil {
			return err
		}

		// Fall back to the checkout id when the record carries no payment id
		paymentID := v.Record.PaymentID()
		if paymentID == "" {
			paymentID = locked.ProviderCheckoutID
		}
		if err := locked.Complete(r.timeProvider.Now(), paymentID, v.Record.Reference(), note); err != nil {
			return err
		}
		locked.ProviderPayload = v.Record

		if err := repo.Update(txCtx, locked); err != nil {
			return err
		}
		// Outbox row commits with the status change
		if err := r.events.Record(txCtx, locked); err != nil {
			return err
		}

		result = locked
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		r.logger.Info("Gateway payment verified, transaction completed", map[string]any{
			"transaction_id":      result.ID,
			"receipt_number":      result.ReceiptNumber,
			"provider_payment_id": result.ProviderPaymentID,
			"source":              v.Source,
		})
		if _, err := r.receipts.PersistSnapshot(ctx, result); err != nil {
			// the payment stands; the receipt is rebuilt on first read
			r.logger.Error("Receipt snapshot failed after reconciliation", map[string]any{
				"transaction_id": result.ID,
				"error":          err.Error(),
			})
		}
	}

	return &usecase.ReconcileOutcome{Transaction: result, Changed: changed}, nil
}

// finish moves a still-pending transaction to a failed or cancelled state
// under its row lock. Terminal transactions are returned unchanged.
func (r *Resolver) finish(ctx context.Context, id uint64, status entity.TransactionStatus, note string) (*usecase.ReconcileOutcome, error) {
	var (
		result  *entity.Transaction
		changed bool
	)

	err := r.uow.WithinTransaction(ctx, func(txCtx context.Context) error {
		changed = false
		repo := r.uow.GetTransactionRepository(txCtx)

		locked, err := repo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		result = locked
		if !locked.IsPending() {
			return nil
		}

		now := r.timeProvider.Now()
		if status == entity.StatusCancelled {
			err = locked.Cancel(now, note)
		} else {
			err = locked.Fail(now, note)
		}
		if err != nil {
			return err
		}
		if err := repo.Update(txCtx, locked); err != nil {
			return err
		}
		if err := r.events.Record(txCtx, locked); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		r.logger.Info("Gateway transaction closed", map[string]any{
			"transaction_id": result.ID,
			"receipt_number": result.ReceiptNumber,
			"status":         result.Status,
		})
	}
	return &usecase.ReconcileOutcome{Transaction: result, Changed: changed}, nil
}

func (r *Resolver) expired(t *entity.Transaction) bool {
	if r.cfg.ExpireAfter <= 0 {
		return false
	}
	return r.timeProvider.Now().Sub(t.CreatedAt) >= r.cfg.ExpireAfter
}

func (r *Resolver) record(source, outcome string) {
	if r.metrics != nil {
		r.metrics.RecordReconciliation(source, outcome)
	}
}
