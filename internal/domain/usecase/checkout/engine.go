package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	gatewayport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/usecase/outbox"
)

// Checkout outcomes recorded in metrics
const (
	outcomeCompleted = "completed"
	outcomePending   = "pending"
	outcomeRejected  = "rejected"
	outcomeFailed    = "failed"
)

// Config holds checkout settings
type Config struct {
	Currency        string // ISO currency sent to the provider
	CallbackBaseURL string // public base URL of the callback route
	NotesMaxLength  int
}

// Engine validates carts and records transactions. Cash sales complete and
// deduct stock in the same unit of work; gateway sales stay pending and open
// a provider checkout session after commit.
type Engine struct {
	uow          persistence.UnitOfWork
	inventory    usecase.InventoryUseCase
	receipts     usecase.ReceiptUseCase
	gateway      gatewayport.PaymentGateway
	events       *outbox.Recorder
	idGenerator  coreport.IDGenerator
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	metrics      coreport.Metrics
	validator    *CheckoutValidator
	cfg          Config
}

var _ usecase.CheckoutUseCase = (*Engine)(nil)

// NewEngine creates a checkout engine. gateway may be nil when the provider
// is not configured; gateway checkouts are then rejected.
func NewEngine(
	uow persistence.UnitOfWork,
	inventory usecase.InventoryUseCase,
	receipts usecase.ReceiptUseCase,
	gateway gatewayport.PaymentGateway,
	events *outbox.Recorder,
	idGenerator coreport.IDGenerator,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	metrics coreport.Metrics,
	cfg Config,
) *Engine {
	if cfg.Currency == "" {
		cfg.Currency = "PHP"
	}
	return &Engine{
		uow:          uow,
		inventory:    inventory,
		receipts:     receipts,
		gateway:      gateway,
		events:       events,
		idGenerator:  idGenerator,
		timeProvider: timeProvider,
		logger:       logger,
		metrics:      metrics,
		validator:    NewCheckoutValidator(cfg.NotesMaxLength),
		cfg:          cfg,
	}
}

// Checkout validates the cart, prices it under row locks and records the transaction
func (e *Engine) Checkout(ctx context.Context, req usecase.CheckoutRequest) (*usecase.CheckoutResult, error) {
	// Step 1: Validate the cart and payment method
	validated, err := e.validator.Validate(req)
	if err != nil {
		e.recordOutcome(methodLabel(req.PaymentMethod), outcomeRejected)
		return nil, err
	}
	method := string(validated.Method)

	if validated.Method == entity.PaymentMethodGateway && e.gateway == nil {
		e.recordOutcome(method, outcomeRejected)
		return nil, errs.NewValidationError("payment_method", "Gateway checkout is not configured.", errs.ErrGatewayNotConfigured)
	}

	// Step 2: Lock items and record the sale in one unit of work
	var t *entity.Transaction
	err = e.uow.WithinTransaction(ctx, func(txCtx context.Context) error {
		created, err := e.createTransaction(txCtx, req.Cashier, validated)
		if err != nil {
			return err
		}
		t = created
		return nil
	})
	if err != nil {
		e.logger.Warn("Checkout rejected", map[string]any{
			"user_id":        req.Cashier.ID,
			"payment_method": method,
			"error":          err.Error(),
		})
		e.recordOutcome(method, outcomeRejected)
		return nil, err
	}

	// Step 3: Cash sales get their receipt now, gateway sales a checkout session
	if validated.Method == entity.PaymentMethodCash {
		return e.finishCash(ctx, t), nil
	}
	return e.openGatewaySession(ctx, req.Cashier, t)
}

// createTransaction runs inside the unit of work: lock items, check stock,
// insert the transaction and, for cash, deduct stock and complete it
func (e *Engine) createTransaction(ctx context.Context, cashier *entity.User, v *ValidatedCheckout) (*entity.Transaction, error) {
	items, err := e.uow.GetItemRepository(ctx).ListActiveForUpdate(ctx, entity.CartItemIDs(v.Lines))
	if err != nil {
		return nil, fmt.Errorf("failed to lock items: %w", err)
	}
	if len(items) != len(v.Lines) {
		return nil, errs.NewValidationError("items", "One or more items are unavailable.", errs.ErrItemsUnavailable)
	}

	// Check stock against the locked rows
	byID := make(map[uint64]*entity.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	lines := make([]entity.TransactionLine, 0, len(v.Lines))
	for _, requested := range v.Lines {
		item := byID[requested.ItemID]
		if !item.HasStock(requested.Quantity) {
			stockErr := &errs.InsufficientStockError{
				ItemID:    item.ID,
				ItemName:  item.Name,
				Requested: requested.Quantity,
				Available: item.Stock,
			}
			return nil, errs.NewValidationError("items", stockErr.Message(), stockErr)
		}
		lines = append(lines, entity.NewTransactionLine(item, requested.Quantity))
	}

	now := e.timeProvider.Now()
	t, err := entity.NewTransaction(cashier.ID, v.Method, lines, v.Notes, now)
	if err != nil {
		return nil, err
	}
	t.ReceiptNumber = e.idGenerator.ReceiptNumber(now)
	t.ProviderReference = e.idGenerator.ProviderReference(now)

	txRepo := e.uow.GetTransactionRepository(ctx)
	if err := txRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	// Gateway sales keep their stock until the payment is confirmed
	if v.Method != entity.PaymentMethodCash {
		return t, nil
	}

	if _, err := e.inventory.DeductForTransaction(ctx, t); err != nil {
		var stockErr *errs.InsufficientStockError
		if errors.As(err, &stockErr) {
			return nil, errs.NewValidationError("items", stockErr.Message(), err)
		}
		return nil, err
	}
	if err := t.Complete(now, "", "", ""); err != nil {
		return nil, err
	}
	if err := txRepo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to complete cash transaction: %w", err)
	}
	if err := e.events.Record(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (e *Engine) finishCash(ctx context.Context, t *entity.Transaction) *usecase.CheckoutResult {
	if _, err := e.receipts.PersistSnapshot(ctx, t); err != nil {
		// the sale stands; the receipt is rebuilt on first read
		e.logger.Error("Receipt snapshot failed after cash checkout", map[string]any{
			"transaction_id": t.ID,
			"receipt_number": t.ReceiptNumber,
			"error":          err.Error(),
		})
	}

	payload := e.receipts.BuildPayload(t)

	e.logger.Info("Cash checkout completed", map[string]any{
		"transaction_id": t.ID,
		"receipt_number": t.ReceiptNumber,
		"total":          entity.FormatMoney(t.Total),
	})
	e.recordOutcome(string(t.PaymentMethod), outcomeCompleted)

	return &usecase.CheckoutResult{Transaction: t, Receipt: &payload}
}

// openGatewaySession calls the provider outside any database lock
func (e *Engine) openGatewaySession(ctx context.Context, cashier *entity.User, t *entity.Transaction) (*usecase.CheckoutResult, error) {
	session, err := e.gateway.CreateCheckout(ctx, e.buildCheckoutRequest(cashier, t))
	if err == nil && session == nil {
		err = errs.NewGatewayError("create_checkout", 0, errors.New("empty checkout session"))
	}
	if err != nil {
		e.logger.Error("Gateway checkout creation failed", map[string]any{
			"transaction_id": t.ID,
			"receipt_number": t.ReceiptNumber,
			"error":          err.Error(),
		})
		if failErr := e.markFailed(ctx, t.ID, entity.NoteGatewayCreationFailed); failErr != nil {
			e.logger.Error("Failed to mark transaction failed", map[string]any{
				"transaction_id": t.ID,
				"error":          failErr.Error(),
			})
		}
		e.recordOutcome(string(t.PaymentMethod), outcomeFailed)
		return nil, errs.NewValidationError("payment_method", "Unable to initialize gateway checkout.", err)
	}

	err = e.uow.WithinTransaction(ctx, func(txCtx context.Context) error {
		repo := e.uow.GetTransactionRepository(txCtx)
		locked, err := repo.GetByIDForUpdate(txCtx, t.ID)
		if err != nil {
			return err
		}
		locked.ProviderCheckoutID = session.CheckoutID
		if err := repo.Update(txCtx, locked); err != nil {
			return err
		}
		t = locked
		return nil
	})
	if err != nil {
		// the reference lookup can still reconcile this sale without the session id
		e.logger.Error("Failed to store gateway checkout id", map[string]any{
			"transaction_id": t.ID,
			"checkout_id":    session.CheckoutID,
			"error":          err.Error(),
		})
		t.ProviderCheckoutID = session.CheckoutID
	}

	e.logger.Info("Gateway checkout session created", map[string]any{
		"transaction_id": t.ID,
		"receipt_number": t.ReceiptNumber,
		"checkout_id":    session.CheckoutID,
	})
	e.recordOutcome(string(t.PaymentMethod), outcomePending)

	return &usecase.CheckoutResult{Transaction: t, RedirectURL: session.RedirectURL}, nil
}

// markFailed fails a transaction only while it is still pending
func (e *Engine) markFailed(ctx context.Context, id uint64, note string) error {
	return e.uow.WithinTransaction(ctx, func(txCtx context.Context) error {
		repo := e.uow.GetTransactionRepository(txCtx)
		t, err := repo.GetByIDForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if !t.IsPending() {
			return nil
		}
		if err := t.Fail(e.timeProvider.Now(), note); err != nil {
			return err
		}
		if err := repo.Update(txCtx, t); err != nil {
			return err
		}
		return e.events.Record(txCtx, t)
	})
}

func (e *Engine) buildCheckoutRequest(cashier *entity.User, t *entity.Transaction) gatewayport.CheckoutRequest {
	items := make([]gatewayport.CheckoutItem, 0, len(t.Lines))
	for _, line := range t.Lines {
		items = append(items, gatewayport.CheckoutItem{
			Name:     line.ItemName,
			Quantity: line.Quantity,
			Code:     line.Code(),
			Price:    entity.RoundMoney(line.Price),
			Total:    entity.RoundMoney(line.Subtotal),
		})
	}

	return gatewayport.CheckoutRequest{
		Reference:  t.ProviderReference,
		Total:      entity.RoundMoney(t.Total),
		Currency:   e.cfg.Currency,
		BuyerName:  cashier.BuyerName(),
		BuyerEmail: cashier.BuyerEmail(),
		SuccessURL: e.callbackURL(t.ID, usecase.CallbackSuccess),
		FailureURL: e.callbackURL(t.ID, usecase.CallbackFailed),
		CancelURL:  e.callbackURL(t.ID, usecase.CallbackCancelled),
		Items:      items,
	}
}

func (e *Engine) callbackURL(id uint64, result usecase.CallbackResult) string {
	return fmt.Sprintf("%s/pos/checkout/%d/%s", strings.TrimRight(e.cfg.CallbackBaseURL, "/"), id, result)
}

// GetTransaction returns a transaction with its lines
func (e *Engine) GetTransaction(ctx context.Context, id uint64) (*entity.Transaction, error) {
	return e.uow.GetTransactionRepository(ctx).GetByID(ctx, id)
}

func (e *Engine) recordOutcome(method, outcome string) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordCheckout(method, outcome)
}

// methodLabel keeps metric labels to the supported methods
func methodLabel(raw string) string {
	method, err := entity.ParsePaymentMethod(raw)
	if err != nil {
		return "unknown"
	}
	return string(method)
}
