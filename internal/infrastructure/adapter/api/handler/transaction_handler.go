package handler

import (
	"net/http"

	domainerr "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// TransactionHandler handles transaction status and reconciliation requests
type TransactionHandler struct {
	checkout   usecase.CheckoutUseCase
	reconciler usecase.ReconciliationUseCase
	logger     coreport.Logger
}

// NewTransactionHandler creates a new transaction handler instance
func NewTransactionHandler(
	checkoutUseCase usecase.CheckoutUseCase,
	reconciler usecase.ReconciliationUseCase,
	logger coreport.Logger,
) *TransactionHandler {
	return &TransactionHandler{
		checkout:   checkoutUseCase,
		reconciler: reconciler,
		logger:     logger,
	}
}

// GetTransaction handles the GET /api/pos/transactions/:id endpoint
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, err := parseIDParam(c, "id", domainerr.ErrTransactionNotFound)
	if err != nil {
		abortWithError(c, err)
		return
	}

	t, err := h.checkout.GetTransaction(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionResponse(t))
}

// Reconcile handles the POST /api/pos/transactions/:id/reconcile endpoint
func (h *TransactionHandler) Reconcile(c *gin.Context) {
	id, err := parseIDParam(c, "id", domainerr.ErrTransactionNotFound)
	if err != nil {
		abortWithError(c, err)
		return
	}

	outcome, err := h.reconciler.Poll(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	fields := map[string]any{
		"transaction_id": id,
		"status":         outcome.Transaction.Status,
		"changed":        outcome.Changed,
		"source":         outcome.Source,
	}
	if cashier := middleware.CashierFromContext(c); cashier != nil {
		fields["user_id"] = cashier.ID
	}
	h.logger.Info("Manual reconciliation requested", fields)

	c.JSON(http.StatusOK, dto.ReconcileResponse{
		Transaction: dto.NewTransactionResponse(outcome.Transaction),
		Changed:     outcome.Changed,
		Verified:    outcome.Verified,
		Source:      outcome.Source,
	})
}
