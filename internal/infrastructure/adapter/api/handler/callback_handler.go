package handler

import (
	"net/http"
	"net/url"

	domainerr "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/usecase"
	"github.com/gin-gonic/gin"
)

const (
	callbackResultSuccess = "success"
	callbackResultFailed  = "failed"
)

// CallbackHandler handles the payment provider's redirect back to the POS
type CallbackHandler struct {
	reconciler   usecase.ReconciliationUseCase
	dashboardURL string
	logger       coreport.Logger
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(reconciler usecase.ReconciliationUseCase, dashboardURL string, logger coreport.Logger) *CallbackHandler {
	if dashboardURL == "" {
		dashboardURL = "/"
	}
	return &CallbackHandler{
		reconciler:   reconciler,
		dashboardURL: dashboardURL,
		logger:       logger,
	}
}

// Callback handles the GET /pos/checkout/:transaction/:result endpoint.
// It always redirects to the dashboard, carrying the receipt number only on success.
func (h *CallbackHandler) Callback(c *gin.Context) {
	id, err := parseIDParam(c, "transaction", domainerr.ErrTransactionNotFound)
	if err != nil {
		h.logger.Warn("Callback for unknown transaction", map[string]any{
			"transaction": c.Param("transaction"),
			"result":      c.Param("result"),
		})
		h.redirect(c, callbackResultFailed, "")
		return
	}

	result, err := usecase.ParseCallbackResult(c.Param("result"))
	if err != nil {
		h.logger.Warn("Callback with invalid result", map[string]any{
			"transaction_id": id,
			"result":         c.Param("result"),
		})
		h.redirect(c, callbackResultFailed, "")
		return
	}

	outcome, err := h.reconciler.HandleCallback(c.Request.Context(), id, result)
	if err != nil {
		h.logger.Error("Gateway callback failed", map[string]any{
			"transaction_id": id,
			"result":         result,
			"error":          err.Error(),
		})
		h.redirect(c, callbackResultFailed, "")
		return
	}

	t := outcome.Transaction
	checkoutResult := t.CallbackOutcome()
	receipt := ""
	if checkoutResult == callbackResultSuccess {
		receipt = t.ReceiptNumber
	}

	h.logger.Info("Gateway callback handled", map[string]any{
		"transaction_id": t.ID,
		"receipt_number": t.ReceiptNumber,
		"result":         result,
		"status":         t.Status,
		"changed":        outcome.Changed,
		"source":         outcome.Source,
	})
	h.redirect(c, checkoutResult, receipt)
}

func (h *CallbackHandler) redirect(c *gin.Context, checkoutResult, receipt string) {
	c.Redirect(http.StatusFound, dashboardRedirect(h.dashboardURL, checkoutResult, receipt))
}

// dashboardRedirect appends checkout_result and, when set, receipt to base
func dashboardRedirect(base, checkoutResult, receipt string) string {
	u, err := url.Parse(base)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set("checkout_result", checkoutResult)
	if receipt != "" {
		q.Set("receipt", receipt)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
