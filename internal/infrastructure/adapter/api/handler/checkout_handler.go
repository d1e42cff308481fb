package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	domainerr "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/usecase/checkout"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader makes a checkout submission safe to retry
const IdempotencyKeyHeader = "Idempotency-Key"

// ReplayedHeader marks a response served from the idempotency store
const ReplayedHeader = "Idempotent-Replayed"

const cashProcessedMessage = "Cash payment processed successfully."

// CheckoutHandler handles cashier checkout requests
type CheckoutHandler struct {
	checkout    usecase.CheckoutUseCase
	idempotency *checkout.IdempotencyHandler
	logger      coreport.Logger
}

// NewCheckoutHandler creates a new checkout handler. idempotency may be nil,
// in which case the Idempotency-Key header is ignored.
func NewCheckoutHandler(
	checkoutUseCase usecase.CheckoutUseCase,
	idempotency *checkout.IdempotencyHandler,
	logger coreport.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		checkout:    checkoutUseCase,
		idempotency: idempotency,
		logger:      logger,
	}
}

// Checkout handles the POST /api/pos/checkout endpoint
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	cashier := middleware.CashierFromContext(c)
	if cashier == nil {
		abortWithError(c, domainerr.ErrUnauthorized)
		return
	}

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid checkout request format", map[string]any{
			"user_id":    cashier.ID,
			"request_id": middleware.GetRequestID(c),
			"error":      err.Error(),
		})
		abortWithError(c, domainerr.NewValidationError("request", "Invalid request format.", domainerr.ErrInvalidRequest))
		return
	}

	// keys are scoped per cashier
	key := idempotencyKey(cashier.ID, c.GetHeader(IdempotencyKeyHeader))
	if key != "" && h.idempotency != nil {
		replay, err := h.idempotency.CheckIdempotency(c.Request.Context(), key)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if replay != nil {
			h.logger.Info("Checkout response replayed", map[string]any{
				"user_id":         cashier.ID,
				"idempotency_key": c.GetHeader(IdempotencyKeyHeader),
			})
			c.Header(ReplayedHeader, "true")
			c.Data(http.StatusOK, gin.MIMEJSON+"; charset=utf-8", replay)
			return
		}
	} else {
		key = ""
	}

	result, err := h.checkout.Checkout(c.Request.Context(), usecase.CheckoutRequest{
		Cashier:       cashier,
		Lines:         req.CartLines(),
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		if key != "" {
			h.idempotency.Abort(c.Request.Context(), key)
		}
		abortWithError(c, err)
		return
	}

	var response any
	if result.RedirectURL != "" {
		response = dto.GatewayCheckoutResponse{
			Success:       true,
			Status:        string(result.Transaction.Status),
			TransactionID: result.Transaction.ID,
			ReceiptNumber: result.Transaction.ReceiptNumber,
			RedirectURL:   result.RedirectURL,
		}
	} else {
		response = dto.CashCheckoutResponse{
			Success: true,
			Message: cashProcessedMessage,
			Receipt: result.Receipt,
		}
	}

	body, err := json.Marshal(response)
	if err != nil {
		if key != "" {
			h.idempotency.Abort(c.Request.Context(), key)
		}
		abortWithError(c, err)
		return
	}
	if key != "" {
		h.idempotency.Complete(c.Request.Context(), key, body)
	}

	c.Data(http.StatusOK, gin.MIMEJSON+"; charset=utf-8", body)
}

func idempotencyKey(cashierID uint64, key string) string {
	if key == "" {
		return ""
	}
	return strconv.FormatUint(cashierID, 10) + ":" + key
}
