package handler

import (
	"net/http"
	"strings"

	domainerr "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/usecase"
	"github.com/gin-gonic/gin"
)

// ReceiptHandler serves receipt snapshots
type ReceiptHandler struct {
	receipts usecase.ReceiptUseCase
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receipts usecase.ReceiptUseCase) *ReceiptHandler {
	return &ReceiptHandler{receipts: receipts}
}

// GetByReceiptNumber handles the GET /api/pos/receipts/:receiptNumber endpoint
func (h *ReceiptHandler) GetByReceiptNumber(c *gin.Context) {
	number := strings.TrimSpace(c.Param("receiptNumber"))
	if number == "" {
		abortWithError(c, domainerr.ErrReceiptNotFound)
		return
	}

	payload, err := h.receipts.GetByReceiptNumber(c.Request.Context(), number)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

// GetByTransaction handles the GET /api/pos/transactions/:id/receipt endpoint
func (h *ReceiptHandler) GetByTransaction(c *gin.Context) {
	id, err := parseIDParam(c, "id", domainerr.ErrTransactionNotFound)
	if err != nil {
		abortWithError(c, err)
		return
	}

	payload, err := h.receipts.GetByTransactionID(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}
