package handler

import (
	"net/http"

	domainerr "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	"github.com/amirhossein-jamali/pos-checkout/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/pos-checkout/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// ItemHandler serves catalog items with their stock
type ItemHandler struct {
	inventory usecase.InventoryUseCase
}

// NewItemHandler creates a new item handler
func NewItemHandler(inventory usecase.InventoryUseCase) *ItemHandler {
	return &ItemHandler{inventory: inventory}
}

// GetItem handles the GET /api/pos/items/:id endpoint
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, err := parseIDParam(c, "id", domainerr.ErrItemNotFound)
	if err != nil {
		abortWithError(c, err)
		return
	}

	item, err := h.inventory.GetItem(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewItemResponse(item))
}
