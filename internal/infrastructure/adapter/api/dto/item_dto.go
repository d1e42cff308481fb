package dto

import "github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"

// ItemResponse represents an item with its current stock
type ItemResponse struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Category  string `json:"category,omitempty"`
	Unit      string `json:"unit,omitempty"`
	Barcode   string `json:"barcode,omitempty"`
	Price     string `json:"price"`
	Stock     int    `json:"stock"`
	MinStock  int    `json:"min_stock"`
	LowStock  bool   `json:"low_stock"`
	IsActive  bool   `json:"is_active"`
	IsTaxable bool   `json:"is_taxable"`
}

// NewItemResponse maps an item entity to its API representation
func NewItemResponse(item *entity.Item) ItemResponse {
	return ItemResponse{
		ID:        item.ID,
		Name:      item.Name,
		SKU:       item.SKU,
		Category:  item.Category,
		Unit:      item.Unit,
		Barcode:   item.Barcode,
		Price:     item.Price.StringFixed(2),
		Stock:     item.Stock,
		MinStock:  item.MinStock,
		LowStock:  item.IsLowStock(),
		IsActive:  item.IsActive,
		IsTaxable: item.IsTaxable,
	}
}

// HealthResponse is returned by the health check
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
