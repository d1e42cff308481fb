package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Item represents the database model for catalog items
type Item struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	Name        string          `gorm:"not null;size:255"`
	SKU         string          `gorm:"column:sku;uniqueIndex;not null;size:64"`
	Description string          `gorm:"type:text"`
	Category    string          `gorm:"size:100;index"`
	Unit        string          `gorm:"size:20;default:pc"`
	Barcode     string          `gorm:"size:64"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Cost        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Stock       int             `gorm:"not null;default:0"`
	MinStock    int             `gorm:"not null;default:0"`
	IsActive    bool            `gorm:"not null;default:true;index"`
	IsTaxable   bool            `gorm:"not null;default:false"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
	DeletedAt   gorm.DeletedAt  `gorm:"index"`
}

// TableName specifies the table name for Item
func (Item) TableName() string {
	return "items"
}
