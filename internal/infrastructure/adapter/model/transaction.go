package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Transaction represents the database model for sales
type Transaction struct {
	ID                 uint64          `gorm:"primaryKey;autoIncrement"`
	UserID             uint64          `gorm:"not null;index"`
	Subtotal           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Tax                decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Discount           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total              decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod      string          `gorm:"not null;size:30"`
	PaymentProvider    string          `gorm:"size:30"`
	Status             string          `gorm:"not null;size:20;index"`
	ReceiptNumber      string          `gorm:"uniqueIndex;not null;size:64"`
	ProviderCheckoutID string          `gorm:"size:128;index"`
	ProviderPaymentID  string          `gorm:"size:128"`
	ProviderReference  *string         `gorm:"uniqueIndex;size:64"`
	ProviderPayload    datatypes.JSON
	PaidAt             *time.Time
	StockDeductedAt    *time.Time
	Notes              string         `gorm:"type:text"`
	CreatedAt          time.Time      `gorm:"not null;index"`
	UpdatedAt          time.Time      `gorm:"not null"`
	DeletedAt          gorm.DeletedAt `gorm:"index"`

	// Define relationships
	Lines []TransactionLine `gorm:"foreignKey:TransactionID;references:ID"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}

// TransactionLine represents the database model for sale lines
type TransactionLine struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement"`
	TransactionID uint64          `gorm:"not null;index"`
	ItemID        uint64          `gorm:"not null;index"`
	ItemName      string          `gorm:"not null;size:255"`
	SKU           string          `gorm:"column:sku;size:64"`
	Quantity      int             `gorm:"not null"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Tax           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt     time.Time       `gorm:"not null"`

	// Define relationships
	Item Item `gorm:"foreignKey:ItemID;references:ID"`
}

// TableName specifies the table name for TransactionLine
func (TransactionLine) TableName() string {
	return "transaction_lines"
}
