package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Receipt represents the database model for receipt snapshots
type Receipt struct {
	ID                uint64          `gorm:"primaryKey;autoIncrement"`
	TransactionID     uint64          `gorm:"uniqueIndex;not null"`
	UserID            uint64          `gorm:"not null;index"`
	ReceiptNumber     string          `gorm:"uniqueIndex;not null;size:64"`
	PaymentMethod     string          `gorm:"not null;size:30"`
	Status            string          `gorm:"not null;size:20"`
	Total             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ProviderPaymentID string          `gorm:"size:128"`
	ProviderReference string          `gorm:"size:64"`
	Payload           datatypes.JSON  `gorm:"not null"`
	IssuedAt          time.Time       `gorm:"not null"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`

	// Define relationships
	Transaction Transaction `gorm:"foreignKey:TransactionID;references:ID"`
}

// TableName specifies the table name for Receipt
func (Receipt) TableName() string {
	return "receipts"
}
