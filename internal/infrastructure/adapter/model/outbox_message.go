package model

import (
	"time"
)

// OutboxMessage represents a transaction event waiting to be relayed
type OutboxMessage struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	EventID    string    `gorm:"uniqueIndex;not null;size:64"`
	Topic      string    `gorm:"not null;size:128"`
	MessageKey string    `gorm:"size:128"`
	Payload    []byte    `gorm:"type:bytea;not null"`
	Status     string    `gorm:"not null;size:16;index:idx_outbox_status_id,priority:1"`
	RetryCount int       `gorm:"not null;default:0"`
	LastError  string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
	SentAt     *time.Time
}

// TableName specifies the table name for OutboxMessage
func (OutboxMessage) TableName() string {
	return "outbox_messages"
}
