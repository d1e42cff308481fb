package entity

import "time"

// OutboxStatus is the delivery state of an outbox message
type OutboxStatus string

// Outbox statuses
const (
	OutboxPending OutboxStatus = "PENDING"
	OutboxSent    OutboxStatus = "SENT"
	OutboxFailed  OutboxStatus = "FAILED"
)

// Lifecycle event types published for transactions
const (
	EventTransactionCompleted = "transaction.completed"
	EventTransactionFailed    = "transaction.failed"
	EventTransactionCancelled = "transaction.cancelled"
)

// OutboxMessage is an event written in the same unit of work as the state
// change it describes and relayed to the broker afterwards
type OutboxMessage struct {
	ID         uint64
	EventID    string
	Topic      string
	MessageKey string
	Payload    []byte
	Status     OutboxStatus
	RetryCount int
	LastError  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	SentAt     *time.Time
}

// TransactionEvent is the JSON body of a transaction lifecycle message
type TransactionEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	TransactionID uint64    `json:"transaction_id"`
	ReceiptNumber string    `json:"receipt_number"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"payment_method"`
	Total         string    `json:"total"`
	StockDeducted bool      `json:"stock_deducted"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventTypeFor maps a terminal status onto its event type
func EventTypeFor(status TransactionStatus) string {
	switch status {
	case StatusCompleted:
		return EventTransactionCompleted
	case StatusCancelled:
		return EventTransactionCancelled
	default:
		return EventTransactionFailed
	}
}

// NewTransactionEvent describes the current state of a transaction
func NewTransactionEvent(eventID string, t *Transaction, at time.Time) TransactionEvent {
	return TransactionEvent{
		EventID:       eventID,
		EventType:     EventTypeFor(t.Status),
		TransactionID: t.ID,
		ReceiptNumber: t.ReceiptNumber,
		Status:        string(t.Status),
		PaymentMethod: string(t.PaymentMethod),
		Total:         FormatMoney(t.Total),
		StockDeducted: t.StockDeducted(),
		OccurredAt:    at,
	}
}
