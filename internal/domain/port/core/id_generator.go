package core

import "time"

// IDGenerator produces the externally visible identifiers of a sale
type IDGenerator interface {
	// ReceiptNumber returns a unique, human readable receipt number
	ReceiptNumber(now time.Time) string
	// ProviderReference returns a unique correlation token sent to the payment provider
	ProviderReference(now time.Time) string
	// EventID returns a unique id for an outbox event
	EventID() string
}
