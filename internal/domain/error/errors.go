package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInvalidRequest          = 4000
	CodeItemsUnavailable        = 4001
	CodeInsufficientStock       = 4002
	CodeUnsupportedPayment      = 4003
	CodeInvalidCart             = 4004
	CodeGatewayNotConfigured    = 4005
	CodeGatewayCommunication    = 4006
	CodeDuplicateRequest        = 4009
	CodeInvalidTransition       = 4091
	CodeUnauthorized            = 4010
	CodeTransactionNotFound     = 4040
	CodeItemNotFound            = 4041
	CodeReceiptNotFound         = 4042
	CodeTooManyRequests         = 4290
	CodeReconciliationAmbiguity = 4220

	// 5xxx - Server errors
	CodeInternalServer     = 5000
	CodeDatabaseConnection = 5001
	CodeTransactionLocked  = 5002
)

// Base error types
var (
	// ErrItemsUnavailable is returned when a cart references a missing or inactive item
	ErrItemsUnavailable = errors.New("one or more items are unavailable")

	// ErrInsufficientStock is returned when an item has less stock than requested
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrUnsupportedPaymentMethod is returned for payment methods other than cash and gateway
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")

	// ErrEmptyCart is returned when a checkout carries no lines
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidQuantity is returned when a cart line quantity is below one
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrInvalidItemID is returned when a cart line references a non-positive item id
	ErrInvalidItemID = errors.New("item ID must be positive")

	// ErrNotesTooLong is returned when checkout notes exceed the configured limit
	ErrNotesTooLong = errors.New("notes are too long")

	// ErrInvalidUserID is returned when the cashier id is missing
	ErrInvalidUserID = errors.New("user ID must be positive")

	// ErrGatewayNotConfigured is returned when provider credentials are missing
	ErrGatewayNotConfigured = errors.New("payment gateway is not configured")

	// ErrGatewayCommunication is returned on network or non-success HTTP responses from the provider
	ErrGatewayCommunication = errors.New("payment gateway communication failed")

	// ErrReconciliationAmbiguity is returned when no verifiable success signal was found
	ErrReconciliationAmbiguity = errors.New("payment could not be verified")

	// ErrInvalidCallbackResult is returned for callback hints other than success, failed or cancelled
	ErrInvalidCallbackResult = errors.New("invalid callback result")

	// ErrInvalidTransition is returned when a terminal transaction is asked to change status
	ErrInvalidTransition = errors.New("transaction is not pending")

	// ErrTransactionNotFound is returned when the requested transaction doesn't exist
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrItemNotFound is returned when the requested item doesn't exist
	ErrItemNotFound = errors.New("item not found")

	// ErrReceiptNotFound is returned when no receipt snapshot exists
	ErrReceiptNotFound = errors.New("receipt not found")

	// ErrDuplicateReference is returned when a receipt number or provider reference collides
	ErrDuplicateReference = errors.New("duplicate transaction reference")

	// ErrDuplicateRequest is returned when an idempotency key is already being processed
	ErrDuplicateRequest = errors.New("request with this idempotency key is already in progress")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnauthorized is returned when the cashier token is missing or invalid
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTooManyRequests is returned by the rate limiter
	ErrTooManyRequests = errors.New("too many requests")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")

	// ErrTransactionLocked is returned when a row lock could not be obtained
	ErrTransactionLocked = errors.New("record is locked by another operation")

	// ErrDatabaseConnection is returned when there's a problem connecting to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")

	// ErrNotFound is returned when a generic resource is not found
	ErrNotFound = errors.New("resource not found")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrItemsUnavailable):
		return CodeItemsUnavailable
	case errors.Is(err, ErrInsufficientStock):
		return CodeInsufficientStock
	case errors.Is(err, ErrUnsupportedPaymentMethod):
		return CodeUnsupportedPayment
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidItemID),
		errors.Is(err, ErrNotesTooLong):
		return CodeInvalidCart
	case errors.Is(err, ErrGatewayNotConfigured):
		return CodeGatewayNotConfigured
	case errors.Is(err, ErrGatewayCommunication):
		return CodeGatewayCommunication
	case errors.Is(err, ErrReconciliationAmbiguity):
		return CodeReconciliationAmbiguity
	case errors.Is(err, ErrDuplicateRequest):
		return CodeDuplicateRequest
	case errors.Is(err, ErrInvalidTransition):
		return CodeInvalidTransition
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidUserID):
		return CodeUnauthorized
	case errors.Is(err, ErrTooManyRequests):
		return CodeTooManyRequests
	case errors.Is(err, ErrTransactionNotFound):
		return CodeTransactionNotFound
	case errors.Is(err, ErrItemNotFound):
		return CodeItemNotFound
	case errors.Is(err, ErrReceiptNotFound):
		return CodeReceiptNotFound
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrInvalidCallbackResult):
		return CodeInvalidRequest
	case errors.Is(err, ErrTransactionLocked):
		return CodeTransactionLocked
	case errors.Is(err, ErrDatabaseConnection):
		return CodeDatabaseConnection
	default:
		return CodeInternalServer
	}
}

// ValidationError is a business-rule or input failure tied to a request field.
// No state has been mutated when one is returned.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError
func (e *ValidationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed on %s: %s: %v", e.Field, e.Message, e.Err)
}

// Unwrap returns the underlying error
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Fields returns the field-level message map rendered to API callers
func (e *ValidationError) Fields() map[string]string {
	return map[string]string{e.Field: e.Message}
}

// LogFields returns a map of fields for structured logging
func (e *ValidationError) LogFields() map[string]any {
	fields := map[string]any{
		"error_type": "validation_error",
		"field":      e.Field,
		"message":    e.Message,
		"error_code": ErrorCode(e),
	}
	if e.Err != nil {
		fields["error"] = e.Err.Error()
	}
	return fields
}

// NewValidationError creates a field-level validation error
func NewValidationError(field, message string, err error) error {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// InsufficientStockError provides detailed error information for a failed reservation
type InsufficientStockError struct {
	ItemID    uint64
	ItemName  string
	Requested int
	Available int
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d (%s): requested %d, available %d",
		e.ItemID, e.ItemName, e.Requested, e.Available)
}

// Is checks if the target error is an ErrInsufficientStock
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Message returns the cashier-facing message
func (e *InsufficientStockError) Message() string {
	return fmt.Sprintf("Insufficient stock for %s.", e.ItemName)
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientStockError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "insufficient_stock",
		"item_id":    e.ItemID,
		"item_name":  e.ItemName,
		"requested":  e.Requested,
		"available":  e.Available,
		"error_code": CodeInsufficientStock,
	}
}

// NewInsufficientStockError creates a new detailed insufficient stock error
func NewInsufficientStockError(itemID uint64, itemName string, requested, available int) error {
	return &InsufficientStockError{
		ItemID:    itemID,
		ItemName:  itemName,
		Requested: requested,
		Available: available,
	}
}

// GatewayError describes a failed call to the payment provider
type GatewayError struct {
	Operation  string
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("gateway %s failed with HTTP %d: %v", e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("gateway %s failed: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Is checks if the target error is an ErrGatewayCommunication
func (e *GatewayError) Is(target error) bool {
	return target == ErrGatewayCommunication
}

// LogFields returns a map of fields for structured logging
func (e *GatewayError) LogFields() map[string]any {
	fields := map[string]any{
		"error_type":  "gateway_error",
		"operation":   e.Operation,
		"status_code": e.StatusCode,
		"error_code":  CodeGatewayCommunication,
	}
	if e.Err != nil {
		fields["error"] = e.Err.Error()
	}
	return fields
}

// NewGatewayError creates a new gateway communication error
func NewGatewayError(operation string, statusCode int, err error) error {
	return &GatewayError{
		Operation:  operation,
		StatusCode: statusCode,
		Err:        err,
	}
}

// ReconciliationError records why a pending transaction could not be confirmed
type ReconciliationError struct {
	TransactionID uint64
	Reference     string
	Reason        string
	Err           error
}

// Error implements the error interface
func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation of transaction %d (reference %s) failed: %s: %v",
		e.TransactionID, e.Reference, e.Reason, e.Err)
}

// Unwrap returns the underlying error
func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *ReconciliationError) LogFields() map[string]any {
	return map[string]any{
		"error_type":     "reconciliation_error",
		"transaction_id": e.TransactionID,
		"reference":      e.Reference,
		"reason":         e.Reason,
		"error":          e.Err.Error(),
		"error_code":     ErrorCode(e.Err),
	}
}

// NewReconciliationError creates a detailed reconciliation error
func NewReconciliationError(transactionID uint64, reference, reason string, err error) error {
	return &ReconciliationError{
		TransactionID: transactionID,
		Reference:     reference,
		Reason:        reason,
		Err:           err,
	}
}

// IsValidationError reports whether err carries field-level validation details
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInsufficientStockError checks if the error is related to insufficient stock
func IsInsufficientStockError(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

// IsGatewayError checks if the error came from the payment provider
func IsGatewayError(err error) bool {
	return errors.Is(err, ErrGatewayCommunication)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrReceiptNotFound)
}

// IsLockError checks if the error is related to a locked row
func IsLockError(err error) bool {
	return errors.Is(err, ErrTransactionLocked)
}

// FieldErrors extracts field-level messages from a validation error chain.
// Non-validation errors yield nil.
func FieldErrors(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields()
	}
	var se *InsufficientStockError
	if errors.As(err, &se) {
		return map[string]string{"items": se.Message()}
	}
	return nil
}
