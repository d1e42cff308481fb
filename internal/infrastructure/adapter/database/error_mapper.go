package database

import (
	"errors"
	"fmt"
	"strings"

	domainErr "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	"gorm.io/gorm"
)

// EntityType represents the type of entity for errors mapping
type EntityType string

const (
	// EntityTypeItem represents the catalog item entity
	EntityTypeItem EntityType = "item"
	// EntityTypeTransaction represents the transaction entity
	EntityTypeTransaction EntityType = "transaction"
	// EntityTypeReceipt represents the receipt snapshot entity
	EntityTypeReceipt EntityType = "receipt"
	// EntityTypeOutbox represents the outbox message entity
	EntityTypeOutbox EntityType = "outbox_message"
)

// ErrorMapper maps database errors to domain errors
type ErrorMapper struct{}

// NewErrorMapper creates a new ErrorMapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError maps a database error to a domain error. Errors that already
// belong to the domain vocabulary pass through unchanged.
func (m *ErrorMapper) MapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	if isDomainError(err) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr.ErrNotFound
	}

	errMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errMsg, "deadlock") ||
		strings.Contains(errMsg, "serializ") ||
		strings.Contains(errMsg, "lock timeout") ||
		strings.Contains(errMsg, "could not obtain lock"):
		return fmt.Errorf("%w: %s", domainErr.ErrTransactionLocked, operation)

	case strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "unique constraint"):
		return domainErr.ErrDuplicateReference

	case strings.Contains(errMsg, "check constraint") ||
		strings.Contains(errMsg, "foreign key constraint"):
		return domainErr.ErrConstraintViolation

	case strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "no connection") ||
		strings.Contains(errMsg, "connection reset"):
		return domainErr.ErrDatabaseConnection

	case strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "deadline exceeded"):
		return fmt.Errorf("%w: %s operation timed out", domainErr.ErrDatabaseConnection, operation)

	default:
		return fmt.Errorf("%w: %s", domainErr.ErrInternalServer, err.Error())
	}
}

// MapEntityNotFoundError maps database errors to specific entity not found errors
func (m *ErrorMapper) MapEntityNotFoundError(err error, entityType EntityType) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		switch entityType {
		case EntityTypeItem:
			return domainErr.ErrItemNotFound
		case EntityTypeTransaction:
			return domainErr.ErrTransactionNotFound
		case EntityTypeReceipt:
			return domainErr.ErrReceiptNotFound
		default:
			return domainErr.ErrNotFound
		}
	}

	return m.MapError(err, string(entityType))
}

// isDomainError reports whether err is already expressed in domain terms
func isDomainError(err error) bool {
	var (
		validation *domainErr.ValidationError
		stock      *domainErr.InsufficientStockError
		gateway    *domainErr.GatewayError
	)
	return errors.As(err, &validation) ||
		errors.As(err, &stock) ||
		errors.As(err, &gateway) ||
		errors.Is(err, domainErr.ErrInvalidTransition) ||
		errors.Is(err, domainErr.ErrConstraintViolation) ||
		errors.Is(err, domainErr.ErrDuplicateReference) ||
		errors.Is(err, domainErr.ErrTransactionLocked) ||
		errors.Is(err, domainErr.ErrDatabaseConnection) ||
		domainErr.IsNotFoundError(err)
}
