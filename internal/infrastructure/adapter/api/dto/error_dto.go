package dto

import (
	"errors"
	"net/http"

	domainerr "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
)

// ErrorResponse represents a standardized error response for the API
type ErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// NewErrorResponse builds the error body for err, attaching field-level
// messages when err carries them
func NewErrorResponse(err error, message string) ErrorResponse {
	fields := domainerr.FieldErrors(err)
	if message == "" {
		message = err.Error()
		if len(fields) == 1 {
			for _, m := range fields {
				message = m
			}
		} else if len(fields) > 1 {
			message = "The given data was invalid."
		}
	}
	return ErrorResponse{
		Code:    domainerr.ErrorCode(err),
		Message: message,
		Errors:  fields,
	}
}

// HTTPStatus maps a domain error to its HTTP status
func HTTPStatus(err error) int {
	switch {
	case domainerr.IsValidationError(err), domainerr.IsInsufficientStockError(err):
		return http.StatusUnprocessableEntity
	case domainerr.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, domainerr.ErrDuplicateRequest):
		return http.StatusConflict
	case errors.Is(err, domainerr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domainerr.ErrTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, domainerr.ErrInvalidRequest), errors.Is(err, domainerr.ErrInvalidCallbackResult):
		return http.StatusBadRequest
	case domainerr.IsGatewayError(err):
		return http.StatusBadGateway
	case domainerr.IsLockError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
