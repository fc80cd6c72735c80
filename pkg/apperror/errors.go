package apperror

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sangkips/retailpos-api/pkg/stock"
)

// Error kinds exposed to API clients alongside the message.
const (
	KindNotFound            = "not_found"
	KindUnauthorized        = "unauthorized"
	KindForbidden           = "forbidden"
	KindBadRequest          = "bad_request"
	KindValidation          = "validation"
	KindConflict            = "conflict"
	KindInternal            = "internal"
	KindInsufficientStock   = "insufficient_stock"
	KindInvalidQuantity     = "invalid_quantity"
	KindInvalidDiscount     = "invalid_discount"
	KindEmptyCart           = "empty_cart"
	KindInsufficientPayment = "insufficient_payment"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    string       `json:"kind"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Kind: KindForbidden, Message: "Forbidden"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "Internal server error"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Kind: KindUnauthorized, Message: "Invalid email or password"}
	ErrEmptyCart          = &AppError{Code: http.StatusBadRequest, Kind: KindEmptyCart, Message: "Cart is empty"}
	ErrInvalidDiscount    = &AppError{Code: http.StatusBadRequest, Kind: KindInvalidDiscount, Message: "Discount must be between 0 and 100"}
)

// NewAppError creates a new application error
func NewAppError(code int, kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindBadRequest,
		Message: message,
	}
}

// NewInsufficientStockError names every item that could not be fulfilled
func NewInsufficientStockError(items ...string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindInsufficientStock,
		Message: "Insufficient stock for: " + strings.Join(items, ", "),
	}
}

// NewInsufficientPaymentError reports a payment below the amount due
func NewInsufficientPaymentError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindInsufficientPayment,
		Message: message,
	}
}

// FromStockError maps a stock guard rejection onto an AppError.
// Errors that are not stock rejections are returned unchanged.
func FromStockError(err error) error {
	var se *stock.Error
	if !errors.As(err, &se) {
		return err
	}
	if errors.Is(se, stock.ErrInvalidQuantity) {
		return &AppError{Code: http.StatusBadRequest, Kind: KindInvalidQuantity, Message: "Quantity must be a positive number"}
	}
	return &AppError{Code: http.StatusConflict, Kind: KindInsufficientStock, Message: se.Error()}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: err.Error(),
	}
}
