package posclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sangkips/retailpos-api/pkg/stock"
)

var (
	// ErrInsufficientStock is returned when a quantity exceeds available stock.
	ErrInsufficientStock = stock.ErrInsufficientStock
	// ErrInvalidQuantity is returned for non-positive quantities.
	ErrInvalidQuantity = stock.ErrInvalidQuantity
	// ErrInvalidDiscount is returned for discounts outside 0-100.
	ErrInvalidDiscount = errors.New("discount must be between 0 and 100")
	// ErrEmptyCart blocks checkout of a cart without lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInsufficientPayment blocks checkout when the amount paid is below the grand total.
	ErrInsufficientPayment = errors.New("amount paid is less than the grand total")
	// ErrRequestPending rejects an operation while another on the same resource is in flight.
	ErrRequestPending = errors.New("a request for this resource is already in progress")
	// ErrUnauthenticated is returned when no credential is set or the server rejects it.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrNotInCart is returned when a line operation names an item that is not in the cart.
	ErrNotInCart = errors.New("item is not in the cart")
)

// RemoteError is a failed request. Message is the server's message when it sent one.
type RemoteError struct {
	Status  int
	Kind    string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Is lets callers match server-side failures against the package sentinels.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrUnauthenticated:
		return e.Status == http.StatusUnauthorized
	case ErrInsufficientStock:
		return e.Kind == "insufficient_stock"
	case ErrInvalidQuantity:
		return e.Kind == "invalid_quantity"
	case ErrInvalidDiscount:
		return e.Kind == "invalid_discount"
	case ErrEmptyCart:
		return e.Kind == "empty_cart"
	case ErrInsufficientPayment:
		return e.Kind == "insufficient_payment"
	}
	return false
}

func genericError(status int) *RemoteError {
	return &RemoteError{
		Status:  status,
		Message: fmt.Sprintf("request failed: %d %s", status, http.StatusText(status)),
	}
}
