// Package stock guards quantity changes against on-hand stock.
package stock

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientStock is returned when a quantity exceeds available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidQuantity is returned for non-positive quantities.
	ErrInvalidQuantity = errors.New("quantity must be a positive number")
)

// Error names the item a rejected quantity change applied to.
type Error struct {
	Err       error
	Item      string
	Requested int
	Available int
}

func (e *Error) Error() string {
	if errors.Is(e.Err, ErrInvalidQuantity) {
		return fmt.Sprintf("%s: %v", e.Item, e.Err)
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.Item, e.Requested, e.Available)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Available returns stock on hand minus the quantity already held in the cart,
// floored at zero.
func Available(stockOnHand, inCart int) int {
	if avail := stockOnHand - inCart; avail > 0 {
		return avail
	}
	return 0
}

// CheckAdd validates adding qty units of an item that already has inCart
// units reserved in the cart.
func CheckAdd(item string, stockOnHand, inCart, qty int) error {
	if qty <= 0 {
		return &Error{Err: ErrInvalidQuantity, Item: item, Requested: qty}
	}
	avail := Available(stockOnHand, inCart)
	if stockOnHand <= 0 || avail <= 0 || qty > avail {
		return &Error{Err: ErrInsufficientStock, Item: item, Requested: qty, Available: avail}
	}
	return nil
}

// CheckSet validates setting a line's quantity to qty outright.
func CheckSet(item string, stockOnHand, qty int) error {
	if qty <= 0 {
		return &Error{Err: ErrInvalidQuantity, Item: item, Requested: qty}
	}
	if stockOnHand <= 0 || qty > stockOnHand {
		return &Error{Err: ErrInsufficientStock, Item: item, Requested: qty, Available: Available(stockOnHand, 0)}
	}
	return nil
}
