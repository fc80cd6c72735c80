package entity

import (
	"time"

	"github.com/google/uuid"
)

// Cart is a user's in-progress sale. One cart exists per user; it holds item
// references and quantities only, prices are always read from the catalog.
type Cart struct {
	UserID    uuid.UUID   `json:"user_id"`
	Entries   []CartEntry `json:"items"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// CartEntry is a single item reference in a cart
type CartEntry struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"added_at"`
}

// NewCart returns an empty cart for the user
func NewCart(userID uuid.UUID) *Cart {
	return &Cart{UserID: userID, Entries: []CartEntry{}}
}

// IsEmpty reports whether the cart holds no entries
func (c *Cart) IsEmpty() bool {
	return len(c.Entries) == 0
}

// QuantityOf returns the quantity held for an item, zero when absent
func (c *Cart) QuantityOf(itemID uuid.UUID) int {
	if e := c.Find(itemID); e != nil {
		return e.Quantity
	}
	return 0
}

// Find returns the entry for an item or nil
func (c *Cart) Find(itemID uuid.UUID) *CartEntry {
	for i := range c.Entries {
		if c.Entries[i].ItemID == itemID {
			return &c.Entries[i]
		}
	}
	return nil
}

// Add increases the quantity of an existing entry or appends a new one
func (c *Cart) Add(itemID uuid.UUID, qty int, now time.Time) {
	if e := c.Find(itemID); e != nil {
		e.Quantity += qty
	} else {
		c.Entries = append(c.Entries, CartEntry{ItemID: itemID, Quantity: qty, AddedAt: now})
	}
	c.UpdatedAt = now
}

// Set replaces the quantity of an entry. It reports false if the item is not in the cart.
func (c *Cart) Set(itemID uuid.UUID, qty int, now time.Time) bool {
	e := c.Find(itemID)
	if e == nil {
		return false
	}
	e.Quantity = qty
	c.UpdatedAt = now
	return true
}

// Remove drops the entry for an item. Removing an absent item is a no-op.
func (c *Cart) Remove(itemID uuid.UUID, now time.Time) bool {
	for i := range c.Entries {
		if c.Entries[i].ItemID == itemID {
			c.Entries = append(c.Entries[:i], c.Entries[i+1:]...)
			c.UpdatedAt = now
			return true
		}
	}
	return false
}

// ItemIDs returns the referenced item ids in cart order
func (c *Cart) ItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Entries))
	for _, e := range c.Entries {
		ids = append(ids, e.ItemID)
	}
	return ids
}
