package request

// AddCartItemRequest represents an add-to-cart request
type AddCartItemRequest struct {
	ItemID   string   `json:"item_id" binding:"required,uuid"`
	Quantity int      `json:"quantity"`
	Discount *float64 `json:"discount"`
}

// UpdateCartItemRequest represents a quantity change for a cart line
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}
