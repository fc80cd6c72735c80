package request

// CreateItemRequest represents a create item request
type CreateItemRequest struct {
	Name          string  `json:"name" binding:"required,max=255"`
	Code          string  `json:"code" binding:"max=100"`
	Quantity      int     `json:"quantity" binding:"min=0"`
	QuantityAlert int     `json:"quantity_alert" binding:"min=0"`
	SellingPrice  float64 `json:"selling_price" binding:"min=0"`
	Discount      float64 `json:"discount" binding:"min=0,max=100"`
	Notes         *string `json:"notes"`
}

// AdjustStockRequest changes stock and/or the catalog discount of an item
type AdjustStockRequest struct {
	QuantityDelta *int     `json:"quantity_delta"`
	Quantity      *int     `json:"quantity"`
	Discount      *float64 `json:"discount"`
}
