package request

import "github.com/sangkips/retailpos-api/internal/domain/enum"

// SaleItemRequest is one line of a sale submission
type SaleItemRequest struct {
	ItemID          string  `json:"item_id" binding:"required,uuid"`
	Quantity        int     `json:"quantity"`
	DiscountPercent float64 `json:"discount_percent"`
}

// CreateSaleRequest represents a checkout submission
type CreateSaleRequest struct {
	CustomerName  string             `json:"customer_name" binding:"max=255"`
	PaymentMethod enum.PaymentMethod `json:"payment_method" binding:"required"`
	AmountPaid    float64            `json:"amount_paid"`
	Items         []SaleItemRequest  `json:"items" binding:"dive"`
}
