package entity

import (
	"time"

	"github.com/sangkips/retailpos-api/pkg/pricing"
)

// ReceiptHeader holds the store header shown at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Name            string  `json:"name"`
	ItemCode        string  `json:"item_code"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	DiscountPercent float64 `json:"discount_percent"`
	Total           float64 `json:"total"`
}

// Receipt is a value object composed from a sale for presentation.
// It is not persisted.
type Receipt struct {
	Header        ReceiptHeader `json:"header"`
	BillNo        string        `json:"bill_no"`
	Date          string        `json:"date"`
	Cashier       string        `json:"cashier,omitempty"`
	Customer      string        `json:"customer"`
	PaymentMethod string        `json:"payment_method"`
	Items         []ReceiptItem `json:"items"`
	SubTotal      float64       `json:"sub_total"`
	TotalDiscount float64       `json:"total_discount"`
	GrandTotal    float64       `json:"grand_total"`
	AmountPaid    float64       `json:"amount_paid"`
	Balance       float64       `json:"balance"`
}

// NewReceipt builds the receipt for a sale
func NewReceipt(storeName, cashier string, s *Sale) *Receipt {
	r := &Receipt{
		Header:        ReceiptHeader{StoreName: storeName},
		BillNo:        s.BillNo,
		Date:          s.SoldAt.Format(time.RFC3339),
		Cashier:       cashier,
		Customer:      s.CustomerName,
		PaymentMethod: s.PaymentMethod.String(),
		Items:         make([]ReceiptItem, 0, len(s.Items)),
		SubTotal:      pricing.FromCents(s.SubTotal),
		TotalDiscount: pricing.FromCents(s.TotalDiscount),
		GrandTotal:    pricing.FromCents(s.GrandTotal),
		AmountPaid:    pricing.FromCents(s.AmountPaid),
		Balance:       pricing.FromCents(s.Balance),
	}
	for _, it := range s.Items {
		r.Items = append(r.Items, ReceiptItem{
			Name:            it.Name,
			ItemCode:        it.ItemCode,
			Quantity:        it.Quantity,
			UnitPrice:       pricing.FromCents(it.UnitPrice),
			DiscountPercent: it.DiscountPercent,
			Total:           pricing.FromCents(it.LineTotal),
		})
	}
	return r
}
