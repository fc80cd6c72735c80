package posclient

import (
	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/pkg/pricing"
)

// CartLine is one product in the till's cart with its effective discount
type CartLine struct {
	ItemID          uuid.UUID `json:"item_id"`
	Name            string    `json:"name"`
	ItemCode        string    `json:"item_code"`
	UnitPrice       int64     `json:"unit_price"` // cents
	DiscountPercent float64   `json:"discount_percent"`
	Quantity        int       `json:"quantity"`
	StockOnHand     int       `json:"stock_on_hand"`
}

// PricingLine returns the pricing view of the line
func (l CartLine) PricingLine() pricing.Line {
	return pricing.Line{
		Quantity:        l.Quantity,
		UnitPrice:       l.UnitPrice,
		DiscountPercent: l.DiscountPercent,
	}
}

// Total is quantity x unit price less the line discount, in cents
func (l CartLine) Total() int64 {
	return pricing.LineTotal(l.PricingLine())
}

// HydrateLines maps the server cart to cart lines. The server reports the
// catalog discount; an entry in overrides replaces it for that item.
func HydrateLines(remote *RemoteCart, overrides map[uuid.UUID]float64) []CartLine {
	if remote == nil || len(remote.Items) == 0 {
		return nil
	}
	lines := make([]CartLine, 0, len(remote.Items))
	for _, r := range remote.Items {
		discount := r.Discount
		if pct, ok := overrides[r.ItemID]; ok {
			discount = pct
		}
		lines = append(lines, CartLine{
			ItemID:          r.ItemID,
			Name:            r.Name,
			ItemCode:        r.ItemCode,
			UnitPrice:       pricing.ToCents(r.UnitPrice),
			DiscountPercent: discount,
			Quantity:        r.Quantity,
			StockOnHand:     r.Stock,
		})
	}
	return lines
}

// Totals prices a set of cart lines
func Totals(lines []CartLine) pricing.Totals {
	pl := make([]pricing.Line, len(lines))
	for i, l := range lines {
		pl[i] = l.PricingLine()
	}
	return pricing.Compute(pl)
}
