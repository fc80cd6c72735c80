// Package pricing derives cart and sale totals.
//
// All amounts are int64 minor units (cents). Percentage discounts are applied
// per line with decimal arithmetic and rounded to the nearest cent, so the
// aggregates are exact sums of the per-line values.
package pricing

import (
	"github.com/shopspring/decimal"
)

// Line is the pricing view of a single cart or sale line.
type Line struct {
	Quantity        int
	UnitPrice       int64   // cents
	DiscountPercent float64 // 0-100
}

// Totals holds the derived amounts for a set of lines.
type Totals struct {
	Subtotal      int64 `json:"subtotal"`
	TotalDiscount int64 `json:"total_discount"`
	GrandTotal    int64 `json:"grand_total"`
}

var hundred = decimal.NewFromInt(100)

// Gross returns quantity x unit price.
func Gross(l Line) int64 {
	return int64(l.Quantity) * l.UnitPrice
}

// LineDiscount returns the discount amount for a line, rounded to the cent.
func LineDiscount(l Line) int64 {
	if l.DiscountPercent <= 0 {
		return 0
	}
	return decimal.NewFromInt(Gross(l)).
		Mul(decimal.NewFromFloat(l.DiscountPercent)).
		Div(hundred).
		Round(0).
		IntPart()
}

// LineTotal returns quantity x unit price x (1 - discount/100).
func LineTotal(l Line) int64 {
	return Gross(l) - LineDiscount(l)
}

// Compute sums the lines. An empty slice yields zero totals.
func Compute(lines []Line) Totals {
	var t Totals
	for _, l := range lines {
		t.Subtotal += Gross(l)
		t.TotalDiscount += LineDiscount(l)
	}
	t.GrandTotal = t.Subtotal - t.TotalDiscount
	return t
}

// Balance returns amountPaid - grandTotal. Positive is change owed to the
// customer, negative is a shortfall.
func Balance(amountPaid, grandTotal int64) int64 {
	return amountPaid - grandTotal
}

// ToCents converts a decimal money value (as sent over the wire) to cents.
func ToCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(hundred).Round(0).IntPart()
}

// FromCents converts cents to a decimal money value for presentation.
func FromCents(cents int64) float64 {
	f, _ := decimal.NewFromInt(cents).Div(hundred).Float64()
	return f
}

// ValidDiscount reports whether pct is within 0-100.
func ValidDiscount(pct float64) bool {
	return pct >= 0 && pct <= 100
}
