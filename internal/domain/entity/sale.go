package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/internal/domain/enum"
	"github.com/sangkips/retailpos-api/pkg/pricing"
	"gorm.io/gorm"
)

// WalkInCustomer is recorded when a sale has no customer name
const WalkInCustomer = "Walk-in Customer"

// Sale represents a completed, immutable point-of-sale transaction
type Sale struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	BillNo        string             `gorm:"size:100;unique;not null" json:"bill_no"`
	UserID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	CustomerName  string             `gorm:"size:255;not null" json:"customer_name"`
	PaymentMethod enum.PaymentMethod `gorm:"size:20;not null" json:"payment_method"`
	TotalItems    int                `gorm:"default:0" json:"total_items"`
	SubTotal      int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	TotalDiscount int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	GrandTotal    int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	AmountPaid    int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Balance       int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	SoldAt        time.Time          `gorm:"not null;index" json:"sold_at"`
	CreatedAt     time.Time          `json:"created_at"`

	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (s Sale) MarshalJSON() ([]byte, error) {
	type Alias Sale
	return json.Marshal(&struct {
		Alias
		SubTotal      float64 `json:"sub_total"`
		TotalDiscount float64 `json:"total_discount"`
		GrandTotal    float64 `json:"grand_total"`
		AmountPaid    float64 `json:"amount_paid"`
		Balance       float64 `json:"balance"`
	}{
		Alias:         Alias(s),
		SubTotal:      pricing.FromCents(s.SubTotal),
		TotalDiscount: pricing.FromCents(s.TotalDiscount),
		GrandTotal:    pricing.FromCents(s.GrandTotal),
		AmountPaid:    pricing.FromCents(s.AmountPaid),
		Balance:       pricing.FromCents(s.Balance),
	})
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// SaleItem is a priced line of a sale, snapshotted at checkout time
type SaleItem struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SaleID          uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	ItemID          uuid.UUID `gorm:"type:uuid;not null;index" json:"item_id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	ItemCode        string    `gorm:"size:100;not null" json:"item_code"`
	Quantity        int       `gorm:"not null" json:"quantity"`
	UnitPrice       int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	DiscountPercent float64   `gorm:"default:0" json:"discount_percent"`
	LineTotal       int64     `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (si SaleItem) MarshalJSON() ([]byte, error) {
	type Alias SaleItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		LineTotal float64 `json:"line_total"`
	}{
		Alias:     Alias(si),
		UnitPrice: pricing.FromCents(si.UnitPrice),
		LineTotal: pricing.FromCents(si.LineTotal),
	})
}

// BeforeCreate generates a UUID before creating a new sale item
func (si *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if si.ID == uuid.Nil {
		si.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}

// PricingLine returns the pricing view of the sale line
func (si *SaleItem) PricingLine() pricing.Line {
	return pricing.Line{Quantity: si.Quantity, UnitPrice: si.UnitPrice, DiscountPercent: si.DiscountPercent}
}
