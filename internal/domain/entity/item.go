package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/retailpos-api/pkg/pricing"
)

// Item represents a sellable catalog item and its stock on hand
type Item struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name          string         `gorm:"size:255;not null;index" json:"name"`
	Code          string         `gorm:"size:100;unique;not null" json:"code"`
	Quantity      int            `gorm:"default:0;check:quantity >= 0" json:"quantity"`
	QuantityAlert int            `gorm:"default:0" json:"quantity_alert"`
	SellingPrice  int64          `gorm:"default:0" json:"-"` // Stored in cents
	Discount      float64        `gorm:"default:0" json:"discount"`
	Notes         *string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new item
func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Item model
func (Item) TableName() string {
	return "items"
}

// IsLowStock reports whether stock has fallen to the alert threshold
func (i *Item) IsLowStock() bool {
	return i.Quantity <= i.QuantityAlert
}

// MarshalJSON converts Item to JSON with a decimal selling price
func (i Item) MarshalJSON() ([]byte, error) {
	type Alias Item
	return json.Marshal(&struct {
		Alias
		SellingPrice float64 `json:"selling_price"`
		LowStock     bool    `json:"low_stock"`
	}{
		Alias:        Alias(i),
		SellingPrice: pricing.FromCents(i.SellingPrice),
		LowStock:     i.IsLowStock(),
	})
}
