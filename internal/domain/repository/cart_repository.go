package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/internal/domain/entity"
)

// CartRepository stores one cart document per user
type CartRepository interface {
	// Get returns the user's cart, or an empty cart when none is stored
	Get(ctx context.Context, userID uuid.UUID) (*entity.Cart, error)
	// Save replaces the stored cart (last write wins)
	Save(ctx context.Context, cart *entity.Cart) error
	Delete(ctx context.Context, userID uuid.UUID) error
	// DeleteStale removes carts untouched since before the cutoff
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}
