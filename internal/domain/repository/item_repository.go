package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/internal/domain/entity"
	"github.com/sangkips/retailpos-api/pkg/pagination"
)

// ItemRepository defines the interface for catalog item data operations
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Item, error)
	// GetByIDs retrieves multiple items by their IDs in a single query (prevents N+1)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Item, error)
	GetByCode(ctx context.Context, code string) (*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	// Updates writes only the given columns, leaving concurrent stock changes intact
	Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	// Search matches name or code case-insensitively
	Search(ctx context.Context, query string, limit int) ([]entity.Item, error)
	List(ctx context.Context, params *ItemFilterParams) ([]entity.Item, int64, error)
	// AtomicDecrementBatch atomically decrements stock for multiple items.
	// Returns the IDs that lacked stock; if any fail, nothing is decremented.
	AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) (failedIDs []uuid.UUID, err error)
	// AtomicIncrementBatch returns stock, used when a sale cannot be persisted.
	AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error
}

// ItemFilterParams contains filtering parameters for item queries
type ItemFilterParams struct {
	Pagination *pagination.Params
	Search     string
	LowStock   bool
	SortBy     string
	SortOrder  string
}
