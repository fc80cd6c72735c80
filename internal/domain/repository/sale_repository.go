package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/internal/domain/entity"
	"github.com/sangkips/retailpos-api/pkg/pagination"
)

// SaleRepository defines the interface for sale data operations.
// Sales are immutable, so there is no update or delete.
type SaleRepository interface {
	// Create stores the sale together with its items
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Sale, error)
	GetByBillNo(ctx context.Context, billNo string) (*entity.Sale, error)
	List(ctx context.Context, params *SaleFilterParams) ([]entity.Sale, int64, error)
}

// SaleFilterParams contains filtering parameters for sale queries
type SaleFilterParams struct {
	Pagination *pagination.Params
	UserID     *uuid.UUID
	Search     string
	StartDate  *time.Time
	EndDate    *time.Time
}
