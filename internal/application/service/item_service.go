package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/internal/domain/entity"
	"github.com/sangkips/retailpos-api/internal/domain/repository"
	"github.com/sangkips/retailpos-api/pkg/apperror"
	"github.com/sangkips/retailpos-api/pkg/pagination"
	"github.com/sangkips/retailpos-api/pkg/pricing"
	"github.com/sangkips/retailpos-api/pkg/utils"
	"go.uber.org/zap"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

// ItemService handles catalog lookups and stock adjustments
type ItemService struct {
	itemRepo repository.ItemRepository
	logger   *zap.Logger
}

// NewItemService creates a new item service
func NewItemService(itemRepo repository.ItemRepository, logger *zap.Logger) *ItemService {
	return &ItemService{
		itemRepo: itemRepo,
		logger:   logger.Named("items"),
	}
}

// CreateItemInput represents the create item input
type CreateItemInput struct {
	Name          string
	Code          string
	Quantity      int
	QuantityAlert int
	SellingPrice  float64
	Discount      float64
	Notes         *string
}

// AdjustStockInput changes stock and/or the catalog discount of an item.
// QuantityDelta and Quantity are mutually exclusive.
type AdjustStockInput struct {
	QuantityDelta *int
	Quantity      *int
	Discount      *float64
}

// Search looks items up by name or code for the add-to-cart search box
func (s *ItemService) Search(ctx context.Context, query string, limit int) ([]entity.Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entity.Item{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	items, err := s.itemRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []entity.Item{}
	}
	return items, nil
}

// ListItems lists the catalog with filtering
func (s *ItemService) ListItems(ctx context.Context, params *repository.ItemFilterParams) (*pagination.Result[entity.Item], error) {
	if params.Pagination == nil {
		params.Pagination = &pagination.Params{}
	}
	params.Pagination.Validate()

	items, total, err := s.itemRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewResult(items, params.Pagination, total), nil
}

// GetByCode retrieves an item by its code
func (s *ItemService) GetByCode(ctx context.Context, code string) (*entity.Item, error) {
	item, err := s.itemRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Item")
	}
	return item, nil
}

// GetByID retrieves an item by its id
func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Item")
	}
	return item, nil
}

// CreateItem adds an item to the catalog
func (s *ItemService) CreateItem(ctx context.Context, input *CreateItemInput) (*entity.Item, error) {
	var fieldErrors []apperror.FieldError
	if strings.TrimSpace(input.Name) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "Name is required"})
	}
	if input.Quantity < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "quantity", Message: "Quantity cannot be negative"})
	}
	if input.SellingPrice < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "selling_price", Message: "Selling price cannot be negative"})
	}
	if !pricing.ValidDiscount(input.Discount) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "discount", Message: "Discount must be between 0 and 100"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	code := strings.TrimSpace(input.Code)
	if code == "" {
		code = utils.GenerateItemCode()
	}

	existing, err := s.itemRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Item code already exists")
	}

	item := &entity.Item{
		Name:          strings.TrimSpace(input.Name),
		Code:          code,
		Quantity:      input.Quantity,
		QuantityAlert: input.QuantityAlert,
		SellingPrice:  pricing.ToCents(input.SellingPrice),
		Discount:      input.Discount,
		Notes:         input.Notes,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("item created", zap.String("code", item.Code), zap.Int("quantity", item.Quantity))
	return item, nil
}

// AdjustStock applies a stock delta, an absolute stock level, or a new catalog
// discount to the item with the given code. Stock never goes below zero.
func (s *ItemService) AdjustStock(ctx context.Context, code string, input *AdjustStockInput) (*entity.Item, error) {
	if input.QuantityDelta == nil && input.Quantity == nil && input.Discount == nil {
		return nil, apperror.NewBadRequestError("Nothing to update")
	}
	if input.QuantityDelta != nil && input.Quantity != nil {
		return nil, apperror.NewBadRequestError("Provide either quantity or quantity_delta, not both")
	}
	if input.Quantity != nil && *input.Quantity < 0 {
		return nil, apperror.NewBadRequestError("Quantity cannot be negative")
	}
	if input.Discount != nil && !pricing.ValidDiscount(*input.Discount) {
		return nil, apperror.ErrInvalidDiscount
	}

	item, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if d := input.QuantityDelta; d != nil {
		switch {
		case *d < 0:
			failed, err := s.itemRepo.AtomicDecrementBatch(ctx, map[uuid.UUID]int{item.ID: -*d})
			if err != nil {
				return nil, err
			}
			if len(failed) > 0 {
				return nil, apperror.NewInsufficientStockError(item.Name)
			}
		case *d > 0:
			if err := s.itemRepo.AtomicIncrementBatch(ctx, map[uuid.UUID]int{item.ID: *d}); err != nil {
				return nil, err
			}
		}
	}

	fields := map[string]interface{}{}
	if input.Quantity != nil {
		fields["quantity"] = *input.Quantity
	}
	if input.Discount != nil {
		fields["discount"] = *input.Discount
	}
	if err := s.itemRepo.Updates(ctx, item.ID, fields); err != nil {
		return nil, fmt.Errorf("update item %s: %w", item.Code, err)
	}

	s.logger.Info("item stock adjusted", zap.String("code", item.Code))
	return s.GetByID(ctx, item.ID)
}
