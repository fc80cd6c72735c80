package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/retailpos-api/internal/domain/repository"
	"gorm.io/gorm"
)

// errStockShortfall rolls back a batch decrement when any line lacks stock
var errStockShortfall = errors.New("stock shortfall")

var itemSortColumns = map[string]bool{
	"name":          true,
	"code":          true,
	"quantity":      true,
	"selling_price": true,
	"created_at":    true,
}

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *gorm.DB) domainRepo.ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *entity.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	var item entity.Item
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

// GetByIDs retrieves multiple items by their IDs in a single query
func (r *itemRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Item, error) {
	if len(ids) == 0 {
		return []entity.Item{}, nil
	}
	var items []entity.Item
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *itemRepository) GetByCode(ctx context.Context, code string) (*entity.Item, error) {
	var item entity.Item
	err := r.db.WithContext(ctx).First(&item, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

func (r *itemRepository) Update(ctx context.Context, item *entity.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *itemRepository) Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.Item{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *itemRepository) Search(ctx context.Context, query string, limit int) ([]entity.Item, error) {
	var items []entity.Item
	err := r.db.WithContext(ctx).
		Scopes(SearchScope(query, "name", "code")).
		Order("name ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *itemRepository) List(ctx context.Context, params *domainRepo.ItemFilterParams) ([]entity.Item, int64, error) {
	var items []entity.Item
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Item{}).
		Scopes(SearchScope(params.Search, "name", "code"))

	if params.LowStock {
		query = query.Where("quantity <= quantity_alert")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := "name"
	sortOrder := "ASC"
	if itemSortColumns[params.SortBy] {
		sortBy = params.SortBy
	}
	if params.SortOrder == "DESC" || params.SortOrder == "desc" {
		sortOrder = "DESC"
	}

	err := query.Scopes(PageScope(params.Pagination)).
		Order(sortBy + " " + sortOrder).
		Find(&items).Error

	return items, total, err
}

// AtomicDecrementBatch decrements stock for every item in one transaction using
// UPDATE items SET quantity = quantity - n WHERE id = ? AND quantity >= n.
// Items are updated in id order so concurrent checkouts lock rows consistently.
func (r *itemRepository) AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	if len(decrements) == 0 {
		return nil, nil
	}

	var failedIDs []uuid.UUID

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range sortedIDs(decrements) {
			amount := decrements[id]
			result := tx.Model(&entity.Item{}).
				Where("id = ? AND quantity >= ?", id, amount).
				Update("quantity", gorm.Expr("quantity - ?", amount))

			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				failedIDs = append(failedIDs, id)
			}
		}

		if len(failedIDs) > 0 {
			return errStockShortfall
		}
		return nil
	})

	if errors.Is(err, errStockShortfall) {
		return failedIDs, nil
	}
	return failedIDs, err
}

func (r *itemRepository) AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error {
	if len(increments) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range sortedIDs(increments) {
			if err := tx.Model(&entity.Item{}).
				Where("id = ?", id).
				Update("quantity", gorm.Expr("quantity + ?", increments[id])).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func sortedIDs(m map[uuid.UUID]int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
