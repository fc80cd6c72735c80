package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/internal/domain/entity"
	"github.com/sangkips/retailpos-api/internal/domain/repository"
	"github.com/sangkips/retailpos-api/internal/infrastructure/metrics"
	"github.com/sangkips/retailpos-api/pkg/apperror"
	"github.com/sangkips/retailpos-api/pkg/pricing"
	"github.com/sangkips/retailpos-api/pkg/stock"
	"go.uber.org/zap"
)

// CartService manages each user's server-side cart
type CartService struct {
	cartRepo repository.CartRepository
	itemRepo repository.ItemRepository
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewCartService creates a new cart service
func NewCartService(
	cartRepo repository.CartRepository,
	itemRepo repository.ItemRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) *CartService {
	return &CartService{
		cartRepo: cartRepo,
		itemRepo: itemRepo,
		metrics:  m,
		logger:   logger.Named("cart"),
		now:      time.Now,
	}
}

// CartLineView is a cart entry joined with its catalog item
type CartLineView struct {
	ItemID      uuid.UUID `json:"item_id"`
	Name        string    `json:"name"`
	ItemCode    string    `json:"item_code"`
	UnitPrice   float64   `json:"unit_price"`
	Discount    float64   `json:"discount"`
	Quantity    int       `json:"quantity"`
	StockOnHand int       `json:"stock"`
	LineTotal   float64   `json:"line_total"`
}

// CartTotalsView holds cart totals in currency units
type CartTotalsView struct {
	Subtotal      float64 `json:"subtotal"`
	TotalDiscount float64 `json:"total_discount"`
	GrandTotal    float64 `json:"grand_total"`
}

// CartView is the cart as returned by every cart endpoint
type CartView struct {
	Items     []CartLineView `json:"items"`
	Totals    CartTotalsView `json:"totals"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// AddCartItemInput represents an add-to-cart request
type AddCartItemInput struct {
	ItemID   uuid.UUID
	Quantity int
	// Discount is validated but not stored; the cart carries catalog discounts only.
	Discount *float64
}

// GetCart returns the user's cart
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// AddItem adds quantity units of an item, merging with an existing entry
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, input *AddCartItemInput) (view *CartView, err error) {
	defer s.observe("add", &err)

	if input.Discount != nil && !pricing.ValidDiscount(*input.Discount) {
		return nil, apperror.ErrInvalidDiscount
	}

	item, err := s.itemRepo.GetByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Item")
	}

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := stock.CheckAdd(item.Name, item.Quantity, cart.QuantityOf(item.ID), input.Quantity); err != nil {
		return nil, apperror.FromStockError(err)
	}

	cart.Add(item.ID, input.Quantity, s.now())
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.Debug("item added to cart",
		zap.Stringer("user_id", userID),
		zap.String("item", item.Code),
		zap.Int("quantity", input.Quantity),
	)
	return s.view(ctx, cart)
}

// UpdateQuantity sets the quantity of an item already in the cart
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (view *CartView, err error) {
	defer s.observe("update", &err)

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.Find(itemID) == nil {
		return nil, apperror.NewNotFoundError("Cart item")
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Item")
	}

	if err := stock.CheckSet(item.Name, item.Quantity, quantity); err != nil {
		return nil, apperror.FromStockError(err)
	}

	cart.Set(itemID, quantity, s.now())
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

// RemoveItem drops an item from the cart. Removing an absent item returns the
// cart unchanged.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (view *CartView, err error) {
	defer s.observe("remove", &err)

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if cart.Remove(itemID, s.now()) {
		if err := s.cartRepo.Save(ctx, cart); err != nil {
			return nil, err
		}
	}
	return s.view(ctx, cart)
}

// ClearCart empties the user's cart
func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) (view *CartView, err error) {
	defer s.observe("clear", &err)

	if err := s.cartRepo.Delete(ctx, userID); err != nil {
		return nil, err
	}
	return s.view(ctx, entity.NewCart(userID))
}

// PurgeStale deletes carts not touched within ttl
func (s *CartService) PurgeStale(ctx context.Context, ttl time.Duration) (int64, error) {
	return s.cartRepo.DeleteStale(ctx, s.now().Add(-ttl))
}

// view joins cart entries with the catalog. Entries whose item has been
// removed from the catalog are skipped.
func (s *CartService) view(ctx context.Context, cart *entity.Cart) (*CartView, error) {
	items, err := s.itemRepo.GetByIDs(ctx, cart.ItemIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entity.Item, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}

	v := &CartView{Items: make([]CartLineView, 0, len(cart.Entries)), UpdatedAt: cart.UpdatedAt}
	lines := make([]pricing.Line, 0, len(cart.Entries))
	for _, e := range cart.Entries {
		item, ok := byID[e.ItemID]
		if !ok {
			s.logger.Warn("cart references unknown item", zap.Stringer("item_id", e.ItemID))
			continue
		}
		line := pricing.Line{Quantity: e.Quantity, UnitPrice: item.SellingPrice, DiscountPercent: item.Discount}
		lines = append(lines, line)
		v.Items = append(v.Items, CartLineView{
			ItemID:      item.ID,
			Name:        item.Name,
			ItemCode:    item.Code,
			UnitPrice:   pricing.FromCents(item.SellingPrice),
			Discount:    item.Discount,
			Quantity:    e.Quantity,
			StockOnHand: item.Quantity,
			LineTotal:   pricing.FromCents(pricing.LineTotal(line)),
		})
	}

	totals := pricing.Compute(lines)
	v.Totals = CartTotalsView{
		Subtotal:      pricing.FromCents(totals.Subtotal),
		TotalDiscount: pricing.FromCents(totals.TotalDiscount),
		GrandTotal:    pricing.FromCents(totals.GrandTotal),
	}
	return v, nil
}

func (s *CartService) observe(op string, errp *error) {
	s.metrics.CartMutationsTotal.WithLabelValues(op, metrics.Result(*errp)).Inc()
	if *errp != nil && apperror.GetAppError(*errp).Kind == apperror.KindInsufficientStock {
		s.metrics.StockShortfallTotal.Inc()
	}
}
