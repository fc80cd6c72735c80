package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/internal/domain/entity"
	"github.com/sangkips/retailpos-api/internal/domain/enum"
	"github.com/sangkips/retailpos-api/internal/domain/repository"
	"github.com/sangkips/retailpos-api/internal/infrastructure/metrics"
	"github.com/sangkips/retailpos-api/pkg/apperror"
	"github.com/sangkips/retailpos-api/pkg/pagination"
	"github.com/sangkips/retailpos-api/pkg/pricing"
	"github.com/sangkips/retailpos-api/pkg/utils"
	"go.uber.org/zap"
)

// SaleService records sales and serves sale history and receipts
type SaleService struct {
	saleRepo  repository.SaleRepository
	itemRepo  repository.ItemRepository
	cartRepo  repository.CartRepository
	userRepo  repository.UserRepository
	metrics   *metrics.Metrics
	logger    *zap.Logger
	storeName string
	now       func() time.Time
}

// NewSaleService creates a new sale service
func NewSaleService(
	saleRepo repository.SaleRepository,
	itemRepo repository.ItemRepository,
	cartRepo repository.CartRepository,
	userRepo repository.UserRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
	storeName string,
) *SaleService {
	return &SaleService{
		saleRepo:  saleRepo,
		itemRepo:  itemRepo,
		cartRepo:  cartRepo,
		userRepo:  userRepo,
		metrics:   m,
		logger:    logger.Named("sales"),
		storeName: storeName,
		now:       time.Now,
	}
}

// SaleItemInput represents a line of a sale submission
type SaleItemInput struct {
	ItemID          uuid.UUID
	Quantity        int
	DiscountPercent float64
}

// CheckoutInput represents a sale submission
type CheckoutInput struct {
	UserID        uuid.UUID
	CustomerName  string
	PaymentMethod enum.PaymentMethod
	AmountPaid    float64
	Items         []SaleItemInput
}

// Checkout validates and records a sale. Prices come from the catalog; the
// submitted discount applies per line. Stock for every line is decremented in
// one transaction, so either the whole sale is recorded or nothing changes.
func (s *SaleService) Checkout(ctx context.Context, input *CheckoutInput) (sale *entity.Sale, err error) {
	defer func() {
		s.metrics.CheckoutsTotal.WithLabelValues(metrics.Result(err)).Inc()
		if err != nil && apperror.GetAppError(err).Kind == apperror.KindInsufficientStock {
			s.metrics.StockShortfallTotal.Inc()
		}
	}()

	if err := validateCheckout(input); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(input.Items))
	for i, line := range input.Items {
		ids[i] = line.ItemID
	}
	items, err := s.itemRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	itemMap := make(map[uuid.UUID]*entity.Item, len(items))
	for i := range items {
		itemMap[items[i].ID] = &items[i]
	}

	saleItems := make([]entity.SaleItem, 0, len(input.Items))
	lines := make([]pricing.Line, 0, len(input.Items))
	decrements := make(map[uuid.UUID]int, len(input.Items))
	var shortfall []string
	var totalItems int

	for _, in := range input.Items {
		item, ok := itemMap[in.ItemID]
		if !ok {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Item %s", in.ItemID))
		}
		if in.Quantity > item.Quantity {
			shortfall = append(shortfall, item.Name)
		}

		line := pricing.Line{Quantity: in.Quantity, UnitPrice: item.SellingPrice, DiscountPercent: in.DiscountPercent}
		lines = append(lines, line)
		saleItems = append(saleItems, entity.SaleItem{
			ItemID:          item.ID,
			Name:            item.Name,
			ItemCode:        item.Code,
			Quantity:        in.Quantity,
			UnitPrice:       item.SellingPrice,
			DiscountPercent: in.DiscountPercent,
			LineTotal:       pricing.LineTotal(line),
		})
		decrements[item.ID] = in.Quantity
		totalItems += in.Quantity
	}
	if len(shortfall) > 0 {
		return nil, apperror.NewInsufficientStockError(shortfall...)
	}

	totals := pricing.Compute(lines)
	paid := pricing.ToCents(input.AmountPaid)
	if paid < totals.GrandTotal {
		return nil, apperror.NewInsufficientPaymentError(fmt.Sprintf(
			"Amount paid %.2f is less than the grand total %.2f",
			pricing.FromCents(paid), pricing.FromCents(totals.GrandTotal),
		))
	}

	// Stock may have moved since the read above; the conditional decrement is authoritative.
	failedIDs, err := s.itemRepo.AtomicDecrementBatch(ctx, decrements)
	if err != nil {
		return nil, err
	}
	if len(failedIDs) > 0 {
		names := make([]string, 0, len(failedIDs))
		for _, id := range failedIDs {
			names = append(names, itemMap[id].Name)
		}
		return nil, apperror.NewInsufficientStockError(names...)
	}

	customer := strings.TrimSpace(input.CustomerName)
	if customer == "" {
		customer = entity.WalkInCustomer
	}

	sale = &entity.Sale{
		BillNo:        utils.GenerateBillNo(),
		UserID:        input.UserID,
		CustomerName:  customer,
		PaymentMethod: input.PaymentMethod,
		TotalItems:    totalItems,
		SubTotal:      totals.Subtotal,
		TotalDiscount: totals.TotalDiscount,
		GrandTotal:    totals.GrandTotal,
		AmountPaid:    paid,
		Balance:       pricing.Balance(paid, totals.GrandTotal),
		SoldAt:        s.now(),
		Items:         saleItems,
	}

	if err := s.saleRepo.Create(ctx, sale); err != nil {
		if rerr := s.itemRepo.AtomicIncrementBatch(ctx, decrements); rerr != nil {
			s.logger.Error("failed to restore stock after sale failure",
				zap.Error(rerr),
				zap.Any("decrements", decrements),
			)
		}
		return nil, err
	}

	if err := s.cartRepo.Delete(ctx, input.UserID); err != nil {
		s.logger.Warn("failed to clear cart after sale", zap.Stringer("user_id", input.UserID), zap.Error(err))
	}

	s.metrics.SaleGrandTotal.Observe(pricing.FromCents(sale.GrandTotal))
	s.logger.Info("sale recorded",
		zap.String("bill_no", sale.BillNo),
		zap.Stringer("user_id", sale.UserID),
		zap.Int64("grand_total_cents", sale.GrandTotal),
		zap.Int("lines", len(sale.Items)),
	)
	return sale, nil
}

func validateCheckout(input *CheckoutInput) error {
	if len(input.Items) == 0 {
		return apperror.ErrEmptyCart
	}
	if !input.PaymentMethod.IsValid() {
		return apperror.NewBadRequestError("Unknown payment method")
	}
	if input.AmountPaid < 0 {
		return apperror.NewBadRequestError("Amount paid cannot be negative")
	}

	seen := make(map[uuid.UUID]bool, len(input.Items))
	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return apperror.NewAppError(http.StatusBadRequest, apperror.KindInvalidQuantity, "Quantity must be a positive number")
		}
		if !pricing.ValidDiscount(line.DiscountPercent) {
			return apperror.ErrInvalidDiscount
		}
		if seen[line.ItemID] {
			return apperror.NewBadRequestError(fmt.Sprintf("Item %s appears more than once", line.ItemID))
		}
		seen[line.ItemID] = true
	}
	return nil
}

// GetSale retrieves a sale. Cashiers may only read their own sales.
func (s *SaleService) GetSale(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	if !isAdmin && sale.UserID != userID {
		return nil, apperror.ErrForbidden
	}
	return sale, nil
}

// ListSales lists sales with filtering. Cashiers only see their own sales.
func (s *SaleService) ListSales(ctx context.Context, userID uuid.UUID, isAdmin bool, params *repository.SaleFilterParams) (*pagination.Result[entity.Sale], error) {
	if params.Pagination == nil {
		params.Pagination = &pagination.Params{}
	}
	params.Pagination.Validate()
	if !isAdmin {
		params.UserID = &userID
	}

	sales, total, err := s.saleRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewResult(sales, params.Pagination, total), nil
}

// GetReceipt composes the receipt for a sale
func (s *SaleService) GetReceipt(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*entity.Receipt, error) {
	sale, err := s.GetSale(ctx, id, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	var cashier string
	user, err := s.userRepo.GetByID(ctx, sale.UserID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		cashier = user.Name
	}

	return entity.NewReceipt(s.storeName, cashier, sale), nil
}
