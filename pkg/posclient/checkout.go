package posclient

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/pkg/pricing"
	"go.uber.org/zap"
)

// WalkInCustomer is recorded when no customer name is given
const WalkInCustomer = "Walk-in Customer"

// CheckoutRequest is what the cashier enters at checkout. AmountPaid is in cents.
type CheckoutRequest struct {
	PaymentMethod string
	AmountPaid    int64
	CustomerName  string
}

// SalePayload is the body of POST /sales
type SalePayload struct {
	CustomerName  string            `json:"customer_name"`
	PaymentMethod string            `json:"payment_method"`
	AmountPaid    float64           `json:"amount_paid"`
	Items         []SaleLinePayload `json:"items"`
}

// SaleLinePayload is one line of a sale submission
type SaleLinePayload struct {
	ItemID          uuid.UUID `json:"item_id"`
	Quantity        int       `json:"quantity"`
	DiscountPercent float64   `json:"discount_percent"`
}

// SaleRecord is a recorded sale. Amounts are in cents.
type SaleRecord struct {
	ID            uuid.UUID        `json:"id"`
	BillNo        string           `json:"bill_no"`
	CustomerName  string           `json:"customer_name"`
	PaymentMethod string           `json:"payment_method"`
	TotalItems    int              `json:"total_items"`
	Items         []SaleRecordItem `json:"items"`
	SubTotal      int64            `json:"-"`
	TotalDiscount int64            `json:"-"`
	GrandTotal    int64            `json:"-"`
	AmountPaid    int64            `json:"-"`
	Balance       int64            `json:"-"`
	SoldAt        time.Time        `json:"sold_at"`
}

// UnmarshalJSON reads the decimal amounts into cents
func (s *SaleRecord) UnmarshalJSON(data []byte) error {
	type Alias SaleRecord
	aux := &struct {
		*Alias
		SubTotal      float64 `json:"sub_total"`
		TotalDiscount float64 `json:"total_discount"`
		GrandTotal    float64 `json:"grand_total"`
		AmountPaid    float64 `json:"amount_paid"`
		Balance       float64 `json:"balance"`
	}{Alias: (*Alias)(s)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	s.SubTotal = pricing.ToCents(aux.SubTotal)
	s.TotalDiscount = pricing.ToCents(aux.TotalDiscount)
	s.GrandTotal = pricing.ToCents(aux.GrandTotal)
	s.AmountPaid = pricing.ToCents(aux.AmountPaid)
	s.Balance = pricing.ToCents(aux.Balance)
	return nil
}

// SaleRecordItem is one line of a recorded sale. Amounts are in cents.
type SaleRecordItem struct {
	ItemID          uuid.UUID `json:"item_id"`
	Name            string    `json:"name"`
	ItemCode        string    `json:"item_code"`
	Quantity        int       `json:"quantity"`
	UnitPrice       int64     `json:"-"`
	DiscountPercent float64   `json:"discount_percent"`
	LineTotal       int64     `json:"-"`
}

// UnmarshalJSON reads the decimal amounts into cents
func (i *SaleRecordItem) UnmarshalJSON(data []byte) error {
	type Alias SaleRecordItem
	aux := &struct {
		*Alias
		UnitPrice float64 `json:"unit_price"`
		LineTotal float64 `json:"line_total"`
	}{Alias: (*Alias)(i)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	i.UnitPrice = pricing.ToCents(aux.UnitPrice)
	i.LineTotal = pricing.ToCents(aux.LineTotal)
	return nil
}

// BuildSalePayload maps cart lines to a sale submission using each line's
// effective discount
func BuildSalePayload(lines []CartLine, req CheckoutRequest) *SalePayload {
	customer := strings.TrimSpace(req.CustomerName)
	if customer == "" {
		customer = WalkInCustomer
	}
	items := make([]SaleLinePayload, len(lines))
	for i, l := range lines {
		items[i] = SaleLinePayload{
			ItemID:          l.ItemID,
			Quantity:        l.Quantity,
			DiscountPercent: l.DiscountPercent,
		}
	}
	return &SalePayload{
		CustomerName:  customer,
		PaymentMethod: req.PaymentMethod,
		AmountPaid:    pricing.FromCents(req.AmountPaid),
		Items:         items,
	}
}

// Checkout records the cart as a sale. Nothing is sent for an empty cart or
// when the amount paid is short. A failed submission keeps the cart and the
// idempotency key. The server holds the key from the moment it starts on a
// sale: a resubmission gets the recorded sale back, or a conflict while the
// first attempt is still running, never a second sale.
// On success the server and local carts are cleared.
func (r *Register) Checkout(ctx context.Context, req CheckoutRequest) (*SaleRecord, error) {
	done, err := r.tracker.Begin(ResourceCheckout)
	if err != nil {
		return nil, err
	}
	sale, err := r.checkout(ctx, req)
	done(err)
	return sale, err
}

func (r *Register) checkout(ctx context.Context, req CheckoutRequest) (*SaleRecord, error) {
	lines := r.store.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	totals := Totals(lines)
	if req.AmountPaid < totals.GrandTotal {
		return nil, ErrInsufficientPayment
	}

	key := r.pendingCheckoutKey()
	sale, err := r.api.CreateSale(ctx, key, BuildSalePayload(lines, req))
	if err != nil {
		r.logger.Warn("checkout failed", zap.String("idempotency_key", key), zap.Error(err))
		return nil, err
	}

	r.mu.Lock()
	r.lastSale = sale
	r.checkoutKey = ""
	r.mu.Unlock()

	if err := r.api.ClearCart(ctx); err != nil {
		r.logger.Warn("sale recorded but remote cart not cleared", zap.String("bill_no", sale.BillNo), zap.Error(err))
	}
	r.store.Clear()

	r.logger.Info("sale recorded",
		zap.String("bill_no", sale.BillNo),
		zap.Int64("grand_total", sale.GrandTotal),
		zap.Int64("balance", sale.Balance),
	)
	return sale, nil
}

func (r *Register) pendingCheckoutKey() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.checkoutKey == "" {
		r.checkoutKey = uuid.NewString()
	}
	return r.checkoutKey
}
