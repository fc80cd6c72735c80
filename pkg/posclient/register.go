package posclient

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/pkg/pricing"
	"github.com/sangkips/retailpos-api/pkg/stock"
	"go.uber.org/zap"
)

// API is the subset of the POS API the register drives. *Client implements it.
type API interface {
	GetCart(ctx context.Context) (*RemoteCart, error)
	AddCartItem(ctx context.Context, itemID uuid.UUID, quantity int, discount *float64) (*RemoteCart, error)
	UpdateCartItem(ctx context.Context, itemID uuid.UUID, quantity int) (*RemoteCart, error)
	RemoveCartItem(ctx context.Context, itemID uuid.UUID) (*RemoteCart, error)
	ClearCart(ctx context.Context) error
	SearchItems(ctx context.Context, query string) ([]Item, error)
	CreateSale(ctx context.Context, idempotencyKey string, payload *SalePayload) (*SaleRecord, error)
}

// Register is one till: the cart store kept in step with the server cart.
// Every mutation checks stock locally, sends one request, and on success
// replaces the local cart with the server's. A failed request leaves the
// local cart as it was. Register is safe for concurrent use.
type Register struct {
	api     API
	store   *Store
	tracker *Tracker
	logger  *zap.Logger

	mu          sync.Mutex
	checkoutKey string
	lastSale    *SaleRecord
}

// NewRegister creates a register over api and store
func NewRegister(api API, store *Store, logger *zap.Logger) *Register {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Register{
		api:     api,
		store:   store,
		tracker: NewTracker(),
		logger:  logger.Named("register"),
	}
}

// Load seeds the cart from the mirror, then from the server. The server cart
// wins once it arrives; if it cannot be fetched the mirrored lines remain.
func (r *Register) Load(ctx context.Context) error {
	if err := r.store.Hydrate(); err != nil {
		r.logger.Warn("ignoring unreadable cart mirror", zap.Error(err))
	}
	return r.mutate(ctx, ResourceCart, r.api.GetCart)
}

// Search looks up items to add. A blank query returns nothing without a request.
func (r *Register) Search(ctx context.Context, query string) ([]Item, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	return r.api.SearchItems(ctx, query)
}

// AddItem adds qty units of item. A non-nil discount becomes the line's
// local override once the add succeeds.
func (r *Register) AddItem(ctx context.Context, item Item, qty int, discount *float64) error {
	if discount != nil && !pricing.ValidDiscount(*discount) {
		return ErrInvalidDiscount
	}
	if err := stock.CheckAdd(item.Name, item.Quantity, r.store.QuantityOf(item.ID), qty); err != nil {
		return err
	}

	err := r.mutate(ctx, LineResource(item.ID), func(ctx context.Context) (*RemoteCart, error) {
		return r.api.AddCartItem(ctx, item.ID, qty, discount)
	})
	if err != nil {
		return err
	}
	if discount != nil {
		return r.store.SetOverride(item.ID, *discount)
	}
	return nil
}

// SetQuantity sets a line's quantity outright
func (r *Register) SetQuantity(ctx context.Context, itemID uuid.UUID, qty int) error {
	line, ok := r.store.Line(itemID)
	if !ok {
		return ErrNotInCart
	}
	if err := stock.CheckSet(line.Name, line.StockOnHand, qty); err != nil {
		return err
	}
	return r.updateQuantity(ctx, itemID, qty)
}

// Increment adds one unit to a line
func (r *Register) Increment(ctx context.Context, itemID uuid.UUID) error {
	line, ok := r.store.Line(itemID)
	if !ok {
		return ErrNotInCart
	}
	if err := stock.CheckAdd(line.Name, line.StockOnHand, line.Quantity, 1); err != nil {
		return err
	}
	return r.updateQuantity(ctx, itemID, line.Quantity+1)
}

// Decrement removes one unit from a line. At quantity 1 the line is removed.
func (r *Register) Decrement(ctx context.Context, itemID uuid.UUID) error {
	line, ok := r.store.Line(itemID)
	if !ok {
		return ErrNotInCart
	}
	if line.Quantity <= 1 {
		return r.Remove(ctx, itemID)
	}
	return r.updateQuantity(ctx, itemID, line.Quantity-1)
}

// Remove deletes a line. Removing an item that is not in the cart does nothing.
func (r *Register) Remove(ctx context.Context, itemID uuid.UUID) error {
	if _, ok := r.store.Line(itemID); !ok {
		return nil
	}
	return r.mutate(ctx, LineResource(itemID), func(ctx context.Context) (*RemoteCart, error) {
		return r.api.RemoveCartItem(ctx, itemID)
	})
}

// SetDiscount overrides a line's discount locally. The server is not told.
func (r *Register) SetDiscount(itemID uuid.UUID, pct float64) error {
	if err := r.store.SetOverride(itemID, pct); err != nil {
		return err
	}
	r.resetCheckout()
	return nil
}

// Clear empties the server cart and then the local one
func (r *Register) Clear(ctx context.Context) error {
	done, err := r.tracker.Begin(ResourceCart)
	if err != nil {
		return err
	}
	if err := r.api.ClearCart(ctx); err != nil {
		done(err)
		return err
	}
	r.store.Clear()
	r.resetCheckout()
	done(nil)
	return nil
}

// Lines returns the current cart lines
func (r *Register) Lines() []CartLine {
	return r.store.Lines()
}

// Totals prices the current cart
func (r *Register) Totals() pricing.Totals {
	return r.store.Totals()
}

// State reports whether the cart has lines
func (r *Register) State() CartState {
	return r.store.State()
}

// RequestState reports the request state of a resource
func (r *Register) RequestState(resource string) RequestState {
	return r.tracker.State(resource)
}

// LastSale returns the most recently recorded sale, for the receipt
func (r *Register) LastSale() *SaleRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastSale
}

func (r *Register) updateQuantity(ctx context.Context, itemID uuid.UUID, qty int) error {
	return r.mutate(ctx, LineResource(itemID), func(ctx context.Context) (*RemoteCart, error) {
		return r.api.UpdateCartItem(ctx, itemID, qty)
	})
}

func (r *Register) mutate(ctx context.Context, resource string, call func(context.Context) (*RemoteCart, error)) error {
	done, err := r.tracker.Begin(resource)
	if err != nil {
		return err
	}
	cart, err := call(ctx)
	if err != nil {
		done(err)
		return err
	}
	r.store.Replace(cart)
	r.resetCheckout()
	done(nil)
	return nil
}

// resetCheckout forgets the pending checkout key; the cart it covered has changed
func (r *Register) resetCheckout() {
	r.mu.Lock()
	r.checkoutKey = ""
	r.mu.Unlock()
}
