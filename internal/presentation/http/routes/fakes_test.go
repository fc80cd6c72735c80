package routes

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/internal/domain/entity"
	"github.com/sangkips/retailpos-api/internal/domain/repository"
)

// memStore backs every repository interface with maps guarded by one mutex.
type memStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]*entity.Item
	carts map[uuid.UUID]*entity.Cart
	sales []*entity.Sale
	users map[string]*entity.User
	ikeys map[string]*entity.IdempotencyKey

	// saleDelay stalls sale writes, leaving a checkout in flight
	saleDelay time.Duration
}

func newMemStore() *memStore {
	return &memStore{
		items: map[uuid.UUID]*entity.Item{},
		carts: map[uuid.UUID]*entity.Cart{},
		users: map[string]*entity.User{},
		ikeys: map[string]*entity.IdempotencyKey{},
	}
}

type memItems struct{ *memStore }

func (s memItems) Create(_ context.Context, item *entity.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	cp := *item
	s.items[item.ID] = &cp
	return nil
}

func (s memItems) GetByID(_ context.Context, id uuid.UUID) (*entity.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it, ok := s.items[id]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}

func (s memItems) GetByIDs(_ context.Context, ids []uuid.UUID) ([]entity.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []entity.Item{}
	for _, id := range ids {
		if it, ok := s.items[id]; ok {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (s memItems) GetByCode(_ context.Context, code string) (*entity.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.Code == code {
			cp := *it
			return &cp, nil
		}
	}
	return nil, nil
}

func (s memItems) Update(ctx context.Context, item *entity.Item) error {
	return s.Create(ctx, item)
}

func (s memItems) Updates(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.items[id]
	if q, ok := fields["quantity"].(int); ok {
		it.Quantity = q
	}
	if d, ok := fields["discount"].(float64); ok {
		it.Discount = d
	}
	return nil
}

func (s memItems) Search(_ context.Context, q string, limit int) ([]entity.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []entity.Item{}
	for _, it := range s.items {
		if strings.Contains(strings.ToLower(it.Name+" "+it.Code), strings.ToLower(q)) && len(out) < limit {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (s memItems) List(_ context.Context, _ *repository.ItemFilterParams) ([]entity.Item, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []entity.Item{}
	for _, it := range s.items {
		out = append(out, *it)
	}
	return out, int64(len(out)), nil
}

func (s memItems) AtomicDecrementBatch(_ context.Context, dec map[uuid.UUID]int) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var failed []uuid.UUID
	for id, n := range dec {
		if it, ok := s.items[id]; !ok || it.Quantity < n {
			failed = append(failed, id)
		}
	}
	if len(failed) > 0 {
		return failed, nil
	}
	for id, n := range dec {
		s.items[id].Quantity -= n
	}
	return nil, nil
}

func (s memItems) AtomicIncrementBatch(_ context.Context, inc map[uuid.UUID]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range inc {
		if it, ok := s.items[id]; ok {
			it.Quantity += n
		}
	}
	return nil
}

type memCarts struct{ *memStore }

func (s memCarts) Get(_ context.Context, userID uuid.UUID) (*entity.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return entity.NewCart(userID), nil
	}
	cp := *c
	cp.Entries = append([]entity.CartEntry(nil), c.Entries...)
	return &cp, nil
}

func (s memCarts) Save(_ context.Context, cart *entity.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *cart
	cp.Entries = append([]entity.CartEntry(nil), cart.Entries...)
	s.carts[cart.UserID] = &cp
	return nil
}

func (s memCarts) Delete(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

func (s memCarts) DeleteStale(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type memSales struct{ *memStore }

func (s memSales) Create(_ context.Context, sale *entity.Sale) error {
	time.Sleep(s.saleDelay)
	s.mu.Lock()
	defer s.mu.Unlock()
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	cp := *sale
	s.sales = append(s.sales, &cp)
	return nil
}

func (s memSales) GetByID(_ context.Context, id uuid.UUID) (*entity.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sale := range s.sales {
		if sale.ID == id {
			cp := *sale
			return &cp, nil
		}
	}
	return nil, nil
}

func (s memSales) GetByBillNo(_ context.Context, billNo string) (*entity.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sale := range s.sales {
		if sale.BillNo == billNo {
			cp := *sale
			return &cp, nil
		}
	}
	return nil, nil
}

func (s memSales) List(_ context.Context, params *repository.SaleFilterParams) ([]entity.Sale, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []entity.Sale{}
	for _, sale := range s.sales {
		if params.UserID == nil || sale.UserID == *params.UserID {
			out = append(out, *sale)
		}
	}
	return out, int64(len(out)), nil
}

type memUsers struct{ *memStore }

func (s memUsers) Create(_ context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[strings.ToLower(user.Email)] = user
	return nil
}

func (s memUsers) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (s memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[strings.ToLower(email)], nil
}

type memIdempotency struct{ *memStore }

func (s memIdempotency) GetByKey(_ context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k, ok := s.ikeys[key+"/"+userID.String()]; ok {
		cp := *k
		return &cp, nil
	}
	return nil, nil
}

func (s memIdempotency) Reserve(_ context.Context, k *entity.IdempotencyKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := k.Key + "/" + k.UserID.String()
	if cur, ok := s.ikeys[id]; ok && !cur.IsExpired() {
		return false, nil
	}
	cp := *k
	cp.ResponseCode = entity.IdempotencyPending
	s.ikeys[id] = &cp
	return true, nil
}

func (s memIdempotency) Complete(_ context.Context, key string, userID uuid.UUID, code int, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.ikeys[key+"/"+userID.String()]
	if !ok {
		return errors.New("no reservation")
	}
	k.ResponseCode = code
	k.ResponseBody = body
	return nil
}

func (s memIdempotency) Release(_ context.Context, key string, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := key + "/" + userID.String()
	if k, ok := s.ikeys[id]; ok && k.IsPending() {
		delete(s.ikeys, id)
	}
	return nil
}

func (s memIdempotency) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}
