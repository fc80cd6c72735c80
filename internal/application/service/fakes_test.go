package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sangkips/retailpos-api/internal/domain/entity"
	"github.com/sangkips/retailpos-api/internal/domain/repository"
	"github.com/sangkips/retailpos-api/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

type fakeItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*entity.Item
}

func newFakeItemRepo(items ...*entity.Item) *fakeItemRepo {
	r := &fakeItemRepo{items: map[uuid.UUID]*entity.Item{}}
	for _, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		r.items[it.ID] = it
	}
	return r
}

func (r *fakeItemRepo) Create(_ context.Context, item *entity.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeItemRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if it, ok := r.items[id]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeItemRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]entity.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Item{}
	for _, id := range ids {
		if it, ok := r.items[id]; ok {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) GetByCode(_ context.Context, code string) (*entity.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.Code == code {
			cp := *it
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeItemRepo) Update(_ context.Context, item *entity.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeItemRepo) Updates(_ context.Context, id uuid.UUID, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[id]
	if !ok {
		return errors.New("no such item")
	}
	if q, ok := fields["quantity"]; ok {
		it.Quantity = q.(int)
	}
	if d, ok := fields["discount"]; ok {
		it.Discount = d.(float64)
	}
	return nil
}

func (r *fakeItemRepo) Search(_ context.Context, query string, limit int) ([]entity.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Item{}
	q := strings.ToLower(query)
	for _, it := range r.items {
		if strings.Contains(strings.ToLower(it.Name), q) || strings.Contains(strings.ToLower(it.Code), q) {
			out = append(out, *it)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeItemRepo) List(_ context.Context, params *repository.ItemFilterParams) ([]entity.Item, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Item{}
	for _, it := range r.items {
		if params.LowStock && !it.IsLowStock() {
			continue
		}
		out = append(out, *it)
	}
	return out, int64(len(out)), nil
}

func (r *fakeItemRepo) AtomicDecrementBatch(_ context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var failed []uuid.UUID
	for id, n := range decrements {
		it, ok := r.items[id]
		if !ok || it.Quantity < n {
			failed = append(failed, id)
		}
	}
	if len(failed) > 0 {
		return failed, nil
	}
	for id, n := range decrements {
		r.items[id].Quantity -= n
	}
	return nil, nil
}

func (r *fakeItemRepo) AtomicIncrementBatch(_ context.Context, increments map[uuid.UUID]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, n := range increments {
		if it, ok := r.items[id]; ok {
			it.Quantity += n
		}
	}
	return nil
}

func (r *fakeItemRepo) stockOf(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[id].Quantity
}

type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*entity.Cart
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: map[uuid.UUID]*entity.Cart{}}
}

func (r *fakeCartRepo) Get(_ context.Context, userID uuid.UUID) (*entity.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		return entity.NewCart(userID), nil
	}
	cp := *c
	cp.Entries = append([]entity.CartEntry(nil), c.Entries...)
	return &cp, nil
}

func (r *fakeCartRepo) Save(_ context.Context, cart *entity.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *cart
	cp.Entries = append([]entity.CartEntry(nil), cart.Entries...)
	r.carts[cart.UserID] = &cp
	return nil
}

func (r *fakeCartRepo) Delete(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

func (r *fakeCartRepo) DeleteStale(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, c := range r.carts {
		if c.UpdatedAt.Before(before) {
			delete(r.carts, id)
			n++
		}
	}
	return n, nil
}

type fakeSaleRepo struct {
	mu      sync.Mutex
	sales   map[uuid.UUID]*entity.Sale
	failErr error
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: map[uuid.UUID]*entity.Sale{}}
}

func (r *fakeSaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	cp := *sale
	r.sales[sale.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sales[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeSaleRepo) GetByBillNo(_ context.Context, billNo string) (*entity.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sales {
		if s.BillNo == billNo {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSaleRepo) List(_ context.Context, params *repository.SaleFilterParams) ([]entity.Sale, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Sale{}
	for _, s := range r.sales {
		if params.UserID != nil && s.UserID != *params.UserID {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[uuid.UUID]*entity.User{}}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func testMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
