package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/internal/domain/entity"
	"github.com/sangkips/retailpos-api/internal/domain/enum"
	"github.com/sangkips/retailpos-api/internal/domain/repository"
	"github.com/sangkips/retailpos-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saleFixture struct {
	svc     *SaleService
	items   *fakeItemRepo
	carts   *fakeCartRepo
	sales   *fakeSaleRepo
	cashier *entity.User
	tea     *entity.Item
	milk    *entity.Item
}

func newSaleFixture() *saleFixture {
	tea := &entity.Item{ID: uuid.New(), Name: "Tea", Code: "TEA", Quantity: 10, SellingPrice: 10000, Discount: 10}
	milk := &entity.Item{ID: uuid.New(), Name: "Milk", Code: "MILK", Quantity: 4, SellingPrice: 5000}
	cashier := &entity.User{ID: uuid.New(), Name: "Jane Cashier", Email: "jane@example.com", Role: enum.RoleCashier}

	items := newFakeItemRepo(tea, milk)
	carts := newFakeCartRepo()
	sales := newFakeSaleRepo()
	return &saleFixture{
		svc:     NewSaleService(sales, items, carts, newFakeUserRepo(cashier), testMetrics(), testLogger(), "Corner Shop"),
		items:   items,
		carts:   carts,
		sales:   sales,
		cashier: cashier,
		tea:     tea,
		milk:    milk,
	}
}

func (f *saleFixture) input(paid float64, teaDiscount float64) *CheckoutInput {
	return &CheckoutInput{
		UserID:        f.cashier.ID,
		PaymentMethod: enum.PaymentMethodCash,
		AmountPaid:    paid,
		Items: []SaleItemInput{
			{ItemID: f.tea.ID, Quantity: 2, DiscountPercent: teaDiscount},
			{ItemID: f.milk.ID, Quantity: 1},
		},
	}
}

func TestSaleService_CheckoutRecordsSale(t *testing.T) {
	f := newSaleFixture()
	ctx := context.Background()

	cart := entity.NewCart(f.cashier.ID)
	cart.Add(f.tea.ID, 2, cart.UpdatedAt)
	require.NoError(t, f.carts.Save(ctx, cart))

	sale, err := f.svc.Checkout(ctx, f.input(300, 10))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sale.BillNo, "BILL-"))
	assert.Equal(t, int64(25000), sale.SubTotal)
	assert.Equal(t, int64(2000), sale.TotalDiscount)
	assert.Equal(t, int64(23000), sale.GrandTotal)
	assert.Equal(t, int64(7000), sale.Balance)
	assert.Equal(t, entity.WalkInCustomer, sale.CustomerName)
	assert.Equal(t, 3, sale.TotalItems)
	require.Len(t, sale.Items, 2)
	assert.Equal(t, int64(18000), sale.Items[0].LineTotal)

	assert.Equal(t, 8, f.items.stockOf(f.tea.ID))
	assert.Equal(t, 3, f.items.stockOf(f.milk.ID))

	remaining, _ := f.carts.Get(ctx, f.cashier.ID)
	assert.True(t, remaining.IsEmpty())
}

func TestSaleService_CheckoutUsesSubmittedDiscount(t *testing.T) {
	f := newSaleFixture()

	sale, err := f.svc.Checkout(context.Background(), f.input(300, 25))
	require.NoError(t, err)

	assert.Equal(t, 25.0, sale.Items[0].DiscountPercent)
	assert.Equal(t, int64(15000), sale.Items[0].LineTotal)
	assert.Equal(t, int64(20000), sale.GrandTotal)
}

func TestSaleService_CheckoutInsufficientPayment(t *testing.T) {
	f := newSaleFixture()

	_, err := f.svc.Checkout(context.Background(), f.input(200, 10))
	require.Error(t, err)
	assert.Equal(t, apperror.KindInsufficientPayment, apperror.GetAppError(err).Kind)

	assert.Equal(t, 10, f.items.stockOf(f.tea.ID))
	assert.Empty(t, f.sales.sales)
}

func TestSaleService_CheckoutRejectsInvalidInput(t *testing.T) {
	f := newSaleFixture()
	ctx := context.Background()

	_, err := f.svc.Checkout(ctx, &CheckoutInput{UserID: f.cashier.ID, PaymentMethod: enum.PaymentMethodCash})
	assert.ErrorIs(t, err, apperror.ErrEmptyCart)

	in := f.input(300, 101)
	_, err = f.svc.Checkout(ctx, in)
	assert.ErrorIs(t, err, apperror.ErrInvalidDiscount)

	in = f.input(300, 0)
	in.Items[1].Quantity = 0
	_, err = f.svc.Checkout(ctx, in)
	assert.Equal(t, apperror.KindInvalidQuantity, apperror.GetAppError(err).Kind)

	in = f.input(300, 0)
	in.Items = append(in.Items, SaleItemInput{ItemID: f.tea.ID, Quantity: 1})
	_, err = f.svc.Checkout(ctx, in)
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)

	in = f.input(300, 0)
	in.PaymentMethod = "barter"
	_, err = f.svc.Checkout(ctx, in)
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)

	in = f.input(300, 0)
	in.Items[0].ItemID = uuid.New()
	_, err = f.svc.Checkout(ctx, in)
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}

func TestSaleService_CheckoutInsufficientStockNamesItems(t *testing.T) {
	f := newSaleFixture()
	in := f.input(10000, 0)
	in.Items[1].Quantity = 5

	_, err := f.svc.Checkout(context.Background(), in)
	appErr := apperror.GetAppError(err)
	assert.Equal(t, apperror.KindInsufficientStock, appErr.Kind)
	assert.Contains(t, appErr.Message, "Milk")

	assert.Equal(t, 10, f.items.stockOf(f.tea.ID))
	assert.Equal(t, 4, f.items.stockOf(f.milk.ID))
}

func TestSaleService_CheckoutRestoresStockWhenPersistFails(t *testing.T) {
	f := newSaleFixture()
	f.sales.failErr = errors.New("db down")

	_, err := f.svc.Checkout(context.Background(), f.input(300, 10))
	require.Error(t, err)

	assert.Equal(t, 10, f.items.stockOf(f.tea.ID))
	assert.Equal(t, 4, f.items.stockOf(f.milk.ID))
}

func TestSaleService_ReadAccess(t *testing.T) {
	f := newSaleFixture()
	ctx := context.Background()

	in := f.input(300, 10)
	in.CustomerName = "  Amina  "
	sale, err := f.svc.Checkout(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Amina", sale.CustomerName)

	got, err := f.svc.GetSale(ctx, sale.ID, f.cashier.ID, false)
	require.NoError(t, err)
	assert.Equal(t, sale.BillNo, got.BillNo)

	_, err = f.svc.GetSale(ctx, sale.ID, uuid.New(), false)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.svc.GetSale(ctx, sale.ID, uuid.New(), true)
	assert.NoError(t, err)

	page, err := f.svc.ListSales(ctx, uuid.New(), false, &repository.SaleFilterParams{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	page, err = f.svc.ListSales(ctx, f.cashier.ID, false, &repository.SaleFilterParams{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	receipt, err := f.svc.GetReceipt(ctx, sale.ID, f.cashier.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Corner Shop", receipt.Header.StoreName)
	assert.Equal(t, "Jane Cashier", receipt.Cashier)
	assert.InDelta(t, 230.0, receipt.GrandTotal, 0.001)
	assert.InDelta(t, 70.0, receipt.Balance, 0.001)
	assert.Len(t, receipt.Items, 2)
}
