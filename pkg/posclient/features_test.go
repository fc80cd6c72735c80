package posclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/cucumber/godog"
	"github.com/sangkips/retailpos-api/pkg/pricing"
	"github.com/sangkips/retailpos-api/pkg/stock"
)

type checkoutTestContext struct {
	t        *testing.T
	backend  *backend
	register *Register
	catalog  map[string]*backendItem
	sale     *SaleRecord
	err      error
}

func (c *checkoutTestContext) reset() {
	c.backend = nil
	c.register = nil
	c.catalog = make(map[string]*backendItem)
	c.sale = nil
	c.err = nil
}

func (c *checkoutTestContext) theCatalogHolds(table *godog.Table) error {
	items := []*backendItem{}
	for i, row := range table.Rows {
		if i == 0 {
			continue // header
		}
		price, err := strconv.ParseFloat(row.Cells[2].Value, 64)
		if err != nil {
			return err
		}
		discount, err := strconv.ParseFloat(row.Cells[3].Value, 64)
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(row.Cells[4].Value)
		if err != nil {
			return err
		}
		item := &backendItem{
			Code:     row.Cells[0].Value,
			Name:     row.Cells[1].Value,
			Price:    pricing.ToCents(price),
			Discount: discount,
			Stock:    qty,
		}
		c.catalog[item.Code] = item
		items = append(items, item)
	}
	c.backend = newBackend(c.t, items...)
	return nil
}

func (c *checkoutTestContext) theTillIsSignedIn() error {
	client := New(c.backend.srv.URL + "/api/v1")
	if err := client.Login(context.Background(), "till@example.com", "secret"); err != nil {
		return err
	}
	c.register = NewRegister(client, NewStore(NewFileMirror(c.t.TempDir()), nil), nil)
	return c.register.Load(context.Background())
}

func (c *checkoutTestContext) lookup(code string) (Item, error) {
	items, err := c.register.Search(context.Background(), code)
	if err != nil {
		return Item{}, err
	}
	for _, it := range items {
		if it.Code == code {
			return it, nil
		}
	}
	return Item{}, fmt.Errorf("no catalog item %q", code)
}

func (c *checkoutTestContext) theCashierAdds(qty int, code string) error {
	item, err := c.lookup(code)
	if err != nil {
		return err
	}
	c.err = c.register.AddItem(context.Background(), item, qty, nil)
	return nil
}

func (c *checkoutTestContext) theCashierSetsTheDiscountOn(code string, pct float64) error {
	return c.register.SetDiscount(c.catalog[code].ID, pct)
}

func (c *checkoutTestContext) theCashierChecksOutPaying(amount float64, method string) error {
	c.sale, c.err = c.register.Checkout(context.Background(), CheckoutRequest{
		PaymentMethod: method,
		AmountPaid:    pricing.ToCents(amount),
	})
	return nil
}

func expectCents(what string, want float64, got int64) error {
	if pricing.ToCents(want) != got {
		return fmt.Errorf("expected %s %.2f, got %.2f", what, want, pricing.FromCents(got))
	}
	return nil
}

func (c *checkoutTestContext) theSubtotalIs(amount float64) error {
	return expectCents("subtotal", amount, c.register.Totals().Subtotal)
}

func (c *checkoutTestContext) theTotalDiscountIs(amount float64) error {
	return expectCents("total discount", amount, c.register.Totals().TotalDiscount)
}

func (c *checkoutTestContext) theGrandTotalIs(amount float64) error {
	return expectCents("grand total", amount, c.register.Totals().GrandTotal)
}

func (c *checkoutTestContext) theChangeIsRejectedForInsufficientStock(available int) error {
	var serr *stock.Error
	if !errors.As(c.err, &serr) || !errors.Is(c.err, ErrInsufficientStock) {
		return fmt.Errorf("expected insufficient stock, got %v", c.err)
	}
	if serr.Available != available {
		return fmt.Errorf("expected %d available, got %d", available, serr.Available)
	}
	return nil
}

func (c *checkoutTestContext) theCartHolds(qty int, code string) error {
	line, ok := c.register.store.Line(c.catalog[code].ID)
	if !ok {
		return fmt.Errorf("%s is not in the cart", code)
	}
	if line.Quantity != qty {
		return fmt.Errorf("expected %d of %s, got %d", qty, code, line.Quantity)
	}
	return nil
}

func (c *checkoutTestContext) checkoutIsRejectedForInsufficientPayment() error {
	if !errors.Is(c.err, ErrInsufficientPayment) {
		return fmt.Errorf("expected insufficient payment, got %v", c.err)
	}
	return nil
}

func (c *checkoutTestContext) checkoutIsRejectedBecauseTheCartIsEmpty() error {
	if !errors.Is(c.err, ErrEmptyCart) {
		return fmt.Errorf("expected empty cart, got %v", c.err)
	}
	return nil
}

func (c *checkoutTestContext) noSaleWasSubmitted() error {
	if n := c.backend.calls("POST /sales"); n != 0 {
		return fmt.Errorf("expected no sale submission, got %d", n)
	}
	return nil
}

func (c *checkoutTestContext) theSaleGrandTotalIs(amount float64) error {
	if c.sale == nil {
		return fmt.Errorf("no sale recorded: %v", c.err)
	}
	return expectCents("sale grand total", amount, c.sale.GrandTotal)
}

func (c *checkoutTestContext) theChangeDueIs(amount float64) error {
	if c.sale == nil {
		return fmt.Errorf("no sale recorded: %v", c.err)
	}
	return expectCents("change due", amount, c.sale.Balance)
}

func (c *checkoutTestContext) theSaleLineForTotals(code string, amount float64) error {
	if c.sale == nil {
		return fmt.Errorf("no sale recorded: %v", c.err)
	}
	for _, it := range c.sale.Items {
		if it.ItemCode == code {
			return expectCents("line total for "+code, amount, it.LineTotal)
		}
	}
	return fmt.Errorf("sale has no line for %s", code)
}

func (c *checkoutTestContext) theCartIsEmpty() error {
	if c.register.State() != CartEmpty {
		return fmt.Errorf("expected an empty cart, got %d lines", len(c.register.Lines()))
	}
	if n := c.backend.cartSize(); n != 0 {
		return fmt.Errorf("expected an empty server cart, got %d lines", n)
	}
	return nil
}

func (c *checkoutTestContext) theCatalogStockOfIs(code string, qty int) error {
	if got := c.backend.stockOf(c.catalog[code].ID); got != qty {
		return fmt.Errorf("expected %s stock %d, got %d", code, qty, got)
	}
	return nil
}

func initializeCheckoutScenario(t *testing.T) func(*godog.ScenarioContext) {
	return func(ctx *godog.ScenarioContext) {
		tc := &checkoutTestContext{t: t}

		ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
			tc.reset()
			return ctx, nil
		})

		// Given steps
		ctx.Step(`^the catalog holds:$`, tc.theCatalogHolds)
		ctx.Step(`^the till is signed in$`, tc.theTillIsSignedIn)

		// When steps
		ctx.Step(`^the cashier adds (\d+) of "([^"]*)"$`, tc.theCashierAdds)
		ctx.Step(`^the cashier sets the discount on "([^"]*)" to (\d+(?:\.\d+)?)$`, tc.theCashierSetsTheDiscountOn)
		ctx.Step(`^the cashier checks out paying (\d+(?:\.\d+)?) by "([^"]*)"$`, tc.theCashierChecksOutPaying)

		// Then steps
		ctx.Step(`^the subtotal is (\d+(?:\.\d+)?)$`, tc.theSubtotalIs)
		ctx.Step(`^the total discount is (\d+(?:\.\d+)?)$`, tc.theTotalDiscountIs)
		ctx.Step(`^the grand total is (\d+(?:\.\d+)?)$`, tc.theGrandTotalIs)
		ctx.Step(`^the change is rejected for insufficient stock with (\d+) available$`, tc.theChangeIsRejectedForInsufficientStock)
		ctx.Step(`^the cart holds (\d+) of "([^"]*)"$`, tc.theCartHolds)
		ctx.Step(`^checkout is rejected for insufficient payment$`, tc.checkoutIsRejectedForInsufficientPayment)
		ctx.Step(`^checkout is rejected because the cart is empty$`, tc.checkoutIsRejectedBecauseTheCartIsEmpty)
		ctx.Step(`^no sale was submitted$`, tc.noSaleWasSubmitted)
		ctx.Step(`^the sale grand total is (\d+(?:\.\d+)?)$`, tc.theSaleGrandTotalIs)
		ctx.Step(`^the change due is (\d+(?:\.\d+)?)$`, tc.theChangeDueIs)
		ctx.Step(`^the sale line for "([^"]*)" totals (\d+(?:\.\d+)?)$`, tc.theSaleLineForTotals)
		ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
		ctx.Step(`^the catalog stock of "([^"]*)" is (\d+)$`, tc.theCatalogStockOfIs)
	}
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeCheckoutScenario(t),
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
