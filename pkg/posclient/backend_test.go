package posclient

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/pkg/pricing"
	"github.com/sangkips/retailpos-api/pkg/stock"
	"go.uber.org/zap"
)

const testToken = "till-token"

type backendItem struct {
	ID       uuid.UUID
	Name     string
	Code     string
	Price    int64
	Discount float64
	Stock    int
}

type backendEntry struct {
	ItemID   uuid.UUID
	Quantity int
}

// backend is an in-memory POS API speaking the server's envelope
type backend struct {
	mu       sync.Mutex
	items    map[uuid.UUID]*backendItem
	cart     []backendEntry
	sales    map[string]gin.H
	bills    int
	requests map[string]int
	fail     map[string]int
	lose     map[string]bool

	srv *httptest.Server
}

func newBackend(t *testing.T, items ...*backendItem) *backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &backend{
		items:    make(map[uuid.UUID]*backendItem),
		sales:    make(map[string]gin.H),
		requests: make(map[string]int),
		fail:     make(map[string]int),
		lose:     make(map[string]bool),
	}
	for _, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		b.items[it.ID] = it
	}

	r := gin.New()
	r.Use(b.count)
	api := r.Group("/api/v1")
	api.POST("/auth/login", b.login)

	authed := api.Group("", b.auth)
	authed.GET("/cart", b.getCart)
	authed.POST("/cart/items", b.addItem)
	authed.PUT("/cart/items/:item_id", b.updateItem)
	authed.DELETE("/cart/items/:item_id", b.removeItem)
	authed.DELETE("/cart", b.clearCart)
	authed.GET("/items/search", b.search)
	authed.POST("/sales", b.createSale)

	b.srv = httptest.NewServer(r)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) client() *Client {
	return New(b.srv.URL+"/api/v1", WithToken(testToken), WithLogger(zap.NewNop()))
}

func (b *backend) register(mirror Mirror) *Register {
	return NewRegister(b.client(), NewStore(mirror, nil), nil)
}

// failNext makes the next request to route answer with status
func (b *backend) failNext(route string, status int) {
	b.mu.Lock()
	b.fail[route] = status
	b.mu.Unlock()
}

// loseNext processes the next request to route but drops its response
func (b *backend) loseNext(route string) {
	b.mu.Lock()
	b.lose[route] = true
	b.mu.Unlock()
}

func (b *backend) calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[route]
}

func (b *backend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.requests {
		n += c
	}
	return n
}

func (b *backend) stockOf(id uuid.UUID) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.items[id].Stock
}

func (b *backend) saleCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sales)
}

func (b *backend) cartSize() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.cart)
}

func (b *backend) count(c *gin.Context) {
	route := c.Request.Method + " " + strings.TrimPrefix(c.FullPath(), "/api/v1")

	b.mu.Lock()
	b.requests[route]++
	status, fail := b.fail[route]
	lost := b.lose[route]
	delete(b.fail, route)
	delete(b.lose, route)
	b.mu.Unlock()

	if fail {
		c.AbortWithStatusJSON(status, gin.H{"success": false, "message": "injected failure", "kind": "internal"})
		return
	}
	if !lost {
		c.Next()
		return
	}
	orig := c.Writer
	c.Writer = &discardWriter{ResponseWriter: orig}
	c.Next()
	orig.WriteHeader(http.StatusBadGateway)
	_, _ = orig.Write([]byte("upstream timed out"))
}

// discardWriter swallows what a handler writes
type discardWriter struct {
	gin.ResponseWriter
}

func (w *discardWriter) WriteHeader(int) {}

func (w *discardWriter) WriteHeaderNow() {}

func (w *discardWriter) Write(b []byte) (int, error) { return len(b), nil }

func (w *discardWriter) WriteString(s string) (int, error) { return len(s), nil }

func (b *backend) auth(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+testToken {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token", "kind": "unauthorized"})
		return
	}
	c.Next()
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "message": "ok", "data": data})
}

func reject(c *gin.Context, status int, kind, message string) {
	c.JSON(status, gin.H{"success": false, "message": message, "kind": kind})
}

func (b *backend) login(c *gin.Context) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || in.Password != "secret" {
		reject(c, http.StatusUnauthorized, "unauthorized", "invalid email or password")
		return
	}
	respond(c, http.StatusOK, gin.H{"access_token": testToken, "token_type": "Bearer", "expires_in": 3600})
}

// cartView renders the cart. Callers hold b.mu.
func (b *backend) cartView() gin.H {
	lines := make([]gin.H, 0, len(b.cart))
	for _, e := range b.cart {
		it := b.items[e.ItemID]
		lines = append(lines, gin.H{
			"item_id":    it.ID,
			"name":       it.Name,
			"item_code":  it.Code,
			"unit_price": pricing.FromCents(it.Price),
			"discount":   it.Discount,
			"quantity":   e.Quantity,
			"stock":      it.Stock,
		})
	}
	return gin.H{"items": lines, "updated_at": time.Now().UTC()}
}

func (b *backend) entry(id uuid.UUID) int {
	for i := range b.cart {
		if b.cart[i].ItemID == id {
			return i
		}
	}
	return -1
}

func (b *backend) getCart(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	respond(c, http.StatusOK, b.cartView())
}

func (b *backend) addItem(c *gin.Context) {
	var in struct {
		ItemID   uuid.UUID `json:"item_id"`
		Quantity int       `json:"quantity"`
		Discount *float64  `json:"discount"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		reject(c, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}
	if in.Discount != nil && !pricing.ValidDiscount(*in.Discount) {
		reject(c, http.StatusBadRequest, "invalid_discount", "discount must be between 0 and 100")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	it, found := b.items[in.ItemID]
	if !found {
		reject(c, http.StatusNotFound, "not_found", "Item not found")
		return
	}
	i := b.entry(in.ItemID)
	inCart := 0
	if i >= 0 {
		inCart = b.cart[i].Quantity
	}
	if err := stock.CheckAdd(it.Name, it.Stock, inCart, in.Quantity); err != nil {
		reject(c, http.StatusConflict, "insufficient_stock", err.Error())
		return
	}
	if i >= 0 {
		b.cart[i].Quantity += in.Quantity
	} else {
		b.cart = append(b.cart, backendEntry{ItemID: in.ItemID, Quantity: in.Quantity})
	}
	respond(c, http.StatusOK, b.cartView())
}

func (b *backend) updateItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("item_id"))
	var in struct {
		Quantity int `json:"quantity"`
	}
	if err != nil || c.ShouldBindJSON(&in) != nil {
		reject(c, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.entry(id)
	if i < 0 {
		reject(c, http.StatusNotFound, "not_found", "Item is not in the cart")
		return
	}
	it := b.items[id]
	if err := stock.CheckSet(it.Name, it.Stock, in.Quantity); err != nil {
		reject(c, http.StatusConflict, "insufficient_stock", err.Error())
		return
	}
	b.cart[i].Quantity = in.Quantity
	respond(c, http.StatusOK, b.cartView())
}

func (b *backend) removeItem(c *gin.Context) {
	id, _ := uuid.Parse(c.Param("item_id"))

	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.entry(id); i >= 0 {
		b.cart = append(b.cart[:i], b.cart[i+1:]...)
	}
	respond(c, http.StatusOK, b.cartView())
}

func (b *backend) clearCart(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cart = nil
	respond(c, http.StatusOK, b.cartView())
}

func (b *backend) search(c *gin.Context) {
	q := strings.ToLower(c.Query("q"))

	b.mu.Lock()
	defer b.mu.Unlock()
	out := []gin.H{}
	for _, it := range b.items {
		if strings.Contains(strings.ToLower(it.Name), q) || strings.Contains(strings.ToLower(it.Code), q) {
			out = append(out, gin.H{
				"id":            it.ID,
				"name":          it.Name,
				"code":          it.Code,
				"quantity":      it.Stock,
				"selling_price": pricing.FromCents(it.Price),
				"discount":      it.Discount,
			})
		}
	}
	respond(c, http.StatusOK, out)
}

func (b *backend) createSale(c *gin.Context) {
	key := c.GetHeader(IdempotencyKeyHeader)
	if key == "" {
		reject(c, http.StatusBadRequest, "bad_request", "Idempotency-Key header is required")
		return
	}
	var in SalePayload
	if err := c.ShouldBindJSON(&in); err != nil {
		reject(c, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if sale, seen := b.sales[key]; seen {
		c.Header("X-Idempotency-Replayed", "true")
		respond(c, http.StatusCreated, sale)
		return
	}
	if len(in.Items) == 0 {
		reject(c, http.StatusBadRequest, "empty_cart", "cart is empty")
		return
	}

	lines := make([]pricing.Line, len(in.Items))
	items := make([]gin.H, len(in.Items))
	count := 0
	for i, l := range in.Items {
		it, found := b.items[l.ItemID]
		if !found {
			reject(c, http.StatusNotFound, "not_found", "Item not found")
			return
		}
		if err := stock.CheckSet(it.Name, it.Stock, l.Quantity); err != nil {
			reject(c, http.StatusConflict, "insufficient_stock", err.Error())
			return
		}
		lines[i] = pricing.Line{Quantity: l.Quantity, UnitPrice: it.Price, DiscountPercent: l.DiscountPercent}
		items[i] = gin.H{
			"item_id":          it.ID,
			"name":             it.Name,
			"item_code":        it.Code,
			"quantity":         l.Quantity,
			"unit_price":       pricing.FromCents(it.Price),
			"discount_percent": l.DiscountPercent,
			"line_total":       pricing.FromCents(pricing.LineTotal(lines[i])),
		}
		count += l.Quantity
	}
	totals := pricing.Compute(lines)
	paid := pricing.ToCents(in.AmountPaid)
	if paid < totals.GrandTotal {
		reject(c, http.StatusBadRequest, "insufficient_payment", "amount paid is less than the grand total")
		return
	}
	for _, l := range in.Items {
		b.items[l.ItemID].Stock -= l.Quantity
	}

	b.bills++
	sale := gin.H{
		"id":             uuid.New(),
		"bill_no":        fmt.Sprintf("BILL-%04d", b.bills),
		"customer_name":  in.CustomerName,
		"payment_method": in.PaymentMethod,
		"total_items":    count,
		"items":          items,
		"sub_total":      pricing.FromCents(totals.Subtotal),
		"total_discount": pricing.FromCents(totals.TotalDiscount),
		"grand_total":    pricing.FromCents(totals.GrandTotal),
		"amount_paid":    in.AmountPaid,
		"balance":        pricing.FromCents(pricing.Balance(paid, totals.GrandTotal)),
		"sold_at":        time.Now().UTC(),
	}
	b.sales[key] = sale
	respond(c, http.StatusCreated, sale)
}
