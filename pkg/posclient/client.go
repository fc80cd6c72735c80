// Package posclient is the till-side half of the point-of-sale system: a cart
// store mirrored to local disk, kept in step with the server cart, and a
// checkout that turns it into a recorded sale.
package posclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos-api/pkg/pricing"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the checkout token on POST /sales
const IdempotencyKeyHeader = "Idempotency-Key"

// Client talks to the POS API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithToken sets a bearer token obtained elsewhere
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the API rooted at baseURL, e.g. http://till-server:8080/api/v1
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// RemoteCartLine is one entry of the server's cart view
type RemoteCartLine struct {
	ItemID    uuid.UUID `json:"item_id"`
	Name      string    `json:"name"`
	ItemCode  string    `json:"item_code"`
	UnitPrice float64   `json:"unit_price"`
	Discount  float64   `json:"discount"`
	Quantity  int       `json:"quantity"`
	Stock     int       `json:"stock"`
}

// RemoteCart is the cart as returned by every cart endpoint
type RemoteCart struct {
	Items     []RemoteCartLine `json:"items"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Item is a catalog entry returned by search
type Item struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	Quantity     int       `json:"quantity"`
	SellingPrice int64     `json:"-"` // cents
	Discount     float64   `json:"discount"`
	LowStock     bool      `json:"low_stock"`
}

// UnmarshalJSON reads the decimal selling price into cents
func (i *Item) UnmarshalJSON(data []byte) error {
	type Alias Item
	aux := &struct {
		*Alias
		SellingPrice float64 `json:"selling_price"`
	}{Alias: (*Alias)(i)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	i.SellingPrice = pricing.ToCents(aux.SellingPrice)
	return nil
}

// StockAdjustment changes catalog stock or discount. Set either QuantityDelta
// or Quantity, optionally with Discount.
type StockAdjustment struct {
	QuantityDelta *int     `json:"quantity_delta,omitempty"`
	Quantity      *int     `json:"quantity,omitempty"`
	Discount      *float64 `json:"discount,omitempty"`
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

// Login exchanges credentials for a bearer token and keeps it for later calls
func (c *Client) Login(ctx context.Context, email, password string) error {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.send(ctx, http.MethodPost, "/auth/login", body, nil, &out, false); err != nil {
		return err
	}
	c.SetToken(out.AccessToken)
	return nil
}

// GetCart fetches the authenticated user's cart
func (c *Client) GetCart(ctx context.Context) (*RemoteCart, error) {
	var cart RemoteCart
	if err := c.send(ctx, http.MethodGet, "/cart", nil, nil, &cart, true); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddCartItem adds quantity units of an item to the cart
func (c *Client) AddCartItem(ctx context.Context, itemID uuid.UUID, quantity int, discount *float64) (*RemoteCart, error) {
	body := struct {
		ItemID   uuid.UUID `json:"item_id"`
		Quantity int       `json:"quantity"`
		Discount *float64  `json:"discount,omitempty"`
	}{itemID, quantity, discount}

	var cart RemoteCart
	if err := c.send(ctx, http.MethodPost, "/cart/items", body, nil, &cart, true); err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateCartItem sets the quantity of a cart line
func (c *Client) UpdateCartItem(ctx context.Context, itemID uuid.UUID, quantity int) (*RemoteCart, error) {
	body := map[string]int{"quantity": quantity}
	var cart RemoteCart
	if err := c.send(ctx, http.MethodPut, "/cart/items/"+itemID.String(), body, nil, &cart, true); err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveCartItem deletes a cart line
func (c *Client) RemoveCartItem(ctx context.Context, itemID uuid.UUID) (*RemoteCart, error) {
	var cart RemoteCart
	if err := c.send(ctx, http.MethodDelete, "/cart/items/"+itemID.String(), nil, nil, &cart, true); err != nil {
		return nil, err
	}
	return &cart, nil
}

// ClearCart empties the cart
func (c *Client) ClearCart(ctx context.Context) error {
	return c.send(ctx, http.MethodDelete, "/cart", nil, nil, nil, true)
}

// SearchItems looks items up by name or code
func (c *Client) SearchItems(ctx context.Context, query string) ([]Item, error) {
	var items []Item
	path := "/items/search?q=" + url.QueryEscape(query)
	if err := c.send(ctx, http.MethodGet, path, nil, nil, &items, true); err != nil {
		return nil, err
	}
	return items, nil
}

// AdjustItem changes catalog stock or discount of the item with the given code
func (c *Client) AdjustItem(ctx context.Context, code string, adj StockAdjustment) (*Item, error) {
	var item Item
	if err := c.send(ctx, http.MethodPatch, "/items/"+url.PathEscape(code)+"/stock", adj, nil, &item, true); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateSale submits a sale. Resubmitting with the same key returns the
// originally recorded sale instead of recording it twice.
func (c *Client) CreateSale(ctx context.Context, idempotencyKey string, payload *SalePayload) (*SaleRecord, error) {
	header := http.Header{}
	header.Set(IdempotencyKeyHeader, idempotencyKey)

	var sale SaleRecord
	if err := c.send(ctx, http.MethodPost, "/sales", payload, header, &sale, true); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}, header http.Header, out interface{}, auth bool) error {
	token := c.bearer()
	if auth && token == "" {
		return ErrUnauthenticated
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header[k] = v
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	c.logger.Debug("pos api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr != nil || env.Message == "" {
			rerr := genericError(resp.StatusCode)
			if decodeErr == nil {
				rerr.Kind = env.Kind
			}
			return rerr
		}
		return &RemoteError{Status: resp.StatusCode, Kind: env.Kind, Message: env.Message}
	}

	if out == nil {
		return nil
	}
	if decodeErr != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, decodeErr)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s data: %w", method, path, err)
	}
	return nil
}
