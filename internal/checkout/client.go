package checkout

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/auth"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/cart"
)

// IdempotencyField is the hidden checkout form field carrying the order's idempotency key.
const IdempotencyField = "idempotency_key"

const (
	idempotencyHeader = "Idempotency-Key"
	orderEndpoint     = "/api/orders/create/"
	paymentWhatsApp   = "whatsapp"
)

// Messages shown when an order cannot be created.
const (
	MessageOrderFailed  = "Failed to create order. Please try again."
	MessageNetworkError = "Network error. Please check your connection and try again."
)

var (
	// ErrEmptyOrder is returned when an order carries no lines.
	ErrEmptyOrder = errors.New("checkout: order has no items")
	// ErrMissingOrder is returned when a 2xx response carries no order object.
	ErrMissingOrder = errors.New("checkout: response has no order")
)

// Service places storefront orders.
type Service interface {
	CreateOrder(ctx context.Context, creds auth.Credentials, req OrderRequest) (Order, error)
}

// OrderRequest is the validated draft plus the cart lines and an optional idempotency key.
type OrderRequest struct {
	Draft          Draft
	Items          []cart.Line
	IdempotencyKey string
}

// Order mirrors the "order" object of the create response.
type Order struct {
	ID          int           `json:"id"`
	OrderNumber string        `json:"order_number"`
	Status      string        `json:"status"`
	Total       backend.Price `json:"total_amount"`
	CreatedAt   string        `json:"created_at"`
}

// Client creates orders against the storefront API.
type Client struct {
	api *backend.Client
	now func() time.Time
}

// NewClient constructs an order client over the shared backend client.
func NewClient(api *backend.Client) *Client {
	return &Client{api: api, now: time.Now}
}

// CreateOrder submits the order once. The response must contain an order object.
func (c *Client) CreateOrder(ctx context.Context, creds auth.Credentials, req OrderRequest) (Order, error) {
	if len(req.Items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	var payload struct {
		Order *Order `json:"order"`
	}
	err := c.api.Do(ctx, backend.Request{
		Operation: "orders.create",
		Method:    http.MethodPost,
		Path:      orderEndpoint,
		JSON:      newOrderPayload(req),
		Auth:      creds,
		Header:    http.Header{idempotencyHeader: {c.ensureIdempotencyKey(req.IdempotencyKey)}},
	}, &payload)
	if err != nil {
		return Order{}, err
	}
	if payload.Order == nil {
		return Order{}, ErrMissingOrder
	}
	return *payload.Order, nil
}

// ErrorMessage turns an order failure into the text shown to the visitor.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if backend.IsUnavailable(err) {
		return MessageNetworkError
	}
	if apiErr, ok := backend.AsError(err); ok {
		if msgs := apiErr.ValidationMessages(); len(msgs) > 0 {
			return "Validation error: " + strings.Join(msgs, ", ")
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	return MessageOrderFailed
}

type orderPayload struct {
	FirstName              string      `json:"first_name"`
	LastName               string      `json:"last_name"`
	Email                  string      `json:"email"`
	Mobile                 string      `json:"mobile"`
	Address                string      `json:"address"`
	City                   string      `json:"city"`
	Country                string      `json:"country"`
	Zipcode                string      `json:"zipcode"`
	ShipToDifferentAddress bool        `json:"ship_to_different_address"`
	ShippingAddress        string      `json:"shipping_address"`
	ShippingCity           string      `json:"shipping_city"`
	ShippingCountry        string      `json:"shipping_country"`
	ShippingZipcode        string      `json:"shipping_zipcode"`
	OrderNotes             string      `json:"order_notes"`
	PaymentMethod          string      `json:"payment_method"`
	Items                  []cart.Line `json:"items"`
}

func newOrderPayload(req OrderRequest) orderPayload {
	d := req.Draft.Normalized()
	p := orderPayload{
		FirstName:              d.FirstName,
		LastName:               d.LastName,
		Email:                  d.Email,
		Mobile:                 d.Mobile,
		Address:                d.Address,
		City:                   d.City,
		Country:                d.Country,
		Zipcode:                d.Zipcode,
		ShipToDifferentAddress: d.ShipToDifferentAddress,
		OrderNotes:             d.OrderNotes,
		PaymentMethod:          paymentWhatsApp,
		Items:                  req.Items,
	}
	if d.ShipToDifferentAddress {
		p.ShippingAddress = d.Address
		p.ShippingCity = d.City
		p.ShippingCountry = d.Country
		p.ShippingZipcode = d.Zipcode
	}
	return p
}

func (c *Client) ensureIdempotencyKey(key string) string {
	key = strings.TrimSpace(key)
	if key != "" {
		return key
	}
	return NewIdempotencyKey(c.now())
}

// NewIdempotencyKey returns a ULID for the order call.
func NewIdempotencyKey(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
}

// IdempotencyKeyFromForm returns the key embedded in the submitted checkout form so that a
// resubmitted form reuses it. A missing or malformed key is replaced by a fresh one.
func IdempotencyKeyFromForm(form url.Values, now time.Time) string {
	if key := strings.TrimSpace(form.Get(IdempotencyField)); key != "" {
		if _, err := ulid.ParseStrict(key); err == nil {
			return key
		}
	}
	return NewIdempotencyKey(now)
}
