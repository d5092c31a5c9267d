package cart

import (
	"context"
	"errors"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/auth"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
)

// ErrNoVisitor indicates a cart call was attempted without an access or guest token.
var ErrNoVisitor = errors.New("cart: visitor has no session")

// Service manages the visitor's cart on the storefront API. Every mutation is followed by a
// fresh Load on the caller side; nothing is cached between calls.
type Service interface {
	// Load fetches the current cart. A missing cart yields an empty snapshot.
	Load(ctx context.Context, creds auth.Credentials) (Snapshot, error)
	// Increase raises the quantity of a product line by one.
	Increase(ctx context.Context, creds auth.Credentials, productID int) error
	// Decrease lowers the quantity of a product line by one.
	Decrease(ctx context.Context, creds auth.Credentials, productID int) error
	// Remove deletes a product line.
	Remove(ctx context.Context, creds auth.Credentials, productID int) error
	// Clear empties the cart.
	Clear(ctx context.Context, creds auth.Credentials) error
	// Add puts a product in the cart and returns the backend confirmation message, if any.
	Add(ctx context.Context, creds auth.Credentials, productID, quantity int) (string, error)
}

// Product is the product summary embedded in a cart line.
type Product struct {
	ID    int           `json:"id"`
	Name  string        `json:"name"`
	Price backend.Price `json:"price"`
	Image string        `json:"image"`
}

// Item is one cart line.
type Item struct {
	ID       int           `json:"id"`
	Product  Product       `json:"product"`
	Quantity int           `json:"quantity"`
	Total    backend.Price `json:"total"`
}

// LineTotal is unit price times quantity, computed locally.
func (i Item) LineTotal() backend.Price {
	return i.Product.Price.Times(i.Quantity)
}

// Snapshot is the cart as returned by the latest fetch.
type Snapshot struct {
	Items         []Item `json:"items"`
	TotalQuantity int    `json:"total_quantity"`
}

// Empty reports whether the cart has no lines.
func (s Snapshot) Empty() bool {
	return len(s.Items) == 0
}

// ItemCount is the number of distinct lines.
func (s Snapshot) ItemCount() int {
	return len(s.Items)
}

// Subtotal sums price times quantity over every line.
func (s Snapshot) Subtotal() backend.Price {
	var sum backend.Price
	for _, item := range s.Items {
		sum += item.LineTotal()
	}
	return sum
}

// Totals are the figures rendered in a cart or checkout summary.
type Totals struct {
	Subtotal backend.Price
	Shipping backend.Price
	Total    backend.Price
}

// Summarize applies a flat shipping charge to the snapshot. Empty carts are never charged.
func (s Snapshot) Summarize(shipping backend.Price) Totals {
	if s.Empty() {
		return Totals{}
	}
	sub := s.Subtotal()
	return Totals{Subtotal: sub, Shipping: shipping, Total: sub + shipping}
}

// Lines converts the snapshot into order lines.
func (s Snapshot) Lines() []Line {
	out := make([]Line, 0, len(s.Items))
	for _, item := range s.Items {
		out = append(out, Line{ProductID: item.Product.ID, Quantity: item.Quantity})
	}
	return out
}

// Line is the {product_id, quantity} pair sent with an order.
type Line struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}
