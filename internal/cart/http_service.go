package cart

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/auth"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
)

const cartPrefix = "/api/cart/"

// HTTPService implements Service against the storefront cart endpoints.
type HTTPService struct {
	client *backend.Client
}

// NewHTTPService constructs a cart service using the shared backend client.
func NewHTTPService(client *backend.Client) *HTTPService {
	return &HTTPService{client: client}
}

// Load fetches the visitor's cart.
func (s *HTTPService) Load(ctx context.Context, creds auth.Credentials) (Snapshot, error) {
	if !creds.HasSession() {
		return Snapshot{}, ErrNoVisitor
	}
	var snap Snapshot
	err := s.client.Do(ctx, backend.Request{
		Operation: "cart.load",
		Method:    http.MethodGet,
		Path:      creds.ResolveEndpoint(cartPrefix, cartPrefix+"guest/"),
		Auth:      creds,
	}, &snap)
	if backend.IsNotFound(err) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Increase bumps a line by one. Guests go through the guest add endpoint, which increments
// an existing line.
func (s *HTTPService) Increase(ctx context.Context, creds auth.Credentials, productID int) error {
	if !creds.HasSession() {
		return ErrNoVisitor
	}
	req := backend.Request{Operation: "cart.increase", Auth: creds}
	if creds.Authenticated() {
		req.Method = http.MethodPut
		req.Path = fmt.Sprintf("%supdate/%d/", cartPrefix, productID)
	} else {
		req.Method = http.MethodPost
		req.Path = cartPrefix + "guest/add/"
		req.JSON = map[string]any{"product_id": productID, "guest_token": creds.Guest}
	}
	return s.client.Do(ctx, req, nil)
}

// Decrease lowers a line by one.
func (s *HTTPService) Decrease(ctx context.Context, creds auth.Credentials, productID int) error {
	if !creds.HasSession() {
		return ErrNoVisitor
	}
	return s.client.Do(ctx, backend.Request{
		Operation: "cart.decrease",
		Method:    http.MethodPut,
		Path:      s.linePath(creds, "decrease", productID),
		Auth:      creds,
	}, nil)
}

// Remove deletes a line.
func (s *HTTPService) Remove(ctx context.Context, creds auth.Credentials, productID int) error {
	if !creds.HasSession() {
		return ErrNoVisitor
	}
	return s.client.Do(ctx, backend.Request{
		Operation: "cart.remove",
		Method:    http.MethodDelete,
		Path:      s.linePath(creds, "remove", productID),
		Auth:      creds,
	}, nil)
}

// Clear empties the cart. The same endpoint serves users and guests; headers select the owner.
func (s *HTTPService) Clear(ctx context.Context, creds auth.Credentials) error {
	if !creds.HasSession() {
		return ErrNoVisitor
	}
	return s.client.Do(ctx, backend.Request{
		Operation: "cart.clear",
		Method:    http.MethodDelete,
		Path:      cartPrefix + "clear/",
		Auth:      creds,
	}, nil)
}

// Add puts quantity units of a product in the cart.
func (s *HTTPService) Add(ctx context.Context, creds auth.Credentials, productID, quantity int) (string, error) {
	if !creds.HasSession() {
		return "", ErrNoVisitor
	}
	if quantity <= 0 {
		quantity = 1
	}
	body := map[string]any{"product_id": productID, "quantity": quantity}
	path := cartPrefix + "add/"
	if !creds.Authenticated() {
		path = cartPrefix + "guest/add/"
		body["guest_token"] = creds.Guest
	}
	var out struct {
		Message string `json:"message"`
	}
	if err := s.client.Do(ctx, backend.Request{
		Operation: "cart.add",
		Method:    http.MethodPost,
		Path:      path,
		JSON:      body,
		Auth:      creds,
	}, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Message), nil
}

func (s *HTTPService) linePath(creds auth.Credentials, action string, productID int) string {
	return creds.ResolveEndpoint(
		fmt.Sprintf("%s%s/%d/", cartPrefix, action, productID),
		fmt.Sprintf("%sguest/%s/%d/", cartPrefix, action, productID),
	)
}
