package cart

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/auth"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
)

// StaticService keeps carts in memory, keyed by the token that drives the request. It backs
// local development without an API and the handler tests.
type StaticService struct {
	mu       sync.Mutex
	products map[int]Product
	carts    map[string][]Item
	nextID   int
}

// NewStaticService returns an in-memory cart over the given product catalogue.
func NewStaticService(products ...Product) *StaticService {
	s := &StaticService{
		products: make(map[int]Product, len(products)),
		carts:    map[string][]Item{},
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

// Seed replaces the cart owned by creds.
func (s *StaticService) Seed(creds auth.Credentials, items ...Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ownerKey(creds)
	s.carts[key] = nil
	for _, item := range items {
		s.nextID++
		if item.ID == 0 {
			item.ID = s.nextID
		}
		item.Total = item.LineTotal()
		s.carts[key] = append(s.carts[key], item)
		s.products[item.Product.ID] = item.Product
	}
}

// Load implements Service.
func (s *StaticService) Load(_ context.Context, creds auth.Credentials) (Snapshot, error) {
	if !creds.HasSession() {
		return Snapshot{}, ErrNoVisitor
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	items := append([]Item(nil), s.carts[ownerKey(creds)]...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	snap := Snapshot{Items: items}
	for _, item := range items {
		snap.TotalQuantity += item.Quantity
	}
	return snap, nil
}

// Increase implements Service.
func (s *StaticService) Increase(ctx context.Context, creds auth.Credentials, productID int) error {
	_, err := s.Add(ctx, creds, productID, 1)
	return err
}

// Decrease implements Service. Decreasing a single unit removes the line.
func (s *StaticService) Decrease(_ context.Context, creds auth.Credentials, productID int) error {
	return s.mutate(creds, productID, func(items []Item, idx int) []Item {
		if items[idx].Quantity <= 1 {
			return append(items[:idx], items[idx+1:]...)
		}
		items[idx].Quantity--
		items[idx].Total = items[idx].LineTotal()
		return items
	})
}

// Remove implements Service.
func (s *StaticService) Remove(_ context.Context, creds auth.Credentials, productID int) error {
	return s.mutate(creds, productID, func(items []Item, idx int) []Item {
		return append(items[:idx], items[idx+1:]...)
	})
}

// Clear implements Service.
func (s *StaticService) Clear(_ context.Context, creds auth.Credentials) error {
	if !creds.HasSession() {
		return ErrNoVisitor
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, ownerKey(creds))
	return nil
}

// Add implements Service.
func (s *StaticService) Add(_ context.Context, creds auth.Credentials, productID, quantity int) (string, error) {
	if !creds.HasSession() {
		return "", ErrNoVisitor
	}
	if quantity <= 0 {
		quantity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[productID]
	if !ok {
		return "", &backend.Error{Status: http.StatusNotFound, Message: "Product not found"}
	}
	key := ownerKey(creds)
	items := s.carts[key]
	for i := range items {
		if items[i].Product.ID == productID {
			items[i].Quantity += quantity
			items[i].Total = items[i].LineTotal()
			return "Product quantity updated in cart", nil
		}
	}
	s.nextID++
	item := Item{ID: s.nextID, Product: product, Quantity: quantity}
	item.Total = item.LineTotal()
	s.carts[key] = append(items, item)
	return "Product added to cart", nil
}

func (s *StaticService) mutate(creds auth.Credentials, productID int, fn func([]Item, int) []Item) error {
	if !creds.HasSession() {
		return ErrNoVisitor
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ownerKey(creds)
	items := s.carts[key]
	for i := range items {
		if items[i].Product.ID == productID {
			s.carts[key] = fn(items, i)
			return nil
		}
	}
	return &backend.Error{Status: http.StatusNotFound, Message: "Item not found in cart"}
}

func ownerKey(creds auth.Credentials) string {
	if creds.Authenticated() {
		return "user:" + creds.Access
	}
	return "guest:" + creds.Guest
}
