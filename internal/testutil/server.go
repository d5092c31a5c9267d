package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/accounts"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/cart"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/catalog"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/checkout"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/config"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/httpserver"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/reviews"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/session"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/status"
)

// Test users accepted by the default account service.
const (
	Username = "amina"
	Password = "secret-pass"
)

var (
	hashKey  = []byte("0123456789abcdef0123456789abcdef")
	blockKey = []byte("abcdef0123456789abcdef0123456789")
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithCart wires a custom cart service.
func WithCart(service cart.Service) ServerOption {
	return func(cfg *httpserver.Config) { cfg.Cart = service }
}

// WithOrders wires a custom order service.
func WithOrders(service checkout.Service) ServerOption {
	return func(cfg *httpserver.Config) { cfg.Orders = service }
}

// WithAccounts wires a custom account service.
func WithAccounts(service accounts.Service) ServerOption {
	return func(cfg *httpserver.Config) { cfg.Accounts = service }
}

// WithCatalog wires a custom catalogue; it also serves the blog when it implements BlogService.
func WithCatalog(service catalog.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Catalog = service
		if blog, ok := service.(catalog.BlogService); ok {
			cfg.Blog = blog
		}
	}
}

// WithReviews wires a custom review service.
func WithReviews(service reviews.Service) ServerOption {
	return func(cfg *httpserver.Config) { cfg.Reviews = service }
}

// WithHealth wires a status checker behind /healthz?deep=1.
func WithHealth(checker *status.Checker) ServerOption {
	return func(cfg *httpserver.Config) { cfg.Health = checker }
}

// WithStorefront adjusts the storefront settings.
func WithStorefront(fn func(*config.StorefrontConfig)) ServerOption {
	return func(cfg *httpserver.Config) { fn(&cfg.Storefront) }
}

// WithNow fixes the clock used by the handlers.
func WithNow(now func() time.Time) ServerOption {
	return func(cfg *httpserver.Config) { cfg.Now = now }
}

// Products is the catalogue served by default.
func Products() []catalog.Product {
	return []catalog.Product{
		{ID: 1, Name: "Lawn Suit", ProductType: "clothing", Price: 450000, Image: "/media/lawn.jpg", Season: "summer", Gender: "women", Description: "Three piece printed lawn.", UpdatedAt: "2024-05-01T10:00:00Z"},
		{ID: 2, Name: "Oud Attar", ProductType: "fragrance", Price: 120000, Image: "/media/oud.jpg", Description: "Long lasting oud.", UpdatedAt: "2024-05-02T10:00:00Z"},
		{ID: 3, Name: "Wool Shawl", ProductType: "clothing", Price: 300000, Image: "/media/shawl.jpg", Season: "winter", Gender: "men", Description: "Warm wool shawl."},
		{ID: 4, Name: "Hand Soap", ProductType: "essentials", Price: 25000, Image: "/media/soap.jpg", Description: "Olive oil soap."},
	}
}

// CartProducts mirrors Products for the in-memory cart.
func CartProducts() []cart.Product {
	var out []cart.Product
	for _, p := range Products() {
		out = append(out, cart.Product{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.Image})
	}
	return out
}

// NewSessionManager returns a cookie session manager with fixed test keys.
func NewSessionManager(t testing.TB) *session.Manager {
	t.Helper()

	mgr, err := session.NewManager(session.Config{
		CookieName: "qnh_session",
		HashKey:    hashKey,
		BlockKey:   blockKey,
	})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	return mgr
}

// ServerConfig returns the storefront configuration used by NewServer, backed by in-memory
// services.
func ServerConfig(t testing.TB, opts ...ServerOption) httpserver.Config {
	t.Helper()

	products := catalog.NewStaticService(Products()...)
	cfg := httpserver.Config{
		Address: ":0",
		Storefront: config.StorefrontConfig{
			SiteURL:             "https://shop.example.com",
			SiteName:            "QnH Enterprises",
			WhatsAppNumber:      "923000000000",
			CurrencyLabel:       "Rs.",
			CartShipping:        300,
			DefaultCountry:      "Pakistan",
			ShopPageSize:        6,
			TestimonialPageSize: 6,
			DefaultLocale:       "en",
		},
		Sessions: NewSessionManager(t),
		Cart:     cart.NewStaticService(CartProducts()...),
		Orders:   checkout.NewStaticService(),
		Accounts: accounts.NewStaticService(map[string]string{Username: Password}),
		Catalog:  products,
		Blog:     products,
		Reviews:  reviews.NewStaticService(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// NewServer constructs an httptest server running the storefront stack over in-memory services.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	srv, err := httpserver.New(ServerConfig(t, opts...))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}
