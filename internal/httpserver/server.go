// Package httpserver assembles the storefront router: middleware stack, embedded assets and
// page routes.
package httpserver

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/accounts"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/cart"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/catalog"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/checkout"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/cms"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/config"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/handlers"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/i18n"
	mw "github.com/Mujtaba-Syed/QnH-Enterprises/internal/middleware"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/notifications"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/observability"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/reviews"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/status"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/view"
	"github.com/Mujtaba-Syed/QnH-Enterprises/public"
)

const (
	defaultRequestTimeout    = 30 * time.Second
	defaultReadHeaderTimeout = 10 * time.Second
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 60 * time.Second
)

// Config holds runtime options and collaborators for the storefront HTTP server.
type Config struct {
	Address           string
	Dev               bool
	RequestTimeout    time.Duration
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	Storefront config.StorefrontConfig
	// Assets switches templates and static files to directories on disk.
	Assets config.AssetsConfig

	Logger   *zap.Logger
	Sessions mw.SessionStore

	Cart     cart.Service
	Orders   checkout.Service
	Accounts accounts.Service
	Catalog  catalog.Service
	Blog     catalog.BlogService
	Reviews  reviews.Service
	Health   *status.Checker

	Now func() time.Time
}

// New constructs the HTTP server with the storefront router.
func New(cfg Config) (*http.Server, error) {
	handler, err := NewHandler(cfg)
	if err != nil {
		return nil, err
	}
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: orDefault(cfg.ReadHeaderTimeout, defaultReadHeaderTimeout),
		ReadTimeout:       orDefault(cfg.ReadTimeout, defaultReadTimeout),
		WriteTimeout:      orDefault(cfg.WriteTimeout, defaultWriteTimeout),
		IdleTimeout:       orDefault(cfg.IdleTimeout, defaultIdleTimeout),
	}, nil
}

// NewHandler builds the router without an http.Server around it.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("httpserver: session store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	templatesFS, staticFS, err := assetTrees(cfg.Assets)
	if err != nil {
		return nil, err
	}
	localesFS, err := public.LocalesFS()
	if err != nil {
		return nil, fmt.Errorf("httpserver: embed locales: %w", err)
	}
	contentFS, err := public.ContentFS()
	if err != nil {
		return nil, fmt.Errorf("httpserver: embed content: %w", err)
	}

	fallback := firstNonEmpty(cfg.Storefront.DefaultLocale, "en")
	bundle, err := i18n.Load(localesFS, ".", fallback, []string{"en", "ur"})
	if err != nil {
		return nil, fmt.Errorf("httpserver: locales: %w", err)
	}
	renderer, err := view.New(templatesFS,
		view.WithFuncs(view.TranslateFuncs(bundle)),
		view.WithDevReload(cfg.Dev && cfg.Assets.TemplatesDir != ""),
	)
	if err != nil {
		return nil, fmt.Errorf("httpserver: templates: %w", err)
	}

	h, err := handlers.New(handlers.Dependencies{
		Storefront: cfg.Storefront,
		Cart:       cfg.Cart,
		Orders:     cfg.Orders,
		Accounts:   cfg.Accounts,
		Catalog:    cfg.Catalog,
		Blog:       cfg.Blog,
		Reviews:    cfg.Reviews,
		Notify:     notifications.NewManager(),
		Content:    cms.NewStore(contentFS, fallback),
		I18n:       bundle,
		Renderer:   renderer,
		Health:     cfg.Health,
		Now:        cfg.Now,
	})
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLoggerMiddleware(logger))
	router.Use(observability.RecoveryMiddleware(logger))
	router.Use(chimw.Compress(5))
	router.Use(chimw.Timeout(orDefault(cfg.RequestTimeout, defaultRequestTimeout)))

	router.Get("/healthz", h.Healthz)
	router.Handle("/static/*", mw.AssetsWithCache(staticFS, "/static"))
	router.Get("/robots.txt", h.Robots)
	router.Get("/sitemap.xml", h.Sitemap)

	router.Group(func(r chi.Router) {
		r.Use(mw.Session(cfg.Sessions))
		r.Use(mw.Logger)
		r.Use(mw.HTMX)
		r.Use(mw.Notifications)
		r.Use(mw.CSRF)
		r.Use(mw.Locale(bundle))
		r.Use(mw.VaryLocale)

		mountStorefrontRoutes(r, h)
		r.NotFound(h.NotFound)
	})

	return router, nil
}

func mountStorefrontRoutes(r chi.Router, h *handlers.Handlers) {
	r.Get("/", h.Home)
	r.Get("/shop/", h.Shop)
	r.Get("/shop/clothing", h.ShopClothing)

	r.Route("/product-detail/{id}", func(r chi.Router) {
		r.Get("/", h.ProductDetail)
		r.Get("/gallery", h.ProductGallery)
		r.Post("/cart", h.ProductAddToCart)
		r.Post("/reviews", h.SubmitReview)
	})
	r.Get("/products/random", h.RandomProducts)

	r.Post("/guest/continue", h.GuestContinue)
	r.Post("/cart/add", h.AddToCart)
	r.Get("/cart/badge", h.CartBadge)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireVisitor)
		r.Use(mw.NoStore)

		r.Get("/cart/", h.CartPage)
		r.Get("/cart/items", h.CartItems)
		r.Post("/cart/items/{id}/increase", h.IncreaseItem)
		r.Post("/cart/items/{id}/decrease", h.DecreaseItem)
		r.Post("/cart/items/{id}/remove", h.RemoveItem)
		r.Post("/cart/clear", h.ClearCart)
		r.Post("/cart/coupon", h.ApplyCoupon)

		r.Get("/checkout/", h.CheckoutPage)
		r.Post("/checkout/order", h.PlaceOrder)
	})

	r.Get("/testimonial/", h.Testimonials)
	r.Get("/testimonial/page", h.TestimonialPage)

	r.With(mw.NoStore).Get("/login/", h.LoginPage)
	r.Post("/login/", h.Login)
	r.Get("/login/google", h.GoogleLogin)
	r.Get("/oauth-success/", h.OAuthSuccess)
	r.Post("/logout/", h.Logout)

	r.Get("/blog/", h.Blog)
	r.Get("/blog/{id}/", h.BlogPost)

	for route, slug := range handlers.ContentSlugs {
		r.Get(route, h.Content(slug))
	}

	for _, route := range slashRoutes() {
		r.Get(strings.TrimSuffix(route, "/"), redirectTo(route))
	}
}

// slashRoutes lists pages whose canonical URL ends in a slash; the bare form redirects.
func slashRoutes() []string {
	routes := []string{"/shop/", "/cart/", "/checkout/", "/testimonial/", "/login/", "/blog/", "/oauth-success/"}
	for route := range handlers.ContentSlugs {
		routes = append(routes, route)
	}
	return routes
}

func redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dest := target
		if r.URL.RawQuery != "" {
			dest += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, dest, http.StatusMovedPermanently)
	}
}

// assetTrees returns the template and static trees, preferring directories on disk when set.
func assetTrees(assets config.AssetsConfig) (fs.FS, fs.FS, error) {
	templates, err := public.TemplatesFS()
	if err != nil {
		return nil, nil, fmt.Errorf("httpserver: embed templates: %w", err)
	}
	static, err := public.StaticFS()
	if err != nil {
		return nil, nil, fmt.Errorf("httpserver: embed static: %w", err)
	}
	if dir := strings.TrimSpace(assets.TemplatesDir); dir != "" {
		templates = os.DirFS(dir)
	}
	if dir := strings.TrimSpace(assets.StaticDir); dir != "" {
		static = os.DirFS(dir)
	}
	return templates, static, nil
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
