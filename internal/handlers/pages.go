package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/cms"
	mw "github.com/Mujtaba-Syed/QnH-Enterprises/internal/middleware"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/nav"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/notifications"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/seo"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/view"
)

// PageData is the view model for every page using the shared layout.
type PageData struct {
	Title     string
	Lang      string
	SEO       seo.Meta
	Analytics Analytics

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	CSRF        string
	Toasts      []*notifications.Toast
	Visitor     string
	SiteName    string
	WhatsApp    string
	Year        int

	// Per-page view models; one is set per page.
	Home         *HomeView
	Shop         *ShopView
	Product      *ProductView
	Cart         *CartView
	Checkout     *CheckoutView
	Testimonials *TestimonialsView
	Login        *LoginView
	Content      *cms.ContentPage
	Blog         *BlogView
	Post         *PostView
	Error        *ErrorView
}

// ErrorView backs the error page.
type ErrorView struct {
	Status  int
	Heading string
	Message string
}

// newPage starts a page with title and description. Layout fields are filled by renderPage.
func (h *Handlers) newPage(r *http.Request, title, description string) PageData {
	cfg := h.deps.Storefront
	return PageData{
		Title: title,
		SEO:   seo.Page(cfg.SiteName, cfg.SiteURL, r.URL.Path, title, description),
	}
}

// renderPage fills the layout fields and writes the page. Pending toasts are drained into the
// page so they are not carried over as flashes.
func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, status int, page string, vm PageData) {
	cfg := h.deps.Storefront
	vm.Lang = mw.Lang(r)
	vm.Path = r.URL.Path
	vm.Nav = nav.Build(r.URL.Path)
	if vm.Breadcrumbs == nil {
		vm.Breadcrumbs = nav.Breadcrumbs(r.URL.Path, vm.Title)
	}
	vm.CSRF = mw.CSRFToken(r.Context())
	vm.Visitor = credentials(r).Mode().String()
	vm.SiteName = cfg.SiteName
	vm.WhatsApp = cfg.WhatsAppNumber
	vm.Year = h.now().Year()
	vm.Analytics = analyticsFromConfig(cfg)
	if vm.SEO.Title == "" {
		vm.SEO = seo.Page(cfg.SiteName, cfg.SiteURL, r.URL.Path, vm.Title, "")
	}
	vm.Toasts = notifications.FromContext(r.Context()).Drain()

	if err := h.deps.Renderer.Page(w, status, page, vm); err != nil {
		logger(r.Context()).Error("render page", zap.String("page", page), zap.Error(err))
	}
}

// renderFragment writes htmx partials followed by any pending toasts as an out-of-band swap.
func (h *Handlers) renderFragment(w http.ResponseWriter, r *http.Request, status int, parts ...view.Part) {
	if toasts := notifications.FromContext(r.Context()).Drain(); len(toasts) > 0 {
		parts = append(parts, view.Part{Name: "toasts_oob", Data: toasts})
	}
	if len(parts) == 0 {
		w.WriteHeader(status)
		return
	}
	if err := h.deps.Renderer.Fragment(w, status, parts...); err != nil {
		logger(r.Context()).Error("render fragment", zap.String("fragment", parts[0].Name), zap.Error(err))
	}
}

// renderError renders the error page with a status.
func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, status int) {
	heading := h.t(r, "error.heading")
	message := h.t(r, "error.generic")
	if status == http.StatusNotFound {
		heading = h.t(r, "error.not_found")
		message = h.t(r, "error.not_found_message")
	}
	vm := h.newPage(r, heading, message)
	vm.SEO.Robots = "noindex"
	vm.Breadcrumbs = []nav.Crumb{}
	vm.Error = &ErrorView{Status: status, Heading: heading, Message: message}
	h.renderPage(w, r, status, "error", vm)
}

// NotFound renders the 404 page.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound)
}
