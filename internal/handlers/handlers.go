// Package handlers serves the storefront pages and htmx fragments.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/accounts"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/auth"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/cart"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/catalog"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/checkout"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/cms"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/config"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/i18n"
	mw "github.com/Mujtaba-Syed/QnH-Enterprises/internal/middleware"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/notifications"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/observability"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/reviews"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/session"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/status"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/view"
)

// Dependencies are the collaborators injected into the storefront handlers.
type Dependencies struct {
	Storefront config.StorefrontConfig

	Cart     cart.Service
	Orders   checkout.Service
	Accounts accounts.Service
	Catalog  catalog.Service
	Blog     catalog.BlogService
	Reviews  reviews.Service

	Notify   notifications.Service
	Content  *cms.Store
	I18n     *i18n.Bundle
	Renderer *view.Renderer
	// Health backs /healthz?deep=1; nil reports liveness only.
	Health *status.Checker

	// Now defaults to time.Now.
	Now func() time.Time
}

// Handlers holds the storefront HTTP handlers.
type Handlers struct {
	deps      Dependencies
	now       func() time.Time
	snapshots *reviewSnapshots
}

// New validates deps and builds the handlers.
func New(deps Dependencies) (*Handlers, error) {
	missing := []struct {
		name   string
		absent bool
	}{
		{"Cart", deps.Cart == nil},
		{"Orders", deps.Orders == nil},
		{"Accounts", deps.Accounts == nil},
		{"Catalog", deps.Catalog == nil},
		{"Blog", deps.Blog == nil},
		{"Reviews", deps.Reviews == nil},
		{"Notify", deps.Notify == nil},
		{"Content", deps.Content == nil},
		{"I18n", deps.I18n == nil},
		{"Renderer", deps.Renderer == nil},
	}
	for _, m := range missing {
		if m.absent {
			return nil, fmt.Errorf("handlers: %s dependency is required", m.name)
		}
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Handlers{deps: deps, now: now, snapshots: newReviewSnapshots(now)}, nil
}

func (h *Handlers) notify() notifications.Service { return h.deps.Notify }

func (h *Handlers) t(r *http.Request, key string) string {
	return h.deps.I18n.T(mw.Lang(r), key)
}

func credentials(r *http.Request) auth.Credentials {
	return mw.Credentials(r)
}

func currentSession(r *http.Request) *session.Session {
	sess, _ := mw.SessionFromContext(r.Context())
	return sess
}

func logger(ctx context.Context) *zap.Logger {
	return observability.FromContext(ctx)
}

func pathID(r *http.Request, key string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, key))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// failure describes how a backend error is shown to the visitor.
type failure struct {
	op       string
	fallback string
	network  string
}

// report translates a backend error: 401 (or a missing visitor) sends the visitor to the login
// page and returns true; anything else becomes an error toast.
func (h *Handlers) report(w http.ResponseWriter, r *http.Request, err error, f failure) bool {
	ctx := r.Context()
	if errors.Is(err, cart.ErrNoVisitor) || backend.IsUnauthorized(err) {
		logger(ctx).Info("backend rejected visitor", zap.String("op", f.op), zap.Error(err))
		mw.Redirect(w, r, mw.LoginPath)
		return true
	}
	if backend.IsUnavailable(err) {
		logger(ctx).Warn("backend unavailable", zap.String("op", f.op), zap.Error(err))
		h.notify().Error(ctx, firstNonEmpty(f.network, f.fallback))
		return false
	}
	logger(ctx).Warn("backend call failed", zap.String("op", f.op), zap.Error(err))
	h.notify().Error(ctx, backend.MessageOr(err, f.fallback))
	return false
}

// respondToasts answers an htmx action that changes nothing on the page except the toasts.
func (h *Handlers) respondToasts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("HX-Reswap", "none")
	h.renderFragment(w, r, http.StatusOK)
}

// back redirects a non-htmx form post to fallback (or a safe Referer path).
func back(w http.ResponseWriter, r *http.Request, fallback string) {
	target := fallback
	if ref := r.Header.Get("Referer"); ref != "" {
		if u, err := r.URL.Parse(ref); err == nil && u.Host == r.Host {
			target = mw.SafeNext(u.RequestURI(), fallback)
		}
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
