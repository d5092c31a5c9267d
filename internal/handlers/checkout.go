package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/accounts"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/auth"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/cart"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/checkout"
	mw "github.com/Mujtaba-Syed/QnH-Enterprises/internal/middleware"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/view"
)

const openWhatsAppEvent = "open-whatsapp"

// CheckoutView backs the checkout page and its form fragment.
type CheckoutView struct {
	Lang   string
	Draft  checkout.Draft
	Errors checkout.FieldErrors
	Cart   *CartView
	CSRF   string
	Guest  bool
	// IdempotencyKey is rendered into the form and sent with the order.
	IdempotencyKey string
	// Set once the order is stored.
	OrderNumber  string
	WhatsAppLink string
}

// CanOrder reports whether the order button is enabled.
func (v *CheckoutView) CanOrder() bool {
	return v.Cart != nil && !v.Cart.Empty
}

func (h *Handlers) newCheckoutView(r *http.Request, draft checkout.Draft, snap cart.Snapshot, key string) *CheckoutView {
	cv := newCartView(r, snap, backend.Price(h.deps.Storefront.CheckoutShipping))
	cv.Checkout = true
	if draft.Country == "" {
		draft.Country = firstNonEmpty(h.deps.Storefront.DefaultCountry, checkout.DefaultCountry)
	}
	if key == "" {
		key = checkout.NewIdempotencyKey(h.now())
	}
	return &CheckoutView{
		Lang:  mw.Lang(r),
		Draft: draft,
		Cart:  cv,
		CSRF:  mw.CSRFToken(r.Context()),
		Guest: credentials(r).Mode() == auth.ModeGuest,

		IdempotencyKey: key,
	}
}

// CheckoutPage renders GET /checkout/.
func (h *Handlers) CheckoutPage(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadCart(w, r, credentials(r))
	if !ok {
		return
	}
	vm := h.newPage(r, h.t(r, "checkout.title"), h.t(r, "checkout.description"))
	vm.SEO.Robots = "noindex"
	vm.Checkout = h.newCheckoutView(r, checkout.Draft{}, snap, "")
	h.renderPage(w, r, http.StatusOK, "checkout", vm)
}

// PlaceOrder handles POST /checkout/order: validate, promote a guest, create the order and
// hand the visitor the WhatsApp link.
func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	draft := checkout.DraftFromForm(r.PostForm)
	key := checkout.IdempotencyKeyFromForm(r.PostForm, h.now())
	creds := credentials(r)

	snap, ok := h.loadCart(w, r, creds)
	if !ok {
		return
	}
	if snap.Empty() {
		h.notify().Error(ctx, checkout.MessageEmptyCart)
		h.renderCheckoutForm(w, r, h.newCheckoutView(r, draft, snap, key), http.StatusOK)
		return
	}
	if errs := draft.Validate(); errs != nil {
		h.notify().Error(ctx, checkout.MessageInvalidForm)
		vm := h.newCheckoutView(r, draft, snap, key)
		vm.Errors = errs
		h.renderCheckoutForm(w, r, vm, http.StatusOK)
		return
	}
	draft = draft.Normalized()

	if creds.Mode() == auth.ModeGuest {
		promoted, ok := h.promoteGuest(w, r, draft, creds)
		if !ok {
			h.renderCheckoutForm(w, r, h.newCheckoutView(r, draft, snap, key), http.StatusOK)
			return
		}
		creds = promoted
	}

	order, err := h.deps.Orders.CreateOrder(ctx, creds, checkout.OrderRequest{
		Draft:          draft,
		Items:          snap.Lines(),
		IdempotencyKey: key,
	})
	if err != nil {
		if backend.IsUnauthorized(err) {
			mw.Redirect(w, r, mw.LoginPath)
			return
		}
		logger(ctx).Warn("create order failed", zap.Error(err))
		h.notify().Error(ctx, checkout.ErrorMessage(err))
		h.renderCheckoutForm(w, r, h.newCheckoutView(r, draft, snap, key), http.StatusOK)
		return
	}

	link := checkout.WhatsAppLink(h.deps.Storefront.WhatsAppNumber, checkout.Summary(draft, snap, order.OrderNumber))
	logger(ctx).Info("order created", zap.String("order_number", order.OrderNumber), zap.Int("lines", snap.ItemCount()))
	h.notify().Success(ctx, checkout.SuccessMessage(order.OrderNumber))

	vm := h.newCheckoutView(r, draft, snap, key)
	vm.OrderNumber = order.OrderNumber
	vm.WhatsAppLink = link
	if mw.IsHTMX(ctx) {
		trigger, _ := json.Marshal(map[string]any{openWhatsAppEvent: map[string]string{"url": link}})
		w.Header().Set("HX-Trigger", string(trigger))
		h.renderFragment(w, r, http.StatusOK, view.Part{Name: "checkout_confirmation", Data: vm})
		return
	}
	page := h.newPage(r, h.t(r, "checkout.title"), "")
	page.SEO.Robots = "noindex"
	page.Checkout = vm
	h.renderPage(w, r, http.StatusOK, "checkout", page)
}

// promoteGuest registers the guest with the checkout contact details and swaps the session
// tokens. On failure it queues the error toast and reports false.
func (h *Handlers) promoteGuest(w http.ResponseWriter, r *http.Request, draft checkout.Draft, creds auth.Credentials) (auth.Credentials, bool) {
	ctx := r.Context()
	sess := currentSession(r)
	if sess == nil || sess.GuestToken() == "" {
		h.notify().Error(ctx, accounts.MessageGuestMissing)
		return creds, false
	}
	tokens, err := h.deps.Accounts.PromoteGuest(ctx, accounts.Promotion{
		Email:      draft.Email,
		Phone:      draft.Mobile,
		FirstName:  draft.FirstName,
		LastName:   draft.LastName,
		GuestToken: sess.GuestToken(),
	}, creds.CSRF)
	if err != nil {
		logger(ctx).Warn("guest promotion failed", zap.Error(err))
		h.notify().Error(ctx, accounts.PromotionErrorMessage(err))
		return creds, false
	}
	sess.Promote(tokens.Access, tokens.Refresh)
	h.notify().Success(ctx, firstNonEmpty(tokens.Message, accounts.MessageAccountCreated))
	return auth.Resolve(tokens.Access, "", creds.CSRF), true
}

// renderCheckoutForm re-renders the form for htmx posts, or the whole page otherwise.
func (h *Handlers) renderCheckoutForm(w http.ResponseWriter, r *http.Request, vm *CheckoutView, status int) {
	if mw.IsHTMX(r.Context()) {
		h.renderFragment(w, r, status, view.Part{Name: "checkout_form", Data: vm})
		return
	}
	page := h.newPage(r, h.t(r, "checkout.title"), "")
	page.SEO.Robots = "noindex"
	page.Checkout = vm
	h.renderPage(w, r, status, "checkout", page)
}
