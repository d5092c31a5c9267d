package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/auth"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/cart"
	mw "github.com/Mujtaba-Syed/QnH-Enterprises/internal/middleware"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/notifications"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/view"
)

// Cart messages.
const (
	MessageQuantityUpdated = "Quantity updated successfully"
	MessageItemRemoved     = "Item removed from cart"
	MessageCartCleared     = "Cart cleared successfully"
	MessageConfirmRemove   = "Are you sure you want to remove this item from your cart?"
	MessageConfirmClear    = "Are you sure you want to clear your entire cart?"
	MessageCouponRequired  = "Please enter a coupon code"
	MessageCouponSoon      = "Coupon functionality coming soon!"
	MessageAddedToCart     = "Product added to cart successfully!"
	MessageAddFailed       = "Failed to add product to cart. Please try again."
)

var (
	loadCartFailure     = failure{op: "cart.load", fallback: "Failed to load cart items", network: "Error loading cart items"}
	updateCartFailure   = failure{op: "cart.update", fallback: "Failed to update quantity", network: "Error updating quantity"}
	removeCartFailure   = failure{op: "cart.remove", fallback: "Failed to remove item", network: "Error removing item"}
	clearCartFailure    = failure{op: "cart.clear", fallback: "Failed to clear cart", network: "Error clearing cart"}
	addToCartFailure    = failure{op: "cart.add", fallback: MessageAddFailed, network: MessageAddFailed}
	cartUpdatedTrigger  = "cart-updated"
	cartTableTarget     = "#cart-table"
	continueModalTarget = "#modal"
)

// CartView backs the cart page and the cart table fragment.
type CartView struct {
	Lang      string
	CSRF      string
	Lines     []CartLine
	Totals    cart.Totals
	Empty     bool
	ItemCount int
	Quantity  int
	// Checkout marks the read-only summary rendered on the checkout page.
	Checkout bool
}

// CartLine is one rendered cart row.
type CartLine struct {
	ProductID int
	Name      string
	Image     string
	Price     backend.Price
	Quantity  int
	Total     backend.Price
	Href      string
}

func newCartView(r *http.Request, snap cart.Snapshot, shipping backend.Price) *CartView {
	v := &CartView{
		Lang:      mw.Lang(r),
		CSRF:      mw.CSRFToken(r.Context()),
		Totals:    snap.Summarize(shipping),
		Empty:     snap.Empty(),
		ItemCount: snap.ItemCount(),
		Quantity:  snap.TotalQuantity,
	}
	for _, item := range snap.Items {
		v.Lines = append(v.Lines, CartLine{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			Image:     item.Product.Image,
			Price:     item.Product.Price,
			Quantity:  item.Quantity,
			Total:     item.LineTotal(),
			Href:      "/product-detail/" + strconv.Itoa(item.Product.ID) + "/",
		})
	}
	return v
}

// loadCart fetches the snapshot. It returns false when the visitor was redirected to login.
// Other failures leave an empty snapshot and an error toast.
func (h *Handlers) loadCart(w http.ResponseWriter, r *http.Request, creds auth.Credentials) (cart.Snapshot, bool) {
	snap, err := h.deps.Cart.Load(r.Context(), creds)
	if err != nil {
		if h.report(w, r, err, loadCartFailure) {
			return cart.Snapshot{}, false
		}
		return cart.Snapshot{}, true
	}
	return snap, true
}

// CartPage renders GET /cart/.
func (h *Handlers) CartPage(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadCart(w, r, credentials(r))
	if !ok {
		return
	}
	vm := h.newPage(r, h.t(r, "cart.title"), h.t(r, "cart.description"))
	vm.SEO.Robots = "noindex"
	vm.Cart = newCartView(r, snap, backend.Price(h.deps.Storefront.CartShipping))
	h.renderPage(w, r, http.StatusOK, "cart", vm)
}

// CartItems renders the cart table fragment.
func (h *Handlers) CartItems(w http.ResponseWriter, r *http.Request) {
	h.renderCartTable(w, r)
}

func (h *Handlers) renderCartTable(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadCart(w, r, credentials(r))
	if !ok {
		return
	}
	cv := newCartView(r, snap, backend.Price(h.deps.Storefront.CartShipping))
	h.renderFragment(w, r, http.StatusOK,
		view.Part{Name: "cart_table", Data: cv},
		view.Part{Name: "cart_badge_oob", Data: snap.TotalQuantity},
	)
}

// afterMutation re-fetches the cart and re-renders it; plain form posts go back to the page.
func (h *Handlers) afterMutation(w http.ResponseWriter, r *http.Request) {
	if !mw.IsHTMX(r.Context()) {
		http.Redirect(w, r, "/cart/", http.StatusSeeOther)
		return
	}
	w.Header().Set("HX-Trigger", cartUpdatedTrigger)
	h.renderCartTable(w, r)
}

// IncreaseItem handles POST /cart/items/{id}/increase.
func (h *Handlers) IncreaseItem(w http.ResponseWriter, r *http.Request) {
	h.mutateLine(w, r, h.deps.Cart.Increase, MessageQuantityUpdated, updateCartFailure)
}

// DecreaseItem handles POST /cart/items/{id}/decrease.
func (h *Handlers) DecreaseItem(w http.ResponseWriter, r *http.Request) {
	h.mutateLine(w, r, h.deps.Cart.Decrease, MessageQuantityUpdated, updateCartFailure)
}

// RemoveItem handles POST /cart/items/{id}/remove. The first post raises a confirm panel;
// the panel's Confirm button posts again with confirmed=1.
func (h *Handlers) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	if needsConfirmation(r) {
		h.askConfirmation(w, r, MessageConfirmRemove, fmt.Sprintf("/cart/items/%d/remove", id), h.t(r, "cart.remove"))
		return
	}
	h.mutateLine(w, r, h.deps.Cart.Remove, MessageItemRemoved, removeCartFailure)
}

// ClearCart handles POST /cart/clear with the same confirmation step as RemoveItem.
func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	if needsConfirmation(r) {
		h.askConfirmation(w, r, MessageConfirmClear, "/cart/clear", h.t(r, "cart.clear"))
		return
	}
	if err := h.deps.Cart.Clear(r.Context(), credentials(r)); err != nil {
		if h.report(w, r, err, clearCartFailure) {
			return
		}
	} else {
		h.notify().Success(r.Context(), MessageCartCleared)
	}
	h.afterMutation(w, r)
}

// ApplyCoupon handles POST /cart/coupon. Coupons are not supported by the backend yet.
func (h *Handlers) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	if strings.TrimSpace(r.PostFormValue("coupon_code")) == "" {
		h.notify().Warning(r.Context(), MessageCouponRequired)
	} else {
		h.notify().Info(r.Context(), MessageCouponSoon)
	}
	if !mw.IsHTMX(r.Context()) {
		http.Redirect(w, r, "/cart/", http.StatusSeeOther)
		return
	}
	h.respondToasts(w, r)
}

func (h *Handlers) mutateLine(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, creds auth.Credentials, productID int) error, success string, f failure) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	if err := op(r.Context(), credentials(r), id); err != nil {
		if h.report(w, r, err, f) {
			return
		}
	} else {
		h.notify().Success(r.Context(), success)
	}
	h.afterMutation(w, r)
}

func (h *Handlers) askConfirmation(w http.ResponseWriter, r *http.Request, message, action, label string) {
	h.notify().Confirm(r.Context(), notifications.Prompt{
		Message:      message,
		Action:       action,
		Target:       cartTableTarget,
		Values:       map[string]string{"confirmed": "1"},
		ConfirmLabel: label,
		CancelLabel:  h.t(r, "common.cancel"),
	})
	h.respondToasts(w, r)
}

// needsConfirmation is true for htmx posts not yet confirmed. Plain form posts come from the
// no-script fallback, where the browser confirm() has already run.
func needsConfirmation(r *http.Request) bool {
	return mw.IsHTMX(r.Context()) && r.PostFormValue("confirmed") != "1"
}

// AddToCart handles POST /cart/add with product_id and optional quantity.
func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PostFormValue("product_id"))
	if err != nil || id <= 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	h.addToCart(w, r, id, formQuantity(r))
}

// ProductAddToCart handles POST /product-detail/{id}/cart.
func (h *Handlers) ProductAddToCart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	h.addToCart(w, r, id, formQuantity(r))
}

func formQuantity(r *http.Request) int {
	qty, err := strconv.Atoi(r.PostFormValue("quantity"))
	if err != nil || qty < 1 {
		return 1
	}
	return qty
}

// ContinueModal backs the "choose how to continue" dialog.
type ContinueModal struct {
	Lang      string
	ProductID int
	Quantity  int
	CSRF      string
	Next      string
}

func (h *Handlers) addToCart(w http.ResponseWriter, r *http.Request, productID, quantity int) {
	creds := credentials(r)
	if !creds.HasSession() {
		if !mw.IsHTMX(r.Context()) {
			h.notify().Info(r.Context(), h.t(r, "cart.choose_login"))
			mw.Redirect(w, r, mw.LoginPath)
			return
		}
		w.Header().Set("HX-Retarget", continueModalTarget)
		w.Header().Set("HX-Reswap", "innerHTML")
		h.renderFragment(w, r, http.StatusOK, view.Part{Name: "continue_modal", Data: ContinueModal{
			Lang:      mw.Lang(r),
			ProductID: productID,
			Quantity:  quantity,
			CSRF:      mw.CSRFToken(r.Context()),
			Next:      currentPath(r),
		}})
		return
	}

	msg, err := h.deps.Cart.Add(r.Context(), creds, productID, quantity)
	if err != nil {
		if h.report(w, r, err, addToCartFailure) {
			return
		}
		h.finishAdd(w, r, false)
		return
	}
	h.notify().Success(r.Context(), firstNonEmpty(msg, MessageAddedToCart))
	h.finishAdd(w, r, true)
}

// currentPath is the local part of the page htmx reports the visitor is on.
func currentPath(r *http.Request) string {
	u, err := url.Parse(r.Header.Get("HX-Current-URL"))
	if err != nil || u.Path == "" {
		return "/"
	}
	return mw.SafeNext(u.RequestURI(), "/")
}

func (h *Handlers) finishAdd(w http.ResponseWriter, r *http.Request, added bool) {
	if !mw.IsHTMX(r.Context()) {
		back(w, r, "/cart/")
		return
	}
	if added {
		w.Header().Set("HX-Trigger", cartUpdatedTrigger)
	}
	h.respondToasts(w, r)
}

// GuestContinue handles POST /guest/continue: it creates a guest token, adds the pending
// product and sends the visitor to the cart.
func (h *Handlers) GuestContinue(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if sess == nil {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	if sess.GuestToken() == "" && sess.AccessToken() == "" {
		sess.SetGuestToken(uuid.NewString())
	}
	creds := auth.Resolve(sess.AccessToken(), sess.GuestToken(), mw.CSRFToken(r.Context()))

	if id, err := strconv.Atoi(r.PostFormValue("product_id")); err == nil && id > 0 {
		msg, err := h.deps.Cart.Add(r.Context(), creds, id, formQuantity(r))
		if err != nil {
			logger(r.Context()).Warn("guest add to cart failed", zap.Error(err))
			h.notify().Error(r.Context(), backend.MessageOr(err, MessageAddFailed))
		} else {
			h.notify().Success(r.Context(), firstNonEmpty(msg, MessageAddedToCart))
		}
	}
	mw.Redirect(w, r, "/cart/")
}

// CartBadge renders the cart count badge; the layout reloads it on the cart-updated event.
func (h *Handlers) CartBadge(w http.ResponseWriter, r *http.Request) {
	creds := credentials(r)
	count := 0
	if creds.HasSession() {
		snap, err := h.deps.Cart.Load(r.Context(), creds)
		if err != nil {
			logger(r.Context()).Debug("cart badge load failed")
		} else {
			count = snap.TotalQuantity
		}
	}
	h.renderFragment(w, r, http.StatusOK, view.Part{Name: "cart_badge", Data: count})
}
