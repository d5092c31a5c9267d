package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/handlers"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/testutil"
)

func TestCartRequiresVisitor(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	v := testutil.NewVisitor(t, ts)

	resp := v.Get("/cart/")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login/?next=%2Fcart%2F", resp.Location())

	resp = v.HTMXGet("/cart/items", "cart-table")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/login/?next=%2Fcart%2Fitems", resp.Header.Get("HX-Redirect"))
}

func TestGuestContinueStartsCart(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	v := testutil.NewVisitor(t, ts)

	resp := v.ContinueAsGuest(1)
	require.Equal(t, "/cart/", resp.Location())

	page := v.Get("/cart/")
	require.Equal(t, http.StatusOK, page.StatusCode)
	require.Equal(t, "no-store", page.Header.Get("Cache-Control"))

	doc := page.Doc(t)
	require.Equal(t, 1, doc.Find(`#cart-table tr[data-product-id="1"]`).Length())
	require.Equal(t, "Lawn Suit", strings.TrimSpace(doc.Find(`#cart-table tbody td a`).Eq(1).Text()))
	require.Equal(t, "Rs.4500.00", doc.Find("#cart-subtotal").Text())
	require.Equal(t, "Rs.3.00", doc.Find("#cart-shipping").Text())
	require.Equal(t, "Rs.4503.00", doc.Find("#cart-total").Text())
	require.Contains(t, doc.Find("#toast-container .toast-success").Text(), handlers.MessageAddedToCart)
	require.Equal(t, "noindex", doc.Find(`meta[name="robots"]`).AttrOr("content", ""))

	// the flash is shown once
	again := v.Get("/cart/").Doc(t)
	require.Zero(t, again.Find("#toast-container .toast").Length())
}

func TestIncreaseAndDecreaseSwapTheTable(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	v := testutil.NewVisitor(t, ts)
	v.ContinueAsGuest(1)
	v.Get("/cart/")

	resp := v.HTMXPost("/cart/items/1/increase", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "cart-updated", resp.Header.Get("HX-Trigger"))

	doc := resp.Doc(t)
	require.Equal(t, "2", doc.Find(`tr[data-product-id="1"] .qty-value`).Text())
	require.Equal(t, "2", doc.Find(`#cart-badge[hx-swap-oob]`).Text())
	require.Contains(t, doc.Find(`#toast-container[hx-swap-oob] .toast-message`).Text(), handlers.MessageQuantityUpdated)
	require.Equal(t, "Rs.9003.00", doc.Find("#cart-total").Text())

	doc = v.HTMXPost("/cart/items/1/decrease", nil).Doc(t)
	require.Equal(t, "1", doc.Find(`tr[data-product-id="1"] .qty-value`).Text())
	_, disabled := doc.Find(`form[hx-post="/cart/items/1/decrease"] button`).Attr("disabled")
	require.False(t, disabled, "decrease stays available at quantity one")

	doc = v.HTMXPost("/cart/items/1/decrease", nil).Doc(t)
	require.Zero(t, doc.Find(`tr[data-product-id="1"]`).Length())
	require.Equal(t, 1, doc.Find("#cart-table .empty-state").Length())
}

func TestRemoveItemAsksForConfirmation(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	v := testutil.NewVisitor(t, ts)
	v.ContinueAsGuest(2)
	v.Get("/cart/")

	resp := v.HTMXPost("/cart/items/2/remove", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "none", resp.Header.Get("HX-Reswap"))

	doc := resp.Doc(t)
	confirm := doc.Find(".toast-confirm")
	require.Equal(t, 1, confirm.Length())
	require.Zero(t, confirm.Find(".toast-progress").Length(), "confirmation waits for an answer")
	require.Contains(t, confirm.Find(".toast-message").Text(), handlers.MessageConfirmRemove)
	form := confirm.Find("form")
	require.Equal(t, "/cart/items/2/remove", form.AttrOr("hx-post", ""))
	require.Equal(t, "#cart-table", form.AttrOr("hx-target", ""))
	require.Equal(t, "1", form.Find(`input[name="confirmed"]`).AttrOr("value", ""))

	// nothing removed yet
	page := v.Get("/cart/").Doc(t)
	require.Equal(t, 1, page.Find(`tr[data-product-id="2"]`).Length())

	doc = v.HTMXPost("/cart/items/2/remove", url.Values{"confirmed": {"1"}}).Doc(t)
	require.Zero(t, doc.Find(`tr[data-product-id="2"]`).Length())
	success := doc.Find(".toast-success")
	require.Contains(t, success.Text(), handlers.MessageItemRemoved)
	require.NotEmpty(t, success.AttrOr("data-duration", ""))
	require.Contains(t, success.Find(".toast-progress").AttrOr("style", ""), "animation-duration: "+success.AttrOr("data-duration", "")+"ms")
}

func TestClearCartWithPlainFormRedirects(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	v := testutil.NewVisitor(t, ts)
	v.ContinueAsGuest(1)
	v.Post("/cart/add", url.Values{"product_id": {"2"}})

	resp := v.Post("/cart/clear", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/cart/", resp.Location())

	doc := v.Get("/cart/").Doc(t)
	require.Equal(t, 1, doc.Find("#cart-table .empty-state").Length())
	require.Contains(t, doc.Find(".toast-success").Text(), handlers.MessageCartCleared)
}

func TestEmptyCartShowsZeroTotals(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	v := testutil.NewVisitor(t, ts)
	v.ContinueAsGuest(1)
	v.Post("/cart/clear", nil)

	doc := v.Get("/cart/").Doc(t)
	require.Equal(t, 1, doc.Find("#cart-table .empty-state").Length())
	require.Equal(t, "0", doc.Find("#cart-count").Text())
	require.Equal(t, "Rs.0.00", doc.Find("#cart-subtotal").Text())
	require.Equal(t, "Rs.0.00", doc.Find("#cart-shipping").Text())
	require.Equal(t, "Rs.0.00", doc.Find("#cart-total").Text())

	proceed := doc.Find("#proceed-checkout")
	require.Equal(t, "button", goquery.NodeName(proceed))
	_, disabled := proceed.Attr("disabled")
	require.True(t, disabled)
}

func TestAddToCartWithoutSessionOffersChoice(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	v := testutil.NewVisitor(t, ts)

	resp := v.Do(http.MethodPost, "/cart/add", url.Values{"product_id": {"3"}, "quantity": {"2"}}, http.Header{
		"HX-Request":     {"true"},
		"HX-Current-URL": {ts.URL + "/shop/?category=clothing"},
		"X-CSRFToken":    {v.CSRF()},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "#modal", resp.Header.Get("HX-Retarget"))
	require.Equal(t, "innerHTML", resp.Header.Get("HX-Reswap"))

	doc := resp.Doc(t)
	form := doc.Find(`form[action="/guest/continue"]`)
	require.Equal(t, "3", form.Find(`input[name="product_id"]`).AttrOr("value", ""))
	require.Equal(t, "2", form.Find(`input[name="quantity"]`).AttrOr("value", ""))
	require.Equal(t, "/login/google", doc.Find(".modal-actions a.btn-google").AttrOr("href", ""))
	login, err := url.Parse(doc.Find(".modal-footnote a.password-login").AttrOr("href", ""))
	require.NoError(t, err)
	require.Equal(t, "/login/", login.Path)
	require.Equal(t, "/shop/?category=clothing", login.Query().Get("next"))

	plain := v.Post("/cart/add", url.Values{"product_id": {"3"}})
	require.Equal(t, http.StatusSeeOther, plain.StatusCode)
	require.Equal(t, "/login/", plain.Location())
}

func TestAddToCartRejectsMissingToken(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	v := testutil.NewVisitor(t, ts)
	v.CSRF()

	resp := v.Do(http.MethodPost, "/cart/add", url.Values{"product_id": {"1"}}, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAddToCartForGuestTriggersBadgeRefresh(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	v := testutil.NewVisitor(t, ts)
	v.ContinueAsGuest(1)

	resp := v.HTMXPost("/product-detail/4/cart", url.Values{"quantity": {"3"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "cart-updated", resp.Header.Get("HX-Trigger"))
	require.Equal(t, "none", resp.Header.Get("HX-Reswap"))

	badge := v.HTMXGet("/cart/badge", "cart-badge").Doc(t)
	require.Equal(t, "4", badge.Find("#cart-badge").Text())
}

func TestCartBadgeIsZeroForAnonymousVisitors(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	v := testutil.NewVisitor(t, ts)

	doc := v.HTMXGet("/cart/badge", "cart-badge").Doc(t)
	require.Equal(t, "0", doc.Find("#cart-badge").Text())
}

func TestApplyCouponOnlyShowsToasts(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	v := testutil.NewVisitor(t, ts)
	v.ContinueAsGuest(1)
	v.Get("/cart/")

	doc := v.HTMXPost("/cart/coupon", url.Values{"coupon_code": {" "}}).Doc(t)
	require.Contains(t, doc.Find(".toast-warning").Text(), handlers.MessageCouponRequired)
	require.Zero(t, doc.Find("#cart-table").Length())

	doc = v.HTMXPost("/cart/coupon", url.Values{"coupon_code": {"EID10"}}).Doc(t)
	require.Contains(t, doc.Find(".toast-info").Text(), handlers.MessageCouponSoon)
}
