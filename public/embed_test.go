package public_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/cms"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/i18n"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/notifications"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/view"
	"github.com/Mujtaba-Syed/QnH-Enterprises/public"
)

func TestTemplatesParseWithEveryPage(t *testing.T) {
	t.Parallel()

	locales, err := public.LocalesFS()
	require.NoError(t, err)
	bundle, err := i18n.Load(locales, ".", "en", []string{"en", "ur"})
	require.NoError(t, err)

	templates, err := public.TemplatesFS()
	require.NoError(t, err)
	r, err := view.New(templates, view.WithFuncs(view.TranslateFuncs(bundle)))
	require.NoError(t, err)

	for _, page := range []string{"home", "shop", "product", "cart", "checkout", "testimonial", "login", "content", "blog", "blog_post", "error"} {
		require.True(t, r.Has(page), page)
	}

	rec := httptest.NewRecorder()
	toast := &notifications.Toast{ID: "toast-1", Kind: notifications.KindSuccess, Title: "Success", Message: "Saved"}
	require.NoError(t, r.Fragment(rec, http.StatusOK,
		view.Part{Name: "cart_badge_oob", Data: 3},
		view.Part{Name: "toasts_oob", Data: []*notifications.Toast{toast}},
	))
	body := rec.Body.String()
	require.Contains(t, body, `hx-swap-oob="true"`)
	require.Contains(t, body, `id="toast-1"`)
	require.Contains(t, body, "Saved")
}

func TestLocalesCoverBothLanguages(t *testing.T) {
	t.Parallel()

	locales, err := public.LocalesFS()
	require.NoError(t, err)
	bundle, err := i18n.Load(locales, ".", "en", []string{"en", "ur"})
	require.NoError(t, err)

	require.Equal(t, "Place Order on WhatsApp", bundle.T("en", "checkout.place_order"))
	require.NotEqual(t, bundle.T("en", "cart.title"), bundle.T("ur", "cart.title"))
	// untranslated keys fall back to English
	require.Equal(t, bundle.T("en", "shop.invalid_range"), bundle.T("ur", "shop.invalid_range"))
}

func TestContentPagesRender(t *testing.T) {
	t.Parallel()

	content, err := public.ContentFS()
	require.NoError(t, err)
	store := cms.NewStore(content, "en")

	for _, slug := range []string{"about-us", "contact", "privacy-policy", "terms-of-use", "sales-and-refund-policy"} {
		page, err := store.Page(context.Background(), slug, "en")
		require.NoError(t, err, slug)
		require.NotEmpty(t, page.Title, slug)
		require.True(t, strings.Contains(string(page.Body), "<h1"), slug)
	}

	refunds, err := store.Page(context.Background(), "sales-and-refund-policy", "en")
	require.NoError(t, err)
	require.NotNil(t, refunds.Banner)
	require.False(t, refunds.EffectiveDate.IsZero())

	about, err := store.Page(context.Background(), "about-us", "ur")
	require.NoError(t, err)
	require.Equal(t, "ur", about.Lang)
}
