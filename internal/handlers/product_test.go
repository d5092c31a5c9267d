package handlers_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/catalog"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/reviews"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/testutil"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func TestProductDetailPage(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	v := testutil.NewVisitor(t, ts)

	resp := v.Get("/product-detail/1/")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := resp.Doc(t)
	require.Equal(t, "Lawn Suit", doc.Find(".product-info h1").Text())
	require.Equal(t, "Rs.4500.00", doc.Find(".product-info .price").Text())
	require.Equal(t, "/product-detail/1/cart", doc.Find(".add-to-cart").AttrOr("hx-post", ""))
	require.Equal(t, "/media/lawn.jpg", doc.Find("#product-gallery .gallery-main img").AttrOr("src", ""))
	require.Zero(t, doc.Find(".gallery-thumbs").Length())

	require.Equal(t, "product", doc.Find(`meta[property="og:type"]`).AttrOr("content", ""))
	require.Equal(t, "https://shop.example.com/product-detail/1/", doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))
	jsonld := doc.Find(`script[type="application/ld+json"]`).Text()
	require.Contains(t, jsonld, `"@type":"Product"`)
	require.Contains(t, jsonld, `"price":"4500.00"`)

	require.Equal(t, []string{"2", "3", "4"}, productIDs(doc.Find("#random-products")))
	login := doc.Find("#product-reviews a").AttrOr("href", "")
	require.True(t, strings.HasPrefix(login, "/login/?next="), login)
	require.Zero(t, doc.Find("#product-reviews form").Length())
}

func TestProductDetailNotFound(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	v := testutil.NewVisitor(t, ts)

	for _, path := range []string{"/product-detail/99/", "/product-detail/abc/", "/product-detail/0/"} {
		resp := v.Get(path)
		require.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		doc := resp.Doc(t)
		require.Equal(t, "404", doc.Find(".status-code").Text(), path)
		require.Equal(t, "noindex", doc.Find(`meta[name="robots"]`).AttrOr("content", ""), path)
	}
}

func TestProductGallerySwitchesImage(t *testing.T) {
	t.Parallel()

	product := catalog.Product{
		ID:    7,
		Name:  "Silk Dupatta",
		Price: backend.Price(150000),
		Image: "/media/dupatta.jpg",
		Images: catalog.Gallery{
			{Image: "/media/dupatta-1.jpg", Order: 1},
			{Image: "/media/dupatta-2.jpg", Order: 2},
		},
	}
	ts := testutil.NewServer(t, testutil.WithCatalog(catalog.NewStaticService(product)))
	v := testutil.NewVisitor(t, ts)

	page := v.Get("/product-detail/7/").Doc(t)
	require.Equal(t, 2, page.Find(".gallery-thumbs button").Length())
	require.Equal(t, "/media/dupatta-1.jpg", page.Find(".gallery-main img").AttrOr("src", ""))

	doc := v.HTMXGet("/product-detail/7/gallery?index=1", "product-gallery").Doc(t)
	require.Equal(t, "/media/dupatta-2.jpg", doc.Find(".gallery-main img").AttrOr("src", ""))
	active := doc.Find(".thumb-btn.active")
	require.Equal(t, 1, active.Length())
	require.Equal(t, "/product-detail/7/gallery?index=1", active.AttrOr("hx-get", ""))

	// out of range falls back to the first image
	doc = v.HTMXGet("/product-detail/7/gallery?index=5", "product-gallery").Doc(t)
	require.Equal(t, "/media/dupatta-1.jpg", doc.Find(".gallery-main img").AttrOr("src", ""))

	resp := v.HTMXGet("/product-detail/8/gallery", "product-gallery")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRandomProductsExcludesCurrent(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	v := testutil.NewVisitor(t, ts)

	doc := v.HTMXGet("/products/random?exclude=3", "").Doc(t)
	require.Equal(t, 1, doc.Find("#random-products").Length())
	require.Equal(t, []string{"1", "2", "4"}, productIDs(doc.Selection))
}

func TestReviewRequiresLogin(t *testing.T) {
	t.Parallel()

	store := reviews.NewStaticService()
	ts := testutil.NewServer(t, testutil.WithReviews(store))
	v := testutil.NewVisitor(t, ts)

	resp := v.HTMXPost("/product-detail/1/reviews", url.Values{"name": {"Sana"}, "description": {"Lovely"}, "rating": {"5"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/login/?next=/product-detail/1/", resp.Header.Get("HX-Redirect"))

	list, err := store.ForProduct(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, list)

	// the warning is flashed on the next page
	doc := v.Get("/login/?next=/product-detail/1/").Doc(t)
	require.Contains(t, doc.Find(".toast-warning").Text(), reviews.MessageLoginRequired)
	require.Equal(t, "/product-detail/1/", doc.Find(`#login-panel input[name="next"]`).AttrOr("value", ""))
}

func TestSubmitReviewWithImage(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	v := testutil.NewVisitor(t, ts)
	v.Login(testutil.Username, testutil.Password)

	page := v.Get("/product-detail/2/").Doc(t)
	form := page.Find("#product-reviews form")
	require.Equal(t, "multipart/form-data", form.AttrOr("hx-encoding", ""))

	resp := v.HTMXUpload("/product-detail/2/reviews",
		url.Values{"name": {"<b>Sana</b>"}, "description": {"Lasts all day."}, "rating": {"4"}},
		testutil.File{Field: "images", Name: "bottle.png", ContentType: "image/png", Data: pngHeader},
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := resp.Doc(t)
	review := doc.Find("#product-reviews .review")
	require.Equal(t, 1, review.Length())
	require.Equal(t, "Sana", review.Find("strong").Text())
	require.Equal(t, 4, review.Find(".fa-star").Length())
	require.Contains(t, doc.Find(".toast-success").Text(), reviews.MessageSubmitted)
}

func TestSubmitReviewValidation(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	v := testutil.NewVisitor(t, ts)
	v.Login(testutil.Username, testutil.Password)

	doc := v.HTMXPost("/product-detail/2/reviews", url.Values{"name": {"Sana"}, "description": {"Nice"}, "rating": {"0"}}).Doc(t)
	require.Equal(t, reviews.ErrRatingRange.Error(), doc.Find("#product-reviews .field-error").Text())
	require.Zero(t, doc.Find("#product-reviews .review").Length())

	doc = v.HTMXUpload("/product-detail/2/reviews",
		url.Values{"name": {"Sana"}, "description": {"Nice"}, "rating": {"5"}},
		testutil.File{Field: "images", Name: "notes.png", ContentType: "image/png", Data: []byte("plain text pretending")},
	).Doc(t)
	require.Equal(t, reviews.ErrNotImage.Error(), doc.Find("#product-reviews .field-error").Text())
	require.Contains(t, doc.Find(".toast-error").Text(), reviews.ErrNotImage.Error())
}

func TestSubmitReviewSurfacesEligibility(t *testing.T) {
	t.Parallel()

	store := reviews.NewStaticService()
	store.SubmitErr = &backend.Error{Status: http.StatusForbidden}
	ts := testutil.NewServer(t, testutil.WithReviews(store))
	v := testutil.NewVisitor(t, ts)
	v.Login(testutil.Username, testutil.Password)

	doc := v.HTMXPost("/product-detail/1/reviews", url.Values{"name": {"Sana"}, "description": {"Nice"}, "rating": {"5"}}).Doc(t)
	require.Equal(t, reviews.MessageNotEligible, doc.Find("#product-reviews .field-error").Text())
}
