package seo_test

import (
	"encoding/json"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/seo"
)

func TestPageBuildsCanonicalAndTitle(t *testing.T) {
	t.Parallel()

	meta := seo.Page("QnH Enterprises", "https://qnh.example.com/", "/shop/", "Shop", "All products")
	require.Equal(t, "Shop | QnH Enterprises", meta.Title)
	require.Equal(t, "https://qnh.example.com/shop/", meta.Canonical)
	require.Equal(t, meta.Canonical, meta.OG.URL)

	meta = meta.WithImage("https://cdn.example.com/a.jpg")
	require.Equal(t, "https://cdn.example.com/a.jpg", meta.Twitter.Image)

	require.Equal(t, "QnH Enterprises", seo.Page("QnH Enterprises", "", "/", "", "").Title)
	require.Equal(t, "/", seo.Page("QnH Enterprises", "", "/", "", "").Canonical)
}

func TestProductJSONLDIncludesOffer(t *testing.T) {
	t.Parallel()

	var meta seo.Meta
	meta.AddJSONLD(seo.Product(seo.ProductInfo{
		Name:        "Lawn Suit",
		URL:         "https://qnh.example.com/product-detail/3/",
		Price:       "2500.00",
		Currency:    "PKR",
		Rating:      4.5,
		ReviewCount: 2,
	}))
	require.Len(t, meta.JSONLD, 1)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(meta.JSONLD[0]), &payload))
	offer := payload["offers"].(map[string]any)
	require.Equal(t, "2500.00", offer["price"])
	require.Equal(t, "PKR", offer["priceCurrency"])
	require.Contains(t, payload, "aggregateRating")
}

func TestSitemapListsStaticPagesAndProducts(t *testing.T) {
	t.Parallel()

	sm := seo.NewSitemap("https://qnh.example.com")
	sm.AddProducts([]seo.ProductEntry{{ID: 7, UpdatedAt: time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)}})

	var buf strings.Builder
	n, err := sm.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	var doc struct {
		URLs []seo.URL `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal([]byte(buf.String()), &doc))
	require.Len(t, doc.URLs, len(seo.StaticPages)+1)
	require.Equal(t, "https://qnh.example.com/", doc.URLs[0].Loc)
	require.Equal(t, 1.0, doc.URLs[0].Priority)

	last := doc.URLs[len(doc.URLs)-1]
	require.Equal(t, "https://qnh.example.com/product-detail/7/", last.Loc)
	require.Equal(t, "2024-03-09", last.LastMod)
	require.Equal(t, "weekly", last.ChangeFreq)
}
