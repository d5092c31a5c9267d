package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/catalog"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/format"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/seo"
)

const (
	sitemapPageSize = 100
	sitemapMaxPages = 50
)

// BuildSitemap lists the static pages plus every product the catalogue pages through.
func BuildSitemap(ctx context.Context, siteURL string, products catalog.Service) (*seo.Sitemap, error) {
	sm := seo.NewSitemap(siteURL)
	for page := 1; page <= sitemapMaxPages; page++ {
		listing, err := products.Products(ctx, catalog.ListQuery{Page: page, PageSize: sitemapPageSize})
		if err != nil {
			return sm, fmt.Errorf("sitemap: products page %d: %w", page, err)
		}
		entries := make([]seo.ProductEntry, 0, len(listing.Results))
		for _, p := range listing.Results {
			entries = append(entries, seo.ProductEntry{ID: p.ID, UpdatedAt: format.ParseTimestamp(p.UpdatedAt)})
		}
		sm.AddProducts(entries)
		if len(listing.Results) < sitemapPageSize || (listing.Pages > 0 && page >= listing.Pages) {
			break
		}
	}
	return sm, nil
}

// Sitemap serves GET /sitemap.xml. A catalogue failure still yields the static pages.
func (h *Handlers) Sitemap(w http.ResponseWriter, r *http.Request) {
	sm, err := BuildSitemap(r.Context(), h.deps.Storefront.SiteURL, h.deps.Catalog)
	if err != nil {
		logger(r.Context()).Warn("sitemap products", zap.Error(err))
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := sm.WriteTo(w); err != nil {
		logger(r.Context()).Warn("write sitemap", zap.Error(err))
	}
}

// Robots serves GET /robots.txt.
func (h *Handlers) Robots(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	for _, p := range []string{"/cart/", "/checkout/", "/login/", "/guest/", "/oauth-success/"} {
		b.WriteString("Disallow: " + p + "\n")
	}
	b.WriteString("\nSitemap: " + seo.Absolute(h.deps.Storefront.SiteURL, "/sitemap.xml") + "\n")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}
