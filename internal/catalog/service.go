// Package catalog reads products, listings and blog posts from the storefront API.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
)

// ErrProductNotFound is returned when the product detail endpoint has no such product.
var ErrProductNotFound = errors.New("catalog: product not found")

// Service reads the product catalogue.
type Service interface {
	// Products lists the catalogue with server-side paging.
	Products(ctx context.Context, q ListQuery) (Listing, error)
	// FilterProducts applies category and price filters; the result is not paged.
	FilterProducts(ctx context.Context, f Filter) (Listing, error)
	// Clothing lists clothing filtered by season and gender ("" or "all" disables a filter).
	Clothing(ctx context.Context, season, gender string) ([]Product, error)
	// Random returns a random selection for the carousel.
	Random(ctx context.Context) ([]Product, error)
	// Product returns one product or ErrProductNotFound.
	Product(ctx context.Context, id int) (Product, error)
	// TypeCounts returns the sidebar category counts.
	TypeCounts(ctx context.Context) ([]TypeCount, error)
	// Featured returns the featured products.
	Featured(ctx context.Context) ([]Featured, error)
	// NewlyAdded returns the latest products.
	NewlyAdded(ctx context.Context) ([]Product, error)
}

// Product is a catalogue entry.
type Product struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	ProductType string         `json:"product_type"`
	SKU         string         `json:"sku"`
	Price       backend.Price  `json:"price"`
	Brand       string         `json:"brand"`
	Image       string         `json:"image"`
	Rating      float64        `json:"rating"`
	Season      string         `json:"season"`
	Gender      string         `json:"gender"`
	Images      Gallery        `json:"images"`
	Attributes  map[string]any `json:"attributes"`
	UpdatedAt   string         `json:"updated_at"`
}

// Featured is a featured-product teaser.
type Featured struct {
	ID                 int     `json:"id"`
	ProductID          int     `json:"product_id"`
	ProductName        string  `json:"product_name"`
	ProductImage       string  `json:"product_image"`
	DiscountPercentage float64 `json:"discount_percentage"`
	DiscountText       string  `json:"discount_text"`
}

// TypeCount is one sidebar category.
type TypeCount struct {
	ProductType string `json:"product_type"`
	Count       int    `json:"count"`
}

// ListQuery pages the full catalogue.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
}

// Filter narrows the catalogue by category and price range. Empty fields are omitted.
type Filter struct {
	Category string
	MinPrice string
	MaxPrice string
	Search   string
}

// Active reports whether any filter beyond search is set.
func (f Filter) Active() bool {
	return f.Category != "" || f.MinPrice != "" || f.MaxPrice != ""
}

// Listing is a product page. Count is the total across pages; Pages is only set for
// server-paged listings.
type Listing struct {
	Results []Product `json:"results"`
	Count   int       `json:"count"`
	Pages   int       `json:"pages"`
}

// GalleryImage is one entry of a product's image set.
type GalleryImage struct {
	Image string `json:"image"`
	Order int    `json:"order"`
}

// Gallery is the product's additional images. The API embeds it either as a JSON array or as
// a JSON-encoded string holding that array.
type Gallery []GalleryImage

// UnmarshalJSON implements json.Unmarshaler. Unparseable content yields an empty gallery.
func (g *Gallery) UnmarshalJSON(data []byte) error {
	*g = ParseGallery(data)
	return nil
}

// ParseGallery decodes a gallery from raw JSON and sorts it by order. Blank entries are
// dropped.
func ParseGallery(data []byte) Gallery {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil
		}
		return ParseGallery([]byte(inner))
	}
	var items []GalleryImage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	out := items[:0]
	for _, item := range items {
		item.Image = strings.TrimSpace(item.Image)
		if item.Image != "" {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	if len(out) == 0 {
		return nil
	}
	return Gallery(out)
}

// Thumbnails returns the gallery, or the main image alone when the gallery is empty.
func (p Product) Thumbnails() []string {
	out := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		out = append(out, img.Image)
	}
	if len(out) == 0 && p.Image != "" {
		out = append(out, p.Image)
	}
	return out
}

// decodeListing accepts {"results": [...], "count": n, "pages": n} or a bare array.
func decodeListing(raw json.RawMessage) (Listing, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Listing{}, nil
	}
	if raw[0] == '[' {
		var items []Product
		if err := json.Unmarshal(raw, &items); err != nil {
			return Listing{}, err
		}
		return Listing{Results: items, Count: len(items), Pages: 1}, nil
	}
	var l Listing
	if err := json.Unmarshal(raw, &l); err != nil {
		return Listing{}, err
	}
	if l.Count == 0 {
		l.Count = len(l.Results)
	}
	return l, nil
}
