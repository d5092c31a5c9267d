package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
)

const productsPrefix = "/api/products/"

// HTTPService implements Service (and BlogService) against the storefront API. Relative media
// paths in responses are made absolute against the API origin.
type HTTPService struct {
	client *backend.Client
}

// NewHTTPService constructs a catalogue service using the shared backend client.
func NewHTTPService(client *backend.Client) *HTTPService {
	return &HTTPService{client: client}
}

// Products implements Service.
func (s *HTTPService) Products(ctx context.Context, q ListQuery) (Listing, error) {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		params.Set("search", search)
	}
	return s.listing(ctx, "catalog.products", productsPrefix+"get-all-products/", params)
}

// FilterProducts implements Service.
func (s *HTTPService) FilterProducts(ctx context.Context, f Filter) (Listing, error) {
	params := url.Values{}
	setIf(params, "product_type", f.Category)
	setIf(params, "min_price", f.MinPrice)
	setIf(params, "max_price", f.MaxPrice)
	setIf(params, "search", f.Search)
	return s.listing(ctx, "catalog.filter_products", productsPrefix+"filter-products/", params)
}

// Clothing implements Service.
func (s *HTTPService) Clothing(ctx context.Context, season, gender string) ([]Product, error) {
	params := url.Values{"product_type": {"clothing"}}
	if season = strings.TrimSpace(season); season != "" && season != "all" {
		params.Set("season", season)
	}
	if gender = strings.TrimSpace(gender); gender != "" && gender != "all" {
		params.Set("gender", gender)
	}
	l, err := s.listing(ctx, "catalog.clothing", productsPrefix+"filter/", params)
	if err != nil {
		return nil, err
	}
	return l.Results, nil
}

// Random implements Service.
func (s *HTTPService) Random(ctx context.Context) ([]Product, error) {
	l, err := s.listing(ctx, "catalog.random", productsPrefix+"random/", nil)
	if err != nil {
		return nil, err
	}
	return l.Results, nil
}

// Product implements Service.
func (s *HTTPService) Product(ctx context.Context, id int) (Product, error) {
	var p Product
	err := s.client.Do(ctx, backend.Request{
		Operation: "catalog.product",
		Path:      fmt.Sprintf("%sproduct-detail/%d/", productsPrefix, id),
	}, &p)
	if backend.IsNotFound(err) {
		return Product{}, ErrProductNotFound
	}
	if err != nil {
		return Product{}, err
	}
	if p.ID == 0 {
		return Product{}, ErrProductNotFound
	}
	s.absolutize(&p)
	return p, nil
}

// TypeCounts implements Service.
func (s *HTTPService) TypeCounts(ctx context.Context) ([]TypeCount, error) {
	var out []TypeCount
	if err := s.client.Do(ctx, backend.Request{
		Operation: "catalog.type_counts",
		Path:      productsPrefix + "get-product-type-count/",
	}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Featured implements Service.
func (s *HTTPService) Featured(ctx context.Context) ([]Featured, error) {
	var out []Featured
	if err := s.client.Do(ctx, backend.Request{
		Operation: "catalog.featured",
		Path:      productsPrefix + "get-featured-products/",
	}, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].ProductImage = s.client.AbsoluteMedia(out[i].ProductImage)
	}
	return out, nil
}

// NewlyAdded implements Service.
func (s *HTTPService) NewlyAdded(ctx context.Context) ([]Product, error) {
	l, err := s.listing(ctx, "catalog.newly_added", productsPrefix+"get-newly-added-products/", nil)
	if err != nil {
		return nil, err
	}
	return l.Results, nil
}

func (s *HTTPService) listing(ctx context.Context, op, path string, params url.Values) (Listing, error) {
	var raw json.RawMessage
	if err := s.client.Do(ctx, backend.Request{Operation: op, Path: path, Query: params}, &raw); err != nil {
		return Listing{}, err
	}
	l, err := decodeListing(raw)
	if err != nil {
		return Listing{}, fmt.Errorf("catalog: decode %s: %w", op, err)
	}
	for i := range l.Results {
		s.absolutize(&l.Results[i])
	}
	return l, nil
}

func (s *HTTPService) absolutize(p *Product) {
	p.Image = s.client.AbsoluteMedia(p.Image)
	for i := range p.Images {
		p.Images[i].Image = s.client.AbsoluteMedia(p.Images[i].Image)
	}
}

func setIf(v url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		v.Set(key, value)
	}
}
