package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
)

// StaticService serves a fixed catalogue from memory.
type StaticService struct {
	products []Product
	featured []Featured
	posts    []Post
}

// NewStaticService returns a catalogue over the given products.
func NewStaticService(products ...Product) *StaticService {
	return &StaticService{products: products}
}

// WithFeatured sets the featured list.
func (s *StaticService) WithFeatured(items ...Featured) *StaticService {
	s.featured = items
	return s
}

// WithPosts sets the blog posts.
func (s *StaticService) WithPosts(posts ...Post) *StaticService {
	s.posts = posts
	return s
}

// Products implements Service.
func (s *StaticService) Products(_ context.Context, q ListQuery) (Listing, error) {
	matched := s.match(Filter{Search: q.Search})
	size := q.PageSize
	if size <= 0 {
		size = len(matched)
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	pages := 0
	if size > 0 {
		pages = (len(matched) + size - 1) / size
	}
	start := (page - 1) * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	return Listing{Results: matched[start:end], Count: len(matched), Pages: pages}, nil
}

// FilterProducts implements Service.
func (s *StaticService) FilterProducts(_ context.Context, f Filter) (Listing, error) {
	matched := s.match(f)
	return Listing{Results: matched, Count: len(matched)}, nil
}

// Clothing implements Service.
func (s *StaticService) Clothing(_ context.Context, season, gender string) ([]Product, error) {
	var out []Product
	for _, p := range s.products {
		if p.ProductType != "clothing" {
			continue
		}
		if season != "" && season != "all" && !strings.EqualFold(p.Season, season) {
			continue
		}
		if gender != "" && gender != "all" && !strings.EqualFold(p.Gender, gender) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Random implements Service. The order is fixed so that tests stay deterministic.
func (s *StaticService) Random(context.Context) ([]Product, error) {
	n := len(s.products)
	if n > 8 {
		n = 8
	}
	return append([]Product(nil), s.products[:n]...), nil
}

// Product implements Service.
func (s *StaticService) Product(_ context.Context, id int) (Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

// TypeCounts implements Service.
func (s *StaticService) TypeCounts(context.Context) ([]TypeCount, error) {
	counts := map[string]int{}
	for _, p := range s.products {
		counts[p.ProductType]++
	}
	out := make([]TypeCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, TypeCount{ProductType: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductType < out[j].ProductType })
	return out, nil
}

// Featured implements Service.
func (s *StaticService) Featured(context.Context) ([]Featured, error) {
	return append([]Featured(nil), s.featured...), nil
}

// NewlyAdded implements Service.
func (s *StaticService) NewlyAdded(context.Context) ([]Product, error) {
	out := append([]Product(nil), s.products...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Posts implements BlogService.
func (s *StaticService) Posts(context.Context) ([]Post, error) {
	return append([]Post(nil), s.posts...), nil
}

// Post implements BlogService.
func (s *StaticService) Post(_ context.Context, id int) (Post, error) {
	for _, p := range s.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return Post{}, ErrPostNotFound
}

func (s *StaticService) match(f Filter) []Product {
	minPrice, _ := backend.ParsePrice(f.MinPrice)
	maxPrice, _ := backend.ParsePrice(f.MaxPrice)
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []Product
	for _, p := range s.products {
		if f.Category != "" && p.ProductType != f.Category {
			continue
		}
		if f.MinPrice != "" && p.Price < minPrice {
			continue
		}
		if f.MaxPrice != "" && p.Price > maxPrice {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Description), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}
