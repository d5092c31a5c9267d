package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/catalog"
	mw "github.com/Mujtaba-Syed/QnH-Enterprises/internal/middleware"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/pagination"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/view"
)

// Shop messages.
const (
	MessagePriceRange     = "Minimum price cannot be greater than maximum price"
	MessageNoClothing     = "No products found with the selected filters."
	MessageClothingFailed = "Error loading products. Please try again."
)

// openEndedPrice is the quick-price ceiling that stands for "no upper bound".
const openEndedPrice = "1000"

// QuickPrices are the sidebar price buttons.
var QuickPrices = []PriceRange{
	{Label: "Rs.0 - Rs.100", Min: "0", Max: "100"},
	{Label: "Rs.100 - Rs.250", Min: "100", Max: "250"},
	{Label: "Rs.250 - Rs.500", Min: "250", Max: "500"},
	{Label: "Rs.500+", Min: "500", Max: openEndedPrice},
}

// PriceRange is one quick-price option.
type PriceRange struct {
	Label string
	Min   string
	Max   string
}

// Href applies the range to q, keeping search and category and resetting the page.
func (p PriceRange) Href(q ShopQuery) string {
	q.MinPrice = p.Min
	q.MaxPrice = p.Max
	if p.Max == openEndedPrice {
		q.MaxPrice = ""
	}
	return pagination.Link("/shop/", q.Params(), 1)
}

// Selected reports whether q currently uses this range.
func (p PriceRange) Selected(q ShopQuery) bool {
	ceiling := p.Max
	if ceiling == openEndedPrice {
		ceiling = ""
	}
	return q.MinPrice == p.Min && q.MaxPrice == ceiling
}

// ShopQuery is the parsed shop URL.
type ShopQuery struct {
	Search   string
	Category string
	MinPrice string
	MaxPrice string
	Page     int
	PageSize int

	defaultSize int
}

// Filter returns the catalogue filter for the query.
func (q ShopQuery) Filter() catalog.Filter {
	return catalog.Filter{Category: q.Category, MinPrice: q.MinPrice, MaxPrice: q.MaxPrice, Search: q.Search}
}

// Params encodes the query for pagination links. page_size is kept only when it differs from
// the configured default.
func (q ShopQuery) Params() url.Values {
	v := url.Values{}
	for k, val := range map[string]string{
		"search":    q.Search,
		"category":  q.Category,
		"min_price": q.MinPrice,
		"max_price": q.MaxPrice,
	} {
		if val != "" {
			v.Set(k, val)
		}
	}
	if q.PageSize > 0 && q.PageSize != q.defaultSize {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	return v
}

// Active reports whether anything narrows the listing.
func (q ShopQuery) Active() bool {
	return q.Search != "" || q.Filter().Active()
}

// ShopView backs the shop page.
type ShopView struct {
	Lang        string
	Query       ShopQuery
	Products    []catalog.Product
	Total       int
	Pager       Pager
	Categories  []catalog.TypeCount
	Featured    []catalog.Featured
	QuickPrices []PriceRange
	CSRF        string
	// Invalid is set when the price range was rejected.
	Invalid bool
}

// ClothingView backs the clothing filter fragment.
type ClothingView struct {
	Lang     string
	Season   string
	Gender   string
	Products []catalog.Product
	Message  string
	Failed   bool
	CSRF     string
}

func parseShopQuery(values url.Values, defaultSize int) ShopQuery {
	q := ShopQuery{
		Search:   strings.TrimSpace(values.Get("search")),
		Category: strings.TrimSpace(values.Get("category")),
		MinPrice: strings.TrimSpace(values.Get("min_price")),
		MaxPrice: strings.TrimSpace(values.Get("max_price")),
		Page:     pagination.ParsePage(values.Get("page")),
		PageSize: defaultSize,
	}
	if n, err := strconv.Atoi(values.Get("page_size")); err == nil && n > 0 && n <= 48 {
		q.PageSize = n
	}
	if q.PageSize <= 0 {
		q.PageSize = 6
	}
	q.defaultSize = defaultSize
	if q.defaultSize <= 0 {
		q.defaultSize = 6
	}
	return q
}

// invertedRange reports a minimum above the maximum.
func (q ShopQuery) invertedRange() bool {
	if q.MinPrice == "" || q.MaxPrice == "" {
		return false
	}
	lo, errLo := backend.ParsePrice(q.MinPrice)
	hi, errHi := backend.ParsePrice(q.MaxPrice)
	return errLo == nil && errHi == nil && lo > hi
}

// Shop renders GET /shop/. The listing, category counts and featured products load
// concurrently; a failing section renders empty.
func (h *Handlers) Shop(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := parseShopQuery(r.URL.Query(), h.deps.Storefront.ShopPageSize)
	sv := &ShopView{
		Lang:        mw.Lang(r),
		Query:       q,
		QuickPrices: QuickPrices,
		CSRF:        mw.CSRFToken(ctx),
	}

	var listing catalog.Listing
	g, gctx := errgroup.WithContext(ctx)
	if q.invertedRange() {
		sv.Invalid = true
		h.notify().Warning(ctx, MessagePriceRange)
	} else {
		g.Go(func() error {
			var err error
			if q.Filter().Active() {
				listing, err = h.deps.Catalog.FilterProducts(gctx, q.Filter())
			} else {
				listing, err = h.deps.Catalog.Products(gctx, catalog.ListQuery{Page: q.Page, PageSize: q.PageSize, Search: q.Search})
			}
			if err != nil {
				logger(ctx).Warn("load shop products", zap.Error(err))
				listing = catalog.Listing{}
			}
			return nil
		})
	}
	g.Go(func() error {
		counts, err := h.deps.Catalog.TypeCounts(gctx)
		if err != nil {
			logger(ctx).Warn("load product type counts", zap.Error(err))
		}
		sv.Categories = counts
		return nil
	})
	g.Go(func() error {
		featured, err := h.deps.Catalog.Featured(gctx)
		if err != nil {
			logger(ctx).Warn("load featured products", zap.Error(err))
		}
		sv.Featured = featured
		return nil
	})
	_ = g.Wait()

	var page pagination.Page
	if q.Filter().Active() || sv.Invalid {
		page = pagination.Compute(len(listing.Results), q.PageSize, q.Page)
		sv.Products = pagination.Slice(listing.Results, page)
		sv.Total = len(listing.Results)
	} else {
		page = pagination.FromServer(listing.Count, listing.Pages, q.PageSize, q.Page, len(listing.Results))
		sv.Products = listing.Results
		sv.Total = listing.Count
	}
	sv.Pager = newPager(page, "/shop/", q.Params(), "")

	vm := h.newPage(r, h.t(r, "shop.title"), h.t(r, "shop.description"))
	if q.Active() {
		vm.SEO.Robots = "noindex, follow"
	}
	vm.Shop = sv
	h.renderPage(w, r, http.StatusOK, "shop", vm)
}

// ShopClothing renders the clothing filter fragment for ?season= and ?gender=.
func (h *Handlers) ShopClothing(w http.ResponseWriter, r *http.Request) {
	season := strings.TrimSpace(r.URL.Query().Get("season"))
	gender := strings.TrimSpace(r.URL.Query().Get("gender"))
	cv := ClothingView{Lang: mw.Lang(r), Season: season, Gender: gender, CSRF: mw.CSRFToken(r.Context())}

	products, err := h.deps.Catalog.Clothing(r.Context(), season, gender)
	switch {
	case err != nil:
		logger(r.Context()).Warn("load clothing", zap.String("season", season), zap.String("gender", gender), zap.Error(err))
		cv.Failed = true
		cv.Message = MessageClothingFailed
	case len(products) == 0:
		cv.Message = MessageNoClothing
	default:
		cv.Products = products
	}
	h.renderFragment(w, r, http.StatusOK, view.Part{Name: "shop_clothing", Data: cv})
}
