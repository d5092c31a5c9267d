package handlers

import (
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/catalog"
	mw "github.com/Mujtaba-Syed/QnH-Enterprises/internal/middleware"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/seo"
)

const homeNewlyAdded = 8

// HomeView backs the landing page.
type HomeView struct {
	Lang       string
	NewlyAdded []catalog.Product
	Featured   []catalog.Featured
	Clothing   ClothingView
	CSRF       string
}

// Home renders GET /. Every section loads concurrently and renders empty on failure.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lang := mw.Lang(r)
	csrf := mw.CSRFToken(ctx)
	hv := &HomeView{Lang: lang, CSRF: csrf, Clothing: ClothingView{Lang: lang, CSRF: csrf}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		products, err := h.deps.Catalog.NewlyAdded(gctx)
		if err != nil {
			logger(ctx).Warn("load newly added products", zap.Error(err))
			return nil
		}
		if len(products) > homeNewlyAdded {
			products = products[:homeNewlyAdded]
		}
		hv.NewlyAdded = products
		return nil
	})
	g.Go(func() error {
		featured, err := h.deps.Catalog.Featured(gctx)
		if err != nil {
			logger(ctx).Warn("load featured products", zap.Error(err))
			return nil
		}
		hv.Featured = featured
		return nil
	})
	g.Go(func() error {
		clothing, err := h.deps.Catalog.Clothing(gctx, "", "")
		switch {
		case err != nil:
			logger(ctx).Warn("load clothing", zap.Error(err))
			hv.Clothing.Failed = true
			hv.Clothing.Message = MessageClothingFailed
		case len(clothing) == 0:
			hv.Clothing.Message = MessageNoClothing
		default:
			hv.Clothing.Products = clothing
		}
		return nil
	})
	_ = g.Wait()

	cfg := h.deps.Storefront
	vm := h.newPage(r, h.t(r, "home.title"), h.t(r, "home.description"))
	vm.SEO.AddJSONLD(seo.Organization(cfg.SiteName, cfg.SiteURL, seo.Absolute(cfg.SiteURL, "/static/img/logo.svg")))
	vm.SEO.AddJSONLD(seo.WebSite(cfg.SiteName, cfg.SiteURL, seo.Absolute(cfg.SiteURL, "/shop/?search=")))
	vm.Home = hv
	h.renderPage(w, r, http.StatusOK, "home", vm)
}
