package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/catalog"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/format"
	mw "github.com/Mujtaba-Syed/QnH-Enterprises/internal/middleware"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/reviews"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/seo"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/view"
)

const (
	maxReviewUpload = 10 << 20
	priceCurrency  = "PKR"
)

// ProductView backs the product detail page.
type ProductView struct {
	Lang          string
	Product       catalog.Product
	Badge         string
	Gallery       GalleryView
	Reviews       ReviewsView
	Random        RandomView
	CSRF          string
	Authenticated bool
}

// GalleryView is the main image with its thumbnail strip.
type GalleryView struct {
	ProductID  int
	Name       string
	Thumbnails []string
	Active     int
	Main       string
}

// ReviewsView is a product's review list and form state.
type ReviewsView struct {
	Lang          string
	ProductID     int
	Items         []reviews.Review
	CSRF          string
	Authenticated bool
	Error         string
}

// RandomView is the "you may also like" carousel.
type RandomView struct {
	Lang     string
	Products []catalog.Product
	CSRF     string
}

func newGallery(p catalog.Product, index int) GalleryView {
	thumbs := p.Thumbnails()
	if index < 0 || index >= len(thumbs) {
		index = 0
	}
	g := GalleryView{ProductID: p.ID, Name: p.Name, Thumbnails: thumbs, Active: index}
	if len(thumbs) > 0 {
		g.Main = thumbs[index]
	}
	return g
}

// productNotFound reports whether a catalogue error means the product does not exist.
func productNotFound(err error) bool {
	return errors.Is(err, catalog.ErrProductNotFound) || backend.IsNotFound(err)
}

// ProductDetail renders GET /product-detail/{id}/. Reviews and the carousel load alongside
// the product; their failures leave the section empty.
func (h *Handlers) ProductDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	ctx := r.Context()

	var (
		product catalog.Product
		list    []reviews.Review
		random  []catalog.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		product, err = h.deps.Catalog.Product(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		if list, err = h.deps.Reviews.ForProduct(gctx, id); err != nil {
			logger(ctx).Warn("load product reviews", zap.Int("product_id", id), zap.Error(err))
			list = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if random, err = h.deps.Catalog.Random(gctx); err != nil {
			logger(ctx).Warn("load random products", zap.Error(err))
			random = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		if productNotFound(err) {
			h.NotFound(w, r)
			return
		}
		logger(ctx).Error("load product", zap.Int("product_id", id), zap.Error(err))
		h.renderError(w, r, http.StatusBadGateway)
		return
	}

	creds := credentials(r)
	csrf := mw.CSRFToken(ctx)
	lang := mw.Lang(r)
	pv := &ProductView{
		Lang:    lang,
		Product: product,
		Badge:   format.ProductBadge(product.ProductType),
		Gallery: newGallery(product, 0),
		Reviews: ReviewsView{
			Lang:          lang,
			ProductID:     product.ID,
			Items:         list,
			CSRF:          csrf,
			Authenticated: creds.Authenticated(),
		},
		Random:        RandomView{Lang: lang, Products: withoutProduct(random, product.ID), CSRF: csrf},
		CSRF:          csrf,
		Authenticated: creds.Authenticated(),
	}

	cfg := h.deps.Storefront
	vm := h.newPage(r, product.Name, format.Truncate(catalog.PlainText(product.Description), 160))
	vm.SEO = vm.SEO.WithImage(product.Image)
	vm.SEO.OG.Type = "product"
	vm.SEO.AddJSONLD(seo.Product(seo.ProductInfo{
		Name:        product.Name,
		Description: catalog.PlainText(product.Description),
		URL:         seo.Absolute(cfg.SiteURL, r.URL.Path),
		Image:       product.Image,
		SKU:         product.SKU,
		Brand:       firstNonEmpty(product.Brand, cfg.SiteName),
		Price:       product.Price.Decimal(),
		Currency:    priceCurrency,
		Rating:      product.Rating,
		ReviewCount: len(list),
	}))
	vm.Product = pv
	h.renderPage(w, r, http.StatusOK, "product", vm)
}

func withoutProduct(products []catalog.Product, id int) []catalog.Product {
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// ProductGallery renders the gallery fragment with the thumbnail at ?index= active.
func (h *Handlers) ProductGallery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	product, err := h.deps.Catalog.Product(r.Context(), id)
	if err != nil {
		if productNotFound(err) {
			http.NotFound(w, r)
			return
		}
		logger(r.Context()).Warn("load product gallery", zap.Int("product_id", id), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	index, _ := strconv.Atoi(r.URL.Query().Get("index"))
	h.renderFragment(w, r, http.StatusOK, view.Part{Name: "product_gallery", Data: newGallery(product, index)})
}

// RandomProducts renders the carousel fragment.
func (h *Handlers) RandomProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.deps.Catalog.Random(r.Context())
	if err != nil {
		logger(r.Context()).Warn("load random products", zap.Error(err))
	}
	exclude, _ := strconv.Atoi(r.URL.Query().Get("exclude"))
	h.renderFragment(w, r, http.StatusOK, view.Part{Name: "random_products", Data: RandomView{
		Lang:     mw.Lang(r),
		Products: withoutProduct(products, exclude),
		CSRF:     mw.CSRFToken(r.Context()),
	}})
}

// SubmitReview handles the multipart POST /product-detail/{id}/reviews.
func (h *Handlers) SubmitReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	ctx := r.Context()
	creds := credentials(r)
	if !creds.Authenticated() {
		h.notify().Warning(ctx, reviews.MessageLoginRequired)
		mw.Redirect(w, r, mw.LoginPath+"?next="+"/product-detail/"+strconv.Itoa(id)+"/")
		return
	}

	draft, err := reviewDraftFromRequest(r)
	if err == nil {
		err = draft.Validate()
	}
	if err == nil {
		err = h.deps.Reviews.Submit(ctx, creds, id, draft)
	}
	if err != nil {
		msg := reviews.SubmitErrorMessage(err)
		var draftErr reviews.DraftError
		if !errors.As(err, &draftErr) {
			logger(ctx).Warn("submit review", zap.Int("product_id", id), zap.Error(err))
		}
		h.notify().Error(ctx, msg)
		if backend.IsUnauthorized(err) {
			mw.Redirect(w, r, mw.LoginPath)
			return
		}
		h.renderReviews(w, r, id, msg)
		return
	}
	h.notify().Success(ctx, reviews.MessageSubmitted)
	h.renderReviews(w, r, id, "")
}

func (h *Handlers) renderReviews(w http.ResponseWriter, r *http.Request, productID int, problem string) {
	if !mw.IsHTMX(r.Context()) {
		http.Redirect(w, r, "/product-detail/"+strconv.Itoa(productID)+"/", http.StatusSeeOther)
		return
	}
	list, err := h.deps.Reviews.ForProduct(r.Context(), productID)
	if err != nil {
		logger(r.Context()).Warn("reload product reviews", zap.Int("product_id", productID), zap.Error(err))
	}
	h.renderFragment(w, r, http.StatusOK, view.Part{Name: "product_reviews", Data: ReviewsView{
		Lang:          mw.Lang(r),
		ProductID:     productID,
		Items:         list,
		CSRF:          mw.CSRFToken(r.Context()),
		Authenticated: credentials(r).Authenticated(),
		Error:         problem,
	}})
}

// reviewDraftFromRequest reads the review form including up to the permitted image files.
func reviewDraftFromRequest(r *http.Request) (reviews.Draft, error) {
	if err := r.ParseMultipartForm(maxReviewUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return reviews.Draft{}, err
	}
	rating, _ := strconv.Atoi(r.FormValue("rating"))
	draft := reviews.Draft{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Rating:      rating,
	}
	if r.MultipartForm == nil {
		return draft, nil
	}
	for _, fh := range r.MultipartForm.File["images"] {
		upload, err := readUpload(fh)
		if err != nil {
			return reviews.Draft{}, err
		}
		draft.Images = append(draft.Images, upload)
	}
	return draft, nil
}

func readUpload(fh *multipart.FileHeader) (reviews.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return reviews.Upload{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxReviewUpload))
	if err != nil {
		return reviews.Upload{}, err
	}
	return reviews.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
