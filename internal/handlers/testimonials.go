package handlers

import (
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/format"
	mw "github.com/Mujtaba-Syed/QnH-Enterprises/internal/middleware"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/pagination"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/reviews"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/view"
)

const (
	testimonialExcerpt = 150
	testimonialTarget  = "#testimonials"
)

// testimonialVariants maps the grid variant to its page size.
var testimonialVariants = map[string]int{
	"grid6": 6,
	"grid9": 9,
}

// TestimonialsView backs the testimonial page and its list fragment.
type TestimonialsView struct {
	Lang    string
	Variant string
	Cards   []TestimonialCard
	Pager   Pager
	Total   int
}

// Empty reports whether there is nothing to show.
func (v *TestimonialsView) Empty() bool {
	return v.Total == 0
}

// TestimonialCard is one rendered review.
type TestimonialCard struct {
	Name    string
	Excerpt string
	Stars   []bool
	Rating  int
	Image   string
	Date    string
}

func (h *Handlers) testimonials(r *http.Request) *TestimonialsView {
	query := r.URL.Query()
	variant := query.Get("variant")
	size, ok := testimonialVariants[variant]
	if !ok {
		variant = ""
		size = h.deps.Storefront.TestimonialPageSize
		if size <= 0 {
			size = testimonialVariants["grid6"]
		}
	}

	list := h.activeReviews(r)
	lang := mw.Lang(r)
	page := pagination.Compute(len(list), size, pagination.ParsePage(query.Get("page")))
	tv := &TestimonialsView{Lang: lang, Variant: variant, Total: len(list)}
	for _, rv := range pagination.Slice(list, page) {
		tv.Cards = append(tv.Cards, newTestimonialCard(rv, lang))
	}
	params := url.Values{}
	if variant != "" {
		params.Set("variant", variant)
	}
	tv.Pager = newPager(page, "/testimonial/", params, testimonialTarget)
	return tv
}

// activeReviews fetches the list on a full page load and remembers it for the visitor's
// session. Pager fragments reuse that list; they only fetch when nothing is remembered.
func (h *Handlers) activeReviews(r *http.Request) []reviews.Review {
	ctx := r.Context()
	var key string
	if sess := currentSession(r); sess != nil {
		key = sess.ID()
	}
	if mw.HTMXFromContext(ctx).Partial() {
		if list, ok := h.snapshots.get(key); ok {
			return list
		}
	}
	list, err := h.deps.Reviews.Active(ctx)
	if err != nil {
		logger(ctx).Warn("load active reviews", zap.Error(err))
		return nil
	}
	h.snapshots.put(key, list)
	return list
}

func newTestimonialCard(rv reviews.Review, lang string) TestimonialCard {
	card := TestimonialCard{
		Name:    rv.Name,
		Excerpt: format.Truncate(rv.Description, testimonialExcerpt),
		Stars:   rv.Rating.Stars(),
		Rating:  int(rv.Rating.Clamp()),
		Image:   rv.Image,
	}
	if ts := format.ParseTimestamp(rv.CreatedAt); !ts.IsZero() {
		card.Date = format.FmtDate(ts, lang)
	}
	return card
}

// Testimonials renders GET /testimonial/. Pager clicks target the list and get the fragment.
func (h *Handlers) Testimonials(w http.ResponseWriter, r *http.Request) {
	tv := h.testimonials(r)
	if info := mw.HTMXFromContext(r.Context()); info.Partial() && "#"+info.Target == testimonialTarget {
		h.renderFragment(w, r, http.StatusOK, view.Part{Name: "testimonial_list", Data: tv})
		return
	}
	vm := h.newPage(r, h.t(r, "testimonial.title"), h.t(r, "testimonial.description"))
	vm.Testimonials = tv
	h.renderPage(w, r, http.StatusOK, "testimonial", vm)
}

// TestimonialPage renders the list fragment for GET /testimonial/page.
func (h *Handlers) TestimonialPage(w http.ResponseWriter, r *http.Request) {
	h.renderFragment(w, r, http.StatusOK, view.Part{Name: "testimonial_list", Data: h.testimonials(r)})
}
