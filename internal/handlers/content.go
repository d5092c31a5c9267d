package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/catalog"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/cms"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/format"
	mw "github.com/Mujtaba-Syed/QnH-Enterprises/internal/middleware"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/seo"
)

const postExcerpt = 180

// ContentSlugs are the pages served from embedded markdown, keyed by route.
var ContentSlugs = map[string]string{
	"/about-us/":                "about-us",
	"/contact/":                 "contact",
	"/privacy-policy/":          "privacy-policy",
	"/terms-of-use/":            "terms-of-use",
	"/sales-and-refund-policy/": "sales-and-refund-policy",
}

var postPolicy = bluemonday.UGCPolicy()

// BlogView backs the blog index.
type BlogView struct {
	Lang  string
	Posts []PostCard
}

// PostCard is a blog teaser.
type PostCard struct {
	ID       int
	Title    string
	Excerpt  string
	Image    string
	Author   string
	Date     string
	Href     string
	Keywords []string
}

// PostView backs a blog article.
type PostView struct {
	Lang     string
	Post     catalog.Post
	Body     template.HTML
	Date     string
	Keywords []string
}

// Content returns the handler for a markdown-backed page.
func (h *Handlers) Content(slug string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.deps.Content.Page(r.Context(), slug, mw.Lang(r))
		if err != nil {
			if errors.Is(err, cms.ErrNotFound) {
				h.NotFound(w, r)
				return
			}
			logger(r.Context()).Error("load content page", zap.String("slug", slug), zap.Error(err))
			h.renderError(w, r, http.StatusInternalServerError)
			return
		}
		vm := h.newPage(r, firstNonEmpty(page.SEO.Title, page.Title), firstNonEmpty(page.SEO.Description, page.Summary))
		vm.Title = page.Title
		vm.SEO.Keywords = page.SEO.Keywords
		if page.SEO.OGImage != "" {
			vm.SEO = vm.SEO.WithImage(page.SEO.OGImage)
		}
		vm.Content = &page
		h.renderPage(w, r, http.StatusOK, "content", vm)
	}
}

// Blog renders GET /blog/.
func (h *Handlers) Blog(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	posts, err := h.deps.Blog.Posts(r.Context())
	if err != nil {
		logger(r.Context()).Warn("load blog posts", zap.Error(err))
	}
	bv := &BlogView{Lang: lang}
	for _, p := range posts {
		bv.Posts = append(bv.Posts, PostCard{
			ID:       p.ID,
			Title:    p.Title,
			Excerpt:  p.Excerpt(postExcerpt),
			Image:    p.Image,
			Author:   p.Author,
			Date:     format.FmtDate(format.ParseTimestamp(p.CreatedAt), lang),
			Href:     "/blog/" + strconv.Itoa(p.ID) + "/",
			Keywords: p.KeywordList(),
		})
	}
	vm := h.newPage(r, h.t(r, "blog.title"), h.t(r, "blog.description"))
	vm.Blog = bv
	h.renderPage(w, r, http.StatusOK, "blog", vm)
}

// BlogPost renders GET /blog/{id}/.
func (h *Handlers) BlogPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.NotFound(w, r)
		return
	}
	post, err := h.deps.Blog.Post(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrPostNotFound) || productNotFound(err) {
			h.NotFound(w, r)
			return
		}
		logger(r.Context()).Error("load blog post", zap.Int("post_id", id), zap.Error(err))
		h.renderError(w, r, http.StatusBadGateway)
		return
	}
	lang := mw.Lang(r)
	keywords := post.KeywordList()
	pv := &PostView{
		Lang:     lang,
		Post:     post,
		Body:     template.HTML(postPolicy.Sanitize(post.Content)),
		Date:     format.FmtDate(format.ParseTimestamp(post.CreatedAt), lang),
		Keywords: keywords,
	}

	cfg := h.deps.Storefront
	vm := h.newPage(r, post.Title, post.Excerpt(160))
	vm.SEO.Keywords = keywords
	vm.SEO.OG.Type = "article"
	if post.Image != "" {
		vm.SEO = vm.SEO.WithImage(post.Image)
	}
	vm.SEO.AddJSONLD(seo.Article(post.Title, seo.Absolute(cfg.SiteURL, r.URL.Path), post.Image, post.Author, post.CreatedAt))
	vm.Post = pv
	h.renderPage(w, r, http.StatusOK, "blog_post", vm)
}
