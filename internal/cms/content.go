package cms

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no page exists for a slug in any candidate language.
var ErrNotFound = errors.New("cms: not found")

// ContentPage represents a localized static page sourced from embedded markdown.
type ContentPage struct {
	Slug          string
	Lang          string
	Title         string
	Summary       string
	Body          template.HTML
	Format        string // "markdown" (default) or "html"
	EffectiveDate time.Time
	UpdatedAt     time.Time
	Banner        *ContentBanner
	SEO           ContentSEO
}

// ContentSEO holds optional metadata overrides for static pages.
type ContentSEO struct {
	Title       string
	Description string
	OGImage     string
	Keywords    []string
}

// ContentBanner models an optional banner/alert displayed above the body.
type ContentBanner struct {
	Variant  string
	Title    string
	Message  string
	LinkText string
	LinkURL  string
}

type contentFrontMatter struct {
	Title         string                    `yaml:"title"`
	Summary       string                    `yaml:"summary"`
	Lang          string                    `yaml:"lang"`
	Format        string                    `yaml:"format"`
	EffectiveDate string                    `yaml:"effective_date"`
	UpdatedAt     string                    `yaml:"updated_at"`
	SEO           contentFrontMatterSEO     `yaml:"seo"`
	Banner        *contentFrontMatterBanner `yaml:"banner"`
}

type contentFrontMatterSEO struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	OGImage     string   `yaml:"og_image"`
	Keywords    []string `yaml:"keywords"`
}

type contentFrontMatterBanner struct {
	Variant  string `yaml:"variant"`
	Title    string `yaml:"title"`
	Message  string `yaml:"message"`
	LinkText string `yaml:"link_text"`
	LinkURL  string `yaml:"link_url"`
}

const (
	defaultContentFormat = "markdown"
	defaultCacheTTL      = 5 * time.Minute
)

// Store serves content pages from a filesystem laid out as <lang>/<slug>.md.
type Store struct {
	fsys     fs.FS
	fallback string
	md       goldmark.Markdown
	policy   *bluemonday.Policy

	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]contentCacheEntry
}

type contentCacheEntry struct {
	page    ContentPage
	expires time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithCacheTTL overrides how long rendered pages are kept. Zero disables caching.
func WithCacheTTL(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.ttl = d
		}
	}
}

// WithClock sets the time source used for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore builds a Store over fsys. Pages missing in the requested language fall back to
// fallbackLang.
func NewStore(fsys fs.FS, fallbackLang string, opts ...Option) *Store {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id").Matching(bluemonday.SpaceSeparatedTokens).OnElements("h2", "h3", "h4")
	s := &Store{
		fsys:     fsys,
		fallback: normalizeLang(fallbackLang),
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		policy: policy,
		ttl:    defaultCacheTTL,
		now:    time.Now,
		items:  map[string]contentCacheEntry{},
	}
	if s.fallback == "" {
		s.fallback = "en"
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Page returns the rendered page for slug, preferring lang.
func (s *Store) Page(ctx context.Context, slug, lang string) (ContentPage, error) {
	if err := ctx.Err(); err != nil {
		return ContentPage{}, err
	}
	slug = sanitizeSlug(slug)
	if slug == "" {
		return ContentPage{}, ErrNotFound
	}
	lang = normalizeLang(lang)

	cacheKey := lang + "|" + slug
	if page, ok := s.cached(cacheKey); ok {
		return page, nil
	}

	priority := []string{lang}
	if lang != s.fallback {
		priority = append(priority, s.fallback)
	}
	for _, candidate := range priority {
		if candidate == "" {
			continue
		}
		page, err := s.read(slug, candidate)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return ContentPage{}, err
		}
		s.store(cacheKey, page)
		return cloneContentPage(page), nil
	}
	return ContentPage{}, ErrNotFound
}

// Slugs lists the pages available in the fallback language.
func (s *Store) Slugs() ([]string, error) {
	entries, err := fs.ReadDir(s.fsys, s.fallback)
	if err != nil {
		return nil, fmt.Errorf("cms: list %s: %w", s.fallback, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".md" {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), ".md"))
	}
	return out, nil
}

func (s *Store) read(slug, lang string) (ContentPage, error) {
	file := path.Join(lang, slug+".md")
	data, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ContentPage{}, ErrNotFound
		}
		return ContentPage{}, err
	}
	fm, body := splitFrontMatter(string(data))
	front := contentFrontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return ContentPage{}, fmt.Errorf("cms: parse front matter %s: %w", file, err)
		}
	}
	page := ContentPage{
		Slug:    slug,
		Lang:    firstNonEmpty(strings.TrimSpace(front.Lang), lang),
		Title:   strings.TrimSpace(front.Title),
		Summary: strings.TrimSpace(front.Summary),
		Format:  firstNonEmpty(strings.TrimSpace(front.Format), defaultContentFormat),
		SEO: ContentSEO{
			Title:       strings.TrimSpace(front.SEO.Title),
			Description: strings.TrimSpace(front.SEO.Description),
			OGImage:     strings.TrimSpace(front.SEO.OGImage),
			Keywords:    front.SEO.Keywords,
		},
	}
	if front.Banner != nil {
		page.Banner = &ContentBanner{
			Variant:  strings.TrimSpace(front.Banner.Variant),
			Title:    strings.TrimSpace(front.Banner.Title),
			Message:  strings.TrimSpace(front.Banner.Message),
			LinkText: strings.TrimSpace(front.Banner.LinkText),
			LinkURL:  strings.TrimSpace(front.Banner.LinkURL),
		}
	}
	page.EffectiveDate = parseContentDate(front.EffectiveDate)
	page.UpdatedAt = parseContentDate(front.UpdatedAt)
	if page.UpdatedAt.IsZero() {
		if info, err := fs.Stat(s.fsys, file); err == nil {
			page.UpdatedAt = info.ModTime()
		}
	}
	if page.Title == "" {
		page.Title = prettifySlug(slug)
	}

	html, err := s.render(page.Format, body)
	if err != nil {
		return ContentPage{}, fmt.Errorf("cms: render %s: %w", file, err)
	}
	page.Body = html
	return page, nil
}

func (s *Store) render(format, body string) (template.HTML, error) {
	var raw []byte
	switch format {
	case "html":
		raw = []byte(body)
	default:
		var buf bytes.Buffer
		if err := s.md.Convert([]byte(body), &buf); err != nil {
			return "", err
		}
		raw = buf.Bytes()
	}
	return template.HTML(s.policy.SanitizeBytes(raw)), nil
}

func (s *Store) cached(key string) (ContentPage, bool) {
	if s.ttl == 0 {
		return ContentPage{}, false
	}
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || s.now().After(entry.expires) {
		return ContentPage{}, false
	}
	return cloneContentPage(entry.page), true
}

func (s *Store) store(key string, page ContentPage) {
	if s.ttl == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = contentCacheEntry{
		page:    cloneContentPage(page),
		expires: s.now().Add(s.ttl),
	}
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimPrefix(input, "\ufeff")
	input = strings.ReplaceAll(input, "\r\n", "\n")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n")
		}
	}
	return "", input
}

func parseContentDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006/01/02",
		"2006-1-2",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	parts := strings.Split(strings.TrimSpace(slug), "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(part)
		runes[0] = asciiUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}

func sanitizeSlug(slug string) string {
	slug = strings.TrimSpace(strings.ToLower(slug))
	slug = strings.Trim(slug, "/")
	if slug == "" || strings.Contains(slug, "..") || strings.ContainsAny(slug, `/\`) {
		return ""
	}
	return slug
}

func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if base, _, ok := strings.Cut(lang, "-"); ok {
		lang = base
	}
	return lang
}

func cloneContentPage(src ContentPage) ContentPage {
	cp := src
	if src.Banner != nil {
		b := *src.Banner
		cp.Banner = &b
	}
	if src.SEO.Keywords != nil {
		cp.SEO.Keywords = append([]string(nil), src.SEO.Keywords...)
	}
	return cp
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func asciiUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
