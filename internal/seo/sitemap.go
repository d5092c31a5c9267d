package seo

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// URL is one <url> entry of a sitemap.
type URL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	NS      string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// StaticPage describes a fixed storefront page listed in the sitemap.
type StaticPage struct {
	Path       string
	ChangeFreq string
	Priority   float64
}

// StaticPages are the storefront pages always listed in the sitemap.
var StaticPages = []StaticPage{
	{Path: "/", ChangeFreq: "daily", Priority: 1.0},
	{Path: "/shop/", ChangeFreq: "daily", Priority: 0.9},
	{Path: "/contact/", ChangeFreq: "monthly", Priority: 0.8},
	{Path: "/testimonial/", ChangeFreq: "weekly", Priority: 0.7},
	{Path: "/blog/", ChangeFreq: "weekly", Priority: 0.6},
	{Path: "/about-us/", ChangeFreq: "monthly", Priority: 0.6},
	{Path: "/privacy-policy/", ChangeFreq: "yearly", Priority: 0.5},
	{Path: "/terms-of-use/", ChangeFreq: "yearly", Priority: 0.5},
	{Path: "/sales-and-refund-policy/", ChangeFreq: "yearly", Priority: 0.5},
}

// ProductEntry is a product listed in the sitemap.
type ProductEntry struct {
	ID        int
	UpdatedAt time.Time
}

// Sitemap collects entries for a site.
type Sitemap struct {
	siteURL string
	urls    []URL
}

// NewSitemap starts a sitemap containing StaticPages.
func NewSitemap(siteURL string) *Sitemap {
	s := &Sitemap{siteURL: siteURL}
	for _, p := range StaticPages {
		s.urls = append(s.urls, URL{Loc: Absolute(siteURL, p.Path), ChangeFreq: p.ChangeFreq, Priority: p.Priority})
	}
	return s
}

// AddProducts appends a product detail entry per product.
func (s *Sitemap) AddProducts(products []ProductEntry) {
	for _, p := range products {
		u := URL{
			Loc:        Absolute(s.siteURL, "/product-detail/"+strconv.Itoa(p.ID)+"/"),
			ChangeFreq: "weekly",
			Priority:   0.8,
		}
		if !p.UpdatedAt.IsZero() {
			u.LastMod = p.UpdatedAt.UTC().Format("2006-01-02")
		}
		s.urls = append(s.urls, u)
	}
}

// URLs returns the collected entries.
func (s *Sitemap) URLs() []URL {
	return append([]URL(nil), s.urls...)
}

// WriteTo encodes the sitemap as XML.
func (s *Sitemap) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if _, err := io.WriteString(cw, xml.Header); err != nil {
		return cw.n, err
	}
	enc := xml.NewEncoder(cw)
	enc.Indent("", "  ")
	if err := enc.Encode(urlSet{NS: sitemapNS, URLs: s.urls}); err != nil {
		return cw.n, fmt.Errorf("seo: encode sitemap: %w", err)
	}
	return cw.n, enc.Flush()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
