package seo

import (
	"net/url"
	"strings"
)

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
	URL         string
	SiteName    string
}

type Twitter struct {
	Card  string
	Site  string
	Image string
}

type Meta struct {
	Title       string
	Description string
	Keywords    []string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
	// JSONLD holds pre-encoded schema.org blocks.
	JSONLD []string
}

// Page fills the common fields for a storefront page.
func Page(siteName, siteURL, path, title, description string) Meta {
	full := title
	if title == "" {
		full = siteName
	} else if siteName != "" && !strings.Contains(title, siteName) {
		full = title + " | " + siteName
	}
	canonical := Absolute(siteURL, path)
	return Meta{
		Title:       full,
		Description: description,
		Canonical:   canonical,
		OG: OpenGraph{
			Title:       full,
			Description: description,
			Type:        "website",
			URL:         canonical,
			SiteName:    siteName,
		},
		Twitter: Twitter{Card: "summary_large_image"},
	}
}

// WithImage sets the share image on OG and Twitter.
func (m Meta) WithImage(image string) Meta {
	m.OG.Image = image
	m.Twitter.Image = image
	return m
}

// AddJSONLD appends an encoded schema block; empty payloads are skipped.
func (m *Meta) AddJSONLD(v any) {
	if s := JSON(v); s != "" {
		m.JSONLD = append(m.JSONLD, s)
	}
}

// Absolute joins a site URL and a path.
func Absolute(siteURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	base, err := url.Parse(strings.TrimRight(siteURL, "/") + "/")
	if err != nil || base.Host == "" {
		return path
	}
	return base.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")}).String()
}
