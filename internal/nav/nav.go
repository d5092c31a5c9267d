package nav

import (
	"path"
	"strings"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/format"
)

// Item represents a top-level navigation item.
type Item struct {
	Path     string // e.g. "/shop/"
	LabelKey string // i18n key, e.g. "nav.shop"
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/", LabelKey: "nav.home"},
	{Path: "/shop/", LabelKey: "nav.shop"},
	{Path: "/testimonial/", LabelKey: "nav.testimonial"},
	{Path: "/blog/", LabelKey: "nav.blog"},
	{Path: "/about-us/", LabelKey: "nav.about"},
	{Path: "/contact/", LabelKey: "nav.contact"},
}

// sections maps first path segments that are not in Main to a label key.
var sections = map[string]string{
	"cart":           "nav.cart",
	"checkout":       "nav.checkout",
	"login":          "nav.login",
	"product-detail": "nav.shop",
}

// Build renders navigation items with active state given the current path.
func Build(currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Active:   isActive(it.Path, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	base := strings.TrimSuffix(itemPath, "/")
	if currentPath == base || currentPath == itemPath {
		return true
	}
	if base == "/shop" && strings.HasPrefix(currentPath, "/product-detail/") {
		return true
	}
	return strings.HasPrefix(currentPath, base+"/")
}

// Breadcrumbs builds breadcrumb entries from the current path. Numeric segments (product and
// post ids) are replaced by leaf when given.
func Breadcrumbs(currentPath, leaf string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", LabelKey: "nav.home", Active: currentPath == "/"}}
	if currentPath == "/" {
		return crumbs
	}

	clean := path.Clean(currentPath)
	parts := strings.Split(strings.Trim(clean, "/"), "/")
	href := ""
	for i, part := range parts {
		if part == "" {
			continue
		}
		href += "/" + part
		c := Crumb{Href: href + "/", Label: titleFromSegment(part), Active: i == len(parts)-1}
		if i == 0 {
			c.LabelKey = labelKeyFor(part)
			if part == "product-detail" {
				c.Href = "/shop/"
			}
		}
		if isNumeric(part) && leaf != "" {
			c.Label = leaf
		}
		crumbs = append(crumbs, c)
	}
	return crumbs
}

func labelKeyFor(segment string) string {
	for _, it := range Main {
		if strings.Trim(it.Path, "/") == segment {
			return it.LabelKey
		}
	}
	return sections[segment]
}

func titleFromSegment(seg string) string {
	return format.Title(strings.ReplaceAll(seg, "-", " "))
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
