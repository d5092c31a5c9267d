package handlers

import (
	"net/url"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/pagination"
)

// Pager is a rendered pagination control.
type Pager struct {
	pagination.Page
	Links  []PagerLink
	First  string
	Prev   string
	Next   string
	Last   string
	Target string
}

// PagerLink is one numbered link; Ellipsis entries have no href.
type PagerLink struct {
	Number   int
	Href     string
	Current  bool
	Ellipsis bool
}

// newPager builds links against base, preserving every query parameter except page. Target is
// the element an htmx click swaps; empty means a full navigation.
func newPager(p pagination.Page, base string, params url.Values, target string) Pager {
	pg := Pager{Page: p, Target: target}
	if !p.Visible() {
		return pg
	}
	for _, n := range p.Numbers {
		if n == 0 {
			pg.Links = append(pg.Links, PagerLink{Ellipsis: true})
			continue
		}
		pg.Links = append(pg.Links, PagerLink{
			Number:  n,
			Href:    pagination.Link(base, params, n),
			Current: n == p.Current,
		})
	}
	if p.HasPrev() {
		pg.First = pagination.Link(base, params, 1)
		pg.Prev = pagination.Link(base, params, p.Prev())
	}
	if p.HasNext() {
		pg.Next = pagination.Link(base, params, p.Next())
		pg.Last = pagination.Link(base, params, p.Count)
	}
	return pg
}
