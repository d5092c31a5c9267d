// Package pagination computes page windows for in-memory and server-paged lists.
package pagination

import (
	"net/url"
	"strconv"
)

// Window is how many page numbers are shown on each side of the current page.
const Window = 2

// Page describes one page of a list of Total items.
type Page struct {
	Current int
	Size    int
	Total   int
	Count   int
	// Start and End bound the page's slice: items[Start:End].
	Start int
	End   int
	// Numbers lists the page links around Current; zero marks an ellipsis.
	Numbers []int
}

// Compute clamps current into range and derives the page bounds. Count is ceil(total/size);
// an empty list has one (empty) page.
func Compute(total, size, current int) Page {
	if size <= 0 {
		size = 1
	}
	if total < 0 {
		total = 0
	}
	count := (total + size - 1) / size
	return build(total, size, current, count)
}

// FromServer builds a page for a list the server has already paged. Start and End are
// relative to the returned page of results.
func FromServer(total, pages, size, current, returned int) Page {
	if size <= 0 {
		size = 1
	}
	if pages <= 0 && total > 0 {
		pages = (total + size - 1) / size
	}
	p := build(total, size, current, pages)
	p.Start = 0
	p.End = returned
	return p
}

func build(total, size, current, count int) Page {
	if current < 1 {
		current = 1
	}
	if count > 0 && current > count {
		current = count
	}
	start := (current - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return Page{
		Current: current,
		Size:    size,
		Total:   total,
		Count:   count,
		Start:   start,
		End:     end,
		Numbers: numbers(current, count),
	}
}

func numbers(current, count int) []int {
	if count <= 1 {
		return nil
	}
	lo := current - Window
	if lo < 1 {
		lo = 1
	}
	hi := current + Window
	if hi > count {
		hi = count
	}
	var out []int
	if lo > 1 {
		out = append(out, 1)
		if lo > 2 {
			out = append(out, 0)
		}
	}
	for n := lo; n <= hi; n++ {
		out = append(out, n)
	}
	if hi < count {
		if hi < count-1 {
			out = append(out, 0)
		}
		out = append(out, count)
	}
	return out
}

// Visible reports whether pagination controls should be rendered.
func (p Page) Visible() bool { return p.Count > 1 }

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Current > 1 }

// HasNext reports whether a next page exists.
func (p Page) HasNext() bool { return p.Current < p.Count }

// Prev is the previous page number.
func (p Page) Prev() int { return p.Current - 1 }

// Next is the next page number.
func (p Page) Next() int { return p.Current + 1 }

// Slice returns the items of page p.
func Slice[T any](items []T, p Page) []T {
	if p.Start >= len(items) {
		return nil
	}
	end := p.End
	if end > len(items) {
		end = len(items)
	}
	return items[p.Start:end]
}

// Link returns base with params plus page=n, keeping every other filter intact.
func Link(base string, params url.Values, n int) string {
	q := url.Values{}
	for k, v := range params {
		if k == "page" {
			continue
		}
		for _, item := range v {
			if item != "" {
				q.Add(k, item)
			}
		}
	}
	if n > 1 {
		q.Set("page", strconv.Itoa(n))
	}
	if enc := q.Encode(); enc != "" {
		return base + "?" + enc
	}
	return base
}

// ParsePage reads a positive page number, defaulting to 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
