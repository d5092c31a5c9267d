package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/format"
)

// ErrPostNotFound is returned for an unknown blog post.
var ErrPostNotFound = errors.New("catalog: post not found")

// BlogService reads blog posts.
type BlogService interface {
	Posts(ctx context.Context) ([]Post, error)
	Post(ctx context.Context, id int) (Post, error)
}

// Post is a blog article. Content is HTML authored in the backend admin.
type Post struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Image     string `json:"image"`
	Author    string `json:"author"`
	Keywords  string `json:"keywords"`
	CreatedAt string `json:"created_at"`
}

// KeywordList splits the comma separated keywords.
func (p Post) KeywordList() []string {
	var out []string
	for _, k := range strings.Split(p.Keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Excerpt returns the first limit runes of the post's visible text.
func (p Post) Excerpt(limit int) string {
	return format.Truncate(PlainText(p.Content), limit)
}

var blockTags = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "tr": true, "td": true,
}

// PlainText extracts the visible text of an HTML fragment, collapsing whitespace and skipping
// script and style contents.
func PlainText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var (
		b    strings.Builder
		skip int
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way the text so far is the answer
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch n := string(name); {
			case n == "script" || n == "style":
				skip++
			case blockTags[n]:
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch n := string(name); {
			case (n == "script" || n == "style") && skip > 0:
				skip--
			case blockTags[n]:
				b.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// Posts implements BlogService.
func (s *HTTPService) Posts(ctx context.Context) ([]Post, error) {
	var out []Post
	if err := s.client.Do(ctx, backend.Request{Operation: "blog.list", Path: "/api/blog/"}, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Image = s.client.AbsoluteMedia(out[i].Image)
	}
	return out, nil
}

// Post implements BlogService.
func (s *HTTPService) Post(ctx context.Context, id int) (Post, error) {
	var p Post
	err := s.client.Do(ctx, backend.Request{Operation: "blog.detail", Path: fmt.Sprintf("/api/blog/%d/", id)}, &p)
	if backend.IsNotFound(err) {
		return Post{}, ErrPostNotFound
	}
	if err != nil {
		return Post{}, err
	}
	p.Image = s.client.AbsoluteMedia(p.Image)
	return p, nil
}
