package testutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML parses a page or htmx fragment into a goquery document.
func ParseHTML(t testing.TB, body []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// CSRFToken returns the token the base layout publishes in its csrf-token meta tag.
func CSRFToken(doc *goquery.Document) string {
	return doc.Find(`meta[name="csrf-token"]`).AttrOr("content", "")
}

// ToastMessages lists the trimmed text of every toast of the given kind (success, error,
// warning, info) rendered into the document.
func ToastMessages(doc *goquery.Document, kind string) []string {
	var out []string
	doc.Find(".toast-" + kind).Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Find(".toast-message").Text()))
	})
	return out
}
