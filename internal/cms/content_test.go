package cms_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/cms"
)

func contentFS() fstest.MapFS {
	return fstest.MapFS{
		"en/privacy-policy.md": {Data: []byte(`---
title: Privacy Policy
summary: How we handle your data.
updated_at: 2024-05-01
seo:
  description: Privacy at QnH
  keywords: [privacy, data]
banner:
  variant: info
  message: Updated for 2024
---
## Data we collect

We keep **orders** only.

<script>alert(1)</script>
`)},
		"en/terms-of-use.md": {Data: []byte("Plain body without front matter.")},
		"ur/privacy-policy.md": {Data: []byte(`---
title: رازداری کی پالیسی
---
متن
`)},
	}
}

func TestStoreRendersMarkdownAndSanitizes(t *testing.T) {
	t.Parallel()

	store := cms.NewStore(contentFS(), "en")
	page, err := store.Page(context.Background(), "privacy-policy", "en-US")
	require.NoError(t, err)
	require.Equal(t, "Privacy Policy", page.Title)
	require.Equal(t, "en", page.Lang)
	require.Equal(t, "Privacy at QnH", page.SEO.Description)
	require.Equal(t, []string{"privacy", "data"}, page.SEO.Keywords)
	require.NotNil(t, page.Banner)
	require.Equal(t, "Updated for 2024", page.Banner.Message)
	require.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), page.UpdatedAt)

	body := string(page.Body)
	require.Contains(t, body, `<h2 id="data-we-collect">Data we collect</h2>`)
	require.Contains(t, body, "<strong>orders</strong>")
	require.NotContains(t, body, "<script")
}

func TestStoreFallsBackToDefaultLanguage(t *testing.T) {
	t.Parallel()

	store := cms.NewStore(contentFS(), "en")
	page, err := store.Page(context.Background(), "terms-of-use", "ur")
	require.NoError(t, err)
	require.Equal(t, "en", page.Lang)
	require.Equal(t, "Terms Of Use", page.Title)

	page, err = store.Page(context.Background(), "privacy-policy", "ur")
	require.NoError(t, err)
	require.Equal(t, "رازداری کی پالیسی", page.Title)
}

func TestStoreRejectsUnknownAndUnsafeSlugs(t *testing.T) {
	t.Parallel()

	store := cms.NewStore(contentFS(), "en")
	for _, slug := range []string{"missing", "../secret", "", "en/privacy-policy"} {
		_, err := store.Page(context.Background(), slug, "en")
		require.True(t, errors.Is(err, cms.ErrNotFound), slug)
	}
}

func TestStoreCachesUntilExpiry(t *testing.T) {
	t.Parallel()

	fsys := contentFS()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := cms.NewStore(fsys, "en", cms.WithCacheTTL(time.Minute), cms.WithClock(func() time.Time { return now }))

	_, err := store.Page(context.Background(), "terms-of-use", "en")
	require.NoError(t, err)

	fsys["en/terms-of-use.md"] = &fstest.MapFile{Data: []byte("Changed body.")}
	page, err := store.Page(context.Background(), "terms-of-use", "en")
	require.NoError(t, err)
	require.True(t, strings.Contains(string(page.Body), "Plain body"))

	now = now.Add(2 * time.Minute)
	page, err = store.Page(context.Background(), "terms-of-use", "en")
	require.NoError(t, err)
	require.Contains(t, string(page.Body), "Changed body.")
}

func TestStoreSlugs(t *testing.T) {
	t.Parallel()

	slugs, err := cms.NewStore(contentFS(), "en").Slugs()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"privacy-policy", "terms-of-use"}, slugs)
}
