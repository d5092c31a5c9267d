package catalog_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/catalog"
)

func TestPlainText(t *testing.T) {
	t.Parallel()

	got := catalog.PlainText(`<h2>Care</h2><p>Wash <b>cold</b>.</p><script>alert(1)</script><style>p{}</style><p>Dry flat</p>`)
	require.Equal(t, "Care Wash cold. Dry flat", got)
}

func TestPostHelpers(t *testing.T) {
	t.Parallel()

	p := catalog.Post{Content: "<p>" + "abcdefghij" + "</p>", Keywords: "lawn, summer ,,  eid"}
	require.Equal(t, "abcde...", p.Excerpt(5))
	require.Equal(t, []string{"lawn", "summer", "eid"}, p.KeywordList())
}

func TestPostNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/blog/" {
			_, _ = w.Write([]byte(`[{"id":1,"title":"Hello","image":"/media/h.jpg"}]`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	posts, err := svc.Posts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)

	_, err = svc.Post(context.Background(), 99)
	require.ErrorIs(t, err, catalog.ErrPostNotFound)
}
