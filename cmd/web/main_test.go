package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/catalog"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/config"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/status"
)

func TestSitemapCommandPrintsProducts(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/products/get-all-products/", r.URL.Path)
		_, _ = w.Write([]byte(`{"count":2,"pages":1,"results":[{"id":5,"updated_at":"2024-06-01T00:00:00Z"},{"id":6}]}`))
	}))
	defer api.Close()

	t.Setenv("QNH_WEB_BACKEND_URL", api.URL)
	t.Setenv("QNH_WEB_SITE_URL", "https://qnh.example.com")

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"sitemap", "--env-file", ""})
	require.NoError(t, cmd.Execute())

	xml := out.String()
	require.True(t, strings.HasPrefix(xml, "<?xml"), xml)
	require.Contains(t, xml, "<loc>https://qnh.example.com/product-detail/5/</loc>")
	require.Contains(t, xml, "<lastmod>2024-06-01</lastmod>")
	require.Contains(t, xml, "<loc>https://qnh.example.com/product-detail/6/</loc>")
}

func TestSitemapCommandSiteURLFlag(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer api.Close()

	t.Setenv("QNH_WEB_BACKEND_URL", api.URL)

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"sitemap", "--env-file", "", "--site-url", "https://staging.example.com"})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "<loc>https://staging.example.com/about-us/</loc>")
}

func TestInvalidConfigFailsFast(t *testing.T) {
	t.Setenv("QNH_WEB_BACKEND_URL", "not a url")

	cmd := newRootCommand()
	cmd.SetArgs([]string{"serve", "--env-file", ""})
	err := cmd.Execute()
	require.Error(t, err)

	var verr *config.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields(), "Backend.BaseURL")
}

func TestSessionKeysFallBackToRandom(t *testing.T) {
	t.Parallel()

	hash, block := sessionKeys(config.SessionConfig{}, zap.NewNop())
	require.Len(t, hash, 64)
	require.Len(t, block, 32)

	again, _ := sessionKeys(config.SessionConfig{}, zap.NewNop())
	require.NotEqual(t, hash, again)

	fixed := []byte("0123456789abcdef0123456789abcdef")
	hash, block = sessionKeys(config.SessionConfig{HashKey: fixed}, zap.NewNop())
	require.Equal(t, fixed, hash)
	require.Empty(t, block)
}

type failingCatalog struct {
	*catalog.StaticService
}

func (failingCatalog) TypeCounts(context.Context) ([]catalog.TypeCount, error) {
	return nil, errors.New("backend down")
}

func TestHealthCheckerProbesBackendAndContent(t *testing.T) {
	t.Parallel()

	summary := newHealthChecker(catalog.NewStaticService()).Check(context.Background())
	require.Equal(t, status.StateOperational, summary.State)
	require.Len(t, summary.Components, 2)

	summary = newHealthChecker(failingCatalog{catalog.NewStaticService()}).Check(context.Background())
	require.Equal(t, status.StateDegraded, summary.State)
	require.Equal(t, "backend", summary.Components[0].Name)
	require.Equal(t, "backend down", summary.Components[0].Error)
}
