package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, ":8080", cfg.Server.Addr())
	require.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, defaultBackendURL, cfg.Backend.BaseURL)
	require.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	require.Equal(t, "local", cfg.Environment)
	require.False(t, cfg.Session.Secure)
	require.Empty(t, cfg.Session.HashKey)
	require.Equal(t, "923147864467", cfg.Storefront.WhatsAppNumber)
	require.Equal(t, "Rs.", cfg.Storefront.CurrencyLabel)
	require.EqualValues(t, 300, cfg.Storefront.CartShipping)
	require.EqualValues(t, 0, cfg.Storefront.CheckoutShipping)
	require.Equal(t, "Pakistan", cfg.Storefront.DefaultCountry)
	require.Equal(t, 6, cfg.Storefront.ShopPageSize)
	require.Equal(t, 6, cfg.Storefront.TestimonialPageSize)
}

func TestLoadPortFallsBackToPORT(t *testing.T) {
	cfg, err := Load(context.Background(), WithEnvMap(map[string]string{"PORT": "9090"}), WithoutSystemEnv(), WithEnvFile(""))
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Server.Port)

	cfg, err = Load(context.Background(), WithEnvMap(map[string]string{
		"PORT":         "9090",
		"QNH_WEB_PORT": "7070",
	}), WithoutSystemEnv(), WithEnvFile(""))
	require.NoError(t, err)
	require.Equal(t, "7070", cfg.Server.Port)
}

func TestLoadOverrides(t *testing.T) {
	env := map[string]string{
		"QNH_WEB_ENV":                   "prod",
		"QNH_WEB_BACKEND_URL":           "https://api.qhenterprises.com/",
		"QNH_WEB_BACKEND_TIMEOUT":       "3s",
		"QNH_WEB_SESSION_HASH_KEY":      "12345678901234567890123456789012",
		"QNH_WEB_CART_SHIPPING":         "53.00",
		"QNH_WEB_TESTIMONIAL_PAGE_SIZE": "9",
		"QNH_WEB_DEV":                   "yes",
	}
	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	require.NoError(t, err)

	require.Equal(t, "https://api.qhenterprises.com", cfg.Backend.BaseURL)
	require.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	require.True(t, cfg.Session.Secure)
	require.NotEmpty(t, cfg.Session.HashKey)
	require.EqualValues(t, 5300, cfg.Storefront.CartShipping)
	require.Equal(t, 9, cfg.Storefront.TestimonialPageSize)
	require.True(t, cfg.Dev)
}

func TestLoadValidationError(t *testing.T) {
	env := map[string]string{
		"QNH_WEB_ENV":            "prod",
		"QNH_WEB_BACKEND_URL":    "not a url",
		"QNH_WEB_SHOP_PAGE_SIZE": "0",
		"QNH_WEB_CART_SHIPPING":  "abc",
	}
	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	require.ElementsMatch(t, []string{
		"Storefront.CartShipping",
		"Backend.BaseURL",
		"Session.HashKey",
		"Storefront.ShopPageSize",
	}, vErr.Fields())
}

func TestLoadReadsDotEnvWithLowestPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local overrides\nexport QNH_WEB_WHATSAPP_NUMBER=\"923000000000\"\nQNH_WEB_SITE_URL=https://staging.qhenterprises.com\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(context.Background(),
		WithEnvFile(path),
		WithoutSystemEnv(),
		WithEnvMap(map[string]string{"QNH_WEB_SITE_URL": "https://qhenterprises.com/"}),
	)
	require.NoError(t, err)
	require.Equal(t, "923000000000", cfg.Storefront.WhatsAppNumber)
	require.Equal(t, "https://qhenterprises.com", cfg.Storefront.SiteURL)
}

func TestParseMinorUnits(t *testing.T) {
	cases := map[string]int64{
		"3.00":  300,
		"3":     300,
		"0":     0,
		"12.5":  1250,
		"1.999": 199,
		".75":   75,
	}
	for in, want := range cases {
		got, err := parseMinorUnits(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	_, err := parseMinorUnits("-1")
	require.Error(t, err)
}
