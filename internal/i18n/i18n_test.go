package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func testBundle(t *testing.T) *Bundle {
	t.Helper()
	fsys := fstest.MapFS{
		"locales/en.yaml": {Data: []byte("cart:\n  title: Cart\n  empty: Your cart is empty\nbrand: QnH\n")},
		"locales/ur.yaml": {Data: []byte("cart:\n  title: کارٹ\n")},
	}
	b, err := Load(fsys, "locales", "en", []string{"en", "ur"})
	require.NoError(t, err)
	return b
}

func TestResolveHonorsQValues(t *testing.T) {
	b := testBundle(t)
	require.Equal(t, "ur", b.Resolve("en;q=0.8, ur;q=0.9"))
	require.Equal(t, "en", b.Resolve("fr-CH, fr;q=0.9"))
	require.Equal(t, "ur", b.Resolve("ur-PK"))
	require.Equal(t, "en", b.Resolve(""))
}

func TestTranslateFallsBack(t *testing.T) {
	b := testBundle(t)
	require.Equal(t, "کارٹ", b.T("ur", "cart.title"))
	require.Equal(t, "Your cart is empty", b.T("ur", "cart.empty"))
	require.Equal(t, "missing.key", b.T("ur", "missing.key"))
	require.Equal(t, []string{"en", "ur"}, b.Supported())
	require.True(t, b.IsSupported("UR"))
}

func TestLoadRequiresFallback(t *testing.T) {
	_, err := Load(fstest.MapFS{}, "locales", "en", nil)
	require.Error(t, err)
}
