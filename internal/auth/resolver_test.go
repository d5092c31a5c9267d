package auth_test

import (
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/auth"
)

func TestResolveAccessTokenWinsOverGuest(t *testing.T) {
	t.Parallel()

	creds := auth.Resolve("access-1", "guest-1", "csrf-1")
	require.Equal(t, auth.ModeUser, creds.Mode())
	require.Equal(t, "/api/cart/", creds.ResolveEndpoint("/api/cart/", "/api/cart/guest/"))

	h := creds.Headers()
	require.Equal(t, "Bearer access-1", h.Get("Authorization"))
	require.Empty(t, h.Get("X-Guest-Token"))
	require.Equal(t, "csrf-1", h.Get("X-CSRFToken"))
	require.Equal(t, "application/json", h.Get("Content-Type"))
}

func TestResolveGuestOnly(t *testing.T) {
	t.Parallel()

	creds := auth.Resolve("", "guest-1", "")
	require.Equal(t, auth.ModeGuest, creds.Mode())
	require.True(t, creds.HasSession())
	require.False(t, creds.Authenticated())
	require.Equal(t, "/api/cart/guest/", creds.ResolveEndpoint("/api/cart/", "/api/cart/guest/"))

	h := creds.Headers()
	require.Empty(t, h.Get("Authorization"))
	require.Equal(t, "guest-1", h.Get("X-Guest-Token"))
	require.Empty(t, h.Get("X-CSRFToken"))
}

func TestResolveAnonymous(t *testing.T) {
	t.Parallel()

	creds := auth.Resolve("  ", "", "csrf")
	require.Equal(t, auth.ModeAnonymous, creds.Mode())
	require.False(t, creds.HasSession())
	require.Equal(t, "anonymous", creds.Mode().String())
}

func TestApplyKeepsCallerContentType(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("POST", "/api/reviews/1/reviews-add/", nil)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")

	auth.Resolve("access-1", "", "csrf-1").Apply(req)

	require.Equal(t, "multipart/form-data; boundary=x", req.Header.Get("Content-Type"))
	require.Equal(t, "Bearer access-1", req.Header.Get("Authorization"))
	require.Equal(t, "csrf-1", req.Header.Get("X-CSRFToken"))
}

func TestSubjectReadsUserIDClaim(t *testing.T) {
	t.Parallel()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": float64(42)})
	signed, err := token.SignedString([]byte("backend-secret"))
	require.NoError(t, err)

	require.Equal(t, "42", auth.Resolve(signed, "", "").Subject())
	require.Empty(t, auth.Resolve("not-a-jwt", "", "").Subject())
	require.Empty(t, auth.Resolve("", "guest", "").Subject())
}
