package accounts_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/accounts"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
)

func newService(t *testing.T, handler http.HandlerFunc) *accounts.HTTPService {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	client, err := backend.NewClient(ts.URL, ts.Client())
	require.NoError(t, err)
	return accounts.NewHTTPService(client)
}

func TestLoginStoresTokenPair(t *testing.T) {
	t.Parallel()

	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts/login/", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "ali", body["username"])
		require.Equal(t, "secret", body["password"])
		_, _ = w.Write([]byte(`{"access":"a1","refresh":"r1"}`))
	})

	tokens, err := svc.Login(context.Background(), " ali ", "secret")
	require.NoError(t, err)
	require.Equal(t, accounts.Tokens{Access: "a1", Refresh: "r1"}, tokens)
}

func TestLoginErrorPrecedence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want string
	}{
		{"detail", `{"detail":"No active account","non_field_errors":["x"]}`, "No active account"},
		{"non field", `{"non_field_errors":["Unable to log in."],"username":["y"]}`, "Unable to log in."},
		{"username", `{"username":["This field is required."],"password":["z"]}`, "This field is required."},
		{"password", `{"password":["This field may not be blank."]}`, "This field may not be blank."},
		{"plain string", `"Account locked"`, "Account locked"},
		{"empty", `{}`, accounts.MessageLoginFailed},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := svc.Login(context.Background(), "u", "p")
			require.Error(t, err)
			require.Equal(t, tc.want, accounts.LoginErrorMessage(err))
		})
	}
}

func TestLoginWithoutAccessToken(t *testing.T) {
	t.Parallel()

	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	_, err := svc.Login(context.Background(), "u", "p")
	require.ErrorIs(t, err, accounts.ErrMissingTokens)
	require.Equal(t, accounts.MessageLoginFailed, accounts.LoginErrorMessage(err))
}

func TestGoogleAuthURL(t *testing.T) {
	t.Parallel()

	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts/google-oauth-initiate/", r.URL.Path)
		_, _ = w.Write([]byte(`{"auth_url":"https://accounts.google.com/o/oauth2/auth?x=1"}`))
	})
	target, err := svc.GoogleAuthURL(context.Background())
	require.NoError(t, err)
	require.Equal(t, "https://accounts.google.com/o/oauth2/auth?x=1", target)

	failing := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err = failing.GoogleAuthURL(context.Background())
	require.Error(t, err)
}

func TestPromoteGuest(t *testing.T) {
	t.Parallel()

	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/create-user-from-email/", r.URL.Path)
		require.Equal(t, "csrf-1", r.Header.Get("X-CSRFToken"))
		require.Empty(t, r.Header.Get("X-Guest-Token"))
		require.Empty(t, r.Header.Get("Authorization"))
		var body accounts.Promotion
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "guest-1", body.GuestToken)
		require.Equal(t, "03001234567", body.Phone)
		_, _ = w.Write([]byte(`{"access":"a2","refresh":"r2","message":"Account created successfully"}`))
	})

	tokens, err := svc.PromoteGuest(context.Background(), accounts.Promotion{
		Email: "a@b.pk", Phone: "03001234567", FirstName: "A", LastName: "B", GuestToken: "guest-1",
	}, "csrf-1")
	require.NoError(t, err)
	require.Equal(t, "a2", tokens.Access)
	require.Equal(t, "Account created successfully", tokens.Message)
}

func TestPromotionErrorMessage(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Email already linked", accounts.PromotionErrorMessage(&backend.Error{Status: 400, Message: "Email already linked"}))
	require.Equal(t, accounts.MessageAccountFailed, accounts.PromotionErrorMessage(&backend.Error{Status: 500}))
	require.Equal(t, accounts.MessageCheckoutFailure, accounts.PromotionErrorMessage(errors.Join(backend.ErrUnavailable)))
}
