package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/auth"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
)

func TestClientDoSendsJSONWithCredentials(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/cart/guest/add/", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "guest-1", r.Header.Get("X-Guest-Token"))
		require.Equal(t, "csrf-1", r.Header.Get("X-CSRFToken"))
		require.Empty(t, r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, float64(7), body["product_id"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	t.Cleanup(ts.Close)

	client, err := backend.NewClient(ts.URL, ts.Client())
	require.NoError(t, err)

	var out struct {
		Message string `json:"message"`
	}
	err = client.Do(context.Background(), backend.Request{
		Method: http.MethodPost,
		Path:   "/api/cart/guest/add/",
		JSON:   map[string]any{"product_id": 7, "guest_token": "guest-1"},
		Auth:   auth.Resolve("", "guest-1", "csrf-1"),
	}, &out)
	require.NoError(t, err)
	require.Equal(t, "ok", out.Message)
}

func TestClientDoMapsErrorPayload(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":{"mobile":["This field is required."],"items":["Order must contain at least one item."]},"error":"Invalid order"}`))
	}))
	t.Cleanup(ts.Close)

	client, err := backend.NewClient(ts.URL, ts.Client())
	require.NoError(t, err)

	err = client.Do(context.Background(), backend.Request{Method: http.MethodPost, Path: "/api/orders/create/", JSON: map[string]any{}}, nil)
	require.Error(t, err)

	apiErr, ok := backend.AsError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "Invalid order", apiErr.Message)
	require.Equal(t, []string{"This field is required.", "Order must contain at least one item."}, apiErr.ValidationMessages())
	require.Equal(t, "Invalid order", backend.MessageOr(err, "fallback"))
}

func TestClientDoStatusHelpers(t *testing.T) {
	t.Parallel()

	status := http.StatusUnauthorized
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(ts.Close)

	client, err := backend.NewClient(ts.URL+"/", ts.Client())
	require.NoError(t, err)

	err = client.Do(context.Background(), backend.Request{Path: "/api/cart/"}, nil)
	require.True(t, backend.IsUnauthorized(err))
	require.False(t, backend.IsNotFound(err))
	require.Equal(t, "fallback", backend.MessageOr(err, "fallback"))
}

func TestClientDoWrapsTransportFailure(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := ts.URL
	ts.Close()

	client, err := backend.NewClient(base, nil)
	require.NoError(t, err)

	err = client.Do(context.Background(), backend.Request{Operation: "cart.load", Path: "/api/cart/"}, nil)
	require.Error(t, err)
	require.True(t, backend.IsUnavailable(err))
	require.True(t, errors.Is(err, backend.ErrUnavailable))
	_, isAPI := backend.AsError(err)
	require.False(t, isAPI)
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	t.Parallel()

	_, err := backend.NewClient("", nil)
	require.Error(t, err)
	_, err = backend.NewClient("/api", nil)
	require.Error(t, err)
}

func TestResolveAndAbsoluteMedia(t *testing.T) {
	t.Parallel()

	client, err := backend.NewClient("https://api.example.com", nil)
	require.NoError(t, err)

	require.Equal(t, "https://api.example.com/api/products/filter/?product_type=clothing",
		client.Resolve("/api/products/filter/", url.Values{"product_type": {"clothing"}}))
	require.Equal(t, "https://api.example.com/media/p.jpg", client.AbsoluteMedia("/media/p.jpg"))
	require.Equal(t, "https://cdn.example.com/p.jpg", client.AbsoluteMedia("https://cdn.example.com/p.jpg"))
	require.Empty(t, client.AbsoluteMedia(" "))
}

func TestErrorParsesLoginFields(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"non_field_errors":["Unable to log in with provided credentials."],"password":["This field may not be blank."]}`))
	}))
	t.Cleanup(ts.Close)

	client, err := backend.NewClient(ts.URL, ts.Client())
	require.NoError(t, err)

	err = client.Do(context.Background(), backend.Request{Method: http.MethodPost, Path: "/accounts/login/"}, nil)
	apiErr, ok := backend.AsError(err)
	require.True(t, ok)
	require.Equal(t, "Unable to log in with provided credentials.", apiErr.FirstField("non_field_errors"))
	require.Equal(t, "This field may not be blank.", apiErr.FirstField("password"))
	require.Empty(t, apiErr.FirstField("username"))
}
