package cart_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/auth"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/cart"
)

type recordedCall struct {
	Method string
	Path   string
	Auth   string
	Guest  string
	Body   map[string]any
}

func newRecordingBackend(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*cart.HTTPService, func() []recordedCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := recordedCall{
			Method: r.Method,
			Path:   r.URL.Path,
			Auth:   r.Header.Get("Authorization"),
			Guest:  r.Header.Get("X-Guest-Token"),
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&call.Body)
		}
		mu.Lock()
		calls = append(calls, call)
		mu.Unlock()
		if respond != nil {
			respond(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(ts.Close)

	client, err := backend.NewClient(ts.URL, ts.Client())
	require.NoError(t, err)
	return cart.NewHTTPService(client), func() []recordedCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedCall(nil), calls...)
	}
}

func TestLoadUsesGuestEndpoint(t *testing.T) {
	t.Parallel()

	svc, calls := newRecordingBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"id":1,"product":{"id":10,"name":"Lawn Suit","price":"12.50 $","image":"/media/a.jpg"},"quantity":2,"total":"25.00 $"},
			{"id":2,"product":{"id":11,"name":"Shawl","price":"7.25 $","image":""},"quantity":1,"total":"7.25 $"}
		],"total_quantity":3}`))
	})

	snap, err := svc.Load(context.Background(), auth.Resolve("", "guest-1", "csrf"))
	require.NoError(t, err)
	require.Len(t, snap.Items, 2)
	require.Equal(t, 3, snap.TotalQuantity)
	require.Equal(t, backend.Price(3225), snap.Subtotal())
	require.Equal(t, 2, snap.ItemCount())

	got := calls()
	require.Len(t, got, 1)
	require.Equal(t, "/api/cart/guest/", got[0].Path)
	require.Equal(t, "guest-1", got[0].Guest)
	require.Empty(t, got[0].Auth)
}

func TestLoadPrefersAccessToken(t *testing.T) {
	t.Parallel()

	svc, calls := newRecordingBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[],"total_quantity":0}`))
	})

	_, err := svc.Load(context.Background(), auth.Resolve("access-1", "guest-1", ""))
	require.NoError(t, err)

	got := calls()
	require.Equal(t, "/api/cart/", got[0].Path)
	require.Equal(t, "Bearer access-1", got[0].Auth)
	require.Empty(t, got[0].Guest)
}

func TestLoadTreatsNotFoundAsEmpty(t *testing.T) {
	t.Parallel()

	svc, _ := newRecordingBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Cart not found"}`))
	})

	snap, err := svc.Load(context.Background(), auth.Resolve("", "guest-1", ""))
	require.NoError(t, err)
	require.True(t, snap.Empty())
	require.Equal(t, cart.Totals{}, snap.Summarize(300))
}

func TestLoadPropagatesUnauthorized(t *testing.T) {
	t.Parallel()

	svc, _ := newRecordingBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := svc.Load(context.Background(), auth.Resolve("expired", "", ""))
	require.True(t, backend.IsUnauthorized(err))
}

func TestMutationsRouteByVisitor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, calls := newRecordingBackend(t, nil)
	user := auth.Resolve("access-1", "", "")
	guest := auth.Resolve("", "guest-1", "")

	require.NoError(t, svc.Increase(ctx, user, 10))
	require.NoError(t, svc.Increase(ctx, guest, 10))
	require.NoError(t, svc.Decrease(ctx, user, 10))
	require.NoError(t, svc.Decrease(ctx, guest, 10))
	require.NoError(t, svc.Remove(ctx, user, 10))
	require.NoError(t, svc.Remove(ctx, guest, 10))
	require.NoError(t, svc.Clear(ctx, guest))

	got := calls()
	require.Len(t, got, 7)
	want := []struct{ method, path string }{
		{http.MethodPut, "/api/cart/update/10/"},
		{http.MethodPost, "/api/cart/guest/add/"},
		{http.MethodPut, "/api/cart/decrease/10/"},
		{http.MethodPut, "/api/cart/guest/decrease/10/"},
		{http.MethodDelete, "/api/cart/remove/10/"},
		{http.MethodDelete, "/api/cart/guest/remove/10/"},
		{http.MethodDelete, "/api/cart/clear/"},
	}
	for i, w := range want {
		require.Equal(t, w.method, got[i].Method, "call %d", i)
		require.Equal(t, w.path, got[i].Path, "call %d", i)
	}
	require.Equal(t, float64(10), got[1].Body["product_id"])
	require.Equal(t, "guest-1", got[1].Body["guest_token"])
	require.Equal(t, "guest-1", got[6].Guest)
}

func TestAddReturnsBackendMessage(t *testing.T) {
	t.Parallel()

	svc, calls := newRecordingBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Product added to cart"}`))
	})

	msg, err := svc.Add(context.Background(), auth.Resolve("", "guest-1", ""), 5, 0)
	require.NoError(t, err)
	require.Equal(t, "Product added to cart", msg)

	got := calls()
	require.Equal(t, "/api/cart/guest/add/", got[0].Path)
	require.Equal(t, float64(1), got[0].Body["quantity"])
}

func TestCallsWithoutVisitorFail(t *testing.T) {
	t.Parallel()

	svc, calls := newRecordingBackend(t, nil)
	_, err := svc.Load(context.Background(), auth.Credentials{})
	require.ErrorIs(t, err, cart.ErrNoVisitor)
	require.ErrorIs(t, svc.Clear(context.Background(), auth.Credentials{}), cart.ErrNoVisitor)
	require.Empty(t, calls())
}
