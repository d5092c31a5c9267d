package checkout_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/auth"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/cart"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/checkout"
)

func sampleDraft() checkout.Draft {
	return checkout.Draft{
		FirstName: "Ayesha",
		LastName:  "Khan",
		Email:     "ayesha@example.com",
		Mobile:    "03001234567",
		Address:   "House 1, Street 2",
		City:      "Lahore",
	}
}

func TestCreateOrderSendsPayload(t *testing.T) {
	t.Parallel()

	var (
		body   map[string]any
		header http.Header
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders/create/", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		header = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"Order created","order":{"id":9,"order_number":"ORD-0009","total_amount":"25.00"}}`))
	}))
	t.Cleanup(ts.Close)

	api, err := backend.NewClient(ts.URL, ts.Client())
	require.NoError(t, err)
	client := checkout.NewClient(api)

	order, err := client.CreateOrder(context.Background(), auth.Resolve("tok", "", "csrf"), checkout.OrderRequest{
		Draft: sampleDraft(),
		Items: []cart.Line{{ProductID: 3, Quantity: 2}},
	})
	require.NoError(t, err)
	require.Equal(t, "ORD-0009", order.OrderNumber)
	require.Equal(t, backend.Price(2500), order.Total)

	require.Equal(t, "Bearer tok", header.Get("Authorization"))
	_, err = ulid.Parse(header.Get("Idempotency-Key"))
	require.NoError(t, err)

	require.Equal(t, "Pakistan", body["country"])
	require.Equal(t, "whatsapp", body["payment_method"])
	require.Equal(t, false, body["ship_to_different_address"])
	require.Equal(t, "", body["shipping_address"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	require.Equal(t, float64(3), items[0].(map[string]any)["product_id"])
}

func TestCreateOrderCopiesShippingAddressWhenRequested(t *testing.T) {
	t.Parallel()

	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "fixed-key", r.Header.Get("Idempotency-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"order":{"order_number":"ORD-1"}}`))
	}))
	t.Cleanup(ts.Close)

	api, err := backend.NewClient(ts.URL, ts.Client())
	require.NoError(t, err)

	draft := sampleDraft()
	draft.ShipToDifferentAddress = true
	draft.Zipcode = "54000"
	_, err = checkout.NewClient(api).CreateOrder(context.Background(), auth.Resolve("tok", "", ""), checkout.OrderRequest{
		Draft:          draft,
		Items:          []cart.Line{{ProductID: 1, Quantity: 1}},
		IdempotencyKey: "fixed-key",
	})
	require.NoError(t, err)
	require.Equal(t, "Lahore", body["shipping_city"])
	require.Equal(t, "54000", body["shipping_zipcode"])
	require.Equal(t, "Pakistan", body["shipping_country"])
}

func TestCreateOrderRejectsEmptyOrderWithoutCall(t *testing.T) {
	t.Parallel()

	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	t.Cleanup(ts.Close)
	api, err := backend.NewClient(ts.URL, ts.Client())
	require.NoError(t, err)

	_, err = checkout.NewClient(api).CreateOrder(context.Background(), auth.Resolve("tok", "", ""), checkout.OrderRequest{Draft: sampleDraft()})
	require.ErrorIs(t, err, checkout.ErrEmptyOrder)
	require.False(t, called)
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	validation := &backend.Error{Status: 400, Errors: []backend.FieldError{
		{Field: "mobile", Messages: []string{"This field is required."}},
		{Field: "email", Messages: []string{"Enter a valid email address."}},
	}}
	require.Equal(t, "Validation error: This field is required., Enter a valid email address.", checkout.ErrorMessage(validation))
	require.Equal(t, "Out of stock", checkout.ErrorMessage(&backend.Error{Status: 400, Message: "Out of stock"}))
	require.Equal(t, checkout.MessageOrderFailed, checkout.ErrorMessage(&backend.Error{Status: 500}))
	require.Equal(t, checkout.MessageNetworkError, checkout.ErrorMessage(backend.ErrUnavailable))
	require.Equal(t, checkout.MessageOrderFailed, checkout.ErrorMessage(checkout.ErrMissingOrder))
}

func TestNewIdempotencyKeyIsULID(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	key := checkout.NewIdempotencyKey(now)
	id, err := ulid.Parse(key)
	require.NoError(t, err)
	require.Equal(t, ulid.Timestamp(now), id.Time())
	require.False(t, strings.Contains(key, " "))
}

func TestIdempotencyKeyFromForm(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	issued := checkout.NewIdempotencyKey(now)
	require.Equal(t, issued, checkout.IdempotencyKeyFromForm(url.Values{checkout.IdempotencyField: {" " + issued + " "}}, now))

	for _, form := range []url.Values{{}, {checkout.IdempotencyField: {"order-1"}}} {
		key := checkout.IdempotencyKeyFromForm(form, now)
		id, err := ulid.Parse(key)
		require.NoError(t, err)
		require.Equal(t, ulid.Timestamp(now), id.Time())
	}
}
