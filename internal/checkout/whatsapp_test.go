package checkout_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/cart"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/checkout"
)

func TestSummaryListsItemsAndTotals(t *testing.T) {
	t.Parallel()

	snap := cart.Snapshot{Items: []cart.Item{
		{ID: 1, Product: cart.Product{ID: 1, Name: "Lawn Suit", Price: 1250}, Quantity: 2},
		{ID: 2, Product: cart.Product{ID: 2, Name: "Shawl", Price: 725}, Quantity: 1},
	}}
	draft := sampleDraft()
	draft.OrderNotes = "Call before delivery"

	text := checkout.Summary(draft, snap, "ORD-7")
	require.True(t, strings.HasPrefix(text, "Hello, I want to confirm my order:\n\n"))
	require.Contains(t, text, "*ORDER NUMBER: ORD-7*")
	require.Contains(t, text, "Name: Ayesha Khan")
	require.Contains(t, text, "Country: Pakistan")
	require.Contains(t, text, "• Lawn Suit - Qty: 2 - Rs.25.00")
	require.Contains(t, text, "• Shawl - Qty: 1 - Rs.7.25")
	require.Contains(t, text, "Subtotal: Rs.32.25")
	require.Contains(t, text, "Total: Rs.32.25")
	require.Contains(t, text, "Order Notes: Call before delivery")
	require.NotContains(t, text, "Zipcode")
	require.True(t, strings.HasSuffix(text, "Please confirm my order and provide payment details."))
}

func TestSummaryForEmptyCart(t *testing.T) {
	t.Parallel()
	require.Equal(t, "Hello, I want to confirm my order.", checkout.Summary(sampleDraft(), cart.Snapshot{}, ""))
}

func TestWhatsAppLink(t *testing.T) {
	t.Parallel()

	link := checkout.WhatsAppLink("+92 314 7864467", "Hello & bye")
	require.True(t, strings.HasPrefix(link, "https://wa.me/923147864467?text="))
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	require.Equal(t, "Hello & bye", parsed.Query().Get("text"))
	require.NotContains(t, link, "+")
	require.Equal(t, "Order #ORD-1 created successfully! Opening WhatsApp...", checkout.SuccessMessage("ORD-1"))
}
