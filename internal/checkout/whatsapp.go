package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/cart"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/format"
)

const whatsAppBase = "https://wa.me/"

// Summary renders the order message the customer sends over WhatsApp. Checkout carries no
// shipping charge, so the total equals the subtotal.
func Summary(draft Draft, snap cart.Snapshot, orderNumber string) string {
	if snap.Empty() {
		return "Hello, I want to confirm my order."
	}
	d := draft.Normalized()
	var b strings.Builder
	b.WriteString("Hello, I want to confirm my order:\n\n")
	if orderNumber != "" {
		fmt.Fprintf(&b, "📦 *ORDER NUMBER: %s*\n\n", orderNumber)
	}

	b.WriteString("📋 *SHIPPING DETAILS:*\n")
	fmt.Fprintf(&b, "👤 Name: %s %s\n", d.FirstName, d.LastName)
	fmt.Fprintf(&b, "📱 Mobile: %s\n", d.Mobile)
	fmt.Fprintf(&b, "📍 Address: %s\n", d.Address)
	fmt.Fprintf(&b, "🏙️ City: %s\n", d.City)
	fmt.Fprintf(&b, "🌍 Country: %s\n", d.Country)
	if d.Zipcode != "" {
		fmt.Fprintf(&b, "📮 Zipcode: %s\n", d.Zipcode)
	}
	if d.Email != "" {
		fmt.Fprintf(&b, "📧 Email: %s\n", d.Email)
	}
	if d.OrderNotes != "" {
		fmt.Fprintf(&b, "📝 Order Notes: %s\n", d.OrderNotes)
	}
	b.WriteString("\n")

	b.WriteString("🛒 *ORDER ITEMS:*\n")
	for _, item := range snap.Items {
		fmt.Fprintf(&b, "• %s - Qty: %d - %s\n", item.Product.Name, item.Quantity, format.Money(item.LineTotal()))
	}
	sub := snap.Subtotal()
	fmt.Fprintf(&b, "\n💰 Subtotal: %s", format.Money(sub))
	fmt.Fprintf(&b, "\n💳 Total: %s", format.Money(sub))
	if orderNumber != "" {
		fmt.Fprintf(&b, "\n\n📦 Order Reference: %s", orderNumber)
	}
	b.WriteString("\n\nPlease confirm my order and provide payment details.")
	return b.String()
}

// WhatsAppLink builds the wa.me deep link carrying text.
func WhatsAppLink(number, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	return whatsAppBase + digits + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// SuccessMessage is the toast shown once the order is stored.
func SuccessMessage(orderNumber string) string {
	return fmt.Sprintf("Order #%s created successfully! Opening WhatsApp...", orderNumber)
}
