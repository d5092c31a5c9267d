package format

import (
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
)

// CurrencyLabel prefixes every rendered amount.
const CurrencyLabel = "Rs."

// Money formats an amount as "Rs.12.50".
func Money(p backend.Price) string {
	return MoneyWithLabel(p, CurrencyLabel)
}

// MoneyWithLabel formats an amount with a custom currency label and two decimals.
func MoneyWithLabel(p backend.Price, label string) string {
	s := p.Decimal()
	if strings.HasPrefix(s, "-") {
		return "-" + label + s[1:]
	}
	return label + s
}

// Grouped formats an amount with thousands separators: "Rs.1,200.00".
func Grouped(p backend.Price) string {
	v := int64(p)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	dec := backend.Price(v).Decimal()
	whole, frac, _ := strings.Cut(dec, ".")
	return sign + CurrencyLabel + thousandSep(whole) + "." + frac
}

func thousandSep(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	for i, c := range digits {
		if i != 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Title title-cases a label such as a product type ("ladies suit" => "Ladies Suit").
func Title(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", " "))
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(s)
}

// ProductBadge is the carousel badge text for a product type.
func ProductBadge(productType string) string {
	if t := Title(productType); t != "" {
		return t
	}
	return "Product"
}

// Truncate shortens text to limit runes and appends "..." when anything was cut.
func Truncate(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimRight(string(runes[:limit]), " ") + "..."
}

// FmtDate formats time in a locale-friendly short form.
func FmtDate(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	switch strings.ToLower(lang) {
	case "ur":
		return t.Format("02-01-2006")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// ParseTimestamp accepts the API's RFC 3339 timestamps and plain dates.
func ParseTimestamp(val string) time.Time {
	val = strings.TrimSpace(val)
	if val == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02"}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, val); err == nil {
			return ts
		}
	}
	return time.Time{}
}
