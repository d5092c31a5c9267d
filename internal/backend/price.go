package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Price is an amount in minor units (paisa). The API sends prices either as JSON numbers
// or as display strings such as "12.50 $" or "1,200.00"; both decode to the same value.
type Price int64

// UnmarshalJSON implements json.Unmarshaler.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		v, err := ParsePrice(text)
		if err != nil {
			return err
		}
		*p = v
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("backend: price %s: %w", string(data), err)
	}
	*p = Price(math.Round(f * 100))
	return nil
}

// MarshalJSON encodes the price as a decimal number.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal()), nil
}

// Decimal renders the amount as "12.50".
func (p Price) Decimal() string {
	v := int64(p)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Times multiplies a unit price by a quantity.
func (p Price) Times(qty int) Price {
	return p * Price(qty)
}

// ParsePrice extracts a decimal amount from free-form text, ignoring currency symbols,
// labels and thousands separators. Empty text parses as zero.
func ParsePrice(text string) (Price, error) {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" || cleaned == "-" {
		return 0, nil
	}
	// keep only the last decimal point ("1.200.50")
	if strings.Count(cleaned, ".") > 1 {
		last := strings.LastIndex(cleaned, ".")
		cleaned = strings.ReplaceAll(cleaned[:last], ".", "") + cleaned[last:]
	}

	neg := strings.HasPrefix(cleaned, "-")
	cleaned = strings.TrimPrefix(cleaned, "-")
	whole, frac, _ := strings.Cut(cleaned, ".")
	if whole == "" {
		whole = "0"
	}
	major, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("backend: price %q: %w", text, err)
	}
	var minor int64
	if frac != "" {
		// round half up on the third decimal
		padded := frac + "00"
		minor, err = strconv.ParseInt(padded[:2], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("backend: price %q: %w", text, err)
		}
		if len(frac) > 2 && frac[2] >= '5' {
			minor++
		}
	}
	v := major*100 + minor
	if neg {
		v = -v
	}
	return Price(v), nil
}
