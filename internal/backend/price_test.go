package backend

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want Price
	}{
		{"12.50 $", 1250},
		{"Rs. 1,200.00", 120000},
		{"Rs.99", 9900},
		{"0.5", 50},
		{"3.005", 301},
		{"", 0},
		{"-4.25", -425},
		{"1.200.50", 120050},
	}
	for _, tc := range cases {
		got, err := ParsePrice(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}

func TestPriceUnmarshalAcceptsNumbersAndStrings(t *testing.T) {
	var payload struct {
		A Price `json:"a"`
		B Price `json:"b"`
		C Price `json:"c"`
		D Price `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"12.50 $","b":19.99,"c":null,"d":"1500"}`), &payload))
	require.Equal(t, Price(1250), payload.A)
	require.Equal(t, Price(1999), payload.B)
	require.Equal(t, Price(0), payload.C)
	require.Equal(t, Price(150000), payload.D)
}

func TestPriceDecimalAndTimes(t *testing.T) {
	require.Equal(t, "12.50", Price(1250).Decimal())
	require.Equal(t, "-0.05", Price(-5).Decimal())
	require.Equal(t, Price(3750), Price(1250).Times(3))

	raw, err := json.Marshal(Price(1250))
	require.NoError(t, err)
	require.Equal(t, "12.50", string(raw))
}
