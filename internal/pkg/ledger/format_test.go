package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     string
	}{
		{"inr zero is plain", "0", "INR", "₹0.00"},
		{"inr small", "500", "INR", "₹500.00"},
		{"inr thousand group", "1500", "INR", "₹1,500.00"},
		{"inr lakh grouping", "123456.78", "INR", "₹1,23,456.78"},
		{"inr crore grouping", "12345678.90", "INR", "₹1,23,45,678.90"},
		{"inr truncates extra decimals", "499.999", "INR", "₹499.99"},
		{"inr negative", "-1234.50", "INR", "-₹1,234.50"},
		{"usd", "12.5", "USD", "$12.50"},
		{"usd zero", "0", "USD", "$0.00"},
		{"fallback code", "99.9", "EUR", "99.90 EUR"},
		{"fallback lowercase code", "5", "gbp", "5.00 GBP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAmount(decimal.RequireFromString(tt.amount), tt.currency)
			if got != tt.want {
				t.Fatalf("FormatAmount(%s, %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
			}
		})
	}
}
