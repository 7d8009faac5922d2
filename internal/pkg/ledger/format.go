package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/resumedesk/ResumeDesk/app/models"
)

// FormatAmount renders a money amount for display. INR uses the rupee glyph
// with Indian digit grouping and two-decimal truncation; a zero amount is
// always plain "0.00" without grouping. USD uses two fixed decimals behind a
// dollar glyph. Anything else falls back to "<amount> <CODE>".
func FormatAmount(amount decimal.Decimal, currency string) string {
	switch strings.ToUpper(currency) {
	case models.CurrencyINR:
		if amount.IsZero() {
			return "₹0.00"
		}
		if amount.IsNegative() {
			return "-" + FormatAmount(amount.Neg(), currency)
		}
		return "₹" + formatIndianGrouping(amount.Truncate(2))
	case models.CurrencyUSD:
		return "$" + amount.StringFixed(2)
	default:
		code := strings.ToUpper(strings.TrimSpace(currency))
		if code == "" {
			return amount.StringFixed(2)
		}
		return amount.StringFixed(2) + " " + code
	}
}

// formatIndianGrouping inserts en-IN digit separators into a non-negative
// amount: the last three integer digits form one group, everything above is
// grouped in pairs (12,34,567.00).
func formatIndianGrouping(amount decimal.Decimal) string {
	s := amount.StringFixed(2)

	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart = s[:dot]
		fracPart = s[dot:]
	}

	if len(intPart) <= 3 {
		return intPart + fracPart
	}

	head := intPart[:len(intPart)-3]
	tail := intPart[len(intPart)-3:]

	var pairs []string
	for len(head) > 2 {
		pairs = append([]string{head[len(head)-2:]}, pairs...)
		head = head[:len(head)-2]
	}
	if head != "" {
		pairs = append([]string{head}, pairs...)
	}

	return strings.Join(append(pairs, tail), ",") + fracPart
}
