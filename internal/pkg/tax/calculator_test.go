package tax

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumedesk/ResumeDesk/app/models"
)

func strPtr(s string) *string { return &s }

func indiaGSTFixture() []models.TaxSetting {
	return DefaultIndiaGST("Karnataka")
}

func TestExclusiveTax_StandardRate(t *testing.T) {
	subtotal := decimal.NewFromInt(1000)
	rate := decimal.NewFromInt(18)

	tax := ExclusiveTax(subtotal, rate)
	total := subtotal.Add(tax)

	assert.True(t, tax.Equal(decimal.NewFromInt(180)), "tax = %s", tax)
	assert.True(t, total.Equal(decimal.NewFromInt(1180)), "total = %s", total)
}

func TestInclusiveTax_StandardRate(t *testing.T) {
	total := decimal.NewFromInt(1180)
	rate := decimal.NewFromInt(18)

	tax := InclusiveTax(total, rate)
	subtotal := total.Sub(tax)

	assert.True(t, tax.Equal(decimal.NewFromInt(180)), "tax = %s", tax)
	assert.True(t, subtotal.Equal(decimal.NewFromInt(1000)), "subtotal = %s", subtotal)
}

// Feeding an exclusive-mode total back through the inclusive formula must
// recover the original subtotal. The exclusive formula applied to an
// inclusive total would overstate the tax, which is exactly the historical
// bug the correction script exists for.
func TestInclusiveIsInverseOfExclusive(t *testing.T) {
	tolerance := decimal.New(1, -6) // 1e-6

	cases := []struct {
		subtotal string
		rate     string
	}{
		{"1000", "18"},
		{"499.99", "18"},
		{"129", "12.5"},
		{"0.01", "18"},
		{"94999", "28"},
		{"750", "0"},
		{"333.33", "9.75"},
	}

	for _, tc := range cases {
		subtotal := decimal.RequireFromString(tc.subtotal)
		rate := decimal.RequireFromString(tc.rate)

		total := subtotal.Add(ExclusiveTax(subtotal, rate))
		recovered := total.Sub(InclusiveTax(total, rate))

		diff := recovered.Sub(subtotal).Abs()
		assert.True(t, diff.LessThanOrEqual(tolerance),
			"subtotal %s rate %s: recovered %s, diff %s", tc.subtotal, tc.rate, recovered, diff)
	}
}

func TestInclusiveTax_ZeroRate(t *testing.T) {
	tax := InclusiveTax(decimal.NewFromInt(500), decimal.Zero)
	assert.True(t, tax.IsZero())
}

func TestEffectiveRate_SumsComponents(t *testing.T) {
	settings := []models.TaxSetting{
		{Type: models.TaxTypeCGST, Percentage: decimal.NewFromInt(9)},
		{Type: models.TaxTypeSGST, Percentage: decimal.NewFromInt(9)},
	}
	assert.True(t, EffectiveRate(settings).Equal(decimal.NewFromInt(18)))
	assert.True(t, EffectiveRate(nil).IsZero())
}

func TestMatchingSettings_NoMatchIsZeroTax(t *testing.T) {
	// No enabled rule for the GLOBAL/USD sale: valid zero-tax outcome.
	b := ComputeExclusive(decimal.NewFromInt(100), "US", "", models.RegionGlobal, models.CurrencyUSD, indiaGSTFixture())

	assert.True(t, b.EffectiveRate.IsZero())
	assert.True(t, b.TaxAmount.IsZero())
	assert.True(t, b.Total.Equal(decimal.NewFromInt(100)))
	assert.Empty(t, b.Lines)
}

func TestSelectForSale_IntraStatePicksSplitComponents(t *testing.T) {
	selected := SelectForSale(indiaGSTFixture(), "IN", "Karnataka", models.RegionIndia, models.CurrencyINR)

	require.Len(t, selected, 2)
	types := []string{selected[0].Type, selected[1].Type}
	assert.Contains(t, types, models.TaxTypeCGST)
	assert.Contains(t, types, models.TaxTypeSGST)
	assert.True(t, EffectiveRate(selected).Equal(decimal.NewFromInt(18)))
}

func TestSelectForSale_InterStatePicksIGST(t *testing.T) {
	selected := SelectForSale(indiaGSTFixture(), "IN", "Kerala", models.RegionIndia, models.CurrencyINR)

	require.Len(t, selected, 1)
	assert.Equal(t, models.TaxTypeIGST, selected[0].Type)
	assert.True(t, selected[0].Percentage.Equal(decimal.NewFromInt(18)))
}

func TestSelectForSale_FallsBackToPlainGST(t *testing.T) {
	settings := []models.TaxSetting{
		{Name: "GST", Type: models.TaxTypeGST, Percentage: decimal.NewFromInt(18), Country: "IN", Enabled: true, ApplyToRegion: models.RegionIndia, ApplyCurrency: models.CurrencyINR},
	}
	selected := SelectForSale(settings, "IN", "Kerala", models.RegionIndia, models.CurrencyINR)

	require.Len(t, selected, 1)
	assert.Equal(t, models.TaxTypeGST, selected[0].Type)
}

// The computation itself stays faithful to the flat rule table: handing it
// all four default rows for an intra-state sale sums every match. Enforcing
// the CGST/SGST vs IGST convention is SelectForSale's job, not the engine's.
func TestComputeExclusive_SumsAllMatchesWithoutConvention(t *testing.T) {
	b := ComputeExclusive(decimal.NewFromInt(100), "IN", "Karnataka", models.RegionIndia, models.CurrencyINR, indiaGSTFixture())

	// GST 18 + CGST 9 + SGST 9 + IGST 18 all match intra-state.
	assert.True(t, b.EffectiveRate.Equal(decimal.NewFromInt(54)), "rate = %s", b.EffectiveRate)
	assert.Len(t, b.Lines, 4)
}

func TestComputeInclusive_BreakdownLinesSplitProRata(t *testing.T) {
	settings := []models.TaxSetting{
		{Name: "CGST", Type: models.TaxTypeCGST, Percentage: decimal.NewFromInt(9), Country: "IN", StateApplicable: strPtr("Karnataka"), Enabled: true, ApplyToRegion: models.RegionIndia, ApplyCurrency: models.CurrencyINR},
		{Name: "SGST", Type: models.TaxTypeSGST, Percentage: decimal.NewFromInt(9), Country: "IN", StateApplicable: strPtr("Karnataka"), Enabled: true, ApplyToRegion: models.RegionIndia, ApplyCurrency: models.CurrencyINR},
	}

	b := ComputeInclusive(decimal.NewFromInt(1180), "IN", "Karnataka", models.RegionIndia, models.CurrencyINR, settings)

	require.Len(t, b.Lines, 2)
	assert.True(t, b.TaxAmount.Equal(decimal.NewFromInt(180)), "tax = %s", b.TaxAmount)
	assert.True(t, b.Subtotal.Equal(decimal.NewFromInt(1000)), "subtotal = %s", b.Subtotal)
	assert.True(t, b.Total.Equal(decimal.NewFromInt(1180)))
	// Each 9% component carries half of the 180.
	assert.True(t, b.Lines[0].Amount.Equal(decimal.NewFromInt(90)), "line = %s", b.Lines[0].Amount)
	assert.True(t, b.Lines[1].Amount.Equal(decimal.NewFromInt(90)), "line = %s", b.Lines[1].Amount)
}

func TestDefaultIndiaGST_Structure(t *testing.T) {
	defaults := DefaultIndiaGST("Karnataka")

	require.Len(t, defaults, 4)

	byType := map[string]models.TaxSetting{}
	for _, ts := range defaults {
		byType[ts.Type] = ts
		assert.True(t, ts.Enabled, "%s must be enabled", ts.Type)
		assert.Equal(t, "IN", ts.Country)
		assert.Equal(t, models.RegionIndia, ts.ApplyToRegion)
		assert.Equal(t, models.CurrencyINR, ts.ApplyCurrency)
	}

	assert.True(t, byType[models.TaxTypeGST].Percentage.Equal(decimal.NewFromInt(18)))
	assert.True(t, byType[models.TaxTypeCGST].Percentage.Equal(decimal.NewFromInt(9)))
	assert.True(t, byType[models.TaxTypeSGST].Percentage.Equal(decimal.NewFromInt(9)))
	assert.True(t, byType[models.TaxTypeIGST].Percentage.Equal(decimal.NewFromInt(18)))

	require.NotNil(t, byType[models.TaxTypeCGST].StateApplicable)
	assert.Equal(t, "Karnataka", *byType[models.TaxTypeCGST].StateApplicable)
	require.NotNil(t, byType[models.TaxTypeSGST].StateApplicable)
	assert.Equal(t, "Karnataka", *byType[models.TaxTypeSGST].StateApplicable)
	assert.Nil(t, byType[models.TaxTypeGST].StateApplicable)
	assert.Nil(t, byType[models.TaxTypeIGST].StateApplicable)
}
