package tax

import (
	"github.com/shopspring/decimal"

	"github.com/resumedesk/ResumeDesk/app/models"
)

var (
	hundred = decimal.NewFromInt(100)
)

// Breakdown is the result of one tax computation. Amounts are kept at full
// precision; callers round when persisting or rendering.
type Breakdown struct {
	EffectiveRate decimal.Decimal
	Subtotal      decimal.Decimal
	TaxAmount     decimal.Decimal
	Total         decimal.Decimal
	Lines         []models.TaxLine
	Inclusive     bool
}

// Details converts the breakdown into the persisted invoice shape with
// two-decimal line amounts.
func (b Breakdown) Details() models.TaxDetails {
	lines := make([]models.TaxLine, len(b.Lines))
	for i, l := range b.Lines {
		lines[i] = models.TaxLine{Type: l.Type, Percentage: l.Percentage, Amount: l.Amount.Round(2)}
	}
	return models.TaxDetails{
		TaxPercentage: b.EffectiveRate,
		TaxBreakdown:  lines,
		Inclusive:     b.Inclusive,
	}
}

// MatchingSettings filters settings down to the enabled rules that apply to
// a sale with the given buyer coordinates.
func MatchingSettings(settings []models.TaxSetting, country, state, region, currency string) []models.TaxSetting {
	var matched []models.TaxSetting
	for _, ts := range settings {
		if ts.AppliesTo(country, state, region, currency) {
			matched = append(matched, ts)
		}
	}
	return matched
}

// EffectiveRate sums the percentages of the given settings. No enabled match
// is a valid zero-tax outcome, never an error.
func EffectiveRate(settings []models.TaxSetting) decimal.Decimal {
	rate := decimal.Zero
	for _, ts := range settings {
		rate = rate.Add(ts.Percentage)
	}
	return rate
}

// ExclusiveTax returns the tax added on top of a net subtotal.
func ExclusiveTax(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate).Div(hundred)
}

// InclusiveTax extracts the tax embedded in a gross total. This is the only
// correct back-computation: applying the exclusive formula to an inclusive
// total systematically overstates the tax.
func InclusiveTax(total, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return decimal.Zero
	}
	return total.Mul(rate).Div(hundred.Add(rate))
}

// ComputeExclusive computes tax on top of the subtotal using every matching
// setting and returns the full breakdown.
func ComputeExclusive(subtotal decimal.Decimal, country, state, region, currency string, settings []models.TaxSetting) Breakdown {
	matched := MatchingSettings(settings, country, state, region, currency)
	rate := EffectiveRate(matched)

	b := Breakdown{
		EffectiveRate: rate,
		Subtotal:      subtotal,
		TaxAmount:     ExclusiveTax(subtotal, rate),
	}
	b.Total = subtotal.Add(b.TaxAmount)
	for _, ts := range matched {
		b.Lines = append(b.Lines, models.TaxLine{
			Type:       ts.Type,
			Percentage: ts.Percentage,
			Amount:     ExclusiveTax(subtotal, ts.Percentage),
		})
	}
	return b
}

// ComputeInclusive derives subtotal and tax from a fixed gross total using
// every matching setting. Total passes through unchanged.
func ComputeInclusive(total decimal.Decimal, country, state, region, currency string, settings []models.TaxSetting) Breakdown {
	matched := MatchingSettings(settings, country, state, region, currency)
	rate := EffectiveRate(matched)
	return inclusiveBreakdown(total, rate, matched)
}

// InclusiveFromRate derives subtotal and tax from a gross total and an
// already-known effective rate, keeping the stored per-line split when the
// individual settings are no longer available.
func InclusiveFromRate(total, rate decimal.Decimal, lines []models.TaxLine) Breakdown {
	b := inclusiveBreakdown(total, rate, nil)
	for _, l := range lines {
		b.Lines = append(b.Lines, models.TaxLine{
			Type:       l.Type,
			Percentage: l.Percentage,
			Amount:     InclusiveTax(total, rate).Mul(ratioOf(l.Percentage, rate)),
		})
	}
	return b
}

func inclusiveBreakdown(total, rate decimal.Decimal, matched []models.TaxSetting) Breakdown {
	b := Breakdown{
		EffectiveRate: rate,
		Total:         total,
		TaxAmount:     InclusiveTax(total, rate),
		Inclusive:     true,
	}
	b.Subtotal = total.Sub(b.TaxAmount)
	for _, ts := range matched {
		b.Lines = append(b.Lines, models.TaxLine{
			Type:       ts.Type,
			Percentage: ts.Percentage,
			Amount:     InclusiveTax(total, rate).Mul(ratioOf(ts.Percentage, rate)),
		})
	}
	return b
}

// ratioOf returns p/rate, the share one component contributes to the summed
// effective rate.
func ratioOf(p, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return decimal.Zero
	}
	return p.Div(rate)
}

// SelectForSale applies the CGST/SGST vs IGST convention that the flat rule
// table cannot express on its own: state-scoped components win for
// intra-state sales, IGST rows for inter-state, and the plain GST row is
// used only when no split components matched. The computation functions
// themselves stay dumb and sum whatever they are handed.
func SelectForSale(settings []models.TaxSetting, country, state, region, currency string) []models.TaxSetting {
	matched := MatchingSettings(settings, country, state, region, currency)

	var scoped, igst, plain []models.TaxSetting
	for _, ts := range matched {
		switch {
		case ts.StateApplicable != nil && *ts.StateApplicable != "":
			scoped = append(scoped, ts)
		case ts.Type == models.TaxTypeIGST:
			igst = append(igst, ts)
		default:
			plain = append(plain, ts)
		}
	}

	if len(scoped) > 0 {
		return scoped
	}
	if len(igst) > 0 {
		return igst
	}
	return plain
}

// DefaultIndiaGST returns the standard four-row Indian GST structure: a
// plain 18% GST row for simple display, CGST+SGST at 9% each scoped to the
// seller's state for intra-state sales, and IGST at 18% for inter-state.
func DefaultIndiaGST(sellerState string) []models.TaxSetting {
	state := sellerState
	return []models.TaxSetting{
		{Name: "GST", Type: models.TaxTypeGST, Percentage: decimal.NewFromInt(18), Country: "IN", Enabled: true, ApplyToRegion: models.RegionIndia, ApplyCurrency: models.CurrencyINR},
		{Name: "CGST", Type: models.TaxTypeCGST, Percentage: decimal.NewFromInt(9), Country: "IN", StateApplicable: &state, Enabled: true, ApplyToRegion: models.RegionIndia, ApplyCurrency: models.CurrencyINR},
		{Name: "SGST", Type: models.TaxTypeSGST, Percentage: decimal.NewFromInt(9), Country: "IN", StateApplicable: &state, Enabled: true, ApplyToRegion: models.RegionIndia, ApplyCurrency: models.CurrencyINR},
		{Name: "IGST", Type: models.TaxTypeIGST, Percentage: decimal.NewFromInt(18), Country: "IN", Enabled: true, ApplyToRegion: models.RegionIndia, ApplyCurrency: models.CurrencyINR},
	}
}
