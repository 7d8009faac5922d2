package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestTaxSettingAppliesTo(t *testing.T) {
	tests := []struct {
		name    string
		setting TaxSetting
		country string
		state   string
		region  string
		curr    string
		want    bool
	}{
		{
			name:    "country wide rule matches any state",
			setting: TaxSetting{Type: TaxTypeGST, Percentage: decimal.NewFromInt(18), Country: "IN", Enabled: true, ApplyToRegion: RegionIndia, ApplyCurrency: CurrencyINR},
			country: "IN", state: "Kerala", region: RegionIndia, curr: CurrencyINR,
			want: true,
		},
		{
			name:    "state scoped rule matches same state",
			setting: TaxSetting{Type: TaxTypeCGST, Percentage: decimal.NewFromInt(9), Country: "IN", StateApplicable: strPtr("Karnataka"), Enabled: true, ApplyToRegion: RegionIndia, ApplyCurrency: CurrencyINR},
			country: "IN", state: "Karnataka", region: RegionIndia, curr: CurrencyINR,
			want: true,
		},
		{
			name:    "state scoped rule skips other state",
			setting: TaxSetting{Type: TaxTypeSGST, Percentage: decimal.NewFromInt(9), Country: "IN", StateApplicable: strPtr("Karnataka"), Enabled: true, ApplyToRegion: RegionIndia, ApplyCurrency: CurrencyINR},
			country: "IN", state: "Kerala", region: RegionIndia, curr: CurrencyINR,
			want: false,
		},
		{
			name:    "disabled rule never applies",
			setting: TaxSetting{Type: TaxTypeIGST, Percentage: decimal.NewFromInt(18), Country: "IN", Enabled: false, ApplyToRegion: RegionIndia, ApplyCurrency: CurrencyINR},
			country: "IN", state: "Kerala", region: RegionIndia, curr: CurrencyINR,
			want: false,
		},
		{
			name:    "currency mismatch",
			setting: TaxSetting{Type: TaxTypeGST, Percentage: decimal.NewFromInt(18), Country: "IN", Enabled: true, ApplyToRegion: RegionIndia, ApplyCurrency: CurrencyINR},
			country: "IN", state: "", region: RegionIndia, curr: CurrencyUSD,
			want: false,
		},
		{
			name:    "region mismatch",
			setting: TaxSetting{Type: TaxTypeGST, Percentage: decimal.NewFromInt(18), Country: "IN", Enabled: true, ApplyToRegion: RegionIndia, ApplyCurrency: CurrencyINR},
			country: "IN", state: "", region: RegionGlobal, curr: CurrencyINR,
			want: false,
		},
		{
			name:    "empty state scope behaves like unscoped",
			setting: TaxSetting{Type: TaxTypeGST, Percentage: decimal.NewFromInt(18), Country: "IN", StateApplicable: strPtr(""), Enabled: true, ApplyToRegion: RegionIndia, ApplyCurrency: CurrencyINR},
			country: "IN", state: "Kerala", region: RegionIndia, curr: CurrencyINR,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.setting.AppliesTo(tt.country, tt.state, tt.region, tt.curr)
			assert.Equal(t, tt.want, got)
		})
	}
}
