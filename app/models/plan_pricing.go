package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RegionIndia  = "INDIA"
	RegionGlobal = "GLOBAL"
)

const (
	CurrencyINR = "INR"
	CurrencyUSD = "USD"
)

// PlanPricing stores the price of one plan in one target region. The
// (plan, region) pair is unique; the currency is fixed per region so the
// checkout and the tax engine never have to guess which currency applies.
type PlanPricing struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	PlanID       uint            `gorm:"not null;index:ux_plan_pricing_plan_region,unique,priority:1" json:"plan_id"`
	TargetRegion string          `gorm:"type:varchar(20);not null;index:ux_plan_pricing_plan_region,unique,priority:2" json:"target_region" validate:"oneof=INDIA GLOBAL"`
	Currency     string          `gorm:"type:varchar(3);not null" json:"currency" validate:"oneof=INR USD"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	TaxInclusive bool            `gorm:"default:false" json:"tax_inclusive"` // listed price already contains tax (usual for INR)
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// RegionForCountry maps an ISO country code onto a pricing region.
func RegionForCountry(country string) string {
	if country == "IN" {
		return RegionIndia
	}
	return RegionGlobal
}

// CurrencyForRegion returns the selling currency of a region.
func CurrencyForRegion(region string) string {
	if region == RegionIndia {
		return CurrencyINR
	}
	return CurrencyUSD
}
