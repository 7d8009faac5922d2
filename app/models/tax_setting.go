package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	TaxTypeGST  = "GST"
	TaxTypeCGST = "CGST"
	TaxTypeSGST = "SGST"
	TaxTypeIGST = "IGST"
)

// TaxSetting is one configurable tax rule. Several enabled rules may match
// the same sale (CGST+SGST intra-state, IGST inter-state); the tax engine
// sums every enabled match and does not enforce the CGST/SGST vs IGST
// exclusivity convention.
type TaxSetting struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"type:varchar(100);not null" json:"name" validate:"required,min=1,max=100"`
	Type            string          `gorm:"type:varchar(10);not null" json:"type" validate:"oneof=GST CGST SGST IGST"`
	Percentage      decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"percentage"`
	Country         string          `gorm:"type:varchar(2);not null;index" json:"country" validate:"required,len=2"`
	StateApplicable *string         `gorm:"type:varchar(100);default:null" json:"state_applicable,omitempty"` // nil = applies regardless of buyer state
	Enabled         bool            `gorm:"default:true;index" json:"enabled"`
	ApplyToRegion   string          `gorm:"type:varchar(20);not null;default:'INDIA'" json:"apply_to_region" validate:"oneof=INDIA GLOBAL"`
	ApplyCurrency   string          `gorm:"type:varchar(3);not null;default:'INR'" json:"apply_currency" validate:"oneof=INR USD"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *TaxSetting) Validate() error {
	v := validator.New()

	return v.Struct(t)
}

// AppliesTo reports whether this rule participates in a sale with the given
// buyer coordinates. State-scoped rules only match when the buyer state
// equals the configured state.
func (t *TaxSetting) AppliesTo(country, state, region, currency string) bool {
	if !t.Enabled {
		return false
	}
	if t.Country != country || t.ApplyToRegion != region || t.ApplyCurrency != currency {
		return false
	}
	if t.StateApplicable != nil && *t.StateApplicable != "" && *t.StateApplicable != state {
		return false
	}
	return true
}
