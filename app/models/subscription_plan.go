package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	BillingCycleMonthly = "MONTHLY"
	BillingCycleYearly  = "YEARLY"
)

// SubscriptionPlan is the catalog entry a user subscribes to. Prices live in
// PlanPricing, one row per target region, each with its own currency.
// Once a live subscription references a plan, only soft fields (name,
// description, feature copy) may change; billing cycle and tier are frozen.
type SubscriptionPlan struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"type:varchar(100);not null" json:"name" validate:"required,min=2,max=100"`
	Slug         string         `gorm:"type:varchar(100);not null;uniqueIndex" json:"slug" validate:"required,min=2,max=100"`
	Description  string         `gorm:"type:text" json:"description"`
	BillingCycle string         `gorm:"type:varchar(20);not null;default:'MONTHLY'" json:"billing_cycle" validate:"oneof=MONTHLY YEARLY"`
	Tier         int            `gorm:"not null;default:0;index" json:"tier"` // ordering for upgrade/downgrade comparison, freemium = 0
	IsFeatured   bool           `gorm:"default:false" json:"is_featured"`
	IsFreemium   bool           `gorm:"default:false" json:"is_freemium"`
	Active       bool           `gorm:"default:true;index" json:"active"`
	MaxResumes   int            `gorm:"default:1" json:"max_resumes"`
	MaxLetters   int            `gorm:"default:1" json:"max_letters"`
	Pricing      []PlanPricing  `gorm:"foreignKey:PlanID" json:"pricing,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *SubscriptionPlan) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// DurationDays returns the nominal length of one billing period.
func (p *SubscriptionPlan) DurationDays() int {
	if p.BillingCycle == BillingCycleYearly {
		return 365
	}
	return 30
}

// PricingFor returns the preloaded pricing row for the given region, nil if
// the plan is not sold there.
func (p *SubscriptionPlan) PricingFor(region string) *PlanPricing {
	for i := range p.Pricing {
		if p.Pricing[i].TargetRegion == region {
			return &p.Pricing[i]
		}
	}
	return nil
}
