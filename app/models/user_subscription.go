package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SubStatusActive      = "ACTIVE"
	SubStatusGracePeriod = "GRACE_PERIOD"
	SubStatusExpired     = "EXPIRED"
	SubStatusCancelled   = "CANCELLED"
)

const (
	PlanChangeUpgrade   = "UPGRADE"
	PlanChangeDowngrade = "DOWNGRADE"
)

// GracePeriodDays is the fixed window a subscription stays usable after a
// failed payment while the gateway retries the charge.
const GracePeriodDays = 7

// UserSubscription tracks one user's subscription to a plan. A user has at
// most one ACTIVE or GRACE_PERIOD row at a time; CANCELLED and EXPIRED rows
// are kept for history and never physically deleted.
type UserSubscription struct {
	ID                    uint             `gorm:"primaryKey" json:"id"`
	UserID                uint             `gorm:"not null;index:idx_user_subscriptions_user_status,priority:1" json:"user_id"`
	User                  User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PlanID                uint             `gorm:"not null;index" json:"plan_id"`
	Plan                  SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Status                string           `gorm:"type:varchar(20);not null;default:'ACTIVE';index:idx_user_subscriptions_user_status,priority:2" json:"status"`
	StartDate             time.Time        `gorm:"not null" json:"start_date"`
	EndDate               time.Time        `gorm:"not null;index" json:"end_date"`
	AutoRenew             bool             `gorm:"default:true" json:"auto_renew"`
	GracePeriodEnd        *time.Time       `gorm:"type:timestamp;default:null;index" json:"grace_period_end,omitempty"`
	PaymentFailureCount   int              `gorm:"default:0" json:"payment_failure_count"`
	CancelDate            *time.Time       `gorm:"type:timestamp;default:null" json:"cancel_date,omitempty"`
	PendingPlanChangeTo   *uint            `gorm:"default:null" json:"pending_plan_change_to,omitempty"`
	PendingPlanChangeDate *time.Time       `gorm:"type:timestamp;default:null" json:"pending_plan_change_date,omitempty"`
	PendingPlanChangeType string           `gorm:"type:varchar(20);default:null" json:"pending_plan_change_type,omitempty"`
	Gateway               string           `gorm:"type:varchar(20);default:null" json:"gateway"`
	GatewaySubscriptionID string           `gorm:"type:varchar(191);default:null;index" json:"gateway_subscription_id"`
	GatewayCustomerID     string           `gorm:"type:varchar(191);default:null" json:"gateway_customer_id"`
	CreatedAt             time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsUsable reports whether the subscription currently grants plan access.
// CANCELLED subscriptions stay usable until their paid period runs out.
func (s *UserSubscription) IsUsable(now time.Time) bool {
	switch s.Status {
	case SubStatusActive:
		return true
	case SubStatusGracePeriod:
		return s.GracePeriodEnd == nil || now.Before(*s.GracePeriodEnd)
	case SubStatusCancelled:
		return now.Before(s.EndDate)
	default:
		return false
	}
}

// IsLive reports whether this row occupies the user's single live slot.
func (s *UserSubscription) IsLive() bool {
	return s.Status == SubStatusActive || s.Status == SubStatusGracePeriod
}

// HasPendingPlanChange reports whether a plan swap is scheduled.
func (s *UserSubscription) HasPendingPlanChange() bool {
	return s.PendingPlanChangeTo != nil && s.PendingPlanChangeDate != nil
}

// ClearPendingPlanChange drops any scheduled plan swap without applying it.
func (s *UserSubscription) ClearPendingPlanChange() {
	s.PendingPlanChangeTo = nil
	s.PendingPlanChangeDate = nil
	s.PendingPlanChangeType = ""
}

// DaysUntilEnd returns whole days until the paid period ends, never negative.
func (s *UserSubscription) DaysUntilEnd(now time.Time) int {
	d := int(s.EndDate.Sub(now).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// FindCurrentSubscription returns the user's newest subscription that may
// still grant plan access, with the plan preloaded. Callers decide actual
// usability with IsUsable; a stale CANCELLED row past its paid period is
// returned here and rejected there.
func FindCurrentSubscription(db *gorm.DB, userID uint) (*UserSubscription, error) {
	var sub UserSubscription
	result := db.Preload("Plan").
		Where("user_id = ? AND status IN ?", userID, []string{SubStatusActive, SubStatusGracePeriod, SubStatusCancelled}).
		Order("id DESC").
		First(&sub)
	if result.Error != nil {
		return nil, result.Error
	}
	return &sub, nil
}

// FindSubscriptionByGatewayID resolves a gateway subscription reference to
// the newest local row carrying it. Webhook handlers use this to map
// provider events back onto local state.
func FindSubscriptionByGatewayID(db *gorm.DB, gatewaySubscriptionID string) (*UserSubscription, error) {
	var sub UserSubscription
	result := db.Where("gateway_subscription_id = ?", gatewaySubscriptionID).
		Order("id DESC").
		First(&sub)
	if result.Error != nil {
		return nil, result.Error
	}
	return &sub, nil
}
