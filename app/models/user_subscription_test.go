package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserSubscriptionIsUsable(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(10 * 24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name string
		sub  UserSubscription
		want bool
	}{
		{"active", UserSubscription{Status: SubStatusActive, EndDate: future}, true},
		{"grace period before window end", UserSubscription{Status: SubStatusGracePeriod, EndDate: future, GracePeriodEnd: &future}, true},
		{"grace period after window end", UserSubscription{Status: SubStatusGracePeriod, EndDate: future, GracePeriodEnd: &past}, false},
		{"cancelled but paid period remains", UserSubscription{Status: SubStatusCancelled, EndDate: future}, true},
		{"cancelled and period over", UserSubscription{Status: SubStatusCancelled, EndDate: past}, false},
		{"expired", UserSubscription{Status: SubStatusExpired, EndDate: future}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.IsUsable(now))
		})
	}
}

func TestUserSubscriptionPendingPlanChange(t *testing.T) {
	now := time.Now()
	planID := uint(4)

	sub := UserSubscription{Status: SubStatusActive}
	assert.False(t, sub.HasPendingPlanChange())

	sub.PendingPlanChangeTo = &planID
	sub.PendingPlanChangeDate = &now
	sub.PendingPlanChangeType = PlanChangeDowngrade
	assert.True(t, sub.HasPendingPlanChange())

	sub.ClearPendingPlanChange()
	assert.False(t, sub.HasPendingPlanChange())
	assert.Nil(t, sub.PendingPlanChangeTo)
	assert.Nil(t, sub.PendingPlanChangeDate)
	assert.Equal(t, "", sub.PendingPlanChangeType)
}

func TestRegionMapping(t *testing.T) {
	assert.Equal(t, RegionIndia, RegionForCountry("IN"))
	assert.Equal(t, RegionGlobal, RegionForCountry("US"))
	assert.Equal(t, RegionGlobal, RegionForCountry(""))
	assert.Equal(t, CurrencyINR, CurrencyForRegion(RegionIndia))
	assert.Equal(t, CurrencyUSD, CurrencyForRegion(RegionGlobal))
}
