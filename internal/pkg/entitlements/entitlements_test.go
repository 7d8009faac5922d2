package entitlements

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/resumedesk/ResumeDesk/app/models"
)

func usableSub(tier, maxResumes, maxLetters int) *models.UserSubscription {
	now := time.Now()
	return &models.UserSubscription{
		Status:    models.SubStatusActive,
		StartDate: now.AddDate(0, 0, -5),
		EndDate:   now.AddDate(0, 0, 25),
		Plan: models.SubscriptionPlan{
			Tier:       tier,
			MaxResumes: maxResumes,
			MaxLetters: maxLetters,
		},
	}
}

func TestForSubscription_NilOrLapsedFallsBackToFree(t *testing.T) {
	now := time.Now()

	assert.Equal(t, freeLimits, ForSubscription(nil, now))

	expired := usableSub(10, 5, 5)
	expired.Status = models.SubStatusExpired
	assert.Equal(t, freeLimits, ForSubscription(expired, now))

	lapsedGrace := usableSub(10, 5, 5)
	graceEnd := now.Add(-time.Hour)
	lapsedGrace.Status = models.SubStatusGracePeriod
	lapsedGrace.GracePeriodEnd = &graceEnd
	assert.Equal(t, freeLimits, ForSubscription(lapsedGrace, now))
}

func TestForSubscription_TierGates(t *testing.T) {
	now := time.Now()

	pro := ForSubscription(usableSub(10, 5, 5), now)
	assert.Equal(t, PlanPro, pro.Plan)
	assert.True(t, pro.PremiumTemplates)
	assert.True(t, pro.PhotoWebP)
	assert.False(t, pro.WatermarkFree)

	max := ForSubscription(usableSub(20, 0, 0), now)
	assert.Equal(t, PlanMax, max.Plan)
	assert.True(t, max.WatermarkFree)
}

func TestForSubscription_CancelledStaysUsableUntilEndDate(t *testing.T) {
	now := time.Now()
	sub := usableSub(10, 5, 5)
	sub.Status = models.SubStatusCancelled

	got := ForSubscription(sub, now)
	assert.Equal(t, PlanPro, got.Plan)

	afterEnd := sub.EndDate.Add(time.Hour)
	assert.Equal(t, freeLimits, ForSubscription(sub, afterEnd))
}

func TestLimits_DocumentCaps(t *testing.T) {
	l := Limits{MaxResumes: 2, MaxLetters: 1}
	assert.True(t, l.CanCreateResume(1))
	assert.False(t, l.CanCreateResume(2))
	assert.False(t, l.CanCreateLetter(1))

	unlimited := Limits{MaxResumes: 0, MaxLetters: -1}
	assert.True(t, unlimited.CanCreateResume(9999))
	assert.True(t, unlimited.CanCreateLetter(9999))
}

func TestLimits_CanUseTemplate(t *testing.T) {
	premium := &models.DocumentTemplate{IsPremium: true, Active: true}
	free := &models.DocumentTemplate{Active: true}
	inactive := &models.DocumentTemplate{Active: false}

	assert.False(t, freeLimits.CanUseTemplate(premium))
	assert.True(t, freeLimits.CanUseTemplate(free))
	assert.False(t, freeLimits.CanUseTemplate(inactive))
	assert.False(t, freeLimits.CanUseTemplate(nil))

	pro := Limits{PremiumTemplates: true}
	assert.True(t, pro.CanUseTemplate(premium))
}
