package entitlements

import (
	"time"

	"github.com/resumedesk/ResumeDesk/app/models"
)

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
	PlanMax  Plan = "max"
)

// Limits is what a plan entitles a user to. Document caps come from the plan
// row; the boolean gates are derived from the tier.
type Limits struct {
	Plan             Plan
	MaxResumes       int
	MaxLetters       int
	PremiumTemplates bool
	PhotoWebP        bool
	WatermarkFree    bool
}

// freeLimits is what everyone gets with no usable subscription.
var freeLimits = Limits{
	Plan:       PlanFree,
	MaxResumes: 1,
	MaxLetters: 1,
}

// PlanFromTier buckets a plan row's tier into the three entitlement levels.
func PlanFromTier(tier int) Plan {
	switch {
	case tier >= 20:
		return PlanMax
	case tier >= 10:
		return PlanPro
	default:
		return PlanFree
	}
}

// ForSubscription computes the user's limits from their subscription. A nil
// subscription or one that is no longer usable falls back to the free tier.
// The caller is expected to pass the subscription with its Plan preloaded.
func ForSubscription(sub *models.UserSubscription, now time.Time) Limits {
	if sub == nil || !sub.IsUsable(now) {
		return freeLimits
	}

	plan := PlanFromTier(sub.Plan.Tier)
	if plan == PlanFree && !sub.Plan.IsFreemium {
		// A paid plan row with tier 0 still counts as pro access.
		plan = PlanPro
	}

	limits := Limits{
		Plan:       plan,
		MaxResumes: sub.Plan.MaxResumes,
		MaxLetters: sub.Plan.MaxLetters,
	}
	switch plan {
	case PlanMax:
		limits.PremiumTemplates = true
		limits.PhotoWebP = true
		limits.WatermarkFree = true
	case PlanPro:
		limits.PremiumTemplates = true
		limits.PhotoWebP = true
	}
	return limits
}

// CanCreateResume reports whether another resume fits under the cap. A cap
// of zero or less means unlimited.
func (l Limits) CanCreateResume(current int64) bool {
	return l.MaxResumes <= 0 || current < int64(l.MaxResumes)
}

// CanCreateLetter reports whether another cover letter fits under the cap.
func (l Limits) CanCreateLetter(current int64) bool {
	return l.MaxLetters <= 0 || current < int64(l.MaxLetters)
}

// CanUseTemplate reports whether the catalog row is available on this plan.
func (l Limits) CanUseTemplate(tpl *models.DocumentTemplate) bool {
	if tpl == nil || !tpl.Active {
		return false
	}
	if tpl.IsPremium {
		return l.PremiumTemplates
	}
	return true
}
