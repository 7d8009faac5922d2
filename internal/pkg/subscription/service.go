package subscription

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/internal/pkg/gateway"
	"gorm.io/gorm"
)

// Service owns the subscription lifecycle: checkout, state transitions,
// scheduled plan changes, gateway reconciliation and the maintenance sweeps.
type Service struct {
	repo Repository
	gw   gateway.Client
}

// NewService creates a subscription service from injected dependencies.
func NewService(repo Repository, gw gateway.Client) *Service {
	return &Service{repo: repo, gw: gw}
}

// NewServiceFromDB creates a subscription service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, gw gateway.Client) *Service {
	return NewService(NewRepository(db), gw)
}

// Subscribe creates a new ACTIVE subscription after a successful checkout.
// A user holds at most one live subscription; a second checkout while one
// is live is rejected.
func (s *Service) Subscribe(ctx context.Context, in CheckoutInput) (*models.UserSubscription, error) {
	_ = ctx
	if in.UserID == 0 || in.PlanID == 0 {
		return nil, errors.New("user_id and plan_id are required")
	}

	if _, err := s.repo.GetLiveSubscriptionByUser(in.UserID); err == nil {
		return nil, ErrLiveSubscriptionExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	plan, err := s.repo.GetPlan(in.PlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if !plan.Active {
		return nil, fmt.Errorf("plan %s is not open for subscription", plan.Slug)
	}

	start := in.StartDate
	if start.IsZero() {
		start = time.Now()
	}

	sub := &models.UserSubscription{
		UserID:                in.UserID,
		PlanID:                plan.ID,
		Status:                models.SubStatusActive,
		StartDate:             start,
		EndDate:               start.AddDate(0, 0, plan.DurationDays()),
		AutoRenew:             true,
		Gateway:               in.Gateway,
		GatewaySubscriptionID: in.GatewaySubscriptionID,
		GatewayCustomerID:     in.GatewayCustomerID,
	}
	if err := s.repo.CreateSubscription(sub); err != nil {
		return nil, err
	}

	log.Printf("[Subscription] Created subscription %d for user %d on plan %s", sub.ID, sub.UserID, plan.Slug)
	return sub, nil
}

// GetSubscription loads one subscription by ID.
func (s *Service) GetSubscription(ctx context.Context, id uint) (*models.UserSubscription, error) {
	_ = ctx
	sub, err := s.repo.GetSubscription(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// GetLiveForUser returns the user's live subscription.
func (s *Service) GetLiveForUser(ctx context.Context, userID uint) (*models.UserSubscription, error) {
	_ = ctx
	sub, err := s.repo.GetLiveSubscriptionByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// ListForUser returns all subscriptions a user ever had, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uint) ([]models.UserSubscription, error) {
	_ = ctx
	return s.repo.ListSubscriptionsByUser(userID)
}

// ListSubscriptions returns one admin page of subscriptions plus the total count.
func (s *Service) ListSubscriptions(ctx context.Context, offset, limit int) ([]models.UserSubscription, int64, error) {
	_ = ctx
	if limit <= 0 {
		limit = 25
	}
	subs, err := s.repo.ListSubscriptions(offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountSubscriptions()
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// ChangeStatus moves a subscription to the target status, enforcing the
// transition table and applying the side effects each target implies.
func (s *Service) ChangeStatus(ctx context.Context, subID uint, target string) (*models.UserSubscription, error) {
	_ = ctx
	sub, err := s.GetSubscription(ctx, subID)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(sub.Status, target); err != nil {
		return nil, err
	}

	from := sub.Status
	applyTransition(sub, target, time.Now())
	if err := s.repo.SaveSubscription(sub); err != nil {
		return nil, err
	}

	log.Printf("[Subscription] Subscription %d moved %s -> %s", sub.ID, from, target)
	return sub, nil
}

// applyTransition mutates the row for the target status. Callers have
// already validated the edge.
func applyTransition(sub *models.UserSubscription, target string, now time.Time) {
	switch target {
	case models.SubStatusGracePeriod:
		// The 7-day clock starts here; the paid period end is not touched.
		graceEnd := now.Add(models.GracePeriodDays * 24 * time.Hour)
		sub.GracePeriodEnd = &graceEnd
	case models.SubStatusActive:
		// Recovery from grace: the slate is wiped.
		sub.GracePeriodEnd = nil
		sub.PaymentFailureCount = 0
	case models.SubStatusCancelled:
		cancelAt := now
		sub.CancelDate = &cancelAt
		sub.AutoRenew = false
		sub.GracePeriodEnd = nil
		sub.ClearPendingPlanChange()
	case models.SubStatusExpired:
		sub.ClearPendingPlanChange()
	}
	sub.Status = target
}

// Cancel cancels a subscription, remote side first when it is linked to a
// gateway. A failed remote cancel aborts so local and gateway state never
// silently diverge; the admin can still force the local status afterwards.
func (s *Service) Cancel(ctx context.Context, subID uint) (*models.UserSubscription, error) {
	sub, err := s.GetSubscription(ctx, subID)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(sub.Status, models.SubStatusCancelled); err != nil {
		return nil, err
	}

	if sub.GatewaySubscriptionID != "" {
		if err := s.gw.CancelSubscription(ctx, sub.GatewaySubscriptionID); err != nil {
			return nil, fmt.Errorf("gateway cancel failed: %w", err)
		}
	}

	return s.ChangeStatus(ctx, subID, models.SubStatusCancelled)
}

// SyncWithGateway re-reads the gateway's view of a linked subscription and
// reconciles the local status when the transition table allows it. Gateway
// failures are reported in the result, never applied to local state.
func (s *Service) SyncWithGateway(ctx context.Context, subID uint) (*SyncResult, error) {
	sub, err := s.GetSubscription(ctx, subID)
	if err != nil {
		return nil, err
	}
	if sub.GatewaySubscriptionID == "" {
		return &SyncResult{Success: false, Message: "subscription has no gateway link"}, nil
	}

	gwStatus, err := s.gw.SubscriptionStatus(ctx, sub.GatewaySubscriptionID)
	if err != nil {
		log.Printf("[Subscription] Gateway lookup failed for subscription %d: %v", sub.ID, err)
		return &SyncResult{Success: false, Message: fmt.Sprintf("gateway lookup failed: %v", err)}, nil
	}

	result := &SyncResult{GatewayStatus: string(gwStatus)}

	target, ok := statusFromGateway(gwStatus)
	if !ok {
		result.Message = fmt.Sprintf("gateway returned unrecognized status %q", gwStatus)
		return result, nil
	}
	if target == sub.Status {
		result.Success = true
		result.Message = "already in sync"
		return result, nil
	}
	if !CanTransition(sub.Status, target) {
		result.Message = fmt.Sprintf("gateway reports %s but %s -> %s is not allowed", target, sub.Status, target)
		return result, nil
	}

	from := sub.Status
	applyTransition(sub, target, time.Now())
	if err := s.repo.SaveSubscription(sub); err != nil {
		return nil, err
	}

	log.Printf("[Subscription] Sync moved subscription %d %s -> %s (gateway: %s)", sub.ID, from, target, gwStatus)
	result.Success = true
	result.Message = fmt.Sprintf("status updated %s -> %s", from, target)
	return result, nil
}

// AssignPlan is the admin override: it puts a user on a plan immediately,
// bypassing checkout and the scheduled-change machinery. If the user has a
// live subscription its plan is swapped in place, otherwise a fresh manual
// subscription is created.
func (s *Service) AssignPlan(ctx context.Context, userID, planID uint, adminEmail string) (*models.UserSubscription, error) {
	_ = ctx
	if _, err := s.repo.GetUser(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	plan, err := s.repo.GetPlan(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	sub, err := s.repo.GetLiveSubscriptionByUser(userID)
	switch {
	case err == nil:
		sub.PlanID = plan.ID
		sub.Plan = *plan
		sub.ClearPendingPlanChange()
		if err := s.repo.SaveSubscription(sub); err != nil {
			return nil, err
		}
		log.Printf("[Subscription] Admin %s assigned plan %s to user %d (subscription %d)", adminEmail, plan.Slug, userID, sub.ID)
		return sub, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		now := time.Now()
		sub = &models.UserSubscription{
			UserID:    userID,
			PlanID:    plan.ID,
			Status:    models.SubStatusActive,
			StartDate: now,
			EndDate:   now.AddDate(0, 0, plan.DurationDays()),
			AutoRenew: false,
		}
		if err := s.repo.CreateSubscription(sub); err != nil {
			return nil, err
		}
		log.Printf("[Subscription] Admin %s created subscription %d for user %d on plan %s", adminEmail, sub.ID, userID, plan.Slug)
		return sub, nil
	default:
		return nil, err
	}
}

// RequestPlanChange schedules a plan swap for a live subscription. Upgrades
// are due immediately and picked up by the next sweep; downgrades wait until
// the paid period ends so the user keeps what they paid for.
func (s *Service) RequestPlanChange(ctx context.Context, subID, newPlanID uint) (*models.UserSubscription, error) {
	_ = ctx
	sub, err := s.GetSubscription(ctx, subID)
	if err != nil {
		return nil, err
	}
	if !sub.IsLive() {
		return nil, fmt.Errorf("%w: %s subscriptions cannot change plans", ErrInvalidTransition, sub.Status)
	}
	if newPlanID == sub.PlanID {
		return nil, errors.New("subscription is already on that plan")
	}

	newPlan, err := s.repo.GetPlan(newPlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if !newPlan.Active {
		return nil, fmt.Errorf("plan %s is not open for subscription", newPlan.Slug)
	}
	currentPlan, err := s.repo.GetPlan(sub.PlanID)
	if err != nil {
		return nil, err
	}

	changeType := models.PlanChangeDowngrade
	changeDate := sub.EndDate
	if newPlan.Tier >= currentPlan.Tier {
		changeType = models.PlanChangeUpgrade
		changeDate = time.Now()
	}

	sub.PendingPlanChangeTo = &newPlan.ID
	sub.PendingPlanChangeDate = &changeDate
	sub.PendingPlanChangeType = changeType
	if err := s.repo.SaveSubscription(sub); err != nil {
		return nil, err
	}

	log.Printf("[Subscription] Scheduled %s for subscription %d: plan %d -> %d at %s",
		changeType, sub.ID, currentPlan.ID, newPlan.ID, changeDate.Format(time.RFC3339))
	return sub, nil
}

// CancelPlanChange drops a scheduled plan swap before it is applied.
func (s *Service) CancelPlanChange(ctx context.Context, subID uint) (*models.UserSubscription, error) {
	_ = ctx
	sub, err := s.GetSubscription(ctx, subID)
	if err != nil {
		return nil, err
	}
	if !sub.HasPendingPlanChange() {
		return nil, ErrNoPendingChange
	}
	sub.ClearPendingPlanChange()
	if err := s.repo.SaveSubscription(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ApplyDuePlanChanges is a maintenance sweep: every subscription whose
// pending change date has arrived gets its plan swapped and the pending
// fields cleared. Rows are handled independently.
func (s *Service) ApplyDuePlanChanges(ctx context.Context, now time.Time) (*SweepResult, error) {
	result := &SweepResult{}
	due, err := s.repo.ListDuePlanChanges(now)
	if err != nil {
		return nil, err
	}

	for i := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		sub := &due[i]
		newPlanID := *sub.PendingPlanChangeTo

		if _, err := s.repo.GetPlan(newPlanID); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("subscription %d: target plan %d: %v", sub.ID, newPlanID, err))
			log.Printf("[Subscription] Plan change for subscription %d skipped, target plan %d: %v", sub.ID, newPlanID, err)
			continue
		}

		oldPlanID := sub.PlanID
		sub.PlanID = newPlanID
		sub.ClearPendingPlanChange()
		if err := s.repo.SaveSubscription(sub); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("subscription %d: %v", sub.ID, err))
			log.Printf("[Subscription] Plan change for subscription %d failed: %v", sub.ID, err)
			continue
		}

		result.Processed++
		log.Printf("[Subscription] Applied plan change for subscription %d: plan %d -> %d", sub.ID, oldPlanID, newPlanID)
	}

	return result, nil
}

// ExpireLapsedGracePeriods is a maintenance sweep: grace periods whose
// window has closed move to EXPIRED.
func (s *Service) ExpireLapsedGracePeriods(ctx context.Context, now time.Time) (*SweepResult, error) {
	result := &SweepResult{}
	lapsed, err := s.repo.ListLapsedGracePeriods(now)
	if err != nil {
		return nil, err
	}

	for i := range lapsed {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		sub := &lapsed[i]
		applyTransition(sub, models.SubStatusExpired, now)
		if err := s.repo.SaveSubscription(sub); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("subscription %d: %v", sub.ID, err))
			log.Printf("[Subscription] Expiring subscription %d failed: %v", sub.ID, err)
			continue
		}
		result.Processed++
		result.ExpiredUserIDs = append(result.ExpiredUserIDs, sub.UserID)
		log.Printf("[Subscription] Subscription %d expired after grace period", sub.ID)
	}

	return result, nil
}

// RenewDueSubscriptions is a maintenance sweep over ACTIVE subscriptions
// whose paid period has run out. Auto-renewing rows open a grace period and
// wait for the gateway to report the renewal charge; rows with auto-renew
// off expire straight through the grace edge.
func (s *Service) RenewDueSubscriptions(ctx context.Context, now time.Time) (*SweepResult, error) {
	result := &SweepResult{}
	due, err := s.repo.ListDueRenewals(now)
	if err != nil {
		return nil, err
	}

	for i := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		sub := &due[i]

		if sub.AutoRenew {
			sub.PaymentFailureCount++
			applyTransition(sub, models.SubStatusGracePeriod, now)
			if err := s.repo.SaveSubscription(sub); err != nil {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("subscription %d: %v", sub.ID, err))
				log.Printf("[Subscription] Renewal grace for subscription %d failed: %v", sub.ID, err)
				continue
			}
			result.Processed++
			result.GraceUserIDs = append(result.GraceUserIDs, sub.UserID)
			log.Printf("[Subscription] Subscription %d renewal pending, grace period opened", sub.ID)
			continue
		}

		applyTransition(sub, models.SubStatusGracePeriod, now)
		applyTransition(sub, models.SubStatusExpired, now)
		if err := s.repo.SaveSubscription(sub); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("subscription %d: %v", sub.ID, err))
			log.Printf("[Subscription] Expiring subscription %d failed: %v", sub.ID, err)
			continue
		}
		result.Processed++
		result.ExpiredUserIDs = append(result.ExpiredUserIDs, sub.UserID)
		log.Printf("[Subscription] Subscription %d expired (auto-renew off)", sub.ID)
	}

	return result, nil
}

// RecordPaymentFailure notes one failed charge. The first failure on an
// ACTIVE subscription opens the grace period; further failures inside the
// window only bump the counter, they never restart the 7-day clock.
func (s *Service) RecordPaymentFailure(ctx context.Context, subID uint) (*models.UserSubscription, error) {
	_ = ctx
	sub, err := s.GetSubscription(ctx, subID)
	if err != nil {
		return nil, err
	}

	sub.PaymentFailureCount++
	if sub.Status == models.SubStatusActive {
		applyTransition(sub, models.SubStatusGracePeriod, time.Now())
	}
	if err := s.repo.SaveSubscription(sub); err != nil {
		return nil, err
	}

	log.Printf("[Subscription] Payment failure %d recorded for subscription %d (status %s)",
		sub.PaymentFailureCount, sub.ID, sub.Status)
	return sub, nil
}

// RecordPaymentRecovered closes an open grace period after a successful
// retry and, when the gateway reports the new paid-through date, extends the
// period end to it.
func (s *Service) RecordPaymentRecovered(ctx context.Context, subID uint, periodEnd *time.Time) (*models.UserSubscription, error) {
	_ = ctx
	sub, err := s.GetSubscription(ctx, subID)
	if err != nil {
		return nil, err
	}

	if sub.Status == models.SubStatusGracePeriod {
		applyTransition(sub, models.SubStatusActive, time.Now())
	}
	if periodEnd != nil && periodEnd.After(sub.EndDate) {
		sub.EndDate = *periodEnd
	}
	if err := s.repo.SaveSubscription(sub); err != nil {
		return nil, err
	}

	log.Printf("[Subscription] Payment recovered for subscription %d, paid through %s",
		sub.ID, sub.EndDate.Format(time.RFC3339))
	return sub, nil
}
