package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/internal/pkg/gateway"
)

type fakeRepo struct {
	subs    map[uint]*models.UserSubscription
	users   map[uint]*models.User
	plans   map[uint]*models.SubscriptionPlan
	nextID  uint
	saves   int
	saveErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		subs:  make(map[uint]*models.UserSubscription),
		users: make(map[uint]*models.User),
		plans: make(map[uint]*models.SubscriptionPlan),
	}
}

func (f *fakeRepo) GetSubscription(id uint) (*models.UserSubscription, error) {
	sub, ok := f.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sub
	return &cp, nil
}

func (f *fakeRepo) GetLiveSubscriptionByUser(userID uint) (*models.UserSubscription, error) {
	var best *models.UserSubscription
	for _, sub := range f.subs {
		if sub.UserID == userID && sub.IsLive() {
			if best == nil || sub.ID > best.ID {
				best = sub
			}
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *best
	return &cp, nil
}

func (f *fakeRepo) ListSubscriptionsByUser(userID uint) ([]models.UserSubscription, error) {
	var out []models.UserSubscription
	for _, sub := range f.subs {
		if sub.UserID == userID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListSubscriptions(offset, limit int) ([]models.UserSubscription, error) {
	var out []models.UserSubscription
	for _, sub := range f.subs {
		out = append(out, *sub)
	}
	return out, nil
}

func (f *fakeRepo) CountSubscriptions() (int64, error) {
	return int64(len(f.subs)), nil
}

func (f *fakeRepo) CreateSubscription(sub *models.UserSubscription) error {
	f.nextID++
	sub.ID = f.nextID
	cp := *sub
	f.subs[sub.ID] = &cp
	return nil
}

func (f *fakeRepo) SaveSubscription(sub *models.UserSubscription) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	cp := *sub
	f.subs[sub.ID] = &cp
	f.saves++
	return nil
}

func (f *fakeRepo) ListDuePlanChanges(now time.Time) ([]models.UserSubscription, error) {
	var out []models.UserSubscription
	for _, sub := range f.subs {
		if sub.IsLive() && sub.HasPendingPlanChange() && !sub.PendingPlanChangeDate.After(now) {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListLapsedGracePeriods(now time.Time) ([]models.UserSubscription, error) {
	var out []models.UserSubscription
	for _, sub := range f.subs {
		if sub.Status == models.SubStatusGracePeriod && sub.GracePeriodEnd != nil && !sub.GracePeriodEnd.After(now) {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListDueRenewals(now time.Time) ([]models.UserSubscription, error) {
	var out []models.UserSubscription
	for _, sub := range f.subs {
		if sub.Status == models.SubStatusActive && !sub.EndDate.After(now) {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetUser(id uint) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeRepo) GetPlan(id uint) (*models.SubscriptionPlan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return plan, nil
}

type fakeGateway struct {
	status    gateway.Status
	statusErr error
	cancelErr error
	cancelled []string
	lookups   int
}

func (f *fakeGateway) SubscriptionStatus(ctx context.Context, id string) (gateway.Status, error) {
	f.lookups++
	if f.statusErr != nil {
		return gateway.StatusUnknown, f.statusErr
	}
	return f.status, nil
}

func (f *fakeGateway) CancelSubscription(ctx context.Context, id string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, id)
	return nil
}

func seedPlan(repo *fakeRepo, id uint, slug string, tier int, cycle string) *models.SubscriptionPlan {
	plan := &models.SubscriptionPlan{
		ID:           id,
		Name:         slug,
		Slug:         slug,
		BillingCycle: cycle,
		Tier:         tier,
		Active:       true,
	}
	repo.plans[id] = plan
	return plan
}

func seedActiveSub(repo *fakeRepo, userID, planID uint) *models.UserSubscription {
	now := time.Now()
	repo.nextID++
	sub := &models.UserSubscription{
		ID:        repo.nextID,
		UserID:    userID,
		PlanID:    planID,
		Status:    models.SubStatusActive,
		StartDate: now.AddDate(0, 0, -10),
		EndDate:   now.AddDate(0, 0, 20),
		AutoRenew: true,
	}
	repo.subs[sub.ID] = sub
	return sub
}

func TestSubscribe_CreatesActiveSubscription(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "pro-monthly", 10, models.BillingCycleMonthly)
	svc := NewService(repo, &fakeGateway{})

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sub, err := svc.Subscribe(context.Background(), CheckoutInput{
		UserID:                7,
		PlanID:                1,
		Gateway:               "stripe",
		GatewaySubscriptionID: "sub_abc",
		StartDate:             start,
	})
	require.NoError(t, err)

	assert.Equal(t, models.SubStatusActive, sub.Status)
	assert.Equal(t, start, sub.StartDate)
	assert.Equal(t, start.AddDate(0, 0, 30), sub.EndDate)
	assert.True(t, sub.AutoRenew)
	assert.Equal(t, "sub_abc", sub.GatewaySubscriptionID)
}

func TestSubscribe_RejectsSecondLiveSubscription(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "pro-monthly", 10, models.BillingCycleMonthly)
	seedActiveSub(repo, 7, 1)
	svc := NewService(repo, &fakeGateway{})

	_, err := svc.Subscribe(context.Background(), CheckoutInput{UserID: 7, PlanID: 1})
	assert.ErrorIs(t, err, ErrLiveSubscriptionExists)
}

func TestSubscribe_RejectsUnknownOrInactivePlan(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeGateway{})

	_, err := svc.Subscribe(context.Background(), CheckoutInput{UserID: 7, PlanID: 99})
	assert.ErrorIs(t, err, ErrPlanNotFound)

	retired := seedPlan(repo, 2, "legacy", 5, models.BillingCycleMonthly)
	retired.Active = false
	_, err = svc.Subscribe(context.Background(), CheckoutInput{UserID: 7, PlanID: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not open for subscription")
}

func TestChangeStatus_GracePeriodSetsWindowAndKeepsEndDate(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "pro-monthly", 10, models.BillingCycleMonthly)
	sub := seedActiveSub(repo, 7, 1)
	endBefore := sub.EndDate
	svc := NewService(repo, &fakeGateway{})

	updated, err := svc.ChangeStatus(context.Background(), sub.ID, models.SubStatusGracePeriod)
	require.NoError(t, err)

	assert.Equal(t, models.SubStatusGracePeriod, updated.Status)
	require.NotNil(t, updated.GracePeriodEnd)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *updated.GracePeriodEnd, 2*time.Second)
	assert.Equal(t, endBefore, updated.EndDate, "paid period end must not move when grace opens")
}

func TestChangeStatus_RecoveryClearsGraceState(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "pro-monthly", 10, models.BillingCycleMonthly)
	sub := seedActiveSub(repo, 7, 1)
	graceEnd := time.Now().Add(3 * 24 * time.Hour)
	sub.Status = models.SubStatusGracePeriod
	sub.GracePeriodEnd = &graceEnd
	sub.PaymentFailureCount = 2
	svc := NewService(repo, &fakeGateway{})

	updated, err := svc.ChangeStatus(context.Background(), sub.ID, models.SubStatusActive)
	require.NoError(t, err)

	assert.Equal(t, models.SubStatusActive, updated.Status)
	assert.Nil(t, updated.GracePeriodEnd)
	assert.Equal(t, 0, updated.PaymentFailureCount)
}

func TestChangeStatus_CancelSetsAuditFieldsAndDropsPendingChange(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "pro-monthly", 10, models.BillingCycleMonthly)
	sub := seedActiveSub(repo, 7, 1)
	planID := uint(2)
	changeDate := time.Now().Add(24 * time.Hour)
	sub.PendingPlanChangeTo = &planID
	sub.PendingPlanChangeDate = &changeDate
	sub.PendingPlanChangeType = models.PlanChangeDowngrade
	svc := NewService(repo, &fakeGateway{})

	updated, err := svc.ChangeStatus(context.Background(), sub.ID, models.SubStatusCancelled)
	require.NoError(t, err)

	assert.Equal(t, models.SubStatusCancelled, updated.Status)
	require.NotNil(t, updated.CancelDate)
	assert.False(t, updated.AutoRenew)
	assert.False(t, updated.HasPendingPlanChange())
}

func TestChangeStatus_RejectsRevivingExpired(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "pro-monthly", 10, models.BillingCycleMonthly)
	sub := seedActiveSub(repo, 7, 1)
	sub.Status = models.SubStatusExpired
	svc := NewService(repo, &fakeGateway{})

	_, err := svc.ChangeStatus(context.Background(), sub.ID, models.SubStatusActive)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 0, repo.saves, "a rejected transition must not write")

	stored, _ := repo.GetSubscription(sub.ID)
	assert.Equal(t, models.SubStatusExpired, stored.Status)
}

func TestCancel_CallsGatewayFirst(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "pro-monthly", 10, models.BillingCycleMonthly)
	sub := seedActiveSub(repo, 7, 1)
	sub.GatewaySubscriptionID = "sub_abc"
	gw := &fakeGateway{}
	svc := NewService(repo, gw)

	updated, err := svc.Cancel(context.Background(), sub.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"sub_abc"}, gw.cancelled)
	assert.Equal(t, models.SubStatusCancelled, updated.Status)
}

func TestCancel_GatewayFailureLeavesLocalStateUntouched(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "pro-monthly", 10, models.BillingCycleMonthly)
	sub := seedActiveSub(repo, 7, 1)
	sub.GatewaySubscriptionID = "sub_abc"
	gw := &fakeGateway{cancelErr: errors.New("stripe is down")}
	svc := NewService(repo, gw)

	_, err := svc.Cancel(context.Background(), sub.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway cancel failed")

	stored, _ := repo.GetSubscription(sub.ID)
	assert.Equal(t, models.SubStatusActive, stored.Status)
}

func TestSyncWithGateway_MovesActiveToGraceOnPastDue(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "pro-monthly", 10, models.BillingCycleMonthly)
	sub := seedActiveSub(repo, 7, 1)
	sub.GatewaySubscriptionID = "sub_abc"
	svc := NewService(repo, &fakeGateway{status: gateway.StatusPastDue})

	res, err := svc.SyncWithGateway(context.Background(), sub.ID)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, string(gateway.StatusPastDue), res.GatewayStatus)

	stored, _ := repo.GetSubscription(sub.ID)
	assert.Equal(t, models.SubStatusGracePeriod, stored.Status)
	assert.NotNil(t, stored.GracePeriodEnd)
}

func TestSyncWithGateway_ReportsDisallowedEdgeWithoutApplying(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "pro-monthly", 10, models.BillingCycleMonthly)
	sub := seedActiveSub(repo, 7, 1)
	sub.Status = models.SubStatusExpired
	sub.GatewaySubscriptionID = "sub_abc"
	svc := NewService(repo, &fakeGateway{status: gateway.StatusActive})

	res, err := svc.SyncWithGateway(context.Background(), sub.ID)
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "not allowed")

	stored, _ := repo.GetSubscription(sub.ID)
	assert.Equal(t, models.SubStatusExpired, stored.Status)
}

func TestSyncWithGateway_GatewayErrorIsAResultNotAnError(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "pro-monthly", 10, models.BillingCycleMonthly)
	sub := seedActiveSub(repo, 7, 1)
	sub.GatewaySubscriptionID = "sub_abc"
	svc := NewService(repo, &fakeGateway{statusErr: errors.New("timeout")})

	res, err := svc.SyncWithGateway(context.Background(), sub.ID)
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "gateway lookup failed")
	assert.Equal(t, 0, repo.saves)
}

func TestSyncWithGateway_AlreadyInSync(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "pro-monthly", 10, models.BillingCycleMonthly)
	sub := seedActiveSub(repo, 7, 1)
	sub.GatewaySubscriptionID = "sub_abc"
	svc := NewService(repo, &fakeGateway{status: gateway.StatusActive})

	res, err := svc.SyncWithGateway(context.Background(), sub.ID)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "already in sync", res.Message)
	assert.Equal(t, 0, repo.saves)
}

func TestSyncWithGateway_NoGatewayLink(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "pro-monthly", 10, models.BillingCycleMonthly)
	sub := seedActiveSub(repo, 7, 1)
	gw := &fakeGateway{status: gateway.StatusActive}
	svc := NewService(repo, gw)

	res, err := svc.SyncWithGateway(context.Background(), sub.ID)
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, 0, gw.lookups)
}

func TestRequestPlanChange_UpgradeIsDueImmediately(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "basic-monthly", 10, models.BillingCycleMonthly)
	seedPlan(repo, 2, "pro-monthly", 20, models.BillingCycleMonthly)
	sub := seedActiveSub(repo, 7, 1)
	svc := NewService(repo, &fakeGateway{})

	updated, err := svc.RequestPlanChange(context.Background(), sub.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, models.PlanChangeUpgrade, updated.PendingPlanChangeType)
	require.NotNil(t, updated.PendingPlanChangeTo)
	assert.Equal(t, uint(2), *updated.PendingPlanChangeTo)
	require.NotNil(t, updated.PendingPlanChangeDate)
	assert.WithinDuration(t, time.Now(), *updated.PendingPlanChangeDate, 2*time.Second)
	assert.Equal(t, uint(1), updated.PlanID, "the swap itself waits for the sweep")
}

func TestRequestPlanChange_DowngradeWaitsForPeriodEnd(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "pro-monthly", 20, models.BillingCycleMonthly)
	seedPlan(repo, 2, "basic-monthly", 10, models.BillingCycleMonthly)
	sub := seedActiveSub(repo, 7, 1)
	svc := NewService(repo, &fakeGateway{})

	updated, err := svc.RequestPlanChange(context.Background(), sub.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, models.PlanChangeDowngrade, updated.PendingPlanChangeType)
	require.NotNil(t, updated.PendingPlanChangeDate)
	assert.Equal(t, sub.EndDate, *updated.PendingPlanChangeDate)
}

func TestRequestPlanChange_Rejections(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "pro-monthly", 20, models.BillingCycleMonthly)
	sub := seedActiveSub(repo, 7, 1)
	svc := NewService(repo, &fakeGateway{})

	_, err := svc.RequestPlanChange(context.Background(), sub.ID, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already on that plan")

	_, err = svc.RequestPlanChange(context.Background(), sub.ID, 99)
	assert.ErrorIs(t, err, ErrPlanNotFound)

	sub.Status = models.SubStatusExpired
	_, err = svc.RequestPlanChange(context.Background(), sub.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApplyDuePlanChanges_SwapsPlanAndClearsPendingFields(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "basic-monthly", 10, models.BillingCycleMonthly)
	seedPlan(repo, 2, "pro-monthly", 20, models.BillingCycleMonthly)
	sub := seedActiveSub(repo, 7, 1)
	svc := NewService(repo, &fakeGateway{})

	_, err := svc.RequestPlanChange(context.Background(), sub.ID, 2)
	require.NoError(t, err)

	res, err := svc.ApplyDuePlanChanges(context.Background(), time.Now().Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 0, res.Failed)

	stored, _ := repo.GetSubscription(sub.ID)
	assert.Equal(t, uint(2), stored.PlanID)
	assert.False(t, stored.HasPendingPlanChange())
}

func TestApplyDuePlanChanges_SkipsFutureAndCountsFailures(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "basic-monthly", 10, models.BillingCycleMonthly)
	svc := NewService(repo, &fakeGateway{})
	now := time.Now()

	// Due, but the target plan was deleted in the meantime.
	broken := seedActiveSub(repo, 7, 1)
	missing := uint(99)
	dueDate := now.Add(-time.Hour)
	broken.PendingPlanChangeTo = &missing
	broken.PendingPlanChangeDate = &dueDate
	broken.PendingPlanChangeType = models.PlanChangeUpgrade

	// Not due yet.
	waiting := seedActiveSub(repo, 8, 1)
	target := uint(1)
	futureDate := now.Add(48 * time.Hour)
	waiting.PendingPlanChangeTo = &target
	waiting.PendingPlanChangeDate = &futureDate
	waiting.PendingPlanChangeType = models.PlanChangeDowngrade

	res, err := svc.ApplyDuePlanChanges(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Processed)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "target plan 99")

	storedWaiting, _ := repo.GetSubscription(waiting.ID)
	assert.True(t, storedWaiting.HasPendingPlanChange())
}

func TestExpireLapsedGracePeriods(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "pro-monthly", 10, models.BillingCycleMonthly)
	now := time.Now()

	lapsed := seedActiveSub(repo, 7, 1)
	lapsedEnd := now.Add(-time.Hour)
	lapsed.Status = models.SubStatusGracePeriod
	lapsed.GracePeriodEnd = &lapsedEnd

	open := seedActiveSub(repo, 8, 1)
	openEnd := now.Add(48 * time.Hour)
	open.Status = models.SubStatusGracePeriod
	open.GracePeriodEnd = &openEnd

	svc := NewService(repo, &fakeGateway{})
	res, err := svc.ExpireLapsedGracePeriods(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, []uint{7}, res.ExpiredUserIDs)

	storedLapsed, _ := repo.GetSubscription(lapsed.ID)
	assert.Equal(t, models.SubStatusExpired, storedLapsed.Status)

	storedOpen, _ := repo.GetSubscription(open.ID)
	assert.Equal(t, models.SubStatusGracePeriod, storedOpen.Status)
}

func TestRenewDueSubscriptions(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "pro-monthly", 10, models.BillingCycleMonthly)
	now := time.Now()

	renewing := seedActiveSub(repo, 7, 1)
	renewing.EndDate = now.Add(-time.Hour)
	renewingEnd := renewing.EndDate

	lapsed := seedActiveSub(repo, 8, 1)
	lapsed.EndDate = now.Add(-time.Hour)
	lapsed.AutoRenew = false

	current := seedActiveSub(repo, 9, 1)

	svc := NewService(repo, &fakeGateway{})
	res, err := svc.RenewDueSubscriptions(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, []uint{7}, res.GraceUserIDs)
	assert.Equal(t, []uint{8}, res.ExpiredUserIDs)

	storedRenewing, _ := repo.GetSubscription(renewing.ID)
	assert.Equal(t, models.SubStatusGracePeriod, storedRenewing.Status)
	assert.Equal(t, 1, storedRenewing.PaymentFailureCount)
	require.NotNil(t, storedRenewing.GracePeriodEnd)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *storedRenewing.GracePeriodEnd, 2*time.Second)
	assert.Equal(t, renewingEnd, storedRenewing.EndDate, "paid period end must wait for the renewal charge")

	storedLapsed, _ := repo.GetSubscription(lapsed.ID)
	assert.Equal(t, models.SubStatusExpired, storedLapsed.Status)

	storedCurrent, _ := repo.GetSubscription(current.ID)
	assert.Equal(t, models.SubStatusActive, storedCurrent.Status)
	assert.Equal(t, 0, storedCurrent.PaymentFailureCount)
}

func TestRecordPaymentFailure_OpensGraceOnceAndKeepsCounting(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "pro-monthly", 10, models.BillingCycleMonthly)
	sub := seedActiveSub(repo, 7, 1)
	svc := NewService(repo, &fakeGateway{})

	first, err := svc.RecordPaymentFailure(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubStatusGracePeriod, first.Status)
	assert.Equal(t, 1, first.PaymentFailureCount)
	require.NotNil(t, first.GracePeriodEnd)
	firstWindow := *first.GracePeriodEnd

	second, err := svc.RecordPaymentFailure(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.PaymentFailureCount)
	require.NotNil(t, second.GracePeriodEnd)
	assert.Equal(t, firstWindow, *second.GracePeriodEnd, "retries must not restart the 7-day clock")
}

func TestRecordPaymentRecovered_ReactivatesAndExtendsPeriod(t *testing.T) {
	repo := newFakeRepo()
	seedPlan(repo, 1, "pro-monthly", 10, models.BillingCycleMonthly)
	sub := seedActiveSub(repo, 7, 1)
	graceEnd := time.Now().Add(2 * 24 * time.Hour)
	sub.Status = models.SubStatusGracePeriod
	sub.GracePeriodEnd = &graceEnd
	sub.PaymentFailureCount = 3
	svc := NewService(repo, &fakeGateway{})

	newEnd := sub.EndDate.AddDate(0, 0, 30)
	updated, err := svc.RecordPaymentRecovered(context.Background(), sub.ID, &newEnd)
	require.NoError(t, err)

	assert.Equal(t, models.SubStatusActive, updated.Status)
	assert.Nil(t, updated.GracePeriodEnd)
	assert.Equal(t, 0, updated.PaymentFailureCount)
	assert.Equal(t, newEnd, updated.EndDate)
}

func TestAssignPlan_SwapsLiveSubscriptionInPlace(t *testing.T) {
	repo := newFakeRepo()
	repo.users[7] = &models.User{ID: 7, Email: "user@example.com"}
	seedPlan(repo, 1, "basic-monthly", 10, models.BillingCycleMonthly)
	seedPlan(repo, 2, "pro-monthly", 20, models.BillingCycleMonthly)
	sub := seedActiveSub(repo, 7, 1)
	svc := NewService(repo, &fakeGateway{})

	updated, err := svc.AssignPlan(context.Background(), 7, 2, "admin@example.com")
	require.NoError(t, err)

	assert.Equal(t, sub.ID, updated.ID)
	assert.Equal(t, uint(2), updated.PlanID)
}

func TestAssignPlan_CreatesManualSubscriptionWhenNoneLive(t *testing.T) {
	repo := newFakeRepo()
	repo.users[7] = &models.User{ID: 7, Email: "user@example.com"}
	seedPlan(repo, 2, "pro-yearly", 20, models.BillingCycleYearly)
	svc := NewService(repo, &fakeGateway{})

	sub, err := svc.AssignPlan(context.Background(), 7, 2, "admin@example.com")
	require.NoError(t, err)

	assert.Equal(t, models.SubStatusActive, sub.Status)
	assert.Equal(t, uint(2), sub.PlanID)
	assert.False(t, sub.AutoRenew, "admin-granted subscriptions never renew on their own")
	assert.Equal(t, sub.StartDate.AddDate(0, 0, 365), sub.EndDate)
}

func TestAssignPlan_UnknownUserOrPlan(t *testing.T) {
	repo := newFakeRepo()
	repo.users[7] = &models.User{ID: 7}
	seedPlan(repo, 1, "basic-monthly", 10, models.BillingCycleMonthly)
	svc := NewService(repo, &fakeGateway{})

	_, err := svc.AssignPlan(context.Background(), 99, 1, "admin@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.AssignPlan(context.Background(), 7, 99, "admin@example.com")
	assert.ErrorIs(t, err, ErrPlanNotFound)
}
