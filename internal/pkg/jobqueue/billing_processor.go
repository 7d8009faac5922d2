package jobqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"gorm.io/gorm"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/internal/pkg/database"
	"github.com/resumedesk/ResumeDesk/internal/pkg/env"
	"github.com/resumedesk/ResumeDesk/internal/pkg/gateway"
	"github.com/resumedesk/ResumeDesk/internal/pkg/mail"
	metrics "github.com/resumedesk/ResumeDesk/internal/pkg/metrics/counter"
	"github.com/resumedesk/ResumeDesk/internal/pkg/subscription"
	"github.com/resumedesk/ResumeDesk/internal/pkg/tax"
)

// processBillingSweepJob runs the subscription maintenance sweep
func (q *Queue) processBillingSweepJob(ctx context.Context, job *Job) error {
	payload, err := BillingSweepJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse billing sweep payload: %w", err)
	}

	if payload.RequestedBy != "" {
		log.Infof("[BillingSweep] Manual sweep requested by %s", payload.RequestedBy)
	}

	return RunBillingSweep(ctx)
}

// RunBillingSweep walks the subscription table once: due plan changes are
// applied first so a scheduled downgrade lands before the renewal window
// opens, then lapsed paid periods open their grace window, then grace
// periods that ran out expire. Per-row failures are logged and do not stop
// the sweep.
func RunBillingSweep(ctx context.Context) error {
	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	svc := subscription.NewServiceFromDB(db, newGatewayClient())
	now := time.Now()

	planChanges, err := svc.ApplyDuePlanChanges(ctx, now)
	if err != nil {
		return fmt.Errorf("plan change sweep failed: %w", err)
	}

	renewals, err := svc.RenewDueSubscriptions(ctx, now)
	if err != nil {
		return fmt.Errorf("renewal sweep failed: %w", err)
	}

	expiries, err := svc.ExpireLapsedGracePeriods(ctx, now)
	if err != nil {
		return fmt.Errorf("grace period sweep failed: %w", err)
	}

	total := planChanges.Processed + renewals.Processed + expiries.Processed
	failed := planChanges.Failed + renewals.Failed + expiries.Failed
	if total > 0 || failed > 0 {
		log.Infof("[BillingSweep] Sweep done: %d plan changes, %d renewals, %d expiries, %d failures",
			planChanges.Processed, renewals.Processed, expiries.Processed, failed)
	}
	for _, e := range planChanges.Errors {
		log.Errorf("[BillingSweep] Plan change: %s", e)
	}
	for _, e := range renewals.Errors {
		log.Errorf("[BillingSweep] Renewal: %s", e)
	}
	for _, e := range expiries.Errors {
		log.Errorf("[BillingSweep] Expiry: %s", e)
	}

	sendSweepNotices(db, renewals, expiries)

	return nil
}

// sendSweepNotices mails the owners whose subscriptions changed state during
// the sweep. Mail failures are logged only, the sweep already succeeded.
func sendSweepNotices(db *gorm.DB, renewals, expiries *subscription.SweepResult) {
	for _, userID := range renewals.GraceUserIDs {
		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			log.Errorf("[BillingSweep] Grace notice for user %d skipped: %v", userID, err)
			continue
		}
		graceEnd := time.Now().Add(models.GracePeriodDays * 24 * time.Hour)
		if err := mail.SendPaymentFailedEmail(user.Email, user.Name, graceEnd); err != nil {
			log.Errorf("[BillingSweep] Grace notice to %s failed: %v", user.Email, err)
		}
	}

	expired := append(renewals.ExpiredUserIDs, expiries.ExpiredUserIDs...)
	for _, userID := range expired {
		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			log.Errorf("[BillingSweep] Expiry notice for user %d skipped: %v", userID, err)
			continue
		}
		if err := mail.SendSubscriptionExpiredEmail(user.Email, user.Name); err != nil {
			log.Errorf("[BillingSweep] Expiry notice to %s failed: %v", user.Email, err)
		}
	}
}

// processInvoiceFixJob reapplies the inclusive tax back-computation to every
// invoice in the requested currency
func (q *Queue) processInvoiceFixJob(ctx context.Context, job *Job) error {
	payload, err := InvoiceFixJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse invoice fix payload: %w", err)
	}

	if payload.Currency == "" {
		return fmt.Errorf("invoice fix requires a currency")
	}

	log.Infof("[InvoiceFix] Fixing %s invoices (requested by %s)", payload.Currency, payload.RequestedBy)

	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	result, err := tax.NewServiceFromDB(db).FixInvoicesByCurrency(ctx, payload.Currency)
	if err != nil {
		return fmt.Errorf("invoice fix failed: %w", err)
	}

	log.Infof("[InvoiceFix] Done: %d fixed, %d skipped, %d failed", result.Fixed, result.Skipped, result.Failed)
	for _, e := range result.Errors {
		log.Errorf("[InvoiceFix] %s", e)
	}

	return nil
}

// processCounterFlushJob forces a counter flush outside the regular ticker
func (q *Queue) processCounterFlushJob(ctx context.Context, job *Job) error {
	payload, err := CounterFlushJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse counter flush payload: %w", err)
	}

	if payload.RequestedBy != "" {
		log.Infof("[CounterFlush] Manual flush requested by %s", payload.RequestedBy)
	}

	return metrics.FlushAll()
}

// EnqueueBillingSweep schedules a manual billing sweep
func EnqueueBillingSweep(requestedBy string) (*Job, error) {
	payload := BillingSweepJobPayload{RequestedBy: requestedBy}
	return GetManager().GetQueue().EnqueueJob(JobTypeBillingSweep, payload.ToMap())
}

// EnqueueInvoiceFix schedules a bulk invoice tax recalculation
func EnqueueInvoiceFix(currency, requestedBy string) (*Job, error) {
	payload := InvoiceFixJobPayload{Currency: currency, RequestedBy: requestedBy}
	return GetManager().GetQueue().EnqueueJob(JobTypeInvoiceFix, payload.ToMap())
}

// EnqueueCounterFlush schedules a manual counter flush
func EnqueueCounterFlush(requestedBy string) (*Job, error) {
	payload := CounterFlushJobPayload{RequestedBy: requestedBy}
	return GetManager().GetQueue().EnqueueJob(JobTypeCounterFlush, payload.ToMap())
}

// newGatewayClient builds the payment gateway client used by sweeps
func newGatewayClient() gateway.Client {
	return gateway.NewStripeClient(env.GetEnv("STRIPE_SECRET_KEY", ""))
}
