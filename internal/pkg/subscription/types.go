package subscription

import (
	"time"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/internal/pkg/gateway"
)

// SyncResult is what a gateway reconciliation reports back to the operator.
// A failed gateway call is a result, not an error: local state stays
// untouched and the admin retries manually.
type SyncResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	GatewayStatus string `json:"gateway_status,omitempty"`
}

// CheckoutInput describes a new subscription created after payment.
type CheckoutInput struct {
	UserID                uint
	PlanID                uint
	Gateway               string
	GatewaySubscriptionID string
	GatewayCustomerID     string
	StartDate             time.Time
}

// SweepResult aggregates the outcome of a maintenance loop over many
// subscriptions. Each row is handled independently; failures are counted
// and the loop moves on. The user ID slices name the owners whose rows
// changed state, so callers can send the matching notices.
type SweepResult struct {
	Processed int      `json:"processed"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors,omitempty"`

	GraceUserIDs   []uint `json:"-"`
	ExpiredUserIDs []uint `json:"-"`
}

// statusFromGateway maps provider-neutral gateway states onto local machine
// states.
func statusFromGateway(s gateway.Status) (string, bool) {
	switch s {
	case gateway.StatusActive:
		return models.SubStatusActive, true
	case gateway.StatusPastDue:
		return models.SubStatusGracePeriod, true
	case gateway.StatusCanceled:
		return models.SubStatusCancelled, true
	case gateway.StatusExpired:
		return models.SubStatusExpired, true
	default:
		return "", false
	}
}
