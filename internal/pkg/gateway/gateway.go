package gateway

import "context"

// Status is the provider-neutral subscription state reported by a payment
// gateway. The subscription service maps it onto local statuses.
type Status string

const (
	StatusActive   Status = "active"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
	StatusUnknown  Status = "unknown"
)

// Client is the slice of the payment gateway the subscription service
// depends on. The gateway stays authoritative for subscription state; local
// rows only mirror it.
type Client interface {
	// SubscriptionStatus returns the gateway's current state for a
	// subscription. Implementations must not mutate local state.
	SubscriptionStatus(ctx context.Context, gatewaySubscriptionID string) (Status, error)
	// CancelSubscription stops renewal on the gateway side.
	CancelSubscription(ctx context.Context, gatewaySubscriptionID string) error
}

// CheckoutParams describes a hosted checkout page for one recurring plan
// price. Amounts are in minor units (paise, cents).
type CheckoutParams struct {
	PlanName      string
	AmountMinor   int64
	Currency      string
	Interval      string // "month" or "year"
	CustomerEmail string
	ReferenceID   string // local user id, echoed back by the webhook
	PlanID        uint
	SuccessURL    string
	CancelURL     string
}

// CheckoutSession is the hosted page the user gets redirected to.
type CheckoutSession struct {
	ID  string
	URL string
}

// CheckoutProvider is the slice of the gateway the checkout flow depends
// on. Kept separate from Client: sweeps and syncs never create sessions.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
}
