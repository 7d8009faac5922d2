package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/subscription"
)

// StripeClient implements Client against the Stripe API.
type StripeClient struct{}

// NewStripeClient configures the global Stripe key and returns a client.
func NewStripeClient(apiKey string) *StripeClient {
	stripe.Key = strings.TrimSpace(apiKey)
	return &StripeClient{}
}

func (c *StripeClient) SubscriptionStatus(ctx context.Context, gatewaySubscriptionID string) (Status, error) {
	id := strings.TrimSpace(gatewaySubscriptionID)
	if id == "" {
		return StatusUnknown, errors.New("gateway subscription id is required")
	}

	params := &stripe.SubscriptionParams{Params: stripe.Params{Context: ctx}}
	sub, err := subscription.Get(id, params)
	if err != nil {
		return StatusUnknown, err
	}

	switch sub.Status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return StatusActive, nil
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return StatusPastDue, nil
	case stripe.SubscriptionStatusCanceled:
		return StatusCanceled, nil
	case stripe.SubscriptionStatusIncompleteExpired:
		return StatusExpired, nil
	default:
		return StatusUnknown, nil
	}
}

func (c *StripeClient) CancelSubscription(ctx context.Context, gatewaySubscriptionID string) error {
	id := strings.TrimSpace(gatewaySubscriptionID)
	if id == "" {
		return errors.New("gateway subscription id is required")
	}

	params := &stripe.SubscriptionCancelParams{Params: stripe.Params{Context: ctx}}
	_, err := subscription.Cancel(id, params)
	return err
}

// CreateCheckoutSession opens a hosted subscription checkout with inline
// price data, so plans never need to be mirrored into the Stripe dashboard.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	if p.AmountMinor <= 0 {
		return nil, errors.New("checkout amount must be positive")
	}
	if p.Interval != "month" && p.Interval != "year" {
		return nil, fmt.Errorf("unsupported billing interval %q", p.Interval)
	}

	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
		Mode:   stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(p.Currency)),
					UnitAmount: stripe.Int64(p.AmountMinor),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(p.Interval),
					},
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.PlanName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(p.SuccessURL),
		CancelURL:         stripe.String(p.CancelURL),
		ClientReferenceID: stripe.String(p.ReferenceID),
	}
	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	params.AddMetadata("plan_id", fmt.Sprintf("%d", p.PlanID))

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}
