package subscription

import "errors"

var (
	// ErrInvalidTransition is returned when a requested status change is
	// not a permitted edge of the state machine. Nothing is mutated.
	ErrInvalidTransition = errors.New("subscription status transition not allowed")

	// ErrSubscriptionNotFound is returned when the subscription id does
	// not resolve.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrPlanNotFound is returned when a plan id does not resolve.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrUserNotFound is returned when a user id does not resolve.
	ErrUserNotFound = errors.New("user not found")

	// ErrLiveSubscriptionExists guards the one-live-subscription-per-user
	// invariant on checkout.
	ErrLiveSubscriptionExists = errors.New("user already has a live subscription")

	// ErrNoPendingChange is returned when a plan-change application is
	// requested for a subscription without one scheduled.
	ErrNoPendingChange = errors.New("no pending plan change scheduled")
)
