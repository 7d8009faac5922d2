package mail

import (
	"fmt"
	"time"
)

// SendActivationEmail delivers the account activation link after signup.
func SendActivationEmail(to string, name string, activationLink string) error {
	subject := "Activate your ResumeDesk account"
	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>Welcome to ResumeDesk. Please confirm your email address to activate your account:</p>"+
			"<p><a href=\"%s\">%s</a></p>"+
			"<p>If you did not sign up, you can ignore this email.</p>",
		name, activationLink, activationLink,
	)
	return SendMail(to, subject, body)
}

// SendEmailChangeEmail delivers the confirmation link for a pending email
// address change. It goes to the NEW address.
func SendEmailChangeEmail(to string, name string, confirmLink string) error {
	subject := "Confirm your new email address"
	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>You asked to use this address for your ResumeDesk account. Confirm the change here:</p>"+
			"<p><a href=\"%s\">%s</a></p>"+
			"<p>The link expires in 24 hours. If you did not request this, ignore this email.</p>",
		name, confirmLink, confirmLink,
	)
	return SendMail(to, subject, body)
}

// SendPaymentFailedEmail tells the user a renewal charge failed and their
// subscription entered the grace period.
func SendPaymentFailedEmail(to string, name string, graceEnd time.Time) error {
	subject := "Payment failed - your ResumeDesk subscription is in a grace period"
	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>We could not charge your payment method for the subscription renewal. "+
			"Your plan features stay available until <strong>%s</strong>.</p>"+
			"<p>Please update your payment method before then to keep your subscription.</p>",
		name, graceEnd.Format("January 2, 2006"),
	)
	return SendMail(to, subject, body)
}

// SendSubscriptionExpiredEmail tells the user their subscription ended and
// the account fell back to the free plan.
func SendSubscriptionExpiredEmail(to string, name string) error {
	subject := "Your ResumeDesk subscription has expired"
	body := fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>Your subscription has expired and your account is now on the free plan. "+
			"Your documents are safe, but premium templates and exports are locked.</p>"+
			"<p>You can resubscribe any time from your account page.</p>",
		name,
	)
	return SendMail(to, subject, body)
}
