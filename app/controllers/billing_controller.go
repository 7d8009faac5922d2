package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/app/repository"
	"github.com/resumedesk/ResumeDesk/internal/pkg/database"
	"github.com/resumedesk/ResumeDesk/internal/pkg/env"
	"github.com/resumedesk/ResumeDesk/internal/pkg/gateway"
	"github.com/resumedesk/ResumeDesk/internal/pkg/ledger"
	"github.com/resumedesk/ResumeDesk/internal/pkg/mail"
	"github.com/resumedesk/ResumeDesk/internal/pkg/session"
	"github.com/resumedesk/ResumeDesk/internal/pkg/subscription"
	"github.com/resumedesk/ResumeDesk/internal/pkg/tax"
	"github.com/resumedesk/ResumeDesk/internal/pkg/usercontext"
)

// errSkipEvent marks webhook events that reference nothing in local state.
// They are acknowledged with 200 so the gateway stops redelivering them.
var errSkipEvent = errors.New("event does not map onto local state")

func stripeGateway() *gateway.StripeClient {
	return gateway.NewStripeClient(env.GetEnv("STRIPE_SECRET_KEY", ""))
}

// planView is the pricing page's display row for one plan.
type planView struct {
	ID           uint
	Name         string
	Slug         string
	Description  string
	Price        string
	BillingCycle string
	MaxResumes   int
	MaxLetters   int
	IsFeatured   bool
	IsFreemium   bool
	TaxNote      string
	Available    bool
}

func HandlePricing(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	region := models.RegionGlobal
	if userCtx.IsLoggedIn {
		var user models.User
		if err := database.GetDB().First(&user, userCtx.UserID).Error; err == nil {
			region = user.TargetRegion()
		}
	}

	plans, err := repository.GetGlobalRepositories().Plan.GetActive()
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Plans could not be loaded"}).Redirect("/")
	}

	views := make([]planView, 0, len(plans))
	for i := range plans {
		p := &plans[i]
		cycle := "Monthly"
		if p.BillingCycle == models.BillingCycleYearly {
			cycle = "Yearly"
		}
		v := planView{
			ID:           p.ID,
			Name:         p.Name,
			Slug:         p.Slug,
			Description:  p.Description,
			BillingCycle: cycle,
			MaxResumes:   p.MaxResumes,
			MaxLetters:   p.MaxLetters,
			IsFeatured:   p.IsFeatured,
			IsFreemium:   p.IsFreemium,
		}
		switch {
		case p.IsFreemium:
			v.Price = "Free"
			v.Available = true
		default:
			pricing := p.PricingFor(region)
			if pricing == nil {
				v.Price = "Not available in your region"
				break
			}
			v.Price = ledger.FormatAmount(pricing.Price, pricing.Currency)
			v.Available = true
			if pricing.TaxInclusive {
				v.TaxNote = "incl. GST"
			}
		}
		views = append(views, v)
	}

	return renderPage(c, "billing/pricing", " | Pricing", fiber.Map{
		"Plans":  views,
		"Region": region,
	})
}

// HandleCheckout starts a hosted checkout for the selected plan. Freemium
// plans skip the gateway entirely.
func HandleCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	slug := strings.TrimSpace(c.Params("slug"))
	plan, err := repository.GetGlobalRepositories().Plan.GetBySlug(slug)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Unknown plan"}).Redirect("/pricing")
	}
	if !plan.Active {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "This plan is not open for subscription"}).Redirect("/pricing")
	}

	db := database.GetDB()
	var user models.User
	if err := db.First(&user, userCtx.UserID).Error; err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "User not found"}).Redirect("/pricing")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if plan.IsFreemium {
		svc := subscription.NewServiceFromDB(db, stripeGateway())
		if _, err := svc.Subscribe(ctx, subscription.CheckoutInput{UserID: user.ID, PlanID: plan.ID}); err != nil {
			if errors.Is(err, subscription.ErrLiveSubscriptionExists) {
				return flash.WithError(c, fiber.Map{"type": "error", "message": "You already have an active subscription"}).Redirect("/user/subscription")
			}
			return flash.WithError(c, fiber.Map{"type": "error", "message": "Subscription could not be created"}).Redirect("/pricing")
		}
		_ = session.SetSessionValue(c, usercontext.KeyUserPlan, plan.Slug)
		return flash.WithSuccess(c, fiber.Map{"type": "success", "message": fmt.Sprintf("You are now on the %s plan", plan.Name)}).Redirect("/user/subscription")
	}

	region := user.TargetRegion()
	pricing := plan.PricingFor(region)
	if pricing == nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "This plan is not available in your region yet"}).Redirect("/pricing")
	}

	interval := "month"
	if plan.BillingCycle == models.BillingCycleYearly {
		interval = "year"
	}
	domain := env.GetEnv("PUBLIC_DOMAIN", "")

	sess, err := stripeGateway().CreateCheckoutSession(ctx, gateway.CheckoutParams{
		PlanName:      plan.Name,
		AmountMinor:   pricing.Price.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency:      pricing.Currency,
		Interval:      interval,
		CustomerEmail: user.Email,
		ReferenceID:   strconv.FormatUint(uint64(user.ID), 10),
		PlanID:        plan.ID,
		SuccessURL:    domain + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     domain + "/checkout/cancel",
	})
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Checkout could not be started. Please try again."}).Redirect("/pricing")
	}

	return c.Redirect(sess.URL, fiber.StatusSeeOther)
}

func HandleCheckoutSuccess(c *fiber.Ctx) error {
	// Drop the cached plan so the navbar picks up the new one once the
	// webhook has landed.
	_ = session.SetSessionValue(c, usercontext.KeyUserPlan, "")
	fm := fiber.Map{
		"type":    "success",
		"message": "Payment received. Your subscription will be active in a moment.",
	}
	return flash.WithSuccess(c, fm).Redirect("/user/subscription")
}

func HandleCheckoutCancel(c *fiber.Ctx) error {
	fm := fiber.Map{
		"type":    "info",
		"message": "Checkout cancelled. Nothing was charged.",
	}
	return flash.WithInfo(c, fm).Redirect("/pricing")
}

// HandleStripeWebhook ingests gateway events. Every delivery is persisted
// before processing; duplicates are acknowledged without side effects.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	sigHeader := c.Get("Stripe-Signature")
	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")

	db := database.GetDB()
	event, sigErr := webhook.ConstructEvent(rawBody, sigHeader, secret)
	eventID, eventType := stripeEventIdentity(rawBody, &event, sigErr)

	created, stored, err := models.RecordWebhookEvent(db, &models.WebhookEvent{
		Provider:        "stripe",
		ProviderEventID: eventID,
		EventType:       eventType,
		PayloadJSON:     string(rawBody),
		SignatureValid:  sigErr == nil,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if sigErr != nil {
		_ = stored.MarkProcessed(db, errors.New("invalid webhook signature"))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var actErr error
	switch string(event.Type) {
	case "checkout.session.completed":
		actErr = handleCheckoutCompleted(ctx, db, &event)
	case "invoice.paid":
		actErr = handleInvoicePaid(ctx, db, &event)
	case "invoice.payment_failed":
		actErr = handleInvoicePaymentFailed(ctx, db, &event)
	case "customer.subscription.deleted":
		actErr = handleSubscriptionDeleted(ctx, db, &event)
	default:
		_ = stored.MarkProcessed(db, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	if errors.Is(actErr, errSkipEvent) {
		_ = stored.MarkProcessed(db, actErr)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}
	_ = stored.MarkProcessed(db, actErr)
	if actErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "event_processing_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// stripeEventIdentity extracts the event id and type, falling back to a
// best-effort parse when the signature check already failed.
func stripeEventIdentity(rawBody []byte, event *stripe.Event, sigErr error) (string, string) {
	if sigErr == nil {
		return event.ID, string(event.Type)
	}
	var probe struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	_ = json.Unmarshal(rawBody, &probe)
	return probe.ID, probe.Type
}

func handleCheckoutCompleted(ctx context.Context, db *gorm.DB, event *stripe.Event) error {
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return fmt.Errorf("parse checkout session: %w", err)
	}

	userID, err := strconv.ParseUint(cs.ClientReferenceID, 10, 64)
	if err != nil || userID == 0 {
		return fmt.Errorf("%w: checkout session %s carries no usable client reference", errSkipEvent, cs.ID)
	}
	planID, err := strconv.ParseUint(cs.Metadata["plan_id"], 10, 64)
	if err != nil || planID == 0 {
		return fmt.Errorf("%w: checkout session %s carries no plan metadata", errSkipEvent, cs.ID)
	}

	gwSubID := ""
	if cs.Subscription != nil {
		gwSubID = cs.Subscription.ID
	}
	gwCustomerID := ""
	if cs.Customer != nil {
		gwCustomerID = cs.Customer.ID
	}

	svc := subscription.NewServiceFromDB(db, stripeGateway())
	_, err = svc.Subscribe(ctx, subscription.CheckoutInput{
		UserID:                uint(userID),
		PlanID:                uint(planID),
		Gateway:               "stripe",
		GatewaySubscriptionID: gwSubID,
		GatewayCustomerID:     gwCustomerID,
	})
	if errors.Is(err, subscription.ErrLiveSubscriptionExists) {
		// Replayed delivery; the live row stays authoritative.
		return nil
	}
	return err
}

// handleInvoicePaid books the charge into the ledger, issues the local
// invoice and closes any open grace period. Initial payments and renewals
// arrive through this same event.
func handleInvoicePaid(ctx context.Context, db *gorm.DB, event *stripe.Event) error {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return fmt.Errorf("parse invoice: %w", err)
	}
	if inv.Subscription == nil || inv.Subscription.ID == "" {
		return fmt.Errorf("%w: invoice %s is not tied to a subscription", errSkipEvent, inv.ID)
	}

	sub, err := models.FindSubscriptionByGatewayID(db, inv.Subscription.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no local subscription for gateway id %s", errSkipEvent, inv.Subscription.ID)
		}
		return err
	}

	var periodEnd *time.Time
	if inv.Lines != nil && len(inv.Lines.Data) > 0 && inv.Lines.Data[0].Period != nil && inv.Lines.Data[0].Period.End > 0 {
		t := time.Unix(inv.Lines.Data[0].Period.End, 0)
		periodEnd = &t
	}

	svc := subscription.NewServiceFromDB(db, stripeGateway())
	if _, err := svc.RecordPaymentRecovered(ctx, sub.ID, periodEnd); err != nil {
		return err
	}

	amount := decimal.NewFromInt(inv.AmountPaid).Div(decimal.NewFromInt(100))
	currency := strings.ToUpper(string(inv.Currency))
	gatewayTxID := inv.ID
	if inv.PaymentIntent != nil && inv.PaymentIntent.ID != "" {
		gatewayTxID = inv.PaymentIntent.ID
	}

	tx, err := recordSubscriptionPayment(ctx, db, sub, amount, currency, gatewayTxID)
	if err != nil {
		return err
	}
	return createInvoiceForPayment(ctx, db, sub, tx)
}

func handleInvoicePaymentFailed(ctx context.Context, db *gorm.DB, event *stripe.Event) error {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return fmt.Errorf("parse invoice: %w", err)
	}
	if inv.Subscription == nil || inv.Subscription.ID == "" {
		return fmt.Errorf("%w: invoice %s is not tied to a subscription", errSkipEvent, inv.ID)
	}

	sub, err := models.FindSubscriptionByGatewayID(db, inv.Subscription.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no local subscription for gateway id %s", errSkipEvent, inv.Subscription.ID)
		}
		return err
	}

	svc := subscription.NewServiceFromDB(db, stripeGateway())
	updated, err := svc.RecordPaymentFailure(ctx, sub.ID)
	if err != nil {
		return err
	}

	if updated.Status == models.SubStatusGracePeriod && updated.GracePeriodEnd != nil {
		var user models.User
		if err := db.First(&user, updated.UserID).Error; err == nil {
			graceEnd := *updated.GracePeriodEnd
			go func(email, name string, end time.Time) {
				if err := mail.SendPaymentFailedEmail(email, name, end); err != nil {
					fmt.Printf("payment failed mail error: %v\n", err)
				}
			}(user.Email, user.Name, graceEnd)
		}
	}
	return nil
}

func handleSubscriptionDeleted(ctx context.Context, db *gorm.DB, event *stripe.Event) error {
	var gwSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &gwSub); err != nil {
		return fmt.Errorf("parse subscription: %w", err)
	}

	sub, err := models.FindSubscriptionByGatewayID(db, gwSub.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no local subscription for gateway id %s", errSkipEvent, gwSub.ID)
		}
		return err
	}
	if !sub.IsLive() {
		// Already terminal locally; replay or racing sweep.
		return nil
	}

	svc := subscription.NewServiceFromDB(db, stripeGateway())
	_, err = svc.ChangeStatus(ctx, sub.ID, models.SubStatusCancelled)
	return err
}

// recordSubscriptionPayment writes one ledger row annotated with what the
// charge should have looked like for the payer's region.
func recordSubscriptionPayment(ctx context.Context, db *gorm.DB, sub *models.UserSubscription, amount decimal.Decimal, currency, gatewayTxID string) (*models.PaymentTransaction, error) {
	var user models.User
	if err := db.First(&user, sub.UserID).Error; err != nil {
		return nil, err
	}

	region := user.TargetRegion()
	details := models.PaymentDetails{
		PaymentMethod:    "card",
		ExpectedCurrency: models.CurrencyForRegion(region),
	}

	var plan models.SubscriptionPlan
	if err := db.Preload("Pricing").First(&plan, sub.PlanID).Error; err == nil {
		if pricing := plan.PricingFor(region); pricing != nil {
			price := pricing.Price
			details.CorrectPlanPrice = &price
			details.CorrectPlanCurrency = pricing.Currency
		}
	}
	details.HasCurrencyMismatch = details.ExpectedCurrency != "" && details.ExpectedCurrency != currency

	subID := sub.ID
	return ledger.NewServiceFromDB(db).RecordTransaction(ctx, ledger.TransactionInput{
		UserID:               sub.UserID,
		SubscriptionID:       &subID,
		Amount:               amount,
		Currency:             currency,
		Gateway:              "stripe",
		GatewayTransactionID: gatewayTxID,
		Status:               models.TxStatusCompleted,
		Details:              details,
	})
}

// createInvoiceForPayment issues the local invoice for a booked charge,
// applying whatever tax rules match the buyer.
func createInvoiceForPayment(ctx context.Context, db *gorm.DB, sub *models.UserSubscription, paymentTx *models.PaymentTransaction) error {
	var user models.User
	if err := db.First(&user, sub.UserID).Error; err != nil {
		return err
	}
	var plan models.SubscriptionPlan
	if err := db.Preload("Pricing").First(&plan, sub.PlanID).Error; err != nil {
		return err
	}

	region := user.TargetRegion()
	inclusive := false
	if pricing := plan.PricingFor(region); pricing != nil {
		inclusive = pricing.TaxInclusive
	}

	breakdown, err := tax.NewServiceFromDB(db).ComputeForSale(ctx, paymentTx.Amount, user.Country, user.State, region, paymentTx.Currency, inclusive)
	if err != nil {
		return err
	}

	repos := repository.GetGlobalRepositories()
	year := time.Now().Year()
	seq, err := repos.Invoice.NextSequence(year)
	if err != nil {
		return err
	}

	now := time.Now()
	txID := paymentTx.ID
	subID := sub.ID
	subtotal := breakdown.Subtotal.Round(2)
	invoice := &models.Invoice{
		InvoiceNumber:  models.FormatInvoiceNumber(year, uint(seq)),
		UserID:         user.ID,
		SubscriptionID: &subID,
		TransactionID:  &txID,
		Subtotal:       subtotal,
		TaxAmount:      breakdown.TaxAmount.Round(2),
		Total:          breakdown.Total.Round(2),
		Currency:       paymentTx.Currency,
		TaxDetails:     breakdown.Details(),
		Items: models.InvoiceItems{{
			Description: fmt.Sprintf("%s subscription (%s)", plan.Name, strings.ToLower(plan.BillingCycle)),
			Quantity:    1,
			UnitPrice:   subtotal,
			Total:       subtotal,
		}},
		Status:         models.InvoiceStatusPaid,
		BillingName:    user.Name,
		BillingCountry: user.Country,
		BillingState:   user.State,
		IssuedAt:       now,
		PaidAt:         &now,
	}
	return repos.Invoice.Create(invoice)
}

// invoiceView is the display row for a user's invoice list.
type invoiceView struct {
	ID            uint
	InvoiceNumber string
	Total         string
	Status        string
	IssuedAt      string
}

func HandleUserInvoices(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	invoices, err := repository.GetGlobalRepositories().Invoice.GetByUserID(userCtx.UserID, 0, 100)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Invoices could not be loaded"}).Redirect("/user/profile")
	}

	views := make([]invoiceView, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		views = append(views, invoiceView{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			Total:         ledger.FormatAmount(inv.Total, inv.Currency),
			Status:        inv.Status,
			IssuedAt:      inv.IssuedAt.Format("Jan 2, 2006"),
		})
	}

	return renderPage(c, "billing/invoices", " | Invoices", fiber.Map{
		"Invoices": views,
	})
}

func HandleUserInvoiceShow(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Invoice not found"}).Redirect("/user/invoices")
	}

	invoice, err := repository.GetGlobalRepositories().Invoice.GetByID(uint(id))
	if err != nil || invoice.UserID != userCtx.UserID {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Invoice not found"}).Redirect("/user/invoices")
	}

	return renderPage(c, "billing/invoice_detail", " | Invoice "+invoice.InvoiceNumber, fiber.Map{
		"Invoice":   invoice,
		"Subtotal":  ledger.FormatAmount(invoice.Subtotal, invoice.Currency),
		"TaxAmount": ledger.FormatAmount(invoice.TaxAmount, invoice.Currency),
		"Total":     ledger.FormatAmount(invoice.Total, invoice.Currency),
		"TaxLines":  formatTaxLines(invoice),
	})
}

type taxLineView struct {
	Label  string
	Amount string
}

func formatTaxLines(inv *models.Invoice) []taxLineView {
	lines := make([]taxLineView, 0, len(inv.TaxDetails.TaxBreakdown))
	for _, l := range inv.TaxDetails.TaxBreakdown {
		lines = append(lines, taxLineView{
			Label:  fmt.Sprintf("%s (%s%%)", l.Type, l.Percentage.String()),
			Amount: ledger.FormatAmount(l.Amount, inv.Currency),
		})
	}
	return lines
}

func HandleUserSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	db := database.GetDB()
	data := fiber.Map{}

	sub, err := models.FindCurrentSubscription(db, userCtx.UserID)
	if err == nil && sub != nil {
		data["Subscription"] = sub
		data["Usable"] = sub.IsUsable(time.Now())
		data["DaysLeft"] = sub.DaysUntilEnd(time.Now())
		data["EndDate"] = sub.EndDate.Format("Jan 2, 2006")
		if sub.GracePeriodEnd != nil {
			data["GraceEnd"] = sub.GracePeriodEnd.Format("Jan 2, 2006")
		}
		if sub.HasPendingPlanChange() {
			var target models.SubscriptionPlan
			if err := db.First(&target, *sub.PendingPlanChangeTo).Error; err == nil {
				data["PendingPlanName"] = target.Name
				data["PendingPlanDate"] = sub.PendingPlanChangeDate.Format("Jan 2, 2006")
				data["PendingPlanType"] = sub.PendingPlanChangeType
			}
		}
	}

	if plans, err := repository.GetGlobalRepositories().Plan.GetActive(); err == nil {
		data["Plans"] = plans
	}

	if txs, err := ledger.NewServiceFromDB(db).ListAnnotatedByUser(context.Background(), userCtx.UserID); err == nil {
		data["Transactions"] = txs
	}

	return renderPage(c, "billing/subscription", " | Subscription", data)
}

// HandleSubscriptionCancel stops renewal; paid time stays usable.
func HandleSubscriptionCancel(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	db := database.GetDB()
	sub, err := models.FindCurrentSubscription(db, userCtx.UserID)
	if err != nil || !sub.IsLive() {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "No active subscription to cancel"}).Redirect("/user/subscription")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	svc := subscription.NewServiceFromDB(db, stripeGateway())
	updated, err := svc.Cancel(ctx, sub.ID)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Cancellation failed. Please try again or contact support."}).Redirect("/user/subscription")
	}

	_ = session.SetSessionValue(c, usercontext.KeyUserPlan, "")
	msg := fmt.Sprintf("Subscription cancelled. You keep access until %s.", updated.EndDate.Format("Jan 2, 2006"))
	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": msg}).Redirect("/user/subscription")
}

// HandleSubscriptionChangePlan schedules a plan swap. Upgrades apply with
// the next sweep, downgrades when the paid period ends.
func HandleSubscriptionChangePlan(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	planID, err := strconv.ParseUint(c.FormValue("plan_id"), 10, 64)
	if err != nil || planID == 0 {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "Select a plan first"}).Redirect("/user/subscription")
	}

	db := database.GetDB()
	sub, err := models.FindCurrentSubscription(db, userCtx.UserID)
	if err != nil || !sub.IsLive() {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "No active subscription. Pick a plan on the pricing page instead."}).Redirect("/pricing")
	}

	svc := subscription.NewServiceFromDB(db, stripeGateway())
	updated, err := svc.RequestPlanChange(context.Background(), sub.ID, uint(planID))
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": fmt.Sprintf("Plan change failed: %s", err)}).Redirect("/user/subscription")
	}

	msg := "Plan change scheduled for the end of your billing period."
	if updated.PendingPlanChangeType == models.PlanChangeUpgrade {
		msg = "Upgrade scheduled. It will be applied within the next few minutes."
	}
	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": msg}).Redirect("/user/subscription")
}

// HandleSubscriptionChangeCancel drops a scheduled plan swap.
func HandleSubscriptionChangeCancel(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	db := database.GetDB()
	sub, err := models.FindCurrentSubscription(db, userCtx.UserID)
	if err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "No subscription found"}).Redirect("/user/subscription")
	}

	svc := subscription.NewServiceFromDB(db, stripeGateway())
	if _, err := svc.CancelPlanChange(context.Background(), sub.ID); err != nil {
		return flash.WithError(c, fiber.Map{"type": "error", "message": "No scheduled plan change to cancel"}).Redirect("/user/subscription")
	}

	return flash.WithSuccess(c, fiber.Map{"type": "success", "message": "Scheduled plan change removed."}).Redirect("/user/subscription")
}
