package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/app/repository"
	"github.com/resumedesk/ResumeDesk/internal/pkg/database"
	"github.com/resumedesk/ResumeDesk/internal/pkg/jobqueue"
	"github.com/resumedesk/ResumeDesk/internal/pkg/subscription"
	"github.com/resumedesk/ResumeDesk/internal/pkg/usercontext"
)

// ============================================================================
// ADMIN SUBSCRIPTIONS CONTROLLER
// ============================================================================

// AdminSubscriptionsController drives the subscription admin pages on top of
// the subscription service, which owns the state machine.
type AdminSubscriptionsController struct {
	userRepo repository.UserRepository
}

// NewAdminSubscriptionsController creates a new admin subscriptions controller
func NewAdminSubscriptionsController(userRepo repository.UserRepository) *AdminSubscriptionsController {
	return &AdminSubscriptionsController{
		userRepo: userRepo,
	}
}

func (asc *AdminSubscriptionsController) service() *subscription.Service {
	return subscription.NewServiceFromDB(database.GetDB(), stripeGateway())
}

// actingAdminEmail resolves the email of the signed in admin for audit fields
func (asc *AdminSubscriptionsController) actingAdminEmail(c *fiber.Ctx) string {
	admin, err := asc.userRepo.GetByID(usercontext.GetUserContext(c).UserID)
	if err != nil {
		return ""
	}
	return admin.Email
}

// handleError is a helper method for consistent error handling
func (asc *AdminSubscriptionsController) handleError(c *fiber.Ctx, message string, err error) error {
	fm := fiber.Map{
		"type":    "error",
		"message": message + ": " + err.Error(),
	}
	return flash.WithError(c, fm).Redirect("/admin/subscriptions")
}

// HandleAdminSubscriptions renders the paginated subscription list
func (asc *AdminSubscriptionsController) HandleAdminSubscriptions(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage := 20

	subs, total, err := asc.service().ListSubscriptions(c.Context(), (page-1)*perPage, perPage)
	if err != nil {
		return asc.handleError(c, "Failed to load subscriptions", err)
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))

	return renderPage(c, "admin/subscriptions", " | Subscription Management", fiber.Map{
		"Subscriptions": subs,
		"Total":         total,
		"Page":          page,
		"TotalPages":    totalPages,
		"HasPrev":       page > 1,
		"HasNext":       page < totalPages,
		"PrevPage":      page - 1,
		"NextPage":      page + 1,
		"Statuses": []string{
			models.SubStatusActive,
			models.SubStatusGracePeriod,
			models.SubStatusExpired,
			models.SubStatusCancelled,
		},
	})
}

// HandleAdminSubscriptionStatus moves one subscription to the requested
// status. Illegal transitions are rejected by the service and surfaced as
// flash errors.
func (asc *AdminSubscriptionsController) HandleAdminSubscriptionStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/admin/subscriptions")
	}

	target := c.FormValue("status")
	sub, err := asc.service().ChangeStatus(c.Context(), uint(id), target)
	if err != nil {
		return asc.handleError(c, "Status change rejected", err)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Subscription " + strconv.FormatUint(uint64(sub.ID), 10) + " is now " + sub.Status,
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/subscriptions")
}

// HandleAdminSubscriptionCancel cancels one subscription. Access stays until
// the paid period runs out.
func (asc *AdminSubscriptionsController) HandleAdminSubscriptionCancel(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/admin/subscriptions")
	}

	sub, err := asc.service().Cancel(c.Context(), uint(id))
	if err != nil {
		return asc.handleError(c, "Cancel rejected", err)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Subscription cancelled. Access remains until " + sub.EndDate.Format("2006-01-02"),
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/subscriptions")
}

// HandleAdminSubscriptionSync reconciles one subscription against the payment
// gateway and reports what happened.
func (asc *AdminSubscriptionsController) HandleAdminSubscriptionSync(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/admin/subscriptions")
	}

	result, err := asc.service().SyncWithGateway(c.Context(), uint(id))
	if err != nil {
		return asc.handleError(c, "Gateway sync failed", err)
	}

	if !result.Success {
		fm := fiber.Map{"type": "info", "message": result.Message}
		return flash.WithInfo(c, fm).Redirect("/admin/subscriptions")
	}

	fm := fiber.Map{"type": "success", "message": result.Message}
	return flash.WithSuccess(c, fm).Redirect("/admin/subscriptions")
}

// HandleAdminSubscriptionCancelChange drops a scheduled plan change without
// applying it.
func (asc *AdminSubscriptionsController) HandleAdminSubscriptionCancelChange(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/admin/subscriptions")
	}

	if _, err := asc.service().CancelPlanChange(c.Context(), uint(id)); err != nil {
		return asc.handleError(c, "Failed to cancel plan change", err)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Scheduled plan change removed",
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/subscriptions")
}

// HandleAdminBillingSweep enqueues a manual maintenance sweep: due plan
// changes, renewals and grace period expiries in one pass.
func (asc *AdminSubscriptionsController) HandleAdminBillingSweep(c *fiber.Ctx) error {
	job, err := jobqueue.EnqueueBillingSweep(asc.actingAdminEmail(c))
	if err != nil {
		return asc.handleError(c, "Failed to enqueue billing sweep", err)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Billing sweep enqueued (job " + job.ID + ")",
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/subscriptions")
}

// Global admin subscriptions controller instance
var adminSubscriptionsController *AdminSubscriptionsController

// InitializeAdminSubscriptionsController initializes the global admin subscriptions controller
func InitializeAdminSubscriptionsController() {
	userRepo := repository.GetGlobalFactory().GetUserRepository()
	adminSubscriptionsController = NewAdminSubscriptionsController(userRepo)
}

// GetAdminSubscriptionsController returns the global admin subscriptions controller instance
func GetAdminSubscriptionsController() *AdminSubscriptionsController {
	if adminSubscriptionsController == nil {
		InitializeAdminSubscriptionsController()
	}
	return adminSubscriptionsController
}
