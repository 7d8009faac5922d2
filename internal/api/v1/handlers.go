package apiv1

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/resumedesk/ResumeDesk/app/controllers"
	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/app/repository"
	"github.com/resumedesk/ResumeDesk/internal/pkg/database"
	"github.com/resumedesk/ResumeDesk/internal/pkg/env"
	"github.com/resumedesk/ResumeDesk/internal/pkg/gateway"
	"github.com/resumedesk/ResumeDesk/internal/pkg/ledger"
	"github.com/resumedesk/ResumeDesk/internal/pkg/preview"
	"github.com/resumedesk/ResumeDesk/internal/pkg/subscription"
	"github.com/resumedesk/ResumeDesk/internal/pkg/tax"
	"github.com/resumedesk/ResumeDesk/internal/pkg/usercontext"
)

// APIServer implements the ServerInterface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetUserProfile returns account information for the authenticated user (API key).
// Security is enforced via API key middleware attached in the router.
func (s *APIServer) GetUserProfile(c *fiber.Ctx) error {
	return controllers.HandleGetUserAccount(c)
}

// GetUserResumes lists the authenticated user's resumes.
func (s *APIServer) GetUserResumes(c *fiber.Ctx) error {
	return controllers.HandleListResumesAPI(c)
}

// GetResume returns a resume resource by UUID (API key protected).
// Delegates to the existing controller for consistent response shape.
func (s *APIServer) GetResume(c *fiber.Ctx) error {
	// Controller reads uuid from route params; wrapper already set it.
	return controllers.HandleGetResumeResourceAPI(c)
}

// PostResumePhoto accepts a photo upload for a resume owned by the key holder.
func (s *APIServer) PostResumePhoto(c *fiber.Ctx) error {
	return controllers.HandleResumePhotoUploadAPI(c)
}

// GetResumePhotoStatus returns photo processing status for a resume (JSON)
func (s *APIServer) GetResumePhotoStatus(c *fiber.Ctx) error {
	return controllers.HandleResumePhotoStatusAPI(c)
}

// PostPreviewLayout computes the preview layout for a viewport and measured
// content without touching any stored document.
func (s *APIServer) PostPreviewLayout(c *fiber.Ctx) error {
	var req preview.LayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid layout request"})
	}
	if req.ViewportWidth <= 0 || req.ViewportHeight <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "viewport dimensions must be positive"})
	}
	return c.JSON(preview.ComputeLayout(req))
}

// subscriptionService builds the service the admin endpoints share
func subscriptionService() *subscription.Service {
	gw := gateway.NewStripeClient(env.GetEnv("STRIPE_SECRET_KEY", ""))
	return subscription.NewServiceFromDB(database.GetDB(), gw)
}

// actingAdminEmail resolves the key holder's email for audit fields
func actingAdminEmail(c *fiber.Ctx) string {
	admin, err := repository.GetGlobalFactory().GetUserRepository().GetByID(usercontext.GetUserContext(c).UserID)
	if err != nil {
		return ""
	}
	return admin.Email
}

// PostAdminSubscriptionStatus moves one subscription to the requested status.
// Illegal transitions come back as 422 with the service error.
func (s *APIServer) PostAdminSubscriptionStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid subscription id"})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "status is required"})
	}

	sub, err := subscriptionService().ChangeStatus(c.Context(), uint(id), strings.ToUpper(req.Status))
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "transition_rejected", "message": err.Error()})
	}

	return c.JSON(fiber.Map{"ok": true, "subscription": sub})
}

// PostAdminSubscriptionSync reconciles one subscription with the payment gateway.
func (s *APIServer) PostAdminSubscriptionSync(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid subscription id"})
	}

	result, err := subscriptionService().SyncWithGateway(c.Context(), uint(id))
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "sync_failed", "message": err.Error()})
	}

	return c.JSON(result)
}

// PostAdminUserAssignPlan puts a user on a plan without a payment flow.
func (s *APIServer) PostAdminUserAssignPlan(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid user id"})
	}

	var req struct {
		PlanID uint `json:"plan_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.PlanID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "plan_id is required"})
	}

	sub, err := subscriptionService().AssignPlan(c.Context(), uint(userID), req.PlanID, actingAdminEmail(c))
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "assign_failed", "message": err.Error()})
	}

	return c.JSON(fiber.Map{"ok": true, "subscription": sub})
}

// PostAdminTaxDefaultIndiaGST wipes all tax rules and installs the standard
// Indian GST set. The body may override the seller state; otherwise the
// configured company state is used.
func (s *APIServer) PostAdminTaxDefaultIndiaGST(c *fiber.Ctx) error {
	var req struct {
		SellerState string `json:"seller_state"`
	}
	_ = c.BodyParser(&req)

	sellerState := strings.TrimSpace(req.SellerState)
	if sellerState == "" {
		sellerState = models.GetAppSettings().CompanyState
	}
	if sellerState == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "seller_state_missing",
			"message": "no seller state given and no company state configured",
		})
	}

	result, err := tax.NewServiceFromDB(database.GetDB()).CreateDefaultIndiaGST(c.Context(), sellerState)
	if err != nil {
		// The result still tells the operator how far the reset got.
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "reset_incomplete",
			"message": err.Error(),
			"result":  result,
		})
	}

	return c.JSON(fiber.Map{"ok": true, "result": result})
}

// PostAdminTransactionCorrectCurrency repairs a mislabeled currency on one
// ledger row.
func (s *APIServer) PostAdminTransactionCorrectCurrency(c *fiber.Ctx) error {
	txID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "invalid transaction id"})
	}

	var req struct {
		Currency string `json:"currency"`
	}
	if err := c.BodyParser(&req); err != nil || req.Currency == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "currency is required"})
	}

	tx, err := ledger.NewServiceFromDB(database.GetDB()).
		CorrectTransactionCurrency(c.Context(), uint(txID), strings.ToUpper(req.Currency), actingAdminEmail(c))
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "correction_failed", "message": err.Error()})
	}

	return c.JSON(fiber.Map{"ok": true, "transaction": tx})
}
