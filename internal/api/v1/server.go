package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/resumedesk/ResumeDesk/internal/pkg/middleware"
	"github.com/resumedesk/ResumeDesk/internal/pkg/usercontext"
)

// Pong is the ping response body
type Pong struct {
	Ping string `json:"ping"`
}

// ServerInterface defines the v1 API surface
type ServerInterface interface {
	GetPing(c *fiber.Ctx) error

	// User endpoints (API key)
	GetUserProfile(c *fiber.Ctx) error
	GetUserResumes(c *fiber.Ctx) error
	GetResume(c *fiber.Ctx) error
	PostResumePhoto(c *fiber.Ctx) error
	GetResumePhotoStatus(c *fiber.Ctx) error
	PostPreviewLayout(c *fiber.Ctx) error

	// Admin endpoints (API key with admin role)
	PostAdminSubscriptionStatus(c *fiber.Ctx) error
	PostAdminSubscriptionSync(c *fiber.Ctx) error
	PostAdminUserAssignPlan(c *fiber.Ctx) error
	PostAdminTaxDefaultIndiaGST(c *fiber.Ctx) error
	PostAdminTransactionCorrectCurrency(c *fiber.Ctx) error
}

// requireAdminJSON rejects non-admin API keys with a JSON 403.
func requireAdminJSON(c *fiber.Ctx) error {
	if !usercontext.GetUserContext(c).IsAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "admin role required",
		})
	}
	return c.Next()
}

// RegisterHandlers attaches the v1 routes with their auth middleware
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	router.Get("/ping", si.GetPing)

	keyAuth := middleware.APIKeyAuthMiddleware()

	router.Get("/user/profile", keyAuth, si.GetUserProfile)
	router.Get("/user/resumes", keyAuth, si.GetUserResumes)
	router.Get("/resumes/:uuid", keyAuth, si.GetResume)
	router.Post("/resumes/:uuid/photo", keyAuth, si.PostResumePhoto)
	router.Get("/resumes/:uuid/photo/status", keyAuth, si.GetResumePhotoStatus)
	router.Post("/preview/layout", keyAuth, si.PostPreviewLayout)

	admin := router.Group("/admin", keyAuth, requireAdminJSON)
	admin.Post("/subscriptions/:id/status", si.PostAdminSubscriptionStatus)
	admin.Post("/subscriptions/:id/sync", si.PostAdminSubscriptionSync)
	admin.Post("/users/:id/assign-plan", si.PostAdminUserAssignPlan)
	admin.Post("/tax-settings/default-india-gst", si.PostAdminTaxDefaultIndiaGST)
	admin.Post("/transactions/:id/correct-currency", si.PostAdminTransactionCorrectCurrency)
}
