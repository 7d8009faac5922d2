package router

import (
	"github.com/resumedesk/ResumeDesk/app/controllers"
	"github.com/resumedesk/ResumeDesk/internal/pkg/constants"
	"github.com/resumedesk/ResumeDesk/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// API routes moved to ApiRouter (internal/pkg/router/api_router.go)
	app.Get("/docs/api", loggedInMiddleware, controllers.HandleDocsAPI)

	// Static pages
	app.Get("/about", loggedInMiddleware, controllers.HandleAbout)
	app.Get("/contact", loggedInMiddleware, controllers.HandleContact)
	app.Get("/pricing", loggedInMiddleware, controllers.HandlePricing)
	app.Get("/templates", loggedInMiddleware, controllers.HandleTemplatesGallery)

	// Short share URLs for published documents
	app.Get(constants.ResumeShareRoute+"/:sharelink", loggedInMiddleware, controllers.HandleResumePublic)
	app.Get(constants.ResumeShareRoute+"/:sharelink/download", loggedInMiddleware, controllers.HandleResumeDownload)
	app.Get(constants.LetterShareRoute+"/:sharelink", loggedInMiddleware, controllers.HandleLetterPublic)
	app.Get(constants.LetterShareRoute+"/:sharelink/download", loggedInMiddleware, controllers.HandleLetterDownload)

	// Flash helpers
	app.Get("/flash/photo-too-large", loggedInMiddleware, controllers.HandleFlashPhotoTooLarge)
	app.Get("/flash/photo-unsupported", loggedInMiddleware, controllers.HandleFlashPhotoUnsupported)
	app.Get("/flash/photo-error", loggedInMiddleware, controllers.HandleFlashPhotoError)

	// Editor JSON endpoints. These post JSON (or a token-signed multipart for
	// the photo), so they sit outside the form CSRF group.
	app.Post("/user/resumes/:uuid/preview", middleware.RequireAuth, controllers.HandleResumePreview)
	app.Post("/user/resumes/:uuid/photo", middleware.RequireAuth, controllers.HandleResumePhotoUpload)
	app.Get("/user/resumes/:uuid/photo/status", middleware.RequireAuth, controllers.HandleResumePhotoStatus)
	app.Post("/user/letters/:uuid/preview", middleware.RequireAuth, controllers.HandleLetterPreview)
	app.Post("/user/preview/layout", middleware.RequireAuth, controllers.HandlePreviewLayout)
	app.Post("/user/preview/zoom", middleware.RequireAuth, controllers.HandlePreviewZoom)

	// Auth
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Social OAuth
	app.Get("/auth/:provider", gothfiber.BeginAuthHandler)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)

	// Billing provider webhooks (no CSRF, signature-verified in controller)
	app.Post("/webhooks/stripe", controllers.HandleStripeWebhook)
}
