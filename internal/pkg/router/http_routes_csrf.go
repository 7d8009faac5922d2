package router

import (
	"strings"
	"time"

	"github.com/resumedesk/ResumeDesk/app/controllers"
	"github.com/resumedesk/ResumeDesk/internal/pkg/env"
	"github.com/resumedesk/ResumeDesk/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/") || strings.HasPrefix(c.Path(), "/webhooks/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Get("/", loggedInMiddleware, controllers.RenderHello)
	group.Get("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Post("/login", loggedInMiddleware, controllers.HandleAuthLogin)
	group.Get("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	group.Post("/register", loggedInMiddleware, controllers.HandleAuthRegister)
	group.Get("/activate", loggedInMiddleware, controllers.HandleUserActivate)

	// Profile + settings
	group.Get("/user/profile", middleware.RequireAuth, controllers.HandleUserProfile)
	group.Get("/user/profile/edit", middleware.RequireAuth, controllers.HandleUserProfileEdit)
	group.Post("/user/profile/edit", middleware.RequireAuth, controllers.HandleUserProfileEdit)
	group.Get("/user/profile/confirm-email", controllers.HandleUserEmailConfirm)
	group.Get("/user/settings", middleware.RequireAuth, controllers.HandleUserSettings)
	group.Post("/user/settings", middleware.RequireAuth, controllers.HandleUserSettingsUpdate)
	group.Post("/user/settings/api-key", middleware.RequireAuth, controllers.HandleUserAPIKeyGenerate)
	group.Post("/user/settings/api-key/revoke", middleware.RequireAuth, controllers.HandleUserAPIKeyRevoke)

	// Resumes
	group.Get("/user/resumes", middleware.RequireAuth, controllers.HandleUserResumes)
	group.Get("/user/resumes/new", middleware.RequireAuth, controllers.HandleResumeNew)
	group.Post("/user/resumes/create", middleware.RequireAuth, controllers.HandleResumeCreate)
	group.Get("/user/resumes/:uuid", middleware.RequireAuth, controllers.HandleResumeEditor)
	group.Post("/user/resumes/:uuid/update", middleware.RequireAuth, controllers.HandleResumeUpdate)
	group.Post("/user/resumes/:uuid/delete", middleware.RequireAuth, controllers.HandleResumeDelete)
	group.Post("/user/resumes/:uuid/share", middleware.RequireAuth, controllers.HandleResumeShareToggle)
	group.Post("/user/resumes/:uuid/photo/delete", middleware.RequireAuth, controllers.HandleResumePhotoDelete)

	// Cover letters
	group.Get("/user/letters", middleware.RequireAuth, controllers.HandleUserLetters)
	group.Get("/user/letters/new", middleware.RequireAuth, controllers.HandleLetterNew)
	group.Post("/user/letters/create", middleware.RequireAuth, controllers.HandleLetterCreate)
	group.Get("/user/letters/:uuid", middleware.RequireAuth, controllers.HandleLetterEditor)
	group.Post("/user/letters/:uuid/update", middleware.RequireAuth, controllers.HandleLetterUpdate)
	group.Post("/user/letters/:uuid/delete", middleware.RequireAuth, controllers.HandleLetterDelete)
	group.Post("/user/letters/:uuid/share", middleware.RequireAuth, controllers.HandleLetterShareToggle)

	// Billing
	group.Get("/checkout/success", middleware.RequireAuth, controllers.HandleCheckoutSuccess)
	group.Get("/checkout/cancel", middleware.RequireAuth, controllers.HandleCheckoutCancel)
	group.Get("/checkout/:slug", middleware.RequireAuth, controllers.HandleCheckout)
	group.Get("/user/subscription", middleware.RequireAuth, controllers.HandleUserSubscription)
	group.Post("/user/subscription/cancel", middleware.RequireAuth, controllers.HandleSubscriptionCancel)
	group.Post("/user/subscription/change-plan", middleware.RequireAuth, controllers.HandleSubscriptionChangePlan)
	group.Post("/user/subscription/cancel-change", middleware.RequireAuth, controllers.HandleSubscriptionChangeCancel)
	group.Get("/user/invoices", middleware.RequireAuth, controllers.HandleUserInvoices)
	group.Get("/user/invoices/:id", middleware.RequireAuth, controllers.HandleUserInvoiceShow)

	// Admin settings (flash-heavy form pages share the CSRF group)
	group.Get("/admin/settings", middleware.RequireAdmin, controllers.HandleAdminSettings)
	group.Post("/admin/settings", middleware.RequireAdmin, controllers.HandleAdminSettingsUpdate)
}
