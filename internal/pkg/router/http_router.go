package router

import (
	"github.com/resumedesk/ResumeDesk/app/controllers"
	"github.com/resumedesk/ResumeDesk/internal/pkg/middleware"
	"github.com/resumedesk/ResumeDesk/internal/pkg/oauth"
	"github.com/resumedesk/ResumeDesk/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Initialize admin controllers with repositories
	controllers.InitializeAdminController()
	controllers.InitializeAdminPlansController()
	controllers.InitializeAdminSubscriptionsController()
	controllers.InitializeAdminTransactionsController()
	controllers.InitializeAdminTaxController()
	controllers.InitializeAdminInvoicesController()
	controllers.InitializeAdminTemplatesController()
	controllers.InitializeAdminQueueController()

	h.registerPublicRoutes(app)
	h.registerAdminRoutes(app)
	h.registerCSRFProtectedRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func loggedInMiddleware(c *fiber.Ctx) error {
	// UserContextMiddleware already set all user context
	// This middleware now just passes through - no additional logic needed
	// All user information is available via usercontext.GetUserContext(c)
	return c.Next()
}

// Auth middlewares moved to internal/pkg/middleware/auth.go
