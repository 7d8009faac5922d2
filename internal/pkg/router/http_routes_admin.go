package router

import (
	"github.com/resumedesk/ResumeDesk/app/controllers"
	"github.com/resumedesk/ResumeDesk/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.RequireAdmin)
	adminGroup.Get("/", controllers.HandleAdminDashboard)
	adminGroup.Get("/users", controllers.HandleAdminUsers)
	adminGroup.Get("/users/edit/:id", controllers.HandleAdminUserEdit)
	adminGroup.Post("/users/update/:id", controllers.HandleAdminUserUpdate)
	adminGroup.Post("/users/assign-plan/:id", controllers.HandleAdminUserAssignPlan)
	adminGroup.Post("/users/delete/:id", controllers.HandleAdminUserDelete)
	adminGroup.Post("/users/resend-activation/:id", controllers.HandleAdminResendActivation)

	// Plan catalog
	adminGroup.Get("/plans", controllers.HandleAdminPlans)
	adminGroup.Get("/plans/create", controllers.HandleAdminPlanCreate)
	adminGroup.Post("/plans/store", controllers.HandleAdminPlanStore)
	adminGroup.Get("/plans/edit/:id", controllers.HandleAdminPlanEdit)
	adminGroup.Post("/plans/update/:id", controllers.HandleAdminPlanUpdate)
	adminGroup.Post("/plans/delete/:id", controllers.HandleAdminPlanDelete)
	adminGroup.Post("/plans/:id/pricing", controllers.HandleAdminPlanPricingUpsert)
	adminGroup.Post("/plans/:id/pricing/delete", controllers.HandleAdminPlanPricingDelete)

	// Subscriptions
	adminGroup.Get("/subscriptions", controllers.HandleAdminSubscriptions)
	adminGroup.Post("/subscriptions/sweep", controllers.HandleAdminBillingSweep)
	adminGroup.Post("/subscriptions/:id/status", controllers.HandleAdminSubscriptionStatus)
	adminGroup.Post("/subscriptions/:id/cancel", controllers.HandleAdminSubscriptionCancel)
	adminGroup.Post("/subscriptions/:id/sync", controllers.HandleAdminSubscriptionSync)
	adminGroup.Post("/subscriptions/:id/cancel-change", controllers.HandleAdminSubscriptionCancelChange)

	// Payment ledger
	adminGroup.Get("/transactions", controllers.HandleAdminTransactions)
	adminGroup.Get("/transactions/user/:id", controllers.HandleAdminTransactionsByUser)
	adminGroup.Post("/transactions/:id/correct-currency", controllers.HandleAdminTransactionCorrectCurrency)

	// Tax rules
	adminGroup.Get("/tax-settings", controllers.HandleAdminTaxSettings)
	adminGroup.Post("/tax-settings/save", controllers.HandleAdminTaxSettingSave)
	adminGroup.Post("/tax-settings/default-india-gst", controllers.HandleAdminTaxDefaultIndiaGST)
	adminGroup.Post("/tax-settings/:id/toggle", controllers.HandleAdminTaxSettingToggle)
	adminGroup.Post("/tax-settings/:id/delete", controllers.HandleAdminTaxSettingDelete)

	// Invoices
	adminGroup.Get("/invoices", controllers.HandleAdminInvoices)
	adminGroup.Post("/invoices/fix-currency", controllers.HandleAdminInvoiceFixCurrency)
	adminGroup.Get("/invoices/:id", controllers.HandleAdminInvoiceShow)
	adminGroup.Post("/invoices/:id/recalculate", controllers.HandleAdminInvoiceRecalculate)

	// Template catalog
	adminGroup.Get("/templates", controllers.HandleAdminTemplates)
	adminGroup.Post("/templates/store", controllers.HandleAdminTemplateStore)
	adminGroup.Post("/templates/update/:id", controllers.HandleAdminTemplateUpdate)
	adminGroup.Post("/templates/delete/:id", controllers.HandleAdminTemplateDelete)

	// Search + queue monitor
	adminGroup.Get("/search", controllers.HandleAdminSearch)
	adminGroup.Get("/queues", controllers.HandleAdminQueuesPage)
	adminGroup.Get("/queues/data", controllers.HandleAdminQueuesDataRefresh)
	adminGroup.Delete("/queues/delete/:key", controllers.HandleAdminQueueEntryDelete)
	adminGroup.Post("/queues/counter-flush", controllers.HandleAdminCounterFlush)
	adminGroup.Post("/queues/stats-flush", controllers.HandleAdminStatsCacheFlush)
}
