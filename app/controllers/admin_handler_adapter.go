package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/resumedesk/ResumeDesk/app/repository"
)

// Global admin controller instance
var adminController *AdminController

// InitializeAdminController initializes the global admin controller with repositories
func InitializeAdminController() {
	repos := repository.GetGlobalRepositories()
	adminController = NewAdminController(repos)
}

// GetAdminController returns the global admin controller instance
func GetAdminController() *AdminController {
	if adminController == nil {
		InitializeAdminController()
	}
	return adminController
}

// Adapter functions to maintain compatibility with existing router

// HandleAdminDashboard - Adapter for admin dashboard
func HandleAdminDashboard(c *fiber.Ctx) error {
	return GetAdminController().HandleDashboard(c)
}

// HandleAdminUsers - Adapter for user management
func HandleAdminUsers(c *fiber.Ctx) error {
	return GetAdminController().HandleUsers(c)
}

// HandleAdminUserEdit - Adapter for user edit
func HandleAdminUserEdit(c *fiber.Ctx) error {
	return GetAdminController().HandleUserEdit(c)
}

// HandleAdminUserUpdate - Adapter for user update
func HandleAdminUserUpdate(c *fiber.Ctx) error {
	return GetAdminController().HandleUserUpdate(c)
}

// HandleAdminUserAssignPlan - Adapter for manual plan assignment
func HandleAdminUserAssignPlan(c *fiber.Ctx) error {
	return GetAdminController().HandleUserAssignPlan(c)
}

// HandleAdminUserDelete - Adapter for user delete
func HandleAdminUserDelete(c *fiber.Ctx) error {
	return GetAdminController().HandleUserDelete(c)
}

// HandleAdminSearch - Adapter for search functionality
func HandleAdminSearch(c *fiber.Ctx) error {
	return GetAdminController().HandleSearch(c)
}

// HandleAdminSettings - Adapter for settings page
func HandleAdminSettings(c *fiber.Ctx) error {
	return GetAdminController().HandleSettings(c)
}

// HandleAdminSettingsUpdate - Adapter for settings update
func HandleAdminSettingsUpdate(c *fiber.Ctx) error {
	return GetAdminController().HandleSettingsUpdate(c)
}

// HandleAdminResendActivation - Adapter for resending activation mail
func HandleAdminResendActivation(c *fiber.Ctx) error {
	return GetAdminController().HandleResendActivation(c)
}

// ============================================================================
// PLAN CATALOG ADAPTERS
// ============================================================================

// HandleAdminPlans - Adapter for the plan catalog
func HandleAdminPlans(c *fiber.Ctx) error {
	return GetAdminPlansController().HandleAdminPlans(c)
}

// HandleAdminPlanCreate - Adapter for the plan creation form
func HandleAdminPlanCreate(c *fiber.Ctx) error {
	return GetAdminPlansController().HandleAdminPlanCreate(c)
}

// HandleAdminPlanStore - Adapter for plan creation
func HandleAdminPlanStore(c *fiber.Ctx) error {
	return GetAdminPlansController().HandleAdminPlanStore(c)
}

// HandleAdminPlanEdit - Adapter for the plan edit form
func HandleAdminPlanEdit(c *fiber.Ctx) error {
	return GetAdminPlansController().HandleAdminPlanEdit(c)
}

// HandleAdminPlanUpdate - Adapter for plan updates
func HandleAdminPlanUpdate(c *fiber.Ctx) error {
	return GetAdminPlansController().HandleAdminPlanUpdate(c)
}

// HandleAdminPlanDelete - Adapter for plan deletion
func HandleAdminPlanDelete(c *fiber.Ctx) error {
	return GetAdminPlansController().HandleAdminPlanDelete(c)
}

// HandleAdminPlanPricingUpsert - Adapter for regional pricing upsert
func HandleAdminPlanPricingUpsert(c *fiber.Ctx) error {
	return GetAdminPlansController().HandleAdminPlanPricingUpsert(c)
}

// HandleAdminPlanPricingDelete - Adapter for regional pricing removal
func HandleAdminPlanPricingDelete(c *fiber.Ctx) error {
	return GetAdminPlansController().HandleAdminPlanPricingDelete(c)
}

// ============================================================================
// SUBSCRIPTION ADAPTERS
// ============================================================================

// HandleAdminSubscriptions - Adapter for the subscription list
func HandleAdminSubscriptions(c *fiber.Ctx) error {
	return GetAdminSubscriptionsController().HandleAdminSubscriptions(c)
}

// HandleAdminSubscriptionStatus - Adapter for manual status transitions
func HandleAdminSubscriptionStatus(c *fiber.Ctx) error {
	return GetAdminSubscriptionsController().HandleAdminSubscriptionStatus(c)
}

// HandleAdminSubscriptionCancel - Adapter for admin-side cancellation
func HandleAdminSubscriptionCancel(c *fiber.Ctx) error {
	return GetAdminSubscriptionsController().HandleAdminSubscriptionCancel(c)
}

// HandleAdminSubscriptionSync - Adapter for gateway reconciliation
func HandleAdminSubscriptionSync(c *fiber.Ctx) error {
	return GetAdminSubscriptionsController().HandleAdminSubscriptionSync(c)
}

// HandleAdminSubscriptionCancelChange - Adapter for dropping scheduled plan changes
func HandleAdminSubscriptionCancelChange(c *fiber.Ctx) error {
	return GetAdminSubscriptionsController().HandleAdminSubscriptionCancelChange(c)
}

// HandleAdminBillingSweep - Adapter for the manual maintenance sweep
func HandleAdminBillingSweep(c *fiber.Ctx) error {
	return GetAdminSubscriptionsController().HandleAdminBillingSweep(c)
}

// ============================================================================
// LEDGER ADAPTERS
// ============================================================================

// HandleAdminTransactions - Adapter for the payment ledger
func HandleAdminTransactions(c *fiber.Ctx) error {
	return GetAdminTransactionsController().HandleAdminTransactions(c)
}

// HandleAdminTransactionsByUser - Adapter for one user's ledger history
func HandleAdminTransactionsByUser(c *fiber.Ctx) error {
	return GetAdminTransactionsController().HandleAdminTransactionsByUser(c)
}

// HandleAdminTransactionCorrectCurrency - Adapter for the currency repair
func HandleAdminTransactionCorrectCurrency(c *fiber.Ctx) error {
	return GetAdminTransactionsController().HandleAdminTransactionCorrectCurrency(c)
}

// ============================================================================
// TAX ADAPTERS
// ============================================================================

// HandleAdminTaxSettings - Adapter for the tax rule list
func HandleAdminTaxSettings(c *fiber.Ctx) error {
	return GetAdminTaxController().HandleAdminTaxSettings(c)
}

// HandleAdminTaxSettingSave - Adapter for tax rule create/update
func HandleAdminTaxSettingSave(c *fiber.Ctx) error {
	return GetAdminTaxController().HandleAdminTaxSettingSave(c)
}

// HandleAdminTaxSettingToggle - Adapter for enabling/disabling a tax rule
func HandleAdminTaxSettingToggle(c *fiber.Ctx) error {
	return GetAdminTaxController().HandleAdminTaxSettingToggle(c)
}

// HandleAdminTaxSettingDelete - Adapter for tax rule deletion
func HandleAdminTaxSettingDelete(c *fiber.Ctx) error {
	return GetAdminTaxController().HandleAdminTaxSettingDelete(c)
}

// HandleAdminTaxDefaultIndiaGST - Adapter for the destructive GST reset
func HandleAdminTaxDefaultIndiaGST(c *fiber.Ctx) error {
	return GetAdminTaxController().HandleAdminTaxDefaultIndiaGST(c)
}

// ============================================================================
// INVOICE ADAPTERS
// ============================================================================

// HandleAdminInvoices - Adapter for the invoice list
func HandleAdminInvoices(c *fiber.Ctx) error {
	return GetAdminInvoicesController().HandleAdminInvoices(c)
}

// HandleAdminInvoiceShow - Adapter for the invoice detail page
func HandleAdminInvoiceShow(c *fiber.Ctx) error {
	return GetAdminInvoicesController().HandleAdminInvoiceShow(c)
}

// HandleAdminInvoiceRecalculate - Adapter for the single-invoice correction
func HandleAdminInvoiceRecalculate(c *fiber.Ctx) error {
	return GetAdminInvoicesController().HandleAdminInvoiceRecalculate(c)
}

// HandleAdminInvoiceFixCurrency - Adapter for the bulk currency fix
func HandleAdminInvoiceFixCurrency(c *fiber.Ctx) error {
	return GetAdminInvoicesController().HandleAdminInvoiceFixCurrency(c)
}

// ============================================================================
// TEMPLATE CATALOG ADAPTERS
// ============================================================================

// HandleAdminTemplates - Adapter for the template catalog
func HandleAdminTemplates(c *fiber.Ctx) error {
	return GetAdminTemplatesController().HandleAdminTemplates(c)
}

// HandleAdminTemplateStore - Adapter for template creation
func HandleAdminTemplateStore(c *fiber.Ctx) error {
	return GetAdminTemplatesController().HandleAdminTemplateStore(c)
}

// HandleAdminTemplateUpdate - Adapter for template updates
func HandleAdminTemplateUpdate(c *fiber.Ctx) error {
	return GetAdminTemplatesController().HandleAdminTemplateUpdate(c)
}

// HandleAdminTemplateDelete - Adapter for template deletion
func HandleAdminTemplateDelete(c *fiber.Ctx) error {
	return GetAdminTemplatesController().HandleAdminTemplateDelete(c)
}

// ============================================================================
// QUEUE MONITOR ADAPTERS
// ============================================================================

// HandleAdminQueuesPage - Adapter for the cache/queue monitor
func HandleAdminQueuesPage(c *fiber.Ctx) error {
	return GetAdminQueueController().HandleAdminQueues(c)
}

// HandleAdminQueuesDataRefresh - Adapter for the HTMX table refresh
func HandleAdminQueuesDataRefresh(c *fiber.Ctx) error {
	return GetAdminQueueController().HandleAdminQueuesData(c)
}

// HandleAdminQueueEntryDelete - Adapter for deleting one cache entry
func HandleAdminQueueEntryDelete(c *fiber.Ctx) error {
	return GetAdminQueueController().HandleAdminQueueDelete(c)
}

// HandleAdminCounterFlush - Adapter for the manual counter flush
func HandleAdminCounterFlush(c *fiber.Ctx) error {
	return GetAdminQueueController().HandleAdminCounterFlush(c)
}

// HandleAdminStatsCacheFlush - Adapter for clearing cached dashboard stats
func HandleAdminStatsCacheFlush(c *fiber.Ctx) error {
	return GetAdminQueueController().HandleAdminStatsCacheFlush(c)
}
