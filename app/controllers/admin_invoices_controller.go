package controllers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/app/repository"
	"github.com/resumedesk/ResumeDesk/internal/pkg/jobqueue"
	"github.com/resumedesk/ResumeDesk/internal/pkg/ledger"
	"github.com/resumedesk/ResumeDesk/internal/pkg/tax"
	"github.com/resumedesk/ResumeDesk/internal/pkg/usercontext"
)

// ============================================================================
// ADMIN INVOICES CONTROLLER
// ============================================================================

// adminInvoiceView is one row in the invoice list with display formatting
type adminInvoiceView struct {
	models.Invoice
	DisplayTotal string
	DisplayTax   string
}

// AdminInvoicesController renders issued invoices and drives the inclusive
// tax corrections.
type AdminInvoicesController struct {
	invoiceRepo repository.InvoiceRepository
	userRepo    repository.UserRepository
}

// NewAdminInvoicesController creates a new admin invoices controller
func NewAdminInvoicesController(invoiceRepo repository.InvoiceRepository, userRepo repository.UserRepository) *AdminInvoicesController {
	return &AdminInvoicesController{
		invoiceRepo: invoiceRepo,
		userRepo:    userRepo,
	}
}

// handleError is a helper method for consistent error handling
func (aic *AdminInvoicesController) handleError(c *fiber.Ctx, message string, err error) error {
	fm := fiber.Map{
		"type":    "error",
		"message": message + ": " + err.Error(),
	}
	return flash.WithError(c, fm).Redirect("/admin/invoices")
}

// HandleAdminInvoices renders the paginated invoice list
func (aic *AdminInvoicesController) HandleAdminInvoices(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage := 25

	invoices, err := aic.invoiceRepo.List((page-1)*perPage, perPage)
	if err != nil {
		return aic.handleError(c, "Failed to load invoices", err)
	}
	total, err := aic.invoiceRepo.Count()
	if err != nil {
		return aic.handleError(c, "Failed to count invoices", err)
	}

	rows := make([]adminInvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, adminInvoiceView{
			Invoice:      inv,
			DisplayTotal: ledger.FormatAmount(inv.Total, inv.Currency),
			DisplayTax:   ledger.FormatAmount(inv.TaxAmount, inv.Currency),
		})
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))

	return renderPage(c, "admin/invoices", " | Invoices", fiber.Map{
		"Invoices":   rows,
		"Total":      total,
		"Page":       page,
		"TotalPages": totalPages,
		"HasPrev":    page > 1,
		"HasNext":    page < totalPages,
		"PrevPage":   page - 1,
		"NextPage":   page + 1,
		"Currencies": []string{models.CurrencyINR, models.CurrencyUSD},
	})
}

// HandleAdminInvoiceShow renders one invoice with its items and tax breakdown
func (aic *AdminInvoicesController) HandleAdminInvoiceShow(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/admin/invoices")
	}

	invoice, err := aic.invoiceRepo.GetByID(uint(id))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Invoice not found"}
		return flash.WithError(c, fm).Redirect("/admin/invoices")
	}

	return renderPage(c, "admin/invoice_show", " | Invoice "+invoice.InvoiceNumber, fiber.Map{
		"Invoice":      invoice,
		"DisplayTotal": ledger.FormatAmount(invoice.Total, invoice.Currency),
		"DisplayTax":   ledger.FormatAmount(invoice.TaxAmount, invoice.Currency),
		"DisplayNet":   ledger.FormatAmount(invoice.Subtotal, invoice.Currency),
	})
}

// HandleAdminInvoiceRecalculate reapplies the inclusive back-computation to
// one invoice using its stored rate. The total never changes; subtotal, tax
// and item unit prices are re-derived from it.
func (aic *AdminInvoicesController) HandleAdminInvoiceRecalculate(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/admin/invoices")
	}

	invoice, err := aic.invoiceRepo.GetByID(uint(id))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Invoice not found"}
		return flash.WithError(c, fm).Redirect("/admin/invoices")
	}

	rate := invoice.TaxDetails.TaxPercentage
	if rate.IsZero() {
		fm := fiber.Map{
			"type":    "error",
			"message": "Invoice " + invoice.InvoiceNumber + " carries no tax rate; run the bulk fix for its currency instead",
		}
		return flash.WithError(c, fm).Redirect("/admin/invoices/" + c.Params("id"))
	}

	before := invoice.TaxAmount
	if err := tax.RecalculateInvoiceInclusive(invoice, rate); err != nil {
		return aic.handleError(c, "Recalculation failed", err)
	}
	if invoice.TaxAmount.Equal(before) {
		fm := fiber.Map{"type": "info", "message": "Invoice " + invoice.InvoiceNumber + " was already consistent"}
		return flash.WithInfo(c, fm).Redirect("/admin/invoices/" + c.Params("id"))
	}

	if err := aic.invoiceRepo.Update(invoice); err != nil {
		return aic.handleError(c, "Failed to save invoice", err)
	}

	fm := fiber.Map{
		"type": "success",
		"message": fmt.Sprintf("Invoice %s corrected: tax %s, net %s, total unchanged",
			invoice.InvoiceNumber,
			ledger.FormatAmount(invoice.TaxAmount, invoice.Currency),
			ledger.FormatAmount(invoice.Subtotal, invoice.Currency)),
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/invoices/" + c.Params("id"))
}

// HandleAdminInvoiceFixCurrency enqueues the bulk inclusive-tax fix for every
// invoice in one currency.
func (aic *AdminInvoicesController) HandleAdminInvoiceFixCurrency(c *fiber.Ctx) error {
	currency := strings.ToUpper(strings.TrimSpace(c.FormValue("currency")))
	if currency != models.CurrencyINR && currency != models.CurrencyUSD {
		fm := fiber.Map{"type": "error", "message": "Unsupported currency: " + currency}
		return flash.WithError(c, fm).Redirect("/admin/invoices")
	}

	adminEmail := ""
	if admin, err := aic.userRepo.GetByID(usercontext.GetUserContext(c).UserID); err == nil {
		adminEmail = admin.Email
	}

	job, err := jobqueue.EnqueueInvoiceFix(currency, adminEmail)
	if err != nil {
		return aic.handleError(c, "Failed to enqueue invoice fix", err)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Bulk " + currency + " invoice fix enqueued (job " + job.ID + ")",
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/invoices")
}

// Global admin invoices controller instance
var adminInvoicesController *AdminInvoicesController

// InitializeAdminInvoicesController initializes the global admin invoices controller
func InitializeAdminInvoicesController() {
	factory := repository.GetGlobalFactory()
	adminInvoicesController = NewAdminInvoicesController(factory.GetInvoiceRepository(), factory.GetUserRepository())
}

// GetAdminInvoicesController returns the global admin invoices controller instance
func GetAdminInvoicesController() *AdminInvoicesController {
	if adminInvoicesController == nil {
		InitializeAdminInvoicesController()
	}
	return adminInvoicesController
}
