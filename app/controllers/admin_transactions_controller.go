package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/app/repository"
	"github.com/resumedesk/ResumeDesk/internal/pkg/database"
	"github.com/resumedesk/ResumeDesk/internal/pkg/ledger"
	"github.com/resumedesk/ResumeDesk/internal/pkg/usercontext"
)

// ============================================================================
// ADMIN TRANSACTIONS CONTROLLER
// ============================================================================

// AdminTransactionsController renders the payment ledger. Duplicate and
// primary flags are derived at read time by the ledger service, never stored.
type AdminTransactionsController struct {
	userRepo repository.UserRepository
}

// NewAdminTransactionsController creates a new admin transactions controller
func NewAdminTransactionsController(userRepo repository.UserRepository) *AdminTransactionsController {
	return &AdminTransactionsController{
		userRepo: userRepo,
	}
}

func (atc *AdminTransactionsController) service() *ledger.Service {
	return ledger.NewServiceFromDB(database.GetDB())
}

// handleError is a helper method for consistent error handling
func (atc *AdminTransactionsController) handleError(c *fiber.Ctx, message string, err error) error {
	fm := fiber.Map{
		"type":    "error",
		"message": message + ": " + err.Error(),
	}
	return flash.WithError(c, fm).Redirect("/admin/transactions")
}

// HandleAdminTransactions renders the paginated ledger with duplicate groups
// classified and amounts formatted per currency.
func (atc *AdminTransactionsController) HandleAdminTransactions(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage := 25

	txs, total, err := atc.service().ListAnnotated(c.Context(), (page-1)*perPage, perPage)
	if err != nil {
		return atc.handleError(c, "Failed to load transactions", err)
	}

	duplicates := 0
	for i := range txs {
		if txs[i].IsDuplicate {
			duplicates++
		}
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))

	return renderPage(c, "admin/transactions", " | Payment Ledger", fiber.Map{
		"Transactions":   txs,
		"Total":          total,
		"DuplicatesHere": duplicates,
		"Page":           page,
		"TotalPages":     totalPages,
		"HasPrev":        page > 1,
		"HasNext":        page < totalPages,
		"PrevPage":       page - 1,
		"NextPage":       page + 1,
		"Currencies":     []string{models.CurrencyINR, models.CurrencyUSD},
	})
}

// HandleAdminTransactionsByUser renders one user's complete ledger history
func (atc *AdminTransactionsController) HandleAdminTransactionsByUser(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/admin/transactions")
	}

	user, err := atc.userRepo.GetByID(uint(userID))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "User not found"}
		return flash.WithError(c, fm).Redirect("/admin/transactions")
	}

	txs, err := atc.service().ListAnnotatedByUser(c.Context(), uint(userID))
	if err != nil {
		return atc.handleError(c, "Failed to load transactions", err)
	}

	return renderPage(c, "admin/transactions_user", " | Ledger: "+user.Name, fiber.Map{
		"User":         user,
		"Transactions": txs,
		"Currencies":   []string{models.CurrencyINR, models.CurrencyUSD},
	})
}

// HandleAdminTransactionCorrectCurrency repairs a mislabeled currency on one
// ledger row. The amount stays untouched and the correction is audited in the
// row metadata.
func (atc *AdminTransactionsController) HandleAdminTransactionCorrectCurrency(c *fiber.Ctx) error {
	txID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/admin/transactions")
	}

	currency := strings.ToUpper(strings.TrimSpace(c.FormValue("currency")))
	if currency != models.CurrencyINR && currency != models.CurrencyUSD {
		fm := fiber.Map{"type": "error", "message": "Unsupported currency: " + currency}
		return flash.WithError(c, fm).Redirect("/admin/transactions")
	}

	adminEmail := ""
	if admin, err := atc.userRepo.GetByID(usercontext.GetUserContext(c).UserID); err == nil {
		adminEmail = admin.Email
	}

	tx, err := atc.service().CorrectTransactionCurrency(c.Context(), uint(txID), currency, adminEmail)
	if err != nil {
		return atc.handleError(c, "Currency correction failed", err)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Transaction " + strconv.FormatUint(uint64(tx.ID), 10) + " is now booked in " + tx.Currency,
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/transactions")
}

// Global admin transactions controller instance
var adminTransactionsController *AdminTransactionsController

// InitializeAdminTransactionsController initializes the global admin transactions controller
func InitializeAdminTransactionsController() {
	userRepo := repository.GetGlobalFactory().GetUserRepository()
	adminTransactionsController = NewAdminTransactionsController(userRepo)
}

// GetAdminTransactionsController returns the global admin transactions controller instance
func GetAdminTransactionsController() *AdminTransactionsController {
	if adminTransactionsController == nil {
		InitializeAdminTransactionsController()
	}
	return adminTransactionsController
}
