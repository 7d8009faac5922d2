package controllers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sujit-baniya/flash"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/app/repository"
	"github.com/resumedesk/ResumeDesk/internal/pkg/database"
	"github.com/resumedesk/ResumeDesk/internal/pkg/tax"
)

// ============================================================================
// ADMIN TAX CONTROLLER
// ============================================================================

// AdminTaxController manages the configurable tax rules and the destructive
// default GST reset.
type AdminTaxController struct {
	settingRepo repository.SettingRepository
}

// NewAdminTaxController creates a new admin tax controller
func NewAdminTaxController(settingRepo repository.SettingRepository) *AdminTaxController {
	return &AdminTaxController{
		settingRepo: settingRepo,
	}
}

func (tc *AdminTaxController) service() *tax.Service {
	return tax.NewServiceFromDB(database.GetDB())
}

// handleError is a helper method for consistent error handling
func (tc *AdminTaxController) handleError(c *fiber.Ctx, message string, err error) error {
	fm := fiber.Map{
		"type":    "error",
		"message": message + ": " + err.Error(),
	}
	return flash.WithError(c, fm).Redirect("/admin/tax-settings")
}

// HandleAdminTaxSettings renders the tax rule list and the create form
func (tc *AdminTaxController) HandleAdminTaxSettings(c *fiber.Ctx) error {
	settings, err := tc.service().ListSettings(c.Context())
	if err != nil {
		return tc.handleError(c, "Failed to load tax settings", err)
	}

	appSettings, err := tc.settingRepo.Get()
	if err != nil {
		return tc.handleError(c, "Failed to load app settings", err)
	}

	return renderPage(c, "admin/tax_settings", " | Tax Settings", fiber.Map{
		"Settings":     settings,
		"CompanyState": appSettings.CompanyState,
		"TaxTypes": []string{
			models.TaxTypeGST,
			models.TaxTypeCGST,
			models.TaxTypeSGST,
			models.TaxTypeIGST,
		},
		"Regions":    []string{models.RegionIndia, models.RegionGlobal},
		"Currencies": []string{models.CurrencyINR, models.CurrencyUSD},
	})
}

// HandleAdminTaxSettingSave creates or updates one tax rule. An id of 0 in
// the form means create.
func (tc *AdminTaxController) HandleAdminTaxSettingSave(c *fiber.Ctx) error {
	id, _ := strconv.ParseUint(c.FormValue("id", "0"), 10, 32)

	percentage, err := decimal.NewFromString(strings.TrimSpace(c.FormValue("percentage")))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Please enter a valid percentage"}
		return flash.WithError(c, fm).Redirect("/admin/tax-settings")
	}

	setting := &models.TaxSetting{
		ID:            uint(id),
		Name:          strings.TrimSpace(c.FormValue("name")),
		Type:          c.FormValue("type"),
		Percentage:    percentage,
		Country:       c.FormValue("country"),
		Enabled:       c.FormValue("enabled") == "on",
		ApplyToRegion: c.FormValue("apply_to_region", models.RegionIndia),
		ApplyCurrency: c.FormValue("apply_currency", models.CurrencyINR),
	}
	if state := strings.TrimSpace(c.FormValue("state_applicable")); state != "" {
		setting.StateApplicable = &state
	}

	if err := tc.service().SaveSetting(c.Context(), setting); err != nil {
		return tc.handleError(c, "Failed to save tax setting", err)
	}

	verb := "created"
	if id > 0 {
		verb = "updated"
	}
	fm := fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("Tax rule %q %s", setting.Name, verb),
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/tax-settings")
}

// HandleAdminTaxSettingToggle flips one rule between enabled and disabled
func (tc *AdminTaxController) HandleAdminTaxSettingToggle(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/admin/tax-settings")
	}

	settings, err := tc.service().ListSettings(c.Context())
	if err != nil {
		return tc.handleError(c, "Failed to load tax settings", err)
	}

	for i := range settings {
		if settings[i].ID == uint(id) {
			settings[i].Enabled = !settings[i].Enabled
			if err := tc.service().SaveSetting(c.Context(), &settings[i]); err != nil {
				return tc.handleError(c, "Failed to toggle tax setting", err)
			}
			state := "disabled"
			if settings[i].Enabled {
				state = "enabled"
			}
			fm := fiber.Map{"type": "success", "message": fmt.Sprintf("Tax rule %q %s", settings[i].Name, state)}
			return flash.WithSuccess(c, fm).Redirect("/admin/tax-settings")
		}
	}

	fm := fiber.Map{"type": "error", "message": "Tax setting not found"}
	return flash.WithError(c, fm).Redirect("/admin/tax-settings")
}

// HandleAdminTaxSettingDelete removes one tax rule
func (tc *AdminTaxController) HandleAdminTaxSettingDelete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/admin/tax-settings")
	}

	if err := tc.service().DeleteSetting(c.Context(), uint(id)); err != nil {
		return tc.handleError(c, "Failed to delete tax setting", err)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Tax rule deleted",
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/tax-settings")
}

// HandleAdminTaxDefaultIndiaGST wipes ALL tax rules and installs the four
// standard Indian GST rows split around the configured company state. The
// view warns before posting here; a failure leaves a mixed state the flash
// message spells out.
func (tc *AdminTaxController) HandleAdminTaxDefaultIndiaGST(c *fiber.Ctx) error {
	appSettings, err := tc.settingRepo.Get()
	if err != nil {
		return tc.handleError(c, "Failed to load app settings", err)
	}
	if strings.TrimSpace(appSettings.CompanyState) == "" {
		fm := fiber.Map{
			"type":    "error",
			"message": "Set the company state in Settings first; the CGST/SGST split depends on it",
		}
		return flash.WithError(c, fm).Redirect("/admin/tax-settings")
	}

	result, err := tc.service().CreateDefaultIndiaGST(c.Context(), appSettings.CompanyState)
	if err != nil {
		fm := fiber.Map{
			"type": "error",
			"message": fmt.Sprintf("GST reset incomplete: %d deleted, %d created, %d failed. %s",
				result.Deleted, result.Created, result.Failed, err.Error()),
		}
		return flash.WithError(c, fm).Redirect("/admin/tax-settings")
	}

	fm := fiber.Map{
		"type": "success",
		"message": fmt.Sprintf("Default India GST installed: %d old rules removed, %d created",
			result.Deleted, result.Created),
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/tax-settings")
}

// Global admin tax controller instance
var adminTaxController *AdminTaxController

// InitializeAdminTaxController initializes the global admin tax controller
func InitializeAdminTaxController() {
	settingRepo := repository.GetGlobalFactory().GetSettingRepository()
	adminTaxController = NewAdminTaxController(settingRepo)
}

// GetAdminTaxController returns the global admin tax controller instance
func GetAdminTaxController() *AdminTaxController {
	if adminTaxController == nil {
		InitializeAdminTaxController()
	}
	return adminTaxController
}
