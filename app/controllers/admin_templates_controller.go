package controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/app/repository"
	"github.com/resumedesk/ResumeDesk/internal/pkg/preview"
)

// ============================================================================
// ADMIN TEMPLATES CONTROLLER
// ============================================================================

// AdminTemplatesController manages the document template catalog. Catalog
// rows only become usable when their key has a renderer registered in code,
// so saving checks the registry and warns about orphan keys.
type AdminTemplatesController struct {
	templateRepo repository.TemplateRepository
}

// NewAdminTemplatesController creates a new admin templates controller
func NewAdminTemplatesController(templateRepo repository.TemplateRepository) *AdminTemplatesController {
	return &AdminTemplatesController{
		templateRepo: templateRepo,
	}
}

// handleError is a helper method for consistent error handling
func (atc *AdminTemplatesController) handleError(c *fiber.Ctx, message string, err error) error {
	fm := fiber.Map{
		"type":    "error",
		"message": message + ": " + err.Error(),
	}
	return flash.WithError(c, fm).Redirect("/admin/templates")
}

// HandleAdminTemplates renders the template catalog
func (atc *AdminTemplatesController) HandleAdminTemplates(c *fiber.Ctx) error {
	templates, err := atc.templateRepo.GetAll()
	if err != nil {
		return atc.handleError(c, "Failed to load templates", err)
	}

	registry := preview.GetRegistry()
	orphans := make(map[uint]bool, len(templates))
	for i := range templates {
		if !registry.Has(templates[i].Kind, templates[i].Key) {
			orphans[templates[i].ID] = true
		}
	}

	return renderPage(c, "admin/templates", " | Template Catalog", fiber.Map{
		"Templates": templates,
		"Orphans":   orphans,
		"Kinds":     []string{models.TemplateKindResume, models.TemplateKindCoverLetter},
	})
}

// HandleAdminTemplateStore creates a catalog row
func (atc *AdminTemplatesController) HandleAdminTemplateStore(c *fiber.Ctx) error {
	kind := c.FormValue("kind", models.TemplateKindResume)
	key := strings.TrimSpace(strings.ToLower(c.FormValue("key")))
	name := strings.TrimSpace(c.FormValue("name"))

	if key == "" || name == "" {
		fm := fiber.Map{"type": "error", "message": "Key and name are required"}
		return flash.WithError(c, fm).Redirect("/admin/templates")
	}

	exists, err := atc.templateRepo.KeyExists(kind, key)
	if err != nil {
		return atc.handleError(c, "Failed to check key", err)
	}
	if exists {
		fm := fiber.Map{"type": "error", "message": "A " + kind + " template with key " + key + " already exists"}
		return flash.WithError(c, fm).Redirect("/admin/templates")
	}

	sortOrder, _ := strconv.Atoi(c.FormValue("sort_order", "0"))
	tpl := &models.DocumentTemplate{
		Key:         key,
		Name:        name,
		Kind:        kind,
		Description: c.FormValue("description"),
		PreviewPath: strings.TrimSpace(c.FormValue("preview_path")),
		IsPremium:   c.FormValue("is_premium") == "on",
		Active:      c.FormValue("active") == "on",
		SortOrder:   sortOrder,
	}

	if err := tpl.Validate(); err != nil {
		fm := fiber.Map{"type": "error", "message": "Validation failed: " + err.Error()}
		return flash.WithError(c, fm).Redirect("/admin/templates")
	}

	if err := atc.templateRepo.Create(tpl); err != nil {
		return atc.handleError(c, "Failed to create template", err)
	}

	if !preview.GetRegistry().Has(kind, key) {
		fm := fiber.Map{
			"type":    "info",
			"message": "Template saved, but no renderer is registered for " + kind + "/" + key + " yet. It stays hidden from users until one ships.",
		}
		return flash.WithInfo(c, fm).Redirect("/admin/templates")
	}

	fm := fiber.Map{"type": "success", "message": "Template " + name + " created"}
	return flash.WithSuccess(c, fm).Redirect("/admin/templates")
}

// HandleAdminTemplateUpdate updates a catalog row
func (atc *AdminTemplatesController) HandleAdminTemplateUpdate(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/admin/templates")
	}

	tpl, err := atc.templateRepo.GetByID(uint(id))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Template not found"}
		return flash.WithError(c, fm).Redirect("/admin/templates")
	}

	if key := strings.TrimSpace(strings.ToLower(c.FormValue("key"))); key != "" && key != tpl.Key {
		taken, err := atc.templateRepo.KeyExistsExceptID(tpl.Kind, key, tpl.ID)
		if err != nil {
			return atc.handleError(c, "Failed to check key", err)
		}
		if taken {
			fm := fiber.Map{"type": "error", "message": "A " + tpl.Kind + " template with key " + key + " already exists"}
			return flash.WithError(c, fm).Redirect("/admin/templates")
		}
		tpl.Key = key
	}

	tpl.Name = strings.TrimSpace(c.FormValue("name"))
	tpl.Description = c.FormValue("description")
	tpl.PreviewPath = strings.TrimSpace(c.FormValue("preview_path"))
	tpl.IsPremium = c.FormValue("is_premium") == "on"
	tpl.Active = c.FormValue("active") == "on"
	if sortOrder, err := strconv.Atoi(c.FormValue("sort_order")); err == nil {
		tpl.SortOrder = sortOrder
	}

	if err := tpl.Validate(); err != nil {
		fm := fiber.Map{"type": "error", "message": "Validation failed: " + err.Error()}
		return flash.WithError(c, fm).Redirect("/admin/templates")
	}

	if err := atc.templateRepo.Update(tpl); err != nil {
		return atc.handleError(c, "Failed to update template", err)
	}

	fm := fiber.Map{"type": "success", "message": "Template " + tpl.Name + " updated"}
	return flash.WithSuccess(c, fm).Redirect("/admin/templates")
}

// HandleAdminTemplateDelete soft-deletes a catalog row. Documents keep their
// template key; rendering falls back at read time if the key disappears.
func (atc *AdminTemplatesController) HandleAdminTemplateDelete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/admin/templates")
	}

	if err := atc.templateRepo.Delete(uint(id)); err != nil {
		return atc.handleError(c, "Failed to delete template", err)
	}

	fm := fiber.Map{"type": "success", "message": "Template removed from the catalog"}
	return flash.WithSuccess(c, fm).Redirect("/admin/templates")
}

// Global admin templates controller instance
var adminTemplatesController *AdminTemplatesController

// InitializeAdminTemplatesController initializes the global admin templates controller
func InitializeAdminTemplatesController() {
	templateRepo := repository.GetGlobalFactory().GetTemplateRepository()
	adminTemplatesController = NewAdminTemplatesController(templateRepo)
}

// GetAdminTemplatesController returns the global admin templates controller instance
func GetAdminTemplatesController() *AdminTemplatesController {
	if adminTemplatesController == nil {
		InitializeAdminTemplatesController()
	}
	return adminTemplatesController
}
