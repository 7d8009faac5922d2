package controllers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sujit-baniya/flash"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/app/repository"
)

// ============================================================================
// ADMIN PLANS CONTROLLER - Repository Pattern
// ============================================================================

// AdminPlansController handles the subscription plan catalog using repository pattern
type AdminPlansController struct {
	planRepo repository.PlanRepository
}

// NewAdminPlansController creates a new admin plans controller with repository
func NewAdminPlansController(planRepo repository.PlanRepository) *AdminPlansController {
	return &AdminPlansController{
		planRepo: planRepo,
	}
}

// handleError is a helper method for consistent error handling
func (apc *AdminPlansController) handleError(c *fiber.Ctx, message string, err error) error {
	fm := fiber.Map{
		"type":    "error",
		"message": message + ": " + err.Error(),
	}
	return flash.WithError(c, fm).Redirect("/admin/plans")
}

// HandleAdminPlans renders the plan catalog page
func (apc *AdminPlansController) HandleAdminPlans(c *fiber.Ctx) error {
	plans, err := apc.planRepo.GetAll()
	if err != nil {
		return apc.handleError(c, "Failed to load plans", err)
	}

	// Live subscriber counts drive the delete/freeze guards in the view
	liveCounts := make(map[uint]int64, len(plans))
	for i := range plans {
		cnt, err := apc.planRepo.CountLiveSubscriptions(plans[i].ID)
		if err != nil {
			return apc.handleError(c, "Failed to count subscribers", err)
		}
		liveCounts[plans[i].ID] = cnt
	}

	return renderPage(c, "admin/plans", " | Plan Management", fiber.Map{
		"Plans":      plans,
		"LiveCounts": liveCounts,
	})
}

// HandleAdminPlanCreate renders the plan creation page
func (apc *AdminPlansController) HandleAdminPlanCreate(c *fiber.Ctx) error {
	return renderPage(c, "admin/plan_form", " | New Plan", fiber.Map{
		"IsNew": true,
	})
}

// HandleAdminPlanStore handles plan creation
func (apc *AdminPlansController) HandleAdminPlanStore(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.FormValue("name"))
	slug := strings.TrimSpace(c.FormValue("slug"))
	description := c.FormValue("description")
	billingCycle := c.FormValue("billing_cycle", models.BillingCycleMonthly)
	tier, _ := strconv.Atoi(c.FormValue("tier"))
	maxResumes, _ := strconv.Atoi(c.FormValue("max_resumes"))
	maxLetters, _ := strconv.Atoi(c.FormValue("max_letters"))

	if name == "" || slug == "" {
		fm := fiber.Map{
			"type":    "error",
			"message": "Name and slug are required",
		}
		return flash.WithError(c, fm).Redirect("/admin/plans/create")
	}

	// Check if slug already exists using repository
	slugExists, err := apc.planRepo.SlugExists(slug)
	if err != nil {
		return apc.handleError(c, "Failed to check slug", err)
	}
	if slugExists {
		// Slug already exists, append timestamp
		slug = fmt.Sprintf("%s-%d", slug, time.Now().Unix())
	}

	plan := &models.SubscriptionPlan{
		Name:         name,
		Slug:         slug,
		Description:  description,
		BillingCycle: billingCycle,
		Tier:         tier,
		IsFeatured:   c.FormValue("is_featured") == "on",
		IsFreemium:   c.FormValue("is_freemium") == "on",
		Active:       c.FormValue("active") == "on",
		MaxResumes:   maxResumes,
		MaxLetters:   maxLetters,
	}

	if err := plan.Validate(); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Validation failed: " + err.Error(),
		}
		return flash.WithError(c, fm).Redirect("/admin/plans/create")
	}

	if err := apc.planRepo.Create(plan); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Failed to create plan: " + err.Error(),
		}
		return flash.WithError(c, fm).Redirect("/admin/plans/create")
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Plan created",
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/plans")
}

// HandleAdminPlanEdit renders the plan edit page
func (apc *AdminPlansController) HandleAdminPlanEdit(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/admin/plans")
	}

	plan, err := apc.planRepo.GetByID(uint(id))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Plan not found"}
		return flash.WithError(c, fm).Redirect("/admin/plans")
	}

	liveCount, err := apc.planRepo.CountLiveSubscriptions(plan.ID)
	if err != nil {
		return apc.handleError(c, "Failed to count subscribers", err)
	}

	return renderPage(c, "admin/plan_form", " | Edit Plan", fiber.Map{
		"IsNew":     false,
		"Plan":      plan,
		"LiveCount": liveCount,
		"IsFrozen":  liveCount > 0,
	})
}

// HandleAdminPlanUpdate handles plan updates. Plans with live subscribers
// only accept soft-field changes; billing cycle and tier stay frozen.
func (apc *AdminPlansController) HandleAdminPlanUpdate(c *fiber.Ctx) error {
	planID := c.Params("id")
	id, err := strconv.ParseUint(planID, 10, 32)
	if err != nil {
		return c.Redirect("/admin/plans")
	}

	plan, err := apc.planRepo.GetByID(uint(id))
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Plan not found"}
		return flash.WithError(c, fm).Redirect("/admin/plans")
	}

	liveCount, err := apc.planRepo.CountLiveSubscriptions(plan.ID)
	if err != nil {
		return apc.handleError(c, "Failed to count subscribers", err)
	}

	// Soft fields are always editable
	plan.Name = strings.TrimSpace(c.FormValue("name"))
	plan.Description = c.FormValue("description")
	plan.IsFeatured = c.FormValue("is_featured") == "on"
	plan.Active = c.FormValue("active") == "on"

	if slug := strings.TrimSpace(c.FormValue("slug")); slug != "" && slug != plan.Slug {
		taken, err := apc.planRepo.SlugExistsExceptID(slug, plan.ID)
		if err != nil {
			return apc.handleError(c, "Failed to check slug", err)
		}
		if taken {
			fm := fiber.Map{"type": "error", "message": "This slug is already taken"}
			return flash.WithError(c, fm).Redirect("/admin/plans/edit/" + planID)
		}
		plan.Slug = slug
	}

	if liveCount == 0 {
		plan.BillingCycle = c.FormValue("billing_cycle", plan.BillingCycle)
		if tier, err := strconv.Atoi(c.FormValue("tier")); err == nil {
			plan.Tier = tier
		}
		plan.IsFreemium = c.FormValue("is_freemium") == "on"
		if maxResumes, err := strconv.Atoi(c.FormValue("max_resumes")); err == nil {
			plan.MaxResumes = maxResumes
		}
		if maxLetters, err := strconv.Atoi(c.FormValue("max_letters")); err == nil {
			plan.MaxLetters = maxLetters
		}
	} else if c.FormValue("billing_cycle") != "" && c.FormValue("billing_cycle") != plan.BillingCycle {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("Billing cycle is frozen: %d live subscriptions reference this plan", liveCount),
		}
		return flash.WithError(c, fm).Redirect("/admin/plans/edit/" + planID)
	}

	if err := plan.Validate(); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Validation failed: " + err.Error(),
		}
		return flash.WithError(c, fm).Redirect("/admin/plans/edit/" + planID)
	}

	if err := apc.planRepo.Update(plan); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Failed to update plan: " + err.Error(),
		}
		return flash.WithError(c, fm).Redirect("/admin/plans/edit/" + planID)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Plan updated",
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/plans")
}

// HandleAdminPlanDelete retires a plan. Plans with live subscribers cannot
// be deleted, only deactivated.
func (apc *AdminPlansController) HandleAdminPlanDelete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Redirect("/admin/plans")
	}

	liveCount, err := apc.planRepo.CountLiveSubscriptions(uint(id))
	if err != nil {
		return apc.handleError(c, "Failed to count subscribers", err)
	}
	if liveCount > 0 {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("Cannot delete: %d live subscriptions reference this plan. Deactivate it instead.", liveCount),
		}
		return flash.WithError(c, fm).Redirect("/admin/plans")
	}

	if err := apc.planRepo.Delete(uint(id)); err != nil {
		return apc.handleError(c, "Failed to delete plan", err)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Plan deleted",
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/plans")
}

// HandleAdminPlanPricingUpsert creates or overwrites the pricing row of one
// region. The currency is pinned to the region.
func (apc *AdminPlansController) HandleAdminPlanPricingUpsert(c *fiber.Ctx) error {
	planID := c.Params("id")
	id, err := strconv.ParseUint(planID, 10, 32)
	if err != nil {
		return c.Redirect("/admin/plans")
	}

	if _, err := apc.planRepo.GetByID(uint(id)); err != nil {
		fm := fiber.Map{"type": "error", "message": "Plan not found"}
		return flash.WithError(c, fm).Redirect("/admin/plans")
	}

	region := c.FormValue("target_region")
	if region != models.RegionIndia && region != models.RegionGlobal {
		fm := fiber.Map{"type": "error", "message": "Unknown region"}
		return flash.WithError(c, fm).Redirect("/admin/plans/edit/" + planID)
	}

	price, err := decimal.NewFromString(strings.TrimSpace(c.FormValue("price")))
	if err != nil || price.IsNegative() {
		fm := fiber.Map{"type": "error", "message": "Please enter a valid price"}
		return flash.WithError(c, fm).Redirect("/admin/plans/edit/" + planID)
	}

	pricing := &models.PlanPricing{
		PlanID:       uint(id),
		TargetRegion: region,
		Currency:     models.CurrencyForRegion(region),
		Price:        price,
		TaxInclusive: c.FormValue("tax_inclusive") == "on",
	}

	if err := apc.planRepo.UpsertPricing(pricing); err != nil {
		return apc.handleError(c, "Failed to save pricing", err)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("%s pricing saved", region),
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/plans/edit/" + planID)
}

// HandleAdminPlanPricingDelete removes the pricing row of one region,
// delisting the plan there.
func (apc *AdminPlansController) HandleAdminPlanPricingDelete(c *fiber.Ctx) error {
	planID := c.Params("id")
	id, err := strconv.ParseUint(planID, 10, 32)
	if err != nil {
		return c.Redirect("/admin/plans")
	}

	region := c.FormValue("target_region")
	if region != models.RegionIndia && region != models.RegionGlobal {
		fm := fiber.Map{"type": "error", "message": "Unknown region"}
		return flash.WithError(c, fm).Redirect("/admin/plans/edit/" + planID)
	}

	if err := apc.planRepo.DeletePricing(uint(id), region); err != nil {
		return apc.handleError(c, "Failed to delete pricing", err)
	}

	fm := fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("Plan is no longer sold in %s", region),
	}
	return flash.WithSuccess(c, fm).Redirect("/admin/plans/edit/" + planID)
}

// Global admin plans controller instance
var adminPlansController *AdminPlansController

// InitializeAdminPlansController initializes the global admin plans controller
func InitializeAdminPlansController() {
	planRepo := repository.GetGlobalFactory().GetPlanRepository()
	adminPlansController = NewAdminPlansController(planRepo)
}

// GetAdminPlansController returns the global admin plans controller instance
func GetAdminPlansController() *AdminPlansController {
	if adminPlansController == nil {
		InitializeAdminPlansController()
	}
	return adminPlansController
}
