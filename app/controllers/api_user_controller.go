package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/app/repository"
	"github.com/resumedesk/ResumeDesk/internal/pkg/database"
	"github.com/resumedesk/ResumeDesk/internal/pkg/entitlements"
	"github.com/resumedesk/ResumeDesk/internal/pkg/usercontext"
)

// HandleGetUserAccount returns account information for the authenticated user (API key or session).
func HandleGetUserAccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	account, err := repo.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user"})
	}

	stats, err := repo.GetStatsByUserID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load statistics"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Database unavailable"})
	}
	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load user settings"})
	}

	now := time.Now()
	var limits entitlements.Limits
	var subView interface{}
	if sub, err := models.FindCurrentSubscription(db, userCtx.UserID); err == nil {
		limits = entitlements.ForSubscription(sub, now)
		if sub.IsUsable(now) {
			subView = fiber.Map{
				"plan":     sub.Plan.Name,
				"status":   sub.Status,
				"end_date": sub.EndDate.UTC().Format(time.RFC3339),
			}
		}
	} else {
		limits = entitlements.ForSubscription(nil, now)
	}

	appSettings := models.GetAppSettings()

	response := fiber.Map{
		"id":                   account.ID,
		"username":             account.Name,
		"email":                account.Email,
		"status":               account.Status,
		"plan":                 string(limits.Plan),
		"is_admin":             account.Role == models.ROLE_ADMIN,
		"created_at":           account.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at":        formatTimePtr(account.LastLoginAt),
		"api_key_last_used_at": formatTimePtr(settings.APIKeyLastUsedAt),
		"subscription":         subView,
		"stats": fiber.Map{
			"resumes": fiber.Map{
				"count": stats.ResumeCount,
			},
			"letters": fiber.Map{
				"count": stats.LetterCount,
			},
		},
		"limits": fiber.Map{
			"max_resumes":             limits.MaxResumes,
			"max_letters":             limits.MaxLetters,
			"can_create_resume":       limits.CanCreateResume(stats.ResumeCount) && appSettings.IsResumeCreationEnabled(),
			"can_create_letter":       limits.CanCreateLetter(stats.LetterCount) && appSettings.IsResumeCreationEnabled(),
			"premium_templates":       limits.PremiumTemplates,
			"photo_webp":              limits.PhotoWebP,
			"watermark_free":          limits.WatermarkFree,
			"resume_creation_enabled": appSettings.IsResumeCreationEnabled(),
		},
		"preferences": fiber.Map{
			"locale":               settings.Locale,
			"default_template_key": settings.DefaultTemplateKey,
			"email_on_invoice":     settings.EmailOnInvoice,
			"email_on_expiry":      settings.EmailOnExpiry,
		},
	}

	return c.JSON(response)
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
