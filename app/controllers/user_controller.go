package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/app/repository"
	"github.com/resumedesk/ResumeDesk/internal/pkg/database"
	"github.com/resumedesk/ResumeDesk/internal/pkg/env"
	"github.com/resumedesk/ResumeDesk/internal/pkg/mail"
	"github.com/resumedesk/ResumeDesk/internal/pkg/session"
	"github.com/resumedesk/ResumeDesk/internal/pkg/usercontext"
	"github.com/resumedesk/ResumeDesk/internal/pkg/utils"
)

func HandleUserProfile(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var user models.User
	if err := database.GetDB().First(&user, userCtx.UserID).Error; err != nil {
		flash.WithError(c, fiber.Map{"message": "User not found"})
		return c.Redirect("/")
	}

	stats, err := repository.GetGlobalRepositories().User.GetStatsByUserID(userCtx.UserID)
	if err != nil {
		stats = &repository.UserStats{}
	}

	planName := "Free"
	if sub, err := models.FindCurrentSubscription(database.GetDB(), userCtx.UserID); err == nil && sub.IsUsable(time.Now()) {
		planName = sub.Plan.Name
	}

	return renderPage(c, "user/profile", " | Profile", fiber.Map{
		"User":        user,
		"Gravatar":    utils.AvatarURL(&user, 160),
		"ResumeCount": stats.ResumeCount,
		"LetterCount": stats.LetterCount,
		"PlanName":    planName,
		"MemberSince": user.CreatedAt.Format("January 2006"),
	})
}

func HandleUserProfileEdit(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	db := database.GetDB()

	var user models.User
	if err := db.First(&user, userCtx.UserID).Error; err != nil {
		flash.WithError(c, fiber.Map{"message": "User not found"})
		return c.Redirect("/")
	}

	if c.Method() == fiber.MethodPost {
		user.Name = strings.TrimSpace(c.FormValue("name", user.Name))
		user.Country = strings.ToUpper(strings.TrimSpace(c.FormValue("country", user.Country)))
		user.State = strings.TrimSpace(c.FormValue("state", user.State))
		user.Phone = strings.TrimSpace(c.FormValue("phone", user.Phone))

		if err := user.Validate(); err != nil {
			fm := fiber.Map{"type": "error", "message": fmt.Sprintf("Invalid profile data: %s", err)}
			return flash.WithError(c, fm).Redirect("/user/profile/edit")
		}

		newEmail := strings.TrimSpace(c.FormValue("email"))
		emailChanged := newEmail != "" && newEmail != user.Email
		if emailChanged {
			user.PendingEmail = newEmail
			if err := user.GenerateEmailChangeToken(); err != nil {
				fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
				return flash.WithError(c, fm).Redirect("/user/profile/edit")
			}
		}

		if err := db.Save(&user).Error; err != nil {
			fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
			return flash.WithError(c, fm).Redirect("/user/profile/edit")
		}

		// Keep the navbar name in sync
		if sess, err := session.GetSessionStore().Get(c); err == nil {
			sess.Set(USER_NAME, user.Name)
			_ = sess.Save()
		}

		if emailChanged {
			confirmLink := fmt.Sprintf("%s/user/email/confirm?token=%s", env.GetEnv("PUBLIC_DOMAIN", ""), user.EmailChangeToken)
			go func(email, name, link string) {
				if err := mail.SendEmailChangeEmail(email, name, link); err != nil {
					fmt.Printf("email change mail error: %v\n", err)
				}
			}(newEmail, user.Name, confirmLink)

			fm := fiber.Map{"type": "success", "message": "Profile saved. Check your new email address to confirm the change."}
			return flash.WithSuccess(c, fm).Redirect("/user/profile")
		}

		fm := fiber.Map{"type": "success", "message": "Profile saved."}
		return flash.WithSuccess(c, fm).Redirect("/user/profile")
	}

	return renderPage(c, "user/profile_edit", " | Edit profile", fiber.Map{
		"User": user,
	})
}

// HandleUserEmailConfirm applies a pending email change. The token was sent
// to the new address and expires after 24 hours.
func HandleUserEmailConfirm(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		fm := fiber.Map{"type": "error", "message": "Invalid confirmation link."}
		return flash.WithError(c, fm).Redirect("/user/profile")
	}

	db := database.GetDB()
	var user models.User
	if err := db.Where("email_change_token = ?", token).First(&user).Error; err != nil {
		fm := fiber.Map{"type": "error", "message": "Invalid or already used confirmation link."}
		return flash.WithError(c, fm).Redirect("/user/profile")
	}

	if !user.IsEmailChangeTokenValid(token) {
		fm := fiber.Map{"type": "error", "message": "This confirmation link has expired. Request the change again."}
		return flash.WithError(c, fm).Redirect("/user/profile")
	}

	user.Email = user.PendingEmail
	user.ClearEmailChangeRequest()
	if err := db.Save(&user).Error; err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/user/profile")
	}

	fm := fiber.Map{"type": "success", "message": "Email address updated."}
	return flash.WithSuccess(c, fm).Redirect("/user/profile")
}

func HandleUserSettings(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	db := database.GetDB()

	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		flash.WithError(c, fiber.Map{"message": "Settings could not be loaded"})
		return c.Redirect("/user/profile")
	}

	templates, _ := repository.GetGlobalRepositories().Template.GetActive(models.TemplateKindResume)

	data := fiber.Map{
		"Settings":  settings,
		"Templates": templates,
		"HasAPIKey": settings.HasActiveAPIKey(),
	}
	if settings.HasActiveAPIKey() {
		data["APIKeyPrefix"] = settings.APIKeyPrefix
		if settings.APIKeyCreatedAt != nil {
			data["APIKeyCreated"] = settings.APIKeyCreatedAt.Format("Jan 2, 2006")
		}
		if settings.APIKeyLastUsedAt != nil {
			data["APIKeyLastUsed"] = settings.APIKeyLastUsedAt.Format("Jan 2, 2006 15:04")
		}
	}

	return renderPage(c, "user/settings", " | Settings", data)
}

func HandleUserSettingsUpdate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	db := database.GetDB()

	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Settings could not be loaded"}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}

	if locale := c.FormValue("locale"); locale != "" {
		settings.Locale = locale
	}
	if key := c.FormValue("default_template_key"); key != "" {
		settings.DefaultTemplateKey = key
	}
	settings.EmailOnInvoice = c.FormValue("email_on_invoice") == "on"
	settings.EmailOnExpiry = c.FormValue("email_on_expiry") == "on"

	if err := db.Save(settings).Error; err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}

	fm := fiber.Map{"type": "success", "message": "Settings saved."}
	return flash.WithSuccess(c, fm).Redirect("/user/settings")
}

// HandleUserAPIKeyGenerate issues a fresh API key. The raw secret is shown
// exactly once; only its hash is stored.
func HandleUserAPIKeyGenerate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	db := database.GetDB()

	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Settings could not be loaded"}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}

	rawKey, err := settings.IssueAPIKey()
	if err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}
	if err := db.Save(settings).Error; err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}

	fm := fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("New API key: %s - copy it now, it will not be shown again.", rawKey),
	}
	return flash.WithSuccess(c, fm).Redirect("/user/settings")
}

// HandleUserAPIKeyRevoke invalidates the stored API key.
func HandleUserAPIKeyRevoke(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	db := database.GetDB()

	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Settings could not be loaded"}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}

	settings.RevokeAPIKey()
	if err := db.Save(settings).Error; err != nil {
		fm := fiber.Map{"type": "error", "message": fmt.Sprintf("something went wrong: %s", err)}
		return flash.WithError(c, fm).Redirect("/user/settings")
	}

	fm := fiber.Map{"type": "success", "message": "API key revoked."}
	return flash.WithSuccess(c, fm).Redirect("/user/settings")
}
