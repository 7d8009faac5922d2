package controllers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/app/repository"
	"github.com/resumedesk/ResumeDesk/internal/pkg/constants"
	"github.com/resumedesk/ResumeDesk/internal/pkg/database"
	"github.com/resumedesk/ResumeDesk/internal/pkg/entitlements"
	"github.com/resumedesk/ResumeDesk/internal/pkg/env"
	"github.com/resumedesk/ResumeDesk/internal/pkg/photoprocessor"
	"github.com/resumedesk/ResumeDesk/internal/pkg/preview"
	"github.com/resumedesk/ResumeDesk/internal/pkg/upload"
	"github.com/resumedesk/ResumeDesk/internal/pkg/usercontext"
)

// resumeResourcePayload builds the canonical resume resource for API clients
func resumeResourcePayload(c *fiber.Ctx, resume *models.Resume, includeContent bool) fiber.Map {
	shareURL := ""
	if resume.IsPublic {
		shareURL = fmt.Sprintf("%s%s/%s", env.GetEnv("PUBLIC_DOMAIN", ""), constants.ResumeShareRoute, resume.ShareLink)
	}

	payload := fiber.Map{
		"uuid":           resume.UUID,
		"title":          resume.Title,
		"template_key":   resume.TemplateKey,
		"is_public":      resume.IsPublic,
		"share_url":      shareURL,
		"view_count":     resume.ViewCount,
		"download_count": resume.DownloadCount,
		"created_at":     resume.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":     resume.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if resume.PhotoPath != "" {
		payload["photo_url"] = photoprocessor.PhotoURLForBrowser(c, resume, "")
		payload["photo_thumb_url"] = photoprocessor.PhotoURLForBrowser(c, resume, "thumb")
	}
	if includeContent {
		payload["content"] = preview.NormalizeResume(resume.Content)
	}
	return payload
}

// HandleListResumesAPI returns the authenticated user's resumes
// Security: API Key required via router middleware
func HandleListResumesAPI(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	repo := repository.GetGlobalFactory().GetResumeRepository()
	resumes, err := repo.GetByUserID(user.UserID, 0, 100)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load resumes"})
	}

	items := make([]fiber.Map, 0, len(resumes))
	for i := range resumes {
		items = append(items, resumeResourcePayload(c, &resumes[i], false))
	}
	return c.JSON(fiber.Map{"resumes": items, "count": len(items)})
}

// HandleGetResumeResourceAPI returns the canonical resume resource including
// the normalized content
// Security: API Key required via router middleware
func HandleGetResumeResourceAPI(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	uuid := c.Params("uuid")
	if uuid == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "uuid missing"})
	}

	repo := repository.GetGlobalFactory().GetResumeRepository()
	resume, err := repo.GetByUUID(uuid)
	if err != nil || resume == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "resume not found"})
	}
	// Access: owner or public
	if resume.UserID != user.UserID && !resume.IsPublic {
		// Do not leak existence
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "resume not found"})
	}

	return c.JSON(resumeResourcePayload(c, resume, true))
}

// HandleResumePhotoUploadAPI accepts a photo for a resume over the API. The
// API key is the authentication; no signed upload token is involved. The
// variants are produced on the in-process worker pool.
func HandleResumePhotoUploadAPI(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	uuid := c.Params("uuid")
	if uuid == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "uuid missing"})
	}

	repo := repository.GetGlobalFactory().GetResumeRepository()
	resume, err := repo.GetByUUID(uuid)
	if err != nil || resume == nil || resume.UserID != user.UserID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "resume not found"})
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "photo missing"})
	}
	if fileHeader.Size > maxPhotoBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "photo_too_large", "message": "photo exceeds the 10 MB limit"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "failed to read upload"})
	}
	head := make([]byte, 512)
	n, err := file.Read(head)
	file.Close()
	if err != nil && err != io.EOF {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "failed to read upload"})
	}

	if _, err := upload.ValidatePhotoBySniff(fileHeader.Filename, head[:n]); err != nil {
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{"error": "unsupported_photo", "message": err.Error()})
	}

	if resume.PhotoPath != "" {
		photoprocessor.RemoveVariants(resume.UUID)
	}

	if err := os.MkdirAll(photoprocessor.OriginalDir, 0755); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "failed to store upload"})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	originalPath := filepath.Join(photoprocessor.OriginalDir, resume.UUID+ext)
	if err := c.SaveFile(fileHeader, originalPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "failed to store upload"})
	}

	resume.PhotoPath = originalPath
	resume.HasPhotoWebp = false
	if err := repo.Update(resume); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "failed to store upload"})
	}

	webpVariant := false
	if sub, err := models.FindCurrentSubscription(database.GetDB(), resume.UserID); err == nil {
		webpVariant = entitlements.ForSubscription(sub, time.Now()).PhotoWebP
	}
	if err := photoprocessor.ProcessPhoto(resume, originalPath, webpVariant); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "failed to queue processing"})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"ok":     true,
		"uuid":   resume.UUID,
		"status": photoprocessor.STATUS_PENDING,
	})
}

// HandleResumePhotoStatusAPI reports the processing state of a resume photo
// Security: API Key required via router middleware
func HandleResumePhotoStatusAPI(c *fiber.Ctx) error {
	user := usercontext.GetUserContext(c)
	if !user.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or invalid authentication"})
	}

	uuid := c.Params("uuid")
	if uuid == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "uuid missing"})
	}

	repo := repository.GetGlobalFactory().GetResumeRepository()
	resume, err := repo.GetByUUID(uuid)
	if err != nil || resume == nil || resume.UserID != user.UserID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "resume not found"})
	}

	status, err := photoprocessor.GetPhotoStatus(resume.UUID)
	if err != nil || status == "" {
		// Cache entries expire; fall back to the persisted photo columns.
		if resume.PhotoPath != "" {
			status = photoprocessor.STATUS_COMPLETED
		} else {
			status = "none"
		}
	}

	payload := fiber.Map{"uuid": resume.UUID, "status": status}
	if status == photoprocessor.STATUS_COMPLETED {
		payload["photo_url"] = photoprocessor.PhotoURLForBrowser(c, resume, "")
		payload["photo_thumb_url"] = photoprocessor.PhotoURLForBrowser(c, resume, "thumb")
	}
	return c.JSON(payload)
}
