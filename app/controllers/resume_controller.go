package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/app/repository"
	"github.com/resumedesk/ResumeDesk/internal/pkg/constants"
	"github.com/resumedesk/ResumeDesk/internal/pkg/database"
	"github.com/resumedesk/ResumeDesk/internal/pkg/entitlements"
	"github.com/resumedesk/ResumeDesk/internal/pkg/env"
	"github.com/resumedesk/ResumeDesk/internal/pkg/jobqueue"
	"github.com/resumedesk/ResumeDesk/internal/pkg/metrics/counter"
	"github.com/resumedesk/ResumeDesk/internal/pkg/photoprocessor"
	"github.com/resumedesk/ResumeDesk/internal/pkg/preview"
	"github.com/resumedesk/ResumeDesk/internal/pkg/security"
	"github.com/resumedesk/ResumeDesk/internal/pkg/upload"
	"github.com/resumedesk/ResumeDesk/internal/pkg/usercontext"
	"github.com/resumedesk/ResumeDesk/internal/pkg/viewmodel"
)

const (
	// Photo uploads above this size are rejected before processing starts.
	maxPhotoBytes = 10 * 1024 * 1024

	// Upload tokens embedded in the editor page stay valid this long.
	uploadTokenTTL = 15 * time.Minute
)

// Default viewport used for the first server-side render. The editor
// re-measures and posts the real viewport right after load.
const (
	defaultViewportWidth  = 1280
	defaultViewportHeight = 900
)

// templateOption is one entry in the template picker.
type templateOption struct {
	Key       string
	Name      string
	IsPremium bool
	Allowed   bool
	Current   bool
}

// resumeListView is one row on the resume overview page.
type resumeListView struct {
	UUID        string
	Title       string
	TemplateKey string
	IsPublic    bool
	ShareURL    string
	PhotoURL    string
	ViewCount   int
	UpdatedAt   string
}

// currentLimits resolves the entitlements for a user from their live
// subscription. Callers get the free tier when nothing usable exists.
func currentLimits(userID uint) entitlements.Limits {
	db := database.GetDB()
	sub, err := models.FindCurrentSubscription(db, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		fiberlog.Errorf("[Resume] Failed to resolve subscription for user %d: %v", userID, err)
	}
	return entitlements.ForSubscription(sub, time.Now())
}

// findOwnedResume loads a resume by UUID and verifies it belongs to the
// given user. Missing rows and foreign rows both come back as an error.
func findOwnedResume(uuid string, userID uint) (*models.Resume, error) {
	if uuid == "" {
		return nil, gorm.ErrRecordNotFound
	}
	resume, err := repository.GetGlobalRepositories().Resume.GetByUUID(uuid)
	if err != nil {
		return nil, err
	}
	if resume.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return resume, nil
}

// templateOptions builds the picker entries for one document kind,
// marking which designs the plan unlocks.
func templateOptions(kind, currentKey string, limits entitlements.Limits) []templateOption {
	catalog, err := repository.GetGlobalRepositories().Template.GetActive(kind)
	if err != nil {
		fiberlog.Errorf("[Resume] Failed to load template catalog for %s: %v", kind, err)
		return nil
	}

	registry := preview.GetRegistry()
	options := make([]templateOption, 0, len(catalog))
	for i := range catalog {
		tpl := catalog[i]
		// Catalog rows without a registered renderer cannot be offered.
		if !registry.Has(kind, tpl.Key) {
			continue
		}
		options = append(options, templateOption{
			Key:       tpl.Key,
			Name:      tpl.Name,
			IsPremium: tpl.IsPremium,
			Allowed:   limits.CanUseTemplate(&tpl),
			Current:   tpl.Key == currentKey,
		})
	}
	return options
}

// validateTemplateChoice checks that a template key can be saved on a
// document: it must be registered, active in the catalog and unlocked by
// the plan. Returns a user-facing message when the choice is rejected.
func validateTemplateChoice(kind, key string, limits entitlements.Limits) string {
	if !preview.GetRegistry().Has(kind, key) {
		return "This template does not exist."
	}
	tpl, err := repository.GetGlobalRepositories().Template.GetByKindAndKey(kind, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "This template does not exist."
		}
		fiberlog.Errorf("[Resume] Template lookup failed for %s/%s: %v", kind, key, err)
		return "This template is not available right now."
	}
	if !limits.CanUseTemplate(tpl) {
		return "This template is only available on paid plans. Upgrade to use it."
	}
	return ""
}

// HandleUserResumes renders the resume overview for the logged in user.
func HandleUserResumes(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login")
	}

	repos := repository.GetGlobalRepositories()
	resumes, err := repos.Resume.GetByUserID(userCtx.UserID, 0, 100)
	if err != nil {
		fiberlog.Errorf("[Resume] Failed to list resumes for user %d: %v", userCtx.UserID, err)
		fm := fiber.Map{"type": "error", "message": "Your resumes could not be loaded."}
		return flash.WithError(c, fm).Redirect("/user/profile")
	}

	domain := env.GetEnv("PUBLIC_DOMAIN", "")
	list := make([]resumeListView, 0, len(resumes))
	for i := range resumes {
		r := resumes[i]
		row := resumeListView{
			UUID:        r.UUID,
			Title:       r.Title,
			TemplateKey: r.TemplateKey,
			IsPublic:    r.IsPublic,
			PhotoURL:    photoprocessor.PhotoURLForBrowser(c, &r, "thumb"),
			ViewCount:   r.ViewCount,
			UpdatedAt:   r.UpdatedAt.Format("02.01.2006 15:04"),
		}
		if r.IsPublic {
			row.ShareURL = fmt.Sprintf("%s/r/%s", domain, r.ShareLink)
		}
		list = append(list, row)
	}

	limits := currentLimits(userCtx.UserID)
	count, _ := repos.Resume.CountByUserID(userCtx.UserID)

	return renderPage(c, "user/resumes", " | My Resumes", fiber.Map{
		"Resumes":   list,
		"Count":     count,
		"MaxAllows": limits.MaxResumes,
		"CanCreate": limits.CanCreateResume(count),
		"Plan":      string(limits.Plan),
	})
}

// HandleResumeNew renders the create form with the template picker.
func HandleResumeNew(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login")
	}

	limits := currentLimits(userCtx.UserID)
	count, _ := repository.GetGlobalRepositories().Resume.CountByUserID(userCtx.UserID)
	if !limits.CanCreateResume(count) {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("Your plan allows up to %d resumes. Upgrade to create more.", limits.MaxResumes),
		}
		return flash.WithError(c, fm).Redirect("/user/resumes")
	}

	defaultKey := defaultTemplateKey(userCtx.UserID)

	return renderPage(c, "user/resume_new", " | New Resume", fiber.Map{
		"Templates": templateOptions(models.TemplateKindResume, defaultKey, limits),
	})
}

// defaultTemplateKey reads the user's preferred design from their settings.
func defaultTemplateKey(userID uint) string {
	db := database.GetDB()
	settings, err := models.GetOrCreateUserSettings(db, userID)
	if err != nil || settings.DefaultTemplateKey == "" {
		return "classic"
	}
	return settings.DefaultTemplateKey
}

// HandleResumeCreate creates a resume and sends the user to the editor.
func HandleResumeCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login")
	}

	repos := repository.GetGlobalRepositories()
	limits := currentLimits(userCtx.UserID)

	count, err := repos.Resume.CountByUserID(userCtx.UserID)
	if err != nil {
		fiberlog.Errorf("[Resume] Failed to count resumes for user %d: %v", userCtx.UserID, err)
		fm := fiber.Map{"type": "error", "message": "Something went wrong. Please try again."}
		return flash.WithError(c, fm).Redirect("/user/resumes")
	}
	if !limits.CanCreateResume(count) {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("Your plan allows up to %d resumes. Upgrade to create more.", limits.MaxResumes),
		}
		return flash.WithError(c, fm).Redirect("/user/resumes")
	}

	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		fm := fiber.Map{"type": "error", "message": "Please give your resume a title."}
		return flash.WithError(c, fm).Redirect("/user/resumes/new")
	}

	templateKey := c.FormValue("template_key")
	if templateKey == "" {
		templateKey = defaultTemplateKey(userCtx.UserID)
	}
	if msg := validateTemplateChoice(models.TemplateKindResume, templateKey, limits); msg != "" {
		fm := fiber.Map{"type": "error", "message": msg}
		return flash.WithError(c, fm).Redirect("/user/resumes/new")
	}

	content := preview.NormalizeResume(models.ResumeContent{
		Contact: models.ContactInfo{FullName: strings.TrimSpace(c.FormValue("full_name", userCtx.Username))},
	})

	resume := &models.Resume{
		UserID:      userCtx.UserID,
		Title:       title,
		TemplateKey: templateKey,
		Content:     content,
	}
	if err := repos.Resume.Create(resume); err != nil {
		fiberlog.Errorf("[Resume] Failed to create resume for user %d: %v", userCtx.UserID, err)
		fm := fiber.Map{"type": "error", "message": "Your resume could not be created."}
		return flash.WithError(c, fm).Redirect("/user/resumes")
	}

	fm := fiber.Map{"type": "success", "message": "Resume created."}
	return flash.WithSuccess(c, fm).Redirect(fmt.Sprintf("/user/resumes/%s", resume.UUID))
}

// HandleResumeEditor renders the editor page: the form on the left, the
// rendered document with its computed layout on the right.
func HandleResumeEditor(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login")
	}

	resume, err := findOwnedResume(c.Params("uuid"), userCtx.UserID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Resume not found."}
		return flash.WithError(c, fm).Redirect("/user/resumes")
	}

	doc, err := resumeDocumentView(c, resume)
	if err != nil {
		fiberlog.Errorf("[Resume] Failed to render %s: %v", resume.UUID, err)
		fm := fiber.Map{"type": "error", "message": "The preview could not be rendered."}
		return flash.WithError(c, fm).Redirect("/user/resumes")
	}

	limits := currentLimits(userCtx.UserID)

	// The photo uploader needs a signed token; without a configured secret
	// the uploader stays disabled.
	uploadToken := ""
	if secret := env.GetEnv("UPLOAD_TOKEN_SECRET", ""); secret != "" {
		uploadToken, err = security.GenerateUploadToken(userCtx.UserID, resume.ID, maxPhotoBytes, uploadTokenTTL, secret)
		if err != nil {
			fiberlog.Errorf("[Resume] Failed to issue upload token for %s: %v", resume.UUID, err)
			uploadToken = ""
		}
	}

	contentJSON, err := json.Marshal(resume.Content)
	if err != nil {
		fiberlog.Errorf("[Resume] Failed to encode content for %s: %v", resume.UUID, err)
		contentJSON = []byte("{}")
	}

	return renderPage(c, "user/resume_editor", " | "+resume.Title, fiber.Map{
		"Document":    doc,
		"Resume":      resume,
		"ContentJSON": string(contentJSON),
		"Templates":   templateOptions(models.TemplateKindResume, resume.TemplateKey, limits),
		"PhotoURL":    photoprocessor.PhotoURLForBrowser(c, resume, ""),
		"UploadToken": uploadToken,
	})
}

// resumeDocumentView renders a resume through the template registry and
// packs it with the initial layout numbers.
func resumeDocumentView(c *fiber.Ctx, resume *models.Resume) (*viewmodel.Document, error) {
	normalized := preview.NormalizeResume(resume.Content)
	body, err := preview.GetRegistry().RenderDocument(models.TemplateKindResume, resume.TemplateKey, fiber.Map{
		"Content":  normalized,
		"PhotoURL": photoprocessor.PhotoURLForBrowser(c, resume, ""),
	})
	if err != nil {
		return nil, err
	}

	layout := preview.ComputeLayout(preview.LayoutRequest{
		ViewportWidth:  defaultViewportWidth,
		ViewportHeight: defaultViewportHeight,
	})

	domain := env.GetEnv("PUBLIC_DOMAIN", "")
	shareURL := ""
	if resume.IsPublic {
		shareURL = fmt.Sprintf("%s/r/%s", domain, resume.ShareLink)
	}

	return &viewmodel.Document{
		Kind:          models.TemplateKindResume,
		UUID:          resume.UUID,
		Title:         resume.Title,
		OwnerName:     resume.Content.Contact.FullName,
		TemplateKey:   resume.TemplateKey,
		ShareURL:      shareURL,
		IsPublic:      resume.IsPublic,
		Body:          template.HTML(body),
		Zoom:          layout.Zoom,
		DeviceClass:   string(layout.DeviceClass),
		PageWidthPx:   int(layout.PageWidthPx),
		PageHeightPx:  int(layout.PageHeightPx),
		Pages:         layout.Pages,
		ViewCount:     resume.ViewCount,
		DownloadCount: resume.DownloadCount,
		CreatedAt:     resume.CreatedAt.Format("02.01.2006"),
		UpdatedAt:     resume.UpdatedAt.Format("02.01.2006 15:04"),
	}, nil
}

// HandleResumeUpdate saves the editor form. The structured body arrives as
// one JSON field the editor keeps in sync.
func HandleResumeUpdate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login")
	}

	resume, err := findOwnedResume(c.Params("uuid"), userCtx.UserID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Resume not found."}
		return flash.WithError(c, fm).Redirect("/user/resumes")
	}
	editorPath := fmt.Sprintf("/user/resumes/%s", resume.UUID)

	if title := strings.TrimSpace(c.FormValue("title")); title != "" {
		resume.Title = title
	}

	limits := currentLimits(userCtx.UserID)
	if templateKey := c.FormValue("template_key"); templateKey != "" && templateKey != resume.TemplateKey {
		if msg := validateTemplateChoice(models.TemplateKindResume, templateKey, limits); msg != "" {
			fm := fiber.Map{"type": "error", "message": msg}
			return flash.WithError(c, fm).Redirect(editorPath)
		}
		resume.TemplateKey = templateKey
	}

	if raw := c.FormValue("content"); raw != "" {
		var content models.ResumeContent
		if err := json.Unmarshal([]byte(raw), &content); err != nil {
			fiberlog.Errorf("[Resume] Invalid content payload for %s: %v", resume.UUID, err)
			fm := fiber.Map{"type": "error", "message": "The editor sent invalid content. Nothing was saved."}
			return flash.WithError(c, fm).Redirect(editorPath)
		}
		resume.Content = preview.NormalizeResume(content)
	}

	if err := repository.GetGlobalRepositories().Resume.Update(resume); err != nil {
		fiberlog.Errorf("[Resume] Failed to save %s: %v", resume.UUID, err)
		fm := fiber.Map{"type": "error", "message": "Your changes could not be saved."}
		return flash.WithError(c, fm).Redirect(editorPath)
	}

	fm := fiber.Map{"type": "success", "message": "Resume saved."}
	return flash.WithSuccess(c, fm).Redirect(editorPath)
}

// HandleResumeDelete removes a resume together with its photo variants.
func HandleResumeDelete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login")
	}

	resume, err := findOwnedResume(c.Params("uuid"), userCtx.UserID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Resume not found."}
		return flash.WithError(c, fm).Redirect("/user/resumes")
	}

	if resume.PhotoPath != "" {
		photoprocessor.RemoveVariants(resume.UUID)
	}

	if err := repository.GetGlobalRepositories().Resume.Delete(resume.ID); err != nil {
		fiberlog.Errorf("[Resume] Failed to delete %s: %v", resume.UUID, err)
		fm := fiber.Map{"type": "error", "message": "Your resume could not be deleted."}
		return flash.WithError(c, fm).Redirect("/user/resumes")
	}

	fm := fiber.Map{"type": "success", "message": "Resume deleted."}
	return flash.WithSuccess(c, fm).Redirect("/user/resumes")
}

// HandleResumeShareToggle flips the public flag on a resume.
func HandleResumeShareToggle(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login")
	}

	resume, err := findOwnedResume(c.Params("uuid"), userCtx.UserID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Resume not found."}
		return flash.WithError(c, fm).Redirect("/user/resumes")
	}
	editorPath := fmt.Sprintf("/user/resumes/%s", resume.UUID)

	resume.IsPublic = !resume.IsPublic
	if err := repository.GetGlobalRepositories().Resume.Update(resume); err != nil {
		fiberlog.Errorf("[Resume] Failed to toggle sharing on %s: %v", resume.UUID, err)
		fm := fiber.Map{"type": "error", "message": "Sharing could not be changed."}
		return flash.WithError(c, fm).Redirect(editorPath)
	}

	if resume.IsPublic {
		shareURL := fmt.Sprintf("%s/r/%s", env.GetEnv("PUBLIC_DOMAIN", ""), resume.ShareLink)
		fm := fiber.Map{"type": "success", "message": fmt.Sprintf("Your resume is now public: %s", shareURL)}
		return flash.WithSuccess(c, fm).Redirect(editorPath)
	}

	fm := fiber.Map{"type": "success", "message": "Your resume is now private."}
	return flash.WithSuccess(c, fm).Redirect(editorPath)
}

// HandleResumePreview re-renders the document body for unsaved editor
// content and returns it with a fresh layout. Nothing is persisted.
func HandleResumePreview(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	resume, err := findOwnedResume(c.Params("uuid"), userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "resume_not_found"})
	}

	var req struct {
		TemplateKey string                `json:"template_key"`
		Content     models.ResumeContent  `json:"content"`
		Viewport    preview.LayoutRequest `json:"viewport"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request"})
	}

	templateKey := req.TemplateKey
	if templateKey == "" {
		templateKey = resume.TemplateKey
	}
	limits := currentLimits(userCtx.UserID)
	if msg := validateTemplateChoice(models.TemplateKindResume, templateKey, limits); msg != "" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "template_not_allowed", "message": msg})
	}

	normalized := preview.NormalizeResume(req.Content)
	body, err := preview.GetRegistry().RenderDocument(models.TemplateKindResume, templateKey, fiber.Map{
		"Content":  normalized,
		"PhotoURL": photoprocessor.PhotoURLForBrowser(c, resume, ""),
	})
	if err != nil {
		fiberlog.Errorf("[Resume] Preview render failed for %s: %v", resume.UUID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "render_failed"})
	}

	layout := preview.ComputeLayout(req.Viewport)

	return c.JSON(fiber.Map{
		"html":   body,
		"layout": layout,
	})
}

// HandleResumePhotoUpload accepts the editor's photo upload and queues the
// variant processing. The request must carry a valid signed upload token.
func HandleResumePhotoUpload(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	resume, err := findOwnedResume(c.Params("uuid"), userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "resume_not_found"})
	}

	secret := env.GetEnv("UPLOAD_TOKEN_SECRET", "")
	if secret == "" {
		fiberlog.Warn("[Resume] UPLOAD_TOKEN_SECRET not set; refusing photo upload")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "uploads_disabled"})
	}

	claims, err := security.VerifyUploadToken(c.FormValue("token"), secret)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_upload_token"})
	}
	if claims.UserID != userCtx.UserID || claims.ResumeID != resume.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "token_mismatch"})
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "photo_missing"})
	}
	if fileHeader.Size > claims.MaxBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "photo_too_large"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		fiberlog.Errorf("[Resume] Failed to open upload for %s: %v", resume.UUID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "upload_failed"})
	}
	head := make([]byte, 512)
	n, err := file.Read(head)
	file.Close()
	if err != nil && err != io.EOF {
		fiberlog.Errorf("[Resume] Failed to sniff upload for %s: %v", resume.UUID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "upload_failed"})
	}

	if _, err := upload.ValidatePhotoBySniff(fileHeader.Filename, head[:n]); err != nil {
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{"error": "unsupported_photo", "message": err.Error()})
	}

	// Replacing a photo drops the old original and variants first, the new
	// original may carry a different extension.
	if resume.PhotoPath != "" {
		photoprocessor.RemoveVariants(resume.UUID)
	}

	if err := os.MkdirAll(photoprocessor.OriginalDir, 0755); err != nil {
		fiberlog.Errorf("[Resume] Failed to create photo dir: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "upload_failed"})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	originalPath := filepath.Join(photoprocessor.OriginalDir, resume.UUID+ext)
	if err := c.SaveFile(fileHeader, originalPath); err != nil {
		fiberlog.Errorf("[Resume] Failed to store upload for %s: %v", resume.UUID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "upload_failed"})
	}

	resume.PhotoPath = originalPath
	resume.HasPhotoWebp = false
	if err := repository.GetGlobalRepositories().Resume.Update(resume); err != nil {
		fiberlog.Errorf("[Resume] Failed to save photo path for %s: %v", resume.UUID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "upload_failed"})
	}

	if err := jobqueue.ProcessResumePhoto(resume, originalPath); err != nil {
		fiberlog.Errorf("[Resume] Failed to queue photo processing for %s: %v", resume.UUID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "processing_unavailable"})
	}

	return c.JSON(fiber.Map{
		"ok":     true,
		"status": photoprocessor.STATUS_PENDING,
	})
}

// HandleResumePhotoStatus reports the processing state the editor polls.
func HandleResumePhotoStatus(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	resume, err := findOwnedResume(c.Params("uuid"), userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "resume_not_found"})
	}

	status, err := photoprocessor.GetPhotoStatus(resume.UUID)
	if err != nil {
		// Cache entries expire; fall back to what the row says.
		if resume.PhotoPath != "" {
			status = photoprocessor.STATUS_COMPLETED
		} else {
			status = "none"
		}
	}

	response := fiber.Map{
		"status":   status,
		"complete": status == photoprocessor.STATUS_COMPLETED,
	}
	if status == photoprocessor.STATUS_COMPLETED {
		response["photo_url"] = photoprocessor.PhotoURLForBrowser(c, resume, "")
		response["thumb_url"] = photoprocessor.PhotoURLForBrowser(c, resume, "thumb")
	}
	return c.JSON(response)
}

// HandleResumePhotoDelete removes the photo and all its variants.
func HandleResumePhotoDelete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login")
	}

	resume, err := findOwnedResume(c.Params("uuid"), userCtx.UserID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Resume not found."}
		return flash.WithError(c, fm).Redirect("/user/resumes")
	}
	editorPath := fmt.Sprintf("/user/resumes/%s", resume.UUID)

	if resume.PhotoPath == "" {
		fm := fiber.Map{"type": "info", "message": "This resume has no photo."}
		return flash.WithInfo(c, fm).Redirect(editorPath)
	}

	photoprocessor.RemoveVariants(resume.UUID)
	resume.PhotoPath = ""
	resume.HasPhotoWebp = false
	if err := repository.GetGlobalRepositories().Resume.Update(resume); err != nil {
		fiberlog.Errorf("[Resume] Failed to clear photo on %s: %v", resume.UUID, err)
		fm := fiber.Map{"type": "error", "message": "The photo could not be removed."}
		return flash.WithError(c, fm).Redirect(editorPath)
	}

	fm := fiber.Map{"type": "success", "message": "Photo removed."}
	return flash.WithSuccess(c, fm).Redirect(editorPath)
}

// HandleResumePublic serves the public share page under /r/:sharelink.
func HandleResumePublic(c *fiber.Ctx) error {
	sharelink := c.Params("sharelink")
	if sharelink == "" {
		return c.Redirect("/")
	}

	db := database.GetDB()
	resume, err := models.FindResumeByShareLink(db, sharelink)
	if err != nil {
		fiberlog.Infof("[Resume] Share link not found: %s", sharelink)
		return c.Redirect("/")
	}

	userCtx := usercontext.GetUserContext(c)
	if !resume.IsPublic {
		// Owners get bounced into the editor, everyone else sees nothing.
		if userCtx.IsLoggedIn && userCtx.UserID == resume.UserID {
			return c.Redirect(fmt.Sprintf("/user/resumes/%s", resume.UUID))
		}
		return c.SendStatus(fiber.StatusNotFound)
	}

	// Views are buffered in Redis and flushed to the row by the queue.
	if !userCtx.IsLoggedIn || userCtx.UserID != resume.UserID {
		if err := counter.AddResumeView(resume.ID); err != nil {
			fiberlog.Errorf("[Resume] Failed to count view for %s: %v", resume.UUID, err)
		}
	}

	doc, err := resumeDocumentView(c, resume)
	if err != nil {
		fiberlog.Errorf("[Resume] Failed to render shared %s: %v", resume.UUID, err)
		return c.SendStatus(fiber.StatusNotFound)
	}

	ownerLimits := currentLimits(resume.UserID)

	og := &viewmodel.OpenGraph{
		Title:       resume.Title,
		Description: fmt.Sprintf("Resume of %s", resume.Content.Contact.FullName),
		URL:         fmt.Sprintf("%s%s/%s", env.GetEnv("PUBLIC_DOMAIN", ""), constants.ResumeShareRoute, resume.ShareLink),
		SiteName:    "ResumeDesk",
	}

	return renderPageOG(c, "public/resume", " | "+resume.Title, og, fiber.Map{
		"Document":      doc,
		"ShowWatermark": !ownerLimits.WatermarkFree,
		"DownloadURL":   fmt.Sprintf("%s/%s/download", constants.ResumeShareRoute, resume.ShareLink),
	})
}

// HandleResumeDownload serves the print view of a shared resume and counts
// the download.
func HandleResumeDownload(c *fiber.Ctx) error {
	sharelink := c.Params("sharelink")
	if sharelink == "" {
		return c.Redirect("/")
	}

	db := database.GetDB()
	resume, err := models.FindResumeByShareLink(db, sharelink)
	if err != nil {
		return c.Redirect("/")
	}

	userCtx := usercontext.GetUserContext(c)
	isOwner := userCtx.IsLoggedIn && userCtx.UserID == resume.UserID
	if !resume.IsPublic && !isOwner {
		return c.SendStatus(fiber.StatusNotFound)
	}

	if !isOwner {
		if err := counter.AddResumeDownload(resume.ID); err != nil {
			fiberlog.Errorf("[Resume] Failed to count download for %s: %v", resume.UUID, err)
		}
	}

	doc, err := resumeDocumentView(c, resume)
	if err != nil {
		fiberlog.Errorf("[Resume] Failed to render print view for %s: %v", resume.UUID, err)
		return c.SendStatus(fiber.StatusNotFound)
	}

	ownerLimits := currentLimits(resume.UserID)

	return c.Render("public/document_print", fiber.Map{
		"Document":      doc,
		"ShowWatermark": !ownerLimits.WatermarkFree,
	}, "layouts/print")
}
