package controllers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"
	"gorm.io/gorm"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/app/repository"
	"github.com/resumedesk/ResumeDesk/internal/pkg/constants"
	"github.com/resumedesk/ResumeDesk/internal/pkg/database"
	"github.com/resumedesk/ResumeDesk/internal/pkg/env"
	"github.com/resumedesk/ResumeDesk/internal/pkg/metrics/counter"
	"github.com/resumedesk/ResumeDesk/internal/pkg/preview"
	"github.com/resumedesk/ResumeDesk/internal/pkg/usercontext"
	"github.com/resumedesk/ResumeDesk/internal/pkg/viewmodel"
)

// letterListView is one row on the cover letter overview page.
type letterListView struct {
	UUID        string
	Title       string
	Company     string
	TemplateKey string
	IsPublic    bool
	ShareURL    string
	UpdatedAt   string
}

// findOwnedLetter loads a cover letter by UUID and verifies ownership.
func findOwnedLetter(uuid string, userID uint) (*models.CoverLetter, error) {
	if uuid == "" {
		return nil, gorm.ErrRecordNotFound
	}
	letter, err := repository.GetGlobalRepositories().CoverLetter.GetByUUID(uuid)
	if err != nil {
		return nil, err
	}
	if letter.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return letter, nil
}

// HandleUserLetters renders the cover letter overview.
func HandleUserLetters(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login")
	}

	repos := repository.GetGlobalRepositories()
	letters, err := repos.CoverLetter.GetByUserID(userCtx.UserID, 0, 100)
	if err != nil {
		fiberlog.Errorf("[Letter] Failed to list letters for user %d: %v", userCtx.UserID, err)
		fm := fiber.Map{"type": "error", "message": "Your cover letters could not be loaded."}
		return flash.WithError(c, fm).Redirect("/user/profile")
	}

	domain := env.GetEnv("PUBLIC_DOMAIN", "")
	list := make([]letterListView, 0, len(letters))
	for i := range letters {
		l := letters[i]
		row := letterListView{
			UUID:        l.UUID,
			Title:       l.Title,
			Company:     l.Content.Company,
			TemplateKey: l.TemplateKey,
			IsPublic:    l.IsPublic,
			UpdatedAt:   l.UpdatedAt.Format("02.01.2006 15:04"),
		}
		if l.IsPublic {
			row.ShareURL = fmt.Sprintf("%s/l/%s", domain, l.ShareLink)
		}
		list = append(list, row)
	}

	limits := currentLimits(userCtx.UserID)
	count, _ := repos.CoverLetter.CountByUserID(userCtx.UserID)

	return renderPage(c, "user/letters", " | My Cover Letters", fiber.Map{
		"Letters":   list,
		"Count":     count,
		"MaxAllows": limits.MaxLetters,
		"CanCreate": limits.CanCreateLetter(count),
		"Plan":      string(limits.Plan),
	})
}

// HandleLetterNew renders the create form.
func HandleLetterNew(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login")
	}

	limits := currentLimits(userCtx.UserID)
	count, _ := repository.GetGlobalRepositories().CoverLetter.CountByUserID(userCtx.UserID)
	if !limits.CanCreateLetter(count) {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("Your plan allows up to %d cover letters. Upgrade to create more.", limits.MaxLetters),
		}
		return flash.WithError(c, fm).Redirect("/user/letters")
	}

	return renderPage(c, "user/letter_new", " | New Cover Letter", fiber.Map{
		"Templates": templateOptions(models.TemplateKindCoverLetter, "classic", limits),
	})
}

// HandleLetterCreate creates a cover letter and opens the editor.
func HandleLetterCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login")
	}

	repos := repository.GetGlobalRepositories()
	limits := currentLimits(userCtx.UserID)

	count, err := repos.CoverLetter.CountByUserID(userCtx.UserID)
	if err != nil {
		fiberlog.Errorf("[Letter] Failed to count letters for user %d: %v", userCtx.UserID, err)
		fm := fiber.Map{"type": "error", "message": "Something went wrong. Please try again."}
		return flash.WithError(c, fm).Redirect("/user/letters")
	}
	if !limits.CanCreateLetter(count) {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("Your plan allows up to %d cover letters. Upgrade to create more.", limits.MaxLetters),
		}
		return flash.WithError(c, fm).Redirect("/user/letters")
	}

	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		fm := fiber.Map{"type": "error", "message": "Please give your cover letter a title."}
		return flash.WithError(c, fm).Redirect("/user/letters/new")
	}

	templateKey := c.FormValue("template_key", "classic")
	if msg := validateTemplateChoice(models.TemplateKindCoverLetter, templateKey, limits); msg != "" {
		fm := fiber.Map{"type": "error", "message": msg}
		return flash.WithError(c, fm).Redirect("/user/letters/new")
	}

	content := preview.NormalizeCoverLetter(models.CoverLetterContent{
		Contact:  models.ContactInfo{FullName: strings.TrimSpace(c.FormValue("full_name", userCtx.Username))},
		Company:  strings.TrimSpace(c.FormValue("company")),
		JobTitle: strings.TrimSpace(c.FormValue("job_title")),
	})

	letter := &models.CoverLetter{
		UserID:      userCtx.UserID,
		Title:       title,
		TemplateKey: templateKey,
		Content:     content,
	}
	if err := repos.CoverLetter.Create(letter); err != nil {
		fiberlog.Errorf("[Letter] Failed to create letter for user %d: %v", userCtx.UserID, err)
		fm := fiber.Map{"type": "error", "message": "Your cover letter could not be created."}
		return flash.WithError(c, fm).Redirect("/user/letters")
	}

	fm := fiber.Map{"type": "success", "message": "Cover letter created."}
	return flash.WithSuccess(c, fm).Redirect(fmt.Sprintf("/user/letters/%s", letter.UUID))
}

// HandleLetterEditor renders the cover letter editor page.
func HandleLetterEditor(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login")
	}

	letter, err := findOwnedLetter(c.Params("uuid"), userCtx.UserID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Cover letter not found."}
		return flash.WithError(c, fm).Redirect("/user/letters")
	}

	doc, err := letterDocumentView(letter)
	if err != nil {
		fiberlog.Errorf("[Letter] Failed to render %s: %v", letter.UUID, err)
		fm := fiber.Map{"type": "error", "message": "The preview could not be rendered."}
		return flash.WithError(c, fm).Redirect("/user/letters")
	}

	limits := currentLimits(userCtx.UserID)

	contentJSON, err := json.Marshal(letter.Content)
	if err != nil {
		fiberlog.Errorf("[Letter] Failed to encode content for %s: %v", letter.UUID, err)
		contentJSON = []byte("{}")
	}

	return renderPage(c, "user/letter_editor", " | "+letter.Title, fiber.Map{
		"Document":    doc,
		"Letter":      letter,
		"ContentJSON": string(contentJSON),
		"Templates":   templateOptions(models.TemplateKindCoverLetter, letter.TemplateKey, limits),
	})
}

// letterDocumentView renders a cover letter through the template registry.
func letterDocumentView(letter *models.CoverLetter) (*viewmodel.Document, error) {
	normalized := preview.NormalizeCoverLetter(letter.Content)
	body, err := preview.GetRegistry().RenderDocument(models.TemplateKindCoverLetter, letter.TemplateKey, fiber.Map{
		"Content": normalized,
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
	if letter.IsPublic {
		shareURL = fmt.Sprintf("%s/l/%s", domain, letter.ShareLink)
	}

	return &viewmodel.Document{
		Kind:          models.TemplateKindCoverLetter,
		UUID:          letter.UUID,
		Title:         letter.Title,
		OwnerName:     letter.Content.Contact.FullName,
		TemplateKey:   letter.TemplateKey,
		ShareURL:      shareURL,
		IsPublic:      letter.IsPublic,
		Body:          template.HTML(body),
		Zoom:          layout.Zoom,
		DeviceClass:   string(layout.DeviceClass),
		PageWidthPx:   int(layout.PageWidthPx),
		PageHeightPx:  int(layout.PageHeightPx),
		Pages:         layout.Pages,
		ViewCount:     letter.ViewCount,
		DownloadCount: letter.DownloadCount,
		CreatedAt:     letter.CreatedAt.Format("02.01.2006"),
		UpdatedAt:     letter.UpdatedAt.Format("02.01.2006 15:04"),
	}, nil
}

// HandleLetterUpdate saves the editor form.
func HandleLetterUpdate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login")
	}

	letter, err := findOwnedLetter(c.Params("uuid"), userCtx.UserID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Cover letter not found."}
		return flash.WithError(c, fm).Redirect("/user/letters")
	}
	editorPath := fmt.Sprintf("/user/letters/%s", letter.UUID)

	if title := strings.TrimSpace(c.FormValue("title")); title != "" {
		letter.Title = title
	}

	limits := currentLimits(userCtx.UserID)
	if templateKey := c.FormValue("template_key"); templateKey != "" && templateKey != letter.TemplateKey {
		if msg := validateTemplateChoice(models.TemplateKindCoverLetter, templateKey, limits); msg != "" {
			fm := fiber.Map{"type": "error", "message": msg}
			return flash.WithError(c, fm).Redirect(editorPath)
		}
		letter.TemplateKey = templateKey
	}

	if raw := c.FormValue("content"); raw != "" {
		var content models.CoverLetterContent
		if err := json.Unmarshal([]byte(raw), &content); err != nil {
			fiberlog.Errorf("[Letter] Invalid content payload for %s: %v", letter.UUID, err)
			fm := fiber.Map{"type": "error", "message": "The editor sent invalid content. Nothing was saved."}
			return flash.WithError(c, fm).Redirect(editorPath)
		}
		letter.Content = preview.NormalizeCoverLetter(content)
	}

	if err := repository.GetGlobalRepositories().CoverLetter.Update(letter); err != nil {
		fiberlog.Errorf("[Letter] Failed to save %s: %v", letter.UUID, err)
		fm := fiber.Map{"type": "error", "message": "Your changes could not be saved."}
		return flash.WithError(c, fm).Redirect(editorPath)
	}

	fm := fiber.Map{"type": "success", "message": "Cover letter saved."}
	return flash.WithSuccess(c, fm).Redirect(editorPath)
}

// HandleLetterDelete removes a cover letter.
func HandleLetterDelete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login")
	}

	letter, err := findOwnedLetter(c.Params("uuid"), userCtx.UserID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Cover letter not found."}
		return flash.WithError(c, fm).Redirect("/user/letters")
	}

	if err := repository.GetGlobalRepositories().CoverLetter.Delete(letter.ID); err != nil {
		fiberlog.Errorf("[Letter] Failed to delete %s: %v", letter.UUID, err)
		fm := fiber.Map{"type": "error", "message": "Your cover letter could not be deleted."}
		return flash.WithError(c, fm).Redirect("/user/letters")
	}

	fm := fiber.Map{"type": "success", "message": "Cover letter deleted."}
	return flash.WithSuccess(c, fm).Redirect("/user/letters")
}

// HandleLetterShareToggle flips the public flag on a cover letter.
func HandleLetterShareToggle(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login")
	}

	letter, err := findOwnedLetter(c.Params("uuid"), userCtx.UserID)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Cover letter not found."}
		return flash.WithError(c, fm).Redirect("/user/letters")
	}
	editorPath := fmt.Sprintf("/user/letters/%s", letter.UUID)

	letter.IsPublic = !letter.IsPublic
	if err := repository.GetGlobalRepositories().CoverLetter.Update(letter); err != nil {
		fiberlog.Errorf("[Letter] Failed to toggle sharing on %s: %v", letter.UUID, err)
		fm := fiber.Map{"type": "error", "message": "Sharing could not be changed."}
		return flash.WithError(c, fm).Redirect(editorPath)
	}

	if letter.IsPublic {
		shareURL := fmt.Sprintf("%s/l/%s", env.GetEnv("PUBLIC_DOMAIN", ""), letter.ShareLink)
		fm := fiber.Map{"type": "success", "message": fmt.Sprintf("Your cover letter is now public: %s", shareURL)}
		return flash.WithSuccess(c, fm).Redirect(editorPath)
	}

	fm := fiber.Map{"type": "success", "message": "Your cover letter is now private."}
	return flash.WithSuccess(c, fm).Redirect(editorPath)
}

// HandleLetterPreview re-renders the document body for unsaved editor
// content. Nothing is persisted.
func HandleLetterPreview(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	letter, err := findOwnedLetter(c.Params("uuid"), userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "letter_not_found"})
	}

	var req struct {
		TemplateKey string                    `json:"template_key"`
		Content     models.CoverLetterContent `json:"content"`
		Viewport    preview.LayoutRequest     `json:"viewport"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request"})
	}

	templateKey := req.TemplateKey
	if templateKey == "" {
		templateKey = letter.TemplateKey
	}
	limits := currentLimits(userCtx.UserID)
	if msg := validateTemplateChoice(models.TemplateKindCoverLetter, templateKey, limits); msg != "" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "template_not_allowed", "message": msg})
	}

	normalized := preview.NormalizeCoverLetter(req.Content)
	body, err := preview.GetRegistry().RenderDocument(models.TemplateKindCoverLetter, templateKey, fiber.Map{
		"Content": normalized,
	})
	if err != nil {
		fiberlog.Errorf("[Letter] Preview render failed for %s: %v", letter.UUID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "render_failed"})
	}

	layout := preview.ComputeLayout(req.Viewport)

	return c.JSON(fiber.Map{
		"html":   body,
		"layout": layout,
	})
}

// HandleLetterPublic serves the public share page under /l/:sharelink.
func HandleLetterPublic(c *fiber.Ctx) error {
	sharelink := c.Params("sharelink")
	if sharelink == "" {
		return c.Redirect("/")
	}

	db := database.GetDB()
	letter, err := models.FindCoverLetterByShareLink(db, sharelink)
	if err != nil {
		fiberlog.Infof("[Letter] Share link not found: %s", sharelink)
		return c.Redirect("/")
	}

	userCtx := usercontext.GetUserContext(c)
	if !letter.IsPublic {
		if userCtx.IsLoggedIn && userCtx.UserID == letter.UserID {
			return c.Redirect(fmt.Sprintf("/user/letters/%s", letter.UUID))
		}
		return c.SendStatus(fiber.StatusNotFound)
	}

	if !userCtx.IsLoggedIn || userCtx.UserID != letter.UserID {
		if err := counter.AddLetterView(letter.ID); err != nil {
			fiberlog.Errorf("[Letter] Failed to count view for %s: %v", letter.UUID, err)
		}
	}

	doc, err := letterDocumentView(letter)
	if err != nil {
		fiberlog.Errorf("[Letter] Failed to render shared %s: %v", letter.UUID, err)
		return c.SendStatus(fiber.StatusNotFound)
	}

	ownerLimits := currentLimits(letter.UserID)

	og := &viewmodel.OpenGraph{
		Title:       letter.Title,
		Description: fmt.Sprintf("Cover letter by %s", letter.Content.Contact.FullName),
		URL:         fmt.Sprintf("%s%s/%s", env.GetEnv("PUBLIC_DOMAIN", ""), constants.LetterShareRoute, letter.ShareLink),
		SiteName:    "ResumeDesk",
	}

	return renderPageOG(c, "public/letter", " | "+letter.Title, og, fiber.Map{
		"Document":      doc,
		"ShowWatermark": !ownerLimits.WatermarkFree,
		"DownloadURL":   fmt.Sprintf("%s/%s/download", constants.LetterShareRoute, letter.ShareLink),
	})
}

// HandleLetterDownload serves the print view of a shared cover letter.
func HandleLetterDownload(c *fiber.Ctx) error {
	sharelink := c.Params("sharelink")
	if sharelink == "" {
		return c.Redirect("/")
	}

	db := database.GetDB()
	letter, err := models.FindCoverLetterByShareLink(db, sharelink)
	if err != nil {
		return c.Redirect("/")
	}

	userCtx := usercontext.GetUserContext(c)
	isOwner := userCtx.IsLoggedIn && userCtx.UserID == letter.UserID
	if !letter.IsPublic && !isOwner {
		return c.SendStatus(fiber.StatusNotFound)
	}

	if !isOwner {
		if err := counter.AddLetterDownload(letter.ID); err != nil {
			fiberlog.Errorf("[Letter] Failed to count download for %s: %v", letter.UUID, err)
		}
	}

	doc, err := letterDocumentView(letter)
	if err != nil {
		fiberlog.Errorf("[Letter] Failed to render print view for %s: %v", letter.UUID, err)
		return c.SendStatus(fiber.StatusNotFound)
	}

	ownerLimits := currentLimits(letter.UserID)

	return c.Render("public/document_print", fiber.Map{
		"Document":      doc,
		"ShowWatermark": !ownerLimits.WatermarkFree,
	}, "layouts/print")
}
