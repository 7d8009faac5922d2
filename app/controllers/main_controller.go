package controllers

import (
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/app/repository"
	"github.com/resumedesk/ResumeDesk/internal/pkg/env"
	"github.com/resumedesk/ResumeDesk/internal/pkg/statistics"
	"github.com/resumedesk/ResumeDesk/internal/pkg/usercontext"
)

func RenderHello(c *fiber.Ctx) error {
	appENV := env.GetEnv("APP_ENV", "prod")
	isDEV := appENV == "dev"

	// Logged in users land on their documents instead of the marketing page.
	if usercontext.IsLoggedIn(c) {
		return c.Redirect("/user/resumes")
	}

	stats := statistics.GetStatisticsData()

	return renderPage(c, "index", "", fiber.Map{
		"IsDev":       isDEV,
		"UserCount":   stats.TotalUsers,
		"ResumeCount": stats.TotalResumes,
	})
}

func HandleAbout(c *fiber.Ctx) error {
	return renderPage(c, "about", " | About", nil)
}

func HandleContact(c *fiber.Ctx) error {
	return renderPage(c, "contact", " | Contact", nil)
}

// HandleTemplatesGallery shows the public catalog of document designs.
func HandleTemplatesGallery(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	resumeTemplates, err := repos.Template.GetActive(models.TemplateKindResume)
	if err != nil {
		fiberlog.Errorf("[Main] Failed to load resume templates: %v", err)
	}
	letterTemplates, err := repos.Template.GetActive(models.TemplateKindCoverLetter)
	if err != nil {
		fiberlog.Errorf("[Main] Failed to load letter templates: %v", err)
	}

	return renderPage(c, "templates", " | Templates", fiber.Map{
		"ResumeTemplates": resumeTemplates,
		"LetterTemplates": letterTemplates,
	})
}

// HandleDocsAPI renders the REST API documentation page.
func HandleDocsAPI(c *fiber.Ctx) error {
	return renderPage(c, "docs_api", " | API", fiber.Map{
		"Domain": env.GetEnv("PUBLIC_DOMAIN", ""),
	})
}
