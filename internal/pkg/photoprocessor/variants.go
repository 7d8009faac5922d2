package photoprocessor

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/resumedesk/ResumeDesk/app/models"
)

// PhotoURL returns the public URL for a resume photo variant. Size is
// "thumb" or "" for the display size. Resumes without a photo return "".
func PhotoURL(resume *models.Resume, size string) string {
	if resume.PhotoPath == "" {
		return ""
	}
	display, thumb, _ := VariantPaths(resume.UUID)
	if size == "thumb" {
		return "/" + thumb
	}
	return "/" + display
}

// PhotoURLForBrowser returns the best variant URL for the request. Browsers
// that accept WebP get the WebP variant when one was produced for the plan.
func PhotoURLForBrowser(c *fiber.Ctx, resume *models.Resume, size string) string {
	if resume.PhotoPath == "" {
		return ""
	}

	// The WebP variant only exists at display size
	if size != "thumb" && resume.HasPhotoWebp {
		acceptHeader := c.Get("Accept")
		if strings.Contains(acceptHeader, "image/webp") {
			_, _, webpPath := VariantPaths(resume.UUID)
			return "/" + webpPath
		}
	}

	return PhotoURL(resume, size)
}
