package controllers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumedesk/ResumeDesk/app/models"
)

// payloadFor runs resumeResourcePayload inside a request so header-dependent
// fields (WebP negotiation) see a real fiber context.
func payloadFor(t *testing.T, resume *models.Resume, includeContent bool) map[string]any {
	t.Helper()

	app := fiber.New()
	app.Get("/t", func(c *fiber.Ctx) error {
		return c.JSON(resumeResourcePayload(c, resume, includeContent))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/t", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}

func TestResumeResourcePayload(t *testing.T) {
	t.Setenv("PUBLIC_DOMAIN", "")

	created := time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)
	resume := &models.Resume{
		UUID:          "7b5b03f4-97c1-4d0f-8f3a-1f1640d2b1aa",
		Title:         "Backend Engineer",
		TemplateKey:   "classic",
		IsPublic:      true,
		ShareLink:     "a1B2c3",
		ViewCount:     7,
		DownloadCount: 2,
		CreatedAt:     created,
		UpdatedAt:     created,
	}

	payload := payloadFor(t, resume, false)

	assert.Equal(t, "Backend Engineer", payload["title"])
	assert.Equal(t, "classic", payload["template_key"])
	assert.Equal(t, "/r/a1B2c3", payload["share_url"])
	assert.Equal(t, "2025-02-10T09:00:00Z", payload["created_at"])
	assert.NotContains(t, payload, "photo_url")
	assert.NotContains(t, payload, "content")
}

func TestResumeResourcePayloadPrivate(t *testing.T) {
	resume := &models.Resume{
		UUID:        "a2c45c1e-63be-4fd7-bbd0-5a3edc8997f2",
		Title:       "Draft",
		TemplateKey: "modern",
		ShareLink:   "zzz999",
	}

	payload := payloadFor(t, resume, true)

	// Private resumes never leak their share link
	assert.Equal(t, "", payload["share_url"])
	assert.Contains(t, payload, "content")
}
