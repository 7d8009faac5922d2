package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/resumedesk/ResumeDesk/internal/pkg/preview"
	"github.com/resumedesk/ResumeDesk/internal/pkg/usercontext"
)

// HandlePreviewLayout recomputes the preview layout for a measured viewport.
// Both editors post here after every debounced resize or content change.
func HandlePreviewLayout(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req preview.LayoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request"})
	}
	if req.ViewportWidth <= 0 || req.ViewportHeight <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_viewport"})
	}

	return c.JSON(preview.ComputeLayout(req))
}

// HandlePreviewZoom steps the zoom one notch along the preset scale.
func HandlePreviewZoom(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req struct {
		Current   float64 `json:"current"`
		Direction string  `json:"direction"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request"})
	}

	var zoom float64
	switch req.Direction {
	case "in":
		zoom = preview.ZoomIn(req.Current)
	case "out":
		zoom = preview.ZoomOut(req.Current)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_direction"})
	}

	return c.JSON(fiber.Map{"zoom": zoom})
}
