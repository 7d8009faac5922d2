package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
)

// HandleFlashPhotoTooLarge sets a flash error and redirects back to the
// editor. The photo uploader sends browsers here when the file exceeds the
// limit before anything is transferred.
func HandleFlashPhotoTooLarge(c *fiber.Ctx) error {
	back := c.Query("back", "/user/resumes")
	fm := fiber.Map{
		"type":    "error",
		"message": "This photo is too large. The limit is 10 MB.",
	}
	flash.WithError(c, fm)
	return c.Redirect(back, fiber.StatusSeeOther)
}

// HandleFlashPhotoUnsupported sets a flash error for rejected file types.
func HandleFlashPhotoUnsupported(c *fiber.Ctx) error {
	back := c.Query("back", "/user/resumes")
	fm := fiber.Map{
		"type":    "error",
		"message": "This file type is not supported. Use JPG, PNG, GIF, WEBP or BMP.",
	}
	flash.WithError(c, fm)
	return c.Redirect(back, fiber.StatusSeeOther)
}

// HandleFlashPhotoError shows a generic upload error from the query string
// Query: ?msg=...
func HandleFlashPhotoError(c *fiber.Ctx) error {
	back := c.Query("back", "/user/resumes")
	msg := c.Query("msg", "The upload failed. Please try again.")
	if len(msg) > 300 {
		msg = msg[:300]
	}
	fm := fiber.Map{
		"type":    "error",
		"message": msg,
	}
	flash.WithError(c, fm)
	return c.Redirect(back, fiber.StatusSeeOther)
}
