package photoprocessor_test

import (
	"image"
	"image/color"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumedesk/ResumeDesk/app/models"
	"github.com/resumedesk/ResumeDesk/internal/pkg/photoprocessor"
)

func writeTestJPEG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	require.NoError(t, imaging.Save(img, path))
}

func TestVariantPaths(t *testing.T) {
	display, thumb, webpPath := photoprocessor.VariantPaths("abc-123")

	assert.Equal(t, filepath.Join("uploads", "photos", "display", "abc-123.jpg"), display)
	assert.Equal(t, filepath.Join("uploads", "photos", "thumb", "abc-123.jpg"), thumb)
	assert.Equal(t, filepath.Join("uploads", "photos", "webp", "abc-123.webp"), webpPath)
}

func TestApplyOrientation_Dimensions(t *testing.T) {
	src := imaging.New(100, 50, color.NRGBA{A: 255})

	tests := []struct {
		orientation int
		wantW       int
		wantH       int
	}{
		{1, 100, 50},
		{2, 100, 50},
		{3, 100, 50},
		{4, 100, 50},
		{5, 50, 100},
		{6, 50, 100},
		{7, 50, 100},
		{8, 50, 100},
		{0, 100, 50},
		{9, 100, 50},
	}

	for _, tt := range tests {
		out := photoprocessor.ApplyOrientation(src, tt.orientation)
		if got := out.Bounds().Dx(); got != tt.wantW {
			t.Errorf("orientation %d: width = %d, want %d", tt.orientation, got, tt.wantW)
		}
		if got := out.Bounds().Dy(); got != tt.wantH {
			t.Errorf("orientation %d: height = %d, want %d", tt.orientation, got, tt.wantH)
		}
	}
}

func TestApplyOrientation_FlipH(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	src.SetNRGBA(0, 0, red)
	src.SetNRGBA(1, 0, blue)

	out := photoprocessor.ApplyOrientation(src, 2)

	gotLeft := color.NRGBAModel.Convert(out.At(0, 0)).(color.NRGBA)
	assert.Equal(t, blue, gotLeft, "horizontal flip should move the blue pixel to the left")
}

func TestReadOrientation_NoExif(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.jpg")
	writeTestJPEG(t, path, 10, 10)

	assert.Equal(t, 1, photoprocessor.ReadOrientation(path))
}

func TestReadOrientation_MissingFile(t *testing.T) {
	assert.Equal(t, 1, photoprocessor.ReadOrientation("does-not-exist.jpg"))
}

func TestProcessFile(t *testing.T) {
	defer os.RemoveAll("uploads")

	dir := t.TempDir()
	src := filepath.Join(dir, "upload.jpg")
	writeTestJPEG(t, src, 800, 600)

	variants, err := photoprocessor.ProcessFile(src, "test-uuid-1", false)
	require.NoError(t, err)

	assert.Equal(t, 800, variants.Width)
	assert.Equal(t, 600, variants.Height)
	assert.Empty(t, variants.WebpPath)

	display, err := imaging.Open(variants.DisplayPath)
	require.NoError(t, err)
	assert.Equal(t, photoprocessor.DisplaySize, display.Bounds().Dx())
	assert.Equal(t, photoprocessor.DisplaySize, display.Bounds().Dy())

	thumb, err := imaging.Open(variants.ThumbPath)
	require.NoError(t, err)
	assert.Equal(t, photoprocessor.ThumbSize, thumb.Bounds().Dx())
	assert.Equal(t, photoprocessor.ThumbSize, thumb.Bounds().Dy())
}

func TestProcessFile_WithWebp(t *testing.T) {
	defer os.RemoveAll("uploads")

	dir := t.TempDir()
	src := filepath.Join(dir, "upload.jpg")
	writeTestJPEG(t, src, 500, 500)

	variants, err := photoprocessor.ProcessFile(src, "test-uuid-2", true)
	require.NoError(t, err)
	require.NotEmpty(t, variants.WebpPath)

	_, err = os.Stat(variants.WebpPath)
	assert.NoError(t, err, "WebP variant file should exist")
}

func TestProcessFile_MissingSource(t *testing.T) {
	_, err := photoprocessor.ProcessFile("does-not-exist.jpg", "test-uuid-3", false)
	assert.Error(t, err)
}

func TestPhotoURL(t *testing.T) {
	resume := &models.Resume{UUID: "abc-123"}
	assert.Empty(t, photoprocessor.PhotoURL(resume, ""))

	resume.PhotoPath = "uploads/photos/display/abc-123.jpg"
	assert.Equal(t, "/uploads/photos/display/abc-123.jpg", photoprocessor.PhotoURL(resume, ""))
	assert.Equal(t, "/uploads/photos/thumb/abc-123.jpg", photoprocessor.PhotoURL(resume, "thumb"))
}

func TestPhotoURLForBrowser(t *testing.T) {
	resume := &models.Resume{
		UUID:         "abc-123",
		PhotoPath:    "uploads/photos/display/abc-123.jpg",
		HasPhotoWebp: true,
	}

	app := fiber.New()
	app.Get("/url", func(c *fiber.Ctx) error {
		return c.SendString(photoprocessor.PhotoURLForBrowser(c, resume, c.Query("size")))
	})

	tests := []struct {
		name   string
		accept string
		size   string
		want   string
	}{
		{"webp capable browser", "text/html,image/webp,*/*", "", "/uploads/photos/webp/abc-123.webp"},
		{"no webp support", "text/html,*/*", "", "/uploads/photos/display/abc-123.jpg"},
		{"thumb always jpeg", "text/html,image/webp,*/*", "thumb", "/uploads/photos/thumb/abc-123.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/url?size="+tt.size, nil)
			req.Header.Set("Accept", tt.accept)

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(body))
		})
	}
}
