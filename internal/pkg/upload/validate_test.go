package upload_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resumedesk/ResumeDesk/internal/pkg/upload"
)

// Magic bytes for the sniffer. http.DetectContentType only needs the
// beginning of the file.
var (
	jpegHead = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}
	pngHead  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	gifHead  = []byte("GIF89a")
	htmlHead = []byte("<!DOCTYPE html><html>")
	svgHead  = []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg">`)
)

func TestValidatePhotoBySniff(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		head     []byte
		wantErr  bool
	}{
		{"jpeg upload", "me.jpg", jpegHead, false},
		{"jpeg with jpeg extension", "me.jpeg", jpegHead, false},
		{"png upload", "avatar.png", pngHead, false},
		{"gif upload", "avatar.gif", gifHead, false},
		{"uppercase extension", "ME.JPG", jpegHead, false},
		{"disallowed extension", "resume.pdf", jpegHead, true},
		{"svg blocked by extension", "image.svg", svgHead, true},
		{"html masquerading as jpg", "evil.jpg", htmlHead, true},
		{"xml masquerading as png", "evil.png", svgHead, true},
		{"no extension", "photo", jpegHead, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := upload.ValidatePhotoBySniff(tt.filename, tt.head)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePhotoBySniff_OctetStreamFallsBackToExtension(t *testing.T) {
	// Unrecognizable head bytes sniff as application/octet-stream; the
	// extension whitelist still applies.
	head := []byte{0x00, 0x01, 0x02, 0x03}

	mime, err := upload.ValidatePhotoBySniff("photo.bmp", head)
	assert.NoError(t, err)
	assert.Equal(t, "application/octet-stream", mime)
}
