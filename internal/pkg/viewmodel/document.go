package viewmodel

import "html/template"

// Document carries everything the preview pages need to display a resume or
// cover letter: the rendered template body plus the layout numbers the
// viewer JS uses for zoom and page breaks.
type Document struct {
	Kind        string
	UUID        string
	Title       string
	OwnerName   string
	TemplateKey string
	ShareURL    string
	IsPublic    bool

	// Rendered document body, produced by the template registry.
	Body template.HTML

	// Initial layout as computed for the requesting viewport.
	Zoom         float64
	DeviceClass  string
	PageWidthPx  int
	PageHeightPx int
	Pages        int

	ViewCount     int
	DownloadCount int
	CreatedAt     string
	UpdatedAt     string
}
