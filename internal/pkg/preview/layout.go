package preview

// LayoutRequest is what the editor posts after a debounced resize or content
// change: the viewport and the block extents it measured on the rendered
// document (already converted to logical millimeters).
type LayoutRequest struct {
	ViewportWidth  float64 `json:"viewport_width"`
	ViewportHeight float64 `json:"viewport_height"`
	TotalHeightMM  float64 `json:"total_height_mm"`
	Blocks         []Block `json:"blocks"`
}

// Layout is the computed reply the editor applies verbatim.
type Layout struct {
	Zoom         float64       `json:"zoom"`
	DeviceClass  DeviceClass   `json:"device_class"`
	PageWidthPx  float64       `json:"page_width_px"`
	PageHeightPx float64       `json:"page_height_px"`
	Pages        int           `json:"pages"`
	Breaks       []BreakMarker `json:"breaks"`
}

// ComputeLayout runs the full preview pass: adaptive zoom for the viewport
// plus page-break estimation over the measured blocks.
func ComputeLayout(req LayoutRequest) Layout {
	return Layout{
		Zoom:         FitZoom(req.ViewportWidth, req.ViewportHeight),
		DeviceClass:  DeviceClassFor(req.ViewportWidth),
		PageWidthPx:  MMToPx(PageWidthMM),
		PageHeightPx: MMToPx(PageHeightMM),
		Pages:        PageCount(req.TotalHeightMM),
		Breaks:       EstimatePageBreaks(req.Blocks),
	}
}
