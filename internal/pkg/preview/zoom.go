package preview

import "math"

// The preview renders a logical A4 page at a 96-DPI pixel ratio. All layout
// math below runs in those units.
const (
	PageWidthMM  = 210.0
	PageHeightMM = 297.0

	renderDPI = 96.0
	mmPerInch = 25.4

	// Button zoom is a fixed step on top of whatever the adaptive fit
	// chose, with its own hard clamp.
	ZoomStep = 0.1
	MinZoom  = 0.2
	MaxZoom  = 1.5

	// Adaptive results snap to this grid so a one-pixel resize does not
	// make the page wobble.
	fitRounding = 0.05
)

// MMToPx converts logical millimeters to CSS pixels at the render DPI.
func MMToPx(mm float64) float64 {
	return mm * renderDPI / mmPerInch
}

// PxToMM converts measured pixels back to logical millimeters, undoing the
// current zoom scale first.
func PxToMM(px, scale float64) float64 {
	if scale <= 0 {
		scale = 1
	}
	return px / scale * mmPerInch / renderDPI
}

// DeviceClass buckets a viewport into the three layouts the editor ships.
type DeviceClass string

const (
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
	DeviceDesktop DeviceClass = "desktop"
)

// DeviceClassFor picks the layout bucket for a viewport width in pixels.
func DeviceClassFor(viewportWidth float64) DeviceClass {
	switch {
	case viewportWidth < 768:
		return DeviceMobile
	case viewportWidth < 1200:
		return DeviceTablet
	default:
		return DeviceDesktop
	}
}

// chrome is the screen area the editor UI eats before the page gets any:
// sidebar and padding horizontally, toolbar and zoom controls vertically.
// The fit range differs per class; a phone never renders a full-size page.
type chrome struct {
	horizontal float64
	vertical   float64
	minFit     float64
	maxFit     float64
}

var chromeByClass = map[DeviceClass]chrome{
	DeviceMobile:  {horizontal: 32, vertical: 150, minFit: 0.25, maxFit: 0.75},
	DeviceTablet:  {horizontal: 260, vertical: 170, minFit: 0.35, maxFit: 1.0},
	DeviceDesktop: {horizontal: 420, vertical: 180, minFit: 0.5, maxFit: 1.25},
}

// FitZoom computes the adaptive scale for a viewport: the largest factor
// that fits both page dimensions into the viewport minus UI chrome, clamped
// to the device class range and snapped to the 0.05 grid. This is what a
// resize and the "reset to fit" action both call.
func FitZoom(viewportWidth, viewportHeight float64) float64 {
	class := DeviceClassFor(viewportWidth)
	ch := chromeByClass[class]

	availWidth := viewportWidth - ch.horizontal
	availHeight := viewportHeight - ch.vertical

	scale := math.Min(availWidth/MMToPx(PageWidthMM), availHeight/MMToPx(PageHeightMM))
	scale = clampZoom(scale, ch.minFit, ch.maxFit)
	return snapToGrid(scale)
}

// ZoomIn is one button step up. Independent of the adaptive fit range.
func ZoomIn(current float64) float64 {
	return clampZoom(roundCentis(current+ZoomStep), MinZoom, MaxZoom)
}

// ZoomOut is one button step down.
func ZoomOut(current float64) float64 {
	return clampZoom(roundCentis(current-ZoomStep), MinZoom, MaxZoom)
}

func clampZoom(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func snapToGrid(v float64) float64 {
	return roundCentis(math.Round(v/fitRounding) * fitRounding)
}

// roundCentis kills float drift after repeated +-0.1 steps.
func roundCentis(v float64) float64 {
	return math.Round(v*100) / 100
}
