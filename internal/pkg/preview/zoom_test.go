package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMMToPx(t *testing.T) {
	// 210mm at 96 DPI.
	assert.InDelta(t, 793.7007874, MMToPx(PageWidthMM), 1e-6)
	assert.InDelta(t, 1122.5196850, MMToPx(PageHeightMM), 1e-6)
}

func TestPxToMM_UndoesScale(t *testing.T) {
	px := MMToPx(100) * 0.8
	assert.InDelta(t, 100, PxToMM(px, 0.8), 1e-9)
	assert.InDelta(t, 100, PxToMM(MMToPx(100), 0), 1e-9, "zero scale falls back to 1")
}

func TestDeviceClassFor(t *testing.T) {
	tests := []struct {
		width float64
		want  DeviceClass
	}{
		{320, DeviceMobile},
		{767, DeviceMobile},
		{768, DeviceTablet},
		{1199, DeviceTablet},
		{1200, DeviceDesktop},
		{2560, DeviceDesktop},
	}
	for _, tt := range tests {
		if got := DeviceClassFor(tt.width); got != tt.want {
			t.Errorf("DeviceClassFor(%v) = %s, want %s", tt.width, got, tt.want)
		}
	}
}

func TestFitZoom(t *testing.T) {
	tests := []struct {
		name   string
		width  float64
		height float64
		want   float64
	}{
		// Desktop 1920x1080: height is the constraint, 900/1122.5 ~ 0.802,
		// snapped to 0.80.
		{"desktop height bound", 1920, 1080, 0.80},
		// Very tall desktop hits the class ceiling.
		{"desktop clamped to max", 1920, 2400, 1.25},
		// Phone: width is the constraint, 358/793.7 ~ 0.451 -> 0.45.
		{"mobile width bound", 390, 844, 0.45},
		// Viewport smaller than the chrome still yields the class floor.
		{"tiny viewport clamped to min", 200, 300, 0.25},
		// Tablet landscape, height bound: 598/1122.5 ~ 0.533 -> 0.55.
		{"tablet snaps to grid", 1024, 768, 0.55},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, FitZoom(tt.width, tt.height), 1e-9)
		})
	}
}

func TestFitZoom_StableAcrossTinyResize(t *testing.T) {
	// A couple of pixels of resize should not change the snapped result.
	a := FitZoom(1920, 1080)
	b := FitZoom(1922, 1081)
	assert.Equal(t, a, b)
}

func TestZoomButtons(t *testing.T) {
	assert.InDelta(t, 1.1, ZoomIn(1.0), 1e-9)
	assert.InDelta(t, 0.9, ZoomOut(1.0), 1e-9)

	assert.InDelta(t, MaxZoom, ZoomIn(1.45), 1e-9)
	assert.InDelta(t, MaxZoom, ZoomIn(MaxZoom), 1e-9)
	assert.InDelta(t, MinZoom, ZoomOut(0.25), 1e-9)
	assert.InDelta(t, MinZoom, ZoomOut(MinZoom), 1e-9)
}

func TestZoomButtons_NoFloatDrift(t *testing.T) {
	z := 0.3
	for i := 0; i < 3; i++ {
		z = ZoomIn(z)
	}
	assert.Equal(t, 0.6, z)

	for i := 0; i < 50; i++ {
		z = ZoomOut(z)
	}
	assert.Equal(t, MinZoom, z)
}
