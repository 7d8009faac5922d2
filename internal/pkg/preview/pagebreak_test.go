package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimatePageBreaks_StraddlingBlockGetsMarkerAtTopEdge(t *testing.T) {
	blocks := []Block{
		{Label: "summary", TopMM: 20, HeightMM: 40, Unsplittable: false},
		{Label: "experience-acme", TopMM: 280, HeightMM: 40, Unsplittable: true},
	}

	markers := EstimatePageBreaks(blocks)

	require.Len(t, markers, 1)
	assert.Equal(t, "experience-acme", markers[0].Label)
	assert.Equal(t, 280.0, markers[0].AtMM)
	assert.Equal(t, 1, markers[0].Page)
}

func TestEstimatePageBreaks_SplittableBlocksNeverBreak(t *testing.T) {
	blocks := []Block{
		{Label: "long-section", TopMM: 280, HeightMM: 100, Unsplittable: false},
	}
	assert.Empty(t, EstimatePageBreaks(blocks))
}

func TestEstimatePageBreaks_ExactFitIsNotAStraddle(t *testing.T) {
	// Bottom edge lands exactly on the boundary at 297mm.
	blocks := []Block{
		{Label: "edu", TopMM: 250, HeightMM: 47, Unsplittable: true},
	}
	assert.Empty(t, EstimatePageBreaks(blocks))
}

func TestEstimatePageBreaks_MinimumSeparationSuppressesClutter(t *testing.T) {
	blocks := []Block{
		{Label: "first", TopMM: 270, HeightMM: 40, Unsplittable: true},
		{Label: "second", TopMM: 290, HeightMM: 20, Unsplittable: true},
	}

	markers := EstimatePageBreaks(blocks)

	require.Len(t, markers, 1)
	assert.Equal(t, "first", markers[0].Label)
}

func TestEstimatePageBreaks_SecondPageBoundary(t *testing.T) {
	blocks := []Block{
		{Label: "page1-straddle", TopMM: 280, HeightMM: 30, Unsplittable: true},
		{Label: "page2-straddle", TopMM: 580, HeightMM: 30, Unsplittable: true},
	}

	markers := EstimatePageBreaks(blocks)

	require.Len(t, markers, 2)
	assert.Equal(t, 1, markers[0].Page)
	assert.Equal(t, 2, markers[1].Page)
}

func TestEstimatePageBreaks_InputOrderDoesNotMatter(t *testing.T) {
	shuffled := []Block{
		{Label: "later", TopMM: 580, HeightMM: 30, Unsplittable: true},
		{Label: "earlier", TopMM: 280, HeightMM: 30, Unsplittable: true},
	}

	markers := EstimatePageBreaks(shuffled)

	require.Len(t, markers, 2)
	assert.Equal(t, "earlier", markers[0].Label)
	assert.Equal(t, "later", markers[1].Label)
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		height float64
		want   int
	}{
		{0, 1},
		{-5, 1},
		{100, 1},
		{297, 1},
		{297.1, 2},
		{600, 3},
	}
	for _, tt := range tests {
		if got := PageCount(tt.height); got != tt.want {
			t.Errorf("PageCount(%v) = %d, want %d", tt.height, got, tt.want)
		}
	}
}

func TestComputeLayout(t *testing.T) {
	layout := ComputeLayout(LayoutRequest{
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		TotalHeightMM:  500,
		Blocks: []Block{
			{Label: "exp", TopMM: 280, HeightMM: 40, Unsplittable: true},
		},
	})

	assert.Equal(t, DeviceDesktop, layout.DeviceClass)
	assert.InDelta(t, 0.80, layout.Zoom, 1e-9)
	assert.Equal(t, 2, layout.Pages)
	require.Len(t, layout.Breaks, 1)
	assert.InDelta(t, MMToPx(PageWidthMM), layout.PageWidthPx, 1e-9)
}
