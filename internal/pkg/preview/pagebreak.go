package preview

import (
	"math"
	"sort"
)

// MinBreakSeparationMM suppresses break markers that would land closer than
// this to the previous one. Two markers a few lines apart read as noise.
const MinBreakSeparationMM = 50.0

// Block is one measured layout element of the rendered document: a section
// heading, an experience entry, a skill group. Extents are logical
// millimeters from the document top; use PxToMM on browser measurements.
// Unsplittable blocks are the ones whose layout rule forbids breaking them
// across pages.
type Block struct {
	Label        string  `json:"label"`
	TopMM        float64 `json:"top_mm"`
	HeightMM     float64 `json:"height_mm"`
	Unsplittable bool    `json:"unsplittable"`
}

// BreakMarker is an estimated page break: the document should visually break
// at AtMM, pushing the named block onto the next page.
type BreakMarker struct {
	Label string  `json:"label"`
	AtMM  float64 `json:"at_mm"`
	Page  int     `json:"page"`
}

// EstimatePageBreaks walks the measured blocks in document order and records
// a break marker at the top edge of every unsplittable block that would
// straddle a page boundary. Markers closer than MinBreakSeparationMM to the
// previous one are dropped. This is a display heuristic; the PDF pipeline
// does its own pagination.
func EstimatePageBreaks(blocks []Block) []BreakMarker {
	sorted := make([]Block, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TopMM < sorted[j].TopMM
	})

	var markers []BreakMarker
	lastAt := math.Inf(-1)

	for _, b := range sorted {
		if !b.Unsplittable || b.HeightMM <= 0 || b.TopMM < 0 {
			continue
		}

		page := int(math.Floor(b.TopMM / PageHeightMM))
		boundary := float64(page+1) * PageHeightMM
		if b.TopMM+b.HeightMM <= boundary {
			continue
		}
		if b.TopMM-lastAt < MinBreakSeparationMM {
			continue
		}

		markers = append(markers, BreakMarker{
			Label: b.Label,
			AtMM:  b.TopMM,
			Page:  page + 1,
		})
		lastAt = b.TopMM
	}

	return markers
}

// PageCount estimates how many pages the document occupies given its total
// measured height.
func PageCount(totalHeightMM float64) int {
	if totalHeightMM <= 0 {
		return 1
	}
	return int(math.Ceil(totalHeightMM / PageHeightMM))
}
