package obstacle

import (
	"math"

	"github.com/satinavrobotics/depthnav/rimage"
)

// PlanarParams tunes the row-major scan.
type PlanarParams struct {
	TooCloseThresholdMm float64
	GradientThresholdMm float64
	HorizontalEnabled   bool
}

// PlanarObstacles runs ScanPlanar into freshly allocated masks.
func PlanarObstacles(dm *rimage.DepthMap, params PlanarParams) (*Mask, *Mask) {
	tooClose := NewMask(dm.Width(), dm.Height())
	horizontal := NewMask(dm.Width(), dm.Height())
	ScanPlanar(dm, params, tooClose, horizontal)
	return tooClose, horizontal
}

// ScanPlanar marks valid pixels nearer than TooCloseThresholdMm in tooClose and, when enabled,
// large jumps between horizontal neighbors in horizontal. A jump between x and x+1 marks the block
// of rows y-1..y+1 and columns x-1..x+2, clipped to the grid. Both masks are cleared first.
func ScanPlanar(dm *rimage.DepthMap, params PlanarParams, tooClose, horizontal *Mask) {
	width, height := dm.Width(), dm.Height()
	checkMaskSize(tooClose, width, height, "too close")
	checkMaskSize(horizontal, width, height, "horizontal gradient")
	tooClose.Clear()
	horizontal.Clear()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			current := dm.GetDepth(x, y)
			if !current.Valid() {
				continue
			}
			if float64(current) < params.TooCloseThresholdMm {
				tooClose.Set(x, y, true)
			}

			if !params.HorizontalEnabled || x == width-1 {
				continue
			}
			next := dm.GetDepth(x+1, y)
			if !next.Valid() {
				continue
			}
			if math.Abs(float64(current)-float64(next)) > params.GradientThresholdMm {
				markBlock(horizontal, x-1, y-1, x+2, y+1)
			}
		}
	}
}

// markBlock sets the inclusive rectangle [x0, x1] × [y0, y1] clipped to the mask.
func markBlock(m *Mask, x0, y0, x1, y1 int) {
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, m.width-1), min(y1, m.height-1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			m.Set(x, y, true)
		}
	}
}
