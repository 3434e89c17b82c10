package obstacle

import (
	"fmt"

	"github.com/satinavrobotics/depthnav/rimage"
)

// VerticalParams tunes the column scan.
type VerticalParams struct {
	// RunThreshold is how many consecutive qualifying rows make an obstacle. Must be at least 1.
	RunThreshold int
	// CloserThresholdMm is the row-to-row decrease in depth that counts as "closer".
	CloserThresholdMm float64
	// FartherThresholdMm is the row-to-row increase in depth that counts as "farther".
	FartherThresholdMm float64
	// MaxSafeDistanceMm is the depth beyond which a pixel is treated as an obstacle boundary.
	MaxSafeDistanceMm float64
}

type run struct {
	count  int
	startY int
}

func (r *run) extend(y int) {
	if r.count == 0 {
		r.startY = y
	}
	r.count++
}

func (r *run) reset() {
	r.count = 0
}

// mark sets every pixel of the run, walking up from its start row.
func (r *run) mark(m *Mask, x int) {
	for i := 0; i < r.count; i++ {
		if y := r.startY - i; y >= 0 {
			m.Set(x, y, true)
		}
	}
}

// VerticalGradients runs ScanVertical into freshly allocated masks.
func VerticalGradients(dm *rimage.DepthMap, params VerticalParams) (*Mask, *Mask) {
	closer := NewMask(dm.Width(), dm.Height())
	farther := NewMask(dm.Width(), dm.Height())
	ScanVertical(dm, params, closer, farther)
	return closer, farther
}

// ScanVertical walks every column from the bottom row upwards looking for the first obstacle
// nearest the robot, writing into closer and farther after clearing them.
//
// For each row y it compares the pixel with the one above it, diff = d(y) - d(y-1). A run of
// RunThreshold consecutive diffs above CloserThresholdMm marks the run in closer; a run of diffs
// below -FartherThresholdMm marks it in farther. A pixel beyond MaxSafeDistanceMm marks both masks.
// Either event ends the column. Invalid pixels, on either side of the comparison, break runs.
//
// The scan stops at row RunThreshold+1, so grids no taller than RunThreshold+1 are left unmarked.
// It panics if RunThreshold < 1 or the masks do not match dm.
func ScanVertical(dm *rimage.DepthMap, params VerticalParams, closer, farther *Mask) {
	if params.RunThreshold < 1 {
		panic(fmt.Errorf("consecutive run threshold must be at least 1, got %d", params.RunThreshold))
	}
	width, height := dm.Width(), dm.Height()
	checkMaskSize(closer, width, height, "closer")
	checkMaskSize(farther, width, height, "farther")
	closer.Clear()
	farther.Clear()

	for x := 0; x < width; x++ {
		var closerRun, fartherRun run

	column:
		for y := height - 1; y > params.RunThreshold; y-- {
			current := dm.GetDepth(x, y)
			if !current.Valid() {
				closerRun.reset()
				fartherRun.reset()
				continue
			}

			if float64(current) > params.MaxSafeDistanceMm {
				closer.Set(x, y, true)
				farther.Set(x, y, true)
				break
			}

			next := dm.GetDepth(x, y-1)
			if !next.Valid() {
				closerRun.reset()
				fartherRun.reset()
				continue
			}

			diff := float64(current) - float64(next)
			switch {
			case diff > params.CloserThresholdMm:
				closerRun.extend(y)
				fartherRun.reset()
				if closerRun.count >= params.RunThreshold {
					closerRun.mark(closer, x)
					break column
				}
			case diff < -params.FartherThresholdMm:
				fartherRun.extend(y)
				closerRun.reset()
				if fartherRun.count >= params.RunThreshold {
					fartherRun.mark(farther, x)
					break column
				}
			default:
				closerRun.reset()
				fartherRun.reset()
			}
		}
	}
}
