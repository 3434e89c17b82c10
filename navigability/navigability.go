// Package navigability scores horizontal bands of the image beside and in front of the robot.
package navigability

import (
	"github.com/samber/lo"

	"github.com/satinavrobotics/depthnav/obstacle"
	"github.com/satinavrobotics/depthnav/rimage/transform"
)

const (
	// NumRows is how many bands the analysis region is split into.
	NumRows = 12
	// TopPercentage is the fraction of the image height, measured from the bottom, that is analyzed.
	TopPercentage = 0.7
	// DefaultObstaclePercent is the largest obstacle share a navigable band may have.
	DefaultObstaclePercent = 3
)

// Params controls how bands are scored.
type Params struct {
	// ObstaclePercent is the largest obstacle share, in percent, of a navigable band (1-100).
	ObstaclePercent int
	// NumRows defaults to NumRows when zero.
	NumRows int
	// TopPercentage defaults to TopPercentage when zero.
	TopPercentage float64
}

// DefaultParams returns the standard band layout with the default obstacle share.
func DefaultParams() Params {
	return Params{ObstaclePercent: DefaultObstaclePercent, NumRows: NumRows, TopPercentage: TopPercentage}
}

func (p Params) withDefaults() Params {
	if p.NumRows <= 0 {
		p.NumRows = NumRows
	}
	if p.TopPercentage <= 0 || p.TopPercentage > 1 {
		p.TopPercentage = TopPercentage
	}
	p.ObstaclePercent = min(max(p.ObstaclePercent, 0), 100)
	return p
}

// Result holds per-band navigability for each window. Index 0 is the band at the top of the
// analysis region (farthest from the robot); the last index is the band at the bottom row.
type Result struct {
	Left   []bool
	Right  []bool
	Center []bool
}

// NewResult returns a result with every band non-navigable.
func NewResult(numRows int) Result {
	return Result{
		Left:   make([]bool, numRows),
		Right:  make([]bool, numRows),
		Center: make([]bool, numRows),
	}
}

// Clone deep-copies the result.
func (r Result) Clone() Result {
	return Result{
		Left:   append([]bool(nil), r.Left...),
		Right:  append([]bool(nil), r.Right...),
		Center: append([]bool(nil), r.Center...),
	}
}

// NavigableCount returns how many bands of row are navigable.
func NavigableCount(row []bool) int {
	return lo.Count(row, true)
}

// Compute scores the left, right and center windows of masks for the given robot bounds.
func Compute(masks *obstacle.Masks, bounds transform.RobotBounds, params Params) Result {
	params = params.withDefaults()
	layout := NewLayout(masks.Width(), masks.Height(), bounds, params)
	return Result{
		Left:   scoreWindow(masks, layout.Left, layout, params),
		Right:  scoreWindow(masks, layout.Right, layout, params),
		Center: scoreWindow(masks, layout.Center, layout, params),
	}
}

// scoreWindow splits [TopY, BottomY] into bands of RowHeight rows and marks a band navigable when
// its obstacle share is at most ObstaclePercent. Bands with no pixels are not navigable.
func scoreWindow(masks *obstacle.Masks, span Span, layout Layout, params Params) []bool {
	navigable := make([]bool, params.NumRows)
	if span.Degenerate() || layout.TopY >= layout.BottomY {
		return navigable
	}

	for row := range navigable {
		top, bottom := layout.Band(row)
		obstacles, total := 0, 0
		for y := top; y <= bottom; y++ {
			for x := span.StartX; x <= span.EndX; x++ {
				total++
				if masks.IsNavigationObstacle(x, y) {
					obstacles++
				}
			}
		}
		navigable[row] = total > 0 && obstacles*100 <= params.ObstaclePercent*total
	}
	return navigable
}
