package navigability

import (
	"github.com/satinavrobotics/depthnav/rimage/transform"
)

// Span is an inclusive range of pixel columns.
type Span struct {
	StartX int
	EndX   int
}

// Width returns the number of columns covered, or 0 for a degenerate span.
func (s Span) Width() int {
	if s.Degenerate() {
		return 0
	}
	return s.EndX - s.StartX + 1
}

// Degenerate reports whether the span cannot be scored.
func (s Span) Degenerate() bool {
	return s.StartX >= s.EndX
}

// Layout is the pixel geometry of one scoring pass.
type Layout struct {
	Width  int
	Height int

	Left   Span
	Right  Span
	Center Span

	// TopY and BottomY bound the analysis region, inclusive.
	TopY      int
	BottomY   int
	RowHeight int
	NumRows   int
}

// NewLayout places the windows for a width×height frame.
//
// The left window runs from column 0 to the robot's left edge and the right window from the robot's
// right edge to the last column. A side window narrower than a tenth of the frame is widened
// inwards, overlapping the robot. The center window is the robot's own columns.
func NewLayout(width, height int, bounds transform.RobotBounds, params Params) Layout {
	params = params.withDefaults()
	l := Layout{
		Width:   width,
		Height:  height,
		TopY:    max(int(float64(height)*(1-params.TopPercentage)), 0),
		BottomY: height - 1,
		NumRows: params.NumRows,
	}
	l.RowHeight = max((l.BottomY-l.TopY)/params.NumRows, 1)
	if width <= 0 || height <= 0 {
		return l
	}

	robotLeft, robotRight := bounds.PixelRange(width)
	minWidth := max(1, width/10)

	l.Left = Span{StartX: 0, EndX: robotLeft}
	if l.Left.EndX-l.Left.StartX < minWidth {
		l.Left.EndX = min(width-1, l.Left.StartX+minWidth)
	}
	l.Right = Span{StartX: robotRight, EndX: width - 1}
	if l.Right.EndX-l.Right.StartX < minWidth {
		l.Right.StartX = max(0, l.Right.EndX-minWidth)
	}
	l.Center = Span{StartX: robotLeft, EndX: robotRight}
	return l
}

// Band returns the inclusive rows of band row. Consecutive bands share their boundary row and
// the last band is clipped to BottomY. Rows below TopY+NumRows*RowHeight fall in no band.
func (l Layout) Band(row int) (int, int) {
	top := l.TopY + row*l.RowHeight
	return top, min(top+l.RowHeight, l.BottomY)
}
