// Package obstacle finds obstacle pixels in depth maps.
//
// Coordinates follow rimage.DepthMap: row 0 is the top of the image and the bottom row is
// nearest the robot. "Scanning outward" walks a column from the bottom row towards row 0.
package obstacle

import (
	"fmt"
)

// Mask is a row-major boolean grid the size of a depth map.
type Mask struct {
	width  int
	height int

	data []bool
}

// NewMask returns an all-false mask.
func NewMask(width, height int) *Mask {
	return &Mask{width: width, height: height, data: make([]bool, width*height)}
}

func (m *Mask) kxy(x, y int) int {
	return (y * m.width) + x
}

// Width returns the horizontal size of the mask.
func (m *Mask) Width() int {
	return m.width
}

// Height returns the vertical size of the mask.
func (m *Mask) Height() int {
	return m.height
}

// Get reports whether (x, y) is marked.
func (m *Mask) Get(x, y int) bool {
	return m.data[m.kxy(x, y)]
}

// Set marks (x, y).
func (m *Mask) Set(x, y int, val bool) {
	m.data[m.kxy(x, y)] = val
}

// Clear unmarks every pixel.
func (m *Mask) Clear() {
	clear(m.data)
}

// Count returns the number of marked pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.data {
		if v {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	out := &Mask{width: m.width, height: m.height, data: make([]bool, len(m.data))}
	copy(out.data, m.data)
	return out
}

// CopyFrom overwrites m with src. Both masks must have the same size.
func (m *Mask) CopyFrom(src *Mask) {
	checkMaskSize(src, m.width, m.height, "source")
	copy(m.data, src.data)
}

// Rows returns the mask as [y][x] slices, a fresh copy.
func (m *Mask) Rows() [][]bool {
	rows := make([][]bool, m.height)
	for y := range rows {
		rows[y] = make([]bool, m.width)
		copy(rows[y], m.data[y*m.width:(y+1)*m.width])
	}
	return rows
}

func (m *Mask) sameSize(width, height int) bool {
	return m.width == width && m.height == height
}

func checkMaskSize(m *Mask, width, height int, what string) {
	if !m.sameSize(width, height) {
		panic(fmt.Errorf("%s mask is %dx%d, want %dx%d", what, m.width, m.height, width, height))
	}
}

// UpsampleMaskInto expands src into dst by block replication: dst(x, y) = src(x/factor, y/factor).
// dst pixels outside the replicated area are cleared.
func UpsampleMaskInto(dst, src *Mask, factor int) {
	if factor < 1 {
		panic(fmt.Errorf("upsample factor must be at least 1, got %d", factor))
	}
	for y := 0; y < dst.height; y++ {
		sy := y / factor
		for x := 0; x < dst.width; x++ {
			sx := x / factor
			dst.data[dst.kxy(x, y)] = sy < src.height && sx < src.width && src.data[src.kxy(sx, sy)]
		}
	}
}

// Masks are the per-pixel obstacle classifications of one processing pass.
type Masks struct {
	// VerticalCloser marks runs where depth keeps decreasing moving away from the robot (drop-offs).
	VerticalCloser *Mask
	// VerticalFarther marks runs where depth keeps increasing moving away from the robot (step-ups).
	VerticalFarther *Mask
	// HorizontalGradient marks neighborhoods of large left/right depth jumps (side obstacles).
	HorizontalGradient *Mask
	// TooClose marks valid samples nearer than the safety threshold.
	TooClose *Mask
}

// NewMasks allocates four all-false masks.
func NewMasks(width, height int) *Masks {
	return &Masks{
		VerticalCloser:     NewMask(width, height),
		VerticalFarther:    NewMask(width, height),
		HorizontalGradient: NewMask(width, height),
		TooClose:           NewMask(width, height),
	}
}

// Width returns the width shared by all four masks.
func (ms *Masks) Width() int {
	return ms.VerticalCloser.width
}

// Height returns the height shared by all four masks.
func (ms *Masks) Height() int {
	return ms.VerticalCloser.height
}

// Clear unmarks all four masks.
func (ms *Masks) Clear() {
	ms.VerticalCloser.Clear()
	ms.VerticalFarther.Clear()
	ms.HorizontalGradient.Clear()
	ms.TooClose.Clear()
}

// Clone deep-copies all four masks.
func (ms *Masks) Clone() *Masks {
	return &Masks{
		VerticalCloser:     ms.VerticalCloser.Clone(),
		VerticalFarther:    ms.VerticalFarther.Clone(),
		HorizontalGradient: ms.HorizontalGradient.Clone(),
		TooClose:           ms.TooClose.Clone(),
	}
}

// CopyFrom overwrites all four masks with src's. Sizes must match.
func (ms *Masks) CopyFrom(src *Masks) {
	ms.VerticalCloser.CopyFrom(src.VerticalCloser)
	ms.VerticalFarther.CopyFrom(src.VerticalFarther)
	ms.HorizontalGradient.CopyFrom(src.HorizontalGradient)
	ms.TooClose.CopyFrom(src.TooClose)
}

// IsNavigationObstacle reports whether (x, y) counts against navigability: any of the vertical or
// horizontal masks. TooClose is reported separately and does not count.
func (ms *Masks) IsNavigationObstacle(x, y int) bool {
	i := ms.VerticalCloser.kxy(x, y)
	return ms.VerticalCloser.data[i] || ms.VerticalFarther.data[i] || ms.HorizontalGradient.data[i]
}
