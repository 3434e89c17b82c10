package rimage

import (
	"image"

	"github.com/pkg/errors"
)

// Depth is a distance in millimeters. Zero and negative values mean "no data".
type Depth int16

// MaxDepth is the largest representable depth.
const MaxDepth = Depth(32767)

// Valid reports whether the sample carries a measurement.
func (d Depth) Valid() bool {
	return d > 0
}

// DepthMap is a row-major grid of distances. Row 0 is the top of the image and y grows
// downwards, so for a forward-facing camera the bottom rows are nearest the robot:
//
//	y = 0        +----------------+   far
//	             |                |
//	             |                |
//	y = height-1 +----------------+   near (robot)
type DepthMap struct {
	width  int
	height int

	data []Depth
}

// NewEmptyDepthMap returns a depth map of the given size with every sample invalid.
func NewEmptyDepthMap(width, height int) *DepthMap {
	return &DepthMap{
		width:  width,
		height: height,
		data:   make([]Depth, width*height),
	}
}

// NewDepthMapFromData wraps a row-major slice of width*height millimeter values.
func NewDepthMapFromData(width, height int, data []int16) (*DepthMap, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidFrame, "bad dimensions %dx%d", width, height)
	}
	if len(data) != width*height {
		return nil, errors.Wrapf(ErrInvalidFrame, "got %d depth samples for %dx%d", len(data), width, height)
	}
	dm := NewEmptyDepthMap(width, height)
	for i, v := range data {
		dm.data[i] = Depth(v)
	}
	return dm, nil
}

func (dm *DepthMap) kxy(x, y int) int {
	return (y * dm.width) + x
}

// HasData reports whether the map has a usable size.
func (dm *DepthMap) HasData() bool {
	return dm != nil && dm.width > 0 && dm.height > 0 && len(dm.data) == dm.width*dm.height
}

// Width returns the horizontal size of the map.
func (dm *DepthMap) Width() int {
	return dm.width
}

// Height returns the vertical size of the map.
func (dm *DepthMap) Height() int {
	return dm.height
}

// Bounds returns the rectangle covered by the map.
func (dm *DepthMap) Bounds() image.Rectangle {
	return image.Rect(0, 0, dm.width, dm.height)
}

// Get returns the depth at the given point.
func (dm *DepthMap) Get(p image.Point) Depth {
	return dm.data[dm.kxy(p.X, p.Y)]
}

// GetDepth returns the depth at (x, y).
func (dm *DepthMap) GetDepth(x, y int) Depth {
	return dm.data[dm.kxy(x, y)]
}

// Set stores the depth at (x, y).
func (dm *DepthMap) Set(x, y int, val Depth) {
	dm.data[dm.kxy(x, y)] = val
}

// Clear marks every sample invalid.
func (dm *DepthMap) Clear() {
	clear(dm.data)
}

// Clone returns a deep copy of the map.
func (dm *DepthMap) Clone() *DepthMap {
	out := &DepthMap{width: dm.width, height: dm.height, data: make([]Depth, len(dm.data))}
	copy(out.data, dm.data)
	return out
}

// CopyFrom overwrites dm with src. Both maps must have the same size.
func (dm *DepthMap) CopyFrom(src *DepthMap) {
	if dm.width != src.width || dm.height != src.height {
		panic(errors.Errorf("cannot copy %dx%d depth map into %dx%d", src.width, src.height, dm.width, dm.height))
	}
	copy(dm.data, src.data)
}

// MinMax returns the smallest and largest valid depths, or (0, 0) when nothing is valid.
func (dm *DepthMap) MinMax() (Depth, Depth) {
	min := MaxDepth
	max := Depth(0)

	for _, z := range dm.data {
		if !z.Valid() {
			continue
		}
		if z < min {
			min = z
		}
		if z > max {
			max = z
		}
	}

	if max == 0 {
		return 0, 0
	}
	return min, max
}

// ValidCount returns the number of samples with data.
func (dm *DepthMap) ValidCount() int {
	n := 0
	for _, z := range dm.data {
		if z.Valid() {
			n++
		}
	}
	return n
}
