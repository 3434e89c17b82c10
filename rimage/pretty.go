package rimage

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// ToPrettyPicture colors valid samples on a hue ramp from orange (near) to blue (far). The ramp
// spans the map's own depth range narrowed to [hardMin, hardMax]. Invalid samples are black.
func (dm *DepthMap) ToPrettyPicture(hardMin, hardMax Depth) *image.RGBA {
	lowest, highest := dm.MinMax()
	near := float64(max(lowest, hardMin))
	far := float64(min(highest, hardMax))
	span := max(far-near, 1)

	img := image.NewRGBA(dm.Bounds())
	for i, z := range dm.data {
		x, y := i%dm.width, i/dm.width
		if !z.Valid() {
			img.SetRGBA(x, y, color.RGBA{A: 0xff})
			continue
		}
		t := (min(max(float64(z), near), far) - near) / span
		r, g, b := colorful.Hsv(30+200*t, 1, 1).RGB255()
		img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 0xff})
	}
	return img
}
