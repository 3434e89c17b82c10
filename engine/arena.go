package engine

import (
	"github.com/satinavrobotics/depthnav/obstacle"
	"github.com/satinavrobotics/depthnav/rimage"
)

// arena holds the scratch buffers of one engine, sized to the last frame. It is only touched
// while the engine's processing lock is held.
type arena struct {
	width  int
	height int
	factor int

	filtered *rimage.DepthMap
	median   *rimage.DepthMap

	// reduced-resolution path, nil when factor == 1
	reduced        *rimage.DepthMap
	reducedCloser  *obstacle.Mask
	reducedFarther *obstacle.Mask
	upsampled      *rimage.DepthMap

	masks *obstacle.Masks
}

func (a *arena) fits(width, height, factor int) bool {
	return a.masks != nil && a.width == width && a.height == height && a.factor == factor
}

// reset reallocates every buffer for a width×height frame downsampled by factor.
func (a *arena) reset(width, height, factor int) {
	*a = arena{
		width:    width,
		height:   height,
		factor:   factor,
		filtered: rimage.NewEmptyDepthMap(width, height),
		median:   rimage.NewEmptyDepthMap(width, height),
		masks:    obstacle.NewMasks(width, height),
	}
	if factor > 1 {
		rw, rh := rimage.DownsampledSize(width, height, factor)
		a.reduced = rimage.NewEmptyDepthMap(rw, rh)
		a.reducedCloser = obstacle.NewMask(rw, rh)
		a.reducedFarther = obstacle.NewMask(rw, rh)
		a.upsampled = rimage.NewEmptyDepthMap(width, height)
	}
}

// effectiveFactor keeps the reduced grid at least one sample in each direction.
func effectiveFactor(factor, width, height int) int {
	return max(1, min(factor, width, height))
}
