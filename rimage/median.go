package rimage

import (
	"github.com/montanaflynn/stats"
)

// MedianFilter replaces every valid sample with the median of the valid samples in its
// kernel×kernel neighborhood. Invalid samples stay invalid. The kernel is forced odd and
// clamped to 3..7.
func MedianFilter(dm *DepthMap, kernel int) *DepthMap {
	out := NewEmptyDepthMap(dm.width, dm.height)
	MedianFilterInto(out, dm, kernel)
	return out
}

// MedianFilterInto is MedianFilter writing into a preallocated dst of the same size.
func MedianFilterInto(dst, src *DepthMap, kernel int) {
	if kernel%2 == 0 {
		kernel++
	}
	kernel = max(3, min(7, kernel))
	radius := kernel / 2

	neighborhood := make(stats.Float64Data, 0, kernel*kernel)
	for y := 0; y < src.height; y++ {
		for x := 0; x < src.width; x++ {
			center := src.data[src.kxy(x, y)]
			if !center.Valid() {
				dst.data[dst.kxy(x, y)] = 0
				continue
			}

			neighborhood = neighborhood[:0]
			for ny := max(0, y-radius); ny <= min(src.height-1, y+radius); ny++ {
				for nx := max(0, x-radius); nx <= min(src.width-1, x+radius); nx++ {
					if v := src.data[src.kxy(nx, ny)]; v.Valid() {
						neighborhood = append(neighborhood, float64(v))
					}
				}
			}

			// the center is valid, so the neighborhood is never empty
			median, err := stats.Median(neighborhood)
			if err != nil {
				dst.data[dst.kxy(x, y)] = center
				continue
			}
			dst.data[dst.kxy(x, y)] = Depth(median)
		}
	}
}
