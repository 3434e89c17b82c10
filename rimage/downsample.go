package rimage

import "fmt"

// DownsampledSize returns the dimensions produced by Downsample.
func DownsampledSize(width, height, factor int) (int, int) {
	checkFactor(factor)
	return width / factor, height / factor
}

// Downsample reduces dm by an integer factor. Every output sample is the mean of the valid
// samples in its factor×factor source block, or 0 when the block has none. Source rows and
// columns past the last whole block are dropped.
func Downsample(dm *DepthMap, factor int) *DepthMap {
	checkFactor(factor)
	if factor == 1 {
		return dm.Clone()
	}
	w, h := DownsampledSize(dm.width, dm.height, factor)
	out := NewEmptyDepthMap(w, h)
	DownsampleInto(out, dm, factor)
	return out
}

// DownsampleInto is Downsample writing into a preallocated dst of size DownsampledSize.
func DownsampleInto(dst, src *DepthMap, factor int) {
	checkFactor(factor)
	w, h := DownsampledSize(src.width, src.height, factor)
	if dst.width != w || dst.height != h {
		panic(fmt.Errorf("downsample destination is %dx%d, want %dx%d", dst.width, dst.height, w, h))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			startY := y * factor
			startX := x * factor

			sum := 0
			count := 0
			for by := startY; by < startY+factor; by++ {
				row := src.data[by*src.width : (by+1)*src.width]
				for bx := startX; bx < startX+factor; bx++ {
					if v := row[bx]; v.Valid() {
						sum += int(v)
						count++
					}
				}
			}

			if count > 0 {
				dst.data[dst.kxy(x, y)] = Depth(sum / count)
			} else {
				dst.data[dst.kxy(x, y)] = 0
			}
		}
	}
}

// UpsampleInto expands src back into dst by block replication: dst(x, y) = src(x/factor, y/factor).
// dst samples outside the replicated area are cleared.
func UpsampleInto(dst, src *DepthMap, factor int) {
	checkFactor(factor)
	for y := 0; y < dst.height; y++ {
		sy := y / factor
		for x := 0; x < dst.width; x++ {
			sx := x / factor
			if sy < src.height && sx < src.width {
				dst.data[dst.kxy(x, y)] = src.data[src.kxy(sx, sy)]
			} else {
				dst.data[dst.kxy(x, y)] = 0
			}
		}
	}
}

func checkFactor(factor int) {
	if factor < 1 {
		panic(fmt.Errorf("downsample factor must be at least 1, got %d", factor))
	}
}
