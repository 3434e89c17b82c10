package rimage

import "math"

// ApplyConfidence copies the frame's depth into dst, invalidating every sample whose
// confidence (scaled to 0..1) is below threshold. A threshold <= 0 copies the depth unchanged.
// It returns the number of samples that were invalidated.
func ApplyConfidence(dst *DepthMap, frame *DepthFrame, threshold float64) int {
	dst.CopyFrom(frame.Depth)
	if threshold <= 0 {
		return 0
	}

	// confidence/255 < threshold  <=>  confidence < ceil(threshold*255)
	minConfidence := int(math.Ceil(threshold * 255))
	dropped := 0
	for i, c := range frame.Confidence {
		if int(c) < minConfidence && dst.data[i].Valid() {
			dst.data[i] = 0
			dropped++
		}
	}
	return dropped
}
