package rimage

import (
	"gonum.org/v1/gonum/stat"
)

// DepthStats summarizes the valid samples of a depth map.
type DepthStats struct {
	Valid  int
	Total  int
	Min    Depth
	Max    Depth
	Mean   float64
	StdDev float64
}

// ValidFraction is the share of samples that carry data.
func (s DepthStats) ValidFraction() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Valid) / float64(s.Total)
}

// ComputeDepthStats returns summary statistics over the valid samples of dm.
func ComputeDepthStats(dm *DepthMap) DepthStats {
	s := DepthStats{Total: len(dm.data)}
	values := make([]float64, 0, len(dm.data))
	for _, z := range dm.data {
		if z.Valid() {
			values = append(values, float64(z))
		}
	}
	s.Valid = len(values)
	if s.Valid == 0 {
		return s
	}
	s.Min, s.Max = dm.MinMax()
	if s.Valid == 1 {
		s.Mean = values[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	return s
}
