package rimage

import (
	"testing"

	"go.viam.com/test"
)

func TestMedianFilterRemovesSpike(t *testing.T) {
	dm := NewEmptyDepthMap(5, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			dm.Set(x, y, 1000)
		}
	}
	dm.Set(2, 2, 4000)
	dm.Set(0, 4, 0)

	out := MedianFilter(dm, 3)
	test.That(t, out.GetDepth(2, 2), test.ShouldEqual, Depth(1000))
	// invalid samples stay invalid
	test.That(t, out.GetDepth(0, 4), test.ShouldEqual, Depth(0))
	// the source is untouched
	test.That(t, dm.GetDepth(2, 2), test.ShouldEqual, Depth(4000))
}

func TestMedianFilterIgnoresInvalidNeighbors(t *testing.T) {
	dm := NewEmptyDepthMap(3, 1)
	dm.Set(0, 0, 100)
	dm.Set(1, 0, 300)
	// an even kernel is bumped to the next odd size; two valid values average
	out := MedianFilter(dm, 2)
	test.That(t, out.GetDepth(0, 0), test.ShouldEqual, Depth(200))
	test.That(t, out.GetDepth(1, 0), test.ShouldEqual, Depth(200))
	test.That(t, out.GetDepth(2, 0), test.ShouldEqual, Depth(0))
}
