package navigability

import (
	"math/rand"
	"testing"

	"go.viam.com/test"

	"github.com/satinavrobotics/depthnav/obstacle"
	"github.com/satinavrobotics/depthnav/rimage/transform"
)

var centered = transform.RobotBounds{Left: 0.3, Right: 0.7}

func allTrue(n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = true
	}
	return out
}

func TestLayout(t *testing.T) {
	l := NewLayout(100, 20, centered, DefaultParams())
	test.That(t, l.Left, test.ShouldResemble, Span{StartX: 0, EndX: 30})
	test.That(t, l.Right, test.ShouldResemble, Span{StartX: 70, EndX: 99})
	test.That(t, l.Center, test.ShouldResemble, Span{StartX: 30, EndX: 70})
	test.That(t, l.TopY, test.ShouldEqual, 6)
	test.That(t, l.BottomY, test.ShouldEqual, 19)
	test.That(t, l.RowHeight, test.ShouldEqual, 1)

	top, bottom := l.Band(0)
	test.That(t, top, test.ShouldEqual, 6)
	test.That(t, bottom, test.ShouldEqual, 7)
	top, bottom = l.Band(NumRows - 1)
	test.That(t, top, test.ShouldEqual, 17)
	test.That(t, bottom, test.ShouldEqual, 18)

	l = NewLayout(640, 480, centered, DefaultParams())
	test.That(t, l.TopY, test.ShouldEqual, 144)
	test.That(t, l.RowHeight, test.ShouldEqual, 27)
	top, bottom = l.Band(NumRows - 1)
	test.That(t, top, test.ShouldEqual, 441)
	test.That(t, bottom, test.ShouldEqual, 468)
}

func TestLayoutWidensNarrowWindows(t *testing.T) {
	l := NewLayout(100, 20, transform.RobotBounds{Left: 0.02, Right: 0.98}, DefaultParams())
	test.That(t, l.Left, test.ShouldResemble, Span{StartX: 0, EndX: 10})
	test.That(t, l.Right, test.ShouldResemble, Span{StartX: 89, EndX: 99})
	test.That(t, l.Center, test.ShouldResemble, Span{StartX: 2, EndX: 98})

	l = NewLayout(100, 20, transform.RobotBounds{Left: 0, Right: 1}, DefaultParams())
	test.That(t, l.Left.Width(), test.ShouldEqual, 11)
	test.That(t, l.Right.Width(), test.ShouldEqual, 11)
}

func TestComputeClear(t *testing.T) {
	masks := obstacle.NewMasks(100, 20)
	res := Compute(masks, centered, DefaultParams())
	test.That(t, res.Left, test.ShouldResemble, allTrue(NumRows))
	test.That(t, res.Right, test.ShouldResemble, allTrue(NumRows))
	test.That(t, res.Center, test.ShouldResemble, allTrue(NumRows))
	test.That(t, NavigableCount(res.Left), test.ShouldEqual, NumRows)
}

func TestComputeObstacleInBottomBand(t *testing.T) {
	masks := obstacle.NewMasks(100, 20)
	for y := 17; y <= 18; y++ {
		for x := 0; x <= 30; x++ {
			masks.VerticalCloser.Set(x, y, true)
		}
	}
	res := Compute(masks, centered, DefaultParams())

	expected := allTrue(NumRows)
	expected[NumRows-1] = false
	expected[NumRows-2] = false
	test.That(t, res.Left, test.ShouldResemble, expected)
	test.That(t, res.Right, test.ShouldResemble, allTrue(NumRows))

	// the center window only sees column 30 of the obstacle
	test.That(t, res.Center[NumRows-1], test.ShouldBeTrue)
	test.That(t, res.Center[0], test.ShouldBeTrue)
}

func TestComputeIgnoresRowsBelowLastBand(t *testing.T) {
	// at 640x480 the last band is rows 441-468; rows 469-479 are never scored
	masks := obstacle.NewMasks(640, 480)
	for y := 469; y < 480; y++ {
		for x := 0; x < 640; x++ {
			masks.VerticalCloser.Set(x, y, true)
		}
	}
	res := Compute(masks, centered, DefaultParams())
	test.That(t, res.Left, test.ShouldResemble, allTrue(NumRows))
	test.That(t, res.Center, test.ShouldResemble, allTrue(NumRows))
	test.That(t, res.Right, test.ShouldResemble, allTrue(NumRows))

	for x := 0; x < 640; x++ {
		masks.VerticalCloser.Set(x, 468, true)
	}
	res = Compute(masks, centered, DefaultParams())
	expected := allTrue(NumRows)
	expected[NumRows-1] = false
	test.That(t, res.Left, test.ShouldResemble, expected)
	test.That(t, res.Center, test.ShouldResemble, expected)
	test.That(t, res.Right, test.ShouldResemble, expected)
}

func TestComputeObstacleShare(t *testing.T) {
	// band 0 of the left window is rows 6-7 of columns 0-30: 62 pixels
	masks := obstacle.NewMasks(100, 20)
	masks.HorizontalGradient.Set(0, 6, true)
	res := Compute(masks, centered, DefaultParams())
	test.That(t, res.Left[0], test.ShouldBeTrue)

	masks.VerticalFarther.Set(1, 6, true)
	res = Compute(masks, centered, DefaultParams())
	test.That(t, res.Left[0], test.ShouldBeFalse)
	test.That(t, res.Left[1], test.ShouldBeTrue)

	params := DefaultParams()
	params.ObstaclePercent = 4
	res = Compute(masks, centered, params)
	test.That(t, res.Left[0], test.ShouldBeTrue)
}

func TestComputeIgnoresTooClose(t *testing.T) {
	masks := obstacle.NewMasks(100, 20)
	for y := 0; y < 20; y++ {
		for x := 0; x < 100; x++ {
			masks.TooClose.Set(x, y, true)
		}
	}
	res := Compute(masks, centered, DefaultParams())
	test.That(t, res.Left, test.ShouldResemble, allTrue(NumRows))
	test.That(t, res.Right, test.ShouldResemble, allTrue(NumRows))
}

func TestComputeDegenerate(t *testing.T) {
	for _, size := range []struct{ w, h int }{{1, 20}, {100, 1}} {
		res := Compute(obstacle.NewMasks(size.w, size.h), centered, DefaultParams())
		test.That(t, res.Left, test.ShouldResemble, make([]bool, NumRows))
		test.That(t, res.Right, test.ShouldResemble, make([]bool, NumRows))
		test.That(t, res.Center, test.ShouldResemble, make([]bool, NumRows))
	}

	// fewer analysis rows than bands leaves the trailing bands empty
	res := Compute(obstacle.NewMasks(100, 8), centered, DefaultParams())
	test.That(t, res.Left[0], test.ShouldBeTrue)
	test.That(t, res.Left[NumRows-1], test.ShouldBeFalse)
}

func TestComputeMonotonicInObstaclePercent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		masks := obstacle.NewMasks(64, 48)
		density := rng.Float64() * 0.2
		for y := 0; y < 48; y++ {
			for x := 0; x < 64; x++ {
				if rng.Float64() < density {
					masks.VerticalCloser.Set(x, y, true)
				}
			}
		}

		prev := Compute(masks, centered, Params{ObstaclePercent: 1})
		for pct := 2; pct <= 100; pct++ {
			cur := Compute(masks, centered, Params{ObstaclePercent: pct})
			for i := 0; i < NumRows; i++ {
				if prev.Left[i] {
					test.That(t, cur.Left[i], test.ShouldBeTrue)
				}
				if prev.Right[i] {
					test.That(t, cur.Right[i], test.ShouldBeTrue)
				}
				if prev.Center[i] {
					test.That(t, cur.Center[i], test.ShouldBeTrue)
				}
			}
			prev = cur
		}
		test.That(t, prev.Left, test.ShouldResemble, allTrue(NumRows))
	}
}

func TestResultClone(t *testing.T) {
	res := NewResult(NumRows)
	res.Left[3] = true
	c := res.Clone()
	res.Left[3] = false
	test.That(t, c.Left[3], test.ShouldBeTrue)
	test.That(t, c.Right, test.ShouldHaveLength, NumRows)
	test.That(t, NavigableCount(c.Left), test.ShouldEqual, 1)
}
