package obstacle

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.viam.com/test"
)

var defaultPlanar = PlanarParams{
	TooCloseThresholdMm: 300,
	GradientThresholdMm: 200,
	HorizontalEnabled:   true,
}

func TestScanPlanarTooClose(t *testing.T) {
	dm := gridFromRows(t, [][]int16{
		{299, 300, 0},
		{-5, 1, 1000},
	})
	params := defaultPlanar
	params.HorizontalEnabled = false
	tooClose, horizontal := PlanarObstacles(dm, params)
	test.That(t, tooClose.Rows(), test.ShouldResemble, [][]bool{
		{true, false, false},
		{false, true, false},
	})
	test.That(t, horizontal.Count(), test.ShouldEqual, 0)
}

func TestScanPlanarHorizontalBlock(t *testing.T) {
	dm := uniform(t, 7, 5, 1000)
	dm.Set(3, 2, 2000)

	_, horizontal := PlanarObstacles(dm, defaultPlanar)

	// jumps at x=2->3 and x=3->4 on row 2 mark columns 1..5 of rows 1..3
	want := []string{
		".......",
		".#####.",
		".#####.",
		".#####.",
		".......",
	}
	test.That(t, cmp.Diff(want, maskPicture(horizontal)), test.ShouldBeEmpty)
	test.That(t, horizontal.Count(), test.ShouldEqual, 15)
}

func TestScanPlanarBlockClipped(t *testing.T) {
	dm := gridFromRows(t, [][]int16{
		{1000, 3000, 3000, 3000},
		{1000, 1000, 1000, 1000},
		{1000, 1000, 1000, 1000},
	})
	_, horizontal := PlanarObstacles(dm, defaultPlanar)
	test.That(t, horizontal.Rows(), test.ShouldResemble, [][]bool{
		{true, true, true, false},
		{true, true, true, false},
		{false, false, false, false},
	})
}

func TestScanPlanarThresholdAndInvalid(t *testing.T) {
	dm := gridFromRows(t, [][]int16{
		{1000, 1200, 0, 3000},
	})
	_, horizontal := PlanarObstacles(dm, defaultPlanar)
	test.That(t, horizontal.Count(), test.ShouldEqual, 0)

	dm.Set(1, 0, 1201)
	_, horizontal = PlanarObstacles(dm, defaultPlanar)
	test.That(t, horizontal.Rows(), test.ShouldResemble, [][]bool{{true, true, true, false}})
}

func TestScanPlanarDisabledClears(t *testing.T) {
	dm := uniform(t, 4, 3, 1000)
	dm.Set(2, 1, 4000)

	tooClose := NewMask(4, 3)
	horizontal := NewMask(4, 3)
	ScanPlanar(dm, defaultPlanar, tooClose, horizontal)
	test.That(t, horizontal.Count(), test.ShouldBeGreaterThan, 0)

	params := defaultPlanar
	params.HorizontalEnabled = false
	ScanPlanar(dm, params, tooClose, horizontal)
	test.That(t, horizontal.Count(), test.ShouldEqual, 0)

	test.That(t, func() { ScanPlanar(dm, params, NewMask(3, 3), horizontal) }, test.ShouldPanic)
}
