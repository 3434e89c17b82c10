package obstacle

import (
	"strings"
	"testing"

	"go.viam.com/test"

	"github.com/satinavrobotics/depthnav/rimage"
)

// gridFromRows builds a depth map from rows listed top (y = 0) to bottom.
func gridFromRows(t *testing.T, rows [][]int16) *rimage.DepthMap {
	t.Helper()
	h := len(rows)
	w := len(rows[0])
	data := make([]int16, 0, w*h)
	for _, row := range rows {
		test.That(t, row, test.ShouldHaveLength, w)
		data = append(data, row...)
	}
	dm, err := rimage.NewDepthMapFromData(w, h, data)
	test.That(t, err, test.ShouldBeNil)
	return dm
}

// column builds a 1-pixel-wide grid from values listed bottom (nearest) to top.
func column(t *testing.T, bottomToTop ...int16) *rimage.DepthMap {
	t.Helper()
	rows := make([][]int16, len(bottomToTop))
	for i, v := range bottomToTop {
		rows[len(bottomToTop)-1-i] = []int16{v}
	}
	return gridFromRows(t, rows)
}

func uniform(t *testing.T, w, h int, v int16) *rimage.DepthMap {
	t.Helper()
	data := make([]int16, w*h)
	for i := range data {
		data[i] = v
	}
	dm, err := rimage.NewDepthMapFromData(w, h, data)
	test.That(t, err, test.ShouldBeNil)
	return dm
}

// markedRows lists the marked y values of column x, bottom first.
func markedRows(m *Mask, x int) []int {
	var ys []int
	for y := m.Height() - 1; y >= 0; y-- {
		if m.Get(x, y) {
			ys = append(ys, y)
		}
	}
	return ys
}

// maskPicture draws m top row first, '#' for marked pixels.
func maskPicture(m *Mask) []string {
	out := make([]string, 0, m.Height())
	for _, row := range m.Rows() {
		var sb strings.Builder
		for _, v := range row {
			if v {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		out = append(out, sb.String())
	}
	return out
}
