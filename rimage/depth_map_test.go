package rimage

import (
	"bufio"
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func rampFrame(width, height int) *DepthFrame {
	depth := make([]int16, width*height)
	conf := make([]uint8, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			depth[y*width+x] = int16(1000 + 10*(height-1-y) + x)
			conf[y*width+x] = uint8(100 + x)
		}
	}
	frame, err := NewDepthFrame(width, height, depth, conf)
	if err != nil {
		panic(err)
	}
	return frame
}

func TestNewDepthFrame(t *testing.T) {
	frame, err := NewDepthFrame(3, 2, []int16{1, 2, 3, 4, 5, -6}, []uint8{0, 1, 2, 3, 4, 5})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.Width(), test.ShouldEqual, 3)
	test.That(t, frame.Height(), test.ShouldEqual, 2)
	test.That(t, frame.Depth.GetDepth(2, 0), test.ShouldEqual, Depth(3))
	test.That(t, frame.Depth.GetDepth(2, 1), test.ShouldEqual, Depth(-6))
	test.That(t, frame.Depth.GetDepth(2, 1).Valid(), test.ShouldBeFalse)
	test.That(t, frame.ConfidenceAt(1, 1), test.ShouldEqual, uint8(4))
	test.That(t, frame.CheckValid(), test.ShouldBeNil)

	_, err = NewDepthFrame(0, 2, nil, nil)
	test.That(t, errors.Is(err, ErrInvalidFrame), test.ShouldBeTrue)

	_, err = NewDepthFrame(2, 2, []int16{1, 2, 3}, []uint8{1, 2, 3, 4})
	test.That(t, errors.Is(err, ErrInvalidFrame), test.ShouldBeTrue)

	_, err = NewDepthFrame(2, 2, []int16{1, 2, 3, 4}, []uint8{1, 2})
	test.That(t, errors.Is(err, ErrInvalidFrame), test.ShouldBeTrue)
}

func TestCheckValid(t *testing.T) {
	var nilFrame *DepthFrame
	test.That(t, errors.Is(nilFrame.CheckValid(), ErrInvalidFrame), test.ShouldBeTrue)
	test.That(t, nilFrame.Width(), test.ShouldEqual, 0)

	frame := rampFrame(4, 4)
	frame.Confidence = nil
	test.That(t, errors.Is(frame.CheckValid(), ErrInvalidFrame), test.ShouldBeTrue)

	frame = rampFrame(4, 4)
	frame.Confidence = frame.Confidence[:3]
	test.That(t, errors.Is(frame.CheckValid(), ErrInvalidFrame), test.ShouldBeTrue)
}

func TestDepthMapCloneAndMinMax(t *testing.T) {
	dm := NewEmptyDepthMap(3, 3)
	min, max := dm.MinMax()
	test.That(t, min, test.ShouldEqual, Depth(0))
	test.That(t, max, test.ShouldEqual, Depth(0))

	dm.Set(0, 0, 700)
	dm.Set(2, 2, 1500)
	dm.Set(1, 1, -3)
	min, max = dm.MinMax()
	test.That(t, min, test.ShouldEqual, Depth(700))
	test.That(t, max, test.ShouldEqual, Depth(1500))
	test.That(t, dm.ValidCount(), test.ShouldEqual, 2)

	clone := dm.Clone()
	clone.Set(0, 0, 1)
	test.That(t, dm.GetDepth(0, 0), test.ShouldEqual, Depth(700))

	clone.Clear()
	test.That(t, clone.ValidCount(), test.ShouldEqual, 0)

	test.That(t, func() { NewEmptyDepthMap(2, 2).CopyFrom(dm) }, test.ShouldPanic)
}

func TestFrameFileRoundTrip(t *testing.T) {
	frame := rampFrame(7, 5)
	frame.Depth.Set(3, 3, 0)

	for _, name := range []string{"frame.dnf", "frame.dnf.gz"} {
		fn := filepath.Join(t.TempDir(), name)
		test.That(t, frame.WriteToFile(fn), test.ShouldBeNil)

		read, err := ParseDepthFrame(fn)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, read.Width(), test.ShouldEqual, 7)
		test.That(t, read.Height(), test.ShouldEqual, 5)
		test.That(t, read.Depth.GetDepth(3, 3), test.ShouldEqual, Depth(0))
		test.That(t, read.Depth.GetDepth(6, 0), test.ShouldEqual, frame.Depth.GetDepth(6, 0))
		test.That(t, read.Confidence, test.ShouldResemble, frame.Confidence)
	}
}

func TestReadDepthFrameErrors(t *testing.T) {
	_, err := ReadDepthFrame(bufio.NewReader(bytes.NewReader([]byte("NOTAFRAMEATALL"))))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "magic")

	var buf bytes.Buffer
	test.That(t, rampFrame(4, 4).Encode(&buf), test.ShouldBeNil)
	truncated := buf.Bytes()[:buf.Len()-5]
	_, err = ReadDepthFrame(bufio.NewReader(bytes.NewReader(truncated)))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = ParseDepthFrame(filepath.Join(t.TempDir(), "missing.dnf"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestToPrettyPicture(t *testing.T) {
	dm := rampFrame(5, 5).Depth
	dm.Set(0, 0, 0)
	img := dm.ToPrettyPicture(0, MaxDepth)
	test.That(t, img.Bounds(), test.ShouldResemble, dm.Bounds())

	r, g, b, _ := img.At(0, 0).RGBA()
	test.That(t, r+g+b, test.ShouldEqual, uint32(0))
	r, g, b, _ = img.At(2, 2).RGBA()
	test.That(t, r+g+b, test.ShouldBeGreaterThan, uint32(0))
}
