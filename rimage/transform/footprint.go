package transform

import (
	"math"

	"github.com/golang/geo/r1"
)

const (
	// DefaultRobotWidthMeters replaces a non-finite or non-positive robot width.
	DefaultRobotWidthMeters = 0.4
	// DefaultFrameWidthPx replaces a non-positive frame width.
	DefaultFrameWidthPx = 640
	// DefaultFOVDegrees is the horizontal field of view assumed without intrinsics.
	DefaultFOVDegrees = 60.0
	// DefaultGroundDistanceMeters is the distance at which the footprint is projected.
	DefaultGroundDistanceMeters = 0.5
	// MinBoundsSpan is the narrowest footprint, as a fraction of frame width.
	MinBoundsSpan = 0.1
)

// RobotBounds is the horizontal band of the image occupied by the robot's body, as fractions
// of the frame width. Left < Right, both in [0, 1].
type RobotBounds struct {
	Left  float64
	Right float64
}

// Span returns Right - Left.
func (b RobotBounds) Span() float64 {
	return b.Right - b.Left
}

// Interval returns the bounds as an r1.Interval.
func (b RobotBounds) Interval() r1.Interval {
	return r1.Interval{Lo: b.Left, Hi: b.Right}
}

// PixelRange converts the bounds to inclusive pixel columns for a frame of the given width.
func (b RobotBounds) PixelRange(frameWidth int) (int, int) {
	cols := r1.Interval{Lo: 0, Hi: float64(frameWidth - 1)}
	left := cols.ClampPoint(math.Round(b.Left * float64(frameWidth)))
	right := cols.ClampPoint(math.Round(b.Right * float64(frameWidth)))
	return int(left), int(right)
}

// FootprintProjector projects a robot's physical width onto the image plane.
type FootprintProjector struct {
	// FallbackFOVDegrees is used when no valid intrinsics are available. Zero means DefaultFOVDegrees.
	FallbackFOVDegrees float64
	// GroundDistanceMeters is the assumed distance to the ground in view. Zero means
	// DefaultGroundDistanceMeters.
	GroundDistanceMeters float64
}

// Project returns the robot's footprint for a frame of frameWidthPx columns. intrinsics may be nil.
//
// When intrinsics are valid the focal length is their mean (Fx+Fy)/2. If they were calibrated at
// a width other than frameWidthPx, the footprint ratio is taken against the calibration width so
// the result does not depend on the depth frame's resolution. Without intrinsics the focal length
// is frameWidthPx / (2·tan(fov/2)).
//
// Invalid geometry never fails: a bad robot width becomes DefaultRobotWidthMeters and a bad frame
// width becomes DefaultFrameWidthPx.
func (p FootprintProjector) Project(robotWidthMeters float64, intrinsics *PinholeCameraIntrinsics, frameWidthPx int) RobotBounds {
	if math.IsNaN(robotWidthMeters) || math.IsInf(robotWidthMeters, 0) || robotWidthMeters <= 0 {
		robotWidthMeters = DefaultRobotWidthMeters
	}
	if frameWidthPx <= 0 {
		frameWidthPx = DefaultFrameWidthPx
	}
	distance := p.GroundDistanceMeters
	if distance <= 0 || math.IsNaN(distance) || math.IsInf(distance, 0) {
		distance = DefaultGroundDistanceMeters
	}

	referenceWidth := float64(frameWidthPx)
	var focalPx float64
	if intrinsics.CheckValid() == nil {
		focalPx = intrinsics.FocalLength()
		if intrinsics.Width > 0 {
			referenceWidth = float64(intrinsics.Width)
		}
	} else {
		fov := p.FallbackFOVDegrees
		if fov <= 0 || fov >= 180 || math.IsNaN(fov) {
			fov = DefaultFOVDegrees
		}
		focalPx = referenceWidth / (2 * math.Tan(fov*math.Pi/180/2))
	}

	robotWidthPx := robotWidthMeters * focalPx / distance
	ratio := robotWidthPx / referenceWidth

	unit := r1.Interval{Lo: 0, Hi: 1}
	left := unit.ClampPoint(0.5 - ratio/2)
	right := unit.ClampPoint(0.5 + ratio/2)

	if right-left < MinBoundsSpan {
		additional := MinBoundsSpan - (right - left)
		left = unit.ClampPoint(left - additional/2)
		right = unit.ClampPoint(right + additional/2)
	}

	return RobotBounds{Left: left, Right: right}
}

// ProjectFootprint is FootprintProjector{}.Project with the default FOV and ground distance.
func ProjectFootprint(robotWidthMeters float64, intrinsics *PinholeCameraIntrinsics, frameWidthPx int) RobotBounds {
	return FootprintProjector{}.Project(robotWidthMeters, intrinsics, frameWidthPx)
}
