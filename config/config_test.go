package config

import (
	"math"
	"testing"
	"time"

	"go.uber.org/multierr"
	"go.viam.com/test"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	test.That(t, cfg.Validate(), test.ShouldBeNil)
	test.That(t, cfg.CloserThresholdMm, test.ShouldEqual, 20.0)
	test.That(t, cfg.MaxSafeDistanceMm, test.ShouldEqual, 5000.0)
	test.That(t, cfg.ConsecutiveThreshold, test.ShouldEqual, 3)
	test.That(t, cfg.DownsampleFactor, test.ShouldEqual, 8)
	test.That(t, cfg.GradientThresholdMm, test.ShouldEqual, 200.0)
	test.That(t, cfg.NavigabilityObstaclePercent, test.ShouldEqual, 3)
	test.That(t, cfg.ConfidenceThreshold, test.ShouldEqual, 0.5)
	test.That(t, cfg.RobotWidthMeters, test.ShouldEqual, 0.4)
	test.That(t, cfg.HorizontalGradientsEnabled, test.ShouldBeTrue)
	test.That(t, cfg.MedianKernelSize, test.ShouldEqual, 0)
	test.That(t, cfg.FrameBudget.Std(), test.ShouldEqual, time.Duration(0))
}

func TestValidateCollectsEveryError(t *testing.T) {
	cfg := Default()
	cfg.CloserThresholdMm = 0
	cfg.DownsampleFactor = 0
	cfg.NavigabilityObstaclePercent = 101
	cfg.ConfidenceThreshold = math.NaN()
	cfg.RobotWidthMeters = 0.05
	cfg.FallbackFOVDegrees = 180
	cfg.FrameBudget = -1

	err := cfg.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, multierr.Errors(err), test.ShouldHaveLength, 7)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"downsample_factor" must be at least 1`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"navigability_obstacle_percent" must be between 1 and 100`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"fallback_fov_degrees"`)
}

func TestSettersClamp(t *testing.T) {
	cfg := Default()
	test.That(t, cfg.WithCloserThresholdMm(0).CloserThresholdMm, test.ShouldEqual, 1.0)
	test.That(t, cfg.WithFartherThresholdMm(-4).FartherThresholdMm, test.ShouldEqual, 1.0)
	test.That(t, cfg.WithMaxSafeDistanceMm(50).MaxSafeDistanceMm, test.ShouldEqual, 100.0)
	test.That(t, cfg.WithMaxSafeDistanceMm(math.Inf(1)).MaxSafeDistanceMm, test.ShouldEqual, 100.0)
	test.That(t, cfg.WithConsecutiveThreshold(0).ConsecutiveThreshold, test.ShouldEqual, 1)
	test.That(t, cfg.WithDownsampleFactor(-2).DownsampleFactor, test.ShouldEqual, 1)
	test.That(t, cfg.WithGradientThresholdMm(0.5).GradientThresholdMm, test.ShouldEqual, 1.0)
	test.That(t, cfg.WithTooCloseThresholdMm(-1).TooCloseThresholdMm, test.ShouldEqual, 0.0)
	test.That(t, cfg.WithNavigabilityObstaclePercent(0).NavigabilityObstaclePercent, test.ShouldEqual, 1)
	test.That(t, cfg.WithNavigabilityObstaclePercent(250).NavigabilityObstaclePercent, test.ShouldEqual, 100)
	test.That(t, cfg.WithConfidenceThreshold(1.5).ConfidenceThreshold, test.ShouldEqual, 1.0)
	test.That(t, cfg.WithConfidenceThreshold(-1).ConfidenceThreshold, test.ShouldEqual, 0.0)
	test.That(t, cfg.WithRobotWidthMeters(math.NaN()).RobotWidthMeters, test.ShouldEqual, 0.4)
	test.That(t, cfg.WithRobotWidthMeters(math.Inf(-1)).RobotWidthMeters, test.ShouldEqual, 0.4)
	test.That(t, cfg.WithRobotWidthMeters(0.01).RobotWidthMeters, test.ShouldEqual, 0.1)
	test.That(t, cfg.WithRobotWidthMeters(0.6).RobotWidthMeters, test.ShouldEqual, 0.6)
	test.That(t, cfg.WithMedianKernelSize(9).MedianKernelSize, test.ShouldEqual, 7)
	test.That(t, cfg.WithFrameBudget(-time.Second).FrameBudget.Std(), test.ShouldEqual, time.Duration(0))
	test.That(t, cfg.WithHorizontalGradientsEnabled(false).HorizontalGradientsEnabled, test.ShouldBeFalse)

	// setters never produce an invalid config and never touch the receiver
	clamped := cfg.WithCloserThresholdMm(-1).WithDownsampleFactor(0).WithRobotWidthMeters(0)
	test.That(t, clamped.Validate(), test.ShouldBeNil)
	test.That(t, cfg, test.ShouldResemble, Default())
}

func TestDurationJSON(t *testing.T) {
	var d Duration
	test.That(t, d.UnmarshalJSON([]byte(`"33ms"`)), test.ShouldBeNil)
	test.That(t, d.Std(), test.ShouldEqual, 33*time.Millisecond)

	test.That(t, d.UnmarshalJSON([]byte(`1000`)), test.ShouldBeNil)
	test.That(t, d.Std(), test.ShouldEqual, time.Microsecond)

	test.That(t, d.UnmarshalJSON([]byte(`"soon"`)), test.ShouldNotBeNil)

	md, err := Duration(1500 * time.Millisecond).MarshalJSON()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(md), test.ShouldEqual, `"1.5s"`)
}
