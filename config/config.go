// Package config holds the tunable thresholds of the depth analysis engine.
package config

import (
	"encoding/json"
	"math"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Defaults for every tunable.
const (
	DefaultCloserThresholdMm    = 20.0
	DefaultFartherThresholdMm   = 20.0
	DefaultMaxSafeDistanceMm    = 5000.0
	DefaultConsecutiveThreshold = 3
	DefaultDownsampleFactor     = 8
	DefaultGradientThresholdMm  = 200.0
	DefaultTooCloseThresholdMm  = 300.0
	DefaultObstaclePercent      = 3
	DefaultConfidenceThreshold  = 0.5
	DefaultRobotWidthMeters     = 0.4
	DefaultGroundDistanceMeters = 0.5
	DefaultFallbackFOVDegrees   = 60.0
	MinRobotWidthMeters         = 0.1
	MinMaxSafeDistanceMm        = 100.0
	MaxMedianKernelSize         = 7
)

// Config is an immutable set of thresholds. Change it with the With* methods, which return a
// modified copy, and publish it through a Store.
type Config struct {
	CloserThresholdMm           float64  `json:"vertical_closer_threshold_mm"`
	FartherThresholdMm          float64  `json:"vertical_farther_threshold_mm"`
	MaxSafeDistanceMm           float64  `json:"max_safe_distance_mm"`
	ConsecutiveThreshold        int      `json:"consecutive_threshold_px"`
	DownsampleFactor            int      `json:"downsample_factor"`
	GradientThresholdMm         float64  `json:"horizontal_gradient_threshold_mm"`
	TooCloseThresholdMm         float64  `json:"too_close_threshold_mm"`
	HorizontalGradientsEnabled  bool     `json:"horizontal_gradients_enabled"`
	NavigabilityObstaclePercent int      `json:"navigability_obstacle_percent"`
	ConfidenceThreshold         float64  `json:"confidence_threshold"`
	RobotWidthMeters            float64  `json:"robot_width_meters"`
	GroundDistanceMeters        float64  `json:"ground_distance_meters"`
	FallbackFOVDegrees          float64  `json:"fallback_fov_degrees"`
	MedianKernelSize            int      `json:"median_kernel_size"`
	FrameBudget                 Duration `json:"frame_budget"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		CloserThresholdMm:           DefaultCloserThresholdMm,
		FartherThresholdMm:          DefaultFartherThresholdMm,
		MaxSafeDistanceMm:           DefaultMaxSafeDistanceMm,
		ConsecutiveThreshold:        DefaultConsecutiveThreshold,
		DownsampleFactor:            DefaultDownsampleFactor,
		GradientThresholdMm:         DefaultGradientThresholdMm,
		TooCloseThresholdMm:         DefaultTooCloseThresholdMm,
		HorizontalGradientsEnabled:  true,
		NavigabilityObstaclePercent: DefaultObstaclePercent,
		ConfidenceThreshold:         DefaultConfidenceThreshold,
		RobotWidthMeters:            DefaultRobotWidthMeters,
		GroundDistanceMeters:        DefaultGroundDistanceMeters,
		FallbackFOVDegrees:          DefaultFallbackFOVDegrees,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func atLeast(name string, v, lo float64) error {
	if !finite(v) || v < lo {
		return errors.Errorf("%q must be at least %v, got %v", name, lo, v)
	}
	return nil
}

func between(name string, v, lo, hi float64) error {
	if !finite(v) || v < lo || v > hi {
		return errors.Errorf("%q must be between %v and %v, got %v", name, lo, hi, v)
	}
	return nil
}

// Validate reports every out-of-range field.
func (c Config) Validate() error {
	var err error
	multierr.AppendInto(&err, atLeast("vertical_closer_threshold_mm", c.CloserThresholdMm, 1))
	multierr.AppendInto(&err, atLeast("vertical_farther_threshold_mm", c.FartherThresholdMm, 1))
	multierr.AppendInto(&err, atLeast("max_safe_distance_mm", c.MaxSafeDistanceMm, MinMaxSafeDistanceMm))
	multierr.AppendInto(&err, atLeast("consecutive_threshold_px", float64(c.ConsecutiveThreshold), 1))
	multierr.AppendInto(&err, atLeast("downsample_factor", float64(c.DownsampleFactor), 1))
	multierr.AppendInto(&err, atLeast("horizontal_gradient_threshold_mm", c.GradientThresholdMm, 1))
	multierr.AppendInto(&err, atLeast("too_close_threshold_mm", c.TooCloseThresholdMm, 0))
	multierr.AppendInto(&err, between("navigability_obstacle_percent", float64(c.NavigabilityObstaclePercent), 1, 100))
	multierr.AppendInto(&err, between("confidence_threshold", c.ConfidenceThreshold, 0, 1))
	multierr.AppendInto(&err, atLeast("robot_width_meters", c.RobotWidthMeters, MinRobotWidthMeters))
	if !finite(c.GroundDistanceMeters) || c.GroundDistanceMeters <= 0 {
		multierr.AppendInto(&err, errors.Errorf("%q must be positive, got %v", "ground_distance_meters", c.GroundDistanceMeters))
	}
	if !finite(c.FallbackFOVDegrees) || c.FallbackFOVDegrees <= 0 || c.FallbackFOVDegrees >= 180 {
		multierr.AppendInto(&err, errors.Errorf("%q must be in (0, 180), got %v", "fallback_fov_degrees", c.FallbackFOVDegrees))
	}
	multierr.AppendInto(&err, between("median_kernel_size", float64(c.MedianKernelSize), 0, MaxMedianKernelSize))
	if c.FrameBudget < 0 {
		multierr.AppendInto(&err, errors.Errorf("%q must not be negative, got %v", "frame_budget", c.FrameBudget))
	}
	return err
}

// WithCloserThresholdMm returns a copy with the closer threshold set, at least 1 mm.
func (c Config) WithCloserThresholdMm(v float64) Config {
	c.CloserThresholdMm = clampMin(v, 1)
	return c
}

// WithFartherThresholdMm returns a copy with the farther threshold set, at least 1 mm.
func (c Config) WithFartherThresholdMm(v float64) Config {
	c.FartherThresholdMm = clampMin(v, 1)
	return c
}

// WithMaxSafeDistanceMm returns a copy with the max safe distance set, at least 100 mm.
func (c Config) WithMaxSafeDistanceMm(v float64) Config {
	c.MaxSafeDistanceMm = clampMin(v, MinMaxSafeDistanceMm)
	return c
}

// WithConsecutiveThreshold returns a copy with the run length set, at least 1.
func (c Config) WithConsecutiveThreshold(v int) Config {
	c.ConsecutiveThreshold = max(v, 1)
	return c
}

// WithDownsampleFactor returns a copy with the downsample factor set, at least 1.
func (c Config) WithDownsampleFactor(v int) Config {
	c.DownsampleFactor = max(v, 1)
	return c
}

// WithGradientThresholdMm returns a copy with the horizontal gradient threshold set, at least 1 mm.
func (c Config) WithGradientThresholdMm(v float64) Config {
	c.GradientThresholdMm = clampMin(v, 1)
	return c
}

// WithTooCloseThresholdMm returns a copy with the too-close threshold set, at least 0.
func (c Config) WithTooCloseThresholdMm(v float64) Config {
	c.TooCloseThresholdMm = clampMin(v, 0)
	return c
}

// WithHorizontalGradientsEnabled returns a copy with horizontal detection toggled.
func (c Config) WithHorizontalGradientsEnabled(enabled bool) Config {
	c.HorizontalGradientsEnabled = enabled
	return c
}

// WithNavigabilityObstaclePercent returns a copy with the obstacle share set, clamped to 1-100.
func (c Config) WithNavigabilityObstaclePercent(v int) Config {
	c.NavigabilityObstaclePercent = min(max(v, 1), 100)
	return c
}

// WithConfidenceThreshold returns a copy with the confidence threshold set, clamped to [0, 1].
func (c Config) WithConfidenceThreshold(v float64) Config {
	if math.IsNaN(v) {
		v = DefaultConfidenceThreshold
	}
	c.ConfidenceThreshold = math.Min(math.Max(v, 0), 1)
	return c
}

// WithRobotWidthMeters returns a copy with the robot width set. Non-finite widths become the
// default and anything narrower than 0.1 m is raised to it.
func (c Config) WithRobotWidthMeters(v float64) Config {
	if !finite(v) {
		v = DefaultRobotWidthMeters
	}
	c.RobotWidthMeters = math.Max(v, MinRobotWidthMeters)
	return c
}

// WithMedianKernelSize returns a copy with the median pre-filter kernel set. 0 disables it.
func (c Config) WithMedianKernelSize(v int) Config {
	c.MedianKernelSize = min(max(v, 0), MaxMedianKernelSize)
	return c
}

// WithFrameBudget returns a copy with the per-frame time budget set. 0 disables it.
func (c Config) WithFrameBudget(d time.Duration) Config {
	c.FrameBudget = Duration(max(d, 0))
	return c
}

func clampMin(v, lo float64) float64 {
	if !finite(v) {
		return lo
	}
	return math.Max(v, lo)
}

// Duration is a time.Duration that reads and writes JSON as a string like "33ms".
// Bare numbers are read as nanoseconds.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String formats like time.Duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalJSON writes d as a duration string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := toDuration(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
