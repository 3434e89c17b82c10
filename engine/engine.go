// Package engine turns depth frames into obstacle masks and navigability scores.
//
// One Process call runs the whole pass:
//
//	confidence filter -> median (optional) -> downsample -> vertical scan -> upsample
//	-> planar scan -> footprint projection -> navigability
//
// Results are published after the pass and read back as copies.
package engine

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/atomic"

	"github.com/satinavrobotics/depthnav/config"
	"github.com/satinavrobotics/depthnav/logging"
	"github.com/satinavrobotics/depthnav/navigability"
	"github.com/satinavrobotics/depthnav/obstacle"
	"github.com/satinavrobotics/depthnav/rimage"
	"github.com/satinavrobotics/depthnav/rimage/transform"
)

// Summary describes one completed pass.
type Summary struct {
	Width  int
	Height int
	// Factor is the downsample factor actually used.
	Factor int
	// RunThreshold is the vertical run length used on the scanned grid.
	RunThreshold int
	// Invalidated counts samples dropped by the confidence filter.
	Invalidated int

	CloserPixels     int
	FartherPixels    int
	HorizontalPixels int
	TooClosePixels   int

	Duration time.Duration
}

// Result is a copy of everything published by the last pass.
type Result struct {
	Masks        *obstacle.Masks
	Navigability navigability.Result
	Bounds       transform.RobotBounds
	Summary      Summary
}

// Stats are running counters since the engine was created.
type Stats struct {
	Processed     uint64
	NoUpdate      uint64
	Skipped       uint64
	Reallocations uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used to time passes.
func WithClock(clk clock.Clock) Option {
	return func(e *Engine) {
		e.clock = clk
	}
}

// WithIntrinsics sets the initial camera intrinsics.
func WithIntrinsics(intrinsics *transform.PinholeCameraIntrinsics) Option {
	return func(e *Engine) {
		e.SetIntrinsics(intrinsics)
	}
}

// Engine processes one frame at a time. Process may be called from any goroutine; concurrent
// calls are serialized. Results may be read while a pass is running.
type Engine struct {
	logger logging.Logger
	clock  clock.Clock

	config     *config.Store
	intrinsics *atomic.Pointer[transform.PinholeCameraIntrinsics]

	processMu sync.Mutex
	scratch   arena

	resultMu  sync.RWMutex
	published *obstacle.Masks
	nav       navigability.Result
	bounds    transform.RobotBounds
	summary   Summary

	processed     *atomic.Uint64
	noUpdate      *atomic.Uint64
	skipped       *atomic.Uint64
	reallocations *atomic.Uint64
}

// New returns an engine using cfg, which must be valid.
func New(cfg config.Config, logger logging.Logger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		logger:        logger,
		clock:         clock.New(),
		config:        config.NewStore(cfg),
		intrinsics:    atomic.NewPointer[transform.PinholeCameraIntrinsics](nil),
		nav:           navigability.NewResult(navigability.NumRows),
		processed:     atomic.NewUint64(0),
		noUpdate:      atomic.NewUint64(0),
		skipped:       atomic.NewUint64(0),
		reallocations: atomic.NewUint64(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the config used by the next pass.
func (e *Engine) Config() config.Config {
	return e.config.Load()
}

// SetConfig validates cfg and uses it from the next pass on. A pass already running keeps the
// config it started with.
func (e *Engine) SetConfig(cfg config.Config) error {
	return e.config.Store(cfg)
}

// UpdateConfig applies fn to the current config, as config.Store.Update.
func (e *Engine) UpdateConfig(fn func(config.Config) config.Config) (config.Config, error) {
	return e.config.Update(fn)
}

// SetIntrinsics sets the camera intrinsics used for footprint projection. nil falls back to the
// configured field of view.
func (e *Engine) SetIntrinsics(intrinsics *transform.PinholeCameraIntrinsics) {
	if intrinsics == nil {
		e.intrinsics.Store(nil)
		return
	}
	cp := *intrinsics
	e.intrinsics.Store(&cp)
}

// Process runs a full pass over frame, waiting for any running pass to finish first. It returns
// false, leaving the previous results in place, if the frame is unusable.
func (e *Engine) Process(frame *rimage.DepthFrame) bool {
	if !e.checkFrame(frame) {
		return false
	}
	e.processMu.Lock()
	defer e.processMu.Unlock()
	e.process(frame)
	return true
}

// TryProcess is Process without waiting: if a pass is already running the frame is dropped and
// ran is false.
func (e *Engine) TryProcess(frame *rimage.DepthFrame) (updated, ran bool) {
	if !e.processMu.TryLock() {
		e.skipped.Inc()
		return false, false
	}
	defer e.processMu.Unlock()
	if !e.checkFrame(frame) {
		return false, true
	}
	e.process(frame)
	return true, true
}

func (e *Engine) checkFrame(frame *rimage.DepthFrame) bool {
	if err := frame.CheckValid(); err != nil {
		e.noUpdate.Inc()
		e.logger.Warnw("no update", "error", err)
		return false
	}
	return true
}

func (e *Engine) process(frame *rimage.DepthFrame) {
	start := e.clock.Now()
	cfg := e.config.Load()
	width, height := frame.Width(), frame.Height()
	factor := effectiveFactor(cfg.DownsampleFactor, width, height)

	a := &e.scratch
	if !a.fits(width, height, factor) {
		if a.masks != nil {
			e.logger.Debugw("reallocating scratch buffers",
				"from", []int{a.width, a.height, a.factor}, "to", []int{width, height, factor})
		}
		a.reset(width, height, factor)
		e.reallocations.Inc()
	}

	invalidated := rimage.ApplyConfidence(a.filtered, frame, cfg.ConfidenceThreshold)
	grid := a.filtered
	if cfg.MedianKernelSize > 0 {
		rimage.MedianFilterInto(a.median, grid, cfg.MedianKernelSize)
		grid = a.median
	}

	vertical := obstacle.VerticalParams{
		RunThreshold:       cfg.ConsecutiveThreshold,
		CloserThresholdMm:  cfg.CloserThresholdMm,
		FartherThresholdMm: cfg.FartherThresholdMm,
		MaxSafeDistanceMm:  cfg.MaxSafeDistanceMm,
	}
	planarGrid := grid
	if factor > 1 {
		vertical.RunThreshold = max(1, cfg.ConsecutiveThreshold/factor)
		rimage.DownsampleInto(a.reduced, grid, factor)
		obstacle.ScanVertical(a.reduced, vertical, a.reducedCloser, a.reducedFarther)
		obstacle.UpsampleMaskInto(a.masks.VerticalCloser, a.reducedCloser, factor)
		obstacle.UpsampleMaskInto(a.masks.VerticalFarther, a.reducedFarther, factor)
		rimage.UpsampleInto(a.upsampled, a.reduced, factor)
		planarGrid = a.upsampled
	} else {
		obstacle.ScanVertical(grid, vertical, a.masks.VerticalCloser, a.masks.VerticalFarther)
	}

	obstacle.ScanPlanar(planarGrid, obstacle.PlanarParams{
		TooCloseThresholdMm: cfg.TooCloseThresholdMm,
		GradientThresholdMm: cfg.GradientThresholdMm,
		HorizontalEnabled:   cfg.HorizontalGradientsEnabled,
	}, a.masks.TooClose, a.masks.HorizontalGradient)

	projector := transform.FootprintProjector{
		FallbackFOVDegrees:   cfg.FallbackFOVDegrees,
		GroundDistanceMeters: cfg.GroundDistanceMeters,
	}
	bounds := projector.Project(cfg.RobotWidthMeters, e.intrinsics.Load(), width)
	nav := navigability.Compute(a.masks, bounds, navigability.Params{
		ObstaclePercent: cfg.NavigabilityObstaclePercent,
	})

	summary := Summary{
		Width:            width,
		Height:           height,
		Factor:           factor,
		RunThreshold:     vertical.RunThreshold,
		Invalidated:      invalidated,
		CloserPixels:     a.masks.VerticalCloser.Count(),
		FartherPixels:    a.masks.VerticalFarther.Count(),
		HorizontalPixels: a.masks.HorizontalGradient.Count(),
		TooClosePixels:   a.masks.TooClose.Count(),
		Duration:         e.clock.Since(start),
	}
	e.publish(nav, bounds, summary)
	e.processed.Inc()

	e.logger.Debugw("processed frame",
		"width", width,
		"height", height,
		"factor", factor,
		"invalidated", invalidated,
		"closer", summary.CloserPixels,
		"farther", summary.FartherPixels,
		"horizontal", summary.HorizontalPixels,
		"too_close", summary.TooClosePixels,
		"duration", summary.Duration,
	)
}

func (e *Engine) publish(nav navigability.Result, bounds transform.RobotBounds, summary Summary) {
	e.resultMu.Lock()
	defer e.resultMu.Unlock()
	if e.published == nil || e.published.Width() != summary.Width || e.published.Height() != summary.Height {
		e.published = obstacle.NewMasks(summary.Width, summary.Height)
	}
	e.published.CopyFrom(e.scratch.masks)
	e.nav = nav
	e.bounds = bounds
	e.summary = summary
}

// Masks returns a copy of the last published masks, or nil before the first successful pass.
func (e *Engine) Masks() *obstacle.Masks {
	e.resultMu.RLock()
	defer e.resultMu.RUnlock()
	if e.published == nil {
		return nil
	}
	return e.published.Clone()
}

// Navigability returns a copy of the last navigability scores. Before the first pass every band
// is non-navigable.
func (e *Engine) Navigability() navigability.Result {
	e.resultMu.RLock()
	defer e.resultMu.RUnlock()
	return e.nav.Clone()
}

// Bounds returns the robot footprint of the last pass.
func (e *Engine) Bounds() transform.RobotBounds {
	e.resultMu.RLock()
	defer e.resultMu.RUnlock()
	return e.bounds
}

// Result returns a consistent copy of everything from the last pass. ok is false before the
// first successful pass.
func (e *Engine) Result() (res Result, ok bool) {
	e.resultMu.RLock()
	defer e.resultMu.RUnlock()
	if e.published == nil {
		return Result{}, false
	}
	return Result{
		Masks:        e.published.Clone(),
		Navigability: e.nav.Clone(),
		Bounds:       e.bounds,
		Summary:      e.summary,
	}, true
}

// Stats returns the engine's counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Processed:     e.processed.Load(),
		NoUpdate:      e.noUpdate.Load(),
		Skipped:       e.skipped.Load(),
		Reallocations: e.reallocations.Load(),
	}
}
