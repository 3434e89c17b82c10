package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/satinavrobotics/depthnav/config"
	"github.com/satinavrobotics/depthnav/engine"
	"github.com/satinavrobotics/depthnav/logging"
	"github.com/satinavrobotics/depthnav/navigation"
	"github.com/satinavrobotics/depthnav/rimage"
)

// Result is delivered for every frame processed within budget.
type Result struct {
	engine.Result
	RunID string
	// Seq numbers frames in arrival order, starting at 1. Gaps are dropped frames.
	Seq     uint64
	Latency time.Duration
	// Command is set when the runner has an avoidance strategy.
	Command *navigation.Command
}

// Stats are the runner's counters.
type Stats struct {
	Received   uint64
	Processed  uint64
	Dropped    uint64
	NoUpdate   uint64
	OverBudget uint64
}

// Options configure a Runner. The zero value is usable.
type Options struct {
	// Clock measures latency against the frame budget. Defaults to the wall clock.
	Clock clock.Clock
	// Store, if set, is polled before each frame and new configs are pushed into the engine.
	Store *config.Store
	// Avoidance, if set, computes a drive command for every result.
	Avoidance *navigation.ObstacleAvoidance
	// TargetHeading is passed to Avoidance.
	TargetHeading float64
	// KeepAll makes the producer wait for the engine instead of dropping stale frames.
	KeepAll bool
	// OnResult receives results on the processing goroutine.
	OnResult func(Result)
}

// Runner pulls frames from a Source and processes them on a single goroutine. When frames
// arrive faster than they are processed only the newest waiting frame is kept.
type Runner struct {
	engine *engine.Engine
	source Source
	logger logging.Logger
	opts   Options

	configVersion uint64

	received   *atomic.Uint64
	processed  *atomic.Uint64
	dropped    *atomic.Uint64
	noUpdate   *atomic.Uint64
	overBudget *atomic.Uint64
}

type arrival struct {
	frame *rimage.DepthFrame
	seq   uint64
	at    time.Time
}

// NewRunner returns a runner feeding source into eng.
func NewRunner(eng *engine.Engine, source Source, logger logging.Logger, opts Options) *Runner {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	return &Runner{
		engine:     eng,
		source:     source,
		logger:     logger,
		opts:       opts,
		received:   atomic.NewUint64(0),
		processed:  atomic.NewUint64(0),
		dropped:    atomic.NewUint64(0),
		noUpdate:   atomic.NewUint64(0),
		overBudget: atomic.NewUint64(0),
	}
}

// Run processes frames until the source returns io.EOF, an error occurs, or ctx is done.
// The source is closed on return.
func (r *Runner) Run(ctx context.Context) (err error) {
	runID := uuid.New().String()
	logger := r.logger.Sublogger("runner")
	logger.Infow("starting run", "run_id", runID, "keep_all", r.opts.KeepAll)
	defer func() {
		err = multierr.Combine(err, r.source.Close())
		s := r.Stats()
		logger.Infow("run finished",
			"run_id", runID,
			"received", s.Received,
			"processed", s.Processed,
			"dropped", s.Dropped,
			"no_update", s.NoUpdate,
			"over_budget", s.OverBudget,
		)
	}()

	if is, ok := r.source.(IntrinsicsSource); ok {
		if intrinsics := is.Intrinsics(); intrinsics != nil {
			r.engine.SetIntrinsics(intrinsics)
		}
	}
	if r.opts.Store != nil {
		r.configVersion = r.opts.Store.Version()
	}

	frames := make(chan arrival, 1)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(frames)
		return r.produce(gctx, frames)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case a, ok := <-frames:
				if !ok {
					return nil
				}
				r.handle(a, runID)
			}
		}
	})
	return g.Wait()
}

func (r *Runner) produce(ctx context.Context, frames chan arrival) error {
	var seq uint64
	for {
		frame, err := r.source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "cannot read next frame")
		}
		seq++
		r.received.Inc()
		a := arrival{frame: frame, seq: seq, at: r.opts.Clock.Now()}

		if r.opts.KeepAll {
			select {
			case frames <- a:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		select {
		case frames <- a:
		default:
			// replace the stale frame; only this goroutine sends, so the second send cannot block
			select {
			case stale := <-frames:
				r.dropped.Inc()
				r.logger.Debugw("dropping stale frame", "seq", stale.seq)
			default:
			}
			frames <- a
		}
	}
}

func (r *Runner) handle(a arrival, runID string) {
	if r.opts.Store != nil {
		if v := r.opts.Store.Version(); v != r.configVersion {
			r.configVersion = v
			if err := r.engine.SetConfig(r.opts.Store.Load()); err != nil {
				r.logger.Warnw("keeping previous config", "error", err)
			}
		}
	}

	if !r.engine.Process(a.frame) {
		r.noUpdate.Inc()
		return
	}
	latency := r.opts.Clock.Since(a.at)
	if budget := r.engine.Config().FrameBudget.Std(); budget > 0 && latency > budget {
		r.overBudget.Inc()
		r.logger.Warnw("frame over budget", "seq", a.seq, "latency", latency, "budget", budget)
		return
	}

	res, ok := r.engine.Result()
	if !ok {
		return
	}
	out := Result{Result: res, RunID: runID, Seq: a.seq, Latency: latency}
	if r.opts.Avoidance != nil {
		cmd := r.opts.Avoidance.Command(res.Navigability, r.opts.TargetHeading)
		out.Command = &cmd
	}
	r.processed.Inc()
	if r.opts.OnResult != nil {
		r.opts.OnResult(out)
	}
}

// Stats returns the runner's counters.
func (r *Runner) Stats() Stats {
	return Stats{
		Received:   r.received.Load(),
		Processed:  r.processed.Load(),
		Dropped:    r.dropped.Load(),
		NoUpdate:   r.noUpdate.Load(),
		OverBudget: r.overBudget.Load(),
	}
}
