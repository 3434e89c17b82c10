package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/satinavrobotics/depthnav/config"
	"github.com/satinavrobotics/depthnav/navigability"
	"github.com/satinavrobotics/depthnav/navigation"
	"github.com/satinavrobotics/depthnav/pipeline"
)

// ReplayAction runs the real-time pipeline over frame files, printing one line per result.
func ReplayAction(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	logger := loggerFrom(c)

	eng, err := newEngine(c)
	if err != nil {
		return err
	}
	overrides, err := config.ParseOverrides(c.StringSlice(flagSet))
	if err != nil {
		return err
	}

	store := config.NewStore(eng.Config())
	var watcher *config.Watcher
	if path := c.String(flagConfig); path != "" && !c.Bool(flagNoReload) {
		watcher, err = config.NewWatcher(path, store, config.DefaultReloadDelay, logger.Sublogger("config"))
		if err != nil {
			return err
		}
		watcher.Overrides = overrides
	}

	sourceOpts := []pipeline.FileSourceOption{pipeline.WithFrameRate(c.Float64(flagFPS))}
	if c.Bool(flagLoop) {
		sourceOpts = append(sourceOpts, pipeline.WithLoop())
	}
	source, err := pipeline.NewFileSource(c.Args().Slice(), sourceOpts...)
	if err != nil {
		if watcher != nil {
			//nolint:errcheck
			watcher.Close()
		}
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	quiet := c.Bool(flagQuiet)
	runner := pipeline.NewRunner(eng, source, logger.Sublogger("pipeline"), pipeline.Options{
		Store:         store,
		Avoidance:     navigation.NewObstacleAvoidance(),
		TargetHeading: c.Float64(flagHeading),
		KeepAll:       c.Bool(flagKeepAll),
		OnResult: func(res pipeline.Result) {
			if !quiet {
				printResultLine(c, res)
			}
		},
	})

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancelWatch := context.WithCancel(gctx)
	defer cancelWatch()

	if watcher != nil {
		g.Go(func() error {
			if err := watcher.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		// the watcher only lives as long as the run
		defer cancelWatch()
		return runner.Run(runCtx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		err = nil
	}

	s := runner.Stats()
	printf(c, "received %d, processed %d, dropped %d, no update %d, over budget %d",
		s.Received, s.Processed, s.Dropped, s.NoUpdate, s.OverBudget)
	return err
}

func printResultLine(c *cli.Context, res pipeline.Result) {
	nav := res.Navigability
	cmd := "none"
	if res.Command != nil {
		cmd = describeCommand(*res.Command)
	}
	printf(c, "#%d %s navigable L%d C%d R%d | %s",
		res.Seq, res.Latency,
		navigability.NavigableCount(nav.Left),
		navigability.NavigableCount(nav.Center),
		navigability.NavigableCount(nav.Right),
		cmd,
	)
}
