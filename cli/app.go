// Package cli contains the depthnav command line interface.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/satinavrobotics/depthnav/logging"
)

const (
	// Global flags.
	flagConfig     = "config"
	flagIntrinsics = "intrinsics"
	flagSet        = "set"
	flagDebug      = "debug"
	flagLogFile    = "log-file"

	// Command flags.
	flagScale    = "scale"
	flagWidth    = "width"
	flagHeight   = "height"
	flagFPS      = "fps"
	flagLoop     = "loop"
	flagKeepAll  = "keep-all"
	flagHeading  = "heading"
	flagQuiet    = "quiet"
	flagNoReload = "no-reload"
	flagBins     = "bins"
	flagOut      = "out"

	metadataLogger = "logger"
	metadataCloser = "log-closer"
)

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "depthnav",
		Usage:           "find obstacles and navigable directions in depth frames",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Metadata:        map[string]interface{}{},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				EnvVars: []string{"DEPTHNAV_CONFIG"},
				Usage:   "load thresholds from JSON `FILE`",
			},
			&cli.StringFlag{
				Name:    flagIntrinsics,
				EnvVars: []string{"DEPTHNAV_INTRINSICS"},
				Usage:   "load pinhole camera intrinsics from JSON `FILE`",
			},
			&cli.StringSliceFlag{
				Name:  flagSet,
				Usage: "override a threshold, e.g. --set downsample_factor=4",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				EnvVars: []string{"DEPTHNAV_DEBUG"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:    flagLogFile,
				EnvVars: []string{"DEPTHNAV_LOG_FILE"},
				Usage:   "also write logs to a rotated `FILE`",
			},
		},
		Before: setupLogging,
		After:  closeLogging,
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "run one pass over a frame and print the results",
				ArgsUsage: "<frame>",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  flagHeading,
						Usage: "target heading from -1 (left) to 1 (right) for the suggested command",
					},
				},
				Action: AnalyzeAction,
			},
			{
				Name:      "render",
				Usage:     "write a colorized depth picture with obstacles and bands drawn over it",
				ArgsUsage: "<frame> <out.png|.jpg|.ppm|.qoi>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  flagScale,
						Value: 1,
						Usage: "scale the output picture by this factor",
					},
				},
				Action: RenderAction,
			},
			{
				Name:      "histogram",
				Usage:     "print the distribution of confident depths in a frame",
				ArgsUsage: "<frame>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  flagBins,
						Value: 20,
						Usage: "number of histogram bins",
					},
					&cli.StringFlag{
						Name:  flagOut,
						Usage: "also plot the histogram to `FILE` (.png, .svg, .pdf)",
					},
				},
				Action: HistogramAction,
			},
			{
				Name:      "synth",
				Usage:     "write a synthetic frame with a drop-off and a side obstacle",
				ArgsUsage: "<out>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  flagWidth,
						Value: 160,
						Usage: "frame width in pixels",
					},
					&cli.IntFlag{
						Name:  flagHeight,
						Value: 120,
						Usage: "frame height in pixels",
					},
				},
				Action: SynthAction,
			},
			{
				Name:      "replay",
				Usage:     "run the real-time pipeline over frame files",
				ArgsUsage: "<frame> [frame...]",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  flagFPS,
						Usage: "replay at most this many frames per second (0 is unpaced)",
					},
					&cli.BoolFlag{
						Name:  flagLoop,
						Usage: "restart from the first frame until interrupted",
					},
					&cli.BoolFlag{
						Name:  flagKeepAll,
						Usage: "process every frame instead of dropping stale ones",
					},
					&cli.Float64Flag{
						Name:  flagHeading,
						Usage: "target heading from -1 (left) to 1 (right)",
					},
					&cli.BoolFlag{
						Name:  flagQuiet,
						Usage: "only print the final counters",
					},
					&cli.BoolFlag{
						Name:  flagNoReload,
						Usage: "do not watch --config for changes",
					},
				},
				Action: ReplayAction,
			},
			{
				Name:  "config",
				Usage: "work with threshold files",
				Subcommands: []*cli.Command{
					{
						Name:   "print",
						Usage:  "print the effective thresholds as JSON",
						Action: ConfigPrintAction,
					},
					{
						Name:      "diff",
						Usage:     "show what changes between two threshold files",
						ArgsUsage: "<old.json> <new.json>",
						Action:    ConfigDiffAction,
					},
					{
						Name:   "fields",
						Usage:  "list the names accepted by --set",
						Action: ConfigFieldsAction,
					},
				},
			},
		},
	}
}

func setupLogging(c *cli.Context) error {
	logger := logging.NewBlankLogger("depthnav")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	if c.Bool(flagDebug) {
		logger.SetLevel(logging.DEBUG)
	} else {
		logger.SetLevel(logging.WARN)
	}

	if path := c.String(flagLogFile); path != "" {
		appender, closer := logging.NewFileAppender(path, 10, 3)
		logger.AddAppender(appender)
		c.App.Metadata[metadataCloser] = closer
	}
	c.App.Metadata[metadataLogger] = logger
	return nil
}

func closeLogging(c *cli.Context) error {
	var err error
	if logger, ok := c.App.Metadata[metadataLogger].(logging.Logger); ok {
		multierr.AppendInto(&err, logger.Sync())
	}
	if closer, ok := c.App.Metadata[metadataCloser].(io.Closer); ok {
		multierr.AppendInto(&err, closer.Close())
	}
	return err
}

func loggerFrom(c *cli.Context) logging.Logger {
	if logger, ok := c.App.Metadata[metadataLogger].(logging.Logger); ok {
		return logger
	}
	return logging.NewBlankLogger("depthnav")
}
