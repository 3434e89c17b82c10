package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/urfave/cli/v2"

	"github.com/satinavrobotics/depthnav/engine"
	"github.com/satinavrobotics/depthnav/navigability"
	"github.com/satinavrobotics/depthnav/navigation"
	"github.com/satinavrobotics/depthnav/rimage"
)

var (
	clearText   = color.New(color.FgGreen).SprintFunc()
	blockedText = color.New(color.FgRed, color.Bold).SprintFunc()
	headerText  = color.New(color.FgCyan).SprintFunc()
)

// AnalyzeAction runs one pass over a frame file and prints the masks, bands and suggested command.
func AnalyzeAction(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	p, err := analyzeFile(c, c.Args().First())
	if err != nil {
		return err
	}
	res := p.result

	printFrameSummary(c, p.frame, res)
	printMaskTable(c, res)
	printBandTable(c, res)

	cmd := navigation.NewObstacleAvoidance().Command(res.Navigability, c.Float64(flagHeading))
	printf(c, "%s %s", headerText("command"), describeCommand(cmd))
	return nil
}

func printFrameSummary(c *cli.Context, frame *rimage.DepthFrame, res engine.Result) {
	stats := rimage.ComputeDepthStats(frame.Depth)
	s := res.Summary
	left, right := res.Bounds.PixelRange(s.Width)

	printf(c, "%s %dx%d, %.1f%% valid, depth %d..%d mm (mean %.0f, stddev %.0f)",
		headerText("frame"), s.Width, s.Height, 100*stats.ValidFraction(),
		stats.Min, stats.Max, stats.Mean, stats.StdDev)
	printf(c, "%s downsample %d, run threshold %d, %d low-confidence samples dropped, took %s",
		headerText("pass"), s.Factor, s.RunThreshold, s.Invalidated, s.Duration)
	printf(c, "%s [%.3f, %.3f] of width, columns %d..%d",
		headerText("robot"), res.Bounds.Left, res.Bounds.Right, left, right)
}

func printMaskTable(c *cli.Context, res engine.Result) {
	total := res.Summary.Width * res.Summary.Height
	share := func(n int) string {
		if total == 0 {
			return "-"
		}
		return fmt.Sprintf("%.2f%%", 100*float64(n)/float64(total))
	}

	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Mask", "Pixels", "Share"})
	t.AppendRows([]table.Row{
		{"vertical closer", res.Summary.CloserPixels, share(res.Summary.CloserPixels)},
		{"vertical farther", res.Summary.FartherPixels, share(res.Summary.FartherPixels)},
		{"horizontal gradient", res.Summary.HorizontalPixels, share(res.Summary.HorizontalPixels)},
		{"too close", res.Summary.TooClosePixels, share(res.Summary.TooClosePixels)},
	})
	t.Render()
}

func printBandTable(c *cli.Context, res engine.Result) {
	layout := navigability.NewLayout(res.Summary.Width, res.Summary.Height, res.Bounds, navigability.DefaultParams())
	nav := res.Navigability

	t := table.NewWriter()
	t.SetOutputMirror(c.App.Writer)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"Band", "Rows", "Left", "Center", "Right"})
	for i := range nav.Left {
		top, bottom := layout.Band(i)
		t.AppendRow(table.Row{
			i,
			fmt.Sprintf("%d-%d", top, bottom),
			bandText(nav.Left, i),
			bandText(nav.Center, i),
			bandText(nav.Right, i),
		})
	}
	t.AppendFooter(table.Row{
		"", "navigable",
		navigability.NavigableCount(nav.Left),
		navigability.NavigableCount(nav.Center),
		navigability.NavigableCount(nav.Right),
	})
	t.Render()
}

func bandText(bands []bool, i int) string {
	if i >= len(bands) {
		return "-"
	}
	if bands[i] {
		return clearText("clear")
	}
	return blockedText("blocked")
}

func describeCommand(cmd navigation.Command) string {
	if cmd.Stop {
		return blockedText("stop")
	}
	return fmt.Sprintf("go %s, linear %.3f m/s, angular %.3f rad/s", cmd.Direction, cmd.Linear, cmd.Angular)
}
