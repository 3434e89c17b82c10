package cli

import (
	"path/filepath"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/satinavrobotics/depthnav/rimage"
)

// HistogramAction prints the distribution of confident depths in a frame and optionally plots it.
func HistogramAction(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	bins := c.Int(flagBins)
	if bins < 1 {
		return errors.Errorf("--%s must be at least 1, got %d", flagBins, bins)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	path := c.Args().First()
	frame, err := rimage.ParseDepthFrame(path)
	if err != nil {
		return err
	}

	filtered := rimage.NewEmptyDepthMap(frame.Width(), frame.Height())
	dropped := rimage.ApplyConfidence(filtered, frame, cfg.ConfidenceThreshold)
	depths := validDepths(filtered)
	if len(depths) == 0 {
		return errors.Errorf("%s has no confident depth samples", path)
	}

	printf(c, "%d samples, %d dropped below confidence %.2f", len(depths), dropped, cfg.ConfidenceThreshold)
	hist := histogram.Hist(bins, depths)
	if err := histogram.Fprint(c.App.Writer, hist, histogram.Linear(40)); err != nil {
		return err
	}

	if out := c.String(flagOut); out != "" {
		if err := plotDepths(depths, bins, filepath.Base(path), out); err != nil {
			return errors.Wrapf(err, "cannot plot %s", out)
		}
		printf(c, "wrote %s", out)
	}
	return nil
}

func validDepths(dm *rimage.DepthMap) []float64 {
	out := make([]float64, 0, dm.ValidCount())
	for y := 0; y < dm.Height(); y++ {
		for x := 0; x < dm.Width(); x++ {
			if d := dm.GetDepth(x, y); d.Valid() {
				out = append(out, float64(d))
			}
		}
	}
	return out
}

func plotDepths(depths []float64, bins int, title, out string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "depth (mm)"
	p.Y.Label.Text = "samples"

	h, err := plotter.NewHist(plotter.Values(depths), bins)
	if err != nil {
		return err
	}
	p.Add(h)
	return p.Save(6*vg.Inch, 4*vg.Inch, out)
}
