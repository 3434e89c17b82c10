package cli

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/satinavrobotics/depthnav/rimage"
)

// Depths of the synthetic scene, in millimeters.
const (
	synthFloorMm    = 2000
	synthLedgeMm    = 1500
	synthObstacleMm = 600
	minSynthSize    = 16
)

// SynthAction writes a synthetic frame to the path given as its argument.
func SynthAction(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	frame, err := synthFrame(c.Int(flagWidth), c.Int(flagHeight))
	if err != nil {
		return err
	}
	path := c.Args().First()
	if err := frame.WriteToFile(path); err != nil {
		return errors.Wrapf(err, "cannot write %s", path)
	}
	printf(c, "wrote %dx%d frame to %s", frame.Width(), frame.Height(), path)
	return nil
}

// synthFrame builds a flat scene at synthFloorMm with three features:
//   - the upper part of the left quarter steps closer to synthLedgeMm,
//   - a box at synthObstacleMm stands in the right fifth,
//   - the top-right corner has zero confidence.
func synthFrame(width, height int) (*rimage.DepthFrame, error) {
	if width < minSynthSize || height < minSynthSize {
		return nil, errors.Errorf("synthetic frames must be at least %dx%d, got %dx%d",
			minSynthSize, minSynthSize, width, height)
	}

	depth := make([]int16, width*height)
	conf := make([]uint8, width*height)

	ledgeRight := width / 4
	ledgeBottom := height * 6 / 10
	boxLeft, boxRight := width*8/10, width*9/10
	boxTop, boxBottom := height/2, height*9/10
	holeLeft, holeBottom := width*9/10, height/10

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			d := int16(synthFloorMm)
			switch {
			case x < ledgeRight && y < ledgeBottom:
				d = synthLedgeMm
			case x >= boxLeft && x < boxRight && y >= boxTop && y < boxBottom:
				d = synthObstacleMm
			}
			depth[i] = d
			conf[i] = 255
			if x >= holeLeft && y < holeBottom {
				conf[i] = 0
			}
		}
	}
	return rimage.NewDepthFrame(width, height, depth, conf)
}
