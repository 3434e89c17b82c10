package cli

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lmittmann/ppm"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/xfmoulet/qoi"
	"go.uber.org/multierr"

	"github.com/satinavrobotics/depthnav/engine"
	"github.com/satinavrobotics/depthnav/navigability"
	"github.com/satinavrobotics/depthnav/rimage"
)

const overlayAlpha = 0.6

var (
	closerColor     = colorful.Color{R: 1, G: 0, B: 0}
	fartherColor    = colorful.Color{R: 1, G: 0, B: 1}
	horizontalColor = colorful.Color{R: 1, G: 1, B: 0}
	tooCloseColor   = colorful.Color{R: 1, G: 1, B: 1}
	boundsColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	clearColor      = color.RGBA{G: 200, A: 255}
	blockedColor    = color.RGBA{R: 200, A: 255}
)

// RenderAction writes a colorized picture of a frame with the last pass drawn over it.
func RenderAction(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	p, err := analyzeFile(c, c.Args().Get(0))
	if err != nil {
		return err
	}
	scale := c.Int(flagScale)
	if scale < 1 {
		return errors.Errorf("--%s must be at least 1, got %d", flagScale, scale)
	}

	maxDepth := rimage.Depth(min(float64(rimage.MaxDepth), p.engine.Config().MaxSafeDistanceMm))
	img := renderResult(p.frame.Depth, p.result, maxDepth)
	var out image.Image = img
	if scale > 1 {
		out = imaging.Resize(img, img.Bounds().Dx()*scale, img.Bounds().Dy()*scale, imaging.NearestNeighbor)
	}

	path := c.Args().Get(1)
	if err := saveImage(out, path); err != nil {
		return errors.Wrapf(err, "cannot write %s", path)
	}
	printf(c, "wrote %s", path)
	return nil
}

// renderResult paints dm with a depth ramp up to maxDepth, tints every masked pixel, marks the
// robot's columns and draws each window's bands as a strip along its edge.
func renderResult(dm *rimage.DepthMap, res engine.Result, maxDepth rimage.Depth) *image.RGBA {
	img := dm.ToPrettyPicture(0, maxDepth)
	masks := res.Masks

	for y := 0; y < dm.Height(); y++ {
		for x := 0; x < dm.Width(); x++ {
			var tint *colorful.Color
			switch {
			case masks.VerticalCloser.Get(x, y):
				tint = &closerColor
			case masks.VerticalFarther.Get(x, y):
				tint = &fartherColor
			case masks.HorizontalGradient.Get(x, y):
				tint = &horizontalColor
			case masks.TooClose.Get(x, y):
				tint = &tooCloseColor
			}
			if tint == nil {
				continue
			}
			base, _ := colorful.MakeColor(img.At(x, y))
			img.Set(x, y, base.BlendRgb(*tint, overlayAlpha).Clamped())
		}
	}

	layout := navigability.NewLayout(dm.Width(), dm.Height(), res.Bounds, navigability.DefaultParams())
	for y := 0; y < dm.Height(); y++ {
		img.Set(layout.Center.StartX, y, boundsColor)
		img.Set(layout.Center.EndX, y, boundsColor)
	}

	nav := res.Navigability
	drawBands(img, layout, nav.Left, layout.Left.StartX)
	drawBands(img, layout, nav.Right, layout.Right.EndX-1)
	drawBands(img, layout, nav.Center, (layout.Center.StartX+layout.Center.EndX)/2)
	return img
}

func drawBands(img *image.RGBA, layout navigability.Layout, bands []bool, x int) {
	for i, navigable := range bands {
		col := blockedColor
		if navigable {
			col = clearColor
		}
		top, bottom := layout.Band(i)
		for y := top; y <= bottom; y++ {
			img.Set(x, y, col)
			img.Set(x+1, y, col)
		}
	}
}

// saveImage picks an encoder from the file extension. Anything other than .ppm and .qoi goes
// through imaging, which understands png, jpeg, gif, tiff and bmp.
func saveImage(img image.Image, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ppm":
		return encodeFile(path, func(w io.Writer) error { return ppm.Encode(w, toRGBA(img)) })
	case ".qoi":
		return encodeFile(path, func(w io.Writer) error { return qoi.Encode(w, img) })
	default:
		return imaging.Save(img, path)
	}
}

// toRGBA returns img as an *image.RGBA, converting it if needed. ppm only encodes the RGBA model.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba
}

func encodeFile(path string, encode func(io.Writer) error) (err error) {
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return encode(f)
}
